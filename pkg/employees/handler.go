package employees

import (
	"errors"
	"fmt"
	"net/http"

	"github.com/gin-gonic/gin"

	"itam/pkg/response"
)

type EmployeeHandler struct {
	service EmployeeService
}

func NewEmployeeHandler(service EmployeeService) *EmployeeHandler {
	return &EmployeeHandler{service: service}
}

func (h *EmployeeHandler) RegisterRoutes(router *gin.Engine, auth gin.HandlerFunc) {
	grp := router.Group("/api/employees", auth)
	grp.GET("", h.ListEmployees)
	grp.GET("/:employee_id", h.GetEmployee)
	grp.POST("", h.CreateEmployee)
	grp.PUT("/:employee_id", h.UpdateEmployee)
}

type createEmployeeRequest struct {
	EmployeeID string `json:"employeeId" binding:"required"`
	Name       string `json:"name" binding:"required"`
	Department string `json:"department"`
	Email      string `json:"email"`
}

type updateEmployeeRequest struct {
	Name       string `json:"name" binding:"required"`
	Department string `json:"department"`
	Email      string `json:"email"`
}

// ListEmployees godoc
// @Summary      List all employees
// @Description  Returns employees keyed by employee id
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Success      200 {object} response.APIResponse
// @Router       /api/employees [get]
func (h *EmployeeHandler) ListEmployees(c *gin.Context) {
	result, err := h.service.ListEmployees(c.Request.Context())
	if err != nil {
		response.SendAPIResponse(c, http.StatusInternalServerError, false, "Failed to fetch employees", nil)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "", result)
}

// GetEmployee godoc
// @Summary      Get one employee
// @Tags         employees
// @Produce      json
// @Security     BearerAuth
// @Param        employee_id path string true "Employee ID"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /api/employees/{employee_id} [get]
func (h *EmployeeHandler) GetEmployee(c *gin.Context) {
	id := c.Param("employee_id")

	details, err := h.service.GetEmployee(c.Request.Context(), id)
	if err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			response.SendAPIResponse(c, http.StatusNotFound, false, fmt.Sprintf("Employee %s not found", id), nil)
			return
		}
		response.SendAPIResponse(c, http.StatusInternalServerError, false, "Failed to fetch employee", nil)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "", details)
}

// CreateEmployee godoc
// @Summary      Add an employee
// @Tags         employees
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        request body createEmployeeRequest true "Employee details"
// @Success      201 {object} response.APIResponse
// @Failure      400 {object} response.APIResponse
// @Failure      409 {object} response.APIResponse
// @Router       /api/employees [post]
func (h *EmployeeHandler) CreateEmployee(c *gin.Context) {
	var req createEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "employeeId and name are required", nil)
		return
	}

	e := Employee{NameID: req.EmployeeID, Name: req.Name, Department: req.Department, Email: req.Email}
	if err := h.service.CreateEmployee(c.Request.Context(), e); err != nil {
		if errors.Is(err, ErrDuplicateEmployee) {
			response.SendAPIResponse(c, http.StatusConflict, false, fmt.Sprintf("Employee %s already exists", req.EmployeeID), nil)
			return
		}
		response.SendAPIResponse(c, http.StatusInternalServerError, false, "Failed to create employee", nil)
		return
	}
	response.SendAPIResponse(c, http.StatusCreated, true, "Employee created successfully", nil)
}

// UpdateEmployee godoc
// @Summary      Update an employee
// @Tags         employees
// @Accept       json
// @Produce      json
// @Security     BearerAuth
// @Param        employee_id path string true "Employee ID"
// @Param        request body updateEmployeeRequest true "Employee details"
// @Success      200 {object} response.APIResponse
// @Failure      404 {object} response.APIResponse
// @Router       /api/employees/{employee_id} [put]
func (h *EmployeeHandler) UpdateEmployee(c *gin.Context) {
	id := c.Param("employee_id")

	var req updateEmployeeRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "name is required", nil)
		return
	}

	e := Employee{NameID: id, Name: req.Name, Department: req.Department, Email: req.Email}
	if err := h.service.UpdateEmployee(c.Request.Context(), e); err != nil {
		if errors.Is(err, ErrEmployeeNotFound) {
			response.SendAPIResponse(c, http.StatusNotFound, false, fmt.Sprintf("Employee %s not found", id), nil)
			return
		}
		response.SendAPIResponse(c, http.StatusInternalServerError, false, "Failed to update employee", nil)
		return
	}
	response.SendAPIResponse(c, http.StatusOK, true, "Employee updated successfully", nil)
}
