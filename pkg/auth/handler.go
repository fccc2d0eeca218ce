package auth

import (
	"errors"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"itam/pkg/response"
)

const refreshCookieName = "refresh_token"

type AuthHandler struct {
	service      AuthService
	cookieSecure bool
	cookieMaxAge int
}

// NewAuthHandler wires the auth endpoints. cookieSecure should be false only
// in debug mode so local HTTP development keeps working.
func NewAuthHandler(service AuthService, cookieSecure bool, refreshTTL time.Duration) *AuthHandler {
	return &AuthHandler{
		service:      service,
		cookieSecure: cookieSecure,
		cookieMaxAge: int(refreshTTL.Seconds()),
	}
}

func (h *AuthHandler) RegisterRoutes(router *gin.Engine) {
	router.POST("/api/auth/login", h.Login)
	router.POST("/api/auth/refresh", h.Refresh)
	router.POST("/api/auth/logout", h.Logout)
	router.GET("/api/auth/verify", h.Verify)
}

type loginRequest struct {
	Username string `json:"username" binding:"required"`
	Password string `json:"password" binding:"required"`
}

// The refresh token never appears in a response body. It lives in an
// HttpOnly SameSite=Strict cookie scoped to /api.
func (h *AuthHandler) setRefreshCookie(c *gin.Context, token string) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, token, h.cookieMaxAge, "/api", "", h.cookieSecure, true)
}

func (h *AuthHandler) clearRefreshCookie(c *gin.Context) {
	c.SetSameSite(http.SameSiteStrictMode)
	c.SetCookie(refreshCookieName, "", -1, "/api", "", h.cookieSecure, true)
}

// Login godoc
// @Summary      Log in with username and password
// @Description  Returns a short lived access token and sets the refresh token cookie
// @Tags         auth
// @Accept       json
// @Produce      json
// @Param        request body loginRequest true "Credentials"
// @Success      200 {object} LoginResponse
// @Failure      400 {object} response.APIResponse
// @Failure      401 {object} response.APIResponse
// @Router       /api/auth/login [post]
func (h *AuthHandler) Login(c *gin.Context) {
	var req loginRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		response.SendAPIResponse(c, http.StatusBadRequest, false, "username and password are required", nil)
		return
	}

	sess, err := h.service.Login(c.Request.Context(), req.Username, req.Password)
	if err != nil {
		if errors.Is(err, ErrInvalidCredentials) {
			response.SendAPIResponse(c, http.StatusUnauthorized, false, "Invalid username or password", nil)
			return
		}
		response.SendAPIResponse(c, http.StatusInternalServerError, false, "Login failed", nil)
		return
	}

	h.setRefreshCookie(c, sess.RefreshToken)
	c.JSON(http.StatusOK, LoginResponse{
		Success:   true,
		Message:   "Login successful",
		Token:     sess.AccessToken,
		Username:  sess.Username,
		FullName:  sess.FullName,
		ExpiresAt: sess.AccessExpiresAt.Format(time.RFC3339),
	})
}

// Refresh godoc
// @Summary      Rotate the session
// @Description  Exchanges the refresh token cookie for a new access token and a new cookie
// @Tags         auth
// @Produce      json
// @Success      200 {object} RefreshResponse
// @Failure      401 {object} response.APIResponse
// @Router       /api/auth/refresh [post]
func (h *AuthHandler) Refresh(c *gin.Context) {
	token, err := c.Cookie(refreshCookieName)
	if err != nil || token == "" {
		response.SendAPIResponse(c, http.StatusUnauthorized, false, "Refresh token missing", nil)
		return
	}

	sess, err := h.service.Refresh(c.Request.Context(), token)
	if err != nil {
		if errors.Is(err, ErrInvalidRefreshToken) {
			h.clearRefreshCookie(c)
			response.SendAPIResponse(c, http.StatusUnauthorized, false, "Refresh token expired", nil)
			return
		}
		response.SendAPIResponse(c, http.StatusInternalServerError, false, "Token refresh failed", nil)
		return
	}

	h.setRefreshCookie(c, sess.RefreshToken)
	c.JSON(http.StatusOK, RefreshResponse{
		Success:     true,
		AccessToken: sess.AccessToken,
		ExpiresAt:   sess.AccessExpiresAt.Format(time.RFC3339),
		Username:    sess.Username,
		FullName:    sess.FullName,
	})
}

// Logout godoc
// @Summary      Log out
// @Description  Invalidates the stored refresh token and clears the cookie
// @Tags         auth
// @Produce      json
// @Success      200 {object} response.APIResponse
// @Router       /api/auth/logout [post]
func (h *AuthHandler) Logout(c *gin.Context) {
	// Best effort, logout always succeeds from the client's point of view.
	if token, err := c.Cookie(refreshCookieName); err == nil && token != "" {
		_ = h.service.Logout(c.Request.Context(), token)
	}

	h.clearRefreshCookie(c)
	response.SendAPIResponse(c, http.StatusOK, true, "Logged out successfully", nil)
}

// Verify godoc
// @Summary      Check an access token
// @Description  Reports whether the bearer token is still valid, always with HTTP 200
// @Tags         auth
// @Produce      json
// @Success      200 {object} TokenValidationResponse
// @Router       /api/auth/verify [get]
func (h *AuthHandler) Verify(c *gin.Context) {
	token := bearerToken(c.GetHeader("Authorization"))

	claims, ok := h.service.Verify(token)
	if !ok {
		c.JSON(http.StatusOK, TokenValidationResponse{
			Valid:   false,
			Message: "Token expired or invalid",
		})
		return
	}

	c.JSON(http.StatusOK, TokenValidationResponse{
		Valid:    true,
		Username: claims.Username,
		FullName: claims.FullName,
		Message:  "Token is valid",
	})
}
