package response

import (
	"github.com/gin-gonic/gin"
)

// APIResponse is the envelope every JSON endpoint replies with. Message is
// omitted on plain data responses so list payloads stay {"success": true,
// "data": {...}}.
type APIResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Data    any    `json:"data,omitempty"`
}

func SendAPIResponse(c *gin.Context, code int, success bool, message string, data any) {
	resp := APIResponse{
		Success: success,
		Message: message,
		Data:    data,
	}

	c.JSON(code, resp)
}
