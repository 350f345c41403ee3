package appErrors

import (
	"log"

	"github.com/gin-gonic/gin"
)

// ErrorResponse is the standard error envelope.
type ErrorResponse struct {
	Error *AppError `json:"error"`
}

// GinErrorHandler writes AppErrors to a gin response.
type GinErrorHandler struct {
	Debug bool
}

// HandleGinError logs 5xx errors and writes the JSON envelope.
func (h *GinErrorHandler) HandleGinError(c *gin.Context, err *AppError) {
	if err.HTTPCode >= 500 {
		log.Printf("Server error: %v", err)
	}
	c.JSON(err.HTTPCode, ErrorResponse{Error: err})
}

// HandleError handles an error for a gin context.
func HandleError(c *gin.Context, err *AppError) {
	handler := &GinErrorHandler{Debug: true}
	handler.HandleGinError(c, err)
}
