package utils

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
)

const genericServerError = "An unexpected error occurred. Please try again later."

// SendJSONError sends a standardized JSON error response and logs the internal error.
// For 5xx errors the client sees a generic message unless publicMsg differs from the internal error text.
func SendJSONError(c *gin.Context, log *zap.Logger, statusCode int, publicMsg string, internalError error, details ...string) {
	errorDetails := ""
	if len(details) > 0 {
		errorDetails = details[0]
	}

	response := gin.H{"error": publicMsg}
	if errorDetails != "" {
		response["details"] = errorDetails
	}

	fields := []zap.Field{
		zap.Int("status", statusCode),
		zap.String("public_message", publicMsg),
		zap.String("path", c.Request.URL.Path),
	}
	if errorDetails != "" {
		fields = append(fields, zap.String("details", errorDetails))
	}
	if internalError != nil {
		log.Error("Handler error", append(fields, zap.Error(internalError))...)
	} else {
		log.Info("Handler response", fields...)
	}

	if statusCode >= http.StatusInternalServerError &&
		(publicMsg == "" || (internalError != nil && publicMsg == internalError.Error())) {
		response["error"] = genericServerError
	}

	c.AbortWithStatusJSON(statusCode, response)
}

// SendJSONData writes the standard success envelope.
func SendJSONData(c *gin.Context, statusCode int, message string, data interface{}) {
	c.JSON(statusCode, gin.H{
		"code":    statusCode,
		"message": message,
		"data":    data,
	})
}
