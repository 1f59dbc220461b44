package httperr

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

type FieldError struct {
	Field   string `json:"field"`
	Message string `json:"message"`
}

type HTTPError struct {
	Code    string       `json:"error_code"`
	Message string       `json:"message"`
	Error   string       `json:"error,omitempty"`
	Details []FieldError `json:"details,omitempty"`
}

func Write(c *gin.Context, status int, code, message string) {
	c.JSON(status, HTTPError{
		Code:    code,
		Message: message,
	})
}

func BadRequest(c *gin.Context, code, message string) {
	Write(c, http.StatusBadRequest, code, message)
}

func NotFound(c *gin.Context, code, message string) {
	Write(c, http.StatusNotFound, code, message)
}

func Unauthorized(c *gin.Context, code, message string) {
	Write(c, http.StatusUnauthorized, code, message)
}

// InternalCause reports a datastore or runtime failure together with the
// underlying error text.
func InternalCause(c *gin.Context, code, message string, err error) {
	body := HTTPError{Code: code, Message: message}
	if err != nil {
		body.Error = err.Error()
	}
	c.JSON(http.StatusInternalServerError, body)
}

func Validation(c *gin.Context, details []FieldError) {
	c.JSON(http.StatusBadRequest, HTTPError{
		Code:    "validation_failed",
		Message: "Datos inválidos.",
		Details: details,
	})
}
