package errors

import (
	"net/http"

	"github.com/gin-gonic/gin"
)

// APIError is the JSON error envelope for non-validation failures.
type APIError struct {
	Error string `json:"error"`
}

// Unauthorized sends a 401 response.
func Unauthorized(c *gin.Context, message string) {
	if message == "" {
		message = "Authentication required"
	}
	c.JSON(http.StatusUnauthorized, APIError{Error: message})
}

// NotFound sends a 404 response.
func NotFound(c *gin.Context, message string) {
	if message == "" {
		message = "Not found"
	}
	c.JSON(http.StatusNotFound, APIError{Error: message})
}

// BadRequest sends a 400 response with a plain message.
func BadRequest(c *gin.Context, message string) {
	if message == "" {
		message = "Invalid request"
	}
	c.JSON(http.StatusBadRequest, APIError{Error: message})
}

// InternalError sends a 500 response.
func InternalError(c *gin.Context, message string) {
	if message == "" {
		message = "Internal server error"
	}
	c.JSON(http.StatusInternalServerError, APIError{Error: message})
}

// ValidationErrors collects validation messages keyed by field name. The
// JSON shape is the body of a 400 response itself, e.g.
// {"username": ["A user with that username already exists."]}.
type ValidationErrors map[string][]string

// Add appends a message for a field.
func (v ValidationErrors) Add(field, message string) {
	v[field] = append(v[field], message)
}

// Empty reports whether no field has accumulated an error.
func (v ValidationErrors) Empty() bool {
	return len(v) == 0
}

// Respond sends the accumulated field errors as a 400 response.
func (v ValidationErrors) Respond(c *gin.Context) {
	c.JSON(http.StatusBadRequest, v)
}
