package response

import (
	"github.com/gin-gonic/gin"
)

// ErrorBody is the wire shape for every failure: a user-facing message
// plus optional diagnostic details (e.g. per-field validation messages).
type ErrorBody struct {
	Message   string `json:"message"`
	Details   any    `json:"details,omitempty"`
	RequestID string `json:"request_id,omitempty"`
}

// MutationBody is the wire shape for successful create/update/delete.
type MutationBody struct {
	Message    string `json:"message"`
	Subscriber any    `json:"subscriber"`
}

// JSON writes an arbitrary payload (used for list/get, which return the
// record(s) bare rather than wrapped).
func JSON(c *gin.Context, status int, payload any) {
	c.JSON(status, payload)
}

// Mutation writes a {message, subscriber} envelope.
func Mutation(c *gin.Context, status int, message string, subscriber any) {
	c.JSON(status, MutationBody{Message: message, Subscriber: subscriber})
}

// Error writes a {message, details?} envelope, tagging the request id
// when the middleware has set one.
func Error(c *gin.Context, status int, message string, details any) {
	c.JSON(status, ErrorBody{
		Message:   message,
		Details:   details,
		RequestID: c.GetString("request_id"),
	})
}
