package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
)

// APIResponse is the JSON envelope returned by every endpoint.
type APIResponse[T any] struct {
	Success   bool        `json:"success"`
	Message   string      `json:"message,omitempty"`
	Data      T           `json:"data,omitempty"`
	Meta      interface{} `json:"meta,omitempty"`
	Errors    interface{} `json:"errors,omitempty"`
	RequestID string      `json:"requestId,omitempty"`
	Timestamp time.Time   `json:"timestamp"`
}

// Build assembles a success envelope without writing it.
func Build[T any](ctx *gin.Context, data T, message string, meta interface{}) APIResponse[T] {
	return APIResponse[T]{
		Success:   true,
		Message:   message,
		Data:      data,
		Meta:      meta,
		RequestID: ctx.GetString("request_id"),
		Timestamp: time.Now().UTC(),
	}
}

// Success writes a success envelope with the given status.
func Success[T any](ctx *gin.Context, status int, data T, message string, meta interface{}) {
	if status == 0 {
		status = http.StatusOK
	}
	ctx.JSON(status, Build(ctx, data, message, meta))
}

// Message writes a success envelope that carries only a message.
func Message(ctx *gin.Context, status int, message string) {
	Success[any](ctx, status, nil, message, nil)
}

// Error writes a failure envelope and aborts the handler chain.
func Error(ctx *gin.Context, status int, message string, errs interface{}) {
	if status == 0 {
		status = http.StatusBadRequest
	}
	ctx.AbortWithStatusJSON(status, APIResponse[any]{
		Success:   false,
		Message:   message,
		Errors:    errs,
		RequestID: ctx.GetString("request_id"),
		Timestamp: time.Now().UTC(),
	})
}
