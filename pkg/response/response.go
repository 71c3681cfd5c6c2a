package response

import (
	"net/http"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/SouzaGabriel26/onde-ir/pkg/result"
)

// APIResponse is the envelope every JSON endpoint answers with.
type APIResponse[T any] struct {
	Status    int       `json:"status"`
	Timestamp time.Time `json:"timestamp"`
	RequestID string    `json:"request_id"`
	Success   bool      `json:"success"`
	Message   string    `json:"message"`
	Data      T         `json:"data,omitempty"`
	Meta      any       `json:"meta,omitempty"`
	Error     any       `json:"error,omitempty"`
}

func envelope[T any](ctx *gin.Context, status int, ok bool, message string) APIResponse[T] {
	return APIResponse[T]{
		Status:    status,
		Timestamp: time.Now().UTC(),
		RequestID: ctx.GetString("request_id"),
		Success:   ok,
		Message:   message,
	}
}

// Success writes a successful envelope and returns it. A zero status means 200.
func Success[T any](ctx *gin.Context, status int, data T, message string, meta any) APIResponse[T] {
	if status == 0 {
		status = http.StatusOK
	}
	resp := envelope[T](ctx, status, true, message)
	resp.Data = data
	resp.Meta = meta
	ctx.JSON(status, resp)
	return resp
}

// Error writes a failed envelope and returns it. A zero status means 400.
func Error[T any](ctx *gin.Context, status int, message string, err any) APIResponse[T] {
	if status == 0 {
		status = http.StatusBadRequest
	}
	resp := envelope[T](ctx, status, false, message)
	resp.Error = err
	ctx.JSON(status, resp)
	return resp
}

// FailureDetails is the error body for a result.Failure; the UI highlights Fields.
type FailureDetails struct {
	Fields []string `json:"fields"`
}

// Failure writes an expected service failure.
func Failure(ctx *gin.Context, status int, f *result.Failure) APIResponse[any] {
	return Error[any](ctx, status, f.Message, FailureDetails{Fields: f.Fields})
}
