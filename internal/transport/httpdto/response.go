// Package httpdto holds the request and response shapes of the REST surface.
package httpdto

// Response is the envelope every REST endpoint returns. Success responses
// carry Data; failures carry a human-readable Error plus a stable Code the
// client can switch on without parsing the message.
type Response[T any] struct {
	Success bool   `json:"success"`
	Data    T      `json:"data,omitempty"`
	Error   string `json:"error,omitempty"`
	Code    string `json:"code,omitempty"`
}

// NewSuccessResponse wraps a payload in the success envelope.
func NewSuccessResponse[T any](data T) Response[T] {
	return Response[T]{Success: true, Data: data}
}

// NewErrorResponse builds a failure envelope. Code values mirror the status
// mapping in the services layer (UNAUTHORIZED, NOT_FOUND, ...).
func NewErrorResponse(message, code string) Response[any] {
	return Response[any]{Success: false, Error: message, Code: code}
}
