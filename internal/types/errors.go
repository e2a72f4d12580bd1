package types

import "errors"

var ErrNotFound = errors.New("requested item not found")
var ErrConflict = errors.New("item already exists or conflict")
var ErrUnauthenticated = errors.New("authentication required or invalid credentials")
var ErrValidation = errors.New("validation failed")

// Response is the generic success/error envelope for simple endpoints.
type Response struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}

// CountResponse wraps a single aggregate count.
type CountResponse struct {
	Count int64 `json:"count"`
}
