package handler

import "github.com/phonestore/backend/internal/interfaces/http/dto"

// Documentation shapes of the dto.Response envelope. Handlers always write
// dto.Response; swag needs concrete generic types to render the data field.

// APIResponse is a successful single-object response
type APIResponse[T any] struct {
	Success bool `json:"success" example:"true"`
	Data    T    `json:"data"`
}

// ListResponse is a successful list response with its count
type ListResponse[T any] struct {
	Success bool      `json:"success" example:"true"`
	Data    []T       `json:"data"`
	Meta    *dto.Meta `json:"meta"`
}

// ErrorResponse is written for every rejected request
type ErrorResponse struct {
	Success bool           `json:"success" example:"false"`
	Error   *dto.ErrorInfo `json:"error"`
}
