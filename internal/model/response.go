package model

import "github.com/labstack/echo/v4"

// APIResponse is the response envelope returned by every endpoint.
//
// swagger:model
type APIResponse struct {
	Result interface{} `json:"result,omitempty"`
	Error  string      `json:"error,omitempty"`
	Status int         `json:"status"`
}

// SuccessResponse builds a success envelope for the given result.
func SuccessResponse(result interface{}, code int) *APIResponse {
	return &APIResponse{Result: result, Status: code}
}

// ErrorResponse builds an error envelope with the given message.
func ErrorResponse(msg string, code int) *APIResponse {
	return &APIResponse{Error: msg, Status: code}
}

// Success sends a success envelope to the caller.
func Success(ctx echo.Context, result interface{}, code int) error {
	return ctx.JSON(code, SuccessResponse(result, code))
}

// Error sends an error envelope to the caller.
func Error(ctx echo.Context, msg string, code int) error {
	return ctx.JSON(code, ErrorResponse(msg, code))
}
