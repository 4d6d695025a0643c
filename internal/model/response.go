package model

// ErrorResponse is the unified error body for all endpoints.
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
	Detail  string `json:"detail,omitempty"`
}

// Error codes. First two digits mirror the HTTP status class.
const (
	CodeBadRequest   = 40001 // malformed request body or parameters
	CodeValidation   = 40002 // precondition failed, user-correctable
	CodeUnauthorized = 40101
	CodeTokenInvalid = 40102
	CodeNotFound     = 40401
	CodeConflict     = 40901 // generation already in flight
	CodeInternal     = 50001
	CodeBackend      = 50201 // external backend failed
)
