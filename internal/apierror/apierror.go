// Package apierror provides standardized error response structures for the API.
// All errors returned to clients go through this package to ensure consistency
// and to prevent leaking internal details (stack traces, DB errors, etc.).
package apierror

// APIError is the canonical error envelope for all 4xx/5xx HTTP responses.
// Code distinguishes business-rule failures so terminals can react to them
// (e.g. "pending_orders" renders the offending order list); Details carries
// the structured payload for that code.
type APIError struct {
	Detail  string      `json:"detail"`
	Code    string      `json:"code,omitempty"`
	Details interface{} `json:"details,omitempty"`
}

func New(msg string) *APIError {
	return &APIError{Detail: msg}
}

// NewGuard builds a business-rule error with a machine-readable code and the
// structured detail the caller needs to resolve the violation.
func NewGuard(code, msg string, details interface{}) *APIError {
	return &APIError{Detail: msg, Code: code, Details: details}
}

// ValidationError wraps multiple field errors.
type ValidationError struct {
	Detail string            `json:"detail"`
	Fields map[string]string `json:"fields"`
}

func NewValidation(fields map[string]string) *ValidationError {
	return &ValidationError{Detail: "Error de validacion", Fields: fields}
}
