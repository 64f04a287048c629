package users

// Code classifies a validation failure so callers can branch on the category
// instead of matching message strings.
type Code string

const (
	CodeRequired     Code = "required"
	CodeInvalidEmail Code = "invalid_email"
	CodeEmailTaken   Code = "email_taken"
	CodeWeakPassword Code = "weak_password"
	CodeInvalidRole  Code = "invalid_role"
	CodeNotFound     Code = "not_found"
)

// ValidationError is a recoverable input failure; persistence failures are
// returned as plain errors and are fatal for the request.
type ValidationError struct {
	Code    Code
	Field   string
	Message string
}

func (e *ValidationError) Error() string { return e.Message }

func validationErr(code Code, field, message string) *ValidationError {
	return &ValidationError{Code: code, Field: field, Message: message}
}
