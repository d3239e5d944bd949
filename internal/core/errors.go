package core

// Error codes for domain errors.
const (
	ErrCodeInvalidFormat = "invalid_format"
	ErrCodeEmptyMessage  = "empty_message"
	ErrCodeTooLong       = "too_long"
	ErrCodeInvalidTarget = "invalid_target"
	ErrCodeUnauthorized  = "unauthorized"
	ErrCodePersistence   = "persistence_error"
)

// CoreError wraps a code and human-readable message. It is the only error
// shape that crosses the protocol boundary; everything else stays internal.
type CoreError struct {
	Code    string
	Message string
}

func (e *CoreError) Error() string {
	return e.Message
}

func coreError(code, msg string) *CoreError {
	return &CoreError{Code: code, Message: msg}
}
