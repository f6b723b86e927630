package ledger

import "errors"

// ValidationError reports a user-correctable input problem. The message is
// safe to surface directly; exactly one rule is reported per failure.
type ValidationError struct {
	Field   string
	Message string
}

func (e *ValidationError) Error() string {
	return e.Message
}

func invalid(field, message string) *ValidationError {
	return &ValidationError{Field: field, Message: message}
}

var (
	// ErrInvalidCredentials is returned for both unknown usernames and wrong
	// passwords so callers cannot enumerate accounts.
	ErrInvalidCredentials = errors.New("invalid username and/or password")

	// ErrUnknownSymbol is returned when the quote provider cannot resolve a
	// symbol, whether the symbol is bogus or the provider is down.
	ErrUnknownSymbol = errors.New("invalid symbol")
)
