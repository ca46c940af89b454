package message

import (
	"errors"
	"fmt"
)

// Sentinel errors returned (wrapped in a *ValidationError) by builder operations.
var (
	ErrInvalidValue           = errors.New("transfer value must be positive")
	ErrInvalidStateAccess     = errors.New("state access must be 'none', 'read' or 'write'")
	ErrConflictingOptions     = errors.New("state access conflicts with requested transfer")
	ErrInvalidEventName       = errors.New("invalid event name")
	ErrInvalidTagName         = errors.New("invalid tag name")
	ErrInvalidEncryptionKey   = errors.New("invalid encryption key")
	ErrInvalidEncryptionItems = errors.New("encryption items must be an array of strings")
	ErrBuilderClosed          = errors.New("sub-builder already committed")
)

var kinds = map[error]string{
	ErrInvalidValue:           "invalid_value",
	ErrInvalidStateAccess:     "invalid_state_access",
	ErrConflictingOptions:     "conflicting_options",
	ErrInvalidEventName:       "invalid_event_name",
	ErrInvalidTagName:         "invalid_tag_name",
	ErrInvalidEncryptionKey:   "invalid_encryption_key",
	ErrInvalidEncryptionItems: "invalid_encryption_items",
	ErrBuilderClosed:          "builder_closed",
}

// ValidationError reports a rejected builder call. Op is the operation that
// failed and Detail carries the offending input when it helps the caller.
type ValidationError struct {
	Op     string
	Detail string
	Err    error
}

func (e *ValidationError) Error() string {
	if e.Detail == "" {
		return fmt.Sprintf("message.%s: %v", e.Op, e.Err)
	}
	return fmt.Sprintf("message.%s: %v: %s", e.Op, e.Err, e.Detail)
}

func (e *ValidationError) Unwrap() error { return e.Err }

// Kind returns the stable identifier of the underlying sentinel.
func (e *ValidationError) Kind() string {
	if k, ok := kinds[e.Err]; ok {
		return k
	}
	return "unknown"
}

// KindOf returns the kind of the first ValidationError in err's chain, or ""
// if err is not a validation failure.
func KindOf(err error) string {
	var ve *ValidationError
	if errors.As(err, &ve) {
		return ve.Kind()
	}
	return ""
}

// NewValidationError wraps one of the sentinel errors above. It is exported
// for decoders that detect type errors before reaching the builder.
func NewValidationError(op string, sentinel error, detail string) *ValidationError {
	return &ValidationError{Op: op, Detail: detail, Err: sentinel}
}

func invalid(op string, sentinel error, format string, args ...any) error {
	return &ValidationError{Op: op, Detail: fmt.Sprintf(format, args...), Err: sentinel}
}
