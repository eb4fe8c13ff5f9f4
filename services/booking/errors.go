package booking

import (
	"errors"
	"fmt"
)

// Error codes surfaced by the booking core.
const (
	CodeValidation         = "validationError"
	CodeNotFound           = "notFound"
	CodeProductNotFound    = "productNotFound"
	CodePricingUnavailable = "pricingUnavailable"
	CodeConflict           = "conflictError"
	CodePersistence        = "persistenceError"
	CodeInvalidTransition  = "invalidTransition"
	CodeNotification       = "notificationError"
)

type Error struct {
	Code    string
	Message string
}

func (e *Error) Error() string {
	return fmt.Sprintf("%s: %s", e.Code, e.Message)
}

func NewValidationError(msg string) error {
	return &Error{Code: CodeValidation, Message: msg}
}

func NewNotFoundError(msg string) error {
	return &Error{Code: CodeNotFound, Message: msg}
}

func NewProductNotFoundError(msg string) error {
	return &Error{Code: CodeProductNotFound, Message: msg}
}

func NewPricingUnavailableError(msg string) error {
	return &Error{Code: CodePricingUnavailable, Message: msg}
}

func NewConflictError(msg string) error {
	return &Error{Code: CodeConflict, Message: msg}
}

func NewPersistenceError(msg string) error {
	return &Error{Code: CodePersistence, Message: msg}
}

func NewInvalidTransitionError(msg string) error {
	return &Error{Code: CodeInvalidTransition, Message: msg}
}

func NewNotificationError(msg string) error {
	return &Error{Code: CodeNotification, Message: msg}
}

// HasCode reports whether err carries the given booking error code anywhere
// in its wrap chain.
func HasCode(err error, code string) bool {
	var be *Error
	if errors.As(err, &be) {
		return be.Code == code
	}
	return false
}
