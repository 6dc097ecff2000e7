package service

import "errors"

// Categorias de error; los handlers traducen cada una a un status HTTP.
var (
	ErrValidation       = errors.New("validation failed")
	ErrAuth             = errors.New("unauthorized")
	ErrNotFound         = errors.New("not found")
	ErrRateLimited      = errors.New("rate limited")
	ErrEmailSendFailure = errors.New("email send failed")
)

// Error asocia un mensaje visible para el cliente con su categoria.
type Error struct {
	Kind error
	Msg  string
}

func (e *Error) Error() string { return e.Msg }

func (e *Error) Unwrap() error { return e.Kind }

func validationError(msg string) error {
	return &Error{Kind: ErrValidation, Msg: msg}
}

var (
	ErrInvalidEmail     = &Error{Kind: ErrValidation, Msg: "invalid email"}
	ErrEmailTaken       = &Error{Kind: ErrValidation, Msg: "email already registered"}
	ErrOTPLength        = &Error{Kind: ErrValidation, Msg: "otp must be 6 characters"}
	ErrOTPInvalid       = &Error{Kind: ErrValidation, Msg: "invalid otp"}
	ErrEmptyPatch       = &Error{Kind: ErrValidation, Msg: "no fields to update"}
	ErrUserNotFound     = &Error{Kind: ErrAuth, Msg: "user not found"}
	ErrInvalidPassword  = &Error{Kind: ErrAuth, Msg: "invalid password"}
	ErrEmailNotVerified = &Error{Kind: ErrAuth, Msg: "email not verified"}
	ErrSessionInvalid   = &Error{Kind: ErrAuth, Msg: "invalid session"}
	ErrSessionExpired   = &Error{Kind: ErrAuth, Msg: "session expired"}
	ErrTaskNotFound     = &Error{Kind: ErrNotFound, Msg: "todo not found"}
)
