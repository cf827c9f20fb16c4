package service

import "errors"

// Error kinds. Every *Error unwraps to exactly one of them.
var (
	ErrValidation = errors.New("validation failed")
	ErrAuth       = errors.New("unauthorized")
	ErrPermission = errors.New("forbidden")
	ErrNotFound   = errors.New("not found")
)

type Error struct {
	Kind    error
	Message string
}

func (e *Error) Error() string {
	return e.Message
}

func (e *Error) Unwrap() error {
	return e.Kind
}

func ValidationError(message string) error {
	return &Error{Kind: ErrValidation, Message: message}
}

func AuthError(message string) error {
	return &Error{Kind: ErrAuth, Message: message}
}

func PermissionError(message string) error {
	return &Error{Kind: ErrPermission, Message: message}
}

func NotFoundError(message string) error {
	return &Error{Kind: ErrNotFound, Message: message}
}

const (
	msgUserExists          = "a user with this email or username already exists"
	msgInvalidVerification = "invalid verification token"
	msgExpiredVerification = "verification token expired"
	msgInvalidCredentials  = "invalid email or password"
	msgEmailNotVerified    = "please verify your email before logging in"
	msgInvalidCode         = "invalid or expired code"
	msgUserNotFound        = "user not found"
	msgMovieNotFound       = "movie not found"
	msgMovieForbidden      = "you do not have access to this movie"
)
