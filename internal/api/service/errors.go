package service

import "errors"

// Sentinel errors the HTTP layer maps onto status codes and the exact
// response messages clients depend on.
var (
	ErrEmailTaken       = errors.New("user with this email already exists")
	ErrUserNotFound     = errors.New("user not found")
	ErrWrongPassword    = errors.New("wrong password")
	ErrWrongCredentials = errors.New("wrong email or password")

	ErrRefreshNotFound = errors.New("invalid refresh token")
	ErrRefreshExpired  = errors.New("expired refresh token")

	ErrForbidden     = errors.New("not authorized")
	ErrTodoNotFound  = errors.New("todo not found")
	ErrTextRequired  = errors.New("text is required")
	ErrInvalidID     = errors.New("invalid id")
	ErrInvalidUserID = errors.New("invalid user id")
	ErrNotCompleted  = errors.New("todo is not completed")
)
