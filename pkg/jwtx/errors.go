package jwtx

import "errors"

var (
	// ErrMissingSecret reports an empty signing secret. Raised at
	// construction time so a misconfigured deployment fails on startup,
	// never per-request.
	ErrMissingSecret = errors.New("jwtx: signing secret is empty")

	// ErrExpired reports a token past its exp claim.
	ErrExpired = errors.New("jwtx: token expired")

	// ErrInvalid reports a token that failed signature or structural checks.
	ErrInvalid = errors.New("jwtx: token invalid")
)
