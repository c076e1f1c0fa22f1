package domain

import "errors"

var (
	ErrNotFound           = errors.New("not found")
	ErrUnknownExchange    = errors.New("unknown exchange")
	ErrRateLimited        = errors.New("rate limited")
	ErrUnauthorized       = errors.New("unauthorized")
	ErrMissingCredentials = errors.New("missing credentials")
)
