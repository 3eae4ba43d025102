package core

import "errors"

var (
	// ErrInvalidInput is returned when a request carries a malformed address
	// or message shape.
	ErrInvalidInput = errors.New("invalid input")

	// ErrInvalidNonce is returned when a nonce is absent, expired or already
	// consumed. The three cases are deliberately indistinguishable.
	ErrInvalidNonce = errors.New("invalid or expired nonce")

	// ErrInvalidSignature is returned when signature recovery fails or the
	// recovered address does not match the claimed one.
	ErrInvalidSignature = errors.New("invalid signature")

	// ErrTokenExpired is returned when a credential has expired
	ErrTokenExpired = errors.New("token has expired")

	// ErrInvalidToken is returned when a credential is malformed or its
	// signature does not verify
	ErrInvalidToken = errors.New("invalid token")

	// ErrNotFound is returned when a key or profile does not exist
	ErrNotFound = errors.New("not found")

	// ErrSelfFollow is returned when an identity tries to follow itself
	ErrSelfFollow = errors.New("cannot follow self")

	// ErrRateLimited is returned when a client exceeded the request window
	ErrRateLimited = errors.New("rate limited")

	// ErrStoreUnavailable is returned when a backing store call fails
	ErrStoreUnavailable = errors.New("store unavailable")
)
