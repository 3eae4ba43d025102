package core

import "time"

// Challenge represents an issued authentication nonce. The expiry is frozen
// at issuance; preparing a message later never extends it.
type Challenge struct {
	ID        string    // Unique identifier for the challenge
	Address   string    // Lowercase address the nonce was requested for, may be empty
	Nonce     string    // Random single-use value to be embedded in the signed message
	IssuedAt  time.Time // When the challenge was created
	ExpiresAt time.Time // When the challenge expires
}

// Credential is the result of validating a bearer token.
type Credential struct {
	Subject   string    // Lowercase address the token was minted for
	IssuedAt  time.Time // When the token was minted
	ExpiresAt time.Time // When the token expires
}
