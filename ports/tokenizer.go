package ports

import "github.com/ecodao/sigil/core"

// Tokenizer mints and validates self-contained bearer credentials.
type Tokenizer interface {
	// Mint creates a signed credential for the subject address.
	Mint(subject string) (token string, cred *core.Credential, err error)

	// Validate verifies signature and expiry and returns the embedded
	// credential. Expired tokens fail with core.ErrTokenExpired, everything
	// else with core.ErrInvalidToken.
	Validate(token string) (*core.Credential, error)
}
