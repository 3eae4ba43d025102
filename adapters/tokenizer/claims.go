package tokenizer

import "github.com/golang-jwt/jwt/v5"

// AccessClaims are the standard claims carried by a bearer credential.
type AccessClaims struct {
	jwt.RegisteredClaims
}
