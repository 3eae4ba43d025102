package tokenizer

import (
	"errors"
	"fmt"
	"time"

	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"

	"github.com/ecodao/sigil/core"
	"github.com/ecodao/sigil/ports"
)

const AudienceAccess = "session:access"

// JWTTokenizer implements the Tokenizer interface using HMAC-signed JWTs.
// Credentials are self-contained: validation needs no server-side lookup.
type JWTTokenizer struct {
	secret     []byte
	sessionTTL time.Duration
}

// NewJWTTokenizer creates a new JWT tokenizer.
func NewJWTTokenizer(secret string, sessionTTL time.Duration) ports.Tokenizer {
	return &JWTTokenizer{
		secret:     []byte(secret),
		sessionTTL: sessionTTL,
	}
}

// Mint creates a signed bearer credential for the subject address.
func (j *JWTTokenizer) Mint(subject string) (string, *core.Credential, error) {
	now := time.Now()
	cred := &core.Credential{
		Subject:   subject,
		IssuedAt:  now,
		ExpiresAt: now.Add(j.sessionTTL),
	}

	claims := AccessClaims{
		RegisteredClaims: jwt.RegisteredClaims{
			Subject:   cred.Subject,
			ID:        uuid.New().String(),
			ExpiresAt: jwt.NewNumericDate(cred.ExpiresAt),
			IssuedAt:  jwt.NewNumericDate(cred.IssuedAt),
			Audience:  jwt.ClaimStrings{AudienceAccess},
		},
	}

	token := jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	signedToken, err := token.SignedString(j.secret)
	if err != nil {
		return "", nil, fmt.Errorf("failed to sign token: %w", err)
	}

	return signedToken, cred, nil
}

// Validate verifies signature, audience and expiry and returns the embedded
// credential.
func (j *JWTTokenizer) Validate(tokenStr string) (*core.Credential, error) {
	token, err := jwt.ParseWithClaims(tokenStr, &AccessClaims{}, func(token *jwt.Token) (interface{}, error) {
		// Validate the signing method
		if _, ok := token.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fmt.Errorf("unexpected signing method: %v", token.Header["alg"])
		}
		return j.secret, nil
	}, jwt.WithAudience(AudienceAccess))

	if err != nil {
		if errors.Is(err, jwt.ErrTokenExpired) {
			return nil, core.ErrTokenExpired
		}
		return nil, fmt.Errorf("failed to parse token: %w", core.ErrInvalidToken)
	}

	if !token.Valid {
		return nil, core.ErrInvalidToken
	}

	claims, ok := token.Claims.(*AccessClaims)
	if !ok {
		return nil, core.ErrInvalidToken
	}

	return &core.Credential{
		Subject:   claims.Subject,
		IssuedAt:  claims.IssuedAt.Time,
		ExpiresAt: claims.ExpiresAt.Time,
	}, nil
}
