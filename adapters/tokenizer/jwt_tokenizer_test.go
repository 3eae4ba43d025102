package tokenizer

import (
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ecodao/sigil/core"
)

const testSubject = "0x8ba1f109551bd432803012645ac136ddd64dba72"

func TestJWTTokenizer_Roundtrip(t *testing.T) {
	tk := NewJWTTokenizer("secret", time.Hour)

	token, cred, err := tk.Mint(testSubject)
	require.NoError(t, err)
	require.Equal(t, testSubject, cred.Subject)
	require.True(t, cred.ExpiresAt.After(time.Now()))

	got, err := tk.Validate(token)
	require.NoError(t, err)
	require.Equal(t, testSubject, got.Subject)
	require.WithinDuration(t, cred.ExpiresAt, got.ExpiresAt, time.Second)
}

func TestJWTTokenizer_Expired(t *testing.T) {
	tk := NewJWTTokenizer("secret", -time.Minute)

	token, _, err := tk.Mint(testSubject)
	require.NoError(t, err)

	_, err = tk.Validate(token)
	require.ErrorIs(t, err, core.ErrTokenExpired)
}

func TestJWTTokenizer_WrongSecret(t *testing.T) {
	tk := NewJWTTokenizer("secret", time.Hour)
	other := NewJWTTokenizer("other-secret", time.Hour)

	token, _, err := tk.Mint(testSubject)
	require.NoError(t, err)

	_, err = other.Validate(token)
	require.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestJWTTokenizer_Garbage(t *testing.T) {
	tk := NewJWTTokenizer("secret", time.Hour)

	_, err := tk.Validate("not.a.token")
	require.ErrorIs(t, err, core.ErrInvalidToken)

	_, err = tk.Validate("")
	require.ErrorIs(t, err, core.ErrInvalidToken)
}

func TestJWTTokenizer_TamperedToken(t *testing.T) {
	tk := NewJWTTokenizer("secret", time.Hour)

	token, _, err := tk.Mint(testSubject)
	require.NoError(t, err)

	tampered := token[:len(token)-2] + "xx"
	_, err = tk.Validate(tampered)
	require.ErrorIs(t, err, core.ErrInvalidToken)
}
