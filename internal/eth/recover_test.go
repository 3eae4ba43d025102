package eth

import (
	"testing"

	"github.com/ethereum/go-ethereum/crypto"
	"github.com/stretchr/testify/require"
)

func signMessage(t *testing.T, message []byte) ([]byte, string) {
	t.Helper()

	key, err := crypto.GenerateKey()
	require.NoError(t, err)

	sig, err := crypto.Sign(TextHash(message), key)
	require.NoError(t, err)
	sig[64] += 27 // wallet encoding

	return sig, crypto.PubkeyToAddress(key.PublicKey).Hex()
}

func TestRecoverAddress_Roundtrip(t *testing.T) {
	message := []byte("sigil test message")
	sig, address := signMessage(t, message)

	recovered, err := RecoverAddress(message, sig)
	require.NoError(t, err)
	require.Equal(t, address, recovered.Hex())
}

func TestRecoverAddress_WrongMessage(t *testing.T) {
	sig, address := signMessage(t, []byte("original message"))

	recovered, err := RecoverAddress([]byte("tampered message"), sig)
	if err == nil {
		// Recovery over a different hash yields a different address, not the
		// signer.
		require.NotEqual(t, address, recovered.Hex())
	}
}

func TestRecoverAddress_BitFlip(t *testing.T) {
	message := []byte("sigil test message")
	sig, address := signMessage(t, message)

	flipped := make([]byte, len(sig))
	copy(flipped, sig)
	flipped[10] ^= 0x01

	recovered, err := RecoverAddress(message, flipped)
	if err == nil {
		require.NotEqual(t, address, recovered.Hex())
	}
}

func TestRecoverAddress_Malformed(t *testing.T) {
	message := []byte("sigil test message")
	sig, _ := signMessage(t, message)

	tests := []struct {
		name string
		sig  []byte
	}{
		{"empty", []byte{}},
		{"short", sig[:64]},
		{"long", append(append([]byte{}, sig...), 0x00)},
		{"bad recovery id", append(append([]byte{}, sig[:64]...), 0x05)},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := RecoverAddress(message, tt.sig)
			require.Error(t, err)
		})
	}
}
