package http

import (
	"bytes"
	"crypto/ecdsa"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/ethereum/go-ethereum/crypto"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"

	"github.com/ecodao/sigil/adapters/blob"
	"github.com/ecodao/sigil/adapters/events"
	"github.com/ecodao/sigil/adapters/pin"
	"github.com/ecodao/sigil/adapters/store"
	"github.com/ecodao/sigil/adapters/tokenizer"
	"github.com/ecodao/sigil/internal/config"
	"github.com/ecodao/sigil/internal/eth"
	"github.com/ecodao/sigil/internal/logger"
	"github.com/ecodao/sigil/service"
)

const testNonceLimit = 5

func newTestRouter(t *testing.T) *gin.Engine {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logger.NewNoop()
	kv := store.NewMemoryStore()
	profiles := service.NewProfileService(kv, blob.NewMemoryStore(), pin.NoopPinner{}, events.NoopPublisher{}, log)
	tk := tokenizer.NewJWTTokenizer("test-secret", time.Hour)
	auth := service.NewAuthService(tk, kv, events.NoopPublisher{}, profiles, log, service.AuthConfig{
		Domain:   "localhost",
		URI:      "http://localhost:8000",
		ChainID:  1,
		NonceTTL: 5 * time.Minute,
	})

	return SetupRouter(auth, profiles, kv, config.RateLimit{
		NonceLimit:  testNonceLimit,
		VerifyLimit: testNonceLimit,
		Window:      time.Minute,
	}, log)
}

func doJSON(t *testing.T, router *gin.Engine, method, path string, body any, token string) *httptest.ResponseRecorder {
	t.Helper()

	var reader *bytes.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		require.NoError(t, err)
		reader = bytes.NewReader(payload)
	} else {
		reader = bytes.NewReader(nil)
	}

	req := httptest.NewRequest(method, path, reader)
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	w := httptest.NewRecorder()
	router.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) map[string]any {
	t.Helper()

	var resp map[string]any
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	return resp
}

// login walks the whole challenge flow for a fresh key and returns the
// bearer token and lowercase address.
func login(t *testing.T, router *gin.Engine, key *ecdsa.PrivateKey) (string, string) {
	t.Helper()

	address := strings.ToLower(crypto.PubkeyToAddress(key.PublicKey).Hex())

	w := doJSON(t, router, http.MethodGet, "/api/siwe/nonce?address="+address, nil, "")
	require.Equal(t, http.StatusOK, w.Code)
	nonce := decode(t, w)["nonce"].(string)

	w = doJSON(t, router, http.MethodPost, "/api/siwe/prepare",
		gin.H{"address": address, "nonce": nonce}, "")
	require.Equal(t, http.StatusOK, w.Code)
	message := decode(t, w)["message"].(string)

	sig, err := crypto.Sign(eth.TextHash([]byte(message)), key)
	require.NoError(t, err)
	sig[64] += 27

	w = doJSON(t, router, http.MethodPost, "/api/siwe/verify",
		gin.H{"message": message, "signature": hexutil.Encode(sig)}, "")
	require.Equal(t, http.StatusOK, w.Code)

	resp := decode(t, w)
	require.Equal(t, address, resp["address"])
	return resp["token"].(string), address
}

func TestRouter_EndToEnd(t *testing.T) {
	router := newTestRouter(t)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	token, address := login(t, router, key)

	w := doJSON(t, router, http.MethodGet, "/api/users/me", nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	me := decode(t, w)
	require.Equal(t, address, me["identity"])
	require.Empty(t, me["followers"])

	w = doJSON(t, router, http.MethodPut, "/api/users/me",
		gin.H{"displayName": "alice", "bio": "gm"}, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.NotEmpty(t, decode(t, w)["profileCid"])

	w = doJSON(t, router, http.MethodGet, "/api/users/"+address, nil, token)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, "alice", decode(t, w)["displayName"])
}

func TestRouter_FollowFlow(t *testing.T) {
	router := newTestRouter(t)

	aliceKey, err := crypto.GenerateKey()
	require.NoError(t, err)
	bobKey, err := crypto.GenerateKey()
	require.NoError(t, err)

	aliceToken, alice := login(t, router, aliceKey)
	_, bob := login(t, router, bobKey)

	w := doJSON(t, router, http.MethodPost, "/api/users/follow/"+bob, nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/users/followers/"+bob, nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	followers := decode(t, w)
	require.Equal(t, float64(1), followers["count"])
	require.Contains(t, followers["followers"], alice)

	w = doJSON(t, router, http.MethodPost, "/api/users/follow/"+alice, nil, aliceToken)
	require.Equal(t, http.StatusBadRequest, w.Code)

	w = doJSON(t, router, http.MethodDelete, "/api/users/follow/"+bob, nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/users/following/"+alice, nil, aliceToken)
	require.Equal(t, http.StatusOK, w.Code)
	require.Equal(t, float64(0), decode(t, w)["count"])
}

func TestRouter_AuthRequired(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/api/users/me", nil, "")
	require.Equal(t, http.StatusUnauthorized, w.Code)

	w = doJSON(t, router, http.MethodGet, "/api/users/me", nil, "garbage-token")
	require.Equal(t, http.StatusUnauthorized, w.Code)
}

func TestRouter_UnknownProfile(t *testing.T) {
	router := newTestRouter(t)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	token, _ := login(t, router, key)

	w := doJSON(t, router, http.MethodGet,
		"/api/users/0x00000000000000000000000000000000000000ff", nil, token)
	require.Equal(t, http.StatusNotFound, w.Code)
}

func TestRouter_VerifyBadNonce(t *testing.T) {
	router := newTestRouter(t)

	key, err := crypto.GenerateKey()
	require.NoError(t, err)
	address := strings.ToLower(crypto.PubkeyToAddress(key.PublicKey).Hex())

	w := doJSON(t, router, http.MethodPost, "/api/siwe/verify",
		gin.H{"address": address, "nonce": "deadbeef", "signature": "0x00"}, "")
	require.Equal(t, http.StatusBadRequest, w.Code)
}

func TestRouter_Logout(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodPost, "/api/siwe/logout", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
}

func TestRouter_NonceRateLimited(t *testing.T) {
	router := newTestRouter(t)

	for i := 0; i < testNonceLimit; i++ {
		w := doJSON(t, router, http.MethodGet, "/api/siwe/nonce", nil, "")
		require.Equal(t, http.StatusOK, w.Code, "request %d", i)
	}

	w := doJSON(t, router, http.MethodGet, "/api/siwe/nonce", nil, "")
	require.Equal(t, http.StatusTooManyRequests, w.Code)
}

func TestRouter_Healthz(t *testing.T) {
	router := newTestRouter(t)

	w := doJSON(t, router, http.MethodGet, "/healthz", nil, "")
	require.Equal(t, http.StatusOK, w.Code)
}
