package service

import (
	"context"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/ethereum/go-ethereum/common/hexutil"
	"github.com/google/uuid"

	"github.com/ecodao/sigil/core"
	"github.com/ecodao/sigil/internal/eth"
	"github.com/ecodao/sigil/internal/logger"
	"github.com/ecodao/sigil/ports"
	"github.com/ecodao/sigil/siwe"
)

const noncePrefix = "nonce:"

// AuthConfig carries the challenge composition parameters.
type AuthConfig struct {
	Domain   string
	URI      string
	ChainID  int64
	NonceTTL time.Duration
}

// AuthResult is the outcome of a successful verification.
type AuthResult struct {
	Address      string
	Token        string
	ExpiresAt    time.Time
	IsNewProfile bool
}

// nonceRecord is the stored form of an issued challenge. Expiry is frozen
// here at issuance; prepare and verify only read it.
type nonceRecord struct {
	ID        string `json:"id"`
	Address   string `json:"address,omitempty"`
	IssuedAt  int64  `json:"iat"`
	ExpiresAt int64  `json:"exp"`
}

// AuthService implements the nonce-challenge authentication protocol: issue a
// single-use nonce, render the canonical message, verify the wallet signature
// and mint a bearer credential.
type AuthService struct {
	tokenizer ports.Tokenizer
	store     ports.Store
	events    ports.EventPublisher
	profiles  *ProfileService
	log       *logger.Logger
	cfg       AuthConfig
}

// NewAuthService creates a new authentication service.
func NewAuthService(
	tokenizer ports.Tokenizer,
	store ports.Store,
	events ports.EventPublisher,
	profiles *ProfileService,
	log *logger.Logger,
	cfg AuthConfig,
) *AuthService {
	if cfg.NonceTTL <= 0 {
		cfg.NonceTTL = 5 * time.Minute
	}
	return &AuthService{
		tokenizer: tokenizer,
		store:     store,
		events:    events,
		profiles:  profiles,
		log:       log,
		cfg:       cfg,
	}
}

// IssueNonce generates a single-use nonce with a fixed TTL. The address is
// optional; when given, the nonce is bound to it and verification for any
// other address fails.
func (s *AuthService) IssueNonce(ctx context.Context, address string) (*core.Challenge, error) {
	if address != "" {
		var err error
		if address, err = core.NormalizeAddress(address); err != nil {
			return nil, err
		}
	}

	nonceBytes := make([]byte, 16)
	if _, err := rand.Read(nonceBytes); err != nil {
		return nil, fmt.Errorf("failed to generate nonce: %w", err)
	}

	now := time.Now().UTC().Truncate(time.Second)
	challenge := &core.Challenge{
		ID:        uuid.New().String(),
		Address:   address,
		Nonce:     hex.EncodeToString(nonceBytes),
		IssuedAt:  now,
		ExpiresAt: now.Add(s.cfg.NonceTTL),
	}

	record, err := json.Marshal(nonceRecord{
		ID:        challenge.ID,
		Address:   challenge.Address,
		IssuedAt:  challenge.IssuedAt.Unix(),
		ExpiresAt: challenge.ExpiresAt.Unix(),
	})
	if err != nil {
		return nil, fmt.Errorf("failed to encode nonce record: %w", err)
	}

	callCtx, cancel := context.WithTimeout(ctx, storeCallTimeout)
	defer cancel()
	if err := s.store.Set(callCtx, noncePrefix+challenge.Nonce, string(record), s.cfg.NonceTTL); err != nil {
		return nil, fmt.Errorf("failed to store nonce: %w", err)
	}

	return challenge, nil
}

// PrepareMessage renders the canonical challenge message for an issued nonce.
// It never consumes or extends the nonce. A zero chainID falls back to the
// configured chain.
func (s *AuthService) PrepareMessage(ctx context.Context, address, nonce string, chainID int64) (string, error) {
	address, err := core.NormalizeAddress(address)
	if err != nil {
		return "", err
	}

	rec, err := s.peekNonce(ctx, nonce)
	if err != nil {
		return "", err
	}
	if rec.Address != "" && rec.Address != address {
		return "", core.ErrInvalidNonce
	}

	return siwe.Render(s.message(address, nonce, chainID, rec.ExpiresAt)), nil
}

// VerifyMessage authenticates the {message, signature} input variant: the
// client echoes the exact message it signed and all fields are re-derived by
// parsing it.
func (s *AuthService) VerifyMessage(ctx context.Context, message, signature string) (*AuthResult, error) {
	m, err := siwe.Parse(message)
	if err != nil {
		return nil, err
	}

	rec, err := s.consumeNonce(ctx, m.Nonce)
	if err != nil {
		return nil, err
	}
	if rec.Address != "" && rec.Address != m.Address {
		return nil, core.ErrInvalidNonce
	}

	// The client-echoed message must match the server-side composition for
	// the stored record bit for bit.
	expected := siwe.Render(s.message(m.Address, m.Nonce, m.ChainID, rec.ExpiresAt))
	if expected != message {
		return nil, core.ErrInvalidNonce
	}

	return s.finish(ctx, message, m.Address, signature)
}

// VerifyDirect authenticates the {address, nonce, signature} input variant:
// the message is regenerated server-side from the stored nonce record.
func (s *AuthService) VerifyDirect(ctx context.Context, address, nonce, signature string) (*AuthResult, error) {
	address, err := core.NormalizeAddress(address)
	if err != nil {
		return nil, err
	}

	rec, err := s.consumeNonce(ctx, nonce)
	if err != nil {
		return nil, err
	}
	if rec.Address != "" && rec.Address != address {
		return nil, core.ErrInvalidNonce
	}

	message := siwe.Render(s.message(address, nonce, 0, rec.ExpiresAt))
	return s.finish(ctx, message, address, signature)
}

// Logout is stateless: the credential simply stops being presented. An event
// is published so other instances can drop any cached state.
func (s *AuthService) Logout(ctx context.Context, address string) {
	if address == "" {
		return
	}
	if err := s.events.PublishLogout(ctx, address); err != nil {
		s.log.Warn("failed to publish logout event", "error", err)
	}
}

// ValidateToken verifies a bearer credential and returns it. Fully local, no
// store lookup.
func (s *AuthService) ValidateToken(token string) (*core.Credential, error) {
	return s.tokenizer.Validate(token)
}

func (s *AuthService) message(address, nonce string, chainID int64, expiresAt int64) siwe.Message {
	if chainID == 0 {
		chainID = s.cfg.ChainID
	}
	return siwe.Message{
		Address:   address,
		Domain:    s.cfg.Domain,
		URI:       s.cfg.URI,
		ChainID:   chainID,
		Nonce:     nonce,
		ExpiresAt: time.Unix(expiresAt, 0).UTC(),
	}
}

// peekNonce reads a nonce record without consuming it. Absent, expired and
// malformed records all collapse into ErrInvalidNonce.
func (s *AuthService) peekNonce(ctx context.Context, nonce string) (*nonceRecord, error) {
	callCtx, cancel := context.WithTimeout(ctx, storeCallTimeout)
	defer cancel()

	raw, err := s.store.Get(callCtx, noncePrefix+nonce)
	return s.decodeNonce(raw, err)
}

// consumeNonce atomically consumes a nonce record. Exactly one concurrent
// caller for the same nonce can succeed; everyone else sees ErrInvalidNonce.
func (s *AuthService) consumeNonce(ctx context.Context, nonce string) (*nonceRecord, error) {
	callCtx, cancel := context.WithTimeout(ctx, storeCallTimeout)
	defer cancel()

	raw, err := s.store.GetDelete(callCtx, noncePrefix+nonce)
	return s.decodeNonce(raw, err)
}

func (s *AuthService) decodeNonce(raw string, err error) (*nonceRecord, error) {
	if err != nil {
		if errors.Is(err, core.ErrNotFound) {
			return nil, core.ErrInvalidNonce
		}
		return nil, fmt.Errorf("nonce lookup failed: %w", err)
	}

	var rec nonceRecord
	if err := json.Unmarshal([]byte(raw), &rec); err != nil {
		return nil, core.ErrInvalidNonce
	}
	if time.Now().Unix() >= rec.ExpiresAt {
		return nil, core.ErrInvalidNonce
	}
	return &rec, nil
}

// finish runs the shared tail of both verify variants: recover the signer,
// compare against the claimed address, lazily create the profile and mint the
// credential.
func (s *AuthService) finish(ctx context.Context, message, claimedAddress, signature string) (*AuthResult, error) {
	sigBytes, err := hexutil.Decode(signature)
	if err != nil {
		return nil, fmt.Errorf("failed to decode signature: %w", core.ErrInvalidSignature)
	}

	recovered, err := eth.RecoverAddress([]byte(message), sigBytes)
	if err != nil {
		return nil, err
	}
	if strings.ToLower(recovered.Hex()) != claimedAddress {
		return nil, core.ErrInvalidSignature
	}

	_, isNew, err := s.profiles.GetOrCreate(ctx, claimedAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to load profile: %w", err)
	}

	token, cred, err := s.tokenizer.Mint(claimedAddress)
	if err != nil {
		return nil, fmt.Errorf("failed to mint credential: %w", err)
	}

	if err := s.events.PublishLogin(ctx, claimedAddress, isNew); err != nil {
		s.log.Warn("failed to publish login event", "error", err)
	}

	s.log.Info("wallet authenticated", "address", claimedAddress, "new_profile", isNew)

	return &AuthResult{
		Address:      claimedAddress,
		Token:        token,
		ExpiresAt:    cred.ExpiresAt,
		IsNewProfile: isNew,
	}, nil
}
