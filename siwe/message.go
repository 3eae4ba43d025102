// Package siwe renders and parses the canonical sign-in challenge message.
// The client signs the literal bytes produced by Render, so issuance and
// verification must compose the exact same string.
package siwe

import (
	"fmt"
	"regexp"
	"strconv"
	"strings"
	"time"

	"github.com/ecodao/sigil/core"
)

// Version is the only supported challenge message version.
const Version = "1"

// Message holds the fields embedded in a challenge message.
type Message struct {
	Address   string // lowercase hex address
	Domain    string
	URI       string
	ChainID   int64
	Nonce     string
	ExpiresAt time.Time
}

var (
	headerRe = regexp.MustCompile(`^(0x[0-9a-f]{40}) wants to sign in to (.+)\.$`)
	nonceRe  = regexp.MustCompile(`^[0-9a-f]+$`)
)

// Render produces the deterministic challenge message for m. The expiry is
// rendered as RFC 3339 UTC at second precision; callers must truncate
// accordingly for the render/parse round trip to hold.
func Render(m Message) string {
	return fmt.Sprintf(
		"%s wants to sign in to %s.\n\nURI: %s\nVersion: %s\nChain ID: %d\nNonce: %s\nExpiration Time: %s",
		strings.ToLower(m.Address), m.Domain, m.URI, Version, m.ChainID, m.Nonce,
		m.ExpiresAt.UTC().Truncate(time.Second).Format(time.RFC3339),
	)
}

// Parse is the exact left-inverse of Render. Any input Render could not have
// produced fails with core.ErrInvalidInput; there is no partial recovery.
func Parse(raw string) (Message, error) {
	lines := strings.Split(raw, "\n")
	if len(lines) != 7 {
		return Message{}, fmt.Errorf("message must have 7 lines: %w", core.ErrInvalidInput)
	}

	header := headerRe.FindStringSubmatch(lines[0])
	if header == nil {
		return Message{}, fmt.Errorf("malformed header line: %w", core.ErrInvalidInput)
	}
	if lines[1] != "" {
		return Message{}, fmt.Errorf("missing separator line: %w", core.ErrInvalidInput)
	}

	uri, ok := strings.CutPrefix(lines[2], "URI: ")
	if !ok || uri == "" {
		return Message{}, fmt.Errorf("malformed URI line: %w", core.ErrInvalidInput)
	}
	if lines[3] != "Version: "+Version {
		return Message{}, fmt.Errorf("unsupported version: %w", core.ErrInvalidInput)
	}

	chainStr, ok := strings.CutPrefix(lines[4], "Chain ID: ")
	if !ok {
		return Message{}, fmt.Errorf("malformed chain id line: %w", core.ErrInvalidInput)
	}
	chainID, err := strconv.ParseInt(chainStr, 10, 64)
	if err != nil || strconv.FormatInt(chainID, 10) != chainStr {
		return Message{}, fmt.Errorf("malformed chain id: %w", core.ErrInvalidInput)
	}

	nonce, ok := strings.CutPrefix(lines[5], "Nonce: ")
	if !ok || !nonceRe.MatchString(nonce) {
		return Message{}, fmt.Errorf("malformed nonce line: %w", core.ErrInvalidInput)
	}

	expStr, ok := strings.CutPrefix(lines[6], "Expiration Time: ")
	if !ok {
		return Message{}, fmt.Errorf("malformed expiration line: %w", core.ErrInvalidInput)
	}
	expiresAt, err := time.Parse(time.RFC3339, expStr)
	if err != nil {
		return Message{}, fmt.Errorf("malformed expiration time: %w", core.ErrInvalidInput)
	}

	m := Message{
		Address:   header[1],
		Domain:    header[2],
		URI:       uri,
		ChainID:   chainID,
		Nonce:     nonce,
		ExpiresAt: expiresAt.UTC(),
	}

	// Re-render and compare bit for bit. This closes every remaining
	// ambiguity (timestamp offsets, trailing bytes) in one check.
	if Render(m) != raw {
		return Message{}, fmt.Errorf("message is not canonical: %w", core.ErrInvalidInput)
	}

	return m, nil
}
