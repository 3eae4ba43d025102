package pin

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/ecodao/sigil/ports"
)

var _ ports.Pinner = (*HTTPPinner)(nil)

// HTTPPinner requests pinning of an existing CID from a remote pinning API
// (Pinata-style pin-by-hash endpoint). Callers treat failures as non-fatal.
type HTTPPinner struct {
	endpoint string
	token    string
	client   *http.Client
}

// NewHTTPPinner creates a pinner against the given API base URL.
func NewHTTPPinner(endpoint, token string, timeout time.Duration) *HTTPPinner {
	return &HTTPPinner{
		endpoint: endpoint,
		token:    token,
		client:   &http.Client{Timeout: timeout},
	}
}

type pinRequest struct {
	HashToPin string      `json:"hashToPin"`
	Metadata  pinMetadata `json:"pinataMetadata"`
}

type pinMetadata struct {
	Name string `json:"name"`
}

// Pin asks the remote service to keep cid available.
func (p *HTTPPinner) Pin(ctx context.Context, cid, name string) error {
	payload, err := json.Marshal(pinRequest{
		HashToPin: cid,
		Metadata:  pinMetadata{Name: name},
	})
	if err != nil {
		return fmt.Errorf("failed to marshal pin request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost,
		p.endpoint+"/pinning/pinByHash", bytes.NewReader(payload))
	if err != nil {
		return fmt.Errorf("failed to build pin request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if p.token != "" {
		req.Header.Set("Authorization", "Bearer "+p.token)
	}

	resp, err := p.client.Do(req)
	if err != nil {
		return fmt.Errorf("pin request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode > 299 {
		return fmt.Errorf("pin request returned status %d", resp.StatusCode)
	}
	return nil
}

var _ ports.Pinner = (*NoopPinner)(nil)

// NoopPinner is used when no pinning endpoint is configured.
type NoopPinner struct{}

// Pin does nothing.
func (NoopPinner) Pin(ctx context.Context, cid, name string) error {
	return nil
}
