package rng

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// HTTPProvider talks to an external randomness provider over HTTP. The
// provider later invokes the engine's randomness callback endpoint with
// the sequence number returned here.
//
//	GET  {base}/fee      → {"fee": "1.5"}
//	POST {base}/requests ← {"seed": <base64>, "callback_url": ...} → {"sequence": 42}
type HTTPProvider struct {
	identity    string
	baseURL     string
	callbackURL string
	client      *http.Client
}

// NewHTTPProvider creates a provider client. identity must match the
// provider identity the service reports in its callbacks.
func NewHTTPProvider(identity, baseURL, callbackURL string) *HTTPProvider {
	return &HTTPProvider{
		identity:    identity,
		baseURL:     baseURL,
		callbackURL: callbackURL,
		client:      &http.Client{Timeout: 10 * time.Second},
	}
}

func (p *HTTPProvider) Identity() string { return p.identity }

func (p *HTTPProvider) Fee(ctx context.Context) (decimal.Decimal, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, p.baseURL+"/fee", nil)
	if err != nil {
		return decimal.Zero, err
	}
	resp, err := p.client.Do(req)
	if err != nil {
		return decimal.Zero, fmt.Errorf("rng: fee quote: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return decimal.Zero, fmt.Errorf("rng: fee quote: unexpected status %d", resp.StatusCode)
	}

	var out struct {
		Fee decimal.Decimal `json:"fee"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return decimal.Zero, err
	}
	return out.Fee, nil
}

func (p *HTTPProvider) RequestWithCallback(ctx context.Context, seed []byte) (uint64, error) {
	body, err := json.Marshal(map[string]any{
		"seed":         seed,
		"callback_url": p.callbackURL,
	})
	if err != nil {
		return 0, err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.baseURL+"/requests", bytes.NewReader(body))
	if err != nil {
		return 0, err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return 0, fmt.Errorf("rng: request: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusAccepted {
		return 0, fmt.Errorf("rng: request: unexpected status %d", resp.StatusCode)
	}

	var out struct {
		Sequence uint64 `json:"sequence"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&out); err != nil {
		return 0, err
	}
	return out.Sequence, nil
}
