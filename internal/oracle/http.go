package oracle

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"time"

	"github.com/shopspring/decimal"
)

// HTTPPushClient talks to a push-oracle service over HTTP.
//
//	GET  {base}/fee          → {"fee": "0.25"}
//	POST {base}/update       ← {"update": <base64>, "fee": "0.25"}
//	GET  {base}/price        → {"mantissa": ..., "expo": ..., "published_at": ...}
type HTTPPushClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPPushClient creates a push-oracle client for the given base URL.
func NewHTTPPushClient(baseURL string) *HTTPPushClient {
	return &HTTPPushClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPPushClient) UpdateFee(ctx context.Context, update []byte) (decimal.Decimal, error) {
	var resp struct {
		Fee decimal.Decimal `json:"fee"`
	}
	if err := c.getJSON(ctx, c.baseURL+"/fee", &resp); err != nil {
		return decimal.Zero, err
	}
	return resp.Fee, nil
}

func (c *HTTPPushClient) SubmitUpdate(ctx context.Context, update []byte, fee decimal.Decimal) error {
	body, err := json.Marshal(map[string]any{
		"update": update,
		"fee":    fee,
	})
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/update", bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("oracle: submit update: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode == http.StatusPaymentRequired {
		return ErrFeeTooLow
	}
	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("oracle: submit update: unexpected status %d", resp.StatusCode)
	}
	return nil
}

func (c *HTTPPushClient) LatestPrice(ctx context.Context) (Price, error) {
	var p Price
	if err := c.getJSON(ctx, c.baseURL+"/price", &p); err != nil {
		return Price{}, err
	}
	return p, nil
}

func (c *HTTPPushClient) getJSON(ctx context.Context, url string, out any) error {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return fmt.Errorf("oracle: %s: %w", url, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("oracle: %s: unexpected status %d", url, resp.StatusCode)
	}
	return json.NewDecoder(resp.Body).Decode(out)
}

// HTTPPullClient reads a pull-oracle's latest value over HTTP.
//
//	GET {base}/latest → {"value": "67123.5", "updated_at": ...}
type HTTPPullClient struct {
	baseURL string
	client  *http.Client
}

// NewHTTPPullClient creates a pull-oracle client for the given base URL.
func NewHTTPPullClient(baseURL string) *HTTPPullClient {
	return &HTTPPullClient{
		baseURL: baseURL,
		client:  &http.Client{Timeout: 10 * time.Second},
	}
}

func (c *HTTPPullClient) Read(ctx context.Context) (Reading, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, c.baseURL+"/latest", nil)
	if err != nil {
		return Reading{}, err
	}
	resp, err := c.client.Do(req)
	if err != nil {
		return Reading{}, fmt.Errorf("oracle: read latest: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return Reading{}, fmt.Errorf("oracle: read latest: unexpected status %d", resp.StatusCode)
	}

	var r Reading
	if err := json.NewDecoder(resp.Body).Decode(&r); err != nil {
		return Reading{}, err
	}
	return r, nil
}
