package melo

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/meloserve/meloserve/pkg/engine"
)

// client is the HTTP client side of the worker protocol. The worker exposes
// /healthz and /synthesize on its local address.
type client struct {
	address string
	http    *http.Client
}

func newClient(address string) *client {
	return &client{
		address: address,
		http: &http.Client{
			// Model load on first request can take a while
			Timeout: 5 * time.Minute,
		},
	}
}

func (c *client) HealthCheck(ctx context.Context) bool {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, fmt.Sprintf("http://%s/healthz", c.address), nil)
	if err != nil {
		return false
	}
	resp, err := c.http.Do(req)
	if err != nil {
		return false
	}
	defer resp.Body.Close()
	return resp.StatusCode == http.StatusOK
}

type synthesizeResponse struct {
	Success bool   `json:"success"`
	Message string `json:"message,omitempty"`
}

func (c *client) Synthesize(ctx context.Context, params engine.SynthesisParams) error {
	body, err := json.Marshal(params)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, fmt.Sprintf("http://%s/synthesize", c.address), bytes.NewReader(body))
	if err != nil {
		return err
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return fmt.Errorf("TTS worker request failed: %w", err)
	}
	defer resp.Body.Close()

	raw, _ := io.ReadAll(resp.Body)

	var sr synthesizeResponse
	if err := json.Unmarshal(raw, &sr); err != nil {
		return fmt.Errorf("TTS worker returned status %d: %s", resp.StatusCode, string(raw))
	}
	if !sr.Success {
		return fmt.Errorf("TTS worker could not synthesize: %s", sr.Message)
	}
	return nil
}
