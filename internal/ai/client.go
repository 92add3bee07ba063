// Package ai calls a remote capture-analysis API. It is the preferred report
// source; every failure path is expected to be absorbed by the caller falling
// back to the local heuristic pipeline.
package ai

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"os"
	"time"

	"github.com/pulseai/pulseai/internal/config"
)

// apiKeyEnv names the environment variable holding the API key.
const apiKeyEnv = "PULSEAI_API_KEY"

// ErrNotConfigured is returned when no endpoint is set.
var ErrNotConfigured = errors.New("ai endpoint not configured")

// Client talks to the remote analysis endpoint.
type Client struct {
	endpoint string
	model    string
	apiKey   string
	client   *http.Client
}

// NewClient builds a Client from config. A nil client is never returned;
// an unconfigured endpoint surfaces as ErrNotConfigured at call time.
func NewClient(cfg *config.Config) *Client {
	timeout := time.Duration(cfg.AITimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = config.DefaultAITimeoutSeconds * time.Second
	}

	return &Client{
		endpoint: cfg.AIEndpoint,
		model:    cfg.AIModel,
		apiKey:   os.Getenv(apiKeyEnv),
		client:   &http.Client{Timeout: timeout},
	}
}

// Configured reports whether an endpoint is set.
func (c *Client) Configured() bool {
	return c.endpoint != ""
}

type analyzeRequest struct {
	Model    string `json:"model,omitempty"`
	Filename string `json:"filename"`
	CSVText  string `json:"csv_text"`
}

type analyzeResponse struct {
	Report string `json:"report"`
	Error  string `json:"error,omitempty"`
}

// Analyze sends the capture to the remote endpoint and returns its report
// text. Any transport error, non-2xx status, or empty report is an error;
// the caller decides whether to fall back.
func (c *Client) Analyze(ctx context.Context, filename, csvText string) (string, error) {
	if !c.Configured() {
		return "", ErrNotConfigured
	}

	body, err := json.Marshal(analyzeRequest{
		Model:    c.model,
		Filename: filename,
		CSVText:  csvText,
	})
	if err != nil {
		return "", fmt.Errorf("marshal request: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return "", fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.apiKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.apiKey)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		return "", fmt.Errorf("api call: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		// Read a bounded slice of the body for the error message.
		snippet, _ := io.ReadAll(io.LimitReader(resp.Body, 512))
		return "", fmt.Errorf("api status %d: %s", resp.StatusCode, string(snippet))
	}

	var parsed analyzeResponse
	if err := json.NewDecoder(resp.Body).Decode(&parsed); err != nil {
		return "", fmt.Errorf("decode response: %w", err)
	}
	if parsed.Error != "" {
		return "", fmt.Errorf("api error: %s", parsed.Error)
	}
	if parsed.Report == "" {
		return "", errors.New("api returned empty report")
	}

	return parsed.Report, nil
}
