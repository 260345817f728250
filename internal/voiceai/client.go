package voiceai

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"net/url"
	"strings"
	"time"

	"leadcenter/internal/config"
)

// Client talks to the upstream voice AI provider. The provider has shipped
// several incompatible API generations, so the client never assumes a single
// endpoint or payload shape; see endpoints.go and envelope.go.
type Client struct {
	cfg  config.VoiceAIConfig
	http *http.Client
	log  *slog.Logger
}

func NewClient(cfg config.VoiceAIConfig, log *slog.Logger) *Client {
	if log == nil {
		log = slog.Default()
	}
	timeout := cfg.RequestTimeout
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Client{
		cfg:  cfg,
		http: &http.Client{Timeout: timeout},
		log:  log,
	}
}

// apiError carries the upstream status so callers can distinguish auth
// failures from missing endpoints.
type apiError struct {
	Status int
	Path   string
	Body   string
}

func (e *apiError) Error() string {
	return fmt.Sprintf("voiceai: %s returned %d: %s", e.Path, e.Status, e.Body)
}

// getJSON performs a bearer-authenticated GET against the provider and
// decodes the response as arbitrary JSON.
func (c *Client) getJSON(ctx context.Context, apiKey, path string, query url.Values) (any, error) {
	u := strings.TrimRight(c.cfg.BaseURL, "/") + path
	if len(query) > 0 {
		u += "?" + query.Encode()
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, u, nil)
	if err != nil {
		return nil, fmt.Errorf("build request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+apiKey)
	req.Header.Set("Accept", "application/json")

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, fmt.Errorf("voiceai: request %s: %w", path, err)
	}
	defer resp.Body.Close()

	body, err := io.ReadAll(io.LimitReader(resp.Body, 10<<20))
	if err != nil {
		return nil, fmt.Errorf("voiceai: read %s: %w", path, err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return nil, &apiError{Status: resp.StatusCode, Path: path, Body: truncate(string(body), 256)}
	}

	var payload any
	if err := json.Unmarshal(body, &payload); err != nil {
		return nil, fmt.Errorf("voiceai: decode %s: %w", path, err)
	}
	return payload, nil
}

func truncate(s string, n int) string {
	if len(s) <= n {
		return s
	}
	return s[:n] + "..."
}
