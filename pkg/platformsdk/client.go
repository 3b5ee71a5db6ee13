package platformsdk

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// defaultRequestTimeout bounds each backend call when the host does not
// supply its own http.Client.
const defaultRequestTimeout = 30 * time.Second

// APIClient is the authenticated JSON transport to the platform backend.
// Every request carries the stored bearer token when one is present; an
// unauthorized response clears local auth state and invokes the registered
// unauthorized handler.
type APIClient struct {
	baseURL    string
	httpClient *http.Client
	storage    *Storage
	logger     *slog.Logger

	mu             sync.Mutex
	onUnauthorized func()
}

func newAPIClient(cfg Config, storage *Storage, httpClient *http.Client, logger *slog.Logger) *APIClient {
	if httpClient == nil {
		httpClient = &http.Client{Timeout: defaultRequestTimeout}
	}
	return &APIClient{
		baseURL:    cfg.APIBaseURL,
		httpClient: httpClient,
		storage:    storage,
		logger:     logger,
	}
}

// SetUnauthorizedHandler replaces the handler invoked after a 401 response.
// Handlers are replaced, not stacked.
func (c *APIClient) SetUnauthorizedHandler(fn func()) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.onUnauthorized = fn
}

// Get performs a GET request and decodes the JSON response into out.
func (c *APIClient) Get(ctx context.Context, path string, out any) error {
	return c.do(ctx, http.MethodGet, path, nil, out)
}

// Post performs a POST request with a JSON body and decodes the response
// into out. Both body and out may be nil.
func (c *APIClient) Post(ctx context.Context, path string, body, out any) error {
	return c.do(ctx, http.MethodPost, path, body, out)
}

func (c *APIClient) do(ctx context.Context, method, path string, body, out any) error {
	var reader io.Reader
	if body != nil {
		raw, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("failed to encode request body: %w", err)
		}
		reader = bytes.NewReader(raw)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token := c.storage.Token(); token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to send request: %w", err)
	}
	defer resp.Body.Close()

	raw, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	if resp.StatusCode == http.StatusUnauthorized {
		c.handleUnauthorized()
		return parseAPIError(resp.StatusCode, raw)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return parseAPIError(resp.StatusCode, raw)
	}

	if out != nil {
		if err := json.Unmarshal(raw, out); err != nil {
			return fmt.Errorf("failed to decode response: %w", err)
		}
	}
	return nil
}

// handleUnauthorized clears all local auth state, then invokes the single
// registered handler so the host converges on the logged-out state.
func (c *APIClient) handleUnauthorized() {
	c.logger.Info("unauthorized response, clearing local auth state")
	c.storage.Clear()

	c.mu.Lock()
	handler := c.onUnauthorized
	c.mu.Unlock()
	if handler != nil {
		handler()
	}
}

// parseAPIError builds a typed error from an error response body. Bodies of
// the form {"error": ..., "message": ...} are recognised; anything else
// falls back to the HTTP status.
func parseAPIError(status int, body []byte) error {
	var payload struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &payload); err == nil && (payload.Error != "" || payload.Message != "") {
		return &APIError{StatusCode: status, Code: payload.Error, Message: payload.Message}
	}
	return &APIError{StatusCode: status, Message: http.StatusText(status)}
}
