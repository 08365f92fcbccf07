package remote

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"

	"github.com/yichend/billsync/internal/model"
)

// ErrUnauthorized is returned when the backend rejects the credential
// and a refresh attempt did not recover it.
var ErrUnauthorized = errors.New("remote: unauthorized")

// ClientConfig configures the backend API client.
type ClientConfig struct {
	BaseURL string
	Timeout time.Duration // Default: 10 seconds
	// OnAuthFailure is invoked once when a 401 survives the refresh
	// attempt; the caller typically clears the session and asks the
	// user to log in again.
	OnAuthFailure func()
}

// Client talks to the billsync backend. It attaches the bearer header
// on every request and owns the single token-refresh-on-401 attempt.
type Client struct {
	httpClient    *http.Client
	baseURL       string
	tokens        *TokenStore
	onAuthFailure func()
	log           zerolog.Logger
}

func NewClient(cfg ClientConfig, tokens *TokenStore, log zerolog.Logger) *Client {
	timeout := cfg.Timeout
	if timeout == 0 {
		timeout = 10 * time.Second
	}

	return &Client{
		httpClient:    &http.Client{Timeout: timeout},
		baseURL:       cfg.BaseURL,
		tokens:        tokens,
		onAuthFailure: cfg.OnAuthFailure,
		log:           log,
	}
}

// createBody is the wire shape of a create/update payload. The
// client-generated id is never sent; the backend stores records under
// the id it sees on GET, so creates carry only the canonical fields.
type createBody struct {
	Type     model.Type      `json:"type"`
	Category model.Category  `json:"category"`
	Amount   decimal.Decimal `json:"amount"`
	Date     string          `json:"date"`
	Note     string          `json:"note,omitempty"`
}

// FetchTransactions retrieves the full transaction set for the
// authenticated user.
func (c *Client) FetchTransactions(ctx context.Context) ([]model.Transaction, error) {
	resp, err := c.do(ctx, http.MethodGet, "/transactions", nil)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, c.parseError(resp)
	}

	var txs []model.Transaction
	if err := json.NewDecoder(resp.Body).Decode(&txs); err != nil {
		return nil, fmt.Errorf("failed to decode response: %w", err)
	}

	return txs, nil
}

// CreateTransaction creates tx remotely. Nothing beyond the success
// status is consumed; the backend is trusted to keep the record
// addressable under the fields it received.
func (c *Client) CreateTransaction(ctx context.Context, tx model.Transaction) error {
	body := createBody{
		Type:     tx.Type,
		Category: tx.Category,
		Amount:   tx.Amount,
		Date:     tx.Date,
		Note:     tx.Note,
	}

	resp, err := c.do(ctx, http.MethodPost, "/transactions", body)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusCreated {
		return c.parseError(resp)
	}

	return nil
}

// UpdateTransaction sends a partial patch for id.
func (c *Client) UpdateTransaction(ctx context.Context, id string, patch model.TransactionPatch) error {
	resp, err := c.do(ctx, http.MethodPut, "/transactions/"+id, patch)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return c.parseError(resp)
	}

	return nil
}

// DeleteTransaction deletes id remotely.
func (c *Client) DeleteTransaction(ctx context.Context, id string) error {
	resp, err := c.do(ctx, http.MethodDelete, "/transactions/"+id, nil)
	if err != nil {
		return err
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK && resp.StatusCode != http.StatusNoContent {
		return c.parseError(resp)
	}

	return nil
}

// do performs one authenticated request. On 401 it refreshes the token
// once and retries the original request; if the refresh fails or the
// retry is rejected again, the auth-failure callback fires and
// ErrUnauthorized is returned.
func (c *Client) do(ctx context.Context, method, path string, body any) (*http.Response, error) {
	resp, err := c.send(ctx, method, path, body)
	if err != nil {
		return nil, err
	}

	if resp.StatusCode != http.StatusUnauthorized {
		return resp, nil
	}
	resp.Body.Close()

	c.log.Debug().Str("path", path).Msg("got 401, attempting token refresh")

	if err := c.refreshToken(ctx); err != nil {
		c.log.Warn().Err(err).Msg("token refresh failed")
		c.escalateAuthFailure()
		return nil, ErrUnauthorized
	}

	resp, err = c.send(ctx, method, path, body)
	if err != nil {
		return nil, err
	}
	if resp.StatusCode == http.StatusUnauthorized {
		resp.Body.Close()
		c.escalateAuthFailure()
		return nil, ErrUnauthorized
	}

	return resp, nil
}

func (c *Client) send(ctx context.Context, method, path string, body any) (*http.Response, error) {
	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			return nil, fmt.Errorf("failed to marshal request body: %w", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequestWithContext(ctx, method, c.baseURL+path, reader)
	if err != nil {
		return nil, fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set("Content-Type", "application/json")
	if token, err := c.tokens.Load(); err == nil && token.AccessToken != "" {
		req.Header.Set("Authorization", "Bearer "+token.AccessToken)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, fmt.Errorf("failed to make request: %w", err)
	}

	return resp, nil
}

// refreshToken exchanges the stored token for a fresh one and persists it.
func (c *Client) refreshToken(ctx context.Context) error {
	old, err := c.tokens.Load()
	if err != nil {
		return fmt.Errorf("no stored token to refresh: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.baseURL+"/auth/refresh", nil)
	if err != nil {
		return fmt.Errorf("failed to create refresh request: %w", err)
	}
	req.Header.Set("Authorization", "Bearer "+old.AccessToken)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("refresh request failed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return fmt.Errorf("refresh rejected with status %d", resp.StatusCode)
	}

	var refreshResp struct {
		Token string `json:"token"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&refreshResp); err != nil {
		return fmt.Errorf("failed to parse refresh response: %w", err)
	}
	if refreshResp.Token == "" {
		return fmt.Errorf("refresh response carried no token")
	}

	if err := c.tokens.Save(&Token{AccessToken: refreshResp.Token}); err != nil {
		return fmt.Errorf("failed to persist refreshed token: %w", err)
	}

	return nil
}

func (c *Client) escalateAuthFailure() {
	if c.onAuthFailure != nil {
		c.onAuthFailure()
	}
}

// parseError turns a non-success response into an error.
func (c *Client) parseError(resp *http.Response) error {
	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("api error (status %d): failed to read error response", resp.StatusCode)
	}

	var errResp struct {
		Error   string `json:"error"`
		Message string `json:"message"`
	}
	if err := json.Unmarshal(body, &errResp); err != nil {
		return fmt.Errorf("api error (status %d): %s", resp.StatusCode, string(body))
	}

	if errResp.Message != "" {
		return fmt.Errorf("api error (status %d): %s", resp.StatusCode, errResp.Message)
	}
	if errResp.Error != "" {
		return fmt.Errorf("api error (status %d): %s", resp.StatusCode, errResp.Error)
	}
	return fmt.Errorf("api error (status %d)", resp.StatusCode)
}
