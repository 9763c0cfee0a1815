// Package discord implements a minimal Discord REST and gateway client:
// just the surface the bot needs (send, reply, DM, receive MESSAGE_CREATE
// events), nothing more.
package discord

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"sync"
	"time"
)

// ══════════════════════════════════════════════════════════════════════════════
// CONFIGURATION
// ══════════════════════════════════════════════════════════════════════════════

// ClientConfig contains configuration for the Discord REST client.
type ClientConfig struct {
	// Token is the bot token (sent as "Bot <token>").
	Token string

	// BaseURL is the REST API base URL.
	BaseURL string

	// Timeout is the HTTP request timeout.
	Timeout time.Duration

	// RetryAttempts is the number of retry attempts for failed requests.
	RetryAttempts int

	// RetryDelay is the initial delay between retries.
	RetryDelay time.Duration

	// Logger for structured logging.
	Logger *slog.Logger
}

// DefaultClientConfig returns sensible defaults.
func DefaultClientConfig(token string) ClientConfig {
	return ClientConfig{
		Token:         token,
		BaseURL:       "https://discord.com/api/v10",
		Timeout:       30 * time.Second,
		RetryAttempts: 3,
		RetryDelay:    time.Second,
	}
}

// APIError is a non-2xx REST response.
type APIError struct {
	Status     int
	Code       int
	Message    string
	RetryAfter time.Duration
}

// Error implements the error interface.
func (e *APIError) Error() string {
	return fmt.Sprintf("discord api error: status=%d code=%d: %s", e.Status, e.Code, e.Message)
}

// IsRateLimited reports whether the error is a 429.
func (e *APIError) IsRateLimited() bool {
	return e.Status == http.StatusTooManyRequests
}

// ══════════════════════════════════════════════════════════════════════════════
// CLIENT
// ══════════════════════════════════════════════════════════════════════════════

// Client is the Discord REST client.
type Client struct {
	config     ClientConfig
	httpClient *http.Client
	logger     *slog.Logger

	// DM channels are stable per recipient; cache them so reminders do
	// not re-create a channel for every member every day.
	dmMu       sync.Mutex
	dmChannels map[string]string
}

// NewClient creates a new Discord client.
func NewClient(config ClientConfig) *Client {
	if config.Logger == nil {
		config.Logger = slog.Default()
	}
	if config.BaseURL == "" {
		config.BaseURL = "https://discord.com/api/v10"
	}

	return &Client{
		config: config,
		httpClient: &http.Client{
			Timeout: config.Timeout,
		},
		logger:     config.Logger,
		dmChannels: make(map[string]string),
	}
}

// ══════════════════════════════════════════════════════════════════════════════
// SENDING MESSAGES
// ══════════════════════════════════════════════════════════════════════════════

// SendMessage sends a plain text message to a channel.
func (c *Client) SendMessage(ctx context.Context, channelID, content string) (*Message, error) {
	var msg Message
	path := fmt.Sprintf("/channels/%s/messages", channelID)
	if err := c.callAPI(ctx, http.MethodPost, path, createMessageRequest{Content: content}, &msg); err != nil {
		return nil, fmt.Errorf("send message: %w", err)
	}
	return &msg, nil
}

// Reply sends a message referencing an existing message in the channel.
func (c *Client) Reply(ctx context.Context, channelID, messageID, content string) (*Message, error) {
	var msg Message
	path := fmt.Sprintf("/channels/%s/messages", channelID)
	body := createMessageRequest{
		Content:          content,
		MessageReference: &messageReference{MessageID: messageID},
	}
	if err := c.callAPI(ctx, http.MethodPost, path, body, &msg); err != nil {
		return nil, fmt.Errorf("reply: %w", err)
	}
	return &msg, nil
}

// CreateDM opens (or returns the existing) DM channel with a user.
func (c *Client) CreateDM(ctx context.Context, userID string) (*Channel, error) {
	c.dmMu.Lock()
	if id, ok := c.dmChannels[userID]; ok {
		c.dmMu.Unlock()
		return &Channel{ID: id, Type: ChannelTypeDM}, nil
	}
	c.dmMu.Unlock()

	var ch Channel
	if err := c.callAPI(ctx, http.MethodPost, "/users/@me/channels", createDMRequest{RecipientID: userID}, &ch); err != nil {
		return nil, fmt.Errorf("create dm: %w", err)
	}

	c.dmMu.Lock()
	c.dmChannels[userID] = ch.ID
	c.dmMu.Unlock()

	return &ch, nil
}

// SendDM sends a direct message to a user.
func (c *Client) SendDM(ctx context.Context, userID, content string) (*Message, error) {
	ch, err := c.CreateDM(ctx, userID)
	if err != nil {
		return nil, err
	}
	return c.SendMessage(ctx, ch.ID, content)
}

// GatewayURL returns the websocket URL to connect the gateway to.
func (c *Client) GatewayURL(ctx context.Context) (string, error) {
	var info gatewayInfo
	if err := c.callAPI(ctx, http.MethodGet, "/gateway/bot", nil, &info); err != nil {
		return "", fmt.Errorf("gateway url: %w", err)
	}
	return info.URL, nil
}

// ══════════════════════════════════════════════════════════════════════════════
// API CALL HELPERS
// ══════════════════════════════════════════════════════════════════════════════

// callAPI makes a REST call with retries and rate-limit handling.
func (c *Client) callAPI(ctx context.Context, method, path string, body, result interface{}) error {
	var lastErr error

	for attempt := 0; attempt <= c.config.RetryAttempts; attempt++ {
		if attempt > 0 {
			delay := c.config.RetryDelay * time.Duration(1<<uint(attempt-1))
			select {
			case <-ctx.Done():
				return ctx.Err()
			case <-time.After(delay):
			}
		}

		err := c.doAPICall(ctx, method, path, body, result)
		if err == nil {
			return nil
		}
		lastErr = err

		var apiErr *APIError
		if errors.As(err, &apiErr) {
			if apiErr.IsRateLimited() && apiErr.RetryAfter > 0 {
				select {
				case <-ctx.Done():
					return ctx.Err()
				case <-time.After(apiErr.RetryAfter):
				}
				continue
			}
			// Client errors other than 429 will not improve on retry.
			if apiErr.Status >= 400 && apiErr.Status < 500 {
				return err
			}
		}
	}

	return fmt.Errorf("api call failed after %d retries: %w", c.config.RetryAttempts, lastErr)
}

// doAPICall performs a single REST call.
func (c *Client) doAPICall(ctx context.Context, method, path string, body, result interface{}) error {
	url := c.config.BaseURL + path

	var bodyReader io.Reader
	if body != nil {
		jsonBody, err := json.Marshal(body)
		if err != nil {
			return fmt.Errorf("marshal body: %w", err)
		}
		bodyReader = bytes.NewReader(jsonBody)
	}

	req, err := http.NewRequestWithContext(ctx, method, url, bodyReader)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}
	req.Header.Set("Authorization", "Bot "+c.config.Token)
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("http request: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("read response: %w", err)
	}

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var body apiError
		_ = json.Unmarshal(respBody, &body)
		return &APIError{
			Status:     resp.StatusCode,
			Code:       body.Code,
			Message:    body.Message,
			RetryAfter: time.Duration(body.RetryAfter * float64(time.Second)),
		}
	}

	if result != nil && len(respBody) > 0 {
		if err := json.Unmarshal(respBody, result); err != nil {
			return fmt.Errorf("unmarshal result: %w", err)
		}
	}
	return nil
}
