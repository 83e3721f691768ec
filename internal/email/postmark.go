// Package email provides a Postmark client for sending quote estimates.
package email

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"

	"go.uber.org/zap"

	"github.com/jkindrix/shopquote/internal/circuitbreaker"
	apperrors "github.com/jkindrix/shopquote/internal/errors"
)

const (
	// DefaultAPIURL is the Postmark API endpoint.
	DefaultAPIURL = "https://api.postmarkapp.com"

	// DefaultTimeout is the default HTTP client timeout.
	DefaultTimeout = 30 * time.Second

	serverTokenHeader = "X-Postmark-Server-Token"
)

// Config holds configuration for the Postmark client.
type Config struct {
	ServerToken   string
	APIURL        string
	From          string
	BCC           string
	MessageStream string
	Timeout       time.Duration
	// CircuitBreaker overrides the default breaker config when non-nil.
	CircuitBreaker *circuitbreaker.Config
}

// Client sends transactional email through Postmark.
type Client struct {
	cfg            Config
	httpClient     *http.Client
	circuitBreaker *circuitbreaker.CircuitBreaker
	logger         *zap.Logger
}

// New creates a new Postmark client.
func New(cfg Config, logger *zap.Logger) *Client {
	if cfg.APIURL == "" {
		cfg.APIURL = DefaultAPIURL
	}
	if cfg.Timeout == 0 {
		cfg.Timeout = DefaultTimeout
	}
	if cfg.MessageStream == "" {
		cfg.MessageStream = "outbound"
	}

	cbConfig := cfg.CircuitBreaker
	if cbConfig == nil {
		cbConfig = &circuitbreaker.Config{
			FailureThreshold:    5,
			SuccessThreshold:    3,
			OpenTimeout:         30 * time.Second,
			HalfOpenMaxRequests: 3,
		}
	}

	return &Client{
		cfg: cfg,
		httpClient: &http.Client{
			Timeout: cfg.Timeout,
			Transport: &http.Transport{
				MaxIdleConns:        100,
				MaxIdleConnsPerHost: 10,
				IdleConnTimeout:     90 * time.Second,
			},
		},
		circuitBreaker: circuitbreaker.New("postmark", cbConfig, logger),
		logger:         logger,
	}
}

// Attachment is a file attached to an outgoing message. Content must be
// base64 encoded.
type Attachment struct {
	Name        string `json:"Name"`
	Content     string `json:"Content"`
	ContentType string `json:"ContentType"`
}

// Message is an outgoing estimate email.
type Message struct {
	To          string
	Subject     string
	TextBody    string
	HTMLBody    string
	Attachments []Attachment
}

// postmarkRequest is the Postmark /email payload.
type postmarkRequest struct {
	From          string       `json:"From"`
	To            string       `json:"To"`
	Bcc           string       `json:"Bcc,omitempty"`
	Subject       string       `json:"Subject"`
	TextBody      string       `json:"TextBody,omitempty"`
	HtmlBody      string       `json:"HtmlBody,omitempty"`
	MessageStream string       `json:"MessageStream"`
	Attachments   []Attachment `json:"Attachments,omitempty"`
}

// postmarkResponse is the Postmark /email response.
type postmarkResponse struct {
	ErrorCode int    `json:"ErrorCode"`
	Message   string `json:"Message"`
	MessageID string `json:"MessageID"`
}

// Breaker exposes the circuit breaker for state reporting.
func (c *Client) Breaker() *circuitbreaker.CircuitBreaker {
	return c.circuitBreaker
}

// Send delivers a message through Postmark. Circuit breaker rejections map
// to CIRCUIT_OPEN, deadline expiry to TIMEOUT, everything else to
// EXTERNAL_SERVICE_ERROR.
func (c *Client) Send(ctx context.Context, msg Message) error {
	err := c.circuitBreaker.Execute(ctx, func(ctx context.Context) error {
		return c.doSend(ctx, msg)
	})
	if err == nil {
		return nil
	}

	switch {
	case err == circuitbreaker.ErrCircuitOpen || err == circuitbreaker.ErrTooManyRequests:
		return apperrors.New(apperrors.CodeCircuitOpen, "Email service is temporarily unavailable")
	case ctx.Err() == context.DeadlineExceeded:
		return apperrors.New(apperrors.CodeTimeout, "Email send timed out")
	default:
		return apperrors.ExternalServiceError("postmark", err)
	}
}

func (c *Client) doSend(ctx context.Context, msg Message) error {
	payload := postmarkRequest{
		From:          c.cfg.From,
		To:            msg.To,
		Bcc:           c.cfg.BCC,
		Subject:       msg.Subject,
		TextBody:      msg.TextBody,
		HtmlBody:      msg.HTMLBody,
		MessageStream: c.cfg.MessageStream,
		Attachments:   msg.Attachments,
	}

	body, err := json.Marshal(payload)
	if err != nil {
		return fmt.Errorf("failed to marshal request body: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, c.cfg.APIURL+"/email", bytes.NewReader(body))
	if err != nil {
		return fmt.Errorf("failed to create request: %w", err)
	}

	req.Header.Set(serverTokenHeader, c.cfg.ServerToken)
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("Accept", "application/json")

	c.logger.Debug("postmark request",
		zap.String("subject", msg.Subject),
		zap.Int("attachments", len(msg.Attachments)),
	)

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("request failed: %w", err)
	}
	defer resp.Body.Close()

	respBody, err := io.ReadAll(resp.Body)
	if err != nil {
		return fmt.Errorf("failed to read response body: %w", err)
	}

	c.logger.Debug("postmark response",
		zap.Int("status", resp.StatusCode),
		zap.Int("body_length", len(respBody)),
	)

	if resp.StatusCode >= 400 {
		var pmResp postmarkResponse
		if err := json.Unmarshal(respBody, &pmResp); err != nil || pmResp.Message == "" {
			return fmt.Errorf("postmark error (status %d): %s", resp.StatusCode, string(respBody))
		}
		return fmt.Errorf("postmark error %d: %s", pmResp.ErrorCode, pmResp.Message)
	}

	var pmResp postmarkResponse
	if err := json.Unmarshal(respBody, &pmResp); err != nil {
		return fmt.Errorf("failed to parse response: %w", err)
	}
	if pmResp.ErrorCode != 0 {
		return fmt.Errorf("postmark error %d: %s", pmResp.ErrorCode, pmResp.Message)
	}

	return nil
}
