package narrative

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"strings"
	"time"

	"github.com/hashicorp/go-retryablehttp"
	"github.com/sirupsen/logrus"
	"golang.org/x/time/rate"

	"github.com/yourusername/betting-tracker/internal/analytics"
	"github.com/yourusername/betting-tracker/internal/config"
	"github.com/yourusername/betting-tracker/internal/logger"
	"github.com/yourusername/betting-tracker/internal/metrics"
)

// Request is one question about a summarized ledger.
type Request struct {
	Question string
	Summary  *analytics.Summary
	History  []Message
}

// Generator produces a narrative reply for a summary.
type Generator interface {
	Analyze(ctx context.Context, req Request) (*Reply, error)
}

// Client calls an OpenAI-compatible chat-completions endpoint
type Client struct {
	http        *retryablehttp.Client
	limiter     *rate.Limiter
	endpoint    string
	apiKey      string
	model       string
	temperature float64
	maxTokens   int
	breaker     *breaker
	logger      *logger.NarrativeLogger
}

// NewClient creates a narrative client. It returns ErrNotConfigured when the
// generator is disabled or has no API key.
func NewClient(cfg *config.NarrativeConfig, log *logger.NarrativeLogger) (*Client, error) {
	if !cfg.Enabled || cfg.APIKey == "" || cfg.BaseURL == "" {
		return nil, ErrNotConfigured
	}

	retryClient := retryablehttp.NewClient()
	retryClient.HTTPClient.Timeout = time.Duration(cfg.TimeoutSeconds) * time.Second
	retryClient.RetryMax = cfg.RetryAttempts
	retryClient.RetryWaitMin = 500 * time.Millisecond
	retryClient.RetryWaitMax = 8 * time.Second
	retryClient.CheckRetry = retryPolicy
	retryClient.ErrorHandler = retryablehttp.PassthroughErrorHandler
	retryClient.Logger = leveledLogger{entry: log.Entry}

	limit := rate.Inf
	if cfg.RequestsPerMinute > 0 {
		limit = rate.Every(time.Minute / time.Duration(cfg.RequestsPerMinute))
	}

	return &Client{
		http:        retryClient,
		limiter:     rate.NewLimiter(limit, 1),
		endpoint:    strings.TrimRight(cfg.BaseURL, "/") + "/chat/completions",
		apiKey:      cfg.APIKey,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		maxTokens:   cfg.MaxTokens,
		breaker: newBreaker(
			cfg.BreakerFailures,
			time.Duration(cfg.BreakerWindowSeconds)*time.Second,
			time.Duration(cfg.BreakerCooldownSeconds)*time.Second,
			log.Entry,
		),
		logger: log,
	}, nil
}

// Model returns the configured model name
func (c *Client) Model() string {
	return c.model
}

// BreakerState reports whether upstream calls are currently being refused
func (c *Client) BreakerState() BreakerState {
	return c.breaker.State()
}

func (c *Client) fail(status string, statusCode int, latency time.Duration, err error) error {
	metrics.RecordNarrativeRequest(status, latency.Seconds())
	c.logger.LogUpstreamFailure(c.model, statusCode, err)
	c.breaker.RecordFailure(err)
	return fmt.Errorf("%w: %v", ErrUpstream, err)
}

type responseFormat struct {
	Type       string `json:"type"`
	JSONSchema object `json:"json_schema"`
}

type completionRequest struct {
	Model          string         `json:"model"`
	Temperature    float64        `json:"temperature"`
	MaxTokens      int            `json:"max_tokens,omitempty"`
	ResponseFormat responseFormat `json:"response_format"`
	Messages       []Message      `json:"messages"`
}

type completionResponse struct {
	Choices []struct {
		Message struct {
			Content string `json:"content"`
		} `json:"message"`
	} `json:"choices"`
}

// Analyze asks the model about the summary
func (c *Client) Analyze(ctx context.Context, req Request) (*Reply, error) {
	if req.Summary == nil {
		return nil, fmt.Errorf("%w: missing summary", analytics.ErrInvalidInput)
	}
	messages, err := buildMessages(req)
	if err != nil {
		return nil, fmt.Errorf("failed to build prompt: %w", err)
	}

	body, err := json.Marshal(completionRequest{
		Model:          c.model,
		Temperature:    c.temperature,
		MaxTokens:      c.maxTokens,
		ResponseFormat: responseFormat{Type: "json_schema", JSONSchema: replySchema()},
		Messages:       messages,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to marshal request: %w", err)
	}

	if !c.breaker.Allow() {
		metrics.RecordNarrativeRequest("circuit_open", 0)
		return nil, fmt.Errorf("%w: circuit open", ErrUpstream)
	}
	if err := c.limiter.Wait(ctx); err != nil {
		return nil, fmt.Errorf("rate limiter error: %w", err)
	}

	httpReq, err := retryablehttp.NewRequestWithContext(ctx, http.MethodPost, c.endpoint, bytes.NewReader(body))
	if err != nil {
		return nil, err
	}
	httpReq.Header.Set("Content-Type", "application/json")
	httpReq.Header.Set("Authorization", "Bearer "+c.apiKey)

	start := time.Now()
	resp, err := c.http.Do(httpReq)
	latency := time.Since(start)
	if err != nil {
		return nil, c.fail("network_error", 0, latency, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		text, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		err := fmt.Errorf("status %d: %s", resp.StatusCode, strings.TrimSpace(string(text)))
		return nil, c.fail("http_error", resp.StatusCode, latency, err)
	}

	var completion completionResponse
	if err := json.NewDecoder(resp.Body).Decode(&completion); err != nil {
		return nil, c.fail("invalid_response", resp.StatusCode, latency, fmt.Errorf("failed to decode response: %w", err))
	}

	content := ""
	if len(completion.Choices) > 0 {
		content = completion.Choices[0].Message.Content
	}
	reply := parseReply(content)

	c.breaker.RecordSuccess()
	metrics.RecordNarrativeRequest("success", latency.Seconds())
	c.logger.LogCompletion(c.model, float64(latency.Milliseconds()), len(reply.Answer), reply.Structured)
	return &reply, nil
}

// retryPolicy retries network errors, rate limiting and gateway failures
func retryPolicy(ctx context.Context, resp *http.Response, err error) (bool, error) {
	if ctx.Err() != nil {
		return false, ctx.Err()
	}
	if err != nil {
		return true, nil
	}
	switch resp.StatusCode {
	case http.StatusTooManyRequests, http.StatusInternalServerError, http.StatusBadGateway,
		http.StatusServiceUnavailable, http.StatusGatewayTimeout:
		return true, nil
	}
	return false, nil
}

// leveledLogger adapts logrus to retryablehttp's key/value logger
type leveledLogger struct {
	entry *logrus.Entry
}

func (l leveledLogger) fields(keysAndValues []interface{}) *logrus.Entry {
	fields := logrus.Fields{}
	for i := 0; i+1 < len(keysAndValues); i += 2 {
		fields[fmt.Sprint(keysAndValues[i])] = keysAndValues[i+1]
	}
	return l.entry.WithFields(fields)
}

func (l leveledLogger) Error(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Error(msg)
}

func (l leveledLogger) Info(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Debug(msg)
}

func (l leveledLogger) Debug(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Debug(msg)
}

func (l leveledLogger) Warn(msg string, keysAndValues ...interface{}) {
	l.fields(keysAndValues).Warn(msg)
}
