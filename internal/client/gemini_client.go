package client

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	"go.uber.org/zap"
	"google.golang.org/genai"

	"blog-comment-bot/internal/metrics"
)

const geminiEndpoint = "gemini:generateContent"

// GatewayError is returned when the model call fails or yields no text
type GatewayError struct {
	StatusCode int
	Message    string
	Err        error
}

func (e *GatewayError) Error() string {
	if e.StatusCode > 0 {
		return fmt.Sprintf("model gateway: status %d: %s", e.StatusCode, e.Message)
	}
	return "model gateway: " + e.Message
}

func (e *GatewayError) Unwrap() error {
	return e.Err
}

// ModelClient sends one prompt to the text generation model
type ModelClient interface {
	Generate(ctx context.Context, prompt string) (string, error)
}

// GeminiConfig configures the Gemini model client
type GeminiConfig struct {
	APIKey  string
	Model   string
	Timeout time.Duration
	// BaseURL overrides the API endpoint; empty uses the public Gemini API
	BaseURL string
}

// geminiClient implements ModelClient over the genai SDK
type geminiClient struct {
	client  *genai.Client
	model   string
	timeout time.Duration
	logger  *zap.Logger
	metrics *metrics.Metrics
}

// NewGeminiClient creates a new Gemini model client
func NewGeminiClient(ctx context.Context, cfg GeminiConfig, logger *zap.Logger, m *metrics.Metrics) (ModelClient, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("gemini api key is required")
	}

	clientConfig := &genai.ClientConfig{
		APIKey:  cfg.APIKey,
		Backend: genai.BackendGeminiAPI,
	}
	if cfg.BaseURL != "" {
		clientConfig.HTTPOptions = genai.HTTPOptions{BaseURL: cfg.BaseURL}
	}

	client, err := genai.NewClient(ctx, clientConfig)
	if err != nil {
		return nil, fmt.Errorf("failed to create genai client: %w", err)
	}

	return &geminiClient{
		client:  client,
		model:   cfg.Model,
		timeout: cfg.Timeout,
		logger:  logger,
		metrics: m,
	}, nil
}

// Generate returns the text of the first candidate. There is no retry; a
// failed call fails the caller's run.
func (c *geminiClient) Generate(ctx context.Context, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	startTime := time.Now()
	resp, err := c.client.Models.GenerateContent(ctx, c.model, genai.Text(prompt), nil)
	duration := time.Since(startTime)

	if err != nil {
		statusCode := 0
		message := err.Error()
		var apiErr genai.APIError
		if errors.As(err, &apiErr) {
			statusCode = apiErr.Code
			message = apiErr.Message
		}
		c.metrics.RecordExternalAPICall(geminiEndpoint, http.MethodPost, statusCode, duration, err)
		c.logger.Error("Gemini request failed",
			zap.String("model", c.model),
			zap.Int("status_code", statusCode),
			zap.Duration("duration", duration),
			zap.Error(err),
		)
		return "", &GatewayError{StatusCode: statusCode, Message: message, Err: err}
	}

	text := candidateText(resp)
	if strings.TrimSpace(text) == "" {
		emptyErr := errors.New("model returned empty text")
		c.metrics.RecordExternalAPICall(geminiEndpoint, http.MethodPost, http.StatusOK, duration, emptyErr)
		c.logger.Warn("Gemini returned no text",
			zap.String("model", c.model),
			zap.Duration("duration", duration),
		)
		return "", &GatewayError{StatusCode: http.StatusOK, Message: emptyErr.Error(), Err: emptyErr}
	}

	c.metrics.RecordExternalAPICall(geminiEndpoint, http.MethodPost, http.StatusOK, duration, nil)
	c.logger.Info("Gemini response received",
		zap.String("model", c.model),
		zap.Int("text_length", len(text)),
		zap.Duration("duration", duration),
	)
	return text, nil
}

// candidateText joins the non-thought text parts of the first candidate
func candidateText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if part == nil || part.Thought || part.Text == "" {
			continue
		}
		b.WriteString(part.Text)
	}
	return b.String()
}
