package gemini

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/couchcryptid/parking-tariff-etl/internal/observability"
	"github.com/google/generative-ai-go/genai"
	"golang.org/x/time/rate"
	"google.golang.org/api/option"
)

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("gemini returned no text")

// generator is the part of genai.GenerativeModel the client uses.
type generator interface {
	GenerateContent(ctx context.Context, parts ...genai.Part) (*genai.GenerateContentResponse, error)
}

// Client rewrites Dutch fare descriptions into short English display lines
// with a Gemini model. It implements domain.DescriptionRewriter.
type Client struct {
	model   generator
	limiter *rate.Limiter
	timeout time.Duration
	metrics *observability.Metrics
	logger  *slog.Logger
	close   func() error
}

// NewClient creates a Gemini-backed rewriter limited to rpm requests per minute.
func NewClient(ctx context.Context, apiKey, modelName string, timeout time.Duration, rpm int, metrics *observability.Metrics, logger *slog.Logger) (*Client, error) {
	client, err := genai.NewClient(ctx, option.WithAPIKey(apiKey))
	if err != nil {
		return nil, fmt.Errorf("create gemini client: %w", err)
	}
	model := client.GenerativeModel(modelName)
	model.SetTemperature(0)

	c := newClient(model, timeout, rpm, metrics, logger)
	c.close = client.Close
	return c, nil
}

func newClient(model generator, timeout time.Duration, rpm int, metrics *observability.Metrics, logger *slog.Logger) *Client {
	if rpm <= 0 {
		rpm = 60
	}
	return &Client{
		model:   model,
		limiter: rate.NewLimiter(rate.Every(time.Minute/time.Duration(rpm)), 1),
		timeout: timeout,
		metrics: metrics,
		logger:  logger,
	}
}

// Rewrite asks the model for a display line for text in a block charging
// hourlyRate. Quotes in the answer are stripped.
func (c *Client) Rewrite(ctx context.Context, text string, hourlyRate float64) (string, error) {
	if err := c.limiter.Wait(ctx); err != nil {
		c.observe("throttled")
		return "", fmt.Errorf("gemini rate limit: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	resp, err := c.model.GenerateContent(ctx, genai.Text(buildPrompt(text, hourlyRate)))
	if c.metrics != nil {
		c.metrics.RewriteAPIDuration.Observe(time.Since(start).Seconds())
	}
	if err != nil {
		c.observe("error")
		return "", fmt.Errorf("gemini generate: %w", err)
	}

	out := cleanOutput(responseText(resp))
	if out == "" {
		c.observe("empty")
		return "", ErrEmptyResponse
	}
	c.observe("success")
	c.logger.Debug("description rewritten", "input", text, "output", out)
	return out, nil
}

// Close releases the underlying client connection.
func (c *Client) Close() error {
	if c.close == nil {
		return nil
	}
	return c.close()
}

func (c *Client) observe(outcome string) {
	if c.metrics != nil {
		c.metrics.RewriteRequests.WithLabelValues(outcome).Inc()
	}
}

// responseText concatenates the text parts of the first candidate.
func responseText(resp *genai.GenerateContentResponse) string {
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return ""
	}
	var sb strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if t, ok := part.(genai.Text); ok {
			sb.WriteString(string(t))
		}
	}
	return sb.String()
}

func cleanOutput(s string) string {
	s = strings.NewReplacer(`"`, "", "'", "").Replace(s)
	return strings.TrimSpace(s)
}
