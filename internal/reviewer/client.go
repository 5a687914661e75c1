package reviewer

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"fjacquet/budget-csv/internal/logging"

	"github.com/google/generative-ai-go/genai"
	"google.golang.org/api/option"
)

// DefaultModel is used when no model is configured.
const DefaultModel = "gemini-1.5-flash"

// ErrEmptyResponse is returned when the model produced no text.
var ErrEmptyResponse = errors.New("no response from Gemini API")

// AIClient produces a text completion for a system instruction and a prompt.
// Implementations talk to an external model; tests use a mock.
type AIClient interface {
	Generate(ctx context.Context, system, prompt string) (string, error)
}

// GeminiClient implements AIClient on the Google Gemini API.
type GeminiClient struct {
	client    *genai.Client
	modelName string
	maxTokens int32
	timeout   time.Duration
	logger    logging.Logger
}

// GeminiOptions configures a GeminiClient.
type GeminiOptions struct {
	APIKey          string
	Model           string
	MaxOutputTokens int
	Timeout         time.Duration
}

// NewGeminiClient creates a Gemini client. The API key is required.
func NewGeminiClient(ctx context.Context, opts GeminiOptions, logger logging.Logger) (*GeminiClient, error) {
	if opts.APIKey == "" {
		return nil, fmt.Errorf("GEMINI_API_KEY environment variable not set")
	}
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if logger == nil {
		logger = logging.GetLogger()
	}

	client, err := genai.NewClient(ctx, option.WithAPIKey(opts.APIKey))
	if err != nil {
		return nil, fmt.Errorf("failed to create Gemini client: %w", err)
	}

	return &GeminiClient{
		client:    client,
		modelName: opts.Model,
		maxTokens: int32(opts.MaxOutputTokens),
		timeout:   opts.Timeout,
		logger:    logger.WithField("component", "GeminiClient"),
	}, nil
}

// Generate sends prompt with system as the system instruction and returns the
// concatenated text parts of the first candidate.
func (c *GeminiClient) Generate(ctx context.Context, system, prompt string) (string, error) {
	if c.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, c.timeout)
		defer cancel()
	}

	model := c.client.GenerativeModel(c.modelName)
	if system != "" {
		model.SystemInstruction = &genai.Content{Parts: []genai.Part{genai.Text(system)}}
	}
	if c.maxTokens > 0 {
		model.SetMaxOutputTokens(c.maxTokens)
	}

	c.logger.Debug("Sending prompt to Gemini",
		logging.Field{Key: "model", Value: c.modelName},
		logging.Field{Key: "prompt_length", Value: len(prompt)})

	resp, err := model.GenerateContent(ctx, genai.Text(prompt))
	if err != nil {
		return "", fmt.Errorf("Gemini API error: %w", err)
	}
	if resp == nil || len(resp.Candidates) == 0 || resp.Candidates[0].Content == nil {
		return "", ErrEmptyResponse
	}

	var b strings.Builder
	for _, part := range resp.Candidates[0].Content.Parts {
		if text, ok := part.(genai.Text); ok {
			b.WriteString(string(text))
		}
	}
	if strings.TrimSpace(b.String()) == "" {
		return "", ErrEmptyResponse
	}
	return b.String(), nil
}

// Close releases the underlying connection.
func (c *GeminiClient) Close() error {
	return c.client.Close()
}
