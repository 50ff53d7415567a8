// Package llm provides the language-model completion client.
package llm

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/anthropics/anthropic-sdk-go"
	"github.com/anthropics/anthropic-sdk-go/option"
	"github.com/phuslu/log"

	"aigist/internal/domain"
)

// Config configures the Claude completion client.
type Config struct {
	APIKey      string
	Model       string
	Temperature float64
	Timeout     time.Duration
}

// Claude implements domain.Completer against the Anthropic Messages API.
type Claude struct {
	client      anthropic.Client
	model       string
	temperature float64
	timeout     time.Duration
	logger      log.Logger
}

func New(cfg Config, logger log.Logger) (*Claude, error) {
	if cfg.APIKey == "" {
		return nil, errors.New("missing Anthropic API key")
	}
	if cfg.Model == "" {
		cfg.Model = "claude-sonnet-4-20250514"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}

	client := anthropic.NewClient(option.WithAPIKey(cfg.APIKey))

	logger.Debug().
		Str("model", cfg.Model).
		Dur("timeout", cfg.Timeout).
		Msg("claude completion client initialized")

	return &Claude{
		client:      client,
		model:       cfg.Model,
		temperature: cfg.Temperature,
		timeout:     cfg.Timeout,
		logger:      logger,
	}, nil
}

// Complete generates a completion for prompt under the given system
// instruction. Upstream failures surface as ErrCompletionUnavailable; the
// engine does not retry on top of this call.
func (c *Claude) Complete(ctx context.Context, system, prompt string, maxTokens int) (string, error) {
	if strings.TrimSpace(prompt) == "" {
		return "", errors.New("prompt cannot be empty")
	}
	if maxTokens <= 0 {
		maxTokens = 1024
	}

	callCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	params := anthropic.MessageNewParams{
		Model:     anthropic.Model(c.model),
		MaxTokens: int64(maxTokens),
		Messages: []anthropic.MessageParam{
			anthropic.NewUserMessage(anthropic.NewTextBlock(prompt)),
		},
	}
	if c.temperature > 0 {
		params.Temperature = anthropic.Float(c.temperature)
	}
	if system != "" {
		params.System = []anthropic.TextBlockParam{{Text: system}}
	}

	start := time.Now()
	resp, err := c.client.Messages.New(callCtx, params)
	if err != nil {
		c.logger.Error().Err(err).Str("model", c.model).Msg("completion call failed")
		return "", fmt.Errorf("%w: %v", domain.ErrCompletionUnavailable, err)
	}

	var text strings.Builder
	for _, block := range resp.Content {
		if block.Type == "text" {
			text.WriteString(block.Text)
		}
	}
	if text.Len() == 0 {
		return "", fmt.Errorf("%w: empty response", domain.ErrCompletionUnavailable)
	}

	c.logger.Debug().
		Int("prompt_length", len(prompt)).
		Int("response_length", text.Len()).
		Dur("duration", time.Since(start)).
		Msg("completion generated")
	return strings.TrimSpace(text.String()), nil
}
