package openai

import (
	"context"
	"encoding/base64"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/google/uuid"
	openai "github.com/sashabaranov/go-openai"

	"github.com/kirillkom/vlm-transcriber/internal/core/domain"
	"github.com/kirillkom/vlm-transcriber/internal/infrastructure/imaging"
	"github.com/kirillkom/vlm-transcriber/internal/infrastructure/resilience"
)

// Config for the vision client. BaseURL accepts any OpenAI-compatible
// endpoint.
type Config struct {
	APIKey      string
	BaseURL     string
	Model       string
	Temperature float32
	MaxTokens   int
	Timeout     time.Duration

	// PlaceholderConfidence is reported on success. The remote model does
	// not supply a confidence score, so this is a fixed stand-in.
	PlaceholderConfidence float64
}

// Client implements ports.VisionExtractor against an OpenAI-compatible
// chat-completions API with multimodal messages.
type Client struct {
	cfg    Config
	api    *openai.Client
	exec   *resilience.Executor
	logger *slog.Logger
}

func New(cfg Config, exec *resilience.Executor, logger *slog.Logger) *Client {
	if cfg.Model == "" {
		cfg.Model = "gpt-4o-mini"
	}
	if cfg.Timeout <= 0 {
		cfg.Timeout = 60 * time.Second
	}
	if cfg.PlaceholderConfidence <= 0 {
		cfg.PlaceholderConfidence = 1.0
	}
	if exec == nil {
		exec = resilience.NewExecutor(resilience.DefaultConfig())
	}
	if logger == nil {
		logger = slog.Default()
	}

	clientConfig := openai.DefaultConfig(cfg.APIKey)
	if cfg.BaseURL != "" {
		clientConfig.BaseURL = strings.TrimRight(cfg.BaseURL, "/")
	}

	return &Client{
		cfg:    cfg,
		api:    openai.NewClientWithConfig(clientConfig),
		exec:   exec,
		logger: logger,
	}
}

// ExtractText sends one image to the model and returns the extracted text.
// The format sniff runs first and is never retried; transient API errors
// and empty responses go through the retry executor.
func (c *Client) ExtractText(ctx context.Context, item domain.ImageItem) (domain.Extraction, error) {
	rid := uuid.NewString()
	start := time.Now()

	format, err := imaging.DetectFormat(item.Content)
	if err != nil {
		c.logger.Warn("vision.extract.bad_format", "req_id", rid, "filename", item.Filename, "error", err)
		return domain.Extraction{}, err
	}

	c.logger.Info("vision.extract.start",
		"req_id", rid,
		"filename", item.Filename,
		"format", format,
		"bytes", item.Size,
		"model", c.cfg.Model,
		"has_context", item.Description != "",
	)

	var text string
	err = c.exec.Execute(ctx, "vision.extract", func(ctx context.Context) error {
		attempt, err := c.callModel(ctx, item, format)
		if err != nil {
			return domain.WrapError(domain.ErrTransient, "vision.extract", err)
		}
		if strings.TrimSpace(attempt) == "" {
			return domain.WrapError(domain.ErrTransient, "vision.extract",
				fmt.Errorf("model returned no text"))
		}
		text = attempt
		return nil
	}, transientClassifier)
	if err != nil {
		c.logger.Error("vision.extract.failed",
			"req_id", rid,
			"filename", item.Filename,
			"error", err,
			"elapsed_ms", time.Since(start).Milliseconds(),
		)
		return domain.Extraction{}, err
	}

	elapsed := time.Since(start)
	c.logger.Info("vision.extract.ok",
		"req_id", rid,
		"filename", item.Filename,
		"text_len", len(text),
		"elapsed_ms", elapsed.Milliseconds(),
	)
	return domain.Extraction{
		Text:       text,
		Elapsed:    elapsed,
		Confidence: c.cfg.PlaceholderConfidence,
	}, nil
}

func (c *Client) callModel(ctx context.Context, item domain.ImageItem, format string) (string, error) {
	callCtx := ctx
	if c.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		callCtx, cancel = context.WithTimeout(ctx, c.cfg.Timeout)
		defer cancel()
	}

	encoded := base64.StdEncoding.EncodeToString(item.Content)
	message := openai.ChatCompletionMessage{
		Role: openai.ChatMessageRoleUser,
		MultiContent: []openai.ChatMessagePart{
			{
				Type: openai.ChatMessagePartTypeText,
				Text: buildPrompt(item.Description),
			},
			{
				Type: openai.ChatMessagePartTypeImageURL,
				ImageURL: &openai.ChatMessageImageURL{
					URL: fmt.Sprintf("data:image/%s;base64,%s", format, encoded),
				},
			},
		},
	}

	resp, err := c.api.CreateChatCompletion(callCtx, openai.ChatCompletionRequest{
		Model:       c.cfg.Model,
		Messages:    []openai.ChatCompletionMessage{message},
		Temperature: c.cfg.Temperature,
		MaxTokens:   c.cfg.MaxTokens,
	})
	if err != nil {
		return "", fmt.Errorf("chat completion: %w", err)
	}
	if len(resp.Choices) == 0 {
		return "", fmt.Errorf("no choices in model response")
	}
	return resp.Choices[0].Message.Content, nil
}

func transientClassifier(err error) resilience.ErrorClassification {
	return resilience.ErrorClassification{
		Retryable:     domain.IsKind(err, domain.ErrTransient),
		RecordFailure: true,
	}
}
