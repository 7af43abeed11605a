// internal/generation/client.go
package generation

import (
	"context"
	"strings"
	"time"

	apperrors "github.com/doutorgpt/carousel-maker/internal/errors"
	"github.com/doutorgpt/carousel-maker/internal/llm"
	"github.com/doutorgpt/carousel-maker/internal/logger"
	"github.com/doutorgpt/carousel-maker/internal/metrics"
	"github.com/doutorgpt/carousel-maker/internal/models"
)

const (
	kindCarousel    = "carousel"
	kindImagePrompt = "image_prompt"
)

var (
	// ErrMissingCredential is returned before any network attempt when no API key is configured.
	ErrMissingCredential = apperrors.NewConfigurationError("API Key is missing.", nil)
	// ErrEmptyResponse is returned when the model replies with no text.
	ErrEmptyResponse = apperrors.NewContentError("No response from AI", nil)
)

// Options configures a Client.
type Options struct {
	// Provider is nil when no credential is configured.
	Provider     llm.Provider
	ProviderName string
	Model        string
	// Temperatures are sent as given; zero is a valid setting.
	CarouselTemperature float32
	PromptTemperature   float32
}

// Client issues the two model requests the application needs.
type Client struct {
	provider            llm.Provider
	providerName        string
	model               string
	carouselTemperature float32
	promptTemperature   float32
	validator           *carouselValidator
}

// Status describes the configured model backend.
type Status struct {
	Provider  string   `json:"provider"`
	Model     string   `json:"model"`
	Ready     bool     `json:"ready"`
	State     string   `json:"state"`
	Providers []string `json:"available_providers"`
}

// NewClient builds a client. A nil provider is allowed and makes every call
// fail with ErrMissingCredential.
func NewClient(opts Options) (*Client, error) {
	validator, err := newCarouselValidator()
	if err != nil {
		return nil, err
	}

	c := &Client{
		provider:            opts.Provider,
		providerName:        opts.ProviderName,
		model:               opts.Model,
		carouselTemperature: opts.CarouselTemperature,
		promptTemperature:   opts.PromptTemperature,
		validator:           validator,
	}
	if c.provider != nil {
		if c.providerName == "" {
			c.providerName = c.provider.GetName()
		}
		if c.model == "" {
			c.model = c.provider.GetDefaultModel()
		}
	}
	return c, nil
}

// Status reports provider, model and whether a credential is present.
func (c *Client) Status() Status {
	s := Status{
		Provider:  c.providerName,
		Model:     c.model,
		Ready:     c.provider != nil,
		State:     "Ready",
		Providers: llm.ListProviders(),
	}
	if !s.Ready {
		s.State = "API key not configured"
	}
	return s
}

// GenerateCarousel asks the model for a seven-slide carousel.
// A need_briefing reply is returned as a value, not an error.
func (c *Client) GenerateCarousel(ctx context.Context, briefing models.Briefing, strategy string) (*models.CarouselResponse, error) {
	if c.provider == nil {
		return nil, ErrMissingCredential
	}

	text, err := c.complete(ctx, kindCarousel, llm.CompletionRequest{
		SystemPrompt:   carouselSystemInstruction,
		Prompt:         buildCarouselPrompt(briefing, strategy),
		Model:          c.model,
		Temperature:    c.carouselTemperature,
		ResponseSchema: CarouselSchema,
		SchemaName:     carouselSchemaName,
	})
	if err != nil {
		return nil, err
	}

	carousel, err := c.validator.decode(cleanJSONString(text))
	if err != nil {
		logger.Error(ctx, "carousel reply rejected", err, "provider", c.providerName)
		return nil, apperrors.NewContentError("invalid carousel from AI", err)
	}

	logger.Info(ctx, "carousel generated",
		"status", carousel.Status,
		"slides", len(carousel.Slides),
		"strategy", strategy)
	return carousel, nil
}

// GenerateImagePrompt turns a slide's visual context into an image-generation prompt.
func (c *Client) GenerateImagePrompt(ctx context.Context, visualContext string) (string, error) {
	if c.provider == nil {
		return "", ErrMissingCredential
	}

	text, err := c.complete(ctx, kindImagePrompt, llm.CompletionRequest{
		SystemPrompt: imagePromptSystemInstruction,
		Prompt:       buildImagePrompt(visualContext),
		Model:        c.model,
		Temperature:  c.promptTemperature,
	})
	if err != nil {
		return "", err
	}

	return cleanImagePrompt(text), nil
}

func (c *Client) complete(ctx context.Context, kind string, req llm.CompletionRequest) (string, error) {
	start := time.Now()
	resp, err := c.provider.CompleteText(ctx, req)
	metrics.RecordLLMCall(c.providerName, kind, time.Since(start))

	if err != nil {
		logger.Error(ctx, "LLM call failed", err, "provider", c.providerName, "kind", kind)
		return "", apperrors.NewTransportError("LLM call failed", err)
	}
	if resp == nil || strings.TrimSpace(resp.Text) == "" {
		return "", ErrEmptyResponse
	}

	logger.Debug(ctx, "LLM call finished",
		"provider", c.providerName,
		"kind", kind,
		"prompt_tokens", resp.PromptTokens,
		"output_tokens", resp.OutputTokens,
		"elapsed", time.Since(start))
	return resp.Text, nil
}
