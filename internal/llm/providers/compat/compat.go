// internal/llm/providers/compat/compat.go
package compat

import (
	"context"
	"errors"
	"fmt"

	"github.com/openai/openai-go"
	"github.com/openai/openai-go/option"

	"github.com/doutorgpt/carousel-maker/internal/llm"
)

// preset describes an OpenAI-compatible endpoint.
type preset struct {
	baseURL      string
	defaultModel string
	// strictSchema is false for endpoints that only accept json_object.
	strictSchema bool
}

var presets = map[string]preset{
	"openai": {
		defaultModel: "gpt-4o-mini",
		strictSchema: true,
	},
	"openrouter": {
		baseURL:      "https://openrouter.ai/api/v1",
		defaultModel: "google/gemini-2.5-flash",
		strictSchema: true,
	},
	"grok": {
		baseURL:      "https://api.x.ai/v1",
		defaultModel: "grok-3-mini",
		strictSchema: true,
	},
	"qwen": {
		baseURL:      "https://dashscope.aliyuncs.com/compatible-mode/v1",
		defaultModel: "qwen-plus",
	},
	"githubmodels": {
		baseURL:      "https://models.inference.ai.azure.com",
		defaultModel: "gpt-4o-mini",
	},
	"anthropic": {
		baseURL:      "https://api.anthropic.com/v1/",
		defaultModel: "claude-sonnet-4-5",
	},
	"glm": {
		baseURL:      "https://open.bigmodel.cn/api/paas/v4",
		defaultModel: "glm-4-flash",
	},
}

func init() {
	for name, p := range presets {
		name, p := name, p
		llm.Register(name, func() llm.Provider {
			return &Provider{name: name, preset: p}
		})
	}
}

// Provider speaks the chat completions API.
type Provider struct {
	name         string
	preset       preset
	client       openai.Client
	defaultModel string
	ready        bool
}

// New returns an uninitialised provider for an arbitrary compatible endpoint.
func New(name, baseURL string, strictSchema bool) *Provider {
	return &Provider{name: name, preset: preset{baseURL: baseURL, strictSchema: strictSchema}}
}

func (p *Provider) Initialize(config map[string]string) error {
	apiKey := config["api_key"]
	if apiKey == "" {
		return llm.ErrMissingAPIKey
	}

	p.defaultModel = p.preset.defaultModel
	if model := config["default_model"]; model != "" {
		p.defaultModel = model
	}
	if p.defaultModel == "" {
		return errors.New("openai provider needs a default_model")
	}

	opts := []option.RequestOption{option.WithAPIKey(apiKey)}
	baseURL := p.preset.baseURL
	if v := config["base_url"]; v != "" {
		baseURL = v
	}
	if baseURL != "" {
		opts = append(opts, option.WithBaseURL(baseURL))
	}

	p.client = openai.NewClient(opts...)
	p.ready = true
	return nil
}

func (p *Provider) GetName() string {
	return p.name
}

func (p *Provider) GetDefaultModel() string {
	return p.defaultModel
}

func (p *Provider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	if !p.ready {
		return nil, fmt.Errorf("%s provider is not initialized", p.name)
	}

	model := req.Model
	if model == "" {
		model = p.defaultModel
	}

	var msgs []openai.ChatCompletionMessageParamUnion
	if req.SystemPrompt != "" {
		msgs = append(msgs, openai.SystemMessage(req.SystemPrompt))
	}
	msgs = append(msgs, openai.UserMessage(req.Prompt))

	params := openai.ChatCompletionNewParams{
		Model:       openai.ChatModel(model),
		Messages:    msgs,
		Temperature: openai.Float(float64(req.Temperature)),
	}
	if req.ResponseSchema != nil {
		params.ResponseFormat = p.responseFormat(req)
	}

	resp, err := p.client.Chat.Completions.New(ctx, params)
	if err != nil {
		return nil, fmt.Errorf("%s chat completion: %w", p.name, err)
	}
	if len(resp.Choices) == 0 {
		return &llm.CompletionResponse{ModelName: model, ProviderName: p.name}, nil
	}

	return &llm.CompletionResponse{
		Text:         resp.Choices[0].Message.Content,
		FinishReason: resp.Choices[0].FinishReason,
		PromptTokens: int(resp.Usage.PromptTokens),
		OutputTokens: int(resp.Usage.CompletionTokens),
		ModelName:    model,
		ProviderName: p.name,
	}, nil
}

func (p *Provider) responseFormat(req llm.CompletionRequest) openai.ChatCompletionNewParamsResponseFormatUnion {
	if !p.preset.strictSchema {
		return openai.ChatCompletionNewParamsResponseFormatUnion{
			OfJSONObject: &openai.ResponseFormatJSONObjectParam{},
		}
	}

	name := req.SchemaName
	if name == "" {
		name = "response"
	}
	return openai.ChatCompletionNewParamsResponseFormatUnion{
		OfJSONSchema: &openai.ResponseFormatJSONSchemaParam{
			JSONSchema: openai.ResponseFormatJSONSchemaJSONSchemaParam{
				Name:   name,
				Schema: req.ResponseSchema.Map(),
				Strict: openai.Bool(true),
			},
		},
	}
}
