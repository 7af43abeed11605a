// internal/llm/interface.go
package llm

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
)

var (
	ErrUnknownProvider = errors.New("unknown LLM provider")
	// ErrMissingAPIKey is returned by Initialize when no credential is configured.
	ErrMissingAPIKey = errors.New("api key is missing")
)

// CompletionRequest is the provider-neutral request.
type CompletionRequest struct {
	Prompt       string  `json:"prompt"`
	SystemPrompt string  `json:"system_prompt,omitempty"`
	Temperature  float32 `json:"temperature,omitempty"`
	Model        string  `json:"model,omitempty"`
	// ResponseSchema asks the provider for JSON constrained to this schema.
	// nil means free text.
	ResponseSchema *Schema `json:"response_schema,omitempty"`
	SchemaName     string  `json:"schema_name,omitempty"`
}

// CompletionResponse is the provider-neutral reply.
type CompletionResponse struct {
	Text         string `json:"text"`
	FinishReason string `json:"finish_reason,omitempty"`
	PromptTokens int    `json:"prompt_tokens,omitempty"`
	OutputTokens int    `json:"output_tokens,omitempty"`
	ModelName    string `json:"model_name,omitempty"`
	ProviderName string `json:"provider_name,omitempty"`
}

// Provider is implemented by every model backend.
type Provider interface {
	// Initialize receives api_key, default_model and optionally base_url.
	Initialize(config map[string]string) error

	GetName() string

	GetDefaultModel() string

	CompleteText(ctx context.Context, req CompletionRequest) (*CompletionResponse, error)
}

// ProviderFactory builds an uninitialised provider.
type ProviderFactory func() Provider

// Registry maps provider names to factories.
type Registry struct {
	mu        sync.RWMutex
	providers map[string]ProviderFactory
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{providers: make(map[string]ProviderFactory)}
}

// DefaultRegistry is filled by the provider packages' init functions.
var DefaultRegistry = NewRegistry()

// Register adds or replaces a provider factory.
func (r *Registry) Register(name string, factory ProviderFactory) {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.providers[name] = factory
}

// GetProvider builds and initialises the named provider.
func (r *Registry) GetProvider(name string, config map[string]string) (Provider, error) {
	r.mu.RLock()
	factory, exists := r.providers[name]
	r.mu.RUnlock()
	if !exists {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProvider, name)
	}

	provider := factory()
	if err := provider.Initialize(config); err != nil {
		return nil, err
	}
	return provider, nil
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	r.mu.RLock()
	defer r.mu.RUnlock()
	_, ok := r.providers[name]
	return ok
}

// GetAvailableProviders returns the registered names, sorted.
func (r *Registry) GetAvailableProviders() []string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	names := make([]string, 0, len(r.providers))
	for name := range r.providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

// Register adds a factory to DefaultRegistry.
func Register(name string, factory ProviderFactory) {
	DefaultRegistry.Register(name, factory)
}

// GetProvider builds a provider from DefaultRegistry.
func GetProvider(name string, config map[string]string) (Provider, error) {
	return DefaultRegistry.GetProvider(name, config)
}

// ListProviders returns the names in DefaultRegistry.
func ListProviders() []string {
	return DefaultRegistry.GetAvailableProviders()
}
