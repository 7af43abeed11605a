package llm

import (
	"context"
	"errors"
	"reflect"
	"testing"
)

type stubProvider struct {
	initialized map[string]string
}

func (s *stubProvider) Initialize(config map[string]string) error {
	if config["api_key"] == "" {
		return ErrMissingAPIKey
	}
	s.initialized = config
	return nil
}

func (s *stubProvider) GetName() string         { return "stub" }
func (s *stubProvider) GetDefaultModel() string { return "stub-model" }

func (s *stubProvider) CompleteText(ctx context.Context, req CompletionRequest) (*CompletionResponse, error) {
	return &CompletionResponse{Text: req.Prompt}, nil
}

func TestRegistry(t *testing.T) {
	r := NewRegistry()
	r.Register("stub", func() Provider { return &stubProvider{} })

	if !r.Has("stub") || r.Has("other") {
		t.Fatal("Has reported the wrong registrations")
	}

	p, err := r.GetProvider("stub", map[string]string{"api_key": "k"})
	if err != nil {
		t.Fatalf("GetProvider failed: %v", err)
	}
	if p.GetName() != "stub" {
		t.Errorf("unexpected provider %q", p.GetName())
	}

	if _, err := r.GetProvider("stub", map[string]string{}); !errors.Is(err, ErrMissingAPIKey) {
		t.Errorf("expected ErrMissingAPIKey, got %v", err)
	}
	if _, err := r.GetProvider("nope", nil); !errors.Is(err, ErrUnknownProvider) {
		t.Errorf("expected ErrUnknownProvider, got %v", err)
	}

	r.Register("alpha", func() Provider { return &stubProvider{} })
	if got := r.GetAvailableProviders(); !reflect.DeepEqual(got, []string{"alpha", "stub"}) {
		t.Errorf("unexpected provider list %v", got)
	}
}

func TestObjectSchema(t *testing.T) {
	s := Object(
		Prop("status", Enum("ok", "need_briefing")),
		Prop("count", Integer()),
		Prop("tags", ArrayOf(String())),
	)

	if !reflect.DeepEqual(s.Required, []string{"status", "count", "tags"}) {
		t.Errorf("unexpected required list %v", s.Required)
	}
	if !reflect.DeepEqual(s.Order, s.Required) {
		t.Errorf("order should follow declaration, got %v", s.Order)
	}

	m := s.Map()
	if m["type"] != "object" {
		t.Errorf("expected object type, got %v", m["type"])
	}
	if m["additionalProperties"] != false {
		t.Errorf("objects should be closed, got %v", m["additionalProperties"])
	}
	props := m["properties"].(map[string]any)
	tags := props["tags"].(map[string]any)
	if tags["type"] != "array" || tags["items"].(map[string]any)["type"] != "string" {
		t.Errorf("unexpected array schema %v", tags)
	}
	if _, ok := m["Order"]; ok {
		t.Error("Order must not leak into the JSON document")
	}
}
