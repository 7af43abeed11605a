package generation

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"testing"

	"github.com/doutorgpt/carousel-maker/internal/config"
	apperrors "github.com/doutorgpt/carousel-maker/internal/errors"
	"github.com/doutorgpt/carousel-maker/internal/llm"
	"github.com/doutorgpt/carousel-maker/internal/models"
)

type fakeProvider struct {
	text     string
	err      error
	requests []llm.CompletionRequest
}

func (f *fakeProvider) Initialize(map[string]string) error { return nil }
func (f *fakeProvider) GetName() string                    { return "fake" }
func (f *fakeProvider) GetDefaultModel() string            { return "fake-model" }

func (f *fakeProvider) CompleteText(ctx context.Context, req llm.CompletionRequest) (*llm.CompletionResponse, error) {
	f.requests = append(f.requests, req)
	if f.err != nil {
		return nil, f.err
	}
	return &llm.CompletionResponse{Text: f.text}, nil
}

func sampleCarousel(n int) models.CarouselResponse {
	c := models.CarouselResponse{
		Status:         models.StatusOK,
		MissingFields:  []string{},
		CarouselTitle:  "Insulina sem mitos",
		Strategy:       "Contrarian Authority",
		Objective:      "Atrair leads",
		TargetAudience: "Mulheres 35-50",
		Tone:           "Provocativo",
		Offer:          "Programa 90 dias",
		CTAType:        "Agendar",
		QualityCheck:   models.QualityCheck{Envolvente: true, EstruturaOK: true, Notes: "ok"},
	}
	for i := 1; i <= n; i++ {
		c.Slides = append(c.Slides, models.Slide{
			SlideNumber:             i,
			Headline:                fmt.Sprintf("Headline %d", i),
			Body:                    "Corpo curto.",
			RetentionBridge:         "Continue",
			VisualDirection:         "Consultório",
			VisualElementSuggestion: "Estetoscópio",
		})
	}
	return c
}

func marshal(t *testing.T, v any) string {
	t.Helper()
	data, err := json.Marshal(v)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return string(data)
}

func newTestClient(t *testing.T, p llm.Provider) *Client {
	t.Helper()
	c, err := NewClient(Options{
		Provider:            p,
		CarouselTemperature: config.DefaultCarouselTemperature,
		PromptTemperature:   config.DefaultPromptTemperature,
	})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	return c
}

func TestGenerateCarouselMissingCredential(t *testing.T) {
	c := newTestClient(t, nil)

	_, err := c.GenerateCarousel(context.Background(), models.DemoBriefing, models.DemoStrategy)
	if !errors.Is(err, ErrMissingCredential) || !apperrors.IsConfigurationError(err) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if _, err := c.GenerateImagePrompt(context.Background(), "x"); !errors.Is(err, ErrMissingCredential) {
		t.Fatalf("expected configuration error, got %v", err)
	}
	if c.Status().Ready {
		t.Error("status should report not ready")
	}
}

func TestGenerateCarouselOK(t *testing.T) {
	p := &fakeProvider{text: marshal(t, sampleCarousel(7))}
	c := newTestClient(t, p)

	got, err := c.GenerateCarousel(context.Background(), models.DemoBriefing, models.DemoStrategy)
	if err != nil {
		t.Fatalf("GenerateCarousel: %v", err)
	}
	if got.Status != models.StatusOK || len(got.Slides) != 7 {
		t.Fatalf("unexpected carousel %+v", got)
	}

	req := p.requests[0]
	if req.Temperature != config.DefaultCarouselTemperature {
		t.Errorf("expected temperature 0.3, got %v", req.Temperature)
	}
	if req.ResponseSchema != CarouselSchema {
		t.Error("carousel requests must carry the response schema")
	}
	if req.Model != "fake-model" {
		t.Errorf("expected provider default model, got %q", req.Model)
	}
	for _, want := range []string{
		"Especialidade: Endocrinologia",
		"Frase obrigatória: " + models.DemoBriefing.MandatoryPhrase,
		"Estratégia escolhida: Contrarian Authority",
		"Slide 7: CTA “Agendar”",
	} {
		if !strings.Contains(req.Prompt, want) {
			t.Errorf("prompt missing %q", want)
		}
	}
	if !strings.Contains(req.SystemPrompt, "7 Slides") {
		t.Error("system instruction should describe the seven-slide structure")
	}
}

func TestGenerateCarouselNeedBriefingIsNotAnError(t *testing.T) {
	reply := models.CarouselResponse{
		Status:        models.StatusNeedBriefing,
		MissingFields: []string{"topic", "offer"},
		Slides:        []models.Slide{},
	}
	c := newTestClient(t, &fakeProvider{text: marshal(t, reply)})

	got, err := c.GenerateCarousel(context.Background(), models.Briefing{}, "Contrarian Authority")
	if err != nil {
		t.Fatalf("need_briefing must not be an error: %v", err)
	}
	if !got.NeedsBriefing() || len(got.MissingFields) != 2 {
		t.Errorf("unexpected reply %+v", got)
	}
}

func TestGenerateCarouselAcceptsFencedJSON(t *testing.T) {
	text := "Aqui está:\n```json\n" + marshal(t, sampleCarousel(7)) + "\n```"
	c := newTestClient(t, &fakeProvider{text: text})

	if _, err := c.GenerateCarousel(context.Background(), models.DemoBriefing, models.DemoStrategy); err != nil {
		t.Fatalf("fenced JSON should be accepted: %v", err)
	}
}

func TestGenerateCarouselFailures(t *testing.T) {
	sixSlides := marshal(t, sampleCarousel(6))

	outOfOrder := sampleCarousel(7)
	outOfOrder.Slides[2].SlideNumber = 5

	missingField := map[string]any{"status": "ok", "slides": []any{}}

	tests := []struct {
		name      string
		provider  *fakeProvider
		isType    func(error) bool
		errSubstr string
	}{
		{"transport", &fakeProvider{err: errors.New("dial tcp: refused")}, apperrors.IsTransportError, "refused"},
		{"empty", &fakeProvider{text: "  "}, apperrors.IsContentError, "No response from AI"},
		{"not json", &fakeProvider{text: "sorry, I cannot"}, apperrors.IsContentError, "not valid JSON"},
		{"schema", &fakeProvider{text: marshal(t, missingField)}, apperrors.IsContentError, "schema"},
		{"six slides", &fakeProvider{text: sixSlides}, apperrors.IsContentError, "expected 7 slides"},
		{"order", &fakeProvider{text: marshal(t, outOfOrder)}, apperrors.IsContentError, "slides[2].slide_number"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := newTestClient(t, tt.provider)
			got, err := c.GenerateCarousel(context.Background(), models.DemoBriefing, models.DemoStrategy)
			if err == nil {
				t.Fatalf("expected error, got %+v", got)
			}
			if !tt.isType(err) {
				t.Errorf("wrong error type %q for %v", apperrors.TypeOf(err), err)
			}
			if !strings.Contains(err.Error(), tt.errSubstr) {
				t.Errorf("error %q should mention %q", err.Error(), tt.errSubstr)
			}
		})
	}
}

func TestGenerateImagePrompt(t *testing.T) {
	p := &fakeProvider{text: "  [Image Prompt] Doctor smiling, natural skin texture [Image Prompt]\n"}
	c := newTestClient(t, p)

	got, err := c.GenerateImagePrompt(context.Background(), "Consultório. Suggestion: Estetoscópio")
	if err != nil {
		t.Fatalf("GenerateImagePrompt: %v", err)
	}
	if got != "Doctor smiling, natural skin texture" {
		t.Errorf("unexpected prompt %q", got)
	}

	req := p.requests[0]
	if req.Prompt != `Doctor's Input: "Consultório. Suggestion: Estetoscópio"` {
		t.Errorf("unexpected user prompt %q", req.Prompt)
	}
	if req.Temperature != config.DefaultPromptTemperature {
		t.Errorf("expected temperature 0.7, got %v", req.Temperature)
	}
	if req.ResponseSchema != nil {
		t.Error("image prompts are free text")
	}
	if !strings.Contains(req.SystemPrompt, "Medical Realism") {
		t.Error("system instruction should be the Medical Realism template")
	}
}

func TestGenerateImagePromptEmpty(t *testing.T) {
	c := newTestClient(t, &fakeProvider{text: ""})
	if _, err := c.GenerateImagePrompt(context.Background(), "x"); !errors.Is(err, ErrEmptyResponse) {
		t.Fatalf("expected ErrEmptyResponse, got %v", err)
	}
}

func TestCleanJSONString(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"```json\n{\"a\":1}\n```", `{"a":1}`},
		{"prefix {\"a\":\"}\"} trailing", `{"a":"}"}`},
		{"{\"a\":{\"b\":2}} {\"c\":3}", `{"a":{"b":2}}`},
		{"no json here", "no json here"},
		{"\ufeff {\"a\":1} ", `{"a":1}`},
		{"{\"a\":\"x ```json y ```\"}", "{\"a\":\"x ```json y ```\"}"},
		{"```\n{\"a\":\"Dr. \U0001F468\u200d\u2695\ufe0f\"}\n```", "{\"a\":\"Dr. \U0001F468\u200d\u2695\ufe0f\"}"},
	}
	for _, tt := range tests {
		if got := cleanJSONString(tt.in); got != tt.want {
			t.Errorf("cleanJSONString(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestGenerateCarouselKeepsSlideTextVerbatim(t *testing.T) {
	const (
		headline = "Fale com o \U0001F468\u200d\u2695\ufe0f hoje"
		body     = "Use ```json no código\u200b"
	)
	want := sampleCarousel(7)
	want.Slides[0].Headline = headline
	want.Slides[1].Body = body

	for name, text := range map[string]string{
		"plain":  marshal(t, want),
		"fenced": "```json\n" + marshal(t, want) + "\n```",
		"prose":  "Aqui está:\n```json\n" + marshal(t, want) + "\n```\nBom trabalho!",
	} {
		t.Run(name, func(t *testing.T) {
			c := newTestClient(t, &fakeProvider{text: text})
			got, err := c.GenerateCarousel(context.Background(), models.DemoBriefing, models.DemoStrategy)
			if err != nil {
				t.Fatalf("GenerateCarousel: %v", err)
			}
			if got.Slides[0].Headline != headline {
				t.Errorf("headline rewritten: %q", got.Slides[0].Headline)
			}
			if got.Slides[1].Body != body {
				t.Errorf("body rewritten: %q", got.Slides[1].Body)
			}
		})
	}
}

func TestNewClientKeepsZeroTemperature(t *testing.T) {
	p := &fakeProvider{text: "prompt"}
	c, err := NewClient(Options{Provider: p})
	if err != nil {
		t.Fatalf("NewClient: %v", err)
	}
	if _, err := c.GenerateImagePrompt(context.Background(), "x"); err != nil {
		t.Fatalf("GenerateImagePrompt: %v", err)
	}
	if got := p.requests[0].Temperature; got != 0 {
		t.Errorf("expected temperature 0, got %v", got)
	}
}
