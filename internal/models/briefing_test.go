package models

import (
	"encoding/json"
	"reflect"
	"testing"
)

func completeBriefing() Briefing {
	return Briefing{
		Specialty:       "Cardiologia",
		Topic:           "Hipertensão em jovens",
		Objective:       "Vender check-up",
		TargetAudience:  "Homens 25-40",
		Tone:            "Técnico",
		Offer:           "Consulta presencial",
		CTAType:         "Agendar",
		MandatoryPhrase: "Pressão alta não avisa.",
	}
}

func TestNewBriefingDefaults(t *testing.T) {
	b := NewBriefing()
	if b.Tone != "Provocativo" {
		t.Errorf("expected default tone Provocativo, got %q", b.Tone)
	}
	if b.CTAType != "Agendar" {
		t.Errorf("expected default cta Agendar, got %q", b.CTAType)
	}
	if b.IsComplete() {
		t.Error("empty briefing must not be complete")
	}
	if got := len(b.MissingFields()); got != len(RequiredBriefingFields) {
		t.Errorf("expected %d missing fields, got %d", len(RequiredBriefingFields), got)
	}
}

func TestBriefingMissingEachRequiredField(t *testing.T) {
	for _, field := range RequiredBriefingFields {
		for _, blank := range []string{"", "   ", "\t\n"} {
			b := completeBriefing().With(field, blank)
			if b.IsComplete() {
				t.Errorf("field %s=%q should make the briefing incomplete", field, blank)
			}
			missing := b.MissingFields()
			if len(missing) != 1 || missing[0] != field {
				t.Errorf("expected only %s missing, got %v", field, missing)
			}
		}
	}
}

func TestBriefingOptionalFields(t *testing.T) {
	b := completeBriefing().With(FieldReference, "").With(FieldTone, "").With(FieldCTAType, "")
	if !b.IsComplete() {
		t.Errorf("reference, tone and cta are not required, missing=%v", b.MissingFields())
	}
}

func TestBriefingWithDoesNotMutate(t *testing.T) {
	original := completeBriefing()
	updated := original.With(FieldTopic, "Outro tema")
	if original.Topic != "Hipertensão em jovens" {
		t.Errorf("original was mutated: %q", original.Topic)
	}
	if updated.Topic != "Outro tema" {
		t.Errorf("update not applied: %q", updated.Topic)
	}
}

func TestBriefingGetWithRoundTrip(t *testing.T) {
	var b Briefing
	for i, f := range AllBriefingFields {
		b = b.With(f, string(rune('a'+i)))
	}
	for i, f := range AllBriefingFields {
		if got := b.Get(f); got != string(rune('a'+i)) {
			t.Errorf("field %s: expected %q, got %q", f, string(rune('a'+i)), got)
		}
	}
}

func TestParseBriefingField(t *testing.T) {
	f, err := ParseBriefingField("targetAudience")
	if err != nil || f != FieldTargetAudience {
		t.Fatalf("expected targetAudience, got %q err=%v", f, err)
	}
	if _, err := ParseBriefingField("target_audience"); err == nil {
		t.Error("expected error for unknown field name")
	}
}

func TestBriefingJSONUsesFormNames(t *testing.T) {
	data, err := json.Marshal(completeBriefing())
	if err != nil {
		t.Fatalf("marshal failed: %v", err)
	}
	var raw map[string]any
	if err := json.Unmarshal(data, &raw); err != nil {
		t.Fatalf("unmarshal failed: %v", err)
	}
	for _, f := range AllBriefingFields {
		if _, ok := raw[string(f)]; !ok {
			t.Errorf("json is missing key %s", f)
		}
	}
}

func TestDemoBriefingIsComplete(t *testing.T) {
	if !DemoBriefing.IsComplete() {
		t.Errorf("demo briefing incomplete: %v", DemoBriefing.MissingFields())
	}
	if _, ok := FindStrategy(DemoStrategy); !ok {
		t.Errorf("demo strategy %q not in catalog", DemoStrategy)
	}
}

func TestCatalog(t *testing.T) {
	c := GetCatalog()
	if len(c.Strategies) != 5 {
		t.Errorf("expected 5 strategies, got %d", len(c.Strategies))
	}
	if c.SlideCount != 7 {
		t.Errorf("expected 7 slides, got %d", c.SlideCount)
	}
	if _, ok := FindStrategy("Nope"); ok {
		t.Error("unknown strategy should not be found")
	}
}

func TestCarouselWithImagePrompts(t *testing.T) {
	c := CarouselResponse{
		Status: StatusOK,
		Slides: []Slide{
			{SlideNumber: 1, Headline: "a"},
			{SlideNumber: 2, Headline: "b"},
		},
	}
	merged := c.WithImagePrompts(map[int]string{2: "prompt two"})

	if c.Slides[1].ImagePrompt != "" {
		t.Error("original slides must stay untouched")
	}
	if merged.Slides[1].ImagePrompt != "prompt two" {
		t.Errorf("expected prompt on slide 2, got %q", merged.Slides[1].ImagePrompt)
	}
	if merged.Slides[0].ImagePrompt != "" {
		t.Errorf("slide 1 should have no prompt, got %q", merged.Slides[0].ImagePrompt)
	}
}

func TestSlideImagePromptOmittedWhenEmpty(t *testing.T) {
	data, _ := json.Marshal(Slide{SlideNumber: 1})
	var raw map[string]any
	_ = json.Unmarshal(data, &raw)
	if _, ok := raw["imagePrompt"]; ok {
		t.Error("empty imagePrompt should be omitted")
	}

	s := Slide{SlideNumber: 3, VisualDirection: "Consultório", VisualElementSuggestion: "Estetoscópio"}
	if got := s.VisualContext(); got != "Consultório. Suggestion: Estetoscópio" {
		t.Errorf("unexpected visual context %q", got)
	}
}

func TestCarouselResponseDecodesModelOutput(t *testing.T) {
	input := `{"status":"need_briefing","missing_fields":["topic","offer"],"carousel_title":"",
	"strategy":"","objective":"","target_audience":"","tone":"","offer":"","cta_type":"",
	"slides":[],"quality_check":{"envolvente":false,"denso_nao_obvio":false,"estrutura_ok":false,"cta_alinhado":false,"notes":""}}`

	var c CarouselResponse
	if err := json.Unmarshal([]byte(input), &c); err != nil {
		t.Fatalf("decode failed: %v", err)
	}
	if !c.NeedsBriefing() {
		t.Error("expected need_briefing status")
	}
	if !reflect.DeepEqual(c.MissingFields, []string{"topic", "offer"}) {
		t.Errorf("unexpected missing fields %v", c.MissingFields)
	}
}
