// internal/models/briefing.go
package models

import (
	"fmt"
	"strings"
)

// BriefingField identifies one field of a Briefing.
type BriefingField string

const (
	FieldSpecialty       BriefingField = "specialty"
	FieldTopic           BriefingField = "topic"
	FieldObjective       BriefingField = "objective"
	FieldTargetAudience  BriefingField = "targetAudience"
	FieldTone            BriefingField = "tone"
	FieldOffer           BriefingField = "offer"
	FieldCTAType         BriefingField = "ctaType"
	FieldMandatoryPhrase BriefingField = "mandatoryPhrase"
	FieldReference       BriefingField = "reference"
)

// AllBriefingFields lists every field in form order.
var AllBriefingFields = []BriefingField{
	FieldSpecialty,
	FieldTopic,
	FieldObjective,
	FieldTargetAudience,
	FieldTone,
	FieldOffer,
	FieldCTAType,
	FieldMandatoryPhrase,
	FieldReference,
}

// RequiredBriefingFields are the fields that gate generation.
// Tone and ctaType always carry a selected option, reference is optional.
var RequiredBriefingFields = []BriefingField{
	FieldSpecialty,
	FieldTopic,
	FieldObjective,
	FieldTargetAudience,
	FieldOffer,
	FieldMandatoryPhrase,
}

// ParseBriefingField maps a wire name to its field identifier.
func ParseBriefingField(name string) (BriefingField, error) {
	for _, f := range AllBriefingFields {
		if string(f) == name {
			return f, nil
		}
	}
	return "", fmt.Errorf("unknown briefing field: %q", name)
}

// Briefing is the creative input of one carousel.
type Briefing struct {
	Specialty       string `json:"specialty"`
	Topic           string `json:"topic"`
	Objective       string `json:"objective"`
	TargetAudience  string `json:"targetAudience"`
	Tone            string `json:"tone"`
	Offer           string `json:"offer"`
	CTAType         string `json:"ctaType"`
	MandatoryPhrase string `json:"mandatoryPhrase"`
	Reference       string `json:"reference"`
}

// NewBriefing returns the empty form with the first tone and CTA preselected.
func NewBriefing() Briefing {
	return Briefing{
		Tone:    ToneOptions[0],
		CTAType: CTAOptions[0],
	}
}

// Get returns the value of a single field.
func (b Briefing) Get(field BriefingField) string {
	switch field {
	case FieldSpecialty:
		return b.Specialty
	case FieldTopic:
		return b.Topic
	case FieldObjective:
		return b.Objective
	case FieldTargetAudience:
		return b.TargetAudience
	case FieldTone:
		return b.Tone
	case FieldOffer:
		return b.Offer
	case FieldCTAType:
		return b.CTAType
	case FieldMandatoryPhrase:
		return b.MandatoryPhrase
	case FieldReference:
		return b.Reference
	}
	return ""
}

// With returns a copy of the briefing with one field replaced.
// Unknown fields leave the copy unchanged.
func (b Briefing) With(field BriefingField, value string) Briefing {
	switch field {
	case FieldSpecialty:
		b.Specialty = value
	case FieldTopic:
		b.Topic = value
	case FieldObjective:
		b.Objective = value
	case FieldTargetAudience:
		b.TargetAudience = value
	case FieldTone:
		b.Tone = value
	case FieldOffer:
		b.Offer = value
	case FieldCTAType:
		b.CTAType = value
	case FieldMandatoryPhrase:
		b.MandatoryPhrase = value
	case FieldReference:
		b.Reference = value
	}
	return b
}

// MissingFields returns the required fields that are blank after trimming.
func (b Briefing) MissingFields() []BriefingField {
	var missing []BriefingField
	for _, f := range RequiredBriefingFields {
		if strings.TrimSpace(b.Get(f)) == "" {
			missing = append(missing, f)
		}
	}
	return missing
}

// IsComplete reports whether every required field is filled.
func (b Briefing) IsComplete() bool {
	return len(b.MissingFields()) == 0
}

// DemoBriefing is the built-in onboarding example.
var DemoBriefing = Briefing{
	Specialty:       "Endocrinologia",
	Topic:           "Resistência à insulina",
	Objective:       "Atrair leads qualificados para programa de emagrecimento",
	TargetAudience:  "Mulheres 35-50 anos, metabolismo lento, cansaço crônico, dificuldade de perder peso",
	Tone:            "Provocativo",
	Offer:           "Programa Metabólico 90 Dias",
	CTAType:         "Agendar",
	MandatoryPhrase: "O problema não é o que você come, é como seu corpo reage.",
	Reference:       "Mito de que comer de 3 em 3 horas acelera metabolismo",
}

// DemoStrategy is the strategy selected together with DemoBriefing.
const DemoStrategy = "Contrarian Authority"
