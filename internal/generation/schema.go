// internal/generation/schema.go
package generation

import (
	"encoding/json"
	"fmt"
	"sort"
	"strings"

	"github.com/kaptinlin/jsonschema"

	"github.com/doutorgpt/carousel-maker/internal/llm"
	"github.com/doutorgpt/carousel-maker/internal/models"
)

const carouselSchemaName = "carousel"

// CarouselSchema is the structured-output contract of a carousel request.
var CarouselSchema = llm.Object(
	llm.Prop("status", llm.Enum(string(models.StatusOK), string(models.StatusNeedBriefing))),
	llm.Prop("missing_fields", llm.ArrayOf(llm.String())),
	llm.Prop("carousel_title", llm.String()),
	llm.Prop("strategy", llm.String()),
	llm.Prop("objective", llm.String()),
	llm.Prop("target_audience", llm.String()),
	llm.Prop("tone", llm.String()),
	llm.Prop("offer", llm.String()),
	llm.Prop("cta_type", llm.String()),
	llm.Prop("slides", llm.ArrayOf(llm.Object(
		llm.Prop("slide_number", llm.Integer()),
		llm.Prop("headline", llm.String()),
		llm.Prop("body", llm.String()),
		llm.Prop("retention_bridge", llm.String()),
		llm.Prop("visual_direction", llm.String()),
		llm.Prop("visual_element_suggestion", llm.String()),
	))),
	llm.Prop("quality_check", llm.Object(
		llm.Prop("envolvente", llm.Boolean()),
		llm.Prop("denso_nao_obvio", llm.Boolean()),
		llm.Prop("estrutura_ok", llm.Boolean()),
		llm.Prop("cta_alinhado", llm.Boolean()),
		llm.Prop("notes", llm.String()),
	)),
)

// carouselValidator checks model replies against CarouselSchema.
type carouselValidator struct {
	schema *jsonschema.Schema
}

func newCarouselValidator() (*carouselValidator, error) {
	compiler := jsonschema.NewCompiler()
	schema, err := compiler.Compile(CarouselSchema.JSON())
	if err != nil {
		return nil, fmt.Errorf("failed to compile carousel schema: %w", err)
	}
	return &carouselValidator{schema: schema}, nil
}

// decode parses text, validates it and returns the typed carousel.
func (v *carouselValidator) decode(text string) (*models.CarouselResponse, error) {
	var raw map[string]any
	if err := json.Unmarshal([]byte(text), &raw); err != nil {
		return nil, fmt.Errorf("reply is not valid JSON: %w", err)
	}

	result := v.schema.Validate(raw)
	if !result.IsValid() {
		return nil, fmt.Errorf("reply violates the carousel schema: %s", describeViolations(result))
	}

	var carousel models.CarouselResponse
	if err := json.Unmarshal([]byte(text), &carousel); err != nil {
		return nil, fmt.Errorf("reply does not decode into a carousel: %w", err)
	}
	if err := checkStructure(&carousel); err != nil {
		return nil, err
	}
	return &carousel, nil
}

// describeViolations flattens the evaluation tree to "location: message" pairs.
func describeViolations(result *jsonschema.EvaluationResult) string {
	var msgs []string
	for _, unit := range result.ToList(false).Details {
		if unit.Valid {
			continue
		}
		location := unit.InstanceLocation
		if location == "" {
			location = "/"
		}
		for keyword, msg := range unit.Errors {
			msgs = append(msgs, fmt.Sprintf("%s: %s (%s)", location, msg, keyword))
		}
	}
	if len(msgs) == 0 {
		for keyword, evalErr := range result.Errors {
			msgs = append(msgs, fmt.Sprintf("/: %s (%s)", evalErr.Error(), keyword))
		}
	}
	sort.Strings(msgs)
	return strings.Join(msgs, "; ")
}

// checkStructure enforces what the schema cannot: an ok carousel has
// exactly SlideCount slides numbered 1..SlideCount in order.
func checkStructure(c *models.CarouselResponse) error {
	if c.Status != models.StatusOK {
		return nil
	}
	if len(c.Slides) != models.SlideCount {
		return fmt.Errorf("carousel has %d slides, expected %d slides", len(c.Slides), models.SlideCount)
	}
	for i, s := range c.Slides {
		if s.SlideNumber != i+1 {
			return fmt.Errorf("slides[%d].slide_number is %d, expected %d", i, s.SlideNumber, i+1)
		}
	}
	return nil
}
