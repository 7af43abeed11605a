// internal/render/quality.go
package render

import (
	"strings"

	"github.com/doutorgpt/carousel-maker/internal/models"
)

const (
	BannerTitle = "Checklist de Qualidade Leo"

	// MaxBodyWords is the body ceiling the model is instructed to respect.
	MaxBodyWords = 30
	// MaxHeadlineLines is the headline ceiling the model is instructed to respect.
	MaxHeadlineLines = 1
)

// Flag is one pass/fail item of the quality banner.
type Flag struct {
	Label  string `json:"label"`
	Passed bool   `json:"passed"`
}

// Banner is the model's self-assessment, ready for display.
type Banner struct {
	Title string `json:"title"`
	Notes string `json:"notes"`
	Flags []Flag `json:"flags"`
}

// NewBanner builds the quality banner of a carousel.
func NewBanner(qc models.QualityCheck) Banner {
	return Banner{
		Title: BannerTitle,
		Notes: qc.Notes,
		Flags: []Flag{
			{Label: "Envolvente", Passed: qc.Envolvente},
			{Label: "Denso", Passed: qc.DensoNaoObvio},
			{Label: "Estrutura", Passed: qc.EstruturaOK},
			{Label: "CTA OK", Passed: qc.CTAAlinhado},
		},
	}
}

// SlideCheck is the local measurement of one slide.
type SlideCheck struct {
	SlideNumber   int  `json:"slide_number"`
	BodyWords     int  `json:"body_words"`
	HeadlineLines int  `json:"headline_lines"`
	BodyTooLong   bool `json:"body_too_long"`
	HeadlineWraps bool `json:"headline_wraps"`
}

// LocalReport summarises the advisory length checks of a carousel.
// It never causes a carousel to be rejected.
type LocalReport struct {
	Slides   []SlideCheck `json:"slides"`
	Warnings int          `json:"warnings"`
}

// LocalChecks measures every slide against the length ceilings.
func LocalChecks(c *models.CarouselResponse) LocalReport {
	report := LocalReport{Slides: make([]SlideCheck, 0, len(c.Slides))}
	for _, s := range c.Slides {
		check := SlideCheck{
			SlideNumber:   s.SlideNumber,
			BodyWords:     len(strings.Fields(s.Body)),
			HeadlineLines: countLines(s.Headline),
		}
		check.BodyTooLong = check.BodyWords > MaxBodyWords
		check.HeadlineWraps = check.HeadlineLines > MaxHeadlineLines
		if check.BodyTooLong {
			report.Warnings++
		}
		if check.HeadlineWraps {
			report.Warnings++
		}
		report.Slides = append(report.Slides, check)
	}
	return report
}

func countLines(s string) int {
	s = strings.TrimSpace(s)
	if s == "" {
		return 0
	}
	return strings.Count(s, "\n") + 1
}
