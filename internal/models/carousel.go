// internal/models/carousel.go
package models

// SlideCount is the fixed number of slides in every carousel.
const SlideCount = 7

// CarouselStatus is the model's verdict on the briefing.
type CarouselStatus string

const (
	StatusOK           CarouselStatus = "ok"
	StatusNeedBriefing CarouselStatus = "need_briefing"
)

// Slide is one unit of the carousel.
type Slide struct {
	SlideNumber             int    `json:"slide_number"`
	Headline                string `json:"headline"`
	Body                    string `json:"body"`
	RetentionBridge         string `json:"retention_bridge"`
	VisualDirection         string `json:"visual_direction"`
	VisualElementSuggestion string `json:"visual_element_suggestion"`
	ImagePrompt             string `json:"imagePrompt,omitempty"`
}

// WithImagePrompt returns a copy of the slide carrying the generated prompt.
func (s Slide) WithImagePrompt(prompt string) Slide {
	s.ImagePrompt = prompt
	return s
}

// VisualContext is the input sent to the image prompt generator.
func (s Slide) VisualContext() string {
	return s.VisualDirection + ". Suggestion: " + s.VisualElementSuggestion
}

// QualityCheck is the model's self-assessment of its output.
type QualityCheck struct {
	Envolvente    bool   `json:"envolvente"`
	DensoNaoObvio bool   `json:"denso_nao_obvio"`
	EstruturaOK   bool   `json:"estrutura_ok"`
	CTAAlinhado   bool   `json:"cta_alinhado"`
	Notes         string `json:"notes"`
}

// CarouselResponse is the structured output of a carousel generation.
type CarouselResponse struct {
	Status         CarouselStatus `json:"status"`
	MissingFields  []string       `json:"missing_fields"`
	CarouselTitle  string         `json:"carousel_title"`
	Strategy       string         `json:"strategy"`
	Objective      string         `json:"objective"`
	TargetAudience string         `json:"target_audience"`
	Tone           string         `json:"tone"`
	Offer          string         `json:"offer"`
	CTAType        string         `json:"cta_type"`
	Slides         []Slide        `json:"slides"`
	QualityCheck   QualityCheck   `json:"quality_check"`
}

// NeedsBriefing reports whether the model asked for more input.
func (c *CarouselResponse) NeedsBriefing() bool {
	return c.Status == StatusNeedBriefing
}

// FindSlide returns the slide with the given number.
func (c *CarouselResponse) FindSlide(number int) (Slide, bool) {
	for _, s := range c.Slides {
		if s.SlideNumber == number {
			return s, true
		}
	}
	return Slide{}, false
}

// WithImagePrompts returns a copy whose slides carry the given prompts.
// The receiver and its slide slice are left untouched.
func (c CarouselResponse) WithImagePrompts(prompts map[int]string) CarouselResponse {
	if c.Slides != nil {
		slides := make([]Slide, len(c.Slides))
		for i, s := range c.Slides {
			if p, ok := prompts[s.SlideNumber]; ok && p != "" {
				s = s.WithImagePrompt(p)
			}
			slides[i] = s
		}
		c.Slides = slides
	}
	if c.MissingFields != nil {
		missing := make([]string, len(c.MissingFields))
		copy(missing, c.MissingFields)
		c.MissingFields = missing
	}
	return c
}
