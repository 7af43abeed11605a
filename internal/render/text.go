// internal/render/text.go
package render

import (
	"fmt"
	"strings"

	"github.com/doutorgpt/carousel-maker/internal/models"
)

// SlideLabel is the card header, e.g. "Slide 01".
func SlideLabel(number int) string {
	return fmt.Sprintf("Slide %02d", number)
}

// SlideText is the clipboard text of one slide.
func SlideText(s models.Slide) string {
	return strings.TrimSpace(s.Headline + "\n\n" + s.Body)
}

// AllSlidesText is the clipboard text of the whole carousel.
func AllSlidesText(slides []models.Slide) string {
	blocks := make([]string, len(slides))
	for i, s := range slides {
		blocks[i] = fmt.Sprintf("\nSLIDE %d\nHEADLINE: %s\nBODY: %s\nBRIDGE: %s\n---",
			s.SlideNumber, s.Headline, s.Body, s.RetentionBridge)
	}
	return strings.Join(blocks, "\n")
}
