// internal/render/export.go
package render

import (
	"bytes"
	"encoding/json"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/yuin/goldmark"

	"github.com/doutorgpt/carousel-maker/internal/models"
)

const filenamePrefix = "doutorgpt-carousel-"

// ExportFilename returns doutorgpt-carousel-<unix millis>.<ext>.
func ExportFilename(t time.Time, format string) string {
	ext := "json"
	switch format {
	case models.ExportFormatMarkdown:
		ext = "md"
	case models.ExportFormatHTML:
		ext = "html"
	}
	return fmt.Sprintf("%s%d.%s", filenamePrefix, t.UnixMilli(), ext)
}

// ExportJSON serialises the carousel with two-space indentation.
func ExportJSON(c models.CarouselResponse) ([]byte, error) {
	return json.MarshalIndent(c, "", "  ")
}

// Markdown renders the carousel as a document.
func Markdown(c models.CarouselResponse) string {
	var content strings.Builder

	title := c.CarouselTitle
	if title == "" {
		title = "Carrossel"
	}
	content.WriteString(fmt.Sprintf("# %s\n\n", title))

	content.WriteString(fmt.Sprintf("- **Estratégia**: %s\n", c.Strategy))
	content.WriteString(fmt.Sprintf("- **Objetivo**: %s\n", c.Objective))
	content.WriteString(fmt.Sprintf("- **Público-alvo**: %s\n", c.TargetAudience))
	content.WriteString(fmt.Sprintf("- **Tom**: %s\n", c.Tone))
	content.WriteString(fmt.Sprintf("- **Oferta**: %s\n", c.Offer))
	content.WriteString(fmt.Sprintf("- **CTA**: %s\n\n", c.CTAType))

	banner := NewBanner(c.QualityCheck)
	content.WriteString(fmt.Sprintf("## %s\n\n", banner.Title))
	if banner.Notes != "" {
		content.WriteString(banner.Notes + "\n\n")
	}
	for _, f := range banner.Flags {
		mark := " "
		if f.Passed {
			mark = "x"
		}
		content.WriteString(fmt.Sprintf("- [%s] %s\n", mark, f.Label))
	}
	content.WriteString("\n")

	for _, s := range c.Slides {
		content.WriteString(fmt.Sprintf("## %s\n\n", SlideLabel(s.SlideNumber)))
		content.WriteString(fmt.Sprintf("### %s\n\n", s.Headline))
		content.WriteString(s.Body + "\n\n")
		if s.RetentionBridge != "" {
			content.WriteString(fmt.Sprintf("> %s\n\n", s.RetentionBridge))
		}
		content.WriteString(fmt.Sprintf("**Direção visual**: %s\n\n", s.VisualDirection))
		content.WriteString(fmt.Sprintf("**Elemento sugerido**: %s\n\n", s.VisualElementSuggestion))
		if s.ImagePrompt != "" {
			content.WriteString("**Prompt de imagem**:\n\n")
			fence := codeFence(s.ImagePrompt)
			content.WriteString(fence + "\n" + s.ImagePrompt + "\n" + fence + "\n\n")
		}
	}
	return content.String()
}

// codeFence returns a backtick fence longer than any backtick run in text.
func codeFence(text string) string {
	longest, run := 0, 0
	for _, r := range text {
		if r != '`' {
			run = 0
			continue
		}
		run++
		longest = max(longest, run)
	}
	return strings.Repeat("`", max(3, longest+1))
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html lang="pt-BR">
<head>
<meta charset="utf-8">
<meta name="viewport" content="width=device-width, initial-scale=1">
<title>{{.Title}}</title>
</head>
<body>
<main>
{{.Body}}
</main>
</body>
</html>
`))

// HTML renders the carousel as a standalone page.
// Raw HTML in model output is escaped by goldmark's default renderer.
func HTML(c models.CarouselResponse) ([]byte, error) {
	var body bytes.Buffer
	if err := goldmark.Convert([]byte(Markdown(c)), &body); err != nil {
		return nil, fmt.Errorf("render markdown: %w", err)
	}

	title := c.CarouselTitle
	if title == "" {
		title = "DoutorGPT"
	}

	var page bytes.Buffer
	err := pageTemplate.Execute(&page, struct {
		Title string
		Body  template.HTML
	}{
		Title: title,
		Body:  template.HTML(body.String()),
	})
	if err != nil {
		return nil, err
	}
	return page.Bytes(), nil
}

// Export renders c in format. Unknown formats are rejected.
func Export(c models.CarouselResponse, format string, now time.Time) (*models.ExportResult, error) {
	format = strings.ToLower(strings.TrimSpace(format))
	if format == "" {
		format = models.ExportFormatJSON
	}

	var (
		content     []byte
		contentType string
		err         error
	)
	switch format {
	case models.ExportFormatJSON:
		content, err = ExportJSON(c)
		contentType = "application/json"
	case models.ExportFormatMarkdown:
		content = []byte(Markdown(c))
		contentType = "text/markdown; charset=utf-8"
	case models.ExportFormatHTML:
		content, err = HTML(c)
		contentType = "text/html; charset=utf-8"
	default:
		return nil, fmt.Errorf("unsupported export format: %s, supported: %v", format, models.SupportedExportFormats)
	}
	if err != nil {
		return nil, err
	}

	return &models.ExportResult{
		Format:      format,
		Filename:    ExportFilename(now, format),
		ContentType: contentType,
		Content:     content,
		GeneratedAt: now,
	}, nil
}
