// internal/models/export.go
package models

import (
	"time"
)

// Export formats.
const (
	ExportFormatJSON     = "json"
	ExportFormatMarkdown = "markdown"
	ExportFormatHTML     = "html"
)

// SupportedExportFormats lists the formats accepted by Export.
var SupportedExportFormats = []string{ExportFormatJSON, ExportFormatMarkdown, ExportFormatHTML}

// ExportResult is a rendered carousel ready for download.
type ExportResult struct {
	Format      string    `json:"format"`
	Filename    string    `json:"filename"`
	ContentType string    `json:"content_type"`
	Content     []byte    `json:"-"`
	GeneratedAt time.Time `json:"generated_at"`
}
