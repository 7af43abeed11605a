// internal/api/error_codes.go
package api

// Request-level error codes. Application errors carry their own codes
// (see internal/errors).
const (
	ErrorBadRequest    = "BAD_REQUEST"
	ErrorNotFound      = "NOT_FOUND"
	ErrorInternalError = "INTERNAL_ERROR"

	ErrorInvalidSlideNumber  = "INVALID_SLIDE_NUMBER"
	ErrorExportFormatInvalid = "EXPORT_FORMAT_INVALID"
)
