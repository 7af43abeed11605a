// internal/api/handlers.go
package api

import (
	"context"
	"errors"
	"fmt"
	"io"
	"net/http"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/gin-gonic/gin"

	apperrors "github.com/doutorgpt/carousel-maker/internal/errors"
	"github.com/doutorgpt/carousel-maker/internal/generation"
	"github.com/doutorgpt/carousel-maker/internal/logger"
	"github.com/doutorgpt/carousel-maker/internal/models"
	"github.com/doutorgpt/carousel-maker/internal/services"
)

// StatusReporter reports the model backend configuration.
type StatusReporter interface {
	Status() generation.Status
}

// Handler serves the carousel API.
type Handler struct {
	Sessions  *services.SessionStore
	LLM       StatusReporter
	WebSocket *WebSocketManager
	Response  *ResponseHelper
}

// NewHandler wires a handler. llm and ws may be nil.
func NewHandler(sessions *services.SessionStore, llm StatusReporter, ws *WebSocketManager) *Handler {
	return &Handler{
		Sessions:  sessions,
		LLM:       llm,
		WebSocket: ws,
		Response:  NewResponseHelper(),
	}
}

// CreateSessionRequest is the optional body of POST /api/sessions.
type CreateSessionRequest struct {
	Demo bool `json:"demo"`
}

// UpdateBriefingRequest sets either one field or several at once.
type UpdateBriefingRequest struct {
	Field  string            `json:"field"`
	Value  string            `json:"value"`
	Fields map[string]string `json:"fields"`
}

type SelectStrategyRequest struct {
	Strategy string `json:"strategy" binding:"required"`
}

// CopyResponse is the clipboard text of a copy request plus the updated state.
type CopyResponse struct {
	Text    string            `json:"text"`
	Copied  bool              `json:"copied"`
	Session services.Snapshot `json:"session"`
}

// ------------------------------------------------

// HealthCheck reports liveness.
func (h *Handler) HealthCheck(c *gin.Context) {
	h.Response.Success(c, gin.H{
		"status":   "ok",
		"sessions": h.Sessions.Count(),
		"time":     time.Now().Format(time.RFC3339),
	})
}

// GetCatalog returns strategies, tones and CTA options.
func (h *Handler) GetCatalog(c *gin.Context) {
	h.Response.Success(c, models.GetCatalog())
}

// GetLLMStatus reports provider, model and credential state.
func (h *Handler) GetLLMStatus(c *gin.Context) {
	if h.LLM == nil {
		h.Response.Success(c, generation.Status{State: "API key not configured"})
		return
	}
	h.Response.Success(c, h.LLM.Status())
}

// ========================================
// Sessions
// ========================================

// CreateSession starts a session, prefilled with the demo briefing when asked.
func (h *Handler) CreateSession(c *gin.Context) {
	var req CreateSessionRequest
	if err := c.ShouldBindJSON(&req); err != nil && !errors.Is(err, io.EOF) {
		h.Response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	session := h.Sessions.Create(req.Demo)
	logger.Info(c.Request.Context(), "session created", "session_id", session.ID(), "demo", req.Demo)
	h.Response.Created(c, session.Snapshot(), "session created")
}

// GetSession returns the session snapshot.
func (h *Handler) GetSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	h.Response.Success(c, session.Snapshot())
}

// DeleteSession drops the session.
func (h *Handler) DeleteSession(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	h.Sessions.Delete(session.ID())
	h.Response.Success(c, nil, "session deleted")
}

// UpdateBriefing edits the briefing form.
func (h *Handler) UpdateBriefing(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req UpdateBriefingRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "invalid request body", err.Error())
		return
	}

	switch {
	case len(req.Fields) > 0:
		snap, err := session.UpdateFields(req.Fields)
		if err != nil {
			h.Response.HandleError(c, err)
			return
		}
		h.Response.Success(c, snap)

	case req.Field != "":
		field, err := models.ParseBriefingField(req.Field)
		if err != nil {
			h.Response.HandleError(c, apperrors.NewValidationError(err.Error(), nil))
			return
		}
		h.Response.Success(c, session.UpdateField(field, req.Value))

	default:
		h.Response.BadRequest(c, "field or fields is required")
	}
}

// SelectStrategy sets the narrative strategy by id.
func (h *Handler) SelectStrategy(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	var req SelectStrategyRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		h.Response.BadRequest(c, "strategy is required", err.Error())
		return
	}

	snap, err := session.SelectStrategy(req.Strategy)
	if err != nil {
		h.Response.HandleError(c, err)
		return
	}
	h.Response.Success(c, snap)
}

// LoadDemoData replaces the briefing with the demo case.
func (h *Handler) LoadDemoData(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	h.Response.Success(c, session.LoadDemoData())
}

// ========================================
// Generation
// ========================================

// Generate runs the carousel generation. Model failures come back inside
// the snapshot's error field with a 200.
func (h *Handler) Generate(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	snap, err := session.Generate(sessionContext(c, session.ID()))
	if err != nil {
		h.Response.HandleError(c, err)
		return
	}
	h.Response.Success(c, snap)
}

// GenerateSlidePrompt builds the image prompt of one slide.
func (h *Handler) GenerateSlidePrompt(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	n, ok := h.slideNumber(c)
	if !ok {
		return
	}

	snap, err := session.GenerateSlidePrompt(sessionContext(c, session.ID()), n)
	if err != nil {
		h.Response.HandleError(c, err)
		return
	}
	h.Response.Success(c, snap)
}

// GenerateAllSlidePrompts builds the image prompt of every slide.
func (h *Handler) GenerateAllSlidePrompts(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	snap, err := session.GenerateAllSlidePrompts(sessionContext(c, session.ID()))
	if err != nil {
		h.Response.HandleError(c, err)
		return
	}
	h.Response.Success(c, snap)
}

// ========================================
// Copy
// ========================================

func (h *Handler) CopySlideText(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	n, ok := h.slideNumber(c)
	if !ok {
		return
	}
	h.copyResponse(c, session, func() (string, error) { return session.CopySlideText(n) })
}

func (h *Handler) CopySlidePrompt(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	n, ok := h.slideNumber(c)
	if !ok {
		return
	}
	h.copyResponse(c, session, func() (string, error) { return session.CopySlidePrompt(n) })
}

// CopyAllText returns the text of all slides for the clipboard.
func (h *Handler) CopyAllText(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	h.copyResponse(c, session, session.CopyAllText)
}

func (h *Handler) copyResponse(c *gin.Context, session *services.Session, copyFn func() (string, error)) {
	text, err := copyFn()
	if err != nil {
		h.Response.HandleError(c, err)
		return
	}
	h.Response.Success(c, CopyResponse{Text: text, Copied: true, Session: session.Snapshot()})
}

// ========================================
// Export
// ========================================

// ExportCarousel downloads the carousel as json, markdown or html.
func (h *Handler) ExportCarousel(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	format := strings.ToLower(c.DefaultQuery("format", models.ExportFormatJSON))
	if !slices.Contains(models.SupportedExportFormats, format) {
		h.Response.Error(c, http.StatusBadRequest, ErrorExportFormatInvalid,
			"unsupported export format",
			fmt.Sprintf("supported formats: %s", strings.Join(models.SupportedExportFormats, ", ")))
		return
	}

	result, err := session.Export(format)
	if err != nil {
		h.Response.HandleError(c, err)
		return
	}
	h.Response.DownloadResponse(c, result.Content, result.Filename, result.ContentType)
}

// ResultPage renders the carousel as a standalone HTML page.
func (h *Handler) ResultPage(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}

	result, err := session.Export(models.ExportFormatHTML)
	if err != nil {
		h.Response.HandleError(c, err)
		return
	}
	c.Data(http.StatusOK, result.ContentType, result.Content)
}

// ========================================
// WebSocket
// ========================================

// SessionWebSocket streams the events of one session.
func (h *Handler) SessionWebSocket(c *gin.Context) {
	session, ok := h.session(c)
	if !ok {
		return
	}
	if h.WebSocket == nil {
		h.Response.Error(c, http.StatusServiceUnavailable, ErrorInternalError, "websocket feed is disabled")
		return
	}

	if err := h.WebSocket.Serve(c.Writer, c.Request, session.ID()); err != nil {
		// the upgrader has already written the HTTP error
		logger.Warn(c.Request.Context(), "websocket upgrade failed", "session_id", session.ID(), "error", err.Error())
	}
}

// ------------------------------------------------

func (h *Handler) session(c *gin.Context) (*services.Session, bool) {
	session, err := h.Sessions.Get(c.Param("id"))
	if err != nil {
		h.Response.HandleError(c, err)
		return nil, false
	}
	return session, true
}

func (h *Handler) slideNumber(c *gin.Context) (int, bool) {
	n, err := strconv.Atoi(c.Param("n"))
	if err != nil || n < 1 || n > models.SlideCount {
		h.Response.Error(c, http.StatusBadRequest, ErrorInvalidSlideNumber,
			fmt.Sprintf("slide number must be between 1 and %d", models.SlideCount))
		return 0, false
	}
	return n, true
}

func sessionContext(c *gin.Context, sessionID string) context.Context {
	return logger.WithContext(c.Request.Context(), logger.SessionIDKey, sessionID)
}
