// internal/services/session.go
package services

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"strings"
	"sync"
	"time"

	"golang.org/x/sync/errgroup"

	apperrors "github.com/doutorgpt/carousel-maker/internal/errors"
	"github.com/doutorgpt/carousel-maker/internal/logger"
	"github.com/doutorgpt/carousel-maker/internal/metrics"
	"github.com/doutorgpt/carousel-maker/internal/models"
	"github.com/doutorgpt/carousel-maker/internal/render"
)

const (
	// CopyAckDuration is how long a "copied" acknowledgment stays visible.
	CopyAckDuration = 2 * time.Second

	// GenerationFallbackError is shown when a failure carries no message.
	GenerationFallbackError = "Erro ao gerar carrossel. Verifique sua API Key ou tente novamente."

	missingFieldsPrefix = "Faltam campos: "

	defaultPromptConcurrency = 4
)

// ErrNoResult is returned by result-dependent operations before a carousel exists.
var ErrNoResult = apperrors.NewNotFoundError("no carousel has been generated yet", nil)

// Generator is the model-facing dependency of a Session.
type Generator interface {
	GenerateCarousel(ctx context.Context, briefing models.Briefing, strategy string) (*models.CarouselResponse, error)
	GenerateImagePrompt(ctx context.Context, visualContext string) (string, error)
}

// SessionOptions carries the collaborators of a Session.
type SessionOptions struct {
	Generator         Generator
	Events            EventPublisher
	Clock             func() time.Time
	PromptConcurrency int
}

type cardState struct {
	loading bool
	prompt  string
	failed  bool
	// token identifies the latest in-flight request of this card.
	token uint64
}

type copyKind string

const (
	copySlideText   copyKind = "slide_text"
	copySlidePrompt copyKind = "slide_prompt"
	copyAll         copyKind = "all"
)

type copyKey struct {
	kind  copyKind
	slide int
}

// Session is one editing session: a briefing, a strategy and at most one
// generated carousel. Model calls run outside the lock.
type Session struct {
	id          string
	generator   Generator
	events      EventPublisher
	now         func() time.Time
	concurrency int

	mu        sync.Mutex
	briefing  models.Briefing
	strategy  string
	loading   bool
	result    *models.CarouselResponse
	errMsg    string
	cards     map[int]*cardState
	copied    map[copyKey]time.Time
	seq       uint64
	updatedAt time.Time
}

// NewSession returns a session with the empty default briefing.
func NewSession(id string, opts SessionOptions) *Session {
	s := &Session{
		id:          id,
		generator:   opts.Generator,
		events:      opts.Events,
		now:         opts.Clock,
		concurrency: opts.PromptConcurrency,
		briefing:    models.NewBriefing(),
		cards:       make(map[int]*cardState),
		copied:      make(map[copyKey]time.Time),
	}
	if s.events == nil {
		s.events = noopPublisher{}
	}
	if s.now == nil {
		s.now = time.Now
	}
	if s.concurrency <= 0 {
		s.concurrency = defaultPromptConcurrency
	}
	s.updatedAt = s.now()
	return s
}

func (s *Session) ID() string {
	return s.id
}

func (s *Session) publish(eventType string, slide int, errMsg string) {
	s.events.Publish(Event{
		Type:        eventType,
		SessionID:   s.id,
		SlideNumber: slide,
		Error:       errMsg,
		Timestamp:   s.now(),
	})
}

// UpdateField replaces one briefing field. Content is not validated.
func (s *Session) UpdateField(field models.BriefingField, value string) Snapshot {
	s.mu.Lock()
	s.briefing = s.briefing.With(field, value)
	s.updatedAt = s.now()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(EventBriefingUpdated, 0, "")
	return snap
}

// UpdateFields applies several updates atomically. Unknown field names
// reject the whole batch.
func (s *Session) UpdateFields(values map[string]string) (Snapshot, error) {
	fields := make(map[models.BriefingField]string, len(values))
	for name, value := range values {
		field, err := models.ParseBriefingField(name)
		if err != nil {
			return Snapshot{}, apperrors.NewValidationError(err.Error(), nil)
		}
		fields[field] = value
	}

	s.mu.Lock()
	b := s.briefing
	for field, value := range fields {
		b = b.With(field, value)
	}
	s.briefing = b
	s.updatedAt = s.now()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(EventBriefingUpdated, 0, "")
	return snap, nil
}

// SelectStrategy sets the narrative strategy. Ids outside the catalog are rejected.
func (s *Session) SelectStrategy(id string) (Snapshot, error) {
	if _, ok := models.FindStrategy(id); !ok {
		return Snapshot{}, apperrors.NewValidationError(fmt.Sprintf("unknown strategy: %q", id), nil)
	}

	s.mu.Lock()
	s.strategy = id
	s.updatedAt = s.now()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(EventStrategySelected, 0, "")
	return snap, nil
}

// LoadDemoData replaces briefing and strategy with the onboarding example.
func (s *Session) LoadDemoData() Snapshot {
	s.mu.Lock()
	s.briefing = models.DemoBriefing
	s.strategy = models.DemoStrategy
	s.updatedAt = s.now()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	s.publish(EventBriefingUpdated, 0, "")
	s.publish(EventStrategySelected, 0, "")
	return snap
}

// IsReady reports whether every required field is filled and a strategy is selected.
func (s *Session) IsReady() bool {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.isReadyLocked()
}

func (s *Session) isReadyLocked() bool {
	return s.strategy != "" && s.briefing.IsComplete()
}

// Generate runs one carousel generation. Without a strategy it is a no-op;
// with an incomplete briefing it fails with a not-ready error and makes no call.
// Model failures are recorded in the session, not returned.
func (s *Session) Generate(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	if s.strategy == "" {
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}
	if missing := s.briefing.MissingFields(); len(missing) > 0 {
		s.mu.Unlock()
		return Snapshot{}, apperrors.NewNotReadyError(missingFieldsMessage(fieldNames(missing)), nil)
	}

	s.seq++
	seq := s.seq
	s.loading = true
	s.errMsg = ""
	s.result = nil
	s.cards = make(map[int]*cardState)
	s.copied = make(map[copyKey]time.Time)
	briefing, strategy := s.briefing, s.strategy
	s.mu.Unlock()

	s.publish(EventGenerationStarted, 0, "")
	logger.Info(ctx, "generating carousel", "session_id", s.id, "strategy", strategy)

	carousel, err := s.callGenerateCarousel(ctx, briefing, strategy)

	s.mu.Lock()
	if seq != s.seq {
		// superseded by a newer Generate, which owns loading now
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}
	s.loading = false
	status := "ok"
	switch {
	case err != nil:
		s.errMsg = generationErrorMessage(err)
		status = "error"
	case carousel.NeedsBriefing():
		s.errMsg = missingFieldsMessage(carousel.MissingFields)
		status = string(models.StatusNeedBriefing)
	default:
		s.result = carousel
	}
	s.updatedAt = s.now()
	snap := s.snapshotLocked()
	errMsg := s.errMsg
	s.mu.Unlock()

	metrics.RecordCarouselGeneration(status)
	if err != nil {
		logger.Error(ctx, "carousel generation failed", err, "session_id", s.id)
	}
	s.publish(EventGenerationFinished, 0, errMsg)
	return snap, nil
}

// callGenerateCarousel converts a panicking generator into an error so the
// loading flag is always released.
func (s *Session) callGenerateCarousel(ctx context.Context, b models.Briefing, strategy string) (carousel *models.CarouselResponse, err error) {
	defer func() {
		if r := recover(); r != nil {
			carousel, err = nil, fmt.Errorf("carousel generation panicked: %v", r)
		}
	}()
	carousel, err = s.generator.GenerateCarousel(ctx, b, strategy)
	if err == nil && carousel == nil {
		err = apperrors.NewContentError("No response from AI", nil)
	}
	return carousel, err
}

func (s *Session) callGenerateImagePrompt(ctx context.Context, visualContext string) (prompt string, err error) {
	defer func() {
		if r := recover(); r != nil {
			prompt, err = "", fmt.Errorf("image prompt generation panicked: %v", r)
		}
	}()
	return s.generator.GenerateImagePrompt(ctx, visualContext)
}

func generationErrorMessage(err error) string {
	if msg := err.Error(); msg != "" {
		return msg
	}
	return GenerationFallbackError
}

func missingFieldsMessage(fields []string) string {
	return missingFieldsPrefix + strings.Join(fields, ", ")
}

func fieldNames(fields []models.BriefingField) []string {
	names := make([]string, len(fields))
	for i, f := range fields {
		names[i] = string(f)
	}
	return names
}

func (s *Session) slideLocked(number int) (models.Slide, error) {
	if s.result == nil {
		return models.Slide{}, ErrNoResult
	}
	slide, ok := s.result.FindSlide(number)
	if !ok {
		return models.Slide{}, apperrors.NewNotFoundError(fmt.Sprintf("slide %d not found", number), nil)
	}
	return slide, nil
}

// GenerateSlidePrompt generates (or regenerates) the image prompt of one
// slide. A failed call only flags that card; it is not returned as an error.
func (s *Session) GenerateSlidePrompt(ctx context.Context, slideNumber int) (Snapshot, error) {
	s.mu.Lock()
	slide, err := s.slideLocked(slideNumber)
	if err != nil {
		s.mu.Unlock()
		return Snapshot{}, err
	}
	seq := s.seq
	card := s.cardLocked(slideNumber)
	card.token++
	token := card.token
	card.loading = true
	card.failed = false
	s.mu.Unlock()

	s.publish(EventSlidePromptStarted, slideNumber, "")

	prompt, callErr := s.callGenerateImagePrompt(ctx, slide.VisualContext())

	s.mu.Lock()
	current, ok := s.cards[slideNumber]
	if seq != s.seq || !ok || current.token != token {
		// the carousel or the card request was superseded
		snap := s.snapshotLocked()
		s.mu.Unlock()
		return snap, nil
	}
	current.loading = false
	status := "ok"
	if callErr != nil {
		current.failed = true
		status = "error"
	} else {
		current.prompt = prompt
	}
	s.updatedAt = s.now()
	snap := s.snapshotLocked()
	s.mu.Unlock()

	metrics.RecordSlidePromptGeneration(status)
	errMsg := ""
	if callErr != nil {
		errMsg = callErr.Error()
		logger.Error(ctx, "slide prompt generation failed", callErr, "session_id", s.id, "slide", slideNumber)
	}
	s.publish(EventSlidePromptFinished, slideNumber, errMsg)
	return snap, nil
}

// GenerateAllSlidePrompts runs GenerateSlidePrompt for every slide, bounded
// by the session's prompt concurrency.
func (s *Session) GenerateAllSlidePrompts(ctx context.Context) (Snapshot, error) {
	s.mu.Lock()
	if s.result == nil {
		s.mu.Unlock()
		return Snapshot{}, ErrNoResult
	}
	numbers := make([]int, len(s.result.Slides))
	for i, slide := range s.result.Slides {
		numbers[i] = slide.SlideNumber
	}
	s.mu.Unlock()

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.concurrency)
	for _, n := range numbers {
		g.Go(func() error {
			_, err := s.GenerateSlidePrompt(gctx, n)
			return err
		})
	}
	if err := g.Wait(); err != nil && !errors.Is(err, ErrNoResult) {
		return Snapshot{}, err
	}
	return s.Snapshot(), nil
}

func (s *Session) cardLocked(number int) *cardState {
	card, ok := s.cards[number]
	if !ok {
		card = &cardState{}
		s.cards[number] = card
	}
	return card
}

// CopySlideText returns the clipboard text of one slide and records the acknowledgment.
func (s *Session) CopySlideText(slideNumber int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	slide, err := s.slideLocked(slideNumber)
	if err != nil {
		return "", err
	}
	s.copied[copyKey{kind: copySlideText, slide: slideNumber}] = s.now()
	return render.SlideText(slide), nil
}

// CopySlidePrompt returns the generated prompt of one slide.
func (s *Session) CopySlidePrompt(slideNumber int) (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if _, err := s.slideLocked(slideNumber); err != nil {
		return "", err
	}
	card, ok := s.cards[slideNumber]
	if !ok || card.prompt == "" {
		return "", apperrors.NewValidationError(fmt.Sprintf("slide %d has no image prompt yet", slideNumber), nil)
	}
	s.copied[copyKey{kind: copySlidePrompt, slide: slideNumber}] = s.now()
	return card.prompt, nil
}

// CopyAllText returns the clipboard text of the whole carousel.
func (s *Session) CopyAllText() (string, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.result == nil {
		return "", ErrNoResult
	}
	s.copied[copyKey{kind: copyAll}] = s.now()
	return render.AllSlidesText(s.result.Slides), nil
}

func (s *Session) copiedLocked(key copyKey, now time.Time) bool {
	at, ok := s.copied[key]
	return ok && now.Sub(at) < CopyAckDuration
}

func (s *Session) promptsLocked() map[int]string {
	prompts := make(map[int]string, len(s.cards))
	for n, card := range s.cards {
		if card.prompt != "" {
			prompts[n] = card.prompt
		}
	}
	return prompts
}

// Export renders the current carousel, generated prompts included.
func (s *Session) Export(format string) (*models.ExportResult, error) {
	s.mu.Lock()
	if s.result == nil {
		s.mu.Unlock()
		return nil, ErrNoResult
	}
	merged := s.result.WithImagePrompts(s.promptsLocked())
	now := s.now()
	s.mu.Unlock()

	result, err := render.Export(merged, format, now)
	if err != nil {
		return nil, apperrors.NewValidationError(err.Error(), nil)
	}
	return result, nil
}

// ExportJSON returns the download filename and the indented JSON document.
func (s *Session) ExportJSON() (string, []byte, error) {
	result, err := s.Export(models.ExportFormatJSON)
	if err != nil {
		return "", nil, err
	}
	return result.Filename, result.Content, nil
}

// CardSnapshot is the display state of one slide card.
type CardSnapshot struct {
	SlideNumber  int    `json:"slide_number"`
	Label        string `json:"label"`
	Text         string `json:"text"`
	Loading      bool   `json:"loading"`
	Prompt       string `json:"prompt,omitempty"`
	Error        bool   `json:"error"`
	TextCopied   bool   `json:"text_copied"`
	PromptCopied bool   `json:"prompt_copied"`
}

// Snapshot is an immutable view of a session.
type Snapshot struct {
	ID            string                   `json:"id"`
	Briefing      models.Briefing          `json:"briefing"`
	Strategy      string                   `json:"strategy"`
	Ready         bool                     `json:"ready"`
	MissingFields []models.BriefingField   `json:"missing_fields"`
	Loading       bool                     `json:"loading"`
	Error         string                   `json:"error,omitempty"`
	Result        *models.CarouselResponse `json:"result,omitempty"`
	Cards         []CardSnapshot           `json:"cards,omitempty"`
	AllCopied     bool                     `json:"all_copied"`
	Banner        *render.Banner           `json:"banner,omitempty"`
	Checks        *render.LocalReport      `json:"checks,omitempty"`
	UpdatedAt     time.Time                `json:"updated_at"`
}

// Snapshot returns the current state.
func (s *Session) Snapshot() Snapshot {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.snapshotLocked()
}

func (s *Session) snapshotLocked() Snapshot {
	now := s.now()
	missing := s.briefing.MissingFields()
	if missing == nil {
		missing = []models.BriefingField{}
	}
	snap := Snapshot{
		ID:            s.id,
		Briefing:      s.briefing,
		Strategy:      s.strategy,
		Ready:         s.isReadyLocked(),
		MissingFields: missing,
		Loading:       s.loading,
		Error:         s.errMsg,
		AllCopied:     s.copiedLocked(copyKey{kind: copyAll}, now),
		UpdatedAt:     s.updatedAt,
	}
	if s.result == nil {
		return snap
	}

	merged := s.result.WithImagePrompts(s.promptsLocked())
	snap.Result = &merged
	banner := render.NewBanner(merged.QualityCheck)
	snap.Banner = &banner
	checks := render.LocalChecks(&merged)
	snap.Checks = &checks

	snap.Cards = make([]CardSnapshot, 0, len(merged.Slides))
	for _, slide := range merged.Slides {
		card := CardSnapshot{
			SlideNumber:  slide.SlideNumber,
			Label:        render.SlideLabel(slide.SlideNumber),
			Text:         render.SlideText(slide),
			Prompt:       slide.ImagePrompt,
			TextCopied:   s.copiedLocked(copyKey{kind: copySlideText, slide: slide.SlideNumber}, now),
			PromptCopied: s.copiedLocked(copyKey{kind: copySlidePrompt, slide: slide.SlideNumber}, now),
		}
		if state, ok := s.cards[slide.SlideNumber]; ok {
			card.Loading = state.loading
			card.Error = state.failed
		}
		snap.Cards = append(snap.Cards, card)
	}
	sort.Slice(snap.Cards, func(i, j int) bool { return snap.Cards[i].SlideNumber < snap.Cards[j].SlideNumber })
	return snap
}
