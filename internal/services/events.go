// internal/services/events.go
package services

import "time"

// Session event types pushed to subscribers.
const (
	EventBriefingUpdated     = "briefing_updated"
	EventStrategySelected    = "strategy_selected"
	EventGenerationStarted   = "generation_started"
	EventGenerationFinished  = "generation_finished"
	EventSlidePromptStarted  = "slide_prompt_started"
	EventSlidePromptFinished = "slide_prompt_finished"
)

// Event is a state change of one session.
type Event struct {
	Type        string    `json:"type"`
	SessionID   string    `json:"session_id"`
	SlideNumber int       `json:"slide_number,omitempty"`
	Error       string    `json:"error,omitempty"`
	Timestamp   time.Time `json:"timestamp"`
}

// EventPublisher receives session events. Publish must not block.
type EventPublisher interface {
	Publish(event Event)
}

type noopPublisher struct{}

func (noopPublisher) Publish(Event) {}
