package services

import (
	"testing"
	"time"

	apperrors "github.com/doutorgpt/carousel-maker/internal/errors"
	"github.com/doutorgpt/carousel-maker/internal/models"
)

func TestSessionStoreCreateAndGet(t *testing.T) {
	store := NewSessionStore(time.Hour, SessionOptions{Generator: successGenerator()})

	s := store.Create(false)
	got, err := store.Get(s.ID())
	if err != nil {
		t.Fatalf("Get: %v", err)
	}
	if got != s {
		t.Error("Get should return the same session")
	}
	if got.Snapshot().Briefing != models.NewBriefing() {
		t.Error("new sessions start with the default briefing")
	}

	demo := store.Create(true)
	if !demo.IsReady() {
		t.Error("demo sessions should be ready")
	}
	if demo.ID() == s.ID() {
		t.Error("session ids must be unique")
	}
	if store.Count() != 2 {
		t.Errorf("expected 2 sessions, got %d", store.Count())
	}
}

func TestSessionStoreUnknownAndDeleted(t *testing.T) {
	store := NewSessionStore(time.Hour, SessionOptions{Generator: successGenerator()})

	if _, err := store.Get("missing"); !apperrors.IsNotFoundError(err) {
		t.Errorf("expected not found, got %v", err)
	}

	s := store.Create(false)
	store.Delete(s.ID())
	if _, err := store.Get(s.ID()); !apperrors.IsNotFoundError(err) {
		t.Errorf("deleted session should be gone, got %v", err)
	}
}

func TestSessionStoreExpiry(t *testing.T) {
	store := NewSessionStore(200*time.Millisecond, SessionOptions{Generator: successGenerator()})
	s := store.Create(false)

	// each Get slides the expiry forward
	for i := 0; i < 4; i++ {
		time.Sleep(50 * time.Millisecond)
		if _, err := store.Get(s.ID()); err != nil {
			t.Fatalf("session expired while in use: %v", err)
		}
	}

	time.Sleep(400 * time.Millisecond)
	if _, err := store.Get(s.ID()); !apperrors.IsNotFoundError(err) {
		t.Errorf("idle session should expire, got %v", err)
	}
}
