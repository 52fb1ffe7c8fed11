package tracking

import (
	"context"
	"time"

	"lead-tracking-service/internal/model"
)

// Platform delivers unified events to one analytics backend.
//
// Implementations own their event-name vocabulary and credentials, and
// must report failures as false instead of returning errors or panicking.
type Platform interface {
	Name() string
	Enabled() bool
	TrackEvent(ctx context.Context, event model.UnifiedEvent) bool
	TrackPageView(ctx context.Context, event model.UnifiedEvent) bool
	TrackFormEvent(ctx context.Context, event model.UnifiedEvent) bool
}

// Operation names used in logs and metrics.
const (
	OpEvent     = "event"
	OpPageView  = "page_view"
	OpFormEvent = "form_event"
)

// Recorder observes per-platform delivery outcomes.
type Recorder interface {
	ObserveDelivery(platform, operation string, success bool, elapsed time.Duration)
}

type nopRecorder struct{}

func (nopRecorder) ObserveDelivery(string, string, bool, time.Duration) {}
