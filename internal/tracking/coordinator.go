package tracking

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/samber/lo"
	"github.com/sourcegraph/conc"

	"lead-tracking-service/internal/logger"
	"lead-tracking-service/internal/model"
)

// Coordinator fans one event out to every active platform in parallel.
type Coordinator struct {
	mu        sync.RWMutex
	platforms []Platform
	log       *logger.Logger
	recorder  Recorder
}

// NewCoordinator keeps the enabled platforms, in order, dropping duplicate names.
func NewCoordinator(log *logger.Logger, recorder Recorder, platforms ...Platform) *Coordinator {
	if log == nil {
		log = logger.NewNop()
	}
	if recorder == nil {
		recorder = nopRecorder{}
	}
	c := &Coordinator{log: log.Named("coordinator"), recorder: recorder}
	for _, p := range platforms {
		c.AddPlatform(p)
	}
	return c
}

// AddPlatform activates p. Disabled platforms and already-known names are ignored.
func (c *Coordinator) AddPlatform(p Platform) {
	if p == nil || !p.Enabled() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	if lo.ContainsBy(c.platforms, func(existing Platform) bool { return existing.Name() == p.Name() }) {
		return
	}
	c.platforms = append(c.platforms, p)
}

// RemovePlatform deactivates the platform with the given name, if present.
func (c *Coordinator) RemovePlatform(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.platforms = lo.Reject(c.platforms, func(p Platform, _ int) bool { return p.Name() == name })
}

// EnabledPlatforms lists the active platform names.
func (c *Coordinator) EnabledPlatforms() []string {
	return lo.Map(c.snapshot(), func(p Platform, _ int) string { return p.Name() })
}

// TrackEvent delivers event to every active platform.
func (c *Coordinator) TrackEvent(ctx context.Context, event model.UnifiedEvent) model.Results {
	return c.dispatch(ctx, OpEvent, event, Platform.TrackEvent)
}

// TrackPageView delivers event as a page view to every active platform.
func (c *Coordinator) TrackPageView(ctx context.Context, event model.UnifiedEvent) model.Results {
	return c.dispatch(ctx, OpPageView, event, Platform.TrackPageView)
}

// TrackFormEvent delivers a form funnel event to every active platform.
func (c *Coordinator) TrackFormEvent(ctx context.Context, event model.UnifiedEvent) model.Results {
	return c.dispatch(ctx, OpFormEvent, event, Platform.TrackFormEvent)
}

func (c *Coordinator) snapshot() []Platform {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return append([]Platform(nil), c.platforms...)
}

// dispatch runs call on a snapshot of the active platforms concurrently and
// waits for all of them. A failing or panicking platform only affects its own
// entry; the result always has one entry per snapshotted platform.
func (c *Coordinator) dispatch(ctx context.Context, op string, event model.UnifiedEvent, call func(Platform, context.Context, model.UnifiedEvent) bool) model.Results {
	platforms := c.snapshot()
	outcomes := make([]bool, len(platforms))

	var wg conc.WaitGroup
	for i, p := range platforms {
		wg.Go(func() {
			outcomes[i] = c.deliver(ctx, op, p, event, call)
		})
	}
	wg.Wait()

	results := make(model.Results, len(platforms))
	for i, p := range platforms {
		results[p.Name()] = outcomes[i]
	}
	return results
}

func (c *Coordinator) deliver(ctx context.Context, op string, p Platform, event model.UnifiedEvent, call func(Platform, context.Context, model.UnifiedEvent) bool) (ok bool) {
	name := p.Name()
	start := time.Now()
	defer func() {
		if r := recover(); r != nil {
			c.log.Errorw("platform panicked", "platform", name, "operation", op, "event_type", event.Type, "event_id", event.ID, "panic", fmt.Sprint(r))
			ok = false
		}
		c.recorder.ObserveDelivery(name, op, ok, time.Since(start))
	}()

	ok = call(p, ctx, event)
	if ok {
		c.log.Debugw("event tracked", "platform", name, "operation", op, "event_type", event.Type, "event_id", event.ID)
	} else {
		c.log.Warnw("event not tracked", "platform", name, "operation", op, "event_type", event.Type, "event_id", event.ID)
	}
	return ok
}
