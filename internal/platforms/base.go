package platforms

import (
	"context"
	"fmt"

	"github.com/samber/lo"

	"lead-tracking-service/internal/httpclient"
	"lead-tracking-service/internal/logger"
	"lead-tracking-service/internal/model"
	"lead-tracking-service/internal/tracking"
)

// ClientEmitter forwards an event to a browser-embedded vendor tag (gtag, fbq).
// Calls are fire-and-forget; their outcome never affects delivery results.
type ClientEmitter interface {
	Emit(vendor, eventName string, params map[string]any)
}

// base carries what every adapter shares. Adapters embed it by value.
type base struct {
	name    string
	enabled bool
	log     *logger.Logger
	client  httpclient.Client
	emitter ClientEmitter
}

func newBase(name string, enabled bool, log *logger.Logger, client httpclient.Client, emitter ClientEmitter) base {
	if log == nil {
		log = logger.NewNop()
	}
	return base{
		name:    name,
		enabled: enabled,
		log:     log.WithPlatform(name),
		client:  client,
		emitter: emitter,
	}
}

func (b *base) Name() string  { return b.name }
func (b *base) Enabled() bool { return b.enabled }

func (b *base) validate(event model.UnifiedEvent) bool {
	if err := tracking.ValidateEvent(event); err != nil {
		b.log.Errorw("invalid event structure", "error", err, "event_id", event.ID, "event_type", event.Type)
		return false
	}
	return true
}

// emitClientSide forwards to the vendor tag when one is present. It never blocks
// delivery and recovers from emitter panics.
func (b *base) emitClientSide(vendor, eventName string, params map[string]any) {
	if b.emitter == nil {
		return
	}
	defer func() {
		if r := recover(); r != nil {
			b.log.Warnw("client-side emit panicked", "panic", fmt.Sprint(r))
		}
	}()
	b.emitter.Emit(vendor, eventName, params)
	b.log.Debugw("client-side event emitted", "event_name", eventName)
}

// safeExecute runs a delivery and turns errors and panics into false.
func (b *base) safeExecute(ctx context.Context, operation string, fn func(ctx context.Context) error) (ok bool) {
	defer func() {
		if r := recover(); r != nil {
			b.log.Errorw(operation+" panicked", "panic", fmt.Sprint(r))
			ok = false
		}
	}()
	if err := fn(ctx); err != nil {
		if httpErr, isStatus := httpclient.IsHTTPError(err); isStatus {
			b.log.Errorw(operation+" failed", "status", httpErr.StatusCode, "response", string(httpErr.Response))
		} else {
			b.log.Errorw(operation+" failed", "error", err)
		}
		return false
	}
	return true
}

// publicParams copies event data without personal or request-context fields,
// whatever the case of their keys.
func publicParams(data model.EventData) map[string]any {
	return lo.OmitBy(map[string]any(data), func(key string, _ any) bool {
		return model.IsReservedKey(key)
	})
}

// resolveName looks eventType up in table and falls back to fallback(eventType).
func resolveName(table map[model.EventType]string, eventType model.EventType, fallback func(model.EventType) string) string {
	if name, ok := table[eventType]; ok {
		return name
	}
	return fallback(eventType)
}
