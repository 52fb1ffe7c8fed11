package tracking

import (
	"time"

	"github.com/cockroachdb/errors"

	"lead-tracking-service/internal/identity"
	"lead-tracking-service/internal/model"
)

var (
	ErrMissingID        = errors.New("event id is required")
	ErrMissingType      = errors.New("event type is required")
	ErrMissingClientID  = errors.New("client id is required")
	ErrMissingTimestamp = errors.New("timestamp is required")
)

var now = time.Now

// NewEvent builds a UnifiedEvent with a fresh id and the current time.
// An empty sessionID gets a generated one.
func NewEvent(eventType model.EventType, data model.EventData, clientID, sessionID string) model.UnifiedEvent {
	if sessionID == "" {
		sessionID = identity.GenerateSessionID()
	}
	if data == nil {
		data = model.EventData{}
	}
	return model.UnifiedEvent{
		ID:        identity.GenerateEventID(),
		Type:      eventType,
		Timestamp: now().Unix(),
		SessionID: sessionID,
		ClientID:  clientID,
		Data:      data,
	}
}

// ValidateEvent checks the fields every platform needs before delivery.
func ValidateEvent(event model.UnifiedEvent) error {
	switch {
	case event.ID == "":
		return ErrMissingID
	case event.Type == "":
		return ErrMissingType
	case event.ClientID == "":
		return ErrMissingClientID
	case event.Timestamp == 0:
		return ErrMissingTimestamp
	}
	return nil
}

// AsPageView returns a copy of event re-tagged as a page view.
func AsPageView(event model.UnifiedEvent) model.UnifiedEvent {
	event.Type = model.EventPageView
	return event
}
