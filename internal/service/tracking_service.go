package service

import (
	"context"
	"fmt"

	"lead-tracking-service/internal/identity"
	"lead-tracking-service/internal/model"
	"lead-tracking-service/internal/tracking"
)

// Dispatcher fans events out to the analytics platforms. *tracking.Coordinator
// implements it.
type Dispatcher interface {
	TrackEvent(ctx context.Context, event model.UnifiedEvent) model.Results
	TrackPageView(ctx context.Context, event model.UnifiedEvent) model.Results
	TrackFormEvent(ctx context.Context, event model.UnifiedEvent) model.Results
	EnabledPlatforms() []string
}

type TrackingService interface {
	TrackPageView(ctx context.Context, req model.PageViewRequest, rc model.RequestContext, store identity.Store) (model.TrackResult, error)
	TrackFormEvent(ctx context.Context, req model.FormEventRequest, rc model.RequestContext, store identity.Store) (model.TrackResult, error)
	TrackEvent(ctx context.Context, req model.TrackRequest, rc model.RequestContext, store identity.Store) (model.TrackResult, error)
	EnabledPlatforms() []string
}

type trackingService struct {
	dispatcher Dispatcher
}

// NewTrackingService constructs a TrackingService over dispatcher.
func NewTrackingService(dispatcher Dispatcher) TrackingService {
	return &trackingService{dispatcher: dispatcher}
}

// TrackPageView tracks the page the browser just mounted. The page location
// falls back to the Referer.
func (s *trackingService) TrackPageView(ctx context.Context, req model.PageViewRequest, rc model.RequestContext, store identity.Store) (model.TrackResult, error) {
	data := model.EventData{}
	location := req.PageLocation
	if location == "" {
		location = rc.Referer
	}
	if location != "" {
		data[model.DataPageLocation] = location
		data[model.DataEventSourceURL] = location
	}
	if req.PageTitle != "" {
		data[model.DataPageTitle] = req.PageTitle
	}

	event := s.newEvent(model.EventPageView, withRequestContext(data, rc), store)
	return model.TrackResult{EventID: event.ID, Results: s.dispatcher.TrackPageView(ctx, event)}, nil
}

func (s *trackingService) TrackFormEvent(ctx context.Context, req model.FormEventRequest, rc model.RequestContext, store identity.Store) (model.TrackResult, error) {
	if req.Type == "" {
		return model.TrackResult{}, &ValidationError{Message: "type is required"}
	}
	if !req.Type.IsFormEvent() {
		return model.TrackResult{}, &ValidationError{Message: fmt.Sprintf("unsupported form event type %q", req.Type)}
	}

	formName := req.FormName
	if formName == "" {
		formName = "contact_form"
	}
	data := model.EventData{model.DataFormName: formName}
	if req.Area != "" {
		data[model.DataArea] = req.Area
	}

	event := s.newEvent(req.Type, withRequestContext(data, rc), store)
	return model.TrackResult{EventID: event.ID, Results: s.dispatcher.TrackFormEvent(ctx, event)}, nil
}

// TrackEvent tracks an arbitrary event. Unknown types are passed through;
// each platform falls back to its own name for them.
func (s *trackingService) TrackEvent(ctx context.Context, req model.TrackRequest, rc model.RequestContext, store identity.Store) (model.TrackResult, error) {
	if req.Type == "" {
		return model.TrackResult{}, &ValidationError{Message: "type is required"}
	}

	data := withRequestContext(model.SanitizeData(req.Data), rc)
	event := s.newEvent(req.Type, data, store)
	return model.TrackResult{EventID: event.ID, Results: s.dispatcher.TrackEvent(ctx, event)}, nil
}

func (s *trackingService) EnabledPlatforms() []string {
	return s.dispatcher.EnabledPlatforms()
}

func (s *trackingService) newEvent(eventType model.EventType, data model.EventData, store identity.Store) model.UnifiedEvent {
	ids := identity.NewManager(store)
	return tracking.NewEvent(eventType, data, ids.GetOrCreateClientID(), ids.GetOrCreateSessionID())
}
