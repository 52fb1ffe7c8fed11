package mockservice

import (
	"context"

	"lead-tracking-service/internal/identity"
	"lead-tracking-service/internal/model"

	"github.com/stretchr/testify/mock"
)

type ContactService struct {
	mock.Mock
}

func (m *ContactService) BuildContact(req model.ContactRequest) (model.ContactRequest, error) {
	args := m.Called(req)
	return args.Get(0).(model.ContactRequest), args.Error(1)
}

func (m *ContactService) Submit(ctx context.Context, req model.ContactRequest, rc model.RequestContext, store identity.Store) (model.ContactResult, error) {
	args := m.Called(ctx, req, rc, store)
	return args.Get(0).(model.ContactResult), args.Error(1)
}

type TrackingService struct {
	mock.Mock
}

func (m *TrackingService) TrackPageView(ctx context.Context, req model.PageViewRequest, rc model.RequestContext, store identity.Store) (model.TrackResult, error) {
	args := m.Called(ctx, req, rc, store)
	return args.Get(0).(model.TrackResult), args.Error(1)
}

func (m *TrackingService) TrackFormEvent(ctx context.Context, req model.FormEventRequest, rc model.RequestContext, store identity.Store) (model.TrackResult, error) {
	args := m.Called(ctx, req, rc, store)
	return args.Get(0).(model.TrackResult), args.Error(1)
}

func (m *TrackingService) TrackEvent(ctx context.Context, req model.TrackRequest, rc model.RequestContext, store identity.Store) (model.TrackResult, error) {
	args := m.Called(ctx, req, rc, store)
	return args.Get(0).(model.TrackResult), args.Error(1)
}

func (m *TrackingService) EnabledPlatforms() []string {
	return m.Called().Get(0).([]string)
}
