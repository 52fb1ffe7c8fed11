package mockplatform

import (
	"context"

	"lead-tracking-service/internal/model"
	"lead-tracking-service/internal/tracking"

	"github.com/stretchr/testify/mock"
)

type Platform struct {
	mock.Mock
	PlatformName string
	IsEnabled    bool
}

// Interface compliance check
var _ tracking.Platform = &Platform{}

// New returns an enabled mock platform with the given name.
func New(name string) *Platform {
	return &Platform{PlatformName: name, IsEnabled: true}
}

func (m *Platform) Name() string {
	return m.PlatformName
}

func (m *Platform) Enabled() bool {
	return m.IsEnabled
}

func (m *Platform) TrackEvent(ctx context.Context, event model.UnifiedEvent) bool {
	return m.Called(ctx, event).Bool(0)
}

func (m *Platform) TrackPageView(ctx context.Context, event model.UnifiedEvent) bool {
	return m.Called(ctx, event).Bool(0)
}

func (m *Platform) TrackFormEvent(ctx context.Context, event model.UnifiedEvent) bool {
	return m.Called(ctx, event).Bool(0)
}
