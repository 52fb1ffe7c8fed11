package mockdispatcher

import (
	"context"

	"lead-tracking-service/internal/model"

	"github.com/stretchr/testify/mock"
)

type Dispatcher struct {
	mock.Mock
}

func (m *Dispatcher) TrackEvent(ctx context.Context, event model.UnifiedEvent) model.Results {
	return results(m.Called(ctx, event))
}

func (m *Dispatcher) TrackPageView(ctx context.Context, event model.UnifiedEvent) model.Results {
	return results(m.Called(ctx, event))
}

func (m *Dispatcher) TrackFormEvent(ctx context.Context, event model.UnifiedEvent) model.Results {
	return results(m.Called(ctx, event))
}

func (m *Dispatcher) EnabledPlatforms() []string {
	args := m.Called()
	if v := args.Get(0); v != nil {
		return v.([]string)
	}
	return nil
}

func results(args mock.Arguments) model.Results {
	if v := args.Get(0); v != nil {
		return v.(model.Results)
	}
	return nil
}
