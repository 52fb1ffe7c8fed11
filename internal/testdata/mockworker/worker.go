package mockworker

import (
	"lead-tracking-service/internal/model"

	"github.com/stretchr/testify/mock"
)

type Worker struct {
	mock.Mock
}

func (m *Worker) Enqueue(event model.UnifiedEvent) bool {
	return m.Called(event).Bool(0)
}

func (m *Worker) Shutdown() {
	m.Called()
}
