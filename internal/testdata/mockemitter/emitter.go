package mockemitter

import (
	"github.com/stretchr/testify/mock"
)

type Emitter struct {
	mock.Mock
}

func (m *Emitter) Emit(vendor, eventName string, params map[string]any) {
	m.Called(vendor, eventName, params)
}
