package mockwebhook

import (
	"context"

	"lead-tracking-service/internal/model"

	"github.com/stretchr/testify/mock"
)

type Submitter struct {
	mock.Mock
}

func (m *Submitter) Submit(ctx context.Context, form model.ContactRequest) error {
	return m.Called(ctx, form).Error(0)
}
