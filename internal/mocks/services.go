package mocks

import (
	"github.com/nlufoundry/fulfiller/internal/domain"
)

// MockDialogService is a mock implementation of DialogService interface
type MockDialogService struct {
	FulfillFunc func(p *domain.Payload) error
}

func (m *MockDialogService) Fulfill(p *domain.Payload) error {
	if m.FulfillFunc != nil {
		return m.FulfillFunc(p)
	}
	return nil
}
