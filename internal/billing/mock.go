package billing

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockProvider struct {
	mock.Mock
}

func (m *MockProvider) CreateCheckoutSession(_ context.Context, userId int, plan string) (string, error) {
	args := m.Called(userId, plan)
	return args.String(0), args.Error(1)
}

func (m *MockProvider) ParseWebhook(payload []byte, signatureHeader string) (*CheckoutCompleted, error) {
	args := m.Called(payload, signatureHeader)
	completed, _ := args.Get(0).(*CheckoutCompleted)
	return completed, args.Error(1)
}
