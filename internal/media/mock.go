package media

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockUploader struct {
	mock.Mock
}

func (m *MockUploader) Upload(_ context.Context, folder, dataURI string) (string, error) {
	args := m.Called(folder, dataURI)
	return args.String(0), args.Error(1)
}
