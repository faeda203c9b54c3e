package cache

import (
	"context"

	"github.com/Gabrielferreira1/fullstack-chat-app/internal/types"
	"github.com/stretchr/testify/mock"
)

type MockUserCache struct {
	mock.Mock
}

func (m *MockUserCache) Get(_ context.Context, userId int) (types.User, error) {
	args := m.Called(userId)
	return args.Get(0).(types.User), args.Error(1)
}

func (m *MockUserCache) Set(_ context.Context, user types.User) error {
	args := m.Called(user)
	return args.Error(0)
}

func (m *MockUserCache) Invalidate(_ context.Context, userIds ...int) error {
	args := m.Called(userIds)
	return args.Error(0)
}
