package database

import (
	"context"

	"github.com/stretchr/testify/mock"
)

type MockGoChatRepository struct {
	mock.Mock
}

func (m *MockGoChatRepository) Ping() error {
	args := m.Called()
	return args.Error(0)
}

func (m *MockGoChatRepository) CreateAccount(_ context.Context, params CreateAccountParams) (User, error) {
	args := m.Called(params)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockGoChatRepository) GetAccountById(_ context.Context, accountId int) (User, error) {
	args := m.Called(accountId)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockGoChatRepository) GetAccountByEmail(_ context.Context, email string) (User, error) {
	args := m.Called(email)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockGoChatRepository) UpdateProfilePic(_ context.Context, accountId int, profilePic string) (User, error) {
	args := m.Called(accountId, profilePic)
	return args.Get(0).(User), args.Error(1)
}

func (m *MockGoChatRepository) UpdateSubscriptionPlan(_ context.Context, accountId int, plan string, profilePublic bool) error {
	args := m.Called(accountId, plan, profilePublic)
	return args.Error(0)
}

func (m *MockGoChatRepository) ListAccounts(_ context.Context, excludeId int) ([]UserSummary, error) {
	args := m.Called(excludeId)
	return args.Get(0).([]UserSummary), args.Error(1)
}

func (m *MockGoChatRepository) SearchAccounts(_ context.Context, excludeId int, name string, limit int) ([]UserSummary, error) {
	args := m.Called(excludeId, name, limit)
	return args.Get(0).([]UserSummary), args.Error(1)
}

// UpdateFriendPair runs fn against the two *User values the expectation
// returns, mimicking the locked read-modify-write of the real repository.
// Expectations return (a *User, b *User, err error); a nil user skips fn.
func (m *MockGoChatRepository) UpdateFriendPair(_ context.Context, aId, bId int, fn FriendPairFunc) error {
	args := m.Called(aId, bId)
	a, aOk := args.Get(0).(*User)
	b, bOk := args.Get(1).(*User)
	if aOk && bOk && a != nil && b != nil {
		if err := fn(a, b); err != nil {
			return err
		}
	}
	return args.Error(2)
}

func (m *MockGoChatRepository) ListFriends(_ context.Context, accountId int) ([]UserSummary, error) {
	args := m.Called(accountId)
	return args.Get(0).([]UserSummary), args.Error(1)
}

func (m *MockGoChatRepository) ListReceivedRequests(_ context.Context, accountId int) ([]UserSummary, error) {
	args := m.Called(accountId)
	return args.Get(0).([]UserSummary), args.Error(1)
}

func (m *MockGoChatRepository) ListSentRequests(_ context.Context, accountId int) ([]UserSummary, error) {
	args := m.Called(accountId)
	return args.Get(0).([]UserSummary), args.Error(1)
}

func (m *MockGoChatRepository) CreateMessage(_ context.Context, params CreateMessageParams) (Message, error) {
	args := m.Called(params)
	return args.Get(0).(Message), args.Error(1)
}

func (m *MockGoChatRepository) GetMessages(_ context.Context, accountId, otherId, before, limit int) ([]Message, error) {
	args := m.Called(accountId, otherId, before, limit)
	return args.Get(0).([]Message), args.Error(1)
}
