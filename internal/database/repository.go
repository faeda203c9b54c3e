package database

import "context"

type GoChatRepository interface {
	Ping() error
	CreateAccount(ctx context.Context, params CreateAccountParams) (User, error)
	GetAccountById(ctx context.Context, accountId int) (User, error)
	GetAccountByEmail(ctx context.Context, email string) (User, error)
	UpdateProfilePic(ctx context.Context, accountId int, profilePic string) (User, error)
	UpdateSubscriptionPlan(ctx context.Context, accountId int, plan string, profilePublic bool) error
	ListAccounts(ctx context.Context, excludeId int) ([]UserSummary, error)
	SearchAccounts(ctx context.Context, excludeId int, name string, limit int) ([]UserSummary, error)
	UpdateFriendPair(ctx context.Context, aId, bId int, fn FriendPairFunc) error
	ListFriends(ctx context.Context, accountId int) ([]UserSummary, error)
	ListReceivedRequests(ctx context.Context, accountId int) ([]UserSummary, error)
	ListSentRequests(ctx context.Context, accountId int) ([]UserSummary, error)
	CreateMessage(ctx context.Context, params CreateMessageParams) (Message, error)
	GetMessages(ctx context.Context, accountId, otherId, before, limit int) ([]Message, error)
}
