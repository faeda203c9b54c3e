package database

import (
	"errors"
	"time"
)

// ErrDuplicateEmail is returned when an account already uses the email address.
var ErrDuplicateEmail = errors.New("email already registered")

type User struct {
	Id               int
	FullName         string
	EmailAddress     string
	PasswordHash     string
	ProfilePic       string
	Plan             string
	SubscriptionPlan string
	IsProfilePublic  bool
	Friends          []int
	FriendRequests   []int
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

type UserSummary struct {
	Id         int
	FullName   string
	ProfilePic string
}

type Message struct {
	Id         int
	ExternalId string
	SenderId   int
	ReceiverId int
	Text       string
	Image      string
	CreatedAt  time.Time
}

type CreateAccountParams struct {
	FullName     string
	EmailAddress string
	PasswordHash string
	Plan         string
}

type CreateMessageParams struct {
	ExternalId string
	SenderId   int
	ReceiverId int
	Text       string
	Image      string
}

// FriendPairFunc mutates the friend lists of two locked accounts. The
// accounts are passed in the same order as the ids given to UpdateFriendPair.
// Returning an error aborts the update without writing either record.
type FriendPairFunc func(a, b *User) error
