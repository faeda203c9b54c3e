// Package friends implements friend requests and acceptance on top of the
// account store. Each mutation touches two accounts and is applied through
// a single locked update of the pair.
package friends

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"slices"

	"github.com/Gabrielferreira1/fullstack-chat-app/internal/database"
	"github.com/sirupsen/logrus"
)

var (
	ErrSelfRequest      = errors.New("you cannot add yourself as a friend")
	ErrUserNotFound     = errors.New("user not found")
	ErrRequestPending   = errors.New("friend request already sent")
	ErrAlreadyFriends   = errors.New("you are already friends with this user")
	ErrNoPendingRequest = errors.New("no friend request found")
	ErrInconsistentPair = errors.New("inconsistent friend graph")
)

// Store is the subset of the repository the manager needs.
type Store interface {
	GetAccountById(ctx context.Context, accountId int) (database.User, error)
	UpdateFriendPair(ctx context.Context, aId, bId int, fn database.FriendPairFunc) error
	ListFriends(ctx context.Context, accountId int) ([]database.UserSummary, error)
	ListReceivedRequests(ctx context.Context, accountId int) ([]database.UserSummary, error)
	ListSentRequests(ctx context.Context, accountId int) ([]database.UserSummary, error)
}

type Requests struct {
	Received []database.UserSummary
	Sent     []database.UserSummary
}

type Manager struct {
	store Store
	log   *logrus.Logger
}

func NewManager(store Store, logger *logrus.Logger) *Manager {
	return &Manager{
		store: store,
		log:   logger,
	}
}

// SendRequest records a pending request between requester and target. The
// pending id is written on both accounts: target gets requester and
// requester gets target.
func (m *Manager) SendRequest(ctx context.Context, requesterId, targetId int) error {
	if requesterId == targetId {
		return ErrSelfRequest
	}

	err := m.store.UpdateFriendPair(ctx, requesterId, targetId, func(requester, target *database.User) error {
		if slices.Contains(target.FriendRequests, requester.Id) || slices.Contains(requester.FriendRequests, target.Id) {
			return ErrRequestPending
		}

		if slices.Contains(requester.Friends, target.Id) || slices.Contains(target.Friends, requester.Id) {
			return ErrAlreadyFriends
		}

		target.FriendRequests = append(target.FriendRequests, requester.Id)
		requester.FriendRequests = append(requester.FriendRequests, target.Id)

		return CheckPair(*requester, *target)
	})
	if err != nil {
		return m.storeError("send friend request", err)
	}

	m.log.WithFields(logrus.Fields{
		"requester_id": requesterId,
		"target_id":    targetId,
	}).Info("friend request sent")
	return nil
}

// AcceptRequest turns the pending request from requester into a friendship
// on both accounts.
func (m *Manager) AcceptRequest(ctx context.Context, accepterId, requesterId int) error {
	if accepterId == requesterId {
		return ErrSelfRequest
	}

	err := m.store.UpdateFriendPair(ctx, accepterId, requesterId, func(accepter, requester *database.User) error {
		if !slices.Contains(accepter.FriendRequests, requester.Id) {
			return ErrNoPendingRequest
		}

		accepter.FriendRequests = removeId(accepter.FriendRequests, requester.Id)
		accepter.Friends = append(accepter.Friends, requester.Id)

		requester.FriendRequests = removeId(requester.FriendRequests, accepter.Id)
		requester.Friends = append(requester.Friends, accepter.Id)

		return CheckPair(*accepter, *requester)
	})
	if err != nil {
		return m.storeError("accept friend request", err)
	}

	m.log.WithFields(logrus.Fields{
		"accepter_id":  accepterId,
		"requester_id": requesterId,
	}).Info("friend request accepted")
	return nil
}

func (m *Manager) ListFriends(ctx context.Context, userId int) ([]database.UserSummary, error) {
	if _, err := m.store.GetAccountById(ctx, userId); err != nil {
		return nil, m.storeError("get account", err)
	}

	friends, err := m.store.ListFriends(ctx, userId)
	if err != nil {
		return nil, fmt.Errorf("list friends: %w", err)
	}

	return friends, nil
}

// ListRequests resolves the caller's own pending list as received requests
// and finds sent requests by scanning every other account's pending list.
func (m *Manager) ListRequests(ctx context.Context, userId int) (Requests, error) {
	if _, err := m.store.GetAccountById(ctx, userId); err != nil {
		return Requests{}, m.storeError("get account", err)
	}

	received, err := m.store.ListReceivedRequests(ctx, userId)
	if err != nil {
		return Requests{}, fmt.Errorf("list received requests: %w", err)
	}

	sent, err := m.store.ListSentRequests(ctx, userId)
	if err != nil {
		return Requests{}, fmt.Errorf("list sent requests: %w", err)
	}

	return Requests{Received: received, Sent: sent}, nil
}

// CheckPair reports whether the friend lists of a and b agree with each
// other: friendship and pending requests are symmetric, no id is listed
// twice, and a pair is never both friends and pending.
func CheckPair(a, b database.User) error {
	for _, u := range []database.User{a, b} {
		if hasDuplicates(u.Friends) {
			return fmt.Errorf("%w: duplicate friend on user %d", ErrInconsistentPair, u.Id)
		}
		if hasDuplicates(u.FriendRequests) {
			return fmt.Errorf("%w: duplicate friend request on user %d", ErrInconsistentPair, u.Id)
		}
	}

	aFriend := slices.Contains(a.Friends, b.Id)
	bFriend := slices.Contains(b.Friends, a.Id)
	if aFriend != bFriend {
		return fmt.Errorf("%w: friendship between %d and %d is one-sided", ErrInconsistentPair, a.Id, b.Id)
	}

	aPending := slices.Contains(a.FriendRequests, b.Id)
	bPending := slices.Contains(b.FriendRequests, a.Id)
	if aPending != bPending {
		return fmt.Errorf("%w: request between %d and %d is one-sided", ErrInconsistentPair, a.Id, b.Id)
	}

	if aFriend && aPending {
		return fmt.Errorf("%w: %d and %d are both friends and pending", ErrInconsistentPair, a.Id, b.Id)
	}

	return nil
}

func (m *Manager) storeError(op string, err error) error {
	switch {
	case errors.Is(err, sql.ErrNoRows):
		return ErrUserNotFound
	case errors.Is(err, ErrInconsistentPair):
		m.log.WithError(err).Error(op)
		return err
	case errors.Is(err, ErrRequestPending),
		errors.Is(err, ErrAlreadyFriends),
		errors.Is(err, ErrNoPendingRequest):
		return err
	default:
		return fmt.Errorf("%s: %w", op, err)
	}
}

func removeId(ids []int, id int) []int {
	return slices.DeleteFunc(ids, func(v int) bool { return v == id })
}

func hasDuplicates(ids []int) bool {
	seen := make(map[int]struct{}, len(ids))
	for _, id := range ids {
		if _, ok := seen[id]; ok {
			return true
		}
		seen[id] = struct{}{}
	}
	return false
}
