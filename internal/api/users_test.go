package api

import (
	"database/sql"
	"errors"
	"net/http"
	"testing"

	"github.com/Gabrielferreira1/fullstack-chat-app/internal/database"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/types"
	"github.com/stretchr/testify/assert"
)

func TestSendFriendRequest(t *testing.T) {
	tcases := []struct {
		name            string
		path            string
		requester       *database.User
		target          *database.User
		pairErr         error
		expectPair      bool
		expectedCode    int
		expectedMessage string
	}{
		{
			name:            "sends request",
			path:            "/api/users/2/add-friend",
			requester:       &database.User{Id: 1},
			target:          &database.User{Id: 2},
			expectPair:      true,
			expectedCode:    http.StatusOK,
			expectedMessage: "friend request sent",
		},
		{
			name:            "request to self",
			path:            "/api/users/1/add-friend",
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "you cannot add yourself as a friend",
		},
		{
			name:            "invalid id",
			path:            "/api/users/abc/add-friend",
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "invalid user id",
		},
		{
			name:            "already pending",
			path:            "/api/users/2/add-friend",
			requester:       &database.User{Id: 1, FriendRequests: []int{2}},
			target:          &database.User{Id: 2, FriendRequests: []int{1}},
			expectPair:      true,
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "friend request already sent",
		},
		{
			name:            "already friends",
			path:            "/api/users/2/add-friend",
			requester:       &database.User{Id: 1, Friends: []int{2}},
			target:          &database.User{Id: 2, Friends: []int{1}},
			expectPair:      true,
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "you are already friends with this user",
		},
		{
			name:            "unknown user",
			path:            "/api/users/2/add-friend",
			pairErr:         sql.ErrNoRows,
			expectPair:      true,
			expectedCode:    http.StatusNotFound,
			expectedMessage: "user not found",
		},
		{
			name:            "store failure",
			path:            "/api/users/2/add-friend",
			pairErr:         errors.New("deadlock detected"),
			expectPair:      true,
			expectedCode:    http.StatusInternalServerError,
			expectedMessage: "internal server error",
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			ta := newTestApp(t)
			if tc.expectPair {
				ta.repo.On("UpdateFriendPair", 1, 2).Return(tc.requester, tc.target, tc.pairErr).Once()
			}
			if tc.expectedCode == http.StatusOK {
				ta.users.On("Invalidate", []int{1, 2}).Return(nil).Once()
			}

			rr := ta.do(t, http.MethodPost, tc.path, "", 1)
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.expectedMessage)

			if tc.expectedCode == http.StatusOK {
				assert.Equal(t, []int{2}, tc.requester.FriendRequests, "expected pending id on the requester")
				assert.Equal(t, []int{1}, tc.target.FriendRequests, "expected pending id on the target")
			}
		})
	}
}

func TestAcceptFriendRequest(t *testing.T) {
	tcases := []struct {
		name            string
		accepter        *database.User
		requester       *database.User
		expectedCode    int
		expectedMessage string
	}{
		{
			name:            "accepts pending request",
			accepter:        &database.User{Id: 1, FriendRequests: []int{2}},
			requester:       &database.User{Id: 2, FriendRequests: []int{1}},
			expectedCode:    http.StatusOK,
			expectedMessage: "friend request accepted",
		},
		{
			name:            "no pending request",
			accepter:        &database.User{Id: 1},
			requester:       &database.User{Id: 2},
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "no friend request found",
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			ta := newTestApp(t)
			ta.repo.On("UpdateFriendPair", 1, 2).Return(tc.accepter, tc.requester, nil).Once()
			if tc.expectedCode == http.StatusOK {
				ta.users.On("Invalidate", []int{1, 2}).Return(nil).Once()
			}

			rr := ta.do(t, http.MethodPost, "/api/users/2/accept-friend", "", 1)
			assert.Equal(t, tc.expectedCode, rr.Code)
			assert.Contains(t, rr.Body.String(), tc.expectedMessage)

			if tc.expectedCode == http.StatusOK {
				assert.Equal(t, []int{2}, tc.accepter.Friends)
				assert.Equal(t, []int{1}, tc.requester.Friends)
				assert.Empty(t, tc.accepter.FriendRequests)
				assert.Empty(t, tc.requester.FriendRequests)
			}
		})
	}
}

func TestGetFriends(t *testing.T) {
	ta := newTestApp(t)
	ta.repo.On("GetAccountById", 1).Return(database.User{Id: 1, Friends: []int{2}}, nil).Once()
	ta.repo.On("ListFriends", 1).Return([]database.UserSummary{{Id: 2, FullName: "Bia", ProfilePic: "p.png"}}, nil).Once()

	rr := ta.do(t, http.MethodGet, "/api/users/friends", "", 1)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.Equal(t, []types.UserSummary{{Id: 2, FullName: "Bia", ProfilePic: "p.png"}}, decodeBody[[]types.UserSummary](t, rr))
}

func TestGetFriends_Empty(t *testing.T) {
	ta := newTestApp(t)
	ta.repo.On("GetAccountById", 1).Return(database.User{Id: 1}, nil).Once()
	ta.repo.On("ListFriends", 1).Return([]database.UserSummary(nil), nil).Once()

	rr := ta.do(t, http.MethodGet, "/api/users/friends", "", 1)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `[]`, rr.Body.String())
}

func TestGetFriendRequests(t *testing.T) {
	ta := newTestApp(t)
	ta.repo.On("GetAccountById", 1).Return(database.User{Id: 1}, nil).Once()
	ta.repo.On("ListReceivedRequests", 1).Return([]database.UserSummary{{Id: 2, FullName: "Bia"}}, nil).Once()
	ta.repo.On("ListSentRequests", 1).Return([]database.UserSummary{}, nil).Once()

	rr := ta.do(t, http.MethodGet, "/api/users/requests", "", 1)
	assert.Equal(t, http.StatusOK, rr.Code)
	assert.JSONEq(t, `{"receivedRequests":[{"_id":2,"fullName":"Bia","profilePic":""}],"sentRequests":[]}`, rr.Body.String())
}

func TestGetFriendRequests_UnknownUser(t *testing.T) {
	ta := newTestApp(t)
	ta.repo.On("GetAccountById", 1).Return(database.User{}, sql.ErrNoRows).Once()

	rr := ta.do(t, http.MethodGet, "/api/users/requests", "", 1)
	assert.Equal(t, http.StatusNotFound, rr.Code)
}

func TestSearchUsers(t *testing.T) {
	t.Run("matches by name", func(t *testing.T) {
		ta := newTestApp(t)
		ta.repo.On("SearchAccounts", 1, "bia", searchLimit).Return([]database.UserSummary{{Id: 2, FullName: "Bia"}}, nil).Once()

		rr := ta.do(t, http.MethodGet, "/api/users/search?name=bia", "", 1)
		assert.Equal(t, http.StatusOK, rr.Code)
		assert.Len(t, decodeBody[[]types.UserSummary](t, rr), 1)
	})

	t.Run("name required", func(t *testing.T) {
		ta := newTestApp(t)

		rr := ta.do(t, http.MethodGet, "/api/users/search?name=%20", "", 1)
		assert.Equal(t, http.StatusBadRequest, rr.Code)
		assert.Equal(t, "name is required", decodeBody[ApiError](t, rr).Message)
	})
}
