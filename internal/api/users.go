package api

import (
	"errors"
	"net/http"
	"strconv"
	"strings"

	"github.com/Gabrielferreira1/fullstack-chat-app/internal/friends"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/types"
)

const searchLimit = 20

func pathId(r *http.Request) (int, *ApiError) {
	id, err := strconv.Atoi(r.PathValue("id"))
	if err != nil || id <= 0 {
		return 0, NewValidationError("invalid user id")
	}
	return id, nil
}

func friendError(err error) *ApiError {
	switch {
	case errors.Is(err, friends.ErrSelfRequest):
		return NewValidationError(err.Error())
	case errors.Is(err, friends.ErrUserNotFound):
		return &ApiError{StatusCode: http.StatusNotFound, Message: err.Error()}
	case errors.Is(err, friends.ErrRequestPending),
		errors.Is(err, friends.ErrAlreadyFriends),
		errors.Is(err, friends.ErrNoPendingRequest):
		return NewConflictError(err.Error())
	default:
		return NewInternalServerError(err)
	}
}

func (s *GoChatApp) sendFriendRequest(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		s.writeError(w, NewUnauthorizedError())
		return
	}

	targetId, errResp := pathId(r)
	if errResp != nil {
		s.writeError(w, errResp)
		return
	}

	if err := s.friends.SendRequest(r.Context(), userId, targetId); err != nil {
		s.writeError(w, friendError(err))
		return
	}

	s.invalidate(r, userId, targetId)
	s.writeJson(w, http.StatusOK, MessageResponse{Message: "friend request sent"})
}

func (s *GoChatApp) acceptFriendRequest(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		s.writeError(w, NewUnauthorizedError())
		return
	}

	requesterId, errResp := pathId(r)
	if errResp != nil {
		s.writeError(w, errResp)
		return
	}

	if err := s.friends.AcceptRequest(r.Context(), userId, requesterId); err != nil {
		s.writeError(w, friendError(err))
		return
	}

	s.invalidate(r, userId, requesterId)
	s.writeJson(w, http.StatusOK, MessageResponse{Message: "friend request accepted"})
}

func (s *GoChatApp) getFriends(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		s.writeError(w, NewUnauthorizedError())
		return
	}

	list, err := s.friends.ListFriends(r.Context(), userId)
	if err != nil {
		s.writeError(w, friendError(err))
		return
	}

	s.writeJson(w, http.StatusOK, toSummaries(list))
}

func (s *GoChatApp) getFriendRequests(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		s.writeError(w, NewUnauthorizedError())
		return
	}

	reqs, err := s.friends.ListRequests(r.Context(), userId)
	if err != nil {
		s.writeError(w, friendError(err))
		return
	}

	s.writeJson(w, http.StatusOK, types.FriendRequests{
		Received: toSummaries(reqs.Received),
		Sent:     toSummaries(reqs.Sent),
	})
}

func (s *GoChatApp) searchUsers(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		s.writeError(w, NewUnauthorizedError())
		return
	}

	name := strings.TrimSpace(r.URL.Query().Get("name"))
	if name == "" {
		s.writeError(w, NewValidationError("name is required"))
		return
	}

	users, err := s.db.SearchAccounts(r.Context(), userId, name, searchLimit)
	if err != nil {
		s.writeError(w, NewInternalServerError(err))
		return
	}

	s.writeJson(w, http.StatusOK, toSummaries(users))
}
