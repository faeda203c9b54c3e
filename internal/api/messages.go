package api

import (
	"database/sql"
	"errors"
	"net/http"
	"strconv"

	"github.com/Gabrielferreira1/fullstack-chat-app/internal/database"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/stats"
	"github.com/sirupsen/logrus"
)

const (
	defaultHistoryLimit = 50
	maxHistoryLimit     = 100
	messagesFolder      = "messages"
)

func (s *GoChatApp) getSidebarUsers(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		s.writeError(w, NewUnauthorizedError())
		return
	}

	users, err := s.db.ListAccounts(r.Context(), userId)
	if err != nil {
		s.writeError(w, NewInternalServerError(err))
		return
	}

	s.writeJson(w, http.StatusOK, toSummaries(users))
}

func (s *GoChatApp) getMessages(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		s.writeError(w, NewUnauthorizedError())
		return
	}

	otherId, errResp := pathId(r)
	if errResp != nil {
		s.writeError(w, errResp)
		return
	}

	var (
		before = 0
		limit  = defaultHistoryLimit
		err    error
	)

	if v := r.URL.Query().Get("before"); v != "" {
		before, err = strconv.Atoi(v)
		if err != nil || before < 0 {
			s.writeError(w, NewValidationError("before must be a positive integer"))
			return
		}
	}

	if v := r.URL.Query().Get("limit"); v != "" {
		limit, err = strconv.Atoi(v)
		if err != nil || limit <= 0 {
			s.writeError(w, NewValidationError("limit must be a positive integer"))
			return
		}
		limit = min(limit, maxHistoryLimit)
	}

	msgs, err := s.db.GetMessages(r.Context(), userId, otherId, before, limit)
	if err != nil {
		s.writeError(w, NewInternalServerError(err))
		return
	}

	s.writeJson(w, http.StatusOK, toMessages(msgs))
}

func (s *GoChatApp) sendMessage(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		s.writeError(w, NewUnauthorizedError())
		return
	}

	receiverId, errResp := pathId(r)
	if errResp != nil {
		s.writeError(w, errResp)
		return
	}

	var req SendMessageRequest
	if errResp := s.decodeRequest(w, r, &req); errResp != nil {
		s.writeError(w, errResp)
		return
	}

	if _, err := s.db.GetAccountById(r.Context(), receiverId); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			s.writeError(w, &ApiError{StatusCode: http.StatusNotFound, Message: "receiver not found"})
			return
		}
		s.writeError(w, NewInternalServerError(err))
		return
	}

	var imageURL string
	if req.Image != "" {
		imageURL, errResp = s.upload(r, messagesFolder, req.Image)
		if errResp != nil {
			s.writeError(w, errResp)
			return
		}
	}

	externalId, err := s.generateShortId()
	if err != nil {
		s.writeError(w, NewInternalServerError(err))
		return
	}

	stored, err := s.db.CreateMessage(r.Context(), database.CreateMessageParams{
		ExternalId: externalId,
		SenderId:   userId,
		ReceiverId: receiverId,
		Text:       req.Text,
		Image:      imageURL,
	})
	if err != nil {
		s.writeError(w, NewInternalServerError(err))
		return
	}

	s.count(stats.MessagesStored)

	msg := toMessage(stored)
	if !s.cs.Relay(receiverId, msg) {
		s.log.WithFields(logrus.Fields{
			"sender_id":   userId,
			"receiver_id": receiverId,
		}).Debug("message stored without live delivery")
	}

	s.writeJson(w, http.StatusCreated, msg)
}
