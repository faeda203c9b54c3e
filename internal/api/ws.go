package api

import (
	"net/http"
	"slices"
	"strconv"

	"github.com/Gabrielferreira1/fullstack-chat-app/internal/server"
	"github.com/gorilla/websocket"
	"github.com/sirupsen/logrus"
)

func (s *GoChatApp) serveWs(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		s.writeError(w, NewUnauthorizedError())
		return
	}

	// the handshake may name the user it expects to register as
	if v := r.URL.Query().Get("userId"); v != "" {
		claimed, err := strconv.Atoi(v)
		if err != nil {
			s.writeError(w, NewValidationError("invalid user id"))
			return
		}
		if claimed != userId {
			s.writeError(w, NewForbiddenError())
			return
		}
	}

	if _, err := s.db.GetAccountById(r.Context(), userId); err != nil {
		s.writeError(w, storeError(err))
		return
	}

	connId, err := s.cs.NewConnectionId()
	if err != nil {
		s.writeError(w, NewInternalServerError(err))
		return
	}

	upgrader := websocket.Upgrader{
		CheckOrigin: func(r *http.Request) bool {
			origin := r.Header.Get("Origin")
			if origin == "" {
				return true
			}

			return slices.Contains(s.allowedOrigins, origin)
		},
	}
	conn, err := upgrader.Upgrade(w, r, nil)
	if err != nil {
		s.log.WithError(err).Warn("error upgrading connection")
		return
	}

	client := server.NewClient(connId, userId, conn, s.cs, s.log)
	if err := s.cs.RegisterClient(client); err != nil {
		s.log.WithError(err).Warn("rejecting connection")
		conn.WriteMessage(websocket.CloseMessage, websocket.FormatCloseMessage(websocket.CloseGoingAway, "server shutting down"))
		conn.Close()
		return
	}

	s.log.WithFields(logrus.Fields{
		"user_id": client.UserId(),
		"conn_id": client.Id(),
	}).Debug("websocket connected")

	go client.Write()
	go client.Read()
}
