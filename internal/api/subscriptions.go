package api

import (
	"database/sql"
	"errors"
	"io"
	"net/http"

	"github.com/Gabrielferreira1/fullstack-chat-app/internal/billing"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/stats"
	"github.com/sirupsen/logrus"
)

const (
	maxWebhookSize  = 256 << 10
	signatureHeader = "Stripe-Signature"
)

type CheckoutResponse struct {
	URL string `json:"url"`
}

type WebhookResponse struct {
	Received bool `json:"received"`
}

func (s *GoChatApp) createCheckoutSession(w http.ResponseWriter, r *http.Request) {
	userId, ok := UserId(r.Context())
	if !ok {
		s.writeError(w, NewUnauthorizedError())
		return
	}

	var req CheckoutRequest
	if errResp := s.decodeRequest(w, r, &req); errResp != nil {
		s.writeError(w, errResp)
		return
	}

	url, err := s.billing.CreateCheckoutSession(r.Context(), userId, req.Plan)
	if err != nil {
		if errors.Is(err, billing.ErrUnknownPlan) {
			s.writeError(w, NewValidationError(err.Error()))
			return
		}
		s.writeError(w, NewExternalServiceError(err))
		return
	}

	s.writeJson(w, http.StatusOK, CheckoutResponse{URL: url})
}

func (s *GoChatApp) stripeWebhook(w http.ResponseWriter, r *http.Request) {
	r.Body = http.MaxBytesReader(w, r.Body, maxWebhookSize)
	payload, err := io.ReadAll(r.Body)
	if err != nil {
		var tooLarge *http.MaxBytesError
		if errors.As(err, &tooLarge) {
			s.log.WithField("limit", tooLarge.Limit).Warn("webhook payload too large")
			s.writeError(w, NewPayloadTooLargeError())
			return
		}
		s.writeError(w, NewBadRequestError())
		return
	}

	event, err := s.billing.ParseWebhook(payload, r.Header.Get(signatureHeader))
	if err != nil {
		s.log.WithError(err).Warn("rejected webhook")
		switch {
		case errors.Is(err, billing.ErrInvalidSignature), errors.Is(err, billing.ErrInvalidEvent):
			s.writeError(w, NewValidationError(err.Error()))
			return
		case errors.Is(err, billing.ErrNotConfigured):
			// nothing can verify the signature
			s.writeError(w, NewBadRequestError())
			return
		}
		s.writeError(w, NewExternalServiceError(err))
		return
	}

	if event == nil {
		s.writeJson(w, http.StatusOK, WebhookResponse{Received: true})
		return
	}

	log := s.log.WithFields(logrus.Fields{
		"user_id":    event.UserId,
		"plan":       event.Plan,
		"session_id": event.SessionId,
	})

	err = s.db.UpdateSubscriptionPlan(r.Context(), event.UserId, event.Plan, billing.ProfilePublic(event.Plan))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			log.Warn("checkout completed for unknown user")
			s.writeJson(w, http.StatusOK, WebhookResponse{Received: true})
			return
		}
		s.writeError(w, NewInternalServerError(err))
		return
	}

	s.invalidate(r, event.UserId)
	s.count(stats.CheckoutsCompleted)
	log.Info("subscription updated")
	s.writeJson(w, http.StatusOK, WebhookResponse{Received: true})
}
