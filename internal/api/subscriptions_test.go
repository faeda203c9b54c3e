package api

import (
	"database/sql"
	"errors"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/Gabrielferreira1/fullstack-chat-app/internal/billing"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/database"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/server"
	"github.com/Gabrielferreira1/fullstack-chat-app/internal/testutil"
	"github.com/stretchr/testify/assert"
)

func TestCreateCheckoutSession(t *testing.T) {
	tcases := []struct {
		name            string
		body            string
		expectCheckout  bool
		checkoutErr     error
		expectedCode    int
		expectedMessage string
	}{
		{
			name:           "premium",
			body:           `{"plan":"premium"}`,
			expectCheckout: true,
			expectedCode:   http.StatusOK,
		},
		{
			name:            "unsupported plan",
			body:            `{"plan":"free"}`,
			expectedCode:    http.StatusBadRequest,
			expectedMessage: "plan must be one of: premium, pro",
		},
		{
			name:            "provider failure",
			body:            `{"plan":"pro"}`,
			expectCheckout:  true,
			checkoutErr:     errors.New("create checkout session: card_declined"),
			expectedCode:    http.StatusInternalServerError,
			expectedMessage: "create checkout session: card_declined",
		},
		{
			name:            "payments disabled",
			body:            `{"plan":"pro"}`,
			expectCheckout:  true,
			checkoutErr:     billing.ErrNotConfigured,
			expectedCode:    http.StatusInternalServerError,
			expectedMessage: "payments are not configured",
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			ta := newTestApp(t)
			if tc.expectCheckout {
				plan := strings.Trim(strings.TrimPrefix(tc.body, `{"plan":`), `"}`)
				ta.payments.On("CreateCheckoutSession", 1, plan).Return("https://checkout.stripe.com/c/pay/cs_test", tc.checkoutErr).Once()
			}

			rr := ta.do(t, http.MethodPost, "/api/subscriptions/create-checkout-session", tc.body, 1)
			assert.Equal(t, tc.expectedCode, rr.Code)

			if tc.expectedCode != http.StatusOK {
				assert.Equal(t, tc.expectedMessage, decodeBody[ApiError](t, rr).Message)
				return
			}
			assert.Equal(t, "https://checkout.stripe.com/c/pay/cs_test", decodeBody[CheckoutResponse](t, rr).URL)
		})
	}
}

func TestStripeWebhook(t *testing.T) {
	const payload = `{"type":"checkout.session.completed"}`

	tcases := []struct {
		name         string
		event        *billing.CheckoutCompleted
		parseErr     error
		expectUpdate bool
		updateErr    error
		expectedCode int
	}{
		{
			name:         "pro checkout makes the profile public",
			event:        &billing.CheckoutCompleted{SessionId: "cs_1", UserId: 4, Plan: billing.PlanPro},
			expectUpdate: true,
			expectedCode: http.StatusOK,
		},
		{
			name:         "premium checkout",
			event:        &billing.CheckoutCompleted{SessionId: "cs_2", UserId: 4, Plan: billing.PlanPremium},
			expectUpdate: true,
			expectedCode: http.StatusOK,
		},
		{
			name:         "ignored event type",
			expectedCode: http.StatusOK,
		},
		{
			name:         "bad signature",
			parseErr:     fmt.Errorf("%w: no valid signature", billing.ErrInvalidSignature),
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "malformed event",
			parseErr:     fmt.Errorf("%w: plan \"gold\"", billing.ErrInvalidEvent),
			expectedCode: http.StatusBadRequest,
		},
		{
			name:         "unknown user",
			event:        &billing.CheckoutCompleted{SessionId: "cs_3", UserId: 4, Plan: billing.PlanPro},
			expectUpdate: true,
			updateErr:    sql.ErrNoRows,
			expectedCode: http.StatusOK,
		},
		{
			name:         "store failure",
			event:        &billing.CheckoutCompleted{SessionId: "cs_4", UserId: 4, Plan: billing.PlanPro},
			expectUpdate: true,
			updateErr:    errors.New("connection reset"),
			expectedCode: http.StatusInternalServerError,
		},
	}

	for _, tc := range tcases {
		t.Run(tc.name, func(t *testing.T) {
			ta := newTestApp(t)
			ta.payments.On("ParseWebhook", []byte(payload), "t=1,v1=abc").Return(tc.event, tc.parseErr).Once()
			if tc.expectUpdate {
				ta.repo.On("UpdateSubscriptionPlan", tc.event.UserId, tc.event.Plan, tc.event.Plan == billing.PlanPro).
					Return(tc.updateErr).Once()
				if tc.updateErr == nil {
					ta.users.On("Invalidate", []int{tc.event.UserId}).Return(nil).Once()
				}
			}

			req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(payload))
			req.Header.Set("Stripe-Signature", "t=1,v1=abc")
			rr := httptest.NewRecorder()
			ta.mux.Handler.ServeHTTP(rr, req)

			assert.Equal(t, tc.expectedCode, rr.Code)
			if tc.expectedCode == http.StatusOK {
				assert.True(t, decodeBody[WebhookResponse](t, rr).Received)
			}
		})
	}
}

func TestStripeWebhook_PaymentsDisabled(t *testing.T) {
	app := NewGoChatApp(http.NewServeMux(), testutil.TestLogger(t), &server.ChatServer{}, &database.MockGoChatRepository{}, nil, testConfig)

	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(`{"type":"checkout.session.completed"}`))
	req.Header.Set("Stripe-Signature", "t=1,v1=forged")
	rr := httptest.NewRecorder()
	app.mux.Handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.NotContains(t, rr.Body.String(), "not configured", "expected configuration details to stay private")
}

func TestStripeWebhook_PayloadTooLarge(t *testing.T) {
	ta := newTestApp(t)

	body := `{"type":"checkout.session.completed","pad":"` + strings.Repeat("a", maxWebhookSize) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/api/webhooks/stripe", strings.NewReader(body))
	req.Header.Set("Stripe-Signature", "t=1,v1=abc")
	rr := httptest.NewRecorder()
	ta.mux.Handler.ServeHTTP(rr, req)

	assert.Equal(t, http.StatusRequestEntityTooLarge, rr.Code)
	ta.payments.AssertNotCalled(t, "ParseWebhook")
}
