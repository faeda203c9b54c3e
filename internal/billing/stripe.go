package billing

import (
	"context"
	"encoding/json"
	"fmt"
	"strconv"
	"strings"

	"github.com/Gabrielferreira1/fullstack-chat-app/internal/config"
	"github.com/stripe/stripe-go/v76"
	"github.com/stripe/stripe-go/v76/client"
	"github.com/stripe/stripe-go/v76/webhook"
)

type StripeProvider struct {
	api           *client.API
	webhookSecret string
	frontendURL   string
}

// NewStripeProvider builds a provider from cfg. backends may be nil to use
// the live Stripe endpoints.
func NewStripeProvider(cfg config.StripeConfig, backends *stripe.Backends) *StripeProvider {
	return &StripeProvider{
		api:           client.New(cfg.SecretKey, backends),
		webhookSecret: cfg.WebhookSecret,
		frontendURL:   strings.TrimRight(cfg.FrontendURL, "/"),
	}
}

func (p *StripeProvider) CreateCheckoutSession(ctx context.Context, userId int, plan string) (string, error) {
	price, err := LookupPlan(plan)
	if err != nil {
		return "", err
	}

	params := &stripe.CheckoutSessionParams{
		Mode:               stripe.String(string(stripe.CheckoutSessionModePayment)),
		PaymentMethodTypes: stripe.StringSlice([]string{"card"}),
		LineItems: []*stripe.CheckoutSessionLineItemParams{
			{
				PriceData: &stripe.CheckoutSessionLineItemPriceDataParams{
					Currency: stripe.String(Currency),
					ProductData: &stripe.CheckoutSessionLineItemPriceDataProductDataParams{
						Name: stripe.String(price.Name),
					},
					UnitAmount: stripe.Int64(price.Amount),
				},
				Quantity: stripe.Int64(1),
			},
		},
		ClientReferenceID: stripe.String(strconv.Itoa(userId)),
		SuccessURL:        stripe.String(p.frontendURL + "/success"),
		CancelURL:         stripe.String(p.frontendURL + "/cancel"),
	}
	params.Context = ctx
	params.AddMetadata("plan", plan)

	s, err := p.api.CheckoutSessions.New(params)
	if err != nil {
		return "", fmt.Errorf("create checkout session: %w", err)
	}

	return s.URL, nil
}

func (p *StripeProvider) ParseWebhook(payload []byte, signatureHeader string) (*CheckoutCompleted, error) {
	event, err := webhook.ConstructEventWithOptions(payload, signatureHeader, p.webhookSecret,
		webhook.ConstructEventOptions{
			Tolerance:                webhook.DefaultTolerance,
			IgnoreAPIVersionMismatch: true,
		})
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidSignature, err)
	}

	if event.Type != "checkout.session.completed" {
		return nil, nil
	}

	var session stripe.CheckoutSession
	if err := json.Unmarshal(event.Data.Raw, &session); err != nil {
		return nil, fmt.Errorf("%w: %v", ErrInvalidEvent, err)
	}

	userId, err := strconv.Atoi(session.ClientReferenceID)
	if err != nil {
		return nil, fmt.Errorf("%w: client reference %q", ErrInvalidEvent, session.ClientReferenceID)
	}

	plan := session.Metadata["plan"]
	if _, err := LookupPlan(plan); err != nil {
		return nil, fmt.Errorf("%w: plan %q", ErrInvalidEvent, plan)
	}

	return &CheckoutCompleted{
		SessionId: session.ID,
		UserId:    userId,
		Plan:      plan,
	}, nil
}
