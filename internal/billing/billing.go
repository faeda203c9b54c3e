// Package billing creates hosted checkout sessions and turns verified
// payment webhooks into plan changes.
package billing

import (
	"context"
	"errors"
)

const (
	PlanPremium = "premium"
	PlanPro     = "pro"

	Currency = "brl"
)

var (
	ErrUnknownPlan      = errors.New("unknown plan")
	ErrInvalidSignature = errors.New("invalid webhook signature")
	ErrInvalidEvent     = errors.New("invalid webhook event")
	ErrNotConfigured    = errors.New("payments are not configured")
)

type Plan struct {
	Name   string
	Amount int64
}

var plans = map[string]Plan{
	PlanPremium: {Name: "Premium Plan", Amount: 999},
	PlanPro:     {Name: "Pro Plan", Amount: 1999},
}

func LookupPlan(name string) (Plan, error) {
	p, ok := plans[name]
	if !ok {
		return Plan{}, ErrUnknownPlan
	}
	return p, nil
}

// ProfilePublic reports whether a subscription plan makes the profile
// visible to everyone.
func ProfilePublic(plan string) bool {
	return plan == PlanPro
}

// CheckoutCompleted is the payload of a successful checkout.
type CheckoutCompleted struct {
	SessionId string
	UserId    int
	Plan      string
}

type Provider interface {
	CreateCheckoutSession(ctx context.Context, userId int, plan string) (string, error)
	// ParseWebhook verifies the signature and returns the completed
	// checkout it carries, or nil for events that do not change a plan.
	ParseWebhook(payload []byte, signatureHeader string) (*CheckoutCompleted, error)
}

type Disabled struct{}

func (Disabled) CreateCheckoutSession(context.Context, int, string) (string, error) {
	return "", ErrNotConfigured
}

func (Disabled) ParseWebhook([]byte, string) (*CheckoutCompleted, error) {
	return nil, ErrNotConfigured
}
