package payments

import (
	"context"
	"errors"
)

var ErrIntentNotFound = errors.New("payment intent not found")

// IntentParams describes the amount to collect for a booking, in minor units.
type IntentParams struct {
	Amount         int64
	Currency       string
	Metadata       map[string]string
	IdempotencyKey string
}

type Intent struct {
	ID           string
	ClientSecret string
	Status       string
	Amount       int64
	Currency     string
}

// Provider creates and inspects payment intents. Capture and webhooks happen
// outside this service.
type Provider interface {
	CreateIntent(ctx context.Context, params IntentParams) (Intent, error)
	UpdateIntent(ctx context.Context, intentID string, params IntentParams) (Intent, error)
	Succeeded(ctx context.Context, intentID string) (bool, error)
}
