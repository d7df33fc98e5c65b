package payments

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	"github.com/stripe/stripe-go/v79"
	"github.com/stripe/stripe-go/v79/paymentintent"
)

// intentAPI is the slice of the Stripe SDK the provider calls.
type intentAPI struct {
	create func(*stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	update func(string, *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
	get    func(string, *stripe.PaymentIntentParams) (*stripe.PaymentIntent, error)
}

type StripeProvider struct {
	api    intentAPI
	cb     *gobreaker.CircuitBreaker
	logger *slog.Logger
}

func NewStripeProvider(secretKey string, logger *slog.Logger) *StripeProvider {
	stripe.Key = secretKey
	return newStripeProvider(intentAPI{
		create: paymentintent.New,
		update: paymentintent.Update,
		get:    paymentintent.Get,
	}, logger)
}

func newStripeProvider(api intentAPI, logger *slog.Logger) *StripeProvider {
	return &StripeProvider{api: api, cb: CircuitBreaker("stripe", logger), logger: logger}
}

// CircuitBreaker opens after three consecutive failures and retries
// with a single request after ten seconds.
func CircuitBreaker(name string, logger *slog.Logger) *gobreaker.CircuitBreaker {
	return gobreaker.NewCircuitBreaker(gobreaker.Settings{
		Name:        name,
		MaxRequests: 1,
		Timeout:     10 * time.Second,
		Interval:    0,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures > 2
		},
		IsSuccessful: func(err error) bool {
			return err == nil || errors.Is(err, ErrIntentNotFound)
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("circuit breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
		},
	})
}

func (p *StripeProvider) CreateIntent(ctx context.Context, params IntentParams) (Intent, error) {
	sp := intentParams(ctx, params)
	sp.Amount = stripe.Int64(params.Amount)
	sp.Currency = stripe.String(params.Currency)
	sp.AutomaticPaymentMethods = &stripe.PaymentIntentAutomaticPaymentMethodsParams{
		Enabled: stripe.Bool(true),
	}
	return p.call(func() (*stripe.PaymentIntent, error) { return p.api.create(sp) })
}

func (p *StripeProvider) UpdateIntent(ctx context.Context, intentID string, params IntentParams) (Intent, error) {
	sp := intentParams(ctx, params)
	sp.Amount = stripe.Int64(params.Amount)
	return p.call(func() (*stripe.PaymentIntent, error) { return p.api.update(intentID, sp) })
}

func (p *StripeProvider) Succeeded(ctx context.Context, intentID string) (bool, error) {
	sp := &stripe.PaymentIntentParams{}
	sp.Context = ctx
	intent, err := p.call(func() (*stripe.PaymentIntent, error) { return p.api.get(intentID, sp) })
	if err != nil {
		return false, err
	}
	return intent.Status == string(stripe.PaymentIntentStatusSucceeded), nil
}

func (p *StripeProvider) call(fn func() (*stripe.PaymentIntent, error)) (Intent, error) {
	res, err := p.cb.Execute(func() (interface{}, error) {
		pi, err := fn()
		if err != nil {
			var stripeErr *stripe.Error
			if errors.As(err, &stripeErr) && stripeErr.Code == stripe.ErrorCodeResourceMissing {
				return nil, ErrIntentNotFound
			}
			return nil, err
		}
		return pi, nil
	})
	if err != nil {
		return Intent{}, fmt.Errorf("stripe: %w", err)
	}
	pi := res.(*stripe.PaymentIntent)
	return Intent{
		ID:           pi.ID,
		ClientSecret: pi.ClientSecret,
		Status:       string(pi.Status),
		Amount:       pi.Amount,
		Currency:     string(pi.Currency),
	}, nil
}

func intentParams(ctx context.Context, params IntentParams) *stripe.PaymentIntentParams {
	sp := &stripe.PaymentIntentParams{}
	sp.Context = ctx
	for k, v := range params.Metadata {
		sp.AddMetadata(k, v)
	}
	if params.IdempotencyKey != "" {
		sp.SetIdempotencyKey(params.IdempotencyKey)
	}
	return sp
}
