package payments

import (
	"context"
	"strings"

	"github.com/google/uuid"
)

const localIntentPrefix = "pi_local_"

// LocalProvider stands in for a real payment provider in development. Every
// intent it issued counts as paid.
type LocalProvider struct{}

func NewLocalProvider() *LocalProvider { return &LocalProvider{} }

func (LocalProvider) CreateIntent(_ context.Context, params IntentParams) (Intent, error) {
	id := localIntentPrefix + strings.ReplaceAll(uuid.NewString(), "-", "")
	return Intent{
		ID:           id,
		ClientSecret: id + "_secret",
		Status:       "requires_payment_method",
		Amount:       params.Amount,
		Currency:     params.Currency,
	}, nil
}

func (LocalProvider) UpdateIntent(_ context.Context, intentID string, params IntentParams) (Intent, error) {
	if !strings.HasPrefix(intentID, localIntentPrefix) {
		return Intent{}, ErrIntentNotFound
	}
	return Intent{
		ID:           intentID,
		ClientSecret: intentID + "_secret",
		Status:       "requires_payment_method",
		Amount:       params.Amount,
		Currency:     params.Currency,
	}, nil
}

func (LocalProvider) Succeeded(_ context.Context, intentID string) (bool, error) {
	if !strings.HasPrefix(intentID, localIntentPrefix) {
		return false, ErrIntentNotFound
	}
	return true, nil
}
