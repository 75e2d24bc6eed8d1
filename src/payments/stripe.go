package payments

import (
	"context"
	"fmt"
	"log"
	"math"

	"fcshop/src/lib"
	"fcshop/src/types"

	"github.com/stripe/stripe-go/v82"
)

// StripeGateway is the card-style processor adapter, backed by Stripe
// PaymentIntents.
type StripeGateway struct{}

func (g *StripeGateway) Name() types.Processor {
	return types.PROCESSOR_CARD
}

func (g *StripeGateway) CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (string, string, error) {
	sc := lib.GetStripeClient()
	params := stripe.PaymentIntentCreateParams{
		Amount:   stripe.Int64(int64(math.Round(amount * 100))),
		Currency: stripe.String(currency),
		Metadata: metadata,
	}
	pi, err := sc.V1PaymentIntents.Create(ctx, &params)
	if err != nil {
		log.Printf("[stripe] Error creating payment intent: %s\n", err.Error())
		return "", "", fmt.Errorf("%w: %s", types.ErrGatewayFailure, err.Error())
	}
	return pi.ID, pi.ClientSecret, nil
}

func (g *StripeGateway) Confirm(ctx context.Context, reference string) (ConfirmationStatus, error) {
	sc := lib.GetStripeClient()
	pi, err := sc.V1PaymentIntents.Retrieve(ctx, reference, nil)
	if err != nil {
		log.Printf("[stripe] Error retrieving payment intent %s: %s\n", reference, err.Error())
		return CONFIRM_FAILED, fmt.Errorf("%w: %s", types.ErrGatewayFailure, err.Error())
	}
	switch pi.Status {
	case stripe.PaymentIntentStatusSucceeded:
		return CONFIRM_SUCCEEDED, nil
	case stripe.PaymentIntentStatusCanceled:
		return CONFIRM_FAILED, nil
	default:
		return CONFIRM_PENDING, nil
	}
}
