package payments

import (
	"context"
	"fmt"
	"log"
	"strings"

	"fcshop/src/lib"
	"fcshop/src/types"

	"github.com/plutov/paypal/v4"
)

// PayPalGateway is the wallet-style processor adapter, backed by PayPal
// orders. The order id doubles as the client token: the browser-side PayPal
// SDK only needs the id to drive approval.
type PayPalGateway struct{}

func (g *PayPalGateway) Name() types.Processor {
	return types.PROCESSOR_WALLET
}

func (g *PayPalGateway) CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (string, string, error) {
	pc := lib.GetPayPalClient()
	units := []paypal.PurchaseUnitRequest{
		{
			Amount: &paypal.PurchaseUnitAmount{
				Currency: strings.ToUpper(currency),
				Value:    fmt.Sprintf("%.2f", amount),
			},
			Description: "Club store purchase - gear and tickets",
			CustomID:    metadata["member_id"],
		},
	}
	order, err := pc.CreateOrder(ctx, paypal.OrderIntentCapture, units, nil, nil)
	if err != nil {
		log.Printf("[paypal] Error creating order: %s\n", err.Error())
		return "", "", fmt.Errorf("%w: %s", types.ErrGatewayFailure, err.Error())
	}
	return order.ID, order.ID, nil
}

func (g *PayPalGateway) Confirm(ctx context.Context, reference string) (ConfirmationStatus, error) {
	pc := lib.GetPayPalClient()
	capture, err := pc.CaptureOrder(ctx, reference, paypal.CaptureOrderRequest{})
	if err != nil {
		// Capture is not idempotent on PayPal's side: an already-captured
		// order errors here, so fall back to reading the order state.
		order, gerr := pc.GetOrder(ctx, reference)
		if gerr != nil {
			log.Printf("[paypal] Error capturing order %s: %s\n", reference, err.Error())
			return CONFIRM_FAILED, fmt.Errorf("%w: %s", types.ErrGatewayFailure, err.Error())
		}
		if order.Status == "COMPLETED" {
			return CONFIRM_SUCCEEDED, nil
		}
		return CONFIRM_PENDING, nil
	}
	switch capture.Status {
	case "COMPLETED":
		return CONFIRM_SUCCEEDED, nil
	case "VOIDED":
		return CONFIRM_FAILED, nil
	default:
		return CONFIRM_PENDING, nil
	}
}
