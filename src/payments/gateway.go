package payments

import (
	"context"
	"fmt"

	"fcshop/src/types"
)

// ConfirmationStatus is the uniform outcome of asking a processor about an
// intent.
type ConfirmationStatus string

const (
	CONFIRM_SUCCEEDED ConfirmationStatus = "succeeded"
	CONFIRM_PENDING   ConfirmationStatus = "pending"
	CONFIRM_FAILED    ConfirmationStatus = "failed"
)

// Gateway is the uniform contract over the two external processors. The
// settlement engine only ever selects an implementation; it never branches
// on which processor is behind it.
type Gateway interface {
	Name() types.Processor
	// CreateIntent opens a payment intent for amount and returns the
	// external reference (the settlement idempotency key) plus the token
	// the browser needs to complete payment.
	CreateIntent(ctx context.Context, amount float64, currency string, metadata map[string]string) (reference string, clientToken string, err error)
	// Confirm reports the processor's view of the intent's outcome.
	Confirm(ctx context.Context, reference string) (ConfirmationStatus, error)
}

var registry = map[types.Processor]Gateway{}

// Register installs a gateway implementation. Also used by tests to swap in
// fakes.
func Register(g Gateway) {
	registry[g.Name()] = g
}

// For returns the gateway for a processor.
func For(p types.Processor) (Gateway, error) {
	g, ok := registry[p]
	if !ok {
		return nil, fmt.Errorf("no payment gateway registered for processor %q", p)
	}
	return g, nil
}

func init() {
	Register(&StripeGateway{})
	Register(&PayPalGateway{})
}
