package types

import "errors"

// Checkout failure kinds. Handlers match these with errors.Is so the UI can
// react differently to sold-out, expired and balance conditions instead of a
// generic error.
var (
	// ErrCapacityExceeded: a reserve asked for more tickets than the event
	// has available. Nothing was mutated.
	ErrCapacityExceeded = errors.New("not enough tickets available")

	// ErrDuplicateHold: the member already has an active reserved hold for
	// this event.
	ErrDuplicateHold = errors.New("member already holds reserved tickets for this event")

	// ErrHoldExpired: a confirm or settle referenced a hold whose TTL had
	// already passed at re-validation time.
	ErrHoldExpired = errors.New("ticket hold has expired")

	// ErrInsufficientCashback: a redemption asked for more than the member's
	// balance.
	ErrInsufficientCashback = errors.New("cashback redemption exceeds available balance")

	// ErrStockExceeded: gear stock no longer covers the selection at
	// settlement time.
	ErrStockExceeded = errors.New("gear is out of stock")

	// ErrDuplicateSettlement: the external reference was already settled.
	// Not a failure for the caller; the stored receipt is returned instead.
	ErrDuplicateSettlement = errors.New("settlement already recorded for reference")

	// ErrGatewayFailure: the external processor call failed. No local state
	// changed; safe to retry.
	ErrGatewayFailure = errors.New("payment gateway error")

	// ErrIntentNotFound: no checkout intent is recorded for the reference.
	ErrIntentNotFound = errors.New("no checkout intent for reference")

	// ErrPaymentIncomplete: the processor reports the intent as pending or
	// failed, so settlement was not attempted.
	ErrPaymentIncomplete = errors.New("payment not completed")
)
