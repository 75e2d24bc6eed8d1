package types

import (
	"database/sql/driver"
	"encoding/json"
	"errors"
	"time"

	"gorm.io/gorm"
)

type Timestamps struct {
	CreatedAt time.Time      `gorm:"autoCreateTime:nano" json:"created_at,omitempty"`
	UpdatedAt time.Time      `gorm:"autoUpdateTime:nano" json:"updated_at,omitempty"`
	DeletedAt gorm.DeletedAt `gorm:"index" json:"deleted_at,omitempty,omitnil"`
}

type JSONB map[string]any
type JSONBArray []any

func (a JSONB) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONB) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

func (a JSONBArray) Value() (driver.Value, error) {
	valueString, err := json.Marshal(a)
	return string(valueString), err
}
func (a *JSONBArray) Scan(value any) error {
	b, ok := value.([]byte)
	if !ok {
		return errors.New("type assertion to []byte failed")
	}
	if err := json.Unmarshal(b, &a); err != nil {
		return err
	}
	return nil
}

type Status string

type HoldStatus Status

const (
	HOLD_RESERVED  HoldStatus = "reserved"
	HOLD_CONFIRMED HoldStatus = "confirmed"
	HOLD_CANCELED  HoldStatus = "canceled"
)

type StandingStatus Status

const (
	STANDING_ACTIVE   StandingStatus = "active"
	STANDING_EXPIRED  StandingStatus = "expired"
	STANDING_CANCELED StandingStatus = "canceled"
)

type OrderStatus Status

const (
	ORDER_CONFIRMED OrderStatus = "confirmed"
	ORDER_REFUNDED  OrderStatus = "refunded"
)

type PaymentStatus Status

const (
	PAYMENT_COMPLETED PaymentStatus = "completed"
	PAYMENT_REFUNDED  PaymentStatus = "refunded"
)

type IntentStatus Status

// An intent is only persisted once the processor has handed back its
// reference, so the stored machine starts at awaiting_confirmation.
const (
	INTENT_AWAITING  IntentStatus = "awaiting_confirmation"
	INTENT_COMMITTED IntentStatus = "committed"
	INTENT_FAILED    IntentStatus = "failed"
)

// Processor names the two supported external payment processors.
type Processor string

const (
	PROCESSOR_CARD   Processor = "card"
	PROCESSOR_WALLET Processor = "wallet"
)

// CartLine is one line of the ephemeral per-visitor gear selection. The
// selection lives in the session store until checkout commits.
type CartLine struct {
	GearID   uint `json:"gear_id" binding:"required"`
	Quantity uint `json:"quantity" binding:"required,gt=0"`
}

type CartSelection []CartLine

// PreviewLine is a gear selection line with its price resolved from the
// catalog at preview time.
type PreviewLine struct {
	GearID    uint    `json:"gear_id"`
	Name      string  `json:"name"`
	Quantity  uint    `json:"quantity"`
	UnitPrice float64 `json:"unit_price"`
	LineTotal float64 `json:"line_total"`
}

// PreviewHold is a reserved ticket hold included in the priced preview.
type PreviewHold struct {
	HoldID    uint      `json:"hold_id"`
	EventID   uint      `json:"event_id"`
	EventName string    `json:"event_name"`
	Quantity  uint      `json:"quantity"`
	UnitPrice float64   `json:"unit_price"`
	LineTotal float64   `json:"line_total"`
	ExpiresAt time.Time `json:"expires_at"`
}

// Preview is the recomputed, unpersisted pricing snapshot of a prospective
// checkout. It is rebuilt from live data at intent-creation time and again
// never trusted across requests.
type Preview struct {
	GearLines        []PreviewLine `json:"gear_lines"`
	Holds            []PreviewHold `json:"holds"`
	GearTotal        float64       `json:"gear_total"`
	TicketTotal      float64       `json:"ticket_total"`
	Subtotal         float64       `json:"subtotal"`
	DiscountRate     float64       `json:"discount_rate"`
	Discount         float64       `json:"discount"`
	AfterDiscount    float64       `json:"after_discount"`
	CashbackMax      float64       `json:"cashback_max"`
	CashbackToApply  float64       `json:"cashback_to_apply"`
	FinalTotal       float64       `json:"final_total"`
	AccrualRate      float64       `json:"accrual_rate"`
	ProjectedAccrual float64       `json:"projected_accrual"`
}

// Receipt is the caller-facing result of a settlement. Replayed is set when
// the external reference had already been settled and no new effects were
// applied.
type Receipt struct {
	Reference         string    `json:"reference"`
	Processor         Processor `json:"processor"`
	Amount            float64   `json:"amount"`
	OrderID           *uint     `json:"order_id,omitempty"`
	ConfirmationCodes []string  `json:"confirmation_codes,omitempty"`
	CashbackRedeemed  float64   `json:"cashback_redeemed"`
	CashbackAccrued   float64   `json:"cashback_accrued"`
	Replayed          bool      `json:"replayed"`
	SettledAt         time.Time `json:"settled_at"`
}
