package types

// Request bodies and URI params bound through gin's validator engine.

type SimpleRequestParams struct {
	ID uint `uri:"id" binding:"required"`
}

type ReserveTicketsRequestBody struct {
	Quantity uint `json:"quantity" binding:"required,gt=0"`
}

type PutCartRequestBody struct {
	Items []CartLine `json:"items" binding:"required,dive"`
}

type CartPreviewRequestBody struct {
	CashbackToApply *float64 `json:"cashback_to_apply,omitempty" binding:"omitempty,cashbackamount"`
}

type CreateIntentRequestBody struct {
	Processor       Processor `json:"processor" binding:"required,oneof=card wallet"`
	CashbackToApply *float64  `json:"cashback_to_apply,omitempty" binding:"omitempty,cashbackamount"`
}

type ConfirmCheckoutRequestBody struct {
	Reference string `json:"reference" binding:"required"`
}

type CartLineURIParams struct {
	GearID uint `uri:"gearID" binding:"required"`
}
