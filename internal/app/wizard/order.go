package wizard

import "context"

// OrderBatch is the payload sent to the order-creation endpoint: the full
// committed request list plus the wizard-level tags and fast-track flag.
type OrderBatch struct {
	Requests  []PricingRequest `json:"instance_requests"`
	Tags      []string         `json:"tags"`
	FastTrack bool             `json:"fast_track"`
}

// BatchSubmitter creates an order from a batch. The upstream cloud API
// client implements it; tests substitute a fake.
type BatchSubmitter interface {
	SubmitOrder(ctx context.Context, batch OrderBatch) (*OrderIntent, error)
}

// SettlementAccount carries bank-transfer details for manual payment.
type SettlementAccount struct {
	AccountNumber string `json:"account_number"`
	AccountName   string `json:"account_name"`
	Provider      string `json:"provider"`
	Currency      string `json:"currency"`
}

// PaymentOption is one provider + payment-type combination offered for
// settling an order. Account is set for bank-transfer options only.
type PaymentOption struct {
	ID          string             `json:"id"`
	Provider    string             `json:"provider"`
	PaymentType string             `json:"payment_type"`
	Total       float64            `json:"total"`
	Account     *SettlementAccount `json:"account,omitempty"`
}

// PricingLine is one server-computed line item (compute, storage, OS,
// bandwidth).
type PricingLine struct {
	Label    string  `json:"label"`
	Category string  `json:"category"`
	Amount   float64 `json:"amount"`
}

type PricingBreakdown struct {
	Lines    []PricingLine `json:"lines"`
	Discount float64       `json:"discount"`
	Tax      float64       `json:"tax"`
	Subtotal float64       `json:"subtotal"`
	Total    float64       `json:"total"`
}

// OrderIntent is the server response to a batch submission: the order
// reference used for payment, the available payment options and the pricing
// breakdown. A new submission always replaces it.
type OrderIntent struct {
	Reference      string           `json:"reference"`
	PaymentOptions []PaymentOption  `json:"payment_gateway_options"`
	Pricing        PricingBreakdown `json:"pricing"`
}

// Option returns the payment option with the given id, or nil.
func (o *OrderIntent) Option(id string) *PaymentOption {
	for i := range o.PaymentOptions {
		if o.PaymentOptions[i].ID == id {
			return &o.PaymentOptions[i]
		}
	}
	return nil
}
