package wizard

import (
	"context"
	"fmt"
	"math"

	"github.com/sirupsen/logrus"
)

// PaymentPhase is the payment coordinator's state.
type PaymentPhase string

const (
	PaymentNoOrder           PaymentPhase = "no_order"
	PaymentAwaitingSelection PaymentPhase = "awaiting_selection"
	PaymentPaying            PaymentPhase = "paying"
	PaymentSucceeded         PaymentPhase = "succeeded"
	PaymentFailed            PaymentPhase = "failed"
)

// PrimaryCardGateway is the named processor whose card option wins the
// default selection and the only one routed through the card gateway.
const PrimaryCardGateway = "paystack"

const (
	PaymentTypeCard         = "card"
	PaymentTypeBankTransfer = "bank_transfer"
)

// minorUnitFactor converts the option total to the gateway's smallest
// currency unit (kobo).
const minorUnitFactor = 100

type PaymentState struct {
	Phase            PaymentPhase `json:"phase"`
	SelectedOptionID string       `json:"selected_option_id,omitempty"`
	AuthorizationURL string       `json:"authorization_url,omitempty"`
}

// CardCharge is the payload handed to the card gateway. CallbackURL is the
// server-side rendition of the popup's success/cancel callbacks: the gateway
// redirects the user there once the charge resolves.
type CardCharge struct {
	Key         string   `json:"key"`
	Email       string   `json:"email"`
	AmountMinor int64    `json:"amount"`
	Reference   string   `json:"reference"`
	Channels    []string `json:"channels"`
	CallbackURL string   `json:"callback_url,omitempty"`
}

// CardAuthorization is the gateway's answer to a charge: where to send the
// user to complete the card payment.
type CardAuthorization struct {
	AuthorizationURL string `json:"authorization_url"`
	AccessCode       string `json:"access_code"`
}

// CardGateway is the embedded card processor. The paystack client implements
// it; tests substitute a fake that counts invocations.
type CardGateway interface {
	Charge(ctx context.Context, charge CardCharge) (*CardAuthorization, error)
}

// PayResult tells the caller what to show next.
type PayResult struct {
	// AuthorizationURL is set for card payments: redirect the user there.
	AuthorizationURL string `json:"authorization_url,omitempty"`
	// Account is set for bank transfers: show the settlement details in the
	// success dialog directly.
	Account *SettlementAccount `json:"account,omitempty"`
	// OpenSuccessDialog is true when the flow should show the confirmation
	// dialog without waiting for a gateway callback.
	OpenSuccessDialog bool `json:"open_success_dialog"`
	// CloseWizard is true for unimplemented provider combinations, which
	// only log and proceed to close.
	CloseWizard bool `json:"close_wizard"`
}

// ErrPaymentPrecondition marks a fatal misconfiguration caught before the
// gateway is invoked (missing key, email, amount or reference). The wizard
// stays on the Payment step with the selection intact.
type ErrPaymentPrecondition struct{ Reason string }

func (e *ErrPaymentPrecondition) Error() string {
	return "payment aborted: " + e.Reason
}

// autoSelectPaymentOption picks a default when the order arrives and nothing
// is chosen yet: a card option from the primary gateway if present,
// otherwise the first available option.
func (s *Session) autoSelectPaymentOption() {
	if s.Order == nil || s.Payment.SelectedOptionID != "" || len(s.Order.PaymentOptions) == 0 {
		return
	}
	for _, opt := range s.Order.PaymentOptions {
		if opt.PaymentType == PaymentTypeCard && opt.Provider == PrimaryCardGateway {
			s.Payment.SelectedOptionID = opt.ID
			return
		}
	}
	s.Payment.SelectedOptionID = s.Order.PaymentOptions[0].ID
}

// SelectPaymentOption records the user's choice among the order's options.
func (s *Session) SelectPaymentOption(id string) error {
	if s.Order == nil {
		return fmt.Errorf("no order to pay for")
	}
	if s.Order.Option(id) == nil {
		return fmt.Errorf("unknown payment option %q", id)
	}
	s.Payment.SelectedOptionID = id
	if s.Payment.Phase == PaymentNoOrder {
		s.Payment.Phase = PaymentAwaitingSelection
	}
	return nil
}

// SelectedAmountMinor is the amount handed to the card gateway: the selected
// option's resolved total in the smallest currency unit.
func (s *Session) SelectedAmountMinor() int64 {
	if s.Order == nil {
		return 0
	}
	opt := s.Order.Option(s.Payment.SelectedOptionID)
	if opt == nil {
		return 0
	}
	return int64(math.Round(opt.Total * minorUnitFactor))
}

// PayContext carries the caller-supplied pieces of a payment attempt: the
// gateway public key from configuration, the user's profile email and the
// redirect URL standing in for the popup's outcome callbacks.
type PayContext struct {
	PublicKey   string
	Email       string
	CallbackURL string
}

// Pay runs the selected payment option. Card payments through the primary
// gateway are initialized via the CardGateway; bank transfers skip the
// gateway entirely and open the success dialog with the settlement details;
// anything else is unimplemented and only logs before closing. All
// precondition failures abort before the gateway call.
func (s *Session) Pay(ctx context.Context, gateway CardGateway, pc PayContext) (*PayResult, error) {
	if s.Order == nil || s.Payment.SelectedOptionID == "" {
		return nil, &ErrPaymentPrecondition{Reason: "no payment option selected"}
	}
	opt := s.Order.Option(s.Payment.SelectedOptionID)
	if opt == nil {
		return nil, &ErrPaymentPrecondition{Reason: "selected payment option no longer available"}
	}

	switch {
	case opt.PaymentType == PaymentTypeBankTransfer:
		s.Payment.Phase = PaymentSucceeded
		return &PayResult{Account: opt.Account, OpenSuccessDialog: true}, nil

	case opt.PaymentType == PaymentTypeCard && opt.Provider == PrimaryCardGateway:
		switch {
		case pc.PublicKey == "":
			return nil, &ErrPaymentPrecondition{Reason: "missing gateway key"}
		case pc.Email == "":
			return nil, &ErrPaymentPrecondition{Reason: "missing account email"}
		case s.Order.Reference == "":
			return nil, &ErrPaymentPrecondition{Reason: "missing order reference"}
		}
		amount := s.SelectedAmountMinor()
		if amount <= 0 {
			return nil, &ErrPaymentPrecondition{Reason: "invalid payment amount"}
		}

		auth, err := gateway.Charge(ctx, CardCharge{
			Key:         pc.PublicKey,
			Email:       pc.Email,
			AmountMinor: amount,
			Reference:   s.Order.Reference,
			Channels:    []string{PaymentTypeCard},
			CallbackURL: pc.CallbackURL,
		})
		if err != nil {
			s.Payment.Phase = PaymentAwaitingSelection
			s.GeneralError = "card payment could not be started"
			return nil, err
		}
		s.Payment.Phase = PaymentPaying
		s.Payment.AuthorizationURL = auth.AuthorizationURL
		return &PayResult{AuthorizationURL: auth.AuthorizationURL}, nil

	default:
		logrus.Warnf("payment type %s via %s is not implemented, closing wizard",
			opt.PaymentType, opt.Provider)
		return &PayResult{CloseWizard: true}, nil
	}
}

// HandlePaymentSuccess moves to Succeeded; the caller opens the success
// dialog and closes the wizard.
func (s *Session) HandlePaymentSuccess() {
	s.Payment.Phase = PaymentSucceeded
	s.Payment.AuthorizationURL = ""
}

// HandlePaymentCancel returns silently to option selection.
func (s *Session) HandlePaymentCancel() {
	s.Payment.Phase = PaymentAwaitingSelection
	s.Payment.AuthorizationURL = ""
}

// HandlePaymentError returns to option selection and surfaces the failure.
func (s *Session) HandlePaymentError(err error) {
	logrus.Errorf("card payment failed for order %s: %v", s.orderReference(), err)
	s.Payment.Phase = PaymentAwaitingSelection
	s.Payment.AuthorizationURL = ""
	s.GeneralError = "payment failed, please try again or pick another method"
}

func (s *Session) orderReference() string {
	if s.Order == nil {
		return ""
	}
	return s.Order.Reference
}
