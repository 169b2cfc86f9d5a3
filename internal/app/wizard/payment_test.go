package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeGateway struct {
	calls int
	got   CardCharge
	err   error
}

func (f *fakeGateway) Charge(_ context.Context, charge CardCharge) (*CardAuthorization, error) {
	f.calls++
	f.got = charge
	if f.err != nil {
		return nil, f.err
	}
	return &CardAuthorization{AuthorizationURL: "https://checkout.test/abc", AccessCode: "abc"}, nil
}

func orderWithOptions(opts ...PaymentOption) *OrderIntent {
	return &OrderIntent{Reference: "ORD-77", PaymentOptions: opts}
}

func cardOption(total float64) PaymentOption {
	return PaymentOption{ID: "po-card", Provider: PrimaryCardGateway, PaymentType: PaymentTypeCard, Total: total}
}

func transferOption(total float64) PaymentOption {
	return PaymentOption{
		ID:          "po-transfer",
		Provider:    "providus",
		PaymentType: PaymentTypeBankTransfer,
		Total:       total,
		Account: &SettlementAccount{
			AccountNumber: "9901234567",
			AccountName:   "Unicloud Settlements",
			Provider:      "Providus Bank",
			Currency:      "NGN",
		},
	}
}

func paymentSession(order *OrderIntent) *Session {
	s := NewSession(1)
	s.Step = StepPayment
	s.Order = order
	s.Payment = PaymentState{Phase: PaymentAwaitingSelection}
	s.autoSelectPaymentOption()
	return s
}

func TestDefaultSelectionPrefersPrimaryCardOption(t *testing.T) {
	s := paymentSession(orderWithOptions(transferOption(5000), cardOption(5000)))
	assert.Equal(t, "po-card", s.Payment.SelectedOptionID)
}

func TestDefaultSelectionFallsBackToFirstOption(t *testing.T) {
	other := PaymentOption{ID: "po-ussd", Provider: "other", PaymentType: "ussd", Total: 10}
	s := paymentSession(orderWithOptions(transferOption(5000), other))
	assert.Equal(t, "po-transfer", s.Payment.SelectedOptionID)
}

func TestDefaultSelectionKeepsExistingChoice(t *testing.T) {
	s := paymentSession(orderWithOptions(transferOption(5000), cardOption(5000)))
	require.NoError(t, s.SelectPaymentOption("po-transfer"))
	s.autoSelectPaymentOption()
	assert.Equal(t, "po-transfer", s.Payment.SelectedOptionID)
}

func TestCardAmountIsMinorUnits(t *testing.T) {
	s := paymentSession(orderWithOptions(cardOption(5000)))
	gw := &fakeGateway{}

	res, err := s.Pay(context.Background(), gw, PayContext{PublicKey: "pk_test_1", Email: "ada@example.com"})
	require.NoError(t, err)
	require.Equal(t, 1, gw.calls)
	assert.Equal(t, int64(500000), gw.got.AmountMinor)
	assert.Equal(t, "ada@example.com", gw.got.Email)
	assert.Equal(t, "ORD-77", gw.got.Reference)
	assert.Equal(t, []string{PaymentTypeCard}, gw.got.Channels)
	assert.Equal(t, "pk_test_1", gw.got.Key)
	assert.Equal(t, PaymentPaying, s.Payment.Phase)
	assert.Equal(t, "https://checkout.test/abc", res.AuthorizationURL)
}

func TestBankTransferSkipsGateway(t *testing.T) {
	s := paymentSession(orderWithOptions(transferOption(7500)))
	gw := &fakeGateway{}

	res, err := s.Pay(context.Background(), gw, PayContext{PublicKey: "pk_test_1", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Zero(t, gw.calls, "bank transfer must not touch the card gateway")
	assert.True(t, res.OpenSuccessDialog)
	require.NotNil(t, res.Account)
	assert.Equal(t, "9901234567", res.Account.AccountNumber)
	assert.Equal(t, "Providus Bank", res.Account.Provider)
	assert.Equal(t, PaymentSucceeded, s.Payment.Phase)
}

func TestUnimplementedCombinationClosesWizard(t *testing.T) {
	other := PaymentOption{ID: "po-ussd", Provider: "other", PaymentType: "ussd", Total: 10}
	s := paymentSession(orderWithOptions(other))
	gw := &fakeGateway{}

	res, err := s.Pay(context.Background(), gw, PayContext{PublicKey: "pk_test_1", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Zero(t, gw.calls)
	assert.True(t, res.CloseWizard)
}

func TestPaymentPreconditionsAbortBeforeGateway(t *testing.T) {
	cases := map[string]struct {
		key, email string
		order      *OrderIntent
	}{
		"missing key":       {key: "", email: "ada@example.com", order: orderWithOptions(cardOption(5000))},
		"missing email":     {key: "pk", email: "", order: orderWithOptions(cardOption(5000))},
		"zero amount":       {key: "pk", email: "ada@example.com", order: orderWithOptions(cardOption(0))},
		"missing reference": {key: "pk", email: "ada@example.com", order: &OrderIntent{PaymentOptions: []PaymentOption{cardOption(5000)}}},
	}

	for name, tc := range cases {
		t.Run(name, func(t *testing.T) {
			s := paymentSession(tc.order)
			gw := &fakeGateway{}

			_, err := s.Pay(context.Background(), gw, PayContext{PublicKey: tc.key, Email: tc.email})
			var pre *ErrPaymentPrecondition
			require.ErrorAs(t, err, &pre)
			assert.Zero(t, gw.calls, "gateway must not be invoked on a failed precondition")
			assert.Equal(t, PaymentAwaitingSelection, s.Payment.Phase)
		})
	}
}

func TestGatewayErrorReturnsToSelection(t *testing.T) {
	s := paymentSession(orderWithOptions(cardOption(5000)))
	gw := &fakeGateway{err: errors.New("gateway down")}

	_, err := s.Pay(context.Background(), gw, PayContext{PublicKey: "pk", Email: "ada@example.com"})
	assert.Error(t, err)
	assert.Equal(t, PaymentAwaitingSelection, s.Payment.Phase)
	assert.NotEmpty(t, s.GeneralError)
}

func TestPaymentOutcomeCallbacks(t *testing.T) {
	s := paymentSession(orderWithOptions(cardOption(5000)))
	s.Payment.Phase = PaymentPaying

	s.HandlePaymentCancel()
	assert.Equal(t, PaymentAwaitingSelection, s.Payment.Phase)
	assert.Empty(t, s.GeneralError, "cancellation is silent")

	s.Payment.Phase = PaymentPaying
	s.HandlePaymentError(errors.New("declined"))
	assert.Equal(t, PaymentAwaitingSelection, s.Payment.Phase)
	assert.NotEmpty(t, s.GeneralError, "failures are surfaced to the user")

	s.Payment.Phase = PaymentPaying
	s.HandlePaymentSuccess()
	assert.Equal(t, PaymentSucceeded, s.Payment.Phase)
}

// Full bank-transfer flow: draft → commit → summary → submit → transfer
// option → account details shown without the card gateway.
func TestEndToEndBankTransfer(t *testing.T) {
	s := NewSession(1)
	require.NoError(t, s.ToggleValue("tags", "prod"))
	require.NoError(t, s.Next(context.Background(), nil))

	fillValidDraft(t, s)
	require.NoError(t, s.Next(context.Background(), nil)) // commits
	require.Len(t, s.Requests, 1)
	require.NoError(t, s.Next(context.Background(), nil)) // advances
	require.Equal(t, StepSummary, s.Step)

	sub := &fakeSubmitter{intent: orderWithOptions(transferOption(36000))}
	require.NoError(t, s.Next(context.Background(), sub))
	require.Equal(t, StepPayment, s.Step)

	require.NoError(t, s.SelectPaymentOption("po-transfer"))
	gw := &fakeGateway{}
	res, err := s.Pay(context.Background(), gw, PayContext{PublicKey: "pk", Email: "ada@example.com"})
	require.NoError(t, err)
	assert.Zero(t, gw.calls)
	assert.True(t, res.OpenSuccessDialog)
	assert.Equal(t, "Unicloud Settlements", res.Account.AccountName)
}

// Full card flow: the gateway is invoked exactly once with the shaped
// payload, and the success callback closes the wizard and invalidates the
// cached request list.
func TestEndToEndCardSuccess(t *testing.T) {
	s := NewSession(1)
	require.NoError(t, s.ToggleValue("tags", "prod"))
	require.NoError(t, s.Next(context.Background(), nil))

	fillValidDraft(t, s)
	require.NoError(t, s.Next(context.Background(), nil))
	require.NoError(t, s.Next(context.Background(), nil))

	sub := &fakeSubmitter{intent: orderWithOptions(cardOption(36000))}
	require.NoError(t, s.Next(context.Background(), sub))
	require.Equal(t, "po-card", s.Payment.SelectedOptionID)

	gw := &fakeGateway{}
	_, err := s.Pay(context.Background(), gw, PayContext{PublicKey: "pk_live_2", Email: "ada@example.com"})
	require.NoError(t, err)
	require.Equal(t, 1, gw.calls)
	assert.Equal(t, int64(3600000), gw.got.AmountMinor)

	s.HandlePaymentSuccess()
	assert.Equal(t, PaymentSucceeded, s.Payment.Phase)

	invalidated := false
	s.Close(func() { invalidated = true })
	assert.True(t, invalidated, "close must invalidate the cached request list")
	assert.Empty(t, s.Requests)
	assert.Nil(t, s.Order)
}
