package wizard

import (
	"context"
	"errors"

	"github.com/google/uuid"
)

// Step is the active phase of the provisioning wizard.
type Step int

const (
	StepConfiguration Step = iota
	StepResourceAllocation
	StepSummary
	StepPayment
)

func (s Step) String() string {
	switch s {
	case StepConfiguration:
		return "configuration"
	case StepResourceAllocation:
		return "resource_allocation"
	case StepSummary:
		return "summary"
	case StepPayment:
		return "payment"
	}
	return "unknown"
}

// ErrValidation is returned when user input blocks a transition. The details
// are in Session.FieldErrors / Session.GeneralError, not in the error itself.
var ErrValidation = errors.New("validation failed")

// Session is one user's wizard state. It is a plain serializable value: the
// handler layer loads it from the session store, applies one operation and
// writes it back. All network access goes through the injected interfaces.
type Session struct {
	ID     string `json:"id"`
	UserID uint   `json:"user_id"`
	Step   Step   `json:"step"`

	// Configuration step metadata, independent of any single instance.
	Title       string   `json:"title"`
	Description string   `json:"description"`
	Tags        []string `json:"tags"`
	FastTrack   bool     `json:"fast_track"`

	Draft    Draft            `json:"draft"`
	Requests []PricingRequest `json:"requests"`

	Order   *OrderIntent `json:"order,omitempty"`
	Payment PaymentState `json:"payment"`

	FieldErrors  map[string]string `json:"field_errors,omitempty"`
	GeneralError string            `json:"general_error,omitempty"`
}

func NewSession(userID uint) *Session {
	return &Session{
		ID:          uuid.New().String(),
		UserID:      userID,
		Step:        StepConfiguration,
		Draft:       emptyDraft(),
		FieldErrors: map[string]string{},
		Payment:     PaymentState{Phase: PaymentNoOrder},
	}
}

// Next advances the wizard one step forward. On ResourceAllocation with an
// empty request list the action commits the current draft instead of
// advancing, so Summary and Payment never see zero requests; the user has to
// press Next again to leave the step. On Summary it submits the batch and
// only advances once the order is created.
func (s *Session) Next(ctx context.Context, submitter BatchSubmitter) error {
	switch s.Step {
	case StepConfiguration:
		if len(s.Tags) == 0 {
			s.setFieldError("tags", "select at least one tag")
			return ErrValidation
		}
		s.advance(StepResourceAllocation)
	case StepResourceAllocation:
		if len(s.Requests) == 0 {
			return s.CommitDraft()
		}
		s.advance(StepSummary)
	case StepSummary:
		return s.submit(ctx, submitter)
	case StepPayment:
		// terminal; leaving forward happens through the payment coordinator
	}
	return nil
}

// Back moves one step backward. Leaving Payment discards the order and any
// payment selection, because going forward again requires a new submission.
func (s *Session) Back() {
	if s.Step == StepConfiguration {
		return
	}
	if s.Step == StepPayment {
		s.Order = nil
		s.Payment = PaymentState{Phase: PaymentNoOrder}
	}
	s.advance(s.Step - 1)
}

func (s *Session) submit(ctx context.Context, submitter BatchSubmitter) error {
	if len(s.Requests) == 0 {
		s.GeneralError = "add at least one instance configuration before submitting"
		return ErrValidation
	}

	intent, err := submitter.SubmitOrder(ctx, OrderBatch{
		Requests:  s.Requests,
		Tags:      s.Tags,
		FastTrack: s.FastTrack,
	})
	if err != nil {
		// Keep the committed requests so the user can retry from Summary.
		s.GeneralError = "order could not be created, please try again"
		return err
	}

	s.Order = intent
	s.Payment = PaymentState{Phase: PaymentAwaitingSelection}
	s.autoSelectPaymentOption()
	s.advance(StepPayment)
	return nil
}

// Close discards the session's working state after a completed flow and runs
// the injected side effect (cache invalidation, navigation).
func (s *Session) Close(onClose func()) {
	s.Requests = nil
	s.Order = nil
	s.Payment = PaymentState{Phase: PaymentNoOrder}
	if onClose != nil {
		onClose()
	}
}

func (s *Session) advance(to Step) {
	s.Step = to
	s.GeneralError = ""
}

func (s *Session) setFieldError(field, msg string) {
	if s.FieldErrors == nil {
		s.FieldErrors = map[string]string{}
	}
	s.FieldErrors[field] = msg
}

func (s *Session) clearFieldError(field string) {
	delete(s.FieldErrors, field)
	s.GeneralError = ""
}
