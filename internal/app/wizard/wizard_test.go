package wizard

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var (
	projects = []Option{{ID: "P1", ResourceID: "P1", Label: "Production", Region: "lagos-1"}}
	computes = []Option{{ID: "c-100", ResourceID: "C1", Label: "2 vCPU / 4 GB", Price: 12000}}
	images   = []Option{{ID: "o-100", ResourceID: "O1", Label: "Ubuntu 24.04", Price: 0}}
	volumes  = []Option{{ID: "v-100", ResourceID: "E1", Label: "SSD", Price: 150}}
)

// fillValidDraft drives a complete draft through the public field API.
func fillValidDraft(t *testing.T, s *Session) {
	t.Helper()
	require.NoError(t, s.UpdateField("name", "web-01"))
	require.NoError(t, s.SelectReference("project_id", "P1", projects))
	require.NoError(t, s.UpdateField("storage_size_gb", "20"))
	require.NoError(t, s.SelectReference("compute_instance_id", "c-100", computes))
	require.NoError(t, s.SelectReference("volume_type_id", "v-100", volumes))
	require.NoError(t, s.SelectReference("os_image_id", "o-100", images))
	require.NoError(t, s.UpdateField("keypair_name", "K1"))
	require.NoError(t, s.UpdateField("months", "3"))
}

type fakeSubmitter struct {
	calls  int
	intent *OrderIntent
	err    error
	got    OrderBatch
}

func (f *fakeSubmitter) SubmitOrder(_ context.Context, batch OrderBatch) (*OrderIntent, error) {
	f.calls++
	f.got = batch
	if f.err != nil {
		return nil, f.err
	}
	return f.intent, nil
}

func TestCommitDraftRejectsIncompleteDrafts(t *testing.T) {
	breakages := map[string]func(s *Session){
		"missing name":        func(s *Session) { s.UpdateField("name", "") },
		"missing project":     func(s *Session) { s.SelectReference("project_id", "", projects) },
		"missing storage":     func(s *Session) { s.UpdateField("storage_size_gb", "") },
		"zero storage":        func(s *Session) { s.UpdateField("storage_size_gb", "0") },
		"non-numeric storage": func(s *Session) { s.UpdateField("storage_size_gb", "lots") },
		"missing compute":     func(s *Session) { s.SelectReference("compute_instance_id", "", computes) },
		"missing volume type": func(s *Session) { s.SelectReference("volume_type_id", "", volumes) },
		"missing os image":    func(s *Session) { s.SelectReference("os_image_id", "", images) },
		"missing key pair":    func(s *Session) { s.UpdateField("keypair_name", "") },
		"missing months":      func(s *Session) { s.UpdateField("months", "") },
		"zero months":         func(s *Session) { s.UpdateField("months", "0") },
		"non-numeric months":  func(s *Session) { s.UpdateField("months", "three") },
	}

	for name, breakIt := range breakages {
		t.Run(name, func(t *testing.T) {
			s := NewSession(1)
			fillValidDraft(t, s)
			breakIt(s)

			err := s.CommitDraft()
			assert.ErrorIs(t, err, ErrValidation)
			assert.Empty(t, s.Requests, "request list must stay unchanged on invalid commit")
			assert.NotEmpty(t, s.FieldErrors)
		})
	}
}

func TestCommitDraftAppendsAndResets(t *testing.T) {
	s := NewSession(1)
	fillValidDraft(t, s)
	require.NoError(t, s.UpdateField("replica_count", "2"))

	require.NoError(t, s.CommitDraft())
	require.Len(t, s.Requests, 1)

	req := s.Requests[0]
	assert.Equal(t, "web-01", req.Name)
	assert.Equal(t, "P1", req.ProjectID)
	assert.Equal(t, "lagos-1", req.Region)
	assert.Equal(t, "C1", req.ComputeInstanceID)
	assert.Equal(t, "O1", req.OSImageID)
	assert.Equal(t, []VolumeAllocation{{TypeID: "E1", SizeGB: 20}}, req.Volumes)
	assert.Equal(t, "K1", req.KeypairName)
	assert.Equal(t, 3, req.Months)
	assert.Equal(t, 2, req.ReplicaCount)
	assert.Equal(t, "2 vCPU / 4 GB", req.Summary.Compute)

	// Draft is back to its empty shape with replica count 1.
	assert.Empty(t, s.Draft.Name)
	assert.Nil(t, s.Draft.Project)
	assert.Nil(t, s.Draft.StorageSizeGB)
	require.NotNil(t, s.Draft.ReplicaCount)
	assert.Equal(t, 1, *s.Draft.ReplicaCount)
}

func TestRemoveRequestPreservesOrder(t *testing.T) {
	s := NewSession(1)
	for _, name := range []string{"a", "b", "c"} {
		fillValidDraft(t, s)
		require.NoError(t, s.UpdateField("name", name))
		require.NoError(t, s.CommitDraft())
	}

	require.NoError(t, s.RemoveRequest(1))
	require.Len(t, s.Requests, 2)
	assert.Equal(t, "a", s.Requests[0].Name)
	assert.Equal(t, "c", s.Requests[1].Name)

	assert.Error(t, s.RemoveRequest(5))
	assert.Error(t, s.RemoveRequest(-1))
	assert.Len(t, s.Requests, 2)
}

func TestConfigurationStepRequiresTag(t *testing.T) {
	s := NewSession(1)

	err := s.Next(context.Background(), nil)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StepConfiguration, s.Step)

	require.NoError(t, s.ToggleValue("tags", "prod"))
	require.NoError(t, s.Next(context.Background(), nil))
	assert.Equal(t, StepResourceAllocation, s.Step)
}

func TestTwoPhaseGateOnResourceAllocation(t *testing.T) {
	s := NewSession(1)
	require.NoError(t, s.ToggleValue("tags", "prod"))
	require.NoError(t, s.Next(context.Background(), nil))
	fillValidDraft(t, s)

	// First Next commits the draft instead of advancing.
	require.NoError(t, s.Next(context.Background(), nil))
	assert.Equal(t, StepResourceAllocation, s.Step)
	assert.Len(t, s.Requests, 1)

	// Second Next actually leaves the step.
	require.NoError(t, s.Next(context.Background(), nil))
	assert.Equal(t, StepSummary, s.Step)
	assert.Len(t, s.Requests, 1)
}

func TestSummaryBlocksEmptySubmission(t *testing.T) {
	s := NewSession(1)
	s.Step = StepSummary
	sub := &fakeSubmitter{}

	err := s.Next(context.Background(), sub)
	assert.ErrorIs(t, err, ErrValidation)
	assert.Equal(t, StepSummary, s.Step)
	assert.NotEmpty(t, s.GeneralError)
	assert.Zero(t, sub.calls, "submission must not be invoked with zero requests")
}

func TestFailedSubmissionStaysOnSummary(t *testing.T) {
	s := NewSession(1)
	require.NoError(t, s.ToggleValue("tags", "prod"))
	fillValidDraft(t, s)
	require.NoError(t, s.CommitDraft())
	s.Step = StepSummary

	sub := &fakeSubmitter{err: errors.New("upstream unavailable")}
	err := s.Next(context.Background(), sub)
	assert.Error(t, err)
	assert.Equal(t, StepSummary, s.Step)
	assert.NotEmpty(t, s.GeneralError)
	assert.Len(t, s.Requests, 1, "committed requests survive a failed submission")

	// Retry with a working upstream goes through with the same list.
	sub2 := &fakeSubmitter{intent: &OrderIntent{Reference: "ORD-1"}}
	require.NoError(t, s.Next(context.Background(), sub2))
	assert.Equal(t, StepPayment, s.Step)
	assert.Equal(t, 1, sub2.calls)
	assert.Equal(t, s.Requests, sub2.got.Requests)
	assert.Equal(t, []string{"prod"}, sub2.got.Tags)
}

func TestBackFromPaymentResetsOrder(t *testing.T) {
	s := NewSession(1)
	fillValidDraft(t, s)
	require.NoError(t, s.CommitDraft())
	s.Step = StepSummary

	sub := &fakeSubmitter{intent: &OrderIntent{
		Reference:      "ORD-2",
		PaymentOptions: []PaymentOption{{ID: "po-1", Provider: PrimaryCardGateway, PaymentType: PaymentTypeCard, Total: 100}},
	}}
	require.NoError(t, s.Next(context.Background(), sub))
	require.Equal(t, StepPayment, s.Step)
	require.NotNil(t, s.Order)

	s.Back()
	assert.Equal(t, StepSummary, s.Step)
	assert.Nil(t, s.Order, "a new submission is required after going back")
	assert.Equal(t, PaymentNoOrder, s.Payment.Phase)
	assert.Empty(t, s.Payment.SelectedOptionID)
}

func TestBackStopsAtConfiguration(t *testing.T) {
	s := NewSession(1)
	s.Back()
	assert.Equal(t, StepConfiguration, s.Step)
}

func TestToggleValueMembership(t *testing.T) {
	s := NewSession(1)
	require.NoError(t, s.ToggleValue("security_group_ids", "sg-1"))
	require.NoError(t, s.ToggleValue("security_group_ids", "sg-2"))
	assert.Equal(t, []string{"sg-1", "sg-2"}, s.Draft.SecurityGroupIDs)

	require.NoError(t, s.ToggleValue("security_group_ids", "sg-1"))
	assert.Equal(t, []string{"sg-2"}, s.Draft.SecurityGroupIDs)
}

func TestSelectReferenceIgnoresUnknownValues(t *testing.T) {
	s := NewSession(1)
	require.NoError(t, s.SelectReference("project_id", "P1", projects))
	require.NotNil(t, s.Draft.Project)

	// An id that is not in the current option list clears the selection;
	// a stale value from a previously selected project cannot stick.
	require.NoError(t, s.SelectReference("project_id", "P-gone", projects))
	assert.Nil(t, s.Draft.Project)
}

func TestUpdateFieldCoercionAndErrors(t *testing.T) {
	s := NewSession(1)

	require.NoError(t, s.UpdateField("storage_size_gb", "40"))
	require.NotNil(t, s.Draft.StorageSizeGB)
	assert.Equal(t, 40, *s.Draft.StorageSizeGB)

	require.NoError(t, s.UpdateField("storage_size_gb", ""))
	assert.Nil(t, s.Draft.StorageSizeGB)

	assert.Error(t, s.UpdateField("nonsense_field", "x"))
	assert.Error(t, s.UpdateField("project_id", "P1"), "reference fields go through SelectReference")

	// Editing a field clears its error and the general error.
	s.setFieldError("name", "instance name is required")
	s.GeneralError = "something"
	require.NoError(t, s.UpdateField("name", "db-01"))
	assert.NotContains(t, s.FieldErrors, "name")
	assert.Empty(t, s.GeneralError)
}
