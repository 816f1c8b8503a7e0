package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"

	"github.com/tolutally/matchbox-web/internal/cache"
	"github.com/tolutally/matchbox-web/internal/metrics"
	"github.com/tolutally/matchbox-web/internal/mocks"
	"github.com/tolutally/matchbox-web/internal/models"
	"github.com/tolutally/matchbox-web/internal/validation"
)

func validLeadRequest(clock *testClock) LeadRequest {
	return LeadRequest{
		Name:        "Jane Doe",
		Email:       "jane@acme-clinic.com",
		Phone:       "(201) 555-0123",
		CountryCode: "+1",
		Scenario:    "financial",
		StartedAt:   clock.Now().Add(-30 * time.Second),
	}
}

func setupLeadService(t *testing.T) (*LeadService, *mocks.MockLeadForwarder, *testClock) {
	t.Helper()
	ctrl := gomock.NewController(t)
	fwd := mocks.NewMockLeadForwarder(ctrl)
	fwd.EXPECT().Configured().Return(true).AnyTimes()

	clock := newTestClock()
	svc := NewLeadService(
		fwd,
		cache.NewMemoryCache[bool](),
		time.Hour,
		nil,
		metrics.NewNoopMetrics(),
	).WithClock(clock.Now)
	return svc, fwd, clock
}

func TestLeadSubmit_Accepted(t *testing.T) {
	svc, fwd, clock := setupLeadService(t)

	fwd.EXPECT().
		Forward(gomock.Any(), gomock.Any()).
		DoAndReturn(func(_ context.Context, lead *models.Lead) error {
			assert.Equal(t, "jane@acme-clinic.com", lead.Email)
			assert.Equal(t, "+12015550123", lead.FullPhone())
			assert.Equal(t, models.ScenarioFinancial, lead.Scenario)
			assert.Equal(t, clock.Now(), lead.SubmittedAt)
			return nil
		})

	lead, err := svc.Submit(context.Background(), validLeadRequest(clock))
	require.NoError(t, err)
	assert.NotEmpty(t, lead.ID)
}

func TestLeadSubmit_DefaultScenario(t *testing.T) {
	svc, fwd, clock := setupLeadService(t)
	fwd.EXPECT().Forward(gomock.Any(), gomock.Any()).Return(nil)

	req := validLeadRequest(clock)
	req.Scenario = ""
	lead, err := svc.Submit(context.Background(), req)
	require.NoError(t, err)
	assert.Equal(t, models.ScenarioHealthcare, lead.Scenario)
}

func TestLeadSubmit_Rejections(t *testing.T) {
	tests := []struct {
		name    string
		mutate  func(r *LeadRequest, now time.Time)
		message string
	}{
		{
			name:    "honeypot filled",
			mutate:  func(r *LeadRequest, _ time.Time) { r.Honeypot = "https://spam.example" },
			message: validation.MsgHoneypot,
		},
		{
			name:    "submitted too fast",
			mutate:  func(r *LeadRequest, now time.Time) { r.StartedAt = now.Add(-500 * time.Millisecond) },
			message: validation.MsgTooFast,
		},
		{
			name:    "missing start time",
			mutate:  func(r *LeadRequest, _ time.Time) { r.StartedAt = time.Time{} },
			message: validation.MsgTooFast,
		},
		{
			name:    "disposable email",
			mutate:  func(r *LeadRequest, _ time.Time) { r.Email = "jane@mailinator.com" },
			message: validation.MsgEmailDisposable,
		},
		{
			name:    "fake phone",
			mutate:  func(r *LeadRequest, _ time.Time) { r.Phone = "1111111111" },
			message: validation.MsgPhoneInvalid,
		},
		{
			name:    "unknown scenario",
			mutate:  func(r *LeadRequest, _ time.Time) { r.Scenario = "retail" },
			message: msgScenarioInvalid,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			svc, _, clock := setupLeadService(t)
			req := validLeadRequest(clock)
			tt.mutate(&req, clock.Now())

			_, err := svc.Submit(context.Background(), req)
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrLeadInvalid)
			assert.ErrorIs(t, err, validation.ErrInvalid)
			assert.Equal(t, tt.message, validation.Message(err))
		})
	}
}

func TestLeadSubmit_Duplicate(t *testing.T) {
	svc, fwd, clock := setupLeadService(t)
	fwd.EXPECT().Forward(gomock.Any(), gomock.Any()).Return(nil).Times(1)

	_, err := svc.Submit(context.Background(), validLeadRequest(clock))
	require.NoError(t, err)

	// Same person, formatted differently
	req := validLeadRequest(clock)
	req.Email = "  JANE@acme-clinic.com "
	req.Phone = "201.555.0123"
	_, err = svc.Submit(context.Background(), req)
	assert.ErrorIs(t, err, ErrLeadDuplicate)

	// Different phone is a different lead
	fwd.EXPECT().Forward(gomock.Any(), gomock.Any()).Return(nil).Times(1)
	req.Phone = "201-555-0199"
	_, err = svc.Submit(context.Background(), req)
	assert.NoError(t, err)
}

func TestLeadSubmit_ForwardFailureReleasesDedup(t *testing.T) {
	svc, fwd, clock := setupLeadService(t)

	gomock.InOrder(
		fwd.EXPECT().Forward(gomock.Any(), gomock.Any()).Return(ErrFormBackendRejected),
		fwd.EXPECT().Forward(gomock.Any(), gomock.Any()).Return(nil),
	)

	_, err := svc.Submit(context.Background(), validLeadRequest(clock))
	assert.ErrorIs(t, err, ErrFormBackendRejected)

	_, err = svc.Submit(context.Background(), validLeadRequest(clock))
	assert.NoError(t, err)
}

func TestLeadSubmit_BackendNotConfigured(t *testing.T) {
	ctrl := gomock.NewController(t)
	fwd := mocks.NewMockLeadForwarder(ctrl)
	fwd.EXPECT().Configured().Return(false).AnyTimes()

	clock := newTestClock()
	svc := NewLeadService(fwd, nil, 0, nil, metrics.NewNoopMetrics()).WithClock(clock.Now)

	_, err := svc.Submit(context.Background(), validLeadRequest(clock))
	assert.ErrorIs(t, err, ErrFormBackendUnavailable)
	assert.False(t, svc.Configured())
}

func TestLeadSubmit_ValidationRunsBeforeBackendCheck(t *testing.T) {
	svc := NewLeadService(nil, nil, 0, nil, metrics.NewNoopMetrics())

	_, err := svc.Submit(context.Background(), LeadRequest{Email: "bad"})
	assert.ErrorIs(t, err, ErrLeadInvalid)
	assert.False(t, errors.Is(err, ErrFormBackendUnavailable))
}

func TestLeadSubmit_RecordsMetrics(t *testing.T) {
	ctrl := gomock.NewController(t)
	fwd := mocks.NewMockLeadForwarder(ctrl)
	rec := mocks.NewMockRecorder(ctrl)
	fwd.EXPECT().Configured().Return(true).AnyTimes()

	clock := newTestClock()
	svc := NewLeadService(fwd, cache.NewMemoryCache[bool](), time.Hour, nil, rec).
		WithClock(clock.Now)

	gomock.InOrder(
		rec.EXPECT().RecordLeadSubmission(LeadAccepted),
		rec.EXPECT().RecordLeadSubmission(LeadDuplicate),
	)
	fwd.EXPECT().Forward(gomock.Any(), gomock.Any()).Return(nil)

	_, err := svc.Submit(context.Background(), validLeadRequest(clock))
	require.NoError(t, err)
	_, err = svc.Submit(context.Background(), validLeadRequest(clock))
	assert.ErrorIs(t, err, ErrLeadDuplicate)
}
