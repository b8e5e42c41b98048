package policy

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/EVC-BookingService/internal/domain"
	policyRepo "github.com/m04kA/EVC-BookingService/internal/infra/storage/policy"
	portRepo "github.com/m04kA/EVC-BookingService/internal/infra/storage/port"
	"github.com/m04kA/EVC-BookingService/internal/integrations/stationservice"
	"github.com/m04kA/EVC-BookingService/internal/service/policy/models"
	"github.com/m04kA/EVC-BookingService/pkg/ptr"
)

type fakePolicyRepo struct {
	policy    *domain.BookingPolicy
	policies  []*domain.BookingPolicy
	getErr    error
	deleteErr error
	upserted  *domain.BookingPolicy
}

func (f *fakePolicyRepo) GetPolicyWithHierarchy(ctx context.Context, stationID int64, portID *int64) (*domain.BookingPolicy, error) {
	if f.getErr != nil {
		return nil, f.getErr
	}
	return f.policy, nil
}

func (f *fakePolicyRepo) GetAllByStation(ctx context.Context, stationID int64) ([]*domain.BookingPolicy, error) {
	return f.policies, nil
}

func (f *fakePolicyRepo) Upsert(ctx context.Context, p *domain.BookingPolicy) (*domain.BookingPolicy, error) {
	f.upserted = p
	created := *p
	created.ID = 77
	return &created, nil
}

func (f *fakePolicyRepo) Delete(ctx context.Context, policyID int64) error {
	return f.deleteErr
}

type fakePortRepo struct {
	port *domain.Port
}

func (f *fakePortRepo) GetByStationAndID(ctx context.Context, stationID, portID int64) (*domain.Port, error) {
	if f.port == nil {
		return nil, portRepo.ErrPortNotFound
	}
	return f.port, nil
}

type fakeStationClient struct {
	station *stationservice.Station
	err     error
}

func (f *fakeStationClient) GetStation(ctx context.Context, stationID int64) (*stationservice.Station, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.station, nil
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

const managerID = int64(42)

func testStation() *stationservice.Station {
	return &stationservice.Station{ID: 1, ManagerIDs: []int64{managerID}}
}

func testPolicy() *domain.BookingPolicy {
	return &domain.BookingPolicy{
		ID:                      5,
		StationID:               1,
		SlotDurationMinutes:     30,
		AdvanceBookingDays:      30,
		MinBookingNoticeMinutes: 15,
		PendingGraceMinutes:     15,
	}
}

func TestGetWithHierarchy_ReturnsConfigured(t *testing.T) {
	svc := NewService(&fakePolicyRepo{policy: testPolicy()}, &fakePortRepo{}, &fakeStationClient{station: testStation()}, nopLogger{})

	resp, err := svc.GetWithHierarchy(context.Background(), &models.GetPolicyRequest{StationID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(5), resp.ID)
	assert.Equal(t, 30, resp.SlotDurationMinutes)
}

func TestGetWithHierarchy_DefaultsWhenNotConfigured(t *testing.T) {
	svc := NewService(&fakePolicyRepo{getErr: policyRepo.ErrPolicyNotFound}, &fakePortRepo{}, &fakeStationClient{station: testStation()}, nopLogger{})

	resp, err := svc.GetWithHierarchy(context.Background(), &models.GetPolicyRequest{StationID: 1})
	require.NoError(t, err)
	assert.Equal(t, int64(0), resp.ID)
	assert.Equal(t, domain.DefaultSlotDurationMinutes, resp.SlotDurationMinutes)
	assert.Equal(t, domain.DefaultPendingGraceMinutes, resp.PendingGraceMinutes)
}

func TestUpdate_UpsertsStationPolicy(t *testing.T) {
	repo := &fakePolicyRepo{}
	svc := NewService(repo, &fakePortRepo{}, &fakeStationClient{station: testStation()}, nopLogger{})

	resp, err := svc.Update(context.Background(), &models.UpdatePolicyRequest{
		UserID:              managerID,
		StationID:           1,
		SlotDurationMinutes: ptr.Ptr(60),
	})
	require.NoError(t, err)
	assert.Equal(t, int64(77), resp.ID)
	assert.Equal(t, 60, repo.upserted.SlotDurationMinutes)
	// непереданные поля берутся из дефолтов
	assert.Equal(t, domain.DefaultMinBookingNoticeMinutes, repo.upserted.MinBookingNoticeMinutes)
}

func TestUpdate_PortPolicyRequiresExistingPort(t *testing.T) {
	svc := NewService(&fakePolicyRepo{}, &fakePortRepo{}, &fakeStationClient{station: testStation()}, nopLogger{})

	_, err := svc.Update(context.Background(), &models.UpdatePolicyRequest{
		UserID:    managerID,
		StationID: 1,
		PortID:    ptr.Ptr(int64(99)),
	})
	assert.ErrorIs(t, err, ErrPortNotFound)
}

func TestUpdate_ValidationBounds(t *testing.T) {
	svc := NewService(&fakePolicyRepo{}, &fakePortRepo{}, &fakeStationClient{station: testStation()}, nopLogger{})

	cases := []*models.UpdatePolicyRequest{
		{UserID: managerID, StationID: 1, SlotDurationMinutes: ptr.Ptr(1)},
		{UserID: managerID, StationID: 1, SlotDurationMinutes: ptr.Ptr(1000)},
		{UserID: managerID, StationID: 1, AdvanceBookingDays: ptr.Ptr(400)},
		{UserID: managerID, StationID: 1, MinBookingNoticeMinutes: ptr.Ptr(-1)},
		{UserID: managerID, StationID: 1, PendingGraceMinutes: ptr.Ptr(2000)},
	}
	for _, req := range cases {
		_, err := svc.Update(context.Background(), req)
		assert.ErrorIs(t, err, ErrInvalidInput)
	}
}

func TestUpdate_NonManagerDenied(t *testing.T) {
	svc := NewService(&fakePolicyRepo{}, &fakePortRepo{}, &fakeStationClient{station: testStation()}, nopLogger{})

	_, err := svc.Update(context.Background(), &models.UpdatePolicyRequest{
		UserID:    99,
		StationID: 1,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestGetAllByStation_ManagerOnly(t *testing.T) {
	repo := &fakePolicyRepo{policies: []*domain.BookingPolicy{testPolicy()}}
	svc := NewService(repo, &fakePortRepo{}, &fakeStationClient{station: testStation()}, nopLogger{})

	resp, err := svc.GetAllByStation(context.Background(), 1, managerID)
	require.NoError(t, err)
	assert.Len(t, resp.Policies, 1)

	_, err = svc.GetAllByStation(context.Background(), 1, 99)
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestDelete(t *testing.T) {
	svc := NewService(&fakePolicyRepo{}, &fakePortRepo{}, &fakeStationClient{station: testStation()}, nopLogger{})
	require.NoError(t, svc.Delete(context.Background(), 1, 5, managerID))

	svc = NewService(&fakePolicyRepo{deleteErr: policyRepo.ErrPolicyNotFound}, &fakePortRepo{}, &fakeStationClient{station: testStation()}, nopLogger{})
	assert.ErrorIs(t, svc.Delete(context.Background(), 1, 5, managerID), ErrPolicyNotFound)

	assert.ErrorIs(t, svc.Delete(context.Background(), 1, 5, 99), ErrAccessDenied)
}
