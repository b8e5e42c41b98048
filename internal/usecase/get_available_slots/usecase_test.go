package get_available_slots

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/EVC-BookingService/internal/domain"
	policyRepo "github.com/m04kA/EVC-BookingService/internal/infra/storage/policy"
	portRepo "github.com/m04kA/EVC-BookingService/internal/infra/storage/port"
	"github.com/m04kA/EVC-BookingService/internal/integrations/stationservice"
	"github.com/m04kA/EVC-BookingService/pkg/ptr"
	"github.com/m04kA/EVC-BookingService/pkg/types"
)

type fakeReservationRepo struct {
	reservations []*domain.Reservation
	err          error
}

func (f *fakeReservationRepo) GetOccupyingByPortAndDate(ctx context.Context, portID int64, date time.Time) ([]*domain.Reservation, error) {
	return f.reservations, f.err
}

type fakePortRepo struct {
	port *domain.Port
	err  error
}

func (f *fakePortRepo) GetByStationAndID(ctx context.Context, stationID, portID int64) (*domain.Port, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.port, nil
}

type fakePolicyRepo struct {
	policy *domain.BookingPolicy
	err    error
}

func (f *fakePolicyRepo) GetPolicyWithHierarchy(ctx context.Context, stationID int64, portID *int64) (*domain.BookingPolicy, error) {
	if f.err != nil {
		return nil, f.err
	}
	return f.policy, nil
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

type fakeTxManager struct{}

func (f *fakeTxManager) DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error {
	return fn(ctx)
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

// tue 2025-06-10, станция работает 09:00-11:00 каждый день
var (
	tNow  = time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	tDate = time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
)

func openDay() stationservice.DaySchedule {
	return stationservice.DaySchedule{
		IsOpen:    true,
		OpenTime:  ptr.Ptr("09:00"),
		CloseTime: ptr.Ptr("11:00"),
	}
}

func testStation() *stationservice.Station {
	day := openDay()
	return &stationservice.Station{
		ID:   1,
		Name: "EVC Tverskaya",
		Hours: stationservice.WeekHours{
			Monday: day, Tuesday: day, Wednesday: day, Thursday: day,
			Friday: day, Saturday: day, Sunday: day,
		},
	}
}

func testPort() *domain.Port {
	return &domain.Port{
		ID:        10,
		StationID: 1,
		Connector: domain.ConnectorNormalAC,
		PowerKW:   22,
		Status:    domain.PortAvailable,
	}
}

func testPolicy() *domain.BookingPolicy {
	return &domain.BookingPolicy{
		ID:                      5,
		StationID:               1,
		SlotDurationMinutes:     30,
		AdvanceBookingDays:      30,
		MinBookingNoticeMinutes: 15,
	}
}

func newTestUseCase(resRepo *fakeReservationRepo, portRepo *fakePortRepo, policyRepo *fakePolicyRepo, client *fakeStationClient) *UseCase {
	uc := NewUseCase(resRepo, portRepo, policyRepo, client, &fakeTxManager{}, nil, nopLogger{})
	uc.timeProvider = fixedTime{tNow}
	return uc
}

func TestExecute_ReturnsFreeSlots(t *testing.T) {
	occupied := &domain.Reservation{
		PortID:    10,
		Date:      tDate,
		StartTime: "09:30",
		EndTime:   "10:00",
		Status:    domain.StatusPending,
	}

	uc := newTestUseCase(
		&fakeReservationRepo{reservations: []*domain.Reservation{occupied}},
		&fakePortRepo{port: testPort()},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{station: testStation()},
	)

	resp, err := uc.Execute(context.Background(), &Request{UserID: 1, StationID: 1, PortID: 10, Date: tDate})
	require.NoError(t, err)

	// 4 кандидата минус занятое окно 09:30-10:00
	require.Len(t, resp.Slots, 3)
	assert.Equal(t, types.TimeString("09:00"), resp.Slots[0].StartTime)
	assert.Equal(t, types.TimeString("10:00"), resp.Slots[1].StartTime)
	assert.Equal(t, types.TimeString("10:30"), resp.Slots[2].StartTime)
	assert.Equal(t, 30, resp.Slots[0].DurationMinutes)
}

func TestExecute_CancelledReservationFreesWindow(t *testing.T) {
	cancelled := &domain.Reservation{
		PortID:    10,
		Date:      tDate,
		StartTime: "09:30",
		EndTime:   "10:00",
		Status:    domain.StatusCancelledByUser,
	}

	uc := newTestUseCase(
		&fakeReservationRepo{reservations: []*domain.Reservation{cancelled}},
		&fakePortRepo{port: testPort()},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{station: testStation()},
	)

	resp, err := uc.Execute(context.Background(), &Request{UserID: 1, StationID: 1, PortID: 10, Date: tDate})
	require.NoError(t, err)
	assert.Len(t, resp.Slots, 4)
}

func TestExecute_OfflinePortOffersNoSlots(t *testing.T) {
	port := testPort()
	port.Status = domain.PortOffline

	uc := newTestUseCase(
		&fakeReservationRepo{},
		&fakePortRepo{port: port},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{station: testStation()},
	)

	resp, err := uc.Execute(context.Background(), &Request{UserID: 1, StationID: 1, PortID: 10, Date: tDate})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_ClosedDayOffersNoSlots(t *testing.T) {
	station := testStation()
	station.Hours.Wednesday = stationservice.DaySchedule{IsOpen: false}

	uc := newTestUseCase(
		&fakeReservationRepo{},
		&fakePortRepo{port: testPort()},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{station: station},
	)

	resp, err := uc.Execute(context.Background(), &Request{UserID: 1, StationID: 1, PortID: 10, Date: tDate})
	require.NoError(t, err)
	assert.Empty(t, resp.Slots)
}

func TestExecute_PortOverridesNarrowHours(t *testing.T) {
	port := testPort()
	open := types.TimeString("09:30")
	port.OpenTimeOverride = &open

	uc := newTestUseCase(
		&fakeReservationRepo{},
		&fakePortRepo{port: port},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{station: testStation()},
	)

	resp, err := uc.Execute(context.Background(), &Request{UserID: 1, StationID: 1, PortID: 10, Date: tDate})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 3)
	assert.Equal(t, types.TimeString("09:30"), resp.Slots[0].StartTime)
}

func TestExecute_NoticeFiltersTodaySlots(t *testing.T) {
	// сегодня 09:40, notice 15 минут: слоты 09:00 и 09:30 уже недоступны
	uc := newTestUseCase(
		&fakeReservationRepo{},
		&fakePortRepo{port: testPort()},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{station: testStation()},
	)
	uc.timeProvider = fixedTime{time.Date(2025, 6, 10, 9, 40, 0, 0, time.UTC)}

	today := time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	resp, err := uc.Execute(context.Background(), &Request{UserID: 1, StationID: 1, PortID: 10, Date: today})
	require.NoError(t, err)
	require.Len(t, resp.Slots, 2)
	assert.Equal(t, types.TimeString("10:00"), resp.Slots[0].StartTime)
}

func TestExecute_PastDateRejected(t *testing.T) {
	uc := newTestUseCase(
		&fakeReservationRepo{},
		&fakePortRepo{port: testPort()},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{station: testStation()},
	)

	past := time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	_, err := uc.Execute(context.Background(), &Request{UserID: 1, StationID: 1, PortID: 10, Date: past})
	assert.ErrorIs(t, err, ErrInvalidDate)
}

func TestExecute_DateBeyondAdvanceLimitRejected(t *testing.T) {
	uc := newTestUseCase(
		&fakeReservationRepo{},
		&fakePortRepo{port: testPort()},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{station: testStation()},
	)

	farFuture := tNow.AddDate(0, 0, 31)
	_, err := uc.Execute(context.Background(), &Request{UserID: 1, StationID: 1, PortID: 10, Date: farFuture})
	assert.ErrorIs(t, err, ErrDateTooFarInFuture)
}

func TestExecute_StationNotFound(t *testing.T) {
	uc := newTestUseCase(
		&fakeReservationRepo{},
		&fakePortRepo{port: testPort()},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{err: stationservice.ErrStationNotFound},
	)

	_, err := uc.Execute(context.Background(), &Request{UserID: 1, StationID: 99, PortID: 10, Date: tDate})
	assert.ErrorIs(t, err, ErrStationNotFound)
}

func TestExecute_PortNotFound(t *testing.T) {
	uc := newTestUseCase(
		&fakeReservationRepo{},
		&fakePortRepo{err: portRepo.ErrPortNotFound},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{station: testStation()},
	)

	_, err := uc.Execute(context.Background(), &Request{UserID: 1, StationID: 1, PortID: 99, Date: tDate})
	assert.ErrorIs(t, err, ErrPortNotFound)
}

func TestExecute_InvalidInput(t *testing.T) {
	uc := newTestUseCase(&fakeReservationRepo{}, &fakePortRepo{}, &fakePolicyRepo{}, &fakeStationClient{})

	_, err := uc.Execute(context.Background(), &Request{UserID: 1, StationID: 0, PortID: 10, Date: tDate})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{UserID: 1, StationID: 1, PortID: 10})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_DefaultPolicyWhenNotConfigured(t *testing.T) {
	uc := newTestUseCase(
		&fakeReservationRepo{},
		&fakePortRepo{port: testPort()},
		&fakePolicyRepo{err: policyRepo.ErrPolicyNotFound},
		&fakeStationClient{station: testStation()},
	)

	resp, err := uc.Execute(context.Background(), &Request{UserID: 1, StationID: 1, PortID: 10, Date: tDate})
	require.NoError(t, err)
	// дефолтная ширина слота 30 минут: 09:00-11:00 дает 4 окна
	assert.Len(t, resp.Slots, 4)
}
