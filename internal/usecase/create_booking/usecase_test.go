package create_booking

import (
	"context"
	"sync"
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

// fakeReservationRepo хранит брони в памяти: FindOverlapping и Create
// видят общее состояние, как и в настоящей БД
type fakeReservationRepo struct {
	mu      sync.Mutex
	nextID  int64
	stored  []*domain.Reservation
	findErr error
}

func (f *fakeReservationRepo) Create(ctx context.Context, r *domain.Reservation) (*domain.Reservation, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.nextID++
	created := *r
	created.ID = f.nextID
	created.CreatedAt = time.Now()
	f.stored = append(f.stored, &created)
	return &created, nil
}

func (f *fakeReservationRepo) FindOverlapping(ctx context.Context, portID int64, date time.Time, window domain.TimeWindow) ([]*domain.Reservation, error) {
	if f.findErr != nil {
		return nil, f.findErr
	}
	f.mu.Lock()
	defer f.mu.Unlock()
	var overlapping []*domain.Reservation
	for _, r := range f.stored {
		if r.PortID == portID && r.IsOccupying() && window.Overlaps(r.Window()) {
			overlapping = append(overlapping, r)
		}
	}
	return overlapping, nil
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

// fakeTxManager сериализует транзакции мьютексом - модель serializable
// изоляции для конкурентных тестов
type fakeTxManager struct {
	mu sync.Mutex
}

func (f *fakeTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return fn(ctx)
}

type fakeCache struct {
	mu          sync.Mutex
	invalidated []string
}

func (f *fakeCache) Invalidate(ctx context.Context, key string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.invalidated = append(f.invalidated, key)
}

type fakeMetrics struct {
	mu        sync.Mutex
	created   int
	conflicts int
}

func (f *fakeMetrics) IncReservationCreated(mode string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.created++
}

func (f *fakeMetrics) IncReservationConflict() {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.conflicts++
}

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

var (
	tNow  = time.Date(2025, 6, 10, 8, 0, 0, 0, time.UTC)
	tDate = time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)
)

func testStation() *stationservice.Station {
	day := stationservice.DaySchedule{
		IsOpen:    true,
		OpenTime:  ptr.Ptr("09:00"),
		CloseTime: ptr.Ptr("21:00"),
	}
	return &stationservice.Station{
		ID:   1,
		Name: "EVC Tverskaya",
		Hours: stationservice.WeekHours{
			Monday: day, Tuesday: day, Wednesday: day, Thursday: day,
			Friday: day, Saturday: day, Sunday: day,
		},
		Pricing: stationservice.Pricing{
			Normal: stationservice.Tariff{BaseRate: 10, PeakRate: 15},
			Fast:   stationservice.Tariff{BaseRate: 20, PeakRate: 30},
		},
		PeakHours: &stationservice.PeakHours{Start: "17:00", End: "21:00"},
	}
}

func testPort() *domain.Port {
	return &domain.Port{
		ID:        10,
		StationID: 1,
		Connector: domain.ConnectorFastDC,
		PowerKW:   50,
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

func validRequest() *Request {
	return &Request{
		UserID:       7,
		StationID:    1,
		PortID:       10,
		Date:         tDate,
		StartTime:    "10:00",
		EndTime:      "10:30",
		ChargingMode: domain.ModeNormal,
	}
}

type testEnv struct {
	uc      *UseCase
	resRepo *fakeReservationRepo
	cache   *fakeCache
	metrics *fakeMetrics
}

func newTestEnv(portRepository *fakePortRepo, policyRepository *fakePolicyRepo, client *fakeStationClient) *testEnv {
	resRepo := &fakeReservationRepo{}
	c := &fakeCache{}
	m := &fakeMetrics{}
	uc := NewUseCase(resRepo, portRepository, policyRepository, client, &fakeTxManager{}, c, m, nopLogger{})
	uc.timeProvider = fixedTime{tNow}
	return &testEnv{uc: uc, resRepo: resRepo, cache: c, metrics: m}
}

func TestExecute_CreatesPendingReservation(t *testing.T) {
	env := newTestEnv(
		&fakePortRepo{port: testPort()},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{station: testStation()},
	)

	resp, err := env.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	res := resp.Reservation
	assert.Equal(t, int64(1), res.ID)
	assert.Equal(t, domain.StatusPending, res.Status)
	assert.Equal(t, "EVC Tverskaya", res.StationName)
	// 10 руб/кВт·ч * 50 кВт * 0.5 ч
	assert.InDelta(t, 250.0, res.EstimatedCost, 0.001)

	assert.Equal(t, []string{"slots:10:2025-06-11"}, env.cache.invalidated)
	assert.Equal(t, 1, env.metrics.created)
}

func TestExecute_PeakTariffAppliesToPeakWindow(t *testing.T) {
	env := newTestEnv(
		&fakePortRepo{port: testPort()},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{station: testStation()},
	)

	req := validRequest()
	req.StartTime = "17:00"
	req.EndTime = "17:30"
	req.ChargingMode = domain.ModeFast

	resp, err := env.uc.Execute(context.Background(), req)
	require.NoError(t, err)
	// 30 руб/кВт·ч * 50 кВт * 0.5 ч
	assert.InDelta(t, 750.0, resp.Reservation.EstimatedCost, 0.001)
}

func TestExecute_OverlapRejected(t *testing.T) {
	env := newTestEnv(
		&fakePortRepo{port: testPort()},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{station: testStation()},
	)

	_, err := env.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	// второй запрос на то же окно
	_, err = env.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrSlotConflict)
	assert.Equal(t, 1, env.metrics.conflicts)
	assert.Len(t, env.resRepo.stored, 1)
}

func TestExecute_AdjacentWindowsDoNotConflict(t *testing.T) {
	env := newTestEnv(
		&fakePortRepo{port: testPort()},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{station: testStation()},
	)

	_, err := env.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)

	next := validRequest()
	next.StartTime = "10:30"
	next.EndTime = "11:00"
	_, err = env.uc.Execute(context.Background(), next)
	require.NoError(t, err)
	assert.Len(t, env.resRepo.stored, 2)
}

func TestExecute_ConcurrentDoubleBooking(t *testing.T) {
	env := newTestEnv(
		&fakePortRepo{port: testPort()},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{station: testStation()},
	)

	const attempts = 8
	errs := make(chan error, attempts)
	var wg sync.WaitGroup
	for i := 0; i < attempts; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			_, err := env.uc.Execute(context.Background(), validRequest())
			errs <- err
		}()
	}
	wg.Wait()
	close(errs)

	var succeeded, conflicted int
	for err := range errs {
		switch {
		case err == nil:
			succeeded++
		default:
			require.ErrorIs(t, err, ErrSlotConflict)
			conflicted++
		}
	}

	// ровно одна бронь выигрывает окно
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, attempts-1, conflicted)
	assert.Len(t, env.resRepo.stored, 1)
}

func TestExecute_MisalignedWindowRejected(t *testing.T) {
	env := newTestEnv(
		&fakePortRepo{port: testPort()},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{station: testStation()},
	)

	req := validRequest()
	req.StartTime = "10:10"
	req.EndTime = "10:40"
	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidWindow)

	// длительность не равна ширине слота
	req = validRequest()
	req.EndTime = "11:00"
	_, err = env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidWindow)
}

func TestExecute_OfflinePortRejected(t *testing.T) {
	port := testPort()
	port.Status = domain.PortOffline

	env := newTestEnv(
		&fakePortRepo{port: port},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{station: testStation()},
	)

	_, err := env.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrPortOffline)
	assert.Empty(t, env.resRepo.stored)
}

func TestExecute_FastModeOnACPortRejected(t *testing.T) {
	port := testPort()
	port.Connector = domain.ConnectorNormalAC

	env := newTestEnv(
		&fakePortRepo{port: port},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{station: testStation()},
	)

	req := validRequest()
	req.ChargingMode = domain.ModeFast
	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrModeNotSupported)
}

func TestExecute_ClosedStationRejected(t *testing.T) {
	station := testStation()
	station.Hours.Wednesday = stationservice.DaySchedule{IsOpen: false}

	env := newTestEnv(
		&fakePortRepo{port: testPort()},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{station: station},
	)

	_, err := env.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrStationClosed)
}

func TestExecute_TooLateToBookToday(t *testing.T) {
	env := newTestEnv(
		&fakePortRepo{port: testPort()},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{station: testStation()},
	)
	// сегодня 09:50, слот 10:00 нарушает notice в 15 минут
	env.uc.timeProvider = fixedTime{time.Date(2025, 6, 10, 9, 50, 0, 0, time.UTC)}

	req := validRequest()
	req.Date = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)
	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrTooLateToBook)
}

func TestExecute_DateValidation(t *testing.T) {
	env := newTestEnv(
		&fakePortRepo{port: testPort()},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{station: testStation()},
	)

	req := validRequest()
	req.Date = time.Date(2025, 6, 9, 0, 0, 0, 0, time.UTC)
	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidDate)

	req = validRequest()
	req.Date = tNow.AddDate(0, 0, 31)
	_, err = env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrDateTooFarInFuture)
}

func TestExecute_InvalidInput(t *testing.T) {
	env := newTestEnv(
		&fakePortRepo{port: testPort()},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{station: testStation()},
	)

	req := validRequest()
	req.ChargingMode = "turbo"
	_, err := env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)

	req = validRequest()
	req.StartTime = "10:30"
	req.EndTime = "10:00"
	_, err = env.uc.Execute(context.Background(), req)
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_StationNotFound(t *testing.T) {
	env := newTestEnv(
		&fakePortRepo{port: testPort()},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{err: stationservice.ErrStationNotFound},
	)

	_, err := env.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrStationNotFound)
}

func TestExecute_PortNotFound(t *testing.T) {
	env := newTestEnv(
		&fakePortRepo{err: portRepo.ErrPortNotFound},
		&fakePolicyRepo{policy: testPolicy()},
		&fakeStationClient{station: testStation()},
	)

	_, err := env.uc.Execute(context.Background(), validRequest())
	assert.ErrorIs(t, err, ErrPortNotFound)
}

func TestExecute_DefaultPolicyWhenNotConfigured(t *testing.T) {
	env := newTestEnv(
		&fakePortRepo{port: testPort()},
		&fakePolicyRepo{err: policyRepo.ErrPolicyNotFound},
		&fakeStationClient{station: testStation()},
	)

	resp, err := env.uc.Execute(context.Background(), validRequest())
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("10:00"), resp.Reservation.StartTime)
}
