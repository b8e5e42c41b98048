package reservations

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/EVC-BookingService/internal/domain"
	reservationRepo "github.com/m04kA/EVC-BookingService/internal/infra/storage/reservation"
	"github.com/m04kA/EVC-BookingService/internal/integrations/stationservice"
	"github.com/m04kA/EVC-BookingService/internal/service/reservations/models"
	"github.com/m04kA/EVC-BookingService/pkg/types"
)

type fakeReservationRepo struct {
	byID map[int64]*domain.Reservation

	cancelled     map[int64]domain.ReservationStatus
	updated       map[int64]domain.ReservationStatus
	expiredCount  int64
	expireToday   time.Time
	expireCutoff  types.TimeString
	expireErr     error
	getByUserList []*domain.Reservation

	// afterRead вызывается после GetByID - моделирует конкурентный переход
	// статуса между чтением и записью
	afterRead func()
}

func newFakeRepo(reservations ...*domain.Reservation) *fakeReservationRepo {
	f := &fakeReservationRepo{
		byID:      make(map[int64]*domain.Reservation),
		cancelled: make(map[int64]domain.ReservationStatus),
		updated:   make(map[int64]domain.ReservationStatus),
	}
	for _, r := range reservations {
		f.byID[r.ID] = r
	}
	return f
}

func (f *fakeReservationRepo) GetByID(ctx context.Context, id int64) (*domain.Reservation, error) {
	r, ok := f.byID[id]
	if !ok {
		return nil, reservationRepo.ErrReservationNotFound
	}
	snapshot := *r
	if f.afterRead != nil {
		f.afterRead()
	}
	return &snapshot, nil
}

func (f *fakeReservationRepo) GetByUserID(ctx context.Context, userID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error) {
	return f.getByUserList, nil
}

func (f *fakeReservationRepo) GetByStationWithFilter(ctx context.Context, filter domain.StationReservationsFilter) ([]*domain.Reservation, error) {
	return f.getByUserList, nil
}

func (f *fakeReservationRepo) UpdateStatus(ctx context.Context, id int64, from, to domain.ReservationStatus) error {
	r, ok := f.byID[id]
	if !ok {
		return reservationRepo.ErrReservationNotFound
	}
	if r.Status != from {
		return reservationRepo.ErrStatusConflict
	}
	r.Status = to
	f.updated[id] = to
	return nil
}

func (f *fakeReservationRepo) Cancel(ctx context.Context, id int64, from, to domain.ReservationStatus, reason string) error {
	r, ok := f.byID[id]
	if !ok {
		return reservationRepo.ErrReservationNotFound
	}
	if r.Status != from {
		return reservationRepo.ErrStatusConflict
	}
	r.Status = to
	f.cancelled[id] = to
	return nil
}

func (f *fakeReservationRepo) ExpireOverdue(ctx context.Context, today time.Time, cutoff types.TimeString) (int64, error) {
	f.expireToday = today
	f.expireCutoff = cutoff
	return f.expiredCount, f.expireErr
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

type fakeCache struct {
	invalidated []string
}

func (f *fakeCache) Invalidate(ctx context.Context, key string) {
	f.invalidated = append(f.invalidated, key)
}

type fakeMetrics struct {
	cancelledBy []string
	expired     int64
}

func (f *fakeMetrics) IncReservationCancelled(by string) { f.cancelledBy = append(f.cancelledBy, by) }
func (f *fakeMetrics) AddReservationsExpired(n int64)    { f.expired += n }

type nopLogger struct{}

func (nopLogger) Info(format string, v ...interface{})  {}
func (nopLogger) Warn(format string, v ...interface{})  {}
func (nopLogger) Error(format string, v ...interface{}) {}

type fixedTime struct{ t time.Time }

func (f fixedTime) Now() time.Time { return f.t }

var tDate = time.Date(2025, 6, 11, 0, 0, 0, 0, time.UTC)

const (
	ownerID   = int64(7)
	managerID = int64(42)
	otherID   = int64(99)
)

func testStation() *stationservice.Station {
	return &stationservice.Station{ID: 1, Name: "EVC Tverskaya", ManagerIDs: []int64{managerID}}
}

func testReservation(status domain.ReservationStatus) *domain.Reservation {
	return &domain.Reservation{
		ID:        100,
		UserID:    ownerID,
		StationID: 1,
		PortID:    10,
		Date:      tDate,
		StartTime: "10:00",
		EndTime:   "10:30",
		Status:    status,
	}
}

func newTestService(repo *fakeReservationRepo, client *fakeStationClient) (*Service, *fakeCache, *fakeMetrics) {
	c := &fakeCache{}
	m := &fakeMetrics{}
	return NewService(repo, client, c, m, nopLogger{}), c, m
}

func TestGetByID_OwnerAndManagerAccess(t *testing.T) {
	repo := newFakeRepo(testReservation(domain.StatusPending))
	svc, _, _ := newTestService(repo, &fakeStationClient{station: testStation()})

	resp, err := svc.GetByID(context.Background(), 100, ownerID)
	require.NoError(t, err)
	assert.Equal(t, int64(100), resp.ID)

	_, err = svc.GetByID(context.Background(), 100, managerID)
	require.NoError(t, err)

	_, err = svc.GetByID(context.Background(), 100, otherID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	_, err = svc.GetByID(context.Background(), 404, ownerID)
	assert.ErrorIs(t, err, ErrReservationNotFound)
}

func TestCancel_ByOwner(t *testing.T) {
	repo := newFakeRepo(testReservation(domain.StatusPending))
	svc, cache, metrics := newTestService(repo, &fakeStationClient{station: testStation()})

	err := svc.Cancel(context.Background(), 100, &models.CancelReservationRequest{UserID: ownerID})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelledByUser, repo.cancelled[100])
	assert.Equal(t, []string{"slots:10:2025-06-11"}, cache.invalidated)
	assert.Equal(t, []string{"user"}, metrics.cancelledBy)
}

func TestCancel_ByManager(t *testing.T) {
	repo := newFakeRepo(testReservation(domain.StatusConfirmed))
	svc, _, metrics := newTestService(repo, &fakeStationClient{station: testStation()})

	err := svc.Cancel(context.Background(), 100, &models.CancelReservationRequest{UserID: managerID})
	require.NoError(t, err)

	assert.Equal(t, domain.StatusCancelledByOperator, repo.cancelled[100])
	assert.Equal(t, []string{"operator"}, metrics.cancelledBy)
}

func TestCancel_StrangerDenied(t *testing.T) {
	repo := newFakeRepo(testReservation(domain.StatusPending))
	svc, cache, _ := newTestService(repo, &fakeStationClient{station: testStation()})

	err := svc.Cancel(context.Background(), 100, &models.CancelReservationRequest{UserID: otherID})
	assert.ErrorIs(t, err, ErrAccessDenied)
	assert.Empty(t, repo.cancelled)
	assert.Empty(t, cache.invalidated)
}

func TestCancel_TerminalStatusRejected(t *testing.T) {
	for _, status := range []domain.ReservationStatus{
		domain.StatusCompleted, domain.StatusExpired, domain.StatusCancelledByUser,
	} {
		repo := newFakeRepo(testReservation(status))
		svc, _, _ := newTestService(repo, &fakeStationClient{station: testStation()})

		err := svc.Cancel(context.Background(), 100, &models.CancelReservationRequest{UserID: ownerID})
		assert.ErrorIs(t, err, ErrCannotCancel, "status=%s", status)
	}
}

func TestConfirm_OwnerOnly(t *testing.T) {
	repo := newFakeRepo(testReservation(domain.StatusPending))
	svc, _, _ := newTestService(repo, &fakeStationClient{station: testStation()})

	// менеджеру подтверждать чужую бронь нельзя
	_, err := svc.Confirm(context.Background(), 100, managerID)
	assert.ErrorIs(t, err, ErrAccessDenied)

	resp, err := svc.Confirm(context.Background(), 100, ownerID)
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, domain.StatusConfirmed, repo.updated[100])
}

func TestConfirm_RacesWithExpiry(t *testing.T) {
	repo := newFakeRepo(testReservation(domain.StatusPending))
	svc, _, _ := newTestService(repo, &fakeStationClient{station: testStation()})

	// Фоновое истечение переводит бронь в expired между чтением и записью
	repo.afterRead = func() { repo.byID[100].Status = domain.StatusExpired }

	_, err := svc.Confirm(context.Background(), 100, ownerID)
	assert.ErrorIs(t, err, ErrCannotConfirm)
	assert.Empty(t, repo.updated)
	assert.Equal(t, domain.StatusExpired, repo.byID[100].Status)
}

func TestCancel_RacesWithCompletion(t *testing.T) {
	repo := newFakeRepo(testReservation(domain.StatusConfirmed))
	svc, cache, metrics := newTestService(repo, &fakeStationClient{station: testStation()})

	// Сессия завершилась параллельно - завершенную бронь отменить нельзя
	repo.afterRead = func() { repo.byID[100].Status = domain.StatusCompleted }

	err := svc.Cancel(context.Background(), 100, &models.CancelReservationRequest{UserID: ownerID})
	assert.ErrorIs(t, err, ErrCannotCancel)
	assert.Empty(t, repo.cancelled)
	assert.Empty(t, cache.invalidated)
	assert.Empty(t, metrics.cancelledBy)
	assert.Equal(t, domain.StatusCompleted, repo.byID[100].Status)
}

func TestUpdateStatus_RacesWithCancel(t *testing.T) {
	repo := newFakeRepo(testReservation(domain.StatusConfirmed))
	svc, _, _ := newTestService(repo, &fakeStationClient{station: testStation()})

	repo.afterRead = func() { repo.byID[100].Status = domain.StatusCancelledByUser }

	err := svc.UpdateStatus(context.Background(), 100, &models.UpdateStatusRequest{UserID: managerID, Status: "completed"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Empty(t, repo.updated)
}

func TestConfirm_OnlyPending(t *testing.T) {
	repo := newFakeRepo(testReservation(domain.StatusConfirmed))
	svc, _, _ := newTestService(repo, &fakeStationClient{station: testStation()})

	_, err := svc.Confirm(context.Background(), 100, ownerID)
	assert.ErrorIs(t, err, ErrCannotConfirm)
}

func TestUpdateStatus_ManagerTransitions(t *testing.T) {
	repo := newFakeRepo(testReservation(domain.StatusConfirmed))
	svc, _, _ := newTestService(repo, &fakeStationClient{station: testStation()})

	err := svc.UpdateStatus(context.Background(), 100, &models.UpdateStatusRequest{UserID: managerID, Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, domain.StatusCompleted, repo.updated[100])

	// недопустимый переход
	repo = newFakeRepo(testReservation(domain.StatusConfirmed))
	svc, _, _ = newTestService(repo, &fakeStationClient{station: testStation()})
	err = svc.UpdateStatus(context.Background(), 100, &models.UpdateStatusRequest{UserID: managerID, Status: "expired"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	// не менеджер
	err = svc.UpdateStatus(context.Background(), 100, &models.UpdateStatusRequest{UserID: ownerID, Status: "completed"})
	assert.ErrorIs(t, err, ErrAccessDenied)

	// неизвестный статус
	err = svc.UpdateStatus(context.Background(), 100, &models.UpdateStatusRequest{UserID: managerID, Status: "bogus"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetStationReservations_ManagerOnly(t *testing.T) {
	repo := newFakeRepo()
	repo.getByUserList = []*domain.Reservation{testReservation(domain.StatusPending)}
	svc, _, _ := newTestService(repo, &fakeStationClient{station: testStation()})

	resp, err := svc.GetStationReservations(context.Background(), &models.GetStationReservationsRequest{
		UserID:    managerID,
		StationID: 1,
	})
	require.NoError(t, err)
	assert.Len(t, resp.Reservations, 1)

	_, err = svc.GetStationReservations(context.Background(), &models.GetStationReservationsRequest{
		UserID:    otherID,
		StationID: 1,
	})
	assert.ErrorIs(t, err, ErrAccessDenied)
}

func TestExpireOverduePending(t *testing.T) {
	repo := newFakeRepo()
	repo.expiredCount = 3
	svc, _, metrics := newTestService(repo, &fakeStationClient{station: testStation()})
	svc.timeProvider = fixedTime{time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)}

	expired, err := svc.ExpireOverduePending(context.Background(), 15)
	require.NoError(t, err)
	assert.Equal(t, int64(3), expired)
	assert.Equal(t, types.TimeString("09:45"), repo.expireCutoff)
	assert.Equal(t, int64(3), metrics.expired)

	// Колонка date имеет тип DATE - в репозиторий уходит дата без времени суток
	assert.Equal(t, time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC), repo.expireToday)
}

func TestCutoffTime(t *testing.T) {
	now := time.Date(2025, 6, 10, 10, 0, 0, 0, time.UTC)

	cutoff, err := cutoffTime(now, 15)
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("09:45"), cutoff)

	// отсечка уходит за полночь: сегодняшние брони еще живы
	early := time.Date(2025, 6, 10, 0, 10, 0, 0, time.UTC)
	cutoff, err = cutoffTime(early, 15)
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("00:00"), cutoff)

	cutoff, err = cutoffTime(now, 0)
	require.NoError(t, err)
	assert.Equal(t, types.TimeString("10:00"), cutoff)
}
