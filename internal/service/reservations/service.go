package reservations

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/EVC-BookingService/internal/domain"
	cache "github.com/m04kA/EVC-BookingService/internal/infra/cache/availability"
	reservationRepo "github.com/m04kA/EVC-BookingService/internal/infra/storage/reservation"
	stationClient "github.com/m04kA/EVC-BookingService/internal/integrations/stationservice"
	"github.com/m04kA/EVC-BookingService/internal/service/reservations/models"
)

// Service сервис для работы с бронями зарядных портов
type Service struct {
	reservationRepo ReservationRepository
	stationClient   StationServiceClient
	slotsCache      SlotsCache
	metrics         BusinessMetrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewService создает новый экземпляр сервиса броней.
// slotsCache и metrics могут быть nil - тогда кеш и метрики выключены.
func NewService(
	reservationRepo ReservationRepository,
	stationClient StationServiceClient,
	slotsCache SlotsCache,
	metrics BusinessMetrics,
	logger Logger,
) *Service {
	return &Service{
		reservationRepo: reservationRepo,
		stationClient:   stationClient,
		slotsCache:      slotsCache,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// GetByID получает бронь по ID
// Проверяет права доступа - пользователь может видеть только свою бронь
// или если он является менеджером станции
func (s *Service) GetByID(ctx context.Context, id int64, userID int64) (*models.ReservationResponse, error) {
	s.logger.Info("GetByID: fetching reservation id=%d for user=%d", id, userID)

	res, err := s.reservationRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("GetByID: reservation id=%d not found", id)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("GetByID: repository error for reservation id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	if err := s.checkUserAccess(ctx, res, userID); err != nil {
		s.logger.Warn("GetByID: access denied for user=%d to reservation id=%d", userID, id)
		return nil, err
	}

	s.logger.Info("GetByID: successfully fetched reservation id=%d", id)
	return models.FromDomainReservation(res), nil
}

// GetUserReservations получает историю броней пользователя
// Опционально фильтрует по статусу
func (s *Service) GetUserReservations(ctx context.Context, req *models.GetUserReservationsRequest) (*models.ReservationListResponse, error) {
	s.logger.Info("GetUserReservations: fetching reservations for user=%d, status=%v", req.UserID, req.Status)

	var domainStatus *domain.ReservationStatus
	if req.Status != nil {
		status, err := models.ToDomainReservationStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserReservations: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	reservations, err := s.reservationRepo.GetByUserID(ctx, req.UserID, domainStatus)
	if err != nil {
		s.logger.Error("GetUserReservations: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserReservations - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetUserReservations: successfully fetched %d reservations for user=%d", len(reservations), req.UserID)
	return models.FromDomainReservationList(reservations), nil
}

// GetStationReservations получает брони станции с гибкой фильтрацией
// Поддерживает фильтрацию по порту, периоду, статусу и включению неактивных броней
// Доступно только менеджерам станции
func (s *Service) GetStationReservations(ctx context.Context, req *models.GetStationReservationsRequest) (*models.ReservationListResponse, error) {
	logMsg := fmt.Sprintf("GetStationReservations: fetching reservations for station=%d, user=%d", req.StationID, req.UserID)
	if req.PortID != nil {
		logMsg += fmt.Sprintf(", port=%d", *req.PortID)
	}
	if req.StartDate != nil && req.EndDate != nil {
		logMsg += fmt.Sprintf(", period=%s to %s", req.StartDate.Format(domain.DateFormat), req.EndDate.Format(domain.DateFormat))
	}
	if req.Status != nil {
		logMsg += fmt.Sprintf(", status=%s", *req.Status)
	}
	if req.IncludeInactive {
		logMsg += ", includeInactive=true"
	}
	s.logger.Info(logMsg)

	if err := s.checkManagerAccess(ctx, req.StationID, req.UserID); err != nil {
		return nil, err
	}

	filter, err := req.ToDomainFilter()
	if err != nil {
		s.logger.Warn("GetStationReservations: invalid filter for station=%d: %v", req.StationID, err)
		return nil, fmt.Errorf("%w: invalid filter", ErrInvalidInput)
	}

	reservations, err := s.reservationRepo.GetByStationWithFilter(ctx, filter)
	if err != nil {
		s.logger.Error("GetStationReservations: repository error for station=%d: %v", req.StationID, err)
		return nil, fmt.Errorf("%w: GetStationReservations - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetStationReservations: successfully fetched %d reservations for station=%d", len(reservations), req.StationID)
	return models.FromDomainReservationList(reservations), nil
}

// Cancel отменяет бронь
// Пользователь может отменить только свою бронь (cancelled_by_user)
// Менеджер станции может отменить любую бронь станции (cancelled_by_operator)
func (s *Service) Cancel(ctx context.Context, reservationID int64, req *models.CancelReservationRequest) error {
	s.logger.Info("Cancel: cancelling reservation id=%d by user=%d", reservationID, req.UserID)

	res, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("Cancel: reservation id=%d not found", reservationID)
			return ErrReservationNotFound
		}
		s.logger.Error("Cancel: repository error for reservation id=%d: %v", reservationID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	if !res.CanBeCancelled() {
		s.logger.Warn("Cancel: reservation id=%d cannot be cancelled, status=%s", reservationID, res.Status)
		return ErrCannotCancel
	}

	// Статус отмены зависит от того, кто отменяет
	var cancelStatus domain.ReservationStatus

	if res.UserID == req.UserID {
		cancelStatus = domain.StatusCancelledByUser
	} else {
		if err := s.checkManagerAccess(ctx, res.StationID, req.UserID); err != nil {
			s.logger.Warn("Cancel: access denied for user=%d to cancel reservation id=%d", req.UserID, reservationID)
			return ErrAccessDenied
		}
		cancelStatus = domain.StatusCancelledByOperator
	}

	if err := s.reservationRepo.Cancel(ctx, reservationID, res.Status, cancelStatus, req.CancellationReason); err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("Cancel: reservation id=%d not found during cancellation", reservationID)
			return ErrReservationNotFound
		}
		// Статус успел измениться (фоновое истечение, завершение сессии)
		if errors.Is(err, reservationRepo.ErrStatusConflict) {
			s.logger.Warn("Cancel: reservation id=%d changed status concurrently", reservationID)
			return ErrCannotCancel
		}
		s.logger.Error("Cancel: repository error for reservation id=%d: %v", reservationID, err)
		return fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	// Окно освободилось - инвалидируем кеш доступности порта на эту дату
	if s.slotsCache != nil {
		s.slotsCache.Invalidate(ctx, cache.Key(res.PortID, res.Date.Format(domain.DateFormat)))
	}

	if s.metrics != nil {
		if cancelStatus == domain.StatusCancelledByUser {
			s.metrics.IncReservationCancelled("user")
		} else {
			s.metrics.IncReservationCancelled("operator")
		}
	}

	s.logger.Info("Cancel: successfully cancelled reservation id=%d with status=%s", reservationID, cancelStatus)
	return nil
}

// Confirm подтверждает pending-бронь владельцем.
// Подтвержденная бронь продолжает занимать свое окно, но перестает
// попадать под фоновое истечение.
func (s *Service) Confirm(ctx context.Context, reservationID int64, userID int64) (*models.ReservationResponse, error) {
	s.logger.Info("Confirm: confirming reservation id=%d by user=%d", reservationID, userID)

	res, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("Confirm: reservation id=%d not found", reservationID)
			return nil, ErrReservationNotFound
		}
		s.logger.Error("Confirm: repository error for reservation id=%d: %v", reservationID, err)
		return nil, fmt.Errorf("%w: Confirm - repository error: %v", ErrInternal, err)
	}

	// Подтверждать бронь может только её владелец
	if res.UserID != userID {
		s.logger.Warn("Confirm: access denied for user=%d to reservation id=%d", userID, reservationID)
		return nil, ErrAccessDenied
	}

	if !res.CanBeConfirmed() {
		s.logger.Warn("Confirm: reservation id=%d cannot be confirmed, status=%s", reservationID, res.Status)
		return nil, ErrCannotConfirm
	}

	if err := s.reservationRepo.UpdateStatus(ctx, reservationID, res.Status, domain.StatusConfirmed); err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			return nil, ErrReservationNotFound
		}
		// Бронь успела истечь или отмениться между чтением и подтверждением
		if errors.Is(err, reservationRepo.ErrStatusConflict) {
			s.logger.Warn("Confirm: reservation id=%d changed status concurrently", reservationID)
			return nil, ErrCannotConfirm
		}
		s.logger.Error("Confirm: repository error for reservation id=%d: %v", reservationID, err)
		return nil, fmt.Errorf("%w: Confirm - repository error: %v", ErrInternal, err)
	}

	res.Status = domain.StatusConfirmed

	s.logger.Info("Confirm: successfully confirmed reservation id=%d", reservationID)
	return models.FromDomainReservation(res), nil
}

// UpdateStatus обновляет статус брони
// Доступно только менеджерам станции, переход проверяется по жизненному циклу
func (s *Service) UpdateStatus(ctx context.Context, reservationID int64, req *models.UpdateStatusRequest) error {
	s.logger.Info("UpdateStatus: updating reservation id=%d to status=%s by user=%d",
		reservationID, req.Status, req.UserID)

	res, err := s.reservationRepo.GetByID(ctx, reservationID)
	if err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("UpdateStatus: reservation id=%d not found", reservationID)
			return ErrReservationNotFound
		}
		s.logger.Error("UpdateStatus: repository error for reservation id=%d: %v", reservationID, err)
		return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	if err := s.checkManagerAccess(ctx, res.StationID, req.UserID); err != nil {
		return err
	}

	newStatus, err := models.ToDomainReservationStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for reservation id=%d", req.Status, reservationID)
		return fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	if !domain.ValidTransition(res.Status, newStatus) {
		s.logger.Warn("UpdateStatus: invalid transition %s -> %s for reservation id=%d",
			res.Status, newStatus, reservationID)
		return fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, res.Status, newStatus)
	}

	if err := s.reservationRepo.UpdateStatus(ctx, reservationID, res.Status, newStatus); err != nil {
		if errors.Is(err, reservationRepo.ErrReservationNotFound) {
			s.logger.Warn("UpdateStatus: reservation id=%d not found during update", reservationID)
			return ErrReservationNotFound
		}
		if errors.Is(err, reservationRepo.ErrStatusConflict) {
			s.logger.Warn("UpdateStatus: reservation id=%d changed status concurrently", reservationID)
			return fmt.Errorf("%w: reservation status changed concurrently", ErrInvalidTransition)
		}
		s.logger.Error("UpdateStatus: repository error for reservation id=%d: %v", reservationID, err)
		return fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateStatus: successfully updated reservation id=%d to status=%s", reservationID, newStatus)
	return nil
}

// ExpireOverduePending переводит в expired все pending-брони, чье начало
// отстоит от текущего момента больше чем на graceMinutes.
// Возвращает количество истекших броней.
func (s *Service) ExpireOverduePending(ctx context.Context, graceMinutes int) (int64, error) {
	now := s.timeProvider.Now()

	// Отсечка: начало слота, позже которого pending-бронь еще жива.
	// Если отсечка уходит за предыдущую полночь, истекают только брони
	// на прошлые даты.
	cutoff, err := cutoffTime(now, graceMinutes)
	if err != nil {
		s.logger.Error("ExpireOverduePending: failed to compute cutoff: %v", err)
		return 0, fmt.Errorf("%w: ExpireOverduePending - failed to compute cutoff: %v", ErrInternal, err)
	}

	// Колонка date имеет тип DATE - сравнение ведется по дате без времени суток
	today := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())

	expired, err := s.reservationRepo.ExpireOverdue(ctx, today, cutoff)
	if err != nil {
		s.logger.Error("ExpireOverduePending: repository error: %v", err)
		return 0, fmt.Errorf("%w: ExpireOverduePending - repository error: %v", ErrInternal, err)
	}

	if expired > 0 {
		if s.metrics != nil {
			s.metrics.AddReservationsExpired(expired)
		}
		s.logger.Info("ExpireOverduePending: expired %d overdue pending reservations", expired)
	}

	return expired, nil
}

// Вспомогательные методы

// checkUserAccess проверяет, что пользователь имеет доступ к брони
// Пользователь может видеть свою бронь или если он менеджер станции
func (s *Service) checkUserAccess(ctx context.Context, res *domain.Reservation, userID int64) error {
	if res.UserID == userID {
		return nil
	}

	if err := s.checkManagerAccess(ctx, res.StationID, userID); err != nil {
		// Ошибка уже залогирована в checkManagerAccess
		return ErrAccessDenied
	}

	return nil
}

// checkManagerAccess проверяет, что пользователь является менеджером станции
func (s *Service) checkManagerAccess(ctx context.Context, stationID int64, userID int64) error {
	station, err := s.stationClient.GetStation(ctx, stationID)
	if err != nil {
		if errors.Is(err, stationClient.ErrStationNotFound) {
			s.logger.Warn("checkManagerAccess: station id=%d not found", stationID)
			return ErrStationNotFound
		}
		s.logger.Error("checkManagerAccess: failed to get station id=%d: %v", stationID, err)
		return fmt.Errorf("%w: checkManagerAccess - failed to get station: %v", ErrInternal, err)
	}

	for _, managerID := range station.ManagerIDs {
		if managerID == userID {
			s.logger.Info("checkManagerAccess: user=%d is manager of station=%d", userID, stationID)
			return nil
		}
	}

	s.logger.Warn("checkManagerAccess: user=%d is not a manager of station=%d", userID, stationID)
	return ErrAccessDenied
}
