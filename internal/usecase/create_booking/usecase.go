package create_booking

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/m04kA/EVC-BookingService/internal/domain"
	cache "github.com/m04kA/EVC-BookingService/internal/infra/cache/availability"
	policyRepo "github.com/m04kA/EVC-BookingService/internal/infra/storage/policy"
	portRepo "github.com/m04kA/EVC-BookingService/internal/infra/storage/port"
	stationClient "github.com/m04kA/EVC-BookingService/internal/integrations/stationservice"
	"github.com/m04kA/EVC-BookingService/pkg/ptr"
	"github.com/m04kA/EVC-BookingService/pkg/txmanager"
	"github.com/m04kA/EVC-BookingService/pkg/types"
)

// UseCase use case создания брони.
// Путь записи: проверка конфликта и вставка выполняются в одной
// serializable-транзакции, поэтому два пересекающихся запроса на один
// порт и дату не могут пройти оба.
type UseCase struct {
	reservationRepo ReservationRepository
	portRepo        PortRepository
	policyRepo      PolicyRepository
	stationClient   StationServiceClient
	txManager       TransactionManager
	slotsCache      SlotsCache
	metrics         BusinessMetrics
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case.
// slotsCache и metrics могут быть nil - тогда кеш и метрики выключены.
func NewUseCase(
	reservationRepo ReservationRepository,
	portRepo PortRepository,
	policyRepo PolicyRepository,
	stationClient StationServiceClient,
	txManager TransactionManager,
	slotsCache SlotsCache,
	metrics BusinessMetrics,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		portRepo:        portRepo,
		policyRepo:      policyRepo,
		stationClient:   stationClient,
		txManager:       txManager,
		slotsCache:      slotsCache,
		metrics:         metrics,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания брони
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, station=%d, port=%d, date=%s, window=%s-%s, mode=%s",
		req.UserID, req.StationID, req.PortID, req.Date.Format(domain.DateFormat),
		req.StartTime, req.EndTime, req.ChargingMode)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Получаем станцию
	station, err := uc.stationClient.GetStation(ctx, req.StationID)
	if err != nil {
		if errors.Is(err, stationClient.ErrStationNotFound) {
			uc.logger.Warn("CreateBooking: station id=%d not found", req.StationID)
			return nil, ErrStationNotFound
		}
		uc.logger.Error("CreateBooking: failed to get station id=%d: %v", req.StationID, err)
		return nil, fmt.Errorf("%w: failed to get station: %v", ErrInternal, err)
	}

	// 4. Получаем политику бронирования с учетом иерархии
	policy, err := uc.policyRepo.GetPolicyWithHierarchy(ctx, req.StationID, ptr.Ptr(req.PortID))
	if err != nil && !errors.Is(err, policyRepo.ErrPolicyNotFound) {
		uc.logger.Error("CreateBooking: failed to get policy: %v", err)
		return nil, fmt.Errorf("%w: failed to get policy: %v", ErrInternal, err)
	}

	if policy == nil {
		policy = domain.DefaultBookingPolicy(req.StationID)
		uc.logger.Info("CreateBooking: using default policy for station=%d, port=%d",
			req.StationID, req.PortID)
	}

	// 5. Валидация даты и минимального времени до брони
	if err := validateDate(req.Date, now, policy.AdvanceBookingDays); err != nil {
		uc.logger.Warn("CreateBooking: date validation failed: %v", err)
		return nil, err
	}

	if err := validateNotice(req.StartTime, req.Date, now, policy.MinBookingNoticeMinutes); err != nil {
		uc.logger.Warn("CreateBooking: notice validation failed: %v", err)
		return nil, err
	}

	// 6. Рабочие часы станции на указанную дату
	day := workingHoursForDay(station, req.Date)
	if !day.IsOpen || day.OpenTime == nil || day.CloseTime == nil {
		uc.logger.Warn("CreateBooking: station id=%d is closed on %s",
			req.StationID, req.Date.Format(domain.DateFormat))
		return nil, ErrStationClosed
	}

	stationOpen, err := types.NewTimeStringFromString(*day.OpenTime)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed station open time: %v", ErrInternal, err)
	}
	stationClose, err := types.NewTimeStringFromString(*day.CloseTime)
	if err != nil {
		return nil, fmt.Errorf("%w: malformed station close time: %v", ErrInternal, err)
	}

	window := req.Window()

	// 7. Проверка конфликта и вставка в одной serializable-транзакции.
	// Порт читается с блокировкой строки - конкурирующие брони на один
	// порт сериализуются, FindOverlapping видит актуальную занятость.
	var created *domain.Reservation

	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		port, err := uc.portRepo.GetByStationAndID(txCtx, req.StationID, req.PortID)
		if err != nil {
			if errors.Is(err, portRepo.ErrPortNotFound) {
				return ErrPortNotFound
			}
			return fmt.Errorf("%w: failed to get port: %v", ErrInternal, err)
		}

		// Offline-порт бронировать нельзя, даже на будущее
		if port.IsOffline() {
			return ErrPortOffline
		}

		if !port.SupportsMode(req.ChargingMode) {
			return ErrModeNotSupported
		}

		// Окно должно лежать на сетке слотов в рабочих часах порта
		open, close := port.EffectiveHours(stationOpen, stationClose)
		if !window.IsAligned(open, close, policy.SlotDurationMinutes) {
			return fmt.Errorf("%w: expected a %d-minute slot aligned to %s",
				ErrInvalidWindow, policy.SlotDurationMinutes, open)
		}

		overlapping, err := uc.reservationRepo.FindOverlapping(txCtx, req.PortID, req.Date, window)
		if err != nil {
			return fmt.Errorf("%w: failed to check overlapping reservations: %v", ErrInternal, err)
		}
		if len(overlapping) > 0 {
			return ErrSlotConflict
		}

		reservation := &domain.Reservation{
			UserID:        req.UserID,
			StationID:     req.StationID,
			PortID:        req.PortID,
			Date:          req.Date,
			StartTime:     req.StartTime,
			EndTime:       req.EndTime,
			ChargingMode:  req.ChargingMode,
			Status:        domain.StatusPending,
			StationName:   station.Name,
			EstimatedCost: estimateCost(station, port, req.ChargingMode, window),
		}

		created, err = uc.reservationRepo.Create(txCtx, reservation)
		if err != nil {
			return fmt.Errorf("%w: failed to create reservation: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		switch {
		case errors.Is(err, ErrSlotConflict):
			if uc.metrics != nil {
				uc.metrics.IncReservationConflict()
			}
			uc.logger.Info("CreateBooking: conflict for port=%d, date=%s, window=%s-%s",
				req.PortID, req.Date.Format(domain.DateFormat), req.StartTime, req.EndTime)
			return nil, ErrSlotConflict
		case errors.Is(err, ErrPortNotFound),
			errors.Is(err, ErrPortOffline),
			errors.Is(err, ErrModeNotSupported),
			errors.Is(err, ErrInvalidWindow):
			uc.logger.Warn("CreateBooking: rejected: %v", err)
			return nil, err
		case errors.Is(err, txmanager.ErrTxTimeout):
			uc.logger.Error("CreateBooking: transaction timed out: %v", err)
			return nil, ErrTimeout
		default:
			uc.logger.Error("CreateBooking: transaction failed: %v", err)
			return nil, err
		}
	}

	// 8. Инвалидируем кеш доступности для этого порта и даты
	if uc.slotsCache != nil {
		uc.slotsCache.Invalidate(ctx, cache.Key(req.PortID, req.Date.Format(domain.DateFormat)))
	}

	if uc.metrics != nil {
		uc.metrics.IncReservationCreated(string(created.ChargingMode))
	}

	uc.logger.Info("CreateBooking: created reservation id=%d, user=%d, port=%d, date=%s, window=%s-%s, cost=%.2f",
		created.ID, created.UserID, created.PortID, created.Date.Format(domain.DateFormat),
		created.StartTime, created.EndTime, created.EstimatedCost)

	return &Response{Reservation: created}, nil
}

// estimateCost считает ориентировочную стоимость зарядки: тариф за кВт·ч
// на момент начала слота, умноженный на энергию при полной мощности порта
func estimateCost(station *stationClient.Station, port *domain.Port, mode domain.ChargingMode, window domain.TimeWindow) float64 {
	rate := station.RateFor(string(mode), window.Start)
	hours := float64(window.DurationMinutes()) / 60.0
	return rate * port.PowerKW * hours
}

// workingHoursForDay возвращает расписание работы станции на указанный день недели
func workingHoursForDay(station *stationClient.Station, date time.Time) stationClient.DaySchedule {
	switch date.Weekday() {
	case time.Monday:
		return station.Hours.Monday
	case time.Tuesday:
		return station.Hours.Tuesday
	case time.Wednesday:
		return station.Hours.Wednesday
	case time.Thursday:
		return station.Hours.Thursday
	case time.Friday:
		return station.Hours.Friday
	case time.Saturday:
		return station.Hours.Saturday
	case time.Sunday:
		return station.Hours.Sunday
	default:
		return stationClient.DaySchedule{IsOpen: false}
	}
}
