package get_available_slots

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/EVC-BookingService/internal/domain"
	cache "github.com/m04kA/EVC-BookingService/internal/infra/cache/availability"
	policyRepo "github.com/m04kA/EVC-BookingService/internal/infra/storage/policy"
	portRepo "github.com/m04kA/EVC-BookingService/internal/infra/storage/port"
	stationClient "github.com/m04kA/EVC-BookingService/internal/integrations/stationservice"
	"github.com/m04kA/EVC-BookingService/pkg/ptr"
)

// UseCase use case для получения доступных слотов порта.
// Путь чтения: сетка окон из рабочих часов минус занимающие брони.
// "Нет доступных слотов" - нормальный результат, не ошибка.
type UseCase struct {
	reservationRepo ReservationRepository
	portRepo        PortRepository
	policyRepo      PolicyRepository
	stationClient   StationServiceClient
	txManager       TransactionManager
	slotsCache      SlotsCache
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case.
// slotsCache может быть nil - тогда кеширование выключено.
func NewUseCase(
	reservationRepo ReservationRepository,
	portRepo PortRepository,
	policyRepo PolicyRepository,
	stationClient StationServiceClient,
	txManager TransactionManager,
	slotsCache SlotsCache,
	logger Logger,
) *UseCase {
	return &UseCase{
		reservationRepo: reservationRepo,
		portRepo:        portRepo,
		policyRepo:      policyRepo,
		stationClient:   stationClient,
		txManager:       txManager,
		slotsCache:      slotsCache,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case получения доступных слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetAvailableSlots: user=%d, station=%d, port=%d, date=%s",
		req.UserID, req.StationID, req.PortID, req.Date.Format(domain.DateFormat))

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("GetAvailableSlots: validation failed: %v", err)
		return nil, err
	}

	// 2. Получаем текущее время
	now := uc.timeProvider.Now()

	// 3. Проверяем кеш: допустимое устаревание ограничено его TTL,
	// повторная проверка при бронировании остается границей корректности
	cacheKey := cache.Key(req.PortID, req.Date.Format(domain.DateFormat))
	if uc.slotsCache != nil {
		var cached []Slot
		if uc.slotsCache.Get(ctx, cacheKey, &cached) {
			uc.logger.Info("GetAvailableSlots: cache hit for port=%d, date=%s",
				req.PortID, req.Date.Format(domain.DateFormat))
			return uc.buildResponse(req, cached), nil
		}
	}

	// 4. Получаем станцию
	station, err := uc.stationClient.GetStation(ctx, req.StationID)
	if err != nil {
		if errors.Is(err, stationClient.ErrStationNotFound) {
			uc.logger.Warn("GetAvailableSlots: station id=%d not found", req.StationID)
			return nil, ErrStationNotFound
		}
		uc.logger.Error("GetAvailableSlots: failed to get station id=%d: %v", req.StationID, err)
		return nil, fmt.Errorf("%w: failed to get station: %v", ErrInternal, err)
	}

	// 5. Получаем политику бронирования с учетом иерархии
	policy, err := uc.policyRepo.GetPolicyWithHierarchy(ctx, req.StationID, ptr.Ptr(req.PortID))
	if err != nil && !errors.Is(err, policyRepo.ErrPolicyNotFound) {
		uc.logger.Error("GetAvailableSlots: failed to get policy: %v", err)
		return nil, fmt.Errorf("%w: failed to get policy: %v", ErrInternal, err)
	}

	// Если политика не настроена, используем дефолтные значения
	if policy == nil {
		policy = domain.DefaultBookingPolicy(req.StationID)
		uc.logger.Info("GetAvailableSlots: using default policy for station=%d, port=%d",
			req.StationID, req.PortID)
	} else {
		uc.logger.Info("GetAvailableSlots: using policy id=%d", policy.ID)
	}

	// 6. Валидация даты с учетом политики
	if err := validateDate(req.Date, now, policy.AdvanceBookingDays); err != nil {
		uc.logger.Warn("GetAvailableSlots: date validation failed: %v", err)
		return nil, err
	}

	// 7. Рабочие часы станции на указанную дату
	workingHours := workingHoursForDay(station, req.Date)
	if !workingHours.IsOpen {
		uc.logger.Info("GetAvailableSlots: station is closed on %s", req.Date.Format(domain.DateFormat))
		return uc.buildResponse(req, []Slot{}), nil
	}

	// 8. Порт и его брони читаются в одной read-only транзакции:
	// консистентный снимок статуса порта и занятости
	var (
		port         *domain.Port
		reservations []*domain.Reservation
	)

	err = uc.txManager.DoReadOnly(ctx, func(txCtx context.Context) error {
		var err error

		port, err = uc.portRepo.GetByStationAndID(txCtx, req.StationID, req.PortID)
		if err != nil {
			if errors.Is(err, portRepo.ErrPortNotFound) {
				return ErrPortNotFound
			}
			return fmt.Errorf("%w: failed to get port: %v", ErrInternal, err)
		}

		// Offline-порт не планируется: брони не важны
		if port.IsOffline() {
			return nil
		}

		reservations, err = uc.reservationRepo.GetOccupyingByPortAndDate(txCtx, req.PortID, req.Date)
		if err != nil {
			return fmt.Errorf("%w: failed to get reservations: %v", ErrInternal, err)
		}

		return nil
	})

	if err != nil {
		if errors.Is(err, ErrPortNotFound) {
			uc.logger.Warn("GetAvailableSlots: port id=%d not found on station id=%d", req.PortID, req.StationID)
			return nil, ErrPortNotFound
		}
		uc.logger.Error("GetAvailableSlots: read transaction failed: %v", err)
		return nil, err
	}

	// 9. Offline-порт предлагает ноль слотов независимо от броней
	if port.IsOffline() {
		uc.logger.Info("GetAvailableSlots: port id=%d is offline, no slots offered", req.PortID)
		return uc.buildResponse(req, []Slot{}), nil
	}

	// 10. Генерируем сетку окон-кандидатов
	candidates, err := generateCandidateWindows(workingHours, port, req.Date, policy.SlotDurationMinutes)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to generate candidate windows: %v", err)
		return nil, fmt.Errorf("%w: failed to generate candidate windows: %v", ErrInternal, err)
	}

	// 11. Фильтруем по минимальному времени до брони (только для сегодня)
	candidates, err = filterByNotice(candidates, req.Date, now, policy.MinBookingNoticeMinutes)
	if err != nil {
		uc.logger.Error("GetAvailableSlots: failed to filter by notice: %v", err)
		return nil, fmt.Errorf("%w: failed to filter by notice: %v", ErrInternal, err)
	}

	// 12. Отбрасываем окна, пересекающиеся с занимающими бронями
	free := filterOccupied(candidates, reservations)

	slots := make([]Slot, len(free))
	for i, w := range free {
		slots[i] = Slot{
			StartTime:       w.Start,
			EndTime:         w.End,
			DurationMinutes: w.DurationMinutes(),
		}
	}

	// 13. Кладем результат в кеш
	if uc.slotsCache != nil {
		uc.slotsCache.Set(ctx, cacheKey, slots)
	}

	uc.logger.Info("GetAvailableSlots: %d free of %d candidate slots for station=%d, port=%d, date=%s",
		len(slots), len(candidates), req.StationID, req.PortID, req.Date.Format(domain.DateFormat))

	return uc.buildResponse(req, slots), nil
}

// buildResponse собирает ответ use case
func (uc *UseCase) buildResponse(req *Request, slots []Slot) *Response {
	return &Response{
		Date:      req.Date,
		StationID: req.StationID,
		PortID:    req.PortID,
		Slots:     slots,
	}
}
