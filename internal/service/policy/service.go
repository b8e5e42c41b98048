package policy

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/EVC-BookingService/internal/domain"
	policyRepo "github.com/m04kA/EVC-BookingService/internal/infra/storage/policy"
	portRepo "github.com/m04kA/EVC-BookingService/internal/infra/storage/port"
	stationClient "github.com/m04kA/EVC-BookingService/internal/integrations/stationservice"
	"github.com/m04kA/EVC-BookingService/internal/service/policy/models"
)

// Service сервис для работы с политиками бронирования
type Service struct {
	policyRepo    PolicyRepository
	portRepo      PortRepository
	stationClient StationServiceClient
	logger        Logger
}

// NewService создает новый экземпляр сервиса политик
func NewService(
	policyRepo PolicyRepository,
	portRepo PortRepository,
	stationClient StationServiceClient,
	logger Logger,
) *Service {
	return &Service{
		policyRepo:    policyRepo,
		portRepo:      portRepo,
		stationClient: stationClient,
		logger:        logger,
	}
}

// GetWithHierarchy получает политику с учетом иерархии приоритетов
// Публичный метод - используется для вычисления сетки слотов
// Приоритет: порт > станция > дефолты
func (s *Service) GetWithHierarchy(ctx context.Context, req *models.GetPolicyRequest) (*models.PolicyResponse, error) {
	s.logger.Info("GetWithHierarchy: fetching policy for station=%d, port=%v", req.StationID, req.PortID)

	policy, err := s.policyRepo.GetPolicyWithHierarchy(ctx, req.StationID, req.PortID)
	if err != nil {
		if errors.Is(err, policyRepo.ErrPolicyNotFound) {
			// Политика не настроена - отдаем дефолты, это не ошибка
			s.logger.Info("GetWithHierarchy: no policy for station=%d, using defaults", req.StationID)
			return models.FromDomainPolicy(domain.DefaultBookingPolicy(req.StationID)), nil
		}
		s.logger.Error("GetWithHierarchy: repository error: %v", err)
		return nil, fmt.Errorf("%w: GetWithHierarchy - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetWithHierarchy: successfully fetched policy id=%d (level: %s)",
		policy.ID, s.policyLevel(policy))
	return models.FromDomainPolicy(policy), nil
}

// GetAllByStation получает все политики станции
// Доступно только менеджерам станции
func (s *Service) GetAllByStation(ctx context.Context, stationID int64, userID int64) (*models.PolicyListResponse, error) {
	s.logger.Info("GetAllByStation: fetching policies for station=%d by user=%d", stationID, userID)

	if err := s.checkManagerAccess(ctx, stationID, userID); err != nil {
		return nil, err
	}

	policies, err := s.policyRepo.GetAllByStation(ctx, stationID)
	if err != nil {
		s.logger.Error("GetAllByStation: repository error for station=%d: %v", stationID, err)
		return nil, fmt.Errorf("%w: GetAllByStation - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("GetAllByStation: successfully fetched %d policies for station=%d", len(policies), stationID)
	return models.FromDomainPolicyList(policies), nil
}

// Update создает или обновляет политику бронирования станции или порта
// Доступно только менеджерам станции
func (s *Service) Update(ctx context.Context, req *models.UpdatePolicyRequest) (*models.PolicyResponse, error) {
	s.logger.Info("Update: upserting policy for station=%d, port=%v by user=%d",
		req.StationID, req.PortID, req.UserID)

	// 1. Собираем политику и валидируем параметры
	policy := req.ToDomainPolicy()
	if err := s.validatePolicyData(policy); err != nil {
		s.logger.Warn("Update: validation failed: %v", err)
		return nil, err
	}

	// 2. Проверяем права доступа (только менеджер станции)
	if err := s.checkManagerAccess(ctx, req.StationID, req.UserID); err != nil {
		return nil, err
	}

	// 3. Если политика для конкретного порта, проверяем его существование
	if req.PortID != nil {
		if _, err := s.portRepo.GetByStationAndID(ctx, req.StationID, *req.PortID); err != nil {
			if errors.Is(err, portRepo.ErrPortNotFound) {
				s.logger.Warn("Update: port id=%d not found on station=%d", *req.PortID, req.StationID)
				return nil, ErrPortNotFound
			}
			s.logger.Error("Update: failed to get port id=%d: %v", *req.PortID, err)
			return nil, fmt.Errorf("%w: failed to get port: %v", ErrInternal, err)
		}
	}

	// 4. Создаем или обновляем политику
	updated, err := s.policyRepo.Upsert(ctx, policy)
	if err != nil {
		s.logger.Error("Update: repository error: %v", err)
		return nil, fmt.Errorf("%w: Update - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Update: successfully upserted policy id=%d", updated.ID)
	return models.FromDomainPolicy(updated), nil
}

// Delete удаляет политику по ID
// Доступно только менеджерам станции
func (s *Service) Delete(ctx context.Context, stationID, policyID int64, userID int64) error {
	s.logger.Info("Delete: deleting policy id=%d of station=%d by user=%d", policyID, stationID, userID)

	if err := s.checkManagerAccess(ctx, stationID, userID); err != nil {
		return err
	}

	if err := s.policyRepo.Delete(ctx, policyID); err != nil {
		if errors.Is(err, policyRepo.ErrPolicyNotFound) {
			s.logger.Warn("Delete: policy id=%d not found", policyID)
			return ErrPolicyNotFound
		}
		s.logger.Error("Delete: repository error for policy id=%d: %v", policyID, err)
		return fmt.Errorf("%w: Delete - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Delete: successfully deleted policy id=%d", policyID)
	return nil
}

// Вспомогательные методы

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
			return nil
		}
	}

	s.logger.Warn("checkManagerAccess: user=%d is not a manager of station=%d", userID, stationID)
	return ErrAccessDenied
}

// validatePolicyData валидирует параметры политики
func (s *Service) validatePolicyData(p *domain.BookingPolicy) error {
	if p.SlotDurationMinutes < domain.MinSlotDurationMinutes || p.SlotDurationMinutes > domain.MaxSlotDurationMinutes {
		return fmt.Errorf("%w: slotDurationMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinSlotDurationMinutes, domain.MaxSlotDurationMinutes)
	}

	if p.AdvanceBookingDays < domain.MinAdvanceBookingDays || p.AdvanceBookingDays > domain.MaxAdvanceBookingDays {
		return fmt.Errorf("%w: advanceBookingDays must be between %d and %d",
			ErrInvalidInput, domain.MinAdvanceBookingDays, domain.MaxAdvanceBookingDays)
	}

	if p.MinBookingNoticeMinutes < domain.MinNoticeMinutes || p.MinBookingNoticeMinutes > domain.MaxNoticeMinutes {
		return fmt.Errorf("%w: minBookingNoticeMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinNoticeMinutes, domain.MaxNoticeMinutes)
	}

	if p.PendingGraceMinutes < domain.MinPendingGraceMinutes || p.PendingGraceMinutes > domain.MaxPendingGraceMinutes {
		return fmt.Errorf("%w: pendingGraceMinutes must be between %d and %d",
			ErrInvalidInput, domain.MinPendingGraceMinutes, domain.MaxPendingGraceMinutes)
	}

	return nil
}

// policyLevel возвращает строковое представление уровня политики для логирования
func (s *Service) policyLevel(p *domain.BookingPolicy) string {
	if p.IsPortSpecific() {
		return "port"
	}
	return "station"
}
