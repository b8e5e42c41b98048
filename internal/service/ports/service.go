package ports

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/EVC-BookingService/internal/domain"
	portRepo "github.com/m04kA/EVC-BookingService/internal/infra/storage/port"
	stationClient "github.com/m04kA/EVC-BookingService/internal/integrations/stationservice"
	"github.com/m04kA/EVC-BookingService/internal/service/ports/models"
)

// Service сервис для работы с зарядными портами
type Service struct {
	portRepo      PortRepository
	stationClient StationServiceClient
	logger        Logger
}

// NewService создает новый экземпляр сервиса портов
func NewService(
	portRepo PortRepository,
	stationClient StationServiceClient,
	logger Logger,
) *Service {
	return &Service{
		portRepo:      portRepo,
		stationClient: stationClient,
		logger:        logger,
	}
}

// GetPort получает порт станции по ID
// Публичный метод - доступен всем
func (s *Service) GetPort(ctx context.Context, stationID, portID int64) (*models.PortResponse, error) {
	s.logger.Info("GetPort: fetching port id=%d of station=%d", portID, stationID)

	port, err := s.portRepo.GetByStationAndID(ctx, stationID, portID)
	if err != nil {
		if errors.Is(err, portRepo.ErrPortNotFound) {
			s.logger.Warn("GetPort: port id=%d not found on station=%d", portID, stationID)
			return nil, ErrPortNotFound
		}
		s.logger.Error("GetPort: repository error for port id=%d: %v", portID, err)
		return nil, fmt.Errorf("%w: GetPort - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainPort(port), nil
}

// ListByStation получает все порты станции
// Публичный метод - доступен всем
func (s *Service) ListByStation(ctx context.Context, stationID int64) (*models.PortListResponse, error) {
	s.logger.Info("ListByStation: fetching ports for station=%d", stationID)

	ports, err := s.portRepo.ListByStation(ctx, stationID)
	if err != nil {
		s.logger.Error("ListByStation: repository error for station=%d: %v", stationID, err)
		return nil, fmt.Errorf("%w: ListByStation - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("ListByStation: successfully fetched %d ports for station=%d", len(ports), stationID)
	return models.FromDomainPortList(ports), nil
}

// UpdateStatus меняет статус порта
// Доступно только менеджерам станции. Переход в busy требует живых
// зарядных сессий: статус busy выставляется вместе с sessionDelta > 0.
func (s *Service) UpdateStatus(ctx context.Context, stationID, portID int64, req *models.UpdatePortStatusRequest) (*models.PortResponse, error) {
	s.logger.Info("UpdateStatus: updating port id=%d of station=%d to status=%s (delta=%d) by user=%d",
		portID, stationID, req.Status, req.SessionDelta, req.UserID)

	newStatus, err := models.ToDomainPortStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for port id=%d", req.Status, portID)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	if err := s.checkManagerAccess(ctx, stationID, req.UserID); err != nil {
		return nil, err
	}

	port, err := s.portRepo.GetByStationAndID(ctx, stationID, portID)
	if err != nil {
		if errors.Is(err, portRepo.ErrPortNotFound) {
			s.logger.Warn("UpdateStatus: port id=%d not found on station=%d", portID, stationID)
			return nil, ErrPortNotFound
		}
		s.logger.Error("UpdateStatus: repository error for port id=%d: %v", portID, err)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	// Предварительная проверка жизненного цикла; окончательная защита от
	// busy без сессий - в атомарном UPDATE репозитория
	if !domain.ValidPortTransition(port.Status, newStatus, port.LiveSessions+req.SessionDelta) {
		s.logger.Warn("UpdateStatus: invalid transition %s -> %s for port id=%d (sessions=%d, delta=%d)",
			port.Status, newStatus, portID, port.LiveSessions, req.SessionDelta)
		return nil, ErrInvalidTransition
	}

	if err := s.portRepo.SetStatus(ctx, portID, newStatus, req.SessionDelta); err != nil {
		switch {
		case errors.Is(err, portRepo.ErrPortNotFound):
			return nil, ErrPortNotFound
		case errors.Is(err, portRepo.ErrInvalidTransition):
			s.logger.Warn("UpdateStatus: transition rejected by storage for port id=%d", portID)
			return nil, ErrInvalidTransition
		default:
			s.logger.Error("UpdateStatus: repository error for port id=%d: %v", portID, err)
			return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
		}
	}

	updated, err := s.portRepo.GetByStationAndID(ctx, stationID, portID)
	if err != nil {
		s.logger.Error("UpdateStatus: failed to reload port id=%d: %v", portID, err)
		return nil, fmt.Errorf("%w: UpdateStatus - failed to reload port: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateStatus: successfully updated port id=%d to status=%s", portID, updated.Status)
	return models.FromDomainPort(updated), nil
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
			return nil
		}
	}

	s.logger.Warn("checkManagerAccess: user=%d is not a manager of station=%d", userID, stationID)
	return ErrAccessDenied
}
