package ports

import (
	"context"

	"github.com/m04kA/EVC-BookingService/internal/domain"
	"github.com/m04kA/EVC-BookingService/internal/integrations/stationservice"
)

// PortRepository интерфейс реестра портов
type PortRepository interface {
	GetByStationAndID(ctx context.Context, stationID, portID int64) (*domain.Port, error)
	ListByStation(ctx context.Context, stationID int64) ([]*domain.Port, error)
	SetStatus(ctx context.Context, id int64, status domain.PortStatus, sessionDelta int) error
}

// StationServiceClient интерфейс клиента для StationService
type StationServiceClient interface {
	GetStation(ctx context.Context, stationID int64) (*stationservice.Station, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
