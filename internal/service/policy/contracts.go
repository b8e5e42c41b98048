package policy

import (
	"context"

	"github.com/m04kA/EVC-BookingService/internal/domain"
	"github.com/m04kA/EVC-BookingService/internal/integrations/stationservice"
)

// PolicyRepository интерфейс репозитория политик бронирования
type PolicyRepository interface {
	GetPolicyWithHierarchy(ctx context.Context, stationID int64, portID *int64) (*domain.BookingPolicy, error)
	GetAllByStation(ctx context.Context, stationID int64) ([]*domain.BookingPolicy, error)
	Upsert(ctx context.Context, p *domain.BookingPolicy) (*domain.BookingPolicy, error)
	Delete(ctx context.Context, id int64) error
}

// PortRepository интерфейс реестра портов
type PortRepository interface {
	GetByStationAndID(ctx context.Context, stationID, portID int64) (*domain.Port, error)
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
