package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/EVC-BookingService/internal/domain"
	"github.com/m04kA/EVC-BookingService/internal/integrations/stationservice"
)

// ReservationRepository интерфейс репозитория броней
type ReservationRepository interface {
	Create(ctx context.Context, res *domain.Reservation) (*domain.Reservation, error)
	FindOverlapping(ctx context.Context, portID int64, date time.Time, window domain.TimeWindow) ([]*domain.Reservation, error)
}

// PortRepository интерфейс реестра портов
type PortRepository interface {
	// GetByStationAndID получает порт станции; внутри транзакции строка блокируется
	GetByStationAndID(ctx context.Context, stationID, portID int64) (*domain.Port, error)
}

// PolicyRepository интерфейс репозитория политик бронирования
type PolicyRepository interface {
	GetPolicyWithHierarchy(ctx context.Context, stationID int64, portID *int64) (*domain.BookingPolicy, error)
}

// StationServiceClient интерфейс клиента для StationService
type StationServiceClient interface {
	GetStation(ctx context.Context, stationID int64) (*stationservice.Station, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// SlotsCache кеш доступности: после успешной брони ключ (порт, дата)
// инвалидируется (опционален, nil = без кеша)
type SlotsCache interface {
	Invalidate(ctx context.Context, key string)
}

// BusinessMetrics бизнес-метрики бронирований (опциональны, nil = без метрик)
type BusinessMetrics interface {
	IncReservationCreated(chargingMode string)
	IncReservationConflict()
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
