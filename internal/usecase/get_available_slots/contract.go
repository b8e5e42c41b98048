package get_available_slots

import (
	"context"
	"time"

	"github.com/m04kA/EVC-BookingService/internal/domain"
	"github.com/m04kA/EVC-BookingService/internal/integrations/stationservice"
)

// ReservationRepository интерфейс репозитория броней
type ReservationRepository interface {
	// GetOccupyingByPortAndDate получает все занимающие брони порта на дату
	GetOccupyingByPortAndDate(ctx context.Context, portID int64, date time.Time) ([]*domain.Reservation, error)
}

// PortRepository интерфейс реестра портов
type PortRepository interface {
	GetByStationAndID(ctx context.Context, stationID, portID int64) (*domain.Port, error)
}

// PolicyRepository интерфейс репозитория политик бронирования
type PolicyRepository interface {
	// GetPolicyWithHierarchy получает политику с учетом иерархии приоритетов
	GetPolicyWithHierarchy(ctx context.Context, stationID int64, portID *int64) (*domain.BookingPolicy, error)
}

// StationServiceClient интерфейс клиента для StationService
type StationServiceClient interface {
	GetStation(ctx context.Context, stationID int64) (*stationservice.Station, error)
}

// TransactionManager интерфейс для управления транзакциями.
// Порт и брони читаются в одной read-only транзакции, чтобы не предложить
// слот на порту, ушедшем в offline между двумя чтениями.
type TransactionManager interface {
	DoReadOnly(ctx context.Context, fn func(ctx context.Context) error) error
}

// SlotsCache кеш ответов калькулятора (опционален, nil = без кеша)
type SlotsCache interface {
	Get(ctx context.Context, key string, dest interface{}) bool
	Set(ctx context.Context, key string, value interface{})
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
