package reservations

import (
	"context"
	"time"

	"github.com/m04kA/EVC-BookingService/internal/domain"
	"github.com/m04kA/EVC-BookingService/internal/integrations/stationservice"
	"github.com/m04kA/EVC-BookingService/pkg/types"
)

// ReservationRepository интерфейс репозитория броней.
// UpdateStatus и Cancel принимают ожидаемый текущий статус: переход
// записывается атомарно, конкурентное изменение дает ErrStatusConflict.
type ReservationRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Reservation, error)
	GetByUserID(ctx context.Context, userID int64, status *domain.ReservationStatus) ([]*domain.Reservation, error)
	GetByStationWithFilter(ctx context.Context, filter domain.StationReservationsFilter) ([]*domain.Reservation, error)
	UpdateStatus(ctx context.Context, id int64, from, to domain.ReservationStatus) error
	Cancel(ctx context.Context, id int64, from, to domain.ReservationStatus, reason string) error
	ExpireOverdue(ctx context.Context, today time.Time, cutoff types.TimeString) (int64, error)
}

// StationServiceClient интерфейс клиента для StationService
type StationServiceClient interface {
	GetStation(ctx context.Context, stationID int64) (*stationservice.Station, error)
}

// SlotsCache кеш доступности: отмена брони освобождает окно,
// закешированные слоты инвалидируются (опционален, nil = без кеша)
type SlotsCache interface {
	Invalidate(ctx context.Context, key string)
}

// BusinessMetrics бизнес-метрики бронирований (опциональны, nil = без метрик)
type BusinessMetrics interface {
	IncReservationCancelled(by string)
	AddReservationsExpired(count int64)
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
