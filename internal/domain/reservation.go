package domain

import (
	"time"

	"github.com/m04kA/EVC-BookingService/pkg/types"
)

// ReservationStatus represents the lifecycle state of a reservation
type ReservationStatus string

const (
	StatusPending             ReservationStatus = "pending"
	StatusConfirmed           ReservationStatus = "confirmed"
	StatusCompleted           ReservationStatus = "completed"
	StatusCancelledByUser     ReservationStatus = "cancelled_by_user"
	StatusCancelledByOperator ReservationStatus = "cancelled_by_operator"
	StatusExpired             ReservationStatus = "expired"
)

// ChargingMode represents the charging mode requested by the user
type ChargingMode string

const (
	ModeNormal ChargingMode = "normal"
	ModeFast   ChargingMode = "fast"
)

// Reservation represents a booked time window on a charging port
type Reservation struct {
	ID           int64
	UserID       int64
	StationID    int64
	PortID       int64
	Date         time.Time
	StartTime    types.TimeString
	EndTime      types.TimeString
	ChargingMode ChargingMode
	Status       ReservationStatus

	// Denormalized data for history
	StationName   string
	EstimatedCost float64

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// Window returns the reserved time window
func (r *Reservation) Window() TimeWindow {
	return TimeWindow{Date: r.Date, Start: r.StartTime, End: r.EndTime}
}

// IsOccupying returns true if the reservation occupies its window.
// Only pending and confirmed reservations block a port; terminal states
// free the window immediately.
func (r *Reservation) IsOccupying() bool {
	return r.Status == StatusPending || r.Status == StatusConfirmed
}

// CanBeCancelled returns true if the reservation can still be cancelled
func (r *Reservation) CanBeCancelled() bool {
	return r.Status == StatusPending || r.Status == StatusConfirmed
}

// CanBeConfirmed returns true if the reservation can be promoted to confirmed
func (r *Reservation) CanBeConfirmed() bool {
	return r.Status == StatusPending
}

// IsCancelled returns true if the reservation has been cancelled
func (r *Reservation) IsCancelled() bool {
	return r.Status == StatusCancelledByUser || r.Status == StatusCancelledByOperator
}

// IsTerminal returns true if the reservation reached a final state
func (r *Reservation) IsTerminal() bool {
	return r.Status == StatusCompleted || r.Status == StatusExpired || r.IsCancelled()
}

// ValidTransition проверяет допустимость перехода статуса:
//
//	pending   -> confirmed | expired | cancelled_*
//	confirmed -> completed | cancelled_*
//
// Терминальные статусы переходов не имеют.
func ValidTransition(from, to ReservationStatus) bool {
	switch from {
	case StatusPending:
		return to == StatusConfirmed || to == StatusExpired ||
			to == StatusCancelledByUser || to == StatusCancelledByOperator
	case StatusConfirmed:
		return to == StatusCompleted ||
			to == StatusCancelledByUser || to == StatusCancelledByOperator
	default:
		return false
	}
}

// StationReservationsFilter фильтр для получения бронирований станции
type StationReservationsFilter struct {
	StationID       int64              // Обязательный параметр
	PortID          *int64             // Фильтр по порту (опционально, если nil - все порты)
	StartDate       *time.Time         // Начало периода (опционально)
	EndDate         *time.Time         // Конец периода (опционально)
	Status          *ReservationStatus // Фильтр по статусу (опционально)
	IncludeInactive bool               // Включать ли завершенные/отмененные/истекшие брони
}
