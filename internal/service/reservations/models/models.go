package models

import (
	"errors"
	"time"

	"github.com/m04kA/EVC-BookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid reservation status")
)

// Request модели

// CancelReservationRequest запрос на отмену брони
type CancelReservationRequest struct {
	UserID             int64  `json:"userId"`
	CancellationReason string `json:"cancellationReason"`
}

// UpdateStatusRequest запрос на обновление статуса брони
type UpdateStatusRequest struct {
	UserID int64  `json:"userId"`
	Status string `json:"status"`
}

// GetUserReservationsRequest запрос на получение броней пользователя
type GetUserReservationsRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"`
}

// GetStationReservationsRequest запрос на получение броней станции
type GetStationReservationsRequest struct {
	UserID          int64      `json:"userId"`
	StationID       int64      `json:"stationId"`
	PortID          *int64     `json:"portId,omitempty"`          // Фильтр по порту (опционально)
	StartDate       *time.Time `json:"startDate,omitempty"`       // Начало периода (опционально)
	EndDate         *time.Time `json:"endDate,omitempty"`         // Конец периода (опционально)
	Status          *string    `json:"status,omitempty"`          // Фильтр по статусу (опционально)
	IncludeInactive bool       `json:"includeInactive,omitempty"` // Включить завершенные/отмененные брони
}

// ToDomainFilter конвертирует request в domain фильтр
func (r *GetStationReservationsRequest) ToDomainFilter() (domain.StationReservationsFilter, error) {
	filter := domain.StationReservationsFilter{
		StationID:       r.StationID,
		PortID:          r.PortID,
		StartDate:       r.StartDate,
		EndDate:         r.EndDate,
		IncludeInactive: r.IncludeInactive,
	}

	if r.Status != nil {
		status, err := ToDomainReservationStatus(*r.Status)
		if err != nil {
			return filter, err
		}
		filter.Status = &status
	}

	return filter, nil
}

// Response модели

// ReservationResponse ответ с данными брони
type ReservationResponse struct {
	ID           int64  `json:"id"`
	UserID       int64  `json:"userId"`
	StationID    int64  `json:"stationId"`
	PortID       int64  `json:"portId"`
	Date         string `json:"date"`      // "2025-10-15"
	StartTime    string `json:"startTime"` // "10:00"
	EndTime      string `json:"endTime"`   // "10:30"
	ChargingMode string `json:"chargingMode"`
	Status       string `json:"status"`

	// Денормализованные данные
	StationName   string  `json:"stationName"`
	EstimatedCost float64 `json:"estimatedCost"`

	CancellationReason *string `json:"cancellationReason,omitempty"`
	CancelledAt        *string `json:"cancelledAt,omitempty"` // ISO 8601 format

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// ReservationListResponse ответ со списком броней
type ReservationListResponse struct {
	Reservations []ReservationResponse `json:"reservations"`
}

// Методы конвертации

// FromDomainReservation конвертирует domain модель в DTO
func FromDomainReservation(r *domain.Reservation) *ReservationResponse {
	if r == nil {
		return nil
	}

	resp := &ReservationResponse{
		ID:                 r.ID,
		UserID:             r.UserID,
		StationID:          r.StationID,
		PortID:             r.PortID,
		Date:               r.Date.Format(domain.DateFormat),
		StartTime:          r.StartTime.String(),
		EndTime:            r.EndTime.String(),
		ChargingMode:       string(r.ChargingMode),
		Status:             string(r.Status),
		StationName:        r.StationName,
		EstimatedCost:      r.EstimatedCost,
		CancellationReason: r.CancellationReason,
		CreatedAt:          r.CreatedAt,
		UpdatedAt:          r.UpdatedAt,
	}

	if r.CancelledAt != nil {
		cancelledStr := r.CancelledAt.Format(time.RFC3339)
		resp.CancelledAt = &cancelledStr
	}

	return resp
}

// FromDomainReservationList конвертирует список domain моделей в DTO
func FromDomainReservationList(reservations []*domain.Reservation) *ReservationListResponse {
	if reservations == nil {
		return &ReservationListResponse{
			Reservations: []ReservationResponse{},
		}
	}

	resp := &ReservationListResponse{
		Reservations: make([]ReservationResponse, len(reservations)),
	}

	for i, res := range reservations {
		if dto := FromDomainReservation(res); dto != nil {
			resp.Reservations[i] = *dto
		}
	}

	return resp
}

// ToDomainReservationStatus конвертирует строку в domain.ReservationStatus с валидацией
func ToDomainReservationStatus(status string) (domain.ReservationStatus, error) {
	s := domain.ReservationStatus(status)

	validStatuses := []domain.ReservationStatus{
		domain.StatusPending,
		domain.StatusConfirmed,
		domain.StatusCompleted,
		domain.StatusCancelledByUser,
		domain.StatusCancelledByOperator,
		domain.StatusExpired,
	}

	for _, valid := range validStatuses {
		if s == valid {
			return s, nil
		}
	}

	return "", ErrInvalidStatus
}
