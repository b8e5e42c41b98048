package create_booking

import (
	"time"

	"github.com/m04kA/EVC-BookingService/internal/domain"
	createBooking "github.com/m04kA/EVC-BookingService/internal/usecase/create_booking"
	"github.com/m04kA/EVC-BookingService/pkg/types"
)

// CreateBookingRequest HTTP request model
type CreateBookingRequest struct {
	StationID    int64  `json:"stationId"`
	PortID       int64  `json:"portId"`
	Date         string `json:"date"`         // "2025-10-15"
	StartTime    string `json:"startTime"`    // "10:00"
	EndTime      string `json:"endTime"`      // "10:30"
	ChargingMode string `json:"chargingMode"` // "normal" | "fast"
}

// ReservationResponse HTTP response model
type ReservationResponse struct {
	ID            int64   `json:"id"`
	UserID        int64   `json:"userId"`
	StationID     int64   `json:"stationId"`
	PortID        int64   `json:"portId"`
	Date          string  `json:"date"`
	StartTime     string  `json:"startTime"`
	EndTime       string  `json:"endTime"`
	ChargingMode  string  `json:"chargingMode"`
	Status        string  `json:"status"`
	StationName   string  `json:"stationName"`
	EstimatedCost float64 `json:"estimatedCost"`
	CreatedAt     string  `json:"createdAt"`
	UpdatedAt     string  `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateBookingRequest) ToUseCaseRequest(userID int64) (*createBooking.Request, error) {
	// Парсим дату
	date, err := time.Parse(domain.DateFormat, r.Date)
	if err != nil {
		return nil, err
	}

	// Парсим время начала и конца окна
	startTime, err := types.NewTimeStringFromString(r.StartTime)
	if err != nil {
		return nil, err
	}

	endTime, err := types.NewTimeStringFromString(r.EndTime)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		UserID:       userID,
		StationID:    r.StationID,
		PortID:       r.PortID,
		Date:         date,
		StartTime:    startTime,
		EndTime:      endTime,
		ChargingMode: domain.ChargingMode(r.ChargingMode),
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *ReservationResponse {
	res := resp.Reservation

	return &ReservationResponse{
		ID:            res.ID,
		UserID:        res.UserID,
		StationID:     res.StationID,
		PortID:        res.PortID,
		Date:          res.Date.Format(domain.DateFormat),
		StartTime:     res.StartTime.String(),
		EndTime:       res.EndTime.String(),
		ChargingMode:  string(res.ChargingMode),
		Status:        string(res.Status),
		StationName:   res.StationName,
		EstimatedCost: res.EstimatedCost,
		CreatedAt:     res.CreatedAt.Format(time.RFC3339),
		UpdatedAt:     res.UpdatedAt.Format(time.RFC3339),
	}
}
