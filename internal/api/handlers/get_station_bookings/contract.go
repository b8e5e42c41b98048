package get_station_bookings

import (
	"context"

	"github.com/m04kA/EVC-BookingService/internal/service/reservations/models"
)

type ReservationService interface {
	GetStationReservations(ctx context.Context, req *models.GetStationReservationsRequest) (*models.ReservationListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
