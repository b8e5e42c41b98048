package confirm_booking

import (
	"context"

	"github.com/m04kA/EVC-BookingService/internal/service/reservations/models"
)

type ReservationService interface {
	Confirm(ctx context.Context, reservationID int64, userID int64) (*models.ReservationResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
