package get_station_ports

import (
	"context"

	"github.com/m04kA/EVC-BookingService/internal/service/ports/models"
)

type PortService interface {
	ListByStation(ctx context.Context, stationID int64) (*models.PortListResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
