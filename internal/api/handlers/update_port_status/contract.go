package update_port_status

import (
	"context"

	"github.com/m04kA/EVC-BookingService/internal/service/ports/models"
)

type PortService interface {
	UpdateStatus(ctx context.Context, stationID, portID int64, req *models.UpdatePortStatusRequest) (*models.PortResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
