package update_port_status

import (
	"github.com/m04kA/EVC-BookingService/internal/service/ports/models"
)

// UpdatePortStatusRequest HTTP request model
type UpdatePortStatusRequest struct {
	Status       string `json:"status"`                 // "available" | "busy" | "offline"
	SessionDelta int    `json:"sessionDelta,omitempty"` // +1 старт сессии, -1 завершение
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *UpdatePortStatusRequest) ToServiceRequest(userID int64) *models.UpdatePortStatusRequest {
	return &models.UpdatePortStatusRequest{
		UserID:       userID,
		Status:       r.Status,
		SessionDelta: r.SessionDelta,
	}
}
