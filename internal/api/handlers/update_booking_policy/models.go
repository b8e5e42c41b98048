package update_booking_policy

import (
	"github.com/m04kA/EVC-BookingService/internal/service/policy/models"
)

// UpdateBookingPolicyRequest HTTP request model
// Все параметры опциональны - непереданные значения берутся из дефолтов
type UpdateBookingPolicyRequest struct {
	PortID                  *int64 `json:"portId,omitempty"` // NULL = политика для всех портов станции
	SlotDurationMinutes     *int   `json:"slotDurationMinutes,omitempty"`
	AdvanceBookingDays      *int   `json:"advanceBookingDays,omitempty"`
	MinBookingNoticeMinutes *int   `json:"minBookingNoticeMinutes,omitempty"`
	PendingGraceMinutes     *int   `json:"pendingGraceMinutes,omitempty"`
}

// ToServiceRequest конвертирует HTTP request в модель сервиса
func (r *UpdateBookingPolicyRequest) ToServiceRequest(stationID, userID int64) *models.UpdatePolicyRequest {
	return &models.UpdatePolicyRequest{
		UserID:                  userID,
		StationID:               stationID,
		PortID:                  r.PortID,
		SlotDurationMinutes:     r.SlotDurationMinutes,
		AdvanceBookingDays:      r.AdvanceBookingDays,
		MinBookingNoticeMinutes: r.MinBookingNoticeMinutes,
		PendingGraceMinutes:     r.PendingGraceMinutes,
	}
}
