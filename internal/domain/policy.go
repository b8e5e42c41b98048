package domain

import "time"

// BookingPolicy represents the booking configuration for a station.
// Supports hierarchical configuration:
// 1. Port-specific (station_id, port_id)
// 2. Station-wide (station_id, NULL)
type BookingPolicy struct {
	ID                      int64
	StationID               int64
	PortID                  *int64 // NULL = policy for all ports of the station
	SlotDurationMinutes     int
	AdvanceBookingDays      int // 0 = unlimited
	MinBookingNoticeMinutes int
	PendingGraceMinutes     int // срок жизни pending-брони после начала слота
	CreatedAt               time.Time
	UpdatedAt               time.Time
}

// IsStationWide returns true if this policy applies to all ports of the station
func (p *BookingPolicy) IsStationWide() bool {
	return p.PortID == nil
}

// IsPortSpecific returns true if this policy is for a specific port
func (p *BookingPolicy) IsPortSpecific() bool {
	return p.PortID != nil
}

// HasAdvanceBookingLimit returns true if there's a limit on how far in advance bookings can be made
func (p *BookingPolicy) HasAdvanceBookingLimit() bool {
	return p.AdvanceBookingDays > 0
}

// DefaultBookingPolicy возвращает политику с дефолтными значениями.
// Используется, когда для станции не настроена собственная политика.
func DefaultBookingPolicy(stationID int64) *BookingPolicy {
	return &BookingPolicy{
		StationID:               stationID,
		SlotDurationMinutes:     DefaultSlotDurationMinutes,
		AdvanceBookingDays:      DefaultAdvanceBookingDays,
		MinBookingNoticeMinutes: DefaultMinBookingNoticeMinutes,
		PendingGraceMinutes:     DefaultPendingGraceMinutes,
	}
}
