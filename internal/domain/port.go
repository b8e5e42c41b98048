package domain

import (
	"time"

	"github.com/m04kA/EVC-BookingService/pkg/types"
)

// PortStatus represents the live status of a physical charging port.
// The status reflects current occupancy only; future occupancy lives in
// the reservation store and both must be consulted together.
type PortStatus string

const (
	PortAvailable PortStatus = "available"
	PortBusy      PortStatus = "busy"
	PortOffline   PortStatus = "offline"
)

// ConnectorType represents the physical connector of a port
type ConnectorType string

const (
	ConnectorNormalAC ConnectorType = "normal_ac"
	ConnectorFastDC   ConnectorType = "fast_dc"
)

// Port represents a physical charging port of a station
type Port struct {
	ID        int64
	StationID int64
	Connector ConnectorType
	PowerKW   float64
	Status    PortStatus

	// Счетчик живых зарядных сессий, управляется Session-подсистемой.
	// Порт нельзя перевести в busy при нулевом счетчике.
	LiveSessions int

	// Переопределение рабочих часов станции для конкретного порта
	OpenTimeOverride  *types.TimeString
	CloseTimeOverride *types.TimeString

	CreatedAt time.Time
	UpdatedAt time.Time
}

// IsOffline returns true if the port cannot be scheduled
func (p *Port) IsOffline() bool {
	return p.Status == PortOffline
}

// SupportsMode returns true if the port can serve the requested charging mode.
// Fast charging requires a DC connector; normal charging works on both.
func (p *Port) SupportsMode(mode ChargingMode) bool {
	if mode == ModeFast {
		return p.Connector == ConnectorFastDC
	}
	return mode == ModeNormal
}

// EffectiveHours возвращает рабочие часы порта: часы станции,
// суженные переопределениями порта (если заданы)
func (p *Port) EffectiveHours(stationOpen, stationClose types.TimeString) (types.TimeString, types.TimeString) {
	open, close := stationOpen, stationClose
	if p.OpenTimeOverride != nil && p.OpenTimeOverride.IsAfter(open) {
		open = *p.OpenTimeOverride
	}
	if p.CloseTimeOverride != nil && p.CloseTimeOverride.IsBefore(close) {
		close = *p.CloseTimeOverride
	}
	return open, close
}

// ValidPortTransition проверяет допустимость смены статуса порта.
// Любой переход разрешен, кроме busy без живых сессий: статус busy
// выставляет Session-подсистема при старте сессии.
func ValidPortTransition(current PortStatus, next PortStatus, liveSessions int) bool {
	if next == PortBusy && liveSessions == 0 {
		return false
	}
	switch next {
	case PortAvailable, PortBusy, PortOffline:
		return true
	default:
		return false
	}
}
