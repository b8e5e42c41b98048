package models

import (
	"errors"
	"time"

	"github.com/m04kA/EVC-BookingService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе порта
	ErrInvalidStatus = errors.New("invalid port status")
)

// Request модели

// UpdatePortStatusRequest запрос на смену статуса порта.
// SessionDelta передает изменение счетчика живых сессий: +1 при старте
// зарядной сессии, -1 при завершении, 0 если счетчик не меняется.
type UpdatePortStatusRequest struct {
	UserID       int64  `json:"userId"`
	Status       string `json:"status"`
	SessionDelta int    `json:"sessionDelta,omitempty"`
}

// Response модели

// PortResponse ответ с данными порта
type PortResponse struct {
	ID           int64   `json:"id"`
	StationID    int64   `json:"stationId"`
	Connector    string  `json:"connector"`
	PowerKW      float64 `json:"powerKw"`
	Status       string  `json:"status"`
	LiveSessions int     `json:"liveSessions"`

	OpenTimeOverride  *string `json:"openTimeOverride,omitempty"`  // "10:00"
	CloseTimeOverride *string `json:"closeTimeOverride,omitempty"` // "20:00"

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// PortListResponse ответ со списком портов станции
type PortListResponse struct {
	Ports []PortResponse `json:"ports"`
}

// Методы конвертации

// FromDomainPort конвертирует domain модель в DTO
func FromDomainPort(p *domain.Port) *PortResponse {
	if p == nil {
		return nil
	}

	resp := &PortResponse{
		ID:           p.ID,
		StationID:    p.StationID,
		Connector:    string(p.Connector),
		PowerKW:      p.PowerKW,
		Status:       string(p.Status),
		LiveSessions: p.LiveSessions,
		CreatedAt:    p.CreatedAt,
		UpdatedAt:    p.UpdatedAt,
	}

	if p.OpenTimeOverride != nil {
		s := p.OpenTimeOverride.String()
		resp.OpenTimeOverride = &s
	}
	if p.CloseTimeOverride != nil {
		s := p.CloseTimeOverride.String()
		resp.CloseTimeOverride = &s
	}

	return resp
}

// FromDomainPortList конвертирует список domain моделей в DTO
func FromDomainPortList(ports []*domain.Port) *PortListResponse {
	if ports == nil {
		return &PortListResponse{
			Ports: []PortResponse{},
		}
	}

	resp := &PortListResponse{
		Ports: make([]PortResponse, len(ports)),
	}

	for i, p := range ports {
		if dto := FromDomainPort(p); dto != nil {
			resp.Ports[i] = *dto
		}
	}

	return resp
}

// ToDomainPortStatus конвертирует строку в domain.PortStatus с валидацией
func ToDomainPortStatus(status string) (domain.PortStatus, error) {
	s := domain.PortStatus(status)

	switch s {
	case domain.PortAvailable, domain.PortBusy, domain.PortOffline:
		return s, nil
	default:
		return "", ErrInvalidStatus
	}
}
