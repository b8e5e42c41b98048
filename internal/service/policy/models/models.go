package models

import (
	"time"

	"github.com/m04kA/EVC-BookingService/internal/domain"
)

// Request модели

// GetPolicyRequest запрос на получение политики (для иерархического поиска)
type GetPolicyRequest struct {
	StationID int64  `json:"stationId"`
	PortID    *int64 `json:"portId,omitempty"` // nil означает политику станции целиком
}

// UpdatePolicyRequest запрос на создание или обновление политики бронирования
// Все параметры опциональны - непереданные значения берутся из дефолтов
type UpdatePolicyRequest struct {
	UserID                  int64  `json:"userId"`
	StationID               int64  `json:"stationId"`
	PortID                  *int64 `json:"portId,omitempty"` // NULL = политика для всех портов станции
	SlotDurationMinutes     *int   `json:"slotDurationMinutes,omitempty"`
	AdvanceBookingDays      *int   `json:"advanceBookingDays,omitempty"`
	MinBookingNoticeMinutes *int   `json:"minBookingNoticeMinutes,omitempty"`
	PendingGraceMinutes     *int   `json:"pendingGraceMinutes,omitempty"`
}

// ToDomainPolicy конвертирует request в domain модель,
// заполняя непереданные поля дефолтами
func (r *UpdatePolicyRequest) ToDomainPolicy() *domain.BookingPolicy {
	p := domain.DefaultBookingPolicy(r.StationID)
	p.PortID = r.PortID

	if r.SlotDurationMinutes != nil {
		p.SlotDurationMinutes = *r.SlotDurationMinutes
	}
	if r.AdvanceBookingDays != nil {
		p.AdvanceBookingDays = *r.AdvanceBookingDays
	}
	if r.MinBookingNoticeMinutes != nil {
		p.MinBookingNoticeMinutes = *r.MinBookingNoticeMinutes
	}
	if r.PendingGraceMinutes != nil {
		p.PendingGraceMinutes = *r.PendingGraceMinutes
	}

	return p
}

// Response модели

// PolicyResponse ответ с данными политики бронирования
type PolicyResponse struct {
	ID                      int64     `json:"id"`
	StationID               int64     `json:"stationId"`
	PortID                  *int64    `json:"portId,omitempty"`
	SlotDurationMinutes     int       `json:"slotDurationMinutes"`
	AdvanceBookingDays      int       `json:"advanceBookingDays"`
	MinBookingNoticeMinutes int       `json:"minBookingNoticeMinutes"`
	PendingGraceMinutes     int       `json:"pendingGraceMinutes"`
	CreatedAt               time.Time `json:"createdAt"`
	UpdatedAt               time.Time `json:"updatedAt"`
}

// PolicyListResponse ответ со списком политик станции
type PolicyListResponse struct {
	Policies []PolicyResponse `json:"policies"`
}

// Методы конвертации

// FromDomainPolicy конвертирует domain модель в DTO
func FromDomainPolicy(p *domain.BookingPolicy) *PolicyResponse {
	if p == nil {
		return nil
	}

	return &PolicyResponse{
		ID:                      p.ID,
		StationID:               p.StationID,
		PortID:                  p.PortID,
		SlotDurationMinutes:     p.SlotDurationMinutes,
		AdvanceBookingDays:      p.AdvanceBookingDays,
		MinBookingNoticeMinutes: p.MinBookingNoticeMinutes,
		PendingGraceMinutes:     p.PendingGraceMinutes,
		CreatedAt:               p.CreatedAt,
		UpdatedAt:               p.UpdatedAt,
	}
}

// FromDomainPolicyList конвертирует список domain моделей в DTO
func FromDomainPolicyList(policies []*domain.BookingPolicy) *PolicyListResponse {
	if policies == nil {
		return &PolicyListResponse{
			Policies: []PolicyResponse{},
		}
	}

	resp := &PolicyListResponse{
		Policies: make([]PolicyResponse, len(policies)),
	}

	for i, p := range policies {
		if dto := FromDomainPolicy(p); dto != nil {
			resp.Policies[i] = *dto
		}
	}

	return resp
}
