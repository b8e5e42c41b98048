package update_booking_policy

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/EVC-BookingService/internal/api/handlers"
	"github.com/m04kA/EVC-BookingService/internal/api/middleware"
	"github.com/m04kA/EVC-BookingService/internal/service/policy"
)

const (
	msgInvalidStationID   = "некорректный ID станции"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgStationNotFound    = "станция не найдена"
	msgPortNotFound       = "зарядный порт не найден"
	msgForbidden          = "доступ запрещен"
	msgInvalidParams      = "некорректные параметры политики"
)

type Handler struct {
	service PolicyService
	logger  Logger
}

func NewHandler(service PolicyService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PUT /api/v1/stations/{stationId}/booking-policy
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем stationId из URL
	vars := mux.Vars(r)
	stationIDStr := vars["stationId"]

	stationID, err := strconv.ParseInt(stationIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("PUT /stations/{id}/booking-policy - Invalid station ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStationID)
		return
	}

	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PUT /stations/{id}/booking-policy - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Декодируем body
	var req UpdateBookingPolicyRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PUT /stations/{id}/booking-policy - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Создаем или обновляем политику (сервис сам проверит права менеджера)
	result, err := h.service.Update(r.Context(), req.ToServiceRequest(stationID, userID))
	if err != nil {
		switch {
		case errors.Is(err, policy.ErrStationNotFound):
			h.logger.Warn("PUT /stations/{id}/booking-policy - Station not found: station_id=%d", stationID)
			handlers.RespondNotFound(w, msgStationNotFound)

		case errors.Is(err, policy.ErrPortNotFound):
			h.logger.Warn("PUT /stations/{id}/booking-policy - Port not found: station_id=%d, port_id=%v",
				stationID, req.PortID)
			handlers.RespondNotFound(w, msgPortNotFound)

		case errors.Is(err, policy.ErrAccessDenied):
			h.logger.Warn("PUT /stations/{id}/booking-policy - Access denied: station_id=%d, user_id=%d",
				stationID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, policy.ErrInvalidInput):
			h.logger.Warn("PUT /stations/{id}/booking-policy - Invalid parameters: station_id=%d, error=%v",
				stationID, err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("PUT /stations/{id}/booking-policy - Failed to update policy: station_id=%d, error=%v",
				stationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PUT /stations/{id}/booking-policy - Policy updated successfully: station_id=%d, policy_id=%d",
		stationID, result.ID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
