package get_station_bookings

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/EVC-BookingService/internal/api/handlers"
	"github.com/m04kA/EVC-BookingService/internal/api/middleware"
	"github.com/m04kA/EVC-BookingService/internal/service/reservations"
)

const (
	msgInvalidStationID = "некорректный ID станции"
	msgMissingUserID    = "отсутствует ID пользователя"
	msgInvalidParams    = "некорректные параметры запроса"
	msgStationNotFound  = "станция не найдена"
	msgForbidden        = "доступ запрещен"
)

type Handler struct {
	service ReservationService
	logger  Logger
}

func NewHandler(service ReservationService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle GET /api/v1/stations/{stationId}/bookings
// Query params: portId, status, date, startDate, endDate, includeInactive (опционально)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем stationId из URL
	vars := mux.Vars(r)
	stationIDStr := vars["stationId"]

	stationID, err := strconv.ParseInt(stationIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /stations/{id}/bookings - Invalid station ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStationID)
		return
	}

	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("GET /stations/{id}/bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Формируем запрос к сервису из query параметров
	query := r.URL.Query()
	serviceReq, err := ToServiceRequest(
		stationID,
		userID,
		query.Get("portId"),
		query.Get("status"),
		query.Get("date"),
		query.Get("startDate"),
		query.Get("endDate"),
		query.Get("includeInactive"),
	)
	if err != nil {
		h.logger.Warn("GET /stations/{id}/bookings - Invalid parameters: %v", err)
		handlers.RespondBadRequest(w, msgInvalidParams)
		return
	}

	// Получаем брони станции (сервис сам проверит права менеджера)
	result, err := h.service.GetStationReservations(r.Context(), serviceReq)
	if err != nil {
		switch {
		case errors.Is(err, reservations.ErrStationNotFound):
			h.logger.Warn("GET /stations/{id}/bookings - Station not found: station_id=%d", stationID)
			handlers.RespondNotFound(w, msgStationNotFound)

		case errors.Is(err, reservations.ErrAccessDenied):
			h.logger.Warn("GET /stations/{id}/bookings - Access denied: station_id=%d, user_id=%d",
				stationID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, reservations.ErrInvalidInput):
			h.logger.Warn("GET /stations/{id}/bookings - Invalid filter: station_id=%d, error=%v", stationID, err)
			handlers.RespondBadRequest(w, msgInvalidParams)

		default:
			h.logger.Error("GET /stations/{id}/bookings - Failed to get reservations: station_id=%d, error=%v",
				stationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("GET /stations/{id}/bookings - Reservations retrieved successfully: station_id=%d, count=%d",
		stationID, len(result.Reservations))
	handlers.RespondJSON(w, http.StatusOK, result.Reservations)
}
