package update_port_status

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/EVC-BookingService/internal/api/handlers"
	"github.com/m04kA/EVC-BookingService/internal/api/middleware"
	"github.com/m04kA/EVC-BookingService/internal/service/ports"
)

const (
	msgInvalidStationID   = "некорректный ID станции"
	msgInvalidPortID      = "некорректный ID порта"
	msgInvalidRequestBody = "некорректное тело запроса"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgStationNotFound    = "станция не найдена"
	msgPortNotFound       = "зарядный порт не найден"
	msgForbidden          = "доступ запрещен"
	msgInvalidTransition  = "недопустимая смена статуса порта"
)

type Handler struct {
	service PortService
	logger  Logger
}

func NewHandler(service PortService, logger Logger) *Handler {
	return &Handler{
		service: service,
		logger:  logger,
	}
}

// Handle PATCH /api/v1/stations/{stationId}/ports/{portId}/status
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	// Извлекаем stationId из URL
	stationIDStr := vars["stationId"]
	stationID, err := strconv.ParseInt(stationIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /stations/{id}/ports/{id}/status - Invalid station ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStationID)
		return
	}

	// Извлекаем portId из URL
	portIDStr := vars["portId"]
	portID, err := strconv.ParseInt(portIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("PATCH /stations/{id}/ports/{id}/status - Invalid port ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPortID)
		return
	}

	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("PATCH /stations/{id}/ports/{id}/status - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	// Декодируем body
	var req UpdatePortStatusRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("PATCH /stations/{id}/ports/{id}/status - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Меняем статус порта (сервис сам проверит права и жизненный цикл)
	result, err := h.service.UpdateStatus(r.Context(), stationID, portID, req.ToServiceRequest(userID))
	if err != nil {
		switch {
		case errors.Is(err, ports.ErrStationNotFound):
			h.logger.Warn("PATCH /stations/{id}/ports/{id}/status - Station not found: station_id=%d", stationID)
			handlers.RespondNotFound(w, msgStationNotFound)

		case errors.Is(err, ports.ErrPortNotFound):
			h.logger.Warn("PATCH /stations/{id}/ports/{id}/status - Port not found: station_id=%d, port_id=%d",
				stationID, portID)
			handlers.RespondNotFound(w, msgPortNotFound)

		case errors.Is(err, ports.ErrAccessDenied):
			h.logger.Warn("PATCH /stations/{id}/ports/{id}/status - Access denied: port_id=%d, user_id=%d",
				portID, userID)
			handlers.RespondForbidden(w, msgForbidden)

		case errors.Is(err, ports.ErrInvalidTransition):
			h.logger.Warn("PATCH /stations/{id}/ports/{id}/status - Invalid transition: port_id=%d, status=%s",
				portID, req.Status)
			handlers.RespondError(w, http.StatusConflict, msgInvalidTransition)

		case errors.Is(err, ports.ErrInvalidInput):
			h.logger.Warn("PATCH /stations/{id}/ports/{id}/status - Invalid status: port_id=%d, status=%s",
				portID, req.Status)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		default:
			h.logger.Error("PATCH /stations/{id}/ports/{id}/status - Failed to update status: port_id=%d, error=%v",
				portID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	h.logger.Info("PATCH /stations/{id}/ports/{id}/status - Port status updated successfully: port_id=%d, status=%s, user_id=%d",
		portID, result.Status, userID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
