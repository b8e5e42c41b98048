package get_station_ports

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/EVC-BookingService/internal/api/handlers"
)

const (
	msgInvalidStationID = "некорректный ID станции"
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

// Handle GET /api/v1/stations/{stationId}/ports
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем stationId из URL
	vars := mux.Vars(r)
	stationIDStr := vars["stationId"]

	stationID, err := strconv.ParseInt(stationIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /stations/{id}/ports - Invalid station ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStationID)
		return
	}

	// Получаем порты станции
	result, err := h.service.ListByStation(r.Context(), stationID)
	if err != nil {
		h.logger.Error("GET /stations/{id}/ports - Failed to get ports: station_id=%d, error=%v",
			stationID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /stations/{id}/ports - Ports retrieved successfully: station_id=%d, count=%d",
		stationID, len(result.Ports))
	handlers.RespondJSON(w, http.StatusOK, result.Ports)
}
