package get_booking_policy

import (
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/EVC-BookingService/internal/api/handlers"
	"github.com/m04kA/EVC-BookingService/internal/service/policy/models"
)

const (
	msgInvalidStationID = "некорректный ID станции"
	msgInvalidPortID    = "некорректный ID порта"
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

// Handle GET /api/v1/stations/{stationId}/booking-policy
// Query params: portId (опционально, для политики конкретного порта)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Извлекаем stationId из URL
	vars := mux.Vars(r)
	stationIDStr := vars["stationId"]

	stationID, err := strconv.ParseInt(stationIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /stations/{id}/booking-policy - Invalid station ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStationID)
		return
	}

	// Извлекаем portId из query параметров (опционально)
	var portIDPtr *int64
	if portIDStr := r.URL.Query().Get("portId"); portIDStr != "" {
		portID, err := strconv.ParseInt(portIDStr, 10, 64)
		if err != nil {
			h.logger.Warn("GET /stations/{id}/booking-policy - Invalid port ID: %v", err)
			handlers.RespondBadRequest(w, msgInvalidPortID)
			return
		}
		portIDPtr = &portID
	}

	// Получаем политику (сервис вернет дефолты, если она не настроена)
	result, err := h.service.GetWithHierarchy(r.Context(), &models.GetPolicyRequest{
		StationID: stationID,
		PortID:    portIDPtr,
	})
	if err != nil {
		h.logger.Error("GET /stations/{id}/booking-policy - Failed to get policy: station_id=%d, error=%v",
			stationID, err)
		handlers.RespondInternalError(w)
		return
	}

	h.logger.Info("GET /stations/{id}/booking-policy - Policy retrieved successfully: station_id=%d", stationID)
	handlers.RespondJSON(w, http.StatusOK, result)
}
