package get_available_slots

import (
	"errors"
	"net/http"
	"strconv"

	"github.com/gorilla/mux"

	"github.com/m04kA/EVC-BookingService/internal/api/handlers"
	getAvailableSlots "github.com/m04kA/EVC-BookingService/internal/usecase/get_available_slots"
)

const (
	msgInvalidStationID = "некорректный ID станции"
	msgInvalidPortID    = "некорректный ID порта"
	msgMissingDate      = "дата обязательна"
	msgInvalidDate      = "некорректный формат даты, ожидается YYYY-MM-DD"
	msgStationNotFound  = "станция не найдена"
	msgPortNotFound     = "зарядный порт не найден"
	msgDateInPast       = "дата не может быть в прошлом"
	msgDateTooFar       = "дата слишком далеко в будущем"
)

type Handler struct {
	useCase GetAvailableSlotsUseCase
	logger  Logger
}

func NewHandler(useCase GetAvailableSlotsUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle GET /api/v1/stations/{stationId}/ports/{portId}/available-slots
// Query params: date (required, YYYY-MM-DD)
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	vars := mux.Vars(r)

	// Извлекаем stationId из URL
	stationIDStr := vars["stationId"]
	stationID, err := strconv.ParseInt(stationIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /stations/{id}/ports/{id}/available-slots - Invalid station ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidStationID)
		return
	}

	// Извлекаем portId из URL
	portIDStr := vars["portId"]
	portID, err := strconv.ParseInt(portIDStr, 10, 64)
	if err != nil {
		h.logger.Warn("GET /stations/{id}/ports/{id}/available-slots - Invalid port ID: %v", err)
		handlers.RespondBadRequest(w, msgInvalidPortID)
		return
	}

	// Извлекаем date из query параметров
	dateStr := r.URL.Query().Get("date")
	if dateStr == "" {
		h.logger.Warn("GET /stations/{id}/ports/{id}/available-slots - Missing date")
		handlers.RespondBadRequest(w, msgMissingDate)
		return
	}

	// Публичный эндпоинт: userID используется только для логирования
	userID, _ := strconv.ParseInt(r.Header.Get("X-User-ID"), 10, 64)

	// Формируем запрос к use case (с парсингом даты)
	useCaseReq, err := ToUseCaseRequest(userID, stationID, portID, dateStr)
	if err != nil {
		h.logger.Warn("GET /stations/{id}/ports/{id}/available-slots - Invalid date format: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDate)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, getAvailableSlots.ErrStationNotFound):
			h.logger.Warn("GET /stations/{id}/ports/{id}/available-slots - Station not found: station_id=%d", stationID)
			handlers.RespondNotFound(w, msgStationNotFound)

		case errors.Is(err, getAvailableSlots.ErrPortNotFound):
			h.logger.Warn("GET /stations/{id}/ports/{id}/available-slots - Port not found: station_id=%d, port_id=%d",
				stationID, portID)
			handlers.RespondNotFound(w, msgPortNotFound)

		case errors.Is(err, getAvailableSlots.ErrInvalidDate):
			h.logger.Warn("GET /stations/{id}/ports/{id}/available-slots - Date in the past: station_id=%d, date=%s",
				stationID, dateStr)
			handlers.RespondBadRequest(w, msgDateInPast)

		case errors.Is(err, getAvailableSlots.ErrDateTooFarInFuture):
			h.logger.Warn("GET /stations/{id}/ports/{id}/available-slots - Date too far in future: station_id=%d, date=%s",
				stationID, dateStr)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, getAvailableSlots.ErrInvalidInput):
			h.logger.Warn("GET /stations/{id}/ports/{id}/available-slots - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidStationID)

		default:
			h.logger.Error("GET /stations/{id}/ports/{id}/available-slots - Failed to get slots: station_id=%d, port_id=%d, error=%v",
				stationID, portID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	// Формируем HTTP ответ
	response := FromUseCaseResponse(result)

	h.logger.Info("GET /stations/{id}/ports/{id}/available-slots - Slots retrieved successfully: station_id=%d, port_id=%d, slots_count=%d",
		stationID, portID, len(result.Slots))
	handlers.RespondJSON(w, http.StatusOK, response)
}
