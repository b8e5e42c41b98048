package create_booking

import (
	"errors"
	"net/http"

	"github.com/m04kA/EVC-BookingService/internal/api/handlers"
	"github.com/m04kA/EVC-BookingService/internal/api/middleware"
	createBooking "github.com/m04kA/EVC-BookingService/internal/usecase/create_booking"
)

const (
	msgInvalidRequestBody = "некорректное тело запроса"
	msgInvalidDateOrTime  = "некорректный формат даты или времени, ожидается YYYY-MM-DD и HH:MM"
	msgMissingUserID      = "отсутствует ID пользователя"
	msgStationNotFound    = "станция не найдена"
	msgPortNotFound       = "зарядный порт не найден"
	msgStationClosed      = "станция закрыта в выбранную дату"
	msgPortOffline        = "зарядный порт недоступен"
	msgSlotConflict       = "выбранное временное окно уже занято"
	msgInvalidWindow      = "временное окно не совпадает с сеткой слотов"
	msgModeNotSupported   = "порт не поддерживает выбранный режим зарядки"
	msgInvalidBookingDate = "некорректная дата бронирования"
	msgDateTooFar         = "дата бронирования слишком далеко в будущем"
	msgTooLateToBook      = "слишком поздно для бронирования этого слота"
	msgBookingTimeout     = "не удалось обработать бронирование, попробуйте еще раз"
)

type Handler struct {
	useCase CreateBookingUseCase
	logger  Logger
}

func NewHandler(useCase CreateBookingUseCase, logger Logger) *Handler {
	return &Handler{
		useCase: useCase,
		logger:  logger,
	}
}

// Handle POST /api/v1/bookings
func (h *Handler) Handle(w http.ResponseWriter, r *http.Request) {
	// Получаем userID из контекста (через middleware Auth)
	userID, ok := middleware.GetUserID(r.Context())
	if !ok {
		h.logger.Warn("POST /bookings - Missing user ID")
		handlers.RespondUnauthorized(w, msgMissingUserID)
		return
	}

	var req CreateBookingRequest
	if err := handlers.DecodeJSON(r, &req); err != nil {
		h.logger.Warn("POST /bookings - Invalid request body: %v", err)
		handlers.RespondBadRequest(w, msgInvalidRequestBody)
		return
	}

	// Конвертируем HTTP запрос в модель use case (с парсингом даты и времени)
	useCaseReq, err := req.ToUseCaseRequest(userID)
	if err != nil {
		h.logger.Warn("POST /bookings - Failed to parse request: %v", err)
		handlers.RespondBadRequest(w, msgInvalidDateOrTime)
		return
	}

	// Вызываем use case
	result, err := h.useCase.Execute(r.Context(), useCaseReq)
	if err != nil {
		switch {
		case errors.Is(err, createBooking.ErrSlotConflict):
			h.logger.Warn("POST /bookings - Slot conflict: user_id=%d, port_id=%d, window=%s-%s",
				userID, req.PortID, req.StartTime, req.EndTime)
			handlers.RespondError(w, http.StatusConflict, msgSlotConflict)

		case errors.Is(err, createBooking.ErrStationNotFound):
			h.logger.Warn("POST /bookings - Station not found: station_id=%d", req.StationID)
			handlers.RespondNotFound(w, msgStationNotFound)

		case errors.Is(err, createBooking.ErrPortNotFound):
			h.logger.Warn("POST /bookings - Port not found: station_id=%d, port_id=%d", req.StationID, req.PortID)
			handlers.RespondNotFound(w, msgPortNotFound)

		case errors.Is(err, createBooking.ErrStationClosed):
			h.logger.Warn("POST /bookings - Station closed: station_id=%d, date=%s", req.StationID, req.Date)
			handlers.RespondBadRequest(w, msgStationClosed)

		case errors.Is(err, createBooking.ErrPortOffline):
			h.logger.Warn("POST /bookings - Port offline: port_id=%d", req.PortID)
			handlers.RespondError(w, http.StatusConflict, msgPortOffline)

		case errors.Is(err, createBooking.ErrInvalidWindow):
			h.logger.Warn("POST /bookings - Window off the slot grid: user_id=%d, window=%s-%s",
				userID, req.StartTime, req.EndTime)
			handlers.RespondBadRequest(w, msgInvalidWindow)

		case errors.Is(err, createBooking.ErrModeNotSupported):
			h.logger.Warn("POST /bookings - Mode not supported: port_id=%d, mode=%s", req.PortID, req.ChargingMode)
			handlers.RespondBadRequest(w, msgModeNotSupported)

		case errors.Is(err, createBooking.ErrInvalidDate):
			h.logger.Warn("POST /bookings - Invalid booking date: user_id=%d, date=%s", userID, req.Date)
			handlers.RespondBadRequest(w, msgInvalidBookingDate)

		case errors.Is(err, createBooking.ErrDateTooFarInFuture):
			h.logger.Warn("POST /bookings - Date too far in future: user_id=%d, date=%s", userID, req.Date)
			handlers.RespondBadRequest(w, msgDateTooFar)

		case errors.Is(err, createBooking.ErrTooLateToBook):
			h.logger.Warn("POST /bookings - Too late to book: user_id=%d, start_time=%s", userID, req.StartTime)
			handlers.RespondBadRequest(w, msgTooLateToBook)

		case errors.Is(err, createBooking.ErrInvalidInput):
			h.logger.Warn("POST /bookings - Invalid input: %v", err)
			handlers.RespondBadRequest(w, msgInvalidRequestBody)

		case errors.Is(err, createBooking.ErrTimeout):
			h.logger.Error("POST /bookings - Booking transaction timed out: user_id=%d, port_id=%d", userID, req.PortID)
			handlers.RespondError(w, http.StatusServiceUnavailable, msgBookingTimeout)

		default:
			h.logger.Error("POST /bookings - Failed to create booking: user_id=%d, station_id=%d, error=%v",
				userID, req.StationID, err)
			handlers.RespondInternalError(w)
		}
		return
	}

	// Формируем HTTP ответ
	response := FromUseCaseResponse(result)

	h.logger.Info("POST /bookings - Reservation created successfully: reservation_id=%d, user_id=%d, port_id=%d",
		result.Reservation.ID, userID, req.PortID)
	handlers.RespondJSON(w, http.StatusCreated, response)
}
