package get_available_slots

import (
	"time"

	"github.com/m04kA/EVC-BookingService/pkg/types"
)

// Request модель запроса на получение доступных слотов
type Request struct {
	UserID    int64     // ID пользователя (для логирования, не влияет на результат)
	StationID int64     // ID станции
	PortID    int64     // ID зарядного порта
	Date      time.Time // Дата для получения слотов (без времени)
}

// Response модель ответа со списком доступных слотов
type Response struct {
	Date      time.Time // Дата, на которую запрашивались слоты
	StationID int64     // ID станции
	PortID    int64     // ID порта
	Slots     []Slot    // Список свободных окон, упорядоченных по времени начала
}

// Slot свободное временное окно порта
type Slot struct {
	StartTime       types.TimeString `json:"startTime"`
	EndTime         types.TimeString `json:"endTime"`
	DurationMinutes int              `json:"durationMinutes"`
}
