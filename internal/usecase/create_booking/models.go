package create_booking

import (
	"time"

	"github.com/m04kA/EVC-BookingService/internal/domain"
	"github.com/m04kA/EVC-BookingService/pkg/types"
)

// Request модель запроса на создание брони
type Request struct {
	UserID       int64               // ID пользователя, создающего бронь
	StationID    int64               // ID станции
	PortID       int64               // ID зарядного порта
	Date         time.Time           // Дата брони (без времени)
	StartTime    types.TimeString    // Начало окна "HH:MM"
	EndTime      types.TimeString    // Конец окна "HH:MM" (не включается)
	ChargingMode domain.ChargingMode // Режим зарядки: normal или fast
}

// Window возвращает запрошенное временное окно
func (r *Request) Window() domain.TimeWindow {
	return domain.TimeWindow{Date: r.Date, Start: r.StartTime, End: r.EndTime}
}

// Response модель ответа с созданной бронью
type Response struct {
	Reservation *domain.Reservation
}
