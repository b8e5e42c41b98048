package get_available_slots

import (
	"time"

	"github.com/m04kA/EVC-BookingService/internal/domain"
	"github.com/m04kA/EVC-BookingService/internal/integrations/stationservice"
	"github.com/m04kA/EVC-BookingService/pkg/types"
)

// generateCandidateWindows строит сетку окон-кандидатов для порта на дату:
// рабочие часы станции, суженные переопределениями порта, нарезаются на окна
// фиксированной ширины. Последнее неполное окно отбрасывается.
func generateCandidateWindows(
	day stationservice.DaySchedule,
	port *domain.Port,
	date time.Time,
	slotDuration int,
) ([]domain.TimeWindow, error) {
	if !day.IsOpen || day.OpenTime == nil || day.CloseTime == nil {
		return []domain.TimeWindow{}, nil
	}

	open, err := types.NewTimeStringFromString(*day.OpenTime)
	if err != nil {
		return nil, err
	}
	close, err := types.NewTimeStringFromString(*day.CloseTime)
	if err != nil {
		return nil, err
	}

	open, close = port.EffectiveHours(open, close)
	if !open.IsBefore(close) {
		return []domain.TimeWindow{}, nil
	}

	return domain.DiscretizeWindows(date, open, close, slotDuration)
}

// filterByNotice отбрасывает окна, нарушающие минимальное время до брони.
// Для дат в будущем фильтр не применяется.
func filterByNotice(
	windows []domain.TimeWindow,
	requestDate time.Time,
	now time.Time,
	minNoticeMinutes int,
) ([]domain.TimeWindow, error) {
	if !isSameDay(requestDate, now) {
		return windows, nil
	}

	currentTime := types.NewTimeString(now)
	minAllowed, err := currentTime.AddMinutes(minNoticeMinutes)
	if err != nil {
		// настолько поздно, что минимальное время ушло за полночь - слотов нет
		return []domain.TimeWindow{}, nil
	}

	filtered := make([]domain.TimeWindow, 0, len(windows))
	for _, w := range windows {
		if !w.Start.IsBefore(minAllowed) {
			filtered = append(filtered, w)
		}
	}

	return filtered, nil
}

// filterOccupied отбрасывает окна, пересекающиеся хотя бы с одной занимающей
// бронью. Полуинтервалы: бронь 10:00-10:30 не блокирует окно 10:30-11:00.
func filterOccupied(windows []domain.TimeWindow, reservations []*domain.Reservation) []domain.TimeWindow {
	free := make([]domain.TimeWindow, 0, len(windows))

	for _, w := range windows {
		occupied := false
		for _, res := range reservations {
			if !res.IsOccupying() {
				continue
			}
			if w.Overlaps(res.Window()) {
				occupied = true
				break
			}
		}
		if !occupied {
			free = append(free, w)
		}
	}

	return free
}

// workingHoursForDay возвращает расписание работы станции на указанный день недели
func workingHoursForDay(station *stationservice.Station, date time.Time) stationservice.DaySchedule {
	switch date.Weekday() {
	case time.Monday:
		return station.Hours.Monday
	case time.Tuesday:
		return station.Hours.Tuesday
	case time.Wednesday:
		return station.Hours.Wednesday
	case time.Thursday:
		return station.Hours.Thursday
	case time.Friday:
		return station.Hours.Friday
	case time.Saturday:
		return station.Hours.Saturday
	case time.Sunday:
		return station.Hours.Sunday
	default:
		return stationservice.DaySchedule{IsOpen: false}
	}
}

// isSameDay проверяет, что две даты относятся к одному и тому же дню
func isSameDay(date1, date2 time.Time) bool {
	y1, m1, d1 := date1.Date()
	y2, m2, d2 := date2.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}

// isDateInPast проверяет, что дата в прошлом (раньше сегодняшнего дня)
func isDateInPast(date, now time.Time) bool {
	// Обнуляем время, чтобы сравнивать только даты
	dateOnly := time.Date(date.Year(), date.Month(), date.Day(), 0, 0, 0, 0, date.Location())
	nowOnly := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	return dateOnly.Before(nowOnly)
}
