package domain

import (
	"fmt"
	"time"

	"github.com/m04kA/EVC-BookingService/pkg/types"
)

// TimeWindow полуинтервал [Start, End) в пределах одной даты.
// Полуинтервальная семантика делает смежность однозначной:
// окно 10:00-10:30 не пересекается с окном 10:30-11:00.
type TimeWindow struct {
	Date  time.Time
	Start types.TimeString
	End   types.TimeString
}

// Validate проверяет корректность окна
func (w TimeWindow) Validate() error {
	if w.Date.IsZero() {
		return fmt.Errorf("time window: date is required")
	}
	if err := w.Start.Validate(); err != nil {
		return err
	}
	if err := w.End.Validate(); err != nil {
		return err
	}
	if !w.Start.IsBefore(w.End) {
		return fmt.Errorf("time window: start %s must be before end %s", w.Start, w.End)
	}
	return nil
}

// DurationMinutes возвращает длительность окна в минутах
func (w TimeWindow) DurationMinutes() int {
	d, err := w.End.DiffMinutes(w.Start)
	if err != nil {
		return 0
	}
	return d
}

// Overlaps возвращает true, если окна пересекаются.
// Полуинтервалы: a.Start < b.End && b.Start < a.End, касание границ -
// не пересечение. Окна на разные даты не пересекаются.
func (w TimeWindow) Overlaps(other TimeWindow) bool {
	if !sameDay(w.Date, other.Date) {
		return false
	}
	return w.Start.IsBefore(other.End) && other.Start.IsBefore(w.End)
}

// Equal возвращает true, если окна совпадают с точностью до минуты
func (w TimeWindow) Equal(other TimeWindow) bool {
	return sameDay(w.Date, other.Date) && w.Start.Equal(other.Start) && w.End.Equal(other.End)
}

// DiscretizeWindows разбивает рабочие часы [open, close) на окна
// фиксированной ширины. Последнее неполное окно отбрасывается: станция
// не может гарантировать слот, который не умещается в рабочие часы.
// Функция чистая и детерминированная - от этого зависит корректность
// проверки конфликтов.
func DiscretizeWindows(date time.Time, open, close types.TimeString, widthMinutes int) ([]TimeWindow, error) {
	if widthMinutes <= 0 {
		return nil, fmt.Errorf("time window: slot width must be positive, got %d", widthMinutes)
	}
	if err := open.Validate(); err != nil {
		return nil, err
	}
	if err := close.Validate(); err != nil {
		return nil, err
	}

	windows := make([]TimeWindow, 0)
	current := open

	for current.IsBefore(close) {
		end, err := current.AddMinutes(widthMinutes)
		if err != nil {
			// окно пересекло бы полночь - дальше слотов нет
			break
		}
		if end.IsAfter(close) {
			break
		}
		windows = append(windows, TimeWindow{Date: date, Start: current, End: end})
		current = end
	}

	return windows, nil
}

// IsAligned проверяет, что окно лежит на сетке слотов: начало кратно
// ширине слота от открытия, длительность равна ширине слота и окно
// не выходит за закрытие
func (w TimeWindow) IsAligned(open, close types.TimeString, widthMinutes int) bool {
	if widthMinutes <= 0 {
		return false
	}
	offset, err := w.Start.DiffMinutes(open)
	if err != nil || offset < 0 || offset%widthMinutes != 0 {
		return false
	}
	if w.DurationMinutes() != widthMinutes {
		return false
	}
	return !w.End.IsAfter(close)
}

// sameDay проверяет, что две даты относятся к одному и тому же дню
func sameDay(a, b time.Time) bool {
	y1, m1, d1 := a.Date()
	y2, m2, d2 := b.Date()
	return y1 == y2 && m1 == m2 && d1 == d2
}
