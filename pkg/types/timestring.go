package types

import (
	"database/sql/driver"
	"errors"
	"fmt"
	"time"
)

// TimeFormat формат времени HH:MM
const TimeFormat = "15:04"

var (
	// ErrInvalidFormat возвращается при некорректном формате строки времени
	ErrInvalidFormat = errors.New("types: invalid time string format")

	// ErrOutOfRange возвращается, когда результат арифметики выходит за пределы суток
	ErrOutOfRange = errors.New("types: time out of range")
)

// TimeString время в формате "HH:MM" с минутной точностью.
// Используется для хранения и сравнения времени слотов без привязки к дате.
type TimeString string

// NewTimeString создает TimeString из time.Time (отбрасывает секунды)
func NewTimeString(t time.Time) TimeString {
	return TimeString(t.Format(TimeFormat))
}

// NewTimeStringFromString создает TimeString из строки "HH:MM" с валидацией
func NewTimeStringFromString(s string) (TimeString, error) {
	ts := TimeString(s)
	if err := ts.Validate(); err != nil {
		return "", err
	}
	return ts, nil
}

// Validate проверяет, что значение соответствует формату "HH:MM"
func (t TimeString) Validate() error {
	if _, err := time.Parse(TimeFormat, string(t)); err != nil {
		return fmt.Errorf("%w: %q", ErrInvalidFormat, string(t))
	}
	return nil
}

// IsZero возвращает true, если значение не задано
func (t TimeString) IsZero() bool {
	return t == ""
}

// String возвращает строковое представление "HH:MM"
func (t TimeString) String() string {
	return string(t)
}

// Minutes возвращает количество минут с полуночи.
// Для некорректного значения возвращает ошибку.
func (t TimeString) Minutes() (int, error) {
	parsed, err := time.Parse(TimeFormat, string(t))
	if err != nil {
		return 0, fmt.Errorf("%w: %q", ErrInvalidFormat, string(t))
	}
	return parsed.Hour()*60 + parsed.Minute(), nil
}

// IsBefore возвращает true, если t строго раньше other.
// Некорректные значения считаются равными нулю минут.
func (t TimeString) IsBefore(other TimeString) bool {
	return t.mustMinutes() < other.mustMinutes()
}

// IsAfter возвращает true, если t строго позже other
func (t TimeString) IsAfter(other TimeString) bool {
	return t.mustMinutes() > other.mustMinutes()
}

// Equal возвращает true, если значения совпадают с точностью до минуты
func (t TimeString) Equal(other TimeString) bool {
	return t.mustMinutes() == other.mustMinutes()
}

// AddMinutes возвращает новое время, сдвинутое на minutes вперед.
// Выход за пределы суток считается ошибкой: слоты не пересекают полночь.
func (t TimeString) AddMinutes(minutes int) (TimeString, error) {
	total, err := t.Minutes()
	if err != nil {
		return "", err
	}
	total += minutes
	if total < 0 || total > 24*60 {
		return "", fmt.Errorf("%w: %s + %d min", ErrOutOfRange, t, minutes)
	}
	// 24:00 допустимо только как правая граница, храним как 00:00 нельзя -
	// поэтому ограничиваем 23:59 и выше отдаем ошибкой
	if total == 24*60 {
		return "", fmt.Errorf("%w: %s + %d min crosses midnight", ErrOutOfRange, t, minutes)
	}
	return TimeString(fmt.Sprintf("%02d:%02d", total/60, total%60)), nil
}

// DiffMinutes возвращает разницу t - other в минутах
func (t TimeString) DiffMinutes(other TimeString) (int, error) {
	a, err := t.Minutes()
	if err != nil {
		return 0, err
	}
	b, err := other.Minutes()
	if err != nil {
		return 0, err
	}
	return a - b, nil
}

// mustMinutes внутренний помощник для сравнений, некорректное значение = 0
func (t TimeString) mustMinutes() int {
	m, err := t.Minutes()
	if err != nil {
		return 0
	}
	return m
}

// Scan реализует sql.Scanner для чтения из колонок TIME/VARCHAR
func (t *TimeString) Scan(value interface{}) error {
	switch v := value.(type) {
	case nil:
		*t = ""
		return nil
	case string:
		return t.scanString(v)
	case []byte:
		return t.scanString(string(v))
	case time.Time:
		*t = NewTimeString(v)
		return nil
	default:
		return fmt.Errorf("%w: unsupported scan type %T", ErrInvalidFormat, value)
	}
}

// Value реализует driver.Valuer
func (t TimeString) Value() (driver.Value, error) {
	if t.IsZero() {
		return nil, nil
	}
	if err := t.Validate(); err != nil {
		return nil, err
	}
	return string(t), nil
}

// scanString парсит строку из БД, отбрасывая секунды ("10:00:00" -> "10:00")
func (t *TimeString) scanString(s string) error {
	if len(s) >= 5 {
		s = s[:5]
	}
	ts, err := NewTimeStringFromString(s)
	if err != nil {
		return err
	}
	*t = ts
	return nil
}
