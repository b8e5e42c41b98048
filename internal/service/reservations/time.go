package reservations

import (
	"time"

	"github.com/m04kA/EVC-BookingService/pkg/types"
)

// cutoffTime возвращает время начала слота, строго раньше которого
// pending-бронь на сегодня считается просроченной: now - graceMinutes.
// Если отсечка уходит за полночь, возвращается "00:00" - сегодняшние
// брони еще не могли просрочиться, истекают только прошлые даты.
func cutoffTime(now time.Time, graceMinutes int) (types.TimeString, error) {
	midnight := time.Date(now.Year(), now.Month(), now.Day(), 0, 0, 0, 0, now.Location())
	cutoff := now.Add(-time.Duration(graceMinutes) * time.Minute)

	if cutoff.Before(midnight) {
		return types.NewTimeStringFromString("00:00")
	}

	return types.NewTimeString(cutoff), nil
}
