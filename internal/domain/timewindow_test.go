package domain

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/EVC-BookingService/pkg/types"
)

var testDate = time.Date(2025, 6, 10, 0, 0, 0, 0, time.UTC)

func window(start, end string) TimeWindow {
	return TimeWindow{Date: testDate, Start: types.TimeString(start), End: types.TimeString(end)}
}

func TestTimeWindow_Validate(t *testing.T) {
	assert.NoError(t, window("09:00", "09:30").Validate())
	assert.Error(t, window("09:30", "09:00").Validate())
	assert.Error(t, window("09:00", "09:00").Validate())
	assert.Error(t, TimeWindow{Start: "09:00", End: "09:30"}.Validate())
}

func TestTimeWindow_Overlaps(t *testing.T) {
	base := window("10:00", "11:00")

	assert.True(t, base.Overlaps(window("10:30", "11:30")))
	assert.True(t, base.Overlaps(window("09:30", "10:30")))
	assert.True(t, base.Overlaps(window("10:15", "10:45")))
	assert.True(t, base.Overlaps(window("09:00", "12:00")))

	// касание границ не считается пересечением
	assert.False(t, base.Overlaps(window("09:00", "10:00")))
	assert.False(t, base.Overlaps(window("11:00", "12:00")))

	// окна на разные даты не пересекаются
	other := window("10:00", "11:00")
	other.Date = testDate.AddDate(0, 0, 1)
	assert.False(t, base.Overlaps(other))
}

func TestDiscretizeWindows(t *testing.T) {
	windows, err := DiscretizeWindows(testDate, "09:00", "11:00", 30)
	require.NoError(t, err)
	require.Len(t, windows, 4)
	assert.Equal(t, window("09:00", "09:30"), windows[0])
	assert.Equal(t, window("10:30", "11:00"), windows[3])

	// соседние окна смежны, но не пересекаются
	for i := 1; i < len(windows); i++ {
		assert.Equal(t, windows[i-1].End, windows[i].Start)
		assert.False(t, windows[i-1].Overlaps(windows[i]))
	}
}

func TestDiscretizeWindows_DropsPartialSlot(t *testing.T) {
	windows, err := DiscretizeWindows(testDate, "09:00", "10:45", 30)
	require.NoError(t, err)
	require.Len(t, windows, 3)
	assert.Equal(t, types.TimeString("10:30"), windows[2].End)
}

func TestDiscretizeWindows_InvalidWidth(t *testing.T) {
	_, err := DiscretizeWindows(testDate, "09:00", "11:00", 0)
	assert.Error(t, err)
}

func TestTimeWindow_IsAligned(t *testing.T) {
	open, close := types.TimeString("09:00"), types.TimeString("21:00")

	assert.True(t, window("09:00", "09:30").IsAligned(open, close, 30))
	assert.True(t, window("20:30", "21:00").IsAligned(open, close, 30))

	// не на сетке
	assert.False(t, window("09:10", "09:40").IsAligned(open, close, 30))
	// неверная длительность
	assert.False(t, window("09:00", "10:00").IsAligned(open, close, 30))
	// раньше открытия
	assert.False(t, window("08:30", "09:00").IsAligned(open, close, 30))
	// выходит за закрытие
	assert.False(t, window("20:45", "21:15").IsAligned(open, close, 30))
}
