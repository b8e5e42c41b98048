package types

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewTimeStringFromString(t *testing.T) {
	ts, err := NewTimeStringFromString("09:30")
	require.NoError(t, err)
	assert.Equal(t, "09:30", ts.String())

	_, err = NewTimeStringFromString("9:30am")
	assert.ErrorIs(t, err, ErrInvalidFormat)

	_, err = NewTimeStringFromString("25:00")
	assert.ErrorIs(t, err, ErrInvalidFormat)
}

func TestNewTimeString_DropsSeconds(t *testing.T) {
	ts := NewTimeString(time.Date(2025, 6, 1, 14, 45, 59, 0, time.UTC))
	assert.Equal(t, TimeString("14:45"), ts)
}

func TestTimeString_Comparisons(t *testing.T) {
	a := TimeString("09:00")
	b := TimeString("10:30")

	assert.True(t, a.IsBefore(b))
	assert.False(t, b.IsBefore(a))
	assert.True(t, b.IsAfter(a))
	assert.True(t, a.Equal(TimeString("09:00")))
	assert.False(t, a.Equal(b))
}

func TestTimeString_AddMinutes(t *testing.T) {
	ts, err := TimeString("09:00").AddMinutes(90)
	require.NoError(t, err)
	assert.Equal(t, TimeString("10:30"), ts)

	ts, err = TimeString("10:30").AddMinutes(-45)
	require.NoError(t, err)
	assert.Equal(t, TimeString("09:45"), ts)

	// слоты не пересекают полночь
	_, err = TimeString("23:30").AddMinutes(60)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = TimeString("23:30").AddMinutes(30)
	assert.ErrorIs(t, err, ErrOutOfRange)

	_, err = TimeString("00:10").AddMinutes(-20)
	assert.ErrorIs(t, err, ErrOutOfRange)
}

func TestTimeString_DiffMinutes(t *testing.T) {
	d, err := TimeString("10:30").DiffMinutes("09:00")
	require.NoError(t, err)
	assert.Equal(t, 90, d)

	d, err = TimeString("09:00").DiffMinutes("10:30")
	require.NoError(t, err)
	assert.Equal(t, -90, d)
}

func TestTimeString_Scan(t *testing.T) {
	var ts TimeString

	require.NoError(t, ts.Scan("10:00:00"))
	assert.Equal(t, TimeString("10:00"), ts)

	require.NoError(t, ts.Scan([]byte("23:59")))
	assert.Equal(t, TimeString("23:59"), ts)

	require.NoError(t, ts.Scan(time.Date(2025, 6, 1, 8, 15, 0, 0, time.UTC)))
	assert.Equal(t, TimeString("08:15"), ts)

	require.NoError(t, ts.Scan(nil))
	assert.True(t, ts.IsZero())

	assert.Error(t, ts.Scan(42))
}

func TestTimeString_Value(t *testing.T) {
	v, err := TimeString("12:00").Value()
	require.NoError(t, err)
	assert.Equal(t, "12:00", v)

	v, err = TimeString("").Value()
	require.NoError(t, err)
	assert.Nil(t, v)

	_, err = TimeString("bogus").Value()
	assert.Error(t, err)
}
