package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/EVC-BookingService/pkg/types"
)

func TestValidTransition(t *testing.T) {
	// pending
	assert.True(t, ValidTransition(StatusPending, StatusConfirmed))
	assert.True(t, ValidTransition(StatusPending, StatusExpired))
	assert.True(t, ValidTransition(StatusPending, StatusCancelledByUser))
	assert.True(t, ValidTransition(StatusPending, StatusCancelledByOperator))
	assert.False(t, ValidTransition(StatusPending, StatusCompleted))

	// confirmed
	assert.True(t, ValidTransition(StatusConfirmed, StatusCompleted))
	assert.True(t, ValidTransition(StatusConfirmed, StatusCancelledByUser))
	assert.True(t, ValidTransition(StatusConfirmed, StatusCancelledByOperator))
	assert.False(t, ValidTransition(StatusConfirmed, StatusExpired))
	assert.False(t, ValidTransition(StatusConfirmed, StatusPending))

	// терминальные статусы переходов не имеют
	for _, from := range []ReservationStatus{StatusCompleted, StatusExpired, StatusCancelledByUser, StatusCancelledByOperator} {
		for _, to := range []ReservationStatus{StatusPending, StatusConfirmed, StatusCompleted, StatusExpired} {
			assert.False(t, ValidTransition(from, to), "%s -> %s", from, to)
		}
	}
}

func TestReservation_Lifecycle(t *testing.T) {
	r := &Reservation{Status: StatusPending}
	assert.True(t, r.IsOccupying())
	assert.True(t, r.CanBeCancelled())
	assert.True(t, r.CanBeConfirmed())
	assert.False(t, r.IsTerminal())

	r.Status = StatusConfirmed
	assert.True(t, r.IsOccupying())
	assert.True(t, r.CanBeCancelled())
	assert.False(t, r.CanBeConfirmed())

	r.Status = StatusCancelledByUser
	assert.False(t, r.IsOccupying())
	assert.False(t, r.CanBeCancelled())
	assert.True(t, r.IsCancelled())
	assert.True(t, r.IsTerminal())

	r.Status = StatusExpired
	assert.False(t, r.IsOccupying())
	assert.False(t, r.IsCancelled())
	assert.True(t, r.IsTerminal())
}

func TestValidPortTransition(t *testing.T) {
	assert.True(t, ValidPortTransition(PortAvailable, PortOffline, 0))
	assert.True(t, ValidPortTransition(PortOffline, PortAvailable, 0))
	assert.True(t, ValidPortTransition(PortAvailable, PortBusy, 1))

	// busy без живых сессий запрещен
	assert.False(t, ValidPortTransition(PortAvailable, PortBusy, 0))
	assert.False(t, ValidPortTransition(PortOffline, PortBusy, 0))

	assert.False(t, ValidPortTransition(PortAvailable, PortStatus("broken"), 0))
}

func TestPort_SupportsMode(t *testing.T) {
	ac := &Port{Connector: ConnectorNormalAC}
	dc := &Port{Connector: ConnectorFastDC}

	assert.True(t, ac.SupportsMode(ModeNormal))
	assert.False(t, ac.SupportsMode(ModeFast))
	assert.True(t, dc.SupportsMode(ModeNormal))
	assert.True(t, dc.SupportsMode(ModeFast))
}

func TestPort_EffectiveHours(t *testing.T) {
	mkTime := func(s string) types.TimeString { return types.TimeString(s) }

	p := &Port{}
	o, c := p.EffectiveHours("09:00", "21:00")
	assert.Equal(t, "09:00", o.String())
	assert.Equal(t, "21:00", c.String())

	late := mkTime("10:00")
	early := mkTime("18:00")
	p = &Port{OpenTimeOverride: &late, CloseTimeOverride: &early}
	o, c = p.EffectiveHours("09:00", "21:00")
	assert.Equal(t, "10:00", o.String())
	assert.Equal(t, "18:00", c.String())

	// переопределения могут только сужать часы станции
	wide := mkTime("08:00")
	p = &Port{OpenTimeOverride: &wide}
	o, _ = p.EffectiveHours("09:00", "21:00")
	assert.Equal(t, "09:00", o.String())
}
