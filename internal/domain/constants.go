package domain

// Default policy values
const (
	DefaultSlotDurationMinutes     = 30
	DefaultAdvanceBookingDays      = 0  // 0 = unlimited
	DefaultMinBookingNoticeMinutes = 30 // полчаса до начала слота
	DefaultPendingGraceMinutes     = 15 // pending истекает через 15 минут после начала слота
)

// Business validation constants
const (
	MinSlotDurationMinutes      = 5
	MaxSlotDurationMinutes      = 480 // 8 hours
	MinAdvanceBookingDays       = 0
	MaxAdvanceBookingDays       = 365 // 1 year
	MinNoticeMinutes            = 0
	MaxNoticeMinutes            = 10080 // 1 week
	MinPendingGraceMinutes      = 0
	MaxPendingGraceMinutes      = 1440 // 1 day
	MaxCancellationReasonLength = 500
)

// Time format constants
const (
	TimeFormat = "15:04"      // HH:MM
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// OccupyingStatuses статусы броней, занимающих свое окно.
// Только они учитываются при поиске пересечений.
var OccupyingStatuses = []ReservationStatus{
	StatusPending,
	StatusConfirmed,
}

// InactiveStatuses статусы броней, освободивших свое окно
var InactiveStatuses = []ReservationStatus{
	StatusCompleted,
	StatusCancelledByUser,
	StatusCancelledByOperator,
	StatusExpired,
}
