package create_booking

import "errors"

var (
	// ErrStationNotFound возвращается, когда станция не найдена
	ErrStationNotFound = errors.New("create_booking: station not found")

	// ErrPortNotFound возвращается, когда порт не найден на станции
	ErrPortNotFound = errors.New("create_booking: port not found")

	// ErrStationClosed возвращается, когда станция закрыта в указанную дату
	ErrStationClosed = errors.New("create_booking: station is closed on this date")

	// ErrPortOffline возвращается при попытке забронировать offline-порт
	ErrPortOffline = errors.New("create_booking: port is offline")

	// ErrInvalidWindow возвращается, когда окно не лежит на сетке слотов
	// (произвольные, смещенные или нестандартной длины окна отклоняются)
	ErrInvalidWindow = errors.New("create_booking: window does not match the slot grid")

	// ErrSlotConflict возвращается, когда окно пересекается с существующей бронью.
	// Ожидаемая ситуация при конкуренции за слот, а не сбой системы.
	ErrSlotConflict = errors.New("create_booking: window conflicts with an existing reservation")

	// ErrModeNotSupported возвращается, когда порт не поддерживает режим зарядки
	ErrModeNotSupported = errors.New("create_booking: charging mode is not supported by this port")

	// ErrInvalidDate возвращается при некорректной дате бронирования
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrDateTooFarInFuture возвращается, когда дата превышает ограничение advanceBookingDays
	ErrDateTooFarInFuture = errors.New("create_booking: date is too far in the future")

	// ErrTooLateToBook возвращается, когда бронь нарушает minBookingNoticeMinutes
	ErrTooLateToBook = errors.New("create_booking: too late to book this slot")

	// ErrTimeout возвращается, когда транзакция бронирования не уложилась
	// в дедлайн даже после повтора
	ErrTimeout = errors.New("create_booking: booking transaction timed out")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
