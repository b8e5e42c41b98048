package policy

import "errors"

var (
	// ErrPolicyNotFound возвращается, когда политика бронирования не найдена
	ErrPolicyNotFound = errors.New("booking policy not found")

	// ErrStationNotFound возвращается, когда станция не найдена
	ErrStationNotFound = errors.New("station not found")

	// ErrPortNotFound возвращается, когда порт не найден на станции
	ErrPortNotFound = errors.New("port not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
