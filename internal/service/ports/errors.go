package ports

import "errors"

var (
	// ErrPortNotFound возвращается, когда порт не найден
	ErrPortNotFound = errors.New("port not found")

	// ErrStationNotFound возвращается, когда станция не найдена
	ErrStationNotFound = errors.New("station not found")

	// ErrAccessDenied возвращается, когда у пользователя нет прав доступа
	ErrAccessDenied = errors.New("access denied")

	// ErrInvalidTransition возвращается при недопустимой смене статуса порта
	ErrInvalidTransition = errors.New("invalid port status transition")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("service: internal error")
)
