package stationservice

import "errors"

var (
	// ErrStationNotFound возвращается, когда станция не найдена
	ErrStationNotFound = errors.New("station not found")

	// ErrInternal возвращается при внутренних ошибках клиента
	ErrInternal = errors.New("stationservice client: internal error")

	// ErrInvalidResponse возвращается при некорректном ответе от сервиса
	ErrInvalidResponse = errors.New("stationservice client: invalid response")
)
