package port

import "errors"

var (
	// ErrPortNotFound возвращается, когда порт не найден
	ErrPortNotFound = errors.New("port.repository: port not found")

	// ErrInvalidTransition возвращается при недопустимой смене статуса порта
	ErrInvalidTransition = errors.New("port.repository: invalid status transition")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("port.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("port.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("port.repository: failed to scan row")
)
