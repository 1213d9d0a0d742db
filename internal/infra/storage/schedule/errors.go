package schedule

import "errors"

var (
	// ErrProviderNotFound возвращается, когда мастер не найден или неактивен
	ErrProviderNotFound = errors.New("schedule.repository: provider not found")

	// ErrBlockNotFound возвращается, когда блокировка времени не найдена
	ErrBlockNotFound = errors.New("schedule.repository: blocked interval not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("schedule.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("schedule.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("schedule.repository: failed to scan row")
)
