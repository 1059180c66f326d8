package schedule

import "errors"

var (
	// ErrScheduleNotFound возвращается, когда запись не найдена
	ErrScheduleNotFound = errors.New("schedule.repository: schedule not found")

	// ErrDuplicateSignature возвращается при нарушении уникального индекса
	// активной сигнатуры бронирования (гонка одинаковых запросов)
	ErrDuplicateSignature = errors.New("schedule.repository: active booking signature already exists")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("schedule.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("schedule.repository: failed to execute query")

	// ErrScanRow возвращается при ошибке сканирования результата запроса
	ErrScanRow = errors.New("schedule.repository: failed to scan row")
)
