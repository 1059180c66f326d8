package schedules

import "errors"

var (
	// ErrScheduleNotFound возвращается, когда запись не найдена
	ErrScheduleNotFound = errors.New("schedule not found")

	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("invalid input data")

	// ErrInvalidTransition возвращается при недопустимом переходе статуса.
	// Статус записи при этом не меняется.
	ErrInvalidTransition = errors.New("invalid status transition")

	// ErrPriceUnavailable возвращается, когда цена не проставлена на записи
	// и не может быть получена из каталога. Ноль в этом случае не отдаём:
	// бесплатная запись и неизвестная цена - разные вещи.
	ErrPriceUnavailable = errors.New("schedule price unavailable")

	// ErrInternal возвращается при внутренних ошибках сервиса
	ErrInternal = errors.New("schedules service: internal error")
)
