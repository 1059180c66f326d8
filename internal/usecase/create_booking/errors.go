package create_booking

import "errors"

var (
	// ErrInvalidInput возвращается при некорректных входных данных
	ErrInvalidInput = errors.New("create_booking: invalid input data")

	// ErrPackageNotFound возвращается, когда пакет не найден в каталоге
	ErrPackageNotFound = errors.New("create_booking: package not found")

	// ErrServiceNotFound возвращается, когда услуга не найдена в каталоге
	ErrServiceNotFound = errors.New("create_booking: service not found")

	// ErrInvalidDate возвращается при дате бронирования в прошлом
	ErrInvalidDate = errors.New("create_booking: invalid booking date")

	// ErrCapacityExceeded возвращается, когда слот заполнен для пакета.
	// Отличим от ErrDuplicateBooking: вызывающая сторона предлагает
	// выбрать другой слот, а не повторить запрос.
	ErrCapacityExceeded = errors.New("create_booking: slot capacity exceeded for package")

	// ErrDuplicateBooking возвращается, когда у пользователя уже есть
	// активная запись с идентичной сигнатурой на этом слоте
	ErrDuplicateBooking = errors.New("create_booking: duplicate booking")

	// ErrInternal возвращается при внутренних ошибках usecase
	ErrInternal = errors.New("create_booking: internal error")
)
