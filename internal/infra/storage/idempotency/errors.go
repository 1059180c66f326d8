package idempotency

import "errors"

var (
	// ErrKeyConflict возвращается, когда ключ идемпотентности уже обработан
	ErrKeyConflict = errors.New("idempotency.repository: key already processed")

	// ErrKeyNotFound возвращается, когда ключ не найден
	ErrKeyNotFound = errors.New("idempotency.repository: key not found")

	// ErrBuildQuery возвращается при ошибке построения SQL запроса
	ErrBuildQuery = errors.New("idempotency.repository: failed to build query")

	// ErrExecQuery возвращается при ошибке выполнения SQL запроса
	ErrExecQuery = errors.New("idempotency.repository: failed to execute query")
)
