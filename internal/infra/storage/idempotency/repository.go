package idempotency

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/MDC-ScheduleService/pkg/dbmetrics"
	"github.com/m04kA/MDC-ScheduleService/pkg/psqlbuilder"
)

const uniqueViolation = "23505"

// DBExecutor переиспользуем интерфейс из dbmetrics
type DBExecutor = dbmetrics.DBExecutor

// Repository хранилище обработанных ключей идемпотентности.
// Ключ вставляется в той же транзакции, что и созданная запись расписания:
// повтор запроса после таймаута получает ErrKeyConflict и воспроизводит
// ранее созданную запись вместо создания дубликата.
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория ключей идемпотентности
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Insert сохраняет ключ с привязкой к созданной записи расписания.
// Возвращает ErrKeyConflict, если ключ уже обработан.
func (r *Repository) Insert(ctx context.Context, key string, scheduleID int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Insert("idempotency_keys").
		Columns("key", "schedule_id").
		Values(key, scheduleID).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Insert - build insert query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation {
			return ErrKeyConflict
		}
		return fmt.Errorf("%w: Insert - execute insert: %v", ErrExecQuery, err)
	}

	return nil
}

// GetScheduleID возвращает ID записи расписания, созданной под этим ключом
func (r *Repository) GetScheduleID(ctx context.Context, key string) (int64, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("schedule_id").
		From("idempotency_keys").
		Where(squirrel.Eq{"key": key}).
		ToSql()

	if err != nil {
		return 0, fmt.Errorf("%w: GetScheduleID - build select query: %v", ErrBuildQuery, err)
	}

	var scheduleID int64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&scheduleID)
	if err == sql.ErrNoRows {
		return 0, ErrKeyNotFound
	}
	if err != nil {
		return 0, fmt.Errorf("%w: GetScheduleID - scan schedule_id: %v", ErrExecQuery, err)
	}

	return scheduleID, nil
}

// Cleanup удаляет ключи старше retention
func (r *Repository) Cleanup(ctx context.Context, olderThan time.Duration) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	cutoff := time.Now().Add(-olderThan)

	query, args, err := psqlbuilder.Delete("idempotency_keys").
		Where(squirrel.Lt{"created_at": cutoff}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: Cleanup - build delete query: %v", ErrBuildQuery, err)
	}

	if _, err := executor.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("%w: Cleanup - execute delete: %v", ErrExecQuery, err)
	}

	return nil
}
