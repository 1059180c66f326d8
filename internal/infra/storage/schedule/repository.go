package schedule

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"

	"github.com/Masterminds/squirrel"
	"github.com/lib/pq"

	"github.com/m04kA/MDC-ScheduleService/internal/domain"
	"github.com/m04kA/MDC-ScheduleService/pkg/dbmetrics"
	"github.com/m04kA/MDC-ScheduleService/pkg/psqlbuilder"
)

// uniqueViolation код ошибки postgres при нарушении уникального ограничения
const uniqueViolation = "23505"

// activeSignatureIndex имя частичного уникального индекса активной сигнатуры
const activeSignatureIndex = "uq_schedules_active_signature"

// scheduleColumns полный набор колонок таблицы schedules
var scheduleColumns = []string{
	"id",
	"user_id",
	"week_from",
	"week_to",
	"day_offset",
	"time_offset",
	"type",
	"package_id",
	"services",
	"signature",
	"status",
	"total_price",
	"total_paid",
	"package_name",
	"notes",
	"cancellation_reason",
	"cancelled_at",
	"created_at",
	"updated_at",
}

// Repository репозиторий для работы с записями расписания
type Repository struct {
	db DBExecutor
}

// NewRepository создает новый экземпляр репозитория расписания
func NewRepository(db DBExecutor) *Repository {
	return &Repository{db: db}
}

// Create создает новую запись расписания.
// Если в контексте передана активная транзакция, использует её.
//
// Дубликаты активной сигнатуры отлавливаются на уровне БД частичным
// уникальным индексом (user_id, слот, signature) WHERE status <> 'cancelled'.
// Проигравший гонку запрос получает ErrDuplicateSignature, даже если
// проверка до вставки дубликата не увидела.
func (r *Repository) Create(ctx context.Context, schedule *domain.Schedule) (*domain.Schedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	servicesJSON, err := marshalServices(schedule.Services)
	if err != nil {
		return nil, fmt.Errorf("%w: Create - marshal services: %v", ErrBuildQuery, err)
	}

	query, args, err := psqlbuilder.Insert("schedules").
		Columns(
			"user_id",
			"week_from",
			"week_to",
			"day_offset",
			"time_offset",
			"type",
			"package_id",
			"services",
			"signature",
			"status",
			"total_price",
			"total_paid",
			"package_name",
			"notes",
		).
		Values(
			schedule.UserID,
			schedule.Period.From,
			schedule.Period.To,
			schedule.DayOffset,
			int(schedule.TimeOffset),
			string(schedule.Type),
			schedule.PackageID,
			servicesJSON,
			schedule.Signature,
			string(schedule.Status),
			schedule.Payment.TotalPrice,
			schedule.Payment.TotalPaid,
			schedule.PackageName,
			schedule.Notes,
		).
		Suffix("RETURNING id, created_at, updated_at").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: Create - build insert query: %v", ErrBuildQuery, err)
	}

	var createdAt, updatedAt sql.NullTime
	err = executor.QueryRowContext(ctx, query, args...).Scan(
		&schedule.ID,
		&createdAt,
		&updatedAt,
	)

	if err != nil {
		var pqErr *pq.Error
		if errors.As(err, &pqErr) && string(pqErr.Code) == uniqueViolation && pqErr.Constraint == activeSignatureIndex {
			return nil, ErrDuplicateSignature
		}
		return nil, fmt.Errorf("%w: Create - execute insert: %v", ErrExecQuery, err)
	}

	schedule.CreatedAt = createdAt.Time
	schedule.UpdatedAt = updatedAt.Time

	return schedule, nil
}

// GetByID получает запись расписания по ID
func (r *Repository) GetByID(ctx context.Context, id int64) (*domain.Schedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select(scheduleColumns...).
		From("schedules").
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - build select query: %v", ErrBuildQuery, err)
	}

	row := executor.QueryRowContext(ctx, query, args...)
	schedule, err := scanSchedule(row)
	if err == sql.ErrNoRows {
		return nil, ErrScheduleNotFound
	}
	if err != nil {
		return nil, fmt.Errorf("%w: GetByID - scan schedule: %v", ErrScanRow, err)
	}

	return schedule, nil
}

// GetByUserID получает записи расписания пользователя
// Опционально фильтрует по статусу
func (r *Repository) GetByUserID(ctx context.Context, userID int64, status *domain.ScheduleStatus) ([]*domain.Schedule, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select(scheduleColumns...).
		From("schedules").
		Where(squirrel.Eq{"user_id": userID}).
		OrderBy("week_from DESC, day_offset DESC, time_offset DESC")

	if status != nil {
		selectBuilder = selectBuilder.Where(squirrel.Eq{"status": string(*status)})
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: GetByUserID - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	return scanSchedules(rows)
}

// CountActiveBySlotAndPackage подсчитывает активные (не отменённые) записи
// на точный ключ слота для указанного пакета.
//
// Ограничение вместимости действует только для пакетных бронирований:
// записи типа "services" в модели вместимости не участвуют.
//
// Внутри транзакции строки блокируются через FOR UPDATE, чтобы
// конкурирующие создания на один слот сериализовались.
// FOR UPDATE несовместим с агрегатами, поэтому выбираем id и считаем в Go.
func (r *Repository) CountActiveBySlotAndPackage(ctx context.Context, key domain.SlotKey, packageID int64) (int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id").
		From("schedules").
		Where(squirrel.Eq{
			"week_from":   key.Period.From,
			"day_offset":  key.DayOffset,
			"time_offset": int(key.TimeOffset),
			"package_id":  packageID,
		}).
		Where(squirrel.NotEq{"status": string(domain.StatusCancelled)})

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return 0, fmt.Errorf("%w: CountActiveBySlotAndPackage - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("%w: CountActiveBySlotAndPackage - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	count := 0
	for rows.Next() {
		var id int64
		if err := rows.Scan(&id); err != nil {
			return 0, fmt.Errorf("%w: CountActiveBySlotAndPackage - scan id: %v", ErrScanRow, err)
		}
		count++
	}
	if err := rows.Err(); err != nil {
		return 0, fmt.Errorf("%w: CountActiveBySlotAndPackage - rows error: %v", ErrScanRow, err)
	}

	return count, nil
}

// ExistsActiveSignature проверяет наличие активной записи с идентичной
// сигнатурой бронирования у пользователя на этом же слоте.
// Внутри транзакции блокирует найденные строки (FOR UPDATE).
func (r *Repository) ExistsActiveSignature(ctx context.Context, userID int64, key domain.SlotKey, signature string) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	selectBuilder := psqlbuilder.Select("id").
		From("schedules").
		Where(squirrel.Eq{
			"user_id":     userID,
			"week_from":   key.Period.From,
			"day_offset":  key.DayOffset,
			"time_offset": int(key.TimeOffset),
			"signature":   signature,
		}).
		Where(squirrel.NotEq{"status": string(domain.StatusCancelled)}).
		Limit(1)

	if dbmetrics.IsInTransaction(ctx) {
		selectBuilder = selectBuilder.Suffix("FOR UPDATE")
	}

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return false, fmt.Errorf("%w: ExistsActiveSignature - build select query: %v", ErrBuildQuery, err)
	}

	var id int64
	err = executor.QueryRowContext(ctx, query, args...).Scan(&id)
	if err == sql.ErrNoRows {
		return false, nil
	}
	if err != nil {
		return false, fmt.Errorf("%w: ExistsActiveSignature - scan id: %v", ErrScanRow, err)
	}

	return true, nil
}

// CountActiveByWeekAndPackage подсчитывает активные записи пакета по всем
// слотам недели. Используется для выдачи доступности.
// Возвращает map "dayOffset*10+timeOffset" -> количество.
func (r *Repository) CountActiveByWeekAndPackage(ctx context.Context, period domain.WeekPeriod, packageID int64) (map[int]int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Select("day_offset", "time_offset", "COUNT(*)").
		From("schedules").
		Where(squirrel.Eq{
			"week_from":  period.From,
			"package_id": packageID,
		}).
		Where(squirrel.NotEq{"status": string(domain.StatusCancelled)}).
		GroupBy("day_offset", "time_offset").
		ToSql()

	if err != nil {
		return nil, fmt.Errorf("%w: CountActiveByWeekAndPackage - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("%w: CountActiveByWeekAndPackage - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	counts := make(map[int]int)
	for rows.Next() {
		var dayOffset, timeOffset, count int
		if err := rows.Scan(&dayOffset, &timeOffset, &count); err != nil {
			return nil, fmt.Errorf("%w: CountActiveByWeekAndPackage - scan row: %v", ErrScanRow, err)
		}
		counts[dayOffset*10+timeOffset] = count
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: CountActiveByWeekAndPackage - rows error: %v", ErrScanRow, err)
	}

	return counts, nil
}

// List получает записи расписания с фильтрацией, пагинацией и сортировкой.
// Возвращает страницу записей и общее количество для расчёта пагинации.
func (r *Repository) List(ctx context.Context, filter domain.ScheduleFilter) ([]*domain.Schedule, int, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	where := buildListWhere(filter)

	// Общее количество под фильтром
	countQuery, countArgs, err := psqlbuilder.Select("COUNT(*)").
		From("schedules").
		Where(where).
		ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: List - build count query: %v", ErrBuildQuery, err)
	}

	var total int
	if err := executor.QueryRowContext(ctx, countQuery, countArgs...).Scan(&total); err != nil {
		return nil, 0, fmt.Errorf("%w: List - scan count: %v", ErrScanRow, err)
	}

	limit := filter.Limit
	if limit <= 0 {
		limit = domain.DefaultPageLimit
	}
	page := filter.Page
	if page <= 0 {
		page = 1
	}
	offset := (page - 1) * limit

	selectBuilder := psqlbuilder.Select(scheduleColumns...).
		From("schedules").
		Where(where).
		OrderBy(listOrderBy(filter)...).
		Limit(uint64(limit)).
		Offset(uint64(offset))

	query, args, err := selectBuilder.ToSql()
	if err != nil {
		return nil, 0, fmt.Errorf("%w: List - build select query: %v", ErrBuildQuery, err)
	}

	rows, err := executor.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, 0, fmt.Errorf("%w: List - execute query: %v", ErrExecQuery, err)
	}
	defer rows.Close()

	schedules, err := scanSchedules(rows)
	if err != nil {
		return nil, 0, err
	}

	return schedules, total, nil
}

// UpdateStatusCAS обновляет статус compare-and-swap'ом: строка меняется
// только если текущий статус равен from. Возвращает true, если переход
// применён. false означает, что запись не найдена или статус уже другой;
// вызывающая сторона перечитывает запись и различает эти случаи.
func (r *Repository) UpdateStatusCAS(ctx context.Context, id int64, from, to domain.ScheduleStatus) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("schedules").
		Set("status", string(to)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id, "status": string(from)}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: UpdateStatusCAS - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: UpdateStatusCAS - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: UpdateStatusCAS - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}

// CancelCAS отменяет запись, только если она ещё в отменяемом статусе
// (confirmed или checkedin). Возвращает true, если отмена применена.
func (r *Repository) CancelCAS(ctx context.Context, id int64, reason string) (bool, error) {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("schedules").
		Set("status", string(domain.StatusCancelled)).
		Set("cancellation_reason", reason).
		Set("cancelled_at", squirrel.Expr("NOW()")).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		Where(squirrel.Eq{"status": []string{
			string(domain.StatusConfirmed),
			string(domain.StatusCheckedIn),
		}}).
		ToSql()

	if err != nil {
		return false, fmt.Errorf("%w: CancelCAS - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("%w: CancelCAS - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return false, fmt.Errorf("%w: CancelCAS - get rows affected: %v", ErrExecQuery, err)
	}

	return rowsAffected > 0, nil
}

// AddPayment увеличивает сумму оплаченного на amount
func (r *Repository) AddPayment(ctx context.Context, id int64, amount int64) error {
	executor := dbmetrics.GetExecutor(ctx, r.db)

	query, args, err := psqlbuilder.Update("schedules").
		Set("total_paid", squirrel.Expr("total_paid + ?", amount)).
		Set("updated_at", squirrel.Expr("NOW()")).
		Where(squirrel.Eq{"id": id}).
		ToSql()

	if err != nil {
		return fmt.Errorf("%w: AddPayment - build update query: %v", ErrBuildQuery, err)
	}

	result, err := executor.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("%w: AddPayment - execute update: %v", ErrExecQuery, err)
	}

	rowsAffected, err := result.RowsAffected()
	if err != nil {
		return fmt.Errorf("%w: AddPayment - get rows affected: %v", ErrExecQuery, err)
	}

	if rowsAffected == 0 {
		return ErrScheduleNotFound
	}

	return nil
}

// buildListWhere собирает WHERE условия листинга из фильтра
func buildListWhere(filter domain.ScheduleFilter) squirrel.And {
	where := squirrel.And{}

	if filter.UserID != nil {
		where = append(where, squirrel.Eq{"user_id": *filter.UserID})
	}
	if filter.Status != nil {
		where = append(where, squirrel.Eq{"status": string(*filter.Status)})
	} else if !filter.IncludeCancelled {
		where = append(where, squirrel.NotEq{"status": string(domain.StatusCancelled)})
	}
	if filter.Type != nil {
		where = append(where, squirrel.Eq{"type": string(*filter.Type)})
	}
	if filter.PackageID != nil {
		where = append(where, squirrel.Eq{"package_id": *filter.PackageID})
	}
	if filter.FromDate != nil {
		where = append(where, squirrel.GtOrEq{"week_from": *filter.FromDate})
	}
	if filter.ToDate != nil {
		where = append(where, squirrel.LtOrEq{"week_from": *filter.ToDate})
	}

	// Свободный текст: запись подходит, если принадлежит любому из
	// найденных пользователей ИЛИ любому из найденных пакетов
	if len(filter.MatchUserIDs) > 0 || len(filter.MatchPackageIDs) > 0 {
		match := squirrel.Or{}
		if len(filter.MatchUserIDs) > 0 {
			match = append(match, squirrel.Eq{"user_id": filter.MatchUserIDs})
		}
		if len(filter.MatchPackageIDs) > 0 {
			match = append(match, squirrel.Eq{"package_id": filter.MatchPackageIDs})
		}
		where = append(where, match)
	}

	if len(where) == 0 {
		// squirrel требует хотя бы одно условие в And
		where = append(where, squirrel.Expr("TRUE"))
	}

	return where
}

// listOrderBy возвращает ORDER BY для листинга (поля из белого списка)
func listOrderBy(filter domain.ScheduleFilter) []string {
	dir := "DESC"
	if filter.SortDir == "asc" {
		dir = "ASC"
	}

	switch filter.SortBy {
	case "slot":
		return []string{
			"week_from " + dir,
			"day_offset " + dir,
			"time_offset " + dir,
		}
	default:
		return []string{"created_at " + dir}
	}
}

// marshalServices сериализует список услуг в JSONB (NULL для пакетов)
func marshalServices(services []domain.ServiceRef) (interface{}, error) {
	if len(services) == 0 {
		return nil, nil
	}
	return json.Marshal(services)
}

// rowScanner общий интерфейс *sql.Row и *sql.Rows
type rowScanner interface {
	Scan(dest ...interface{}) error
}

// scanSchedule сканирует одну запись расписания
func scanSchedule(row rowScanner) (*domain.Schedule, error) {
	var (
		s            domain.Schedule
		timeOffset   int
		scheduleType string
		status       string
		servicesRaw  []byte
		createdAt    sql.NullTime
		updatedAt    sql.NullTime
	)

	err := row.Scan(
		&s.ID,
		&s.UserID,
		&s.Period.From,
		&s.Period.To,
		&s.DayOffset,
		&timeOffset,
		&scheduleType,
		&s.PackageID,
		&servicesRaw,
		&s.Signature,
		&status,
		&s.Payment.TotalPrice,
		&s.Payment.TotalPaid,
		&s.PackageName,
		&s.Notes,
		&s.CancellationReason,
		&s.CancelledAt,
		&createdAt,
		&updatedAt,
	)
	if err != nil {
		return nil, err
	}

	s.TimeOffset = domain.TimeOffset(timeOffset)
	s.Type = domain.ScheduleType(scheduleType)
	s.Status = domain.ScheduleStatus(status)
	s.CreatedAt = createdAt.Time
	s.UpdatedAt = updatedAt.Time

	if len(servicesRaw) > 0 {
		if err := json.Unmarshal(servicesRaw, &s.Services); err != nil {
			return nil, fmt.Errorf("unmarshal services: %v", err)
		}
	}

	return &s, nil
}

// scanSchedules сканирует список записей расписания
func scanSchedules(rows *sql.Rows) ([]*domain.Schedule, error) {
	schedules := make([]*domain.Schedule, 0)

	for rows.Next() {
		s, err := scanSchedule(rows)
		if err != nil {
			return nil, fmt.Errorf("%w: scan schedule: %v", ErrScanRow, err)
		}
		schedules = append(schedules, s)
	}

	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%w: rows error: %v", ErrScanRow, err)
	}

	return schedules, nil
}
