package create_booking

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/MDC-ScheduleService/internal/domain"
	idempotencyRepo "github.com/m04kA/MDC-ScheduleService/internal/infra/storage/idempotency"
	scheduleRepo "github.com/m04kA/MDC-ScheduleService/internal/infra/storage/schedule"
	catalogClient "github.com/m04kA/MDC-ScheduleService/internal/integrations/catalogservice"
)

// errReplayAfterConflict внутренний маркер: ключ идемпотентности уже занят,
// транзакцию нужно откатить и воспроизвести ранее созданную запись
var errReplayAfterConflict = errors.New("create_booking: replay after idempotency conflict")

// UseCase use case для создания записи расписания.
//
// Единственная точка входа для создания бронирований: и админский поток,
// и подтверждение из чата проходят через Execute. Проверки вместимости и
// дубликата выполняются в одной сериализуемой транзакции со вставкой,
// плюс страхуются уникальным индексом на уровне БД.
type UseCase struct {
	scheduleRepo    ScheduleRepository
	idempotencyRepo IdempotencyRepository
	catalogClient   CatalogServiceClient
	txManager       TransactionManager
	timeProvider    TimeProvider
	logger          Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	scheduleRepo ScheduleRepository,
	idempotencyRepo IdempotencyRepository,
	catalogClient CatalogServiceClient,
	txManager TransactionManager,
	logger Logger,
) *UseCase {
	return &UseCase{
		scheduleRepo:    scheduleRepo,
		idempotencyRepo: idempotencyRepo,
		catalogClient:   catalogClient,
		txManager:       txManager,
		timeProvider:    &RealTimeProvider{},
		logger:          logger,
	}
}

// Execute выполняет use case создания записи.
//
// Порядок проверок:
//  1. Валидация входных данных (до обращения к хранилищу)
//  2. Существование пакета / услуг в каталоге
//  3. Вычисление ключа слота из даты (якорь недели - понедельник, UTC+7)
//  4. В сериализуемой транзакции: вместимость (только пакеты),
//     дубликат сигнатуры, вставка со статусом confirmed
//
// При любом отказе запись не создаётся и никаких побочных эффектов нет.
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("CreateBooking: user=%d, date=%s, timeOffset=%d, type=%s",
		req.UserID, req.Date.Format(domain.DateFormat), req.TimeOffset, req.Type)

	// 1. Валидация входных данных
	if err := validateRequest(req); err != nil {
		uc.logger.Warn("CreateBooking: validation failed: %v", err)
		return nil, err
	}

	now := uc.timeProvider.Now()
	if err := validateDate(req.Date, now); err != nil {
		uc.logger.Warn("CreateBooking: date validation failed: user=%d, date=%s",
			req.UserID, req.Date.Format(domain.DateFormat))
		return nil, err
	}

	// 2. Ретрай с тем же ключом идемпотентности воспроизводит прошлый результат
	if req.IdempotencyKey != "" {
		replayed, err := uc.replayByKey(ctx, req.IdempotencyKey)
		if err != nil {
			return nil, err
		}
		if replayed != nil {
			uc.logger.Info("CreateBooking: replayed schedule id=%d by idempotency key", replayed.ID)
			return replayed, nil
		}
	}

	// 3. Разрешаем содержимое бронирования через каталог
	content, err := uc.resolveContent(ctx, req)
	if err != nil {
		return nil, err
	}

	// 4. Вычисляем ключ слота из даты
	key := domain.SlotKeyOf(req.Date, req.TimeOffset)
	signature := domain.BookingSignature(req.Type, req.PackageID, content.services)

	var result *domain.Schedule

	// 5. Проверки и вставка в одной сериализуемой транзакции.
	// Подсчёт вместимости блокирует строки слота (FOR UPDATE), поэтому два
	// конкурирующих запроса на последний остаток сериализуются: победитель
	// вставляет запись, проигравший видит заполненный слот.
	err = uc.txManager.DoSerializable(ctx, func(txCtx context.Context) error {
		// 5.1. Вместимость: лимит действует на пакетные бронирования.
		// Сервисные записи в текущей модели не ограничены - осознанная
		// асимметрия, не расширять без продуктового решения.
		if req.Type == domain.TypePackage {
			count, err := uc.scheduleRepo.CountActiveBySlotAndPackage(txCtx, key, *req.PackageID)
			if err != nil {
				uc.logger.Error("CreateBooking: failed to count slot occupancy: %v", err)
				return fmt.Errorf("%w: failed to count slot occupancy: %v", ErrInternal, err)
			}
			if count >= content.maxSlotPerPeriod {
				uc.logger.Warn("CreateBooking: capacity exceeded, %d/%d taken: package=%d, day=%d, time=%d",
					count, content.maxSlotPerPeriod, *req.PackageID, key.DayOffset, key.TimeOffset)
				return ErrCapacityExceeded
			}
		}

		// 5.2. Дубликат: активная запись с той же сигнатурой на том же слоте
		exists, err := uc.scheduleRepo.ExistsActiveSignature(txCtx, req.UserID, key, signature)
		if err != nil {
			uc.logger.Error("CreateBooking: failed to check duplicate: %v", err)
			return fmt.Errorf("%w: failed to check duplicate: %v", ErrInternal, err)
		}
		if exists {
			uc.logger.Warn("CreateBooking: duplicate booking: user=%d, signature=%s", req.UserID, signature)
			return ErrDuplicateBooking
		}

		// 5.3. Вставка со статусом confirmed
		schedule := &domain.Schedule{
			UserID:     req.UserID,
			Period:     key.Period,
			DayOffset:  key.DayOffset,
			TimeOffset: key.TimeOffset,
			Type:       req.Type,
			PackageID:  req.PackageID,
			Services:   content.services,
			Signature:  signature,
			Status:     domain.StatusConfirmed,
			Payment: domain.PaymentInfo{
				TotalPrice: content.totalPrice,
				TotalPaid:  0,
			},
			PackageName: content.packageName,
			Notes:       req.Notes,
		}

		created, err := uc.scheduleRepo.Create(txCtx, schedule)
		if err != nil {
			// Гонку, проскочившую мимо проверки 5.2, ловит уникальный индекс
			if errors.Is(err, scheduleRepo.ErrDuplicateSignature) {
				uc.logger.Warn("CreateBooking: duplicate caught by unique index: user=%d, signature=%s",
					req.UserID, signature)
				return ErrDuplicateBooking
			}
			uc.logger.Error("CreateBooking: failed to create schedule: %v", err)
			return fmt.Errorf("%w: failed to create schedule: %v", ErrInternal, err)
		}

		// 5.4. Фиксируем ключ идемпотентности в той же транзакции
		if req.IdempotencyKey != "" {
			if err := uc.idempotencyRepo.Insert(txCtx, req.IdempotencyKey, created.ID); err != nil {
				if errors.Is(err, idempotencyRepo.ErrKeyConflict) {
					return errReplayAfterConflict
				}
				uc.logger.Error("CreateBooking: failed to store idempotency key: %v", err)
				return fmt.Errorf("%w: failed to store idempotency key: %v", ErrInternal, err)
			}
		}

		result = created
		return nil
	})

	// Конкурирующий запрос с тем же ключом успел первым - отдаём его результат
	if errors.Is(err, errReplayAfterConflict) {
		replayed, replayErr := uc.replayByKey(ctx, req.IdempotencyKey)
		if replayErr != nil {
			return nil, replayErr
		}
		if replayed != nil {
			return replayed, nil
		}
		return nil, fmt.Errorf("%w: idempotency key conflict without stored schedule", ErrInternal)
	}
	if err != nil {
		return nil, err
	}

	uc.logger.Info("CreateBooking: successfully created schedule id=%d for user=%d", result.ID, req.UserID)
	return fromDomain(result, false), nil
}

// bookingContent разрешённое через каталог содержимое бронирования
type bookingContent struct {
	services         []domain.ServiceRef
	totalPrice       int64
	maxSlotPerPeriod int
	packageName      *string
}

// resolveContent проверяет существование пакета/услуг и собирает
// денормализованные данные (цена, название, лимит слота)
func (uc *UseCase) resolveContent(ctx context.Context, req *Request) (*bookingContent, error) {
	content := &bookingContent{}

	switch req.Type {
	case domain.TypePackage:
		pkg, err := uc.catalogClient.GetPackage(ctx, *req.PackageID)
		if err != nil {
			if errors.Is(err, catalogClient.ErrPackageNotFound) {
				uc.logger.Warn("CreateBooking: package id=%d not found", *req.PackageID)
				return nil, ErrPackageNotFound
			}
			uc.logger.Error("CreateBooking: failed to get package id=%d: %v", *req.PackageID, err)
			return nil, fmt.Errorf("%w: failed to get package: %v", ErrInternal, err)
		}

		content.totalPrice = pkg.Price
		content.packageName = &pkg.Name
		content.maxSlotPerPeriod = pkg.MaxSlotPerPeriod
		if content.maxSlotPerPeriod <= 0 {
			content.maxSlotPerPeriod = domain.DefaultMaxSlotPerPeriod
		}

	case domain.TypeServices:
		content.services = make([]domain.ServiceRef, 0, len(req.ServiceIDs))
		for _, serviceID := range req.ServiceIDs {
			svc, err := uc.catalogClient.GetService(ctx, serviceID)
			if err != nil {
				if errors.Is(err, catalogClient.ErrServiceNotFound) {
					uc.logger.Warn("CreateBooking: service id=%d not found", serviceID)
					return nil, ErrServiceNotFound
				}
				uc.logger.Error("CreateBooking: failed to get service id=%d: %v", serviceID, err)
				return nil, fmt.Errorf("%w: failed to get service: %v", ErrInternal, err)
			}
			content.totalPrice += svc.Price
			content.services = append(content.services, domain.ServiceRef{ServiceID: svc.ID})
		}
	}

	return content, nil
}

// replayByKey возвращает запись, созданную ранее под этим ключом
// идемпотентности, или nil, если ключ ещё не обработан
func (uc *UseCase) replayByKey(ctx context.Context, key string) (*Response, error) {
	scheduleID, err := uc.idempotencyRepo.GetScheduleID(ctx, key)
	if err != nil {
		if errors.Is(err, idempotencyRepo.ErrKeyNotFound) {
			return nil, nil
		}
		uc.logger.Error("CreateBooking: failed to look up idempotency key: %v", err)
		return nil, fmt.Errorf("%w: failed to look up idempotency key: %v", ErrInternal, err)
	}

	schedule, err := uc.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		uc.logger.Error("CreateBooking: failed to load replayed schedule id=%d: %v", scheduleID, err)
		return nil, fmt.Errorf("%w: failed to load replayed schedule: %v", ErrInternal, err)
	}

	return fromDomain(schedule, true), nil
}
