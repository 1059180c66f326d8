package schedules

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/MDC-ScheduleService/internal/domain"
	scheduleRepo "github.com/m04kA/MDC-ScheduleService/internal/infra/storage/schedule"
	"github.com/m04kA/MDC-ScheduleService/internal/service/schedules/models"
	"github.com/m04kA/MDC-ScheduleService/pkg/types"
)

// Service сервис для работы с записями расписания: чтение, листинг,
// переходы статуса, отмена и платежное представление.
//
// Создание записей сюда не входит - оно живёт в usecase create_booking,
// единственной точке входа для бронирования.
type Service struct {
	scheduleRepo  ScheduleRepository
	catalogClient CatalogServiceClient
	userClient    UserServiceClient
	logger        Logger
}

// NewService создает новый экземпляр сервиса расписания
func NewService(
	scheduleRepo ScheduleRepository,
	catalogClient CatalogServiceClient,
	userClient UserServiceClient,
	logger Logger,
) *Service {
	return &Service{
		scheduleRepo:  scheduleRepo,
		catalogClient: catalogClient,
		userClient:    userClient,
		logger:        logger,
	}
}

// GetByID получает запись расписания по ID
func (s *Service) GetByID(ctx context.Context, id int64) (*models.ScheduleResponse, error) {
	s.logger.Info("GetByID: fetching schedule id=%d", id)

	schedule, err := s.scheduleRepo.GetByID(ctx, id)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			s.logger.Warn("GetByID: schedule id=%d not found", id)
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("GetByID: repository error for schedule id=%d: %v", id, err)
		return nil, fmt.Errorf("%w: GetByID - repository error: %v", ErrInternal, err)
	}

	return models.FromDomainSchedule(schedule), nil
}

// GetUserSchedules получает записи пользователя
// Опционально фильтрует по статусу
func (s *Service) GetUserSchedules(ctx context.Context, req *models.GetUserSchedulesRequest) ([]*models.ScheduleResponse, error) {
	s.logger.Info("GetUserSchedules: fetching schedules for user=%d, status=%v", req.UserID, req.Status)

	if req.UserID <= 0 {
		return nil, fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	var domainStatus *domain.ScheduleStatus
	if req.Status != nil {
		status, err := models.ToDomainScheduleStatus(*req.Status)
		if err != nil {
			s.logger.Warn("GetUserSchedules: invalid status=%s for user=%d", *req.Status, req.UserID)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		domainStatus = &status
	}

	schedules, err := s.scheduleRepo.GetByUserID(ctx, req.UserID, domainStatus)
	if err != nil {
		s.logger.Error("GetUserSchedules: repository error for user=%d: %v", req.UserID, err)
		return nil, fmt.Errorf("%w: GetUserSchedules - repository error: %v", ErrInternal, err)
	}

	responses := models.FromDomainScheduleList(schedules)

	// Имя пациента подтягивается из справочника best effort:
	// недоступность справочника не валит выдачу записей
	if len(responses) > 0 {
		if user, err := s.userClient.GetUser(ctx, req.UserID); err == nil {
			for _, r := range responses {
				r.UserName = &user.FullName
			}
		} else {
			s.logger.Warn("GetUserSchedules: user directory lookup failed for user=%d: %v", req.UserID, err)
		}
	}

	s.logger.Info("GetUserSchedules: fetched %d schedules for user=%d", len(schedules), req.UserID)
	return responses, nil
}

// List получает записи с фильтрацией, пагинацией и сортировкой.
//
// Свободный текст (req.Query) резолвится во внешних сервисах: справочник
// пользователей отдаёт ID по имени/телефону, каталог - ID пакетов по
// названию. Локально по именам ничего не матчится.
func (s *Service) List(ctx context.Context, req *models.ListSchedulesRequest) (*models.ScheduleListResponse, error) {
	s.logger.Info("List: fetching schedules, page=%d, limit=%d, q=%q", req.Page, req.Limit, req.Query)

	filter, err := s.buildFilter(ctx, req)
	if err != nil {
		return nil, err
	}

	// Свободный текст задан, но ничего не нашлось - пустая страница,
	// в репозиторий не ходим
	if filter == nil {
		return &models.ScheduleListResponse{
			Data:       []*models.ScheduleResponse{},
			Pagination: models.NewPagination(req.Page, req.Limit, 0),
		}, nil
	}

	schedules, total, err := s.scheduleRepo.List(ctx, *filter)
	if err != nil {
		s.logger.Error("List: repository error: %v", err)
		return nil, fmt.Errorf("%w: List - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("List: fetched %d of %d schedules", len(schedules), total)
	return &models.ScheduleListResponse{
		Data:       models.FromDomainScheduleList(schedules),
		Pagination: models.NewPagination(filter.Page, filter.Limit, total),
	}, nil
}

// UpdateStatus выполняет переход статуса записи.
//
// Переход применяется compare-and-swap'ом по текущему статусу: два
// конкурирующих действия (например, одновременные check-in и отмена)
// не могут провести запись через несогласованные переходы. При
// недопустимом переходе статус записи не меняется.
func (s *Service) UpdateStatus(ctx context.Context, scheduleID int64, req *models.UpdateStatusRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("UpdateStatus: schedule id=%d to status=%s by actor=%d", scheduleID, req.Status, req.ActorID)

	newStatus, err := models.ToDomainScheduleStatus(req.Status)
	if err != nil {
		s.logger.Warn("UpdateStatus: invalid status=%s for schedule id=%d", req.Status, scheduleID)
		return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
	}

	// Отмена идёт через Cancel - с причиной и отметкой времени
	if newStatus == domain.StatusCancelled {
		return nil, fmt.Errorf("%w: use cancel endpoint for cancellation", ErrInvalidInput)
	}

	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			s.logger.Warn("UpdateStatus: schedule id=%d not found", scheduleID)
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("UpdateStatus: repository error for schedule id=%d: %v", scheduleID, err)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	if !domain.CanTransition(schedule.Status, newStatus) {
		s.logger.Warn("UpdateStatus: invalid transition %s -> %s for schedule id=%d",
			schedule.Status, newStatus, scheduleID)
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, schedule.Status, newStatus)
	}

	applied, err := s.scheduleRepo.UpdateStatusCAS(ctx, scheduleID, schedule.Status, newStatus)
	if err != nil {
		s.logger.Error("UpdateStatus: repository error for schedule id=%d: %v", scheduleID, err)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	if !applied {
		// Статус успел измениться между чтением и CAS - перечитываем,
		// чтобы отличить гонку от исчезнувшей записи
		current, rerr := s.scheduleRepo.GetByID(ctx, scheduleID)
		if rerr != nil {
			if errors.Is(rerr, scheduleRepo.ErrScheduleNotFound) {
				return nil, ErrScheduleNotFound
			}
			return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, rerr)
		}
		s.logger.Warn("UpdateStatus: lost CAS race for schedule id=%d, current status=%s", scheduleID, current.Status)
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, newStatus)
	}

	updated, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		s.logger.Error("UpdateStatus: failed to reload schedule id=%d: %v", scheduleID, err)
		return nil, fmt.Errorf("%w: UpdateStatus - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("UpdateStatus: schedule id=%d moved to status=%s", scheduleID, newStatus)
	return models.FromDomainSchedule(updated), nil
}

// Cancel отменяет запись. Отмена - это статус, а не удаление:
// запись остаётся в истории и перестаёт занимать слот.
// Разрешена только из confirmed и checkedin.
func (s *Service) Cancel(ctx context.Context, scheduleID int64, req *models.CancelScheduleRequest) (*models.ScheduleResponse, error) {
	s.logger.Info("Cancel: cancelling schedule id=%d by actor=%d", scheduleID, req.ActorID)

	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			s.logger.Warn("Cancel: schedule id=%d not found", scheduleID)
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("Cancel: repository error for schedule id=%d: %v", scheduleID, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	if !schedule.CanBeCancelled() {
		s.logger.Warn("Cancel: schedule id=%d cannot be cancelled from status=%s", scheduleID, schedule.Status)
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, schedule.Status, domain.StatusCancelled)
	}

	applied, err := s.scheduleRepo.CancelCAS(ctx, scheduleID, req.Reason)
	if err != nil {
		s.logger.Error("Cancel: repository error for schedule id=%d: %v", scheduleID, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	if !applied {
		current, rerr := s.scheduleRepo.GetByID(ctx, scheduleID)
		if rerr != nil {
			if errors.Is(rerr, scheduleRepo.ErrScheduleNotFound) {
				return nil, ErrScheduleNotFound
			}
			return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, rerr)
		}
		s.logger.Warn("Cancel: lost CAS race for schedule id=%d, current status=%s", scheduleID, current.Status)
		return nil, fmt.Errorf("%w: %s -> %s", ErrInvalidTransition, current.Status, domain.StatusCancelled)
	}

	cancelled, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		s.logger.Error("Cancel: failed to reload schedule id=%d: %v", scheduleID, err)
		return nil, fmt.Errorf("%w: Cancel - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("Cancel: schedule id=%d cancelled", scheduleID)
	return models.FromDomainSchedule(cancelled), nil
}

// GetPayment возвращает платежное представление записи.
//
// Если цена на записи не проставлена, она резолвится из каталога
// (цена пакета или сумма цен услуг). Ноль вместо неизвестной цены
// не отдаём никогда.
func (s *Service) GetPayment(ctx context.Context, scheduleID int64) (*models.PaymentView, error) {
	s.logger.Info("GetPayment: fetching payment for schedule id=%d", scheduleID)

	schedule, err := s.scheduleRepo.GetByID(ctx, scheduleID)
	if err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			s.logger.Warn("GetPayment: schedule id=%d not found", scheduleID)
			return nil, ErrScheduleNotFound
		}
		s.logger.Error("GetPayment: repository error for schedule id=%d: %v", scheduleID, err)
		return nil, fmt.Errorf("%w: GetPayment - repository error: %v", ErrInternal, err)
	}

	if schedule.Payment.HasPrice() {
		view := models.FromDomainPayment(schedule.Payment, false)
		return &view, nil
	}

	price, err := s.resolvePrice(ctx, schedule)
	if err != nil {
		return nil, err
	}

	view := models.FromDomainPayment(domain.PaymentInfo{
		TotalPrice: price,
		TotalPaid:  schedule.Payment.TotalPaid,
	}, true)

	return &view, nil
}

// RecordPayment фиксирует оплату по записи.
// Авторитетный источник оплат - внешняя биллинговая система,
// здесь аккумулируется её callback.
func (s *Service) RecordPayment(ctx context.Context, scheduleID int64, req *models.RecordPaymentRequest) error {
	s.logger.Info("RecordPayment: schedule id=%d, amount=%d", scheduleID, req.Amount)

	if req.Amount <= 0 {
		return fmt.Errorf("%w: amount must be positive", ErrInvalidInput)
	}

	if err := s.scheduleRepo.AddPayment(ctx, scheduleID, req.Amount); err != nil {
		if errors.Is(err, scheduleRepo.ErrScheduleNotFound) {
			s.logger.Warn("RecordPayment: schedule id=%d not found", scheduleID)
			return ErrScheduleNotFound
		}
		s.logger.Error("RecordPayment: repository error for schedule id=%d: %v", scheduleID, err)
		return fmt.Errorf("%w: RecordPayment - repository error: %v", ErrInternal, err)
	}

	s.logger.Info("RecordPayment: recorded %d for schedule id=%d", req.Amount, scheduleID)
	return nil
}

// Вспомогательные методы

// resolvePrice получает цену записи из каталога
func (s *Service) resolvePrice(ctx context.Context, schedule *domain.Schedule) (int64, error) {
	switch schedule.Type {
	case domain.TypePackage:
		if schedule.PackageID == nil {
			return 0, fmt.Errorf("%w: schedule id=%d has no package id", ErrPriceUnavailable, schedule.ID)
		}
		pkg, err := s.catalogClient.GetPackageWithGracefulDegradation(ctx, *schedule.PackageID)
		if err != nil {
			s.logger.Error("resolvePrice: failed to get package id=%d: %v", *schedule.PackageID, err)
			return 0, fmt.Errorf("%w: %v", ErrPriceUnavailable, err)
		}
		return pkg.Price, nil

	case domain.TypeServices:
		var total int64
		for _, ref := range schedule.Services {
			svc, err := s.catalogClient.GetService(ctx, ref.ServiceID)
			if err != nil {
				s.logger.Error("resolvePrice: failed to get service id=%d: %v", ref.ServiceID, err)
				return 0, fmt.Errorf("%w: %v", ErrPriceUnavailable, err)
			}
			total += svc.Price
		}
		return total, nil

	default:
		return 0, fmt.Errorf("%w: unknown schedule type %q", ErrPriceUnavailable, schedule.Type)
	}
}

// buildFilter собирает доменный фильтр листинга.
// Возвращает nil, если свободный текст задан, но ничего не нашлось.
func (s *Service) buildFilter(ctx context.Context, req *models.ListSchedulesRequest) (*domain.ScheduleFilter, error) {
	filter := domain.ScheduleFilter{
		UserID:           req.UserID,
		PackageID:        req.PackageID,
		IncludeCancelled: req.IncludeCancelled,
		SortDir:          req.SortDir,
		Page:             req.Page,
		Limit:            req.Limit,
	}

	if req.Status != nil {
		status, err := models.ToDomainScheduleStatus(*req.Status)
		if err != nil {
			s.logger.Warn("List: invalid status=%s", *req.Status)
			return nil, fmt.Errorf("%w: invalid status", ErrInvalidInput)
		}
		filter.Status = &status
	}

	if req.Type != nil {
		scheduleType, err := domain.ParseScheduleType(*req.Type)
		if err != nil {
			s.logger.Warn("List: invalid type=%s", *req.Type)
			return nil, fmt.Errorf("%w: invalid type", ErrInvalidInput)
		}
		filter.Type = &scheduleType
	}

	if req.SortBy != "" {
		if !domain.SortableFields[req.SortBy] {
			return nil, fmt.Errorf("%w: invalid sortBy field", ErrInvalidInput)
		}
		filter.SortBy = req.SortBy
	}

	if req.FromDate != nil {
		from, err := types.NewDateFromString(*req.FromDate, domain.ClinicZone)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid fromDate", ErrInvalidInput)
		}
		weekFrom := domain.WeekPeriodOf(from.Time()).From
		filter.FromDate = &weekFrom
	}
	if req.ToDate != nil {
		to, err := types.NewDateFromString(*req.ToDate, domain.ClinicZone)
		if err != nil {
			return nil, fmt.Errorf("%w: invalid toDate", ErrInvalidInput)
		}
		weekTo := domain.WeekPeriodOf(to.Time()).From
		filter.ToDate = &weekTo
	}

	if filter.Limit > domain.MaxPageLimit {
		filter.Limit = domain.MaxPageLimit
	}

	// Свободный текст резолвим во внешних сервисах.
	// Недоступность одного из них не валит листинг целиком.
	if req.Query != "" {
		userIDs, err := s.userClient.SearchUsersWithGracefulDegradation(ctx, req.Query)
		if err != nil {
			s.logger.Warn("List: user search degraded for q=%q: %v", req.Query, err)
		}
		packageIDs, err := s.catalogClient.SearchPackages(ctx, req.Query)
		if err != nil {
			s.logger.Warn("List: package search degraded for q=%q: %v", req.Query, err)
		}

		if len(userIDs) == 0 && len(packageIDs) == 0 {
			s.logger.Info("List: free-text query %q matched nothing", req.Query)
			return nil, nil
		}

		filter.MatchUserIDs = userIDs
		filter.MatchPackageIDs = packageIDs
	}

	return &filter, nil
}
