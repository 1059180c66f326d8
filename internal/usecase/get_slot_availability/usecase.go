package get_slot_availability

import (
	"context"
	"errors"
	"fmt"

	"github.com/m04kA/MDC-ScheduleService/internal/domain"
	catalogClient "github.com/m04kA/MDC-ScheduleService/internal/integrations/catalogservice"
)

// UseCase use case для получения доступности слотов недели по пакету.
//
// Доступность считается только для пакетных бронирований: сервисные
// записи не ограничены по вместимости, для них поверхности доступности нет.
type UseCase struct {
	scheduleRepo  ScheduleRepository
	catalogClient CatalogServiceClient
	logger        Logger
}

// NewUseCase создает новый экземпляр use case
func NewUseCase(
	scheduleRepo ScheduleRepository,
	catalogClient CatalogServiceClient,
	logger Logger,
) *UseCase {
	return &UseCase{
		scheduleRepo:  scheduleRepo,
		catalogClient: catalogClient,
		logger:        logger,
	}
}

// Execute выполняет use case получения доступности слотов
func (uc *UseCase) Execute(ctx context.Context, req *Request) (*Response, error) {
	uc.logger.Info("GetSlotAvailability: package=%d, date=%s",
		req.PackageID, req.Date.Format(domain.DateFormat))

	if req.PackageID <= 0 {
		return nil, fmt.Errorf("%w: packageId must be positive", ErrInvalidInput)
	}
	if req.Date.IsZero() {
		return nil, fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	// Получаем пакет ради актуального maxSlotPerPeriod
	pkg, err := uc.catalogClient.GetPackage(ctx, req.PackageID)
	if err != nil {
		if errors.Is(err, catalogClient.ErrPackageNotFound) {
			uc.logger.Warn("GetSlotAvailability: package id=%d not found", req.PackageID)
			return nil, ErrPackageNotFound
		}
		uc.logger.Error("GetSlotAvailability: failed to get package id=%d: %v", req.PackageID, err)
		return nil, fmt.Errorf("%w: failed to get package: %v", ErrInternal, err)
	}

	maxSlot := pkg.MaxSlotPerPeriod
	if maxSlot <= 0 {
		maxSlot = domain.DefaultMaxSlotPerPeriod
	}

	period := domain.WeekPeriodOf(req.Date)

	counts, err := uc.scheduleRepo.CountActiveByWeekAndPackage(ctx, period, req.PackageID)
	if err != nil {
		uc.logger.Error("GetSlotAvailability: failed to count occupancy: %v", err)
		return nil, fmt.Errorf("%w: failed to count occupancy: %v", ErrInternal, err)
	}

	slots := make([]Slot, 0, domain.DaysPerWeek*domain.SlotsPerDay)
	for day := 0; day < domain.DaysPerWeek; day++ {
		for _, timeOffset := range []domain.TimeOffset{domain.TimeOffsetMorning, domain.TimeOffsetAfternoon} {
			taken := counts[day*10+int(timeOffset)]
			remaining := maxSlot - taken
			if remaining < 0 {
				remaining = 0
			}

			slots = append(slots, Slot{
				DayOffset:  day,
				TimeOffset: timeOffset,
				Date:       period.DayStart(day),
				Remaining:  remaining,
				Total:      maxSlot,
			})
		}
	}

	uc.logger.Info("GetSlotAvailability: package=%d, week=%s, %d slots",
		req.PackageID, period.From.Format(domain.DateFormat), len(slots))

	return &Response{
		PackageID: req.PackageID,
		WeekFrom:  period.From,
		WeekTo:    period.To,
		Slots:     slots,
	}, nil
}
