package get_slot_availability

import (
	"context"

	"github.com/m04kA/MDC-ScheduleService/internal/domain"
	"github.com/m04kA/MDC-ScheduleService/internal/integrations/catalogservice"
)

// ScheduleRepository интерфейс репозитория расписания
type ScheduleRepository interface {
	CountActiveByWeekAndPackage(ctx context.Context, period domain.WeekPeriod, packageID int64) (map[int]int, error)
}

// CatalogServiceClient интерфейс клиента каталога
type CatalogServiceClient interface {
	GetPackage(ctx context.Context, packageID int64) (*catalogservice.ConsultationPackage, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
