package schedules

import (
	"context"

	"github.com/m04kA/MDC-ScheduleService/internal/domain"
	"github.com/m04kA/MDC-ScheduleService/internal/integrations/catalogservice"
	"github.com/m04kA/MDC-ScheduleService/internal/integrations/userservice"
)

// ScheduleRepository интерфейс репозитория расписания
type ScheduleRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Schedule, error)
	GetByUserID(ctx context.Context, userID int64, status *domain.ScheduleStatus) ([]*domain.Schedule, error)
	List(ctx context.Context, filter domain.ScheduleFilter) ([]*domain.Schedule, int, error)
	UpdateStatusCAS(ctx context.Context, id int64, from, to domain.ScheduleStatus) (bool, error)
	CancelCAS(ctx context.Context, id int64, reason string) (bool, error)
	AddPayment(ctx context.Context, id int64, amount int64) error
}

// CatalogServiceClient интерфейс клиента каталога.
// Сервис ходит в каталог только за отображением (цены, поиск по названию),
// поэтому чтение пакета идёт через degradation-обёртку.
type CatalogServiceClient interface {
	GetPackageWithGracefulDegradation(ctx context.Context, packageID int64) (*catalogservice.ConsultationPackage, error)
	GetService(ctx context.Context, serviceID int64) (*catalogservice.Service, error)
	SearchPackages(ctx context.Context, query string) ([]int64, error)
}

// UserServiceClient интерфейс клиента справочника пользователей
type UserServiceClient interface {
	GetUser(ctx context.Context, userID int64) (*userservice.User, error)
	SearchUsersWithGracefulDegradation(ctx context.Context, query string) ([]int64, error)
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
