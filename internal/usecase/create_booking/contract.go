package create_booking

import (
	"context"
	"time"

	"github.com/m04kA/MDC-ScheduleService/internal/domain"
	"github.com/m04kA/MDC-ScheduleService/internal/integrations/catalogservice"
)

// ScheduleRepository интерфейс репозитория расписания
type ScheduleRepository interface {
	Create(ctx context.Context, schedule *domain.Schedule) (*domain.Schedule, error)
	GetByID(ctx context.Context, id int64) (*domain.Schedule, error)
	CountActiveBySlotAndPackage(ctx context.Context, key domain.SlotKey, packageID int64) (int, error)
	ExistsActiveSignature(ctx context.Context, userID int64, key domain.SlotKey, signature string) (bool, error)
}

// IdempotencyRepository интерфейс хранилища ключей идемпотентности
type IdempotencyRepository interface {
	Insert(ctx context.Context, key string, scheduleID int64) error
	GetScheduleID(ctx context.Context, key string) (int64, error)
}

// CatalogServiceClient интерфейс клиента каталога пакетов и услуг
type CatalogServiceClient interface {
	GetPackage(ctx context.Context, packageID int64) (*catalogservice.ConsultationPackage, error)
	GetService(ctx context.Context, serviceID int64) (*catalogservice.Service, error)
}

// TransactionManager интерфейс для управления транзакциями
type TransactionManager interface {
	DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error
}

// TimeProvider интерфейс для получения текущего времени (для тестирования)
type TimeProvider interface {
	Now() time.Time
}

// Logger интерфейс для логирования
type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}

// RealTimeProvider реальный провайдер времени для production
type RealTimeProvider struct{}

// Now возвращает текущее время
func (p *RealTimeProvider) Now() time.Time {
	return time.Now()
}
