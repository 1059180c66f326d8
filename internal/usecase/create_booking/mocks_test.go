package create_booking

import (
	"context"
	"sync"
	"time"

	"github.com/m04kA/MDC-ScheduleService/internal/domain"
	idempotencyRepo "github.com/m04kA/MDC-ScheduleService/internal/infra/storage/idempotency"
	scheduleRepo "github.com/m04kA/MDC-ScheduleService/internal/infra/storage/schedule"
	"github.com/m04kA/MDC-ScheduleService/internal/integrations/catalogservice"
)

// nopLogger глушит логи в тестах
type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// fixedTimeProvider отдаёт фиксированный момент времени
type fixedTimeProvider struct {
	now time.Time
}

func (p *fixedTimeProvider) Now() time.Time { return p.now }

// mockScheduleRepo in-memory репозиторий расписания.
// Повторяет гарантии реальной таблицы: уникальность активной сигнатуры
// обеспечивается на вставке, как частичным индексом в БД.
type mockScheduleRepo struct {
	mu        sync.Mutex
	schedules map[int64]*domain.Schedule
	nextID    int64

	createErr error
	countErr  error
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{schedules: make(map[int64]*domain.Schedule), nextID: 1}
}

func (m *mockScheduleRepo) Create(_ context.Context, schedule *domain.Schedule) (*domain.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.createErr != nil {
		return nil, m.createErr
	}

	for _, existing := range m.schedules {
		if existing.IsActive() &&
			existing.UserID == schedule.UserID &&
			existing.Period.Equal(schedule.Period) &&
			existing.DayOffset == schedule.DayOffset &&
			existing.TimeOffset == schedule.TimeOffset &&
			existing.Signature == schedule.Signature {
			return nil, scheduleRepo.ErrDuplicateSignature
		}
	}

	stored := *schedule
	stored.ID = m.nextID
	stored.CreatedAt = time.Now()
	stored.UpdatedAt = stored.CreatedAt
	m.nextID++
	m.schedules[stored.ID] = &stored

	result := stored
	return &result, nil
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id int64) (*domain.Schedule, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	s, ok := m.schedules[id]
	if !ok {
		return nil, scheduleRepo.ErrScheduleNotFound
	}
	result := *s
	return &result, nil
}

func (m *mockScheduleRepo) CountActiveBySlotAndPackage(_ context.Context, key domain.SlotKey, packageID int64) (int, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	if m.countErr != nil {
		return 0, m.countErr
	}

	count := 0
	for _, s := range m.schedules {
		if s.IsActive() &&
			s.Type == domain.TypePackage &&
			s.PackageID != nil && *s.PackageID == packageID &&
			s.Period.Equal(key.Period) &&
			s.DayOffset == key.DayOffset &&
			s.TimeOffset == key.TimeOffset {
			count++
		}
	}
	return count, nil
}

func (m *mockScheduleRepo) ExistsActiveSignature(_ context.Context, userID int64, key domain.SlotKey, signature string) (bool, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	for _, s := range m.schedules {
		if s.IsActive() &&
			s.UserID == userID &&
			s.Period.Equal(key.Period) &&
			s.DayOffset == key.DayOffset &&
			s.TimeOffset == key.TimeOffset &&
			s.Signature == signature {
			return true, nil
		}
	}
	return false, nil
}

// cancel переводит запись в cancelled, освобождая слот
func (m *mockScheduleRepo) cancel(id int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if s, ok := m.schedules[id]; ok {
		s.Status = domain.StatusCancelled
	}
}

// mockIdempotencyRepo in-memory хранилище ключей идемпотентности
type mockIdempotencyRepo struct {
	mu   sync.Mutex
	keys map[string]int64
}

func newMockIdempotencyRepo() *mockIdempotencyRepo {
	return &mockIdempotencyRepo{keys: make(map[string]int64)}
}

func (m *mockIdempotencyRepo) Insert(_ context.Context, key string, scheduleID int64) error {
	m.mu.Lock()
	defer m.mu.Unlock()

	if _, ok := m.keys[key]; ok {
		return idempotencyRepo.ErrKeyConflict
	}
	m.keys[key] = scheduleID
	return nil
}

func (m *mockIdempotencyRepo) GetScheduleID(_ context.Context, key string) (int64, error) {
	m.mu.Lock()
	defer m.mu.Unlock()

	scheduleID, ok := m.keys[key]
	if !ok {
		return 0, idempotencyRepo.ErrKeyNotFound
	}
	return scheduleID, nil
}

// mockCatalogClient in-memory каталог пакетов и услуг
type mockCatalogClient struct {
	packages map[int64]*catalogservice.ConsultationPackage
	services map[int64]*catalogservice.Service

	packageErr error
	serviceErr error
}

func newMockCatalogClient() *mockCatalogClient {
	return &mockCatalogClient{
		packages: make(map[int64]*catalogservice.ConsultationPackage),
		services: make(map[int64]*catalogservice.Service),
	}
}

func (m *mockCatalogClient) GetPackage(_ context.Context, packageID int64) (*catalogservice.ConsultationPackage, error) {
	if m.packageErr != nil {
		return nil, m.packageErr
	}
	pkg, ok := m.packages[packageID]
	if !ok {
		return nil, catalogservice.ErrPackageNotFound
	}
	return pkg, nil
}

func (m *mockCatalogClient) GetService(_ context.Context, serviceID int64) (*catalogservice.Service, error) {
	if m.serviceErr != nil {
		return nil, m.serviceErr
	}
	svc, ok := m.services[serviceID]
	if !ok {
		return nil, catalogservice.ErrServiceNotFound
	}
	return svc, nil
}

// mockTxManager сериализует транзакции мьютексом, имитируя
// сериализуемую изоляцию реального менеджера
type mockTxManager struct {
	mu sync.Mutex
}

func (m *mockTxManager) DoSerializable(ctx context.Context, fn func(ctx context.Context) error) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return fn(ctx)
}
