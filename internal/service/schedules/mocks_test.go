package schedules

import (
	"context"
	"fmt"
	"time"

	"github.com/m04kA/MDC-ScheduleService/internal/domain"
	scheduleRepo "github.com/m04kA/MDC-ScheduleService/internal/infra/storage/schedule"
	"github.com/m04kA/MDC-ScheduleService/internal/integrations/catalogservice"
	"github.com/m04kA/MDC-ScheduleService/internal/integrations/userservice"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

// mockScheduleRepo in-memory репозиторий с CAS-семантикой реальной таблицы
type mockScheduleRepo struct {
	schedules map[int64]*domain.Schedule

	listResult []*domain.Schedule
	listTotal  int
	listErr    error
	gotFilter  domain.ScheduleFilter

	updateErr  error
	paymentErr error
}

func newMockScheduleRepo() *mockScheduleRepo {
	return &mockScheduleRepo{schedules: make(map[int64]*domain.Schedule)}
}

func (m *mockScheduleRepo) GetByID(_ context.Context, id int64) (*domain.Schedule, error) {
	s, ok := m.schedules[id]
	if !ok {
		return nil, scheduleRepo.ErrScheduleNotFound
	}
	result := *s
	return &result, nil
}

func (m *mockScheduleRepo) GetByUserID(_ context.Context, userID int64, status *domain.ScheduleStatus) ([]*domain.Schedule, error) {
	var result []*domain.Schedule
	for _, s := range m.schedules {
		if s.UserID != userID {
			continue
		}
		if status != nil && s.Status != *status {
			continue
		}
		copied := *s
		result = append(result, &copied)
	}
	return result, nil
}

func (m *mockScheduleRepo) List(_ context.Context, filter domain.ScheduleFilter) ([]*domain.Schedule, int, error) {
	m.gotFilter = filter
	if m.listErr != nil {
		return nil, 0, m.listErr
	}
	return m.listResult, m.listTotal, nil
}

func (m *mockScheduleRepo) UpdateStatusCAS(_ context.Context, id int64, from, to domain.ScheduleStatus) (bool, error) {
	if m.updateErr != nil {
		return false, m.updateErr
	}
	s, ok := m.schedules[id]
	if !ok || s.Status != from {
		return false, nil
	}
	s.Status = to
	return true, nil
}

func (m *mockScheduleRepo) CancelCAS(_ context.Context, id int64, reason string) (bool, error) {
	if m.updateErr != nil {
		return false, m.updateErr
	}
	s, ok := m.schedules[id]
	if !ok || !s.CanBeCancelled() {
		return false, nil
	}
	now := time.Now()
	s.Status = domain.StatusCancelled
	s.CancellationReason = &reason
	s.CancelledAt = &now
	return true, nil
}

func (m *mockScheduleRepo) AddPayment(_ context.Context, id int64, amount int64) error {
	if m.paymentErr != nil {
		return m.paymentErr
	}
	s, ok := m.schedules[id]
	if !ok {
		return scheduleRepo.ErrScheduleNotFound
	}
	s.Payment.TotalPaid += amount
	return nil
}

// mockCatalogClient каталог с поиском пакетов
type mockCatalogClient struct {
	packages map[int64]*catalogservice.ConsultationPackage
	services map[int64]*catalogservice.Service

	searchResult []int64
	searchErr    error
	packageErr   error
	serviceErr   error
}

func newMockCatalogClient() *mockCatalogClient {
	return &mockCatalogClient{
		packages: make(map[int64]*catalogservice.ConsultationPackage),
		services: make(map[int64]*catalogservice.Service),
	}
}

func (m *mockCatalogClient) GetPackageWithGracefulDegradation(_ context.Context, packageID int64) (*catalogservice.ConsultationPackage, error) {
	if m.packageErr != nil {
		return nil, fmt.Errorf("%w: package_id=%d, error=%v", catalogservice.ErrServiceDegraded, packageID, m.packageErr)
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

func (m *mockCatalogClient) SearchPackages(_ context.Context, _ string) ([]int64, error) {
	if m.searchErr != nil {
		return nil, m.searchErr
	}
	return m.searchResult, nil
}

// mockUserClient справочник пациентов с поиском
type mockUserClient struct {
	users map[int64]*userservice.User

	searchResult []int64
	searchErr    error
}

func newMockUserClient() *mockUserClient {
	return &mockUserClient{users: make(map[int64]*userservice.User)}
}

func (m *mockUserClient) GetUser(_ context.Context, userID int64) (*userservice.User, error) {
	u, ok := m.users[userID]
	if !ok {
		return nil, userservice.ErrUserNotFound
	}
	return u, nil
}

func (m *mockUserClient) SearchUsersWithGracefulDegradation(_ context.Context, query string) ([]int64, error) {
	if m.searchErr != nil {
		return nil, fmt.Errorf("%w: query=%q, error=%v", userservice.ErrServiceDegraded, query, m.searchErr)
	}
	return m.searchResult, nil
}
