package schedules

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MDC-ScheduleService/internal/domain"
	"github.com/m04kA/MDC-ScheduleService/internal/integrations/catalogservice"
	"github.com/m04kA/MDC-ScheduleService/internal/integrations/userservice"
	"github.com/m04kA/MDC-ScheduleService/internal/service/schedules/models"
	"github.com/m04kA/MDC-ScheduleService/pkg/ptr"
)

type testEnv struct {
	service *Service
	repo    *mockScheduleRepo
	catalog *mockCatalogClient
	users   *mockUserClient
}

func newTestEnv() *testEnv {
	env := &testEnv{
		repo:    newMockScheduleRepo(),
		catalog: newMockCatalogClient(),
		users:   newMockUserClient(),
	}
	env.service = NewService(env.repo, env.catalog, env.users, nopLogger{})
	return env
}

func seedSchedule(env *testEnv, id int64, status domain.ScheduleStatus) *domain.Schedule {
	period := domain.WeekPeriodOf(time.Date(2026, 9, 9, 0, 0, 0, 0, domain.ClinicZone))
	s := &domain.Schedule{
		ID:         id,
		UserID:     1,
		Period:     period,
		DayOffset:  2,
		TimeOffset: domain.TimeOffsetMorning,
		Type:       domain.TypePackage,
		PackageID:  ptr.Ptr(int64(10)),
		Signature:  "package:10",
		Status:     status,
		Payment:    domain.PaymentInfo{TotalPrice: 12_000_000, TotalPaid: 4_000_000},
	}
	env.repo.schedules[id] = s
	return s
}

func TestGetByID(t *testing.T) {
	env := newTestEnv()
	seedSchedule(env, 1, domain.StatusConfirmed)

	resp, err := env.service.GetByID(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(1), resp.ID)
	assert.Equal(t, string(domain.StatusConfirmed), resp.Status)
	assert.Equal(t, int64(8_000_000), resp.Payment.RemainingBalance)

	_, err = env.service.GetByID(context.Background(), 99)
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}

func TestGetUserSchedules(t *testing.T) {
	env := newTestEnv()
	seedSchedule(env, 1, domain.StatusConfirmed)
	env.users.users[1] = &userservice.User{ID: 1, FullName: "Нгуен Тхи Лан"}

	result, err := env.service.GetUserSchedules(context.Background(), &models.GetUserSchedulesRequest{UserID: 1})
	require.NoError(t, err)
	require.Len(t, result, 1)
	require.NotNil(t, result[0].UserName)
	assert.Equal(t, "Нгуен Тхи Лан", *result[0].UserName)

	_, err = env.service.GetUserSchedules(context.Background(), &models.GetUserSchedulesRequest{UserID: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	bad := "unknown"
	_, err = env.service.GetUserSchedules(context.Background(), &models.GetUserSchedulesRequest{UserID: 1, Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestGetUserSchedules_DirectoryUnavailable(t *testing.T) {
	env := newTestEnv()
	seedSchedule(env, 1, domain.StatusConfirmed)

	// Справочник пользователя не знает: выдача не падает, имя остаётся пустым
	result, err := env.service.GetUserSchedules(context.Background(), &models.GetUserSchedulesRequest{UserID: 1})
	require.NoError(t, err)
	require.Len(t, result, 1)
	assert.Nil(t, result[0].UserName)
}

func TestUpdateStatus_HappyPath(t *testing.T) {
	env := newTestEnv()
	seedSchedule(env, 1, domain.StatusConfirmed)

	resp, err := env.service.UpdateStatus(context.Background(), 1,
		&models.UpdateStatusRequest{ActorID: 7, Status: "checkedin"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCheckedIn), resp.Status)

	// Полный проход по жизненному циклу
	_, err = env.service.UpdateStatus(context.Background(), 1,
		&models.UpdateStatusRequest{ActorID: 7, Status: "serving"})
	require.NoError(t, err)

	resp, err = env.service.UpdateStatus(context.Background(), 1,
		&models.UpdateStatusRequest{ActorID: 7, Status: "completed"})
	require.NoError(t, err)
	assert.Equal(t, string(domain.StatusCompleted), resp.Status)
}

func TestUpdateStatus_InvalidTransitionLeavesStatusUnchanged(t *testing.T) {
	env := newTestEnv()
	seedSchedule(env, 1, domain.StatusCompleted)

	// Откат завершённой записи обратно в checkedin запрещён
	_, err := env.service.UpdateStatus(context.Background(), 1,
		&models.UpdateStatusRequest{ActorID: 7, Status: "checkedin"})
	assert.ErrorIs(t, err, ErrInvalidTransition)

	assert.Equal(t, domain.StatusCompleted, env.repo.schedules[1].Status)
}

func TestUpdateStatus_SkippingStatesRejected(t *testing.T) {
	env := newTestEnv()
	seedSchedule(env, 1, domain.StatusConfirmed)

	// confirmed -> serving перепрыгивает checkedin
	_, err := env.service.UpdateStatus(context.Background(), 1,
		&models.UpdateStatusRequest{ActorID: 7, Status: "serving"})
	assert.ErrorIs(t, err, ErrInvalidTransition)
	assert.Equal(t, domain.StatusConfirmed, env.repo.schedules[1].Status)
}

func TestUpdateStatus_CancellationGoesThroughCancel(t *testing.T) {
	env := newTestEnv()
	seedSchedule(env, 1, domain.StatusConfirmed)

	_, err := env.service.UpdateStatus(context.Background(), 1,
		&models.UpdateStatusRequest{ActorID: 7, Status: "cancelled"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestUpdateStatus_NotFoundAndInvalidStatus(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.UpdateStatus(context.Background(), 99,
		&models.UpdateStatusRequest{ActorID: 7, Status: "checkedin"})
	assert.ErrorIs(t, err, ErrScheduleNotFound)

	seedSchedule(env, 1, domain.StatusConfirmed)
	_, err = env.service.UpdateStatus(context.Background(), 1,
		&models.UpdateStatusRequest{ActorID: 7, Status: "nonsense"})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestCancel(t *testing.T) {
	env := newTestEnv()
	seedSchedule(env, 1, domain.StatusCheckedIn)

	resp, err := env.service.Cancel(context.Background(), 1,
		&models.CancelScheduleRequest{ActorID: 7, Reason: "пациент не придёт"})
	require.NoError(t, err)

	assert.Equal(t, string(domain.StatusCancelled), resp.Status)
	require.NotNil(t, resp.CancellationReason)
	assert.Equal(t, "пациент не придёт", *resp.CancellationReason)
	assert.NotNil(t, resp.CancelledAt)
}

func TestCancel_OnlyFromEarlyStatuses(t *testing.T) {
	env := newTestEnv()

	for id, status := range map[int64]domain.ScheduleStatus{
		1: domain.StatusServing,
		2: domain.StatusCompleted,
		3: domain.StatusCancelled,
	} {
		seedSchedule(env, id, status)
		_, err := env.service.Cancel(context.Background(), id,
			&models.CancelScheduleRequest{ActorID: 7})
		assert.ErrorIs(t, err, ErrInvalidTransition, "status %s", status)
		assert.Equal(t, status, env.repo.schedules[id].Status)
	}
}

func TestGetPayment_StoredPrice(t *testing.T) {
	env := newTestEnv()
	seedSchedule(env, 1, domain.StatusConfirmed)

	view, err := env.service.GetPayment(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(12_000_000), view.TotalPrice)
	assert.Equal(t, int64(4_000_000), view.TotalPaid)
	assert.Equal(t, int64(8_000_000), view.RemainingBalance)
	assert.False(t, view.IsFullyPaid)
	assert.False(t, view.PriceResolved)
}

func TestGetPayment_ResolvesPackagePrice(t *testing.T) {
	env := newTestEnv()
	s := seedSchedule(env, 1, domain.StatusConfirmed)
	s.Payment = domain.PaymentInfo{TotalPaid: 1_000_000}

	env.catalog.packages[10] = &catalogservice.ConsultationPackage{ID: 10, Price: 9_000_000}

	view, err := env.service.GetPayment(context.Background(), 1)
	require.NoError(t, err)

	assert.Equal(t, int64(9_000_000), view.TotalPrice)
	assert.Equal(t, int64(8_000_000), view.RemainingBalance)
	assert.True(t, view.PriceResolved)
}

func TestGetPayment_ResolvesServicesPrice(t *testing.T) {
	env := newTestEnv()
	s := seedSchedule(env, 1, domain.StatusConfirmed)
	s.Type = domain.TypeServices
	s.PackageID = nil
	s.Services = []domain.ServiceRef{{ServiceID: 101}, {ServiceID: 102}}
	s.Payment = domain.PaymentInfo{}

	env.catalog.services[101] = &catalogservice.Service{ID: 101, Price: 500_000}
	env.catalog.services[102] = &catalogservice.Service{ID: 102, Price: 300_000}

	view, err := env.service.GetPayment(context.Background(), 1)
	require.NoError(t, err)
	assert.Equal(t, int64(800_000), view.TotalPrice)
	assert.True(t, view.PriceResolved)
}

func TestGetPayment_UnresolvablePriceIsNotZero(t *testing.T) {
	env := newTestEnv()
	s := seedSchedule(env, 1, domain.StatusConfirmed)
	s.Payment = domain.PaymentInfo{}

	// Каталог недоступен: неизвестная цена не превращается в бесплатную
	env.catalog.packageErr = assert.AnError

	_, err := env.service.GetPayment(context.Background(), 1)
	assert.ErrorIs(t, err, ErrPriceUnavailable)
}

func TestRecordPayment(t *testing.T) {
	env := newTestEnv()
	seedSchedule(env, 1, domain.StatusConfirmed)

	err := env.service.RecordPayment(context.Background(), 1, &models.RecordPaymentRequest{Amount: 3_000_000})
	require.NoError(t, err)
	assert.Equal(t, int64(7_000_000), env.repo.schedules[1].Payment.TotalPaid)

	err = env.service.RecordPayment(context.Background(), 1, &models.RecordPaymentRequest{Amount: 0})
	assert.ErrorIs(t, err, ErrInvalidInput)

	err = env.service.RecordPayment(context.Background(), 99, &models.RecordPaymentRequest{Amount: 100})
	assert.ErrorIs(t, err, ErrScheduleNotFound)
}

func TestList_Pagination(t *testing.T) {
	env := newTestEnv()
	env.repo.listResult = []*domain.Schedule{seedSchedule(env, 1, domain.StatusConfirmed)}
	env.repo.listTotal = 45

	resp, err := env.service.List(context.Background(), &models.ListSchedulesRequest{Page: 2, Limit: 20})
	require.NoError(t, err)

	assert.Equal(t, 45, resp.Pagination.Total)
	assert.Equal(t, 2, resp.Pagination.Page)
	assert.Equal(t, 20, resp.Pagination.Limit)
	assert.Equal(t, 3, resp.Pagination.TotalPages)
	assert.Len(t, resp.Data, 1)
}

func TestList_LimitCapped(t *testing.T) {
	env := newTestEnv()

	_, err := env.service.List(context.Background(), &models.ListSchedulesRequest{Page: 1, Limit: 1000})
	require.NoError(t, err)
	assert.Equal(t, domain.MaxPageLimit, env.repo.gotFilter.Limit)
}

func TestList_FreeTextResolution(t *testing.T) {
	env := newTestEnv()
	env.users.searchResult = []int64{1, 2}
	env.catalog.searchResult = []int64{10}

	_, err := env.service.List(context.Background(), &models.ListSchedulesRequest{Query: "Нгуен", Page: 1, Limit: 20})
	require.NoError(t, err)

	assert.Equal(t, []int64{1, 2}, env.repo.gotFilter.MatchUserIDs)
	assert.Equal(t, []int64{10}, env.repo.gotFilter.MatchPackageIDs)
}

func TestList_FreeTextNoMatchReturnsEmptyPage(t *testing.T) {
	env := newTestEnv()

	resp, err := env.service.List(context.Background(), &models.ListSchedulesRequest{Query: "нет такого", Page: 1, Limit: 20})
	require.NoError(t, err)

	assert.Empty(t, resp.Data)
	assert.Equal(t, 0, resp.Pagination.Total)
	assert.Equal(t, 0, resp.Pagination.TotalPages)

	// Репозиторий при пустом результате поиска не вызывается
	assert.Nil(t, env.repo.gotFilter.MatchUserIDs)
}

func TestList_SearchDegradationDoesNotFailListing(t *testing.T) {
	env := newTestEnv()
	env.users.searchErr = assert.AnError
	env.catalog.searchResult = []int64{10}

	_, err := env.service.List(context.Background(), &models.ListSchedulesRequest{Query: "пакет", Page: 1, Limit: 20})
	require.NoError(t, err)
	assert.Equal(t, []int64{10}, env.repo.gotFilter.MatchPackageIDs)
}

func TestList_InvalidFilters(t *testing.T) {
	env := newTestEnv()

	bad := "unknown"
	_, err := env.service.List(context.Background(), &models.ListSchedulesRequest{Status: &bad})
	assert.ErrorIs(t, err, ErrInvalidInput)

	badType := "bundle"
	_, err = env.service.List(context.Background(), &models.ListSchedulesRequest{Type: &badType})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = env.service.List(context.Background(), &models.ListSchedulesRequest{SortBy: "price"})
	assert.ErrorIs(t, err, ErrInvalidInput)

	badDate := "07-09-2026"
	_, err = env.service.List(context.Background(), &models.ListSchedulesRequest{FromDate: &badDate})
	assert.ErrorIs(t, err, ErrInvalidInput)
}
