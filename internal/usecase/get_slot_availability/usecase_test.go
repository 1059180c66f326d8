package get_slot_availability

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/m04kA/MDC-ScheduleService/internal/domain"
	"github.com/m04kA/MDC-ScheduleService/internal/integrations/catalogservice"
)

type nopLogger struct{}

func (nopLogger) Info(string, ...interface{})  {}
func (nopLogger) Warn(string, ...interface{})  {}
func (nopLogger) Error(string, ...interface{}) {}

type mockScheduleRepo struct {
	counts map[int]int
	err    error

	gotPeriod    domain.WeekPeriod
	gotPackageID int64
}

func (m *mockScheduleRepo) CountActiveByWeekAndPackage(_ context.Context, period domain.WeekPeriod, packageID int64) (map[int]int, error) {
	m.gotPeriod = period
	m.gotPackageID = packageID
	if m.err != nil {
		return nil, m.err
	}
	return m.counts, nil
}

type mockCatalogClient struct {
	pkg *catalogservice.ConsultationPackage
	err error
}

func (m *mockCatalogClient) GetPackage(_ context.Context, _ int64) (*catalogservice.ConsultationPackage, error) {
	if m.err != nil {
		return nil, m.err
	}
	return m.pkg, nil
}

// testDate среда 9 сентября 2026 по времени клиники
var testDate = time.Date(2026, 9, 9, 14, 0, 0, 0, domain.ClinicZone)

func TestExecute_FullWeekGrid(t *testing.T) {
	repo := &mockScheduleRepo{counts: map[int]int{}}
	catalog := &mockCatalogClient{pkg: &catalogservice.ConsultationPackage{ID: 10, MaxSlotPerPeriod: 2}}

	uc := NewUseCase(repo, catalog, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{PackageID: 10, Date: testDate})
	require.NoError(t, err)

	// Всегда полная сетка недели: 7 дней по 2 слота
	require.Len(t, resp.Slots, 14)
	assert.Equal(t, int64(10), resp.PackageID)
	assert.True(t, resp.WeekFrom.Equal(domain.WeekPeriodOf(testDate).From))
	assert.Equal(t, int64(10), repo.gotPackageID)

	for i, slot := range resp.Slots {
		assert.Equal(t, i/2, slot.DayOffset)
		assert.Equal(t, domain.TimeOffset(i%2), slot.TimeOffset)
		assert.Equal(t, 2, slot.Total)
		assert.Equal(t, 2, slot.Remaining)
		assert.False(t, slot.IsFull())
	}

	// Даты слотов идут по дням недели
	assert.Equal(t, 7, resp.Slots[0].Date.Day())
	assert.Equal(t, 13, resp.Slots[13].Date.Day())
}

func TestExecute_OccupancyReducesRemaining(t *testing.T) {
	// Занято: среда утро (2, полностью), четверг после обеда (1)
	repo := &mockScheduleRepo{counts: map[int]int{
		2*10 + 0: 2,
		3*10 + 1: 1,
	}}
	catalog := &mockCatalogClient{pkg: &catalogservice.ConsultationPackage{ID: 10, MaxSlotPerPeriod: 2}}

	uc := NewUseCase(repo, catalog, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{PackageID: 10, Date: testDate})
	require.NoError(t, err)

	slotAt := func(day int, timeOffset domain.TimeOffset) Slot {
		return resp.Slots[day*2+int(timeOffset)]
	}

	assert.Equal(t, 0, slotAt(2, domain.TimeOffsetMorning).Remaining)
	assert.True(t, slotAt(2, domain.TimeOffsetMorning).IsFull())

	assert.Equal(t, 1, slotAt(3, domain.TimeOffsetAfternoon).Remaining)
	assert.Equal(t, 2, slotAt(0, domain.TimeOffsetMorning).Remaining)
}

func TestExecute_OverbookedSlotClampsToZero(t *testing.T) {
	// Лимит пакета уменьшили после создания записей: остаток не уходит в минус
	repo := &mockScheduleRepo{counts: map[int]int{0: 5}}
	catalog := &mockCatalogClient{pkg: &catalogservice.ConsultationPackage{ID: 10, MaxSlotPerPeriod: 1}}

	uc := NewUseCase(repo, catalog, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{PackageID: 10, Date: testDate})
	require.NoError(t, err)

	assert.Equal(t, 0, resp.Slots[0].Remaining)
	assert.True(t, resp.Slots[0].IsFull())
}

func TestExecute_DefaultMaxSlot(t *testing.T) {
	// Пакет без лимита получает дефолтный
	repo := &mockScheduleRepo{counts: map[int]int{}}
	catalog := &mockCatalogClient{pkg: &catalogservice.ConsultationPackage{ID: 10}}

	uc := NewUseCase(repo, catalog, nopLogger{})

	resp, err := uc.Execute(context.Background(), &Request{PackageID: 10, Date: testDate})
	require.NoError(t, err)

	assert.Equal(t, domain.DefaultMaxSlotPerPeriod, resp.Slots[0].Total)
}

func TestExecute_PackageNotFound(t *testing.T) {
	repo := &mockScheduleRepo{counts: map[int]int{}}
	catalog := &mockCatalogClient{err: catalogservice.ErrPackageNotFound}

	uc := NewUseCase(repo, catalog, nopLogger{})

	_, err := uc.Execute(context.Background(), &Request{PackageID: 999, Date: testDate})
	assert.ErrorIs(t, err, ErrPackageNotFound)
}

func TestExecute_InvalidInput(t *testing.T) {
	uc := NewUseCase(&mockScheduleRepo{}, &mockCatalogClient{}, nopLogger{})

	_, err := uc.Execute(context.Background(), &Request{PackageID: 0, Date: testDate})
	assert.ErrorIs(t, err, ErrInvalidInput)

	_, err = uc.Execute(context.Background(), &Request{PackageID: 10})
	assert.ErrorIs(t, err, ErrInvalidInput)
}

func TestExecute_RepositoryError(t *testing.T) {
	repo := &mockScheduleRepo{err: assert.AnError}
	catalog := &mockCatalogClient{pkg: &catalogservice.ConsultationPackage{ID: 10, MaxSlotPerPeriod: 1}}

	uc := NewUseCase(repo, catalog, nopLogger{})

	_, err := uc.Execute(context.Background(), &Request{PackageID: 10, Date: testDate})
	assert.ErrorIs(t, err, ErrInternal)
}
