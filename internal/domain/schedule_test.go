package domain

import (
	"testing"

	"github.com/stretchr/testify/assert"

	"github.com/m04kA/MDC-ScheduleService/pkg/ptr"
)

func TestCanTransition(t *testing.T) {
	allowed := []struct {
		from, to ScheduleStatus
	}{
		{StatusConfirmed, StatusCheckedIn},
		{StatusCheckedIn, StatusServing},
		{StatusServing, StatusCompleted},
		{StatusConfirmed, StatusCancelled},
		{StatusCheckedIn, StatusCancelled},
	}

	for _, tc := range allowed {
		assert.True(t, CanTransition(tc.from, tc.to), "%s -> %s must be allowed", tc.from, tc.to)
	}

	statuses := []ScheduleStatus{
		StatusConfirmed, StatusCheckedIn, StatusServing, StatusCompleted, StatusCancelled,
	}

	isAllowed := func(from, to ScheduleStatus) bool {
		for _, tc := range allowed {
			if tc.from == from && tc.to == to {
				return true
			}
		}
		return false
	}

	// Всё, что не перечислено явно, запрещено, включая self-transition
	for _, from := range statuses {
		for _, to := range statuses {
			if isAllowed(from, to) {
				continue
			}
			assert.False(t, CanTransition(from, to), "%s -> %s must be rejected", from, to)
		}
	}
}

func TestCanTransition_TerminalStatesAreFinal(t *testing.T) {
	targets := []ScheduleStatus{
		StatusConfirmed, StatusCheckedIn, StatusServing, StatusCompleted, StatusCancelled,
	}

	for _, to := range targets {
		assert.False(t, CanTransition(StatusCompleted, to))
		assert.False(t, CanTransition(StatusCancelled, to))
	}
}

func TestSchedule_CanBeCancelled(t *testing.T) {
	cases := map[ScheduleStatus]bool{
		StatusConfirmed: true,
		StatusCheckedIn: true,
		StatusServing:   false,
		StatusCompleted: false,
		StatusCancelled: false,
	}

	for status, want := range cases {
		s := &Schedule{Status: status}
		assert.Equal(t, want, s.CanBeCancelled(), "status %s", status)
	}
}

func TestSchedule_IsActive(t *testing.T) {
	// Активна любая не отменённая запись: только отмена освобождает слот
	for _, status := range []ScheduleStatus{StatusConfirmed, StatusCheckedIn, StatusServing, StatusCompleted} {
		s := &Schedule{Status: status}
		assert.True(t, s.IsActive(), "status %s", status)
	}

	cancelled := &Schedule{Status: StatusCancelled}
	assert.False(t, cancelled.IsActive())
}

func TestBookingSignature_Package(t *testing.T) {
	sig := BookingSignature(TypePackage, ptr.Ptr(int64(42)), nil)
	assert.Equal(t, "package:42", sig)
}

func TestBookingSignature_ServicesOrderIndependent(t *testing.T) {
	a := BookingSignature(TypeServices, nil, []ServiceRef{
		{ServiceID: 3}, {ServiceID: 1}, {ServiceID: 2},
	})
	b := BookingSignature(TypeServices, nil, []ServiceRef{
		{ServiceID: 1}, {ServiceID: 2}, {ServiceID: 3},
	})

	assert.Equal(t, "services:1,2,3", a)
	assert.Equal(t, a, b)
}

func TestBookingSignature_DistinguishesContent(t *testing.T) {
	pkg := BookingSignature(TypePackage, ptr.Ptr(int64(1)), nil)
	svc := BookingSignature(TypeServices, nil, []ServiceRef{{ServiceID: 1}})

	assert.NotEqual(t, pkg, svc)

	oneService := BookingSignature(TypeServices, nil, []ServiceRef{{ServiceID: 1}})
	twoServices := BookingSignature(TypeServices, nil, []ServiceRef{{ServiceID: 1}, {ServiceID: 2}})
	assert.NotEqual(t, oneService, twoServices)
}

func TestParseScheduleStatus(t *testing.T) {
	status, err := ParseScheduleStatus("checkedin")
	assert.NoError(t, err)
	assert.Equal(t, StatusCheckedIn, status)

	_, err = ParseScheduleStatus("unknown")
	assert.Error(t, err)
}

func TestParseScheduleType(t *testing.T) {
	scheduleType, err := ParseScheduleType("services")
	assert.NoError(t, err)
	assert.Equal(t, TypeServices, scheduleType)

	_, err = ParseScheduleType("bundle")
	assert.Error(t, err)
}

func TestTimeOffset_IsValid(t *testing.T) {
	assert.True(t, TimeOffsetMorning.IsValid())
	assert.True(t, TimeOffsetAfternoon.IsValid())
	assert.False(t, TimeOffset(2).IsValid())
	assert.False(t, TimeOffset(-1).IsValid())
}

func TestPaymentInfo(t *testing.T) {
	// Частичная оплата
	p := PaymentInfo{TotalPrice: 5_000_000, TotalPaid: 2_000_000}
	assert.Equal(t, int64(3_000_000), p.RemainingBalance())
	assert.False(t, p.IsFullyPaid())
	assert.True(t, p.HasPrice())

	// Переплата не уводит остаток в минус
	over := PaymentInfo{TotalPrice: 1_000_000, TotalPaid: 1_500_000}
	assert.Equal(t, int64(0), over.RemainingBalance())
	assert.True(t, over.IsFullyPaid())

	// Цена не проставлена: это не "бесплатно", её нужно резолвить
	unknown := PaymentInfo{}
	assert.False(t, unknown.HasPrice())
}
