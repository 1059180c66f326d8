package domain

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// ScheduleStatus represents the lifecycle state of a schedule.
type ScheduleStatus string

const (
	StatusConfirmed ScheduleStatus = "confirmed"
	StatusCheckedIn ScheduleStatus = "checkedin"
	StatusServing   ScheduleStatus = "serving"
	StatusCompleted ScheduleStatus = "completed"
	StatusCancelled ScheduleStatus = "cancelled"
)

// ScheduleType discriminates what a schedule books: a consultation package
// or an explicit list of services.
type ScheduleType string

const (
	TypePackage  ScheduleType = "package"
	TypeServices ScheduleType = "services"
)

// ServiceRef is one booked service, optionally annotated with a sub-status
// (e.g. a lab service marked done while the visit is still in progress).
type ServiceRef struct {
	ServiceID int64   `json:"serviceId"`
	Status    *string `json:"status,omitempty"`
}

// TimeOffset selects the half of a day: 0 = morning, 1 = afternoon.
type TimeOffset int

const (
	TimeOffsetMorning   TimeOffset = 0
	TimeOffsetAfternoon TimeOffset = 1
)

// IsValid reports whether the offset is morning or afternoon.
func (t TimeOffset) IsValid() bool {
	return t == TimeOffsetMorning || t == TimeOffsetAfternoon
}

// String returns a human-readable label.
func (t TimeOffset) String() string {
	if t == TimeOffsetAfternoon {
		return "afternoon"
	}
	return "morning"
}

// SlotKey is the composite identity of a bookable unit.
// A schedule is bound to exactly one slot key for its lifetime.
type SlotKey struct {
	Period     WeekPeriod
	DayOffset  int
	TimeOffset TimeOffset
}

// SlotKeyOf derives the slot key for an instant and a half-day selector.
func SlotKeyOf(t time.Time, timeOffset TimeOffset) SlotKey {
	return SlotKey{
		Period:     WeekPeriodOf(t),
		DayOffset:  DayOffsetOf(t),
		TimeOffset: timeOffset,
	}
}

// IsValid reports whether all slot key components are in range.
func (k SlotKey) IsValid() bool {
	return k.Period.IsValid() && k.DayOffset >= 0 && k.DayOffset < DaysPerWeek && k.TimeOffset.IsValid()
}

// DayStart returns the start of the slot's calendar day in ClinicZone.
func (k SlotKey) DayStart() time.Time {
	return k.Period.DayStart(k.DayOffset)
}

// Schedule is the central entity: one booked appointment bound to a slot key.
type Schedule struct {
	ID         int64
	UserID     int64
	Period     WeekPeriod
	DayOffset  int
	TimeOffset TimeOffset

	Type      ScheduleType
	PackageID *int64       // set for TypePackage
	Services  []ServiceRef // set for TypeServices, ordered, non-empty
	Signature string       // canonical booking signature, immutable

	Status  ScheduleStatus
	Payment PaymentInfo

	// Denormalized data for history
	PackageName *string
	Notes       *string

	CancellationReason *string
	CancelledAt        *time.Time

	CreatedAt time.Time
	UpdatedAt time.Time
}

// SlotKey returns the slot key the schedule is bound to.
func (s *Schedule) SlotKey() SlotKey {
	return SlotKey{Period: s.Period, DayOffset: s.DayOffset, TimeOffset: s.TimeOffset}
}

// IsActive reports whether the schedule still occupies its slot.
// Cancelled schedules do not count against capacity and do not block re-booking.
func (s *Schedule) IsActive() bool {
	return s.Status != StatusCancelled
}

// IsTerminal reports whether the schedule accepts no further transitions.
func (s *Schedule) IsTerminal() bool {
	return s.Status == StatusCompleted || s.Status == StatusCancelled
}

// CanBeCancelled reports whether cancellation is allowed from the current state.
func (s *Schedule) CanBeCancelled() bool {
	return s.Status == StatusConfirmed || s.Status == StatusCheckedIn
}

// validTransitionSources lists, per target state, the states it may be
// entered from. Everything else is an invalid transition.
var validTransitionSources = map[ScheduleStatus][]ScheduleStatus{
	StatusCheckedIn: {StatusConfirmed},
	StatusServing:   {StatusCheckedIn},
	StatusCompleted: {StatusServing},
	StatusCancelled: {StatusConfirmed, StatusCheckedIn},
}

// CanTransition reports whether from -> to is a permitted lifecycle transition.
func CanTransition(from, to ScheduleStatus) bool {
	for _, src := range validTransitionSources[to] {
		if src == from {
			return true
		}
	}
	return false
}

// ParseScheduleStatus validates a raw status string.
func ParseScheduleStatus(s string) (ScheduleStatus, error) {
	switch ScheduleStatus(s) {
	case StatusConfirmed, StatusCheckedIn, StatusServing, StatusCompleted, StatusCancelled:
		return ScheduleStatus(s), nil
	default:
		return "", fmt.Errorf("unknown schedule status %q", s)
	}
}

// ParseScheduleType validates a raw type string.
func ParseScheduleType(s string) (ScheduleType, error) {
	switch ScheduleType(s) {
	case TypePackage, TypeServices:
		return ScheduleType(s), nil
	default:
		return "", fmt.Errorf("unknown schedule type %q", s)
	}
}

// BookingSignature builds the canonical signature of a booking's content.
// Together with (userID, slot key) it identifies a duplicate booking.
// Service ids are sorted so the signature does not depend on request order.
func BookingSignature(scheduleType ScheduleType, packageID *int64, services []ServiceRef) string {
	if scheduleType == TypePackage {
		id := int64(0)
		if packageID != nil {
			id = *packageID
		}
		return fmt.Sprintf("package:%d", id)
	}

	ids := make([]int64, 0, len(services))
	for _, svc := range services {
		ids = append(ids, svc.ServiceID)
	}
	sort.Slice(ids, func(i, j int) bool { return ids[i] < ids[j] })

	parts := make([]string, len(ids))
	for i, id := range ids {
		parts[i] = fmt.Sprintf("%d", id)
	}
	return "services:" + strings.Join(parts, ",")
}

// ScheduleFilter is the listing filter for administrative and patient views.
type ScheduleFilter struct {
	UserID    *int64
	Status    *ScheduleStatus
	Type      *ScheduleType
	PackageID *int64

	// Resolved free-text matches: user ids from the user directory and
	// package ids from the catalog. A row matches when it belongs to any
	// of the users OR any of the packages.
	MatchUserIDs    []int64
	MatchPackageIDs []int64

	// Slot range filter (by week period start).
	FromDate *time.Time
	ToDate   *time.Time

	IncludeCancelled bool

	SortBy  string // "slot" | "created_at"
	SortDir string // "asc" | "desc"

	Page  int
	Limit int
}
