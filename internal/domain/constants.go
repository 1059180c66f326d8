package domain

// Calendar constants
const (
	DaysPerWeek = 7
	SlotsPerDay = 2 // morning + afternoon
)

// Time format constants
const (
	DateFormat = "2006-01-02" // YYYY-MM-DD
)

// Listing defaults
const (
	DefaultPageLimit = 20
	MaxPageLimit     = 100
)

// DefaultMaxSlotPerPeriod is used when a package carries no explicit limit.
const DefaultMaxSlotPerPeriod = 1

// ActiveStatuses список статусов, занимающих слот.
// Используется при подсчёте занятости слотов.
var ActiveStatuses = []ScheduleStatus{
	StatusConfirmed,
	StatusCheckedIn,
	StatusServing,
	StatusCompleted,
}

// SortableFields допустимые поля сортировки для листинга.
var SortableFields = map[string]bool{
	"slot":       true,
	"created_at": true,
}
