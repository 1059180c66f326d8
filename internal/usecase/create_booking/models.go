package create_booking

import (
	"time"

	"github.com/m04kA/MDC-ScheduleService/internal/domain"
)

// Request модель запроса на создание записи
type Request struct {
	UserID         int64             // ID пациента
	Date           time.Time         // Дата приёма (календарный день в зоне клиники)
	TimeOffset     domain.TimeOffset // 0 = утро, 1 = после обеда
	Type           domain.ScheduleType
	PackageID      *int64  // Для type = "package"
	ServiceIDs     []int64 // Для type = "services", упорядоченный непустой список
	Notes          *string // Дополнительные заметки (опционально)
	IdempotencyKey string  // Ключ идемпотентности (опционально, для безопасных ретраев)
}

// Response модель ответа с созданной записью
type Response struct {
	ID         int64
	UserID     int64
	WeekFrom   time.Time
	WeekTo     time.Time
	DayOffset  int
	TimeOffset domain.TimeOffset

	Type       domain.ScheduleType
	PackageID  *int64
	Services   []domain.ServiceRef
	Status     string

	TotalPrice int64
	TotalPaid  int64

	PackageName *string
	Notes       *string

	// Replayed = true, если запись воспроизведена по ключу идемпотентности,
	// а не создана этим запросом
	Replayed bool

	CreatedAt time.Time
	UpdatedAt time.Time
}

// fromDomain конвертирует доменную запись в ответ usecase
func fromDomain(s *domain.Schedule, replayed bool) *Response {
	return &Response{
		ID:          s.ID,
		UserID:      s.UserID,
		WeekFrom:    s.Period.From,
		WeekTo:      s.Period.To,
		DayOffset:   s.DayOffset,
		TimeOffset:  s.TimeOffset,
		Type:        s.Type,
		PackageID:   s.PackageID,
		Services:    s.Services,
		Status:      string(s.Status),
		TotalPrice:  s.Payment.TotalPrice,
		TotalPaid:   s.Payment.TotalPaid,
		PackageName: s.PackageName,
		Notes:       s.Notes,
		Replayed:    replayed,
		CreatedAt:   s.CreatedAt,
		UpdatedAt:   s.UpdatedAt,
	}
}
