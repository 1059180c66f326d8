package create_schedule

import (
	"time"

	"github.com/m04kA/MDC-ScheduleService/internal/domain"
	createBooking "github.com/m04kA/MDC-ScheduleService/internal/usecase/create_booking"
	"github.com/m04kA/MDC-ScheduleService/pkg/types"
)

// CreateScheduleRequest HTTP request model
type CreateScheduleRequest struct {
	UserID     int64   `json:"userId"`
	Date       string  `json:"date"`       // "2026-09-07"
	TimeOffset int     `json:"timeOffset"` // 0 = утро, 1 = после обеда
	Type       string  `json:"type"`       // "package" | "services"
	PackageID  *int64  `json:"packageId,omitempty"`
	ServiceIDs []int64 `json:"serviceIds,omitempty"`
	Notes      *string `json:"notes,omitempty"`
}

// ScheduleResponse HTTP response model
type ScheduleResponse struct {
	ID         int64               `json:"id"`
	UserID     int64               `json:"userId"`
	WeekFrom   string              `json:"weekFrom"`
	WeekTo     string              `json:"weekTo"`
	DayOffset  int                 `json:"dayOffset"`
	TimeOffset int                 `json:"timeOffset"`
	Type       string              `json:"type"`
	PackageID  *int64              `json:"packageId,omitempty"`
	Services   []domain.ServiceRef `json:"services,omitempty"`
	Status     string              `json:"status"`

	TotalPrice int64 `json:"totalPrice"`
	TotalPaid  int64 `json:"totalPaid"`

	PackageName *string `json:"packageName,omitempty"`
	Notes       *string `json:"notes,omitempty"`

	Replayed bool `json:"replayed,omitempty"`

	CreatedAt string `json:"createdAt"`
	UpdatedAt string `json:"updatedAt"`
}

// ToUseCaseRequest конвертирует HTTP запрос в модель use case
func (r *CreateScheduleRequest) ToUseCaseRequest(idempotencyKey string) (*createBooking.Request, error) {
	// Дата интерпретируется как календарный день в зоне клиники
	date, err := types.NewDateFromString(r.Date, domain.ClinicZone)
	if err != nil {
		return nil, err
	}

	scheduleType, err := domain.ParseScheduleType(r.Type)
	if err != nil {
		return nil, err
	}

	return &createBooking.Request{
		UserID:         r.UserID,
		Date:           date.Time(),
		TimeOffset:     domain.TimeOffset(r.TimeOffset),
		Type:           scheduleType,
		PackageID:      r.PackageID,
		ServiceIDs:     r.ServiceIDs,
		Notes:          r.Notes,
		IdempotencyKey: idempotencyKey,
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *createBooking.Response) *ScheduleResponse {
	return &ScheduleResponse{
		ID:          resp.ID,
		UserID:      resp.UserID,
		WeekFrom:    resp.WeekFrom.Format(time.RFC3339),
		WeekTo:      resp.WeekTo.Format(time.RFC3339),
		DayOffset:   resp.DayOffset,
		TimeOffset:  int(resp.TimeOffset),
		Type:        string(resp.Type),
		PackageID:   resp.PackageID,
		Services:    resp.Services,
		Status:      resp.Status,
		TotalPrice:  resp.TotalPrice,
		TotalPaid:   resp.TotalPaid,
		PackageName: resp.PackageName,
		Notes:       resp.Notes,
		Replayed:    resp.Replayed,
		CreatedAt:   resp.CreatedAt.Format(time.RFC3339),
		UpdatedAt:   resp.UpdatedAt.Format(time.RFC3339),
	}
}
