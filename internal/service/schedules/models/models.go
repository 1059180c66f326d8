package models

import (
	"errors"
	"math"
	"time"

	"github.com/m04kA/MDC-ScheduleService/internal/domain"
)

var (
	// ErrInvalidStatus возвращается при некорректном статусе
	ErrInvalidStatus = errors.New("invalid schedule status")
)

// Request модели

// GetUserSchedulesRequest запрос на получение записей пользователя
type GetUserSchedulesRequest struct {
	UserID int64   `json:"userId"`
	Status *string `json:"status,omitempty"`
}

// ListSchedulesRequest запрос листинга записей с фильтрацией
type ListSchedulesRequest struct {
	Status           *string `json:"status,omitempty"`
	Type             *string `json:"type,omitempty"`
	UserID           *int64  `json:"userId,omitempty"`
	PackageID        *int64  `json:"packageId,omitempty"`
	Query            string  `json:"q,omitempty"` // Свободный текст: имя пациента или название пакета
	FromDate         *string `json:"fromDate,omitempty"`
	ToDate           *string `json:"toDate,omitempty"`
	IncludeCancelled bool    `json:"includeCancelled,omitempty"`
	SortBy           string  `json:"sortBy,omitempty"`  // "slot" | "created_at"
	SortDir          string  `json:"sortDir,omitempty"` // "asc" | "desc"
	Page             int     `json:"page,omitempty"`
	Limit            int     `json:"limit,omitempty"`
}

// UpdateStatusRequest запрос на переход статуса записи
type UpdateStatusRequest struct {
	ActorID int64  `json:"actorId"`
	Status  string `json:"status"`
}

// CancelScheduleRequest запрос на отмену записи
type CancelScheduleRequest struct {
	ActorID int64  `json:"actorId"`
	Reason  string `json:"reason"`
}

// RecordPaymentRequest запрос на фиксацию оплаты
type RecordPaymentRequest struct {
	Amount int64 `json:"amount"`
}

// Response модели

// PaymentView представление платежного состояния записи
type PaymentView struct {
	TotalPrice       int64 `json:"totalPrice"`
	TotalPaid        int64 `json:"totalPaid"`
	RemainingBalance int64 `json:"remainingBalance"`
	IsFullyPaid      bool  `json:"isFullyPaid"`

	// PriceResolved = true, если цена получена из каталога,
	// потому что на записи она ещё не проставлена
	PriceResolved bool `json:"priceResolved,omitempty"`
}

// ScheduleResponse представление записи расписания
type ScheduleResponse struct {
	ID     int64 `json:"id"`
	UserID int64 `json:"userId"`

	// UserName имя пациента из справочника пользователей.
	// Заполняется best effort, при недоступности справочника пусто.
	UserName *string `json:"userName,omitempty"`

	WeekFrom   time.Time           `json:"weekFrom"`
	WeekTo     time.Time           `json:"weekTo"`
	DayOffset  int                 `json:"dayOffset"`
	TimeOffset int                 `json:"timeOffset"`
	Type       string              `json:"type"`
	PackageID  *int64              `json:"packageId,omitempty"`
	Services   []domain.ServiceRef `json:"services,omitempty"`
	Status     string              `json:"status"`

	Payment PaymentView `json:"payment"`

	PackageName        *string    `json:"packageName,omitempty"`
	Notes              *string    `json:"notes,omitempty"`
	CancellationReason *string    `json:"cancellationReason,omitempty"`
	CancelledAt        *time.Time `json:"cancelledAt,omitempty"`

	CreatedAt time.Time `json:"createdAt"`
	UpdatedAt time.Time `json:"updatedAt"`
}

// Pagination метаданные пагинации листинга
type Pagination struct {
	Total      int `json:"total"`
	Page       int `json:"page"`
	Limit      int `json:"limit"`
	TotalPages int `json:"totalPages"`
}

// NewPagination вычисляет метаданные пагинации
func NewPagination(page, limit, total int) Pagination {
	if limit <= 0 {
		limit = domain.DefaultPageLimit
	}
	if page <= 0 {
		page = 1
	}
	totalPages := int(math.Ceil(float64(total) / float64(limit)))
	return Pagination{Total: total, Page: page, Limit: limit, TotalPages: totalPages}
}

// ScheduleListResponse страница записей с пагинацией
type ScheduleListResponse struct {
	Data       []*ScheduleResponse `json:"data"`
	Pagination Pagination          `json:"pagination"`
}

// Конвертация

// ToDomainScheduleStatus валидирует и конвертирует строковый статус
func ToDomainScheduleStatus(s string) (domain.ScheduleStatus, error) {
	status, err := domain.ParseScheduleStatus(s)
	if err != nil {
		return "", ErrInvalidStatus
	}
	return status, nil
}

// FromDomainSchedule конвертирует доменную запись в response
func FromDomainSchedule(s *domain.Schedule) *ScheduleResponse {
	return &ScheduleResponse{
		ID:                 s.ID,
		UserID:             s.UserID,
		WeekFrom:           s.Period.From,
		WeekTo:             s.Period.To,
		DayOffset:          s.DayOffset,
		TimeOffset:         int(s.TimeOffset),
		Type:               string(s.Type),
		PackageID:          s.PackageID,
		Services:           s.Services,
		Status:             string(s.Status),
		Payment:            FromDomainPayment(s.Payment, false),
		PackageName:        s.PackageName,
		Notes:              s.Notes,
		CancellationReason: s.CancellationReason,
		CancelledAt:        s.CancelledAt,
		CreatedAt:          s.CreatedAt,
		UpdatedAt:          s.UpdatedAt,
	}
}

// FromDomainPayment конвертирует платежное состояние в представление
func FromDomainPayment(p domain.PaymentInfo, priceResolved bool) PaymentView {
	return PaymentView{
		TotalPrice:       p.TotalPrice,
		TotalPaid:        p.TotalPaid,
		RemainingBalance: p.RemainingBalance(),
		IsFullyPaid:      p.IsFullyPaid(),
		PriceResolved:    priceResolved,
	}
}

// FromDomainScheduleList конвертирует список записей
func FromDomainScheduleList(schedules []*domain.Schedule) []*ScheduleResponse {
	result := make([]*ScheduleResponse, len(schedules))
	for i, s := range schedules {
		result[i] = FromDomainSchedule(s)
	}
	return result
}
