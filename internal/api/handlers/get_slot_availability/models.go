package get_slot_availability

import (
	"time"

	"github.com/m04kA/MDC-ScheduleService/internal/domain"
	getSlotAvailability "github.com/m04kA/MDC-ScheduleService/internal/usecase/get_slot_availability"
	"github.com/m04kA/MDC-ScheduleService/pkg/types"
)

// SlotAvailabilityResponse HTTP response model
type SlotAvailabilityResponse struct {
	PackageID int64  `json:"packageId"`
	WeekFrom  string `json:"weekFrom"`
	WeekTo    string `json:"weekTo"`
	Slots     []Slot `json:"slots"`
}

// Slot доступность одного слота недели
type Slot struct {
	DayOffset  int    `json:"dayOffset"`
	TimeOffset int    `json:"timeOffset"`
	Date       string `json:"date"`
	Remaining  int    `json:"remaining"`
	Total      int    `json:"total"`
	IsFull     bool   `json:"isFull"`
}

// ToUseCaseRequest создает запрос use case из query параметров
func ToUseCaseRequest(packageID int64, dateStr string) (*getSlotAvailability.Request, error) {
	// Дата интерпретируется как календарный день в зоне клиники
	date, err := types.NewDateFromString(dateStr, domain.ClinicZone)
	if err != nil {
		return nil, err
	}

	return &getSlotAvailability.Request{
		PackageID: packageID,
		Date:      date.Time(),
	}, nil
}

// FromUseCaseResponse конвертирует ответ use case в HTTP response
func FromUseCaseResponse(resp *getSlotAvailability.Response) *SlotAvailabilityResponse {
	slots := make([]Slot, len(resp.Slots))
	for i, slot := range resp.Slots {
		slots[i] = Slot{
			DayOffset:  slot.DayOffset,
			TimeOffset: int(slot.TimeOffset),
			Date:       slot.Date.Format(domain.DateFormat),
			Remaining:  slot.Remaining,
			Total:      slot.Total,
			IsFull:     slot.IsFull(),
		}
	}

	return &SlotAvailabilityResponse{
		PackageID: resp.PackageID,
		WeekFrom:  resp.WeekFrom.Format(time.RFC3339),
		WeekTo:    resp.WeekTo.Format(time.RFC3339),
		Slots:     slots,
	}
}
