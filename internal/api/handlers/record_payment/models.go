package record_payment

import (
	"github.com/m04kA/MDC-ScheduleService/internal/service/schedules/models"
)

// RecordPaymentRequest HTTP request model
type RecordPaymentRequest struct {
	Amount int64 `json:"amount"` // Сумма в VND, целые единицы
}

// ToServiceRequest конвертирует HTTP запрос в модель сервиса
func (r *RecordPaymentRequest) ToServiceRequest() *models.RecordPaymentRequest {
	return &models.RecordPaymentRequest{
		Amount: r.Amount,
	}
}
