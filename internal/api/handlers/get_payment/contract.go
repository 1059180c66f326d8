package get_payment

import (
	"context"

	"github.com/m04kA/MDC-ScheduleService/internal/service/schedules/models"
)

type ScheduleService interface {
	GetPayment(ctx context.Context, scheduleID int64) (*models.PaymentView, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
