package cancel_schedule

import (
	"context"

	"github.com/m04kA/MDC-ScheduleService/internal/service/schedules/models"
)

type ScheduleService interface {
	Cancel(ctx context.Context, scheduleID int64, req *models.CancelScheduleRequest) (*models.ScheduleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
