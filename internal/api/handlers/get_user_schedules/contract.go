package get_user_schedules

import (
	"context"

	"github.com/m04kA/MDC-ScheduleService/internal/service/schedules/models"
)

type ScheduleService interface {
	GetUserSchedules(ctx context.Context, req *models.GetUserSchedulesRequest) ([]*models.ScheduleResponse, error)
}

type Logger interface {
	Info(format string, v ...interface{})
	Warn(format string, v ...interface{})
	Error(format string, v ...interface{})
}
