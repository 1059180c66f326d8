package create_booking

import (
	"fmt"
	"time"

	"github.com/m04kA/MDC-ScheduleService/internal/domain"
)

// validateRequest валидирует входные данные запроса.
// Выполняется до любого обращения к хранилищу и внешним сервисам.
func validateRequest(req *Request) error {
	if req.UserID <= 0 {
		return fmt.Errorf("%w: userID must be positive", ErrInvalidInput)
	}

	if req.Date.IsZero() {
		return fmt.Errorf("%w: date is required", ErrInvalidInput)
	}

	if !req.TimeOffset.IsValid() {
		return fmt.Errorf("%w: timeOffset must be 0 (morning) or 1 (afternoon)", ErrInvalidInput)
	}

	switch req.Type {
	case domain.TypePackage:
		if req.PackageID == nil || *req.PackageID <= 0 {
			return fmt.Errorf("%w: packageId is required for package booking", ErrInvalidInput)
		}
		if len(req.ServiceIDs) > 0 {
			return fmt.Errorf("%w: serviceIds are not allowed for package booking", ErrInvalidInput)
		}
	case domain.TypeServices:
		if len(req.ServiceIDs) == 0 {
			return fmt.Errorf("%w: serviceIds must be a non-empty list for services booking", ErrInvalidInput)
		}
		for _, id := range req.ServiceIDs {
			if id <= 0 {
				return fmt.Errorf("%w: serviceIds must be positive", ErrInvalidInput)
			}
		}
		if req.PackageID != nil {
			return fmt.Errorf("%w: packageId is not allowed for services booking", ErrInvalidInput)
		}
	default:
		return fmt.Errorf("%w: type must be %q or %q", ErrInvalidInput, domain.TypePackage, domain.TypeServices)
	}

	return nil
}

// validateDate проверяет, что дата приёма не в прошлом
// (сравнение календарных дней в зоне клиники)
func validateDate(date, now time.Time) error {
	dateDay := startOfDay(date)
	nowDay := startOfDay(now)
	if dateDay.Before(nowDay) {
		return ErrInvalidDate
	}
	return nil
}

// startOfDay обнуляет время в зоне клиники
func startOfDay(t time.Time) time.Time {
	local := t.In(domain.ClinicZone)
	return time.Date(local.Year(), local.Month(), local.Day(), 0, 0, 0, 0, domain.ClinicZone)
}
