package list_schedules

import (
	"net/url"
	"strconv"

	"github.com/m04kA/MDC-ScheduleService/internal/domain"
	"github.com/m04kA/MDC-ScheduleService/internal/service/schedules/models"
)

// ToServiceRequest формирует запрос к сервису из query параметров
func ToServiceRequest(query url.Values) (*models.ListSchedulesRequest, error) {
	req := &models.ListSchedulesRequest{
		Query:   query.Get("q"),
		SortBy:  query.Get("sortBy"),
		SortDir: query.Get("sortDir"),
		Page:    1,
		Limit:   domain.DefaultPageLimit,
	}

	if s := query.Get("status"); s != "" {
		req.Status = &s
	}
	if t := query.Get("type"); t != "" {
		req.Type = &t
	}

	if s := query.Get("userId"); s != "" {
		userID, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		req.UserID = &userID
	}
	if s := query.Get("packageId"); s != "" {
		packageID, err := strconv.ParseInt(s, 10, 64)
		if err != nil {
			return nil, err
		}
		req.PackageID = &packageID
	}

	if s := query.Get("fromDate"); s != "" {
		req.FromDate = &s
	}
	if s := query.Get("toDate"); s != "" {
		req.ToDate = &s
	}

	if s := query.Get("includeCancelled"); s != "" {
		includeCancelled, err := strconv.ParseBool(s)
		if err != nil {
			return nil, err
		}
		req.IncludeCancelled = includeCancelled
	}

	if s := query.Get("page"); s != "" {
		page, err := strconv.Atoi(s)
		if err != nil || page <= 0 {
			return nil, strconv.ErrRange
		}
		req.Page = page
	}
	if s := query.Get("limit"); s != "" {
		limit, err := strconv.Atoi(s)
		if err != nil || limit <= 0 {
			return nil, strconv.ErrRange
		}
		req.Limit = limit
	}

	return req, nil
}
