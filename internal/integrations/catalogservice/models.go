package catalogservice

// ConsultationPackage модель пакета обследования из CatalogService.
// MaxSlotPerPeriod задаёт лимит одновременных бронирований пакета
// на один ключ слота (читается, но не принадлежит этому сервису).
type ConsultationPackage struct {
	ID               int64  `json:"id"`
	Name             string `json:"name"`
	Price            int64  `json:"price"` // VND
	MaxSlotPerPeriod int    `json:"max_slot_per_period"`
	DurationDays     int    `json:"duration_days"`
	IsActive         bool   `json:"is_active"`
}

// Service модель отдельной услуги из CatalogService
type Service struct {
	ID       int64  `json:"id"`
	Name     string `json:"name"`
	Price    int64  `json:"price"` // VND
	IsActive bool   `json:"is_active"`
}

// SearchPackagesResponse ответ поиска пакетов по названию
type SearchPackagesResponse struct {
	IDs []int64 `json:"ids"`
}

// ErrorResponse модель ошибки от CatalogService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
