package userservice

// User модель пациента из UserService (справочник пользователей)
type User struct {
	ID       int64  `json:"id"`
	FullName string `json:"full_name"`
	Phone    string `json:"phone"`
	Email    string `json:"email"`
}

// SearchUsersResponse ответ поиска пользователей по имени/телефону
type SearchUsersResponse struct {
	IDs []int64 `json:"ids"`
}

// ErrorResponse модель ошибки от UserService
type ErrorResponse struct {
	Code    int    `json:"code"`
	Message string `json:"message"`
}
