// Package models содержит доменные структуры пользователя,
// а также вспомогательные типы для приёма данных из JSON-запросов
// и формирования ответов API.
package models

import "time"

// Статусы пользователя.
const (
	StatusDisabled = 0
	StatusEnabled  = 1
)

// User представляет пользователя системы, как он хранится в базе данных.
// Поля RealName и Phone необязательны, nil означает отсутствие значения.
type User struct {
	ID           int64     // Уникальный идентификатор пользователя
	Username     string    // Имя пользователя (уникальное)
	Email        string    // Электронная почта (уникальная)
	PasswordHash string    // Хэш пароля пользователя
	RealName     *string   // Настоящее имя
	Phone        *string   // Номер телефона
	Status       int       // Статус: 0 - отключен, 1 - активен
	CreatedAt    time.Time // Дата создания записи
	UpdatedAt    time.Time // Дата последнего изменения
}

// CreateUserRequest используется для приёма данных из JSON-запроса на создание пользователя.
type CreateUserRequest struct {
	Username string  `json:"username" validate:"required,min=3,max=50"` // Имя пользователя, 3-50 символов
	Email    string  `json:"email" validate:"required,email"`           // Электронная почта
	Password string  `json:"password" validate:"required,min=6"`        // Пароль, минимум 6 символов
	RealName *string `json:"realName,omitempty"`                        // Настоящее имя (необязательно)
	Phone    *string `json:"phone,omitempty"`                           // Телефон (необязательно)
}

// UpdateUserRequest используется для частичного обновления пользователя.
// Все поля опциональны: nil означает "не менять".
type UpdateUserRequest struct {
	Email    *string `json:"email,omitempty" validate:"omitempty,email"`      // Новая электронная почта
	RealName *string `json:"realName,omitempty"`                              // Новое настоящее имя
	Phone    *string `json:"phone,omitempty"`                                 // Новый телефон
	Status   *int    `json:"status,omitempty" validate:"omitempty,oneof=0 1"` // Новый статус: 0 или 1
}

// UserResponse представляет пользователя во внешнем API.
// Пароль в ответ никогда не включается.
type UserResponse struct {
	ID         int64     `json:"id"`
	Username   string    `json:"username"`
	Email      string    `json:"email"`
	RealName   *string   `json:"realName,omitempty"`
	Phone      *string   `json:"phone,omitempty"`
	Status     int       `json:"status"`
	StatusText string    `json:"statusText"`
	CreatedAt  time.Time `json:"createdAt"`
	UpdatedAt  time.Time `json:"updatedAt"`
}

// StatusText возвращает человекочитаемую метку статуса.
func StatusText(status int) string {
	switch status {
	case StatusEnabled:
		return "enabled"
	case StatusDisabled:
		return "disabled"
	default:
		return "unknown"
	}
}

// ToResponse превращает доменного пользователя в представление для API,
// отбрасывая хэш пароля и добавляя текстовую метку статуса.
func (u *User) ToResponse() *UserResponse {
	return &UserResponse{
		ID:         u.ID,
		Username:   u.Username,
		Email:      u.Email,
		RealName:   u.RealName,
		Phone:      u.Phone,
		Status:     u.Status,
		StatusText: StatusText(u.Status),
		CreatedAt:  u.CreatedAt,
		UpdatedAt:  u.UpdatedAt,
	}
}

// UserEvent описывает событие жизненного цикла пользователя,
// публикуемое в очередь сообщений.
type UserEvent struct {
	Type       string    `json:"type"` // user.created, user.updated, user.deleted, user.enabled, user.disabled
	UserID     int64     `json:"user_id"`
	Username   string    `json:"username"`
	OccurredAt time.Time `json:"occurred_at"`
}
