// Package models содержит доменные модели системы: пользователей,
// фермы и события. Структуры используются в бизнес‑логике и при
// работе с хранилищем.
package models

import "time"

// User представляет зарегистрированного пользователя системы.
type User struct {
	UID          string    // Уникальный идентификатор пользователя
	Username     string    // Имя пользователя
	Email        string    // Электронная почта (уникальная, используется для входа)
	Phone        string    // Номер телефона
	PasswordHash string    // Хэш пароля пользователя, в открытом виде пароль не хранится
	Role         string    // Роль пользователя, admin или user
	CreatedAt    time.Time // Дата создания учётной записи
}

// UserInfo безопасная проекция пользователя без хэша пароля,
// отдается наружу через API и кэшируется.
type UserInfo struct {
	UID       string    `json:"uid"`
	Username  string    `json:"username"`
	Email     string    `json:"email"`
	Phone     string    `json:"phone"`
	Role      string    `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// Info возвращает безопасную проекцию пользователя.
func (u *User) Info() UserInfo {
	return UserInfo{
		UID:       u.UID,
		Username:  u.Username,
		Email:     u.Email,
		Phone:     u.Phone,
		Role:      u.Role,
		CreatedAt: u.CreatedAt,
	}
}

// IsAdmin возвращает признак административной роли.
func (u UserInfo) IsAdmin() bool {
	return u.Role == "admin"
}
