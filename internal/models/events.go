package models

// UserRegisteredEvent событие успешной регистрации пользователя,
// публикуется в RabbitMQ и обрабатывается сервисом уведомлений.
type UserRegisteredEvent struct {
	UserUID  string `json:"user_uid"`
	Username string `json:"username"`
	Email    string `json:"email"`
}
