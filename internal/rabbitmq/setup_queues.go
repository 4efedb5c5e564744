package rabbitmq

// QueueConfig описывает очередь и ключ маршрутизации в exchange notifications.
type QueueConfig struct {
	QueueName  string
	RoutingKey string
}

// RegisteredRoutingKey ключ маршрутизации событий регистрации.
const RegisteredRoutingKey = "registered"

// RegisteredQueueName очередь приветственных уведомлений.
const RegisteredQueueName = "notifications.registered"

// GetNotificationQueues возвращает очереди сервиса уведомлений.
func GetNotificationQueues() []QueueConfig {
	return []QueueConfig{
		{QueueName: RegisteredQueueName, RoutingKey: RegisteredRoutingKey},
	}
}
