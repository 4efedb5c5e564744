// Package smtp реализует почтовый транспорт для приветственных писем AgroCare.
// Соединение с сервером поднимается через STARTTLS, plain-авторизация
// выполняется только после перехода на TLS.
package smtp

import "io"

// Client описывает шаги SMTP-сессии, нужные для отправки одного письма.
type Client interface {
	Mail(from string) error
	Rcpt(to string) error
	Data() (io.WriteCloser, error)
	Quit() error
	Close() error
}

// TransportInterface описывает транспорт: открытие сессии и адрес отправителя.
type TransportInterface interface {
	Connect() (Client, error)
	GetSMTPUser() string
}
