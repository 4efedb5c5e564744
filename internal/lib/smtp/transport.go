package smtp

import (
	"crypto/tls"
	"fmt"
	"io"
	"log/slog"
	"net"
	"net/smtp"

	"github.com/magabrotheeeer/agrocare-backend/internal/config"
	"github.com/magabrotheeeer/agrocare-backend/internal/lib/sl"
)

// Transport открывает SMTP-сессии для воркера уведомлений.
type Transport struct {
	cfg *config.Config
	log *slog.Logger
}

// smtpClientWrapper адаптирует *smtp.Client к интерфейсу Client.
type smtpClientWrapper struct {
	client *smtp.Client
}

func (w *smtpClientWrapper) Mail(from string) error {
	return w.client.Mail(from)
}

func (w *smtpClientWrapper) Rcpt(to string) error {
	return w.client.Rcpt(to)
}

func (w *smtpClientWrapper) Data() (io.WriteCloser, error) {
	return w.client.Data()
}

func (w *smtpClientWrapper) Quit() error {
	return w.client.Quit()
}

func (w *smtpClientWrapper) Close() error {
	return w.client.Close()
}

// NewTransport создает транспорт с настройками SMTP из конфига.
func NewTransport(cfg *config.Config, log *slog.Logger) *Transport {
	return &Transport{cfg: cfg, log: log}
}

// Connect открывает SMTP-сессию: TCP-соединение, переход на TLS через
// STARTTLS и plain-авторизация. Сервер без STARTTLS считается ошибкой
// конфигурации, письмо по открытому каналу не отправляется.
func (t *Transport) Connect() (Client, error) {
	addr := net.JoinHostPort(t.cfg.SMTPHost, t.cfg.SMTPPort)

	conn, err := net.Dial("tcp", addr)
	if err != nil {
		t.log.Error("smtp dial failed", slog.String("addr", addr), sl.Err(err))
		return nil, fmt.Errorf("smtp dial %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, t.cfg.SMTPHost)
	if err != nil {
		t.log.Error("smtp handshake failed", sl.Err(err))
		if closeErr := conn.Close(); closeErr != nil {
			t.log.Error("failed to close smtp connection", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("smtp handshake: %w", err)
	}

	if ok, _ := client.Extension("STARTTLS"); !ok {
		t.log.Error("smtp server does not offer STARTTLS", slog.String("host", t.cfg.SMTPHost))
		if closeErr := client.Close(); closeErr != nil {
			t.log.Error("failed to close smtp session", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("smtp server %s does not offer STARTTLS", t.cfg.SMTPHost)
	}

	tlsConfig := &tls.Config{
		ServerName: t.cfg.SMTPHost,
		MinVersion: tls.VersionTLS12,
	}
	if err = client.StartTLS(tlsConfig); err != nil {
		t.log.Error("starttls negotiation failed", sl.Err(err))
		if closeErr := client.Close(); closeErr != nil {
			t.log.Error("failed to close smtp session", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("starttls: %w", err)
	}

	auth := smtp.PlainAuth("", t.cfg.SMTPUser, t.cfg.SMTPPass, t.cfg.SMTPHost)
	if err = client.Auth(auth); err != nil {
		t.log.Error("smtp authentication rejected", sl.Err(err))
		if closeErr := client.Close(); closeErr != nil {
			t.log.Error("failed to close smtp session", sl.Err(closeErr))
		}
		return nil, fmt.Errorf("smtp auth: %w", err)
	}

	return &smtpClientWrapper{client: client}, nil
}

// GetSMTPUser возвращает адрес отправителя писем.
func (t *Transport) GetSMTPUser() string {
	return t.cfg.SMTPUser
}
