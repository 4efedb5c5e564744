// Package services реализует отправку приветственных уведомлений
// зарегистрированным пользователям по SMTP.
package services

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"

	libsmtp "github.com/magabrotheeeer/agrocare-backend/internal/lib/smtp"
	"github.com/magabrotheeeer/agrocare-backend/internal/lib/sl"
	"github.com/magabrotheeeer/agrocare-backend/internal/models"
)

// SenderService обрабатывает события регистрации и отправляет письма.
type SenderService struct {
	transport libsmtp.TransportInterface
	log       *slog.Logger
}

// NewSenderService создает новый экземпляр SenderService.
func NewSenderService(log *slog.Logger, transport libsmtp.TransportInterface) *SenderService {
	return &SenderService{
		transport: transport,
		log:       log,
	}
}

// SendWelcomeEmail отправляет приветственное письмо по событию user.registered.
// Тело сообщения — JSON models.UserRegisteredEvent из очереди.
func (s *SenderService) SendWelcomeEmail(body []byte) error {
	var event models.UserRegisteredEvent
	if err := json.Unmarshal(body, &event); err != nil {
		s.log.Error("failed to unmarshal message body", sl.Err(err))
		return fmt.Errorf("error unmarshalling message: %w", err)
	}

	to := []string{event.Email}
	subject := "Welcome to AgroCare"
	bodyText := fmt.Sprintf("Hello, %s!\n\nYour AgroCare account has been created.\n"+
		"You can now add farms, get crop recommendations and yield predictions.",
		event.Username)

	return s.sendEmail(to, subject, bodyText)
}

func (s *SenderService) sendEmail(to []string, subject, bodyText string) error {
	msg := strings.Join([]string{
		"From: " + s.transport.GetSMTPUser(),
		"To: " + strings.Join(to, ";"),
		"Subject: " + subject,
		"MIME-Version: 1.0",
		"Content-Type: text/plain; charset=\"UTF-8\"",
		"",
		bodyText,
	}, "\r\n")

	client, err := s.transport.Connect()
	if err != nil {
		s.log.Error("failed to connect to SMTP server", sl.Err(err))
		return err
	}
	defer func() {
		_ = client.Close()
	}()

	if err := client.Mail(s.transport.GetSMTPUser()); err != nil {
		s.log.Error("failed to set MAIL FROM", slog.String("from", s.transport.GetSMTPUser()), sl.Err(err))
		return err
	}

	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			s.log.Error("failed to set RCPT TO", slog.String("to", addr), sl.Err(err))
			return err
		}
	}

	w, err := client.Data()
	if err != nil {
		s.log.Error("failed to open DATA stream", sl.Err(err))
		return err
	}
	if _, err := w.Write([]byte(msg)); err != nil {
		s.log.Error("failed to write message body", sl.Err(err))
		return err
	}
	if err := w.Close(); err != nil {
		s.log.Error("failed to close DATA stream", sl.Err(err))
		return err
	}

	return client.Quit()
}
