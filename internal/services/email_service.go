package services

import (
	"fmt"
	"html"

	"gopkg.in/gomail.v2"
)

type EmailService interface {
	SendWelcomeEmail(email, name string) error
}

// mailDialer is satisfied by *gomail.Dialer.
type mailDialer interface {
	DialAndSend(m ...*gomail.Message) error
}

type emailService struct {
	dialer mailDialer
	from   string
}

func NewEmailService(smtpHost string, smtpPort int, smtpUser, smtpPassword, fromEmail string) EmailService {
	return &emailService{
		dialer: gomail.NewDialer(smtpHost, smtpPort, smtpUser, smtpPassword),
		from:   fromEmail,
	}
}

func (s *emailService) SendWelcomeEmail(email, name string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.from)
	m.SetHeader("To", email)
	m.SetHeader("Subject", "Welcome!")

	body := fmt.Sprintf(`
		<h2>Welcome, %s!</h2>
		<p>Your account has been successfully created.</p>
		<p>Open the Telegram link from the registration response to connect your chat.</p>
	`, html.EscapeString(name))

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		return fmt.Errorf("failed to send welcome email: %w", err)
	}
	return nil
}
