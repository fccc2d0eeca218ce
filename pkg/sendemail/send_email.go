package sendemail

import (
	"fmt"

	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"itam/pkg/config"
)

type EmailService interface {
	SendEmail(subject, toEmail, plainTextContent, htmlContent string) error
}

type emailService struct {
	client      *sendgrid.Client
	senderEmail string
	senderName  string
}

// NewEmailService builds the SendGrid-backed sender, or a logging no-op when
// no API key is configured so dev setups work without outgoing mail.
func NewEmailService(cfg config.MailConfig, log *logrus.Logger) EmailService {
	if cfg.SendGridAPIKey == "" {
		log.Warn("SendGrid API key not set, outgoing email disabled")
		return &noopEmailService{log: log}
	}
	return &emailService{
		client:      sendgrid.NewSendClient(cfg.SendGridAPIKey),
		senderEmail: cfg.FromEmail,
		senderName:  cfg.FromName,
	}
}

func (e *emailService) SendEmail(subject, toEmail, plainTextContent, htmlContent string) error {
	from := mail.NewEmail(e.senderName, e.senderEmail)
	to := mail.NewEmail("", toEmail)
	message := mail.NewSingleEmail(from, subject, to, plainTextContent, htmlContent)
	response, err := e.client.Send(message)
	if err != nil {
		return err
	}
	if response.StatusCode >= 400 {
		return fmt.Errorf("failed to send email: status %d", response.StatusCode)
	}
	return nil
}

type noopEmailService struct {
	log *logrus.Logger
}

func (n *noopEmailService) SendEmail(subject, toEmail, _, _ string) error {
	n.log.WithFields(logrus.Fields{"to": toEmail, "subject": subject}).
		Debug("email sending disabled, dropping message")
	return nil
}
