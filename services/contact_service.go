package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/sendgrid/rest"
	"github.com/sendgrid/sendgrid-go"
	"github.com/sendgrid/sendgrid-go/helpers/mail"
	"github.com/sirupsen/logrus"

	"github.com/dcode-github/realestate_console/utils"
)

// Mailer is satisfied by *sendgrid.Client.
type Mailer interface {
	Send(email *mail.SGMailV3) (*rest.Response, error)
}

type ContactMessage struct {
	FirstName string `json:"fname" validate:"required"`
	LastName  string `json:"lname"`
	Phone     string `json:"phone" validate:"required"`
	Email     string `json:"email" validate:"required,email"`
	Message   string `json:"message" validate:"required"`
}

type ContactService struct {
	mailer   Mailer
	from     string
	to       string
	validate *validator.Validate
	logger   logrus.FieldLogger
}

// NewSendGridContactService relays contact messages through SendGrid. With no
// API key the service rejects every message.
func NewSendGridContactService(apiKey, from, to string, validate *validator.Validate, logger logrus.FieldLogger) *ContactService {
	var mailer Mailer
	if apiKey != "" {
		mailer = sendgrid.NewSendClient(apiKey)
	}
	return NewContactService(mailer, from, to, validate, logger)
}

func NewContactService(mailer Mailer, from, to string, validate *validator.Validate, logger logrus.FieldLogger) *ContactService {
	return &ContactService{
		mailer:   mailer,
		from:     from,
		to:       to,
		validate: validate,
		logger:   logger,
	}
}

func (s *ContactService) Send(_ context.Context, msg ContactMessage) error {
	msg.FirstName = strings.TrimSpace(msg.FirstName)
	msg.LastName = strings.TrimSpace(msg.LastName)
	msg.Email = strings.TrimSpace(msg.Email)
	if err := s.validate.Struct(msg); err != nil {
		return utils.ValidationFailure(err)
	}
	if s.mailer == nil || s.to == "" {
		return utils.ExternalServiceError("Contact delivery is not configured", nil)
	}

	fullName := strings.TrimSpace(msg.FirstName + " " + msg.LastName)
	from := mail.NewEmail("Website contact form", s.from)
	to := mail.NewEmail("", s.to)
	subject := fmt.Sprintf("New enquiry from %s", fullName)
	body := fmt.Sprintf("Name: %s\nPhone: %s\nEmail: %s\n\n%s\n", fullName, msg.Phone, msg.Email, msg.Message)

	email := mail.NewSingleEmail(from, subject, to, body, "")
	email.SetReplyTo(mail.NewEmail(fullName, msg.Email))

	resp, err := s.mailer.Send(email)
	if err != nil {
		return utils.ExternalServiceError("Failed to send message", err)
	}
	if resp.StatusCode >= 300 {
		return utils.ExternalServiceError("Failed to send message",
			fmt.Errorf("sendgrid status %d: %s", resp.StatusCode, resp.Body))
	}
	s.logger.WithField("replyTo", msg.Email).Info("Contact message sent")
	return nil
}
