// Package email renders and delivers transactional mail for the shelter.
package email

import (
	"context"

	"patitas_backend/platform/config"
	"patitas_backend/platform/logger"
)

// Attachment is a file attached to an outgoing email.
type Attachment struct {
	FileName string
	Content  []byte
}

// Sender delivers shelter notifications. Implementations render the
// shared HTML templates and push them over a transport.
type Sender interface {
	SendRequestReceivedEmail(ctx context.Context, toEmail, requesterName, animalName, requestNumber string) error
	SendAppointmentConfirmedEmail(ctx context.Context, toEmail, requesterName, animalName, visitDate, slotTime string, checkInCode []byte) error
	SendAppointmentRescheduledEmail(ctx context.Context, toEmail, requesterName, animalName, visitDate, slotTime string) error
	SendAppointmentReminderEmail(ctx context.Context, toEmail, requesterName, animalName, visitDate, slotTime string) error
	SendEvaluationResultEmail(ctx context.Context, toEmail, requesterName, animalName string, advanced bool) error
	SendAdoptionApprovedEmail(ctx context.Context, toEmail, requesterName, animalName, requestNumber, contractRef string) error
	SendAdoptionRejectedEmail(ctx context.Context, toEmail, requesterName, animalName, requestNumber, reason string) error
}

// NoopSender drops all mail. Used when SMTP is not configured.
type NoopSender struct{}

func (NoopSender) SendRequestReceivedEmail(context.Context, string, string, string, string) error {
	return nil
}

func (NoopSender) SendAppointmentConfirmedEmail(context.Context, string, string, string, string, string, []byte) error {
	return nil
}

func (NoopSender) SendAppointmentRescheduledEmail(context.Context, string, string, string, string, string) error {
	return nil
}

func (NoopSender) SendAppointmentReminderEmail(context.Context, string, string, string, string, string) error {
	return nil
}

func (NoopSender) SendEvaluationResultEmail(context.Context, string, string, string, bool) error {
	return nil
}

func (NoopSender) SendAdoptionApprovedEmail(context.Context, string, string, string, string, string) error {
	return nil
}

func (NoopSender) SendAdoptionRejectedEmail(context.Context, string, string, string, string, string) error {
	return nil
}

// NewSender selects the SMTP sender when configured and the noop sender
// otherwise.
func NewSender(cfg config.EmailConfig, log *logger.Logger) Sender {
	if !cfg.GetEmailEnabled() {
		log.Warn("email sending disabled, using noop sender")
		return NoopSender{}
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	)
}

var _ Sender = NoopSender{}
