package email

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface over a direct SMTP
// connection via go-mail.
type SMTPSender struct {
	host      string
	port      int
	username  string
	password  string
	fromName  string
	fromEmail string
}

// NewSMTPSender creates a new SMTPSender with the given SMTP credentials.
func NewSMTPSender(host string, port int, username, password, fromEmail, fromName string) *SMTPSender {
	return &SMTPSender{
		host:      host,
		port:      port,
		username:  username,
		password:  password,
		fromName:  fromName,
		fromEmail: fromEmail,
	}
}

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string, attachments ...Attachment) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

	for _, att := range attachments {
		msg.AttachReader(att.FileName, bytes.NewReader(att.Content))
	}

	client, err := gomail.NewClient(s.host,
		gomail.WithPort(s.port),
		gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
		gomail.WithUsername(s.username),
		gomail.WithPassword(s.password),
		gomail.WithTLSPortPolicy(gomail.TLSOpportunistic),
		gomail.WithTimeout(15*time.Second),
		gomail.WithDialContextFunc(func(dctx context.Context, _ string, addr string) (net.Conn, error) {
			return (&net.Dialer{}).DialContext(dctx, "tcp4", addr)
		}),
	)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}

	if err := client.DialAndSendWithContext(ctx, msg); err != nil {
		return fmt.Errorf("smtp send: %w", err)
	}

	return nil
}

func (s *SMTPSender) SendRequestReceivedEmail(ctx context.Context, toEmail, requesterName, animalName, requestNumber string) error {
	content, err := renderEmailTemplate("request_received.html", requestReceivedEmailData{
		baseEmailData: baseEmailData{
			Title:   "Solicitud recibida",
			Heading: "Recibimos tu solicitud",
		},
		RequesterName: requesterName,
		AnimalName:    animalName,
		RequestNumber: requestNumber,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectRequestReceivedFmt, requestNumber), content)
}

func (s *SMTPSender) SendAppointmentConfirmedEmail(ctx context.Context, toEmail, requesterName, animalName, visitDate, slotTime string, checkInCode []byte) error {
	content, err := renderEmailTemplate("appointment_confirmed.html", appointmentEmailData{
		baseEmailData: baseEmailData{
			Title:   "Visita confirmada",
			Heading: "Tu visita está confirmada",
		},
		RequesterName: requesterName,
		AnimalName:    animalName,
		VisitDate:     visitDate,
		SlotTime:      slotTime,
	})
	if err != nil {
		return err
	}

	var attachments []Attachment
	if len(checkInCode) > 0 {
		attachments = append(attachments, Attachment{FileName: "registro-visita.png", Content: checkInCode})
	}
	return s.send(ctx, toEmail, subjectAppointmentConfirmed, content, attachments...)
}

func (s *SMTPSender) SendAppointmentRescheduledEmail(ctx context.Context, toEmail, requesterName, animalName, visitDate, slotTime string) error {
	content, err := renderEmailTemplate("appointment_rescheduled.html", appointmentEmailData{
		baseEmailData: baseEmailData{
			Title:   "Visita reagendada",
			Heading: "Tu visita cambió de horario",
		},
		RequesterName: requesterName,
		AnimalName:    animalName,
		VisitDate:     visitDate,
		SlotTime:      slotTime,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectAppointmentRescheduled, content)
}

func (s *SMTPSender) SendAppointmentReminderEmail(ctx context.Context, toEmail, requesterName, animalName, visitDate, slotTime string) error {
	content, err := renderEmailTemplate("appointment_reminder.html", appointmentEmailData{
		baseEmailData: baseEmailData{
			Title:   "Recordatorio de visita",
			Heading: "Tu visita se acerca",
		},
		RequesterName: requesterName,
		AnimalName:    animalName,
		VisitDate:     visitDate,
		SlotTime:      slotTime,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectAppointmentReminder, content)
}

func (s *SMTPSender) SendEvaluationResultEmail(ctx context.Context, toEmail, requesterName, animalName string, advanced bool) error {
	heading := "Resultado de tu visita"
	subject := subjectEvaluationNotAdvanced
	if advanced {
		heading = "¡Tu visita salió muy bien!"
		subject = subjectEvaluationAdvanced
	}

	content, err := renderEmailTemplate("evaluation_result.html", evaluationResultEmailData{
		baseEmailData: baseEmailData{
			Title:   "Resultado de visita",
			Heading: heading,
		},
		RequesterName: requesterName,
		AnimalName:    animalName,
		Advanced:      advanced,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subject, content)
}

func (s *SMTPSender) SendAdoptionApprovedEmail(ctx context.Context, toEmail, requesterName, animalName, requestNumber, contractRef string) error {
	content, err := renderEmailTemplate("adoption_approved.html", adoptionDecisionEmailData{
		baseEmailData: baseEmailData{
			Title:   "Adopción aprobada",
			Heading: "¡Felicidades!",
		},
		RequesterName: requesterName,
		AnimalName:    animalName,
		RequestNumber: requestNumber,
		ContractRef:   contractRef,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectAdoptionApprovedFmt, requestNumber), content)
}

func (s *SMTPSender) SendAdoptionRejectedEmail(ctx context.Context, toEmail, requesterName, animalName, requestNumber, reason string) error {
	content, err := renderEmailTemplate("adoption_rejected.html", adoptionDecisionEmailData{
		baseEmailData: baseEmailData{
			Title:   "Resolución de solicitud",
			Heading: "Resolución de tu solicitud",
		},
		RequesterName: requesterName,
		AnimalName:    animalName,
		RequestNumber: requestNumber,
		Reason:        reason,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, fmt.Sprintf(subjectAdoptionRejectedFmt, requestNumber), content)
}

var _ Sender = (*SMTPSender)(nil)
