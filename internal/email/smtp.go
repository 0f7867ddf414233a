package email

import (
	"context"
	"fmt"
	"net"
	"time"

	gomail "github.com/wneessen/go-mail"
)

// SMTPSender implements the Sender interface using a direct SMTP connection via go-mail.
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

func (s *SMTPSender) send(ctx context.Context, toEmail, subject, htmlContent string) error {
	msg := gomail.NewMsg()
	if err := msg.FromFormat(s.fromName, s.fromEmail); err != nil {
		return fmt.Errorf("smtp from: %w", err)
	}
	if err := msg.To(toEmail); err != nil {
		return fmt.Errorf("smtp to: %w", err)
	}
	msg.Subject(subject)
	msg.SetBodyString(gomail.TypeTextHTML, htmlContent)

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

func (s *SMTPSender) SendNewLeadEmail(ctx context.Context, toEmail, leadName, leadPhone, source string) error {
	content, err := renderEmailTemplate("new_lead.html", newLeadEmailData{
		baseEmailData: baseEmailData{
			Title:   "Novo lead recebido",
			Heading: "Novo lead recebido",
		},
		LeadName:  leadName,
		LeadPhone: leadPhone,
		Source:    source,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectNewLead, content)
}

func (s *SMTPSender) SendAppointmentBookedEmail(ctx context.Context, toEmail, leadName, scheduledAt string) error {
	content, err := renderEmailTemplate("appointment_booked.html", appointmentEmailData{
		baseEmailData: baseEmailData{
			Title:   "Agendamento confirmado",
			Heading: "Agendamento confirmado",
		},
		LeadName:    leadName,
		ScheduledAt: scheduledAt,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectAppointmentBooked, content)
}

func (s *SMTPSender) SendAppointmentReminderEmail(ctx context.Context, toEmail, leadName, scheduledAt string) error {
	content, err := renderEmailTemplate("appointment_reminder.html", appointmentEmailData{
		baseEmailData: baseEmailData{
			Title:   "Lembrete de agendamento",
			Heading: "Lembrete de agendamento",
		},
		LeadName:    leadName,
		ScheduledAt: scheduledAt,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectAppointmentReminder, content)
}

func (s *SMTPSender) SendAppointmentCancelledEmail(ctx context.Context, toEmail, leadName, scheduledAt, reason string) error {
	content, err := renderEmailTemplate("appointment_cancelled.html", appointmentCancelledEmailData{
		appointmentEmailData: appointmentEmailData{
			baseEmailData: baseEmailData{
				Title:   "Agendamento cancelado",
				Heading: "Agendamento cancelado",
			},
			LeadName:    leadName,
			ScheduledAt: scheduledAt,
		},
		Reason: reason,
	})
	if err != nil {
		return err
	}
	return s.send(ctx, toEmail, subjectAppointmentCancelled, content)
}
