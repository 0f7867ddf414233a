package email

import (
	"context"

	"upboost_crm_backend/platform/config"
)

// Sender delivers operational notifications to lead owners and operators.
type Sender interface {
	SendNewLeadEmail(ctx context.Context, toEmail, leadName, leadPhone, source string) error
	SendAppointmentBookedEmail(ctx context.Context, toEmail, leadName, scheduledAt string) error
	SendAppointmentReminderEmail(ctx context.Context, toEmail, leadName, scheduledAt string) error
	SendAppointmentCancelledEmail(ctx context.Context, toEmail, leadName, scheduledAt, reason string) error
}

// NoopSender discards every email. Used when email delivery is disabled.
type NoopSender struct{}

func (NoopSender) SendNewLeadEmail(ctx context.Context, toEmail, leadName, leadPhone, source string) error {
	return nil
}

func (NoopSender) SendAppointmentBookedEmail(ctx context.Context, toEmail, leadName, scheduledAt string) error {
	return nil
}

func (NoopSender) SendAppointmentReminderEmail(ctx context.Context, toEmail, leadName, scheduledAt string) error {
	return nil
}

func (NoopSender) SendAppointmentCancelledEmail(ctx context.Context, toEmail, leadName, scheduledAt, reason string) error {
	return nil
}

// NewSender builds the configured Sender. Returns a NoopSender when email
// delivery is disabled so callers never need a nil check.
func NewSender(cfg config.EmailConfig) (Sender, error) {
	if !cfg.GetEmailEnabled() {
		return NoopSender{}, nil
	}
	return NewSMTPSender(
		cfg.GetSMTPHost(),
		cfg.GetSMTPPort(),
		cfg.GetSMTPUsername(),
		cfg.GetSMTPPassword(),
		cfg.GetEmailFromAddress(),
		cfg.GetEmailFromName(),
	), nil
}
