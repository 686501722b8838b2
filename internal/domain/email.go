package domain

import (
	"context"
	"errors"
)

// ErrMailerNotConfigured is returned by a mailer that has no provider behind it.
// Callers treat it as a warning: the invitation was accepted but not delivered.
var ErrMailerNotConfigured = errors.New("mailer not configured")

// Mailer defines the contract for sending emails (infrastructure port).
type Mailer interface {
	Send(ctx context.Context, to, subject, html, text string) error
}

// EmailTemplateRenderer renders email content from a named template with the given data.
type EmailTemplateRenderer interface {
	Render(templateName string, data any) (subject, htmlBody, textBody string, err error)
}

// WelcomeEmailData holds data for the welcome email sent after sign-up.
type WelcomeEmailData struct {
	Email       string
	DisplayName string
}

// GroupInvitationEmailData holds data for the group invitation email.
type GroupInvitationEmailData struct {
	Email       string
	InviterName string
	GroupName   string
	InviteCode  string
	AcceptURL   string
}

// EmailService defines the contract for sending domain-level emails.
type EmailService interface {
	SendWelcomeMessage(ctx context.Context, data *WelcomeEmailData) error
	SendGroupInvitation(ctx context.Context, data *GroupInvitationEmailData) error
}
