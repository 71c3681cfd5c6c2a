package application

import (
	"context"
	"time"

	"github.com/SouzaGabriel26/onde-ir/pkg/mailer"
	mailtpl "github.com/SouzaGabriel26/onde-ir/pkg/mailer/templates"
)

// JobPublisher puts a JSON job on the email queue.
type JobPublisher interface {
	PublishJSON(ctx context.Context, body any) error
}

// EmailNotifier turns auth events into queued EmailJobs for the email worker.
type EmailNotifier struct {
	Publisher JobPublisher
	AppName   string
	// ResetLink builds the URL a reset grant id is redeemed at.
	ResetLink func(id string) string
	ResetTTL  time.Duration
	Now       func() time.Time
}

func NewEmailNotifier(pub JobPublisher, appName string, resetLink func(string) string, resetTTL time.Duration) *EmailNotifier {
	return &EmailNotifier{Publisher: pub, AppName: appName, ResetLink: resetLink, ResetTTL: resetTTL, Now: time.Now}
}

// RequestMeta is the client context shown in security emails.
type RequestMeta struct {
	IP        string
	UserAgent string
}

// ResetPasswordRequested queues the email carrying the reset link for tokenID.
func (n *EmailNotifier) ResetPasswordRequested(ctx context.Context, to, name, tokenID string, meta RequestMeta) error {
	data := mailtpl.NewData(n.AppName, name, to,
		mailtpl.WithResetURL(n.ResetLink(tokenID)),
		mailtpl.WithExpiresIn(n.ResetTTL),
		mailtpl.WithTime(n.Now()),
		mailtpl.WithIP(meta.IP),
		mailtpl.WithUserAgent(meta.UserAgent),
	)
	return n.Publisher.PublishJSON(ctx, mailer.EmailJob{To: to, Template: mailtpl.ResetPassword, Data: data.ToMap()})
}

func (n *EmailNotifier) PasswordChanged(ctx context.Context, to, name string) error {
	data := mailtpl.NewData(n.AppName, name, to, mailtpl.WithTime(n.Now()))
	return n.Publisher.PublishJSON(ctx, mailer.EmailJob{To: to, Template: mailtpl.PasswordChanged, Data: data.ToMap()})
}
