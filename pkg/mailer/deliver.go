package mailer

import (
	"context"
	"errors"
	"fmt"

	mailtpl "github.com/SouzaGabriel26/onde-ir/pkg/mailer/templates"
)

// ErrMalformedJob marks jobs that will never succeed and must not be requeued.
var ErrMalformedJob = errors.New("malformed email job")

// Deliver renders job (when it names a template) and hands it to sender.
func Deliver(ctx context.Context, sender Sender, job EmailJob) error {
	if job.To == "" {
		return fmt.Errorf("%w: missing recipient", ErrMalformedJob)
	}
	subject, text, html := job.Subject, job.Text, job.HTML
	if job.Template != "" {
		if job.Data == nil {
			job.Data = map[string]any{}
		}
		if _, ok := job.Data["Email"]; !ok {
			job.Data["Email"] = job.To
		}
		msg, err := mailtpl.Render(job.Template, job.Data)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrMalformedJob, err)
		}
		subject, text, html = msg.Subject, msg.Text, msg.HTML
	}
	if subject == "" || (text == "" && html == "") {
		return fmt.Errorf("%w: empty message", ErrMalformedJob)
	}
	return sender.Send(ctx, job.To, subject, text, html)
}
