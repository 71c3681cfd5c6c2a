package templates

import (
	"bytes"
	"embed"
	"fmt"
	htmpl "html/template"
	"io"
	"strings"
	texttpl "text/template"
	"time"
)

//go:embed *.tmpl
var FS embed.FS

// Template names
const (
	ResetPassword   = "reset_password"
	PasswordChanged = "password_changed"
)

// EmailData defines the fields the auth email templates read.
type EmailData struct {
	Name     string
	Email    string
	AppName  string
	ResetURL string

	ExpiresInMinutes int
	Time             string
	IP               string
	UserAgent        string
}

type Option func(*EmailData)

func WithResetURL(url string) Option { return func(d *EmailData) { d.ResetURL = url } }
func WithIP(ip string) Option        { return func(d *EmailData) { d.IP = ip } }
func WithUserAgent(ua string) Option { return func(d *EmailData) { d.UserAgent = ua } }
func WithExpiresIn(d time.Duration) Option {
	return func(e *EmailData) { e.ExpiresInMinutes = int(d.Minutes()) }
}
func WithTime(t time.Time) Option {
	return func(d *EmailData) { d.Time = t.UTC().Format("02 January 2006, 15:04 MST") }
}

// NewData builds template data for a recipient.
func NewData(appName, name, email string, opts ...Option) EmailData {
	d := EmailData{Name: name, Email: email, AppName: appName}
	for _, o := range opts {
		o(&d)
	}
	return d
}

// ToMap converts EmailData to the loosely typed map carried by an EmailJob.
func (d EmailData) ToMap() map[string]any {
	return map[string]any{
		"Name":             d.Name,
		"Email":            d.Email,
		"AppName":          d.AppName,
		"ResetURL":         d.ResetURL,
		"ExpiresInMinutes": d.ExpiresInMinutes,
		"Time":             d.Time,
		"IP":               d.IP,
		"UserAgent":        d.UserAgent,
	}
}

// defaultFn supports pipe usage: {{ .Value | default "Fallback" }}
func defaultFn(fallback any, value any) any {
	switch x := value.(type) {
	case nil:
		return fallback
	case string:
		if strings.TrimSpace(x) == "" {
			return fallback
		}
	}
	return value
}

func baseFuncs() map[string]any {
	return map[string]any{
		"upper":   strings.ToUpper,
		"default": defaultFn,
	}
}

// Both sets are parsed once; each template is named after its file.
var (
	textSet = texttpl.Must(texttpl.New("text").Funcs(baseFuncs()).ParseFS(FS, "*.subject.tmpl", "*.text.tmpl"))
	htmlSet = htmpl.Must(htmpl.New("html").Funcs(baseFuncs()).ParseFS(FS, "*.html.tmpl"))
)

type executor interface {
	ExecuteTemplate(w io.Writer, name string, data any) error
}

func execute(set executor, file string, data any) (string, error) {
	var buf bytes.Buffer
	if err := set.ExecuteTemplate(&buf, file, data); err != nil {
		return "", fmt.Errorf("render %q: %w", file, err)
	}
	return buf.String(), nil
}

// Message is a rendered email.
type Message struct {
	Subject string
	Text    string
	HTML    string
}

// Render renders <name>.subject.tmpl, <name>.text.tmpl and <name>.html.tmpl.
func Render(name string, data any) (Message, error) {
	var (
		m   Message
		err error
	)
	if m.Subject, err = execute(textSet, name+".subject.tmpl", data); err != nil {
		return Message{}, err
	}
	if m.Text, err = execute(textSet, name+".text.tmpl", data); err != nil {
		return Message{}, err
	}
	if m.HTML, err = execute(htmlSet, name+".html.tmpl", data); err != nil {
		return Message{}, err
	}
	m.Subject = strings.TrimSpace(m.Subject)
	return m, nil
}
