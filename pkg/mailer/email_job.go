package mailer

import (
	"fmt"
	"strings"

	mailtpl "github.com/oksasatya/videotube-api/pkg/mailer/templates"
)

// EmailJob is the JSON payload put on the RabbitMQ queue for sending email.
// Either a Template with Data, or a raw Subject with Text and optional HTML.
type EmailJob struct {
	To       string         `json:"to"`
	Subject  string         `json:"subject,omitempty"`
	Text     string         `json:"text,omitempty"`
	HTML     string         `json:"html,omitempty"`
	Template string         `json:"template,omitempty"` // welcome, password_changed, account_updated
	Data     map[string]any `json:"data,omitempty"`
}

// Prepare fills recipient fields and renders the template, if any, into
// Subject, Text and HTML. Jobs without a template must carry a subject.
func (j *EmailJob) Prepare() error {
	j.To = strings.TrimSpace(j.To)
	if j.To == "" {
		return fmt.Errorf("email job: missing recipient")
	}
	if j.Template == "" {
		if j.Subject == "" {
			return fmt.Errorf("email job: missing subject")
		}
		return nil
	}

	if j.Data == nil {
		j.Data = map[string]any{}
	}
	for _, k := range []string{"Email", "RecipientEmail"} {
		if v, ok := j.Data[k]; !ok || fmt.Sprintf("%v", v) == "" {
			j.Data[k] = j.To
		}
	}

	subject, text, html, err := mailtpl.Render(strings.ToLower(j.Template), j.Data)
	if err != nil {
		return err
	}
	j.Subject, j.Text, j.HTML = strings.TrimSpace(subject), text, html
	return nil
}
