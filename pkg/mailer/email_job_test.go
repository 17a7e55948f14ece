package mailer

import (
	"strings"
	"testing"

	mailtpl "github.com/oksasatya/videotube-api/pkg/mailer/templates"
)

func TestPrepareRendersTemplate(t *testing.T) {
	job := EmailJob{
		To:       " jane@example.com ",
		Template: "PASSWORD_CHANGED",
		Data:     map[string]any{"Name": "Jane", "Username": "jane"},
	}
	if err := job.Prepare(); err != nil {
		t.Fatalf("prepare: %v", err)
	}
	if job.To != "jane@example.com" {
		t.Fatalf("recipient should be trimmed, got %q", job.To)
	}
	if job.Data["Email"] != "jane@example.com" {
		t.Fatalf("email should default to recipient, got %v", job.Data["Email"])
	}
	if !strings.Contains(job.Subject, "password was changed") || job.HTML == "" || job.Text == "" {
		t.Fatalf("unexpected rendered job: %+v", job)
	}
}

func TestPrepareRawJob(t *testing.T) {
	job := EmailJob{To: "a@b.co", Text: "hello"}
	if err := job.Prepare(); err == nil {
		t.Fatal("raw job without subject should fail")
	}
	job.Subject = mailtpl.SubjectFor("unknown")
	if err := job.Prepare(); err != nil {
		t.Fatalf("prepare: %v", err)
	}
}

func TestPrepareMissingRecipient(t *testing.T) {
	job := EmailJob{Template: mailtpl.Welcome}
	if err := job.Prepare(); err == nil {
		t.Fatal("expected missing recipient error")
	}
}
