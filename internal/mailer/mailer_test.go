package mailer

import (
	"errors"
	"strings"
	"testing"
)

func TestIncompleteConfig(t *testing.T) {
	t.Parallel()
	m := New(Config{Host: "smtp.example.com", Port: 587})
	err := m.Send("subject", "body", []string{"ops@example.com"})
	if !errors.Is(err, ErrIncompleteConfig) {
		t.Fatalf("err = %v, want ErrIncompleteConfig", err)
	}
	for _, name := range []string{"SMTP_USER", "SMTP_PASS", "EMAIL_FROM"} {
		if !strings.Contains(err.Error(), name) {
			t.Fatalf("error %q should name missing value %s", err, name)
		}
	}
	if strings.Contains(err.Error(), "SMTP_HOST") {
		t.Fatalf("error %q names a value that is present", err)
	}
}

func TestNoRecipientsIsNoop(t *testing.T) {
	t.Parallel()
	m := New(Config{
		Host: "smtp.example.com", Port: 587,
		Username: "u", Password: "p", From: "from@example.com",
	})
	// No dial must happen with an empty recipient list.
	if err := m.Send("subject", "body", nil); err != nil {
		t.Fatalf("Send with no recipients: %v", err)
	}
	if err := m.Send("subject", "body", []string{" ", ""}); err != nil {
		t.Fatalf("Send with blank recipients: %v", err)
	}
}

func TestCompose(t *testing.T) {
	t.Parallel()
	b := string(compose("from@example.com", []string{"a@example.com", "b@example.com"}, "Hello", "line1\nline2"))

	header, body, ok := strings.Cut(b, "\r\n\r\n")
	if !ok {
		t.Fatalf("no header/body separator in %q", b)
	}
	for _, want := range []string{
		"From: from@example.com",
		"To: a@example.com, b@example.com",
		"Subject: Hello",
		`Content-Type: text/plain; charset="UTF-8"`,
	} {
		if !strings.Contains(header, want) {
			t.Fatalf("header missing %q:\n%s", want, header)
		}
	}
	if body != "line1\nline2" {
		t.Fatalf("body = %q", body)
	}
}

func TestAddressSanitizing(t *testing.T) {
	t.Parallel()
	got := addrReplacer.Replace("evil@example.com\r\nBcc: other@example.com")
	if strings.ContainsAny(got, "\r\n") {
		t.Fatalf("CRLF survived sanitizing: %q", got)
	}
}
