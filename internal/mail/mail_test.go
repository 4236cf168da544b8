package mail

import (
	"errors"
	"testing"
	"time"
)

func TestSendRequiresCredential(t *testing.T) {
	s := &Sender{Host: "smtp.example.com", Port: 465, User: "u@example.com", To: []string{"d@example.com"}}
	err := s.Send("asunto", "<html></html>", "texto")
	if !errors.Is(err, ErrNoCredential) {
		t.Fatalf("err = %v, want ErrNoCredential", err)
	}
}

func TestSendRequiresRecipients(t *testing.T) {
	s := &Sender{Host: "smtp.example.com", Port: 465, User: "u@example.com", Pass: "secreto"}
	err := s.Send("asunto", "<html></html>", "texto")
	if !errors.Is(err, ErrNoRecipients) {
		t.Fatalf("err = %v, want ErrNoRecipients", err)
	}
}

func TestSubjectFormat(t *testing.T) {
	now := time.Date(2024, 6, 1, 9, 0, 0, 0, time.UTC)

	if got := Subject("", now); got != "Resumen de noticias (2024-06-01)" {
		t.Fatalf("Subject without keyword = %q", got)
	}
	if got := Subject("economia", now); got != "Resumen de noticias (2024-06-01) - filtro: economia" {
		t.Fatalf("Subject with keyword = %q", got)
	}
}
