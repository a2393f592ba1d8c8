package mail

import (
	"bytes"
	"fmt"
	"path/filepath"
	"text/template"

	"gopkg.in/gomail.v2"

	"github.com/leadpulse/leadpulse/internal/infra/queue"
)

func NewEmailSender(host string, port int, user, password, from, to string) *EmailSender {
	return &EmailSender{
		Host:     host,
		Port:     port,
		User:     user,
		Password: password,
		From:     from,
		To:       to,
	}
}

// SendFollowUpReminder mails the account owner that a lead is due for
// a follow-up.
func (s *EmailSender) SendFollowUpReminder(payload queue.ReminderPayload) error {
	data := ReminderEmailData{
		LeadName:   payload.Name,
		Platform:   payload.Platform,
		ProfileURL: payload.ProfileURL,
		DueDate:    payload.DueDate.Format("Jan 2, 2006"),
		LastDmText: payload.LastDmText,
	}

	tmplPath := filepath.Join("templates", "reminder.html")
	t, err := template.ParseFiles(tmplPath)
	if err != nil {
		return fmt.Errorf("read reminder template: %w", err)
	}

	var body bytes.Buffer
	if err := t.Execute(&body, data); err != nil {
		return fmt.Errorf("render reminder template: %w", err)
	}

	m := gomail.NewMessage()
	m.SetHeader("From", s.From)
	m.SetHeader("To", s.To)
	m.SetHeader("Subject", fmt.Sprintf("⏰ Follow-up due: %s on %s", payload.Name, payload.Platform))
	m.SetBody("text/html", body.String())

	d := gomail.NewDialer(s.Host, s.Port, s.User, s.Password)

	if err := d.DialAndSend(m); err != nil {
		return fmt.Errorf("send reminder email: %w", err)
	}
	return nil
}
