package mailer

import (
	"fmt"

	"gopkg.in/gomail.v2"
)

type IEmailService interface {
	SendSessionFailureAlert(toEmail, agentType, sessionId, errorMessage string) error
}

type emailService struct {
	dialer      *gomail.Dialer
	senderEmail string
}

func NewEmailService(host string, port int, username, password, senderEmail string) IEmailService {
	d := gomail.NewDialer(host, port, username, password)

	return &emailService{
		dialer:      d,
		senderEmail: senderEmail,
	}
}

// SendSessionFailureAlert notifies institution admins that an agent session
// terminated in failure.
func (s *emailService) SendSessionFailureAlert(toEmail, agentType, sessionId, errorMessage string) error {
	m := gomail.NewMessage()
	m.SetHeader("From", s.senderEmail)
	m.SetHeader("To", toEmail)
	m.SetHeader("Subject", fmt.Sprintf("Agent session failed: %s", agentType))

	body := fmt.Sprintf(`
		<div style="font-family: Arial, sans-serif; padding: 20px; color: #333;">
			<h2>Agent session failed</h2>
			<p>An agent session for <strong>%s</strong> ended in failure.</p>
			<p>Session: <code>%s</code></p>
			<p>Error: %s</p>
			<p>The session was not retried. Review it in the admissions dashboard.</p>
		</div>
	`, agentType, sessionId, errorMessage)

	m.SetBody("text/html", body)

	if err := s.dialer.DialAndSend(m); err != nil {
		fmt.Printf("[MAILER ERROR] Failed to send failure alert to %s: %v\n", toEmail, err)
		return err
	}

	return nil
}
