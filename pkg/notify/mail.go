package notify

import (
	"gopkg.in/mail.v2"
)

type MailSender interface {
	SendMail(to []string, subject, htmlBody, textBody string) error
}

type Dialer interface {
	DialAndSend(m ...*mail.Message) error
}

type mailSender struct {
	email  string
	dialer Dialer
}

func (s *mailSender) SendMail(to []string, subject, htmlBody, textBody string) error {
	m := mail.NewMessage()
	m.SetHeader("From", s.email)
	m.SetHeader("To", to...)
	m.SetHeader("Subject", subject)
	if textBody != "" {
		m.AddAlternative("text/plain", textBody)
	}
	if htmlBody != "" {
		m.SetBody("text/html", htmlBody)
	}
	return s.dialer.DialAndSend(m)
}

func NewMailSender(email, password, host string, port int) MailSender {
	return &mailSender{
		email:  email,
		dialer: mail.NewDialer(host, port, email, password),
	}
}
