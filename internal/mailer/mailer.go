// Package mailer is the email channel of the notification sink. Email is
// strictly fire-and-forget: a missing configuration is a silent no-op and
// a delivery failure never fails the operation that triggered it.
package mailer

import (
	"fmt"

	"github.com/sirupsen/logrus"
	"gopkg.in/gomail.v2"
)

// Mailer sends transactional email over SMTP.
type Mailer struct {
	host     string
	port     int
	username string
	password string
	from     string
	log      *logrus.Logger
}

// New creates a Mailer. Leave username/password empty to disable sending.
func New(host string, port int, username, password string, log *logrus.Logger) *Mailer {
	return &Mailer{
		host:     host,
		port:     port,
		username: username,
		password: password,
		from:     fmt.Sprintf("Lost2Found <%s>", username),
		log:      log,
	}
}

// Enabled reports whether credentials are configured.
func (m *Mailer) Enabled() bool {
	return m != nil && m.username != "" && m.password != ""
}

// Send delivers one message. Unconfigured mailers skip silently.
func (m *Mailer) Send(to, subject, text, html string) error {
	if !m.Enabled() {
		return nil
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/plain", text)
	if html != "" {
		msg.AddAlternative("text/html", html)
	}

	d := gomail.NewDialer(m.host, m.port, m.username, m.password)
	if err := d.DialAndSend(msg); err != nil {
		m.log.WithError(err).WithField("to", to).Error("email delivery failed")
		return err
	}
	m.log.WithField("to", to).Info("email sent")
	return nil
}
