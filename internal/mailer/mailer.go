// internal/mailer/mailer.go
package mailer

import (
	"bytes"
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"

	"github.com/google/uuid"

	"github.com/brightpost/mailing-backend/internal/config"
)

// Mailer is the outbound mail transport. Send blocks until the server
// accepts or rejects the message; the dispatcher calls it with a single
// recipient per call.
type Mailer interface {
	Send(ctx context.Context, subject, body, from string, to []string) error
}

// SMTPMailer delivers plain-text mail through an SMTP relay.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
}

func NewSMTPMailer(cfg config.SMTPConfig) *SMTPMailer {
	return &SMTPMailer{
		host:     cfg.Host,
		port:     cfg.Port,
		username: cfg.Username,
		password: cfg.Password,
	}
}

func (m *SMTPMailer) Send(ctx context.Context, subject, body, from string, to []string) error {
	if m.host == "" {
		return fmt.Errorf("SMTP host not configured")
	}
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := buildMessage(subject, body, from, to)

	var auth smtp.Auth
	if m.username != "" {
		auth = smtp.PlainAuth("", m.username, m.password, m.host)
	}

	addr := net.JoinHostPort(m.host, fmt.Sprintf("%d", m.port))
	return smtp.SendMail(addr, auth, from, to, msg)
}

func buildMessage(subject, body, from string, to []string) []byte {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("From: %s\r\n", from))
	buf.WriteString(fmt.Sprintf("To: %s\r\n", strings.Join(to, ", ")))
	buf.WriteString(fmt.Sprintf("Subject: %s\r\n", subject))
	buf.WriteString(fmt.Sprintf("Message-ID: <%s@brightpost>\r\n", uuid.New().String()))
	buf.WriteString("MIME-Version: 1.0\r\n")
	buf.WriteString("Content-Type: text/plain; charset=UTF-8\r\n")
	buf.WriteString("\r\n")
	buf.WriteString(body)
	buf.WriteString("\r\n")
	return buf.Bytes()
}
