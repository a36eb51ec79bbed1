// Package mailer delivers the digest over authenticated SMTPS.
package mailer

import (
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime"
	"net/smtp"
	"strings"
)

// Mailer sends one plain-text digest per run. In bcc mode the visible To
// header shows only the sender; the envelope always carries every real
// recipient.
type Mailer struct {
	host       string
	port       int
	from       string
	password   string
	recipients []string
	bccMode    bool
}

func New(host string, port int, from, password string, recipients []string, bccMode bool) *Mailer {
	return &Mailer{
		host:       host,
		port:       port,
		from:       from,
		password:   password,
		recipients: recipients,
		bccMode:    bccMode,
	}
}

// Send submits the message over an implicit-TLS connection. It fails fast,
// before dialing, when credentials or recipients are missing.
func (m *Mailer) Send(ctx context.Context, subject, body string) error {
	if m.from == "" || m.password == "" {
		return fmt.Errorf("mailer: sender address or password is missing")
	}
	if len(m.recipients) == 0 {
		return fmt.Errorf("mailer: recipient list is empty")
	}

	msg := m.buildMessage(subject, body)
	addr := fmt.Sprintf("%s:%d", m.host, m.port)

	dialer := tls.Dialer{Config: &tls.Config{ServerName: m.host}}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("mailer: failed to connect to %s: %w", addr, err)
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("mailer: failed to open SMTP session: %w", err)
	}
	defer client.Close()

	auth := smtp.PlainAuth("", m.from, m.password, m.host)
	if err := client.Auth(auth); err != nil {
		return fmt.Errorf("mailer: authentication failed: %w", err)
	}

	if err := client.Mail(m.from); err != nil {
		return fmt.Errorf("mailer: MAIL FROM rejected: %w", err)
	}
	for _, rcpt := range m.recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("mailer: RCPT TO %s rejected: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("mailer: DATA rejected: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		return fmt.Errorf("mailer: failed to write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("mailer: failed to finish message: %w", err)
	}

	return client.Quit()
}

func (m *Mailer) buildMessage(subject, body string) []byte {
	to := strings.Join(m.recipients, ", ")
	if m.bccMode {
		to = m.from
	}

	var sb strings.Builder
	sb.WriteString(fmt.Sprintf("From: %s\r\n", m.from))
	sb.WriteString(fmt.Sprintf("To: %s\r\n", to))
	sb.WriteString(fmt.Sprintf("Subject: %s\r\n", mime.BEncoding.Encode("UTF-8", subject)))
	sb.WriteString("MIME-Version: 1.0\r\n")
	sb.WriteString("Content-Type: text/plain; charset=\"UTF-8\"\r\n")
	sb.WriteString("Content-Transfer-Encoding: base64\r\n")
	sb.WriteString("\r\n")
	sb.WriteString(wrapBase64(body))
	return []byte(sb.String())
}

// wrapBase64 encodes the body and folds it at the 76-column MIME limit.
func wrapBase64(s string) string {
	enc := base64.StdEncoding.EncodeToString([]byte(s))
	var sb strings.Builder
	for len(enc) > 76 {
		sb.WriteString(enc[:76])
		sb.WriteString("\r\n")
		enc = enc[76:]
	}
	sb.WriteString(enc)
	sb.WriteString("\r\n")
	return sb.String()
}
