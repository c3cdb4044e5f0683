package notify

import (
	"context"
	"fmt"
	"net"
	"net/smtp"
	"strings"
	"time"

	"github.com/noah-isme/perf-review-api/pkg/config"
)

// EmailSender delivers intents over SMTP. When no host is configured the
// sender is a no-op.
type EmailSender struct {
	cfg config.NotificationsConfig
}

// NewEmailSender builds an SMTP sender from configuration.
func NewEmailSender(cfg config.NotificationsConfig) *EmailSender {
	return &EmailSender{cfg: cfg}
}

// Name implements Sender.
func (s *EmailSender) Name() string { return "email" }

// Send implements Sender.
func (s *EmailSender) Send(ctx context.Context, intent Intent) error {
	if s.cfg.SMTPHost == "" || len(intent.Recipients) == 0 {
		return nil
	}

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	dialer := net.Dialer{Timeout: 10 * time.Second}
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("dial smtp: %w", err)
	}
	defer conn.Close()

	client, err := smtp.NewClient(conn, s.cfg.SMTPHost)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	defer client.Close()

	if s.cfg.SMTPUser != "" {
		auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPassword, s.cfg.SMTPHost)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("smtp auth: %w", err)
		}
	}

	if err := client.Mail(s.cfg.EmailFrom); err != nil {
		return fmt.Errorf("smtp mail: %w", err)
	}
	for _, rcpt := range intent.Recipients {
		if err := client.Rcpt(rcpt); err != nil {
			return fmt.Errorf("smtp rcpt %s: %w", rcpt, err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("smtp data: %w", err)
	}
	if _, err := w.Write(buildMessage(s.cfg.EmailFrom, intent)); err != nil {
		_ = w.Close()
		return fmt.Errorf("smtp write: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("smtp close: %w", err)
	}
	return client.Quit()
}

func buildMessage(from string, intent Intent) []byte {
	var b strings.Builder
	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", strings.Join(intent.Recipients, ", "))
	fmt.Fprintf(&b, "Subject: %s\r\n", intent.Subject)
	b.WriteString("MIME-Version: 1.0\r\nContent-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	b.WriteString(intent.Body)
	b.WriteString("\r\n")
	return []byte(b.String())
}
