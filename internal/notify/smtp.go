package notify

import (
	"context"
	"fmt"
	"mime/quotedprintable"
	"net"
	"net/smtp"
	"strings"

	"github.com/dmitrijs2005/secureshare/internal/common"
)

// SMTPConfig holds the mail relay settings. An empty User disables
// authentication, which suits local development relays.
type SMTPConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	From     string
}

// SMTPNotifier delivers messages over a plain SMTP relay as
// multipart/alternative mail (text plus optional HTML part).
type SMTPNotifier struct {
	cfg SMTPConfig
}

func NewSMTPNotifier(cfg SMTPConfig) *SMTPNotifier {
	return &SMTPNotifier{cfg: cfg}
}

// sendMail is a seam for testing smtp.SendMail.
var sendMail = smtp.SendMail

func (n *SMTPNotifier) Notify(ctx context.Context, msg *Message) error {
	addr := net.JoinHostPort(n.cfg.Host, n.cfg.Port)

	var auth smtp.Auth
	if n.cfg.User != "" {
		auth = smtp.PlainAuth("", n.cfg.User, n.cfg.Password, n.cfg.Host)
	}

	body, err := buildMIME(n.cfg.From, msg)
	if err != nil {
		return fmt.Errorf("%w: %v", common.ErrNotifierFailure, err)
	}

	if err := sendMail(addr, auth, n.cfg.From, []string{msg.To}, body); err != nil {
		return fmt.Errorf("%w: %v", common.ErrNotifierFailure, err)
	}
	return nil
}

const mimeBoundary = "secureshare-alt"

func buildMIME(from string, msg *Message) ([]byte, error) {
	var b strings.Builder

	fmt.Fprintf(&b, "From: %s\r\n", from)
	fmt.Fprintf(&b, "To: %s\r\n", msg.To)
	fmt.Fprintf(&b, "Subject: %s\r\n", msg.Subject)
	b.WriteString("MIME-Version: 1.0\r\n")

	if msg.HTML == "" {
		b.WriteString("Content-Type: text/plain; charset=utf-8\r\n\r\n")
		b.WriteString(msg.Text)
		return []byte(b.String()), nil
	}

	fmt.Fprintf(&b, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", mimeBoundary)
	for _, part := range []struct {
		contentType string
		body        string
	}{
		{"text/plain; charset=utf-8", msg.Text},
		{"text/html; charset=utf-8", msg.HTML},
	} {
		fmt.Fprintf(&b, "--%s\r\n", mimeBoundary)
		fmt.Fprintf(&b, "Content-Type: %s\r\n", part.contentType)
		b.WriteString("Content-Transfer-Encoding: quoted-printable\r\n\r\n")
		qp := quotedprintable.NewWriter(&b)
		if _, err := qp.Write([]byte(part.body)); err != nil {
			return nil, err
		}
		if err := qp.Close(); err != nil {
			return nil, err
		}
		b.WriteString("\r\n")
	}
	fmt.Fprintf(&b, "--%s--\r\n", mimeBoundary)

	return []byte(b.String()), nil
}
