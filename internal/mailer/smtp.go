package mailer

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
	"time"

	apperrors "statement-distributor/pkg/errors"
	"statement-distributor/pkg/logger"
)

// SMTPConfig holds the transport settings
type SMTPConfig struct {
	Host        string
	Port        int
	UseTLS      bool
	FromAddress string
	Username    string
	Password    string
	Timeout     time.Duration
}

// SMTPMailer sends each message over its own SMTP connection.
type SMTPMailer struct {
	config SMTPConfig
	log    logger.Logger
	now    func() time.Time
	dial   func(ctx context.Context, network, addr string) (net.Conn, error)
}

// NewSMTPMailer creates an SMTPMailer
func NewSMTPMailer(config SMTPConfig, log logger.Logger) *SMTPMailer {
	if config.Timeout == 0 {
		config.Timeout = 30 * time.Second
	}
	dialer := &net.Dialer{Timeout: config.Timeout}
	return &SMTPMailer{config: config, log: log.WithComponent("mailer"), now: time.Now, dial: dialer.DialContext}
}

// Send implements Mailer. STARTTLS is required when UseTLS is set; credentials are only
// sent when both username and password are present.
func (m *SMTPMailer) Send(ctx context.Context, msg Message) error {
	raw, err := m.build(msg)
	if err != nil {
		return apperrors.SendError(apperrors.CodeDeliveryFailed, msg.To, err)
	}

	addr := net.JoinHostPort(m.config.Host, strconv.Itoa(m.config.Port))
	conn, err := m.dial(ctx, "tcp", addr)
	if err != nil {
		return apperrors.SendError(apperrors.CodeConnectionFailed, msg.To, err)
	}
	deadline := time.Now().Add(m.config.Timeout)
	if d, ok := ctx.Deadline(); ok && d.Before(deadline) {
		deadline = d
	}
	if err := conn.SetDeadline(deadline); err != nil {
		conn.Close()
		return apperrors.SendError(apperrors.CodeConnectionFailed, msg.To, err)
	}

	client, err := smtp.NewClient(conn, m.config.Host)
	if err != nil {
		conn.Close()
		return apperrors.SendError(apperrors.CodeConnectionFailed, msg.To, err)
	}
	defer client.Close()

	if err := m.deliver(client, msg.To, raw); err != nil {
		return apperrors.SendError(apperrors.CodeDeliveryFailed, msg.To, err)
	}

	m.log.WithField("recipient", msg.To).Infof("Email sent successfully to %s", msg.To)
	return nil
}

func (m *SMTPMailer) deliver(client *smtp.Client, to string, raw []byte) error {
	if m.config.UseTLS {
		if ok, _ := client.Extension("STARTTLS"); !ok {
			return fmt.Errorf("server does not support STARTTLS")
		}
		if err := client.StartTLS(&tls.Config{ServerName: m.config.Host}); err != nil {
			return fmt.Errorf("starttls: %w", err)
		}
	}

	if m.config.Username != "" && m.config.Password != "" {
		auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("auth: %w", err)
		}
	}

	if err := client.Mail(m.config.FromAddress); err != nil {
		return fmt.Errorf("mail from: %w", err)
	}
	if err := client.Rcpt(to); err != nil {
		return fmt.Errorf("rcpt to: %w", err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("data: %w", err)
	}
	if _, err := w.Write(raw); err != nil {
		w.Close()
		return fmt.Errorf("write message: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("finish message: %w", err)
	}

	return client.Quit()
}

// build renders msg as a multipart/mixed MIME message with a plain text body and an
// optional base64 attachment.
func (m *SMTPMailer) build(msg Message) ([]byte, error) {
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)

	fmt.Fprintf(&buf, "From: %s\r\n", m.config.FromAddress)
	fmt.Fprintf(&buf, "To: %s\r\n", msg.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", msg.Subject))
	fmt.Fprintf(&buf, "Date: %s\r\n", m.now().Format(time.RFC1123Z))
	fmt.Fprintf(&buf, "MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/mixed; boundary=%q\r\n\r\n", mw.Boundary())

	text, err := mw.CreatePart(textproto.MIMEHeader{
		"Content-Type":              {"text/plain; charset=\"utf-8\""},
		"Content-Transfer-Encoding": {"8bit"},
	})
	if err != nil {
		return nil, err
	}
	if _, err := text.Write([]byte(msg.Body)); err != nil {
		return nil, err
	}

	if msg.Attachment != nil {
		part, err := mw.CreatePart(textproto.MIMEHeader{
			"Content-Type":              {"application/octet-stream"},
			"Content-Transfer-Encoding": {"base64"},
			"Content-Disposition":       {mime.FormatMediaType("attachment", map[string]string{"filename": msg.Attachment.Filename})},
		})
		if err != nil {
			return nil, err
		}
		if err := writeBase64Lines(part, msg.Attachment.Content); err != nil {
			return nil, err
		}
	}

	if err := mw.Close(); err != nil {
		return nil, err
	}
	return buf.Bytes(), nil
}

// writeBase64Lines encodes content in 76 character lines
func writeBase64Lines(w io.Writer, content []byte) error {
	encoded := base64.StdEncoding.EncodeToString(content)
	for len(encoded) > 76 {
		if _, err := fmt.Fprintf(w, "%s\r\n", encoded[:76]); err != nil {
			return err
		}
		encoded = encoded[76:]
	}
	_, err := fmt.Fprintf(w, "%s\r\n", encoded)
	return err
}
