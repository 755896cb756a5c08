package email

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/base64"
	"fmt"
	"mime"
	"mime/multipart"
	"net"
	"net/smtp"
	"net/textproto"
	"strconv"
)

// sendWithSMTP delivers one message over SMTP. Dialing and the whole
// session are bounded by ctx.
func (s *Service) sendWithSMTP(ctx context.Context, data EmailData, htmlContent, textContent string) error {
	if err := ctx.Err(); err != nil {
		return fmt.Errorf("sending %s email via SMTP: %w", data.TemplateName, err)
	}

	config := s.config.SMTP[string(ProviderSMTP)]
	msg, err := buildSMTPMessage(data, htmlContent, textContent)
	if err != nil {
		return err
	}

	addr := net.JoinHostPort(config.Host, strconv.Itoa(config.Port))
	var dialer net.Dialer
	conn, err := dialer.DialContext(ctx, "tcp", addr)
	if err != nil {
		return fmt.Errorf("connecting to SMTP server %s: %w", addr, err)
	}
	if deadline, ok := ctx.Deadline(); ok {
		conn.SetDeadline(deadline)
	}

	client, err := smtp.NewClient(conn, config.Host)
	if err != nil {
		conn.Close()
		return fmt.Errorf("starting SMTP session: %w", err)
	}
	defer client.Close()

	if ok, _ := client.Extension("STARTTLS"); ok {
		if err := client.StartTLS(&tls.Config{ServerName: config.Host}); err != nil {
			return fmt.Errorf("starting TLS: %w", err)
		}
	}
	if ok, _ := client.Extension("AUTH"); ok && config.Username != "" {
		if err := client.Auth(smtp.PlainAuth("", config.Username, config.Password, config.Host)); err != nil {
			return fmt.Errorf("authenticating to SMTP server: %w", err)
		}
	}

	if err := client.Mail(data.From); err != nil {
		return fmt.Errorf("setting sender: %w", err)
	}
	if err := client.Rcpt(data.To); err != nil {
		return fmt.Errorf("setting recipient %s: %w", data.To, err)
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("opening message body: %w", err)
	}
	if _, err := w.Write(msg); err != nil {
		w.Close()
		return fmt.Errorf("writing message body: %w", err)
	}
	if err := w.Close(); err != nil {
		return fmt.Errorf("sending %s email via SMTP: %w", data.TemplateName, err)
	}

	return client.Quit()
}

// buildSMTPMessage renders a multipart/alternative message with base64
// plaintext and HTML parts.
func buildSMTPMessage(data EmailData, htmlContent, textContent string) ([]byte, error) {
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)

	parts := []struct {
		contentType string
		content     string
	}{
		{"text/plain; charset=utf-8", textContent},
		{"text/html; charset=utf-8", htmlContent},
	}
	for _, p := range parts {
		header := textproto.MIMEHeader{}
		header.Set("Content-Type", p.contentType)
		header.Set("Content-Transfer-Encoding", "base64")

		w, err := mw.CreatePart(header)
		if err != nil {
			return nil, fmt.Errorf("building message: %w", err)
		}
		if _, err := w.Write([]byte(base64.StdEncoding.EncodeToString([]byte(p.content)))); err != nil {
			return nil, fmt.Errorf("building message: %w", err)
		}
	}
	if err := mw.Close(); err != nil {
		return nil, fmt.Errorf("building message: %w", err)
	}

	var msg bytes.Buffer
	fmt.Fprintf(&msg, "From: %s\r\n", mime.QEncoding.Encode("utf-8", data.FromName)+" <"+data.From+">")
	fmt.Fprintf(&msg, "To: %s\r\n", data.To)
	fmt.Fprintf(&msg, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", data.Subject))
	msg.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&msg, "Content-Type: multipart/alternative; boundary=%s\r\n\r\n", mw.Boundary())
	msg.Write(body.Bytes())

	return msg.Bytes(), nil
}
