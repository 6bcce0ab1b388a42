package services

import (
	"bytes"
	"context"
	"crypto/tls"
	"errors"
	"fmt"
	"html/template"
	"mime"
	"net"
	"net/mail"
	"net/smtp"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/AnshRaj112/portfolio-backend/internal/apperr"
)

// Email is a rendered message ready for delivery.
type Email struct {
	To       string
	Subject  string
	TextBody string
	HTMLBody string
}

// Mailer delivers rendered emails.
type Mailer interface {
	Send(ctx context.Context, email Email) error
}

// PasswordResetEmailData feeds the reset templates.
type PasswordResetEmailData struct {
	SiteName  string
	Username  string
	Code      string
	ExpiresIn string
}

// BuildPasswordResetEmail renders the OTP email with HTML and text bodies.
func BuildPasswordResetEmail(to string, data PasswordResetEmailData) Email {
	return Email{
		To:       to,
		Subject:  fmt.Sprintf("Password Reset Request - %s", data.SiteName),
		TextBody: buildPasswordResetText(data),
		HTMLBody: buildPasswordResetHTML(data),
	}
}

func buildPasswordResetText(data PasswordResetEmailData) string {
	var buf bytes.Buffer
	buf.WriteString(fmt.Sprintf("Hello %s,\n\n", data.Username))
	buf.WriteString(fmt.Sprintf("Your %s password reset code is: %s\n\n", data.SiteName, data.Code))
	buf.WriteString(fmt.Sprintf("This code expires in %s.\n\n", data.ExpiresIn))
	buf.WriteString("If you did not request a password reset, you can safely ignore this email.\n")
	return buf.String()
}

var passwordResetTmpl = template.Must(template.New("password-reset").Parse(passwordResetHTMLTemplate))

func buildPasswordResetHTML(data PasswordResetEmailData) string {
	var buf bytes.Buffer
	_ = passwordResetTmpl.Execute(&buf, data)
	return buf.String()
}

const passwordResetHTMLTemplate = `<!DOCTYPE html>
<html>
<head>
  <meta charset="UTF-8">
  <meta name="viewport" content="width=device-width, initial-scale=1.0">
  <title>Password Reset</title>
</head>
<body style="margin: 0; padding: 0; font-family: Arial, sans-serif; background-color: #f8f9fa;">
  <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="background-color: #f8f9fa;">
    <tr>
      <td align="center" style="padding: 40px 20px;">
        <table role="presentation" width="100%" cellspacing="0" cellpadding="0" style="max-width: 600px; background-color: #ffffff; border-radius: 8px;">
          <tr>
            <td style="background: linear-gradient(135deg, #667eea 0%, #764ba2 100%); padding: 30px; text-align: center; border-radius: 8px 8px 0 0;">
              <h1 style="color: #ffffff; margin: 0; font-size: 26px;">{{.SiteName}}</h1>
              <p style="color: #e3f2fd; margin: 5px 0 0 0; font-size: 14px;">Password Reset Request</p>
            </td>
          </tr>
          <tr>
            <td style="padding: 40px 30px;">
              <h2 style="color: #333333; margin-top: 0;">Hello {{.Username}}!</h2>
              <p style="color: #666666; line-height: 1.6;">You have requested to reset your password for the admin panel.</p>
              <div style="background-color: #f0f7ff; border-left: 4px solid #2196f3; padding: 20px; margin: 25px 0; text-align: center;">
                <span style="font-size: 32px; font-weight: 700; letter-spacing: 8px; color: #1f2937; font-family: 'Courier New', monospace;">{{.Code}}</span>
              </div>
              <p style="color: #666666; font-size: 14px;">This code expires in {{.ExpiresIn}}.</p>
              <p style="color: #999999; font-size: 12px;">If you did not request a password reset, you can safely ignore this email.</p>
            </td>
          </tr>
        </table>
      </td>
    </tr>
  </table>
</body>
</html>`

// SMTPMailer sends mail over SMTP. Port 465 uses implicit TLS; any other
// port uses STARTTLS when the server offers it.
type SMTPMailer struct {
	host        string
	port        string
	username    string
	password    string
	from        string
	displayName string
	timeout     time.Duration
}

func NewSMTPMailer(host, port, username, password, from, displayName string) *SMTPMailer {
	if from == "" {
		from = username
	}
	return &SMTPMailer{
		host:        host,
		port:        port,
		username:    username,
		password:    password,
		from:        from,
		displayName: displayName,
		timeout:     15 * time.Second,
	}
}

var errMailerNotConfigured = errors.New("smtp is not configured")

// Send implements Mailer. Failures are returned as apperr.ErrExternalService.
func (m *SMTPMailer) Send(ctx context.Context, email Email) error {
	if m == nil || m.host == "" {
		return apperr.External("smtp", errMailerNotConfigured)
	}
	if err := m.send(ctx, email); err != nil {
		return apperr.External("smtp", err)
	}
	return nil
}

func (m *SMTPMailer) send(ctx context.Context, email Email) error {
	addr := net.JoinHostPort(m.host, m.port)
	dialer := &net.Dialer{Timeout: m.timeout}

	var (
		conn net.Conn
		err  error
	)
	if m.port == "465" {
		conn, err = tls.DialWithDialer(dialer, "tcp", addr, &tls.Config{ServerName: m.host})
	} else {
		conn, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return err
	}
	defer conn.Close()

	if deadline, ok := ctx.Deadline(); ok {
		_ = conn.SetDeadline(deadline)
	} else {
		_ = conn.SetDeadline(time.Now().Add(m.timeout))
	}

	client, err := smtp.NewClient(conn, m.host)
	if err != nil {
		return err
	}
	defer client.Close()

	if m.port != "465" {
		if ok, _ := client.Extension("STARTTLS"); ok {
			if err := client.StartTLS(&tls.Config{ServerName: m.host}); err != nil {
				return err
			}
		}
	}

	if m.username != "" {
		if err := client.Auth(smtp.PlainAuth("", m.username, m.password, m.host)); err != nil {
			return err
		}
	}

	if err := client.Mail(m.from); err != nil {
		return err
	}
	if err := client.Rcpt(email.To); err != nil {
		return err
	}

	w, err := client.Data()
	if err != nil {
		return err
	}
	if _, err := w.Write(m.compose(email)); err != nil {
		return err
	}
	if err := w.Close(); err != nil {
		return err
	}
	return client.Quit()
}

// compose builds a multipart/alternative message with text and HTML parts.
func (m *SMTPMailer) compose(email Email) []byte {
	from := (&mail.Address{Name: m.displayName, Address: m.from}).String()
	boundary := "alt-" + strings.ReplaceAll(uuid.New().String(), "-", "")

	var buf bytes.Buffer
	fmt.Fprintf(&buf, "From: %s\r\n", from)
	fmt.Fprintf(&buf, "To: %s\r\n", email.To)
	fmt.Fprintf(&buf, "Subject: %s\r\n", mime.QEncoding.Encode("utf-8", email.Subject))
	buf.WriteString("MIME-Version: 1.0\r\n")
	fmt.Fprintf(&buf, "Content-Type: multipart/alternative; boundary=%q\r\n\r\n", boundary)

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	buf.WriteString("Content-Type: text/plain; charset=\"utf-8\"\r\n\r\n")
	buf.WriteString(email.TextBody)
	buf.WriteString("\r\n")

	fmt.Fprintf(&buf, "--%s\r\n", boundary)
	buf.WriteString("Content-Type: text/html; charset=\"utf-8\"\r\n\r\n")
	buf.WriteString(email.HTMLBody)
	buf.WriteString("\r\n")

	fmt.Fprintf(&buf, "--%s--\r\n", boundary)
	return buf.Bytes()
}
