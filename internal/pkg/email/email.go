package email

import (
	"context"
	"crypto/rand"
	"encoding/base64"
	"fmt"
	"html"
	"net/smtp"
	"strconv"
	"strings"

	"github.com/rs/zerolog"
)

// Mailer sends transactional email
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
	SendPasswordReset(ctx context.Context, to, username, token string) error
	SendNotification(ctx context.Context, to, title, message string) error
}

// SMTPConfig holds configuration for SMTP server
type SMTPConfig struct {
	Host     string
	Port     int
	Username string
	Password string
	From     string
	BaseURL  string
}

// SMTPMailer implements Mailer over plain SMTP with STARTTLS negotiated by net/smtp
type SMTPMailer struct {
	config SMTPConfig
	logger zerolog.Logger
	send   func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

// NewSMTPMailer creates a new SMTPMailer
func NewSMTPMailer(config SMTPConfig, logger zerolog.Logger) *SMTPMailer {
	return &SMTPMailer{
		config: config,
		logger: logger,
		send:   smtp.SendMail,
	}
}

func (m *SMTPMailer) configured() bool {
	return m.config.Host != "" && m.config.Username != "" && m.config.Password != ""
}

// SendPasswordReset sends the reset link for token
func (m *SMTPMailer) SendPasswordReset(ctx context.Context, to, username, token string) error {
	resetURL := fmt.Sprintf("%s/reset-password?token=%s", strings.TrimRight(m.config.BaseURL, "/"), token)

	if !m.configured() {
		m.logger.Warn().
			Str("to", to).
			Str("resetURL", resetURL).
			Msg("SMTP credentials not configured - password reset email not sent")
		return nil
	}

	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">Reset your password</h2>
				<p>Hello %s,</p>
				<p>We received a request to reset your AlumniHub password. Use the button below to choose a new one:</p>
				<div style="text-align: center; margin: 30px 0;">
					<a href="%s" style="background-color: #4a86e8; color: white; padding: 12px 24px; text-decoration: none; border-radius: 4px; font-weight: bold;">Reset Password</a>
				</div>
				<p>This link expires in one hour. If you did not ask for a reset, ignore this email.</p>
				<p>The AlumniHub Team</p>
			</div>
		</body>
		</html>
	`, html.EscapeString(username), resetURL)

	return m.Send(ctx, to, "Reset your AlumniHub password", body)
}

// SendNotification delivers a notification by email
func (m *SMTPMailer) SendNotification(ctx context.Context, to, title, message string) error {
	if !m.configured() {
		m.logger.Debug().Str("to", to).Str("title", title).Msg("SMTP credentials not configured - notification email skipped")
		return nil
	}

	body := fmt.Sprintf(`
		<html>
		<body>
			<div style="font-family: Arial, sans-serif; max-width: 600px; margin: 0 auto;">
				<h2 style="color: #333;">%s</h2>
				<p>%s</p>
				<p style="color: #888; font-size: 12px;">You can change which emails you receive in your notification preferences.</p>
			</div>
		</body>
		</html>
	`, html.EscapeString(title), html.EscapeString(message))

	return m.Send(ctx, to, title, body)
}

// Send sends an HTML email
func (m *SMTPMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	auth := smtp.PlainAuth("", m.config.Username, m.config.Password, m.config.Host)

	headers := [][2]string{
		{"From", m.config.From},
		{"To", to},
		{"Subject", subject},
		{"MIME-Version", "1.0"},
		{"Content-Type", "text/html; charset=UTF-8"},
	}

	var b strings.Builder
	for _, h := range headers {
		fmt.Fprintf(&b, "%s: %s\r\n", h[0], h[1])
	}
	b.WriteString("\r\n")
	b.WriteString(htmlBody)

	addr := m.config.Host + ":" + strconv.Itoa(m.config.Port)
	if err := m.send(addr, auth, m.config.From, []string{to}, []byte(b.String())); err != nil {
		m.logger.Error().Err(err).Str("server", addr).Str("to", to).Msg("Failed to send email")
		return fmt.Errorf("failed to send email: %w", err)
	}
	return nil
}

// GenerateToken returns a URL-safe random token of 32 bytes
func GenerateToken() (string, error) {
	buf := make([]byte, 32)
	if _, err := rand.Read(buf); err != nil {
		return "", fmt.Errorf("failed to generate token: %w", err)
	}
	return base64.RawURLEncoding.EncodeToString(buf), nil
}
