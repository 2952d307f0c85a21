package services

import (
	"bytes"
	"crypto/tls"
	"fmt"
	"html/template"
	"net/smtp"
	"net/url"

	"github.com/Dosada05/chess-league/config"
)

const officialVerificationTemplate = `<p>Hello, {{.Name}}!</p>
<p>Please confirm your email address to officiate games in the chess league:</p>
<p><a href="{{.ConfirmationLink}}">{{.ConfirmationLink}}</a></p>
<p>If you cannot open the link, submit this token to <code>POST /officials/verify</code>: <code>{{.Token}}</code></p>`

// VerificationMailer delivers official verification tokens.
type VerificationMailer interface {
	SendOfficialVerificationEmail(to, name, token string) error
}

type EmailService struct {
	cfg          *config.Config
	verification *template.Template
}

func NewEmailService(cfg *config.Config) *EmailService {
	return &EmailService{
		cfg:          cfg,
		verification: template.Must(template.New("official_verification").Parse(officialVerificationTemplate)),
	}
}

func (s *EmailService) SendEmail(to []string, subject string, body string) error {
	if len(to) == 0 {
		return fmt.Errorf("no recipients")
	}
	auth := smtp.PlainAuth("", s.cfg.SMTPUser, s.cfg.SMTPPass, s.cfg.SMTPHost)

	msg := []byte("To: " + to[0] + "\r\n" +
		"From: " + s.cfg.SMTPFrom + "\r\n" +
		"Subject: " + subject + "\r\n" +
		"MIME-version: 1.0;\r\nContent-Type: text/html; charset=\"UTF-8\";\r\n" +
		"\r\n" +
		body + "\r\n")

	addr := fmt.Sprintf("%s:%d", s.cfg.SMTPHost, s.cfg.SMTPPort)
	tlsconfig := &tls.Config{ServerName: s.cfg.SMTPHost}

	var client *smtp.Client
	if s.cfg.SMTPPort == 465 {
		// Прямое TLS-соединение
		conn, err := tls.Dial("tcp", addr, tlsconfig)
		if err != nil {
			return fmt.Errorf("ошибка TLS соединения: %w", err)
		}
		defer conn.Close()
		client, err = smtp.NewClient(conn, s.cfg.SMTPHost)
		if err != nil {
			return fmt.Errorf("ошибка создания SMTP клиента: %w", err)
		}
	} else {
		// STARTTLS
		c, err := smtp.Dial(addr)
		if err != nil {
			return fmt.Errorf("ошибка соединения SMTP: %w", err)
		}
		client = c
		if err = client.StartTLS(tlsconfig); err != nil {
			client.Close()
			return fmt.Errorf("ошибка команды STARTTLS: %w", err)
		}
	}
	defer client.Quit()

	if s.cfg.SMTPUser != "" {
		if err := client.Auth(auth); err != nil {
			return fmt.Errorf("ошибка аутентификации SMTP: %w", err)
		}
	}

	if err := client.Mail(s.cfg.SMTPFrom); err != nil {
		return fmt.Errorf("ошибка MAIL FROM: %w", err)
	}
	for _, addr := range to {
		if err := client.Rcpt(addr); err != nil {
			return fmt.Errorf("ошибка RCPT TO: %w", err)
		}
	}

	w, err := client.Data()
	if err != nil {
		return fmt.Errorf("ошибка команды DATA: %w", err)
	}
	if _, err = w.Write(msg); err != nil {
		return fmt.Errorf("ошибка записи сообщения: %w", err)
	}
	if err = w.Close(); err != nil {
		return fmt.Errorf("ошибка закрытия DATA: %w", err)
	}
	return nil
}

func (s *EmailService) renderVerification(name, token string) (string, error) {
	data := struct {
		Name             string
		Token            string
		ConfirmationLink string
	}{
		Name:             name,
		Token:            token,
		ConfirmationLink: fmt.Sprintf("%s/officials/verify?token=%s", s.cfg.PublicURL, url.QueryEscape(token)),
	}

	var body bytes.Buffer
	if err := s.verification.Execute(&body, data); err != nil {
		return "", fmt.Errorf("ошибка выполнения шаблона %s: %w", s.verification.Name(), err)
	}
	return body.String(), nil
}

func (s *EmailService) SendOfficialVerificationEmail(to, name, token string) error {
	htmlBody, err := s.renderVerification(name, token)
	if err != nil {
		return fmt.Errorf("ошибка генерации тела письма подтверждения: %w", err)
	}
	return s.SendEmail([]string{to}, "Confirm your chess league official account", htmlBody)
}
