package services

import (
	"context"
	"crypto/tls"
	"fmt"
	"log"
	"net/smtp"
	"os"
	"strings"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/credentials"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ses"
)

// Mailer sends a single email.
type Mailer interface {
	Send(ctx context.Context, to, subject, htmlBody string) error
}

// NewMailerFromEnv builds a mailer based on the EMAIL_DRIVER environment
// variable. "ses" selects AWS SES; anything else falls back to SMTP.
func NewMailerFromEnv() Mailer {
	if os.Getenv("EMAIL_DRIVER") == "ses" {
		mailer, err := NewSESMailer()
		if err != nil {
			log.Printf("Mailer: SES setup failed, falling back to SMTP: %v", err)
			return NewSMTPMailer()
		}
		return mailer
	}
	return NewSMTPMailer()
}

// getEnvOrDefault returns the environment variable value or a default
func getEnvOrDefault(key, defaultVal string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return defaultVal
}

// SMTPMailer sends email over SMTP with STARTTLS.
type SMTPMailer struct {
	host     string
	port     int
	username string
	password string
	from     string
}

// NewSMTPMailer creates an SMTP mailer from environment variables.
func NewSMTPMailer() *SMTPMailer {
	port := 587
	if p := os.Getenv("SMTP_PORT"); p != "" {
		fmt.Sscanf(p, "%d", &port)
	}

	return &SMTPMailer{
		host:     getEnvOrDefault("SMTP_HOST", "smtp.gmail.com"),
		port:     port,
		username: os.Getenv("SMTP_USERNAME"),
		password: os.Getenv("SMTP_PASSWORD"),
		from:     getEnvOrDefault("SMTP_FROM", "noreply@skillhub.app"),
	}
}

// IsConfigured checks if SMTP credentials are present
func (m *SMTPMailer) IsConfigured() bool {
	return m.username != "" && m.password != ""
}

// Send delivers an email using SMTP with TLS
func (m *SMTPMailer) Send(_ context.Context, to, subject, htmlBody string) error {
	if !m.IsConfigured() {
		log.Printf("SMTP not configured, dropping email to %s: %s", to, subject)
		return fmt.Errorf("SMTP not configured")
	}

	headers := make(map[string]string)
	headers["From"] = fmt.Sprintf("SkillHub <%s>", m.from)
	headers["To"] = to
	headers["Subject"] = subject
	headers["MIME-Version"] = "1.0"
	headers["Content-Type"] = "text/html; charset=UTF-8"

	var message strings.Builder
	for k, v := range headers {
		message.WriteString(fmt.Sprintf("%s: %s\r\n", k, v))
	}
	message.WriteString("\r\n")
	message.WriteString(htmlBody)

	addr := fmt.Sprintf("%s:%d", m.host, m.port)
	auth := smtp.PlainAuth("", m.username, m.password, m.host)

	tlsConfig := &tls.Config{
		InsecureSkipVerify: false,
		ServerName:         m.host,
	}

	conn, err := smtp.Dial(addr)
	if err != nil {
		return fmt.Errorf("failed to connect to SMTP server: %w", err)
	}
	defer conn.Close()

	if err := conn.StartTLS(tlsConfig); err != nil {
		return fmt.Errorf("failed to start TLS: %w", err)
	}

	if err := conn.Auth(auth); err != nil {
		return fmt.Errorf("SMTP authentication failed: %w", err)
	}

	if err := conn.Mail(m.from); err != nil {
		return fmt.Errorf("failed to set sender: %w", err)
	}

	if err := conn.Rcpt(to); err != nil {
		return fmt.Errorf("failed to set recipient: %w", err)
	}

	w, err := conn.Data()
	if err != nil {
		return fmt.Errorf("failed to get data writer: %w", err)
	}

	if _, err = w.Write([]byte(message.String())); err != nil {
		return fmt.Errorf("failed to write email body: %w", err)
	}

	if err = w.Close(); err != nil {
		return fmt.Errorf("failed to close data writer: %w", err)
	}

	conn.Quit()

	log.Printf("Email sent to %s: %s", to, subject)
	return nil
}

// SESMailer sends email through AWS SES.
type SESMailer struct {
	client *ses.SES
	from   string
}

// NewSESMailer creates an SES mailer from environment variables. Static
// credentials are used when AWS_ACCESS_KEY_ID is set, otherwise the SDK
// falls back to the default credential chain (IAM role, shared config).
func NewSESMailer() (*SESMailer, error) {
	region := getEnvOrDefault("AWS_SES_REGION", "us-east-1")

	cfg := aws.NewConfig().WithRegion(region)
	if accessKey := os.Getenv("AWS_ACCESS_KEY_ID"); accessKey != "" {
		cfg = cfg.WithCredentials(credentials.NewStaticCredentials(
			accessKey,
			os.Getenv("AWS_SECRET_ACCESS_KEY"),
			"",
		))
	}

	sess, err := session.NewSession(cfg)
	if err != nil {
		return nil, fmt.Errorf("failed to create AWS session: %w", err)
	}

	return &SESMailer{
		client: ses.New(sess),
		from:   getEnvOrDefault("SES_FROM", "noreply@skillhub.app"),
	}, nil
}

// Send delivers an email via the SES SendEmail API
func (m *SESMailer) Send(ctx context.Context, to, subject, htmlBody string) error {
	input := &ses.SendEmailInput{
		Source: aws.String(m.from),
		Destination: &ses.Destination{
			ToAddresses: []*string{aws.String(to)},
		},
		Message: &ses.Message{
			Subject: &ses.Content{
				Data:    aws.String(subject),
				Charset: aws.String("UTF-8"),
			},
			Body: &ses.Body{
				Html: &ses.Content{
					Data:    aws.String(htmlBody),
					Charset: aws.String("UTF-8"),
				},
			},
		},
	}

	if _, err := m.client.SendEmailWithContext(ctx, input); err != nil {
		return fmt.Errorf("failed to send email via SES: %w", err)
	}

	log.Printf("Email sent via SES to %s: %s", to, subject)
	return nil
}
