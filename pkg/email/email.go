package email

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"net/smtp"
	"time"

	"scholarship-backend/internal/domain"
)

// Config holds SMTP settings. From defaults to Username when empty.
type Config struct {
	Host     string
	Port     string
	Username string
	Password string
	From     string
	To       string
}

// EmailService sends operator alerts via SMTP
type EmailService struct {
	host      string
	port      string
	username  string
	password  string
	fromEmail string
	toEmail   string

	sendMail func(addr string, a smtp.Auth, from string, to []string, msg []byte) error
}

func NewEmailService(cfg Config) *EmailService {
	from := cfg.From
	if from == "" {
		from = cfg.Username
	}
	return &EmailService{
		host:      cfg.Host,
		port:      cfg.Port,
		username:  cfg.Username,
		password:  cfg.Password,
		fromEmail: from,
		toEmail:   cfg.To,
		sendMail:  smtp.SendMail,
	}
}

type jobFailureData struct {
	Job       string
	Attempts  int
	LastError string
	FailedAt  string
	ID        int64
}

const jobFailureTemplate = `<!DOCTYPE html>
<html>
<head>
    <meta charset="UTF-8">
    <title>Scheduled job failed</title>
    <style>
        body { font-family: Arial, sans-serif; line-height: 1.6; color: #333; }
        .container { max-width: 600px; margin: 0 auto; padding: 20px; }
        .header { background: #b3261e; color: white; padding: 20px; text-align: center; }
        .content { padding: 20px; background: #f9f9f9; }
        .field { margin-bottom: 15px; }
        .label { font-weight: bold; color: #555; }
        .error-box { background: white; padding: 15px; border-left: 4px solid #b3261e; margin-top: 10px; font-family: monospace; }
    </style>
</head>
<body>
    <div class="container">
        <div class="header">
            <h1>Scheduled job failed</h1>
        </div>
        <div class="content">
            <div class="field"><span class="label">Job:</span> {{.Job}}</div>
            <div class="field"><span class="label">Attempts:</span> {{.Attempts}}</div>
            <div class="field"><span class="label">Failed at:</span> {{.FailedAt}}</div>
            {{if .ID}}<div class="field"><span class="label">Failure record:</span> #{{.ID}}</div>{{end}}
            <div class="field">
                <div class="label">Last error:</div>
                <div class="error-box">{{.LastError}}</div>
            </div>
            <p>Calls may be left in a stale status. Run <code>scholarshipctl transition</code> once the cause is fixed.</p>
        </div>
    </div>
</body>
</html>`

var jobFailureTmpl = template.Must(template.New("job_failure").Parse(jobFailureTemplate))

// NotifyFailure emails the alert recipient about a job that gave up retrying.
func (s *EmailService) NotifyFailure(ctx context.Context, f domain.TickFailure) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	var body bytes.Buffer
	err := jobFailureTmpl.Execute(&body, jobFailureData{
		Job:       f.Job,
		Attempts:  f.Attempts,
		LastError: f.LastError,
		FailedAt:  f.FailedAt.Format(time.RFC3339),
		ID:        f.ID,
	})
	if err != nil {
		return fmt.Errorf("failed to execute email template: %w", err)
	}

	subject := fmt.Sprintf("[scholarships] %s failed after %d attempts", f.Job, f.Attempts)

	// Construct MIME message
	msg := []byte(fmt.Sprintf(
		"From: %s\r\n"+
			"To: %s\r\n"+
			"Subject: %s\r\n"+
			"MIME-Version: 1.0\r\n"+
			"Content-Type: text/html; charset=UTF-8\r\n"+
			"\r\n"+
			"%s",
		s.fromEmail,
		s.toEmail,
		subject,
		body.String(),
	))

	auth := smtp.PlainAuth("", s.username, s.password, s.host)
	addr := fmt.Sprintf("%s:%s", s.host, s.port)
	if err := s.sendMail(addr, auth, s.fromEmail, []string{s.toEmail}, msg); err != nil {
		return fmt.Errorf("failed to send email: %w", err)
	}

	return nil
}

// IsConfigured checks if the email service has valid SMTP configuration and a recipient
func (s *EmailService) IsConfigured() bool {
	return s.host != "" && s.username != "" && s.password != "" && s.toEmail != ""
}
