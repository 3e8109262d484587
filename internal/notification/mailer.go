// Package notification delivers account emails.
package notification

import (
	"context"
	"fmt"
	"html"
	"sync"
	"time"

	"github.com/ergosit/posture-auth/internal/config"
	"go.uber.org/zap"
	"golang.org/x/time/rate"
	"gopkg.in/gomail.v2"
)

// Sender delivers a composed message.
type Sender interface {
	DialAndSend(m ...*gomail.Message) error
}

// SMTPMailer sends mail through an SMTP relay in the background, at most
// SMTP_SEND_RATE messages per second. Send failures are logged and never
// reach the caller.
type SMTPMailer struct {
	sender   Sender
	from     string
	codeTTL  time.Duration
	logger   *zap.Logger
	pace     *rate.Limiter
	async    bool
	inflight sync.WaitGroup
}

func NewSMTPMailer(cfg config.SMTPConfig, codeTTL time.Duration, logger *zap.Logger) *SMTPMailer {
	return &SMTPMailer{
		sender:  gomail.NewDialer(cfg.Host, cfg.Port, cfg.Username, cfg.Password),
		from:    cfg.From,
		codeTTL: codeTTL,
		logger:  logger,
		pace:    newPace(cfg.SendRate),
		async:   true,
	}
}

// newPace allows bursts of one message. A non-positive rate disables pacing.
func newPace(perSecond float64) *rate.Limiter {
	if perSecond <= 0 {
		return rate.NewLimiter(rate.Inf, 1)
	}
	return rate.NewLimiter(rate.Limit(perSecond), 1)
}

func (m *SMTPMailer) SendVerification(ctx context.Context, to, name, link string) error {
	body := fmt.Sprintf(`<h1>Welcome, %s!</h1>
<p>Please verify your email address by clicking the link below:</p>
<p><a href="%s">Verify Email</a></p>`, html.EscapeString(greetingName(name)), html.EscapeString(link))

	return m.send(ctx, to, "Verify your email", body)
}

func (m *SMTPMailer) SendResetCode(ctx context.Context, to, name, code string) error {
	body := fmt.Sprintf(`<h1>Password reset</h1>
<p>Hi %s, use the code below to reset your password. It expires in %d minutes.</p>
<p style="font-size:24px;letter-spacing:4px"><strong>%s</strong></p>
<p>If you did not request this, you can ignore this email.</p>`, html.EscapeString(greetingName(name)), int(m.codeTTL.Minutes()), html.EscapeString(code))

	return m.send(ctx, to, "Your password reset code", body)
}

func (m *SMTPMailer) send(ctx context.Context, to, subject, body string) error {
	if err := ctx.Err(); err != nil {
		return err
	}

	msg := gomail.NewMessage()
	msg.SetHeader("From", m.from)
	msg.SetHeader("To", to)
	msg.SetHeader("Subject", subject)
	msg.SetBody("text/html", body)

	if !m.async {
		return m.deliver(ctx, to, subject, msg)
	}

	// The request context ends with the response, the delivery must not.
	bg := context.WithoutCancel(ctx)
	m.inflight.Add(1)
	go func() {
		defer m.inflight.Done()
		_ = m.deliver(bg, to, subject, msg)
	}()
	return nil
}

func (m *SMTPMailer) deliver(ctx context.Context, to, subject string, msg *gomail.Message) error {
	if err := m.pace.Wait(ctx); err != nil {
		m.logger.Error("email not sent", zap.String("to", to), zap.String("subject", subject), zap.Error(err))
		return err
	}

	if err := m.sender.DialAndSend(msg); err != nil {
		m.logger.Error("failed to send email",
			zap.String("to", to),
			zap.String("subject", subject),
			zap.Error(err),
		)
		return err
	}
	m.logger.Debug("email sent", zap.String("to", to), zap.String("subject", subject))
	return nil
}

// Close waits for background deliveries to finish. Callers stop producing
// mail before closing.
func (m *SMTPMailer) Close(ctx context.Context) error {
	if m == nil {
		return nil
	}

	done := make(chan struct{})
	go func() {
		m.inflight.Wait()
		close(done)
	}()

	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return fmt.Errorf("pending emails not delivered: %w", ctx.Err())
	}
}

// LogMailer only logs that a message would have been sent. Secrets such as
// links and codes are not written to the log.
type LogMailer struct {
	logger *zap.Logger
}

func NewLogMailer(logger *zap.Logger) *LogMailer {
	return &LogMailer{logger: logger}
}

func (m *LogMailer) SendVerification(_ context.Context, to, _, _ string) error {
	m.logger.Info("email delivery disabled, verification mail not sent", zap.String("to", to))
	return nil
}

func (m *LogMailer) SendResetCode(_ context.Context, to, _, _ string) error {
	m.logger.Info("email delivery disabled, reset code mail not sent", zap.String("to", to))
	return nil
}

func greetingName(name string) string {
	if name == "" {
		return "there"
	}
	return name
}
