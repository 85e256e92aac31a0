// Package mail sends transactional email over SMTP.
package mail

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"time"

	"github.com/sony/gobreaker"
	gomail "github.com/wneessen/go-mail"

	portssvc "github.com/SscSPs/vault_ledger/internal/core/ports/services"
	"github.com/SscSPs/vault_ledger/internal/middleware"
)

// ErrUnavailable is returned while the breaker is open.
var ErrUnavailable = errors.New("mail delivery unavailable")

// SMTPConfig holds the SMTP connection settings.
type SMTPConfig struct {
	Host     string
	Port     int
	Secure   bool
	Username string
	Password string
	From     string
}

// BreakerConfig tunes the circuit breaker around SMTP sends.
type BreakerConfig struct {
	MaxRequests         uint32
	Interval            time.Duration
	Timeout             time.Duration
	ConsecutiveFailures uint32
}

// DefaultBreakerConfig opens after five straight failures and retries after a minute.
func DefaultBreakerConfig() BreakerConfig {
	return BreakerConfig{MaxRequests: 1, Interval: 5 * time.Minute, Timeout: time.Minute, ConsecutiveFailures: 5}
}

type sendFunc func(ctx context.Context, msg *gomail.Msg) error

// SMTPMailer delivers messages through a go-mail client guarded by a circuit breaker.
type SMTPMailer struct {
	from    string
	send    sendFunc
	breaker *gobreaker.CircuitBreaker
}

var _ portssvc.Mailer = (*SMTPMailer)(nil)

// NewSMTPMailer builds a mailer for cfg.
func NewSMTPMailer(cfg SMTPConfig, breaker BreakerConfig, logger *slog.Logger) (*SMTPMailer, error) {
	if cfg.Host == "" {
		return nil, fmt.Errorf("smtp host is required")
	}
	opts := []gomail.Option{gomail.WithPort(cfg.Port)}
	if cfg.Secure {
		opts = append(opts, gomail.WithSSL())
	} else {
		opts = append(opts, gomail.WithTLSPolicy(gomail.TLSOpportunistic))
	}
	if cfg.Username != "" {
		opts = append(opts,
			gomail.WithSMTPAuth(gomail.SMTPAuthPlain),
			gomail.WithUsername(cfg.Username),
			gomail.WithPassword(cfg.Password),
		)
	}
	client, err := gomail.NewClient(cfg.Host, opts...)
	if err != nil {
		return nil, fmt.Errorf("create smtp client: %w", err)
	}
	send := func(ctx context.Context, msg *gomail.Msg) error {
		return client.DialAndSendWithContext(ctx, msg)
	}
	return newMailer(cfg.From, send, breaker, logger), nil
}

func newMailer(from string, send sendFunc, cfg BreakerConfig, logger *slog.Logger) *SMTPMailer {
	if logger == nil {
		logger = slog.Default()
	}
	settings := gobreaker.Settings{
		Name:        "smtp",
		MaxRequests: cfg.MaxRequests,
		Interval:    cfg.Interval,
		Timeout:     cfg.Timeout,
		ReadyToTrip: func(counts gobreaker.Counts) bool {
			return counts.ConsecutiveFailures >= cfg.ConsecutiveFailures
		},
		OnStateChange: func(name string, from gobreaker.State, to gobreaker.State) {
			logger.Warn("Circuit breaker state changed",
				slog.String("breaker", name),
				slog.String("from", from.String()),
				slog.String("to", to.String()))
		},
	}
	return &SMTPMailer{from: from, send: send, breaker: gobreaker.NewCircuitBreaker(settings)}
}

// Send renders msg as multipart text/html and delivers it.
func (m *SMTPMailer) Send(ctx context.Context, msg portssvc.MailMessage) error {
	out, err := m.build(msg)
	if err != nil {
		return err
	}
	_, err = m.breaker.Execute(func() (interface{}, error) {
		return nil, m.send(ctx, out)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrUnavailable, err)
	}
	if err != nil {
		return fmt.Errorf("send mail to %s: %w", msg.To, err)
	}
	return nil
}

// State reports the breaker state.
func (m *SMTPMailer) State() gobreaker.State {
	return m.breaker.State()
}

func (m *SMTPMailer) build(msg portssvc.MailMessage) (*gomail.Msg, error) {
	out := gomail.NewMsg()
	if err := out.From(m.from); err != nil {
		return nil, fmt.Errorf("invalid from address %q: %w", m.from, err)
	}
	if err := out.To(msg.To); err != nil {
		return nil, fmt.Errorf("invalid recipient %q: %w", msg.To, err)
	}
	out.Subject(msg.Subject)
	out.SetBodyString(gomail.TypeTextPlain, msg.Text)
	if msg.HTML != "" {
		out.AddAlternativeString(gomail.TypeTextHTML, msg.HTML)
	}
	return out, nil
}

// NoopMailer logs instead of sending. It is used when SMTP is not configured.
type NoopMailer struct{}

var _ portssvc.Mailer = NoopMailer{}

// Send logs the skipped message.
func (NoopMailer) Send(ctx context.Context, msg portssvc.MailMessage) error {
	middleware.GetLoggerFromCtx(ctx).Info("Email not configured, skipping send",
		slog.String("to", msg.To), slog.String("subject", msg.Subject))
	return nil
}

// New returns an SMTP mailer when host is set and a NoopMailer otherwise.
func New(cfg SMTPConfig, logger *slog.Logger) (portssvc.Mailer, error) {
	if cfg.Host == "" || cfg.Username == "" {
		return NoopMailer{}, nil
	}
	return NewSMTPMailer(cfg, DefaultBreakerConfig(), logger)
}
