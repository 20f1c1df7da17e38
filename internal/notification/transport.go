package notification

import (
	"context"
	"errors"
	"fmt"
	"net"
	"net/textproto"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
	"go.uber.org/zap"
)

type Message struct {
	To      string
	Subject string
	HTML    string
}

type Transport interface {
	Send(ctx context.Context, msg Message) error
}

// LogTransport writes recipient and subject to the log instead of sending.
// Bodies are never logged because welcome mail carries a credential.
type LogTransport struct {
	log *zap.Logger
}

func NewLogTransport(log *zap.Logger) *LogTransport {
	if log == nil {
		log = zap.NewNop()
	}
	return &LogTransport{log: log}
}

func (t *LogTransport) Send(_ context.Context, msg Message) error {
	t.log.Info("[DEV-EMAIL] outbound email",
		zap.String("to", msg.To),
		zap.String("subject", msg.Subject),
		zap.Int("body_bytes", len(msg.HTML)),
	)
	return nil
}

// TLS policies accepted by SMTPConfig.TLSPolicy.
const (
	TLSOpportunistic = "opportunistic"
	TLSMandatory     = "mandatory"
	TLSImplicit      = "ssl"
	TLSNone          = "none"
)

type SMTPConfig struct {
	Host      string
	Port      int
	Username  string
	Password  string
	From      string
	TLSPolicy string
	Timeout   time.Duration
}

type SMTPTransport struct {
	cfg SMTPConfig
}

func NewSMTPTransport(cfg SMTPConfig) *SMTPTransport {
	if cfg.Timeout <= 0 {
		cfg.Timeout = 10 * time.Second
	}
	if cfg.TLSPolicy == "" {
		cfg.TLSPolicy = TLSOpportunistic
		if cfg.Port == 465 {
			cfg.TLSPolicy = TLSImplicit
		}
	}
	return &SMTPTransport{cfg: cfg}
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	m, err := buildMessage(t.cfg.From, msg)
	if err != nil {
		return err
	}
	client, err := mail.NewClient(t.cfg.Host, t.clientOptions()...)
	if err != nil {
		return fmt.Errorf("smtp client: %w", err)
	}
	if err := client.DialAndSendWithContext(ctx, m); err != nil {
		return fmt.Errorf("smtp send to %s:%d: %w", t.cfg.Host, t.cfg.Port, err)
	}
	return nil
}

func (t *SMTPTransport) clientOptions() []mail.Option {
	opts := []mail.Option{
		mail.WithPort(t.cfg.Port),
		mail.WithTimeout(t.cfg.Timeout),
	}
	switch t.cfg.TLSPolicy {
	case TLSImplicit:
		opts = append(opts, mail.WithSSL())
	case TLSMandatory:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSMandatory))
	case TLSNone:
		opts = append(opts, mail.WithTLSPolicy(mail.NoTLS))
	default:
		opts = append(opts, mail.WithTLSPolicy(mail.TLSOpportunistic))
	}
	if t.cfg.Username != "" {
		opts = append(opts,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.cfg.Username),
			mail.WithPassword(t.cfg.Password),
		)
	}
	return opts
}

// buildMessage assembles an HTML message with Date and Message-ID set.
// Non-ASCII subjects are encoded by go-mail.
func buildMessage(from string, msg Message) (*mail.Msg, error) {
	m := mail.NewMsg()
	if err := m.From(from); err != nil {
		return nil, fmt.Errorf("smtp from %q: %w", from, err)
	}
	if err := m.To(msg.To); err != nil {
		return nil, &RecipientError{Addr: msg.To, Err: err}
	}
	m.Subject(sanitizeHeader(msg.Subject))
	m.SetDate()
	m.SetMessageID()
	m.SetBodyString(mail.TypeTextHTML, msg.HTML)
	return m, nil
}

func sanitizeHeader(v string) string {
	return strings.NewReplacer("\r", " ", "\n", " ").Replace(v)
}

// RecipientError marks an address the message could not be built for.
type RecipientError struct {
	Addr string
	Err  error
}

func (e *RecipientError) Error() string { return fmt.Sprintf("smtp recipient %q: %v", e.Addr, e.Err) }
func (e *RecipientError) Unwrap() error { return e.Err }

// Classify buckets a transport error for logging and reporting.
func Classify(err error) FailureKind {
	if err == nil {
		return FailureNone
	}

	var rcptErr *RecipientError
	if errors.As(err, &rcptErr) {
		return FailureRejected
	}

	var tpErr *textproto.Error
	if errors.As(err, &tpErr) {
		return classifyCode(tpErr.Code)
	}

	var sendErr *mail.SendError
	if errors.As(err, &sendErr) {
		switch {
		case sendErr.Reason == mail.ErrConnCheck:
			return FailureConnection
		case sendErr.IsTemp():
			return FailureConnection
		case sendErr.Reason == mail.ErrSMTPMailFrom, sendErr.Reason == mail.ErrSMTPRcptTo,
			sendErr.Reason == mail.ErrGetSender, sendErr.Reason == mail.ErrGetRcpts,
			sendErr.Reason == mail.ErrSMTPData, sendErr.Reason == mail.ErrSMTPDataClose:
			return FailureRejected
		}
		return FailureUnknown
	}

	var netErr net.Error
	if errors.As(err, &netErr) {
		return FailureConnection
	}
	var opErr *net.OpError
	if errors.As(err, &opErr) || errors.Is(err, context.DeadlineExceeded) || errors.Is(err, context.Canceled) {
		return FailureConnection
	}

	return FailureUnknown
}

func classifyCode(code int) FailureKind {
	switch {
	case code == 530 || code == 534 || code == 535:
		return FailureAuth
	case code == 421:
		return FailureConnection
	case code >= 500:
		return FailureRejected
	}
	return FailureUnknown
}
