package notification

import (
	"bytes"
	"context"
	"fmt"
	"html/template"
	"time"

	"adbond/internal/domain"

	"go.uber.org/zap"
)

type Notifier interface {
	SendAdminNotification(ctx context.Context, e *domain.Entity) Result
	SendWelcome(ctx context.Context, e *domain.Entity, u *domain.User, tempPassword string) Result
	SendRejection(ctx context.Context, e *domain.Entity, notes string) Result
}

type FailureKind string

const (
	FailureNone       FailureKind = ""
	FailureAuth       FailureKind = "auth"
	FailureConnection FailureKind = "connection"
	FailureRejected   FailureKind = "rejected"
	FailureTemplate   FailureKind = "template"
	FailureUnknown    FailureKind = "unknown"
)

// Result is the outcome of one send. Failed sends are not retried.
type Result struct {
	Sent bool
	Kind FailureKind
	Err  error
}

func sent() Result { return Result{Sent: true} }

func failed(kind FailureKind, err error) Result {
	return Result{Kind: kind, Err: err}
}

type Options struct {
	AdminEmail      string
	LoginURL        string
	AdminURL        string
	TempPasswordTTL time.Duration
}

type EmailNotifier struct {
	transport Transport
	opts      Options
	log       *zap.Logger
}

func NewEmailNotifier(transport Transport, opts Options, log *zap.Logger) *EmailNotifier {
	if log == nil {
		log = zap.NewNop()
	}
	if opts.TempPasswordTTL <= 0 {
		opts.TempPasswordTTL = 24 * time.Hour
	}
	return &EmailNotifier{transport: transport, opts: opts, log: log}
}

func (n *EmailNotifier) SendAdminNotification(ctx context.Context, e *domain.Entity) Result {
	return n.send(ctx, "admin_notification", n.opts.AdminEmail,
		fmt.Sprintf("New %s registration: %s", e.EntityType, e.Name),
		adminNotificationTmpl, map[string]any{
			"Entity":   e,
			"AdminURL": n.opts.AdminURL,
		})
}

func (n *EmailNotifier) SendWelcome(ctx context.Context, e *domain.Entity, u *domain.User, tempPassword string) Result {
	return n.send(ctx, "welcome", u.Email,
		"Your AdBond account has been approved",
		welcomeTmpl, map[string]any{
			"Entity":       e,
			"User":         u,
			"TempPassword": tempPassword,
			"LoginURL":     n.opts.LoginURL,
			"ExpiresIn":    humanizeTTL(n.opts.TempPasswordTTL),
		})
}

func (n *EmailNotifier) SendRejection(ctx context.Context, e *domain.Entity, notes string) Result {
	return n.send(ctx, "rejection", e.Email,
		"Update on your AdBond registration",
		rejectionTmpl, map[string]any{
			"Entity": e,
			"Notes":  notes,
		})
}

func (n *EmailNotifier) send(ctx context.Context, kind, to, subject string, tmpl *template.Template, data any) Result {
	var body bytes.Buffer
	if err := tmpl.Execute(&body, data); err != nil {
		n.log.Error("email template failed", zap.String("email_type", kind), zap.Error(err))
		return failed(FailureTemplate, err)
	}

	err := n.transport.Send(ctx, Message{To: to, Subject: subject, HTML: body.String()})
	if err != nil {
		failure := Classify(err)
		n.log.Warn("email send failed",
			zap.String("email_type", kind),
			zap.String("to", to),
			zap.String("failure", string(failure)),
			zap.Error(err),
		)
		return failed(failure, err)
	}

	n.log.Info("email sent", zap.String("email_type", kind), zap.String("to", to))
	return sent()
}

func humanizeTTL(d time.Duration) string {
	if d%time.Hour == 0 {
		return fmt.Sprintf("%d hours", int(d/time.Hour))
	}
	return d.String()
}
