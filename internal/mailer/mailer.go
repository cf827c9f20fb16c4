package mailer

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/sirupsen/logrus"
)

const (
	DefaultFrom       = "noreply@watchlist.com"
	DefaultVerifyPath = "/auth/verify-email"

	DefaultVerificationTTL = 24 * time.Hour
	DefaultCodeTTL         = 10 * time.Minute
)

type Message struct {
	From    string
	To      string
	Subject string
	HTML    string
	Text    string
}

// Transport delivers one message. Implementations honour ctx where the
// underlying client allows it.
type Transport interface {
	Send(ctx context.Context, msg Message) error
}

type Mailer struct {
	Transport  Transport
	From       string
	AppBaseURL string
	VerifyPath string
	Logger     logrus.FieldLogger

	// Lifetimes quoted in the message bodies.
	VerificationTTL time.Duration
	CodeTTL         time.Duration
}

func New(transport Transport, from string, appBaseURL string, logger logrus.FieldLogger) *Mailer {
	if strings.TrimSpace(from) == "" {
		from = DefaultFrom
	}
	if logger == nil {
		logger = logrus.StandardLogger()
	}
	return &Mailer{
		Transport:  transport,
		From:       from,
		AppBaseURL: strings.TrimRight(appBaseURL, "/"),
		VerifyPath: DefaultVerifyPath,
		Logger:     logger,

		VerificationTTL: DefaultVerificationTTL,
		CodeTTL:         DefaultCodeTTL,
	}
}

func (m *Mailer) SendVerificationEmail(ctx context.Context, email string, token string) error {
	link := m.VerificationURL(token)
	expires := formatTTL(m.VerificationTTL, DefaultVerificationTTL)
	msg := Message{
		From:    m.From,
		To:      email,
		Subject: "Verify your Watchlist account",
		HTML: fmt.Sprintf(`<h2>Welcome to Watchlist!</h2>
<p>Thanks for signing up. Click the link below to activate your account:</p>
<p><a href="%[1]s">Verify my account</a></p>
<p>Or paste this link into your browser:</p>
<p>%[1]s</p>
<p>This link expires in %[2]s.</p>`, link, expires),
		Text: fmt.Sprintf("Welcome to Watchlist! Verify your account: %s\nThis link expires in %s.", link, expires),
	}
	if err := m.send(ctx, msg); err != nil {
		m.Logger.WithError(err).WithField("to", email).Error("verification email failed")
		return fmt.Errorf("send verification email: %w", err)
	}
	m.Logger.WithField("to", email).Info("verification email sent")
	return nil
}

func (m *Mailer) SendTwoFactorCode(ctx context.Context, email string, code string) error {
	expires := formatTTL(m.CodeTTL, DefaultCodeTTL)
	msg := Message{
		From:    m.From,
		To:      email,
		Subject: "Your Watchlist login code",
		HTML: fmt.Sprintf(`<h2>Login code</h2>
<p>Here is your two-factor login code:</p>
<h1 style="letter-spacing: 5px;">%s</h1>
<p>This code expires in %s.</p>
<p>If you did not request this code, ignore this email.</p>`, code, expires),
		Text: fmt.Sprintf("Your Watchlist login code is %s. It expires in %s.", code, expires),
	}
	if err := m.send(ctx, msg); err != nil {
		m.Logger.WithError(err).WithField("to", email).Error("login code email failed")
		return fmt.Errorf("send login code: %w", err)
	}
	m.Logger.WithField("to", email).Info("login code email sent")
	return nil
}

func (m *Mailer) VerificationURL(token string) string {
	path := m.VerifyPath
	if path == "" {
		path = DefaultVerifyPath
	}
	return fmt.Sprintf("%s%s?token=%s", m.AppBaseURL, path, url.QueryEscape(token))
}

func (m *Mailer) send(ctx context.Context, msg Message) error {
	if m.Transport == nil {
		return fmt.Errorf("mail transport not configured")
	}
	return m.Transport.Send(ctx, msg)
}

// formatTTL renders whole hours or minutes as words and anything else as a
// Go duration. A non-positive ttl falls back to def.
func formatTTL(ttl, def time.Duration) string {
	if ttl <= 0 {
		ttl = def
	}
	switch {
	case ttl%time.Hour == 0:
		return plural(int(ttl/time.Hour), "hour")
	case ttl%time.Minute == 0:
		return plural(int(ttl/time.Minute), "minute")
	default:
		return ttl.String()
	}
}

func plural(n int, unit string) string {
	if n == 1 {
		return "1 " + unit
	}
	return fmt.Sprintf("%d %ss", n, unit)
}
