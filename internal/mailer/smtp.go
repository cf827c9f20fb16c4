package mailer

import (
	"context"
	"strings"
	"time"

	"github.com/wneessen/go-mail"
)

const defaultSMTPTimeout = 10 * time.Second

// SMTPTransport talks plain SMTP. With the defaults it targets a local
// MailDev instance (localhost:1025, no TLS, no auth).
type SMTPTransport struct {
	Host     string
	Port     int
	Username string
	Password string
	Timeout  time.Duration
}

func NewSMTPTransport(host string, port int, username string, password string) *SMTPTransport {
	return &SMTPTransport{
		Host:     host,
		Port:     port,
		Username: username,
		Password: password,
		Timeout:  defaultSMTPTimeout,
	}
}

func (t *SMTPTransport) Send(ctx context.Context, msg Message) error {
	message := mail.NewMsg()
	if err := message.From(msg.From); err != nil {
		return err
	}
	if err := message.To(msg.To); err != nil {
		return err
	}
	message.Subject(msg.Subject)
	message.SetBodyString(mail.TypeTextPlain, msg.Text)
	message.AddAlternativeString(mail.TypeTextHTML, msg.HTML)

	client, err := mail.NewClient(t.Host, t.options()...)
	if err != nil {
		return err
	}
	return client.DialAndSendWithContext(ctx, message)
}

func (t *SMTPTransport) options() []mail.Option {
	timeout := t.Timeout
	if timeout == 0 {
		timeout = defaultSMTPTimeout
	}
	policy := mail.NoTLS
	if strings.TrimSpace(t.Username) != "" {
		policy = mail.TLSOpportunistic
	}
	options := []mail.Option{
		mail.WithPort(t.Port),
		mail.WithTimeout(timeout),
		mail.WithTLSPolicy(policy),
	}
	if policy != mail.NoTLS {
		options = append(options,
			mail.WithSMTPAuth(mail.SMTPAuthPlain),
			mail.WithUsername(t.Username),
			mail.WithPassword(t.Password),
		)
	}
	return options
}
