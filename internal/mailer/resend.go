package mailer

import (
	"context"
	"errors"
	"strings"

	"github.com/resend/resend-go/v2"
)

type resendEmails interface {
	Send(params *resend.SendEmailRequest) (*resend.SendEmailResponse, error)
}

type ResendTransport struct {
	emails resendEmails
}

func NewResendTransport(apiKey string) (*ResendTransport, error) {
	if strings.TrimSpace(apiKey) == "" {
		return nil, errors.New("resend api key is required")
	}
	client := resend.NewClient(apiKey)
	return &ResendTransport{emails: client.Emails}, nil
}

// Send returns as soon as ctx ends. The pinned client has no context-aware
// send, so a request already in flight finishes in the background.
func (t *ResendTransport) Send(ctx context.Context, msg Message) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	req := &resend.SendEmailRequest{
		From:    msg.From,
		To:      []string{msg.To},
		Subject: msg.Subject,
		Html:    msg.HTML,
		Text:    msg.Text,
	}

	done := make(chan error, 1)
	go func() {
		_, err := t.emails.Send(req)
		done <- err
	}()

	select {
	case err := <-done:
		return err
	case <-ctx.Done():
		return ctx.Err()
	}
}
