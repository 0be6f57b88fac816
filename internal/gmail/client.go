package gmail

import (
	"context"
	"encoding/base64"
	"fmt"

	gmail "google.golang.org/api/gmail/v1"
	"google.golang.org/api/option"

	"github.com/teemow/schedulr/internal/instrumentation"
	"github.com/teemow/schedulr/internal/scheduling"
)

// Sender delivers scheduling messages through the Gmail API.
type Sender struct {
	svc     *gmail.UsersService
	account string
	from    string
	metrics *instrumentation.Metrics
}

var _ scheduling.Notifier = (*Sender)(nil)

// NewSender creates a Sender for account. from is used as the From header
// when set; otherwise Gmail fills in the account's address. metrics may be nil.
func NewSender(ctx context.Context, account, from string, metrics *instrumentation.Metrics, opts ...option.ClientOption) (*Sender, error) {
	svc, err := gmail.NewService(ctx, opts...)
	if err != nil {
		return nil, fmt.Errorf("failed to create Gmail service: %w", err)
	}
	return &Sender{
		svc:     svc.Users,
		account: account,
		from:    from,
		metrics: metrics,
	}, nil
}

// Account returns the account name this sender is associated with
func (s *Sender) Account() string {
	return s.account
}

// SendMessage sends msg from the authenticated user. Failures wrap
// scheduling.ErrDelivery.
func (s *Sender) SendMessage(ctx context.Context, msg scheduling.Message) error {
	raw, err := buildMessage(s.from, msg)
	if err != nil {
		return fmt.Errorf("%w: %w", scheduling.ErrDelivery, err)
	}

	ctx, done := instrumentation.TrackGoogleAPI(ctx, s.metrics, instrumentation.ServiceGmail, instrumentation.OperationSend)
	_, err = s.svc.Messages.Send("me", &gmail.Message{
		Raw: base64.URLEncoding.EncodeToString(raw),
	}).Context(ctx).Do()
	done(err)
	if err != nil {
		return fmt.Errorf("%w: failed to send email: %w", scheduling.ErrDelivery, err)
	}

	return nil
}
