package mailer

//go:generate mockgen -destination=mocks/mock_mailer.go -source=mailer.go Mailer

import (
	"context"
	"fmt"

	"statement-distributor/pkg/logger"
)

// Attachment is a file sent along with a message
type Attachment struct {
	Filename string
	Content  []byte
}

// Message is one outbound email
type Message struct {
	To         string
	Subject    string
	Body       string
	Attachment *Attachment
}

// Mailer delivers messages
type Mailer interface {
	Send(ctx context.Context, msg Message) error
}

// DryRunMailer logs what would be sent and always succeeds. It never opens a connection.
type DryRunMailer struct {
	log  logger.Logger
	sent []Message
}

// NewDryRunMailer creates a DryRunMailer
func NewDryRunMailer(log logger.Logger) *DryRunMailer {
	return &DryRunMailer{log: log.WithComponent("mailer")}
}

// Send implements Mailer
func (m *DryRunMailer) Send(_ context.Context, msg Message) error {
	attachment := "without attachment"
	if msg.Attachment != nil {
		attachment = fmt.Sprintf("with attachment %s", msg.Attachment.Filename)
	}
	m.log.WithField("recipient", msg.To).
		Infof("[DRY RUN] Would send email to %s %s", msg.To, attachment)

	m.sent = append(m.sent, msg)
	return nil
}

// Sent returns the messages accepted so far
func (m *DryRunMailer) Sent() []Message {
	out := make([]Message, len(m.sent))
	copy(out, m.sent)
	return out
}
