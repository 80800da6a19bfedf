package mailbox

import (
	"github.com/Iron-Ham/sift/internal/logging"
)

// Mailbox is the facade the debate session uses to persist and read turns.
type Mailbox struct {
	store  *Store
	logger *logging.Logger
}

// Option configures a Mailbox.
type Option func(*Mailbox)

// WithLogger logs every delivered message at debug level.
func WithLogger(logger *logging.Logger) Option {
	return func(m *Mailbox) {
		if logger != nil {
			m.logger = logger.WithComponent("mailbox")
		}
	}
}

// NewMailbox creates a Mailbox backed by a file store in dir.
func NewMailbox(dir string, opts ...Option) *Mailbox {
	m := &Mailbox{
		store:  NewStore(dir),
		logger: logging.NopLogger(),
	}
	for _, opt := range opts {
		opt(m)
	}
	return m
}

// Send stores msg and returns it with ID and Timestamp populated.
func (m *Mailbox) Send(msg Message) (Message, error) {
	stored, err := m.store.Send(msg)
	if err != nil {
		return stored, err
	}
	m.logger.Debug("message delivered",
		"id", stored.ID,
		"from", stored.From,
		"to", stored.To,
		"type", string(stored.Type),
		"bytes", len(stored.Body))
	return stored, nil
}

// Receive returns broadcast and targeted messages for recipient, oldest first.
func (m *Mailbox) Receive(recipient string) ([]Message, error) {
	return m.store.ReadAll(recipient)
}
