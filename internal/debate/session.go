package debate

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/sift/internal/errors"
	"github.com/Iron-Ham/sift/internal/event"
	"github.com/Iron-Ham/sift/internal/mailbox"
)

// debateIDKey tags every mailbox message with the debate it belongs to.
const debateIDKey = "debate_id"

// Session manages a single debate over a motion. Every turn is persisted
// through the mailbox: the motion is broadcast, both arguments are sent to
// the judge, and the verdict is broadcast.
type Session struct {
	mu     sync.Mutex
	id     string
	mb     *mailbox.Mailbox
	bus    *event.Bus
	motion string
	status SessionStatus
	turns  []Turn
	now    func() time.Time
}

// NewSession creates a debate session on motion. An empty id gets a fresh
// UUID. The motion is broadcast through mb (if non-nil) and a
// DebateStartedEvent is published to bus (if non-nil).
func NewSession(id string, mb *mailbox.Mailbox, bus *event.Bus, motion string) (*Session, error) {
	motion = strings.TrimSpace(motion)
	if motion == "" {
		return nil, errors.ErrEmptyMotion
	}
	if id == "" {
		id = uuid.NewString()
	}

	s := &Session{
		id:     id,
		mb:     mb,
		bus:    bus,
		motion: motion,
		status: StatusPending,
		now:    time.Now,
	}

	if err := s.send(ParticipantModerator, mailbox.BroadcastRecipient, mailbox.MessageMotion, motion); err != nil {
		return nil, fmt.Errorf("debate: send motion: %w", err)
	}
	if bus != nil {
		bus.Publish(event.NewDebateStartedEvent(s.id, motion))
	}
	return s, nil
}

// ID returns the debate session identifier.
func (s *Session) ID() string {
	return s.id
}

// Motion returns the motion under debate.
func (s *Session) Motion() string {
	return s.motion
}

// Status returns the current session status.
func (s *Session) Status() SessionStatus {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Propose records the argument for the motion. It must be the first turn.
func (s *Session) Propose(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if s.status != StatusPending {
		return outOfOrder(RoleProposer, "the FOR argument has already been made")
	}
	if err := s.record(RoleProposer, ParticipantJudge, mailbox.MessageProposal, text); err != nil {
		return err
	}
	s.status = StatusActive
	return nil
}

// Oppose records the argument against the motion. It requires a prior
// Propose, must precede Decide and may happen at most once.
func (s *Session) Oppose(text string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch {
	case s.status == StatusPending:
		return outOfOrder(RoleOpposer, "the FOR argument has not been made")
	case s.status == StatusResolved:
		return outOfOrder(RoleOpposer, "the debate is already resolved")
	case s.hasTurn(RoleOpposer):
		return outOfOrder(RoleOpposer, "the AGAINST argument has already been made")
	}
	return s.record(RoleOpposer, ParticipantJudge, mailbox.MessageOpposition, text)
}

// Decide records the verdict and resolves the session. It requires a prior
// Propose. A DebateResolvedEvent is published.
func (s *Session) Decide(verdict string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	switch s.status {
	case StatusPending:
		return outOfOrder(RoleJudge, "the FOR argument has not been made")
	case StatusResolved:
		return outOfOrder(RoleJudge, "the debate is already resolved")
	}
	if err := s.record(RoleJudge, mailbox.BroadcastRecipient, mailbox.MessageVerdict, verdict); err != nil {
		return err
	}
	s.status = StatusResolved

	if s.bus != nil {
		s.bus.Publish(event.NewDebateResolvedEvent(s.id, verdict))
	}
	return nil
}

// Turns returns a chronological copy of the recorded turns.
func (s *Session) Turns() []Turn {
	s.mu.Lock()
	defer s.mu.Unlock()

	result := make([]Turn, len(s.turns))
	copy(result, s.turns)
	return result
}

// Turn returns the body recorded for role.
func (s *Session) Turn(role Role) (string, bool) {
	s.mu.Lock()
	defer s.mu.Unlock()
	for _, t := range s.turns {
		if t.Role == role {
			return t.Body, true
		}
	}
	return "", false
}

// Record returns this debate as the judge receives it: the motion and every
// argument, oldest first. Messages left in the mailbox by other debates are
// skipped and metadata is dropped. Without a mailbox it is built from the
// in-memory turns.
func (s *Session) Record() ([]mailbox.Message, error) {
	if s.mb != nil {
		msgs, err := s.mb.Receive(ParticipantJudge)
		if err != nil {
			return nil, err
		}
		var own []mailbox.Message
		for _, m := range msgs {
			if id, _ := m.Metadata[debateIDKey].(string); id != s.id {
				continue
			}
			m.Metadata = nil
			own = append(own, m)
		}
		return own, nil
	}

	s.mu.Lock()
	defer s.mu.Unlock()
	msgs := []mailbox.Message{{From: ParticipantModerator, To: mailbox.BroadcastRecipient, Type: mailbox.MessageMotion, Body: s.motion}}
	for _, t := range s.turns {
		msgs = append(msgs, mailbox.Message{From: t.Role.Participant(), Type: messageTypeFor(t.Role), Body: t.Body, Timestamp: t.Timestamp})
	}
	return msgs, nil
}

// record must be called with s.mu held.
func (s *Session) record(role Role, to string, typ mailbox.MessageType, text string) error {
	text = strings.TrimSpace(text)
	if text == "" {
		return fmt.Errorf("debate: empty %s turn: %w", role, errors.ErrInvalidInput)
	}
	if err := s.send(role.Participant(), to, typ, text); err != nil {
		return fmt.Errorf("debate: send %s: %w", typ, err)
	}

	s.turns = append(s.turns, Turn{Role: role, Body: text, Timestamp: s.now()})
	if s.bus != nil {
		s.bus.Publish(event.NewDebateTurnEvent(s.id, string(role), len(text)))
	}
	return nil
}

func (s *Session) send(from, to string, typ mailbox.MessageType, body string) error {
	if s.mb == nil {
		return nil
	}
	_, err := s.mb.Send(mailbox.Message{
		From:     from,
		To:       to,
		Type:     typ,
		Body:     body,
		Metadata: map[string]any{debateIDKey: s.id},
	})
	return err
}

func (s *Session) hasTurn(role Role) bool {
	for _, t := range s.turns {
		if t.Role == role {
			return true
		}
	}
	return false
}

func messageTypeFor(role Role) mailbox.MessageType {
	switch role {
	case RoleProposer:
		return mailbox.MessageProposal
	case RoleOpposer:
		return mailbox.MessageOpposition
	default:
		return mailbox.MessageVerdict
	}
}

func outOfOrder(role Role, reason string) error {
	return fmt.Errorf("debate: cannot %s: %s: %w", role, reason, errors.ErrOutOfOrder)
}
