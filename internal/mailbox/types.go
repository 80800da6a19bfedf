package mailbox

import "time"

// MessageType identifies the kind of debate message.
type MessageType string

const (
	// MessageMotion records the motion under debate.
	MessageMotion MessageType = "motion"

	// MessageProposal is the argument in favor of the motion.
	MessageProposal MessageType = "proposal"

	// MessageOpposition is the argument against the motion.
	MessageOpposition MessageType = "opposition"

	// MessageVerdict is the judge's decision.
	MessageVerdict MessageType = "verdict"
)

// BroadcastRecipient is the "to" value for messages intended for every participant.
const BroadcastRecipient = "broadcast"

// Message is a single persisted debate turn.
type Message struct {
	ID        string         `json:"id"`
	From      string         `json:"from"`
	To        string         `json:"to"`
	Type      MessageType    `json:"type"`
	Body      string         `json:"body"`
	Timestamp time.Time      `json:"timestamp"`
	Metadata  map[string]any `json:"metadata,omitempty"`
}

// IsBroadcast returns true if the message is addressed to all participants.
func (m Message) IsBroadcast() bool {
	return m.To == BroadcastRecipient
}

var validMessageTypes = map[MessageType]bool{
	MessageMotion:     true,
	MessageProposal:   true,
	MessageOpposition: true,
	MessageVerdict:    true,
}

// ValidateMessageType returns true if the given type is a known message type.
func ValidateMessageType(t MessageType) bool {
	return validMessageTypes[t]
}
