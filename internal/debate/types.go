package debate

import "time"

// SessionStatus represents the current state of a debate session.
type SessionStatus string

const (
	// StatusPending indicates the debate has been created but no argument made.
	StatusPending SessionStatus = "pending"

	// StatusActive indicates the FOR argument has been recorded.
	StatusActive SessionStatus = "active"

	// StatusResolved indicates the judge has delivered a verdict.
	StatusResolved SessionStatus = "resolved"
)

// Role is a seat in the debate. Its string value names the artifact the
// role produces.
type Role string

const (
	// RoleProposer argues for the motion.
	RoleProposer Role = "propose"

	// RoleOpposer argues against the motion.
	RoleOpposer Role = "oppose"

	// RoleJudge decides which side was more convincing.
	RoleJudge Role = "decide"
)

// Roles lists every role in speaking order.
var Roles = []Role{RoleProposer, RoleOpposer, RoleJudge}

// Artifact returns the file name written for the role, e.g. "propose.md".
func (r Role) Artifact() string {
	return string(r) + ".md"
}

// Participant returns the mailbox identity that speaks for the role.
func (r Role) Participant() string {
	switch r {
	case RoleProposer:
		return ParticipantFor
	case RoleOpposer:
		return ParticipantAgainst
	case RoleJudge:
		return ParticipantJudge
	}
	return ""
}

// Mailbox identities.
const (
	ParticipantModerator = "moderator"
	ParticipantFor       = "debater-for"
	ParticipantAgainst   = "debater-against"
	ParticipantJudge     = "judge"
)

// Turn is one recorded contribution to the debate.
type Turn struct {
	Role      Role
	Body      string
	Timestamp time.Time
}
