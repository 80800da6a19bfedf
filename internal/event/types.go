package event

import "time"

// Event is the interface that all events must implement.
type Event interface {
	// EventType returns a "category.action" identifier, e.g. "research.started".
	EventType() string

	// Timestamp returns when the event occurred.
	Timestamp() time.Time
}

// baseEvent provides common fields for all events.
// Embed this in concrete event types to satisfy the Event interface.
type baseEvent struct {
	eventType string
	timestamp time.Time
}

func (e baseEvent) EventType() string    { return e.eventType }
func (e baseEvent) Timestamp() time.Time { return e.timestamp }

func newBaseEvent(eventType string) baseEvent {
	return baseEvent{
		eventType: eventType,
		timestamp: time.Now(),
	}
}

// Event type identifiers.
const (
	TypeResearchStarted       = "research.started"
	TypeResearchPhase         = "research.phase"
	TypeClarificationNeeded   = "research.clarification_needed"
	TypeSearchCompleted       = "research.search_completed"
	TypeResearchCompleted     = "research.completed"
	TypeDebateStarted         = "debate.started"
	TypeDebateTurn            = "debate.turn"
	TypeDebateResolved        = "debate.resolved"
	TypeDebatePipelinePhase   = "debate.pipeline_phase"
	TypeDebatePipelineStopped = "debate.pipeline_stopped"
)

// -----------------------------------------------------------------------------
// Research Events
// -----------------------------------------------------------------------------

// ResearchStartedEvent is emitted when a research session begins or resumes.
type ResearchStartedEvent struct {
	baseEvent
	SessionID string
	TraceID   string
	Query     string
	Searches  int  // normalized search count
	Resumed   bool // true when continuing after clarification
}

// NewResearchStartedEvent creates a ResearchStartedEvent.
func NewResearchStartedEvent(sessionID, traceID, query string, searches int, resumed bool) ResearchStartedEvent {
	return ResearchStartedEvent{
		baseEvent: newBaseEvent(TypeResearchStarted),
		SessionID: sessionID,
		TraceID:   traceID,
		Query:     query,
		Searches:  searches,
		Resumed:   resumed,
	}
}

// ResearchPhase identifies a step of the research flow.
type ResearchPhase string

const (
	ResearchPhaseClarify ResearchPhase = "clarify"
	ResearchPhasePlan    ResearchPhase = "plan"
	ResearchPhaseSearch  ResearchPhase = "search"
	ResearchPhaseWrite   ResearchPhase = "write"
)

// ResearchPhaseEvent is emitted when the research flow enters a new phase.
type ResearchPhaseEvent struct {
	baseEvent
	SessionID string
	Phase     ResearchPhase
}

// NewResearchPhaseEvent creates a ResearchPhaseEvent.
func NewResearchPhaseEvent(sessionID string, phase ResearchPhase) ResearchPhaseEvent {
	return ResearchPhaseEvent{
		baseEvent: newBaseEvent(TypeResearchPhase),
		SessionID: sessionID,
		Phase:     phase,
	}
}

// ClarificationNeededEvent is emitted when the flow pauses for user answers.
type ClarificationNeededEvent struct {
	baseEvent
	SessionID  string
	Complexity int
	Questions  []string
}

// NewClarificationNeededEvent creates a ClarificationNeededEvent.
func NewClarificationNeededEvent(sessionID string, complexity int, questions []string) ClarificationNeededEvent {
	return ClarificationNeededEvent{
		baseEvent:  newBaseEvent(TypeClarificationNeeded),
		SessionID:  sessionID,
		Complexity: complexity,
		Questions:  questions,
	}
}

// SearchCompletedEvent is emitted after each planned search finishes.
type SearchCompletedEvent struct {
	baseEvent
	SessionID string
	Query     string
	Completed int
	Total     int
	Success   bool
}

// NewSearchCompletedEvent creates a SearchCompletedEvent.
func NewSearchCompletedEvent(sessionID, query string, completed, total int, success bool) SearchCompletedEvent {
	return SearchCompletedEvent{
		baseEvent: newBaseEvent(TypeSearchCompleted),
		SessionID: sessionID,
		Query:     query,
		Completed: completed,
		Total:     total,
		Success:   success,
	}
}

// ResearchCompletedEvent is emitted when a research session ends.
type ResearchCompletedEvent struct {
	baseEvent
	SessionID string
	Success   bool
	Error     string // set when Success is false
}

// NewResearchCompletedEvent creates a ResearchCompletedEvent.
func NewResearchCompletedEvent(sessionID string, success bool, errMsg string) ResearchCompletedEvent {
	return ResearchCompletedEvent{
		baseEvent: newBaseEvent(TypeResearchCompleted),
		SessionID: sessionID,
		Success:   success,
		Error:     errMsg,
	}
}

// -----------------------------------------------------------------------------
// Debate Events
// -----------------------------------------------------------------------------

// DebateStartedEvent is emitted when a debate session is created.
type DebateStartedEvent struct {
	baseEvent
	DebateID string
	Motion   string
}

// NewDebateStartedEvent creates a DebateStartedEvent.
func NewDebateStartedEvent(debateID, motion string) DebateStartedEvent {
	return DebateStartedEvent{
		baseEvent: newBaseEvent(TypeDebateStarted),
		DebateID:  debateID,
		Motion:    motion,
	}
}

// DebateTurnEvent is emitted for every recorded debate turn.
type DebateTurnEvent struct {
	baseEvent
	DebateID string
	Role     string // "propose", "oppose" or "decide"
	Length   int    // length of the turn body in bytes
}

// NewDebateTurnEvent creates a DebateTurnEvent.
func NewDebateTurnEvent(debateID, role string, length int) DebateTurnEvent {
	return DebateTurnEvent{
		baseEvent: newBaseEvent(TypeDebateTurn),
		DebateID:  debateID,
		Role:      role,
		Length:    length,
	}
}

// DebateResolvedEvent is emitted when the judge delivers a verdict.
type DebateResolvedEvent struct {
	baseEvent
	DebateID string
	Verdict  string
}

// NewDebateResolvedEvent creates a DebateResolvedEvent.
func NewDebateResolvedEvent(debateID, verdict string) DebateResolvedEvent {
	return DebateResolvedEvent{
		baseEvent: newBaseEvent(TypeDebateResolved),
		DebateID:  debateID,
		Verdict:   verdict,
	}
}

// DebatePipelinePhaseEvent is emitted when the debate pipeline changes phase.
type DebatePipelinePhaseEvent struct {
	baseEvent
	DebateID      string
	PreviousPhase string
	CurrentPhase  string
}

// NewDebatePipelinePhaseEvent creates a DebatePipelinePhaseEvent.
func NewDebatePipelinePhaseEvent(debateID, previous, current string) DebatePipelinePhaseEvent {
	return DebatePipelinePhaseEvent{
		baseEvent:     newBaseEvent(TypeDebatePipelinePhase),
		DebateID:      debateID,
		PreviousPhase: previous,
		CurrentPhase:  current,
	}
}

// DebatePipelineStoppedEvent is emitted when the debate pipeline finishes or fails.
type DebatePipelineStoppedEvent struct {
	baseEvent
	DebateID  string
	Success   bool
	Artifacts []string
	Error     string
}

// NewDebatePipelineStoppedEvent creates a DebatePipelineStoppedEvent.
func NewDebatePipelineStoppedEvent(debateID string, success bool, artifacts []string, errMsg string) DebatePipelineStoppedEvent {
	return DebatePipelineStoppedEvent{
		baseEvent: newBaseEvent(TypeDebatePipelineStopped),
		DebateID:  debateID,
		Success:   success,
		Artifacts: artifacts,
		Error:     errMsg,
	}
}
