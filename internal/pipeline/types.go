package pipeline

import "github.com/Iron-Ham/sift/internal/debate"

// PipelinePhase represents a phase of the debate pipeline.
type PipelinePhase string

const (
	// PhaseIdle is the phase before Run starts.
	PhaseIdle PipelinePhase = ""

	// PhasePropose indicates the FOR debater is arguing.
	PhasePropose PipelinePhase = "propose"

	// PhaseOppose indicates the AGAINST debater is arguing.
	PhaseOppose PipelinePhase = "oppose"

	// PhaseDecide indicates the judge is deliberating.
	PhaseDecide PipelinePhase = "decide"

	// PhaseComplete indicates the debate finished with a verdict.
	PhaseComplete PipelinePhase = "complete"

	// PhaseFailed indicates a phase failed and the run stopped.
	PhaseFailed PipelinePhase = "failed"
)

// String returns the string representation of the phase.
func (p PipelinePhase) String() string {
	return string(p)
}

// IsTerminal returns true if this phase represents a final state.
func (p PipelinePhase) IsTerminal() bool {
	return p == PhaseComplete || p == PhaseFailed
}

// UpdateKind classifies a streamed Update.
type UpdateKind string

const (
	// UpdateStatus is a one-line status such as "Judge is making decision...".
	UpdateStatus UpdateKind = "status"

	// UpdateArgument carries a debater's full argument.
	UpdateArgument UpdateKind = "argument"

	// UpdateVerdict carries the judge's decision under a heading.
	UpdateVerdict UpdateKind = "verdict"
)

// Update is streamed from Runner.Run as the debate progresses.
type Update struct {
	Kind  UpdateKind
	Phase PipelinePhase
	Text  string
}

// Result is the outcome of a completed debate.
type Result struct {
	DebateID string
	Motion   string
	// Artifacts are the written files in production order.
	Artifacts    []string
	Proposal     string
	Opposition   string
	Verdict      string
	Conversation []debate.ConversationLine
	// CallLog is the Markdown rendering of the model calls made by the run.
	CallLog string
	// Log holds the cleaned raw output of every phase.
	Log string
}
