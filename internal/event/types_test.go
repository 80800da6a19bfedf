package event

import "testing"

func TestEventTypes(t *testing.T) {
	tests := []struct {
		event Event
		want  string
	}{
		{NewResearchStartedEvent("s", "t", "q", 1, false), "research.started"},
		{NewResearchPhaseEvent("s", ResearchPhasePlan), "research.phase"},
		{NewClarificationNeededEvent("s", 2, []string{"a"}), "research.clarification_needed"},
		{NewSearchCompletedEvent("s", "q", 1, 3, true), "research.search_completed"},
		{NewResearchCompletedEvent("s", true, ""), "research.completed"},
		{NewDebateStartedEvent("d", "m"), "debate.started"},
		{NewDebateTurnEvent("d", "propose", 10), "debate.turn"},
		{NewDebateResolvedEvent("d", "FOR wins"), "debate.resolved"},
		{NewDebatePipelinePhaseEvent("d", "propose", "decide"), "debate.pipeline_phase"},
		{NewDebatePipelineStoppedEvent("d", true, nil, ""), "debate.pipeline_stopped"},
	}

	for _, tt := range tests {
		if got := tt.event.EventType(); got != tt.want {
			t.Errorf("%T.EventType() = %q, want %q", tt.event, got, tt.want)
		}
		if tt.event.Timestamp().IsZero() {
			t.Errorf("%T has zero timestamp", tt.event)
		}
	}
}
