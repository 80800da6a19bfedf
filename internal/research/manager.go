package research

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/Iron-Ham/sift/internal/errors"
	"github.com/Iron-Ham/sift/internal/event"
	"github.com/Iron-Ham/sift/internal/llm"
	"github.com/Iron-Ham/sift/internal/logging"
	"github.com/Iron-Ham/sift/internal/search"
)

// UpdateKind classifies a streamed Update.
type UpdateKind string

const (
	UpdateStatus        UpdateKind = "status"
	UpdateTrace         UpdateKind = "trace"
	UpdateClarification UpdateKind = "clarification"
	UpdateReport        UpdateKind = "report"
)

// Update is one line of progress streamed from Manager.Run.
type Update struct {
	Kind UpdateKind
	Text string
}

// Request starts or continues a research session.
type Request struct {
	Query string
	// Searches is the raw user-supplied search count.
	Searches string
	// Clarification is nil for a new session and set when continuing one.
	Clarification *Clarification
	// TraceID continues an existing trace. A new one is started when empty.
	TraceID string
}

// Outcome is the result of Manager.Run. Exactly one of Clarification and
// Report is set on success.
type Outcome struct {
	SessionID     string
	TraceID       string
	Clarification *ClarificationPlan
	Report        *Report
}

// Manager runs research sessions.
type Manager struct {
	clarifier *Clarifier
	planner   *Planner
	searcher  *Searcher
	writer    *Writer
	tracer    *llm.Tracer
	bus       *event.Bus
	logger    *logging.Logger
	clarify   bool
	now       func() time.Time
}

// ManagerOption configures a Manager.
type ManagerOption func(*managerConfig)

type managerConfig struct {
	tracer         *llm.Tracer
	bus            *event.Bus
	logger         *logging.Logger
	clarify        bool
	maxConcurrency int
	structured     llm.Provider
}

// WithTracer sets the tracer used for trace IDs and links.
func WithTracer(t *llm.Tracer) ManagerOption {
	return func(c *managerConfig) { c.tracer = t }
}

// WithBus publishes research events to bus.
func WithBus(bus *event.Bus) ManagerOption {
	return func(c *managerConfig) { c.bus = bus }
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) ManagerOption {
	return func(c *managerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithClarify enables or disables the clarification step. Enabled by default.
func WithClarify(enabled bool) ManagerOption {
	return func(c *managerConfig) { c.clarify = enabled }
}

// WithMaxConcurrency bounds concurrent searches. Unbounded by default.
func WithMaxConcurrency(n int) ManagerOption {
	return func(c *managerConfig) { c.maxConcurrency = n }
}

// WithStructuredModel routes the clarifier, planner and writer, whose
// replies are JSON documents, to p. Typically p is the same backend created
// with llm.WithJSONMode. Search summaries stay on the default model.
func WithStructuredModel(p llm.Provider) ManagerOption {
	return func(c *managerConfig) { c.structured = p }
}

// NewManager creates a Manager that uses model for every agent role and
// engine for web searches.
func NewManager(model llm.Provider, engine search.Provider, opts ...ManagerOption) *Manager {
	cfg := managerConfig{logger: logging.NopLogger(), clarify: true}
	for _, opt := range opts {
		opt(&cfg)
	}
	if cfg.tracer == nil {
		cfg.tracer = llm.NewTracer(context.Background(), false, cfg.logger)
	}
	if cfg.bus == nil {
		cfg.bus = event.NewBus()
	}
	logger := cfg.logger.WithComponent("research")
	structured := cfg.structured
	if structured == nil {
		structured = model
	}

	return &Manager{
		clarifier: NewClarifier(structured),
		planner:   NewPlanner(structured),
		searcher:  NewSearcher(engine, model, logger, cfg.maxConcurrency),
		writer:    NewWriter(structured),
		tracer:    cfg.tracer,
		bus:       cfg.bus,
		logger:    logger,
		clarify:   cfg.clarify,
		now:       time.Now,
	}
}

// Run executes one research session, streaming progress through emit.
// A new session may stop early with Outcome.Clarification set; the caller
// then calls Run again with the answers and Outcome.TraceID.
func (m *Manager) Run(ctx context.Context, req Request, emit func(Update)) (out Outcome, err error) {
	if emit == nil {
		emit = func(Update) {}
	}
	status := func(format string, args ...any) {
		emit(Update{Kind: UpdateStatus, Text: fmt.Sprintf(format, args...)})
	}

	query := strings.TrimSpace(req.Query)
	if query == "" {
		return Outcome{}, errors.ErrEmptyQuery
	}
	n := ParseSearchCount(req.Searches)
	resumed := req.Clarification != nil

	out.SessionID = uuid.NewString()
	out.TraceID = req.TraceID
	if out.TraceID == "" {
		out.TraceID = m.tracer.StartTrace("Deep Research Session", query)
	}
	logger := m.logger.WithSession(out.SessionID).With("trace_id", out.TraceID)
	ctx = llm.ContextWithTrace(ctx, out.TraceID)

	m.bus.Publish(event.NewResearchStartedEvent(out.SessionID, out.TraceID, query, n, resumed))
	logger.Info("research started", "query", query, "searches", n, "resumed", resumed)
	defer func() {
		errMsg := ""
		if err != nil {
			errMsg = err.Error()
			logger.Error("research failed", "error", errMsg)
		}
		m.bus.Publish(event.NewResearchCompletedEvent(out.SessionID, err == nil, errMsg))
		m.tracer.Flush(context.WithoutCancel(ctx))
	}()

	if !resumed {
		emit(Update{Kind: UpdateTrace, Text: m.traceLine(out.TraceID)})

		m.phase(out.SessionID, event.ResearchPhaseClarify)
		status("## Analyzing query complexity...")
		if plan := m.assess(ctx, logger, query); plan != nil && plan.ShouldAskQuestions {
			out.Clarification = plan
			m.bus.Publish(event.NewClarificationNeededEvent(out.SessionID, plan.Assessment.Complexity, questionTexts(plan)))
			emit(Update{Kind: UpdateClarification, Text: plan.Markdown()})
			logger.Info("clarification requested", "questions", len(plan.Questions))
			return out, nil
		}
	} else {
		m.logClarification(req.Clarification, status)
	}

	enhanced := BuildEnhancedQuery(query, req.Clarification.effectiveAnswers())

	m.phase(out.SessionID, event.ResearchPhasePlan)
	status("## Generating search plan...")
	plan, err := m.planner.Plan(ctx, enhanced, n)
	if err != nil {
		return out, phaseError("plan", err)
	}
	if len(plan.Searches) == 0 {
		logger.Warn("planner returned no searches, falling back to the raw query")
		plan = fallbackPlan(query)
	}
	if plan.DeviationReasoning != "" {
		logger.Debug("planner reasoning", "reasoning", plan.DeviationReasoning)
	}
	status("Will perform **%d** searches (validated: %d requested)", len(plan.Searches), n)
	for _, item := range plan.Searches {
		status("Query: **%s**", item.Query)
		status("Reason: %s", item.Reason)
	}

	m.phase(out.SessionID, event.ResearchPhaseSearch)
	status("## Searching...")
	summaries := m.searcher.Run(ctx, plan.Searches, func(item WebSearchItem, completed, total int, err error) {
		m.bus.Publish(event.NewSearchCompletedEvent(out.SessionID, item.Query, completed, total, err == nil))
		status("Searching... %d/%d completed", completed, total)
	})
	if err := ctx.Err(); err != nil {
		return out, err
	}
	status("Finished searching")
	logger.Info("searches finished", "planned", len(plan.Searches), "succeeded", len(summaries))

	m.phase(out.SessionID, event.ResearchPhaseWrite)
	status("## Thinking about report...")
	data, err := m.writer.Write(ctx, query, summaries)
	if err != nil {
		return out, phaseError("write", err)
	}
	status("Finished writing report")

	out.Report = &Report{
		ID:           out.SessionID,
		Query:        query,
		TraceID:      out.TraceID,
		Markdown:     data.MarkdownReport,
		ShortSummary: data.ShortSummary,
		FollowUps:    data.FollowUpQuestions,
		Searches:     len(plan.Searches),
		CreatedAt:    m.now(),
	}
	emit(Update{Kind: UpdateReport, Text: out.Report.Render()})
	return out, nil
}

func (m *Manager) assess(ctx context.Context, logger *logging.Logger, query string) *ClarificationPlan {
	if !m.clarify {
		return nil
	}
	plan, err := m.clarifier.Assess(ctx, query)
	if err != nil {
		logger.Warn("clarification failed, continuing without it", "error", err.Error())
		return nil
	}
	logger.Debug("query assessed",
		"complexity", plan.Assessment.Complexity,
		"questions", len(plan.Questions),
		"should_ask", plan.ShouldAskQuestions)
	return plan
}

func (m *Manager) logClarification(c *Clarification, status func(string, ...any)) {
	status("## Clarification Questions & Answers")
	if c.Plan != nil {
		if c.Plan.Assessment.Reasoning != "" {
			status("**Why clarification was requested:** %s", c.Plan.Assessment.Reasoning)
		}
		status("**Query complexity level:** %d/3", c.Plan.Assessment.Complexity)
	}
	if c.Skipped {
		status("*All clarification questions were skipped*")
		return
	}
	for i, a := range c.Answers {
		status("**Question %d:** %s", i+1, a.Question)
		status("**Answer:** %s", DisplayAnswer(a.Answer))
	}
}

func (m *Manager) traceLine(traceID string) string {
	if url := m.tracer.TraceURL(traceID); url != "" {
		return fmt.Sprintf("🔍 [View trace](%s)", url)
	}
	return fmt.Sprintf("🔍 Trace ID: `%s`", traceID)
}

func (m *Manager) phase(sessionID string, phase event.ResearchPhase) {
	m.logger.WithSession(sessionID).WithPhase(string(phase)).Debug("phase started")
	m.bus.Publish(event.NewResearchPhaseEvent(sessionID, phase))
}

func phaseError(phase string, err error) error {
	return errors.NewPipelineError(phase+" failed", err).WithPipeline("research").WithPhase(phase)
}

func questionTexts(plan *ClarificationPlan) []string {
	qs := make([]string, len(plan.Questions))
	for i, q := range plan.Questions {
		qs[i] = q.Question
	}
	return qs
}
