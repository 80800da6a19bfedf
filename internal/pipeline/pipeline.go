package pipeline

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"

	"github.com/Iron-Ham/sift/internal/debate"
	"github.com/Iron-Ham/sift/internal/errors"
	"github.com/Iron-Ham/sift/internal/event"
	"github.com/Iron-Ham/sift/internal/llm"
	"github.com/Iron-Ham/sift/internal/logging"
	"github.com/Iron-Ham/sift/internal/mailbox"
)

// EmptyMotionMessage is emitted instead of running a debate on a blank motion.
const EmptyMotionMessage = "Please enter a motion for the debate."

// NoDecisionMessage stands in for a verdict the judge left empty.
const NoDecisionMessage = "No decision available"

// Status lines streamed while a debate runs.
const (
	StatusProposing      = "🔄 FOR debater is preparing argument..."
	StatusProposed       = "✅ FOR debater completed - AGAINST debater preparing..."
	StatusOpposing       = "🔄 AGAINST debater is preparing argument..."
	StatusDeliberating   = "✅ Both debaters completed - Judge deliberating..."
	StatusDeciding       = "⚖️ Judge is making decision..."
	StatusComplete       = "✅ Debate complete!"
	StatusError          = "❌ Error"
	verdictHeading       = "## ⚖️ Final Verdict"
	proposeSpeakerPrefix = "**Debater FOR**: "
	opposeSpeakerPrefix  = "**Debater AGAINST**: "
)

// Runner drives one debate at a time through propose, oppose and decide.
//
// Each phase is a single model call. Arguments are recorded in a
// [debate.Session], written as Markdown artifacts, and streamed to the
// caller as [Update] values.
type Runner struct {
	mu      sync.Mutex
	cfg     runnerConfig
	debater llm.Provider
	phase   PipelinePhase
	running bool
}

// NewRunner creates a Runner that uses debater for both arguments and, unless
// WithJudge is given, for the verdict.
func NewRunner(debater llm.Provider, opts ...Option) *Runner {
	cfg := defaultRunnerConfig()
	for _, opt := range opts {
		opt(&cfg)
	}
	cfg.logger = cfg.logger.WithComponent("pipeline")
	return &Runner{cfg: cfg, debater: debater}
}

// Phase returns the current phase of the running or last debate.
func (r *Runner) Phase() PipelinePhase {
	r.mu.Lock()
	defer r.mu.Unlock()
	return r.phase
}

// setPhase records the new phase and returns the previous one.
func (r *Runner) setPhase(debateID string, phase PipelinePhase) PipelinePhase {
	r.mu.Lock()
	prev := r.phase
	r.phase = phase
	r.mu.Unlock()

	if r.cfg.bus != nil {
		r.cfg.bus.Publish(event.NewDebatePipelinePhaseEvent(debateID, prev.String(), phase.String()))
	}
	return prev
}

// Run debates motion. Updates are delivered to emit in order on the calling
// goroutine; emit may be nil.
//
// A blank motion emits EmptyMotionMessage and returns ErrEmptyMotion without
// calling any model. Any phase failure emits StatusError and returns a
// PipelineError naming the phase.
func (r *Runner) Run(ctx context.Context, motion string, emit func(Update)) (*Result, error) {
	if emit == nil {
		emit = func(Update) {}
	}

	motion = strings.TrimSpace(motion)
	if motion == "" {
		emit(Update{Kind: UpdateStatus, Text: EmptyMotionMessage})
		return nil, errors.ErrEmptyMotion
	}

	r.mu.Lock()
	if r.running {
		r.mu.Unlock()
		return nil, errors.New("pipeline: a debate is already running")
	}
	r.running = true
	r.phase = PhaseIdle
	r.mu.Unlock()
	defer func() {
		r.mu.Lock()
		r.running = false
		r.mu.Unlock()
	}()

	run := &debateRun{
		runner:   r,
		emit:     emit,
		debateID: uuid.NewString(),
		store:    debate.NewArtifactStore(r.cfg.artifactDir),
	}
	run.logger = r.cfg.logger.WithSession(run.debateID)

	result, err := run.execute(ctx, motion)
	if err != nil {
		r.setPhase(run.debateID, PhaseFailed)
		emit(Update{Kind: UpdateStatus, Phase: PhaseFailed, Text: StatusError})
		run.logger.Error("debate failed", "phase", run.failedPhase, "error", err)
		if r.cfg.bus != nil {
			r.cfg.bus.Publish(event.NewDebatePipelineStoppedEvent(run.debateID, false, run.artifacts, err.Error()))
		}
		return nil, err
	}

	r.setPhase(run.debateID, PhaseComplete)
	emit(Update{Kind: UpdateStatus, Phase: PhaseComplete, Text: StatusComplete})
	if r.cfg.bus != nil {
		r.cfg.bus.Publish(event.NewDebatePipelineStoppedEvent(run.debateID, true, result.Artifacts, ""))
	}
	run.logger.Info("debate complete", "artifacts", len(result.Artifacts))
	return result, nil
}

// debateRun holds the state of a single Run call.
type debateRun struct {
	runner      *Runner
	emit        func(Update)
	logger      *logging.Logger
	debateID    string
	store       *debate.ArtifactStore
	session     *debate.Session
	artifacts   []string
	rawLog      []string
	failedPhase PipelinePhase
}

func (d *debateRun) execute(ctx context.Context, motion string) (*Result, error) {
	cfg := d.runner.cfg

	debater := d.runner.debater
	judge := cfg.judge
	if judge == nil {
		judge = debater
	}
	if cfg.callLog != nil {
		cfg.callLog.Clear()
		debater = llm.Recorder(debater, cfg.callLog)
		judge = llm.Recorder(judge, cfg.callLog)
	}

	if err := d.store.Reset(); err != nil {
		return nil, d.fail(PhasePropose, fmt.Errorf("reset artifacts: %w", err))
	}

	var mb *mailbox.Mailbox
	if cfg.mailboxDir != "" {
		mb = mailbox.NewMailbox(cfg.mailboxDir, mailbox.WithLogger(d.logger))
	}
	session, err := debate.NewSession(d.debateID, mb, cfg.bus, motion)
	if err != nil {
		return nil, d.fail(PhasePropose, err)
	}
	d.session = session
	d.logger.Info("debate started", "motion", motion, "oppose", cfg.oppose)

	// Propose
	d.runner.setPhase(d.debateID, PhasePropose)
	d.status(PhasePropose, StatusProposing)
	proposal, err := d.generate(ctx, debater, "propose", debaterInstructions, proposeInput(motion))
	if err != nil {
		return nil, d.fail(PhasePropose, err)
	}
	if err := session.Propose(proposal); err != nil {
		return nil, d.fail(PhasePropose, err)
	}
	if err := d.writeArtifact(debate.RoleProposer, proposal); err != nil {
		return nil, d.fail(PhasePropose, err)
	}
	d.emit(Update{Kind: UpdateArgument, Phase: PhasePropose, Text: proposeSpeakerPrefix + proposal})

	// Oppose
	var opposition string
	if cfg.oppose {
		d.status(PhasePropose, StatusProposed)
		d.runner.setPhase(d.debateID, PhaseOppose)
		d.status(PhaseOppose, StatusOpposing)
		opposition, err = d.generate(ctx, debater, "oppose", debaterInstructions, opposeInput(motion))
		if err != nil {
			return nil, d.fail(PhaseOppose, err)
		}
		if err := session.Oppose(opposition); err != nil {
			return nil, d.fail(PhaseOppose, err)
		}
		if err := d.writeArtifact(debate.RoleOpposer, opposition); err != nil {
			return nil, d.fail(PhaseOppose, err)
		}
		d.emit(Update{Kind: UpdateArgument, Phase: PhaseOppose, Text: opposeSpeakerPrefix + opposition})
	}

	// Decide
	d.status(PhaseDecide, StatusDeliberating)
	d.runner.setPhase(d.debateID, PhaseDecide)
	d.status(PhaseDecide, StatusDeciding)
	record, err := session.Record()
	if err != nil {
		return nil, d.fail(PhaseDecide, fmt.Errorf("read debate record: %w", err))
	}
	verdict, err := d.generate(ctx, judge, "decide", judgeInstructions, decideInput(motion, record))
	if err != nil {
		return nil, d.fail(PhaseDecide, err)
	}
	if err := session.Decide(verdict); err != nil {
		return nil, d.fail(PhaseDecide, err)
	}
	if err := d.writeArtifact(debate.RoleJudge, verdict); err != nil {
		return nil, d.fail(PhaseDecide, err)
	}
	d.emit(Update{Kind: UpdateVerdict, Phase: PhaseDecide, Text: FormatVerdict(verdict)})

	result := &Result{
		DebateID:     d.debateID,
		Motion:       motion,
		Artifacts:    append([]string(nil), d.artifacts...),
		Proposal:     proposal,
		Opposition:   opposition,
		Verdict:      verdict,
		Conversation: debate.SimulateConversation(proposal, opposition, cfg.chunkSentences),
		Log:          strings.Join(d.rawLog, "\n\n"),
	}
	if cfg.callLog != nil {
		result.CallLog = cfg.callLog.Markdown()
	}
	return result, nil
}

func (d *debateRun) status(phase PipelinePhase, text string) {
	d.emit(Update{Kind: UpdateStatus, Phase: phase, Text: text})
}

// generate makes one model call and returns its text with reasoning blocks
// removed. An empty completion is an error.
func (d *debateRun) generate(ctx context.Context, p llm.Provider, name, system, user string) (string, error) {
	if err := ctx.Err(); err != nil {
		return "", err
	}
	resp, err := p.Generate(llm.WithCallName(ctx, name), system, user)
	if err != nil {
		return "", err
	}
	d.rawLog = append(d.rawLog, debate.CleanOutput(resp.Text))

	text := strings.TrimSpace(llm.StripThinkBlocks(resp.Text))
	if text == "" {
		return "", fmt.Errorf("%s: %w", name, errors.ErrEmptyCompletion)
	}
	d.logger.Debug("model call complete", "call", name, "model", resp.Model, "chars", len(text))
	return text, nil
}

func (d *debateRun) writeArtifact(role debate.Role, content string) error {
	path, err := d.store.Write(role, content)
	if err != nil {
		return err
	}
	d.artifacts = append(d.artifacts, path)
	return nil
}

func (d *debateRun) fail(phase PipelinePhase, err error) error {
	d.failedPhase = phase
	return errors.NewPipelineError(phase.String()+" failed", err).
		WithPipeline("debate").
		WithPhase(phase.String())
}

// FormatVerdict renders a judge decision under the verdict heading, falling
// back to NoDecisionMessage when it is blank.
func FormatVerdict(verdict string) string {
	verdict = strings.TrimSpace(verdict)
	if verdict == "" {
		verdict = NoDecisionMessage
	}
	return verdictHeading + "\n\n" + verdict
}
