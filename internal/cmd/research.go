package cmd

import (
	"context"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/sift/internal/config"
	"github.com/Iron-Ham/sift/internal/errors"
	"github.com/Iron-Ham/sift/internal/event"
	"github.com/Iron-Ham/sift/internal/llm"
	"github.com/Iron-Ham/sift/internal/logging"
	"github.com/Iron-Ham/sift/internal/research"
	"github.com/Iron-Ham/sift/internal/tui"
	"github.com/Iron-Ham/sift/internal/util"
)

var researchCmd = &cobra.Command{
	Use:   "research [query]",
	Short: "Research a question on the web and write a report",
	Long: `Research a question: plan web searches, summarize the results and write
a Markdown report with follow-up questions.

Ambiguous queries may first get up to three clarification questions. In a
terminal they are asked interactively; otherwise an answers file is written
that can be filled in and passed back with --answers-file.

Examples:
  # Research with the default number of searches
  sift research "How do heat pumps work in cold climates?"

  # Plan five searches and skip clarification
  sift research -n 5 --skip-clarification "History of the printing press"

  # Continue after answering questions in a file
  sift research --answers-file reports/clarify-heat-pumps.yaml`,
	RunE: runResearchCmd,
}

var (
	researchSearches          string
	researchAnswersFile       string
	researchSkipClarification bool
	researchNoClarify         bool
	researchOutputDir         string
	researchPlain             bool
	researchNoExport          bool
)

func init() {
	rootCmd.AddCommand(researchCmd)

	researchCmd.Flags().StringVarP(&researchSearches, "searches", "n", "", "Number of searches to plan, 1-5 (default from research.default_searches)")
	researchCmd.Flags().StringVar(&researchAnswersFile, "answers-file", "", "Continue a session with answers from this YAML file")
	researchCmd.Flags().BoolVar(&researchSkipClarification, "skip-clarification", false, "Skip any clarification questions that are asked")
	researchCmd.Flags().BoolVar(&researchNoClarify, "no-clarify", false, "Do not assess the query for clarification at all")
	researchCmd.Flags().StringVarP(&researchOutputDir, "output", "o", "", "Report directory (default from research.output_dir)")
	researchCmd.Flags().BoolVar(&researchPlain, "plain", false, "Print plain progress instead of the terminal UI")
	researchCmd.Flags().BoolVar(&researchNoExport, "no-export", false, "Print the report without saving it")
}

// researchOptions are the resolved inputs of one research invocation.
type researchOptions struct {
	Query             string
	Searches          string
	Clarification     *research.Clarification
	TraceID           string
	SkipClarification bool
	Clarify           bool
	OutputDir         string
	Export            bool
	Interactive       bool
	ThemeFile         string
}

func runResearchCmd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	opts := researchOptions{
		Query:             strings.Join(args, " "),
		Searches:          researchSearches,
		SkipClarification: researchSkipClarification,
		Clarify:           cfg.Research.Clarify && !researchNoClarify,
		OutputDir:         researchOutputDir,
		Export:            !researchNoExport,
		Interactive:       interactive(researchPlain || cfg.UI.Plain),
		ThemeFile:         cfg.UI.ThemeFile,
	}
	if opts.OutputDir == "" {
		opts.OutputDir = cfg.Research.OutputDir
	}
	if opts.Searches == "" {
		opts.Searches = strconv.Itoa(cfg.Research.DefaultSearches)
	}

	if researchAnswersFile != "" {
		if err := applyAnswersFile(&opts, researchAnswersFile); err != nil {
			return err
		}
	}
	if strings.TrimSpace(opts.Query) == "" {
		return errors.ErrEmptyQuery
	}

	logger := newLogger(cfg)
	defer func() { _ = logger.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return runResearch(ctx, cfg, logger, cmd.OutOrStdout(), opts)
}

// applyAnswersFile continues the session recorded in path.
func applyAnswersFile(opts *researchOptions, path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read answers file: %w", err)
	}
	file, err := research.ParseAnswersFile(data)
	if err != nil {
		return err
	}
	if opts.Query == "" {
		opts.Query = file.Query
	}
	if researchSearches == "" && file.Searches > 0 {
		opts.Searches = strconv.Itoa(file.Searches)
	}
	opts.TraceID = file.TraceID
	opts.Clarification = file.Clarification()
	return nil
}

func runResearch(ctx context.Context, cfg *config.Config, logger *logging.Logger, out io.Writer, opts researchOptions) error {
	tracer := llm.NewTracer(ctx, cfg.Tracing.Enabled, logger)

	model, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	model = llm.Traced(model, tracer)
	defer func() { _ = llm.Close(model) }()

	structured, err := newProvider(ctx, cfg, llm.WithJSONMode())
	if err != nil {
		return err
	}
	structured = llm.Traced(structured, tracer)
	defer func() { _ = llm.Close(structured) }()

	engine, err := newSearch(cfg)
	if err != nil {
		return err
	}

	bus := event.NewBus(event.WithBusLogger(logger))
	bus.SubscribeAll(func(e event.Event) {
		logger.Debug("event", "type", e.EventType())
	})

	manager := research.NewManager(model, engine,
		research.WithTracer(tracer),
		research.WithBus(bus),
		research.WithLogger(logger),
		research.WithClarify(opts.Clarify),
		research.WithMaxConcurrency(cfg.Research.MaxConcurrency),
		research.WithStructuredModel(structured),
	)

	req := research.Request{
		Query:         opts.Query,
		Searches:      opts.Searches,
		Clarification: opts.Clarification,
		TraceID:       opts.TraceID,
	}
	progress := research.NewProgressLog()

	outcome, err := runResearchOnce(ctx, manager, req, progress, out, opts)
	if err != nil {
		return err
	}

	if outcome.Clarification != nil {
		clarification, err := resolveClarification(outcome, out, opts)
		if err != nil || clarification == nil {
			return err
		}
		req.Clarification = clarification
		req.TraceID = outcome.TraceID
		outcome, err = runResearchOnce(ctx, manager, req, progress, out, opts)
		if err != nil {
			return err
		}
	}

	if outcome.Report == nil {
		return nil
	}
	if opts.Interactive {
		fmt.Fprintln(out, tui.RenderEntries([]tui.Entry{
			{Kind: tui.EntryStatus, Text: progress.String()},
			{Kind: tui.EntryResult, Text: outcome.Report.Render()},
		}, false))
	}
	if opts.Export {
		path, err := outcome.Report.Export(opts.OutputDir)
		if err != nil {
			return err
		}
		fmt.Fprintf(out, "\nReport saved to %s\n", path)
	}
	return nil
}

// runResearchOnce runs the manager once, either inside the terminal UI or
// printing progress lines as they arrive.
func runResearchOnce(ctx context.Context, m *research.Manager, req research.Request, progress *research.ProgressLog, out io.Writer, opts researchOptions) (research.Outcome, error) {
	var outcome research.Outcome

	if !opts.Interactive {
		if req.Clarification == nil {
			fmt.Fprintln(out, research.ProgressHeader)
		}
		var err error
		outcome, err = m.Run(ctx, req, func(u research.Update) {
			progress.Apply(u)
			fmt.Fprintln(out, tui.RenderEntry(tui.FromResearch(u), true))
		})
		return outcome, err
	}

	app := tui.NewApp("sift research: "+util.Shorten(req.Query, titleLength), tui.WithThemeFile(opts.ThemeFile))
	err := app.Run(ctx, func(ctx context.Context, emit func(tui.Entry)) error {
		var runErr error
		outcome, runErr = m.Run(ctx, req, func(u research.Update) {
			progress.Apply(u)
			emit(tui.FromResearch(u))
		})
		return runErr
	})
	return outcome, err
}

// resolveClarification obtains answers for a paused session. It returns
// nil without error when the answers will come from a file later.
func resolveClarification(outcome research.Outcome, out io.Writer, opts researchOptions) (*research.Clarification, error) {
	plan := outcome.Clarification

	if opts.SkipClarification {
		return &research.Clarification{Skipped: true, Plan: plan}, nil
	}
	if opts.Interactive {
		return tui.RunClarify(plan, nil, nil)
	}

	searches := research.ParseSearchCount(opts.Searches)
	file := research.NewAnswersFile(opts.Query, outcome.TraceID, searches, plan)
	data, err := file.Marshal()
	if err != nil {
		return nil, err
	}
	if err := os.MkdirAll(opts.OutputDir, 0o755); err != nil {
		return nil, fmt.Errorf("failed to create output directory: %w", err)
	}
	path := filepath.Join(opts.OutputDir, "clarify-"+research.Slugify(opts.Query)+".yaml")
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return nil, fmt.Errorf("failed to write answers file: %w", err)
	}

	fmt.Fprintf(out, "\nAnswer the questions in %s (or set skip_all: true), then run:\n", path)
	fmt.Fprintf(out, "  sift research --answers-file %s\n", path)
	return nil, nil
}
