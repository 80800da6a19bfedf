package cmd

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/spf13/cobra"

	"github.com/Iron-Ham/sift/internal/config"
	"github.com/Iron-Ham/sift/internal/debate"
	"github.com/Iron-Ham/sift/internal/event"
	"github.com/Iron-Ham/sift/internal/llm"
	"github.com/Iron-Ham/sift/internal/logging"
	"github.com/Iron-Ham/sift/internal/pipeline"
	"github.com/Iron-Ham/sift/internal/tui"
	"github.com/Iron-Ham/sift/internal/util"
)

var debateCmd = &cobra.Command{
	Use:   "debate [motion]",
	Short: "Stage a debate on a motion and have a judge decide",
	Long: `Stage a debate: a FOR debater argues the motion, an AGAINST debater
argues the opposite, and a judge decides which side was more convincing.

Each argument and the verdict are written to the output directory as
propose.md, oppose.md and decide.md.

Examples:
  sift debate "Remote work is better than office work"

  # Only the FOR side, with the simulated conversation and model calls
  sift debate --no-oppose --conversation --show-calls "Tabs beat spaces"

  # Include the raw model output, cleaned of terminal escapes
  sift debate --show-log "Tabs beat spaces"`,
	RunE: runDebateCmd,
}

var (
	debateNoOppose     bool
	debateOutputDir    string
	debateShowCalls    bool
	debateShowLog      bool
	debateConversation bool
	debatePlain        bool
	debateJudgeModel   string
)

func init() {
	rootCmd.AddCommand(debateCmd)

	debateCmd.Flags().BoolVar(&debateNoOppose, "no-oppose", false, "Skip the AGAINST debater")
	debateCmd.Flags().StringVarP(&debateOutputDir, "output", "o", "", "Artifact directory (default from debate.output_dir)")
	debateCmd.Flags().BoolVar(&debateShowCalls, "show-calls", false, "Print every model call after the verdict")
	debateCmd.Flags().BoolVar(&debateShowLog, "show-log", false, "Print the cleaned raw model output after the verdict")
	debateCmd.Flags().BoolVar(&debateConversation, "conversation", false, "Print the arguments as a back-and-forth conversation")
	debateCmd.Flags().BoolVar(&debatePlain, "plain", false, "Print plain progress instead of the terminal UI")
	debateCmd.Flags().StringVar(&debateJudgeModel, "judge-model", "", "Model for the judge (default from debate.judge_model)")
}

// debateOptions are the resolved inputs of one debate invocation.
type debateOptions struct {
	Motion       string
	Oppose       bool
	OutputDir    string
	ShowCalls    bool
	ShowLog      bool
	Conversation bool
	Interactive  bool
	JudgeModel   string
	ThemeFile    string
}

func runDebateCmd(cmd *cobra.Command, args []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}

	opts := debateOptions{
		Motion:       strings.Join(args, " "),
		Oppose:       cfg.Debate.Oppose && !debateNoOppose,
		OutputDir:    debateOutputDir,
		ShowCalls:    debateShowCalls,
		ShowLog:      debateShowLog,
		Conversation: debateConversation,
		Interactive:  interactive(debatePlain || cfg.UI.Plain),
		JudgeModel:   debateJudgeModel,
		ThemeFile:    cfg.UI.ThemeFile,
	}
	if opts.OutputDir == "" {
		opts.OutputDir = cfg.Debate.OutputDir
	}
	if opts.JudgeModel == "" {
		opts.JudgeModel = cfg.Debate.JudgeModel
	}

	logger := newLogger(cfg)
	defer func() { _ = logger.Close() }()

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	return runDebate(ctx, cfg, logger, cmd.OutOrStdout(), opts)
}

func runDebate(ctx context.Context, cfg *config.Config, logger *logging.Logger, out io.Writer, opts debateOptions) error {
	if strings.TrimSpace(opts.Motion) == "" {
		fmt.Fprintln(out, pipeline.EmptyMotionMessage)
		return nil
	}

	tracer := llm.NewTracer(ctx, cfg.Tracing.Enabled, logger)
	defer tracer.Flush(context.WithoutCancel(ctx))

	base, err := newProvider(ctx, cfg)
	if err != nil {
		return err
	}
	defer func() { _ = llm.Close(base) }()
	base = llm.Traced(base, tracer)

	debater := llm.WithModel(base, cfg.Debate.DebaterModel)
	judge := llm.WithModel(base, opts.JudgeModel)

	traceID := tracer.StartTrace("Debate", opts.Motion)
	ctx = llm.ContextWithTrace(ctx, traceID)

	bus := event.NewBus(event.WithBusLogger(logger))
	bus.SubscribeAll(func(e event.Event) {
		logger.Debug("event", "type", e.EventType())
	})

	callLog := llm.NewCallLog()
	runner := pipeline.NewRunner(debater,
		pipeline.WithJudge(judge),
		pipeline.WithOppose(opts.Oppose),
		pipeline.WithArtifactDir(opts.OutputDir),
		pipeline.WithMailboxDir(opts.OutputDir),
		pipeline.WithCallLog(callLog),
		pipeline.WithChunkSentences(cfg.Debate.ChunkSentences),
		pipeline.WithBus(bus),
		pipeline.WithLogger(logger),
	)

	var result *pipeline.Result
	if opts.Interactive {
		app := tui.NewApp("sift debate: "+util.Shorten(opts.Motion, titleLength), tui.WithThemeFile(opts.ThemeFile))
		err = app.Run(ctx, func(ctx context.Context, emit func(tui.Entry)) error {
			var runErr error
			result, runErr = runner.Run(ctx, opts.Motion, func(u pipeline.Update) {
				emit(tui.FromDebate(u))
			})
			return runErr
		})
		if err == nil {
			fmt.Fprintln(out, tui.RenderEntries(app.Entries(), false))
		}
	} else {
		result, err = runner.Run(ctx, opts.Motion, func(u pipeline.Update) {
			fmt.Fprintln(out, tui.RenderEntry(tui.FromDebate(u), true))
		})
	}
	if err != nil {
		return err
	}

	if url := tracer.TraceURL(traceID); url != "" {
		fmt.Fprintf(out, "\n🔍 [View trace](%s)\n", url)
	}
	if opts.Conversation {
		fmt.Fprintf(out, "\n## Conversation\n\n%s\n", debate.FormatConversation(result.Conversation))
	}
	if opts.ShowCalls {
		fmt.Fprintf(out, "\n%s\n", result.CallLog)
	}
	if opts.ShowLog {
		fmt.Fprintf(out, "\n## Logs\n\n%s\n", result.Log)
	}
	fmt.Fprintf(out, "\nArtifacts: %s\n", strings.Join(result.Artifacts, ", "))
	return nil
}
