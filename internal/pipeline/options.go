package pipeline

import (
	"github.com/Iron-Ham/sift/internal/event"
	"github.com/Iron-Ham/sift/internal/llm"
	"github.com/Iron-Ham/sift/internal/logging"
)

// Option configures a Runner.
type Option func(*runnerConfig)

type runnerConfig struct {
	logger         *logging.Logger
	bus            *event.Bus
	oppose         bool
	artifactDir    string
	mailboxDir     string
	callLog        *llm.CallLog
	judge          llm.Provider
	chunkSentences int
}

func defaultRunnerConfig() runnerConfig {
	return runnerConfig{
		logger:         logging.NopLogger(),
		oppose:         true,
		artifactDir:    "output",
		chunkSentences: 2,
	}
}

// WithLogger sets the logger.
func WithLogger(logger *logging.Logger) Option {
	return func(c *runnerConfig) {
		if logger != nil {
			c.logger = logger
		}
	}
}

// WithBus publishes debate events to bus.
func WithBus(bus *event.Bus) Option {
	return func(c *runnerConfig) { c.bus = bus }
}

// WithOppose enables or disables the AGAINST debater. Enabled by default.
func WithOppose(enabled bool) Option {
	return func(c *runnerConfig) { c.oppose = enabled }
}

// WithArtifactDir sets where propose.md, oppose.md and decide.md are
// written. Defaults to "output".
func WithArtifactDir(dir string) Option {
	return func(c *runnerConfig) {
		if dir != "" {
			c.artifactDir = dir
		}
	}
}

// WithMailboxDir persists every debate turn as JSONL under dir. Without it
// turns are kept in memory only.
func WithMailboxDir(dir string) Option {
	return func(c *runnerConfig) { c.mailboxDir = dir }
}

// WithCallLog records every model call of a run in log. The log is cleared
// when a run starts.
func WithCallLog(log *llm.CallLog) Option {
	return func(c *runnerConfig) { c.callLog = log }
}

// WithJudge uses p for the judge instead of the debater model.
func WithJudge(p llm.Provider) Option {
	return func(c *runnerConfig) { c.judge = p }
}

// WithChunkSentences sets how many sentences make up one conversation line.
func WithChunkSentences(n int) Option {
	return func(c *runnerConfig) {
		if n > 0 {
			c.chunkSentences = n
		}
	}
}
