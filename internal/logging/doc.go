// Package logging provides structured logging for research and debate runs.
//
// It wraps log/slog with a JSON handler and adds persistent attributes so
// every line written during a run can be traced back to its session and
// phase after the fact.
//
// # Features
//
//   - JSON lines via slog, levels DEBUG, INFO, WARN, ERROR
//   - Child loggers carrying session_id, phase, and component
//   - Size-based rotation with optional gzip of old files
//   - Aggregation, filtering, and export (json, text, csv) for the logs command
//
// # Basic Usage
//
//	logger, err := logging.NewLogger(dir, "INFO",
//	    logging.WithRotation(logging.RotationConfig{MaxSizeMB: 10, MaxBackups: 3}))
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	runLog := logger.WithSession(id).WithPhase("search")
//	runLog.Info("search completed", "query", q, "results", n)
//
// Output:
//
//	{"time":"...","level":"INFO","msg":"search completed","session_id":"...","phase":"search","query":"...","results":5}
//
// # Reading Logs Back
//
//	entries, err := logging.AggregateLogs(dir)
//	warnings := logging.FilterLogs(entries, logging.LogFilter{Level: "WARN"})
//	err = logging.ExportLogEntries(warnings, "warnings.csv", "csv")
//
// # Thread Safety
//
// Logger and RotatingWriter are safe for concurrent use. Children created
// with the With* methods share the parent's writer, and Close on any of
// them closes it once.
package logging
