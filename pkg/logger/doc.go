// Package logger provides structured logging for iganalyzer.
//
// It wraps zerolog behind a small Logger interface with:
//   - level filtering (debug, info, warn, error, fatal, disabled)
//   - per-logger fields via WithField / WithFields / WithError
//   - human-readable console output on stderr
//   - optional JSON file output rotated by lumberjack
//   - a global instance for command-line code
//
// Library packages take a Logger as a dependency instead of using the global
// instance; tests pass NewTestLogger() or NewNopLogger().
//
//	if err := logger.Initialize(&cfg.Logging); err != nil {
//	    return err
//	}
//	log := logger.GetLogger().WithField("run_id", runID)
//	log.InfoWithFields("Report written", map[string]interface{}{
//	    "path":  path,
//	    "posts": 42,
//	})
package logger
