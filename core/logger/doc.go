// Package logger provides a structured logging facility based on Zap.
//
// It offers a configured logger instance that supports different environments (development vs production)
// and integrates with the Fiber web framework used by the ops API.
//
// # Context Awareness
//
// Two helpers attach correlation fields:
//   - WithRayID extracts the RayID (request id) from a Fiber context.
//   - WithRun tags every entry of a reconciliation run with its run id, so
//     per-record failures can be traced back to the pass that produced them.
//
// # Configuration
//
// The package supports configuration for:
//   - Level: debug, info, warn, error
//   - Format: json (production) or console (development)
//
// # Usage
//
//	log, _ := logger.New(&logger.Config{Level: "info"})
//	log.Info("Sync started")
//
//	l := logger.WithRun(log, runID)
//	l.Error("Record failed", zap.String("key", key), zap.Error(err))
package logger
