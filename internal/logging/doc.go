// Package logging provides structured logging with OpenTelemetry integration.
//
// # Overview
//
// The package wraps Zap with:
//   - Custom Trace level (-2, below Debug)
//   - File, stdout and OpenTelemetry outputs
//   - Automatic context field injection (trace_id, session.id)
//   - Secret redaction (gate answers, redis credentials)
//   - Per-level sampling (errors never sampled)
//
// # Usage
//
//	cfg, err := logging.FromConfig(appCfg.Logging)
//	if err != nil {
//	    return err
//	}
//	logger, err := logging.NewLogger(cfg, nil)
//	if err != nil {
//	    return err
//	}
//	defer logger.Close()
//
//	ctx = logging.WithSessionID(ctx, "ppid-4242")
//	logger.Info(ctx, "stage advanced", zap.Int("to", 3))
//
// The terminal UI owns stdout while it runs, so FromConfig routes output to
// the configured file.
//
// # Secret Redaction
//
// Gate answers are never logged verbatim. Use Answer, which keeps only the
// length:
//
//	logger.Debug(ctx, "gate attempt", logging.Answer(input))
//
// The encoder also redacts any field named answer, accepted or redis_url and
// any value that looks like a redis URL with credentials.
//
// # Testing
//
//	tl := logging.NewTestLogger()
//	tl.Info(ctx, "stage advanced", zap.Int("to", 2))
//	tl.AssertLogged(t, zapcore.InfoLevel, "stage advanced")
//	tl.AssertNoAnswers(t, "10/08/24")
package logging
