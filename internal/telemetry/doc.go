// Package telemetry provides OpenTelemetry tracing and metrics for vault.
//
// Telemetry is off by default. When enabled it exports traces and metrics
// over OTLP (grpc or http/protobuf) to a collector:
//
//	tel, err := telemetry.New(ctx, telemetry.FromConfig(cfg.Telemetry, version))
//	if err != nil {
//	    return err
//	}
//	defer tel.Shutdown(context.Background())
//
//	meter := tel.Meter("github.com/fyrsmithlabs/vault/internal/stage")
//
// Exporter failures degrade to the global no-op providers; nothing here can
// stop the experience. Tests use NewTestTelemetry, which records spans in
// memory and reads metrics on demand.
package telemetry
