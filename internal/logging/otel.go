// internal/logging/otel.go
package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"

	"go.opentelemetry.io/contrib/bridges/otelzap"
	"go.opentelemetry.io/otel/log"
	"go.uber.org/zap/zapcore"
)

// newCore tees the file, stdout and OTEL outputs that are enabled. The
// returned closer owns the log file and is nil when no file is open.
func newCore(cfg *Config, otelProvider log.LoggerProvider) (zapcore.Core, io.Closer, error) {
	cores := make([]zapcore.Core, 0, 3)
	var closer io.Closer

	newEncoded := func(w zapcore.WriteSyncer) (zapcore.Core, error) {
		encoder, err := NewRedactingEncoder(newEncoder(cfg.Format), cfg.Redaction)
		if err != nil {
			return nil, fmt.Errorf("failed to create redacting encoder: %w", err)
		}
		return zapcore.NewCore(encoder, w, cfg.Level), nil
	}

	if cfg.Output.Path != "" {
		f, err := openLogFile(cfg.Output.Path)
		if err != nil {
			return nil, nil, err
		}
		core, err := newEncoded(zapcore.AddSync(f))
		if err != nil {
			f.Close()
			return nil, nil, err
		}
		cores = append(cores, core)
		closer = f
	}

	if cfg.Output.Stdout {
		core, err := newEncoded(zapcore.AddSync(os.Stdout))
		if err != nil {
			if closer != nil {
				closer.Close()
			}
			return nil, nil, err
		}
		cores = append(cores, core)
	}

	if cfg.Output.OTEL && otelProvider != nil {
		cores = append(cores, otelzap.NewCore("vault", otelzap.WithLoggerProvider(otelProvider)))
	}

	if len(cores) == 0 {
		return nil, nil, fmt.Errorf("at least one output must be enabled and available")
	}

	var core zapcore.Core
	if len(cores) == 1 {
		core = cores[0]
	} else {
		core = zapcore.NewTee(cores...)
	}

	return newSampledCore(core, cfg.Sampling), closer, nil
}

func openLogFile(path string) (*os.File, error) {
	if err := os.MkdirAll(filepath.Dir(path), 0700); err != nil {
		return nil, fmt.Errorf("failed to create log directory: %w", err)
	}
	f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
	if err != nil {
		return nil, fmt.Errorf("failed to open log file %s: %w", path, err)
	}
	return f, nil
}
