package logging

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

// EnvLevel names the environment variable consulted when no level is given.
const EnvLevel = "LOGBEACON_LOG_LEVEL"

const defaultLogFile = "~/.local/state/logbeacon/logbeacon.log"

// Options configure New.
type Options struct {
	Level string
	// Output is "stderr", "stdout" or a file path. Empty selects DefaultFile.
	Output string
}

// DefaultFile returns the log file used by the terminal UI.
func DefaultFile() string {
	home, err := os.UserHomeDir()
	if err != nil {
		return filepath.Join(os.TempDir(), "logbeacon.log")
	}
	return filepath.Join(home, strings.TrimPrefix(defaultLogFile, "~"))
}

// New builds a production-style JSON logger with ISO8601 timestamps.
func New(opts Options) (*zap.Logger, error) {
	levelText := opts.Level
	if strings.TrimSpace(levelText) == "" {
		levelText = os.Getenv(EnvLevel)
	}

	output := strings.TrimSpace(opts.Output)
	if output == "" {
		output = DefaultFile()
	}
	if output != "stderr" && output != "stdout" {
		if err := os.MkdirAll(filepath.Dir(output), 0o755); err != nil {
			return nil, fmt.Errorf("create log dir: %w", err)
		}
	}

	config := zap.NewProductionConfig()
	config.Level = zap.NewAtomicLevelAt(ParseLevel(levelText))
	config.OutputPaths = []string{output}
	config.ErrorOutputPaths = []string{output}
	config.EncoderConfig.TimeKey = "time"
	config.EncoderConfig.EncodeTime = zapcore.ISO8601TimeEncoder
	config.Sampling = nil

	logger, err := config.Build()
	if err != nil {
		return nil, fmt.Errorf("build logger: %w", err)
	}
	return logger, nil
}

// ParseLevel converts a human-readable level to a zapcore.Level.
// Unrecognized values map to INFO.
func ParseLevel(value string) zapcore.Level {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "debug":
		return zapcore.DebugLevel
	case "warn", "warning":
		return zapcore.WarnLevel
	case "error":
		return zapcore.ErrorLevel
	default:
		return zapcore.InfoLevel
	}
}
