// Package log writes file-backed diagnostics for the voice capture flow.
// Logging is best-effort: before Init (or after Close) every helper is a
// no-op, so library code never has to check whether logging is wired.
package log

import (
	"fmt"
	"os"
	"path/filepath"
	"sync"

	"github.com/rs/zerolog"
)

var (
	diagLog zerolog.Logger
	file    *os.File
	mu      sync.Mutex
	ready   bool
	dir     string
)

// ResolveDir picks the log directory: -logpath flag, then the
// VOXPENSE_LOG_PATH environment variable, then the OS cache location.
func ResolveDir(flagPath string) (string, error) {
	for _, p := range []string{flagPath, os.Getenv("VOXPENSE_LOG_PATH")} {
		if p == "" {
			continue
		}
		if filepath.IsAbs(p) {
			return p, nil
		}
		wd, err := os.Getwd()
		if err != nil {
			return "", err
		}
		return filepath.Join(wd, p), nil
	}
	cache, err := os.UserCacheDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(cache, "voxpense"), nil
}

func SetDir(d string) {
	dir = d
}

func Dir() string {
	return dir
}

func Init() error {
	mu.Lock()
	defer mu.Unlock()

	if err := os.MkdirAll(dir, 0755); err != nil {
		return fmt.Errorf("creating log directory: %w", err)
	}

	var err error
	file, err = os.OpenFile(filepath.Join(dir, "diagnostics_log.txt"),
		os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0644)
	if err != nil {
		return err
	}

	consoleWriter := zerolog.ConsoleWriter{
		Out:        file,
		TimeFormat: "2006-01-02 15:04:05",
		NoColor:    true,
	}
	diagLog = zerolog.New(consoleWriter).With().Timestamp().Int("pid", os.Getpid()).Logger()
	ready = true
	return nil
}

func Close() {
	mu.Lock()
	defer mu.Unlock()
	if file != nil {
		file.Close()
		file = nil
	}
	ready = false
}

func Info(msg string) {
	if ready {
		diagLog.Info().Msg(msg)
	}
}

func Infof(format string, args ...any) {
	if ready {
		diagLog.Info().Msg(fmt.Sprintf(format, args...))
	}
}

func Warnf(format string, args ...any) {
	if ready {
		diagLog.Warn().Msg(fmt.Sprintf(format, args...))
	}
}

func Errorf(format string, args ...any) {
	if ready {
		diagLog.Error().Msg(fmt.Sprintf(format, args...))
	}
}

// FlowState records one recording-controller transition.
func FlowState(from, to string) {
	if !ready {
		return
	}
	diagLog.Info().
		Str("from", from).
		Str("to", to).
		Msg("flow_state")
}

// Extraction records one round trip to the extraction collaborator.
func Extraction(mime string, payloadBytes int, audioS float64, totalMs int64, connReused bool) {
	if !ready {
		return
	}
	conn := "new"
	if connReused {
		conn = "reused"
	}
	diagLog.Info().
		Str("mime", mime).
		Int("payload_bytes", payloadBytes).
		Float64("audio_s", audioS).
		Int64("total_ms", totalMs).
		Str("conn", conn).
		Msg("extraction")
}

// StaleDrop records an extraction response that arrived after its attempt
// was no longer current and was discarded without a state change.
func StaleDrop(attempt string) {
	if !ready {
		return
	}
	diagLog.Info().
		Str("attempt", attempt).
		Msg("stale_response_dropped")
}

// ExpenseSaved records a confirmed draft reaching the persistence store.
func ExpenseSaved(id string, amount float64) {
	if !ready {
		return
	}
	diagLog.Info().
		Str("id", id).
		Float64("amount", amount).
		Msg("expense_saved")
}
