// Package runlog maintains the durable per-run log file and the chronological
// activity journal.
//
// Console output (pkg/utils/notify) stays terse; everything needed to diagnose
// a run — literal commands, exit codes, truncated output — lands here, in a
// file keyed by the run identifier that the console lines carry.
package runlog

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	// maxOutputChars bounds how much captured command output is written per
	// invocation. Full output rarely helps past this point and bloats the log.
	maxOutputChars = 2000

	logFileMaxSizeMB  = 5
	logFileMaxBackups = 3

	activityFileName = "activity.log"
	dirPerm          = 0o755
	filePerm         = 0o644
)

// Logger writes diagnostic detail for one provisioning run.
type Logger struct {
	runID        string
	log          *logrus.Logger
	sink         *lumberjack.Logger
	activityPath string
}

// Open creates the log directory if needed and opens a rotated log file named
// by a freshly generated run identifier. The returned Logger must be closed at
// run end.
func Open(dir string) (*Logger, error) {
	runID := uuid.New().String()[:8]

	return OpenWithRunID(dir, runID)
}

// OpenWithRunID opens the run log with an explicit run identifier. Used by
// tests and by callers resuming an externally assigned identifier.
func OpenWithRunID(dir, runID string) (*Logger, error) {
	err := os.MkdirAll(dir, dirPerm)
	if err != nil {
		return nil, fmt.Errorf("create log directory %s: %w", dir, err)
	}

	sink := &lumberjack.Logger{
		Filename:   filepath.Join(dir, fmt.Sprintf("autolocal-%s.log", runID)),
		MaxSize:    logFileMaxSizeMB,
		MaxBackups: logFileMaxBackups,
	}

	log := logrus.New()
	log.SetOutput(sink)
	log.SetLevel(logrus.DebugLevel)
	log.SetFormatter(&logrus.TextFormatter{
		FullTimestamp:   true,
		TimestampFormat: "2006-01-02T15:04:05",
	})

	logger := &Logger{
		runID:        runID,
		log:          log,
		sink:         sink,
		activityPath: filepath.Join(dir, activityFileName),
	}

	logger.Debugf("logging initialized run_id=%s", runID)

	return logger, nil
}

// RunID returns the run identifier correlating console lines with this log.
func (l *Logger) RunID() string {
	return l.runID
}

// Debugf records normal progress detail.
func (l *Logger) Debugf(format string, args ...any) {
	l.log.Debugf(format, args...)
}

// Infof records notable progress.
func (l *Logger) Infof(format string, args ...any) {
	l.log.Infof(format, args...)
}

// Warnf records a recoverable problem.
func (l *Logger) Warnf(format string, args ...any) {
	l.log.Warnf(format, args...)
}

// Errorf records a failure.
func (l *Logger) Errorf(format string, args ...any) {
	l.log.Errorf(format, args...)
}

// Command records one external command invocation with its literal argv, exit
// status, duration and truncated output.
func (l *Logger) Command(argv []string, exitCode int, elapsed time.Duration, stdout, stderr string) {
	entry := l.log.WithFields(logrus.Fields{
		"exit":    exitCode,
		"elapsed": fmt.Sprintf("%.1fs", elapsed.Seconds()),
	})

	msg := fmt.Sprintf("exec %v", argv)
	if stdout != "" {
		msg += "\nSTDOUT: " + truncate(stdout)
	}

	if stderr != "" {
		msg += "\nSTDERR: " + truncate(stderr)
	}

	if exitCode == 0 {
		entry.Debug(msg)
	} else {
		entry.Error(msg)
	}
}

// Activity appends one line to the chronological activity journal. The
// journal survives across runs and rotations; it records what was done, not
// how it went wrong.
func (l *Logger) Activity(format string, args ...any) {
	line := fmt.Sprintf(format, args...)
	stamp := time.Now().UTC().Format(time.RFC3339)

	file, err := os.OpenFile(l.activityPath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, filePerm)
	if err != nil {
		l.Warnf("could not append activity journal: %v", err)

		return
	}
	defer file.Close()

	_, err = fmt.Fprintf(file, "%s %s\n", stamp, line)
	if err != nil {
		l.Warnf("could not write activity journal: %v", err)
	}
}

// Close flushes and closes the underlying log file.
func (l *Logger) Close() error {
	err := l.sink.Close()
	if err != nil {
		return fmt.Errorf("close run log: %w", err)
	}

	return nil
}

func truncate(s string) string {
	if len(s) <= maxOutputChars {
		return s
	}

	return s[:maxOutputChars] + "...(truncated)"
}
