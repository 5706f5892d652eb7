package logging

import (
	"fmt"
	"io"
	"os"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// LogDirEnv overrides the log directory (used by tests and portable installs).
const LogDirEnv = "GHOSTCHAT_LOG_DIR"

const timeLayout = "2006-01-02 15:04:05.000"

// Entry is one log line before formatting. Mirrors receive it as-is.
type Entry struct {
	Time      time.Time
	Component string
	Level     Level
	Message   string
}

func (e Entry) String() string {
	return fmt.Sprintf("[%s] [%s] [%s] %s", e.Time.Format(timeLayout), e.Component, e.Level, e.Message)
}

// sink is a serialized line writer. Every file logger of a process shares
// the session sink, so lines from different components never interleave.
type sink struct {
	mu   sync.Mutex
	w    io.Writer
	file *os.File
	path string
}

func (s *sink) writeLine(line string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	_, _ = io.WriteString(s.w, line+"\n")
}

func (s *sink) close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	if s.file == nil {
		return nil
	}
	err := s.file.Close()
	s.file = nil
	s.w = io.Discard
	return err
}

var (
	sessionID     string
	sessionIDOnce sync.Once

	logDir   string
	initOnce sync.Once
	initErr  error

	session     *sink
	sessionOnce sync.Once
	sessionErr  error
)

func getSessionID() string {
	sessionIDOnce.Do(func() {
		sessionID = uuid.New().String()
	})
	return sessionID
}

// initLogDirectory resolves GHOSTCHAT_LOG_DIR or ~/.ghostchat/logs and
// creates it.
func initLogDirectory() error {
	initOnce.Do(func() {
		dir := os.Getenv(LogDirEnv)
		if dir == "" {
			home, err := os.UserHomeDir()
			if err != nil {
				initErr = fmt.Errorf("failed to get home directory: %w", err)
				return
			}
			dir = filepath.Join(home, ".ghostchat", "logs")
		}
		if err := os.MkdirAll(dir, 0750); err != nil {
			initErr = fmt.Errorf("failed to create log directory: %w", err)
			return
		}
		logDir = dir
	})
	return initErr
}

// openSession opens <session-id>-ghostchat.log once per process.
func openSession() (*sink, error) {
	sessionOnce.Do(func() {
		if err := initLogDirectory(); err != nil {
			sessionErr = err
			return
		}
		path := filepath.Join(logDir, getSessionID()+"-ghostchat.log")
		f, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0600)
		if err != nil {
			sessionErr = fmt.Errorf("failed to open log file: %w", err)
			return
		}
		session = &sink{w: f, file: f, path: path}
	})
	return session, sessionErr
}

// Logger tags lines with a component name. Loggers from NewLogger write to
// the session file; entries below the process threshold (see SetLevel) are
// dropped.
type Logger struct {
	component string
	out       *sink
	closed    atomic.Bool
}

// NewLogger returns a logger for component writing to the session file.
// When the file cannot be opened the returned logger writes to stderr and
// the error explains why.
func NewLogger(component string) (*Logger, error) {
	s, err := openSession()
	if err != nil {
		return &Logger{component: component, out: &sink{w: os.Stderr}}, err
	}
	return &Logger{component: component, out: s}, nil
}

// NewWriterLogger returns a logger for component writing to w.
func NewWriterLogger(component string, w io.Writer) *Logger {
	return &Logger{component: component, out: &sink{w: w}}
}

func (l *Logger) log(level Level, format string, v ...interface{}) {
	if l.closed.Load() || !enabled(level) {
		return
	}
	e := Entry{
		Time:      time.Now(),
		Component: l.component,
		Level:     level,
		Message:   fmt.Sprintf(format, v...),
	}
	l.out.writeLine(e.String())
	notifyMirrors(e)
}

func (l *Logger) Debugf(format string, v ...interface{}) { l.log(LevelDebug, format, v...) }
func (l *Logger) Infof(format string, v ...interface{})  { l.log(LevelInfo, format, v...) }
func (l *Logger) Warnf(format string, v ...interface{})  { l.log(LevelWarn, format, v...) }
func (l *Logger) Errorf(format string, v ...interface{}) { l.log(LevelError, format, v...) }

// Component returns the tag written with every entry.
func (l *Logger) Component() string {
	return l.component
}

func (l *Logger) SessionID() string {
	return getSessionID()
}

// LogPath is the session file, or empty for stderr and writer loggers.
func (l *Logger) LogPath() string {
	return l.out.path
}

// Close stops this logger. Later calls are no-ops and later entries are
// dropped. The session file stays open for other components until
// CloseSession.
func (l *Logger) Close() error {
	l.closed.Store(true)
	return nil
}

// CloseSession flushes and closes the session file. Loggers still holding it
// discard further entries.
func CloseSession() error {
	if session == nil {
		return nil
	}
	return session.close()
}

// GetSessionID returns the id naming this process's log file.
func GetSessionID() string {
	return getSessionID()
}

// GetLogDirectory returns the directory holding session files.
func GetLogDirectory() (string, error) {
	if err := initLogDirectory(); err != nil {
		return "", err
	}
	return logDir, nil
}
