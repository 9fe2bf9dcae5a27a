package logger

import (
	"fmt"
	"io"
	"strings"
	"sync"

	"github.com/fatih/color"
)

type LogStatus int

const (
	VERBOSE LogStatus = iota
	DEBUG
	INFO
	SUCCESS
	NEW
	REMOVE
	STOP
	WARNING
	ERROR
	FATAL
)

var statusLabels = []string{"V", "D", "I", "✓", "+", "-", "X", "!", "!!", "PANIC"}

var statusColors = []*color.Color{
	color.New(color.FgWhite, color.Faint),                 // Verbose
	color.New(color.FgWhite, color.Italic),                // Debug
	color.New(color.FgWhite),                              // Info
	color.New(color.FgHiGreen),                            // Success
	color.New(color.FgGreen, color.Italic),                // New
	color.New(color.FgYellow, color.Italic),               // Remove
	color.New(color.FgHiYellow),                           // Stop
	color.New(color.FgYellow, color.Underline),            // Warning
	color.New(color.FgHiRed, color.Bold),                  // Error
	color.New(color.FgHiRed, color.Bold, color.Underline), // Fatal
}

func (e LogStatus) String() string {
	if e < VERBOSE || e > FATAL {
		return "?"
	}

	return statusLabels[e]
}

func (e LogStatus) Color() *color.Color {
	if e < VERBOSE || e > FATAL {
		return color.New(color.Reset)
	}

	return statusColors[e]
}

// ParseLevel converts a textual level (as found in config) in to
// the LogStatus it represents.
func ParseLevel(level string) (LogStatus, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "verbose", "trace":
		return VERBOSE, nil
	case "debug":
		return DEBUG, nil
	case "info", "":
		return INFO, nil
	case "warn", "warning":
		return WARNING, nil
	case "error":
		return ERROR, nil
	}

	return INFO, fmt.Errorf("unknown log level '%s'", level)
}

type Logger interface {
	Emit(LogStatus, string, ...interface{})
	Verbosef(string, ...interface{})
	Debugf(string, ...interface{})
	Infof(string, ...interface{})
	Warnf(string, ...interface{})
	Errorf(string, ...interface{})

	// Printf and Fatalf allow a Logger to be handed to libraries
	// which expect a std-lib style logger (e.g. goose).
	Printf(string, ...interface{})
	Fatalf(string, ...interface{})
}

type loggerImpl struct {
	name string
}

func (l *loggerImpl) Emit(status LogStatus, message string, interpolations ...interface{}) {
	Log.Emit(status, l.name, message, interpolations...)
}

func (l *loggerImpl) Verbosef(message string, args ...interface{}) { l.Emit(VERBOSE, message, args...) }
func (l *loggerImpl) Debugf(message string, args ...interface{})   { l.Emit(DEBUG, message, args...) }
func (l *loggerImpl) Infof(message string, args ...interface{})    { l.Emit(INFO, message, args...) }
func (l *loggerImpl) Warnf(message string, args ...interface{})    { l.Emit(WARNING, message, args...) }
func (l *loggerImpl) Errorf(message string, args ...interface{})   { l.Emit(ERROR, message, args...) }
func (l *loggerImpl) Printf(message string, args ...interface{})   { l.Emit(INFO, ensureNewline(message), args...) }

// Fatalf logs the message at FATAL, and then panics. Libraries
// calling Fatalf expect that execution does not continue.
func (l *loggerImpl) Fatalf(message string, args ...interface{}) {
	l.Emit(FATAL, ensureNewline(message), args...)
	panic(fmt.Sprintf(message, args...))
}

type LoggerManager interface {
	GetLogger(string) Logger
	Emit(LogStatus, string, string, ...interface{})
	SetMinLevel(LogStatus)
	SetOutput(io.Writer)
}

var Log LoggerManager = &loggerMgr{minLevel: INFO}

type loggerMgr struct {
	sync.Mutex
	offset   int
	minLevel LogStatus
	out      io.Writer
}

func (l *loggerMgr) GetLogger(name string) Logger {
	return &loggerImpl{name: name}
}

func (l *loggerMgr) Emit(status LogStatus, name string, message string, interpolations ...interface{}) {
	l.Lock()
	defer l.Unlock()
	if status < l.minLevel {
		return
	}

	if len(name) > l.offset {
		l.offset = len(name)
	}
	padding := strings.Repeat(" ", l.offset-len(name))
	msg := fmt.Sprintf("[%s] %s(%s) %s", name, padding, status, fmt.Sprintf(message, interpolations...))

	if l.out != nil {
		status.Color().Fprint(l.out, msg)
		return
	}
	status.Color().Print(msg)
}

func (l *loggerMgr) SetMinLevel(level LogStatus) {
	l.Lock()
	defer l.Unlock()
	l.minLevel = level
}

func (l *loggerMgr) SetOutput(out io.Writer) {
	l.Lock()
	defer l.Unlock()
	l.out = out
}

func Get(name string) Logger {
	return Log.GetLogger(name)
}

// SetMinLoggingLevel drops any log lines emitted
// with a status below the one provided.
func SetMinLoggingLevel(level LogStatus) {
	Log.SetMinLevel(level)
}

func ensureNewline(message string) string {
	if strings.HasSuffix(message, "\n") {
		return message
	}

	return message + "\n"
}
