package logger

import (
	stderrors "errors"
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"time"

	"github.com/SIMPLYBOYS/campaign_monitor/internal/errors"
)

// LogLevel represents the severity of a log message
type LogLevel int

const (
	DEBUG LogLevel = iota
	INFO
	WARN
	ERROR
	FATAL
)

var logLevelNames = map[LogLevel]string{
	DEBUG: "DEBUG",
	INFO:  "INFO",
	WARN:  "WARN",
	ERROR: "ERROR",
	FATAL: "FATAL",
}

type Logger struct {
	level      LogLevel
	output     io.Writer
	logger     *log.Logger
	fileLogger *log.Logger
	file       *os.File
	exit       func(int)
	mu         sync.Mutex
}

var (
	defaultLogger *Logger
	once          sync.Once
)

func init() {
	once.Do(func() {
		defaultLogger = NewLogger(INFO, os.Stdout)
	})
}

// NewLogger creates a new Logger instance
func NewLogger(level LogLevel, output io.Writer) *Logger {
	return &Logger{
		level:  level,
		output: output,
		logger: log.New(output, "", log.Ldate|log.Ltime),
		exit:   os.Exit,
	}
}

// ParseLevel maps a configuration string onto a LogLevel. Unknown values fall
// back to INFO.
func ParseLevel(s string) LogLevel {
	switch strings.ToLower(strings.TrimSpace(s)) {
	case "debug":
		return DEBUG
	case "warn", "warning":
		return WARN
	case "error", "err":
		return ERROR
	case "fatal":
		return FATAL
	default:
		return INFO
	}
}

// SetLevel sets the logging level
func (l *Logger) SetLevel(level LogLevel) {
	l.mu.Lock()
	defer l.mu.Unlock()
	l.level = level
}

// EnableFileLogging enables logging to a file
func (l *Logger) EnableFileLogging(directory string) error {
	l.mu.Lock()
	defer l.mu.Unlock()

	if err := os.MkdirAll(directory, 0755); err != nil {
		return fmt.Errorf("failed to create log directory: %w", err)
	}

	logFile := filepath.Join(directory, fmt.Sprintf("monitor_%s.log", time.Now().Format("2006-01-02")))
	file, err := os.OpenFile(logFile, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0644)
	if err != nil {
		return fmt.Errorf("failed to open log file: %w", err)
	}

	if l.file != nil {
		l.file.Close()
	}
	l.file = file
	l.fileLogger = log.New(file, "", log.Ldate|log.Ltime)
	return nil
}

// Close releases the file sink, if any.
func (l *Logger) Close() error {
	l.mu.Lock()
	defer l.mu.Unlock()
	if l.file == nil {
		return nil
	}
	err := l.file.Close()
	l.file = nil
	l.fileLogger = nil
	return err
}

// log writes one line attributed to the frame skip levels above it.
func (l *Logger) log(skip int, level LogLevel, format string, v ...interface{}) {
	l.mu.Lock()
	defer l.mu.Unlock()

	if level < l.level {
		return
	}

	_, file, line, _ := runtime.Caller(skip)
	msg := fmt.Sprintf(format, v...)
	logMsg := fmt.Sprintf("[%s] [%s:%d] %s", logLevelNames[level], filepath.Base(file), line, msg)

	l.logger.Println(logMsg)
	if l.fileLogger != nil {
		l.fileLogger.Println(logMsg)
	}

	if level == FATAL {
		l.exit(1)
	}
}

// Debug logs a debug message
func (l *Logger) Debug(format string, v ...interface{}) {
	l.logf(DEBUG, format, v...)
}

// Info logs an info message
func (l *Logger) Info(format string, v ...interface{}) {
	l.logf(INFO, format, v...)
}

// Warn logs a warning message
func (l *Logger) Warn(format string, v ...interface{}) {
	l.logf(WARN, format, v...)
}

// Error logs an error message
func (l *Logger) Error(format string, v ...interface{}) {
	l.logf(ERROR, format, v...)
}

// Fatal logs a fatal message and exits the program
func (l *Logger) Fatal(format string, v ...interface{}) {
	l.logf(FATAL, format, v...)
}

// callerSkip attributes a line to the caller of the exported entry point.
// Every exported method and package function reaches log through exactly one
// helper (logf, errorf or logError).
const callerSkip = 3

func (l *Logger) logf(level LogLevel, format string, v ...interface{}) {
	l.log(callerSkip, level, format, v...)
}

// Errorf logs an error message and returns an error
func (l *Logger) Errorf(err error, format string, v ...interface{}) error {
	return l.errorf(err, format, v...)
}

func (l *Logger) errorf(err error, format string, v ...interface{}) error {
	msg := fmt.Sprintf(format, v...)
	wrappedErr := fmt.Errorf("%s: %w", msg, err)
	l.log(callerSkip, ERROR, "%s", wrappedErr.Error())
	return wrappedErr
}

// LogError writes err at the level its class deserves: configuration problems
// and rejections are errors, transient provider failures are warnings.
func (l *Logger) LogError(campaignID string, err error) {
	l.logError(campaignID, err)
}

func (l *Logger) logError(campaignID string, err error) {
	var (
		tp  *errors.TransientProviderError
		ic  *errors.InvalidConfigurationError
		su  *errors.ScoringUnavailableError
		pr  *errors.PayoutRejectedError
		nf  *errors.NotFoundError
		dbe *errors.DatabaseError
		eth *errors.EthereumError
	)
	switch {
	case stderrors.As(err, &ic):
		l.log(callerSkip, ERROR, "campaign %s: invalid configuration: %v", campaignID, err)
	case stderrors.As(err, &pr):
		l.log(callerSkip, ERROR, "campaign %s: payout rejected: %s", campaignID, pr.Reason)
	case stderrors.As(err, &su):
		l.log(callerSkip, WARN, "campaign %s: scoring unavailable, retrying next tick: %v", campaignID, su.Err)
	case stderrors.As(err, &tp), errors.IsTransient(err):
		l.log(callerSkip, WARN, "campaign %s: transient failure, retrying next tick: %v", campaignID, err)
	case stderrors.As(err, &nf):
		l.log(callerSkip, WARN, "campaign %s: %v", campaignID, nf)
	case stderrors.As(err, &dbe):
		l.log(callerSkip, ERROR, "campaign %s: database error during %s: %v", campaignID, dbe.Operation, dbe.Err)
	case stderrors.As(err, &eth):
		l.log(callerSkip, ERROR, "campaign %s: ethereum error during %s: %v", campaignID, eth.Operation, eth.Err)
	default:
		l.log(callerSkip, ERROR, "campaign %s: unexpected error: %v", campaignID, err)
	}
}

// Global functions that use the default logger

// SetLevel sets the logging level for the default logger
func SetLevel(level LogLevel) {
	defaultLogger.SetLevel(level)
}

// EnableFileLogging enables file logging for the default logger
func EnableFileLogging(directory string) error {
	return defaultLogger.EnableFileLogging(directory)
}

// Close releases the default logger's file sink.
func Close() error {
	return defaultLogger.Close()
}

func Debug(format string, v ...interface{}) {
	defaultLogger.logf(DEBUG, format, v...)
}

func Info(format string, v ...interface{}) {
	defaultLogger.logf(INFO, format, v...)
}

func Warn(format string, v ...interface{}) {
	defaultLogger.logf(WARN, format, v...)
}

func Error(format string, v ...interface{}) {
	defaultLogger.logf(ERROR, format, v...)
}

// Fatal logs a fatal message and exits the program using the default logger
func Fatal(format string, v ...interface{}) {
	defaultLogger.logf(FATAL, format, v...)
}

// Errorf logs an error message and returns an error using the default logger
func Errorf(err error, format string, v ...interface{}) error {
	return defaultLogger.errorf(err, format, v...)
}

// LogError classifies err with the default logger.
func LogError(campaignID string, err error) {
	defaultLogger.logError(campaignID, err)
}
