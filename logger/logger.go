package logger

import (
	"fmt"
	"os"
	"runtime"
	"sync/atomic"
	"time"
)

// Logger is a subsystem logger. All messages are routed through the owning
// Backend, which serializes writes across subsystems.
type Logger struct {
	levelValue uint32 // accessed atomically, holds a Level
	tag        string
	backend    *Backend
	writeChan  chan<- logEntry
}

// Trace formats a message using the default formats for its operands and
// writes it at LevelTrace.
func (l *Logger) Trace(args ...interface{}) {
	l.print(LevelTrace, args...)
}

// Tracef formats a message according to a format specifier and writes it at
// LevelTrace.
func (l *Logger) Tracef(format string, args ...interface{}) {
	l.printf(LevelTrace, format, args...)
}

// Debug writes a message at LevelDebug.
func (l *Logger) Debug(args ...interface{}) {
	l.print(LevelDebug, args...)
}

// Debugf writes a formatted message at LevelDebug.
func (l *Logger) Debugf(format string, args ...interface{}) {
	l.printf(LevelDebug, format, args...)
}

// Info writes a message at LevelInfo.
func (l *Logger) Info(args ...interface{}) {
	l.print(LevelInfo, args...)
}

// Infof writes a formatted message at LevelInfo.
func (l *Logger) Infof(format string, args ...interface{}) {
	l.printf(LevelInfo, format, args...)
}

// Warn writes a message at LevelWarn.
func (l *Logger) Warn(args ...interface{}) {
	l.print(LevelWarn, args...)
}

// Warnf writes a formatted message at LevelWarn.
func (l *Logger) Warnf(format string, args ...interface{}) {
	l.printf(LevelWarn, format, args...)
}

// Error writes a message at LevelError.
func (l *Logger) Error(args ...interface{}) {
	l.print(LevelError, args...)
}

// Errorf writes a formatted message at LevelError.
func (l *Logger) Errorf(format string, args ...interface{}) {
	l.printf(LevelError, format, args...)
}

// Critical writes a message at LevelCritical.
func (l *Logger) Critical(args ...interface{}) {
	l.print(LevelCritical, args...)
}

// Criticalf writes a formatted message at LevelCritical.
func (l *Logger) Criticalf(format string, args ...interface{}) {
	l.printf(LevelCritical, format, args...)
}

// Level returns the current logging level.
func (l *Logger) Level() Level {
	return Level(atomic.LoadUint32(&l.levelValue))
}

// SetLevel changes the logging level to the passed level.
func (l *Logger) SetLevel(level Level) {
	atomic.StoreUint32(&l.levelValue, uint32(level))
}

func (l *Logger) print(level Level, args ...interface{}) {
	if level < l.Level() {
		return
	}
	l.write(level, fmt.Sprint(args...))
}

func (l *Logger) printf(level Level, format string, args ...interface{}) {
	if level < l.Level() {
		return
	}
	l.write(level, fmt.Sprintf(format, args...))
}

// write formats the message header and hands it to the backend. If the
// backend is not running, the message falls back to stderr so nothing is
// silently dropped before initialization.
func (l *Logger) write(level Level, message string) {
	log := l.formatMessage(level, message)
	if !l.backend.IsRunning() {
		_, _ = fmt.Fprint(os.Stderr, string(log))
		return
	}
	l.writeChan <- logEntry{log: log, level: level}
}

func (l *Logger) formatMessage(level Level, message string) []byte {
	timestamp := time.Now().Format("2006-01-02 15:04:05.000")
	callsite := l.callsite()
	if callsite != "" {
		return []byte(fmt.Sprintf("%s [%s] %s %s: %s\n",
			timestamp, level, l.tag, callsite, message))
	}
	return []byte(fmt.Sprintf("%s [%s] %s: %s\n",
		timestamp, level, l.tag, message))
}

// callsiteDepth is the number of stack frames between the user's logging
// statement and runtime.Caller inside callsite.
const callsiteDepth = 4

func (l *Logger) callsite() string {
	if l.backend.flag&(LogFlagShortFile|LogFlagLongFile) == 0 {
		return ""
	}
	_, file, line, ok := runtime.Caller(callsiteDepth)
	if !ok {
		return ""
	}
	if l.backend.flag&LogFlagShortFile != 0 {
		for i := len(file) - 1; i > 0; i-- {
			if file[i] == '/' {
				file = file[i+1:]
				break
			}
		}
	}
	return fmt.Sprintf("%s:%d", file, line)
}
