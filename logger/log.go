package logger

import (
	"os"
	"sync"

	"github.com/pkg/errors"
)

// backendLog is the logging backend used by every subsystem logger in the
// process. It is created here so packages can register their loggers at init
// time, before the embedding application configures output.
var backendLog = NewBackend()

var (
	subsystemsMutex sync.Mutex
	subsystems      = make(map[string]*Logger)
)

// RegisterSubSystem returns the logger for the given subsystem tag,
// registering a new one on first use. Subsystem loggers start at LevelOff
// and produce no output until SetLogLevels or SetLogLevel enables them.
func RegisterSubSystem(subsystem string) *Logger {
	subsystemsMutex.Lock()
	defer subsystemsMutex.Unlock()

	logger, ok := subsystems[subsystem]
	if !ok {
		logger = backendLog.Logger(subsystem)
		subsystems[subsystem] = logger
	}
	return logger
}

// InitLog attaches log file and error log file to the backend log and starts
// it.
func InitLog(logFile, errLogFile string) error {
	err := backendLog.AddLogFile(logFile, LevelTrace)
	if err != nil {
		return errors.Errorf("Error adding log file %s as log rotator for level %s: %s",
			logFile, LevelTrace, err)
	}
	err = backendLog.AddLogFile(errLogFile, LevelWarn)
	if err != nil {
		return errors.Errorf("Error adding log file %s as log rotator for level %s: %s",
			errLogFile, LevelWarn, err)
	}
	err = backendLog.AddLogWriter(os.Stdout, LevelInfo)
	if err != nil {
		return errors.Errorf("Error adding stdout to the loggerfor level %s: %s",
			LevelInfo, err)
	}
	err = backendLog.Run()
	if err != nil {
		return errors.Errorf("Error starting the logger: %s ", err)
	}
	return nil
}

// SetLogLevels sets the logging level for all of the registered subsystems.
func SetLogLevels(logLevel Level) {
	subsystemsMutex.Lock()
	defer subsystemsMutex.Unlock()

	for _, logger := range subsystems {
		logger.SetLevel(logLevel)
	}
}

// SetLogLevel sets the logging level of a single registered subsystem.
// An error is returned if the subsystem is unknown.
func SetLogLevel(subsystem string, logLevel Level) error {
	subsystemsMutex.Lock()
	defer subsystemsMutex.Unlock()

	logger, ok := subsystems[subsystem]
	if !ok {
		return errors.Errorf("unknown logging subsystem %s", subsystem)
	}
	logger.SetLevel(logLevel)
	return nil
}

// SupportedSubsystems returns a snapshot of the registered subsystem tags.
func SupportedSubsystems() []string {
	subsystemsMutex.Lock()
	defer subsystemsMutex.Unlock()

	tags := make([]string, 0, len(subsystems))
	for tag := range subsystems {
		tags = append(tags, tag)
	}
	return tags
}

// Close shuts the backend log down, flushing any pending writes.
func Close() {
	if backendLog.IsRunning() {
		backendLog.Close()
	}
}
