package common

import (
	"fmt"
	"os"
	"strings"

	logging "github.com/op/go-logging"
)

// --------------------------------------------------------------------------
// Logger configuration
// --------------------------------------------------------------------------

// logFormat is the shared format for all module loggers
var logFormat = logging.MustStringFormatter(
	`%{time:15:04:05.000} %{level:-5s} | %{module:-15s} | %{message}`,
)

// loggerModules lists all logger modules used across the application
var loggerModules = []string{
	"locksmith",
	"rpc",
	"transport/rpc",
	"cmd",
}

// parseLogLevel converts a string level to a logging.Level
func parseLogLevel(level string) (logging.Level, error) {
	switch strings.ToLower(level) {
	case "debug":
		return logging.DEBUG, nil
	case "info":
		return logging.INFO, nil
	case "warning", "warn":
		return logging.WARNING, nil
	case "error":
		return logging.ERROR, nil
	default:
		return logging.INFO, fmt.Errorf("invalid log level: %s. must be one of debug, info, warn, error", level)
	}
}

// --------------------------------------------------------------------------
// Logger initialization
// --------------------------------------------------------------------------

// InitLoggers configures the backend, format and level for all
// application loggers.
func InitLoggers(logLevel string) error {
	level, err := parseLogLevel(logLevel)
	if err != nil {
		return err
	}

	backend := logging.NewLogBackend(os.Stdout, "", 0)
	formatted := logging.NewBackendFormatter(backend, logFormat)
	leveled := logging.AddModuleLevel(formatted)
	for _, module := range loggerModules {
		leveled.SetLevel(level, module)
	}
	logging.SetBackend(leveled)

	return nil
}
