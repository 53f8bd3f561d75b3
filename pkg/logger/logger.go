// Package logger is a small global logger used across the emulator core.
// Subsystems are gated independently so a caller can turn on CPU tracing
// without paying for PPU/APU/mapper log formatting on every tick.
package logger

import (
	"fmt"
	"io"
	"os"
	"time"
)

// LogLevel represents different logging levels
type LogLevel int

const (
	LogLevelOff LogLevel = iota
	LogLevelError
	LogLevelWarn
	LogLevelInfo
	LogLevelDebug
	LogLevelTrace
)

// Logger handles all logging for the emulator
type Logger struct {
	level         LogLevel
	writer        io.Writer
	cpuEnabled    bool
	ppuEnabled    bool
	apuEnabled    bool
	mapperEnabled bool
}

var globalLogger *Logger

// Initialize sets up the global logger
func Initialize(level LogLevel, filename string) error {
	var writer io.Writer = os.Stdout

	if filename != "" {
		file, err := os.Create(filename)
		if err != nil {
			return fmt.Errorf("failed to create log file: %w", err)
		}
		writer = file
	}

	globalLogger = &Logger{
		level:         level,
		writer:        writer,
		cpuEnabled:    false,
		ppuEnabled:    false,
		apuEnabled:    false,
		mapperEnabled: false,
	}

	return nil
}

// SetCPULogging enables or disables CPU instruction logging
func SetCPULogging(enabled bool) {
	if globalLogger != nil {
		globalLogger.cpuEnabled = enabled
	}
}

// SetPPULogging enables or disables PPU logging
func SetPPULogging(enabled bool) {
	if globalLogger != nil {
		globalLogger.ppuEnabled = enabled
	}
}

// SetAPULogging enables or disables APU logging
func SetAPULogging(enabled bool) {
	if globalLogger != nil {
		globalLogger.apuEnabled = enabled
	}
}

// SetMapperLogging enables or disables mapper logging
func SetMapperLogging(enabled bool) {
	if globalLogger != nil {
		globalLogger.mapperEnabled = enabled
	}
}

// LogCPU logs CPU instruction/interrupt events
func LogCPU(format string, args ...interface{}) {
	if globalLogger != nil && globalLogger.cpuEnabled && globalLogger.level >= LogLevelDebug {
		emit(globalLogger, "CPU", format, args...)
	}
}

// LogPPU logs PPU register and timing events
func LogPPU(format string, args ...interface{}) {
	if globalLogger != nil && globalLogger.ppuEnabled && globalLogger.level >= LogLevelTrace {
		emit(globalLogger, "PPU", format, args...)
	}
}

// LogAPU logs APU register events
func LogAPU(format string, args ...interface{}) {
	if globalLogger != nil && globalLogger.apuEnabled && globalLogger.level >= LogLevelDebug {
		emit(globalLogger, "APU", format, args...)
	}
}

// LogMapper logs mapper bank-switch and IRQ events
func LogMapper(format string, args ...interface{}) {
	if globalLogger != nil && globalLogger.mapperEnabled && globalLogger.level >= LogLevelDebug {
		emit(globalLogger, "MAPPER", format, args...)
	}
}

// LogInfo logs general information
func LogInfo(format string, args ...interface{}) {
	if globalLogger != nil && globalLogger.level >= LogLevelInfo {
		emit(globalLogger, "INFO", format, args...)
	}
}

// LogError logs errors
func LogError(format string, args ...interface{}) {
	if globalLogger != nil && globalLogger.level >= LogLevelError {
		emit(globalLogger, "ERROR", format, args...)
	}
}

// LogDebug logs debug information
func LogDebug(format string, args ...interface{}) {
	if globalLogger != nil && globalLogger.level >= LogLevelDebug {
		emit(globalLogger, "DEBUG", format, args...)
	}
}

func emit(l *Logger, tag, format string, args ...interface{}) {
	timestamp := time.Now().Format("15:04:05.000")
	message := fmt.Sprintf(format, args...)
	fmt.Fprintf(l.writer, "[%s] %s: %s\n", timestamp, tag, message)
}

// GetLogLevelFromString converts string to LogLevel
func GetLogLevelFromString(level string) LogLevel {
	switch level {
	case "off":
		return LogLevelOff
	case "error":
		return LogLevelError
	case "warn":
		return LogLevelWarn
	case "info":
		return LogLevelInfo
	case "debug":
		return LogLevelDebug
	case "trace":
		return LogLevelTrace
	default:
		return LogLevelInfo
	}
}

// Close closes the logger and any associated files
func Close() {
	if globalLogger != nil {
		if file, ok := globalLogger.writer.(*os.File); ok && file != os.Stdout && file != os.Stderr {
			file.Close()
		}
	}
}
