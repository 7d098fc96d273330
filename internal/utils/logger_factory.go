package utils

import (
	"fmt"
	"os"
	"strings"

	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"gopkg.in/natefinch/lumberjack.v2"
)

const (
	logLevelDebugStringConstant          = "debug"
	logLevelInfoStringConstant           = "info"
	logLevelWarnStringConstant           = "warn"
	logLevelErrorStringConstant          = "error"
	logFormatStructuredStringConstant    = "structured"
	logFormatConsoleStringConstant       = "console"
	unsupportedLogLevelTemplateConstant  = "unsupported log level: %s"
	unsupportedLogFormatTemplateConstant = "unsupported log format: %s"
	logFileMaximumSizeMegabytesConstant  = 10
	logFileMaximumBackupsConstant        = 3
	logFileMaximumAgeDaysConstant        = 28
)

// LogLevel enumerates supported logging granularities.
type LogLevel string

// Exported log level constants for reuse across packages.
const (
	LogLevelDebug LogLevel = LogLevel(logLevelDebugStringConstant)
	LogLevelInfo  LogLevel = LogLevel(logLevelInfoStringConstant)
	LogLevelWarn  LogLevel = LogLevel(logLevelWarnStringConstant)
	LogLevelError LogLevel = LogLevel(logLevelErrorStringConstant)
)

// LogFormat enumerates supported logger output encodings.
type LogFormat string

// Exported log format constants for reuse across packages.
const (
	LogFormatStructured LogFormat = LogFormat(logFormatStructuredStringConstant)
	LogFormatConsole    LogFormat = LogFormat(logFormatConsoleStringConstant)
)

// LoggerOptions describes the logger the factory should build.
type LoggerOptions struct {
	Level    LogLevel
	Format   LogFormat
	FilePath string
}

// LoggerFactory builds zap.Logger instances with consistent configuration.
type LoggerFactory struct{}

var logLevelMapping = map[LogLevel]zapcore.Level{
	LogLevelDebug: zapcore.DebugLevel,
	LogLevelInfo:  zapcore.InfoLevel,
	LogLevelWarn:  zapcore.WarnLevel,
	LogLevelError: zapcore.ErrorLevel,
}

// NewLoggerFactory constructs a new logger factory.
func NewLoggerFactory() *LoggerFactory {
	return &LoggerFactory{}
}

// CreateLogger produces a zap.Logger writing to standard error and, when FilePath is set, to a rotating log file.
func (factory *LoggerFactory) CreateLogger(options LoggerOptions) (*zap.Logger, error) {
	normalizedLevel := LogLevel(strings.ToLower(strings.TrimSpace(string(options.Level))))
	zapLogLevel, levelExists := logLevelMapping[normalizedLevel]
	if !levelExists {
		return nil, fmt.Errorf(unsupportedLogLevelTemplateConstant, options.Level)
	}

	encoder, encoderError := buildEncoder(LogFormat(strings.ToLower(strings.TrimSpace(string(options.Format)))))
	if encoderError != nil {
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, options.Format)
	}

	levelEnabler := zap.NewAtomicLevelAt(zapLogLevel)
	cores := []zapcore.Core{zapcore.NewCore(encoder, zapcore.Lock(os.Stderr), levelEnabler)}

	trimmedFilePath := strings.TrimSpace(options.FilePath)
	if len(trimmedFilePath) > 0 {
		rotatingFile := &lumberjack.Logger{
			Filename:   trimmedFilePath,
			MaxSize:    logFileMaximumSizeMegabytesConstant,
			MaxBackups: logFileMaximumBackupsConstant,
			MaxAge:     logFileMaximumAgeDaysConstant,
		}
		fileEncoder := zapcore.NewJSONEncoder(zap.NewProductionEncoderConfig())
		cores = append(cores, zapcore.NewCore(fileEncoder, zapcore.AddSync(rotatingFile), levelEnabler))
	}

	return zap.New(zapcore.NewTee(cores...), zap.AddCaller()), nil
}

func buildEncoder(format LogFormat) (zapcore.Encoder, error) {
	encoderConfiguration := zap.NewProductionEncoderConfig()
	encoderConfiguration.EncodeTime = zapcore.ISO8601TimeEncoder
	switch format {
	case LogFormatStructured:
		return zapcore.NewJSONEncoder(encoderConfiguration), nil
	case LogFormatConsole:
		encoderConfiguration.EncodeLevel = zapcore.CapitalLevelEncoder
		return zapcore.NewConsoleEncoder(encoderConfiguration), nil
	default:
		return nil, fmt.Errorf(unsupportedLogFormatTemplateConstant, format)
	}
}
