package ui

import (
	"fmt"
	"strings"
	"sync"
	"time"

	"go.uber.org/zap"

	"github.com/temirov/lazypush/internal/execshell"
)

const (
	commandStartedMessageTemplateConstant          = "$ %s"
	commandCompletedMessageTemplateConstant        = "ok %s"
	commandFailedExitCodeMessageTemplateConstant   = "exit %d %s"
	commandExecutionFailureMessageTemplateConstant = "error %s: %s"
	commandArgumentsJoinSeparatorConstant          = " "
	standardErrorSuffixTemplateConstant            = ": %s"
	standardErrorLineSeparatorConstant             = "\n"
	unknownFailureMessageConstant                  = "unknown error"
	emptyStringConstant                            = ""
	logFieldWorkingDirectoryConstant               = "working_directory"
	logFieldElapsedConstant                        = "elapsed"
)

// CommandEventFormatter builds shell-transcript lines for command lifecycle events.
type CommandEventFormatter struct{}

// BuildStartedMessage formats the command as it would be typed in a shell.
func (formatter CommandEventFormatter) BuildStartedMessage(command execshell.ShellCommand) string {
	return fmt.Sprintf(commandStartedMessageTemplateConstant, formatter.formatCommandLine(command))
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandEventFormatter) BuildSuccessMessage(command execshell.ShellCommand) string {
	return fmt.Sprintf(commandCompletedMessageTemplateConstant, formatter.formatCommandLine(command))
}

// BuildFailureMessage formats a non-zero exit together with the first line git printed to standard error.
func (formatter CommandEventFormatter) BuildFailureMessage(command execshell.ShellCommand, result execshell.ExecutionResult) string {
	baseMessage := fmt.Sprintf(commandFailedExitCodeMessageTemplateConstant, result.ExitCode, formatter.formatCommandLine(command))
	return baseMessage + formatter.formatStandardErrorSuffix(result.StandardError)
}

// BuildExecutionFailureMessage formats the message describing a command that could not run.
func (formatter CommandEventFormatter) BuildExecutionFailureMessage(command execshell.ShellCommand, failure error) string {
	failureMessage := unknownFailureMessageConstant
	if failure != nil {
		failureMessage = failure.Error()
	}
	return fmt.Sprintf(commandExecutionFailureMessageTemplateConstant, formatter.formatCommandLine(command), failureMessage)
}

func (formatter CommandEventFormatter) formatCommandLine(command execshell.ShellCommand) string {
	commandParts := []string{string(command.Name)}
	for _, argument := range command.Details.Arguments {
		commandParts = append(commandParts, quoteArgument(argument))
	}
	return strings.Join(commandParts, commandArgumentsJoinSeparatorConstant)
}

func (formatter CommandEventFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	firstLine, _, _ := strings.Cut(trimmedStandardError, standardErrorLineSeparatorConstant)
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, strings.TrimSpace(firstLine))
}

func quoteArgument(argument string) string {
	if len(argument) == 0 || strings.ContainsAny(argument, " \t\"'") {
		return fmt.Sprintf("%q", argument)
	}
	return argument
}

// ConsoleCommandEventLogger renders command lifecycle events using a zap logger configured for human-readable output.
type ConsoleCommandEventLogger struct {
	logger    *zap.Logger
	formatter CommandEventFormatter
	now       func() time.Time
	mutex     sync.Mutex
	startedAt time.Time
}

// NewConsoleCommandEventLogger constructs a console event logger backed by the provided zap logger.
func NewConsoleCommandEventLogger(logger *zap.Logger) *ConsoleCommandEventLogger {
	return NewConsoleCommandEventLoggerWithClock(logger, time.Now)
}

// NewConsoleCommandEventLoggerWithClock constructs a console event logger that measures elapsed time with now.
func NewConsoleCommandEventLoggerWithClock(logger *zap.Logger, now func() time.Time) *ConsoleCommandEventLogger {
	if logger == nil {
		logger = zap.NewNop()
	}
	if now == nil {
		now = time.Now
	}
	return &ConsoleCommandEventLogger{logger: logger, formatter: CommandEventFormatter{}, now: now}
}

// CommandStarted logs the command line about to run.
func (eventLogger *ConsoleCommandEventLogger) CommandStarted(command execshell.ShellCommand) {
	if eventLogger == nil {
		return
	}
	eventLogger.mutex.Lock()
	eventLogger.startedAt = eventLogger.now()
	eventLogger.mutex.Unlock()

	eventLogger.logger.Info(
		eventLogger.formatter.BuildStartedMessage(command),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	)
}

// CommandCompleted logs the outcome of a finished command; non-zero exits are warnings.
func (eventLogger *ConsoleCommandEventLogger) CommandCompleted(command execshell.ShellCommand, result execshell.ExecutionResult) {
	if eventLogger == nil {
		return
	}
	elapsedField := zap.Duration(logFieldElapsedConstant, eventLogger.elapsed())
	if result.ExitCode == 0 {
		eventLogger.logger.Info(eventLogger.formatter.BuildSuccessMessage(command), elapsedField)
		return
	}
	eventLogger.logger.Warn(eventLogger.formatter.BuildFailureMessage(command, result), elapsedField)
}

// CommandExecutionFailed logs commands that could not be run or were interrupted.
func (eventLogger *ConsoleCommandEventLogger) CommandExecutionFailed(command execshell.ShellCommand, failure error) {
	if eventLogger == nil {
		return
	}
	eventLogger.logger.Error(
		eventLogger.formatter.BuildExecutionFailureMessage(command, failure),
		zap.Duration(logFieldElapsedConstant, eventLogger.elapsed()),
	)
}

func (eventLogger *ConsoleCommandEventLogger) elapsed() time.Duration {
	eventLogger.mutex.Lock()
	defer eventLogger.mutex.Unlock()
	if eventLogger.startedAt.IsZero() {
		return 0
	}
	return eventLogger.now().Sub(eventLogger.startedAt)
}
