package execshell

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"go.uber.org/zap"
)

const (
	commandGitStringConstant                  = "git"
	loggerNotConfiguredMessageConstant        = "shell executor logger not configured"
	commandRunnerNotConfiguredMessageConstant = "shell executor command runner not configured"
	commandFailedErrorTemplateConstant        = "%s exited with code %d%s"
	commandExecutionErrorTemplateConstant     = "%s could not be executed: %v"
	commandErrorStandardErrorTemplateConstant = ": %s"
	commandLabelSeparatorConstant             = " "
	logFieldCommandConstant                   = "command"
	logFieldArgumentsConstant                 = "arguments"
	logFieldWorkingDirectoryConstant          = "working_directory"
	logFieldExitCodeConstant                  = "exit_code"
	logFieldStandardErrorConstant             = "stderr"
	logFieldDurationConstant                  = "duration"
)

// CommandName identifies an executable supported by the shell executor.
type CommandName string

// CommandGit identifies the git executable.
const CommandGit CommandName = CommandName(commandGitStringConstant)

// CommandDetails describes the arguments and process environment of a command invocation.
type CommandDetails struct {
	Arguments            []string
	WorkingDirectory     string
	EnvironmentVariables map[string]string
	StandardInput        []byte
}

// ShellCommand combines an executable name with its invocation details.
type ShellCommand struct {
	Name    CommandName
	Details CommandDetails
}

// ExecutionResult captures the observable outcome of a finished process.
type ExecutionResult struct {
	StandardOutput string
	StandardError  string
	ExitCode       int
}

// CommandRunner runs a shell command to completion.
type CommandRunner interface {
	Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error)
}

// ErrLoggerNotConfigured indicates NewShellExecutor received a nil logger.
var ErrLoggerNotConfigured = errors.New(loggerNotConfiguredMessageConstant)

// ErrCommandRunnerNotConfigured indicates NewShellExecutor received a nil runner.
var ErrCommandRunnerNotConfigured = errors.New(commandRunnerNotConfiguredMessageConstant)

// CommandFailedError reports a command that ran and exited with a non-zero code.
type CommandFailedError struct {
	Command ShellCommand
	Result  ExecutionResult
}

// Error describes the failed command and its exit code.
func (failedError CommandFailedError) Error() string {
	standardErrorSuffix := ""
	trimmedStandardError := strings.TrimSpace(failedError.Result.StandardError)
	if len(trimmedStandardError) > 0 {
		standardErrorSuffix = fmt.Sprintf(commandErrorStandardErrorTemplateConstant, trimmedStandardError)
	}
	return fmt.Sprintf(commandFailedErrorTemplateConstant, describeCommand(failedError.Command), failedError.Result.ExitCode, standardErrorSuffix)
}

// CommandExecutionError reports a command that could not be started or waited on.
type CommandExecutionError struct {
	Command ShellCommand
	Cause   error
}

// Error describes the execution failure.
func (executionError CommandExecutionError) Error() string {
	return fmt.Sprintf(commandExecutionErrorTemplateConstant, describeCommand(executionError.Command), executionError.Cause)
}

// Unwrap exposes the underlying runner failure.
func (executionError CommandExecutionError) Unwrap() error {
	return executionError.Cause
}

// ExecutorOption customizes a ShellExecutor.
type ExecutorOption func(executor *ShellExecutor)

// WithCommandEventObserver registers an observer notified about every command lifecycle event.
func WithCommandEventObserver(observer CommandEventObserver) ExecutorOption {
	return func(executor *ShellExecutor) {
		if observer != nil {
			executor.observer = observer
		}
	}
}

// WithCommandTimeout bounds every command with the provided timeout. Non-positive values disable the bound.
func WithCommandTimeout(timeout time.Duration) ExecutorOption {
	return func(executor *ShellExecutor) {
		executor.commandTimeout = timeout
	}
}

// ShellExecutor runs commands through a CommandRunner while logging their lifecycle.
type ShellExecutor struct {
	logger         *zap.Logger
	runner         CommandRunner
	observer       CommandEventObserver
	formatter      CommandMessageFormatter
	commandTimeout time.Duration
}

// NewShellExecutor validates dependencies and constructs a ShellExecutor.
func NewShellExecutor(logger *zap.Logger, runner CommandRunner, options ...ExecutorOption) (*ShellExecutor, error) {
	if logger == nil {
		return nil, ErrLoggerNotConfigured
	}
	if runner == nil {
		return nil, ErrCommandRunnerNotConfigured
	}

	executor := &ShellExecutor{
		logger:    logger,
		runner:    runner,
		observer:  noopCommandEventObserver{},
		formatter: CommandMessageFormatter{},
	}
	for _, option := range options {
		if option != nil {
			option(executor)
		}
	}
	return executor, nil
}

// ExecuteGit runs git with the provided details.
func (executor *ShellExecutor) ExecuteGit(executionContext context.Context, details CommandDetails) (ExecutionResult, error) {
	return executor.Execute(executionContext, ShellCommand{Name: CommandGit, Details: details})
}

// Execute runs an arbitrary command and converts non-zero exit codes into CommandFailedError.
func (executor *ShellExecutor) Execute(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	if executionContext == nil {
		executionContext = context.Background()
	}
	if executor.commandTimeout > 0 {
		var cancel context.CancelFunc
		executionContext, cancel = context.WithTimeout(executionContext, executor.commandTimeout)
		defer cancel()
	}

	commandFields := []zap.Field{
		zap.String(logFieldCommandConstant, string(command.Name)),
		zap.Strings(logFieldArgumentsConstant, command.Details.Arguments),
		zap.String(logFieldWorkingDirectoryConstant, command.Details.WorkingDirectory),
	}

	executor.logger.Info(executor.formatter.BuildStartedMessage(command), commandFields...)
	executor.observer.CommandStarted(command)

	startedAt := time.Now()
	result, runError := executor.runner.Run(executionContext, command)
	elapsed := time.Since(startedAt)

	if runError != nil {
		executor.logger.Error(
			executor.formatter.BuildExecutionFailureMessage(command, runError),
			append(commandFields, zap.Duration(logFieldDurationConstant, elapsed), zap.Error(runError))...,
		)
		executor.observer.CommandExecutionFailed(command, runError)
		return ExecutionResult{}, CommandExecutionError{Command: command, Cause: runError}
	}

	executor.observer.CommandCompleted(command, result)

	if result.ExitCode != 0 {
		executor.logger.Warn(
			executor.formatter.BuildFailureMessage(command, result),
			append(commandFields,
				zap.Duration(logFieldDurationConstant, elapsed),
				zap.Int(logFieldExitCodeConstant, result.ExitCode),
				zap.String(logFieldStandardErrorConstant, strings.TrimSpace(result.StandardError)),
			)...,
		)
		return ExecutionResult{}, CommandFailedError{Command: command, Result: result}
	}

	executor.logger.Info(
		executor.formatter.BuildSuccessMessage(command, result),
		append(commandFields, zap.Duration(logFieldDurationConstant, elapsed))...,
	)
	return result, nil
}

func describeCommand(command ShellCommand) string {
	commandParts := []string{string(command.Name)}
	commandParts = append(commandParts, command.Details.Arguments...)
	return strings.Join(commandParts, commandLabelSeparatorConstant)
}
