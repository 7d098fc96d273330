package gitrepo

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"github.com/temirov/lazypush/internal/execshell"
)

const (
	gitStatusSubcommandConstant            = "status"
	gitPorcelainFlagConstant               = "--porcelain"
	gitBranchSubcommandConstant            = "branch"
	gitShowCurrentFlagConstant             = "--show-current"
	gitTerminalPromptEnvironmentConstant   = "GIT_TERMINAL_PROMPT"
	gitTerminalPromptDisabledConstant      = "0"
	executorNotConfiguredMessageConstant   = "git repository manager executor not configured"
	requiredValueMessageConstant           = "value required"
	repositoryPathFieldNameConstant        = "repository_path"
	operationErrorTemplateConstant         = "%s operation failed: %v"
	invalidInputErrorTemplateConstant      = "%s: %s"
	workingTreeStatusOperationNameConstant = OperationName("WorkingTreeStatus")
	currentBranchOperationNameConstant     = OperationName("GetCurrentBranch")
)

// OperationName identifies a repository manager workflow.
type OperationName string

// GitExecutor is the subset of execshell.ShellExecutor used to run git.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// ErrExecutorNotConfigured indicates the manager was constructed without an executor.
var ErrExecutorNotConfigured = errors.New(executorNotConfiguredMessageConstant)

// InvalidInputError reports a missing or malformed argument.
type InvalidInputError struct {
	FieldName string
	Message   string
}

// Error describes the invalid input.
func (inputError InvalidInputError) Error() string {
	return fmt.Sprintf(invalidInputErrorTemplateConstant, inputError.FieldName, inputError.Message)
}

// OperationError wraps a failed git invocation.
type OperationError struct {
	Operation OperationName
	Cause     error
}

// Error describes the operation failure.
func (operationError OperationError) Error() string {
	return fmt.Sprintf(operationErrorTemplateConstant, operationError.Operation, operationError.Cause)
}

// Unwrap exposes the underlying execution error.
func (operationError OperationError) Unwrap() error {
	return operationError.Cause
}

// RepositoryManager runs repository queries through git.
type RepositoryManager struct {
	executor GitExecutor
}

// NewRepositoryManager constructs a RepositoryManager.
func NewRepositoryManager(executor GitExecutor) (*RepositoryManager, error) {
	if executor == nil {
		return nil, ErrExecutorNotConfigured
	}
	return &RepositoryManager{executor: executor}, nil
}

// NonInteractiveEnvironment returns the environment overrides that keep git from prompting for credentials.
func NonInteractiveEnvironment() map[string]string {
	return map[string]string{gitTerminalPromptEnvironmentConstant: gitTerminalPromptDisabledConstant}
}

// WorkingTreeStatus returns the porcelain status output, one changed path per line.
func (manager *RepositoryManager) WorkingTreeStatus(executionContext context.Context, repositoryPath string) (string, error) {
	result, executionError := manager.run(executionContext, workingTreeStatusOperationNameConstant, repositoryPath, gitStatusSubcommandConstant, gitPorcelainFlagConstant)
	if executionError != nil {
		return "", executionError
	}
	return result.StandardOutput, nil
}

// CheckCleanWorktree reports whether the working tree has no staged, unstaged, or untracked changes.
func (manager *RepositoryManager) CheckCleanWorktree(executionContext context.Context, repositoryPath string) (bool, error) {
	statusOutput, statusError := manager.WorkingTreeStatus(executionContext, repositoryPath)
	if statusError != nil {
		return false, statusError
	}
	return len(strings.TrimSpace(statusOutput)) == 0, nil
}

// GetCurrentBranch returns the checked-out branch name, or an empty string on a detached HEAD.
func (manager *RepositoryManager) GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error) {
	result, executionError := manager.run(executionContext, currentBranchOperationNameConstant, repositoryPath, gitBranchSubcommandConstant, gitShowCurrentFlagConstant)
	if executionError != nil {
		return "", executionError
	}
	return strings.TrimSpace(result.StandardOutput), nil
}

func (manager *RepositoryManager) run(executionContext context.Context, operation OperationName, repositoryPath string, arguments ...string) (execshell.ExecutionResult, error) {
	trimmedPath := strings.TrimSpace(repositoryPath)
	if len(trimmedPath) == 0 {
		return execshell.ExecutionResult{}, InvalidInputError{FieldName: repositoryPathFieldNameConstant, Message: requiredValueMessageConstant}
	}

	commandDetails := execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     trimmedPath,
		EnvironmentVariables: NonInteractiveEnvironment(),
	}
	result, executionError := manager.executor.ExecuteGit(executionContext, commandDetails)
	if executionError != nil {
		return execshell.ExecutionResult{}, OperationError{Operation: operation, Cause: executionError}
	}
	return result, nil
}
