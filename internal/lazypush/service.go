package lazypush

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.uber.org/zap"

	"github.com/temirov/lazypush/internal/execshell"
	"github.com/temirov/lazypush/internal/gitrepo"
)

const (
	repositoryMissingMessageConstant        = "repository handle not configured"
	repositoryManagerMissingMessageConstant = "repository manager not configured"
	gitExecutorMissingMessageConstant       = "git executor not configured"
	prompterMissingMessageConstant          = "message prompter not configured"
	reporterMissingMessageConstant          = "status reporter not configured"
	detachedHeadMessageConstant             = "HEAD is not on a branch"
	workingTreeInspectionTemplateConstant   = "unable to inspect working tree: %w"
	commitMessagePromptTemplateConstant     = "unable to obtain commit message: %w"
	recoveryAbortedTemplateConstant         = "push recovery aborted: %w"
	commitSummaryTemplateConstant           = "[%s %s] %s"
	noChangesMessageConstant                = "No changes to commit."
	pullingTraceMessageConstant             = "Pulling latest changes from the remote branch..."
	pullFailedMessageConstant               = "Merge conflict or error occurred during pull. Please resolve manually."
	commitMessagePromptConstant             = "Enter commit message (leave empty for default): "
	stagingTraceMessageConstant             = "Staging changes..."
	stagingFailedMessageConstant            = "Error: Staging failed. Please resolve manually."
	committingTraceMessageConstant          = "Committing changes..."
	commitFailedMessageConstant             = "Error: Commit failed. Please resolve manually."
	pushingTraceMessageConstant             = "Pushing changes to the remote branch..."
	pushSucceededMessageConstant            = "Changes have been committed and pushed successfully."
	initialPushFailedMessageConstant        = "Initial push failed. Trying to pull the latest changes and push again..."
	rebaseFailedMessageConstant             = "Error: Pull (rebase) failed. Please resolve manually."
	retryPushSucceededMessageConstant       = "Changes have been committed and pushed successfully after resolving conflicts."
	retryPushFailedMessageConstant          = "Error: Push failed again. Please resolve manually."
	branchUnavailableMessageConstant        = "Error: Unable to determine the current branch. Please resolve manually."
	gitAddSubcommandConstant                = "add"
	gitAddAllPathspecConstant               = "."
	gitCommitSubcommandConstant             = "commit"
	gitCommitMessageFlagConstant            = "-m"
	gitPushSubcommandConstant               = "push"
	gitPullSubcommandConstant               = "pull"
	gitRebaseFlagConstant                   = "--rebase"
	logMessageGitStepFailedConstant         = "git step failed"
	logMessageCommitLookupFailedConstant    = "unable to read the new commit"
	logMessageRunCompletedConstant          = "lazypush run completed"
	logFieldStepConstant                    = "step"
	logFieldOutcomeConstant                 = "outcome"
	logFieldBranchConstant                  = "branch"
	logFieldRepositoryConstant              = "repository"
	stepPullConstant                        = "pull"
	stepStageConstant                       = "stage"
	stepCommitConstant                      = "commit"
	stepPushConstant                        = "push"
	stepRebaseConstant                      = "rebase"
	stepRetryPushConstant                   = "retry_push"
	stepBranchConstant                      = "branch"
)

// Outcome names the terminal state of a successful run.
type Outcome string

// Outcomes reported in Result.
const (
	OutcomeNoChanges         Outcome = "no_changes"
	OutcomePushed            Outcome = "pushed"
	OutcomePushedAfterRebase Outcome = "pushed_after_rebase"
)

// ErrRepositoryNotConfigured indicates the repository handle dependency was missing.
var ErrRepositoryNotConfigured = errors.New(repositoryMissingMessageConstant)

// ErrRepositoryManagerNotConfigured indicates the repository manager dependency was missing.
var ErrRepositoryManagerNotConfigured = errors.New(repositoryManagerMissingMessageConstant)

// ErrGitExecutorNotConfigured indicates the git executor dependency was missing.
var ErrGitExecutorNotConfigured = errors.New(gitExecutorMissingMessageConstant)

// ErrPrompterNotConfigured indicates the message prompter dependency was missing.
var ErrPrompterNotConfigured = errors.New(prompterMissingMessageConstant)

// ErrReporterNotConfigured indicates the status reporter dependency was missing.
var ErrReporterNotConfigured = errors.New(reporterMissingMessageConstant)

// ErrDetachedHead indicates git reported no current branch.
var ErrDetachedHead = errors.New(detachedHeadMessageConstant)

// GitExecutor runs git commands.
type GitExecutor interface {
	ExecuteGit(executionContext context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error)
}

// RepositoryManager answers repository queries through git.
type RepositoryManager interface {
	WorkingTreeStatus(executionContext context.Context, repositoryPath string) (string, error)
	GetCurrentBranch(executionContext context.Context, repositoryPath string) (string, error)
}

// RepositoryHandle is the opened repository a run operates on.
type RepositoryHandle interface {
	RootPath() string
	HeadCommitHash() (string, error)
	ShortHeadCommitHash() (string, error)
	HeadBranchName() (string, error)
}

// ServiceDependencies enumerates the collaborators required by Service.
type ServiceDependencies struct {
	Logger                   *zap.Logger
	Repository               RepositoryHandle
	RepositoryManager        RepositoryManager
	GitExecutor              GitExecutor
	Prompter                 MessagePrompter
	Reporter                 StatusReporter
	Clock                    Clock
	RemoteName               string
	DisableGitTerminalPrompt bool
}

// Result captures the observable outcome of a run.
type Result struct {
	Outcome       Outcome
	Branch        string
	CommitHash    string
	CommitMessage string
}

// Service commits all pending changes and pushes them to the current branch on the configured remote.
type Service struct {
	logger            *zap.Logger
	repository        RepositoryHandle
	repositoryManager RepositoryManager
	executor          GitExecutor
	prompter          MessagePrompter
	reporter          StatusReporter
	messageBuilder    DefaultMessageBuilder
	remoteName        string
	gitEnvironment    map[string]string
}

// NewService constructs a Service from the provided dependencies.
func NewService(dependencies ServiceDependencies) (*Service, error) {
	if dependencies.Repository == nil {
		return nil, ErrRepositoryNotConfigured
	}
	if dependencies.RepositoryManager == nil {
		return nil, ErrRepositoryManagerNotConfigured
	}
	if dependencies.GitExecutor == nil {
		return nil, ErrGitExecutorNotConfigured
	}
	if dependencies.Prompter == nil {
		return nil, ErrPrompterNotConfigured
	}
	if dependencies.Reporter == nil {
		return nil, ErrReporterNotConfigured
	}

	logger := dependencies.Logger
	if logger == nil {
		logger = zap.NewNop()
	}
	clock := dependencies.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	remoteName := strings.TrimSpace(dependencies.RemoteName)
	if len(remoteName) == 0 {
		remoteName = defaultRemoteNameConstant
	}
	var gitEnvironment map[string]string
	if dependencies.DisableGitTerminalPrompt {
		gitEnvironment = gitrepo.NonInteractiveEnvironment()
	}

	return &Service{
		logger:            logger,
		repository:        dependencies.Repository,
		repositoryManager: dependencies.RepositoryManager,
		executor:          dependencies.GitExecutor,
		prompter:          dependencies.Prompter,
		reporter:          dependencies.Reporter,
		messageBuilder:    DefaultMessageBuilder{Clock: clock},
		remoteName:        remoteName,
		gitEnvironment:    gitEnvironment,
	}, nil
}

// Run performs one commit-and-push cycle.
// Failures that were already announced to the user are returned as ReportedError.
func (service *Service) Run(executionContext context.Context, options Options) (Result, error) {
	repositoryRoot := service.repository.RootPath()

	statusOutput, statusError := service.repositoryManager.WorkingTreeStatus(executionContext, repositoryRoot)
	if statusError != nil {
		return Result{}, fmt.Errorf(workingTreeInspectionTemplateConstant, statusError)
	}
	if len(strings.TrimSpace(statusOutput)) == 0 {
		service.reporter.Status(noChangesMessageConstant)
		return service.complete(Result{Outcome: OutcomeNoChanges}), nil
	}

	if options.PullBeforePush {
		service.trace(options, pullingTraceMessageConstant)
		if pullError := service.runOnCurrentBranch(executionContext, stepPullConstant, pullFailedMessageConstant, gitPullSubcommandConstant); pullError != nil {
			return Result{}, pullError
		}
	}

	answer, promptError := service.prompter.PromptMessage(commitMessagePromptConstant)
	if promptError != nil {
		return Result{}, fmt.Errorf(commitMessagePromptTemplateConstant, promptError)
	}
	commitMessage := service.messageBuilder.Build(answer)

	service.trace(options, stagingTraceMessageConstant)
	if stageError := service.runGit(executionContext, stepStageConstant, stagingFailedMessageConstant, gitAddSubcommandConstant, gitAddAllPathspecConstant); stageError != nil {
		return Result{}, stageError
	}

	service.trace(options, committingTraceMessageConstant)
	if commitError := service.runGit(executionContext, stepCommitConstant, commitFailedMessageConstant, gitCommitSubcommandConstant, gitCommitMessageFlagConstant, commitMessage); commitError != nil {
		return Result{}, commitError
	}

	result := Result{CommitMessage: commitMessage}
	result.CommitHash, result.Branch = service.describeCommit(options, commitMessage)

	service.trace(options, pushingTraceMessageConstant)
	branchName, branchError := service.currentBranch(executionContext)
	if branchError != nil {
		return Result{}, branchError
	}
	result.Branch = branchName

	pushError := service.pushBranch(executionContext, branchName)
	if pushError == nil {
		service.reporter.Success(pushSucceededMessageConstant)
		result.Outcome = OutcomePushed
		return service.complete(result), nil
	}
	service.logStepFailure(stepPushConstant, pushError)

	if contextError := executionContext.Err(); contextError != nil {
		return Result{}, fmt.Errorf(recoveryAbortedTemplateConstant, contextError)
	}

	service.reporter.Status(initialPushFailedMessageConstant)
	if rebaseError := service.runOnCurrentBranch(executionContext, stepRebaseConstant, rebaseFailedMessageConstant, gitPullSubcommandConstant, gitRebaseFlagConstant); rebaseError != nil {
		return Result{}, rebaseError
	}

	branchName, branchError = service.currentBranch(executionContext)
	if branchError != nil {
		return Result{}, branchError
	}
	result.Branch = branchName

	if retryError := service.pushBranch(executionContext, branchName); retryError != nil {
		service.logStepFailure(stepRetryPushConstant, retryError)
		service.reporter.Failure(retryPushFailedMessageConstant)
		return Result{}, ReportedError{Message: retryPushFailedMessageConstant, Cause: retryError}
	}

	service.reporter.Success(retryPushSucceededMessageConstant)
	result.Outcome = OutcomePushedAfterRebase
	return service.complete(result), nil
}

// runOnCurrentBranch resolves the branch and runs git with the remote and branch appended to arguments.
func (service *Service) runOnCurrentBranch(executionContext context.Context, step string, failureMessage string, arguments ...string) error {
	branchName, branchError := service.currentBranch(executionContext)
	if branchError != nil {
		return branchError
	}
	fullArguments := append(append([]string{}, arguments...), service.remoteName, branchName)
	return service.runGit(executionContext, step, failureMessage, fullArguments...)
}

func (service *Service) pushBranch(executionContext context.Context, branchName string) error {
	_, pushError := service.executeGit(executionContext, gitPushSubcommandConstant, service.remoteName, branchName)
	return pushError
}

func (service *Service) currentBranch(executionContext context.Context) (string, error) {
	branchName, branchError := service.repositoryManager.GetCurrentBranch(executionContext, service.repository.RootPath())
	if branchError == nil && len(branchName) == 0 {
		branchError = ErrDetachedHead
	}
	if branchError != nil {
		service.logStepFailure(stepBranchConstant, branchError)
		service.reporter.Failure(branchUnavailableMessageConstant)
		return "", ReportedError{Message: branchUnavailableMessageConstant, Cause: branchError}
	}
	return branchName, nil
}

func (service *Service) runGit(executionContext context.Context, step string, failureMessage string, arguments ...string) error {
	if _, executionError := service.executeGit(executionContext, arguments...); executionError != nil {
		service.logStepFailure(step, executionError)
		service.reporter.Failure(failureMessage)
		return ReportedError{Message: failureMessage, Cause: executionError}
	}
	return nil
}

func (service *Service) executeGit(executionContext context.Context, arguments ...string) (execshell.ExecutionResult, error) {
	return service.executor.ExecuteGit(executionContext, execshell.CommandDetails{
		Arguments:            arguments,
		WorkingDirectory:     service.repository.RootPath(),
		EnvironmentVariables: service.gitEnvironment,
	})
}

// describeCommit reads the new HEAD and, in verbose mode, prints the commit summary line.
func (service *Service) describeCommit(options Options, commitMessage string) (string, string) {
	commitHash, hashError := service.repository.HeadCommitHash()
	if hashError != nil {
		service.logger.Warn(logMessageCommitLookupFailedConstant, zap.Error(hashError))
		return "", ""
	}
	branchName, branchError := service.repository.HeadBranchName()
	if branchError != nil {
		service.logger.Warn(logMessageCommitLookupFailedConstant, zap.Error(branchError))
		return commitHash, ""
	}
	if options.Verbose {
		shortHash, shortHashError := service.repository.ShortHeadCommitHash()
		if shortHashError != nil {
			service.logger.Warn(logMessageCommitLookupFailedConstant, zap.Error(shortHashError))
			return commitHash, branchName
		}
		service.reporter.Trace(fmt.Sprintf(commitSummaryTemplateConstant, branchName, shortHash, commitMessage))
	}
	return commitHash, branchName
}

func (service *Service) trace(options Options, line string) {
	if options.Verbose {
		service.reporter.Trace(line)
	}
}

func (service *Service) logStepFailure(step string, failure error) {
	service.logger.Debug(logMessageGitStepFailedConstant, zap.String(logFieldStepConstant, step), zap.Error(failure))
}

func (service *Service) complete(result Result) Result {
	service.logger.Info(
		logMessageRunCompletedConstant,
		zap.String(logFieldOutcomeConstant, string(result.Outcome)),
		zap.String(logFieldBranchConstant, result.Branch),
		zap.String(logFieldRepositoryConstant, service.repository.RootPath()),
	)
	return result
}
