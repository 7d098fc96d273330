package lazypush_test

import (
	"bytes"
	"context"
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/lazypush/internal/execshell"
	"github.com/temirov/lazypush/internal/lazypush"
)

const (
	testRepositoryRootConstant        = "/tmp/lazypush-repository"
	testRemoteNameConstant            = "origin"
	testBranchNameConstant            = "main"
	testCommitMessageConstant         = "fix login redirect"
	testCommitHashConstant            = "abc1234def5678abc1234def5678abc1234def56"
	testShortCommitHashConstant       = "abc1234"
	testDefaultCommitMessageConstant  = "Auto commit on Fri, 01 Mar 2024 12:00:00 UTC"
	testDirtyStatusConstant           = " M README.md\n?? notes.txt\n"
	testPromptConstant                = "Enter commit message (leave empty for default): "
	testNoChangesLineConstant         = "No changes to commit."
	testPullFailedLineConstant        = "Merge conflict or error occurred during pull. Please resolve manually."
	testPushSucceededLineConstant     = "Changes have been committed and pushed successfully."
	testInitialPushFailedLineConstant = "Initial push failed. Trying to pull the latest changes and push again..."
	testRetrySucceededLineConstant    = "Changes have been committed and pushed successfully after resolving conflicts."
	testRetryFailedLineConstant       = "Error: Push failed again. Please resolve manually."
	testRebaseFailedLineConstant      = "Error: Pull (rebase) failed. Please resolve manually."
	testCommitFailedLineConstant      = "Error: Commit failed. Please resolve manually."
	testStagingFailedLineConstant     = "Error: Staging failed. Please resolve manually."
	testBranchUnavailableLineConstant = "Error: Unable to determine the current branch. Please resolve manually."
	testPullingTraceLineConstant      = "Pulling latest changes from the remote branch..."
	testStagingTraceLineConstant      = "Staging changes..."
	testCommittingTraceLineConstant   = "Committing changes..."
	testPushingTraceLineConstant      = "Pushing changes to the remote branch..."
	testCommitSummaryLineConstant     = "[main abc1234] fix login redirect"
	testGitAddCommandConstant         = "add ."
	testGitCommitCommandConstant      = "commit -m fix login redirect"
	testGitPushCommandConstant        = "push origin main"
	testGitPullCommandConstant        = "pull origin main"
	testGitRebaseCommandConstant      = "pull --rebase origin main"
	testTerminalPromptVariableName    = "GIT_TERMINAL_PROMPT"
	testTerminalPromptDisabledValue   = "0"
)

type scriptedGitExecutor struct {
	failures       map[string][]bool
	recordedCalls  []string
	recordedDetail []execshell.CommandDetails
}

func (executor *scriptedGitExecutor) ExecuteGit(_ context.Context, details execshell.CommandDetails) (execshell.ExecutionResult, error) {
	commandLine := strings.Join(details.Arguments, " ")
	executor.recordedCalls = append(executor.recordedCalls, commandLine)
	executor.recordedDetail = append(executor.recordedDetail, details)

	scriptedOutcomes := executor.failures[commandLine]
	if len(scriptedOutcomes) == 0 {
		return execshell.ExecutionResult{}, nil
	}
	shouldFail := scriptedOutcomes[0]
	executor.failures[commandLine] = scriptedOutcomes[1:]
	if !shouldFail {
		return execshell.ExecutionResult{}, nil
	}
	failedResult := execshell.ExecutionResult{ExitCode: 1, StandardError: "rejected"}
	return execshell.ExecutionResult{}, execshell.CommandFailedError{
		Command: execshell.ShellCommand{Name: execshell.CommandGit, Details: details},
		Result:  failedResult,
	}
}

type stubRepositoryManager struct {
	statusOutput     string
	statusError      error
	branchName       string
	branchError      error
	branchQueryCount int
	inspectedPaths   []string
}

func (manager *stubRepositoryManager) WorkingTreeStatus(_ context.Context, repositoryPath string) (string, error) {
	manager.inspectedPaths = append(manager.inspectedPaths, repositoryPath)
	return manager.statusOutput, manager.statusError
}

func (manager *stubRepositoryManager) GetCurrentBranch(_ context.Context, repositoryPath string) (string, error) {
	manager.branchQueryCount++
	manager.inspectedPaths = append(manager.inspectedPaths, repositoryPath)
	return manager.branchName, manager.branchError
}

type stubRepositoryHandle struct{}

func (stubRepositoryHandle) RootPath() string {
	return testRepositoryRootConstant
}

func (stubRepositoryHandle) HeadCommitHash() (string, error) {
	return testCommitHashConstant, nil
}

func (stubRepositoryHandle) ShortHeadCommitHash() (string, error) {
	return testShortCommitHashConstant, nil
}

func (stubRepositoryHandle) HeadBranchName() (string, error) {
	return testBranchNameConstant, nil
}

type stubMessagePrompter struct {
	answer          string
	answerError     error
	recordedPrompts []string
}

func (prompter *stubMessagePrompter) PromptMessage(prompt string) (string, error) {
	prompter.recordedPrompts = append(prompter.recordedPrompts, prompt)
	return prompter.answer, prompter.answerError
}

type fixedClock struct {
	instant time.Time
}

func (clock fixedClock) Now() time.Time {
	return clock.instant
}

type serviceFixture struct {
	executor *scriptedGitExecutor
	manager  *stubRepositoryManager
	prompter *stubMessagePrompter
	output   *bytes.Buffer
	service  *lazypush.Service
}

func newServiceFixture(testInstance *testing.T, manager *stubRepositoryManager, prompter *stubMessagePrompter, failures map[string][]bool) serviceFixture {
	testInstance.Helper()
	if failures == nil {
		failures = map[string][]bool{}
	}
	executor := &scriptedGitExecutor{failures: failures}
	output := &bytes.Buffer{}

	service, serviceError := lazypush.NewService(lazypush.ServiceDependencies{
		Logger:            zap.NewNop(),
		Repository:        stubRepositoryHandle{},
		RepositoryManager: manager,
		GitExecutor:       executor,
		Prompter:          prompter,
		Reporter:          lazypush.NewReporter(output, true),
		Clock:             fixedClock{instant: time.Date(2024, time.March, 1, 12, 0, 0, 0, time.UTC)},
		RemoteName:        testRemoteNameConstant,
	})
	require.NoError(testInstance, serviceError)

	return serviceFixture{executor: executor, manager: manager, prompter: prompter, output: output, service: service}
}

func outputLines(output *bytes.Buffer) []string {
	trimmedOutput := strings.TrimSpace(output.String())
	if len(trimmedOutput) == 0 {
		return nil
	}
	return strings.Split(trimmedOutput, "\n")
}

func TestServiceRunProtocol(testInstance *testing.T) {
	testCases := []struct {
		name                  string
		options               lazypush.Options
		statusOutput          string
		branchName            string
		answer                string
		failures              map[string][]bool
		expectedCalls         []string
		expectedLines         []string
		expectedOutcome       lazypush.Outcome
		expectedMessage       string
		expectedBranchQueries int
		expectReportedError   bool
		expectPrompt          bool
	}{
		{
			name:                  "no_changes",
			statusOutput:          "  \n",
			branchName:            testBranchNameConstant,
			expectedCalls:         nil,
			expectedLines:         []string{testNoChangesLineConstant},
			expectedOutcome:       lazypush.OutcomeNoChanges,
			expectedBranchQueries: 0,
		},
		{
			name:                  "push_succeeds",
			statusOutput:          testDirtyStatusConstant,
			branchName:            testBranchNameConstant,
			answer:                testCommitMessageConstant,
			expectedCalls:         []string{testGitAddCommandConstant, testGitCommitCommandConstant, testGitPushCommandConstant},
			expectedLines:         []string{testPushSucceededLineConstant},
			expectedOutcome:       lazypush.OutcomePushed,
			expectedMessage:       testCommitMessageConstant,
			expectedBranchQueries: 1,
			expectPrompt:          true,
		},
		{
			name:                  "empty_answer_uses_default_message",
			statusOutput:          testDirtyStatusConstant,
			branchName:            testBranchNameConstant,
			answer:                "   ",
			expectedCalls:         []string{testGitAddCommandConstant, "commit -m " + testDefaultCommitMessageConstant, testGitPushCommandConstant},
			expectedLines:         []string{testPushSucceededLineConstant},
			expectedOutcome:       lazypush.OutcomePushed,
			expectedMessage:       testDefaultCommitMessageConstant,
			expectedBranchQueries: 1,
			expectPrompt:          true,
		},
		{
			name:                  "pull_before_push_succeeds",
			options:               lazypush.Options{PullBeforePush: true},
			statusOutput:          testDirtyStatusConstant,
			branchName:            testBranchNameConstant,
			answer:                testCommitMessageConstant,
			expectedCalls:         []string{testGitPullCommandConstant, testGitAddCommandConstant, testGitCommitCommandConstant, testGitPushCommandConstant},
			expectedLines:         []string{testPushSucceededLineConstant},
			expectedOutcome:       lazypush.OutcomePushed,
			expectedMessage:       testCommitMessageConstant,
			expectedBranchQueries: 2,
			expectPrompt:          true,
		},
		{
			name:                  "pull_failure_stops_before_prompt",
			options:               lazypush.Options{PullBeforePush: true},
			statusOutput:          testDirtyStatusConstant,
			branchName:            testBranchNameConstant,
			failures:              map[string][]bool{testGitPullCommandConstant: {true}},
			expectedCalls:         []string{testGitPullCommandConstant},
			expectedLines:         []string{testPullFailedLineConstant},
			expectedBranchQueries: 1,
			expectReportedError:   true,
		},
		{
			name:                  "push_recovers_after_rebase",
			statusOutput:          testDirtyStatusConstant,
			branchName:            testBranchNameConstant,
			answer:                testCommitMessageConstant,
			failures:              map[string][]bool{testGitPushCommandConstant: {true, false}},
			expectedCalls:         []string{testGitAddCommandConstant, testGitCommitCommandConstant, testGitPushCommandConstant, testGitRebaseCommandConstant, testGitPushCommandConstant},
			expectedLines:         []string{testInitialPushFailedLineConstant, testRetrySucceededLineConstant},
			expectedOutcome:       lazypush.OutcomePushedAfterRebase,
			expectedMessage:       testCommitMessageConstant,
			expectedBranchQueries: 3,
			expectPrompt:          true,
		},
		{
			name:                  "rebase_failure_is_reported",
			statusOutput:          testDirtyStatusConstant,
			branchName:            testBranchNameConstant,
			answer:                testCommitMessageConstant,
			failures:              map[string][]bool{testGitPushCommandConstant: {true}, testGitRebaseCommandConstant: {true}},
			expectedCalls:         []string{testGitAddCommandConstant, testGitCommitCommandConstant, testGitPushCommandConstant, testGitRebaseCommandConstant},
			expectedLines:         []string{testInitialPushFailedLineConstant, testRebaseFailedLineConstant},
			expectedBranchQueries: 2,
			expectReportedError:   true,
			expectPrompt:          true,
		},
		{
			name:                  "retry_push_failure_is_reported",
			statusOutput:          testDirtyStatusConstant,
			branchName:            testBranchNameConstant,
			answer:                testCommitMessageConstant,
			failures:              map[string][]bool{testGitPushCommandConstant: {true, true}},
			expectedCalls:         []string{testGitAddCommandConstant, testGitCommitCommandConstant, testGitPushCommandConstant, testGitRebaseCommandConstant, testGitPushCommandConstant},
			expectedLines:         []string{testInitialPushFailedLineConstant, testRetryFailedLineConstant},
			expectedBranchQueries: 3,
			expectReportedError:   true,
			expectPrompt:          true,
		},
		{
			name:                  "commit_failure_skips_push",
			statusOutput:          testDirtyStatusConstant,
			branchName:            testBranchNameConstant,
			answer:                testCommitMessageConstant,
			failures:              map[string][]bool{testGitCommitCommandConstant: {true}},
			expectedCalls:         []string{testGitAddCommandConstant, testGitCommitCommandConstant},
			expectedLines:         []string{testCommitFailedLineConstant},
			expectedBranchQueries: 0,
			expectReportedError:   true,
			expectPrompt:          true,
		},
		{
			name:                  "staging_failure_skips_commit",
			statusOutput:          testDirtyStatusConstant,
			branchName:            testBranchNameConstant,
			answer:                testCommitMessageConstant,
			failures:              map[string][]bool{testGitAddCommandConstant: {true}},
			expectedCalls:         []string{testGitAddCommandConstant},
			expectedLines:         []string{testStagingFailedLineConstant},
			expectedBranchQueries: 0,
			expectReportedError:   true,
			expectPrompt:          true,
		},
		{
			name:                  "detached_head_is_reported",
			statusOutput:          testDirtyStatusConstant,
			branchName:            "",
			answer:                testCommitMessageConstant,
			expectedCalls:         []string{testGitAddCommandConstant, testGitCommitCommandConstant},
			expectedLines:         []string{testBranchUnavailableLineConstant},
			expectedBranchQueries: 1,
			expectReportedError:   true,
			expectPrompt:          true,
		},
		{
			name:                  "verbose_traces_every_step",
			options:               lazypush.Options{PullBeforePush: true, Verbose: true},
			statusOutput:          testDirtyStatusConstant,
			branchName:            testBranchNameConstant,
			answer:                testCommitMessageConstant,
			expectedCalls:         []string{testGitPullCommandConstant, testGitAddCommandConstant, testGitCommitCommandConstant, testGitPushCommandConstant},
			expectedLines:         []string{testPullingTraceLineConstant, testStagingTraceLineConstant, testCommittingTraceLineConstant, testCommitSummaryLineConstant, testPushingTraceLineConstant, testPushSucceededLineConstant},
			expectedOutcome:       lazypush.OutcomePushed,
			expectedMessage:       testCommitMessageConstant,
			expectedBranchQueries: 2,
			expectPrompt:          true,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			manager := &stubRepositoryManager{statusOutput: testCase.statusOutput, branchName: testCase.branchName}
			prompter := &stubMessagePrompter{answer: testCase.answer}
			fixture := newServiceFixture(testInstance, manager, prompter, testCase.failures)

			result, runError := fixture.service.Run(context.Background(), testCase.options)

			require.Equal(testInstance, testCase.expectedCalls, fixture.executor.recordedCalls)
			require.Equal(testInstance, testCase.expectedLines, outputLines(fixture.output))
			require.Equal(testInstance, testCase.expectedBranchQueries, manager.branchQueryCount)
			if testCase.expectPrompt {
				require.Equal(testInstance, []string{testPromptConstant}, prompter.recordedPrompts)
			} else {
				require.Empty(testInstance, prompter.recordedPrompts)
			}

			if testCase.expectReportedError {
				require.Error(testInstance, runError)
				require.True(testInstance, lazypush.IsReported(runError))
				return
			}

			require.NoError(testInstance, runError)
			require.Equal(testInstance, testCase.expectedOutcome, result.Outcome)
			require.Equal(testInstance, testCase.expectedMessage, result.CommitMessage)
		})
	}
}

func TestServiceRunUsesRepositoryRootAndConfiguredGitEnvironment(testInstance *testing.T) {
	testCases := []struct {
		name                     string
		disableGitTerminalPrompt bool
	}{
		{name: "terminal_prompt_allowed_by_default", disableGitTerminalPrompt: false},
		{name: "terminal_prompt_disabled", disableGitTerminalPrompt: true},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			manager := &stubRepositoryManager{statusOutput: testDirtyStatusConstant, branchName: testBranchNameConstant}
			executor := &scriptedGitExecutor{failures: map[string][]bool{testGitPushCommandConstant: {true, false}}}
			service, serviceError := lazypush.NewService(lazypush.ServiceDependencies{
				Repository:               stubRepositoryHandle{},
				RepositoryManager:        manager,
				GitExecutor:              executor,
				Prompter:                 &stubMessagePrompter{answer: testCommitMessageConstant},
				Reporter:                 lazypush.NewReporter(&bytes.Buffer{}, false),
				DisableGitTerminalPrompt: testCase.disableGitTerminalPrompt,
			})
			require.NoError(testInstance, serviceError)

			result, runError := service.Run(context.Background(), lazypush.Options{PullBeforePush: true})
			require.NoError(testInstance, runError)
			require.Equal(testInstance, testBranchNameConstant, result.Branch)
			require.Equal(testInstance, testCommitHashConstant, result.CommitHash)

			require.NotEmpty(testInstance, executor.recordedDetail)
			for _, details := range executor.recordedDetail {
				require.Equal(testInstance, testRepositoryRootConstant, details.WorkingDirectory)
				terminalPromptValue, terminalPromptSet := details.EnvironmentVariables[testTerminalPromptVariableName]
				if testCase.disableGitTerminalPrompt {
					require.True(testInstance, terminalPromptSet)
					require.Equal(testInstance, testTerminalPromptDisabledValue, terminalPromptValue)
				} else {
					require.False(testInstance, terminalPromptSet)
				}
			}
			for _, inspectedPath := range manager.inspectedPaths {
				require.Equal(testInstance, testRepositoryRootConstant, inspectedPath)
			}
		})
	}
}

func TestServiceRunReturnsUnreportedInfrastructureErrors(testInstance *testing.T) {
	statusFailure := errors.New("git not found")
	promptFailure := errors.New("stdin closed unexpectedly")

	testCases := []struct {
		name          string
		manager       *stubRepositoryManager
		prompter      *stubMessagePrompter
		expectedCause error
	}{
		{
			name:          "status_failure",
			manager:       &stubRepositoryManager{statusError: statusFailure},
			prompter:      &stubMessagePrompter{},
			expectedCause: statusFailure,
		},
		{
			name:          "prompt_failure",
			manager:       &stubRepositoryManager{statusOutput: testDirtyStatusConstant, branchName: testBranchNameConstant},
			prompter:      &stubMessagePrompter{answerError: promptFailure},
			expectedCause: promptFailure,
		},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			fixture := newServiceFixture(testInstance, testCase.manager, testCase.prompter, nil)

			_, runError := fixture.service.Run(context.Background(), lazypush.Options{})
			require.ErrorIs(testInstance, runError, testCase.expectedCause)
			require.False(testInstance, lazypush.IsReported(runError))
			require.Empty(testInstance, fixture.executor.recordedCalls)
			require.Empty(testInstance, fixture.output.String())
		})
	}
}

func TestServiceRunReportsBranchQueryFailure(testInstance *testing.T) {
	branchFailure := errors.New("branch query failed")
	manager := &stubRepositoryManager{statusOutput: testDirtyStatusConstant, branchError: branchFailure}
	fixture := newServiceFixture(testInstance, manager, &stubMessagePrompter{}, nil)

	_, runError := fixture.service.Run(context.Background(), lazypush.Options{PullBeforePush: true})
	require.ErrorIs(testInstance, runError, branchFailure)
	require.True(testInstance, lazypush.IsReported(runError))
	require.Equal(testInstance, []string{testBranchUnavailableLineConstant}, outputLines(fixture.output))
	require.Empty(testInstance, fixture.executor.recordedCalls)
}

func TestServiceRunStopsRecoveryWhenContextCancelled(testInstance *testing.T) {
	manager := &stubRepositoryManager{statusOutput: testDirtyStatusConstant, branchName: testBranchNameConstant}
	fixture := newServiceFixture(testInstance, manager, &stubMessagePrompter{answer: testCommitMessageConstant}, map[string][]bool{testGitPushCommandConstant: {true}})

	cancelledContext, cancel := context.WithCancel(context.Background())
	cancel()

	_, runError := fixture.service.Run(cancelledContext, lazypush.Options{})
	require.ErrorIs(testInstance, runError, context.Canceled)
	require.False(testInstance, lazypush.IsReported(runError))
	require.Equal(testInstance, []string{testGitAddCommandConstant, testGitCommitCommandConstant, testGitPushCommandConstant}, fixture.executor.recordedCalls)
	require.Empty(testInstance, outputLines(fixture.output))
}

func TestNewServiceValidatesDependencies(testInstance *testing.T) {
	completeDependencies := lazypush.ServiceDependencies{
		Repository:        stubRepositoryHandle{},
		RepositoryManager: &stubRepositoryManager{},
		GitExecutor:       &scriptedGitExecutor{},
		Prompter:          &stubMessagePrompter{},
		Reporter:          lazypush.NewReporter(&bytes.Buffer{}, false),
	}

	testCases := []struct {
		name          string
		mutate        func(dependencies *lazypush.ServiceDependencies)
		expectedError error
	}{
		{name: "missing_repository", mutate: func(dependencies *lazypush.ServiceDependencies) { dependencies.Repository = nil }, expectedError: lazypush.ErrRepositoryNotConfigured},
		{name: "missing_manager", mutate: func(dependencies *lazypush.ServiceDependencies) { dependencies.RepositoryManager = nil }, expectedError: lazypush.ErrRepositoryManagerNotConfigured},
		{name: "missing_executor", mutate: func(dependencies *lazypush.ServiceDependencies) { dependencies.GitExecutor = nil }, expectedError: lazypush.ErrGitExecutorNotConfigured},
		{name: "missing_prompter", mutate: func(dependencies *lazypush.ServiceDependencies) { dependencies.Prompter = nil }, expectedError: lazypush.ErrPrompterNotConfigured},
		{name: "missing_reporter", mutate: func(dependencies *lazypush.ServiceDependencies) { dependencies.Reporter = nil }, expectedError: lazypush.ErrReporterNotConfigured},
		{name: "complete", mutate: func(*lazypush.ServiceDependencies) {}},
	}

	for _, testCase := range testCases {
		testInstance.Run(testCase.name, func(testInstance *testing.T) {
			dependencies := completeDependencies
			testCase.mutate(&dependencies)

			service, serviceError := lazypush.NewService(dependencies)
			if testCase.expectedError != nil {
				require.ErrorIs(testInstance, serviceError, testCase.expectedError)
				require.Nil(testInstance, service)
				return
			}
			require.NoError(testInstance, serviceError)
			require.NotNil(testInstance, service)
		})
	}
}
