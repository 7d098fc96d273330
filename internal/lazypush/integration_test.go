package lazypush_test

import (
	"bytes"
	"context"
	"io"
	"os"
	"os/exec"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"github.com/temirov/lazypush/internal/execshell"
	"github.com/temirov/lazypush/internal/gitrepo"
	"github.com/temirov/lazypush/internal/lazypush"
)

const (
	integrationGitExecutableConstant   = "git"
	integrationUserNameConstant        = "Integration User"
	integrationUserEmailConstant       = "integration@example.com"
	integrationBranchNameConstant      = "main"
	integrationTrackedFileNameConstant = "README.md"
	integrationOtherFileNameConstant   = "CHANGELOG.md"
	integrationFirstMessageConstant    = "describe the project"
	integrationSecondMessageConstant   = "note local progress"
)

func runIntegrationGitCommand(testInstance *testing.T, workingDirectory string, arguments ...string) string {
	testInstance.Helper()
	command := exec.Command(integrationGitExecutableConstant, arguments...)
	command.Dir = workingDirectory
	outputBytes, runError := command.CombinedOutput()
	require.NoError(testInstance, runError, string(outputBytes))
	return strings.TrimSpace(string(outputBytes))
}

func cloneIntegrationRepository(testInstance *testing.T, remoteDirectory string) string {
	testInstance.Helper()
	cloneDirectory := filepath.Join(testInstance.TempDir(), "clone")
	runIntegrationGitCommand(testInstance, filepath.Dir(cloneDirectory), "clone", "--branch", integrationBranchNameConstant, remoteDirectory, cloneDirectory)
	runIntegrationGitCommand(testInstance, cloneDirectory, "config", "user.name", integrationUserNameConstant)
	runIntegrationGitCommand(testInstance, cloneDirectory, "config", "user.email", integrationUserEmailConstant)
	return cloneDirectory
}

func initializeIntegrationRemote(testInstance *testing.T) string {
	testInstance.Helper()
	if _, lookupError := exec.LookPath(integrationGitExecutableConstant); lookupError != nil {
		testInstance.Skip("git executable not available")
	}

	remoteDirectory := filepath.Join(testInstance.TempDir(), "remote.git")
	runIntegrationGitCommand(testInstance, filepath.Dir(remoteDirectory), "init", "--bare", remoteDirectory)

	seedDirectory := filepath.Join(testInstance.TempDir(), "seed")
	require.NoError(testInstance, os.MkdirAll(seedDirectory, 0o755))
	runIntegrationGitCommand(testInstance, seedDirectory, "init")
	runIntegrationGitCommand(testInstance, seedDirectory, "config", "user.name", integrationUserNameConstant)
	runIntegrationGitCommand(testInstance, seedDirectory, "config", "user.email", integrationUserEmailConstant)
	runIntegrationGitCommand(testInstance, seedDirectory, "checkout", "-b", integrationBranchNameConstant)
	require.NoError(testInstance, os.WriteFile(filepath.Join(seedDirectory, integrationTrackedFileNameConstant), []byte("seed\n"), 0o644))
	runIntegrationGitCommand(testInstance, seedDirectory, "add", integrationTrackedFileNameConstant)
	runIntegrationGitCommand(testInstance, seedDirectory, "commit", "-m", "initial commit")
	runIntegrationGitCommand(testInstance, seedDirectory, "remote", "add", "origin", remoteDirectory)
	runIntegrationGitCommand(testInstance, seedDirectory, "push", "origin", integrationBranchNameConstant)

	return remoteDirectory
}

func newIntegrationService(testInstance *testing.T, repositoryDirectory string, answer string, output io.Writer) *lazypush.Service {
	testInstance.Helper()
	logger := zap.NewNop()

	executor, executorError := execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner())
	require.NoError(testInstance, executorError)
	repositoryManager, managerError := gitrepo.NewRepositoryManager(executor)
	require.NoError(testInstance, managerError)
	repository, repositoryError := gitrepo.OpenRepository(repositoryDirectory)
	require.NoError(testInstance, repositoryError)

	service, serviceError := lazypush.NewService(lazypush.ServiceDependencies{
		Logger:            logger,
		Repository:        repository,
		RepositoryManager: repositoryManager,
		GitExecutor:       executor,
		Prompter:          lazypush.NewIOMessagePrompter(strings.NewReader(answer+"\n"), io.Discard),
		Reporter:          lazypush.NewReporter(output, false),
	})
	require.NoError(testInstance, serviceError)
	return service
}

func remoteHeadSubject(testInstance *testing.T, remoteDirectory string) string {
	testInstance.Helper()
	return runIntegrationGitCommand(testInstance, remoteDirectory, "log", "-1", "--format=%s", integrationBranchNameConstant)
}

func TestServiceIntegrationPushesLocalChanges(testInstance *testing.T) {
	remoteDirectory := initializeIntegrationRemote(testInstance)
	cloneDirectory := cloneIntegrationRepository(testInstance, remoteDirectory)
	require.NoError(testInstance, os.WriteFile(filepath.Join(cloneDirectory, integrationTrackedFileNameConstant), []byte("seed\nmore\n"), 0o644))

	output := &bytes.Buffer{}
	result, runError := newIntegrationService(testInstance, cloneDirectory, integrationFirstMessageConstant, output).Run(context.Background(), lazypush.Options{Verbose: true})
	require.NoError(testInstance, runError)

	require.Equal(testInstance, lazypush.OutcomePushed, result.Outcome)
	require.Equal(testInstance, integrationBranchNameConstant, result.Branch)
	require.Equal(testInstance, integrationFirstMessageConstant, remoteHeadSubject(testInstance, remoteDirectory))
	require.Contains(testInstance, output.String(), "["+integrationBranchNameConstant+" "+result.CommitHash[:7]+"] "+integrationFirstMessageConstant)

	secondOutput := &bytes.Buffer{}
	secondResult, secondRunError := newIntegrationService(testInstance, cloneDirectory, "", secondOutput).Run(context.Background(), lazypush.Options{})
	require.NoError(testInstance, secondRunError)
	require.Equal(testInstance, lazypush.OutcomeNoChanges, secondResult.Outcome)
	require.Equal(testInstance, "No changes to commit.\n", secondOutput.String())
}

func TestServiceIntegrationRebasesRejectedPush(testInstance *testing.T) {
	remoteDirectory := initializeIntegrationRemote(testInstance)
	firstClone := cloneIntegrationRepository(testInstance, remoteDirectory)
	secondClone := cloneIntegrationRepository(testInstance, remoteDirectory)

	require.NoError(testInstance, os.WriteFile(filepath.Join(secondClone, integrationOtherFileNameConstant), []byte("upstream\n"), 0o644))
	runIntegrationGitCommand(testInstance, secondClone, "add", integrationOtherFileNameConstant)
	runIntegrationGitCommand(testInstance, secondClone, "commit", "-m", "upstream change")
	runIntegrationGitCommand(testInstance, secondClone, "push", "origin", integrationBranchNameConstant)

	require.NoError(testInstance, os.WriteFile(filepath.Join(firstClone, integrationTrackedFileNameConstant), []byte("seed\nlocal\n"), 0o644))

	output := &bytes.Buffer{}
	result, runError := newIntegrationService(testInstance, firstClone, integrationSecondMessageConstant, output).Run(context.Background(), lazypush.Options{})
	require.NoError(testInstance, runError)

	require.Equal(testInstance, lazypush.OutcomePushedAfterRebase, result.Outcome)
	require.Equal(testInstance, integrationSecondMessageConstant, remoteHeadSubject(testInstance, remoteDirectory))
	require.Equal(testInstance,
		"Initial push failed. Trying to pull the latest changes and push again...\n"+
			"Changes have been committed and pushed successfully after resolving conflicts.\n",
		output.String())
}
