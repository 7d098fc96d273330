package lazypush

import (
	"errors"
	"fmt"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/lazypush/internal/execshell"
	"github.com/temirov/lazypush/internal/gitrepo"
	"github.com/temirov/lazypush/internal/ui"
	"github.com/temirov/lazypush/internal/utils"
	pathutils "github.com/temirov/lazypush/internal/utils/path"
)

const (
	commandUseConstant                  = "lazypush [options]"
	commandShortDescriptionConstant     = "Commit every local change and push it to the current branch"
	commandLongDescriptionConstant      = "lazypush stages all changes, commits them with a prompted or generated message, and pushes the current branch. A rejected push is retried once after pull --rebase."
	repositoryOpenErrorTemplateConstant = "unable to open repository %s: %w"
	logMessageConfigurationFileConstant = "configuration file loaded"
	logMessageRepositoryOpenedConstant  = "repository opened"
	logFieldConfigurationFileConstant   = "configuration_file"
	logFieldRemoteConstant              = "remote"
	logFieldPullBeforePushConstant      = "pull_before_push"
)

// LoggerProvider yields a zap logger for command execution.
type LoggerProvider func() *zap.Logger

// RepositoryOpener opens the repository containing path.
type RepositoryOpener func(path string) (RepositoryHandle, error)

// CommandBuilder assembles the lazypush command.
type CommandBuilder struct {
	LoggerProvider               LoggerProvider
	ConfigurationProvider        func() Configuration
	HumanReadableLoggingProvider func() bool
	InitializationHook           func(command *cobra.Command) error
	GitExecutor                  GitExecutor
	RepositoryManager            RepositoryManager
	RepositoryOpener             RepositoryOpener
	Prompter                     MessagePrompter
	Clock                        Clock
}

// Build constructs the lazypush command.
// Flag parsing is handled by ParseOptions so that unknown flags are reported with the lazypush wording.
func (builder *CommandBuilder) Build() (*cobra.Command, error) {
	command := &cobra.Command{
		Use:                   commandUseConstant,
		Short:                 commandShortDescriptionConstant,
		Long:                  commandLongDescriptionConstant,
		Args:                  cobra.ArbitraryArgs,
		DisableFlagParsing:    true,
		DisableFlagsInUseLine: true,
		SilenceUsage:          true,
		SilenceErrors:         true,
		RunE:                  builder.run,
	}

	BindOptionFlags(command.Flags())

	return command, nil
}

func (builder *CommandBuilder) run(command *cobra.Command, arguments []string) error {
	options, _, parseError := ParseOptions(command.Flags(), arguments)
	if parseError != nil {
		var invalidOptionError InvalidOptionError
		if errors.As(parseError, &invalidOptionError) {
			NewReporter(command.OutOrStdout(), false).Failure(invalidOptionError.Error())
			return ReportedError{Message: invalidOptionError.Error()}
		}
		return parseError
	}
	if options.HelpRequested {
		return command.Help()
	}

	if builder.InitializationHook != nil {
		if hookError := builder.InitializationHook(command); hookError != nil {
			return hookError
		}
	}

	configuration := builder.resolveConfiguration()
	logger := builder.resolveLogger()

	contextAccessor := utils.NewCommandContextAccessor()
	if configurationFilePath, available := contextAccessor.ConfigurationFilePath(command.Context()); available {
		logger.Debug(logMessageConfigurationFileConstant, zap.String(logFieldConfigurationFileConstant, configurationFilePath))
	}

	gitExecutor, executorError := builder.resolveGitExecutor(logger, configuration)
	if executorError != nil {
		return executorError
	}

	repository, repositoryError := builder.resolveRepositoryOpener()(configuration.Repository)
	if repositoryError != nil {
		return fmt.Errorf(repositoryOpenErrorTemplateConstant, configuration.Repository, repositoryError)
	}
	logger.Debug(
		logMessageRepositoryOpenedConstant,
		zap.String(logFieldRepositoryConstant, repository.RootPath()),
		zap.String(logFieldRemoteConstant, configuration.Remote),
		zap.Bool(logFieldPullBeforePushConstant, options.PullBeforePush),
	)

	repositoryManager, managerError := builder.resolveRepositoryManager(gitExecutor)
	if managerError != nil {
		return managerError
	}

	prompter := builder.Prompter
	if prompter == nil {
		prompter = NewMessagePrompter(command.InOrStdin(), command.OutOrStdout(), configuration.InteractivePrompt)
	}

	service, serviceError := NewService(ServiceDependencies{
		Logger:                   logger,
		Repository:               repository,
		RepositoryManager:        repositoryManager,
		GitExecutor:              gitExecutor,
		Prompter:                 prompter,
		Reporter:                 NewReporter(command.OutOrStdout(), configuration.Color, WithReporterLogger(logger)),
		Clock:                    builder.Clock,
		RemoteName:               configuration.Remote,
		DisableGitTerminalPrompt: configuration.DisableGitTerminalPrompt,
	})
	if serviceError != nil {
		return serviceError
	}

	_, runError := service.Run(command.Context(), options)
	return runError
}

func (builder *CommandBuilder) resolveConfiguration() Configuration {
	configuration := DefaultConfiguration()
	if builder.ConfigurationProvider != nil {
		configuration = builder.ConfigurationProvider()
	}
	return configuration.Sanitize(pathutils.NewHomeExpander())
}

func (builder *CommandBuilder) resolveLogger() *zap.Logger {
	if builder.LoggerProvider == nil {
		return zap.NewNop()
	}
	logger := builder.LoggerProvider()
	if logger == nil {
		return zap.NewNop()
	}
	return logger
}

func (builder *CommandBuilder) resolveGitExecutor(logger *zap.Logger, configuration Configuration) (GitExecutor, error) {
	if builder.GitExecutor != nil {
		return builder.GitExecutor, nil
	}

	executorOptions := []execshell.ExecutorOption{execshell.WithCommandTimeout(configuration.CommandTimeout)}
	if builder.HumanReadableLoggingProvider != nil && builder.HumanReadableLoggingProvider() {
		executorOptions = append(executorOptions, execshell.WithCommandEventObserver(ui.NewConsoleCommandEventLogger(logger)))
	}
	return execshell.NewShellExecutor(logger, execshell.NewOSCommandRunner(), executorOptions...)
}

func (builder *CommandBuilder) resolveRepositoryOpener() RepositoryOpener {
	if builder.RepositoryOpener != nil {
		return builder.RepositoryOpener
	}
	return func(path string) (RepositoryHandle, error) {
		repository, openError := gitrepo.OpenRepository(path)
		if openError != nil {
			return nil, openError
		}
		return repository, nil
	}
}

func (builder *CommandBuilder) resolveRepositoryManager(gitExecutor GitExecutor) (RepositoryManager, error) {
	if builder.RepositoryManager != nil {
		return builder.RepositoryManager, nil
	}
	return gitrepo.NewRepositoryManager(gitExecutor)
}
