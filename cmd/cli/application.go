package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/temirov/lazypush/internal/lazypush"
	"github.com/temirov/lazypush/internal/utils"
	"github.com/temirov/lazypush/internal/utils/flags"
	pathutils "github.com/temirov/lazypush/internal/utils/path"
)

const (
	applicationDirectoryNameConstant           = "lazypush"
	configFileFlagNameConstant                 = "config"
	configFileFlagUsageConstant                = "Optional path to a configuration file (YAML or JSON)."
	logLevelFlagNameConstant                   = "log-level"
	logLevelFlagUsageConstant                  = "Override the configured log level."
	logFormatFlagNameConstant                  = "log-format"
	logFormatFlagUsageConstant                 = "Override the configured log format."
	commonConfigurationKeyConstant             = "common"
	commonLogLevelConfigKeyConstant            = commonConfigurationKeyConstant + ".log_level"
	commonLogFormatConfigKeyConstant           = commonConfigurationKeyConstant + ".log_format"
	commonLogFileConfigKeyConstant             = commonConfigurationKeyConstant + ".log_file"
	toolsConfigurationKeyConstant              = "tools"
	lazypushConfigurationKeyConstant           = toolsConfigurationKeyConstant + ".lazypush"
	environmentPrefixConstant                  = "LAZYPUSH"
	configurationSearchPathEnvironmentConstant = "LAZYPUSH_CONFIG_SEARCH_PATH"
	configurationNameConstant                  = "config"
	configurationTypeConstant                  = "yaml"
	defaultConfigurationSearchPathConstant     = "."
	configurationInitializedMessageConstant    = "configuration initialized"
	configurationLogLevelFieldConstant         = "log_level"
	configurationLogFormatFieldConstant        = "log_format"
	configurationLogFileFieldConstant          = "log_file"
	configurationFileFieldConstant             = "config_file"
	configurationLoadErrorTemplateConstant     = "unable to load configuration: %w"
	logFilePathErrorTemplateConstant           = "unable to resolve log file path: %w"
	loggerCreationErrorTemplateConstant        = "unable to create logger: %w"
	loggerSyncErrorTemplateConstant            = "unable to flush logger: %w"
)

var (
	logLevelChoices  = []string{string(utils.LogLevelDebug), string(utils.LogLevelInfo), string(utils.LogLevelWarn), string(utils.LogLevelError)}
	logFormatChoices = []string{string(utils.LogFormatStructured), string(utils.LogFormatConsole)}
)

// ApplicationConfiguration describes the persisted configuration for the CLI entrypoint.
type ApplicationConfiguration struct {
	Common ApplicationCommonConfiguration `mapstructure:"common"`
	Tools  ApplicationToolsConfiguration  `mapstructure:"tools"`
}

// ApplicationCommonConfiguration stores logging configuration.
type ApplicationCommonConfiguration struct {
	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`
	LogFile   string `mapstructure:"log_file"`
}

// ApplicationToolsConfiguration holds command configuration.
type ApplicationToolsConfiguration struct {
	Lazypush lazypush.Configuration `mapstructure:"lazypush"`
}

// Application wires the lazypush Cobra command, configuration loader, and structured logger.
type Application struct {
	rootCommand            *cobra.Command
	configurationLoader    *utils.ConfigurationLoader
	loggerFactory          *utils.LoggerFactory
	logger                 *zap.Logger
	configuration          ApplicationConfiguration
	configurationMetadata  utils.LoadedConfiguration
	configurationFilePath  string
	logLevelFlagValue      string
	logFormatFlagValue     string
	commandContextAccessor utils.CommandContextAccessor
	homeExpander           *pathutils.HomeExpander
}

// NewApplication assembles a fully wired CLI application instance.
func NewApplication() (*Application, error) {
	configurationLoader := utils.NewConfigurationLoader(
		configurationNameConstant,
		configurationTypeConstant,
		environmentPrefixConstant,
		configurationSearchPaths(),
	)
	configurationLoader.SetEmbeddedConfiguration(EmbeddedDefaultConfiguration())

	application := &Application{
		configurationLoader:    configurationLoader,
		loggerFactory:          utils.NewLoggerFactory(),
		logger:                 zap.NewNop(),
		commandContextAccessor: utils.NewCommandContextAccessor(),
		homeExpander:           pathutils.NewHomeExpander(),
	}

	commandBuilder := lazypush.CommandBuilder{
		LoggerProvider: func() *zap.Logger {
			return application.logger
		},
		ConfigurationProvider: func() lazypush.Configuration {
			return application.configuration.Tools.Lazypush
		},
		HumanReadableLoggingProvider: application.humanReadableLoggingEnabled,
		InitializationHook:           application.initializeConfiguration,
	}
	rootCommand, buildError := commandBuilder.Build()
	if buildError != nil {
		return nil, buildError
	}

	rootCommand.SetContext(context.Background())
	rootCommand.Flags().StringVar(&application.configurationFilePath, configFileFlagNameConstant, "", configFileFlagUsageConstant)
	rootCommand.Flags().Var(
		flags.NewChoiceValue(&application.logLevelFlagValue, "", logLevelChoices),
		logLevelFlagNameConstant,
		flags.FormatChoiceUsage(string(utils.LogLevelWarn), logLevelChoices, logLevelFlagUsageConstant),
	)
	rootCommand.Flags().Var(
		flags.NewChoiceValue(&application.logFormatFlagValue, "", logFormatChoices),
		logFormatFlagNameConstant,
		flags.FormatChoiceUsage(string(utils.LogFormatStructured), logFormatChoices, logFormatFlagUsageConstant),
	)

	application.rootCommand = rootCommand

	return application, nil
}

// Execute runs the lazypush command and ensures logger flushing.
func (application *Application) Execute(executionContext context.Context) error {
	executionError := application.rootCommand.ExecuteContext(executionContext)
	if syncError := application.flushLogger(); syncError != nil && executionError == nil {
		return fmt.Errorf(loggerSyncErrorTemplateConstant, syncError)
	}
	return executionError
}

// Execute builds a fresh application instance and runs it with the provided context.
func Execute(executionContext context.Context) error {
	application, applicationError := NewApplication()
	if applicationError != nil {
		return applicationError
	}
	return application.Execute(executionContext)
}

func (application *Application) initializeConfiguration(command *cobra.Command) error {
	defaultValues := map[string]any{
		commonLogLevelConfigKeyConstant:  string(utils.LogLevelWarn),
		commonLogFormatConfigKeyConstant: string(utils.LogFormatStructured),
		commonLogFileConfigKeyConstant:   "",
	}
	for configurationKey, configurationValue := range lazypush.DefaultConfigurationValues(lazypushConfigurationKeyConstant) {
		defaultValues[configurationKey] = configurationValue
	}

	loadedConfiguration, loadError := application.configurationLoader.LoadConfiguration(application.configurationFilePath, defaultValues, &application.configuration)
	if loadError != nil {
		return fmt.Errorf(configurationLoadErrorTemplateConstant, loadError)
	}

	application.configurationMetadata = loadedConfiguration

	if command.Flags().Changed(logLevelFlagNameConstant) {
		application.configuration.Common.LogLevel = application.logLevelFlagValue
	}

	if command.Flags().Changed(logFormatFlagNameConstant) {
		application.configuration.Common.LogFormat = application.logFormatFlagValue
	}

	logFilePath, logFilePathError := application.homeExpander.ExpandAbsolute(application.configuration.Common.LogFile)
	if logFilePathError != nil {
		return fmt.Errorf(logFilePathErrorTemplateConstant, logFilePathError)
	}

	logger, loggerCreationError := application.loggerFactory.CreateLogger(utils.LoggerOptions{
		Level:    utils.LogLevel(application.configuration.Common.LogLevel),
		Format:   utils.LogFormat(application.configuration.Common.LogFormat),
		FilePath: logFilePath,
	})
	if loggerCreationError != nil {
		return fmt.Errorf(loggerCreationErrorTemplateConstant, loggerCreationError)
	}

	application.logger = logger

	application.logger.Info(
		configurationInitializedMessageConstant,
		zap.String(configurationLogLevelFieldConstant, application.configuration.Common.LogLevel),
		zap.String(configurationLogFormatFieldConstant, application.configuration.Common.LogFormat),
		zap.String(configurationLogFileFieldConstant, logFilePath),
		zap.String(configurationFileFieldConstant, application.configurationMetadata.ConfigFileUsed),
	)

	command.SetContext(application.commandContextAccessor.WithLoadedConfiguration(command.Context(), application.configurationMetadata))

	return nil
}

func (application *Application) humanReadableLoggingEnabled() bool {
	logFormatValue := strings.TrimSpace(application.configuration.Common.LogFormat)
	return strings.EqualFold(logFormatValue, string(utils.LogFormatConsole))
}

func (application *Application) flushLogger() error {
	if application.logger == nil {
		return nil
	}

	syncError := application.logger.Sync()
	switch {
	case syncError == nil:
		return nil
	case errors.Is(syncError, syscall.ENOTSUP):
		return nil
	case errors.Is(syncError, syscall.EINVAL):
		return nil
	default:
		return syncError
	}
}

// configurationSearchPaths lists the directories searched for config.yaml.
// LAZYPUSH_CONFIG_SEARCH_PATH replaces the defaults with its list of directories.
func configurationSearchPaths() []string {
	if overridePaths := strings.TrimSpace(os.Getenv(configurationSearchPathEnvironmentConstant)); len(overridePaths) > 0 {
		return filepath.SplitList(overridePaths)
	}

	searchPaths := []string{defaultConfigurationSearchPathConstant}
	if userConfigurationDirectory, directoryError := os.UserConfigDir(); directoryError == nil {
		searchPaths = append(searchPaths, filepath.Join(userConfigurationDirectory, applicationDirectoryNameConstant))
	}
	return searchPaths
}
