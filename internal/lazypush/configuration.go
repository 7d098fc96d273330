package lazypush

import (
	"strings"
	"time"

	pathutils "github.com/temirov/lazypush/internal/utils/path"
)

const (
	configurationKeySeparatorConstant         = "."
	remoteConfigurationKeyConstant            = "remote"
	repositoryConfigurationKeyConstant        = "repository"
	commandTimeoutConfigurationKeyConstant    = "command_timeout"
	colorConfigurationKeyConstant             = "color"
	interactivePromptConfigurationKeyConstant = "interactive_prompt"
	disableGitTerminalPromptKeyConstant       = "disable_git_terminal_prompt"
	defaultRemoteNameConstant                 = "origin"
	defaultRepositoryPathConstant             = "."
)

// Configuration captures persistent settings for the lazypush command.
type Configuration struct {
	Remote                   string        `mapstructure:"remote"`
	Repository               string        `mapstructure:"repository"`
	CommandTimeout           time.Duration `mapstructure:"command_timeout"`
	Color                    bool          `mapstructure:"color"`
	InteractivePrompt        bool          `mapstructure:"interactive_prompt"`
	DisableGitTerminalPrompt bool          `mapstructure:"disable_git_terminal_prompt"`
}

// DefaultConfiguration returns baseline configuration values for the lazypush command.
func DefaultConfiguration() Configuration {
	return Configuration{
		Remote:            defaultRemoteNameConstant,
		Repository:        defaultRepositoryPathConstant,
		CommandTimeout:    0,
		Color:             true,
		InteractivePrompt: true,
	}
}

// DefaultConfigurationValues produces Viper defaults for the lazypush command rooted at rootKey.
func DefaultConfigurationValues(rootKey string) map[string]any {
	defaults := DefaultConfiguration()
	keyPrefix := rootKey + configurationKeySeparatorConstant
	return map[string]any{
		keyPrefix + remoteConfigurationKeyConstant:            defaults.Remote,
		keyPrefix + repositoryConfigurationKeyConstant:        defaults.Repository,
		keyPrefix + commandTimeoutConfigurationKeyConstant:    defaults.CommandTimeout.String(),
		keyPrefix + colorConfigurationKeyConstant:             defaults.Color,
		keyPrefix + interactivePromptConfigurationKeyConstant: defaults.InteractivePrompt,
		keyPrefix + disableGitTerminalPromptKeyConstant:       defaults.DisableGitTerminalPrompt,
	}
}

// Sanitize trims whitespace, expands a leading tilde in the repository path, and restores defaults for unset values.
func (configuration Configuration) Sanitize(homeExpander *pathutils.HomeExpander) Configuration {
	sanitized := configuration

	sanitized.Remote = strings.TrimSpace(configuration.Remote)
	if len(sanitized.Remote) == 0 {
		sanitized.Remote = defaultRemoteNameConstant
	}

	sanitized.Repository = strings.TrimSpace(configuration.Repository)
	if len(sanitized.Repository) == 0 {
		sanitized.Repository = defaultRepositoryPathConstant
	}
	if homeExpander != nil {
		sanitized.Repository = homeExpander.Expand(sanitized.Repository)
	}

	if sanitized.CommandTimeout < 0 {
		sanitized.CommandTimeout = 0
	}

	return sanitized
}
