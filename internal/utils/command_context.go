package utils

import "context"

const (
	loadedConfigurationContextKeyConstant = commandContextKey("loadedConfiguration")
)

type commandContextKey string

// CommandContextAccessor manages values stored in command execution contexts.
type CommandContextAccessor struct{}

// NewCommandContextAccessor constructs a CommandContextAccessor instance.
func NewCommandContextAccessor() CommandContextAccessor {
	return CommandContextAccessor{}
}

// WithLoadedConfiguration attaches the configuration metadata resolved during start-up.
func (accessor CommandContextAccessor) WithLoadedConfiguration(parentContext context.Context, loadedConfiguration LoadedConfiguration) context.Context {
	if parentContext == nil {
		parentContext = context.Background()
	}
	return context.WithValue(parentContext, loadedConfigurationContextKeyConstant, loadedConfiguration)
}

// LoadedConfiguration extracts the configuration metadata from the provided context.
func (accessor CommandContextAccessor) LoadedConfiguration(executionContext context.Context) (LoadedConfiguration, bool) {
	if executionContext == nil {
		return LoadedConfiguration{}, false
	}
	loadedConfiguration, available := executionContext.Value(loadedConfigurationContextKeyConstant).(LoadedConfiguration)
	return loadedConfiguration, available
}

// ConfigurationFilePath returns the configuration file used for the run, if any was found.
func (accessor CommandContextAccessor) ConfigurationFilePath(executionContext context.Context) (string, bool) {
	loadedConfiguration, available := accessor.LoadedConfiguration(executionContext)
	if !available || len(loadedConfiguration.ConfigFileUsed) == 0 {
		return "", false
	}
	return loadedConfiguration.ConfigFileUsed, true
}
