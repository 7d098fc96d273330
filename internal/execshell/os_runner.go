package execshell

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"os"
	"os/exec"
	"sort"
)

const (
	environmentAssignmentTemplateConstant = "%s=%s"
	commandInterruptedTemplateConstant    = "%s interrupted: %w"
)

// OSCommandRunner executes commands using the operating system facilities.
type OSCommandRunner struct{}

// NewOSCommandRunner constructs a runner backed by os/exec.
func NewOSCommandRunner() *OSCommandRunner {
	return &OSCommandRunner{}
}

// Run executes the supplied command and collects its output. A non-zero exit code is reported in the
// result rather than as an error; cancellation or expiry of the context is reported as an error.
func (runner *OSCommandRunner) Run(executionContext context.Context, command ShellCommand) (ExecutionResult, error) {
	commandArguments := append([]string{}, command.Details.Arguments...)
	executable := exec.CommandContext(executionContext, string(command.Name), commandArguments...)

	if len(command.Details.WorkingDirectory) > 0 {
		executable.Dir = command.Details.WorkingDirectory
	}

	if len(command.Details.EnvironmentVariables) > 0 {
		executable.Env = mergeEnvironment(os.Environ(), command.Details.EnvironmentVariables)
	}

	var standardOutputBuffer bytes.Buffer
	var standardErrorBuffer bytes.Buffer
	executable.Stdout = &standardOutputBuffer
	executable.Stderr = &standardErrorBuffer

	if len(command.Details.StandardInput) > 0 {
		executable.Stdin = bytes.NewReader(command.Details.StandardInput)
	}

	runError := executable.Run()
	if contextError := executionContext.Err(); contextError != nil {
		return ExecutionResult{}, fmt.Errorf(commandInterruptedTemplateConstant, describeCommand(command), contextError)
	}
	if runError != nil {
		exitError := &exec.ExitError{}
		if errors.As(runError, &exitError) {
			return ExecutionResult{
				StandardOutput: standardOutputBuffer.String(),
				StandardError:  standardErrorBuffer.String(),
				ExitCode:       exitError.ExitCode(),
			}, nil
		}
		return ExecutionResult{}, runError
	}

	return ExecutionResult{
		StandardOutput: standardOutputBuffer.String(),
		StandardError:  standardErrorBuffer.String(),
		ExitCode:       0,
	}, nil
}

// mergeEnvironment appends overrides to the inherited environment in key order so later entries win.
func mergeEnvironment(inheritedEnvironment []string, overrides map[string]string) []string {
	overrideKeys := make([]string, 0, len(overrides))
	for overrideKey := range overrides {
		overrideKeys = append(overrideKeys, overrideKey)
	}
	sort.Strings(overrideKeys)

	mergedEnvironment := append([]string{}, inheritedEnvironment...)
	for _, overrideKey := range overrideKeys {
		mergedEnvironment = append(mergedEnvironment, fmt.Sprintf(environmentAssignmentTemplateConstant, overrideKey, overrides[overrideKey]))
	}
	return mergedEnvironment
}
