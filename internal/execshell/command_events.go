package execshell

// CommandEventObserver receives lifecycle notifications for every command the ShellExecutor runs.
type CommandEventObserver interface {
	// CommandStarted is invoked before the runner is called.
	CommandStarted(command ShellCommand)
	// CommandCompleted is invoked once the process exited, regardless of its exit code.
	CommandCompleted(command ShellCommand, result ExecutionResult)
	// CommandExecutionFailed is invoked when the process could not be run or was interrupted.
	CommandExecutionFailed(command ShellCommand, failure error)
}

type noopCommandEventObserver struct{}

func (noopCommandEventObserver) CommandStarted(ShellCommand) {}

func (noopCommandEventObserver) CommandCompleted(ShellCommand, ExecutionResult) {}

func (noopCommandEventObserver) CommandExecutionFailed(ShellCommand, error) {}
