package execshell

import (
	"fmt"
	"strings"
)

type messageStage int

const (
	messageStageStart messageStage = iota
	messageStageSuccess
	messageStageFailure
	messageStageExecutionFailure
)

const (
	genericStartTemplateConstant            = "Running %s"
	genericSuccessTemplateConstant          = "Completed %s"
	genericFailureTemplateConstant          = "%s failed with exit code %d%s"
	genericExecutionFailureTemplateConstant = "%s failed: %s"
	commandLabelTemplateConstant            = "%s%s"
	workingDirectorySuffixTemplateConstant  = " (in %s)"
	commandArgumentsJoinSeparatorConstant   = " "
	standardErrorSuffixTemplateConstant     = ": %s"
	unknownFailureMessageConstant           = "unknown error"
	emptyStringConstant                     = ""
	defaultWorkingDirectoryLabelConstant    = "current directory"
	fallbackUnknownValueLabelConstant       = "unknown"
	flagPrefixConstant                      = "-"
)

const (
	gitStatusSubcommandNameConstant  = "status"
	gitBranchSubcommandNameConstant  = "branch"
	gitShowCurrentFlagConstant       = "--show-current"
	gitPullSubcommandNameConstant    = "pull"
	gitRebaseFlagConstant            = "--rebase"
	gitPushSubcommandNameConstant    = "push"
	gitAddSubcommandNameConstant     = "add"
	gitCommitSubcommandNameConstant  = "commit"
	gitMessageFlagConstant           = "-m"
	gitDetachedHeadLabelConstant     = "a detached HEAD"
	gitAllReferencesLabelConstant    = "the tracked branch"
	gitDefaultRemoteLabelConstant    = "the default remote"
	gitEmptyStatusSummaryConstant    = "clean"
	gitChangedStatusSummaryConstant  = "%d changed path(s)"
	gitStatusLineSeparatorConstant   = "\n"
	gitStatusSummaryTemplateConstant = "%s (%s)"
)

const (
	gitStatusStartTemplateConstant                   = "Reviewing working tree status in %s"
	gitStatusSuccessTemplateConstant                 = "Collected working tree status for %s"
	gitStatusFailureTemplateConstant                 = "Failed to review working tree status in %s (exit code %d%s)"
	gitStatusExecutionFailureTemplateConstant        = "Unable to review working tree status in %s: %s"
	gitCurrentBranchStartTemplateConstant            = "Identifying current branch in %s"
	gitCurrentBranchSuccessTemplateConstant          = "Current branch in %s is %s"
	gitCurrentBranchFailureTemplateConstant          = "Failed to identify current branch in %s (exit code %d%s)"
	gitCurrentBranchExecutionFailureTemplateConstant = "Unable to identify current branch in %s: %s"
	gitPullStartTemplateConstant                     = "Pulling %s from %s into %s"
	gitPullSuccessTemplateConstant                   = "Pulled %s from %s into %s"
	gitPullFailureTemplateConstant                   = "Failed to pull %s from %s into %s (exit code %d%s)"
	gitPullExecutionFailureTemplateConstant          = "Unable to pull %s from %s into %s: %s"
	gitRebasePullStartTemplateConstant               = "Rebasing %s onto %s in %s"
	gitRebasePullSuccessTemplateConstant             = "Rebased %s onto %s in %s"
	gitRebasePullFailureTemplateConstant             = "Failed to rebase %s onto %s in %s (exit code %d%s)"
	gitRebasePullExecutionFailureTemplateConstant    = "Unable to rebase %s onto %s in %s: %s"
	gitPushStartTemplateConstant                     = "Pushing %s to %s from %s"
	gitPushSuccessTemplateConstant                   = "Pushed %s to %s from %s"
	gitPushFailureTemplateConstant                   = "Failed to push %s to %s from %s (exit code %d%s)"
	gitPushExecutionFailureTemplateConstant          = "Unable to push %s to %s from %s: %s"
	gitAddStartTemplateConstant                      = "Staging %s in %s"
	gitAddSuccessTemplateConstant                    = "Staged %s in %s"
	gitAddFailureTemplateConstant                    = "Failed to stage %s in %s (exit code %d%s)"
	gitAddExecutionFailureTemplateConstant           = "Unable to stage %s in %s: %s"
	gitCommitStartTemplateConstant                   = "Creating commit in %s with message %q"
	gitCommitSuccessTemplateConstant                 = "Created commit in %s with message %q"
	gitCommitFailureTemplateConstant                 = "Failed to create commit in %s with message %q (exit code %d%s)"
	gitCommitExecutionFailureTemplateConstant        = "Unable to create commit in %s with message %q: %s"
)

// CommandMessageFormatter builds human-readable messages for command lifecycle events.
type CommandMessageFormatter struct{}

// BuildStartedMessage formats the message describing a command about to run.
func (formatter CommandMessageFormatter) BuildStartedMessage(command ShellCommand) string {
	return formatter.buildMessage(command, ExecutionResult{}, nil, messageStageStart)
}

// BuildSuccessMessage formats the message describing a completed command with a zero exit code.
func (formatter CommandMessageFormatter) BuildSuccessMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageSuccess)
}

// BuildFailureMessage formats the message describing a command that returned a non-zero exit code.
func (formatter CommandMessageFormatter) BuildFailureMessage(command ShellCommand, result ExecutionResult) string {
	return formatter.buildMessage(command, result, nil, messageStageFailure)
}

// BuildExecutionFailureMessage formats the message describing an unexpected execution failure.
func (formatter CommandMessageFormatter) BuildExecutionFailureMessage(command ShellCommand, failure error) string {
	return formatter.buildMessage(command, ExecutionResult{}, failure, messageStageExecutionFailure)
}

func (formatter CommandMessageFormatter) buildMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	switch command.Name {
	case CommandGit:
		return formatter.describeGitMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	if len(command.Details.Arguments) == 0 {
		return formatter.buildGenericMessage(command, result, failure, stage)
	}

	subcommand := strings.TrimSpace(command.Details.Arguments[0])
	switch subcommand {
	case gitStatusSubcommandNameConstant:
		return formatter.describeGitStatusMessage(command, result, failure, stage)
	case gitBranchSubcommandNameConstant:
		if containsArgument(command.Details.Arguments, gitShowCurrentFlagConstant) {
			return formatter.describeGitCurrentBranchMessage(command, result, failure, stage)
		}
		return formatter.buildGenericMessage(command, result, failure, stage)
	case gitPullSubcommandNameConstant:
		return formatter.describeGitPullMessage(command, result, failure, stage)
	case gitPushSubcommandNameConstant:
		return formatter.describeGitPushMessage(command, result, failure, stage)
	case gitAddSubcommandNameConstant:
		return formatter.describeGitAddMessage(command, result, failure, stage)
	case gitCommitSubcommandNameConstant:
		return formatter.describeGitCommitMessage(command, result, failure, stage)
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitStatusMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitStatusStartTemplateConstant, workingDirectory)
	case messageStageSuccess:
		summary := fmt.Sprintf(gitStatusSummaryTemplateConstant, workingDirectory, formatter.summarizeStatus(result.StandardOutput))
		return fmt.Sprintf(gitStatusSuccessTemplateConstant, summary)
	case messageStageFailure:
		return fmt.Sprintf(gitStatusFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitStatusExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitCurrentBranchMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCurrentBranchStartTemplateConstant, workingDirectory)
	case messageStageSuccess:
		branchName := strings.TrimSpace(result.StandardOutput)
		if len(branchName) == 0 {
			branchName = gitDetachedHeadLabelConstant
		}
		return fmt.Sprintf(gitCurrentBranchSuccessTemplateConstant, workingDirectory, branchName)
	case messageStageFailure:
		return fmt.Sprintf(gitCurrentBranchFailureTemplateConstant, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitCurrentBranchExecutionFailureTemplateConstant, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitPullMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	arguments := command.Details.Arguments
	remoteName, references := formatter.extractRemoteAndReferences(arguments[1:])
	remoteLabel := remoteName
	if len(remoteLabel) == 0 {
		remoteLabel = gitDefaultRemoteLabelConstant
	}
	referenceLabel := formatter.joinReferences(references)
	if len(referenceLabel) == 0 {
		referenceLabel = gitAllReferencesLabelConstant
	}

	if containsArgument(arguments, gitRebaseFlagConstant) {
		upstreamLabel := remoteLabel + "/" + referenceLabel
		switch stage {
		case messageStageStart:
			return fmt.Sprintf(gitRebasePullStartTemplateConstant, referenceLabel, upstreamLabel, workingDirectory)
		case messageStageSuccess:
			return fmt.Sprintf(gitRebasePullSuccessTemplateConstant, referenceLabel, upstreamLabel, workingDirectory)
		case messageStageFailure:
			return fmt.Sprintf(gitRebasePullFailureTemplateConstant, referenceLabel, upstreamLabel, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
		case messageStageExecutionFailure:
			return fmt.Sprintf(gitRebasePullExecutionFailureTemplateConstant, referenceLabel, upstreamLabel, workingDirectory, formatter.describeFailure(failure))
		}
	}

	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitPullStartTemplateConstant, referenceLabel, remoteLabel, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitPullSuccessTemplateConstant, referenceLabel, remoteLabel, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitPullFailureTemplateConstant, referenceLabel, remoteLabel, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitPullExecutionFailureTemplateConstant, referenceLabel, remoteLabel, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitPushMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	remoteName, references := formatter.extractRemoteAndReferences(command.Details.Arguments[1:])
	trimmedRemote := formatter.ensureValue(remoteName)
	trimmedBranch := formatter.ensureValue(formatter.joinReferences(references))
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitPushStartTemplateConstant, trimmedBranch, trimmedRemote, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitPushSuccessTemplateConstant, trimmedBranch, trimmedRemote, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitPushFailureTemplateConstant, trimmedBranch, trimmedRemote, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitPushExecutionFailureTemplateConstant, trimmedBranch, trimmedRemote, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitAddMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	targetPath := formatter.extractFirstNonFlagArgument(command.Details.Arguments[1:])
	trimmedTarget := formatter.ensureValue(targetPath)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitAddStartTemplateConstant, trimmedTarget, workingDirectory)
	case messageStageSuccess:
		return fmt.Sprintf(gitAddSuccessTemplateConstant, trimmedTarget, workingDirectory)
	case messageStageFailure:
		return fmt.Sprintf(gitAddFailureTemplateConstant, trimmedTarget, workingDirectory, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitAddExecutionFailureTemplateConstant, trimmedTarget, workingDirectory, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) describeGitCommitMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	workingDirectory := formatter.describeWorkingDirectory(command)
	commitMessage := formatter.extractCommitMessage(command.Details.Arguments)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(gitCommitStartTemplateConstant, workingDirectory, commitMessage)
	case messageStageSuccess:
		return fmt.Sprintf(gitCommitSuccessTemplateConstant, workingDirectory, commitMessage)
	case messageStageFailure:
		return fmt.Sprintf(gitCommitFailureTemplateConstant, workingDirectory, commitMessage, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(gitCommitExecutionFailureTemplateConstant, workingDirectory, commitMessage, formatter.describeFailure(failure))
	default:
		return formatter.buildGenericMessage(command, result, failure, stage)
	}
}

func (formatter CommandMessageFormatter) buildGenericMessage(command ShellCommand, result ExecutionResult, failure error, stage messageStage) string {
	commandLabel := formatter.formatCommandLabel(command)
	switch stage {
	case messageStageStart:
		return fmt.Sprintf(genericStartTemplateConstant, commandLabel)
	case messageStageSuccess:
		return fmt.Sprintf(genericSuccessTemplateConstant, commandLabel)
	case messageStageFailure:
		return fmt.Sprintf(genericFailureTemplateConstant, commandLabel, result.ExitCode, formatter.formatStandardErrorSuffix(result.StandardError))
	case messageStageExecutionFailure:
		return fmt.Sprintf(genericExecutionFailureTemplateConstant, commandLabel, formatter.describeFailure(failure))
	default:
		return emptyStringConstant
	}
}

func (formatter CommandMessageFormatter) formatCommandLabel(command ShellCommand) string {
	commandLabel := string(command.Name)
	if len(command.Details.Arguments) > 0 {
		commandLabel = fmt.Sprintf("%s %s", commandLabel, strings.Join(command.Details.Arguments, commandArgumentsJoinSeparatorConstant))
	}
	workingDirectorySuffix := formatter.formatWorkingDirectorySuffix(command)
	return fmt.Sprintf(commandLabelTemplateConstant, commandLabel, workingDirectorySuffix)
}

func (formatter CommandMessageFormatter) formatWorkingDirectorySuffix(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(workingDirectorySuffixTemplateConstant, trimmedWorkingDirectory)
}

func (formatter CommandMessageFormatter) formatStandardErrorSuffix(standardError string) string {
	trimmedStandardError := strings.TrimSpace(standardError)
	if len(trimmedStandardError) == 0 {
		return emptyStringConstant
	}
	return fmt.Sprintf(standardErrorSuffixTemplateConstant, trimmedStandardError)
}

func (formatter CommandMessageFormatter) describeWorkingDirectory(command ShellCommand) string {
	trimmedWorkingDirectory := strings.TrimSpace(command.Details.WorkingDirectory)
	if len(trimmedWorkingDirectory) == 0 {
		return defaultWorkingDirectoryLabelConstant
	}
	return trimmedWorkingDirectory
}

func (formatter CommandMessageFormatter) describeFailure(failure error) string {
	if failure == nil {
		return unknownFailureMessageConstant
	}
	return failure.Error()
}

func (formatter CommandMessageFormatter) summarizeStatus(porcelainOutput string) string {
	trimmedOutput := strings.TrimSpace(porcelainOutput)
	if len(trimmedOutput) == 0 {
		return gitEmptyStatusSummaryConstant
	}
	changedPaths := strings.Split(trimmedOutput, gitStatusLineSeparatorConstant)
	return fmt.Sprintf(gitChangedStatusSummaryConstant, len(changedPaths))
}

func containsArgument(arguments []string, value string) bool {
	for _, argument := range arguments {
		if strings.TrimSpace(argument) == value {
			return true
		}
	}
	return false
}

func (formatter CommandMessageFormatter) ensureValue(value string) string {
	trimmed := strings.TrimSpace(value)
	if len(trimmed) == 0 {
		return fallbackUnknownValueLabelConstant
	}
	return trimmed
}

func (formatter CommandMessageFormatter) extractRemoteAndReferences(arguments []string) (string, []string) {
	remoteName := emptyStringConstant
	references := []string{}
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 {
			continue
		}
		if strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		if len(remoteName) == 0 {
			remoteName = trimmed
			continue
		}
		references = append(references, trimmed)
	}
	return remoteName, references
}

func (formatter CommandMessageFormatter) joinReferences(references []string) string {
	cleaned := make([]string, 0, len(references))
	for _, reference := range references {
		trimmed := strings.TrimSpace(reference)
		if len(trimmed) == 0 {
			continue
		}
		cleaned = append(cleaned, trimmed)
	}
	return strings.Join(cleaned, ", ")
}

func (formatter CommandMessageFormatter) extractFirstNonFlagArgument(arguments []string) string {
	for _, argument := range arguments {
		trimmed := strings.TrimSpace(argument)
		if len(trimmed) == 0 {
			continue
		}
		if strings.HasPrefix(trimmed, flagPrefixConstant) {
			continue
		}
		return trimmed
	}
	return emptyStringConstant
}

func (formatter CommandMessageFormatter) extractCommitMessage(arguments []string) string {
	for index := 0; index < len(arguments); index++ {
		if strings.TrimSpace(arguments[index]) == gitMessageFlagConstant && index+1 < len(arguments) {
			return strings.TrimSpace(arguments[index+1])
		}
	}
	return fallbackUnknownValueLabelConstant
}
