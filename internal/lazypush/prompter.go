package lazypush

import (
	"bufio"
	"errors"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/AlecAivazis/survey/v2"
	"github.com/AlecAivazis/survey/v2/terminal"
	"github.com/mattn/go-isatty"
)

const (
	promptWriteErrorTemplateConstant = "unable to write prompt: %w"
	promptReadErrorTemplateConstant  = "unable to read commit message: %w"
	promptInterruptedMessageConstant = "commit message prompt interrupted"
	lineTerminatorCharactersConstant = "\r\n"
)

// ErrPromptInterrupted indicates the user aborted the interactive prompt.
var ErrPromptInterrupted = errors.New(promptInterruptedMessageConstant)

// MessagePrompter asks the user for a commit message.
type MessagePrompter interface {
	PromptMessage(prompt string) (string, error)
}

// IOMessagePrompter reads a single line from an io.Reader after writing the prompt to an io.Writer.
type IOMessagePrompter struct {
	input  *bufio.Reader
	output io.Writer
}

// NewIOMessagePrompter constructs a line-oriented prompter.
func NewIOMessagePrompter(input io.Reader, output io.Writer) *IOMessagePrompter {
	return &IOMessagePrompter{input: bufio.NewReader(input), output: output}
}

// PromptMessage writes prompt and returns the line entered, without its terminator.
// End of input counts as an answer, so a closed stdin yields whatever was typed so far.
func (prompter *IOMessagePrompter) PromptMessage(prompt string) (string, error) {
	if _, writeError := fmt.Fprint(prompter.output, prompt); writeError != nil {
		return "", fmt.Errorf(promptWriteErrorTemplateConstant, writeError)
	}

	response, readError := prompter.input.ReadString('\n')
	if readError != nil && !errors.Is(readError, io.EOF) {
		return "", fmt.Errorf(promptReadErrorTemplateConstant, readError)
	}
	return strings.TrimRight(response, lineTerminatorCharactersConstant), nil
}

// SurveyMessagePrompter asks for the commit message with an interactive survey input on a terminal.
type SurveyMessagePrompter struct {
	input       terminal.FileReader
	output      terminal.FileWriter
	errorOutput io.Writer
}

// NewSurveyMessagePrompter constructs a terminal prompter bound to the provided files.
func NewSurveyMessagePrompter(input terminal.FileReader, output terminal.FileWriter, errorOutput io.Writer) *SurveyMessagePrompter {
	return &SurveyMessagePrompter{input: input, output: output, errorOutput: errorOutput}
}

// PromptMessage renders prompt as a survey input and returns the answer.
func (prompter *SurveyMessagePrompter) PromptMessage(prompt string) (string, error) {
	answer := ""
	inputPrompt := &survey.Input{Message: strings.TrimSpace(prompt)}
	askError := survey.AskOne(inputPrompt, &answer, survey.WithStdio(prompter.input, prompter.output, prompter.errorOutput))
	if askError != nil {
		if errors.Is(askError, terminal.InterruptErr) {
			return "", ErrPromptInterrupted
		}
		return "", fmt.Errorf(promptReadErrorTemplateConstant, askError)
	}
	return answer, nil
}

// NewMessagePrompter selects the survey prompter when interactive is set and both streams are terminals, and the line prompter otherwise.
func NewMessagePrompter(input io.Reader, output io.Writer, interactive bool) MessagePrompter {
	inputFile, inputIsFile := input.(*os.File)
	outputFile, outputIsFile := output.(*os.File)
	if interactive && inputIsFile && outputIsFile && isTerminal(inputFile) && isTerminal(outputFile) {
		return NewSurveyMessagePrompter(inputFile, outputFile, outputFile)
	}
	return NewIOMessagePrompter(input, output)
}

func isTerminal(stream any) bool {
	file, isFile := stream.(*os.File)
	if !isFile || file == nil {
		return false
	}
	fileDescriptor := file.Fd()
	return isatty.IsTerminal(fileDescriptor) || isatty.IsCygwinTerminal(fileDescriptor)
}
