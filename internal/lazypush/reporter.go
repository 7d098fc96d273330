package lazypush

import (
	"fmt"
	"io"

	"github.com/charmbracelet/lipgloss"
	"go.uber.org/zap"

	"github.com/temirov/lazypush/internal/utils"
)

const (
	successColorConstant = lipgloss.Color("2")
	failureColorConstant = lipgloss.Color("1")
	traceColorConstant   = lipgloss.Color("8")

	logMessageStatusWriteFailedConstant = "unable to write status line"
	logFieldLineConstant                = "line"
)

// StatusReporter prints the user-facing lines of a run.
type StatusReporter interface {
	Status(line string)
	Success(line string)
	Failure(line string)
	Trace(line string)
}

// Reporter writes status lines to an output stream, styling them when color is enabled and the stream is a terminal.
type Reporter struct {
	logger       *zap.Logger
	writeError   error
	output       io.Writer
	styled       bool
	successStyle lipgloss.Style
	failureStyle lipgloss.Style
	traceStyle   lipgloss.Style
}

// ReporterOption configures optional Reporter behavior.
type ReporterOption func(*Reporter)

// WithReporterLogger records failed writes to output with logger.
func WithReporterLogger(logger *zap.Logger) ReporterOption {
	return func(reporter *Reporter) {
		if logger != nil {
			reporter.logger = logger
		}
	}
}

// NewReporter constructs a Reporter writing to output.
func NewReporter(output io.Writer, colorEnabled bool, options ...ReporterOption) *Reporter {
	if output == nil {
		output = io.Discard
	}
	renderer := lipgloss.NewRenderer(output)
	reporter := &Reporter{
		logger:       zap.NewNop(),
		output:       utils.NewFlushingWriter(output),
		styled:       colorEnabled && isTerminal(output),
		successStyle: renderer.NewStyle().Foreground(successColorConstant).Bold(true),
		failureStyle: renderer.NewStyle().Foreground(failureColorConstant).Bold(true),
		traceStyle:   renderer.NewStyle().Foreground(traceColorConstant),
	}
	for _, option := range options {
		option(reporter)
	}
	return reporter
}

// Err returns the first error encountered while writing to output.
func (reporter *Reporter) Err() error {
	return reporter.writeError
}

// Status prints an informational line.
func (reporter *Reporter) Status(line string) {
	reporter.writeLine(line)
}

// Success prints a line announcing a completed push.
func (reporter *Reporter) Success(line string) {
	reporter.writeStyledLine(reporter.successStyle, line)
}

// Failure prints a line announcing a failed step.
func (reporter *Reporter) Failure(line string) {
	reporter.writeStyledLine(reporter.failureStyle, line)
}

// Trace prints a progress line.
func (reporter *Reporter) Trace(line string) {
	reporter.writeStyledLine(reporter.traceStyle, line)
}

func (reporter *Reporter) writeStyledLine(style lipgloss.Style, line string) {
	if reporter.styled {
		line = style.Render(line)
	}
	reporter.writeLine(line)
}

func (reporter *Reporter) writeLine(line string) {
	if _, writeError := fmt.Fprintln(reporter.output, line); writeError != nil {
		if reporter.writeError == nil {
			reporter.writeError = writeError
		}
		reporter.logger.Error(logMessageStatusWriteFailedConstant, zap.String(logFieldLineConstant, line), zap.Error(writeError))
	}
}
