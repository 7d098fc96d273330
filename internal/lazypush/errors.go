package lazypush

import (
	"errors"
	"fmt"
)

const (
	reportedErrorWithCauseTemplateConstant = "%s: %v"
	invalidOptionMessageTemplateConstant   = "Invalid option: %s"
)

// ReportedError marks a failure whose status line was already printed to the user.
// Callers should exit with a failure code without printing it again.
type ReportedError struct {
	Message string
	Cause   error
}

// Error returns the printed message followed by the underlying cause, if any.
func (reportedError ReportedError) Error() string {
	if reportedError.Cause == nil {
		return reportedError.Message
	}
	return fmt.Sprintf(reportedErrorWithCauseTemplateConstant, reportedError.Message, reportedError.Cause)
}

// Unwrap exposes the underlying cause.
func (reportedError ReportedError) Unwrap() error {
	return reportedError.Cause
}

// IsReported reports whether err, or an error it wraps, was already shown to the user.
func IsReported(err error) bool {
	var reportedError ReportedError
	return errors.As(err, &reportedError)
}

// InvalidOptionError identifies the first unrecognized flag-shaped token on the command line.
type InvalidOptionError struct {
	Token string
}

// Error formats the user-facing rejection line.
func (optionError InvalidOptionError) Error() string {
	return fmt.Sprintf(invalidOptionMessageTemplateConstant, optionError.Token)
}
