package lazypush

import (
	"fmt"
	"strings"
	"time"
)

const defaultCommitMessageTemplateConstant = "Auto commit on %s"

// Clock abstracts time so that default commit messages are deterministic in tests.
type Clock interface {
	Now() time.Time
}

// SystemClock implements Clock using the standard library.
type SystemClock struct{}

// Now returns the current system time.
func (SystemClock) Now() time.Time {
	return time.Now()
}

// DefaultMessageBuilder turns the prompt answer into the commit message.
type DefaultMessageBuilder struct {
	Clock Clock
}

// Build returns the answer unchanged, or "Auto commit on <RFC 1123 timestamp>" when the answer is blank.
// A whitespace-only answer counts as blank.
func (builder DefaultMessageBuilder) Build(answer string) string {
	if len(strings.TrimSpace(answer)) > 0 {
		return answer
	}
	clock := builder.Clock
	if clock == nil {
		clock = SystemClock{}
	}
	return fmt.Sprintf(defaultCommitMessageTemplateConstant, clock.Now().Format(time.RFC1123))
}
