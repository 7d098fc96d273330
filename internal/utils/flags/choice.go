package flags

import (
	"fmt"
	"strings"
)

const (
	choicePlaceholderPrefix  = "<"
	choicePlaceholderSuffix  = ">"
	choiceSeparatorLiteral   = "|"
	choiceUsageEmptyTemplate = "`%s`"
	choiceUsageFullTemplate  = "`%s` %s"
	choiceValueTypeName      = "string"
	choiceRejectedTemplate   = "must be one of %s"
)

// ChoiceValue is a pflag.Value that accepts only one of a fixed set of case-insensitive choices.
type ChoiceValue struct {
	target  *string
	choices []string
}

// NewChoiceValue stores the accepted value in target, which starts out as defaultValue.
func NewChoiceValue(target *string, defaultValue string, choices []string) *ChoiceValue {
	*target = defaultValue
	return &ChoiceValue{target: target, choices: append([]string{}, choices...)}
}

// String returns the current value.
func (choiceValue *ChoiceValue) String() string {
	if choiceValue == nil || choiceValue.target == nil {
		return ""
	}
	return *choiceValue.target
}

// Set normalizes candidate and rejects values outside the configured choices.
func (choiceValue *ChoiceValue) Set(candidate string) error {
	normalizedCandidate := strings.ToLower(strings.TrimSpace(candidate))
	for _, choice := range choiceValue.choices {
		if strings.ToLower(strings.TrimSpace(choice)) == normalizedCandidate {
			*choiceValue.target = normalizedCandidate
			return nil
		}
	}
	return fmt.Errorf(choiceRejectedTemplate, buildChoicePlaceholder("", choiceValue.choices))
}

// Type names the flag value kind shown in usage output.
func (choiceValue *ChoiceValue) Type() string {
	return choiceValueTypeName
}

// FormatChoiceUsage builds a usage string where the default option is capitalized inside a placeholder.
func FormatChoiceUsage(defaultChoice string, choices []string, description string) string {
	placeholder := buildChoicePlaceholder(defaultChoice, choices)
	if len(strings.TrimSpace(description)) == 0 {
		return fmt.Sprintf(choiceUsageEmptyTemplate, placeholder)
	}
	return fmt.Sprintf(choiceUsageFullTemplate, placeholder, description)
}

func buildChoicePlaceholder(defaultChoice string, choices []string) string {
	highlightedChoices := highlightDefaultChoice(defaultChoice, choices)
	return choicePlaceholderPrefix + strings.Join(highlightedChoices, choiceSeparatorLiteral) + choicePlaceholderSuffix
}

func highlightDefaultChoice(defaultChoice string, choices []string) []string {
	normalizedDefault := strings.ToLower(strings.TrimSpace(defaultChoice))
	highlighted := make([]string, 0, len(choices))
	seen := make(map[string]struct{}, len(choices))

	for _, choice := range choices {
		trimmedChoice := strings.TrimSpace(choice)
		if len(trimmedChoice) == 0 {
			continue
		}

		normalizedChoice := strings.ToLower(trimmedChoice)
		if _, exists := seen[normalizedChoice]; exists {
			continue
		}

		displayValue := trimmedChoice
		if normalizedChoice == normalizedDefault && len(normalizedChoice) > 0 {
			displayValue = strings.ToUpper(trimmedChoice)
		}

		highlighted = append(highlighted, displayValue)
		seen[normalizedChoice] = struct{}{}
	}

	return highlighted
}
