package lazypush

import (
	"fmt"
	"strings"

	"github.com/spf13/pflag"
)

const (
	pullFlagNameConstant               = "pull"
	pullFlagShorthandConstant          = "p"
	pullFlagUsageConstant              = "Pull the latest changes from the remote branch before committing"
	verboseFlagNameConstant            = "verbose"
	verboseFlagShorthandConstant       = "v"
	verboseFlagUsageConstant           = "Print each step as it runs"
	helpFlagNameConstant               = "help"
	flagTokenPrefixConstant            = "-"
	longFlagTokenPrefixConstant        = "--"
	inlineValueSeparatorConstant       = "="
	flagParsingErrorTemplateConstant   = "unable to parse options: %w"
	flagReadingErrorTemplateConstant   = "unable to read option %s: %w"
	singleShorthandTokenLengthConstant = 2
)

// Options captures the behavior switches parsed from the command line.
type Options struct {
	PullBeforePush bool
	Verbose        bool
	HelpRequested  bool
}

// BindOptionFlags registers the pull and verbose flags on flagSet.
func BindOptionFlags(flagSet *pflag.FlagSet) {
	flagSet.BoolP(pullFlagNameConstant, pullFlagShorthandConstant, false, pullFlagUsageConstant)
	flagSet.BoolP(verboseFlagNameConstant, verboseFlagShorthandConstant, false, verboseFlagUsageConstant)
}

// ParseOptions consumes the leading flag-shaped tokens and returns the parsed options with the remaining tokens.
// Every token starting with "-" is treated as an option, including "-" and "--". The first one that flagSet does not
// recognize yields InvalidOptionError; combined shorthands such as -pv and inline values on switches such as --pull=false
// are not recognized.
func ParseOptions(flagSet *pflag.FlagSet, tokens []string) (Options, []string, error) {
	if invalidToken, found := findInvalidToken(flagSet, tokens); found {
		return Options{}, nil, InvalidOptionError{Token: invalidToken}
	}

	flagSet.SetInterspersed(false)
	if parseError := flagSet.Parse(tokens); parseError != nil {
		return Options{}, nil, fmt.Errorf(flagParsingErrorTemplateConstant, parseError)
	}

	options := Options{}
	var readError error
	if options.PullBeforePush, readError = flagSet.GetBool(pullFlagNameConstant); readError != nil {
		return Options{}, nil, fmt.Errorf(flagReadingErrorTemplateConstant, pullFlagNameConstant, readError)
	}
	if options.Verbose, readError = flagSet.GetBool(verboseFlagNameConstant); readError != nil {
		return Options{}, nil, fmt.Errorf(flagReadingErrorTemplateConstant, verboseFlagNameConstant, readError)
	}
	if flagSet.Lookup(helpFlagNameConstant) != nil {
		if options.HelpRequested, readError = flagSet.GetBool(helpFlagNameConstant); readError != nil {
			return Options{}, nil, fmt.Errorf(flagReadingErrorTemplateConstant, helpFlagNameConstant, readError)
		}
	}

	return options, flagSet.Args(), nil
}

func findInvalidToken(flagSet *pflag.FlagSet, tokens []string) (string, bool) {
	for tokenIndex := 0; tokenIndex < len(tokens); tokenIndex++ {
		token := tokens[tokenIndex]
		if !isFlagShaped(token) {
			return "", false
		}

		flag, hasInlineValue := lookupFlag(flagSet, token)
		if flag == nil {
			return token, true
		}
		isSwitch := len(flag.NoOptDefVal) > 0
		if isSwitch && hasInlineValue {
			return token, true
		}
		if isSwitch || hasInlineValue {
			continue
		}
		if tokenIndex+1 >= len(tokens) {
			return token, true
		}
		tokenIndex++
	}
	return "", false
}

func isFlagShaped(token string) bool {
	return strings.HasPrefix(token, flagTokenPrefixConstant)
}

func lookupFlag(flagSet *pflag.FlagSet, token string) (*pflag.Flag, bool) {
	if strings.HasPrefix(token, longFlagTokenPrefixConstant) {
		flagName, _, hasInlineValue := strings.Cut(strings.TrimPrefix(token, longFlagTokenPrefixConstant), inlineValueSeparatorConstant)
		if len(flagName) == 0 {
			return nil, false
		}
		return flagSet.Lookup(flagName), hasInlineValue
	}
	if len(token) != singleShorthandTokenLengthConstant {
		return nil, false
	}
	return flagSet.ShorthandLookup(strings.TrimPrefix(token, flagTokenPrefixConstant)), false
}
