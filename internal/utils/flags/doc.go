// Package flags provides pflag helpers for flags restricted to a fixed set of choices.
package flags
