// Package cli constructs the lazypush command-line interface. It wires the
// lazypush Cobra command to the Viper configuration loader and the zap logger
// factory, and exposes Execute for the program entrypoint.
package cli
