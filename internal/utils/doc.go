// Package utils exposes the ambient helpers shared by the lazypush command.
//
// ConfigurationLoader layers embedded defaults, configuration files, and
// LAZYPUSH_ environment variables through Viper. LoggerFactory builds zap
// loggers with an optional rotating file sink. FlushingWriter keeps status
// output unbuffered, and CommandContextAccessor carries run metadata through
// the command context.
package utils
