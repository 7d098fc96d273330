// Package ui renders command lifecycle events for people reading the console log.
//
// ConsoleCommandEventLogger implements execshell.CommandEventObserver and
// writes a shell-transcript style line for every git invocation lazypush makes.
package ui
