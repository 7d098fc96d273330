package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"syscall"

	"github.com/temirov/lazypush/cmd/cli"
	"github.com/temirov/lazypush/internal/lazypush"
)

const (
	exitErrorTemplateConstant = "%v\n"
	failureExitCodeConstant   = 1
)

// main executes the lazypush command-line application.
func main() {
	executionContext, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	executionError := cli.Execute(executionContext)
	stop()

	if executionError != nil {
		if !lazypush.IsReported(executionError) {
			fmt.Fprintf(os.Stderr, exitErrorTemplateConstant, executionError)
		}
		os.Exit(failureExitCodeConstant)
	}
}
