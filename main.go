// Package main is the entry point for the jiradesk CLI application.
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"

	"github.com/danielolaszy/jiradesk/cmd"
	"github.com/danielolaszy/jiradesk/internal/logging"
)

const appName = "jiradesk"

// main is the entry point of the application.
// It executes the root command and handles any errors that occur.
func main() {
	level := logging.LevelFromEnv()
	if logFile, err := logging.OpenLogFile(appName); err == nil {
		defer logFile.Close()
		logging.SetupLogger(io.MultiWriter(os.Stderr, logFile), level)
	} else {
		logging.Warn("file logging disabled", "error", err)
	}

	logging.Debug("starting jiradesk", "version", "1.0.0", "log_level", level)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := cmd.Execute(ctx); err != nil {
		logging.Debug("command execution failed", "error", err)
		fmt.Fprintln(os.Stderr, err)
		stop()
		os.Exit(1)
	}
}
