// Package cli contains the lambda-local commands.
package cli

import (
	"context"
	"errors"
	"fmt"
	"os"
	"runtime/debug"

	"github.com/charmbracelet/fang"
	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
)

var (
	// Version is the semantic version (set via -ldflags).
	Version = "dev"

	cfgFile   string
	debugMode bool

	exit = os.Exit

	rootCmd = &cobra.Command{
		Use:   "lambda-local",
		Short: "Run Lambda handlers locally",
		Long: `lambda-local runs a Lambda handler on this machine with a synthesized
invocation context, a timeout and the exit codes the platform would produce.

Handlers come from the static registry, Go plugins (.so), dynamic packages
(dynamic://<package>/<version>) or compiled Lambda binaries.

Examples:
  lambda-local -f ./bin/orders -e event.json -t 3
  lambda-local run -f dynamic://orders/v1 --handler create -e sample:sqs
  lambda-local serve -f ./bin/orders
  lambda-local invoke orders -e event.json --query body`,
		SilenceUsage: true,
	}
)

// ExitError carries the exit code of a finished invocation.
type ExitError struct {
	Code int
}

func (e *ExitError) Error() string {
	return fmt.Sprintf("exit status %d", e.Code)
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default is lambda-local.yaml or .lambda-local/config.yaml)")
	rootCmd.PersistentFlags().BoolVar(&debugMode, "debug", false, "log lifecycle events to stderr")

	addRunFlags(rootCmd)
	rootCmd.RunE = runE

	rootCmd.AddCommand(runCmd)
	rootCmd.AddCommand(serveCmd)
	rootCmd.AddCommand(invokeCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(versionCmd)
}

func versionString() string {
	if Version != "dev" {
		return Version
	}
	if info, ok := debug.ReadBuildInfo(); ok && info.Main.Version != "" && info.Main.Version != "(devel)" {
		return info.Main.Version
	}
	return "dev (built from source)"
}

func newLogger(prefix string) *log.Logger {
	logger := log.NewWithOptions(os.Stderr, log.Options{Prefix: prefix})
	if debugMode {
		logger.SetLevel(log.DebugLevel)
	}
	return logger
}

// doSafe turns panics from the config helpers into errors.
func doSafe(f func()) (err error) {
	defer func() {
		if v := recover(); v != nil {
			err = fmt.Errorf("panic: %v", v)
		}
	}()

	f()

	return nil
}

// Execute runs the root command and exits with the invocation's exit code.
func Execute() {
	if err := fang.Execute(
		context.Background(),
		rootCmd,
		fang.WithVersion(versionString()),
		fang.WithNotifySignal(os.Interrupt),
	); err != nil {
		var exitErr *ExitError
		if errors.As(err, &exitErr) {
			exit(exitErr.Code)
			return
		}
		exit(1)
	}
}
