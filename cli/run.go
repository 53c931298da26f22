package cli

import (
	"time"

	"github.com/aura-studio/lambda-local/dynamic"
	"github.com/aura-studio/lambda-local/event"
	"github.com/aura-studio/lambda-local/handler"
	"github.com/aura-studio/lambda-local/harness"
	"github.com/spf13/cobra"
)

type runFlags struct {
	file         string
	eventFile    string
	timeout      int // seconds
	handler      string
	functionName string
	memory       int
	sets         []string
}

var (
	flags = &runFlags{}

	runCmd = &cobra.Command{
		Use:   "run",
		Short: "Invoke a handler once and exit with its exit code",
		Long: `Invoke a handler once with an optional event.

The process exits 0 when the handler succeeds, reports through the callback or
times out, and 1 when it fails or panics.`,
		Args: cobra.NoArgs,
		RunE: runE,
	}
)

func init() {
	addRunFlags(runCmd)
}

func addRunFlags(cmd *cobra.Command) {
	cmd.Flags().StringVarP(&flags.file, "file", "f", "", "handler source: binary, .so plugin, dynamic://<package>/<version> or registry:<name>")
	cmd.Flags().StringVarP(&flags.eventFile, "event", "e", "", "event file (.json, .yaml) or sample:<name>")
	cmd.Flags().IntVarP(&flags.timeout, "timeout", "t", 0, "timeout in seconds (default 3)")
	cmd.Flags().StringVar(&flags.handler, "handler", "", "handler name (default \"handler\")")
	cmd.Flags().StringVar(&flags.functionName, "function-name", "", "function name reported to the handler")
	cmd.Flags().IntVar(&flags.memory, "memory", 0, "memory limit in MB reported to the handler")
	cmd.Flags().StringArrayVar(&flags.sets, "set", nil, "override an event field, as path=value")
}

// harnessOptions layers the config file and the flags.
func harnessOptions(cmd *cobra.Command) []harness.Option {
	var opts []harness.Option
	if cfgFile != "" {
		opts = append(opts, harness.WithConfigFile(cfgFile))
	} else {
		opts = append(opts, harness.WithOptionalConfigFile())
	}

	if cmd.Flags().Changed("file") {
		opts = append(opts, harness.WithFile(flags.file))
	}
	if cmd.Flags().Changed("event") {
		opts = append(opts, harness.WithEvent(flags.eventFile))
	}
	if cmd.Flags().Changed("timeout") {
		opts = append(opts, harness.WithTimeout(time.Duration(flags.timeout)*time.Second))
	}
	if cmd.Flags().Changed("handler") {
		opts = append(opts, harness.WithHandler(flags.handler))
	}
	if cmd.Flags().Changed("function-name") {
		opts = append(opts, harness.WithFunctionName(flags.functionName))
	}
	if cmd.Flags().Changed("memory") {
		opts = append(opts, harness.WithMemoryLimit(flags.memory))
	}
	if debugMode {
		opts = append(opts, harness.WithDebugMode(true))
	}
	return opts
}

func runE(cmd *cobra.Command, args []string) error {
	logger := newLogger("lambda-local")

	var engine *harness.Engine
	opts := harnessOptions(cmd)
	if err := doSafe(func() {
		engine = harness.NewEngine(append(opts, harness.WithLogger(logger.WithPrefix("harness")))...)
	}); err != nil {
		return err
	}

	ev, err := event.Load(engine.Settings.Event)
	if err != nil {
		return err
	}
	if ev, err = event.Apply(ev, flags.sets); err != nil {
		return err
	}

	loader := handler.NewLoader(
		handler.WithLogger(logger.WithPrefix("handler")),
		handler.WithDebugMode(engine.DebugMode),
		handler.WithEnv(engine.Environment()),
		handler.WithDynamicOptions(dynamicConfig()),
	)
	defer loader.Close()

	h, err := loader.Load(cmd.Context(), engine.Settings)
	if err != nil {
		return err
	}

	result := engine.Run(cmd.Context(), h, ev)
	logger.Debug("run finished", "request_id", result.RequestID, "kind", result.Kind, "duration", result.Duration)
	if result.ExitCode != 0 {
		return &ExitError{Code: result.ExitCode}
	}
	return nil
}

// dynamicConfig reads the dynamic: section of --config when it is given and
// dynamic.yaml otherwise.
func dynamicConfig() dynamic.Option {
	if cfgFile != "" {
		return dynamic.WithConfigSectionFile(cfgFile, "dynamic")
	}
	return dynamic.WithOptionalConfigFile()
}
