package cli

import (
	"time"

	"github.com/aura-studio/lambda-local/dynamic"
	"github.com/aura-studio/lambda-local/server"
	"github.com/spf13/cobra"
)

var (
	serve = struct {
		address string
		file    string
		handler string
		timeout int
		memory  int
	}{}

	serveCmd = &cobra.Command{
		Use:   "serve",
		Short: "Serve handlers through the Lambda Invoke API",
		Long: `Serve handlers on POST /2015-03-31/functions/{name}/invocations so AWS SDK
clients can invoke them locally.

Functions are read from server.yaml. Names that are not configured run the
handler given with --file and --handler.`,
		Args: cobra.NoArgs,
		RunE: serveE,
	}
)

func init() {
	serveCmd.Flags().StringVar(&serve.address, "address", "", "listen address (default 127.0.0.1:3001)")
	serveCmd.Flags().StringVarP(&serve.file, "file", "f", "", "default handler source")
	serveCmd.Flags().StringVar(&serve.handler, "handler", "handler", "default handler name")
	serveCmd.Flags().IntVarP(&serve.timeout, "timeout", "t", 3, "default timeout in seconds")
	serveCmd.Flags().IntVar(&serve.memory, "memory", 0, "default memory limit in MB")
}

func serveOptions(cmd *cobra.Command) []server.ServeOption {
	opts := []server.ServeOption{server.WithLogger(newLogger("server"))}
	if cfgFile != "" {
		// the dynamic: section of the file replaces dynamic.yaml
		opts = append(opts, server.WithServeConfigFile(cfgFile))
	} else {
		opts = append(opts, dynamic.WithOptionalConfigFile(), server.WithDefaultServeConfig())
	}

	opts = append(opts, server.WithAddress(serve.address))
	if debugMode {
		opts = append(opts, server.WithDebugMode(true))
	}
	if cmd.Flags().Changed("file") || cmd.Flags().Changed("handler") {
		opts = append(opts, server.WithDefaultFunction(server.Function{
			File:            serve.file,
			Handler:         serve.handler,
			Timeout:         time.Duration(serve.timeout) * time.Second,
			MemoryLimitInMB: serve.memory,
		}))
	}
	return opts
}

func serveE(cmd *cobra.Command, args []string) error {
	var opts []server.ServeOption
	if err := doSafe(func() { opts = serveOptions(cmd) }); err != nil {
		return err
	}

	errCh := make(chan error, 1)
	go func() {
		errCh <- doServe(opts)
	}()

	select {
	case err := <-errCh:
		return err
	case <-cmd.Context().Done():
		if err := server.Close(); err != nil {
			return err
		}
		return <-errCh
	}
}

func doServe(opts []server.ServeOption) (err error) {
	if panicErr := doSafe(func() { err = server.Serve(opts...) }); panicErr != nil {
		return panicErr
	}
	return err
}
