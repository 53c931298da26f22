package cli

import (
	"encoding/json"
	"fmt"
	"os"

	"github.com/aura-studio/lambda-local/client"
	"github.com/aura-studio/lambda-local/event"
	"github.com/spf13/cobra"
	"github.com/tidwall/gjson"
)

var (
	invoke = struct {
		endpoint  string
		region    string
		eventFile string
		sets      []string
		query     string
		async     bool
		timeout   int
	}{}

	invokeCmd = &cobra.Command{
		Use:   "invoke <function-name>",
		Short: "Invoke a function on a running lambda-local server",
		Long: `Invoke a function through the Lambda Invoke API of a running lambda-local
server with the AWS SDK. The payload is printed to stdout and the tail of the
logs to stderr.`,
		Args: cobra.ExactArgs(1),
		RunE: invokeE,
	}
)

func init() {
	invokeCmd.Flags().StringVar(&invoke.endpoint, "endpoint", "", "Invoke API endpoint (default http://127.0.0.1:3001)")
	invokeCmd.Flags().StringVar(&invoke.region, "region", "", "region used to sign requests (default us-east-1)")
	invokeCmd.Flags().StringVarP(&invoke.eventFile, "event", "e", "", "event file (.json, .yaml) or sample:<name>")
	invokeCmd.Flags().StringArrayVar(&invoke.sets, "set", nil, "override an event field, as path=value")
	invokeCmd.Flags().StringVarP(&invoke.query, "query", "q", "", "print only this gjson path of the payload")
	invokeCmd.Flags().BoolVar(&invoke.async, "async", false, "use the Event invocation type and return immediately")
	invokeCmd.Flags().IntVarP(&invoke.timeout, "timeout", "t", 30, "client timeout in seconds")
}

func invokeE(cmd *cobra.Command, args []string) error {
	logger := newLogger("invoke")

	ev, err := event.Load(invoke.eventFile)
	if err != nil {
		return err
	}
	if ev, err = event.Apply(ev, invoke.sets); err != nil {
		return err
	}
	var payload []byte
	if ev != nil {
		if payload, err = json.Marshal(ev); err != nil {
			return err
		}
	}

	c, err := client.NewClient(cmd.Context(),
		client.WithFunctionName(args[0]),
		client.WithEndpoint(invoke.endpoint),
		client.WithRegion(invoke.region),
		client.WithDefaultTimeout(secondsToDuration(invoke.timeout)),
	)
	if err != nil {
		return err
	}

	if invoke.async {
		if err := c.Send(cmd.Context(), payload); err != nil {
			return err
		}
		logger.Info("invocation accepted", "function", args[0])
		return nil
	}

	rsp, err := c.Invoke(cmd.Context(), payload)
	if err != nil {
		return err
	}
	if rsp.Logs != "" {
		fmt.Fprint(os.Stderr, rsp.Logs)
	}

	out := string(rsp.Payload)
	if invoke.query != "" {
		if !gjson.Valid(out) {
			return fmt.Errorf("invoke: payload is not JSON, cannot apply --query")
		}
		out = gjson.Get(out, invoke.query).String()
	}
	fmt.Fprintln(cmd.OutOrStdout(), out)

	if rsp.Failed() {
		logger.Debug("function error", "function", args[0], "type", rsp.FunctionError)
		return &ExitError{Code: 1}
	}
	return nil
}
