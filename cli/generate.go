package cli

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"

	"github.com/aura-studio/lambda-local/event"
	"github.com/spf13/cobra"
)

var (
	generateSets []string

	generateCmd = &cobra.Command{
		Use:   "generate-event <name>",
		Short: "Print a sample event",
		Long: `Print a sample event built from the aws-lambda-go event types.

Available samples: ` + strings.Join(event.Names(), ", "),
		Args:      cobra.ExactArgs(1),
		ValidArgs: event.Names(),
		RunE:      generateE,
	}
)

func init() {
	generateCmd.Flags().StringArrayVar(&generateSets, "set", nil, "override a field, as path=value")
}

func generateE(cmd *cobra.Command, args []string) error {
	doc, err := event.Load(event.SamplePrefix + args[0])
	if err != nil {
		return err
	}
	if doc, err = event.Apply(doc, generateSets); err != nil {
		return err
	}
	b, err := json.MarshalIndent(doc, "", "  ")
	if err != nil {
		return err
	}
	fmt.Fprintln(cmd.OutOrStdout(), string(b))
	return nil
}

func secondsToDuration(s int) time.Duration {
	return time.Duration(s) * time.Second
}
