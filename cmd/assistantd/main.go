// Command assistantd runs the conversational assistant backend: an
// OpenAI-compatible HTTP front, a Redis-backed event stream, and a set of
// helper agents contributing context to every completion.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	root := &cobra.Command{
		Use:          "assistantd",
		Short:        "Conversational assistant backend",
		Version:      version,
		SilenceUsage: true,
	}
	root.AddCommand(newServeCmd())

	if err := root.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
