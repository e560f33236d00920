// Command porter runs the Porter MCP gateway: a single MCP endpoint
// aggregating remote MCP servers and wrapped CLI tools behind namespaced
// tool names.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var (
	version   = "dev"
	buildDate = "unknown"
)

func main() {
	os.Exit(run())
}

// run builds and executes the root command, translating a returned error
// into an exit code: 0 on clean completion, 130 if the process was
// interrupted by SIGINT (see signal.go), 1 for everything else (config
// errors, unrecoverable startup failures).
func run() int {
	root := newRootCmd()
	if err := root.Execute(); err != nil {
		if err == errInterrupted {
			return 130
		}
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		return 1
	}
	return 0
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "porter",
		Short:         "Porter aggregates MCP servers and CLI tools behind one MCP endpoint",
		Version:       fmt.Sprintf("%s (built: %s)", version, buildDate),
		SilenceUsage:  true,
		SilenceErrors: true,
	}

	root.AddCommand(newServeCmd())
	root.AddCommand(newStdioCmd())
	root.AddCommand(newValidateCmd())

	return root
}
