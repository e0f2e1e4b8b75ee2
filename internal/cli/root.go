package cli

import (
	"context"
	"io"

	"github.com/spf13/cobra"
)

// Execute runs the costgraph CLI with args and returns an error if the
// command fails. Logs go to stderr; --verbose (-v) switches to debug level
// and logs pipeline, cache, HTTP and animation events.
//
//	func main() {
//	    if err := cli.Execute(ctx, os.Args[1:], os.Stderr); err != nil {
//	        os.Exit(1)
//	    }
//	}
func Execute(ctx context.Context, args []string, stderr io.Writer) error {
	var verbose bool

	c := New(stderr, LogInfo)
	root := c.RootCommand()
	root.SetArgs(args)
	root.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "enable verbose logging")

	root.PersistentPreRunE = func(cmd *cobra.Command, args []string) error {
		if verbose {
			c.SetLogLevel(LogDebug)
			registerLogHooks(c.Logger)
		}
		return nil
	}

	return root.ExecuteContext(ctx)
}
