package cmd

import (
	"context"

	"github.com/spf13/cobra"

	"github.com/replicate/mget/cmd/root"
)

func GetRootCommand() *cobra.Command {
	return root.GetCommand()
}

// Execute runs the root command with args. A leading -h/--help prints usage and then still
// downloads whatever URLs follow it.
func Execute(ctx context.Context, args []string) error {
	rootCMD := GetRootCommand()
	if helpFirst(args) {
		if err := rootCMD.Help(); err != nil {
			return err
		}
		args = args[1:]
		if len(args) == 0 {
			return nil
		}
		rootCMD = GetRootCommand()
	}
	rootCMD.SetArgs(args)
	return rootCMD.ExecuteContext(ctx)
}

func helpFirst(args []string) bool {
	return len(args) > 0 && (args[0] == "-h" || args[0] == "--help")
}
