package root

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"golang.org/x/term"

	"github.com/replicate/mget/pkg/cli"
	"github.com/replicate/mget/pkg/config"
	"github.com/replicate/mget/pkg/download"
	"github.com/replicate/mget/pkg/logging"
	"github.com/replicate/mget/pkg/optname"
	"github.com/replicate/mget/pkg/progress"
	"github.com/replicate/mget/pkg/version"
)

const rootLongDesc = `
mget

MGet downloads a list of files over HTTP into a single directory. Up to four files are fetched
at the same time while a progress bar for each one shows bytes transferred, percentage, speed,
time remaining and time elapsed.

Each URL is probed with a HEAD request before it is queued. The file is named after the last
path segment of the URL ("index.html" when there is none) and plain text responses get a ".txt"
suffix. Non-success status codes are shown next to the file name but the body is still saved.

Press Ctrl-C to stop: no new downloads are started and running ones stop after their current
chunk, leaving partial files on disk.
`

func GetCommand() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "mget [flags] <url> [url...]",
		Short: "mget",
		Long:  rootLongDesc,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return config.PersistentStartupProcessFlags()
		},
		RunE:    runRootCMD,
		Args:    cobra.ArbitraryArgs,
		Version: version.GetVersion(),
		Example: `  mget https://example.com/a.png https://example.com/readme
  mget -d downloads https://example.com/file.tar.gz`,
	}
	cmd.SetUsageTemplate(cli.UsageTemplate)
	err := config.AddRootPersistentFlags(cmd)
	if err != nil {
		fmt.Println(err)
		os.Exit(1)
	}
	return cmd
}

func runRootCMD(cmd *cobra.Command, args []string) error {
	if len(args) == 0 {
		return cmd.Help()
	}
	// After we run through the PreRun functions we want to silence usage from being printed
	// on all errors
	cmd.SilenceUsage = true

	dir := viper.GetString(optname.Directory)
	logger := logging.GetLogger()
	logger.Debug().
		Int("url_count", len(args)).
		Str("directory", dir).
		Msg("Initiating")

	if err := cli.EnsureDestinationDirectory(dir); err != nil {
		return err
	}

	opts := download.Options{
		ShutdownGrace: viper.GetDuration(optname.ShutdownGrace),
	}
	dispatcher := download.NewDispatcher(opts, newDisplay())
	return dispatcher.Download(cmd.Context(), args, dir)
}

// newDisplay draws progress bars when stdout is a terminal and falls back to log lines otherwise.
func newDisplay() progress.Display {
	if term.IsTerminal(int(os.Stdout.Fd())) {
		return progress.NewTerminalDisplay(os.Stdout)
	}
	return progress.NewLogDisplay()
}
