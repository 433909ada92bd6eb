// selward: system-wide text-selection monitor.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/selward/selward/internal/logging"
)

// Version is set at build time via -ldflags "-X main.Version=x.y.z".
var Version = "dev"

func main() {
	root := &cobra.Command{
		Use:   "selward",
		Short: "Monitor the system-wide text selection",
		Long: `selward watches the text the user highlights anywhere on screen and
exposes the most recent selection to local tools and remote subscribers.

Run "selward watch" to start the daemon. Use "selward get" and
"selward status" as CLI tools against a running daemon.

Config file search order (first found wins):
  /etc/selward/selward.toml
  $HOME/.config/selward/selward.toml
  path supplied via --config

All flags can be set via SELWARD_<FLAG> env vars or config-file keys.
See "selward watch --help" for the full flag reference.`,
		SilenceUsage: true,
	}

	root.AddCommand(
		newWatchCmd(),
		newGetCmd(),
		newStatusCmd(),
		newVersionCmd(),
	)

	if err := root.Execute(); err != nil {
		os.Exit(1)
	}
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print version information",
		Args:  cobra.NoArgs,
		Run: func(_ *cobra.Command, _ []string) {
			fmt.Printf("selward %s\n", Version)
		},
	}
}

// resolveLogging sets up the global slog logger after flags are parsed.
func resolveLogging(interactive bool, formatStr, levelStr string) {
	format := logging.ParseFormat(formatStr)
	level := logging.ParseLevel(levelStr)
	if levelStr == "" {
		if interactive {
			level = logging.ParseLevel("debug")
		} else {
			level = logging.ParseLevel("info")
		}
	}
	logging.Setup(format, level)
}
