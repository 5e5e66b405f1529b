package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
)

var version = "dev"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	err := newRootCmd(os.Stdout, os.Stderr).ExecuteContext(ctx)
	stop()
	if err != nil {
		if !errors.Is(err, errRouteFailed) {
			fmt.Fprintln(os.Stderr, "jarvis:", err)
		}
		os.Exit(1)
	}
}

func newRootCmd(stdout, stderr io.Writer) *cobra.Command {
	a := newApp(stdout, stderr)

	root := &cobra.Command{
		Use:   "jarvis [utterance]",
		Short: "Indonesian voice and text assistant for Office and desktop tasks",
		Long: `jarvis understands short Indonesian commands such as "buka excel" or
"tambah sheet 'Laporan'" and carries them out. Arguments that are not a
subcommand are treated as an utterance, so "jarvis tambah slide" works
like "jarvis run tambah slide".`,
		Args:          cobra.ArbitraryArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		Version:       version,
		RunE: func(cmd *cobra.Command, args []string) error {
			if len(args) == 0 {
				return cmd.Help()
			}
			return runUtterance(cmd, a, strings.Join(args, " "))
		},
	}
	root.SetOut(stdout)
	root.SetErr(stderr)

	flags := root.PersistentFlags()
	flags.StringVar(&a.flags.LogLevel, "log-level", "", "log level: debug, info, warn or error")
	flags.BoolVar(&a.flags.DryRun, "dry-run", false, "show what would run without doing it")
	flags.BoolVarP(&a.flags.Yes, "yes", "y", false, "approve every confirmation")
	flags.BoolVar(&a.flags.JSON, "json", false, "print machine-readable output")
	flags.StringVar(&a.flags.Provider, "provider", "", "preferred fallback provider")
	flags.StringVar(&a.flags.UI, "ui", "", "prompt backend: auto, bubbletea, huh, tview or plain")
	flags.StringVar(&a.flags.Env, "env", "", "extra .env file to load before the defaults")
	flags.StringVar(&a.flags.Locale, "locale", "", "reply language: id or en")

	root.AddCommand(
		newParseCmd(a),
		newCommandsCmd(a),
		newRunCmd(a),
		newConfigCmd(a),
		newDoctorCmd(a),
		newStatsCmd(a),
		newServeCmd(a),
		newShellCmd(a),
		newVersionCmd(a),
	)
	return root
}

func newVersionCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Print the jarvis version",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			_, err := fmt.Fprintln(a.stdout, version)
			return err
		},
	}
}
