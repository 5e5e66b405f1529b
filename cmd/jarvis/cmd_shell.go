package main

import (
	"context"
	"errors"

	"github.com/ashwch/jarvis/internal/safety"
	"github.com/ashwch/jarvis/internal/ui"
	"github.com/spf13/cobra"
)

func newShellCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "shell",
		Aliases: []string{"chat"},
		Short:   "Open an interactive prompt",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			if !isTerminal(a.stdout) {
				return errors.New("shell needs an interactive terminal; pass the utterance as arguments instead")
			}

			var shell *ui.Shell
			prompt := func(summary string, risk safety.Risk) (bool, error) {
				return shell.Confirm(ui.Prompt{Summary: summary, Risk: string(risk)})
			}
			r, err := a.newRouter(prompt)
			if err != nil {
				return err
			}
			shell = ui.NewShell(routeContext(cmd), ui.ShellOptions{
				Title:       "jarvis",
				Placeholder: "buka excel, tambah slide, tutup jendela ...",
				Loader:      a.catalog.LoaderLine,
				Route: func(ctx context.Context, text string) ui.Reply {
					result := r.Route(ctx, text)
					return ui.Reply{Text: result.Message, Status: string(result.Status)}
				},
			})
			if err := shell.Run(); err != nil {
				return err
			}
			a.logger.Debug("shell closed", "stats", r.Stats().String())
			return nil
		},
	}
}
