package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ashwch/jarvis/internal/router"
	"github.com/ashwch/jarvis/internal/ui"
	"github.com/spf13/cobra"
)

func newRunCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "run <utterance>",
		Short: "Understand an utterance and carry it out",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runUtterance(cmd, a, strings.Join(args, " "))
		},
	}
}

func runUtterance(cmd *cobra.Command, a *app, text string) error {
	if err := a.load(); err != nil {
		return err
	}
	r, err := a.newRouter(a.terminalPrompt())
	if err != nil {
		return err
	}

	var result router.Result
	a.withLoader(func() {
		result = r.Route(routeContext(cmd), text)
	})
	if err := writeResult(a.stdout, result, a.flags.JSON); err != nil {
		return err
	}
	if choice := a.pickSuggestion(result); choice != "" {
		result = r.Route(routeContext(cmd), choice)
		if err := writeResult(a.stdout, result, a.flags.JSON); err != nil {
			return err
		}
	}
	if result.Status == router.StatusFailed {
		return errRouteFailed
	}
	return nil
}

func writeResult(w io.Writer, result router.Result, asJSON bool) error {
	if asJSON {
		encoded, err := json.MarshalIndent(result, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(encoded))
		return err
	}
	if result.Message != "" {
		fmt.Fprintln(w, result.Message)
	}
	if result.Provider != "" {
		fmt.Fprintf(w, "provider: %s\n", result.Provider)
	}
	if command := result.Data["command"]; command != "" && result.Status == router.StatusFallback {
		fmt.Fprintf(w, "command: %s\n", command)
	}
	return nil
}

func (a *app) pickSuggestion(result router.Result) string {
	if result.Status != router.StatusUnsupported || len(result.Suggestions) == 0 || a.flags.JSON {
		return ""
	}
	backend := a.uiBackend()
	if !ui.IsInteractive(backend) {
		return ""
	}
	choice, used, err := ui.Pick(backend, a.catalog.DidYouMean("?"), result.Suggestions)
	if err != nil {
		a.logger.Debug("suggestion picker unavailable", "error", err)
	}
	if !used {
		return ""
	}
	return strings.TrimSpace(choice)
}
