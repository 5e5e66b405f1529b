package main

import (
	"encoding/json"
	"fmt"
	"io"
	"strings"

	"github.com/ashwch/jarvis/internal/intent"
	"github.com/charmbracelet/lipgloss"
	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"
)

func newParseCmd(a *app) *cobra.Command {
	var format string
	cmd := &cobra.Command{
		Use:   "parse <utterance>",
		Short: "Show how an utterance is understood, without running it",
		Args:  cobra.MinimumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			if a.flags.JSON {
				format = "json"
			}
			parsed := intent.NewParser().Parse(strings.Join(args, " "))
			return writeParsed(a.stdout, parsed, format)
		},
	}
	cmd.Flags().StringVarP(&format, "format", "f", "text", "output format: text, json or yaml")
	return cmd
}

func writeParsed(w io.Writer, parsed intent.ParsedCommand, format string) error {
	switch strings.ToLower(strings.TrimSpace(format)) {
	case "json":
		encoded, err := json.MarshalIndent(parsed, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(w, string(encoded))
		return err
	case "yaml", "yml":
		encoded, err := yaml.Marshal(parsed)
		if err != nil {
			return err
		}
		_, err = w.Write(encoded)
		return err
	case "", "text":
		fmt.Fprintf(w, "category:   %s\n", parsed.Category)
		fmt.Fprintf(w, "action:     %s\n", parsed.ActionName())
		if parsed.Action != nil {
			for _, p := range parsed.Action.Params() {
				value := "-"
				if p.Value != nil {
					value = fmt.Sprintf("%q", *p.Value)
				}
				fmt.Fprintf(w, "  %-12s %s\n", p.Name+":", value)
			}
		}
		fmt.Fprintf(w, "confidence: %.2f\n", parsed.Confidence)
		fmt.Fprintf(w, "fast_path:  %t\n", parsed.FastPath)
		return nil
	default:
		return fmt.Errorf("unknown format %q (expected text, json or yaml)", format)
	}
}

var (
	commandsTitleStyle   = lipgloss.NewStyle().Bold(true).Foreground(lipgloss.Color("45"))
	commandsExampleStyle = lipgloss.NewStyle().PaddingLeft(2)
	commandsMutedStyle   = lipgloss.NewStyle().Foreground(lipgloss.Color("245"))
)

func newCommandsCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:     "commands",
		Aliases: []string{"perintah"},
		Short:   "List the supported commands",
		Args:    cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			groups := intent.NewParser().SupportedCommands()
			if a.flags.JSON {
				encoded, err := json.MarshalIndent(groups, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(a.stdout, string(encoded))
				return err
			}
			_, err := fmt.Fprint(a.stdout, renderCommands(groups))
			return err
		},
	}
}

func renderCommands(groups []intent.CommandGroup) string {
	var b strings.Builder
	for i, group := range groups {
		if i > 0 {
			b.WriteString("\n")
		}
		b.WriteString(commandsTitleStyle.Render(group.Label))
		b.WriteString(" ")
		b.WriteString(commandsMutedStyle.Render("(" + string(group.Category) + ")"))
		b.WriteString("\n")
		for _, example := range group.Examples {
			b.WriteString(commandsExampleStyle.Render("• " + example))
			b.WriteString("\n")
		}
	}
	return b.String()
}
