package main

import (
	"encoding/json"
	"fmt"

	"github.com/ashwch/jarvis/internal/config"
	"github.com/pelletier/go-toml/v2"
	"github.com/spf13/cobra"
)

func newConfigCmd(a *app) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "config",
		Short: "Show or change settings",
	}
	cmd.AddCommand(
		&cobra.Command{
			Use:   "show",
			Short: "Print the effective settings",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.load(); err != nil {
					return err
				}
				return writeConfig(a, a.config())
			},
		},
		&cobra.Command{
			Use:   "path",
			Short: "Print the config file location",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.load(); err != nil {
					return err
				}
				_, err := fmt.Fprintln(a.stdout, a.cfgPath)
				return err
			},
		},
		&cobra.Command{
			Use:   "get <key>",
			Short: "Print one setting, e.g. router.min_confidence",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.load(); err != nil {
					return err
				}
				value, err := a.config().Get(args[0])
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(a.stdout, value)
				return err
			},
		},
		&cobra.Command{
			Use:   "set <key> <value>",
			Short: "Change one setting and save it",
			Args:  cobra.ExactArgs(2),
			RunE: func(cmd *cobra.Command, args []string) error {
				if err := a.load(); err != nil {
					return err
				}
				cfg := a.config()
				if err := cfg.Set(args[0], args[1]); err != nil {
					return fmt.Errorf("invalid config change %s=%s: %w", args[0], args[1], err)
				}
				if err := cfg.Validate(); err != nil {
					return err
				}
				if err := config.Save(a.cfgPath, cfg); err != nil {
					return fmt.Errorf("could not save config: %w", err)
				}
				a.setConfig(cfg)
				value, _ := cfg.Get(args[0])
				_, err := fmt.Fprintf(a.stdout, "saved %s=%s\nconfig: %s\n", args[0], value, a.cfgPath)
				return err
			},
		},
	)
	return cmd
}

func writeConfig(a *app, cfg config.Config) error {
	if a.flags.JSON {
		encoded, err := json.MarshalIndent(cfg, "", "  ")
		if err != nil {
			return err
		}
		_, err = fmt.Fprintln(a.stdout, string(encoded))
		return err
	}
	encoded, err := toml.Marshal(cfg)
	if err != nil {
		return err
	}
	if _, err := a.stdout.Write(encoded); err != nil {
		return err
	}
	_, err = fmt.Fprintf(a.stdout, "\n# config: %s\n", a.cfgPath)
	return err
}
