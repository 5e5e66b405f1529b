package main

import (
	"encoding/json"
	"fmt"
	"os"
	goruntime "runtime"

	"github.com/ashwch/jarvis/internal/appdirs"
	"github.com/ashwch/jarvis/internal/config"
	"github.com/ashwch/jarvis/internal/dispatch"
	"github.com/ashwch/jarvis/internal/provider"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const doctorConcurrency = 4

type check struct {
	Key    string `json:"key"`
	Value  string `json:"value"`
	Status string `json:"status"`
}

func newDoctorCmd(a *app) *cobra.Command {
	return &cobra.Command{
		Use:   "doctor",
		Short: "Check config, providers and the automation helper",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			checks := runChecks(a.cfgPath, a.config(), provider.NewRegistry())
			if a.flags.JSON {
				encoded, err := json.MarshalIndent(checks, "", "  ")
				if err != nil {
					return err
				}
				_, err = fmt.Fprintln(a.stdout, string(encoded))
				return err
			}
			fmt.Fprintln(a.stdout, "doctor checks:")
			for _, c := range checks {
				fmt.Fprintf(a.stdout, "  %-8s %-20s %s\n", c.Status, c.Key, c.Value)
			}
			return nil
		},
	}
}

func runChecks(cfgPath string, cfg config.Config, registry *provider.Registry) []check {
	names := cfg.ProviderNames()
	tasks := []func() check{
		func() check { return check{Key: "os", Value: goruntime.GOOS, Status: "ok"} },
		func() check { return check{Key: "config_path", Value: cfgPath, Status: statusPath(cfgPath)} },
		func() check {
			dir, err := appdirs.StateDir()
			if err != nil {
				return check{Key: "state_dir", Value: err.Error(), Status: "error"}
			}
			return check{Key: "state_dir", Value: dir, Status: statusPath(dir)}
		},
		func() check {
			root, err := cfg.FilesRoot()
			if err != nil {
				return check{Key: "files_root", Value: err.Error(), Status: "error"}
			}
			return check{Key: "files_root", Value: root, Status: statusPath(root)}
		},
		func() check { return automationCheck(cfg) },
	}
	for _, name := range names {
		tasks = append(tasks, func() check { return providerCheck(registry, name, cfg.Providers[name]) })
	}

	results := make([]check, len(tasks))
	var g errgroup.Group
	g.SetLimit(doctorConcurrency)
	for i, task := range tasks {
		g.Go(func() error {
			results[i] = task()
			return nil
		})
	}
	_ = g.Wait()
	return results
}

func automationCheck(cfg config.Config) check {
	if cfg.Automation.Command == "" {
		return check{Key: "automation", Value: "automation.command is not set", Status: "missing"}
	}
	helper := dispatch.CommandAutomation{Command: cfg.Automation.Command, Args: cfg.Automation.Args}
	if err := helper.HealthCheck(); err != nil {
		return check{Key: "automation", Value: err.Error(), Status: "error"}
	}
	return check{Key: "automation", Value: cfg.Automation.Command, Status: "ok"}
}

func providerCheck(registry *provider.Registry, name string, providerCfg config.ProviderConfig) check {
	c := check{
		Key:   "provider." + name,
		Value: fmt.Sprintf("type=%s model=%s", firstNonEmpty(providerCfg.Type, config.ProviderTypeCommand), providerCfg.Model),
	}
	if !providerCfg.IsEnabled() {
		c.Status = "disabled"
		return c
	}
	if err := registry.Check(name, providerCfg); err != nil {
		c.Status = "error"
		c.Value = err.Error()
		return c
	}
	c.Status = "ok"
	return c
}

func statusPath(path string) string {
	if _, err := os.Stat(path); err != nil {
		if os.IsNotExist(err) {
			return "missing"
		}
		return "error"
	}
	return "ok"
}

func firstNonEmpty(values ...string) string {
	for _, v := range values {
		if v != "" {
			return v
		}
	}
	return ""
}
