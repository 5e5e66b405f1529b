package main

import (
	"context"
	"errors"
	"time"

	"github.com/ashwch/jarvis/internal/bus"
	"github.com/ashwch/jarvis/internal/config"
	"github.com/ashwch/jarvis/internal/runtime"
	"github.com/ashwch/jarvis/internal/safety"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"
)

const busRetry = 2 * time.Second

func newServeCmd(a *app) *cobra.Command {
	var url, name string
	var watch bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Answer utterances from a websocket message bus",
		Long: "serve connects to the message bus and routes every utterance addressed to this\n" +
			"agent. It never prompts: risky actions are cancelled unless --yes is given.",
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if err := a.load(); err != nil {
				return err
			}
			cfg := a.config()
			if url == "" {
				url = cfg.Bus.URL
			}
			if name == "" {
				name = cfg.Bus.Name
			}
			r, err := a.newRouter(refusePrompt)
			if err != nil {
				return err
			}

			handle := func(ctx context.Context, text string) (string, string) {
				result := r.Route(ctx, text)
				return result.Message, string(result.Status)
			}

			g, ctx := errgroup.WithContext(routeContext(cmd))
			g.Go(func() error {
				return bus.Run(ctx, url, name, handle, busRetry, a.logger)
			})
			if watch {
				g.Go(func() error {
					return config.Watch(ctx, a.cfgPath, a.logger, func(next config.Config) {
						a.setConfig(next)
						if err := r.SetThreshold(next.Router.MinConfidence); err != nil {
							a.logger.Warn("threshold not applied", "error", err)
						}
						if mode, err := safety.ParseMode(next.Mode); err == nil {
							r.SetMode(mode)
						}
						a.logger.Info("config reloaded", "threshold", r.Threshold(), "mode", r.Mode())
					})
				})
			}
			err = g.Wait()
			a.logger.Info("bus stopped", "stats", r.Stats().String())
			if errors.Is(err, context.Canceled) {
				return nil
			}
			return err
		},
	}
	cmd.Flags().StringVar(&url, "url", "", "bus websocket url (default bus.url)")
	cmd.Flags().StringVar(&name, "name", "", "agent name on the bus (default bus.name)")
	cmd.Flags().BoolVar(&watch, "watch", true, "reload the config file when it changes")
	return cmd
}

func refusePrompt(string, safety.Risk) (bool, error) {
	return false, runtime.ErrNotInteractive
}
