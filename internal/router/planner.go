package router

import (
	"context"

	"github.com/ashwch/jarvis/internal/config"
	"github.com/ashwch/jarvis/internal/provider"
)

type Planner interface {
	Plan(ctx context.Context, req provider.Request) (provider.Resolution, string, error)
}

type PlannerFunc func(ctx context.Context, req provider.Request) (provider.Resolution, string, error)

func (f PlannerFunc) Plan(ctx context.Context, req provider.Request) (provider.Resolution, string, error) {
	return f(ctx, req)
}

// ServicePlanner asks the configured providers in order. Config is read on
// every call so reloaded provider settings apply to the next utterance.
type ServicePlanner struct {
	Service   *provider.Service
	Config    func() config.Config
	Preferred string
}

func (p ServicePlanner) Plan(ctx context.Context, req provider.Request) (provider.Resolution, string, error) {
	cfg := config.Default()
	if p.Config != nil {
		cfg = p.Config()
	}
	return p.Service.Resolve(ctx, cfg, req, p.Preferred)
}
