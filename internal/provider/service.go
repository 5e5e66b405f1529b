package provider

import (
	"context"
	"fmt"
	"math"
	"strings"
	"time"

	"github.com/ashwch/jarvis/internal/config"
)

const DefaultTimeout = 90 * time.Second

type Service struct {
	registry *Registry
	timeout  time.Duration
}

func NewService(registry *Registry) *Service {
	if registry == nil {
		registry = NewRegistry()
	}
	return &Service{registry: registry, timeout: DefaultTimeout}
}

func (s *Service) WithTimeout(d time.Duration) *Service {
	clone := *s
	clone.timeout = d
	return &clone
}

func (s *Service) Resolve(ctx context.Context, cfg config.Config, req Request, preferredProvider string) (Resolution, string, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	order := providerOrder(cfg, preferredProvider)
	if len(order) == 0 {
		return Resolution{}, "", fmt.Errorf("%w: no providers configured", ErrNoProvider)
	}

	issues := make([]string, 0, len(order))
	for _, name := range order {
		providerCfg := cfg.Providers[name]
		if !providerCfg.IsEnabled() {
			continue
		}

		adapter, err := s.registry.Build(name, providerCfg)
		if err != nil {
			issues = append(issues, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		if checker, ok := adapter.(HealthChecker); ok {
			if err := checker.HealthCheck(); err != nil {
				issues = append(issues, fmt.Sprintf("%s: %v", name, err))
				continue
			}
		}

		providerReq := req
		providerReq.Model = resolveModel(providerCfg, req.Model)

		providerCtx, cancel := timeoutContext(ctx, s.timeout)
		resolution, err := adapter.Resolve(providerCtx, providerReq)
		cancel()
		if err != nil {
			if ctx.Err() != nil {
				return Resolution{}, "", ctx.Err()
			}
			issues = append(issues, fmt.Sprintf("%s: %v", name, err))
			continue
		}
		return normalizeResolution(resolution), name, nil
	}

	if len(issues) == 0 {
		return Resolution{}, "", fmt.Errorf("%w: every provider is disabled", ErrNoProvider)
	}
	return Resolution{}, "", fmt.Errorf("all providers failed: %s", strings.Join(issues, " | "))
}

func providerOrder(cfg config.Config, preferredProvider string) []string {
	seen := map[string]struct{}{}
	order := make([]string, 0, len(cfg.Providers))

	add := func(name string) {
		name = strings.TrimSpace(strings.ToLower(name))
		if name == "" || name == "auto" {
			return
		}
		if _, ok := cfg.Providers[name]; !ok {
			return
		}
		if _, ok := seen[name]; ok {
			return
		}
		seen[name] = struct{}{}
		order = append(order, name)
	}

	add(preferredProvider)
	add(cfg.Provider)
	add("openai")
	add("claude")
	add("codex")
	add("offline")

	for _, name := range cfg.ProviderNames() {
		add(name)
	}
	return order
}

func resolveModel(providerCfg config.ProviderConfig, requested string) string {
	if model := strings.TrimSpace(requested); model != "" {
		return model
	}
	return strings.TrimSpace(providerCfg.Model)
}

func normalizeResolution(in Resolution) Resolution {
	out := in
	out.Reply = strings.TrimSpace(out.Reply)
	out.Command = strings.Join(strings.Fields(out.Command), " ")
	if math.IsNaN(out.Confidence) || out.Confidence < 0 {
		out.Confidence = 0
	}
	if out.Confidence > 1 {
		out.Confidence = 1
	}

	calls := make([]ToolCall, 0, len(out.ToolCalls))
	for _, call := range out.ToolCalls {
		call.Name = strings.TrimSpace(call.Name)
		if call.Name == "" {
			continue
		}
		calls = append(calls, call)
	}
	out.ToolCalls = calls
	return out
}

func timeoutContext(parent context.Context, d time.Duration) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	if d <= 0 {
		d = DefaultTimeout
	}
	return context.WithTimeout(parent, d)
}
