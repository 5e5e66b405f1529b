package provider

import (
	"context"
	"errors"
	"fmt"

	"github.com/ashwch/jarvis/internal/config"
	"github.com/ashwch/jarvis/internal/session"
)

var ErrNoProvider = errors.New("no fallback provider available")

type Hint struct {
	Category   string  `json:"category"`
	Action     string  `json:"action"`
	Confidence float64 `json:"confidence"`
}

type Request struct {
	Utterance string
	Locale    string
	Mode      string
	Model     string
	Hint      Hint
	// Supported maps category labels to example utterances.
	Supported map[string][]string
	Session   session.Session
}

type ToolCall struct {
	Name      string            `json:"name"`
	Arguments map[string]string `json:"arguments"`
}

type Resolution struct {
	Reply      string     `json:"reply"`
	Command    string     `json:"command"`
	Confidence float64    `json:"confidence"`
	ToolCalls  []ToolCall `json:"tool_calls"`
}

type Adapter interface {
	Name() string
	Type() string
	Resolve(ctx context.Context, req Request) (Resolution, error)
}

type HealthChecker interface {
	HealthCheck() error
}

type Factory func(name string, cfg config.ProviderConfig) (Adapter, error)

type Registry struct {
	factories map[string]Factory
}

func NewRegistry() *Registry {
	r := &Registry{factories: map[string]Factory{}}
	r.Register(config.ProviderTypeCommand, NewCommandAdapter)
	r.Register(config.ProviderTypeOpenAI, NewOpenAIAdapter)
	r.Register(config.ProviderTypeOffline, NewOfflineAdapter)
	return r
}

func (r *Registry) Register(providerType string, factory Factory) {
	if r.factories == nil {
		r.factories = map[string]Factory{}
	}
	r.factories[providerType] = factory
}

func (r *Registry) Build(name string, cfg config.ProviderConfig) (Adapter, error) {
	providerType := cfg.Type
	if providerType == "" {
		providerType = config.ProviderTypeCommand
	}
	factory, ok := r.factories[providerType]
	if !ok {
		return nil, fmt.Errorf("unsupported provider type: %s", providerType)
	}
	return factory(name, cfg)
}

func (r *Registry) Validate(cfg config.Config) []error {
	issues := []error{}
	for _, name := range cfg.ProviderNames() {
		providerCfg := cfg.Providers[name]
		if !providerCfg.IsEnabled() {
			continue
		}
		if err := r.Check(name, providerCfg); err != nil {
			issues = append(issues, err)
		}
	}
	return issues
}

func (r *Registry) Check(name string, cfg config.ProviderConfig) error {
	adapter, err := r.Build(name, cfg)
	if err != nil {
		return fmt.Errorf("provider %q invalid: %w", name, err)
	}
	if checker, ok := adapter.(HealthChecker); ok {
		if err := checker.HealthCheck(); err != nil {
			return fmt.Errorf("provider %q health check failed: %w", name, err)
		}
	}
	return nil
}
