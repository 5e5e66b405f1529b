package dispatch

import (
	"context"
	"errors"
	"fmt"
	"log/slog"
	"strings"
	"sync"

	"github.com/ashwch/jarvis/internal/intent"
	"github.com/ashwch/jarvis/internal/session"
)

var (
	ErrUnknownAction    = errors.New("unknown action")
	ErrNotAllowed       = errors.New("action not allowed")
	ErrMissingParameter = errors.New("missing parameter")
	ErrNoAutomation     = errors.New("no automation helper configured")
)

type Outcome struct {
	Summary string            `json:"summary"`
	Data    map[string]string `json:"data,omitempty"`
}

type Handler interface {
	Handle(ctx context.Context, cmd intent.ParsedCommand, s session.Session) (Outcome, error)
}

type HandlerFunc func(ctx context.Context, cmd intent.ParsedCommand, s session.Session) (Outcome, error)

func (f HandlerFunc) Handle(ctx context.Context, cmd intent.ParsedCommand, s session.Session) (Outcome, error) {
	return f(ctx, cmd, s)
}

type Dispatcher struct {
	mu       sync.RWMutex
	handlers map[intent.Category]Handler
	logger   *slog.Logger
}

func New(logger *slog.Logger) *Dispatcher {
	if logger == nil {
		logger = slog.Default()
	}
	return &Dispatcher{handlers: map[intent.Category]Handler{}, logger: logger}
}

func (d *Dispatcher) Register(category intent.Category, handler Handler) {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.handlers[category] = handler
}

func (d *Dispatcher) Handles(category intent.Category) bool {
	d.mu.RLock()
	defer d.mu.RUnlock()
	_, ok := d.handlers[category]
	return ok
}

func (d *Dispatcher) Dispatch(ctx context.Context, cmd intent.ParsedCommand, s session.Session) (Outcome, error) {
	if cmd.Action == nil || cmd.ActionName() == intent.ActionUnknown || !cmd.Category.Known() {
		return Outcome{}, fmt.Errorf("%w: %q", ErrUnknownAction, cmd.Original)
	}

	d.mu.RLock()
	handler, ok := d.handlers[cmd.Category]
	d.mu.RUnlock()
	if !ok {
		return Outcome{}, fmt.Errorf("%w: no handler for %s", ErrUnknownAction, cmd.Category)
	}

	d.logger.Debug("dispatching", "category", string(cmd.Category), "action", cmd.ActionName())
	outcome, err := handler.Handle(ctx, cmd, s)
	if err != nil {
		return Outcome{}, fmt.Errorf("%s: %w", cmd.ActionName(), err)
	}
	if outcome.Summary == "" {
		outcome.Summary = Describe(cmd)
	}
	return outcome, nil
}

func Describe(cmd intent.ParsedCommand) string {
	if cmd.Action == nil {
		return intent.ActionUnknown
	}
	parts := []string{}
	for _, p := range cmd.Action.Params() {
		if p.Value == nil {
			continue
		}
		parts = append(parts, fmt.Sprintf("%s=%q", p.Name, *p.Value))
	}
	if len(parts) == 0 {
		return cmd.Action.Name()
	}
	return cmd.Action.Name() + "(" + strings.Join(parts, ", ") + ")"
}

func requireParam(cmd intent.ParsedCommand, name string) (string, error) {
	value, ok := intent.ParamValue(cmd.Action, name)
	if !ok || strings.TrimSpace(value) == "" {
		return "", fmt.Errorf("%w: %s", ErrMissingParameter, name)
	}
	return value, nil
}
