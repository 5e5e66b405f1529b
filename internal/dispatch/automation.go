package dispatch

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"unicode/utf8"

	"github.com/ashwch/jarvis/internal/intent"
)

type Arg struct {
	Key   string `json:"key"`
	Value string `json:"value"`
}

type Call struct {
	Action string `json:"action"`
	Args   []Arg  `json:"args,omitempty"`
}

func (c Call) Argv() []string {
	argv := make([]string, 0, len(c.Args)+1)
	argv = append(argv, c.Action)
	for _, arg := range c.Args {
		argv = append(argv, arg.Key+"="+arg.Value)
	}
	return argv
}

func (c Call) String() string {
	return strings.Join(c.Argv(), " ")
}

func CallFor(target string, cmd intent.ParsedCommand) Call {
	call := Call{Action: target + "." + cmd.ActionName()}
	if cmd.Action == nil {
		return call
	}
	for _, p := range cmd.Action.Params() {
		if p.Value != nil {
			call.Args = append(call.Args, Arg{Key: p.Name, Value: *p.Value})
		}
	}
	return call
}

type Automation interface {
	Run(ctx context.Context, call Call) (string, error)
}

type CommandAutomation struct {
	Command string
	Args    []string
}

func (a CommandAutomation) Run(ctx context.Context, call Call) (string, error) {
	if strings.TrimSpace(a.Command) == "" {
		return "", ErrNoAutomation
	}
	argv := append(append([]string{}, a.Args...), call.Argv()...)
	cmd := exec.CommandContext(ctx, a.Command, argv...)
	var stdout, stderr bytes.Buffer
	cmd.Stdout = &stdout
	cmd.Stderr = &stderr
	if err := cmd.Run(); err != nil {
		msg := strings.TrimSpace(stderr.String())
		msg = clip(msg, maxStderr)
		return "", fmt.Errorf("automation %s failed: %w; stderr=%s", call.Action, err, msg)
	}
	return strings.TrimSpace(stdout.String()), nil
}

func (a CommandAutomation) HealthCheck() error {
	if strings.TrimSpace(a.Command) == "" {
		return ErrNoAutomation
	}
	if _, err := exec.LookPath(a.Command); err != nil {
		return fmt.Errorf("automation helper not found in PATH: %s", a.Command)
	}
	return nil
}

const maxStderr = 400

func clip(s string, max int) string {
	if len(s) <= max {
		return s
	}
	cut := max
	for cut > 0 && !utf8.RuneStart(s[cut]) {
		cut--
	}
	return s[:cut] + "..."
}

type DryRun struct {
	Out io.Writer

	mu    sync.Mutex
	calls []Call
}

func (d *DryRun) Run(_ context.Context, call Call) (string, error) {
	d.mu.Lock()
	d.calls = append(d.calls, call)
	d.mu.Unlock()
	if d.Out != nil {
		fmt.Fprintf(d.Out, "(dry-run) %s\n", call)
	}
	return "", nil
}

func (d *DryRun) Calls() []Call {
	d.mu.Lock()
	defer d.mu.Unlock()
	return append([]Call(nil), d.calls...)
}
