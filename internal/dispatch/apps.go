package dispatch

import (
	"context"
	"fmt"
	"path/filepath"
	"strings"

	"github.com/ashwch/jarvis/internal/intent"
	"github.com/ashwch/jarvis/internal/session"
)

// AppHandler opens, installs and uninstalls applications. An empty
// allowlist allows opening anything and installing nothing.
type AppHandler struct {
	Automation Automation
	Allowlist  []string
}

func (h AppHandler) Handle(ctx context.Context, cmd intent.ParsedCommand, _ session.Session) (Outcome, error) {
	if h.Automation == nil {
		return Outcome{}, ErrNoAutomation
	}
	name, err := requireParam(cmd, "app_name")
	if err != nil {
		return Outcome{}, err
	}
	if err := h.check(cmd.ActionName(), name); err != nil {
		return Outcome{}, err
	}

	call := CallFor("app", cmd)
	out, err := h.Automation.Run(ctx, call)
	if err != nil {
		return Outcome{}, err
	}
	return Outcome{
		Summary: firstNonEmpty(out, call.String()),
		Data:    map[string]string{"call": call.Action, "app_name": name},
	}, nil
}

func (h AppHandler) check(action, name string) error {
	if len(h.Allowlist) == 0 {
		if action == intent.ActionOpenApp {
			return nil
		}
		return fmt.Errorf("%w: %s %q needs apps.allowlist", ErrNotAllowed, action, name)
	}
	if !h.Allowed(name) {
		return fmt.Errorf("%w: %q is not in apps.allowlist", ErrNotAllowed, name)
	}
	return nil
}

func (h AppHandler) Allowed(name string) bool {
	want := appKey(name)
	for _, entry := range h.Allowlist {
		if appKey(entry) == want {
			return true
		}
	}
	return false
}

func appKey(name string) string {
	key := strings.ToLower(strings.TrimSpace(name))
	if filepath.Ext(key) == ".exe" {
		key = strings.TrimSuffix(key, ".exe")
	}
	return key
}
