package main

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/ashwch/jarvis/internal/config"
	"github.com/ashwch/jarvis/internal/dispatch"
	"github.com/ashwch/jarvis/internal/i18n"
	"github.com/ashwch/jarvis/internal/intent"
	"github.com/ashwch/jarvis/internal/journal"
	"github.com/ashwch/jarvis/internal/logging"
	"github.com/ashwch/jarvis/internal/provider"
	"github.com/ashwch/jarvis/internal/router"
	"github.com/ashwch/jarvis/internal/runtime"
	"github.com/ashwch/jarvis/internal/safety"
	"github.com/ashwch/jarvis/internal/session"
	"github.com/ashwch/jarvis/internal/ui"
	"golang.org/x/term"
)

var errRouteFailed = errors.New("route failed")

type globalFlags struct {
	LogLevel string
	Provider string
	UI       string
	Env      string
	Locale   string
	DryRun   bool
	Yes      bool
	JSON     bool
}

type app struct {
	flags  *globalFlags
	stdout io.Writer
	stderr io.Writer

	cfgPath string
	current atomic.Pointer[config.Config]
	logger  *slog.Logger
	catalog i18n.Catalog

	once    sync.Once
	loadErr error
}

func newApp(stdout, stderr io.Writer) *app {
	return &app{flags: &globalFlags{}, stdout: stdout, stderr: stderr}
}

func (a *app) load() error {
	a.once.Do(func() {
		a.loadErr = a.doLoad()
	})
	return a.loadErr
}

func (a *app) doLoad() error {
	var envFiles []string
	if a.flags.Env != "" {
		envFiles = append(envFiles, a.flags.Env)
	}
	if _, err := config.LoadEnv(envFiles...); err != nil {
		return err
	}

	cfg, path, err := config.LoadOrCreate()
	if err != nil {
		return fmt.Errorf("could not load config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return fmt.Errorf("invalid config %s: %w", path, err)
	}
	a.cfgPath = path
	a.current.Store(&cfg)

	level := cfg.Log.Level
	if a.flags.LogLevel != "" {
		if _, err := logging.ParseLevel(a.flags.LogLevel); err != nil {
			return err
		}
		level = a.flags.LogLevel
	}
	a.logger = logging.New(a.stderr, logging.Options{
		Level:   level,
		Format:  cfg.Log.Format,
		Redact:  cfg.Safety.RedactLogs,
		NoColor: !isTerminal(a.stderr),
	})

	locale := cfg.Locale
	if a.flags.Locale != "" {
		locale = a.flags.Locale
	}
	a.catalog = i18n.LoadCatalog(locale)
	return nil
}

func (a *app) config() config.Config {
	if cfg := a.current.Load(); cfg != nil {
		return *cfg
	}
	return config.Default()
}

func (a *app) setConfig(cfg config.Config) {
	a.current.Store(&cfg)
}

func (a *app) uiBackend() string {
	if strings.TrimSpace(a.flags.UI) != "" {
		return ui.NormalizeBackend(a.flags.UI)
	}
	return ui.NormalizeBackend(a.config().UI.Backend)
}

func (a *app) automation() dispatch.Automation {
	cfg := a.config()
	if strings.TrimSpace(cfg.Automation.Command) == "" {
		return nil
	}
	return dispatch.CommandAutomation{Command: cfg.Automation.Command, Args: cfg.Automation.Args}
}

func (a *app) newDispatcher() (*dispatch.Dispatcher, error) {
	cfg := a.config()
	d := dispatch.New(a.logger)
	automation := a.automation()

	office := dispatch.OfficeHandler{Automation: automation}
	d.Register(intent.CategoryExcel, office)
	d.Register(intent.CategoryWord, office)
	d.Register(intent.CategoryPowerPoint, office)
	d.Register(intent.CategoryWindow, dispatch.WindowHandler{Automation: automation})
	d.Register(intent.CategorySystemApp, dispatch.AppHandler{Automation: automation, Allowlist: cfg.Apps.Allowlist})

	root, err := cfg.FilesRoot()
	if err != nil {
		return nil, err
	}
	d.Register(intent.CategoryFile, dispatch.FileHandler{Root: root, Automation: automation})
	return d, nil
}

func (a *app) openJournal() (*journal.Journal, error) {
	cfg := a.config()
	if !cfg.Journal.Enabled {
		return nil, nil
	}
	return journal.Open("", cfg.Journal.MaxEntries)
}

func (a *app) newRouter(prompt runtime.PromptFunc) (*router.Router, error) {
	cfg := a.config()
	mode, err := safety.ParseMode(cfg.Mode)
	if err != nil {
		return nil, err
	}
	d, err := a.newDispatcher()
	if err != nil {
		return nil, err
	}
	j, err := a.openJournal()
	if err != nil {
		a.logger.Warn("journal unavailable", "error", err)
		j = nil
	}
	wd, _ := os.Getwd()

	return router.New(router.Options{
		Dispatcher: d,
		Planner: router.ServicePlanner{
			Service:   provider.NewService(provider.NewRegistry()),
			Config:    a.config,
			Preferred: a.flags.Provider,
		},
		Gate: runtime.Gate{
			Mode:               mode,
			ConfirmDestructive: cfg.Safety.ConfirmDestructive,
			Yes:                a.flags.Yes,
			Prompt:             prompt,
		},
		Journal:     j,
		Session:     session.NewStore(session.Session{WorkingDir: wd}),
		Catalog:     a.catalog,
		Logger:      a.logger,
		Threshold:   cfg.Router.MinConfidence,
		Suggestions: cfg.Router.Suggestions,
		Redact:      cfg.Safety.RedactLogs,
		DryRun:      a.flags.DryRun,
	})
}

func (a *app) terminalPrompt() runtime.PromptFunc {
	backend := a.uiBackend()
	if a.flags.JSON || !ui.IsInteractive(backend) {
		return nil
	}
	return func(summary string, risk safety.Risk) (bool, error) {
		approved, used, err := ui.Confirm(backend, ui.Prompt{Summary: summary, Risk: string(risk)})
		if used {
			return approved, err
		}
		if err != nil {
			a.logger.Debug("interactive confirm unavailable", "error", err)
		}
		return runtime.AskLine(os.Stdin, a.stderr, fmt.Sprintf("%s [risiko: %s] [y/N]: ", summary, risk))
	}
}

func (a *app) withLoader(run func()) {
	if a.flags.JSON || !loaderEnabled(a.stderr) {
		run()
		return
	}
	done := make(chan struct{})
	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		renderLoader(a.stderr, a.catalog, done)
	}()
	run()
	close(done)
	wg.Wait()
}

func loaderEnabled(w io.Writer) bool {
	switch strings.ToLower(strings.TrimSpace(os.Getenv("JARVIS_LOADER"))) {
	case "0", "off", "false", "no":
		return false
	}
	return isTerminal(w)
}

func renderLoader(w io.Writer, catalog i18n.Catalog, done <-chan struct{}) {
	delay := time.NewTimer(180 * time.Millisecond)
	defer delay.Stop()
	select {
	case <-done:
		return
	case <-delay.C:
	}

	frames := []string{"◐", "◓", "◑", "◒"}
	ticker := time.NewTicker(260 * time.Millisecond)
	defer ticker.Stop()
	for i := 0; ; i++ {
		fmt.Fprintf(w, "\r%s %s\x1b[K", frames[i%len(frames)], catalog.LoaderLine(i/len(frames)))
		select {
		case <-done:
			fmt.Fprint(w, "\r\x1b[K")
			return
		case <-ticker.C:
		}
	}
}

func isTerminal(w io.Writer) bool {
	f, ok := w.(*os.File)
	if !ok || f == nil {
		return false
	}
	return term.IsTerminal(int(f.Fd()))
}

func routeContext(cmd interface{ Context() context.Context }) context.Context {
	if ctx := cmd.Context(); ctx != nil {
		return ctx
	}
	return context.Background()
}
