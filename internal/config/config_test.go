package config

import (
	"context"
	"os"
	"path/filepath"
	"runtime"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/ashwch/jarvis/internal/appdirs"
	"github.com/pelletier/go-toml/v2"
)

func TestSetGetRoundTrip(t *testing.T) {
	cfg := Default()

	sets := map[string]string{
		"router.min_confidence":      "0.75",
		"router.suggestions":         "5",
		"mode":                       "full-auto",
		"locale":                     "id_id",
		"safety.redact_logs":         "false",
		"safety.confirm_destructive": "ya",
		"apps.allowlist":             "notepad, calc ,,excel",
		"automation.command":         "jarvis-helper",
		"ui.backend":                 "huh",
		"log.level":                  "DEBUG",
		"providers.openai.model":     "gpt-5-mini",
		"providers.local.type":       "offline",
	}
	for key, value := range sets {
		if err := cfg.Set(key, value); err != nil {
			t.Fatalf("set %s failed: %v", key, err)
		}
	}

	want := map[string]string{
		"router.min_confidence":      "0.75",
		"router.suggestions":         "5",
		"mode":                       "full_auto",
		"locale":                     "id-ID",
		"safety.redact_logs":         "false",
		"safety.confirm_destructive": "true",
		"apps.allowlist":             "notepad,calc,excel",
		"automation.command":         "jarvis-helper",
		"ui.backend":                 "huh",
		"log.level":                  "debug",
		"providers.openai.model":     "gpt-5-mini",
		"providers.local.type":       "offline",
		"providers.local.enabled":    "true",
	}
	for key, expected := range want {
		got, err := cfg.Get(key)
		if err != nil {
			t.Fatalf("get %s failed: %v", key, err)
		}
		if got != expected {
			t.Fatalf("%s: expected %q, got %q", key, expected, got)
		}
	}
}

func TestSetRejectsInvalidValues(t *testing.T) {
	cfg := Default()
	invalid := map[string]string{
		"router.min_confidence":  "1.5",
		"router.suggestions":     "0",
		"mode":                   "yolo",
		"locale":                 "???",
		"ui.backend":             "gtk",
		"log.format":             "xml",
		"safety.redact_logs":     "maybe",
		"providers.openai.type":  "grpc",
		"providers.openai.color": "red",
		"unknown.key":            "x",
	}
	for key, value := range invalid {
		if err := cfg.Set(key, value); err == nil {
			t.Fatalf("expected %s=%q to be rejected", key, value)
		}
	}
}

func TestDefaultIsValid(t *testing.T) {
	cfg := Default()
	cfg.normalize()
	if err := cfg.Validate(); err != nil {
		t.Fatalf("expected default config to validate, got %v", err)
	}
	if cfg.Router.MinConfidence != 0.7 {
		t.Fatalf("expected default threshold 0.7, got %v", cfg.Router.MinConfidence)
	}
	if cfg.Mode != "semi_auto" {
		t.Fatalf("expected semi_auto default mode, got %q", cfg.Mode)
	}
	for _, name := range []string{"openai", "claude", "codex", "offline"} {
		if _, ok := cfg.Providers[name]; !ok {
			t.Fatalf("expected default provider %q", name)
		}
	}
}

func TestValidateJoinsProblems(t *testing.T) {
	cfg := Default()
	cfg.Mode = "reckless"
	cfg.Provider = "missing"
	cfg.Log.Level = "trace"
	cfg.Bus.URL = "http://localhost"
	cfg.Providers["broken"] = ProviderConfig{Type: "grpc"}

	err := cfg.Validate()
	if err == nil {
		t.Fatalf("expected validation failure")
	}
	for _, fragment := range []string{"reckless", "missing", "trace", "bus.url", "broken"} {
		if !strings.Contains(err.Error(), fragment) {
			t.Fatalf("expected %q in %v", fragment, err)
		}
	}
}

func TestNormalizePreservesExplicitSafetyFalseValues(t *testing.T) {
	cfg := Default()
	cfg.Safety.RedactLogs = false
	cfg.Safety.ConfirmDestructive = false
	cfg.Journal.Enabled = false

	cfg.normalize()

	if cfg.Safety.RedactLogs || cfg.Safety.ConfirmDestructive || cfg.Journal.Enabled {
		t.Fatalf("expected explicit false values to be preserved, got %+v / %+v", cfg.Safety, cfg.Journal)
	}
}

func TestLoadFillsDefaultsForPartialFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	partial := `
mode = "assistive"

[router]
min_confidence = 0.9

[providers.claude]
enabled = false
`
	if err := os.WriteFile(path, []byte(partial), 0o600); err != nil {
		t.Fatalf("write config failed: %v", err)
	}

	cfg, err := Load(path)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if cfg.Mode != "assistive" || cfg.Router.MinConfidence != 0.9 {
		t.Fatalf("expected file values, got mode=%q threshold=%v", cfg.Mode, cfg.Router.MinConfidence)
	}
	if cfg.Router.Suggestions != 3 || cfg.Log.Format != "text" {
		t.Fatalf("expected defaults for missing keys, got %+v %+v", cfg.Router, cfg.Log)
	}
	claude := cfg.Providers["claude"]
	if claude.IsEnabled() {
		t.Fatalf("expected claude to stay disabled")
	}
	if claude.Command != "claude" || len(claude.Args) == 0 {
		t.Fatalf("expected claude defaults merged, got %+v", claude)
	}
}

func TestLoadOrCreateWritesDefault(t *testing.T) {
	t.Setenv(appdirs.HomeEnv, t.TempDir())
	t.Setenv("JARVIS_CONFIG", "")

	cfg, path, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("LoadOrCreate failed: %v", err)
	}
	if _, err := os.Stat(path); err != nil {
		t.Fatalf("expected config file to exist: %v", err)
	}
	again, _, err := LoadOrCreate()
	if err != nil {
		t.Fatalf("second LoadOrCreate failed: %v", err)
	}
	if again.Mode != cfg.Mode || again.Router != cfg.Router {
		t.Fatalf("expected stable round trip, got %+v vs %+v", again, cfg)
	}
}

func TestFilesRootExpandsHome(t *testing.T) {
	home := t.TempDir()
	t.Setenv("HOME", home)
	cfg := Default()
	cfg.Files.Root = "~/Dokumen"
	root, err := cfg.FilesRoot()
	if err != nil {
		t.Fatalf("FilesRoot failed: %v", err)
	}
	if root != filepath.Join(home, "Dokumen") {
		t.Fatalf("unexpected root %q", root)
	}
}

func TestSaveUsesPrivateFileMode(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not portable on windows")
	}

	path := filepath.Join(t.TempDir(), "nested", "config.toml")
	if err := Save(path, Default()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	info, err := os.Stat(path)
	if err != nil {
		t.Fatalf("stat config failed: %v", err)
	}
	if perms := info.Mode().Perm(); perms&0o077 != 0 {
		t.Fatalf("expected private permissions, got %o", perms)
	}
}

func TestSaveAtomicWriteProducesParseableConfigUnderConcurrentSaves(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")

	var wg sync.WaitGroup
	for i := 0; i < 16; i++ {
		wg.Add(1)
		go func(idx int) {
			defer wg.Done()
			cfg := Default()
			cfg.Provider = []string{"claude", "openai"}[idx%2]
			if err := Save(path, cfg); err != nil {
				t.Errorf("save failed: %v", err)
			}
		}(i)
	}
	wg.Wait()

	data, err := os.ReadFile(path)
	if err != nil {
		t.Fatalf("read config failed: %v", err)
	}
	var parsed Config
	if err := toml.Unmarshal(data, &parsed); err != nil {
		t.Fatalf("expected final config to be parseable TOML, got error: %v\ncontent:\n%s", err, string(data))
	}
}

func TestLoadEnvKeepsExistingValues(t *testing.T) {
	t.Setenv(appdirs.HomeEnv, t.TempDir())
	dir := t.TempDir()
	first := filepath.Join(dir, "first.env")
	second := filepath.Join(dir, "second.env")
	if err := os.WriteFile(first, []byte("JARVIS_TEST_KEY=from-first\n"), 0o600); err != nil {
		t.Fatalf("write env failed: %v", err)
	}
	if err := os.WriteFile(second, []byte("JARVIS_TEST_KEY=from-second\nJARVIS_TEST_OTHER=other\n"), 0o600); err != nil {
		t.Fatalf("write env failed: %v", err)
	}
	t.Setenv("JARVIS_TEST_KEY", "")
	os.Unsetenv("JARVIS_TEST_KEY")
	t.Setenv("JARVIS_TEST_OTHER", "preset")

	loaded, err := LoadEnv(first, second, filepath.Join(dir, "missing.env"))
	if err != nil {
		t.Fatalf("LoadEnv failed: %v", err)
	}
	if len(loaded) != 2 {
		t.Fatalf("expected two loaded files, got %v", loaded)
	}
	if got := os.Getenv("JARVIS_TEST_KEY"); got != "from-first" {
		t.Fatalf("expected first file to win, got %q", got)
	}
	if got := os.Getenv("JARVIS_TEST_OTHER"); got != "preset" {
		t.Fatalf("expected process env to win, got %q", got)
	}

	provider := ProviderConfig{APIKeyEnv: "JARVIS_TEST_KEY"}
	if provider.APIKey() != "from-first" {
		t.Fatalf("expected api key from env, got %q", provider.APIKey())
	}
}

func TestWatchReloadsOnSave(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.toml")
	if err := Save(path, Default()); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	changes := make(chan Config, 4)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, path, nil, func(cfg Config) { changes <- cfg })
	}()

	// Give the watcher time to register before writing.
	time.Sleep(100 * time.Millisecond)
	cfg := Default()
	cfg.Router.MinConfidence = 0.85
	if err := Save(path, cfg); err != nil {
		t.Fatalf("save failed: %v", err)
	}

	select {
	case got := <-changes:
		if got.Router.MinConfidence != 0.85 {
			t.Fatalf("expected reloaded threshold 0.85, got %v", got.Router.MinConfidence)
		}
	case <-ctx.Done():
		t.Fatalf("timed out waiting for reload")
	}
	cancel()
	if err := <-done; err != nil {
		t.Fatalf("watch returned error: %v", err)
	}
}
