package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strconv"
	"strings"

	"github.com/ashwch/jarvis/internal/appdirs"
	"github.com/ashwch/jarvis/internal/i18n"
	"github.com/ashwch/jarvis/internal/safety"
	"github.com/pelletier/go-toml/v2"
)

const (
	ProviderTypeCommand = "command"
	ProviderTypeOpenAI  = "openai"
	ProviderTypeOffline = "offline"
)

type ProviderConfig struct {
	Type      string   `toml:"type,omitempty" json:"type,omitempty"`
	Command   string   `toml:"command,omitempty" json:"command,omitempty"`
	Enabled   *bool    `toml:"enabled,omitempty" json:"enabled,omitempty"`
	Model     string   `toml:"model,omitempty" json:"model,omitempty"`
	Args      []string `toml:"args,omitempty" json:"args,omitempty"`
	BaseURL   string   `toml:"base_url,omitempty" json:"base_url,omitempty"`
	APIKeyEnv string   `toml:"api_key_env,omitempty" json:"api_key_env,omitempty"`
	Proxy     string   `toml:"proxy,omitempty" json:"proxy,omitempty"`
}

func (p ProviderConfig) IsEnabled() bool {
	return p.Enabled == nil || *p.Enabled
}

type RouterConfig struct {
	MinConfidence float64 `toml:"min_confidence" json:"min_confidence"`
	Suggestions   int     `toml:"suggestions" json:"suggestions"`
}

type SafetyConfig struct {
	RedactLogs         bool `toml:"redact_logs" json:"redact_logs"`
	ConfirmDestructive bool `toml:"confirm_destructive" json:"confirm_destructive"`
}

type FilesConfig struct {
	Root string `toml:"root" json:"root"`
}

type AppsConfig struct {
	Allowlist []string `toml:"allowlist" json:"allowlist"`
}

type AutomationConfig struct {
	Command string   `toml:"command" json:"command"`
	Args    []string `toml:"args,omitempty" json:"args,omitempty"`
}

type UIConfig struct {
	Backend string `toml:"backend" json:"backend"`
}

type BusConfig struct {
	URL  string `toml:"url" json:"url"`
	Name string `toml:"name" json:"name"`
}

type LogConfig struct {
	Level  string `toml:"level" json:"level"`
	Format string `toml:"format" json:"format"`
}

type JournalConfig struct {
	Enabled    bool `toml:"enabled" json:"enabled"`
	MaxEntries int  `toml:"max_entries" json:"max_entries"`
}

type Config struct {
	Version    int                       `toml:"version" json:"version"`
	Locale     string                    `toml:"locale" json:"locale"`
	Mode       string                    `toml:"mode" json:"mode"`
	Provider   string                    `toml:"provider" json:"provider"`
	Router     RouterConfig              `toml:"router" json:"router"`
	Providers  map[string]ProviderConfig `toml:"providers" json:"providers"`
	Safety     SafetyConfig              `toml:"safety" json:"safety"`
	Files      FilesConfig               `toml:"files" json:"files"`
	Apps       AppsConfig                `toml:"apps" json:"apps"`
	Automation AutomationConfig          `toml:"automation" json:"automation"`
	UI         UIConfig                  `toml:"ui" json:"ui"`
	Bus        BusConfig                 `toml:"bus" json:"bus"`
	Log        LogConfig                 `toml:"log" json:"log"`
	Journal    JournalConfig             `toml:"journal" json:"journal"`
}

func Default() Config {
	return Config{
		Version:  1,
		Locale:   "auto",
		Mode:     string(safety.ModeSemiAuto),
		Provider: "auto",
		Router: RouterConfig{
			MinConfidence: 0.7,
			Suggestions:   3,
		},
		Providers: defaultProviderCatalog(),
		Safety: SafetyConfig{
			RedactLogs:         true,
			ConfirmDestructive: true,
		},
		Files: FilesConfig{Root: "~"},
		Apps:  AppsConfig{Allowlist: []string{}},
		UI:    UIConfig{Backend: "auto"},
		Bus: BusConfig{
			URL:  "ws://localhost:8092",
			Name: "jarvis",
		},
		Log: LogConfig{
			Level:  "info",
			Format: "text",
		},
		Journal: JournalConfig{
			Enabled:    true,
			MaxEntries: 500,
		},
	}
}

func defaultProviderCatalog() map[string]ProviderConfig {
	return map[string]ProviderConfig{
		"openai": {
			Type:      ProviderTypeOpenAI,
			Enabled:   boolPtr(true),
			Model:     "gpt-5-nano",
			APIKeyEnv: "OPENAI_API_KEY",
		},
		"claude": {
			Type:    ProviderTypeCommand,
			Command: "claude",
			Enabled: boolPtr(true),
			Model:   "haiku",
			Args: []string{
				"-p",
				"--output-format",
				"json",
				"--json-schema",
				"{schema_json}",
				"--model",
				"{model}",
				"{prompt}",
			},
		},
		"codex": {
			Type:    ProviderTypeCommand,
			Command: "codex",
			Enabled: boolPtr(true),
			Model:   "gpt-5-mini",
			Args: []string{
				"exec",
				"--skip-git-repo-check",
				"--sandbox",
				"read-only",
				"--output-schema",
				"{schema_file}",
				"--output-last-message",
				"{output_file}",
				"--model",
				"{model}",
				"{prompt}",
			},
		},
		"offline": {
			Type:    ProviderTypeOffline,
			Enabled: boolPtr(true),
		},
	}
}

func Path() (string, error) {
	if explicit := strings.TrimSpace(os.Getenv("JARVIS_CONFIG")); explicit != "" {
		return explicit, nil
	}
	return appdirs.ConfigFilePath()
}

func LoadOrCreate() (Config, string, error) {
	path, err := Path()
	if err != nil {
		return Config{}, "", err
	}

	if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
		cfg := Default()
		if err := Save(path, cfg); err != nil {
			return Config{}, "", err
		}
		return cfg, path, nil
	} else if err != nil {
		return Config{}, "", fmt.Errorf("could not stat config path: %w", err)
	}

	cfg, err := Load(path)
	if err != nil {
		return Config{}, "", err
	}
	return cfg, path, nil
}

func Load(path string) (Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return Config{}, fmt.Errorf("could not read config file: %w", err)
	}
	cfg := Default()
	if err := toml.Unmarshal(data, &cfg); err != nil {
		return Config{}, fmt.Errorf("could not parse config file: %w", err)
	}
	cfg.normalize()
	return cfg, nil
}

func Save(path string, cfg Config) error {
	cfg.normalize()
	payload, err := toml.Marshal(cfg)
	if err != nil {
		return fmt.Errorf("could not serialize config: %w", err)
	}

	dir := filepath.Dir(path)
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("could not create config dir: %w", err)
	}
	return writeFileAtomic(dir, path, payload)
}

func writeFileAtomic(dir, path string, payload []byte) error {
	tempFile, err := os.CreateTemp(dir, ".jarvis-config-*.toml")
	if err != nil {
		return fmt.Errorf("could not create temp config file: %w", err)
	}
	tempPath := tempFile.Name()
	fail := func(step string, err error) error {
		_ = tempFile.Close()
		_ = os.Remove(tempPath)
		return fmt.Errorf("could not %s: %w", step, err)
	}

	if _, err := tempFile.Write(payload); err != nil {
		return fail("write temp config file", err)
	}
	if err := tempFile.Chmod(0o600); err != nil {
		return fail("secure temp config file permissions", err)
	}
	if err := tempFile.Close(); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("could not close temp config file: %w", err)
	}
	if err := os.Rename(tempPath, path); err != nil {
		_ = os.Remove(tempPath)
		return fmt.Errorf("could not atomically replace config file: %w", err)
	}
	if err := os.Chmod(path, 0o600); err != nil {
		return fmt.Errorf("could not secure config file permissions: %w", err)
	}
	return nil
}

func (c *Config) normalize() {
	defaults := Default()
	if c.Version == 0 {
		c.Version = defaults.Version
	}
	c.Locale = normalizeLocaleSetting(c.Locale, defaults.Locale)
	if mode, err := safety.ParseMode(c.Mode); err == nil {
		c.Mode = string(mode)
	}
	if strings.TrimSpace(c.Provider) == "" {
		c.Provider = defaults.Provider
	}
	if c.Router.MinConfidence < 0 || c.Router.MinConfidence > 1 {
		c.Router.MinConfidence = defaults.Router.MinConfidence
	}
	if c.Router.Suggestions <= 0 {
		c.Router.Suggestions = defaults.Router.Suggestions
	}
	if strings.TrimSpace(c.Files.Root) == "" {
		c.Files.Root = defaults.Files.Root
	}
	if c.Apps.Allowlist == nil {
		c.Apps.Allowlist = []string{}
	}
	c.UI.Backend = normalizeUIBackend(c.UI.Backend, defaults.UI.Backend)
	if strings.TrimSpace(c.Bus.Name) == "" {
		c.Bus.Name = defaults.Bus.Name
	}
	c.Log.Level = strings.ToLower(strings.TrimSpace(c.Log.Level))
	if c.Log.Level == "" {
		c.Log.Level = defaults.Log.Level
	}
	c.Log.Format = strings.ToLower(strings.TrimSpace(c.Log.Format))
	if c.Log.Format == "" {
		c.Log.Format = defaults.Log.Format
	}
	if c.Journal.MaxEntries <= 0 {
		c.Journal.MaxEntries = defaults.Journal.MaxEntries
	}

	if c.Providers == nil {
		c.Providers = map[string]ProviderConfig{}
	}
	for name, def := range defaultProviderCatalog() {
		current, ok := c.Providers[name]
		if !ok {
			c.Providers[name] = def
			continue
		}
		mergeProviderDefaults(&current, def)
		c.Providers[name] = current
	}
	for name, provider := range c.Providers {
		if provider.Type == "" {
			provider.Type = ProviderTypeCommand
		}
		if provider.Type == ProviderTypeCommand && provider.Command == "" {
			provider.Command = name
		}
		if provider.Enabled == nil {
			provider.Enabled = boolPtr(true)
		}
		c.Providers[name] = provider
	}
}

func mergeProviderDefaults(target *ProviderConfig, defaults ProviderConfig) {
	if target.Type == "" {
		target.Type = defaults.Type
	}
	if target.Command == "" {
		target.Command = defaults.Command
	}
	if target.Enabled == nil {
		target.Enabled = defaults.Enabled
	}
	if target.Model == "" {
		target.Model = defaults.Model
	}
	if len(target.Args) == 0 {
		target.Args = append([]string(nil), defaults.Args...)
	}
	if target.APIKeyEnv == "" {
		target.APIKeyEnv = defaults.APIKeyEnv
	}
}

// Validate reports every problem at once. normalize repairs what it can, so
// this mostly catches values set by hand in the file.
func (c Config) Validate() error {
	var problems []error
	if _, err := safety.ParseMode(c.Mode); err != nil {
		problems = append(problems, err)
	}
	if c.Router.MinConfidence < 0 || c.Router.MinConfidence > 1 {
		problems = append(problems, fmt.Errorf("router.min_confidence must be between 0 and 1"))
	}
	if c.Provider != "auto" {
		if _, ok := c.Providers[c.Provider]; !ok {
			problems = append(problems, fmt.Errorf("provider %q is not configured", c.Provider))
		}
	}
	for _, name := range c.ProviderNames() {
		p := c.Providers[name]
		switch p.Type {
		case ProviderTypeCommand:
			if strings.TrimSpace(p.Command) == "" {
				problems = append(problems, fmt.Errorf("providers.%s.command is required", name))
			}
		case ProviderTypeOpenAI:
			if strings.TrimSpace(p.APIKeyEnv) == "" {
				problems = append(problems, fmt.Errorf("providers.%s.api_key_env is required", name))
			}
		case ProviderTypeOffline:
		default:
			problems = append(problems, fmt.Errorf("providers.%s.type %q is not one of command|openai|offline", name, p.Type))
		}
	}
	switch c.Log.Level {
	case "debug", "info", "warn", "error":
	default:
		problems = append(problems, fmt.Errorf("log.level %q is not one of debug|info|warn|error", c.Log.Level))
	}
	switch c.Log.Format {
	case "text", "json":
	default:
		problems = append(problems, fmt.Errorf("log.format %q is not one of text|json", c.Log.Format))
	}
	if c.Bus.URL != "" && !strings.HasPrefix(c.Bus.URL, "ws://") && !strings.HasPrefix(c.Bus.URL, "wss://") {
		problems = append(problems, fmt.Errorf("bus.url must start with ws:// or wss://"))
	}
	return errors.Join(problems...)
}

func (c Config) FilesRoot() (string, error) {
	root := strings.TrimSpace(c.Files.Root)
	if root == "~" || strings.HasPrefix(root, "~/") {
		home, err := os.UserHomeDir()
		if err != nil {
			return "", fmt.Errorf("could not resolve home directory: %w", err)
		}
		root = filepath.Join(home, strings.TrimPrefix(root, "~"))
	}
	return filepath.Abs(root)
}

func (c *Config) Set(key, value string) error {
	key = strings.TrimSpace(strings.ToLower(key))
	value = strings.TrimSpace(value)

	if strings.HasPrefix(key, "providers.") {
		if err := c.setProviderKey(key, value); err != nil {
			return err
		}
		c.normalize()
		return nil
	}

	switch key {
	case "locale":
		c.Locale = normalizeLocaleSetting(value, "")
		if c.Locale == "" {
			return fmt.Errorf("locale must be 'auto' or a locale like id, id-ID, en")
		}
	case "mode":
		mode, err := safety.ParseMode(value)
		if err != nil {
			return err
		}
		c.Mode = string(mode)
	case "provider":
		c.Provider = value
	case "router.min_confidence":
		n, err := parseConfidence(value)
		if err != nil {
			return fmt.Errorf("router.min_confidence must be between 0 and 1")
		}
		c.Router.MinConfidence = n
	case "router.suggestions":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("router.suggestions must be a positive number")
		}
		c.Router.Suggestions = n
	case "safety.redact_logs", "safety.confirm_destructive", "journal.enabled":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("%s must be boolean", key)
		}
		switch key {
		case "safety.redact_logs":
			c.Safety.RedactLogs = b
		case "safety.confirm_destructive":
			c.Safety.ConfirmDestructive = b
		default:
			c.Journal.Enabled = b
		}
	case "journal.max_entries":
		n, err := strconv.Atoi(value)
		if err != nil || n <= 0 {
			return fmt.Errorf("journal.max_entries must be a positive number")
		}
		c.Journal.MaxEntries = n
	case "files.root":
		c.Files.Root = value
	case "apps.allowlist":
		c.Apps.Allowlist = splitCommaList(value)
	case "automation.command":
		c.Automation.Command = value
	case "automation.args":
		c.Automation.Args = splitCommaList(value)
	case "ui.backend":
		c.UI.Backend = normalizeUIBackend(value, "")
		if c.UI.Backend == "" {
			return fmt.Errorf("ui.backend must be one of auto|bubbletea|huh|tview|plain")
		}
	case "bus.url":
		c.Bus.URL = value
	case "bus.name":
		c.Bus.Name = value
	case "log.level":
		switch strings.ToLower(value) {
		case "debug", "info", "warn", "error":
			c.Log.Level = strings.ToLower(value)
		default:
			return fmt.Errorf("log.level must be one of debug|info|warn|error")
		}
	case "log.format":
		switch strings.ToLower(value) {
		case "text", "json":
			c.Log.Format = strings.ToLower(value)
		default:
			return fmt.Errorf("log.format must be text or json")
		}
	default:
		return fmt.Errorf("unknown config key: %s", key)
	}
	c.normalize()
	return nil
}

func (c *Config) setProviderKey(key, value string) error {
	parts := strings.Split(key, ".")
	if len(parts) != 3 {
		return fmt.Errorf("invalid provider key: %s", key)
	}
	name := parts[1]
	if c.Providers == nil {
		c.Providers = map[string]ProviderConfig{}
	}
	provider, ok := c.Providers[name]
	if !ok {
		provider = ProviderConfig{Type: ProviderTypeCommand, Command: name, Enabled: boolPtr(true)}
	}

	switch parts[2] {
	case "type":
		switch value {
		case ProviderTypeCommand, ProviderTypeOpenAI, ProviderTypeOffline:
			provider.Type = value
		default:
			return fmt.Errorf("providers.%s.type must be one of command|openai|offline", name)
		}
	case "command":
		provider.Command = value
	case "model":
		provider.Model = value
	case "args":
		provider.Args = splitCommaList(value)
	case "base_url":
		provider.BaseURL = value
	case "api_key_env":
		provider.APIKeyEnv = value
	case "proxy":
		provider.Proxy = value
	case "enabled":
		b, err := parseBool(value)
		if err != nil {
			return fmt.Errorf("providers.%s.enabled must be boolean", name)
		}
		provider.Enabled = boolPtr(b)
	default:
		return fmt.Errorf("unknown provider field: %s", parts[2])
	}
	c.Providers[name] = provider
	return nil
}

func (c Config) Get(key string) (string, error) {
	key = strings.TrimSpace(strings.ToLower(key))

	if strings.HasPrefix(key, "providers.") {
		return c.getProviderKey(key)
	}

	switch key {
	case "locale":
		return c.Locale, nil
	case "mode":
		return c.Mode, nil
	case "provider":
		return c.Provider, nil
	case "router.min_confidence":
		return strconv.FormatFloat(c.Router.MinConfidence, 'g', -1, 64), nil
	case "router.suggestions":
		return strconv.Itoa(c.Router.Suggestions), nil
	case "safety.redact_logs":
		return strconv.FormatBool(c.Safety.RedactLogs), nil
	case "safety.confirm_destructive":
		return strconv.FormatBool(c.Safety.ConfirmDestructive), nil
	case "journal.enabled":
		return strconv.FormatBool(c.Journal.Enabled), nil
	case "journal.max_entries":
		return strconv.Itoa(c.Journal.MaxEntries), nil
	case "files.root":
		return c.Files.Root, nil
	case "apps.allowlist":
		return strings.Join(c.Apps.Allowlist, ","), nil
	case "automation.command":
		return c.Automation.Command, nil
	case "automation.args":
		return strings.Join(c.Automation.Args, ","), nil
	case "ui.backend":
		return c.UI.Backend, nil
	case "bus.url":
		return c.Bus.URL, nil
	case "bus.name":
		return c.Bus.Name, nil
	case "log.level":
		return c.Log.Level, nil
	case "log.format":
		return c.Log.Format, nil
	default:
		return "", fmt.Errorf("unknown config key: %s", key)
	}
}

func (c Config) getProviderKey(key string) (string, error) {
	parts := strings.Split(key, ".")
	if len(parts) != 3 {
		return "", fmt.Errorf("invalid provider key: %s", key)
	}
	provider, ok := c.Providers[parts[1]]
	if !ok {
		return "", fmt.Errorf("unknown provider: %s", parts[1])
	}
	switch parts[2] {
	case "type":
		return provider.Type, nil
	case "command":
		return provider.Command, nil
	case "model":
		return provider.Model, nil
	case "args":
		return strings.Join(provider.Args, ","), nil
	case "base_url":
		return provider.BaseURL, nil
	case "api_key_env":
		return provider.APIKeyEnv, nil
	case "proxy":
		return provider.Proxy, nil
	case "enabled":
		return strconv.FormatBool(provider.IsEnabled()), nil
	default:
		return "", fmt.Errorf("unknown provider field: %s", parts[2])
	}
}

func (c Config) ProviderNames() []string {
	names := make([]string, 0, len(c.Providers))
	for name := range c.Providers {
		names = append(names, name)
	}
	sort.Strings(names)
	return names
}

func parseBool(value string) (bool, error) {
	switch strings.ToLower(strings.TrimSpace(value)) {
	case "1", "true", "yes", "on", "ya":
		return true, nil
	case "0", "false", "no", "off", "tidak":
		return false, nil
	default:
		return false, fmt.Errorf("invalid bool: %s", value)
	}
}

func splitCommaList(value string) []string {
	out := []string{}
	for _, part := range strings.Split(value, ",") {
		if item := strings.TrimSpace(part); item != "" {
			out = append(out, item)
		}
	}
	return out
}

func parseConfidence(value string) (float64, error) {
	n, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0, err
	}
	if n < 0 || n > 1 {
		return 0, fmt.Errorf("confidence must be between 0 and 1")
	}
	return n, nil
}

func boolPtr(v bool) *bool {
	return &v
}

func normalizeUIBackend(value string, fallback string) string {
	switch normalized := strings.ToLower(strings.TrimSpace(value)); normalized {
	case "auto", "bubbletea", "huh", "tview", "plain":
		return normalized
	default:
		return strings.ToLower(strings.TrimSpace(fallback))
	}
}

func normalizeLocaleSetting(value string, fallback string) string {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		trimmed = strings.TrimSpace(fallback)
	}
	if strings.EqualFold(trimmed, "auto") {
		return "auto"
	}
	return i18n.NormalizeLocale(trimmed)
}
