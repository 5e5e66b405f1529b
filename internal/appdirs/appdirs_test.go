package appdirs

import (
	"os"
	"path/filepath"
	"runtime"
	"testing"
)

func TestEnsureDirsUsePrivatePermissions(t *testing.T) {
	if runtime.GOOS == "windows" {
		t.Skip("permission bits are not portable on windows")
	}

	tests := []struct {
		name   string
		ensure func() (string, error)
	}{
		{name: "config", ensure: EnsureConfigDir},
		{name: "state", ensure: EnsureStateDir},
	}
	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			t.Setenv("HOME", t.TempDir())
			t.Setenv("XDG_CONFIG_HOME", "")
			t.Setenv("XDG_STATE_HOME", "")
			t.Setenv(HomeEnv, "")

			dir, err := tc.ensure()
			if err != nil {
				t.Fatalf("ensure %s dir failed: %v", tc.name, err)
			}
			info, err := os.Stat(dir)
			if err != nil {
				t.Fatalf("stat %s dir failed: %v", tc.name, err)
			}
			if perms := info.Mode().Perm(); perms&0o077 != 0 {
				t.Fatalf("expected private %s dir permissions, got %o", tc.name, perms)
			}
		})
	}
}

func TestHomeEnvOverridesBothDirs(t *testing.T) {
	root := t.TempDir()
	t.Setenv(HomeEnv, root)

	configPath, err := ConfigFilePath()
	if err != nil {
		t.Fatalf("ConfigFilePath failed: %v", err)
	}
	if configPath != filepath.Join(root, "config.toml") {
		t.Fatalf("unexpected config path %q", configPath)
	}

	envPath, err := EnvFilePath()
	if err != nil {
		t.Fatalf("EnvFilePath failed: %v", err)
	}
	if envPath != filepath.Join(root, ".env") {
		t.Fatalf("unexpected env path %q", envPath)
	}

	statePath, err := StateFilePath("journal.json")
	if err != nil {
		t.Fatalf("StateFilePath failed: %v", err)
	}
	if statePath != filepath.Join(root, "state", "journal.json") {
		t.Fatalf("unexpected state path %q", statePath)
	}
}

func TestXDGConfigHome(t *testing.T) {
	if runtime.GOOS != "linux" {
		t.Skip("xdg layout only applies on linux")
	}
	xdg := t.TempDir()
	t.Setenv(HomeEnv, "")
	t.Setenv("XDG_CONFIG_HOME", xdg)

	dir, err := LocalesDir()
	if err != nil {
		t.Fatalf("LocalesDir failed: %v", err)
	}
	if dir != filepath.Join(xdg, AppName, "locales") {
		t.Fatalf("unexpected locales dir %q", dir)
	}
}
