package appdirs

import (
	"fmt"
	"os"
	"path/filepath"
	"runtime"
)

const (
	AppName = "jarvis"

	// HomeEnv relocates both config and state under one directory.
	HomeEnv = "JARVIS_HOME"
)

type dirKind int

const (
	configKind dirKind = iota
	stateKind
)

func baseDir(kind dirKind) (string, error) {
	home, err := os.UserHomeDir()
	if err != nil {
		return "", fmt.Errorf("could not resolve home directory: %w", err)
	}

	switch runtime.GOOS {
	case "darwin":
		return filepath.Join(home, "Library", "Application Support"), nil
	case "windows":
		env, fallback := "APPDATA", "Roaming"
		if kind == stateKind {
			env, fallback = "LOCALAPPDATA", "Local"
		}
		if dir := os.Getenv(env); dir != "" {
			return dir, nil
		}
		return filepath.Join(home, "AppData", fallback), nil
	default:
		env, fallback := "XDG_CONFIG_HOME", filepath.Join(home, ".config")
		if kind == stateKind {
			env, fallback = "XDG_STATE_HOME", filepath.Join(home, ".local", "state")
		}
		if dir := os.Getenv(env); dir != "" {
			return dir, nil
		}
		return fallback, nil
	}
}

func ConfigDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return dir, nil
	}
	base, err := baseDir(configKind)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName), nil
}

func StateDir() (string, error) {
	if dir := os.Getenv(HomeEnv); dir != "" {
		return filepath.Join(dir, "state"), nil
	}
	base, err := baseDir(stateKind)
	if err != nil {
		return "", err
	}
	return filepath.Join(base, AppName, "state"), nil
}

func ConfigFilePath() (string, error) {
	return inConfigDir("config.toml")
}

func EnvFilePath() (string, error) {
	return inConfigDir(".env")
}

func LocalesDir() (string, error) {
	return inConfigDir("locales")
}

func StateFilePath(name string) (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func EnsureConfigDir() (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return ensurePrivate(dir, "config")
}

func EnsureStateDir() (string, error) {
	dir, err := StateDir()
	if err != nil {
		return "", err
	}
	return ensurePrivate(dir, "state")
}

func inConfigDir(name string) (string, error) {
	dir, err := ConfigDir()
	if err != nil {
		return "", err
	}
	return filepath.Join(dir, name), nil
}

func ensurePrivate(dir, label string) (string, error) {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return "", fmt.Errorf("could not create %s dir: %w", label, err)
	}
	if err := os.Chmod(dir, 0o700); err != nil {
		return "", fmt.Errorf("could not secure %s dir permissions: %w", label, err)
	}
	return dir, nil
}
