package config

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/ashwch/jarvis/internal/appdirs"
	"github.com/joho/godotenv"
)

// LoadEnv loads dotenv files in order: explicit paths, ./.env, then the
// per-user file in the config dir. Variables already set in the process
// environment are never overwritten, so earlier files win over later ones.
// Missing files are skipped.
func LoadEnv(explicit ...string) ([]string, error) {
	candidates := append([]string(nil), explicit...)
	candidates = append(candidates, ".env")
	if userEnv, err := appdirs.EnvFilePath(); err == nil {
		candidates = append(candidates, userEnv)
	}

	var loaded []string
	seen := map[string]bool{}
	for _, path := range candidates {
		path = strings.TrimSpace(path)
		if path == "" || seen[path] {
			continue
		}
		seen[path] = true
		if _, err := os.Stat(path); errors.Is(err, os.ErrNotExist) {
			continue
		}
		if err := godotenv.Load(path); err != nil {
			return loaded, fmt.Errorf("could not load env file %s: %w", path, err)
		}
		loaded = append(loaded, path)
	}
	return loaded, nil
}

func (p ProviderConfig) APIKey() string {
	if p.APIKeyEnv == "" {
		return ""
	}
	return strings.TrimSpace(os.Getenv(p.APIKeyEnv))
}
