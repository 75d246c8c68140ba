package config

import (
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
)

// EnvFileCandidates lists the .env files read at startup, nearest first.
func EnvFileCandidates() []string {
	paths := []string{".env"}
	if home, err := os.UserHomeDir(); err == nil {
		paths = append(paths,
			filepath.Join(home, ".nutritrack", ".env"),
			filepath.Join(home, ".config", "nutritrack", ".env"),
		)
	}
	return paths
}

// LoadEnvFiles applies every existing candidate .env file. Variables already
// set in the environment, or by a nearer file, are left alone.
func LoadEnvFiles() error {
	return loadEnvFiles(EnvFileCandidates()...)
}

func loadEnvFiles(paths ...string) error {
	var present []string
	for _, path := range paths {
		if _, err := os.Stat(path); err == nil {
			present = append(present, path)
		}
	}
	if len(present) == 0 {
		return nil
	}
	return godotenv.Load(present...)
}

// envAliases maps canonical NUTRITRACK_ variables to the shorter names
// hosting platforms tend to set.
var envAliases = map[string][]string{
	"NUTRITRACK_SECURITY_JWT_SECRET": {"JWT_SECRET"},
	"NUTRITRACK_REMOTE_API_KEY":      {"REMOTE_API_KEY", "BACKEND_API_KEY"},
	"NUTRITRACK_REMOTE_BASE_URL":     {"REMOTE_BASE_URL", "BACKEND_URL"},
	"NUTRITRACK_SERVER_PORT":         {"PORT"},
}

// lookupEnv returns the first non-empty value of key or one of its aliases.
func lookupEnv(key string) (string, bool) {
	for _, k := range append([]string{key}, envAliases[key]...) {
		if v := os.Getenv(k); v != "" {
			return v, true
		}
	}
	return "", false
}

func expandPath(path string) string {
	if !strings.HasPrefix(path, "~/") {
		return path
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return path
	}
	return filepath.Join(home, path[2:])
}
