package config

import (
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"runtime"

	"gopkg.in/yaml.v3"
)

// PathEnv names a config file that replaces the per-environment lookup.
const PathEnv = "NOTEGRAPH_CONFIG"

// GetEnv returns ENV, or "local" when unset.
func GetEnv() string {
	if env, ok := os.LookupEnv("ENV"); ok && env != "" {
		return env
	}
	return "local"
}

// Load reads config/<env>.yaml, or the file named by NOTEGRAPH_CONFIG.
func Load(env string) (Config, error) {
	path := os.Getenv(PathEnv)
	if path == "" {
		path = locate(env + ".yaml")
	}

	data, err := os.ReadFile(filepath.Clean(path))
	if err != nil {
		return Config{}, fmt.Errorf("read config: %w", err)
	}
	cfg, err := Parse(data)
	if err != nil {
		return Config{}, fmt.Errorf("%s: %w", path, err)
	}
	return cfg, nil
}

// Parse expands ${VAR} and ${VAR:-default} references, decodes the YAML, applies
// defaults and validates.
func Parse(data []byte) (Config, error) {
	var cfg Config
	if err := yaml.Unmarshal(expand(data), &cfg); err != nil {
		return Config{}, fmt.Errorf("decode config: %w", err)
	}
	cfg.ApplyDefaults()
	if err := cfg.Validate(); err != nil {
		return Config{}, fmt.Errorf("invalid config: %w", err)
	}
	return cfg, nil
}

// locate prefers ./config and falls back to the repository's config directory, so
// tests and `go run` work from any package directory.
func locate(name string) string {
	local := filepath.Join("config", name)
	if _, err := os.Stat(local); err == nil {
		return local
	}
	if _, file, _, ok := runtime.Caller(0); ok {
		root := filepath.Join(filepath.Dir(file), "..", "..")
		if candidate := filepath.Join(root, "config", name); fileExists(candidate) {
			return candidate
		}
	}
	return local
}

func fileExists(path string) bool {
	info, err := os.Stat(path)
	return err == nil && !info.IsDir()
}

var envRef = regexp.MustCompile(`\$\{([A-Za-z_][A-Za-z0-9_]*)(?::-([^}]*))?\}`)

func expand(data []byte) []byte {
	return envRef.ReplaceAllFunc(data, func(ref []byte) []byte {
		m := envRef.FindSubmatch(ref)
		if v := os.Getenv(string(m[1])); v != "" {
			return []byte(v)
		}
		return m[2]
	})
}
