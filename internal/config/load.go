package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"regexp"

	"github.com/joho/godotenv"
	"github.com/kelseyhightower/envconfig"
	"gopkg.in/yaml.v3"
)

const (
	// DefaultFile is read from the current directory when present.
	DefaultFile = "mc-backup.yaml"
	// EnvPrefix prefixes every environment override, e.g. MC_BACKUP_RETENTION_LOG_DAYS.
	EnvPrefix = "MC_BACKUP"
	// EnvFile names a config file that must exist.
	EnvFile = EnvPrefix + "_CONFIG"
)

// matches $(VAR_NAME)
var envPattern = regexp.MustCompile(`\$\(([A-Za-z0-9_]+)\)`)

// replaces $(VAR) with os.Getenv(VAR)
func expandEnvVars(s string) string {
	return envPattern.ReplaceAllStringFunc(s, func(m string) string {
		key := mapEnvKey(envPattern.FindStringSubmatch(m)[1])
		return os.Getenv(key)
	})
}

// Load builds the configuration: defaults, then the YAML file, then
// MC_BACKUP_* environment variables (a .env file in the current directory
// is loaded first). An empty path means $MC_BACKUP_CONFIG, or DefaultFile
// if that is unset; only DefaultFile may be missing.
func Load(path string) (*Config, error) {
	if err := godotenv.Load(); err != nil && !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("loading .env: %w", err)
	}

	required := path != ""
	if !required {
		path = DefaultFile
		if p := os.Getenv(EnvFile); p != "" {
			path, required = p, true
		}
	}

	cfg := Defaults()

	if err := readFile(path, cfg); err != nil {
		if required || !errors.Is(err, fs.ErrNotExist) {
			return nil, err
		}
	}

	if err := envconfig.Process(EnvPrefix, cfg); err != nil {
		return nil, fmt.Errorf("reading environment: %w", err)
	}

	if err := cfg.resolve(); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func readFile(path string, cfg *Config) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("reading config file: %w", err)
	}

	// expand $(ENV_VAR) placeholders
	expanded := expandEnvVars(string(data))

	if err := yaml.Unmarshal([]byte(expanded), cfg); err != nil {
		return fmt.Errorf("unmarshalling yaml: %w", err)
	}

	return nil
}

// resolve anchors relative directories at WorkDir, which itself defaults
// to the process working directory.
func (c *Config) resolve() error {
	if c.WorkDir == "" {
		wd, err := os.Getwd()
		if err != nil {
			return fmt.Errorf("resolving working directory: %w", err)
		}
		c.WorkDir = wd
	}

	for _, dir := range []*string{&c.LogDir, &c.ArchiveDir, &c.SourceDir, &c.BackupDir} {
		if *dir != "" && !filepath.IsAbs(*dir) {
			*dir = filepath.Join(c.WorkDir, *dir)
		}
	}

	return nil
}

// LockPath returns the lock file location, or "" when locking is off.
func (c *Config) LockPath() string {
	if c.LockFile == "" {
		return ""
	}
	if filepath.IsAbs(c.LockFile) {
		return c.LockFile
	}
	return filepath.Join(c.LogDir, c.LockFile)
}
