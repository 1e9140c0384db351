// internal/config/config.go
//
// This package handles configuration and the .esencia directory structure.
// Every project that uses esencia gets a .esencia/ folder created in its root.

package config

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"
	"gopkg.in/yaml.v3"
)

const (
	// Dir is the name of the directory we create in each project
	Dir = ".esencia"

	// EnvPrefix prefixes environment overrides, e.g. ESENCIA_SERVER_PORT.
	EnvPrefix = "ESENCIA"

	defaultManifestDir = Dir + "/components"
)

const defaultProjectConfigYAML = `# esencia project configuration
version: 1

# Files or directories holding component manifests, relative to the project.
manifests:
  paths:
    - .esencia/components
  watch: false
  debounce: 500ms

# Resolved trees are memoized until the registry changes or the TTL expires.
cache:
  enabled: true
  ttl: 10m
  cleanup_interval: 30m

server:
  host: 127.0.0.1
  port: 8790

log:
  level: info

tracing:
  enabled: false
  exporter: file
  sample_rate: 1.0
`

const exampleManifestYAML = `# Components declared here are registered on startup.
components:
  - name: layout
  - name: header
    parent: layout
    container: "#header"
  - name: content
    parent: layout
    container: "#content"
`

// ManifestConfig lists where component manifests are loaded from.
type ManifestConfig struct {
	Paths    []string      `yaml:"paths" mapstructure:"paths"`
	Watch    bool          `yaml:"watch" mapstructure:"watch"`
	Debounce time.Duration `yaml:"debounce" mapstructure:"debounce"`
}

// CacheConfig controls memoization of resolved trees.
type CacheConfig struct {
	Enabled         bool          `yaml:"enabled" mapstructure:"enabled"`
	TTL             time.Duration `yaml:"ttl" mapstructure:"ttl"`
	CleanupInterval time.Duration `yaml:"cleanup_interval" mapstructure:"cleanup_interval"`
}

// ServerConfig holds the HTTP bind address.
type ServerConfig struct {
	Host string `yaml:"host" mapstructure:"host"`
	Port int    `yaml:"port" mapstructure:"port"`
}

// LogConfig holds logging preferences.
type LogConfig struct {
	Level string `yaml:"level" mapstructure:"level"`
}

// TracingConfig mirrors tracing.Config in its on-disk form.
type TracingConfig struct {
	Enabled      bool    `yaml:"enabled" mapstructure:"enabled"`
	Exporter     string  `yaml:"exporter" mapstructure:"exporter"`
	FilePath     string  `yaml:"file_path,omitempty" mapstructure:"file_path"`
	OTLPEndpoint string  `yaml:"otlp_endpoint,omitempty" mapstructure:"otlp_endpoint"`
	SampleRate   float64 `yaml:"sample_rate" mapstructure:"sample_rate"`
}

// ProjectConfig models .esencia/config.yaml.
type ProjectConfig struct {
	Version   int            `yaml:"version" mapstructure:"version"`
	Manifests ManifestConfig `yaml:"manifests" mapstructure:"manifests"`
	Cache     CacheConfig    `yaml:"cache" mapstructure:"cache"`
	Server    ServerConfig   `yaml:"server" mapstructure:"server"`
	Log       LogConfig      `yaml:"log" mapstructure:"log"`
	Tracing   TracingConfig  `yaml:"tracing" mapstructure:"tracing"`
}

// Config holds the runtime configuration for esencia.
type Config struct {
	// ProjectDir is the directory esencia runs against
	ProjectDir string

	// StateDir is ProjectDir/.esencia
	StateDir string

	// ConfigFile is the config file that was read, if any
	ConfigFile string

	Project ProjectConfig
}

// InitDir creates the .esencia directory structure in the given project
// directory, plus a default config and an example manifest when missing.
//
// Structure created:
// .esencia/
// ├── config.yaml
// ├── components/   <- component manifests (*.yaml)
// ├── logs/
// └── traces/
func InitDir(projectDir string) error {
	stateDir := filepath.Join(projectDir, Dir)
	dirs := []string{
		filepath.Join(stateDir, "components"),
		filepath.Join(stateDir, "logs"),
		filepath.Join(stateDir, "traces"),
	}
	for _, dir := range dirs {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("config: create %s: %w", dir, err)
		}
	}
	if err := writeIfMissing(filepath.Join(stateDir, "config.yaml"), defaultProjectConfigYAML); err != nil {
		return err
	}
	return writeIfMissing(filepath.Join(stateDir, "components", "example.yaml"), exampleManifestYAML)
}

// Load reads the project configuration through v, which may already carry
// flag bindings. A nil v gets a fresh instance. Missing config files fall back
// to defaults; ESENCIA_* environment variables override file values.
func Load(projectDir string, configFile string, v *viper.Viper) (*Config, error) {
	if v == nil {
		v = viper.New()
	}
	abs, err := filepath.Abs(projectDir)
	if err != nil {
		return nil, fmt.Errorf("config: resolve project dir: %w", err)
	}
	cfg := &Config{
		ProjectDir: abs,
		StateDir:   filepath.Join(abs, Dir),
	}
	setDefaults(v)
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	path := strings.TrimSpace(configFile)
	explicit := path != ""
	if !explicit {
		path = cfg.ConfigPath()
	}
	v.SetConfigFile(path)
	v.SetConfigType("yaml")
	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if explicit || !(errors.As(err, &notFound) || errors.Is(err, fs.ErrNotExist)) {
			return nil, fmt.Errorf("config: read %s: %w", path, err)
		}
	} else {
		cfg.ConfigFile = v.ConfigFileUsed()
	}

	var parsed ProjectConfig
	if err := v.Unmarshal(&parsed); err != nil {
		return nil, fmt.Errorf("config: decode: %w", err)
	}
	parsed.normalize()
	if err := parsed.validate(); err != nil {
		return nil, fmt.Errorf("config: %w", err)
	}
	cfg.Project = parsed
	return cfg, nil
}

// Defaults returns the configuration used when no file is present.
func Defaults() ProjectConfig {
	return ProjectConfig{
		Version: 1,
		Manifests: ManifestConfig{
			Paths:    []string{defaultManifestDir},
			Debounce: 500 * time.Millisecond,
		},
		Cache: CacheConfig{
			Enabled:         true,
			TTL:             10 * time.Minute,
			CleanupInterval: 30 * time.Minute,
		},
		Server: ServerConfig{
			Host: "127.0.0.1",
			Port: 8790,
		},
		Log: LogConfig{Level: "info"},
		Tracing: TracingConfig{
			Exporter:     "file",
			OTLPEndpoint: "localhost:4317",
			SampleRate:   1.0,
		},
	}
}

func setDefaults(v *viper.Viper) {
	d := Defaults()
	v.SetDefault("version", d.Version)
	v.SetDefault("manifests.paths", d.Manifests.Paths)
	v.SetDefault("manifests.watch", d.Manifests.Watch)
	v.SetDefault("manifests.debounce", d.Manifests.Debounce)
	v.SetDefault("cache.enabled", d.Cache.Enabled)
	v.SetDefault("cache.ttl", d.Cache.TTL)
	v.SetDefault("cache.cleanup_interval", d.Cache.CleanupInterval)
	v.SetDefault("server.host", d.Server.Host)
	v.SetDefault("server.port", d.Server.Port)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("tracing.enabled", d.Tracing.Enabled)
	v.SetDefault("tracing.exporter", d.Tracing.Exporter)
	v.SetDefault("tracing.file_path", d.Tracing.FilePath)
	v.SetDefault("tracing.otlp_endpoint", d.Tracing.OTLPEndpoint)
	v.SetDefault("tracing.sample_rate", d.Tracing.SampleRate)
}

// ConfigPath returns the on-disk location for the project config file.
func (c *Config) ConfigPath() string {
	return filepath.Join(c.StateDir, "config.yaml")
}

// LogsDir returns the path to the logs directory
func (c *Config) LogsDir() string {
	return filepath.Join(c.StateDir, "logs")
}

// TraceFile returns the configured trace file, defaulting under .esencia/traces.
func (c *Config) TraceFile() string {
	if c.Project.Tracing.FilePath != "" {
		return resolvePath(c.ProjectDir, c.Project.Tracing.FilePath)
	}
	return filepath.Join(c.StateDir, "traces", "traces.jsonl")
}

// ManifestPaths returns the manifest locations as absolute paths.
func (c *Config) ManifestPaths() []string {
	paths := make([]string, 0, len(c.Project.Manifests.Paths))
	for _, p := range c.Project.Manifests.Paths {
		if resolved := resolvePath(c.ProjectDir, p); resolved != "" {
			paths = append(paths, resolved)
		}
	}
	return paths
}

// Save validates the project config and writes it back to ConfigPath.
func (c *Config) Save() error {
	if c == nil {
		return fmt.Errorf("config: nil receiver")
	}
	c.Project.normalize()
	if err := c.Project.validate(); err != nil {
		return fmt.Errorf("config: %w", err)
	}
	if err := os.MkdirAll(c.StateDir, 0o755); err != nil {
		return fmt.Errorf("config: ensure state dir: %w", err)
	}
	data, err := yaml.Marshal(c.Project)
	if err != nil {
		return fmt.Errorf("config: encode config: %w", err)
	}
	if err := os.WriteFile(c.ConfigPath(), data, 0o644); err != nil {
		return fmt.Errorf("config: write project config: %w", err)
	}
	return nil
}

func (pc *ProjectConfig) normalize() {
	if pc.Version == 0 {
		pc.Version = 1
	}
	paths := pc.Manifests.Paths[:0]
	for _, p := range pc.Manifests.Paths {
		if trimmed := strings.TrimSpace(p); trimmed != "" {
			paths = append(paths, trimmed)
		}
	}
	pc.Manifests.Paths = paths
	pc.Server.Host = strings.TrimSpace(pc.Server.Host)
	pc.Log.Level = strings.ToLower(strings.TrimSpace(pc.Log.Level))
	pc.Tracing.Exporter = strings.ToLower(strings.TrimSpace(pc.Tracing.Exporter))
}

func (pc *ProjectConfig) validate() error {
	if pc.Version < 1 {
		return fmt.Errorf("config version must be >= 1")
	}
	if len(pc.Manifests.Paths) == 0 {
		return fmt.Errorf("manifests.paths must list at least one path")
	}
	if pc.Manifests.Debounce < 0 {
		return fmt.Errorf("manifests.debounce must be >= 0")
	}
	if pc.Cache.TTL < 0 || pc.Cache.CleanupInterval < 0 {
		return fmt.Errorf("cache durations must be >= 0")
	}
	if pc.Server.Port < 0 || pc.Server.Port > 65535 {
		return fmt.Errorf("server.port must be between 0 and 65535")
	}
	switch pc.Log.Level {
	case "", "debug", "info", "warn", "warning", "error":
	default:
		return fmt.Errorf("log.level must be one of debug, info, warn, error")
	}
	switch pc.Tracing.Exporter {
	case "", "none", "file", "stdout", "otlp":
	default:
		return fmt.Errorf("tracing.exporter must be one of none, file, stdout, otlp")
	}
	if pc.Tracing.SampleRate < 0 || pc.Tracing.SampleRate > 1 {
		return fmt.Errorf("tracing.sample_rate must be between 0 and 1")
	}
	return nil
}

func resolvePath(base, candidate string) string {
	trimmed := strings.TrimSpace(candidate)
	if trimmed == "" {
		return ""
	}
	if filepath.IsAbs(trimmed) {
		return filepath.Clean(trimmed)
	}
	return filepath.Clean(filepath.Join(base, trimmed))
}

func writeIfMissing(path, content string) error {
	if _, err := os.Stat(path); err == nil {
		return nil
	} else if !errors.Is(err, fs.ErrNotExist) {
		return err
	}
	if err := os.WriteFile(path, []byte(content), 0o644); err != nil {
		return fmt.Errorf("config: write %s: %w", path, err)
	}
	return nil
}
