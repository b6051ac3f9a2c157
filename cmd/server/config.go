package main

import (
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/rs/zerolog/log"
	"github.com/spf13/viper"

	"github.com/quentinrf/darkwatt/internal/domain"
	"github.com/quentinrf/darkwatt/pkg/tlsconfig"
)

// Config holds application configuration
type Config struct {
	GRPC      GRPCConfig      `mapstructure:"grpc"`
	HTTP      HTTPConfig      `mapstructure:"http"`
	Sampling  SamplingConfig  `mapstructure:"sampling"`
	Repo      RepoConfig      `mapstructure:"repo"`
	Capture   CaptureConfig   `mapstructure:"capture"`
	Surface   SurfaceConfig   `mapstructure:"surface"`
	Display   DisplayConfig   `mapstructure:"display"`
	Savings   SavingsConfig   `mapstructure:"savings"`
	Log       LogConfig       `mapstructure:"log"`
	Discovery DiscoveryConfig `mapstructure:"discovery"`
	TLS       TLSConfig       `mapstructure:"tls"`
}

type GRPCConfig struct {
	Port string `mapstructure:"port"`
}

type HTTPConfig struct {
	Addr string `mapstructure:"addr"` // "" disables the HTTP surface
}

type SamplingConfig struct {
	Interval  time.Duration `mapstructure:"interval"`
	Retention time.Duration `mapstructure:"retention"`
}

type RepoConfig struct {
	Type   string `mapstructure:"type"`    // "memory" | "sqlite"
	DBPath string `mapstructure:"db_path"` // used when Type=sqlite
}

type CaptureConfig struct {
	Source  string `mapstructure:"source"` // "mock" | "desktop"
	Display int    `mapstructure:"display"`
}

type SurfaceConfig struct {
	Mode string `mapstructure:"mode"` // "tracked" | "display"
}

type DisplayConfig struct {
	Tech        string  `mapstructure:"tech"`
	ScaleFactor float64 `mapstructure:"scale_factor"`
	PeakNits    float64 `mapstructure:"peak_nits"`
	Width       int     `mapstructure:"width"`
	Height      int     `mapstructure:"height"`
}

type SavingsConfig struct {
	Hours float64 `mapstructure:"hours"`
}

type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
}

type DiscoveryConfig struct {
	Enabled  bool   `mapstructure:"enabled"`
	Instance string `mapstructure:"instance"`
}

type TLSConfig struct {
	Cert string `mapstructure:"cert"`
	Key  string `mapstructure:"key"`
	CA   string `mapstructure:"ca"`
}

// Files adapts the TLS section for pkg/tlsconfig.
func (c TLSConfig) Files() tlsconfig.Files {
	return tlsconfig.Files{Cert: c.Cert, Key: c.Key, CA: c.CA}
}

// legacyEnv maps keys to the pre-prefix environment variable names.
var legacyEnv = map[string]string{
	"grpc.port":         "PORT",
	"repo.type":         "REPO_TYPE",
	"repo.db_path":      "DB_PATH",
	"sampling.interval": "RECORD_INTERVAL",
	"capture.source":    "SENSOR_TYPE",
	"tls.cert":          "TLS_CERT",
	"tls.key":           "TLS_KEY",
	"tls.ca":            "TLS_CA",
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("grpc.port", "50051")
	v.SetDefault("http.addr", ":8080")
	v.SetDefault("sampling.interval", time.Second)
	v.SetDefault("sampling.retention", 30*24*time.Hour)
	v.SetDefault("repo.type", "memory")
	v.SetDefault("repo.db_path", "./darkwatt.db")
	v.SetDefault("capture.source", "mock")
	v.SetDefault("capture.display", 0)
	v.SetDefault("surface.mode", "tracked")
	v.SetDefault("display.tech", string(domain.DisplayLCD))
	v.SetDefault("display.scale_factor", 1.0)
	v.SetDefault("display.peak_nits", 250.0)
	v.SetDefault("display.width", 1920)
	v.SetDefault("display.height", 1080)
	v.SetDefault("savings.hours", 1.0)
	v.SetDefault("log.level", "info")
	v.SetDefault("log.format", "auto")
	v.SetDefault("discovery.enabled", false)
	v.SetDefault("discovery.instance", "darkwatt")
}

// configManager owns the viper instance and the last valid Config.
type configManager struct {
	v *viper.Viper

	mu        sync.RWMutex
	config    Config
	callbacks []func(Config)
}

// newConfigManager reads darkwatt.toml from the config dir or cwd, or file
// when set, with DARKWATT_ environment overrides.
func newConfigManager(file string) (*configManager, error) {
	v := viper.New()
	if file != "" {
		v.SetConfigFile(file)
	} else {
		v.SetConfigName("darkwatt")
		v.SetConfigType("toml")
		v.AddConfigPath("$XDG_CONFIG_HOME/darkwatt")
		v.AddConfigPath("$HOME/.config/darkwatt")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix("DARKWATT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	for key, legacy := range legacyEnv {
		env := "DARKWATT_" + strings.ToUpper(strings.ReplaceAll(key, ".", "_"))
		if err := v.BindEnv(key, env, legacy); err != nil {
			return nil, fmt.Errorf("failed to bind %s: %w", legacy, err)
		}
	}
	setDefaults(v)

	return &configManager{v: v}, nil
}

// Load reads the file (a missing one is fine) and validates the result.
func (m *configManager) Load() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.loadLocked()
}

func (m *configManager) loadLocked() error {
	if err := m.v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return fmt.Errorf("failed to read config file %s: %w", m.v.ConfigFileUsed(), err)
		}
	}

	var cfg Config
	if err := m.v.Unmarshal(&cfg); err != nil {
		return fmt.Errorf("failed to parse config: %w", err)
	}
	if err := cfg.validate(); err != nil {
		return fmt.Errorf("configuration validation failed: %w", err)
	}
	m.config = cfg
	return nil
}

// Current returns the last valid configuration.
func (m *configManager) Current() Config {
	m.mu.RLock()
	defer m.mu.RUnlock()
	return m.config
}

// OnChange registers a callback run after every successful reload.
func (m *configManager) OnChange(fn func(Config)) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.callbacks = append(m.callbacks, fn)
}

// Reload re-reads the configuration and notifies callbacks. An invalid file
// leaves the previous configuration in place.
func (m *configManager) Reload() error {
	m.mu.Lock()
	if err := m.loadLocked(); err != nil {
		m.mu.Unlock()
		return err
	}
	cfg := m.config
	callbacks := append([]func(Config){}, m.callbacks...)
	m.mu.Unlock()

	for _, fn := range callbacks {
		fn(cfg)
	}
	return nil
}

// Watch reloads whenever the config file changes on disk.
func (m *configManager) Watch() {
	if m.v.ConfigFileUsed() == "" {
		return
	}
	m.v.OnConfigChange(func(e fsnotify.Event) {
		log.Debug().Str("op", e.Op.String()).Str("file", e.Name).Msg("config change detected")
		if err := m.Reload(); err != nil {
			log.Warn().Err(err).Msg("failed to reload config, keeping previous")
			return
		}
		log.Info().Str("file", e.Name).Msg("config reloaded")
	})
	m.v.WatchConfig()
}

func (c Config) validate() error {
	if c.Sampling.Interval <= 0 {
		return fmt.Errorf("sampling.interval must be positive, got %s", c.Sampling.Interval)
	}
	switch c.Repo.Type {
	case "memory", "sqlite":
	default:
		return fmt.Errorf("unknown repo.type %q", c.Repo.Type)
	}
	switch c.Capture.Source {
	case "mock", "desktop":
	default:
		return fmt.Errorf("unknown capture.source %q", c.Capture.Source)
	}
	switch c.Surface.Mode {
	case "tracked", "display":
	default:
		return fmt.Errorf("unknown surface.mode %q", c.Surface.Mode)
	}
	if _, err := domain.ParseDisplayTech(c.Display.Tech); err != nil {
		return err
	}
	if c.TLS.Files().Enabled() && (c.TLS.Cert == "" || c.TLS.Key == "" || c.TLS.CA == "") {
		return tlsconfig.ErrIncomplete
	}
	return nil
}
