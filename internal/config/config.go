// Package config loads mediasheet settings from a YAML file and MEDIASHEET_*
// environment variables on top of built-in defaults.
package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/viper"

	"github.com/alexanderramin/mediasheet/internal/auth"
	"github.com/alexanderramin/mediasheet/internal/export"
	"github.com/alexanderramin/mediasheet/internal/shortcode"
)

const EnvPrefix = "MEDIASHEET"

const (
	BackendSQLite    = "sqlite"
	BackendFirestore = "firestore"
)

type StoreConfig struct {
	Backend      string `mapstructure:"backend"`
	DatabasePath string `mapstructure:"database_path"`
}

type FirebaseConfig struct {
	ProjectID       string `mapstructure:"project_id"`
	CredentialsFile string `mapstructure:"credentials_file"`
}

type AuthConfig struct {
	ClientFile string        `mapstructure:"client_file"`
	TokenTTL   time.Duration `mapstructure:"token_ttl"`
}

type ExportConfig struct {
	Ranges                export.Ranges `mapstructure:"ranges"`
	MappingFile           string        `mapstructure:"mapping_file"`
	ShortcodeTTL          time.Duration `mapstructure:"shortcode_ttl"`
	ShortcodeCodeFallback bool          `mapstructure:"shortcode_code_fallback"`
	Actor                 string        `mapstructure:"actor"`
}

type EventsConfig struct {
	Brokers []string `mapstructure:"brokers"`
	Topic   string   `mapstructure:"topic"`
}

// Enabled reports whether status events should be published.
func (c EventsConfig) Enabled() bool {
	return len(c.Brokers) > 0 && c.Topic != ""
}

type ServerConfig struct {
	Addr string `mapstructure:"addr"`
}

type LogConfig struct {
	Level string `mapstructure:"level"`
	JSON  bool   `mapstructure:"json"`
}

type Config struct {
	Store    StoreConfig    `mapstructure:"store"`
	Firebase FirebaseConfig `mapstructure:"firebase"`
	Auth     AuthConfig     `mapstructure:"auth"`
	Export   ExportConfig   `mapstructure:"export"`
	Events   EventsConfig   `mapstructure:"events"`
	Server   ServerConfig   `mapstructure:"server"`
	Log      LogConfig      `mapstructure:"log"`
}

// DefaultConfig returns the settings used when nothing is configured:
// a local SQLite store and no event publishing.
func DefaultConfig() Config {
	return Config{
		Store: StoreConfig{
			Backend:      BackendSQLite,
			DatabasePath: defaultDBPath(),
		},
		Auth: AuthConfig{
			ClientFile: "client_secret.json",
			TokenTTL:   auth.DefaultTokenTTL,
		},
		Export: ExportConfig{
			Ranges:       export.DefaultRanges(),
			ShortcodeTTL: shortcode.DefaultTTL,
		},
		Events: EventsConfig{
			Topic: "mediasheet.export-status",
		},
		Server: ServerConfig{Addr: ":8080"},
		Log:    LogConfig{Level: "info"},
	}
}

func defaultDBPath() string {
	if v := os.Getenv("MEDIASHEET_DB"); v != "" {
		return v
	}
	home, err := os.UserHomeDir()
	if err != nil {
		return "mediasheet.db"
	}
	return filepath.Join(home, ".mediasheet", "mediasheet.db")
}

// Load reads configuration into v. An explicit file must exist; otherwise
// .mediasheet/config.yaml and $HOME/.mediasheet/config.yaml are searched and
// may be absent.
func Load(v *viper.Viper, cfgFile string) (Config, error) {
	setDefaults(v, DefaultConfig())

	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.AddConfigPath(".mediasheet")
		v.AddConfigPath("$HOME/.mediasheet")
		v.SetConfigType("yaml")
		v.SetConfigName("config")
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("reading config: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("decoding config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return Config{}, err
	}
	return cfg, nil
}

// setDefaults registers every key so environment variables can override
// keys that appear in no config file.
func setDefaults(v *viper.Viper, d Config) {
	v.SetDefault("store.backend", d.Store.Backend)
	v.SetDefault("store.database_path", d.Store.DatabasePath)
	v.SetDefault("firebase.project_id", d.Firebase.ProjectID)
	v.SetDefault("firebase.credentials_file", d.Firebase.CredentialsFile)
	v.SetDefault("auth.client_file", d.Auth.ClientFile)
	v.SetDefault("auth.token_ttl", d.Auth.TokenTTL)
	v.SetDefault("export.ranges.summary", d.Export.Ranges.Summary)
	v.SetDefault("export.ranges.hierarchy", d.Export.Ranges.Hierarchy)
	v.SetDefault("export.ranges.breakdown", d.Export.Ranges.Breakdown)
	v.SetDefault("export.ranges.clear_hierarchy", d.Export.Ranges.ClearHierarchy)
	v.SetDefault("export.ranges.clear_breakdown", d.Export.Ranges.ClearBreakdown)
	v.SetDefault("export.mapping_file", d.Export.MappingFile)
	v.SetDefault("export.shortcode_ttl", d.Export.ShortcodeTTL)
	v.SetDefault("export.shortcode_code_fallback", d.Export.ShortcodeCodeFallback)
	v.SetDefault("export.actor", d.Export.Actor)
	v.SetDefault("events.brokers", d.Events.Brokers)
	v.SetDefault("events.topic", d.Events.Topic)
	v.SetDefault("server.addr", d.Server.Addr)
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.json", d.Log.JSON)
}

// Validate reports every invalid setting at once.
func (c Config) Validate() error {
	var errs []error
	switch c.Store.Backend {
	case BackendSQLite:
		if c.Store.DatabasePath == "" {
			errs = append(errs, errors.New("store.database_path is required for the sqlite backend"))
		}
	case BackendFirestore:
		if c.Firebase.ProjectID == "" {
			errs = append(errs, errors.New("firebase.project_id is required for the firestore backend"))
		}
	default:
		errs = append(errs, fmt.Errorf("store.backend: unknown backend %q (expected sqlite or firestore)", c.Store.Backend))
	}
	if c.Auth.TokenTTL <= 0 {
		errs = append(errs, errors.New("auth.token_ttl must be positive"))
	}
	r := c.Export.Ranges
	for name, rng := range map[string]string{
		"summary": r.Summary, "hierarchy": r.Hierarchy, "breakdown": r.Breakdown,
		"clear_hierarchy": r.ClearHierarchy, "clear_breakdown": r.ClearBreakdown,
	} {
		if !strings.Contains(rng, "!") {
			errs = append(errs, fmt.Errorf("export.ranges.%s: %q is not an A1 range with a sheet name", name, rng))
		}
	}
	return errors.Join(errs...)
}
