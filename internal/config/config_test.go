package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/alexanderramin/mediasheet/internal/domain"
	"github.com/alexanderramin/mediasheet/internal/export"
)

func TestLoad_DefaultsWithoutFile(t *testing.T) {
	t.Chdir(t.TempDir())
	t.Setenv("HOME", t.TempDir())

	cfg, err := Load(viper.New(), "")
	require.NoError(t, err)
	assert.Equal(t, BackendSQLite, cfg.Store.Backend)
	assert.Equal(t, 50*time.Minute, cfg.Auth.TokenTTL)
	assert.Equal(t, export.DefaultRanges(), cfg.Export.Ranges)
	assert.False(t, cfg.Export.ShortcodeCodeFallback)
	assert.False(t, cfg.Events.Enabled())
}

func TestLoad_FileAndEnvironment(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
store:
  backend: firestore
firebase:
  project_id: media-prod
export:
  shortcode_code_fallback: true
  ranges:
    hierarchy: "Plan!A6"
events:
  brokers: ["kafka-1:9092"]
`), 0o644))
	t.Setenv("MEDIASHEET_AUTH_TOKEN_TTL", "20m")
	t.Setenv("MEDIASHEET_EVENTS_TOPIC", "exports")

	cfg, err := Load(viper.New(), path)
	require.NoError(t, err)
	assert.Equal(t, BackendFirestore, cfg.Store.Backend)
	assert.Equal(t, "media-prod", cfg.Firebase.ProjectID)
	assert.True(t, cfg.Export.ShortcodeCodeFallback)
	assert.Equal(t, "Plan!A6", cfg.Export.Ranges.Hierarchy)
	assert.Equal(t, "MPlan!A1", cfg.Export.Ranges.Summary, "unset keys keep their defaults")
	assert.Equal(t, 20*time.Minute, cfg.Auth.TokenTTL)
	assert.True(t, cfg.Events.Enabled())
	assert.Equal(t, "exports", cfg.Events.Topic)
}

func TestLoad_ExplicitFileMustExist(t *testing.T) {
	_, err := Load(viper.New(), filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestValidate_ReportsEveryProblem(t *testing.T) {
	cfg := DefaultConfig()
	cfg.Store.Backend = "firestore"
	cfg.Auth.TokenTTL = 0
	cfg.Export.Ranges.Breakdown = "A1"

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "firebase.project_id")
	assert.Contains(t, err.Error(), "auth.token_ttl")
	assert.Contains(t, err.Error(), "export.ranges.breakdown")
}

func TestLanguageValue(t *testing.T) {
	var lang LanguageValue
	fs := pflag.NewFlagSet("test", pflag.ContinueOnError)
	fs.Var(&lang, "lang", "export language")

	require.NoError(t, fs.Parse([]string{"--lang", "en"}))
	assert.Equal(t, domain.LanguageEN, lang.Language())

	assert.Error(t, fs.Parse([]string{"--lang", "de"}))
}

func TestNewLogger(t *testing.T) {
	logger, err := NewLogger(LogConfig{Level: "warn"}, false)
	require.NoError(t, err)
	assert.False(t, logger.Core().Enabled(-1))

	_, err = NewLogger(LogConfig{Level: "chatty"}, false)
	assert.Error(t, err)
}
