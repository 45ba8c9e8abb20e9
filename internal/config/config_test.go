package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/i474232898/tempest-display/internal/prefs"
	"github.com/i474232898/tempest-display/internal/units"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("CONFIG_FILE", "")
	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 3*time.Second, cfg.FeedInterval)
	assert.Equal(t, 10*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 12345, cfg.Station.ID)
	assert.Nil(t, cfg.Station.Lat)
	assert.Equal(t, prefs.Defaults(), cfg.Preferences)
	assert.Empty(t, cfg.MQTT.Broker)
}

func TestFileThenEnv(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
port: "9000"
log_format: json
refresh_interval: 5m
station:
  id: 777
  lat: 47.6
  lon: -122.3
store:
  max_history: 10
  sqlite_path: ":memory:"
mqtt:
  broker: localhost
preferences:
  temperatureUnit: C
  windUnit: kph
  pressureUnit: hPa
  rainUnit: mm
  theme: the-grid
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("PORT", "9100")
	t.Setenv("DEFAULT_THEME", "tokyo-night")
	t.Setenv("STORE_MAX_AGE", "2h")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "9100", cfg.Port)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.Equal(t, 5*time.Minute, cfg.RefreshInterval)
	assert.Equal(t, 777, cfg.Station.ID)
	require.NotNil(t, cfg.Station.Lat)
	assert.InDelta(t, 47.6, *cfg.Station.Lat, 1e-9)
	assert.Equal(t, 10, cfg.Store.MaxHistory)
	assert.Equal(t, 2*time.Hour, cfg.Store.MaxAge)
	assert.Equal(t, ":memory:", cfg.Store.SQLitePath)
	assert.Equal(t, "localhost", cfg.MQTT.Broker)
	assert.Equal(t, 1883, cfg.MQTT.Port)
	assert.Equal(t, units.Celsius, cfg.Preferences.TemperatureUnit)
	assert.Equal(t, prefs.ThemeTokyoNight, cfg.Preferences.Theme)
}

func TestLoadRejectsBadValues(t *testing.T) {
	cases := map[string][2]string{
		"duration":    {"FEED_INTERVAL", "soon"},
		"int":         {"STATION_ID", "abc"},
		"float":       {"STATION_LAT", "north"},
		"level":       {"LOG_LEVEL", "loud"},
		"unit":        {"DEFAULT_WIND_UNIT", "furlongs"},
		"port":        {"PORT", "http"},
		"lat only":    {"STATION_LAT", "47.6"},
		"address key": {"STATION_ADDRESS", "Shoreline, WA"},
		"tile host":   {"RADAR_TILE_HOST", "not a url"},
	}
	for name, kv := range cases {
		t.Run(name, func(t *testing.T) {
			t.Setenv("CONFIG_FILE", "")
			t.Setenv(kv[0], kv[1])
			_, err := Load()
			assert.Error(t, err)
		})
	}
}

func TestMissingConfigFile(t *testing.T) {
	t.Setenv("CONFIG_FILE", filepath.Join(t.TempDir(), "nope.yaml"))
	_, err := Load()
	assert.Error(t, err)
}
