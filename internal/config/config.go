package config

import (
	"errors"
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"

	"github.com/i474232898/tempest-display/internal/prefs"
	"github.com/i474232898/tempest-display/internal/tempest"
	"github.com/i474232898/tempest-display/internal/units"
)

// ErrInvalid wraps every configuration validation failure.
var ErrInvalid = errors.New("invalid configuration")

type StationConfig struct {
	ID int `yaml:"id" validate:"min=1"`

	// Lat and Lon pin the station position; otherwise the station metadata,
	// then the geocoded Address, is used.
	Lat            *float64 `yaml:"lat" validate:"omitempty,latitude"`
	Lon            *float64 `yaml:"lon" validate:"omitempty,longitude"`
	Address        string   `yaml:"address"`
	GeocoderAPIKey string   `yaml:"geocoder_api_key" validate:"required_with=Address"`
}

type StoreConfig struct {
	MaxHistory int           `yaml:"max_history" validate:"min=0"` // 0 = unlimited
	MaxAge     time.Duration `yaml:"max_age" validate:"min=0"`     // 0 = unlimited
	SQLitePath string        `yaml:"sqlite_path" validate:"required"`
}

type RadarConfig struct {
	TileHost      string `yaml:"tile_host" validate:"omitempty,url"`
	NWSBaseURL    string `yaml:"nws_base_url" validate:"omitempty,url"`
	RainViewerURL string `yaml:"rainviewer_url" validate:"omitempty,url"`
}

// MQTTConfig enables the observation publisher when Broker is set.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	Port     int    `yaml:"port" validate:"min=1,max=65535"`
	ClientID string `yaml:"client_id" validate:"required_with=Broker"`
	Topic    string `yaml:"topic" validate:"required_with=Broker"`
}

type AppConfig struct {
	Port      string `yaml:"port" validate:"required,numeric"`
	LogLevel  string `yaml:"log_level" validate:"oneof=trace debug info warn warning error"`
	LogFormat string `yaml:"log_format" validate:"oneof=text json"`

	HTTPTimeout     time.Duration `yaml:"http_timeout" validate:"gt=0"`
	FeedInterval    time.Duration `yaml:"feed_interval" validate:"gt=0"`
	RefreshInterval time.Duration `yaml:"refresh_interval" validate:"gt=0"`

	Station StationConfig `yaml:"station"`
	Store   StoreConfig   `yaml:"store"`
	Radar   RadarConfig   `yaml:"radar"`
	MQTT    MQTTConfig    `yaml:"mqtt"`

	// StaticDir holds the built dashboard; empty disables static serving.
	StaticDir string `yaml:"static_dir"`

	Preferences prefs.Preferences `yaml:"preferences"`
}

// Default returns the configuration used when nothing is set.
func Default() AppConfig {
	return AppConfig{
		Port:            "8080",
		LogLevel:        "info",
		LogFormat:       "text",
		HTTPTimeout:     10 * time.Second,
		FeedInterval:    3 * time.Second,
		RefreshInterval: 10 * time.Minute,
		Station:         StationConfig{ID: tempest.StubStation.StationID},
		Store: StoreConfig{
			MaxHistory: 28800, // 24h at the 3s feed cadence
			MaxAge:     24 * time.Hour,
			SQLitePath: "data/tempest-display.db",
		},
		MQTT: MQTTConfig{
			Port:     1883,
			ClientID: "tempest-display",
			Topic:    "tempest/observations",
		},
		Preferences: prefs.Defaults(),
	}
}

// Load reads configuration from defaults, then the optional YAML file named by
// CONFIG_FILE, then the environment (including a .env file).
func Load() (*AppConfig, error) {
	// A missing .env is normal outside development.
	_ = godotenv.Load()

	cfg := Default()

	if path := os.Getenv("CONFIG_FILE"); path != "" {
		if err := loadFile(path, &cfg); err != nil {
			return nil, err
		}
	}

	if err := applyEnv(&cfg); err != nil {
		return nil, err
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

func loadFile(path string, cfg *AppConfig) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("read config file: %w", err)
	}
	if err := yaml.Unmarshal(data, cfg); err != nil {
		return fmt.Errorf("parse config file %s: %w", path, err)
	}
	return nil
}

func applyEnv(cfg *AppConfig) error {
	var err error

	cfg.Port = getenvDefault("PORT", cfg.Port)
	cfg.LogLevel = getenvDefault("LOG_LEVEL", cfg.LogLevel)
	cfg.LogFormat = getenvDefault("LOG_FORMAT", cfg.LogFormat)

	if cfg.HTTPTimeout, err = getenvDuration("HTTP_TIMEOUT", cfg.HTTPTimeout); err != nil {
		return err
	}
	if cfg.FeedInterval, err = getenvDuration("FEED_INTERVAL", cfg.FeedInterval); err != nil {
		return err
	}
	if cfg.RefreshInterval, err = getenvDuration("REFRESH_INTERVAL", cfg.RefreshInterval); err != nil {
		return err
	}

	if cfg.Station.ID, err = getenvInt("STATION_ID", cfg.Station.ID); err != nil {
		return err
	}
	if cfg.Station.Lat, err = getenvFloat("STATION_LAT", cfg.Station.Lat); err != nil {
		return err
	}
	if cfg.Station.Lon, err = getenvFloat("STATION_LON", cfg.Station.Lon); err != nil {
		return err
	}
	cfg.Station.Address = getenvDefault("STATION_ADDRESS", cfg.Station.Address)
	cfg.Station.GeocoderAPIKey = getenvDefault("GOOGLE_GEOCODER_API_KEY", cfg.Station.GeocoderAPIKey)

	if cfg.Store.MaxHistory, err = getenvInt("STORE_MAX_HISTORY", cfg.Store.MaxHistory); err != nil {
		return err
	}
	if cfg.Store.MaxAge, err = getenvDuration("STORE_MAX_AGE", cfg.Store.MaxAge); err != nil {
		return err
	}
	cfg.Store.SQLitePath = getenvDefault("SQLITE_PATH", cfg.Store.SQLitePath)

	cfg.StaticDir = getenvDefault("STATIC_DIR", cfg.StaticDir)

	cfg.Radar.TileHost = getenvDefault("RADAR_TILE_HOST", cfg.Radar.TileHost)
	cfg.Radar.NWSBaseURL = getenvDefault("NWS_BASE_URL", cfg.Radar.NWSBaseURL)
	cfg.Radar.RainViewerURL = getenvDefault("RAINVIEWER_URL", cfg.Radar.RainViewerURL)

	cfg.MQTT.Broker = getenvDefault("MQTT_BROKER", cfg.MQTT.Broker)
	if cfg.MQTT.Port, err = getenvInt("MQTT_PORT", cfg.MQTT.Port); err != nil {
		return err
	}
	cfg.MQTT.ClientID = getenvDefault("MQTT_CLIENT_ID", cfg.MQTT.ClientID)
	cfg.MQTT.Topic = getenvDefault("MQTT_TOPIC", cfg.MQTT.Topic)

	p := &cfg.Preferences
	p.TemperatureUnit = units.TemperatureUnit(getenvDefault("DEFAULT_TEMPERATURE_UNIT", string(p.TemperatureUnit)))
	p.WindUnit = units.WindUnit(getenvDefault("DEFAULT_WIND_UNIT", string(p.WindUnit)))
	p.PressureUnit = units.PressureUnit(getenvDefault("DEFAULT_PRESSURE_UNIT", string(p.PressureUnit)))
	p.RainUnit = units.RainUnit(getenvDefault("DEFAULT_RAIN_UNIT", string(p.RainUnit)))
	p.Theme = prefs.Theme(getenvDefault("DEFAULT_THEME", string(p.Theme)))

	return nil
}

var validate = validator.New()

// Validate checks every field, including the default preferences.
func (c AppConfig) Validate() error {
	if err := validate.Struct(c); err != nil {
		return fmt.Errorf("%w: %v", ErrInvalid, err)
	}
	if err := c.Preferences.Validate(); err != nil {
		return fmt.Errorf("%w: default %v", ErrInvalid, err)
	}
	if (c.Station.Lat == nil) != (c.Station.Lon == nil) {
		return fmt.Errorf("%w: STATION_LAT and STATION_LON must be set together", ErrInvalid)
	}
	return nil
}

func getenvDefault(key, def string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return def
}

func getenvInt(key string, def int) (int, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return n, nil
}

func getenvDuration(key string, def time.Duration) (time.Duration, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	d, err := time.ParseDuration(v)
	if err != nil {
		return 0, fmt.Errorf("invalid %s: %w", key, err)
	}
	return d, nil
}

func getenvFloat(key string, def *float64) (*float64, error) {
	v := os.Getenv(key)
	if v == "" {
		return def, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil {
		return nil, fmt.Errorf("invalid %s: %w", key, err)
	}
	return &f, nil
}
