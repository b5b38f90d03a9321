package config

import (
	"fmt"
	"os"
	"strconv"
	"time"
)

type Config struct {
	Server  ServerConfig
	Data    DataConfig
	Loader  LoaderConfig
	DB      DatabaseConfig
	Map     MapConfig
	Logging LoggingConfig
}

type ServerConfig struct {
	Host            string
	Port            int
	ShutdownTimeout time.Duration
	RateLimitRPS    int
}

type DataConfig struct {
	Path       string
	DateLayout string // Go reference layout for the CrimeDate column
	TimeLayout string // Go reference layout for the CrimeTime column
}

type LoaderConfig struct {
	Workers   int
	ChunkSize int
}

type DatabaseConfig struct {
	Path string
}

type MapConfig struct {
	CenterLat float64
	CenterLon float64
	Zoom      float64
	Style     string
	CityName  string
}

type LoggingConfig struct {
	Level string
}

func Load() (*Config, error) {
	cfg := &Config{
		Server: ServerConfig{
			Host:            getEnv("SERVER_HOST", "localhost"),
			Port:            getEnvInt("SERVER_PORT", 4741),
			ShutdownTimeout: getEnvDuration("SHUTDOWN_TIMEOUT", 10*time.Second),
			RateLimitRPS:    getEnvInt("RATE_LIMIT_RPS", 20),
		},
		Data: DataConfig{
			Path:       getEnv("DATA_PATH", "data/Baltimore911.csv"),
			DateLayout: getEnv("DATE_LAYOUT", "01/02/2006"),
			TimeLayout: getEnv("TIME_LAYOUT", "15:04:05"),
		},
		Loader: LoaderConfig{
			Workers:   getEnvInt("LOADER_WORKERS", 4),
			ChunkSize: getEnvInt("LOADER_CHUNK_SIZE", 5000),
		},
		DB: DatabaseConfig{
			Path: getEnv("DB_PATH", "data/incidents.db"),
		},
		Map: MapConfig{
			CenterLat: getEnvFloat("MAP_CENTER_LAT", 39.29),
			CenterLon: getEnvFloat("MAP_CENTER_LON", -76.61),
			Zoom:      getEnvFloat("MAP_ZOOM", 10),
			Style:     getEnv("MAP_STYLE", "open-street-map"),
			CityName:  getEnv("CITY_NAME", "Baltimore"),
		},
		Logging: LoggingConfig{
			Level: getEnv("LOG_LEVEL", "info"),
		},
	}

	if err := cfg.validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

func (c *Config) validate() error {
	if c.Server.Port < 1 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.Server.ShutdownTimeout <= 0 {
		return fmt.Errorf("SHUTDOWN_TIMEOUT must be positive")
	}
	if c.Server.RateLimitRPS < 1 {
		return fmt.Errorf("RATE_LIMIT_RPS must be at least 1")
	}

	validLevels := map[string]bool{"debug": true, "info": true, "warn": true, "error": true}
	if !validLevels[c.Logging.Level] {
		return fmt.Errorf("invalid log level: %s", c.Logging.Level)
	}

	if c.Data.Path == "" {
		return fmt.Errorf("DATA_PATH is required")
	}
	if c.Loader.Workers < 1 {
		return fmt.Errorf("LOADER_WORKERS must be at least 1")
	}
	if c.Loader.ChunkSize < 1 {
		return fmt.Errorf("LOADER_CHUNK_SIZE must be at least 1")
	}

	if c.Map.CenterLat < -90 || c.Map.CenterLat > 90 {
		return fmt.Errorf("invalid map center latitude: %g", c.Map.CenterLat)
	}
	if c.Map.CenterLon < -180 || c.Map.CenterLon > 180 {
		return fmt.Errorf("invalid map center longitude: %g", c.Map.CenterLon)
	}
	if c.Map.Zoom < 0 || c.Map.Zoom > 22 {
		return fmt.Errorf("invalid map zoom: %g", c.Map.Zoom)
	}

	return nil
}

func getEnv(key, fallback string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}
	return fallback
}

func getEnvInt(key string, fallback int) int {
	if val := os.Getenv(key); val != "" {
		if i, err := strconv.Atoi(val); err == nil {
			return i
		}
	}
	return fallback
}

func getEnvFloat(key string, fallback float64) float64 {
	if val := os.Getenv(key); val != "" {
		if f, err := strconv.ParseFloat(val, 64); err == nil {
			return f
		}
	}
	return fallback
}

func getEnvDuration(key string, fallback time.Duration) time.Duration {
	if val := os.Getenv(key); val != "" {
		if d, err := time.ParseDuration(val); err == nil {
			return d
		}
	}
	return fallback
}
