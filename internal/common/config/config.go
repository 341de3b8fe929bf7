package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"
)

type Config struct {
	Telemetry TelemetryConfig
	Report    ReportConfig
	Range     RangeConfig
	Database  DatabaseConfig
	NATS      NATSConfig
	API       APIConfig
	Logging   LoggingConfig
	Alert     AlertConfig
}

// TelemetryConfig for the upstream telemetry API
type TelemetryConfig struct {
	BaseURL  string
	Username string
	Password string
	DeviceID string
	Keys     []string
	Timeout  time.Duration
}

// ReportConfig drives the trip reconstruction pipeline
type ReportConfig struct {
	TripIDKey          string
	StationKey         string
	AttrKeys           []string
	StartMarker        string
	EndMarker          string
	ClosingMarker      string
	DualVisitStation   string
	TransitLabel       string
	ProcessingStations []string
	TimezoneName       string
	TimezoneOffsetH    int
	Interval           time.Duration
	CSVPath            string // empty disables the CSV snapshot
}

// RangeConfig selects the queried time window
type RangeConfig struct {
	Mode         string // "shift", "rolling" or "explicit"
	RollingHours int
	StartTs      int64 // explicit mode, UTC milliseconds
	EndTs        int64
	EndInclusive bool
}

type DatabaseConfig struct {
	Enabled       bool
	Host          string
	Port          string
	User          string
	Password      string
	DBName        string
	RetentionDays int
}

type NATSConfig struct {
	Enabled bool
	URL     string
	Subject string
}

type APIConfig struct {
	Addr string
}

type LoggingConfig struct {
	Level    string
	FilePath string
}

// AlertConfig for webhook notifications on repeated run failures
type AlertConfig struct {
	WebhookURL       string
	FailureThreshold int
}

func Load() (*Config, error) {
	cfg := &Config{
		Telemetry: TelemetryConfig{
			BaseURL:  getEnv("TELEMETRY_BASE_URL", ""),
			Username: getEnv("TELEMETRY_USERNAME", ""),
			Password: getEnv("TELEMETRY_PASSWORD", ""),
			DeviceID: getEnv("TELEMETRY_DEVICE_ID", ""),
			Keys:     getListEnv("TELEMETRY_KEYS", []string{"nia", "estacion", "placa", "conductor", "empresa", "guia"}),
			Timeout:  getDurationEnv("TELEMETRY_TIMEOUT", 30*time.Second),
		},
		Report: ReportConfig{
			TripIDKey:          getEnv("REPORT_TRIP_ID_KEY", "nia"),
			StationKey:         getEnv("REPORT_STATION_KEY", "estacion"),
			AttrKeys:           getListEnv("REPORT_ATTR_KEYS", []string{"placa", "conductor", "empresa", "guia"}),
			StartMarker:        getEnv("REPORT_START_MARKER", "En Asignación"),
			EndMarker:          getEnv("REPORT_END_MARKER", "Desasignación"),
			ClosingMarker:      getEnv("REPORT_CLOSING_MARKER", "Desasignación"),
			DualVisitStation:   getEnv("REPORT_DUAL_VISIT_STATION", "Balanza"),
			TransitLabel:       getEnv("REPORT_TRANSIT_LABEL", "Ruta a Balanza"),
			ProcessingStations: getListEnv("REPORT_PROCESSING_STATIONS", []string{"Balanza inicial", "Balanza final", "Descarga", "Barrido"}),
			TimezoneName:       getEnv("REPORT_TIMEZONE", "America/Lima"),
			TimezoneOffsetH:    getIntEnv("REPORT_TIMEZONE_OFFSET_HOURS", -5),
			Interval:           getDurationEnv("REPORT_INTERVAL", 5*time.Minute),
			CSVPath:            getEnv("REPORT_CSV_PATH", ""),
		},
		Range: RangeConfig{
			Mode:         getEnv("RANGE_MODE", "shift"),
			RollingHours: getIntEnv("RANGE_ROLLING_HOURS", 12),
			StartTs:      getInt64Env("RANGE_START_TS", 0),
			EndTs:        getInt64Env("RANGE_END_TS", 0),
			EndInclusive: getBoolEnv("RANGE_END_INCLUSIVE", true),
		},
		Database: DatabaseConfig{
			Enabled:       getBoolEnv("DB_ENABLED", false),
			Host:          getEnv("DB_HOST", "localhost"),
			Port:          getEnv("DB_PORT", "5432"),
			User:          getEnv("DB_USER", "postgres"),
			Password:      getEnv("DB_PASSWORD", ""),
			DBName:        getEnv("DB_NAME", "niatrack"),
			RetentionDays: getIntEnv("DB_RETENTION_DAYS", 30),
		},
		NATS: NATSConfig{
			Enabled: getBoolEnv("NATS_ENABLED", false),
			URL:     getEnv("NATS_URL", "nats://localhost:4222"),
			Subject: getEnv("NATS_SUBJECT", "niatrack.reports"),
		},
		API: APIConfig{
			Addr: getEnv("API_ADDR", ":8080"),
		},
		Logging: LoggingConfig{
			Level:    getEnv("LOG_LEVEL", "info"),
			FilePath: getEnv("LOG_FILE", "niatrack.log"),
		},
		Alert: AlertConfig{
			WebhookURL:       getEnv("ALERT_WEBHOOK_URL", ""),
			FailureThreshold: getIntEnv("ALERT_FAILURE_THRESHOLD", 3),
		},
	}

	return cfg, nil
}

func (c *TelemetryConfig) Validate() error {
	if c.BaseURL == "" {
		return fmt.Errorf("telemetry base URL is required")
	}
	if c.Username == "" || c.Password == "" {
		return fmt.Errorf("telemetry credentials are required")
	}
	if c.DeviceID == "" {
		return fmt.Errorf("telemetry device id is required")
	}
	if len(c.Keys) == 0 {
		return fmt.Errorf("at least one telemetry key must be configured")
	}
	return nil
}

func (c *RangeConfig) Validate() error {
	switch c.Mode {
	case "shift", "rolling":
	case "explicit":
		if c.StartTs <= 0 || c.EndTs <= 0 || c.EndTs <= c.StartTs {
			return fmt.Errorf("explicit range requires RANGE_START_TS < RANGE_END_TS")
		}
	default:
		return fmt.Errorf("unknown range mode: %s", c.Mode)
	}
	if c.Mode == "rolling" && c.RollingHours <= 0 {
		return fmt.Errorf("rolling window hours must be positive")
	}
	return nil
}

func (c *DatabaseConfig) ConnectionString() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.Host, c.Port, c.User, c.Password, c.DBName)
}

func (c *DatabaseConfig) Validate() error {
	if !c.Enabled {
		return nil
	}
	if c.Host == "" || c.Port == "" || c.User == "" || c.DBName == "" {
		return fmt.Errorf("database host, port, user and name are required")
	}
	return nil
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getDurationEnv(key string, defaultValue time.Duration) time.Duration {
	if value := os.Getenv(key); value != "" {
		if duration, err := time.ParseDuration(value); err == nil {
			return duration
		}
	}
	return defaultValue
}

func getIntEnv(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.Atoi(value); err == nil {
			return n
		}
	}
	return defaultValue
}

func getInt64Env(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if n, err := strconv.ParseInt(value, 10, 64); err == nil {
			return n
		}
	}
	return defaultValue
}

func getBoolEnv(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if b, err := strconv.ParseBool(value); err == nil {
			return b
		}
	}
	return defaultValue
}

func getListEnv(key string, defaultValue []string) []string {
	if value := os.Getenv(key); value != "" {
		parts := strings.Split(value, ",")
		out := make([]string, 0, len(parts))
		for _, p := range parts {
			if trimmed := strings.TrimSpace(p); trimmed != "" {
				out = append(out, trimmed)
			}
		}
		if len(out) > 0 {
			return out
		}
	}
	return defaultValue
}
