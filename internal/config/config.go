package config

import (
	"fmt"
	"os"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/joho/godotenv"
	"gopkg.in/yaml.v3"
)

type Config struct {
	// Mower
	MowerID  string
	HTTPAddr string

	// Database
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string

	// Redis
	RedisHost     string
	RedisPort     string
	RedisPassword string
	RedisDB       int

	// MQTT
	MQTTBroker      string
	MQTTClientID    string
	MQTTUsername    string
	MQTTPassword    string
	MQTTTopicPrefix string

	// Application
	LogLevel   string
	TuningFile string
	Tuning     Tuning
}

// Tuning holds the control-loop constants. Values come from an optional YAML
// file; anything missing keeps its default.
type Tuning struct {
	SensorIntervalMs   int     `yaml:"sensor_interval_ms"`
	StatusIntervalMs   int     `yaml:"status_interval_ms"`
	ControlIntervalMs  int     `yaml:"control_interval_ms"`
	MedianSamples      int     `yaml:"median_samples"`
	DeclinationDeg     float64 `yaml:"declination_deg"`
	TiltAngleMaxDeg    float64 `yaml:"tilt_angle_max_deg"`
	ThrottleSeconds    uint32  `yaml:"throttle_seconds"`
	MaxLogMessages     int     `yaml:"max_log_messages"`
	BatteryLowVoltage  float64 `yaml:"battery_low_voltage"`
	BatteryFullVoltage float64 `yaml:"battery_full_voltage"`
}

func DefaultTuning() Tuning {
	return Tuning{
		SensorIntervalMs:   50,
		StatusIntervalMs:   400,
		ControlIntervalMs:  100,
		MedianSamples:      5,
		DeclinationDeg:     -2.0,
		TiltAngleMaxDeg:    35,
		ThrottleSeconds:    10,
		MaxLogMessages:     50,
		BatteryLowVoltage:  11.8,
		BatteryFullVoltage: 12.6,
	}
}

func (t Tuning) SensorInterval() time.Duration {
	return time.Duration(t.SensorIntervalMs) * time.Millisecond
}

func (t Tuning) StatusInterval() time.Duration {
	return time.Duration(t.StatusIntervalMs) * time.Millisecond
}

func (t Tuning) ControlInterval() time.Duration {
	return time.Duration(t.ControlIntervalMs) * time.Millisecond
}

// Validate rejects values the estimator and scheduler cannot work with.
func (t Tuning) Validate() error {
	if t.MedianSamples < 1 || t.MedianSamples%2 == 0 {
		return fmt.Errorf("median_samples must be a positive odd number, got %d", t.MedianSamples)
	}
	if t.SensorIntervalMs <= 0 || t.StatusIntervalMs <= 0 || t.ControlIntervalMs <= 0 {
		return fmt.Errorf("intervals must be positive")
	}
	if t.MaxLogMessages <= 0 {
		return fmt.Errorf("max_log_messages must be positive, got %d", t.MaxLogMessages)
	}
	return nil
}

// Load reads .env (if any), the environment and the optional tuning file.
func Load() (*Config, error) {
	// .env is optional on the mower, the environment may already be populated
	warnMissingEnv(godotenv.Load())

	redisDB, _ := strconv.Atoi(getEnv("REDIS_DB", "0"))

	cfg := &Config{
		MowerID:         getEnv("MOWER_ID", ""),
		HTTPAddr:        getEnv("HTTP_ADDR", ":8080"),
		DBHost:          getEnv("DB_HOST", ""),
		DBPort:          getEnv("DB_PORT", "5432"),
		DBUser:          getEnv("DB_USER", "postgres"),
		DBPassword:      getEnv("DB_PASSWORD", "password"),
		DBName:          getEnv("DB_NAME", "mower"),
		RedisHost:       getEnv("REDIS_HOST", ""),
		RedisPort:       getEnv("REDIS_PORT", "6379"),
		RedisPassword:   getEnv("REDIS_PASSWORD", ""),
		RedisDB:         redisDB,
		MQTTBroker:      getEnv("MQTT_BROKER", ""),
		MQTTClientID:    getEnv("MQTT_CLIENT_ID", ""),
		MQTTUsername:    getEnv("MQTT_USERNAME", ""),
		MQTTPassword:    getEnv("MQTT_PASSWORD", ""),
		MQTTTopicPrefix: getEnv("MQTT_TOPIC_PREFIX", "mower"),
		LogLevel:        getEnv("LOG_LEVEL", "info"),
		TuningFile:      getEnv("TUNING_FILE", ""),
		Tuning:          DefaultTuning(),
	}

	if cfg.MowerID == "" {
		cfg.MowerID = "mower-" + uuid.NewString()[:8]
	}
	if cfg.MQTTClientID == "" {
		cfg.MQTTClientID = cfg.MowerID
	}

	if cfg.TuningFile != "" {
		tuning, err := LoadTuning(cfg.TuningFile)
		if err != nil {
			return nil, err
		}
		cfg.Tuning = tuning
	}

	if err := cfg.Tuning.Validate(); err != nil {
		return nil, err
	}

	return cfg, nil
}

// LoadTuning overlays the YAML file at path onto DefaultTuning.
func LoadTuning(path string) (Tuning, error) {
	tuning := DefaultTuning()

	data, err := os.ReadFile(path)
	if err != nil {
		return tuning, fmt.Errorf("failed to read tuning file %s: %w", path, err)
	}
	if err := yaml.Unmarshal(data, &tuning); err != nil {
		return tuning, fmt.Errorf("failed to parse tuning file %s: %w", path, err)
	}

	return tuning, nil
}

func (c *Config) MQTTEnabled() bool     { return c.MQTTBroker != "" }
func (c *Config) RedisEnabled() bool    { return c.RedisHost != "" }
func (c *Config) DatabaseEnabled() bool { return c.DBHost != "" }

func warnMissingEnv(err error) {
	if err != nil {
		fmt.Fprintln(os.Stderr, "Warning: .env file not found, using environment variables")
	}
}

func getEnv(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}
