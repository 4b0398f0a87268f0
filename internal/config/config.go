package config

import (
	"errors"
	"fmt"
	"log/slog"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/Krimson/ctg-analyzer/internal/analyzer"
	"github.com/Krimson/ctg-analyzer/internal/detect"
	"github.com/Krimson/ctg-analyzer/internal/diagnosis"
)

// Config содержит все настройки приложения
type Config struct {
	HTTPPort string `yaml:"http_port"`
	GRPCPort string `yaml:"grpc_port"`
	LogLevel string `yaml:"log_level"`

	// Пауза между сегментами при воспроизведении через WebSocket
	ReplayIntervalMS int64 `yaml:"replay_interval_ms"`

	Redis    RedisConfig    `yaml:"redis"`
	Postgres PostgresConfig `yaml:"postgres"`
	MQTT     MQTTConfig     `yaml:"mqtt"`
	Analysis AnalysisConfig `yaml:"analysis"`
}

// RedisConfig - кэш сырых записей. Пустой адрес означает хранение в памяти.
type RedisConfig struct {
	Addr       string `yaml:"addr"`
	Password   string `yaml:"password"`
	DB         int    `yaml:"db"`
	TTLSeconds int    `yaml:"ttl_seconds"`
}

// PostgresConfig - каталог записей. Пустой DSN означает каталог в памяти.
type PostgresConfig struct {
	DSN string `yaml:"dsn"`
}

// MQTTConfig - уведомления о загруженных записях. Пустой брокер отключает публикацию.
type MQTTConfig struct {
	Broker   string `yaml:"broker"`
	ClientID string `yaml:"client_id"`
	Topic    string `yaml:"topic"`
	QoS      int    `yaml:"qos"`
}

// AnalysisConfig - параметры анализа сегментов
type AnalysisConfig struct {
	SegmentDuration float64 `yaml:"segment_duration"`
	LTVWindow       int     `yaml:"ltv_window"`
	CleanZeroFHR    bool    `yaml:"clean_zero_fhr"`
	Terminology     string  `yaml:"terminology"`

	ThresholdHigh float64 `yaml:"threshold_high"`
	ThresholdLow  float64 `yaml:"threshold_low"`
	MinDuration   float64 `yaml:"min_duration"`
	MaxDuration   float64 `yaml:"max_duration"`
	MinAmplitude  float64 `yaml:"min_amplitude"`

	Diagnosis diagnosis.Thresholds `yaml:"diagnosis"`
}

// Load загружает конфигурацию из переменных окружения с дефолтными значениями,
// затем накладывает YAML-файл из CTG_CONFIG, если он задан
func Load() (*Config, error) {
	defaults := analyzer.DefaultOptions()
	thresholds := defaults.Thresholds

	cfg := &Config{
		HTTPPort:         getEnvString("HTTP_PORT", "8080"),
		GRPCPort:         getEnvString("GRPC_PORT", "50051"),
		LogLevel:         getEnvString("LOG_LEVEL", "info"),
		ReplayIntervalMS: getEnvInt64("REPLAY_INTERVAL_MS", 250),

		Redis: RedisConfig{
			Addr:       getEnvString("REDIS_ADDR", ""),
			Password:   getEnvString("REDIS_PASSWORD", ""),
			DB:         getEnvInt("REDIS_DB", 0),
			TTLSeconds: getEnvInt("RECORDING_TTL_SECONDS", 86400), // 24 часа
		},
		Postgres: PostgresConfig{
			DSN: getEnvString("POSTGRES_DSN", ""),
		},
		MQTT: MQTTConfig{
			Broker:   getEnvString("MQTT_BROKER", ""),
			ClientID: getEnvString("MQTT_CLIENT_ID", "ctg-analyzer"),
			Topic:    getEnvString("MQTT_TOPIC", "ctg/analyzer/recordings"),
			QoS:      getEnvInt("MQTT_QOS", 1),
		},
		Analysis: AnalysisConfig{
			SegmentDuration: getEnvFloat("SEGMENT_DURATION", defaults.SegmentDuration),
			LTVWindow:       getEnvInt("LTV_WINDOW", defaults.LTVWindow),
			CleanZeroFHR:    getEnvBool("CLEAN_ZERO_FHR", defaults.CleanZeroFHR),
			Terminology:     getEnvString("DECELERATION_TERMINOLOGY", string(defaults.Terminology)),

			ThresholdHigh: getEnvFloat("THRESHOLD_HIGH", defaults.Detect.ThresholdHigh),
			ThresholdLow:  getEnvFloat("THRESHOLD_LOW", defaults.Detect.ThresholdLow),
			MinDuration:   getEnvFloat("MIN_EVENT_DURATION", defaults.Detect.MinDuration),
			MaxDuration:   getEnvFloat("MAX_EVENT_DURATION", defaults.Detect.MaxDuration),
			MinAmplitude:  getEnvFloat("MIN_EVENT_AMPLITUDE", defaults.Detect.MinAmplitude),

			Diagnosis: thresholds,
		},
	}

	if path := os.Getenv("CTG_CONFIG"); path != "" {
		if err := cfg.overlay(path); err != nil {
			return nil, err
		}
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return cfg, nil
}

// overlay накладывает значения из YAML-файла поверх текущих
func (c *Config) overlay(path string) error {
	content, err := os.ReadFile(path)
	if err != nil {
		return fmt.Errorf("failed to read config file: %w", err)
	}
	if err := yaml.Unmarshal(content, c); err != nil {
		return fmt.Errorf("failed to parse config file %s: %w", path, err)
	}
	return nil
}

// Validate проверяет согласованность настроек
func (c *Config) Validate() error {
	if c.HTTPPort == "" {
		return errors.New("http port is required")
	}
	if c.ReplayIntervalMS < 0 {
		return fmt.Errorf("replay interval must not be negative: %d", c.ReplayIntervalMS)
	}
	if c.Redis.TTLSeconds < 0 {
		return fmt.Errorf("recording ttl must not be negative: %d", c.Redis.TTLSeconds)
	}
	if c.MQTT.QoS < 0 || c.MQTT.QoS > 2 {
		return fmt.Errorf("mqtt qos must be 0, 1 or 2: %d", c.MQTT.QoS)
	}
	if _, err := ParseLogLevel(c.LogLevel); err != nil {
		return err
	}
	if _, err := c.AnalyzerOptions(); err != nil {
		return err
	}
	return nil
}

// AnalyzerOptions собирает параметры анализа
func (c *Config) AnalyzerOptions() (analyzer.Options, error) {
	terminology, err := diagnosis.ParseTerminology(c.Analysis.Terminology)
	if err != nil {
		return analyzer.Options{}, err
	}

	opts := analyzer.Options{
		SegmentDuration: c.Analysis.SegmentDuration,
		LTVWindow:       c.Analysis.LTVWindow,
		CleanZeroFHR:    c.Analysis.CleanZeroFHR,
		Detect: detect.Config{
			ThresholdHigh: c.Analysis.ThresholdHigh,
			ThresholdLow:  c.Analysis.ThresholdLow,
			MinDuration:   c.Analysis.MinDuration,
			MaxDuration:   c.Analysis.MaxDuration,
			MinAmplitude:  c.Analysis.MinAmplitude,
		},
		Thresholds:  c.Analysis.Diagnosis,
		Terminology: terminology,
	}
	if err := opts.Validate(); err != nil {
		return analyzer.Options{}, err
	}
	return opts, nil
}

// RecordingTTL - время жизни сырой записи в кэше
func (c *Config) RecordingTTL() time.Duration {
	return time.Duration(c.Redis.TTLSeconds) * time.Second
}

// ReplayInterval - пауза между сегментами в ленте
func (c *Config) ReplayInterval() time.Duration {
	return time.Duration(c.ReplayIntervalMS) * time.Millisecond
}

// ParseLogLevel переводит debug|info|warn|error в slog.Level
func ParseLogLevel(level string) (slog.Level, error) {
	switch strings.ToLower(strings.TrimSpace(level)) {
	case "debug":
		return slog.LevelDebug, nil
	case "", "info":
		return slog.LevelInfo, nil
	case "warn", "warning":
		return slog.LevelWarn, nil
	case "error":
		return slog.LevelError, nil
	default:
		return slog.LevelInfo, fmt.Errorf("unknown log level: %q", level)
	}
}

func getEnvString(key, defaultValue string) string {
	if value := os.Getenv(key); value != "" {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.Atoi(value); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvInt64(key string, defaultValue int64) int64 {
	if value := os.Getenv(key); value != "" {
		if intValue, err := strconv.ParseInt(value, 10, 64); err == nil {
			return intValue
		}
	}
	return defaultValue
}

func getEnvFloat(key string, defaultValue float64) float64 {
	if value := os.Getenv(key); value != "" {
		if floatValue, err := strconv.ParseFloat(value, 64); err == nil {
			return floatValue
		}
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if value := os.Getenv(key); value != "" {
		if boolValue, err := strconv.ParseBool(value); err == nil {
			return boolValue
		}
	}
	return defaultValue
}
