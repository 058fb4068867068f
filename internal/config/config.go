package config

import (
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	Bank     BankConfig
	Ledger   LedgerConfig
	Sink     SinkConfig
	Database DatabaseConfig
	Rabbit   RabbitConfig
	Kafka    KafkaConfig
	Monitor  MonitorConfig
	Log      LogConfig
}

type BankConfig struct {
	Accounts int
	Workers  int
}

type LedgerConfig struct {
	Source string // file | amqp
	Path   string
}

type SinkConfig struct {
	Kind string // file | memory | db
	Dir  string
}

type DatabaseConfig struct {
	Driver   string // postgres | mysql | sqlite
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	SSLMode  string
	Path     string // sqlite only
}

type RabbitConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	VHost    string
	Queue    string
}

type KafkaConfig struct {
	Brokers []string
	Topic   string
}

type MonitorConfig struct {
	Interval time.Duration
}

type LogConfig struct {
	Level  string
	Format string
}

const (
	maxWorkers  = 64
	maxAccounts = 1024
)

// Load reads the configuration from the environment. Values in a .env file in
// the working directory are used for variables that are not already set.
func Load() *Config {
	_ = godotenv.Load()

	return &Config{
		Bank: BankConfig{
			Accounts: clamp(intFromEnv("BANK_ACCOUNTS", 10), 1, maxAccounts),
			Workers:  clamp(intFromEnv("BANK_WORKERS", 4), 1, maxWorkers),
		},
		Ledger: LedgerConfig{
			Source: getenv("LEDGER_SOURCE", "file"),
			Path:   getenv("LEDGER_PATH", "ledger.txt"),
		},
		Sink: SinkConfig{
			Kind: getenv("SINK_KIND", "file"),
			Dir:  getenv("SINK_DIR", "logs"),
		},
		Database: DatabaseConfig{
			Driver:   getenv("DB_DRIVER", "postgres"),
			Host:     getenv("DB_HOST", "localhost"),
			Port:     intFromEnv("DB_PORT", 5432),
			User:     getenv("DB_USER", "postgres"),
			Password: getenv("DB_PASSWORD", "postgres"),
			DBName:   getenv("DB_NAME", "bank_db"),
			SSLMode:  getenv("DB_SSLMODE", "disable"),
			Path:     getenv("DB_PATH", "bank.db"),
		},
		Rabbit: RabbitConfig{
			Host:     getenv("RABBITMQ_HOST", "localhost"),
			Port:     intFromEnv("RABBITMQ_PORT", 5672),
			User:     getenv("RABBITMQ_USER", "guest"),
			Password: getenv("RABBITMQ_PASSWORD", "guest"),
			VHost:    getenv("RABBITMQ_VHOST", "/"),
			Queue:    getenv("RABBITMQ_QUEUE", "ledger_entries"),
		},
		Kafka: KafkaConfig{
			Brokers: listFromEnv("KAFKA_BROKERS"),
			Topic:   getenv("KAFKA_TOPIC", "ledger_outcomes"),
		},
		Monitor: MonitorConfig{
			Interval: time.Duration(intFromEnv("MONITOR_INTERVAL_MS", 0)) * time.Millisecond,
		},
		Log: LogConfig{
			Level:  getenv("LOG_LEVEL", "info"),
			Format: getenv("LOG_FORMAT", "json"),
		},
	}
}

// ClampWorkers bounds a worker count to the supported range.
func ClampWorkers(n int) int {
	return clamp(n, 1, maxWorkers)
}

// ClampAccounts bounds an account count to the supported range.
func ClampAccounts(n int) int {
	return clamp(n, 1, maxAccounts)
}

func getenv(key, def string) string {
	if val := os.Getenv(key); val != "" {
		return val
	}

	return def
}

func intFromEnv(key string, def int) int {
	val := getenv(key, "")
	if val == "" {
		return def
	}

	if parsed, err := strconv.Atoi(val); err == nil {
		return parsed
	}

	return def
}

func listFromEnv(key string) []string {
	val := getenv(key, "")
	if val == "" {
		return nil
	}

	var out []string
	for _, part := range strings.Split(val, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func clamp(value, min, max int) int {
	if value < min {
		return min
	}
	if value > max {
		return max
	}
	return value
}
