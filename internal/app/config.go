package app

import (
	"errors"
	"fmt"
	"strings"
	"time"

	log "github.com/sirupsen/logrus"
	"github.com/spf13/viper"
)

// Поддерживаемые драйверы хранилища.
const (
	StorageDriverMemory   = "memory"
	StorageDriverPostgres = "postgres"
	StorageDriverMongo    = "mongo"
)

// envPrefix — префикс переменных окружения: STOREFRONT_HTTP_ADDR, STOREFRONT_STORAGE_DRIVER, ...
const envPrefix = "STOREFRONT"

// Config описывает настройки запуска приложения.
type Config struct {
	HTTPAddr    string `mapstructure:"http_addr"`
	MetricsAddr string `mapstructure:"metrics_addr"`

	StorageDriver       string `mapstructure:"storage_driver"`
	PostgresDSN         string `mapstructure:"postgres_dsn"`
	PostgresAutoMigrate bool   `mapstructure:"postgres_auto_migrate"`
	MongoURI            string `mapstructure:"mongo_uri"`
	MongoDatabase       string `mapstructure:"mongo_database"`

	// KafkaBrokers — список брокеров через запятую; пустое значение отключает Kafka.
	KafkaBrokers  string `mapstructure:"kafka_brokers"`
	KafkaTopic    string `mapstructure:"kafka_topic"`
	KafkaClientID string `mapstructure:"kafka_client_id"`

	OutboxPollInterval time.Duration `mapstructure:"outbox_poll_interval"`
	OutboxBatchSize    int           `mapstructure:"outbox_batch_size"`
	OutboxMaxAttempts  int           `mapstructure:"outbox_max_attempts"`
	OutboxRetryDelay   time.Duration `mapstructure:"outbox_retry_delay"`

	LogLevel  string `mapstructure:"log_level"`
	LogFormat string `mapstructure:"log_format"`

	HTTPReadTimeout  time.Duration `mapstructure:"http_read_timeout"`
	HTTPWriteTimeout time.Duration `mapstructure:"http_write_timeout"`
	ShutdownTimeout  time.Duration `mapstructure:"shutdown_timeout"`
}

// DefaultConfig возвращает конфигурацию для локального запуска на in-memory хранилище.
func DefaultConfig() Config {
	return Config{
		HTTPAddr:            ":8000",
		MetricsAddr:         ":9090",
		StorageDriver:       StorageDriverMemory,
		PostgresAutoMigrate: true,
		MongoURI:            "mongodb://localhost:27017",
		MongoDatabase:       "hron_ecommerce",
		KafkaClientID:       "storefront",
		OutboxPollInterval:  time.Second,
		OutboxBatchSize:     100,
		OutboxMaxAttempts:   3,
		OutboxRetryDelay:    50 * time.Millisecond,
		LogLevel:            "info",
		LogFormat:           "text",
		HTTPReadTimeout:     15 * time.Second,
		HTTPWriteTimeout:    15 * time.Second,
		ShutdownTimeout:     5 * time.Second,
	}
}

// LoadConfig собирает конфигурацию из значений по умолчанию, файла и окружения.
// Пустой path означает поиск config.yaml в текущем каталоге; отсутствие файла не ошибка.
// Файл с расширением .env читается как dotenv.
func LoadConfig(path string) (Config, error) {
	v := viper.New()
	setDefaults(v, DefaultConfig())

	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
	}

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return Config{}, fmt.Errorf("read config file: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal config: %w", err)
	}
	return cfg, nil
}

func setDefaults(v *viper.Viper, cfg Config) {
	v.SetDefault("http_addr", cfg.HTTPAddr)
	v.SetDefault("metrics_addr", cfg.MetricsAddr)
	v.SetDefault("storage_driver", cfg.StorageDriver)
	v.SetDefault("postgres_dsn", cfg.PostgresDSN)
	v.SetDefault("postgres_auto_migrate", cfg.PostgresAutoMigrate)
	v.SetDefault("mongo_uri", cfg.MongoURI)
	v.SetDefault("mongo_database", cfg.MongoDatabase)
	v.SetDefault("kafka_brokers", cfg.KafkaBrokers)
	v.SetDefault("kafka_topic", cfg.KafkaTopic)
	v.SetDefault("kafka_client_id", cfg.KafkaClientID)
	v.SetDefault("outbox_poll_interval", cfg.OutboxPollInterval)
	v.SetDefault("outbox_batch_size", cfg.OutboxBatchSize)
	v.SetDefault("outbox_max_attempts", cfg.OutboxMaxAttempts)
	v.SetDefault("outbox_retry_delay", cfg.OutboxRetryDelay)
	v.SetDefault("log_level", cfg.LogLevel)
	v.SetDefault("log_format", cfg.LogFormat)
	v.SetDefault("http_read_timeout", cfg.HTTPReadTimeout)
	v.SetDefault("http_write_timeout", cfg.HTTPWriteTimeout)
	v.SetDefault("shutdown_timeout", cfg.ShutdownTimeout)
}

// Validate проверяет согласованность настроек перед запуском.
func (c Config) Validate() error {
	switch strings.ToLower(strings.TrimSpace(c.StorageDriver)) {
	case StorageDriverMemory:
	case StorageDriverPostgres:
		if strings.TrimSpace(c.PostgresDSN) == "" {
			return errors.New("postgres_dsn is required for postgres storage driver")
		}
	case StorageDriverMongo:
		if strings.TrimSpace(c.MongoURI) == "" || strings.TrimSpace(c.MongoDatabase) == "" {
			return errors.New("mongo_uri and mongo_database are required for mongo storage driver")
		}
	default:
		return fmt.Errorf("unsupported storage driver: %q", c.StorageDriver)
	}
	if c.HTTPAddr == "" {
		return errors.New("http_addr is required")
	}
	return nil
}

// Brokers возвращает список Kafka-брокеров без пустых элементов.
func (c Config) Brokers() []string {
	var brokers []string
	for _, b := range strings.Split(c.KafkaBrokers, ",") {
		if b = strings.TrimSpace(b); b != "" {
			brokers = append(brokers, b)
		}
	}
	return brokers
}

// ConfigureLogging применяет уровень и формат логов logrus.
func ConfigureLogging(cfg Config) error {
	level, err := log.ParseLevel(cfg.LogLevel)
	if err != nil {
		return fmt.Errorf("parse log level: %w", err)
	}
	log.SetLevel(level)

	switch strings.ToLower(cfg.LogFormat) {
	case "json":
		log.SetFormatter(&log.JSONFormatter{})
	case "", "text":
		log.SetFormatter(&log.TextFormatter{FullTimestamp: true})
	default:
		return fmt.Errorf("unsupported log format: %q", cfg.LogFormat)
	}
	return nil
}
