package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/joho/godotenv"
)

type Config struct {
	ServerPort int
	LogLevel   string
	StaticDir  string
	UsersFile  string
	Articles   ArticlesConfig
	Session    SessionConfig
	Database   DatabaseConfig
	Minio      MinioConfig
	GCS        GCSConfig
	Events     EventsConfig
	RabbitMQ   RabbitMQConfig
	PubSub     PubSubConfig
}

// ArticlesConfig selects and configures the article document backend.
type ArticlesConfig struct {
	// Backend is one of "fs", "minio", "gcs" or "postgres".
	Backend     string
	Dir         string
	Prefix      string
	SkipCorrupt bool
}

type SessionConfig struct {
	Secret     string
	CookieName string
	TTL        time.Duration
	Secure     bool
}

type DatabaseConfig struct {
	Host     string
	Port     int
	User     string
	Password string
	DBName   string
	UseSSL   bool
}

type MinioConfig struct {
	Endpoint  string
	AccessKey string
	SecretKey string
	Bucket    string
	UseSSL    bool
}

type GCSConfig struct {
	Bucket          string
	ProjectID       string
	CredentialsFile string
}

// EventsConfig selects the broker article change events are published to.
type EventsConfig struct {
	// Backend is one of "none", "rabbitmq" or "pubsub".
	Backend string
	Channel string
}

type RabbitMQConfig struct {
	URL             string
	QueueDurable    bool
	QueueAutoDelete bool
	PrefetchCount   int
}

type PubSubConfig struct {
	ProjectID          string
	CredentialsFile    string
	SubscriptionSuffix string
}

func LoadConfig() Config {
	if os.Getenv("ENV") == "dev" {
		godotenv.Load()
	}

	return Config{
		ServerPort: getEnvInt("SERVER_PORT", 3000),
		LogLevel:   getEnv("LOG_LEVEL", "info"),
		StaticDir:  getEnv("STATIC_DIR", ""),
		UsersFile:  getEnv("USERS_FILE", "users.json"),
		Articles: ArticlesConfig{
			Backend:     strings.ToLower(getEnv("ARTICLES_BACKEND", "fs")),
			Dir:         getEnv("ARTICLES_DIR", "articles"),
			Prefix:      getEnv("ARTICLES_PREFIX", "articles/"),
			SkipCorrupt: getEnvBool("ARTICLES_SKIP_CORRUPT", false),
		},
		Session: SessionConfig{
			Secret:     getEnv("SESSION_SECRET", ""),
			CookieName: getEnv("SESSION_COOKIE", "plainpress_session"),
			TTL:        getEnvDuration("SESSION_TTL", 24*time.Hour),
			Secure:     getEnvBool("SESSION_COOKIE_SECURE", false),
		},
		Database: DatabaseConfig{
			Host:     getEnv("DB_HOST", "localhost"),
			Port:     getEnvInt("DB_PORT", 5432),
			User:     getEnv("DB_USER", "plainpress"),
			Password: getEnv("DB_PASSWORD", "password"),
			DBName:   getEnv("DB_NAME", "plainpress_db"),
			UseSSL:   getEnvBool("DB_SSL", false),
		},
		Minio: MinioConfig{
			Endpoint:  getEnv("MINIO_ENDPOINT", ""),
			AccessKey: getEnv("MINIO_ACCESS_KEY", ""),
			SecretKey: getEnv("MINIO_SECRET_KEY", ""),
			Bucket:    getEnv("MINIO_BUCKET", "plainpress"),
			UseSSL:    getEnvBool("MINIO_SSL", false),
		},
		GCS: GCSConfig{
			Bucket:          getEnv("GCS_BUCKET", ""),
			ProjectID:       getEnv("GCS_PROJECT_ID", ""),
			CredentialsFile: getEnv("GCS_CREDENTIALS_FILE", ""),
		},
		Events: EventsConfig{
			Backend: strings.ToLower(getEnv("EVENTS_BACKEND", "none")),
			Channel: getEnv("EVENTS_CHANNEL", "article-events"),
		},
		RabbitMQ: RabbitMQConfig{
			URL:             getEnv("RABBITMQ_URL", ""),
			QueueDurable:    getEnvBool("RABBITMQ_QUEUE_DURABLE", true),
			QueueAutoDelete: getEnvBool("RABBITMQ_QUEUE_AUTO_DELETE", false),
			PrefetchCount:   getEnvInt("RABBITMQ_PREFETCH", 10),
		},
		PubSub: PubSubConfig{
			ProjectID:          getEnv("PUBSUB_PROJECT_ID", ""),
			CredentialsFile:    getEnv("PUBSUB_CREDENTIALS_FILE", ""),
			SubscriptionSuffix: getEnv("PUBSUB_SUBSCRIPTION_SUFFIX", "-sub"),
		},
	}
}

func getEnv(key, defaultValue string) string {
	if value, exists := os.LookupEnv(key); exists {
		return value
	}
	return defaultValue
}

func getEnvInt(key string, defaultValue int) int {
	if valueStr, exists := os.LookupEnv(key); exists {
		var value int
		fmt.Sscanf(valueStr, "%d", &value)
		return value
	}
	return defaultValue
}

func getEnvBool(key string, defaultValue bool) bool {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := strconv.ParseBool(strings.TrimSpace(valueStr))
		if err != nil {
			return defaultValue
		}
		return value
	}
	return defaultValue
}

func getEnvDuration(key string, defaultValue time.Duration) time.Duration {
	if valueStr, exists := os.LookupEnv(key); exists {
		value, err := time.ParseDuration(strings.TrimSpace(valueStr))
		if err != nil || value <= 0 {
			return defaultValue
		}
		return value
	}
	return defaultValue
}
