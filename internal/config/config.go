package config

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strings"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"
)

// Backend names accepted by TASKS_BACKEND.
const (
	BackendMemory = "memory"
	BackendKV     = "kv"
	BackendBlob   = "blob"
	BackendSQL    = "sql"
	BackendMongo  = "mongo"
)

var ErrInvalidConfig = errors.New("invalid configuration")

type Config struct {
	ServerPort     string
	Backend        string
	Timezone       string
	Location       *time.Location
	SessionSecret  string
	SessionTTL     time.Duration
	BackendTimeout time.Duration

	DBDriver   string
	DBHost     string
	DBPort     string
	DBUser     string
	DBPassword string
	DBName     string
	SQLitePath string

	RedisAddr     string
	RedisPassword string
	RedisDB       int
	RedisPrefix   string

	NATSURL    string
	BlobBucket string
	BlobObject string

	MongoURI        string
	MongoDatabase   string
	MongoCollection string
}

var defaults = map[string]any{
	"SERVER_PORT":      "8080",
	"TASKS_BACKEND":    BackendMemory,
	"TIMEZONE":         "UTC",
	"SESSION_SECRET":   "change-me-session-secret",
	"SESSION_TTL":      "24h",
	"BACKEND_TIMEOUT":  "5s",
	"DB_DRIVER":        "postgres",
	"DB_HOST":          "localhost",
	"DB_PORT":          "5432",
	"DB_USER":          "tasks_user",
	"DB_PASSWORD":      "tasks_pass",
	"DB_NAME":          "tasks_db",
	"SQLITE_PATH":      "tasks.db",
	"REDIS_ADDR":       "localhost:6379",
	"REDIS_PASSWORD":   "",
	"REDIS_DB":         0,
	"REDIS_PREFIX":     "tasks:",
	"NATS_URL":         "nats://localhost:4222",
	"BLOB_BUCKET":      "tasks",
	"BLOB_OBJECT":      "tareas.json",
	"MONGO_URI":        "mongodb://localhost:27017",
	"MONGO_DATABASE":   "tasks",
	"MONGO_COLLECTION": "tareas",
}

// Load reads .env, the optional file named by TASKS_CONFIG_FILE and the
// environment, in increasing order of precedence.
func Load() (*Config, error) {
	err := godotenv.Load()
	if err != nil {
		log.Println("⚠️  No .env file found, using system environment variables")
	}

	v := viper.New()
	for key, val := range defaults {
		v.SetDefault(key, val)
	}
	v.AutomaticEnv()

	if file := os.Getenv("TASKS_CONFIG_FILE"); file != "" {
		v.SetConfigFile(file)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("%w: reading %s: %v", ErrInvalidConfig, file, err)
		}
		log.Printf("✅ Loaded config file %s", file)
	}

	return fromViper(v)
}

func fromViper(v *viper.Viper) (*Config, error) {
	cfg := &Config{
		ServerPort:      v.GetString("SERVER_PORT"),
		Backend:         strings.ToLower(v.GetString("TASKS_BACKEND")),
		Timezone:        v.GetString("TIMEZONE"),
		SessionSecret:   v.GetString("SESSION_SECRET"),
		SessionTTL:      v.GetDuration("SESSION_TTL"),
		BackendTimeout:  v.GetDuration("BACKEND_TIMEOUT"),
		DBDriver:        strings.ToLower(v.GetString("DB_DRIVER")),
		DBHost:          v.GetString("DB_HOST"),
		DBPort:          v.GetString("DB_PORT"),
		DBUser:          v.GetString("DB_USER"),
		DBPassword:      v.GetString("DB_PASSWORD"),
		DBName:          v.GetString("DB_NAME"),
		SQLitePath:      v.GetString("SQLITE_PATH"),
		RedisAddr:       v.GetString("REDIS_ADDR"),
		RedisPassword:   v.GetString("REDIS_PASSWORD"),
		RedisDB:         v.GetInt("REDIS_DB"),
		RedisPrefix:     v.GetString("REDIS_PREFIX"),
		NATSURL:         v.GetString("NATS_URL"),
		BlobBucket:      v.GetString("BLOB_BUCKET"),
		BlobObject:      v.GetString("BLOB_OBJECT"),
		MongoURI:        v.GetString("MONGO_URI"),
		MongoDatabase:   v.GetString("MONGO_DATABASE"),
		MongoCollection: v.GetString("MONGO_COLLECTION"),
	}

	switch cfg.Backend {
	case BackendMemory, BackendKV, BackendBlob, BackendSQL, BackendMongo:
	default:
		return nil, fmt.Errorf("%w: unknown TASKS_BACKEND %q", ErrInvalidConfig, cfg.Backend)
	}
	if cfg.Backend == BackendSQL && cfg.DBDriver != "postgres" && cfg.DBDriver != "sqlite" {
		return nil, fmt.Errorf("%w: unknown DB_DRIVER %q", ErrInvalidConfig, cfg.DBDriver)
	}

	loc, err := time.LoadLocation(cfg.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: TIMEZONE %q: %v", ErrInvalidConfig, cfg.Timezone, err)
	}
	cfg.Location = loc

	if cfg.SessionTTL <= 0 {
		return nil, fmt.Errorf("%w: SESSION_TTL must be positive, got %s", ErrInvalidConfig, cfg.SessionTTL)
	}
	if cfg.BackendTimeout <= 0 {
		cfg.BackendTimeout = 5 * time.Second
	}
	return cfg, nil
}

// Now returns the current time in the configured location.
func (c *Config) Now() time.Time {
	return time.Now().In(c.Location)
}

// PostgresDSN builds the connection string for the postgres driver.
func (c *Config) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=disable",
		c.DBHost, c.DBPort, c.DBUser, c.DBPassword, c.DBName,
	)
}
