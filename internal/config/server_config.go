package config

import (
	"fmt"
	"log"
	"strings"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
	"seungpyo.lee/BlogBoard/pkg/config"
)

const (
	DBDriverPostgres = "postgres"
	DBDriverSQLite   = "sqlite"

	TokenStoreSQL   = "sql"
	TokenStoreRedis = "redis"

	ImageStorageLocal = "local"
	ImageStorageAzure = "azure"
)

// ServerConfig extends GlobalConfig with the settings of the API server.
type ServerConfig struct {
	config.GlobalConfig

	JWTSecretKey  string        `env:"JWT_SECRET_KEY,required,notEmpty"`
	ResetTokenTTL time.Duration `env:"RESET_TOKEN_TTL" envDefault:"1h"`
	ResetURLBase  string        `env:"RESET_URL_BASE" envDefault:"http://localhost:5173/reset-password"`
	GinMode       string        `env:"GIN_MODE" envDefault:"release"`
	CORSOrigins   []string      `env:"CORS_ORIGINS" envDefault:"http://localhost:5173" envSeparator:","`

	DBDriver          string `env:"DB_DRIVER" envDefault:"postgres"`
	PostgreDBURL      string `env:"POSTGRE_DB_URL" envDefault:"localhost"`
	PostgreDBPort     string `env:"POSTGRE_DB_PORT" envDefault:"5432"`
	PostgreDBUser     string `env:"POSTGRE_DB_USER" envDefault:"postgres"`
	PostgreDBPassword string `env:"POSTGRE_DB_PASSWORD"`
	PostgreDBName     string `env:"POSTGRE_DB_NAME" envDefault:"blogboard"`
	PostgreSSLMode    string `env:"POSTGRE_SSLMODE" envDefault:"disable"`
	SQLitePath        string `env:"SQLITE_PATH" envDefault:"blogboard.db"`

	TokenStore         string        `env:"TOKEN_STORE" envDefault:"sql"`
	TokenPurgeInterval time.Duration `env:"TOKEN_PURGE_INTERVAL" envDefault:"1h"`
	RedisDBURL         string        `env:"REDIS_DB_URL" envDefault:"localhost"`
	RedisDBPort        string        `env:"REDIS_DB_PORT" envDefault:"6379"`
	RedisDBPassword    string        `env:"REDIS_DB_PASSWORD"`
	RedisMaxRetries    int           `env:"REDIS_MAX_RETRIES" envDefault:"3"`
	RedisPoolSize      int           `env:"REDIS_POOL_SIZE" envDefault:"10"`

	ImageStorage                 string `env:"IMAGE_STORAGE" envDefault:"local"`
	UploadDir                    string `env:"UPLOAD_DIR" envDefault:"uploads"`
	UploadBaseURL                string `env:"UPLOAD_BASE_URL" envDefault:"/uploads"`
	UploadMaxBytes               int64  `env:"UPLOAD_MAX_BYTES" envDefault:"5242880"`
	AzureStorageConnectionString string `env:"AZURE_STORAGE_CONNECTION_STRING"`
	BlobContainerName            string `env:"BLOB_CONTAINER_NAME" envDefault:"images"`

	PopularLikeThreshold int `env:"POPULAR_LIKE_THRESHOLD" envDefault:"10"`
}

// LoadServerConfig reads .env (if present) and the environment.
func LoadServerConfig() (*ServerConfig, error) {
	// Load .env file for local development
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, reading from environment variables")
	}
	return ParseServerConfig()
}

// ParseServerConfig reads the configuration from the process environment only.
func ParseServerConfig() (*ServerConfig, error) {
	global, err := config.LoadGlobalConfig()
	if err != nil {
		return nil, err
	}
	conf := &ServerConfig{GlobalConfig: *global}
	if err := env.Parse(conf); err != nil {
		return nil, fmt.Errorf("parse server config: %w", err)
	}
	if err := conf.validate(); err != nil {
		return nil, err
	}
	return conf, nil
}

func (c *ServerConfig) validate() error {
	c.DBDriver = strings.ToLower(c.DBDriver)
	c.TokenStore = strings.ToLower(c.TokenStore)
	c.ImageStorage = strings.ToLower(c.ImageStorage)

	switch c.DBDriver {
	case DBDriverPostgres, DBDriverSQLite:
	default:
		return fmt.Errorf("unsupported DB_DRIVER %q", c.DBDriver)
	}
	switch c.TokenStore {
	case TokenStoreSQL, TokenStoreRedis:
	default:
		return fmt.Errorf("unsupported TOKEN_STORE %q", c.TokenStore)
	}
	switch c.ImageStorage {
	case ImageStorageLocal:
	case ImageStorageAzure:
		if c.AzureStorageConnectionString == "" {
			return fmt.Errorf("AZURE_STORAGE_CONNECTION_STRING is required when IMAGE_STORAGE=azure")
		}
	default:
		return fmt.Errorf("unsupported IMAGE_STORAGE %q", c.ImageStorage)
	}
	if c.UploadMaxBytes <= 0 {
		return fmt.Errorf("UPLOAD_MAX_BYTES must be positive")
	}
	if c.PopularLikeThreshold < 1 {
		return fmt.Errorf("POPULAR_LIKE_THRESHOLD must be at least 1")
	}
	if c.ResetTokenTTL <= 0 {
		return fmt.Errorf("RESET_TOKEN_TTL must be positive")
	}
	return nil
}

// PostgresDSN builds the connection string for the postgres driver.
func (c *ServerConfig) PostgresDSN() string {
	return fmt.Sprintf("host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
		c.PostgreDBURL, c.PostgreDBPort, c.PostgreDBUser, c.PostgreDBPassword, c.PostgreDBName, c.PostgreSSLMode)
}

// RedisAddr returns host:port of the redis server.
func (c *ServerConfig) RedisAddr() string {
	return fmt.Sprintf("%s:%s", c.RedisDBURL, c.RedisDBPort)
}
