package config

import (
	"log"
	"time"

	"github.com/caarlos0/env/v11"
	"github.com/joho/godotenv"
)

type Config struct {
	LogLevel          string `env:"LOG_LEVEL"`
	Postgres          Postgres
	Redis             Redis
	HTTP              HTTP
	API               API
	Cache             Cache
	Jobs              Jobs
	SessionExpiration time.Duration `env:"SESSION_EXPIRATION"`
	ChatHistoryLimit  int           `env:"CHAT_HISTORY_LIMIT"`
}

type Postgres struct {
	Host            string `env:"PG_HOST"`
	Port            int    `env:"PG_PORT"`
	DbName          string `env:"PG_DB_NAME"`
	Password        string `env:"PG_PASSWORD"`
	User            string `env:"PG_USER"`
	MaxOpenConns    int    `env:"PG_MAX_OPEN_CONNS"`
	ConnMaxLifetime int    `env:"PG_CONN_MAX_LIFETIME"`
	MaxIdleConns    int    `env:"PG_MAX_IDLE_CONNS"`
	ConnMaxIdleTime int    `env:"PG_CONN_MAX_IDLE_TIME"`
	MigrationDir    string `env:"PG_MIGRATION_DIR"`
}

type Redis struct {
	Host     string `env:"REDIS_HOST"`
	Port     int    `env:"REDIS_PORT"`
	Password string `env:"REDIS_PASSWORD"`
	DB       int    `env:"REDIS_DB"`
}

type HTTP struct {
	Port            int           `env:"HTTP_PORT"`
	ReadTimeout     time.Duration `env:"HTTP_READ_TIMEOUT"`
	WriteTimeout    time.Duration `env:"HTTP_WRITE_TIMEOUT"`
	ShutdownTimeout time.Duration `env:"HTTP_SHUTDOWN_TIMEOUT"`
}

type API struct {
	Debug     bool          `env:"API_DEBUG"`
	Timeout   time.Duration `env:"API_TIMEOUT"`
	Polygon   Polygon
	Anthropic Anthropic
}

type Polygon struct {
	Url    string `env:"POLYGON_API_URL"`
	ApiKey string `env:"POLYGON_API_KEY"`
}

type Anthropic struct {
	ApiKey    string `env:"ANTHROPIC_API_KEY"`
	Model     string `env:"ANTHROPIC_MODEL"`
	MaxTokens int    `env:"ANTHROPIC_MAX_TOKENS"`
}

type Cache struct {
	QuotesExpiration time.Duration `env:"CACHE_QUOTES_EXPIRATION"`
}

type Jobs struct {
	RefreshPricesInterval time.Duration `env:"REFRESH_PRICES_JOB_INTERVAL"`
	MarketDataCrontab     string        `env:"MARKET_DATA_JOB_CRONTAB"`
	PreMarketRecsCrontab  string        `env:"PREMARKET_RECOMMENDATIONS_CRONTAB"`
	PostMarketRecsCrontab string        `env:"POSTMARKET_RECOMMENDATIONS_CRONTAB"`
	DeactivateRecsCrontab string        `env:"DEACTIVATE_RECOMMENDATIONS_CRONTAB"`
}

func MustLoad() *Config {
	_ = godotenv.Load(".env")

	cfg := &Config{}

	opts := env.Options{RequiredIfNoDef: true}

	if err := env.ParseWithOptions(cfg, opts); err != nil {
		log.Fatalf("parse config error: %s", err)
	}

	return cfg
}
