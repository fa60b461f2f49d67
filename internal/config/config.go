package config

import (
	"github.com/spf13/viper"
)

// Config stores all configuration for the scrape worker.
type Config struct {
	PostgresURL        string  `mapstructure:"POSTGRES_URL"`
	RedisAddr          string  `mapstructure:"REDIS_ADDR"`
	ServerPort         string  `mapstructure:"SERVER_PORT"`
	FetchTimeout       int     `mapstructure:"FETCH_TIMEOUT"`
	RenderTimeout      int     `mapstructure:"RENDER_TIMEOUT"`
	SeedWorkers        int     `mapstructure:"SEED_WORKERS"`
	BatchQueueSize     int     `mapstructure:"BATCH_QUEUE_SIZE"`
	RespectRobots      bool    `mapstructure:"RESPECT_ROBOTS"`
	RateLimitPerSecond float64 `mapstructure:"RATE_LIMIT_PER_SECOND"`
	RenderCacheHours   int     `mapstructure:"RENDER_CACHE_HOURS"`
}

// Load reads configuration from file or environment variables.
func Load() (*Config, error) {
	viper.SetConfigFile(".env")
	viper.SetConfigType("env")
	viper.AutomaticEnv()

	// Attempt to read the .env file, but don't fail if it's not present
	// This allows configuration purely through environment variables in production
	_ = viper.ReadInConfig()

	viper.SetDefault("SERVER_PORT", "8080")
	viper.SetDefault("FETCH_TIMEOUT", 20)  // in seconds
	viper.SetDefault("RENDER_TIMEOUT", 25) // in seconds
	viper.SetDefault("SEED_WORKERS", 4)
	viper.SetDefault("BATCH_QUEUE_SIZE", 16)
	viper.SetDefault("RESPECT_ROBOTS", false)
	viper.SetDefault("RATE_LIMIT_PER_SECOND", 2.0)
	viper.SetDefault("RENDER_CACHE_HOURS", 12)

	var cfg Config
	if err := viper.Unmarshal(&cfg); err != nil {
		return nil, err
	}
	return &cfg, nil
}
