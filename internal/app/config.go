package app

import (
	"os"
	"time"

	"github.com/cristalhq/aconfig"
	"github.com/cristalhq/aconfig/aconfigyaml"
	"github.com/go-faster/errors"
)

// Config holds the complete application configuration, loadable from
// environment variables (BAZAAR_ prefix), flags, or YAML config files.
type Config struct {
	Addr          string `default:"0.0.0.0:8080" usage:"API server listen address"`
	MongoURI      string `usage:"MongoDB connection URI (BAZAAR_MONGO_URI or MONGODB_URI)" flag:"mongo-uri"`
	MongoDatabase string `default:"bazaarkart" usage:"MongoDB database name" flag:"mongo-database"`
	ImageBaseURL  string `default:"" usage:"Base URL for relative product image paths" flag:"image-base-url"`
	TaxRate       string `default:"0.18" usage:"Fractional tax rate applied at checkout" flag:"tax-rate"`
	Redis         RedisConfig
	Kafka         KafkaConfig
	RateLimit     RateLimitConfig
	CORS          CORSConfig
	Graceful      GracefulConfig
}

// RedisConfig controls the session cart store.
type RedisConfig struct {
	Addr     string        `default:"localhost:6379" usage:"Redis address for session carts"`
	Password string        `default:"" usage:"Redis password"`
	DB       int           `default:"0" usage:"Redis database number"`
	TTL      time.Duration `default:"720h" usage:"Session cart retention"`
}

// KafkaConfig controls order event publishing. With no brokers configured
// events are dropped and the order flow runs standalone.
type KafkaConfig struct {
	Brokers []string `usage:"Kafka broker addresses; empty disables eventing"`
	Topic   string   `default:"bazaarkart.orders" usage:"Kafka topic for order events"`
}

// RateLimitConfig controls the per-client sliding window rate limiter.
type RateLimitConfig struct {
	Max    int           `default:"100" usage:"Max requests per window"`
	Window time.Duration `default:"1m"  usage:"Rate limit window duration"`
}

// CORSConfig controls Cross-Origin Resource Sharing headers.
type CORSConfig struct {
	Origins          []string `default:"*" usage:"Allowed CORS origins"`
	AllowCredentials bool     `default:"false" usage:"Allow credentials (cookies, auth headers)" flag:"cors-credentials"`
}

// GracefulConfig controls graceful shutdown timing.
type GracefulConfig struct {
	ReadinessDelay  time.Duration `default:"3s"  usage:"Delay after readiness=false before shutdown" flag:"readiness-delay"`
	ShutdownTimeout time.Duration `default:"15s" usage:"Maximum shutdown duration" flag:"shutdown-timeout"`
}

// LoadConfig loads configuration from environment variables, YAML config
// files, and applies platform-specific defaults.
func LoadConfig() (*Config, error) {
	var cfg Config
	loader := aconfig.LoaderFor(&cfg, aconfig.Config{
		EnvPrefix: "BAZAAR",
		Files:     []string{"config.yaml", "/etc/bazaarkart/config.yaml"},
		FileDecoders: map[string]aconfig.FileDecoder{
			".yaml": aconfigyaml.New(),
		},
	})
	if err := loader.Load(); err != nil {
		return nil, errors.Wrap(err, "load config")
	}
	cfg.applyPlatformDefaults()

	if cfg.MongoURI == "" {
		return nil, errors.New("mongo URI is required: set BAZAAR_MONGO_URI or MONGODB_URI")
	}

	return &cfg, nil
}

// applyPlatformDefaults maps platform-provided environment variables (Railway,
// Render, etc.) that use standard names like MONGODB_URI and PORT to the
// application's BAZAAR_-prefixed configuration.
func (c *Config) applyPlatformDefaults() {
	if c.MongoURI == "" {
		if v := os.Getenv("MONGODB_URI"); v != "" {
			c.MongoURI = v
		}
	}
	if port := os.Getenv("PORT"); port != "" && c.Addr == "0.0.0.0:8080" {
		c.Addr = "0.0.0.0:" + port
	}
}
