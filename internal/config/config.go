package config

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/rs/zerolog"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"

	"github.com/Alturino/storefront/internal/common/constants"
	"github.com/Alturino/storefront/internal/log"
)

type Application struct {
	Env       string `mapstructure:"env"        json:"env"`
	Host      string `mapstructure:"host"       json:"host"`
	SecretKey string `mapstructure:"secret_key" json:"-"`
	LogFile   string `mapstructure:"log_file"   json:"log_file"`
	Port      int    `mapstructure:"port"       json:"port"`
}

type Database struct {
	Name           string `mapstructure:"name"            json:"name"`
	Host           string `mapstructure:"host"            json:"host"`
	MigrationPath  string `mapstructure:"migration_path"  json:"migration_path"`
	Password       string `mapstructure:"password"        json:"-"`
	TimeZone       string `mapstructure:"timezone"        json:"timezone"`
	Username       string `mapstructure:"username"        json:"username"`
	MaxConnections int    `mapstructure:"max_connections" json:"max_connections"`
	MinConnections int    `mapstructure:"min_connections" json:"min_connections"`
	Port           uint16 `mapstructure:"port"            json:"port"`
}

type Cache struct {
	Host     string `mapstructure:"host"     json:"host"`
	Password string `mapstructure:"password" json:"-"`
	Database int    `mapstructure:"database" json:"database"`
	Port     uint16 `mapstructure:"port"     json:"port"`
}

type Otel struct {
	Host string `mapstructure:"host" json:"host"`
	Port int    `mapstructure:"port" json:"port"`
}

func (o Otel) Endpoint() string {
	return fmt.Sprintf("%s:%d", o.Host, o.Port)
}

const (
	StoreMemory = "memory"
	StoreRedis  = "redis"
)

type Checkout struct {
	OrderServiceURL    string          `mapstructure:"order_service_url"    json:"order_service_url"`
	MinimumOrderAmount decimal.Decimal `mapstructure:"minimum_order_amount" json:"minimum_order_amount"`
	Store              string          `mapstructure:"store"                json:"store"`
	TokenTTL           time.Duration   `mapstructure:"token_ttl"            json:"token_ttl"`
}

type Config struct {
	Database    `mapstructure:"db"          json:"db"`
	Cache       `mapstructure:"cache"       json:"cache"`
	Application `mapstructure:"application" json:"application"`
	Otel        `mapstructure:"otel"        json:"otel"`
	Checkout    `mapstructure:"checkout"    json:"checkout"`
}

var (
	once   sync.Once
	config *Config
)

func setDefaults(v *viper.Viper) {
	v.SetDefault("application.env", "production")
	v.SetDefault("application.host", "0.0.0.0")
	v.SetDefault("application.port", 8080)
	v.SetDefault("db.migration_path", constants.PATH_ORDER_MIGRATE)
	v.SetDefault("checkout.order_service_url", "http://order-service:8080")
	v.SetDefault("checkout.minimum_order_amount", "15")
	v.SetDefault("checkout.store", StoreMemory)
	v.SetDefault("checkout.token_ttl", time.Hour)
	v.SetDefault("otel.host", "otel-collector")
	v.SetDefault("otel.port", 4317)
}

func InitConfig(c context.Context, filename string) *Config {
	once.Do(func() {
		logger := zerolog.Ctx(c).
			With().
			Str(log.KeyTag, "main InitConfig").
			Str(log.KeyProcess, "init config").
			Str("filename", filename).
			Logger()

		cfg, err := Load(filename, "./env")
		if err != nil {
			err = fmt.Errorf("failed loading config with error=%w", err)
			logger.Fatal().Err(err).Msg(err.Error())
		}
		config = &cfg
		logger = logger.With().Any(log.KeyConfig, cfg).Logger()
		logger.Info().Msg("loaded config")
	})
	return config
}

// Load reads <filename>.yaml from the given paths. Environment variables such
// as CHECKOUT_ORDER_SERVICE_URL override file values.
func Load(filename string, paths ...string) (Config, error) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigName(filename)
	v.SetConfigType("yaml")
	for _, p := range paths {
		v.AddConfigPath(p)
	}
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		return Config{}, fmt.Errorf("error when reading config with error=%w", err)
	}

	cfg := Config{}
	err := v.Unmarshal(&cfg, viper.DecodeHook(decimalHook()))
	if err != nil {
		return Config{}, fmt.Errorf("error unmarshaling config with error=%w", err)
	}
	return cfg, nil
}
