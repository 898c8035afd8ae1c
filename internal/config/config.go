package config

import (
	"log"
	"os"
	"strings"

	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

// ConfigFileEnv points at an alternative config file when set
const ConfigFileEnv = "POS_CONFIG_FILE"

type Config struct {
	Server   ServerConfig
	Log      LogConfig
	Storage  StorageConfig
	Database DatabaseConfig
	Redis    RedisConfig
	Sale     SaleConfig
}

type ServerConfig struct {
	Port           string
	Env            string
	AllowedOrigins []string
}

type LogConfig struct {
	File string // rotated JSON log file, empty disables it
}

// StorageConfig selects the slot backend holding the serialized collections
type StorageConfig struct {
	Driver      string // bolt, postgres, redis or memory
	ProductsKey string
	SalesKey    string
	BoltPath    string
	BoltBucket  string
}

type DatabaseConfig struct {
	Host     string
	Port     string
	User     string
	Password string
	Database string
	Schema   string
}

type RedisConfig struct {
	Host     string
	Port     string
	Password string
	DB       int
}

type SaleConfig struct {
	DecrementStock bool
}

// IsDevelopment reports whether the server runs with development settings
func (c ServerConfig) IsDevelopment() bool {
	return c.Env != "production"
}

// Load reads configuration from .env (or the file named by --config / POS_CONFIG_FILE)
// and the process environment.
func Load() *Config {
	return LoadFrom(configFilePath(os.Args[1:]))
}

// LoadFrom reads configuration from the given file, falling back to ./.env when path is empty
func LoadFrom(path string) *Config {
	v := viper.New()
	if path != "" {
		v.SetConfigFile(path)
	} else {
		v.SetConfigName(".env")
		v.SetConfigType("env")
		v.AddConfigPath(".")
	}
	v.AutomaticEnv()

	setDefaults(v)

	if err := v.ReadInConfig(); err != nil {
		log.Printf("Warning: Could not read config file: %v", err)
	}

	return &Config{
		Server: ServerConfig{
			Port:           v.GetString("SERVER_PORT"),
			Env:            v.GetString("SERVER_ENV"),
			AllowedOrigins: splitList(v.GetString("SERVER_ALLOWED_ORIGINS")),
		},
		Log: LogConfig{
			File: v.GetString("LOG_FILE"),
		},
		Storage: StorageConfig{
			Driver:      strings.ToLower(v.GetString("STORAGE_DRIVER")),
			ProductsKey: v.GetString("STORAGE_PRODUCTS_KEY"),
			SalesKey:    v.GetString("STORAGE_SALES_KEY"),
			BoltPath:    v.GetString("BOLT_PATH"),
			BoltBucket:  v.GetString("BOLT_BUCKET"),
		},
		Database: DatabaseConfig{
			Host:     v.GetString("DB_HOST"),
			Port:     v.GetString("DB_PORT"),
			User:     v.GetString("DB_USER"),
			Password: v.GetString("DB_PASSWORD"),
			Database: v.GetString("DB_DATABASE"),
			Schema:   v.GetString("DB_SCHEMA"),
		},
		Redis: RedisConfig{
			Host:     v.GetString("REDIS_HOST"),
			Port:     v.GetString("REDIS_PORT"),
			Password: v.GetString("REDIS_PASSWORD"),
			DB:       v.GetInt("REDIS_DB"),
		},
		Sale: SaleConfig{
			DecrementStock: v.GetBool("SALE_DECREMENT_STOCK"),
		},
	}
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("SERVER_PORT", "8080")
	v.SetDefault("SERVER_ENV", "development")
	v.SetDefault("SERVER_ALLOWED_ORIGINS", "")
	v.SetDefault("LOG_FILE", "")
	v.SetDefault("STORAGE_DRIVER", "bolt")
	v.SetDefault("STORAGE_PRODUCTS_KEY", "products")
	v.SetDefault("STORAGE_SALES_KEY", "sales")
	v.SetDefault("BOLT_PATH", "pocket-pos.db")
	v.SetDefault("BOLT_BUCKET", "storage")
	v.SetDefault("DB_HOST", "localhost")
	v.SetDefault("DB_PORT", "5432")
	v.SetDefault("DB_SCHEMA", "public")
	v.SetDefault("REDIS_HOST", "localhost")
	v.SetDefault("REDIS_PORT", "6379")
	v.SetDefault("REDIS_DB", 0)
	v.SetDefault("SALE_DECREMENT_STOCK", true)
}

func configFilePath(args []string) string {
	if env, ok := os.LookupEnv(ConfigFileEnv); ok {
		return env
	}
	flags := pflag.NewFlagSet("config", pflag.ContinueOnError)
	flags.ParseErrorsWhitelist.UnknownFlags = true
	flags.Usage = func() {}
	path := flags.String("config", "", "config file")
	_ = flags.Parse(args)
	return *path
}

func splitList(raw string) []string {
	var out []string
	for _, part := range strings.Split(raw, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}
