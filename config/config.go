package config

import (
	"pitwall/pkg/logger"

	"github.com/spf13/viper"
)

const (
	minJWTSecretLength = 32
	defaultFeedLimit   = 20
	defaultFeedMax     = 100
)

type Config struct {
	GeneralVersion       string `mapstructure:"GENERAL_VERSION"`
	Environment          string `mapstructure:"ENVIRONMENT"`
	ServerPort           int    `mapstructure:"SERVER_PORT"`
	DatabaseHost         string `mapstructure:"DB_HOST"`
	DatabasePort         int    `mapstructure:"DB_PORT"`
	DatabaseName         string `mapstructure:"DB_NAME"`
	DatabaseUser         string `mapstructure:"DB_USER"`
	DatabasePassword     string `mapstructure:"DB_PASSWORD"`
	DatabaseSSLMode      string `mapstructure:"DB_SSL_MODE"`
	DatabaseCacheAddress string `mapstructure:"DB_CACHE_ADDRESS"`
	DatabaseCachePort    int    `mapstructure:"DB_CACHE_PORT"`
	DatabaseCacheReset   int    `mapstructure:"DB_CACHE_RESET"`
	CorsAllowOrigins     string `mapstructure:"CORS_ALLOW_ORIGINS"`
	AuthJWTSecret        string `mapstructure:"AUTH_JWT_SECRET"`
	AuthJWTIssuer        string `mapstructure:"AUTH_JWT_ISSUER"`
	SchedulerEnabled     bool   `mapstructure:"SCHEDULER_ENABLED"`
	FeedDefaultLimit     int    `mapstructure:"FEED_DEFAULT_LIMIT"`
	FeedMaxLimit         int    `mapstructure:"FEED_MAX_LIMIT"`
}

var ConfigInstance Config

var envVars = []string{
	"GENERAL_VERSION", "ENVIRONMENT", "SERVER_PORT",
	"DB_HOST", "DB_PORT", "DB_NAME", "DB_USER", "DB_PASSWORD", "DB_SSL_MODE",
	"DB_CACHE_ADDRESS", "DB_CACHE_PORT", "DB_CACHE_RESET",
	"CORS_ALLOW_ORIGINS",
	"AUTH_JWT_SECRET", "AUTH_JWT_ISSUER",
	"SCHEDULER_ENABLED",
	"FEED_DEFAULT_LIMIT", "FEED_MAX_LIMIT",
}

func New() (Config, error) {
	log := logger.New("config").Function("New")
	log.Info("Initializing config")

	viper.AutomaticEnv()

	viper.SetDefault("DB_SSL_MODE", "disable")
	viper.SetDefault("DB_CACHE_RESET", -1)
	viper.SetDefault("AUTH_JWT_ISSUER", "pitwall")
	viper.SetDefault("SCHEDULER_ENABLED", false)
	viper.SetDefault("FEED_DEFAULT_LIMIT", defaultFeedLimit)
	viper.SetDefault("FEED_MAX_LIMIT", defaultFeedMax)

	for _, env := range envVars {
		if err := viper.BindEnv(env); err != nil {
			log.Warn("Failed to bind environment variable", "env", env, "error", err)
		}
	}

	envVarsSet := viper.IsSet("SERVER_PORT") && viper.IsSet("DB_HOST")

	if envVarsSet {
		log.Info("Environment variables detected, skipping file loading")
	} else {
		log.Info("Environment variables not found, attempting to load from files")

		viper.SetConfigFile(".env")
		viper.SetConfigType("env")

		if err := viper.ReadInConfig(); err != nil {
			log.Warn("Could not find .env file", "error", err)
		} else {
			log.Info("Loaded .env file")
		}

		viper.SetConfigFile(".env.local")
		if err := viper.MergeInConfig(); err != nil {
			log.Debug("No .env.local file found", "error", err)
		} else {
			log.Info("Loaded .env.local overrides")
		}
	}

	var config Config
	if err := viper.Unmarshal(&config); err != nil {
		return Config{}, log.Err("Fatal error: could not unmarshal config", err)
	}

	if err := validateConfig(config, log); err != nil {
		return Config{}, err
	}

	log.Info(
		"Successfully initialized config",
		"environment", config.Environment,
		"port", config.ServerPort,
		"schedulerEnabled", config.SchedulerEnabled,
	)
	return ConfigInstance, nil
}

func GetConfig() Config {
	return ConfigInstance
}

func (c Config) IsProduction() bool {
	return c.Environment == "production"
}

func validateConfig(config Config, log logger.Logger) error {
	if config.ServerPort <= 0 {
		return log.Error("Fatal error: invalid server port", "port", config.ServerPort)
	}

	if len(config.AuthJWTSecret) < minJWTSecretLength {
		return log.Error(
			"Fatal error: AUTH_JWT_SECRET too short",
			"length", len(config.AuthJWTSecret),
			"min", minJWTSecretLength,
		)
	}

	if config.FeedDefaultLimit <= 0 || config.FeedMaxLimit <= 0 {
		return log.Error(
			"Fatal error: feed limits must be positive",
			"default", config.FeedDefaultLimit,
			"max", config.FeedMaxLimit,
		)
	}

	if config.FeedDefaultLimit > config.FeedMaxLimit {
		return log.Error(
			"Fatal error: FEED_DEFAULT_LIMIT exceeds FEED_MAX_LIMIT",
			"default", config.FeedDefaultLimit,
			"max", config.FeedMaxLimit,
		)
	}

	if config.IsProduction() && config.DatabaseSSLMode == "disable" {
		return log.Error("Fatal error: production requires DB_SSL_MODE other than disable")
	}

	ConfigInstance = config
	return nil
}
