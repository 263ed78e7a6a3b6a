// Package config contains code to set the default values and read
// config files to be used throughout the whole application
package config

import (
	"crypto/rand"
	"encoding/hex"
	"errors"
	"fmt"
	"os"
	"slices"
	"time"

	"github.com/spf13/pflag"
	v "github.com/spf13/viper"
)

var (
	configPath     = pflag.String("config", "config.toml", "Path to the config file")
	validLogLevels = []string{"debug", "info", "warn", "error", "fatal"}
	validDBDrivers = []string{"sqlite", "postgres"}
	validHashers   = []string{"bcrypt", "argon2"}

	ErrNoJWTSecret = errors.New("no jwt secret provided")
	ErrMissingFile = errors.New("config file is missing")
)

func genSecret() string {
	b := make([]byte, 64)
	rand.Read(b)
	return hex.EncodeToString(b)
}

// Setup prepares everything config-related so that the app can
// start working. Function will return an error if something
// is critically wrong and the application can't run because of
// that.
func Setup() error {
	pflag.Parse()

	err := Load(*configPath)
	if errors.Is(err, ErrNoJWTSecret) {
		fmt.Println("WARNING: You haven't set a JWT secret, so it has been generated for you. Please set it as an environment variable or in the config.toml file.\nYour random JWT secret:\n\n" + genSecret() + "\n\nPaste it into your config.toml file.")
		os.Exit(0)
	}

	return err
}

// Load reads the config file at path on top of the defaults and the
// environment, then validates the result. Any previous state of the
// global viper instance is dropped.
func Load(path string) error {
	v.Reset()

	v.SetConfigFile(path)
	v.SetConfigType("toml")

	v.AutomaticEnv()

	//
	// ENVS
	//
	v.BindEnv("app.log_level", "app_log_level")

	v.BindEnv("host.port", "host_port")
	v.BindEnv("host.domain", "host_domain")
	v.BindEnv("host.cors", "host_cors")

	v.BindEnv("db.driver", "db_driver")
	v.BindEnv("db.dsn", "db_dsn")

	v.BindEnv("jwt.secret", "jwt_secret")

	v.BindEnv("auth.code_ttl", "auth_code_ttl")
	v.BindEnv("auth.code_digits", "auth_code_digits")
	v.BindEnv("auth.session_ttl", "auth_session_ttl")
	v.BindEnv("auth.hasher", "auth_hasher")
	v.BindEnv("auth.bcrypt_cost", "auth_bcrypt_cost")
	v.BindEnv("auth.sweep_interval", "auth_sweep_interval")

	v.BindEnv("mail.host", "mail_host")
	v.BindEnv("mail.port", "mail_port")
	v.BindEnv("mail.username", "mail_username")
	v.BindEnv("mail.password", "mail_password")
	v.BindEnv("mail.sender_address", "mail_sender_address")
	v.BindEnv("mail.sender_name", "mail_sender_name")

	v.BindEnv("cache.redis_addr", "cache_redis_addr")
	v.BindEnv("cache.redis_password", "cache_redis_password")
	v.BindEnv("cache.ttl", "cache_ttl")

	v.BindEnv("security.rate_limit", "security_rate_limit")

	v.BindEnv("cloudflare.turnstile.enabled", "cloudflare_turnstile_enabled")
	v.BindEnv("cloudflare.turnstile.secret_token", "cloudflare_turnstile_secret_token")

	//
	// Defaults
	//
	v.SetDefault("app.log_level", "info")

	v.SetDefault("host.port", 8080)
	v.SetDefault("host.domain", "localhost")
	v.SetDefault("host.cors", []string{"http://localhost:5173"})

	v.SetDefault("db.driver", "sqlite")
	v.SetDefault("db.dsn", "database.db")

	v.SetDefault("auth.code_ttl", 600*time.Second)
	v.SetDefault("auth.code_digits", 6)
	v.SetDefault("auth.session_ttl", 24*time.Hour)
	v.SetDefault("auth.hasher", "bcrypt")
	v.SetDefault("auth.bcrypt_cost", 10)
	v.SetDefault("auth.sweep_interval", time.Minute)

	v.SetDefault("mail.port", 587)
	v.SetDefault("mail.sender_name", "Courses")

	v.SetDefault("cache.ttl", 30*time.Second)

	v.SetDefault("security.rate_limit", 10)

	v.SetDefault("cloudflare.turnstile.enabled", false)

	if err := v.ReadInConfig(); err != nil {
		if errors.Is(err, os.ErrNotExist) {
			return fmt.Errorf("%w: %v", ErrMissingFile, path)
		}

		return fmt.Errorf("failed to read config file, %w", err)
	}

	if !slices.Contains(validLogLevels, v.GetString("app.log_level")) {
		return errors.New("invalid log level provided")
	}

	if v.GetInt("host.port") <= 0 {
		return errors.New("invalid port provided")
	}

	if !slices.Contains(validDBDrivers, v.GetString("db.driver")) {
		return errors.New("invalid database driver provided")
	}

	if v.GetString("db.dsn") == "" {
		return errors.New("db.dsn can't be empty")
	}

	if v.GetString("jwt.secret") == "" {
		return ErrNoJWTSecret
	}

	if v.GetDuration("auth.code_ttl") <= 0 {
		return errors.New("auth.code_ttl must be bigger than 0")
	}

	if d := v.GetInt("auth.code_digits"); d < 6 || d > 10 {
		return errors.New("auth.code_digits must be between 6 and 10")
	}

	if v.GetDuration("auth.session_ttl") <= 0 {
		return errors.New("auth.session_ttl must be bigger than 0")
	}

	if !slices.Contains(validHashers, v.GetString("auth.hasher")) {
		return errors.New("invalid password hasher provided")
	}

	if v.GetDuration("auth.sweep_interval") <= 0 {
		return errors.New("auth.sweep_interval must be bigger than 0")
	}

	if v.GetString("mail.host") == "" {
		return errors.New("mail.host can't be empty")
	}

	if v.GetString("mail.sender_address") == "" {
		return errors.New("mail.sender_address can't be empty")
	}

	if v.GetInt("security.rate_limit") <= 0 {
		return errors.New("security.rate_limit must be bigger than 0")
	}

	if !v.GetBool("cloudflare.turnstile.enabled") {
		fmt.Println("[WARNING]: Cloudflare's turnstile is disabled. Register and login won't be guarded against bots")
	} else {
		if v.GetString("cloudflare.turnstile.secret_token") == "" {
			return errors.New("turnstile secret token is missing")
		}
	}

	return nil
}
