package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/spf13/viper"
)

// Config represents the application configuration
type Config struct {
	v *viper.Viper
}

// New creates a new configuration instance
func New() (*Config, error) {
	v := viper.New()
	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("/etc/privatemail/")
	v.AddConfigPath("$HOME/.privatemail")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	// Set defaults
	setDefaults(v)

	// Environment variables
	v.AutomaticEnv()
	v.SetEnvPrefix("PRIVATEMAIL")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	bindLegacyEnv(v)

	// Read config file
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
		// Config file not found, using defaults
	}

	return &Config{v: v}, nil
}

// NewFromViper creates a new configuration instance from an existing Viper instance
func NewFromViper(v *viper.Viper) *Config {
	return &Config{v: v}
}

// NewEmptyViper creates a new Viper instance with defaults
func NewEmptyViper() *viper.Viper {
	v := viper.New()
	setDefaults(v)
	return v
}

// bindLegacyEnv keeps the short environment names working alongside
// the prefixed ones.
func bindLegacyEnv(v *viper.Viper) {
	v.BindEnv("forward.from_email", "PRIVATEMAIL_FORWARD_FROM_EMAIL", "FROM_EMAIL")
	v.BindEnv("forward.to_email", "PRIVATEMAIL_FORWARD_TO_EMAIL", "TO_EMAIL")
	v.BindEnv("forward.blacklist", "PRIVATEMAIL_FORWARD_BLACKLIST", "BLACK_LIST")
	v.BindEnv("forward.subject_prefix", "PRIVATEMAIL_FORWARD_SUBJECT_PREFIX", "SUBJECT_PREFIX")
	v.BindEnv("s3.bucket", "PRIVATEMAIL_S3_BUCKET", "S3_BUCKET")
	v.BindEnv("s3.key_prefix", "PRIVATEMAIL_S3_KEY_PREFIX", "S3_KEY_PREFIX")
}

// setDefaults sets the default configuration values
func setDefaults(v *viper.Viper) {
	// Forwarding defaults
	v.SetDefault("forward.from_email", "")
	v.SetDefault("forward.to_email", "")
	v.SetDefault("forward.blacklist", []string{})
	v.SetDefault("forward.subject_prefix", "")

	// S3 store defaults
	v.SetDefault("s3.bucket", "")
	v.SetDefault("s3.key_prefix", "")
	v.SetDefault("s3.region", "")

	// SES defaults
	v.SetDefault("ses.region", "")
	v.SetDefault("ses.access_key_id", "")
	v.SetDefault("ses.secret_access_key", "")

	// Trigger defaults
	v.SetDefault("trigger.type", "lambda")
	v.SetDefault("trigger.drop_on_verdict_fail", true)

	// Sender defaults
	v.SetDefault("sender.type", "ses")

	// SMTP trigger defaults
	v.SetDefault("smtp.listen_address", "127.0.0.1:2525")
	v.SetDefault("smtp.domain", "localhost")
	v.SetDefault("smtp.max_message_bytes", 30*1024*1024)
	v.SetDefault("smtp.read_timeout", "30s")
	v.SetDefault("smtp.write_timeout", "30s")

	// Logging defaults
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
}

// GetString gets a string value from the configuration
func (c *Config) GetString(key string) string {
	return c.v.GetString(key)
}

// GetInt gets an integer value from the configuration
func (c *Config) GetInt(key string) int {
	return c.v.GetInt(key)
}

// GetInt64 gets an int64 value from the configuration
func (c *Config) GetInt64(key string) int64 {
	return c.v.GetInt64(key)
}

// GetBool gets a boolean value from the configuration
func (c *Config) GetBool(key string) bool {
	return c.v.GetBool(key)
}

// GetStringSlice gets a string slice value from the configuration
func (c *Config) GetStringSlice(key string) []string {
	return c.v.GetStringSlice(key)
}

// GetDuration gets a duration value from the configuration
func (c *Config) GetDuration(key string) (time.Duration, error) {
	return time.ParseDuration(c.GetString(key))
}

// GetViper returns the underlying Viper instance
func (c *Config) GetViper() *viper.Viper {
	return c.v
}
