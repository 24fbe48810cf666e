package config

import (
	"fmt"
	"net/mail"
	"strings"
)

// ForwardConfig represents the forwarding identity and filtering rules
type ForwardConfig struct {
	FromEmail     string
	ToEmail       string
	Blacklist     []string
	SubjectPrefix string
}

// Validate checks that the forwarding configuration is usable
func (f ForwardConfig) Validate() error {
	if f.FromEmail == "" {
		return fmt.Errorf("forward.from_email is required")
	}
	if _, err := mail.ParseAddress(f.FromEmail); err != nil {
		return fmt.Errorf("forward.from_email %q is not a valid address: %w", f.FromEmail, err)
	}
	if f.ToEmail == "" {
		return fmt.Errorf("forward.to_email is required")
	}
	if _, err := mail.ParseAddress(f.ToEmail); err != nil {
		return fmt.Errorf("forward.to_email %q is not a valid address: %w", f.ToEmail, err)
	}
	return nil
}

// S3Config represents the configuration for the S3 message store
type S3Config struct {
	Bucket    string
	KeyPrefix string
	Region    string
}

// SESConfig represents the configuration for the SES sender
type SESConfig struct {
	Region          string
	AccessKeyID     string
	SecretAccessKey string
}

// SMTPConfig represents the configuration for the SMTP trigger
type SMTPConfig struct {
	ListenAddress   string
	Domain          string
	MaxMessageBytes int64
}

// TriggerConfig selects how forwarding gets invoked
type TriggerConfig struct {
	Type              string
	DropOnVerdictFail bool
}

// GetForward returns the forwarding configuration
func (c *Config) GetForward() ForwardConfig {
	return ForwardConfig{
		FromEmail:     c.GetString("forward.from_email"),
		ToEmail:       c.GetString("forward.to_email"),
		Blacklist:     c.GetBlacklist(),
		SubjectPrefix: c.GetString("forward.subject_prefix"),
	}
}

// GetBlacklist returns the blacklist entries. Entries may arrive as a
// list or as one comma-separated string from the environment; both
// forms are accepted.
func (c *Config) GetBlacklist() []string {
	var entries []string
	for _, raw := range c.GetStringSlice("forward.blacklist") {
		for _, entry := range strings.Split(raw, ",") {
			entry = strings.TrimSpace(entry)
			if entry != "" {
				entries = append(entries, entry)
			}
		}
	}
	return entries
}

// GetS3 returns the S3 store configuration
func (c *Config) GetS3() S3Config {
	return S3Config{
		Bucket:    c.GetString("s3.bucket"),
		KeyPrefix: c.GetString("s3.key_prefix"),
		Region:    c.GetString("s3.region"),
	}
}

// GetSES returns the SES sender configuration
func (c *Config) GetSES() SESConfig {
	return SESConfig{
		Region:          c.GetString("ses.region"),
		AccessKeyID:     c.GetString("ses.access_key_id"),
		SecretAccessKey: c.GetString("ses.secret_access_key"),
	}
}

// GetSMTP returns the SMTP trigger configuration
func (c *Config) GetSMTP() SMTPConfig {
	return SMTPConfig{
		ListenAddress:   c.GetString("smtp.listen_address"),
		Domain:          c.GetString("smtp.domain"),
		MaxMessageBytes: c.GetInt64("smtp.max_message_bytes"),
	}
}

// GetTrigger returns the trigger configuration
func (c *Config) GetTrigger() TriggerConfig {
	return TriggerConfig{
		Type:              c.GetString("trigger.type"),
		DropOnVerdictFail: c.GetBool("trigger.drop_on_verdict_fail"),
	}
}
