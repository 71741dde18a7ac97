package config

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"statement-distributor/internal/distributor"
	"statement-distributor/internal/mailer"
	"statement-distributor/internal/models"
	"statement-distributor/internal/notify"
	"statement-distributor/internal/reporter"
	apperrors "statement-distributor/pkg/errors"
	"statement-distributor/pkg/logger"
)

// PasswordEnv is read when smtp.password is not set in the file
const PasswordEnv = "SMTP_PASSWORD"

// Config is the typed run configuration
type Config struct {
	Source            string              `mapstructure:"source"`
	DatabasePath      string              `mapstructure:"database_path"`
	AccountGroupsPath string              `mapstructure:"account_groups_path"`
	OutputDir         string              `mapstructure:"output_dir"`
	SMTP              SMTPConfig          `mapstructure:"smtp"`
	EmailTemplate     TemplateConfig      `mapstructure:"email_template"`
	SummaryReport     SummaryReportConfig `mapstructure:"summary_report"`
	Logging           LoggingConfig       `mapstructure:"logging"`
	Distribution      DistributionConfig  `mapstructure:"distribution"`
	Notify            NotifyConfig        `mapstructure:"notify"`
}

type SMTPConfig struct {
	Host        string `mapstructure:"host"`
	Port        int    `mapstructure:"port"`
	UseTLS      bool   `mapstructure:"use_tls"`
	FromAddress string `mapstructure:"from_address"`
	Username    string `mapstructure:"username"`
	Password    string `mapstructure:"password"`
}

type TemplateConfig struct {
	Subject           string `mapstructure:"subject"`
	Body              string `mapstructure:"body"`
	NoActivitySubject string `mapstructure:"no_activity_subject"`
	NoActivityBody    string `mapstructure:"no_activity_body"`
}

type SummaryReportConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Recipient string `mapstructure:"recipient"`
}

type LoggingConfig struct {
	LogDir        string `mapstructure:"log_dir"`
	LogFile       string `mapstructure:"log_file"`
	RetentionDays int    `mapstructure:"retention_days"`
	LogLevel      string `mapstructure:"log_level"`
}

type DistributionConfig struct {
	SkipNoActivity bool `mapstructure:"skip_no_activity"`
}

type NotifyConfig struct {
	Enabled    bool   `mapstructure:"enabled"`
	AMQPURL    string `mapstructure:"amqp_url"`
	Exchange   string `mapstructure:"exchange"`
	RoutingKey string `mapstructure:"routing_key"`
}

// New returns a viper instance carrying the defaults
func New() *viper.Viper {
	v := viper.New()
	v.SetConfigType("json")

	v.SetDefault("source", string(models.SourceRamp))
	v.SetDefault("output_dir", "./statements")
	v.SetDefault("smtp.host", "localhost")
	v.SetDefault("smtp.port", 587)
	v.SetDefault("smtp.use_tls", true)
	v.SetDefault("summary_report.enabled", true)
	v.SetDefault("summary_report.recipient", "treasurer@apache.org")
	v.SetDefault("logging.log_dir", "./logs")
	v.SetDefault("logging.log_file", "distributor.log")
	v.SetDefault("logging.retention_days", 30)
	v.SetDefault("logging.log_level", "INFO")
	v.SetDefault("distribution.skip_no_activity", false)
	v.SetDefault("notify.enabled", false)
	v.SetDefault("notify.exchange", "statement-distributor")
	v.SetDefault("notify.routing_key", "run.completed")

	return v
}

// Load reads path into v, loading a .env file next to it first. Flags bound to v
// before the call take precedence over file values.
func Load(v *viper.Viper, path string) (*Config, error) {
	if path == "" {
		return nil, apperrors.ConfigError(apperrors.CodeMissingConfig, "config", nil, nil)
	}
	if _, err := os.Stat(path); err != nil {
		return nil, apperrors.ConfigError(apperrors.CodeMissingConfig, "config", path, err).
			WithSuggestion(fmt.Sprintf("create %s or pass --config", path))
	}

	envFile := filepath.Join(filepath.Dir(path), ".env")
	if err := godotenv.Load(envFile); err != nil && !errors.Is(err, os.ErrNotExist) {
		return nil, apperrors.ConfigError(apperrors.CodeInvalidConfig, ".env", envFile, err)
	}

	v.SetConfigFile(path)
	if err := v.ReadInConfig(); err != nil {
		return nil, apperrors.ConfigError(apperrors.CodeInvalidConfig, "config", path, err).
			WithSuggestion("the configuration file must be a valid JSON object")
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, apperrors.ConfigError(apperrors.CodeInvalidConfig, "config", path, err)
	}

	if cfg.SMTP.Password == "" {
		cfg.SMTP.Password = os.Getenv(PasswordEnv)
	}
	cfg.Source = strings.ToLower(strings.TrimSpace(cfg.Source))

	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks every setting and reports all problems in one error
func (c *Config) Validate() error {
	var problems []string

	if _, err := models.ParseSource(c.Source); err != nil {
		problems = append(problems, fmt.Sprintf("source must be 'ramp' or 'bill', got %q", c.Source))
	}
	if c.DatabasePath == "" {
		problems = append(problems, "database_path is required")
	}
	if c.AccountGroupsPath == "" {
		problems = append(problems, "account_groups_path is required")
	}
	if c.OutputDir == "" {
		problems = append(problems, "output_dir cannot be empty")
	}
	if c.SMTP.FromAddress == "" {
		problems = append(problems, "smtp.from_address is required")
	}
	if c.SMTP.Port < 1 || c.SMTP.Port > 65535 {
		problems = append(problems, fmt.Sprintf("smtp.port must be between 1 and 65535, got %d", c.SMTP.Port))
	}
	if strings.TrimSpace(c.EmailTemplate.Subject) == "" {
		problems = append(problems, "email_template.subject is required")
	}
	if strings.TrimSpace(c.EmailTemplate.Body) == "" {
		problems = append(problems, "email_template.body is required")
	}
	if c.SummaryReport.Enabled && c.SummaryReport.Recipient == "" {
		problems = append(problems, "summary_report.recipient is required when the summary is enabled")
	}
	if _, err := logger.ParseLevel(c.Logging.LogLevel); err != nil {
		problems = append(problems, fmt.Sprintf("logging.log_level: %v", err))
	}
	if c.Logging.RetentionDays < 0 {
		problems = append(problems, "logging.retention_days cannot be negative")
	}
	if c.Notify.Enabled && c.Notify.AMQPURL == "" {
		problems = append(problems, "notify.amqp_url is required when notify is enabled")
	}

	if len(problems) > 0 {
		return apperrors.ConfigError(apperrors.CodeInvalidConfig, "config", strings.Join(problems, "; "), nil)
	}
	return nil
}

// SourceKind returns the validated source
func (c *Config) SourceKind() models.Source {
	return models.Source(c.Source)
}

// LoggerConfig builds the logger configuration
func (c *Config) LoggerConfig(verbose bool) *logger.Config {
	level := c.Logging.LogLevel
	if verbose {
		level = "debug"
	}
	return &logger.Config{
		Level:         level,
		Format:        logger.TextFormat,
		Console:       true,
		Dir:           c.Logging.LogDir,
		File:          c.Logging.LogFile,
		RetentionDays: c.Logging.RetentionDays,
	}
}

// MailerConfig builds the SMTP transport configuration
func (c *Config) MailerConfig() mailer.SMTPConfig {
	return mailer.SMTPConfig{
		Host:        c.SMTP.Host,
		Port:        c.SMTP.Port,
		UseTLS:      c.SMTP.UseTLS,
		FromAddress: c.SMTP.FromAddress,
		Username:    c.SMTP.Username,
		Password:    c.SMTP.Password,
	}
}

// DistributorConfig builds the controller configuration
func (c *Config) DistributorConfig() distributor.Config {
	return distributor.Config{
		Source:    c.SourceKind(),
		OutputDir: c.OutputDir,
		Template: mailer.Template{
			Subject:           c.EmailTemplate.Subject,
			Body:              c.EmailTemplate.Body,
			NoActivitySubject: c.EmailTemplate.NoActivitySubject,
			NoActivityBody:    c.EmailTemplate.NoActivityBody,
		},
		SkipNoActivity: c.Distribution.SkipNoActivity,
	}
}

// SummaryConfig builds the summary reporter configuration
func (c *Config) SummaryConfig() reporter.SummaryConfig {
	return reporter.SummaryConfig{
		Enabled:   c.SummaryReport.Enabled,
		Recipient: c.SummaryReport.Recipient,
		Title:     c.SourceKind().Title(),
	}
}

// NotifyConfig builds the AMQP publisher configuration
func (c *Config) NotifyConfig() notify.Config {
	return notify.Config{
		URL:        c.Notify.AMQPURL,
		Exchange:   c.Notify.Exchange,
		RoutingKey: c.Notify.RoutingKey,
	}
}
