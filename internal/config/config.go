package config

import (
	"fmt"
	"strings"
	"unicode/utf8"

	"github.com/spf13/viper"

	"github.com/liliang-cn/finsight/internal/analysis"
)

// Config holds all configuration for finsight
type Config struct {
	Server   ServerConfig   `mapstructure:"server"`
	Admin    AdminConfig    `mapstructure:"admin"`
	Database DatabaseConfig `mapstructure:"database"`
	Upload   UploadConfig   `mapstructure:"upload"`
	LLM      LLMConfig      `mapstructure:"llm"`
	Analysis AnalysisConfig `mapstructure:"analysis"`
}

// ServerConfig holds server configuration
type ServerConfig struct {
	Host         string   `mapstructure:"host"`
	Port         int      `mapstructure:"port"`
	AllowOrigins []string `mapstructure:"allow_origins"`
}

// AdminConfig holds API authentication configuration
type AdminConfig struct {
	APIKey string `mapstructure:"api_key"`
}

// DatabaseConfig holds the conversation log database configuration.
// The default in-memory database does not survive a restart.
type DatabaseConfig struct {
	Path string `mapstructure:"path"`
}

// UploadConfig limits accepted statement files
type UploadConfig struct {
	MaxBytes int64 `mapstructure:"max_bytes"`
}

// LLMConfig holds Gemini configuration
type LLMConfig struct {
	Model     string `mapstructure:"model"`
	APIKey    string `mapstructure:"api_key"`
	SecretKey string `mapstructure:"secret_key"` // name of the secret holding the API key
	EnvFile   string `mapstructure:"env_file"`
}

// AnalysisConfig holds the line-item labels and number locale
type AnalysisConfig struct {
	Labels             analysis.Labels `mapstructure:"labels"`
	DecimalSeparator   string          `mapstructure:"decimal_separator"`
	ThousandsSeparator string          `mapstructure:"thousands_separator"`
}

// NumberFormat converts the configured separators
func (a AnalysisConfig) NumberFormat() analysis.NumberFormat {
	f := analysis.DefaultNumberFormat()
	if r, _ := utf8.DecodeRuneInString(a.DecimalSeparator); r != utf8.RuneError {
		f.Decimal = r
	}
	switch a.ThousandsSeparator {
	case "":
		// keep default
	case "none":
		f.Thousands = 0
	default:
		r, _ := utf8.DecodeRuneInString(a.ThousandsSeparator)
		f.Thousands = r
	}
	return f
}

// Load loads configuration from file and environment
func Load(configPath string) (*Config, error) {
	v := viper.New()

	// Set defaults
	setDefaults(v)

	// Read config file if specified
	if configPath != "" {
		v.SetConfigFile(configPath)
	} else {
		v.SetConfigName("config")
		v.SetConfigType("yaml")
		v.AddConfigPath(".")
		v.AddConfigPath("./config")
	}

	// Environment variables, e.g. FINSIGHT_LLM_MODEL
	v.SetEnvPrefix("FINSIGHT")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	// Read config
	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config: %w", err)
		}
		// Config file not found, use defaults
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to unmarshal config: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper) {
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.allow_origins", []string{"*"})

	v.SetDefault("admin.api_key", "")

	v.SetDefault("database.path", ":memory:")

	v.SetDefault("upload.max_bytes", 10<<20)

	v.SetDefault("llm.model", "gemini-2.5-flash")
	v.SetDefault("llm.api_key", "")
	v.SetDefault("llm.secret_key", "GEMINI_API_KEY")
	v.SetDefault("llm.env_file", ".env")

	labels := analysis.DefaultLabels()
	v.SetDefault("analysis.labels.total_assets", labels.TotalAssets)
	v.SetDefault("analysis.labels.current_assets", labels.CurrentAssets)
	v.SetDefault("analysis.labels.current_liabilities", labels.CurrentLiabilities)
	v.SetDefault("analysis.decimal_separator", ".")
	v.SetDefault("analysis.thousands_separator", ",")
}

// Validate checks settings that would otherwise fail at request time
func (c *Config) Validate() error {
	if c.Server.Port <= 0 || c.Server.Port > 65535 {
		return fmt.Errorf("invalid server port: %d", c.Server.Port)
	}
	if c.LLM.Model == "" {
		return fmt.Errorf("llm.model must not be empty")
	}
	if utf8.RuneCountInString(c.Analysis.DecimalSeparator) > 1 {
		return fmt.Errorf("analysis.decimal_separator must be a single character")
	}
	if c.Analysis.ThousandsSeparator != "none" && utf8.RuneCountInString(c.Analysis.ThousandsSeparator) > 1 {
		return fmt.Errorf("analysis.thousands_separator must be a single character or \"none\"")
	}
	if c.Analysis.DecimalSeparator != "" && c.Analysis.DecimalSeparator == c.Analysis.ThousandsSeparator {
		return fmt.Errorf("decimal and thousands separators must differ")
	}
	return nil
}

// Address returns the server address
func (c *Config) Address() string {
	return fmt.Sprintf("%s:%d", c.Server.Host, c.Server.Port)
}
