package config

import (
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
	"github.com/warp/vr-engine/generic"
	"github.com/warp/vr-engine/vr"
)

// Config holds all configuration for the application
type Config struct {
	Rules    RulesConfig    `mapstructure:"rules"`
	Paths    PathsConfig    `mapstructure:"paths"`
	Server   ServerConfig   `mapstructure:"server"`
	Store    StoreConfig    `mapstructure:"store"`
	RabbitMQ RabbitMQConfig `mapstructure:"rabbitmq"`
	Logging  LoggingConfig  `mapstructure:"logging"`
}

// RulesConfig holds the consolidation rules. Shares are strings so they
// reach decimal.Decimal without a float round trip.
type RulesConfig struct {
	Rounding                string `mapstructure:"rounding" validate:"oneof=nearest floor ceil"`
	Basis                   string `mapstructure:"basis" validate:"oneof=business calendar"`
	ProportionalTermination bool   `mapstructure:"proportional_termination"`
	EmployerShare           string `mapstructure:"employer_share" validate:"required,numeric"`
	EmployeeShare           string `mapstructure:"employee_share" validate:"required,numeric"`
	PeriodLabel             string `mapstructure:"period_label"`
}

// PathsConfig holds input and output locations
type PathsConfig struct {
	InputDir      string `mapstructure:"input_dir" validate:"required"`
	OutputDir     string `mapstructure:"output_dir" validate:"required"`
	TechnicalFile string `mapstructure:"technical_file" validate:"required"`
	ExportFile    string `mapstructure:"export_file" validate:"required"`
	LayoutFile    string `mapstructure:"layout_file"`
}

// ServerConfig holds server-specific configuration
type ServerConfig struct {
	Port         int           `mapstructure:"port" validate:"min=1,max=65535"`
	Host         string        `mapstructure:"host"`
	ReadTimeout  time.Duration `mapstructure:"read_timeout"`
	WriteTimeout time.Duration `mapstructure:"write_timeout"`
	Environment  string        `mapstructure:"environment" validate:"oneof=development staging production test"`
}

// StoreConfig holds the run store location
type StoreConfig struct {
	Path string `mapstructure:"path" validate:"required"`
}

// RabbitMQConfig holds RabbitMQ connection configuration. An empty URL
// disables event publishing.
type RabbitMQConfig struct {
	URL      string `mapstructure:"url"`
	Exchange string `mapstructure:"exchange"`
}

// LoggingConfig holds logger settings
type LoggingConfig struct {
	Level string `mapstructure:"level" validate:"oneof=debug info warn error"`
}

// Environment names
const (
	EnvDevelopment = "development"
	EnvStaging     = "staging"
	EnvProduction  = "production"
	EnvTest        = "test"
)

var validate = validator.New()

// Load reads configuration from defaults, an optional <name>.yaml in
// ./config or /etc/vr, and VR_* environment variables, then validates it.
func Load(name string) (*Config, error) {
	v := viper.New()
	setDefaults(v)

	v.SetEnvPrefix("VR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetConfigName(name)
	v.SetConfigType("yaml")
	v.AddConfigPath("./config")
	v.AddConfigPath("/etc/vr")

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
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

// Default returns the configuration with every default applied and no
// file or environment overrides.
func Default() *Config {
	v := viper.New()
	setDefaults(v)
	var cfg Config
	_ = v.Unmarshal(&cfg)
	return &cfg
}

func setDefaults(v *viper.Viper) {
	// Rules defaults
	v.SetDefault("rules.rounding", string(generic.RoundNearest))
	v.SetDefault("rules.basis", string(generic.BasisBusiness))
	v.SetDefault("rules.proportional_termination", true)
	v.SetDefault("rules.employer_share", "0.80")
	v.SetDefault("rules.employee_share", "0.20")
	v.SetDefault("rules.period_label", "")

	// Paths defaults
	v.SetDefault("paths.input_dir", "./data/FORM_OK")
	v.SetDefault("paths.output_dir", "./data/OUT")
	v.SetDefault("paths.technical_file", "VR_MENSAL_RESULT.csv")
	v.SetDefault("paths.export_file", "VR_MENSAL_LAYOUT.csv")
	v.SetDefault("paths.layout_file", "")

	// Server defaults
	v.SetDefault("server.port", 8080)
	v.SetDefault("server.host", "0.0.0.0")
	v.SetDefault("server.read_timeout", 30*time.Second)
	v.SetDefault("server.write_timeout", 60*time.Second)
	v.SetDefault("server.environment", EnvDevelopment)

	// Store defaults
	v.SetDefault("store.path", "./vr.db")

	// RabbitMQ defaults
	v.SetDefault("rabbitmq.url", "")
	v.SetDefault("rabbitmq.exchange", "vr.events")

	// Logging defaults
	v.SetDefault("logging.level", "info")
}

// Validate checks every section. Any failure unwraps to
// generic.ErrInvalidConfiguration and names the first bad field.
func (c *Config) Validate() error {
	if err := validate.Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return &generic.ConfigError{
				Field: e.Namespace(),
				Value: fmt.Sprint(e.Value()),
				Hint:  formatValidationError(e),
			}
		}
		return fmt.Errorf("%w: %v", generic.ErrInvalidConfiguration, err)
	}
	_, err := c.Rules.ToRules()
	return err
}

// ToRules converts the rules section into the engine's value object.
func (r RulesConfig) ToRules() (vr.Rules, error) {
	employer, err := decimal.NewFromString(r.EmployerShare)
	if err != nil {
		return vr.Rules{}, &generic.ConfigError{Field: "rules.employer_share", Value: r.EmployerShare, Hint: "must be a decimal"}
	}
	employee, err := decimal.NewFromString(r.EmployeeShare)
	if err != nil {
		return vr.Rules{}, &generic.ConfigError{Field: "rules.employee_share", Value: r.EmployeeShare, Hint: "must be a decimal"}
	}

	rules := vr.Rules{
		Rounding:                generic.RoundingMode(r.Rounding),
		Basis:                   generic.DayBasis(r.Basis),
		ProportionalTermination: r.ProportionalTermination,
		EmployerPct:             employer,
		EmployeePct:             employee,
		PeriodLabel:             r.PeriodLabel,
	}
	if err := rules.Validate(); err != nil {
		return vr.Rules{}, err
	}
	return rules, nil
}

func formatValidationError(e validator.FieldError) string {
	switch e.Tag() {
	case "required":
		return "this field is required"
	case "numeric":
		return "must be a number"
	case "min":
		return "must be at least " + e.Param()
	case "max":
		return "must be at most " + e.Param()
	case "oneof":
		return "must be one of: " + e.Param()
	default:
		return "invalid value"
	}
}
