package config

import (
	"fmt"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"
)

const redacted = "********"

type Config struct {
	Log       Log       `mapstructure:"log"`
	Telemetry Telemetry `mapstructure:"telemetry"`
	Mica      Mica      `mapstructure:"mica"`
	DataCite  DataCite  `mapstructure:"datacite"`
	Extract   Extract   `mapstructure:"extract"`
	DOI       DOI       `mapstructure:"doi"`
}

type Log struct {
	Level string `mapstructure:"level" validate:"required,oneof=debug info warn error"`
	Dir   string `mapstructure:"dir"`
}

type Telemetry struct {
	Enabled     bool              `mapstructure:"enabled"`
	Exporter    string            `mapstructure:"exporter"     validate:"oneof=otlp stdout"`
	Endpoint    string            `mapstructure:"endpoint"`
	Protocol    string            `mapstructure:"protocol"     validate:"oneof=grpc http"`
	Insecure    bool              `mapstructure:"insecure"`
	Headers     map[string]string `mapstructure:"headers"`
	ServiceName string            `mapstructure:"service_name" validate:"required"`
}

// Mica credentials may be left empty here and prompted for at run time.
type Mica struct {
	Host     string        `mapstructure:"host"     validate:"omitempty,url"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Locale   string        `mapstructure:"locale"   validate:"required"`
	Timeout  time.Duration `mapstructure:"timeout"  validate:"required,gt=0"`
}

type DataCite struct {
	Host     string        `mapstructure:"host"     validate:"required,url"`
	Username string        `mapstructure:"username"`
	Password string        `mapstructure:"password"`
	Timeout  time.Duration `mapstructure:"timeout"  validate:"required,gt=0"`
}

type Extract struct {
	Output       string `mapstructure:"output"`
	VariablesCSV string `mapstructure:"variables_csv"`
	Progress     bool   `mapstructure:"progress"`
}

type DOI struct {
	Config string `mapstructure:"config"  validate:"required"`
	DryRun bool   `mapstructure:"dry_run"`
}

var defaults = map[string]any{
	"log.level":              "info",
	"log.dir":                "",
	"telemetry.enabled":      false,
	"telemetry.exporter":     "otlp",
	"telemetry.endpoint":     "localhost:4317",
	"telemetry.protocol":     "grpc",
	"telemetry.insecure":     true,
	"telemetry.service_name": "mica-doi",
	"mica.host":              "",
	"mica.username":          "",
	"mica.password":          "",
	"mica.locale":            "en",
	"mica.timeout":           30 * time.Second,
	"datacite.host":          "https://api.test.datacite.org",
	"datacite.username":      "",
	"datacite.password":      "",
	"datacite.timeout":       30 * time.Second,
	"extract.output":         "",
	"extract.variables_csv":  "",
	"extract.progress":       false,
	"doi.config":             "doi.json",
	"doi.dry_run":            false,
}

// FlagName is the command line flag bound to a configuration key, e.g.
// "mica.host" is set by --mica-host.
func FlagName(key string) string {
	return strings.NewReplacer(".", "-", "_", "-").Replace(key)
}

// Load merges, from lowest to highest precedence, defaults, the config file,
// MICADOI_ environment variables and the flags in flags that were set.
func Load(cfgFile string, flags *pflag.FlagSet) (Config, error) {
	v := viper.New()
	v.AutomaticEnv()
	v.SetEnvPrefix("MICADOI")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))

	// Flexible file loading
	if cfgFile != "" {
		v.SetConfigFile(cfgFile)
	} else {
		v.SetConfigName("config")
		v.AddConfigPath(".")
		v.AddConfigPath("$HOME/.mica-doi")
		v.AddConfigPath("/etc/mica-doi")
		v.SetConfigType("yaml")
	}

	for key, value := range defaults {
		v.SetDefault(key, value)
		if flags == nil {
			continue
		}
		if f := flags.Lookup(FlagName(key)); f != nil {
			if err := v.BindPFlag(key, f); err != nil {
				return Config{}, fmt.Errorf("bind flag %s: %w", f.Name, err)
			}
		}
	}

	err := v.ReadInConfig()
	if err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return Config{}, fmt.Errorf("config read error: %w", err)
		}
		// Not found is ok, use defaults/env
	}

	var cfg Config
	if err := v.UnmarshalExact(&cfg); err != nil {
		return Config{}, fmt.Errorf("unmarshal error: %w", err)
	}

	validate := validator.New()
	if err := validate.Struct(&cfg); err != nil {
		return Config{}, fmt.Errorf("validation failed: %w", err)
	}
	if cfg.Telemetry.Enabled && cfg.Telemetry.Exporter == "otlp" && cfg.Telemetry.Endpoint == "" {
		return Config{}, fmt.Errorf("telemetry.endpoint is required when using otlp exporter")
	}
	return cfg, nil
}

// Redacted returns a copy safe to print: passwords and telemetry headers are
// masked.
func (c Config) Redacted() Config {
	mask := func(s string) string {
		if s == "" {
			return ""
		}
		return redacted
	}
	c.Mica.Password = mask(c.Mica.Password)
	c.DataCite.Password = mask(c.DataCite.Password)
	if len(c.Telemetry.Headers) > 0 {
		headers := make(map[string]string, len(c.Telemetry.Headers))
		for k := range c.Telemetry.Headers {
			headers[k] = redacted
		}
		c.Telemetry.Headers = headers
	}
	return c
}
