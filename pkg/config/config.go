package config

import (
	"errors"
	"fmt"
	"os"
	"strings"
	"time"

	"github.com/creasty/defaults"
	"github.com/go-playground/validator/v10"
	"gopkg.in/yaml.v3"

	"HydroPull/pkg/util"
)

type Config struct {
	Environment string `yaml:"environment" default:"production"`
	Server      struct {
		Enabled         bool          `yaml:"enabled" default:"false"`
		Port            int           `yaml:"port" default:"8080" validate:"gt=0,lte=65535"`
		ReadTimeout     time.Duration `yaml:"read_timeout" default:"10s"`
		WriteTimeout    time.Duration `yaml:"write_timeout" default:"30s"`
		ShutdownTimeout time.Duration `yaml:"shutdown_timeout" default:"10s"`
	} `yaml:"server"`
	Metrics struct {
		Enabled bool   `yaml:"enabled" default:"true"`
		Path    string `yaml:"path" default:"/metrics"`
	} `yaml:"metrics"`
	API struct {
		MetamodelURL string        `yaml:"metamodel_url" validate:"required,url"`
		BalanceURL   string        `yaml:"balance_url" validate:"required,url"`
		WellsURL     string        `yaml:"wells_url" validate:"required,url"`
		ForecastURL  string        `yaml:"forecast_url" validate:"required,url"`
		Timeout      time.Duration `yaml:"timeout" default:"30s"`
	} `yaml:"api"`
	Output struct {
		Dir         string   `yaml:"dir" default:"outputs"`
		Width       int      `yaml:"width" default:"1400" validate:"gt=0"`
		Height      int      `yaml:"height" default:"500" validate:"gt=0"`
		SampleWells []string `yaml:"sample_wells"`
	} `yaml:"output"`
	Fetch struct {
		Workers   int           `yaml:"workers" default:"4" validate:"gte=1,lte=64"`
		CacheTTL  time.Duration `yaml:"cache_ttl" default:"10m"`
		RateLimit float64       `yaml:"rate_limit" default:"10" validate:"gte=0"`
	} `yaml:"fetch"`
	Cache struct {
		Redis struct {
			Enabled  bool   `yaml:"enabled" default:"false"`
			Host     string `yaml:"host" default:"localhost"`
			Port     int    `yaml:"port" default:"6379"`
			Password string `yaml:"password"`
			DB       int    `yaml:"db" default:"0"`
		} `yaml:"redis"`
	} `yaml:"cache"`
	Log struct {
		Level  string `yaml:"level" default:"info" validate:"oneof=trace debug info warn error fatal panic"`
		Format string `yaml:"format" default:"console" validate:"oneof=json console"`
		Output string `yaml:"output" default:"stdout"`
	} `yaml:"log"`
}

// Load reads and parses a YAML configuration file.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read config: %w", err)
	}

	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("parse config: %w", err)
	}

	if err := defaults.Set(&c); err != nil {
		return nil, fmt.Errorf("apply defaults: %w", err)
	}

	if err := c.Validate(); err != nil {
		return nil, fmt.Errorf("validate config: %w", err)
	}

	return &c, nil
}

// LoadWithEnv loads config from YAML and overrides with environment variables.
func LoadWithEnv(path string) (*Config, error) {
	c, err := Load(path)
	if err != nil {
		return nil, err
	}

	if v := os.Getenv("HYDROMET_METAMODEL_URL"); v != "" {
		c.API.MetamodelURL = v
	}
	if v := os.Getenv("HYDROMET_BALANCE_URL"); v != "" {
		c.API.BalanceURL = v
	}
	if v := os.Getenv("HYDROMET_WELLS_URL"); v != "" {
		c.API.WellsURL = v
	}
	if v := os.Getenv("HYDROMET_FORECAST_URL"); v != "" {
		c.API.ForecastURL = v
	}
	if v := os.Getenv("OUTPUT_DIR"); v != "" {
		c.Output.Dir = v
	}
	if v := os.Getenv("SAMPLE_WELLS"); v != "" {
		c.Output.SampleWells = strings.Split(v, ",")
	}
	if v := os.Getenv("REDIS_ADDR"); v != "" {
		host, port, ok := strings.Cut(v, ":")
		if ok {
			c.Cache.Redis.Host = host
			c.Cache.Redis.Port = util.ParseIntDefault(port, c.Cache.Redis.Port)
		} else {
			c.Cache.Redis.Host = v
		}
	}

	return c, nil
}

// Validate checks if the configuration is valid.
func (c *Config) Validate() error {
	if err := validator.New().Struct(c); err != nil {
		var verrs validator.ValidationErrors
		if errors.As(err, &verrs) && len(verrs) > 0 {
			e := verrs[0]
			return fmt.Errorf("field %s failed rule %q", e.Namespace(), e.Tag())
		}
		return err
	}
	if c.Output.Dir == "" {
		return fmt.Errorf("output.dir is required")
	}
	return nil
}
