package config

import (
	"errors"
	"fmt"
	"strings"

	"github.com/spf13/viper"
)

const envPrefix = "AUDIT"

// Config is the complete runtime configuration of the auditor.
type Config struct {
	Log    LogConfig    `mapstructure:"log"`
	Ingest IngestConfig `mapstructure:"ingest"`
	Filter FilterConfig `mapstructure:"filter"`
	Rules  RulesConfig  `mapstructure:"rules"`
}

// LogConfig controls the zap logger.
type LogConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"` // json or console
}

// IngestConfig describes the layout of uploaded report files.
type IngestConfig struct {
	HeaderRow int    `mapstructure:"header_row"` // 0-based index of the header row
	Encoding  string `mapstructure:"encoding"`   // auto, utf-8 or latin1
	Delimiter string `mapstructure:"delimiter"`
}

// FilterConfig holds the default state of the pre-filter switches.
type FilterConfig struct {
	ExcludeEmployeeZones   bool `mapstructure:"exclude_employee_zones"`
	ExcludeOffersWarehouse bool `mapstructure:"exclude_offers_warehouse"`
}

// ClientCeiling is a negotiated ceiling for a single requester code.
type ClientCeiling struct {
	Code    string  `mapstructure:"code"`
	Ceiling float64 `mapstructure:"ceiling"`
}

// RulesConfig holds the business constants behind the discount rules.
type RulesConfig struct {
	EmployeeZone               string        `mapstructure:"employee_zone"`
	PhysicianZone              string        `mapstructure:"physician_zone"`
	EmployeeCeiling            float64       `mapstructure:"employee_ceiling"`
	PermittedEmployeeWarehouse int           `mapstructure:"permitted_employee_warehouse"`
	OffersWarehouse            int           `mapstructure:"offers_warehouse"`
	ControlledCodes            []string      `mapstructure:"controlled_codes"`
	ControlledCeiling          float64       `mapstructure:"controlled_ceiling"`
	IntercompanyA              ClientCeiling `mapstructure:"intercompany_a"`
	IntercompanyB              ClientCeiling `mapstructure:"intercompany_b"`
	Brands                     []string      `mapstructure:"brands"`
	BrandCeiling               float64       `mapstructure:"brand_ceiling"`
	GeneralCeiling             float64       `mapstructure:"general_ceiling"`
}

// DefaultControlledCodes lists the products capped at the controlled ceiling.
var DefaultControlledCodes = []string{
	"3000113", "3000114", "3000080", "3000082", "3000083", "3000084", "3000085",
	"3000098", "3001265", "3001266", "3001267", "3001894", "3001896", "3002906",
	"3003648", "3004041", "3003870", "3004072", "5000002", "3004071", "3003953",
	"3003955", "3003952", "3004074", "3004073", "3003773", "3003775", "3004756",
}

// Default returns the configuration used when no file or environment overrides are given.
func Default() *Config {
	return &Config{
		Log: LogConfig{Level: "info", Format: "json"},
		Ingest: IngestConfig{
			HeaderRow: 1,
			Encoding:  "auto",
			Delimiter: ",",
		},
		Filter: FilterConfig{
			ExcludeEmployeeZones:   true,
			ExcludeOffersWarehouse: true,
		},
		Rules: RulesConfig{
			EmployeeZone:               "EMPLEADOS LQF",
			PhysicianZone:              "MEDICOS PARTICULARES",
			EmployeeCeiling:            0,
			PermittedEmployeeWarehouse: 1041,
			OffersWarehouse:            1012,
			ControlledCodes:            append([]string(nil), DefaultControlledCodes...),
			ControlledCeiling:          5,
			IntercompanyA:              ClientCeiling{Code: "200046", Ceiling: 11},
			IntercompanyB:              ClientCeiling{Code: "200173", Ceiling: 10},
			Brands:                     []string{"NUTRICIA", "BEBELAC"},
			BrandCeiling:               6,
			GeneralCeiling:             7,
		},
	}
}

// Load reads the configuration from configPath (optional) and AUDIT_* environment variables.
func Load(configPath string) (*Config, error) {
	v := viper.New()
	setDefaults(v, Default())

	v.SetEnvPrefix(envPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if configPath != "" {
		v.SetConfigFile(configPath)
		if err := v.ReadInConfig(); err != nil {
			return nil, fmt.Errorf("read config failed: %w", err)
		}
	}

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config failed: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, err
	}

	return &cfg, nil
}

func setDefaults(v *viper.Viper, d *Config) {
	v.SetDefault("log.level", d.Log.Level)
	v.SetDefault("log.format", d.Log.Format)

	v.SetDefault("ingest.header_row", d.Ingest.HeaderRow)
	v.SetDefault("ingest.encoding", d.Ingest.Encoding)
	v.SetDefault("ingest.delimiter", d.Ingest.Delimiter)

	v.SetDefault("filter.exclude_employee_zones", d.Filter.ExcludeEmployeeZones)
	v.SetDefault("filter.exclude_offers_warehouse", d.Filter.ExcludeOffersWarehouse)

	r := d.Rules
	v.SetDefault("rules.employee_zone", r.EmployeeZone)
	v.SetDefault("rules.physician_zone", r.PhysicianZone)
	v.SetDefault("rules.employee_ceiling", r.EmployeeCeiling)
	v.SetDefault("rules.permitted_employee_warehouse", r.PermittedEmployeeWarehouse)
	v.SetDefault("rules.offers_warehouse", r.OffersWarehouse)
	v.SetDefault("rules.controlled_codes", r.ControlledCodes)
	v.SetDefault("rules.controlled_ceiling", r.ControlledCeiling)
	v.SetDefault("rules.intercompany_a.code", r.IntercompanyA.Code)
	v.SetDefault("rules.intercompany_a.ceiling", r.IntercompanyA.Ceiling)
	v.SetDefault("rules.intercompany_b.code", r.IntercompanyB.Code)
	v.SetDefault("rules.intercompany_b.ceiling", r.IntercompanyB.Ceiling)
	v.SetDefault("rules.brands", r.Brands)
	v.SetDefault("rules.brand_ceiling", r.BrandCeiling)
	v.SetDefault("rules.general_ceiling", r.GeneralCeiling)
}

// Validate checks the configuration for values the auditor cannot work with.
func (c *Config) Validate() error {
	var errs []error

	switch c.Ingest.Encoding {
	case "auto", "utf-8", "latin1":
	default:
		errs = append(errs, fmt.Errorf("ingest.encoding %q must be one of auto, utf-8, latin1", c.Ingest.Encoding))
	}
	if c.Ingest.HeaderRow < 0 {
		errs = append(errs, errors.New("ingest.header_row must not be negative"))
	}
	if len([]rune(c.Ingest.Delimiter)) != 1 {
		errs = append(errs, fmt.Errorf("ingest.delimiter %q must be a single character", c.Ingest.Delimiter))
	}

	r := c.Rules
	if r.EmployeeZone == "" || r.PhysicianZone == "" {
		errs = append(errs, errors.New("rules.employee_zone and rules.physician_zone are required"))
	}
	if r.IntercompanyA.Code == "" || r.IntercompanyB.Code == "" {
		errs = append(errs, errors.New("rules.intercompany_a.code and rules.intercompany_b.code are required"))
	}
	if len(r.ControlledCodes) == 0 {
		errs = append(errs, errors.New("rules.controlled_codes must not be empty"))
	}
	if len(r.Brands) == 0 {
		errs = append(errs, errors.New("rules.brands must not be empty"))
	}
	ceilings := []struct {
		key   string
		value float64
	}{
		{"rules.employee_ceiling", r.EmployeeCeiling},
		{"rules.controlled_ceiling", r.ControlledCeiling},
		{"rules.intercompany_a.ceiling", r.IntercompanyA.Ceiling},
		{"rules.intercompany_b.ceiling", r.IntercompanyB.Ceiling},
		{"rules.brand_ceiling", r.BrandCeiling},
		{"rules.general_ceiling", r.GeneralCeiling},
	}
	for _, ceiling := range ceilings {
		if ceiling.value < 0 {
			errs = append(errs, fmt.Errorf("%s must not be negative", ceiling.key))
		}
	}

	return errors.Join(errs...)
}
