package config

import (
	"fmt"
	"strings"

	"github.com/paulmach/orb"
	"github.com/spf13/viper"
)

// Config holds all scanner configuration.
type Config struct {
	Google GoogleConfig `mapstructure:"google"`
	Denue  DenueConfig  `mapstructure:"denue"`
	Area   AreaConfig   `mapstructure:"area"`
	Scan   ScanConfig   `mapstructure:"scan"`
	Output OutputConfig `mapstructure:"output"`
}

type GoogleConfig struct {
	APIKey            string `mapstructure:"api_key"`
	MaxResults        int    `mapstructure:"max_results"`
	RequestsPerSecond int    `mapstructure:"requests_per_second"`
}

type DenueConfig struct {
	Token             string `mapstructure:"token"`
	RequestsPerSecond int    `mapstructure:"requests_per_second"`
}

// AreaConfig describes the metro bounding box and grid geometry.
type AreaConfig struct {
	LatMin       float64 `mapstructure:"lat_min"`
	LngMin       float64 `mapstructure:"lng_min"`
	LatMax       float64 `mapstructure:"lat_max"`
	LngMax       float64 `mapstructure:"lng_max"`
	GridStepDeg  float64 `mapstructure:"grid_step_deg"`
	RadiusMeters int     `mapstructure:"radius_meters"`
}

// Bound returns the area as an orb bounding box ([lng, lat] point order).
func (a AreaConfig) Bound() orb.Bound {
	return orb.Bound{
		Min: orb.Point{a.LngMin, a.LatMin},
		Max: orb.Point{a.LngMax, a.LatMax},
	}
}

type ScanConfig struct {
	BatchSize        int `mapstructure:"batch_size"`
	ZoneDelayMS      int `mapstructure:"zone_delay_ms"`
	RequestTimeoutS  int `mapstructure:"request_timeout_s"`
	CacheTTLMinutes  int `mapstructure:"cache_ttl_minutes"`
	CacheMaxEntries  int `mapstructure:"cache_max_entries"`
}

type OutputConfig struct {
	Dir string `mapstructure:"dir"`
}

// Load reads configuration from an optional config.yaml plus POISCAN_* env
// vars. Defaults cover the Mexico City metro area.
func Load() (*Config, error) {
	v := viper.New()

	// Credentials default empty so AutomaticEnv can see the keys.
	v.SetDefault("google.api_key", "")
	v.SetDefault("denue.token", "")
	v.SetDefault("google.max_results", 20)
	v.SetDefault("google.requests_per_second", 5)
	v.SetDefault("denue.requests_per_second", 5)
	v.SetDefault("area.lat_min", 19.04)
	v.SetDefault("area.lng_min", -99.36)
	v.SetDefault("area.lat_max", 19.60)
	v.SetDefault("area.lng_max", -98.94)
	v.SetDefault("area.grid_step_deg", 0.05)
	v.SetDefault("area.radius_meters", 3000)
	v.SetDefault("scan.batch_size", 3)
	v.SetDefault("scan.zone_delay_ms", 150)
	v.SetDefault("scan.request_timeout_s", 15)
	v.SetDefault("scan.cache_ttl_minutes", 1440)
	v.SetDefault("scan.cache_max_entries", 4096)
	v.SetDefault("output.dir", "./datasets")

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath(".")
	v.AddConfigPath("./configs")
	_ = v.ReadInConfig() // OK if missing

	// POISCAN_GOOGLE_API_KEY → google.api_key
	v.SetEnvPrefix("POISCAN")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	var cfg Config
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("unmarshal config: %w", err)
	}
	if err := cfg.Validate(); err != nil {
		return nil, err
	}
	return &cfg, nil
}

// Validate checks the geometry and pacing knobs. Credentials are checked
// separately per source because only the sources a run touches need them.
func (c *Config) Validate() error {
	var errs []string

	if c.Area.LatMin >= c.Area.LatMax {
		errs = append(errs, fmt.Sprintf("area.lat_min (%v) must be below area.lat_max (%v)", c.Area.LatMin, c.Area.LatMax))
	}
	if c.Area.LngMin >= c.Area.LngMax {
		errs = append(errs, fmt.Sprintf("area.lng_min (%v) must be below area.lng_max (%v)", c.Area.LngMin, c.Area.LngMax))
	}
	if c.Area.GridStepDeg <= 0 {
		errs = append(errs, "area.grid_step_deg must be positive")
	}
	if c.Area.RadiusMeters <= 0 {
		errs = append(errs, "area.radius_meters must be positive")
	}
	if c.Scan.BatchSize <= 0 {
		errs = append(errs, "scan.batch_size must be positive")
	}
	if c.Scan.ZoneDelayMS < 0 {
		errs = append(errs, "scan.zone_delay_ms must not be negative")
	}
	if c.Scan.RequestTimeoutS <= 0 {
		errs = append(errs, "scan.request_timeout_s must be positive")
	}
	if c.Output.Dir == "" {
		errs = append(errs, "output.dir is required")
	}

	if len(errs) > 0 {
		return fmt.Errorf("config validation failed:\n  - %s", strings.Join(errs, "\n  - "))
	}
	return nil
}
