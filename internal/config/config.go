// Package config provides configuration loading for scenario assembly.
// It supports loading from YAML files and environment variables.
package config

import (
	"fmt"
	"os"
	"runtime"
	"strconv"
	"strings"

	"github.com/LdDl/multimodal"
	"github.com/LdDl/multimodal/internal/logging"
	"gopkg.in/yaml.v3"
)

// Config contains all settings of scenario assembly and mode choice.
type Config struct {
	// Inputs lists data files of every single-mode dataset.
	Inputs InputsConfig `yaml:"inputs"`

	// Threads is the number of workers for mode choice evaluation.
	Threads int `yaml:"threads"`

	// CoordinateSystem of all inputs. Geographic ones ("EPSG:4326", "WGS84") give haversine distances,
	// everything else is treated as projected meters.
	CoordinateSystem string `yaml:"coordinate_system"`

	Selector  SelectorConfig  `yaml:"selector"`
	Logging   LoggingConfig   `yaml:"logging"`
	Decisions DecisionsConfig `yaml:"decisions"`
}

// InputsConfig holds paths of input files. Empty path means 'not provided'.
type InputsConfig struct {
	RoadNetwork      string `yaml:"road_network"`
	TrainNetwork     string `yaml:"train_network"`
	TrainSchedule    string `yaml:"train_schedule"`
	TrainVehicles    string `yaml:"train_vehicles"`
	AirplaneNetwork  string `yaml:"airplane_network"`
	AirplaneSchedule string `yaml:"airplane_schedule"`
	AirplaneVehicles string `yaml:"airplane_vehicles"`
	Population       string `yaml:"population"`
}

// SelectorConfig configures the train/airplane decision.
type SelectorConfig struct {
	// ThresholdKm splits trips: longer ones go by airplane, the rest by train.
	ThresholdKm float64 `yaml:"threshold_km"`

	// DefaultMode is used when trip context is insufficient: "train" or "airplane".
	DefaultMode string `yaml:"default_mode"`

	// MaterialChangeRatio is the relative distance change which invalidates cached decision.
	MaterialChangeRatio float64 `yaml:"material_change_ratio"`

	AccessEgress     AccessEgressConfig `yaml:"access_egress"`
	AirplaneConstant float64            `yaml:"airplane_constant"`
}

// AccessEgressConfig configures the mode used to reach and leave long-distance stops.
type AccessEgressConfig struct {
	Mode                    string  `yaml:"mode"`
	MaxRadiusKm             float64 `yaml:"max_radius_km"`
	InitialSearchRadiusKm   float64 `yaml:"initial_search_radius_km"`
	SearchExtensionRadiusKm float64 `yaml:"search_extension_radius_km"`
}

// LoggingConfig configures logging behavior.
type LoggingConfig struct {
	// Level sets the log verbosity: "trace", "debug", "info" (default), "warn" or "error".
	// "debug" enables decision tracing to decisions.jsonl.
	Level string `yaml:"level"`

	// Dir is the directory of decision traces.
	Dir string `yaml:"dir"`
}

// DecisionsConfig configures persistence of selector decisions.
type DecisionsConfig struct {
	// DatabasePath of SQLite file. Empty disables persistence.
	DatabasePath string `yaml:"database_path"`
}

// Default returns a Config with sensible defaults.
func Default() *Config {
	return &Config{
		Threads:          runtime.NumCPU(),
		CoordinateSystem: "EPSG:4326",
		Selector: SelectorConfig{
			ThresholdKm:         300,
			DefaultMode:         "train",
			MaterialChangeRatio: 0.25,
			AccessEgress: AccessEgressConfig{
				Mode:                    "car",
				MaxRadiusKm:             500,
				InitialSearchRadiusKm:   100,
				SearchExtensionRadiusKm: 150,
			},
			AirplaneConstant: -12,
		},
		Logging: LoggingConfig{
			Level: "info",
			Dir:   ".multimodal",
		},
	}
}

// Load loads configuration from the given file (if any) and environment variables.
// Order: defaults -> file -> environment variables
func Load(path string) (*Config, error) {
	config := Default()
	if path != "" {
		fileConfig, err := LoadFromFile(path)
		if err != nil {
			return nil, fmt.Errorf("loading config file: %w", err)
		}
		config = fileConfig
	}
	applyEnvOverrides(config)
	return config, nil
}

// LoadFromFile loads configuration from a specific YAML file.
// Paths of inputs support ${VAR} syntax.
func LoadFromFile(path string) (*Config, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("reading config file: %w", err)
	}

	config := Default()
	if err := yaml.Unmarshal(data, config); err != nil {
		return nil, fmt.Errorf("parsing config file: %w", err)
	}

	inputs := &config.Inputs
	for _, p := range []*string{
		&inputs.RoadNetwork, &inputs.TrainNetwork, &inputs.TrainSchedule, &inputs.TrainVehicles,
		&inputs.AirplaneNetwork, &inputs.AirplaneSchedule, &inputs.AirplaneVehicles, &inputs.Population,
		&config.Decisions.DatabasePath,
	} {
		*p = expandEnvVars(*p)
	}
	return config, nil
}

// Validate checks that the configuration is valid.
func (c *Config) Validate() error {
	if c.Threads < 1 {
		return fmt.Errorf("threads must be positive, got %d", c.Threads)
	}
	if c.Selector.ThresholdKm <= 0 {
		return fmt.Errorf("threshold_km must be positive, got %f", c.Selector.ThresholdKm)
	}
	if c.Selector.MaterialChangeRatio < 0 {
		return fmt.Errorf("material_change_ratio must be non-negative, got %f", c.Selector.MaterialChangeRatio)
	}

	validDefaultModes := map[string]bool{"train": true, "airplane": true}
	if !validDefaultModes[c.Selector.DefaultMode] {
		return fmt.Errorf("invalid default_mode: %s (valid: train, airplane)", c.Selector.DefaultMode)
	}

	ae := c.Selector.AccessEgress
	if _, err := multimodal.ParseTransportMode(ae.Mode); err != nil {
		return fmt.Errorf("invalid access_egress mode: %s", ae.Mode)
	}
	if ae.MaxRadiusKm < ae.InitialSearchRadiusKm {
		return fmt.Errorf("access_egress max_radius_km (%f) must not be less than initial_search_radius_km (%f)", ae.MaxRadiusKm, ae.InitialSearchRadiusKm)
	}

	if _, err := logging.ParseLevel(c.Logging.Level); err != nil {
		return fmt.Errorf("invalid log level: %s (valid: trace, debug, info, warn, error, or empty for default)", c.Logging.Level)
	}

	if c.Inputs.RoadNetwork == "" {
		return fmt.Errorf("inputs.road_network is required")
	}
	return nil
}

// SelectorConfig converts settings into mode choice selector policy.
func (c *Config) SelectorConfig() multimodal.SelectorConfig {
	cfg := multimodal.DefaultSelectorConfig()
	cfg.DistanceThresholdMeters = c.Selector.ThresholdKm * 1000
	if mode, err := multimodal.ParseTransportMode(c.Selector.DefaultMode); err == nil {
		cfg.DefaultMode = mode
	}
	cfg.MaterialChangeRatio = c.Selector.MaterialChangeRatio
	cfg.Metric = multimodal.MetricForCRS(c.CoordinateSystem)
	if mode, err := multimodal.ParseTransportMode(c.Selector.AccessEgress.Mode); err == nil {
		cfg.AccessEgress = []multimodal.IntermodalAccessEgress{{
			Mode:                        mode,
			MaxRadiusMeters:             c.Selector.AccessEgress.MaxRadiusKm * 1000,
			InitialSearchRadiusMeters:   c.Selector.AccessEgress.InitialSearchRadiusKm * 1000,
			SearchExtensionRadiusMeters: c.Selector.AccessEgress.SearchExtensionRadiusKm * 1000,
		}}
	}
	cfg.ModeConstants[multimodal.MODE_AIRPLANE] = c.Selector.AirplaneConstant
	return cfg
}

// applyEnvOverrides applies environment variable overrides to the config.
func applyEnvOverrides(config *Config) {
	envPaths := map[string]*string{
		"MULTIMODAL_ROAD_NETWORK":      &config.Inputs.RoadNetwork,
		"MULTIMODAL_TRAIN_NETWORK":     &config.Inputs.TrainNetwork,
		"MULTIMODAL_TRAIN_SCHEDULE":    &config.Inputs.TrainSchedule,
		"MULTIMODAL_TRAIN_VEHICLES":    &config.Inputs.TrainVehicles,
		"MULTIMODAL_AIRPLANE_NETWORK":  &config.Inputs.AirplaneNetwork,
		"MULTIMODAL_AIRPLANE_SCHEDULE": &config.Inputs.AirplaneSchedule,
		"MULTIMODAL_AIRPLANE_VEHICLES": &config.Inputs.AirplaneVehicles,
		"MULTIMODAL_POPULATION":        &config.Inputs.Population,
		"MULTIMODAL_CRS":               &config.CoordinateSystem,
		"MULTIMODAL_DEFAULT_MODE":      &config.Selector.DefaultMode,
		"MULTIMODAL_LOG_LEVEL":         &config.Logging.Level,
		"MULTIMODAL_DECISIONS_DB":      &config.Decisions.DatabasePath,
	}
	for name, p := range envPaths {
		if v := os.Getenv(name); v != "" {
			*p = v
		}
	}

	if v := os.Getenv("MULTIMODAL_THREADS"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			config.Threads = n
		}
	}
	if v := os.Getenv("MULTIMODAL_THRESHOLD_KM"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Selector.ThresholdKm = f
		}
	}
	if v := os.Getenv("MULTIMODAL_MATERIAL_CHANGE_RATIO"); v != "" {
		if f, err := strconv.ParseFloat(v, 64); err == nil {
			config.Selector.MaterialChangeRatio = f
		}
	}
}

// expandEnvVars expands ${VAR} patterns in a string with environment variable values.
func expandEnvVars(s string) string {
	if !strings.Contains(s, "${") {
		return s
	}
	return os.Expand(s, os.Getenv)
}
