package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"

	"github.com/eugenenazirov/stowage-planner/internal/catalog"
	"github.com/eugenenazirov/stowage-planner/internal/stowage"
)

const (
	defaultPort           = "8080"
	defaultRateLimitRPS   = 25.0
	defaultRateLimitBurst = 50
)

// Config aggregates runtime configuration resolved from multiple sources.
// Precedence: CLI flags > YAML config > Environment variables > Defaults
type Config struct {
	Port                 string
	Catalog              []stowage.ContainerType
	PackagingTable       map[string]string
	ShutdownGracePeriod  time.Duration
	ReadHeaderTimeout    time.Duration
	WriteTimeout         time.Duration
	IdleTimeout          time.Duration
	EnableRequestLogging bool
	RateLimitRPS         float64
	RateLimitBurst       int
}

// yamlConfig represents the YAML configuration file structure. Catalog
// and packaging data live in their own files so operators can maintain
// them independently of server settings.
type yamlConfig struct {
	Port                 string        `yaml:"port"`
	CatalogFile          string        `yaml:"catalog_file"`
	PackagingFile        string        `yaml:"packaging_file"`
	ShutdownGracePeriod  string        `yaml:"shutdown_grace_period"`
	ReadHeaderTimeout    string        `yaml:"read_header_timeout"`
	WriteTimeout         string        `yaml:"write_timeout"`
	IdleTimeout          string        `yaml:"idle_timeout"`
	EnableRequestLogging bool          `yaml:"enable_request_logging"`
	RateLimit            yamlRateLimit `yaml:"rate_limit"`
}

// yamlRateLimit represents the rate limit section in YAML.
type yamlRateLimit struct {
	RPS   float64 `yaml:"rps"`
	Burst int     `yaml:"burst"`
}

// yamlContainerType represents one catalog entry in a catalog file.
type yamlContainerType struct {
	Name           string   `yaml:"name"`
	Category       string   `yaml:"category"`
	InnerLengthCM  float64  `yaml:"inner_length_cm"`
	InnerWidthCM   float64  `yaml:"inner_width_cm"`
	InnerHeightCM  float64  `yaml:"inner_height_cm"`
	MaxPayloadKG   float64  `yaml:"max_payload_kg"`
	TareWeightKG   float64  `yaml:"tare_weight_kg"`
	Cost           float64  `yaml:"cost"`
	PackagingCodes []string `yaml:"packaging_codes"`
}

// yamlCatalog represents the catalog file structure.
type yamlCatalog struct {
	Containers []yamlContainerType `yaml:"containers"`
}

// yamlPackagingTable represents the packaging synonym file structure.
type yamlPackagingTable struct {
	Synonyms map[string]string `yaml:"synonyms"`
}

// CLIOverrides holds command-line flag overrides.
type CLIOverrides struct {
	ConfigFile     string
	Port           *string
	CatalogFile    *string
	PackagingFile  *string
	RateLimitRPS   *float64
	RateLimitBurst *int
}

// Load extracts configuration from multiple sources with precedence:
// CLI flags > YAML config > Environment variables > Defaults
func Load(overrides *CLIOverrides) (Config, error) {
	cfg := defaultConfig()

	catalogFile := ""
	packagingFile := ""

	if overrides != nil && overrides.ConfigFile != "" {
		yamlCfg, err := loadFromFile(overrides.ConfigFile)
		if err != nil {
			return Config{}, fmt.Errorf("load YAML config: %w", err)
		}
		applyYAMLConfig(&cfg, yamlCfg)
		catalogFile = yamlCfg.CatalogFile
		packagingFile = yamlCfg.PackagingFile
	}

	applyEnvConfig(&cfg, &catalogFile, &packagingFile)

	if overrides != nil {
		if overrides.Port != nil && *overrides.Port != "" {
			cfg.Port = *overrides.Port
		}
		if overrides.CatalogFile != nil && *overrides.CatalogFile != "" {
			catalogFile = *overrides.CatalogFile
		}
		if overrides.PackagingFile != nil && *overrides.PackagingFile != "" {
			packagingFile = *overrides.PackagingFile
		}
		if overrides.RateLimitRPS != nil && *overrides.RateLimitRPS >= 0 {
			cfg.RateLimitRPS = *overrides.RateLimitRPS
		}
		if overrides.RateLimitBurst != nil && *overrides.RateLimitBurst >= 0 {
			cfg.RateLimitBurst = *overrides.RateLimitBurst
		}
	}

	if catalogFile != "" {
		types, err := LoadCatalogFile(catalogFile)
		if err != nil {
			return Config{}, fmt.Errorf("load catalog file: %w", err)
		}
		cfg.Catalog = types
	}
	if packagingFile != "" {
		table, err := LoadPackagingFile(packagingFile)
		if err != nil {
			return Config{}, fmt.Errorf("load packaging file: %w", err)
		}
		cfg.PackagingTable = table
	}

	if err := validateConfig(cfg); err != nil {
		return Config{}, err
	}

	return cfg, nil
}

// defaultConfig returns a Config with default values.
func defaultConfig() Config {
	return Config{
		Port:                 defaultPort,
		Catalog:              catalog.DefaultCatalog(),
		PackagingTable:       catalog.DefaultPackagingTable(),
		ShutdownGracePeriod:  10 * time.Second,
		ReadHeaderTimeout:    5 * time.Second,
		WriteTimeout:         15 * time.Second,
		IdleTimeout:          60 * time.Second,
		EnableRequestLogging: true,
		RateLimitRPS:         defaultRateLimitRPS,
		RateLimitBurst:       defaultRateLimitBurst,
	}
}

// loadFromFile loads configuration from a YAML file.
func loadFromFile(path string) (*yamlConfig, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var yamlCfg yamlConfig
	if err := yaml.Unmarshal(data, &yamlCfg); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}

	return &yamlCfg, nil
}

// LoadCatalogFile reads a container catalog from a YAML file.
func LoadCatalogFile(path string) ([]stowage.ContainerType, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var parsed yamlCatalog
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	if len(parsed.Containers) == 0 {
		return nil, fmt.Errorf("catalog file %s defines no containers", path)
	}

	types := make([]stowage.ContainerType, 0, len(parsed.Containers))
	for _, entry := range parsed.Containers {
		t := stowage.ContainerType{
			Name:           entry.Name,
			Category:       stowage.Category(entry.Category),
			InnerLength:    entry.InnerLengthCM,
			InnerWidth:     entry.InnerWidthCM,
			InnerHeight:    entry.InnerHeightCM,
			MaxPayload:     entry.MaxPayloadKG,
			TareWeight:     entry.TareWeightKG,
			Cost:           entry.Cost,
			PackagingCodes: entry.PackagingCodes,
		}
		if err := t.Validate(); err != nil {
			return nil, err
		}
		types = append(types, t)
	}
	return types, nil
}

// LoadPackagingFile reads a packaging synonym table from a YAML file.
func LoadPackagingFile(path string) (map[string]string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read file: %w", err)
	}

	var parsed yamlPackagingTable
	if err := yaml.Unmarshal(data, &parsed); err != nil {
		return nil, fmt.Errorf("parse YAML: %w", err)
	}
	if len(parsed.Synonyms) == 0 {
		return nil, fmt.Errorf("packaging file %s defines no synonyms", path)
	}
	return parsed.Synonyms, nil
}

// applyYAMLConfig applies YAML configuration to the Config struct.
func applyYAMLConfig(cfg *Config, yamlCfg *yamlConfig) {
	if yamlCfg.Port != "" {
		cfg.Port = yamlCfg.Port
	}

	if yamlCfg.ShutdownGracePeriod != "" {
		if d, err := time.ParseDuration(yamlCfg.ShutdownGracePeriod); err == nil {
			cfg.ShutdownGracePeriod = d
		}
	}

	if yamlCfg.ReadHeaderTimeout != "" {
		if d, err := time.ParseDuration(yamlCfg.ReadHeaderTimeout); err == nil {
			cfg.ReadHeaderTimeout = d
		}
	}

	if yamlCfg.WriteTimeout != "" {
		if d, err := time.ParseDuration(yamlCfg.WriteTimeout); err == nil {
			cfg.WriteTimeout = d
		}
	}

	if yamlCfg.IdleTimeout != "" {
		if d, err := time.ParseDuration(yamlCfg.IdleTimeout); err == nil {
			cfg.IdleTimeout = d
		}
	}

	cfg.EnableRequestLogging = yamlCfg.EnableRequestLogging

	// zero means "not set" here; explicit disabling goes through flags or env
	if yamlCfg.RateLimit.RPS > 0 {
		cfg.RateLimitRPS = yamlCfg.RateLimit.RPS
	}

	if yamlCfg.RateLimit.Burst > 0 {
		cfg.RateLimitBurst = yamlCfg.RateLimit.Burst
	}
}

// applyEnvConfig applies environment variable configuration.
func applyEnvConfig(cfg *Config, catalogFile, packagingFile *string) {
	if port := strings.TrimSpace(os.Getenv("PORT")); port != "" {
		cfg.Port = port
	}

	if path := strings.TrimSpace(os.Getenv("CATALOG_FILE")); path != "" {
		*catalogFile = path
	}

	if path := strings.TrimSpace(os.Getenv("PACKAGING_FILE")); path != "" {
		*packagingFile = path
	}

	if rps := strings.TrimSpace(os.Getenv("RATE_LIMIT_RPS")); rps != "" {
		if value, err := strconv.ParseFloat(rps, 64); err == nil && value >= 0 {
			cfg.RateLimitRPS = value
		}
	}

	if burst := strings.TrimSpace(os.Getenv("RATE_LIMIT_BURST")); burst != "" {
		if value, err := strconv.Atoi(burst); err == nil && value >= 0 {
			cfg.RateLimitBurst = value
		}
	}
}

// validateConfig validates the final configuration.
func validateConfig(cfg Config) error {
	if cfg.RateLimitRPS < 0 {
		return fmt.Errorf("RATE_LIMIT_RPS must be >= 0")
	}
	if cfg.RateLimitBurst < 0 {
		return fmt.Errorf("RATE_LIMIT_BURST must be >= 0")
	}
	if len(cfg.Catalog) == 0 {
		return fmt.Errorf("container catalog cannot be empty")
	}
	if len(cfg.PackagingTable) == 0 {
		return fmt.Errorf("packaging table cannot be empty")
	}
	return nil
}
