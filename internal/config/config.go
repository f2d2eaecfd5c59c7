// Package config defines the data structures related to configuration and
// includes functions for loading and checking the config.
package config

import (
	"fmt"
	"io"
	"math"
	"strings"
	"time"

	"github.com/iwvelando/reverse-mortgage/pkg/constants"
	"github.com/iwvelando/reverse-mortgage/pkg/mortgage"
	"github.com/spf13/viper"
)

// EnvPrefix prefixes environment variable overrides, e.g.
// REVERSE_MORTGAGE_SERVER_ADDRESS.
const EnvPrefix = "REVERSE_MORTGAGE"

// Configuration holds all configuration for reverse-mortgage.
type Configuration struct {
	Logging   LoggingConfig `yaml:"logging,omitempty"`
	Output    OutputConfig  `yaml:"output,omitempty"`
	Server    ServerConfig  `yaml:"server,omitempty"`
	Cache     CacheConfig   `yaml:"cache,omitempty"`
	Scenarios []Scenario    `yaml:"scenarios,omitempty"`
}

// LoggingConfig holds logging configuration options
type LoggingConfig struct {
	Level      string `yaml:"level,omitempty"`      // debug, info, warn, error
	Format     string `yaml:"format,omitempty"`     // json, console
	OutputFile string `yaml:"outputFile,omitempty"` // optional file output
}

// OutputConfig holds output format configuration options
type OutputConfig struct {
	Format string `yaml:"format,omitempty"` // pretty, csv, json
}

// ServerConfig holds the HTTP API options.
type ServerConfig struct {
	Address        string          `yaml:"address,omitempty"`
	MaxRequestSize string          `yaml:"maxRequestSize,omitempty"` // e.g. 64K, 1M
	RateLimit      RateLimitConfig `yaml:"rateLimit,omitempty"`
}

// RateLimitConfig sizes the per-client token bucket. A zero capacity
// disables rate limiting.
type RateLimitConfig struct {
	Capacity int           `yaml:"capacity"`
	Refill   time.Duration `yaml:"refill,omitempty"`
}

// CacheConfig selects and tunes the result cache used by the HTTP API.
type CacheConfig struct {
	Backend       string        `yaml:"backend,omitempty"` // none, memory, redis
	TTL           time.Duration `yaml:"ttl,omitempty"`
	RedisAddress  string        `yaml:"redisAddress,omitempty"`
	RedisPassword string        `yaml:"redisPassword,omitempty"`
	RedisDB       int           `yaml:"redisDB,omitempty"`
	KeyPrefix     string        `yaml:"keyPrefix,omitempty"`
}

// Scenario is one named set of calculator inputs. The input fields are
// kept untyped so that a malformed value in the file is reported as a
// data type error by the calculator rather than failing the whole load.
type Scenario struct {
	Name              string      `yaml:"name"`
	Active            bool        `yaml:"active"`
	PropertyValue     interface{} `yaml:"propertyValue"`
	PropertyCondition interface{} `yaml:"propertyCondition"`
	MaritalStatus     interface{} `yaml:"maritalStatus"`
	OwnerAge          interface{} `yaml:"ownerAge"`
	SpouseAge         interface{} `yaml:"spouseAge"`
	InterestRate      interface{} `yaml:"interestRate"`
}

// Raw returns the scenario's inputs for the calculator.
func (s Scenario) Raw() mortgage.RawInputs {
	return mortgage.RawInputs{
		PropertyValue:     s.PropertyValue,
		PropertyCondition: s.PropertyCondition,
		MaritalStatus:     s.MaritalStatus,
		OwnerAge:          s.OwnerAge,
		SpouseAge:         s.SpouseAge,
		InterestRate:      s.InterestRate,
	}
}

// ScenarioFromInputs builds an active scenario from typed inputs.
func ScenarioFromInputs(name string, in mortgage.Inputs) Scenario {
	return Scenario{
		Name:              name,
		Active:            true,
		PropertyValue:     number(in.PropertyValue),
		PropertyCondition: in.PropertyCondition,
		MaritalStatus:     in.MaritalStatus,
		OwnerAge:          in.OwnerAge,
		SpouseAge:         in.SpouseAge,
		InterestRate:      number(in.InterestRate),
	}
}

// number keeps whole values integral so they serialize without an exponent.
func number(v float64) interface{} {
	if v == math.Trunc(v) && math.Abs(v) < 1<<53 {
		return int64(v)
	}
	return v
}

// LoadConfiguration takes a file path as input and loads the YAML-formatted
// configuration there.
func LoadConfiguration(configPath string) (*Configuration, error) {
	v := newViper()
	v.SetConfigFile(configPath)

	if err := v.ReadInConfig(); err != nil {
		return nil, fmt.Errorf("error reading config file, %s", err)
	}

	return decode(v)
}

// LoadConfigurationFromReader loads YAML-formatted configuration from r.
func LoadConfigurationFromReader(r io.Reader) (*Configuration, error) {
	v := newViper()

	if err := v.ReadConfig(r); err != nil {
		return nil, fmt.Errorf("error reading config data, %s", err)
	}

	return decode(v)
}

// Defaults returns the configuration used when no file is given, still
// honouring environment overrides.
func Defaults() (*Configuration, error) {
	return decode(newViper())
}

func newViper() *viper.Viper {
	v := viper.New()
	v.SetConfigType("yml")
	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "json")
	v.SetDefault("logging.outputFile", "")
	v.SetDefault("output.format", constants.OutputFormatPretty)
	v.SetDefault("server.address", constants.DefaultServerAddress)
	v.SetDefault("server.maxRequestSize", fmt.Sprintf("%d", constants.DefaultMaxRequestSizeBytes))
	v.SetDefault("server.rateLimit.capacity", constants.DefaultRateLimitCapacity)
	v.SetDefault("server.rateLimit.refill", constants.DefaultRateLimitRefill)
	v.SetDefault("cache.backend", constants.CacheBackendNone)
	v.SetDefault("cache.ttl", constants.DefaultCacheTTL)
	v.SetDefault("cache.redisAddress", "localhost:6379")
	v.SetDefault("cache.redisPassword", "")
	v.SetDefault("cache.redisDB", 0)
	v.SetDefault("cache.keyPrefix", constants.DefaultCacheKeyPrefix)
	return v
}

func decode(v *viper.Viper) (*Configuration, error) {
	var configuration Configuration
	if err := v.Unmarshal(&configuration); err != nil {
		return nil, fmt.Errorf("unable to decode into struct, %s", err)
	}
	return &configuration, nil
}

// ActiveScenarios returns the scenarios flagged active, in file order.
func (c *Configuration) ActiveScenarios() []Scenario {
	var active []Scenario
	for _, scenario := range c.Scenarios {
		if scenario.Active {
			active = append(active, scenario)
		}
	}
	return active
}

// ValidateConfiguration performs general validation of the configuration and returns warnings
func (c *Configuration) ValidateConfiguration() []string {
	var warnings []string

	seen := make(map[string]int)
	for i, scenario := range c.Scenarios {
		name := strings.TrimSpace(scenario.Name)
		if name == "" {
			warnings = append(warnings, fmt.Sprintf("scenario %d has no name", i+1))
			continue
		}
		if first, ok := seen[name]; ok {
			warnings = append(warnings, fmt.Sprintf("scenario %q at position %d duplicates position %d", name, i+1, first+1))
			continue
		}
		seen[name] = i
	}

	if len(c.Scenarios) > 0 && len(c.ActiveScenarios()) == 0 {
		warnings = append(warnings, "no scenarios are marked active")
	}

	switch c.Cache.Backend {
	case "", constants.CacheBackendNone, constants.CacheBackendMemory, constants.CacheBackendRedis:
	default:
		warnings = append(warnings, fmt.Sprintf("unknown cache backend %q, caching disabled", c.Cache.Backend))
	}

	if c.Cache.Backend == constants.CacheBackendRedis && c.Cache.RedisAddress == "" {
		warnings = append(warnings, "redis cache selected without redisAddress")
	}

	if c.Server.RateLimit.Capacity > 0 && c.Server.RateLimit.Refill <= 0 {
		warnings = append(warnings, "rate limit capacity set without a positive refill interval")
	}

	return warnings
}
