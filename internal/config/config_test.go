package config

import (
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/iwvelando/reverse-mortgage/pkg/constants"
	"github.com/iwvelando/reverse-mortgage/pkg/mortgage"
)

func TestLoadConfiguration(t *testing.T) {
	tests := []struct {
		name       string
		configPath string
		wantError  bool
	}{
		{
			name:       "Non-existent config file",
			configPath: "nonexistent.yaml",
			wantError:  true,
		},
		{
			name:       "Example config file",
			configPath: filepath.Join("..", "..", constants.ExampleConfigFile),
		},
		{
			name:       "Test config file",
			configPath: filepath.Join("..", "..", "test", "test_config.yaml"),
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			config, err := LoadConfiguration(tt.configPath)
			if tt.wantError {
				if err == nil {
					t.Errorf("LoadConfiguration() expected error but got none")
				}
				return
			}
			if err != nil {
				t.Errorf("LoadConfiguration() error = %v", err)
				return
			}
			if config == nil {
				t.Errorf("LoadConfiguration() returned nil config")
			}
		})
	}
}

func TestLoadConfigurationExample(t *testing.T) {
	conf, err := LoadConfiguration(filepath.Join("..", "..", constants.ExampleConfigFile))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	if conf.Server.Address != ":8080" {
		t.Errorf("expected address :8080, got %s", conf.Server.Address)
	}
	if conf.Server.RateLimit.Capacity != 60 {
		t.Errorf("expected rate limit capacity 60, got %d", conf.Server.RateLimit.Capacity)
	}
	if conf.Server.RateLimit.Refill != time.Minute {
		t.Errorf("expected refill 1m, got %s", conf.Server.RateLimit.Refill)
	}
	if conf.Cache.Backend != constants.CacheBackendMemory {
		t.Errorf("expected memory cache, got %s", conf.Cache.Backend)
	}
	if conf.Cache.TTL != 24*time.Hour {
		t.Errorf("expected ttl 24h, got %s", conf.Cache.TTL)
	}
	if len(conf.Scenarios) != 3 {
		t.Fatalf("expected 3 scenarios, got %d", len(conf.Scenarios))
	}
	if len(conf.ActiveScenarios()) != 2 {
		t.Errorf("expected 2 active scenarios, got %d", len(conf.ActiveScenarios()))
	}

	payment, err := mortgage.CalculateRaw(conf.Scenarios[0].Raw())
	if err != nil {
		t.Fatalf("CalculateRaw() error = %v", err)
	}
	if payment != 1041666.67 {
		t.Errorf("expected payment 1041666.67, got %.2f", payment)
	}

	if warnings := conf.ValidateConfiguration(); len(warnings) != 0 {
		t.Errorf("expected no warnings, got %v", warnings)
	}
}

func TestLoadConfigurationDefaults(t *testing.T) {
	conf, err := LoadConfigurationFromReader(strings.NewReader("scenarios: []\n"))
	if err != nil {
		t.Fatalf("LoadConfigurationFromReader() error = %v", err)
	}

	if conf.Logging.Level != "info" || conf.Logging.Format != "json" {
		t.Errorf("unexpected logging defaults %+v", conf.Logging)
	}
	if conf.Output.Format != constants.OutputFormatPretty {
		t.Errorf("expected pretty output by default, got %s", conf.Output.Format)
	}
	if conf.Server.Address != constants.DefaultServerAddress {
		t.Errorf("expected default address, got %s", conf.Server.Address)
	}
	if conf.Server.MaxRequestSize != "65536" {
		t.Errorf("expected default request size 65536, got %s", conf.Server.MaxRequestSize)
	}
	if conf.Cache.Backend != constants.CacheBackendNone {
		t.Errorf("expected cache disabled by default, got %s", conf.Cache.Backend)
	}
	if conf.Cache.KeyPrefix != constants.DefaultCacheKeyPrefix {
		t.Errorf("expected default key prefix, got %s", conf.Cache.KeyPrefix)
	}
}

func TestDefaultsHonourEnvironment(t *testing.T) {
	t.Setenv("REVERSE_MORTGAGE_SERVER_ADDRESS", "127.0.0.1:9999")
	t.Setenv("REVERSE_MORTGAGE_CACHE_BACKEND", "redis")

	conf, err := Defaults()
	if err != nil {
		t.Fatalf("Defaults() error = %v", err)
	}
	if conf.Server.Address != "127.0.0.1:9999" {
		t.Errorf("expected env address override, got %s", conf.Server.Address)
	}
	if conf.Cache.Backend != constants.CacheBackendRedis {
		t.Errorf("expected env cache override, got %s", conf.Cache.Backend)
	}
}

func TestLoadConfigurationKeepsRawScenarioTypes(t *testing.T) {
	conf, err := LoadConfiguration(filepath.Join("..", "..", "test", "test_config.yaml"))
	if err != nil {
		t.Fatalf("LoadConfiguration() error = %v", err)
	}

	var quoted, missing *Scenario
	for i := range conf.Scenarios {
		switch conf.Scenarios[i].Name {
		case "quoted property value":
			quoted = &conf.Scenarios[i]
		case "missing marital status":
			missing = &conf.Scenarios[i]
		}
	}
	if quoted == nil || missing == nil {
		t.Fatalf("expected test scenarios to be present, got %+v", conf.Scenarios)
	}

	if _, err := mortgage.CalculateRaw(quoted.Raw()); !mortgage.IsValidationError(err) || mortgage.KindName(err) != "DataType" {
		t.Errorf("expected DataType error for quoted value, got %v", err)
	}
	if _, err := mortgage.CalculateRaw(missing.Raw()); mortgage.KindName(err) != "InvalidMaritalStatus" {
		t.Errorf("expected InvalidMaritalStatus for missing status, got %v", err)
	}
}

func TestLoadConfigurationInvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bad.yaml")
	if err := os.WriteFile(path, []byte("scenarios: [unclosed"), 0600); err != nil {
		t.Fatalf("failed to write temp config: %v", err)
	}

	if _, err := LoadConfiguration(path); err == nil {
		t.Fatal("expected error for invalid YAML but got nil")
	}
}

func TestValidateConfiguration(t *testing.T) {
	tests := []struct {
		name     string
		conf     Configuration
		contains []string
	}{
		{
			name: "clean configuration",
			conf: Configuration{
				Scenarios: []Scenario{{Name: "a", Active: true}},
			},
		},
		{
			name: "duplicate and unnamed scenarios",
			conf: Configuration{
				Scenarios: []Scenario{{Name: "a", Active: true}, {Name: "a"}, {Name: " "}},
			},
			contains: []string{"duplicates position 1", "scenario 3 has no name"},
		},
		{
			name: "nothing active",
			conf: Configuration{
				Scenarios: []Scenario{{Name: "a"}},
			},
			contains: []string{"no scenarios are marked active"},
		},
		{
			name: "unknown cache backend",
			conf: Configuration{
				Cache: CacheConfig{Backend: "memcached"},
			},
			contains: []string{`unknown cache backend "memcached"`},
		},
		{
			name: "redis without address",
			conf: Configuration{
				Cache: CacheConfig{Backend: constants.CacheBackendRedis},
			},
			contains: []string{"without redisAddress"},
		},
		{
			name: "rate limit without refill",
			conf: Configuration{
				Server: ServerConfig{RateLimit: RateLimitConfig{Capacity: 5}},
			},
			contains: []string{"positive refill interval"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			warnings := tt.conf.ValidateConfiguration()
			if len(warnings) != len(tt.contains) {
				t.Fatalf("expected %d warnings, got %v", len(tt.contains), warnings)
			}
			joined := strings.Join(warnings, "\n")
			for _, want := range tt.contains {
				if !strings.Contains(joined, want) {
					t.Errorf("expected warning containing %q, got %v", want, warnings)
				}
			}
		})
	}
}

func TestScenarioFromInputsRoundTrip(t *testing.T) {
	in := mortgage.Inputs{
		PropertyValue:     400_000_000,
		PropertyCondition: "good",
		MaritalStatus:     "single",
		OwnerAge:          72,
		SpouseAge:         70,
		InterestRate:      0.5,
	}

	scenario := ScenarioFromInputs("round trip", in)
	if !scenario.Active {
		t.Errorf("expected scenario built from inputs to be active")
	}

	parsed, err := mortgage.ValidateRaw(scenario.Raw())
	if err != nil {
		t.Fatalf("ValidateRaw() error = %v", err)
	}
	if parsed != in {
		t.Errorf("expected %+v, got %+v", in, parsed)
	}
}
