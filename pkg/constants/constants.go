// Package constants provides shared constants for the reverse-mortgage application.
package constants

// Property value band accepted by the calculator.
const (
	// MinPropertyValue is the lowest property value accepted
	MinPropertyValue = 200_000_000

	// MaxPropertyValue is the highest property value accepted
	MaxPropertyValue = 900_000_000
)

// Age rules
const (
	// MinAge is the minimum age for both the owner and the spouse
	MinAge = 18

	// MaxYoungestAge is the ceiling for the younger of the two ages
	MaxYoungestAge = 85
)

// Financial constants
const (
	// MonthsPerYear is the number of months in a year
	MonthsPerYear = 12

	// DecimalPlaces is the precision for currency rounding
	DecimalPlaces = 2

	// LoanToValueRatio is the fraction of the adjusted property value paid out
	LoanToValueRatio = 0.50
)

// Property conditions
const (
	ConditionExcellent = "excellent"
	ConditionGood      = "good"
	ConditionAverage   = "average"
)

// Marital statuses
const (
	StatusMarried  = "married"
	StatusSingle   = "single"
	StatusDivorced = "divorced"
)

// Output format constants
const (
	// OutputFormatPretty is the human-readable output format
	OutputFormatPretty = "pretty"

	// OutputFormatCSV is the CSV output format
	OutputFormatCSV = "csv"

	// OutputFormatJSON is the JSON output format
	OutputFormatJSON = "json"
)

// Configuration file constants
const (
	// DefaultConfigFile is the default configuration file name
	DefaultConfigFile = "config.yaml"

	// ExampleConfigFile is the example configuration file name
	ExampleConfigFile = "config.yaml.example"
)

// Server configuration defaults
const (
	// DefaultServerAddress is the default HTTP listen address for the API
	DefaultServerAddress = ":8080"

	// DefaultMaxRequestSizeBytes is the default maximum request body size (64 KB)
	DefaultMaxRequestSizeBytes int64 = 64 * 1024

	// DefaultRateLimitCapacity is the number of requests a client may burst
	DefaultRateLimitCapacity = 60

	// DefaultRateLimitRefill is how often a client's bucket is refilled
	DefaultRateLimitRefill = "1m"
)

// Cache defaults
const (
	CacheBackendNone   = "none"
	CacheBackendMemory = "memory"
	CacheBackendRedis  = "redis"

	// DefaultCacheTTL is how long a computed payment stays cached
	DefaultCacheTTL = "24h"

	// DefaultCacheKeyPrefix namespaces keys in shared caches
	DefaultCacheKeyPrefix = "reverse-mortgage:"
)
