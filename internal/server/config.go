package server

import (
	"fmt"
	"strconv"
	"strings"
	"time"
	"unicode"

	"github.com/iwvelando/reverse-mortgage/internal/config"
	"github.com/iwvelando/reverse-mortgage/pkg/constants"
)

// Options defines runtime parameters for the HTTP server.
type Options struct {
	Address           string
	MaxRequestSize    int64
	RateLimitCapacity int
	RateLimitRefill   time.Duration
	Version           string
}

// OptionsFromConfig converts the server section of the configuration,
// filling in defaults for anything left empty.
func OptionsFromConfig(cfg config.ServerConfig, version string) (Options, error) {
	opts := Options{
		Address:           cfg.Address,
		RateLimitCapacity: cfg.RateLimit.Capacity,
		RateLimitRefill:   cfg.RateLimit.Refill,
		Version:           strings.TrimSpace(version),
	}

	if opts.Address == "" {
		opts.Address = constants.DefaultServerAddress
	}
	if opts.Version == "" {
		opts.Version = "dev"
	}

	size, err := ParseSize(cfg.MaxRequestSize)
	if err != nil {
		return Options{}, err
	}
	if size <= 0 {
		size = constants.DefaultMaxRequestSizeBytes
	}
	opts.MaxRequestSize = size

	if opts.RateLimitCapacity < 0 {
		return Options{}, fmt.Errorf("rate limit capacity must not be negative, got %d", opts.RateLimitCapacity)
	}
	if opts.RateLimitCapacity > 0 && opts.RateLimitRefill <= 0 {
		opts.RateLimitRefill = time.Minute
	}

	return opts, nil
}

// ParseSize converts a human-friendly byte string (e.g., "64K", "1M") into bytes.
func ParseSize(value string) (int64, error) {
	trimmed := strings.TrimSpace(value)
	if trimmed == "" {
		return constants.DefaultMaxRequestSizeBytes, nil
	}

	upper := strings.ToUpper(trimmed)
	idx := len(upper)
	for idx > 0 && !unicode.IsDigit(rune(upper[idx-1])) {
		idx--
	}
	if idx == 0 {
		return 0, fmt.Errorf("invalid size: %s", value)
	}
	numPart := strings.TrimSpace(upper[:idx])
	unitPart := strings.TrimSpace(upper[idx:])

	if numPart == "" {
		return 0, fmt.Errorf("invalid size: %s", value)
	}

	n, err := strconv.ParseInt(numPart, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("invalid size value %q: %w", value, err)
	}

	var multiplier int64
	switch unitPart {
	case "", "B":
		multiplier = 1
	case "K", "KB":
		multiplier = 1024
	case "M", "MB":
		multiplier = 1024 * 1024
	default:
		return 0, fmt.Errorf("unsupported size unit %q", unitPart)
	}

	result := n * multiplier
	if result < 0 {
		return 0, fmt.Errorf("size overflow for value %s", value)
	}
	return result, nil
}
