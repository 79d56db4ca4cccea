package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"runtime"

	"github.com/banshee-data/cellcycle/internal/cellcycle/arrest"
	"github.com/banshee-data/cellcycle/internal/cellcycle/resolve"
)

// DefaultConfigPath is the path to the canonical resolver defaults file.
const DefaultConfigPath = "config/resolver.defaults.json"

// ErrInvalidConfig is wrapped by every Validate failure.
var ErrInvalidConfig = errors.New("invalid resolver configuration")

// ResolverConfig holds the tunable parameters of a resolution run. Nil
// fields fall back to the defaults returned by the Get* accessors, so
// partial files are safe.
type ResolverConfig struct {
	MinG     *int `json:"min_g,omitempty"`
	MinS     *int `json:"min_s,omitempty"`
	MinM     *int `json:"min_m,omitempty"`
	MinTrack *int `json:"min_track,omitempty"`

	// G2Threshold selects fixed-threshold arrest classification. Unset
	// means clustering.
	G2Threshold *float64 `json:"g2_threshold,omitempty"`

	Workers           *int     `json:"workers,omitempty"`
	MaxChangeFraction *float64 `json:"max_change_fraction,omitempty"`
}

func ptrFloat64(v float64) *float64 { return &v }
func ptrInt(v int) *int             { return &v }

// EmptyResolverConfig returns a ResolverConfig with all fields unset.
func EmptyResolverConfig() *ResolverConfig {
	return &ResolverConfig{}
}

// LoadResolverConfig loads a ResolverConfig from a JSON file.
// The file must have a .json extension and be under 1MB.
func LoadResolverConfig(path string) (*ResolverConfig, error) {
	cleanPath := filepath.Clean(path)
	if ext := filepath.Ext(cleanPath); ext != ".json" {
		return nil, fmt.Errorf("config file must have .json extension, got %q", ext)
	}

	fileInfo, err := os.Stat(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to stat config file: %w", err)
	}
	const maxFileSize = 1 * 1024 * 1024 // 1MB
	if fileInfo.Size() > maxFileSize {
		return nil, fmt.Errorf("config file too large: %d bytes (max %d)", fileInfo.Size(), maxFileSize)
	}

	data, err := os.ReadFile(cleanPath)
	if err != nil {
		return nil, fmt.Errorf("failed to read config file: %w", err)
	}

	cfg := EmptyResolverConfig()
	if err := json.Unmarshal(data, cfg); err != nil {
		return nil, fmt.Errorf("failed to parse config JSON: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}

	return cfg, nil
}

// LoadDefaultConfig loads DefaultConfigPath relative to the working
// directory. A missing file yields an empty config, whose Get* accessors
// return the built-in defaults.
func LoadDefaultConfig() (*ResolverConfig, error) {
	if _, err := os.Stat(DefaultConfigPath); errors.Is(err, os.ErrNotExist) {
		return EmptyResolverConfig(), nil
	}
	return LoadResolverConfig(DefaultConfigPath)
}

// MustLoadDefaultConfig loads the canonical defaults from DefaultConfigPath,
// searching the current directory and its parents. Panics if the file
// cannot be loaded, intended for test setup.
func MustLoadDefaultConfig() *ResolverConfig {
	candidates := []string{
		DefaultConfigPath,
		"../" + DefaultConfigPath,
		"../../" + DefaultConfigPath, // from internal/config/
		"../../../" + DefaultConfigPath,
		"../../../../" + DefaultConfigPath, // from internal/cellcycle/*/
	}
	for _, path := range candidates {
		if cfg, err := LoadResolverConfig(path); err == nil {
			return cfg
		}
	}
	panic("cannot find " + DefaultConfigPath + " - run tests from repository root")
}

// Validate checks that the configured values are usable.
func (c *ResolverConfig) Validate() error {
	for _, f := range []struct {
		name string
		v    *int
	}{
		{"min_g", c.MinG},
		{"min_s", c.MinS},
		{"min_m", c.MinM},
	} {
		if f.v != nil && *f.v < 1 {
			return fmt.Errorf("%w: %s must be positive, got %d", ErrInvalidConfig, f.name, *f.v)
		}
	}

	if c.MinTrack != nil && *c.MinTrack < 0 {
		return fmt.Errorf("%w: min_track must be non-negative, got %d", ErrInvalidConfig, *c.MinTrack)
	}
	if c.Workers != nil && *c.Workers < 0 {
		return fmt.Errorf("%w: workers must be non-negative, got %d", ErrInvalidConfig, *c.Workers)
	}

	if c.G2Threshold != nil {
		t := *c.G2Threshold
		if t < arrest.MinThreshold || t > arrest.MaxThreshold {
			return fmt.Errorf("%w: g2_threshold must be between %d and %d, got %g",
				ErrInvalidConfig, arrest.MinThreshold, arrest.MaxThreshold, t)
		}
	}

	if c.MaxChangeFraction != nil {
		if f := *c.MaxChangeFraction; f < 0 || f > 1 {
			return fmt.Errorf("%w: max_change_fraction must be between 0 and 1, got %f", ErrInvalidConfig, f)
		}
	}

	return nil
}

func (c *ResolverConfig) GetMinG() int {
	if c.MinG == nil {
		return resolve.DefaultMinG
	}
	return *c.MinG
}

func (c *ResolverConfig) GetMinS() int {
	if c.MinS == nil {
		return resolve.DefaultMinS
	}
	return *c.MinS
}

func (c *ResolverConfig) GetMinM() int {
	if c.MinM == nil {
		return resolve.DefaultMinM
	}
	return *c.MinM
}

func (c *ResolverConfig) GetMinTrack() int {
	if c.MinTrack == nil {
		return resolve.DefaultMinTrack
	}
	return *c.MinTrack
}

// GetG2Threshold returns the fixed threshold, or nil for clustering.
func (c *ResolverConfig) GetG2Threshold() *float64 {
	if c.G2Threshold == nil {
		return nil
	}
	return ptrFloat64(*c.G2Threshold)
}

// GetWorkers returns the worker count, defaulting to runtime.NumCPU().
func (c *ResolverConfig) GetWorkers() int {
	if c.Workers == nil || *c.Workers == 0 {
		return runtime.NumCPU()
	}
	return *c.Workers
}

func (c *ResolverConfig) GetMaxChangeFraction() float64 {
	if c.MaxChangeFraction == nil {
		return resolve.DefaultMaxChangeFraction
	}
	return *c.MaxChangeFraction
}

// Params converts the run-length settings into resolver parameters.
func (c *ResolverConfig) Params() resolve.Params {
	return resolve.Params{
		MinG:              c.GetMinG(),
		MinS:              c.GetMinS(),
		MinM:              c.GetMinM(),
		MinTrack:          c.GetMinTrack(),
		MaxChangeFraction: c.GetMaxChangeFraction(),
	}
}

// SetG2Threshold overrides the arrest threshold.
func (c *ResolverConfig) SetG2Threshold(t float64) { c.G2Threshold = ptrFloat64(t) }

// SetMinTrack overrides the phase table minimum track length.
func (c *ResolverConfig) SetMinTrack(n int) { c.MinTrack = ptrInt(n) }

// SetWorkers overrides the worker count.
func (c *ResolverConfig) SetWorkers(n int) { c.Workers = ptrInt(n) }
