// Package config loads the checker-config file from its file-shaped,
// deserialization-friendly form and converts it into an immutable
// RuntimeConfig snapshot. Checkers and the orchestrator only ever see
// the runtime form; nothing downstream holds a mutable config object.
package config

import (
	"fmt"
	"os"

	yaml "github.com/goccy/go-yaml"
	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"

	"github.com/sqlguard/sqlguard"
	"github.com/sqlguard/sqlguard/rewriter"
)

var log = logrus.WithField("component", "config")

// RuleFile is the on-disk shape of one checker's entry under `rules:`.
type RuleFile struct {
	Enabled    *bool          `yaml:"enabled"`
	RiskLevel  string         `yaml:"riskLevel"`
	Thresholds map[string]any `yaml:",inline"`
}

// FileConfig is the raw, deserialization-friendly shape of the checker
// config file. It is never handed to a checker directly.
type FileConfig struct {
	Enabled        *bool               `yaml:"enabled"`
	ActiveStrategy string              `yaml:"activeStrategy"`
	Rules          map[string]RuleFile `yaml:"rules"`
	Rewriters      RewriterFile        `yaml:"rewriters"`
}

// RewriterFile is the on-disk shape of the optional `rewriters:` section.
// Both entries are optional; an absent entry disables that rewriter.
type RewriterFile struct {
	TenantFilter *TenantFilterFile `yaml:"tenantFilter"`
	SoftDelete   *SoftDeleteFile   `yaml:"softDelete"`
}

type TenantFilterFile struct {
	Column    string   `yaml:"column"`
	ParamName string   `yaml:"paramName"`
	Tables    []string `yaml:"tables"`
}

type SoftDeleteFile struct {
	Column string   `yaml:"column"`
	Tables []string `yaml:"tables"`
}

// CheckerConfig is one checker's immutable runtime configuration.
type CheckerConfig struct {
	Enabled     bool
	RiskLevel   sqlguard.RiskLevel
	HasOverride bool
	Thresholds  map[string]any
}

// RuntimeConfig is the immutable snapshot passed to checkers and the
// orchestrator. A new snapshot is built on every reload; existing readers
// keep referencing the old one until they next dereference the atomic
// pointer in Store.
type RuntimeConfig struct {
	Enabled        bool
	ActiveStrategy string
	Checkers       map[string]CheckerConfig
	RewriteChain   *rewriter.Chain
}

// Threshold returns a threshold value for a checker, or ok=false if absent.
func (c CheckerConfig) Threshold(key string) (any, bool) {
	v, ok := c.Thresholds[key]
	return v, ok
}

// ThresholdInt returns a threshold as an int, falling back to def when
// absent or of the wrong type. YAML numeric scalars decode as int64,
// uint64 or float64 depending on literal form and sign, so int, int64,
// uint64 and float64 are all accepted.
func (c CheckerConfig) ThresholdInt(key string, def int) int {
	v, ok := c.Threshold(key)
	if !ok {
		return def
	}
	switch n := v.(type) {
	case int:
		return n
	case int64:
		return int(n)
	case uint64:
		return int(n)
	case float64:
		return int(n)
	default:
		return def
	}
}

// LoadFile reads and decodes the checker-config file at path. A missing
// file is not an error: documented defaults apply, and missing sections
// within an existing file also fall back to their documented defaults.
// Environment overlays from .env and .env.local in the working directory
// are applied first.
func LoadFile(path string) (*FileConfig, error) {
	if err := loadEnvFiles(); err != nil {
		return nil, fmt.Errorf("%w: loading env files: %w", sqlguard.ErrConfigInvalid, err)
	}

	if _, err := os.Stat(path); os.IsNotExist(err) {
		log.WithField("path", path).Info("config file not found, using defaults")
		return defaultFileConfig(), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", sqlguard.ErrConfigInvalid, path, err)
	}

	var fc FileConfig
	// Deliberately non-strict: unknown keys are ignored, never a hard
	// decode failure. No warning is logged for them.
	if err := yaml.Unmarshal(data, &fc); err != nil {
		return nil, fmt.Errorf("%w: parsing %s: %w", sqlguard.ErrConfigInvalid, path, err)
	}

	applyFileDefaults(&fc)

	return &fc, nil
}

func loadEnvFiles() error {
	candidates := []string{".env", ".env.local"}
	for _, c := range candidates {
		if _, err := os.Stat(c); err == nil {
			if err := godotenv.Overload(c); err != nil {
				return fmt.Errorf("loading %s: %w", c, err)
			}
		}
	}
	return nil
}

func defaultFileConfig() *FileConfig {
	fc := &FileConfig{
		Enabled:        boolPtr(true),
		ActiveStrategy: "default",
		Rules:          map[string]RuleFile{},
	}
	applyFileDefaults(fc)
	return fc
}

// applyFileDefaults fills in documented defaults for sections the file
// omitted, rather than leaving zero values that would silently disable
// checkers.
func applyFileDefaults(fc *FileConfig) {
	if fc.Enabled == nil {
		fc.Enabled = boolPtr(true)
	}
	if fc.ActiveStrategy == "" {
		fc.ActiveStrategy = "default"
	}
	if fc.Rules == nil {
		fc.Rules = map[string]RuleFile{}
	}
}

func boolPtr(b bool) *bool { return &b }

// ToRuntime converts the file-shaped config into an immutable snapshot.
func (fc *FileConfig) ToRuntime() *RuntimeConfig {
	rc := &RuntimeConfig{
		Enabled:        fc.Enabled == nil || *fc.Enabled,
		ActiveStrategy: fc.ActiveStrategy,
		Checkers:       make(map[string]CheckerConfig, len(fc.Rules)),
	}

	for id, rule := range fc.Rules {
		cc := CheckerConfig{
			Enabled:    rule.Enabled == nil || *rule.Enabled,
			Thresholds: rule.Thresholds,
		}
		if rule.RiskLevel != "" {
			if lvl, ok := sqlguard.ParseRiskLevel(rule.RiskLevel); ok {
				cc.RiskLevel = lvl
				cc.HasOverride = true
			} else {
				log.WithFields(logrus.Fields{"checkerId": id, "riskLevel": rule.RiskLevel}).
					Warn("unknown riskLevel override, ignoring")
			}
		}
		rc.Checkers[id] = cc
	}

	chainCfg := rewriter.ChainConfig{}
	if tf := fc.Rewriters.TenantFilter; tf != nil {
		chainCfg.TenantFilter = &rewriter.TenantFilterConfig{Column: tf.Column, ParamName: tf.ParamName, Tables: tf.Tables}
	}
	if sd := fc.Rewriters.SoftDelete; sd != nil {
		chainCfg.SoftDelete = &rewriter.SoftDeleteConfig{Column: sd.Column, Tables: sd.Tables}
	}
	rc.RewriteChain = rewriter.BuildChain(chainCfg)

	return rc
}

// Load is the common entrypoint: read the file, convert, return the
// runtime snapshot ready to be stored in a Store.
func Load(path string) (*RuntimeConfig, error) {
	fc, err := LoadFile(path)
	if err != nil {
		return nil, err
	}
	return fc.ToRuntime(), nil
}

// ForChecker returns the configuration for one checker, or a default
// enabled-with-no-overrides configuration if the file did not mention it.
func (rc *RuntimeConfig) ForChecker(checkerID string) CheckerConfig {
	if cc, ok := rc.Checkers[checkerID]; ok {
		return cc
	}
	return CheckerConfig{Enabled: true}
}
