package checker

import (
	"strings"

	"github.com/sqlguard/sqlguard/config"
)

// stringSet reads a threshold key expected to hold a YAML sequence of
// strings and returns it as a lower-cased lookup set.
func stringSet(cfg config.CheckerConfig, key string) map[string]bool {
	v, ok := cfg.Threshold(key)
	if !ok {
		return nil
	}
	items, ok := v.([]any)
	if !ok {
		return nil
	}
	set := make(map[string]bool, len(items))
	for _, it := range items {
		if s, ok := it.(string); ok {
			set[strings.ToLower(s)] = true
		}
	}
	return set
}
