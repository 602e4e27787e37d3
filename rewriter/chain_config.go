package rewriter

// TenantFilterConfig configures an optional TenantFilterRewriter entry.
type TenantFilterConfig struct {
	Column    string
	ParamName string
	Tables    []string
}

// SoftDeleteConfig configures an optional SoftDeleteRewriter entry.
type SoftDeleteConfig struct {
	Column string
	Tables []string
}

// ChainConfig is the deserialization-friendly description of which
// rewriters a chain should run, and in what order. A nil field omits
// that rewriter entirely.
type ChainConfig struct {
	TenantFilter *TenantFilterConfig
	SoftDelete   *SoftDeleteConfig
}

// BuildChain converts a ChainConfig into a runnable Chain. An empty
// ChainConfig yields a chain that runs zero rewriters, passing every
// SqlContext through unchanged.
func BuildChain(cfg ChainConfig) *Chain {
	var rewriters []Rewriter
	if cfg.TenantFilter != nil {
		rewriters = append(rewriters, TenantFilterRewriter{
			Column:    cfg.TenantFilter.Column,
			ParamName: cfg.TenantFilter.ParamName,
			Tables:    toSet(cfg.TenantFilter.Tables),
		})
	}
	if cfg.SoftDelete != nil {
		rewriters = append(rewriters, SoftDeleteRewriter{
			DeletedColumn: cfg.SoftDelete.Column,
			Tables:        toSet(cfg.SoftDelete.Tables),
		})
	}
	return NewChain(rewriters...)
}

func toSet(names []string) map[string]bool {
	if len(names) == 0 {
		return nil
	}
	set := make(map[string]bool, len(names))
	for _, n := range names {
		set[n] = true
	}
	return set
}
