package sqlguard

import (
	"strings"
	"sync"

	"github.com/sirupsen/logrus"

	"github.com/sqlguard/sqlguard/tokenizer"
)

// Dialect identifies one SQL product family.
type Dialect string

const (
	DialectPostgres  Dialect = "postgres"
	DialectMySQL     Dialect = "mysql"
	DialectMariaDB   Dialect = "mariadb"
	DialectSQLite    Dialect = "sqlite"
	DialectOracle    Dialect = "oracle"
	DialectSQLServer Dialect = "sqlserver"
	DialectDB2       Dialect = "db2"
	DialectSybase    Dialect = "sybase"
	DialectH2        Dialect = "h2"
	DialectHSQLDB    Dialect = "hsqldb"
	DialectRedshift  Dialect = "redshift"

	// DialectDefault is used when product-name detection misses.
	DialectDefault = DialectMySQL
)

// PaginationForm names the syntactic shape a dialect uses to bound a result set.
type PaginationForm int

const (
	PaginationLimitOffset PaginationForm = iota + 1
	PaginationRownum
	PaginationTopN
	PaginationFetchFirst
)

// Capabilities is the small capability set a checker may consult. Checkers
// never branch on product names directly; they consult this interface only.
type Capabilities struct {
	Dialect         Dialect
	IdentifierQuote string
	StringQuote     string
	Pagination      PaginationForm
	PlaceholderForm string // "?", "$n", ":name" or "@name"
}

var dialectTable = map[Dialect]Capabilities{
	DialectPostgres:  {DialectPostgres, `"`, `'`, PaginationLimitOffset, "$n"},
	DialectMySQL:     {DialectMySQL, "`", `'`, PaginationLimitOffset, "?"},
	DialectMariaDB:   {DialectMariaDB, "`", `'`, PaginationLimitOffset, "?"},
	DialectSQLite:    {DialectSQLite, `"`, `'`, PaginationLimitOffset, "?"},
	DialectOracle:    {DialectOracle, `"`, `'`, PaginationRownum, ":name"},
	DialectSQLServer: {DialectSQLServer, `"`, `'`, PaginationTopN, "@name"},
	DialectDB2:       {DialectDB2, `"`, `'`, PaginationFetchFirst, "?"},
	DialectSybase:    {DialectSybase, `"`, `'`, PaginationTopN, "?"},
	DialectH2:        {DialectH2, `"`, `'`, PaginationLimitOffset, "?"},
	DialectHSQLDB:    {DialectHSQLDB, `"`, `'`, PaginationLimitOffset, "?"},
	DialectRedshift:  {DialectRedshift, `"`, `'`, PaginationLimitOffset, "$n"},
}

// productSubstrings maps lowercase substrings of a connector-reported
// product name to a dialect, checked in the order below.
var productSubstrings = []struct {
	substr  string
	dialect Dialect
}{
	{"postgres", DialectPostgres},
	{"redshift", DialectRedshift},
	{"mariadb", DialectMariaDB},
	{"mysql", DialectMySQL},
	{"sqlite", DialectSQLite},
	{"oracle", DialectOracle},
	{"microsoft sql server", DialectSQLServer},
	{"sqlserver", DialectSQLServer},
	{"db2", DialectDB2},
	{"sybase", DialectSybase},
	{"hsqldb", DialectHSQLDB},
	{"h2", DialectH2},
}

// DialectRegistry memoizes dialect detection per data source. It is the
// explicit singleton named in the design notes: callers construct one and
// wire it through, rather than relying on package-level mutable state.
type DialectRegistry struct {
	mu       sync.RWMutex
	cache    map[string]Capabilities
	warnOnce map[string]*sync.Once
	warnMu   sync.Mutex
	log      *logrus.Entry
}

// NewDialectRegistry builds an empty registry.
func NewDialectRegistry() *DialectRegistry {
	return &DialectRegistry{
		cache:    make(map[string]Capabilities),
		warnOnce: make(map[string]*sync.Once),
		log:      logrus.WithField("component", "dialect"),
	}
}

// Detect returns the capability set for a data source, given the product
// name its connector reports (e.g. "PostgreSQL 16.2"). Detection is
// memoized per dataSource; a miss falls back to DialectDefault and is
// logged once per dataSource.
func (r *DialectRegistry) Detect(dataSource, productName string) Capabilities {
	r.mu.RLock()
	if caps, ok := r.cache[dataSource]; ok {
		r.mu.RUnlock()
		return caps
	}
	r.mu.RUnlock()

	caps := r.match(dataSource, productName)

	r.mu.Lock()
	r.cache[dataSource] = caps
	r.mu.Unlock()

	return caps
}

func (r *DialectRegistry) match(dataSource, productName string) Capabilities {
	lower := strings.ToLower(productName)
	for _, entry := range productSubstrings {
		if strings.Contains(lower, entry.substr) {
			return dialectTable[entry.dialect]
		}
	}

	r.warnMu.Lock()
	once, ok := r.warnOnce[dataSource]
	if !ok {
		once = &sync.Once{}
		r.warnOnce[dataSource] = once
	}
	r.warnMu.Unlock()

	once.Do(func() {
		r.log.WithFields(logrus.Fields{
			"dataSource":  dataSource,
			"productName": productName,
		}).Warn("dialect detection missed, falling back to default")
	})

	return dialectTable[DialectDefault]
}

// TokenizerDialect narrows Capabilities down to the handful of lexer
// decisions the tokenizer needs, so the same detected dialect drives both
// checker-facing capability lookups and the token stream itself.
func (c Capabilities) TokenizerDialect() tokenizer.SqlDialect {
	td := tokenizer.SqlDialect{
		Name:              string(c.Dialect),
		DoubleQuoteEscape: c.StringQuote == "'",
	}
	switch c.PlaceholderForm {
	case "$n":
		td.DollarPlaceholder = true
	case ":name":
		td.ColonPlaceholder = true
	case "@name":
		td.AtPlaceholder = true
	}
	return td
}

// CapabilitiesFor returns the static capability set for a dialect tag,
// bypassing detection. Used when the dialect is already known (e.g. a
// template statically declares its target dialect).
func CapabilitiesFor(d Dialect) Capabilities {
	if caps, ok := dialectTable[d]; ok {
		return caps
	}
	return dialectTable[DialectDefault]
}
