// Package scanner implements the static source-tree scan driver: it walks
// a project directory for mapper XML files and SQL files, runs the
// template analyzer or normalizer/parser/checker pipeline over each, and
// produces one Result per discovered statement: an AuditReport for a
// statement from a .sql file, template findings for a mapper statement.
package scanner

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/sqlguard/sqlguard"
	"github.com/sqlguard/sqlguard/checker"
	"github.com/sqlguard/sqlguard/config"
	"github.com/sqlguard/sqlguard/normalize"
	"github.com/sqlguard/sqlguard/orchestrator"
	"github.com/sqlguard/sqlguard/rewriter"
	"github.com/sqlguard/sqlguard/sqlast"
	"github.com/sqlguard/sqlguard/template"
)

// Result is one statement's outcome from a project scan.
type Result struct {
	Path     string
	SqlID    string
	Report   *sqlguard.AuditReport
	Findings []template.Finding
}

// Scanner walks a project tree and audits every mapper/SQL file it finds.
type Scanner struct {
	orch     *orchestrator.Orchestrator
	registry *checker.Registry
	dialects *sqlguard.DialectRegistry
}

// New builds a Scanner around an orchestrator. dialects memoizes dialect
// detection per source file; a static scan has no live connector-reported
// product name, so detection always falls back to the default dialect,
// but still runs through the same capability table the runtime path uses.
func New(orch *orchestrator.Orchestrator, dialects *sqlguard.DialectRegistry) *Scanner {
	if dialects == nil {
		dialects = sqlguard.NewDialectRegistry()
	}
	return &Scanner{orch: orch, dialects: dialects}
}

// Scan walks projectPath, finding every `.xml` mapper file and bare
// `.sql` file, analyzing/auditing each, and returns one Result per
// statement found. rc is the config snapshot to run checkers under.
func (s *Scanner) Scan(ctx context.Context, projectPath string, rc *config.RuntimeConfig) ([]Result, error) {
	files, err := findSourceFiles(projectPath)
	if err != nil {
		return nil, fmt.Errorf("%w: walking %s: %w", sqlguard.ErrProjectPathInvalid, projectPath, err)
	}

	var results []Result
	for _, path := range files {
		data, err := os.ReadFile(path)
		if err != nil {
			continue
		}

		if strings.EqualFold(filepath.Ext(path), ".xml") {
			results = append(results, s.scanMapper(ctx, path, string(data), rc)...)
		} else {
			results = append(results, s.scanSQLFile(ctx, path, string(data), rc))
		}
	}
	return results, nil
}

func (s *Scanner) scanMapper(ctx context.Context, path, xmlText string, rc *config.RuntimeConfig) []Result {
	mapper, err := template.ParseMapper(xmlText)
	if err != nil {
		return []Result{{Path: path, Findings: []template.Finding{{
			Code:    "MYBATIS_PARSE_ERROR",
			Level:   sqlguard.RiskLow,
			Message: err.Error(),
		}}}}
	}

	var out []Result
	for _, stmt := range mapper.Statements {
		template.Analyze(stmt, template.AnalyzeOptions{})
		out = append(out, Result{Path: path, SqlID: stmt.ID, Findings: stmt.Findings})
	}
	return out
}

func (s *Scanner) scanSQLFile(ctx context.Context, path, sql string, rc *config.RuntimeConfig) Result {
	caps := s.dialects.Detect(path, "")
	dialect := caps.TokenizerDialect()
	_, cmd, fp := normalize.Normalize(sql, dialect)

	ast, parseErr := sqlast.Parse(sql, dialect)
	if parseErr != nil {
		ast = nil
	}

	sqlID := filepath.Base(path)
	sqlCtx := sqlguard.SqlContext{AST: ast, RawSQL: sql, Command: cmd, Fingerprint: fp, Dialect: caps.Dialect}

	chain := rc.RewriteChain
	if chain == nil {
		chain = rewriter.NewChain()
	}
	rewritten := chain.Run(sqlCtx)
	if rewritten.Err != nil {
		return Result{Path: path, SqlID: sqlID, Findings: []template.Finding{{
			Code:    "REWRITE_ERROR",
			Level:   sqlguard.RiskLow,
			Message: rewritten.Err.Error(),
		}}}
	}
	sqlCtx = rewritten.Context

	report := s.orch.Run(ctx, sqlID, sqlCtx, rc)
	return Result{Path: path, SqlID: sqlID, Report: &report}
}

// findSourceFiles walks projectPath for every .xml and .sql file.
func findSourceFiles(projectPath string) ([]string, error) {
	var files []string
	err := filepath.Walk(projectPath, func(path string, info os.FileInfo, err error) error {
		if err != nil {
			return err
		}
		if info.IsDir() {
			return nil
		}
		ext := strings.ToLower(filepath.Ext(path))
		if ext == ".xml" || ext == ".sql" {
			files = append(files, path)
		}
		return nil
	})
	return files, err
}
