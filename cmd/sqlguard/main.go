// Command sqlguard is a thin scanner entrypoint: it walks a project
// tree, audits every mapper/SQL statement it finds, and prints a
// per-file finding list.
package main

import (
	"context"
	"fmt"
	"os"

	"github.com/alecthomas/kong"
	"github.com/fatih/color"

	"github.com/sqlguard/sqlguard"
	"github.com/sqlguard/sqlguard/checker"
	"github.com/sqlguard/sqlguard/config"
	"github.com/sqlguard/sqlguard/orchestrator"
	"github.com/sqlguard/sqlguard/scanner"
)

const (
	exitClean   = 0
	exitFailure = 1
	exitUsage   = 2
)

var CLI struct {
	ProjectPath     string `help:"Path to the source tree to scan." required:"" name:"project-path"`
	ConfigFile      string `help:"Override the checker-config file path." name:"config-file"`
	OutputFormat    string `help:"Output format: console or html." default:"console" name:"output-format"`
	OutputFile      string `help:"Write output to this file instead of stdout." name:"output-file"`
	FailOnCritical  bool   `help:"Exit with code 1 if any CRITICAL finding is present." name:"fail-on-critical"`
	Quiet           bool   `help:"Suppress non-finding output." name:"quiet"`
}

func main() {
	kong.Parse(&CLI)

	if CLI.OutputFormat != "console" && CLI.OutputFormat != "html" {
		fmt.Fprintf(os.Stderr, "sqlguard: unsupported --output-format %q (want console or html)\n", CLI.OutputFormat)
		os.Exit(exitUsage)
	}

	os.Exit(run())
}

func run() int {
	configPath := CLI.ConfigFile
	if configPath == "" {
		configPath = "sqlguard.yaml"
	}
	rc, err := config.Load(configPath)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sqlguard: loading config: %v\n", err)
		return exitFailure
	}

	registry := checker.NewDefaultRegistry(checker.NewErrorRateTracker(0))
	orch := orchestrator.New(registry)
	s := scanner.New(orch, sqlguard.NewDialectRegistry())

	results, err := s.Scan(context.Background(), CLI.ProjectPath, rc)
	if err != nil {
		fmt.Fprintf(os.Stderr, "sqlguard: %v\n", err)
		return exitFailure
	}

	out := os.Stdout
	if CLI.OutputFile != "" {
		f, err := os.Create(CLI.OutputFile)
		if err != nil {
			fmt.Fprintf(os.Stderr, "sqlguard: %v\n", err)
			return exitFailure
		}
		defer f.Close()
		out = f
	}

	hasCritical := false
	for _, r := range results {
		if r.Report != nil {
			if r.Report.AggregatedScore.Level == sqlguard.RiskCritical {
				hasCritical = true
			}
			if !CLI.Quiet {
				printReport(out, r, CLI.OutputFormat)
			}
			continue
		}
		for _, f := range r.Findings {
			if f.Level == sqlguard.RiskCritical {
				hasCritical = true
			}
		}
		if !CLI.Quiet {
			printFindings(out, r, CLI.OutputFormat)
		}
	}

	if CLI.FailOnCritical && hasCritical {
		return exitFailure
	}
	return exitClean
}

func printReport(out *os.File, r scanner.Result, format string) {
	for _, cr := range r.Report.PerCheckerResults {
		if cr.Score.Level == sqlguard.RiskNone {
			continue
		}
		levelColor := colorForLevel(cr.Score.Level)
		if format == "html" {
			fmt.Fprintf(out, "<div>%s: %s [%s] %s</div>\n", r.Path, cr.CheckerID, cr.Score.Level, cr.Score.Message)
			continue
		}
		fmt.Fprintf(out, "%s  %s  %s  %s\n", r.Path, cr.CheckerID, levelColor.Sprint(cr.Score.Level), cr.Score.Message)
	}
}

func printFindings(out *os.File, r scanner.Result, format string) {
	for _, f := range r.Findings {
		levelColor := colorForLevel(f.Level)
		if format == "html" {
			fmt.Fprintf(out, "<div>%s: %s [%s] %s</div>\n", r.Path, f.Code, f.Level, f.Message)
			continue
		}
		fmt.Fprintf(out, "%s  %s  %s  %s\n", r.Path, f.Code, levelColor.Sprint(f.Level), f.Message)
	}
}

func colorForLevel(level sqlguard.RiskLevel) *color.Color {
	switch level {
	case sqlguard.RiskCritical:
		return color.New(color.FgRed, color.Bold)
	case sqlguard.RiskHigh:
		return color.New(color.FgRed)
	case sqlguard.RiskMedium:
		return color.New(color.FgYellow)
	case sqlguard.RiskLow:
		return color.New(color.FgCyan)
	default:
		return color.New(color.FgGreen)
	}
}
