package driver

import (
	"github.com/pkg/errors"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"

	"loam/frontend-go/pkg/analysis"
	"loam/frontend-go/pkg/ast"
	"loam/frontend-go/pkg/report"
	"loam/frontend-go/pkg/semantic"
	"loam/frontend-go/pkg/typecheck"
)

// RunResult bundles everything semantic analysis produced for a program.
type RunResult struct {
	Report       *report.ErrorReport
	TypeAnalysis *typecheck.TypeAnalysis
	Semantic     semantic.Result
}

// Run performs semantic analysis over a program: type analysis first, then
// the semantic checks, then the execution plan check.
func Run(program *ast.Program, cfg *Config) (*RunResult, error) {
	errorReport := report.NewErrorReport()
	tu := analysis.NewTranslationUnit(program, errorReport)

	var logger *zap.Logger
	if cfg.Has(KeyDebugReport) && cfg.Get(KeyDebugReport) != "" {
		built, err := newDebugLogger(cfg.Get(KeyDebugReport))
		if err != nil {
			return nil, err
		}
		defer built.Sync() //nolint:errcheck
		logger = built
	}

	typeAnalysis := typecheck.NewTypeAnalysis(logger)
	typeAnalysis.Run(tu)

	opts := semantic.Options{
		SuppressWarnings:    cfg.Get(KeySuppressWarnings),
		HasSuppressWarnings: cfg.Has(KeySuppressWarnings),
	}
	result := semantic.Check(tu, typeAnalysis, opts)
	semantic.CheckExecutionPlans(tu)

	return &RunResult{
		Report:       errorReport,
		TypeAnalysis: typeAnalysis,
		Semantic:     result,
	}, nil
}

// newDebugLogger builds the debug-report consumer: a console-encoded debug
// stream written to the given path, or stderr for "-".
func newDebugLogger(path string) (*zap.Logger, error) {
	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(zapcore.DebugLevel)
	if path == "-" {
		cfg.OutputPaths = []string{"stderr"}
	} else {
		cfg.OutputPaths = []string{path}
	}
	logger, err := cfg.Build()
	if err != nil {
		return nil, errors.Wrap(err, "building debug-report logger")
	}
	return logger, nil
}
