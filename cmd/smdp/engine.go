package main

import (
	"fmt"

	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/covarr-net/smdp/internal/analysis"
	"github.com/covarr-net/smdp/internal/duckdb"
	"github.com/covarr-net/smdp/internal/likelihood"
	"github.com/covarr-net/smdp/internal/reference"
)

// loadReferences reads the reference distributions from the configured
// bundle, falling back to the TSV directory.
func loadReferences(logger *zap.Logger) (*reference.Set, error) {
	if bundle := viper.GetString("data.bundle"); bundle != "" {
		static, err := reference.LoadStatic()
		if err != nil {
			return nil, err
		}
		store, err := duckdb.OpenReadOnly(bundle)
		if err != nil {
			return nil, err
		}
		defer store.Close()
		logger.Debug("loading references from bundle", zap.String("path", bundle))
		return store.LoadSet(static)
	}

	dir := viper.GetString("data.dir")
	logger.Debug("loading references from directory", zap.String("dir", dir))
	set, err := reference.LoadDir(dir, reference.DefaultFiles)
	if err != nil {
		return nil, fmt.Errorf("%w (run 'smdp download' or set data.dir)", err)
	}
	return set, nil
}

// newEngine loads references and builds the analysis engine.
func newEngine(logger *zap.Logger) (*analysis.Engine, error) {
	set, err := loadReferences(logger)
	if err != nil {
		return nil, err
	}
	for _, d := range set.Distributions {
		logger.Debug("loaded distribution",
			zap.String("name", d.Name),
			zap.Int("positions", len(d.Positions)),
			zap.Int("total", d.Total))
	}

	basis := likelihood.ParseBasis(viper.GetString("analysis.compare_to"))
	e, err := analysis.NewEngine(set, analysis.Options{Basis: basis})
	if err != nil {
		return nil, err
	}
	e.SetLogger(logger)
	return e, nil
}
