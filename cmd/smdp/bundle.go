package main

import (
	"fmt"
	"os"
	"path/filepath"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/covarr-net/smdp/internal/duckdb"
	"github.com/covarr-net/smdp/internal/reference"
)

func newBundleCmd() *cobra.Command {
	var outputPath string

	cmd := &cobra.Command{
		Use:   "bundle",
		Short: "Pack the reference distributions into a DuckDB file",
		Long: `Import the four reference distribution TSVs from the data directory into a
single DuckDB database. Point data.bundle (or --bundle) at the result to load
references from it.`,
		Example: `  smdp bundle --output references.duckdb
  smdp bundle --data-dir ./data -o refs.duckdb`,
		Args: cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			if outputPath == "" {
				return usagef("--output is required")
			}
			return runBundle(viper.GetString("data.dir"), outputPath)
		},
	}

	cmd.Flags().StringVarP(&outputPath, "output", "o", "", "Output DuckDB file path")
	return cmd
}

func runBundle(dataDir, outputPath string) error {
	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	// Ensure output has .duckdb extension
	if ext := filepath.Ext(outputPath); ext != ".duckdb" && ext != ".db" {
		outputPath += ".duckdb"
	}

	if _, err := os.Stat(outputPath); err == nil {
		if err := os.Remove(outputPath); err != nil {
			return fmt.Errorf("removing existing file: %w", err)
		}
	}

	fmt.Fprintf(os.Stderr, "Bundling reference distributions...\n")
	fmt.Fprintf(os.Stderr, "  Input:  %s\n", dataDir)
	fmt.Fprintf(os.Stderr, "  Output: %s\n", outputPath)

	store, err := duckdb.Open(outputPath)
	if err != nil {
		return fmt.Errorf("creating DuckDB: %w", err)
	}
	defer store.Close()

	for _, name := range reference.Names {
		path := filepath.Join(dataDir, reference.DefaultFiles[name])
		fp, err := duckdb.StatFile(path)
		if err != nil {
			return err
		}
		if err := store.ImportTSV(name, path); err != nil {
			return err
		}
		if err := store.RecordSource(name, fp); err != nil {
			return err
		}
		logger.Debug("imported distribution", zap.String("name", name), zap.String("path", path))
	}

	// Verify the bundle loads back as a complete set
	static, err := reference.LoadStatic()
	if err != nil {
		return err
	}
	set, err := store.LoadSet(static)
	if err != nil {
		return fmt.Errorf("verifying bundle: %w", err)
	}

	fmt.Fprintf(os.Stderr, "\nBundle complete!\n")
	for _, d := range set.Distributions {
		fmt.Fprintf(os.Stderr, "  %-15s %d mutations\n", d.Name+":", d.Total)
	}
	sources, err := store.Sources()
	if err != nil {
		return err
	}
	for _, src := range sources {
		logger.Debug("bundled source", zap.String("name", src.Name), zap.String("path", src.Path),
			zap.Int64("size", src.Size), zap.Time("mod_time", src.ModTime))
	}
	if stat, err := os.Stat(outputPath); err == nil {
		fmt.Fprintf(os.Stderr, "  Output size: %s\n", formatSize(stat.Size()))
	}
	return nil
}
