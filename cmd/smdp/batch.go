package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/covarr-net/smdp/internal/analysis"
	"github.com/covarr-net/smdp/internal/binning"
	"github.com/covarr-net/smdp/internal/output"
)

func newBatchCmd() *cobra.Command {
	var outputFile string

	cmd := &cobra.Command{
		Use:   "batch <lineages.tsv>",
		Short: "Analyze many lineages in parallel",
		Long: `Analyze one lineage per line. Each line holds a name and a mutation list
separated by a tab; lines without a tab are named by line number. Use '-' to
read from stdin.`,
		Example: `  smdp batch lineages.tsv
  smdp batch --bin-size genes_split --workers 4 -o results.tsv lineages.tsv`,
		Args: cobra.ExactArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, map[string]string{
				"analysis.bin_size": "bin-size",
				"analysis.workers":  "workers",
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			return runBatch(args[0], outputFile)
		},
	}

	cmd.Flags().String("bin-size", "", "Bin scheme: 500, 1000, gene, genes_split (default from config)")
	cmd.Flags().Int("workers", 0, "Number of worker goroutines (0 = all CPUs)")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")

	return cmd
}

func runBatch(inputPath, outputFile string) error {
	scheme, err := binning.ParseScheme(viper.GetString("analysis.bin_size"))
	if err != nil {
		return &usageError{msg: err.Error()}
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	in := os.Stdin
	if inputPath != "-" {
		f, err := os.Open(inputPath)
		if err != nil {
			return err
		}
		defer f.Close()
		in = f
	}
	items, err := analysis.ReadBatch(in)
	if err != nil {
		return err
	}
	logger.Info("read batch", zap.Int("lineages", len(items)), zap.Stringer("bin_size", scheme))

	engine, err := newEngine(logger)
	if err != nil {
		return err
	}

	out, closeOut, err := createOutput(outputFile)
	if err != nil {
		return err
	}
	defer closeOut()

	names := make([]string, 0, len(engine.Distributions()))
	for _, d := range engine.Distributions() {
		names = append(names, d.Name)
	}
	bw := output.NewBatchWriter(out, names)
	if err := bw.WriteHeader(); err != nil {
		return fmt.Errorf("writing header: %w", err)
	}

	results := engine.ParallelAnalyze(analysis.Feed(items), scheme, viper.GetInt("analysis.workers"))
	err = analysis.OrderedCollect(results, func(r analysis.WorkResult) error {
		if r.Err != nil {
			return fmt.Errorf("lineage %s: %w", r.Name, r.Err)
		}
		return bw.Write(r.Name, r.Result)
	})
	if err != nil {
		return err
	}
	if err := bw.Flush(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}

	bw.WriteSummary(os.Stderr)
	return nil
}
