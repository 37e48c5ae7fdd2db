package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/covarr-net/smdp/internal/analysis"
	"github.com/covarr-net/smdp/internal/binning"
	"github.com/covarr-net/smdp/internal/nextclade"
	"github.com/covarr-net/smdp/internal/output"
)

// resultWriter is implemented by the text and JSON report writers.
type resultWriter interface {
	Write(res *analysis.Result) error
	Flush() error
}

func newAnalyzeCmd() *cobra.Command {
	var (
		outputFile string
		binsFile   string
		fastaPath  string
	)

	cmd := &cobra.Command{
		Use:   "analyze [mutations|file]",
		Short: "Find the best-fitting mutation distribution for a lineage",
		Long: `Analyze a comma-separated list of lineage-defining mutations (or a file
containing one), or a single-sequence FASTA aligned with Nextclade.`,
		Example: `  smdp analyze "C897A, G3431T, A7842G, del23009"
  smdp analyze --bin-size 1000 mutations.txt
  smdp analyze --fasta lineage.fasta --output-format json
  smdp analyze --bins bins.tsv "C897A, G3431T"`,
		Args: cobra.MaximumNArgs(1),
		PreRunE: func(cmd *cobra.Command, args []string) error {
			return bindFlags(cmd, map[string]string{
				"analysis.bin_size":   "bin-size",
				"analysis.compare_to": "compare-to",
				"output.format":       "output-format",
			})
		},
		RunE: func(cmd *cobra.Command, args []string) error {
			if (len(args) == 0) == (fastaPath == "") {
				return usagef("provide either a mutation list or --fasta")
			}
			return runAnalyze(cmd.Context(), args, fastaPath, outputFile, binsFile)
		},
	}

	cmd.Flags().String("bin-size", "", "Bin scheme: 500, 1000, gene, genes_split (default from config)")
	cmd.Flags().String("compare-to", "", "Compare the best fit with next_best or a fixed distribution")
	cmd.Flags().StringP("output-format", "f", "", "Output format: text, json")
	cmd.Flags().StringVarP(&outputFile, "output", "o", "", "Output file (default: stdout)")
	cmd.Flags().StringVar(&binsFile, "bins", "", "Also write per-bin proportions to this TSV file")
	cmd.Flags().StringVar(&fastaPath, "fasta", "", "Single-sequence FASTA to align with Nextclade")

	return cmd
}

func runAnalyze(ctx context.Context, args []string, fastaPath, outputFile, binsFile string) error {
	scheme, err := binning.ParseScheme(viper.GetString("analysis.bin_size"))
	if err != nil {
		return &usageError{msg: err.Error()}
	}

	logger, err := newLogger()
	if err != nil {
		return err
	}
	defer logger.Sync()

	engine, err := newEngine(logger)
	if err != nil {
		return err
	}

	var res *analysis.Result
	if fastaPath != "" {
		runner := nextclade.NewRunner(viper.GetString("nextclade.binary"), viper.GetString("nextclade.dataset"))
		runner.SetLogger(logger)
		mutations, alignErr := runner.PrivateMutations(ctx, fastaPath)
		res, err = engine.AnalyzeAlignment(mutations, alignErr, scheme)
	} else {
		raw, rerr := readMutationsArg(args[0])
		if rerr != nil {
			return rerr
		}
		res, err = engine.Analyze(raw, scheme)
	}
	if err != nil {
		return err
	}

	out, closeOut, err := createOutput(outputFile)
	if err != nil {
		return err
	}
	defer closeOut()

	w, err := newResultWriter(out, viper.GetString("output.format"))
	if err != nil {
		return err
	}
	if err := w.Write(res); err != nil {
		return fmt.Errorf("writing result: %w", err)
	}
	if err := w.Flush(); err != nil {
		return fmt.Errorf("flushing output: %w", err)
	}

	if binsFile != "" {
		if err := writeBins(binsFile, engine, res); err != nil {
			return err
		}
		logger.Info("wrote bin proportions", zap.String("path", binsFile))
	}
	return nil
}

// readMutationsArg returns arg itself, or the contents of the file it names.
// Newlines in a file are treated as list separators.
func readMutationsArg(arg string) (string, error) {
	info, err := os.Stat(arg)
	if err != nil || info.IsDir() {
		return arg, nil
	}
	data, err := os.ReadFile(arg)
	if err != nil {
		return "", fmt.Errorf("reading mutations file: %w", err)
	}
	return strings.Join(strings.Fields(strings.ReplaceAll(string(data), "\n", ",")), " "), nil
}

func newResultWriter(w io.Writer, format string) (resultWriter, error) {
	switch format {
	case "", "text":
		return output.NewTextWriter(w), nil
	case "json":
		return output.NewJSONWriter(w), nil
	default:
		return nil, usagef("unknown output format %q", format)
	}
}

func createOutput(path string) (io.Writer, func(), error) {
	if path == "" || path == "-" {
		return os.Stdout, func() {}, nil
	}
	f, err := os.Create(path)
	if err != nil {
		return nil, nil, fmt.Errorf("creating output file: %w", err)
	}
	return f, func() { f.Close() }, nil
}

func writeBins(path string, engine *analysis.Engine, res *analysis.Result) error {
	f, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("creating bins file: %w", err)
	}
	defer f.Close()

	bw := output.NewBinsWriter(f, engine)
	if err := bw.Write(res); err != nil {
		return fmt.Errorf("writing bins: %w", err)
	}
	return bw.Flush()
}
