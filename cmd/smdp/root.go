package main

import (
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
)

const configName = ".smdp"

var cfgFile string

func newRootCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "smdp",
		Short: "SARS-CoV-2 mutation distribution profiler",
		Long: `smdp compares the genome-position distribution of a lineage's mutations
against reference distributions (global pre-VoC, global Omicron, chronic
infections, deer) and reports which one fits best.`,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			return initConfig()
		},
	}

	cmd.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (default ~/.smdp.yaml)")
	cmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
	cmd.PersistentFlags().String("data-dir", "", "Directory with the reference distribution TSVs")
	cmd.PersistentFlags().String("bundle", "", "DuckDB reference bundle (overrides --data-dir)")
	viper.BindPFlag("log.verbose", cmd.PersistentFlags().Lookup("verbose"))
	viper.BindPFlag("data.dir", cmd.PersistentFlags().Lookup("data-dir"))
	viper.BindPFlag("data.bundle", cmd.PersistentFlags().Lookup("bundle"))

	cmd.AddCommand(newAnalyzeCmd())
	cmd.AddCommand(newBatchCmd())
	cmd.AddCommand(newBundleCmd())
	cmd.AddCommand(newDownloadCmd())
	cmd.AddCommand(newConfigCmd())
	cmd.AddCommand(newVersionCmd())

	return cmd
}

func newVersionCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "version",
		Short: "Show version information",
		Args:  cobra.NoArgs,
		Run: func(cmd *cobra.Command, args []string) {
			fmt.Fprintf(cmd.OutOrStdout(), "smdp version %s (%s) built %s\n", version, commit, date)
		},
	}
}

func setDefaults() {
	home, _ := os.UserHomeDir()
	viper.SetDefault("data.dir", filepath.Join(home, ".smdp", "data"))
	viper.SetDefault("data.bundle", "")
	viper.SetDefault("analysis.bin_size", "gene")
	viper.SetDefault("analysis.compare_to", "next_best")
	viper.SetDefault("analysis.workers", 0)
	viper.SetDefault("nextclade.binary", "nextclade")
	viper.SetDefault("nextclade.dataset", "")
	viper.SetDefault("output.format", "text")
	viper.SetDefault("log.level", "info")
}

func initConfig() error {
	setDefaults()

	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(home)
		}
		viper.SetConfigName(configName)
		viper.SetConfigType("yaml")
	}

	viper.SetEnvPrefix("SMDP")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return fmt.Errorf("reading config: %w", err)
		}
	}
	return nil
}

// bindFlags binds config keys to the flags of cmd. Binding happens when the
// command runs because subcommands share keys.
func bindFlags(cmd *cobra.Command, keys map[string]string) error {
	for key, flag := range keys {
		if err := viper.BindPFlag(key, cmd.Flags().Lookup(flag)); err != nil {
			return fmt.Errorf("binding flag --%s: %w", flag, err)
		}
	}
	return nil
}

// newLogger builds a console logger on stderr.
func newLogger() (*zap.Logger, error) {
	level := zapcore.InfoLevel
	if viper.GetBool("log.verbose") {
		level = zapcore.DebugLevel
	} else if err := level.Set(viper.GetString("log.level")); err != nil {
		return nil, fmt.Errorf("invalid log.level %q: %w", viper.GetString("log.level"), err)
	}

	cfg := zap.NewDevelopmentConfig()
	cfg.Level = zap.NewAtomicLevelAt(level)
	cfg.OutputPaths = []string{"stderr"}
	cfg.DisableStacktrace = true
	cfg.EncoderConfig.TimeKey = ""
	return cfg.Build()
}
