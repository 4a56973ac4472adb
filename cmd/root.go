package cmd

import (
	"path/filepath"

	"github.com/jsphweid/melodex/config"
	"github.com/jsphweid/melodex/constants"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	verbose   bool
	cfgPath   string
	inputDir  string
	outputDir string
)

var rootCmd = &cobra.Command{
	Use:   "melodex",
	Short: "Turns midi songs into melody and chord training instances",
	Long: `Turns two-track midi songs (melody first, accompaniment second) into
fixed-length windows of melody symbols, rhythm and chord vectors, split into
train/eval/test sets.`,
	SilenceUsage: true,
	PersistentPreRun: func(cmd *cobra.Command, args []string) {
		if verbose {
			log.SetLevel(log.DebugLevel)
		}
	},
}

func init() {
	rootCmd.PersistentFlags().BoolVarP(&verbose, "verbose", "v", false, "debug logging")
	rootCmd.PersistentFlags().StringVarP(&cfgPath, "config", "c", "", "JSON config file")
	rootCmd.PersistentFlags().StringVarP(&inputDir, "input", "i", "", "midi folder (default $MEDIA_PATH)")
	rootCmd.PersistentFlags().StringVarP(&outputDir, "output", "o", "", "output root (default $INDEX_PATH or ./out)")
}

func Execute() {
	cobra.CheckErr(rootCmd.Execute())
}

func mediaDir() (string, error) {
	if inputDir != "" {
		return inputDir, nil
	}
	if dir := constants.GetMediaDir(); dir != "" {
		return dir, nil
	}
	return "", errors.New("no midi folder, set --input or MEDIA_PATH")
}

func indexDir() string {
	if outputDir != "" {
		return outputDir
	}
	return constants.GetIndexDir()
}

// loadConfig reads --config and applies the flags the user set on cmd.
func loadConfig(cmd *cobra.Command) (config.Config, error) {
	cfg, err := config.Load(cfgPath)
	if err != nil {
		return cfg, err
	}
	flags := cmd.Flags()
	if flags.Changed("num-bars") {
		cfg.NumBars, _ = flags.GetInt("num-bars")
	}
	if flags.Changed("frame-per-bar") {
		cfg.FramePerBar, _ = flags.GetInt("frame-per-bar")
	}
	if flags.Changed("pitch-range") {
		cfg.PitchRange, _ = flags.GetInt("pitch-range")
	}
	if flags.Changed("shift") {
		cfg.Shift, _ = flags.GetBool("shift")
	}
	if flags.Changed("seed") {
		cfg.Seed, _ = flags.GetUint64("seed")
	}
	if flags.Changed("non-overlapping") {
		cfg.NonOverlapping, _ = flags.GetBool("non-overlapping")
	}
	if flags.Changed("consolidated") {
		if on, _ := flags.GetBool("consolidated"); on {
			cfg.OutputMode = config.OutputConsolidated
		} else {
			cfg.OutputMode = config.OutputFiles
		}
	}
	return cfg, cfg.Validate()
}

func addConfigFlags(cmd *cobra.Command) {
	d := config.Default()
	cmd.Flags().Int("num-bars", d.NumBars, "bars per instance")
	cmd.Flags().Int("frame-per-bar", d.FramePerBar, "frames per bar")
	cmd.Flags().Int("pitch-range", d.PitchRange, "melody pitch range, 48 or 128")
	cmd.Flags().Bool("shift", d.Shift, "augment with the 12 transpositions -5..+6")
	cmd.Flags().Uint64("seed", d.Seed, "split sampler seed")
	cmd.Flags().Bool("non-overlapping", d.NonOverlapping, "full-stride windows")
	cmd.Flags().Bool("consolidated", false, "one dataset file per split instead of one file per instance")
}

// folder is where a run with cfg writes.
func folder(cfg config.Config) string {
	return filepath.Join(indexDir(), cfg.FolderName())
}
