package cli

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/spf13/pflag"
	"github.com/spf13/viper"

	"github.com/spchkit/ctcspike/internal/input"
	"github.com/spchkit/ctcspike/internal/pipeline"
	"github.com/spchkit/ctcspike/pkg/ctc"
	"github.com/spchkit/ctcspike/pkg/latency"
)

var (
	analyzeHypotheses  *string
	analyzeAlignment   *string
	analyzeDict        *string
	analyzeModelConfig *string
	analyzeSubsampling *int
)

// analyzeCmd represents the `analyze` command: one full latency-analysis
// run over a hypothesis dump and a forced-alignment file.
var analyzeCmd = &cobra.Command{
	Use:   "analyze",
	Short: "Compare hypothesis token timing against a forced alignment.",
	Long: `Compare hypothesis token timing against a forced alignment and report
representative utterances at fixed percentile ranks of each delay metric.`,
	Run: func(cmd *cobra.Command, args []string) {
		if message := validateAnalyzeFlags(); message != "" {
			fmt.Println(message)
			os.Exit(1)
		}

		// Tunables come through viper so a config file or CTCSPIKE_* env
		// vars can override the defaults without touching the flags.
		settings, err := analyzeSettings(cmd.Flags())
		if err != nil {
			logger.WithError(err).Fatal("Failed to load settings.")
		}

		subsampling, frameShift, err := resolveTimeBase(cmd.Flags(), settings)
		if err != nil {
			logger.WithError(err).Fatal("Failed to resolve time base.")
		}

		dict, err := ctc.LoadDict(*analyzeDict)
		if err != nil {
			logger.WithError(err).Fatal("Failed to load dictionary.")
		}
		logger.WithField("symbols", dict.Len()).Info("dictionary loaded")

		// Pass one: materialize the key-indexed hypothesis table.
		hypotheses, err := input.ReadHypotheses(*analyzeHypotheses)
		if err != nil {
			logger.WithError(err).Fatal("Failed to load hypotheses.")
		}
		logger.WithField("utterances", len(hypotheses)).Info("hypotheses loaded")

		// Pass two: stream the alignment file through the matcher.
		alignments, closeAlignments, err := input.ReadAlignments(*analyzeAlignment)
		if err != nil {
			logger.WithError(err).Fatal("Failed to open alignments.")
		}
		defer func() { _ = closeAlignments() }()

		matcher := latency.NewMatcher(dict, subsampling)
		matcher.FrameShiftMs = frameShift
		matcher.FrameTolerance = settings.GetInt("tolerance")
		matcher.BlankSymbol = settings.GetString("blank")

		report, err := pipeline.Analyze(cmd.Context(), logger, matcher, hypotheses, alignments)
		if err != nil {
			logger.WithError(err).Fatal("Analysis failed.")
		}

		renderReport(report)

		if resultDir := settings.GetString("result-dir"); resultDir != "" {
			manifestPath, err := writeManifest(resultDir, settings.GetString("tag"), report)
			if err != nil {
				logger.WithError(err).Fatal("Failed to write manifest.")
			}
			logger.WithField("path", manifestPath).Info("manifest written")
		}
	},
}

func init() {
	rootCmd.AddCommand(analyzeCmd)

	analyzeHypotheses = analyzeCmd.Flags().StringP("hypotheses", "y", "",
		"Hypothesis dump (JSON lines) produced by the streaming model.")
	analyzeAlignment = analyzeCmd.Flags().StringP("alignment", "a", "",
		"Forced-alignment file, one 'key tok tok ...' line per utterance.")
	analyzeDict = analyzeCmd.Flags().StringP("dict", "d", "",
		"Symbol table, one 'symbol id' pair per line.")
	analyzeModelConfig = analyzeCmd.Flags().StringP("model-config", "c", "",
		"Model training YAML to read subsampling rate and frame shift from.")
	analyzeSubsampling = analyzeCmd.Flags().IntP("subsampling", "s", 4,
		"Encoder temporal subsampling factor; --model-config supplies it when the flag is not set.")

	analyzeCmd.Flags().Int("tolerance", latency.DefaultFrameTolerance,
		"Frame-count disagreement (exclusive) at which an utterance is ignored.")
	analyzeCmd.Flags().Int("frame-shift", latency.FrameShiftMs,
		"Acoustic frame shift in milliseconds.")
	analyzeCmd.Flags().String("blank", ctc.BlankSymbol,
		"Spelling of the blank marker in alignment lines.")
	analyzeCmd.Flags().StringP("result-dir", "o", "",
		"Directory to write the artifact manifest into (optional).")
	analyzeCmd.Flags().StringP("tag", "t", "",
		"Run tag included in artifact names (optional).")
}

// analyzeSettings builds the viper instance backing the analyze tunables.
// Precedence is the usual one: explicit flag, then environment, then config
// file, then flag default.
func analyzeSettings(flags *pflag.FlagSet) (*viper.Viper, error) {
	v := viper.New()
	v.SetEnvPrefix("CTCSPIKE")
	v.AutomaticEnv()

	v.SetConfigName("ctcspike")
	v.AddConfigPath(".")
	if err := v.ReadInConfig(); err != nil {
		// A missing config file is fine, anything else is not.
		var notFound viper.ConfigFileNotFoundError
		if !errors.As(err, &notFound) {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	if err := v.BindPFlags(flags); err != nil {
		return nil, fmt.Errorf("failed to bind flags: %w", err)
	}
	return v, nil
}

// resolveTimeBase decides the subsampling factor and frame shift for the
// run. The model config supplies them when present; an explicitly set flag
// always wins.
func resolveTimeBase(flags *pflag.FlagSet, settings *viper.Viper) (subsampling, frameShift int, err error) {
	subsampling = *analyzeSubsampling
	frameShift = settings.GetInt("frame-shift")

	if *analyzeModelConfig == "" {
		return subsampling, frameShift, nil
	}

	cfg, err := input.ReadModelConfig(*analyzeModelConfig)
	if err != nil {
		return 0, 0, err
	}
	if !flags.Changed("subsampling") && cfg.Encoder.SubsamplingRate > 0 {
		subsampling = cfg.Encoder.SubsamplingRate
	}
	if !flags.Changed("frame-shift") && cfg.Dataset.Fbank.FrameShift > 0 {
		frameShift = cfg.Dataset.Fbank.FrameShift
	}
	return subsampling, frameShift, nil
}
