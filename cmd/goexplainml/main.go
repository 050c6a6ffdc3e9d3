// Command goexplainml trains an NS-NN anomaly detector on a CSV dataset and
// explains individual rows with integrated-gradients attribution.
package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/hed1ad/goexplainml/pkg/dataset"
	"github.com/hed1ad/goexplainml/pkg/interpret"
	"github.com/hed1ad/goexplainml/pkg/nsnn"
)

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:          "goexplainml",
		Short:        "NS-NN anomaly detection with integrated-gradients attribution",
		SilenceUsage: true,
	}
	root.AddCommand(newTrainCmd(), newExplainCmd())
	return root
}

func newTrainCmd() *cobra.Command {
	hp := nsnn.DefaultHyperparameters()
	var (
		dataPath  string
		modelPath string
		seed      int64
		verbose   bool
	)

	cmd := &cobra.Command{
		Use:   "train",
		Short: "Train a detector on a CSV dataset and save the model",
		RunE: func(cmd *cobra.Command, args []string) error {
			ds, err := dataset.FromCSV(dataPath)
			if err != nil {
				return err
			}

			opts := []nsnn.Option{nsnn.WithSeed(seed)}
			if verbose {
				logger, err := zap.NewDevelopment()
				if err != nil {
					return err
				}
				defer logger.Sync()
				opts = append(opts, nsnn.WithLogger(logger))
			}

			clf, err := nsnn.New(hp, opts...)
			if err != nil {
				return err
			}
			if err := clf.Train(ds.Sample); err != nil {
				return err
			}

			blob, err := clf.Save()
			if err != nil {
				return err
			}
			if err := os.WriteFile(modelPath, blob, 0o644); err != nil {
				return err
			}
			fmt.Printf("trained on %s (%d rows, %d dims), model saved to %s\n",
				ds.Name, ds.Sample.NumRows(), ds.Sample.NumDims(), modelPath)
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "training CSV file")
	cmd.Flags().StringVar(&modelPath, "model", "model.gob", "output model file")
	cmd.Flags().Int64Var(&seed, "seed", 42, "random seed")
	cmd.Flags().BoolVarP(&verbose, "verbose", "v", false, "log per-epoch training diagnostics")
	cmd.Flags().Float64Var(&hp.SampleRatio, "sample-ratio", hp.SampleRatio, "negative sample size relative to positive")
	cmd.Flags().Float64Var(&hp.SampleDelta, "sample-delta", hp.SampleDelta, "margin around the data range for negative sampling")
	cmd.Flags().IntVar(&hp.BatchSize, "batch-size", hp.BatchSize, "training batch size")
	cmd.Flags().IntVar(&hp.StepsPerEpoch, "steps-per-epoch", hp.StepsPerEpoch, "gradient steps per epoch")
	cmd.Flags().IntVar(&hp.Epochs, "epochs", hp.Epochs, "training epochs")
	cmd.Flags().Float64Var(&hp.Dropout, "dropout", hp.Dropout, "dropout rate")
	cmd.Flags().IntVar(&hp.LayerWidth, "layer-width", hp.LayerWidth, "hidden layer width")
	cmd.Flags().IntVar(&hp.HiddenLayers, "hidden-layers", hp.HiddenLayers, "hidden layer count")
	cmd.Flags().Float64Var(&hp.LearningRate, "learning-rate", hp.LearningRate, "Adam learning rate")
	cmd.Flags().StringVar(&hp.LogDir, "log-dir", "", "directory for training diagnostics")
	cmd.MarkFlagRequired("data")

	return cmd
}

func newExplainCmd() *cobra.Command {
	cfg := interpret.DefaultConfig()
	var (
		dataPath  string
		modelPath string
		rowIndex  int
	)

	cmd := &cobra.Command{
		Use:   "explain",
		Short: "Attribute a dataset row's anomaly score to its dimensions",
		RunE: func(cmd *cobra.Command, args []string) error {
			blob, err := os.ReadFile(modelPath)
			if err != nil {
				return err
			}
			clf, err := nsnn.New(nsnn.DefaultHyperparameters())
			if err != nil {
				return err
			}
			if err := clf.Load(blob); err != nil {
				return err
			}

			ds, err := dataset.FromCSV(dataPath)
			if err != nil {
				return err
			}
			if rowIndex < 0 || rowIndex >= ds.Sample.NumRows() {
				return fmt.Errorf("row %d out of range [0, %d)", rowIndex, ds.Sample.NumRows())
			}

			normalized, err := clf.Info().Normalize(ds.Sample)
			if err != nil {
				return err
			}
			interp, err := interpret.NewInterpreter(clf, clf.Info(), normalized, cfg)
			if err != nil {
				return err
			}

			attr, err := interp.Attribute(ds.Sample.Rows[rowIndex])
			if err != nil {
				return err
			}

			fmt.Printf("row %d: score=%.4f baseline=%.4f completeness_gap=%.4f\n",
				rowIndex, attr.Score, attr.BaselineScore, attr.CompletenessGap)
			display := attr.NormalizedBlame()
			for i, d := range attr.Dimensions {
				fmt.Printf("  %-24s observed=%12.4f expected=%12.4f blame=%6.1f%%\n",
					d.Name, d.Observed, d.Expected, display[i]*100)
			}
			return nil
		},
	}

	cmd.Flags().StringVar(&dataPath, "data", "", "CSV file containing the row to explain")
	cmd.Flags().StringVar(&modelPath, "model", "model.gob", "trained model file")
	cmd.Flags().IntVar(&rowIndex, "row", 0, "row index to explain")
	cmd.Flags().Float64Var(&cfg.MinClassConfidence, "min-confidence", cfg.MinClassConfidence, "baseline confidence threshold")
	cmd.Flags().IntVar(&cfg.MaxBaselineSize, "max-baseline", cfg.MaxBaselineSize, "baseline set size cap")
	cmd.Flags().IntVar(&cfg.NumSteps, "steps", cfg.NumSteps, "integration step count")
	cmd.MarkFlagRequired("data")

	return cmd
}
