package cmd

import (
	"context"
	"path/filepath"
	"strconv"

	"github.com/jsphweid/melodex/bucket"
	"github.com/jsphweid/melodex/chunk"
	"github.com/jsphweid/melodex/config"
	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/dataset"
	"github.com/jsphweid/melodex/file"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/util"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/vbauerster/mpb/v8"
	"github.com/vbauerster/mpb/v8/decor"
)

var noProgress bool

func init() {
	addConfigFlags(preprocessCmd)
	preprocessCmd.Flags().BoolVar(&noProgress, "no-progress", false, "hide the progress bar")
	rootCmd.AddCommand(preprocessCmd)
}

var preprocessCmd = &cobra.Command{
	Use:   "preprocess [maxNum]",
	Short: "Builds the instance dataset",
	Long:  `Reads every midi file under the input folder and writes accepted instances per split.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		var maxNum int
		if len(args) == 1 {
			n, err := strconv.Atoi(args[0])
			if err != nil {
				return errors.Wrap(err, "maxNum must be a number")
			}
			maxNum = n
		}
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		input, err := mediaDir()
		if err != nil {
			return err
		}
		_, err = Preprocess(cmd.Context(), cfg, input, folder(cfg), maxNum, !noProgress)
		return err
	},
}

func newSink(cfg config.Config, dir string) (dataset.Sink, error) {
	if cfg.OutputMode == config.OutputConsolidated {
		w, err := chunk.NewWriter(dir, cfg.PitchRange)
		if err != nil {
			return nil, err
		}
		return w, nil
	}
	if err := bucket.DeleteAll(dir); err != nil {
		return nil, err
	}
	w, err := bucket.NewWriter(dir)
	if err != nil {
		return nil, err
	}
	return w, nil
}

func logWritten(sink dataset.Sink) {
	switch w := sink.(type) {
	case *bucket.Writer:
		log.WithFields(log.Fields{"records": w.Written()}).Info("wrote record files")
	case *chunk.Writer:
		for _, o := range w.Overviews() {
			log.WithFields(log.Fields{
				"split":     o.Split,
				"file":      o.Filename,
				"instances": o.Instances,
			}).Info("wrote split file")
		}
	}
}

// Preprocess runs the whole pipeline over the midi files under input and
// writes instances plus a manifest into dir.
func Preprocess(ctx context.Context, cfg config.Config, input, dir string, maxNum int, showProgress bool) (dataset.Manifest, error) {
	if ctx == nil {
		ctx = context.Background()
	}
	paths, err := util.GatherAllMidiPaths(input, maxNum)
	if err != nil {
		return dataset.Manifest{}, err
	}
	sources := file.CreateSourceMap(paths)
	splits := dataset.Partition(util.GetKeysSorted(sources), cfg.DataRatio, dataset.NewSource(cfg.Seed))
	log.WithFields(log.Fields{
		"files": len(paths),
		"train": len(splits.Members(model.Train)),
		"eval":  len(splits.Members(model.Eval)),
		"test":  len(splits.Members(model.Test)),
	}).Info("partitioned songs")

	sink, err := newSink(cfg, dir)
	if err != nil {
		return dataset.Manifest{}, err
	}

	assembler := dataset.Assembler{
		Config: cfg,
		Splits: splits,
		Sink:   sink,
		Log:    log.WithFields(log.Fields{"folder": cfg.FolderName()}),
	}

	var p *mpb.Progress
	var bar *mpb.Bar
	if showProgress {
		p = mpb.New(mpb.WithWidth(64))
		bar = p.AddBar(int64(len(paths)),
			mpb.PrependDecorators(
				decor.Name("Preprocessing: "),
				decor.CountersNoUnit("%d / %d"),
			),
			mpb.AppendDecorators(
				decor.Percentage(),
				decor.AverageETA(decor.ET_STYLE_GO),
			),
		)
		assembler.Progress = bar
	}

	summary, runErr := assembler.Run(ctx, paths)
	if p != nil {
		if !bar.Completed() {
			bar.Abort(false)
		}
		p.Wait()
	}
	closeErr := sink.Close()
	if runErr != nil {
		return dataset.Manifest{}, runErr
	}
	if closeErr != nil {
		return dataset.Manifest{}, errors.Wrap(closeErr, "closing output")
	}
	logWritten(sink)

	manifest := dataset.NewManifest(cfg, splits, sources, summary)
	if err := manifest.Write(filepath.Join(dir, constants.ManifestName)); err != nil {
		return manifest, err
	}
	log.WithFields(log.Fields{
		"songs":     summary.Songs,
		"skipped":   summary.Skipped,
		"windows":   summary.Windows,
		"accepted":  summary.Accepted,
		"anomalies": summary.Anomalies,
	}).Infof("wrote %v", dir)
	return manifest, nil
}
