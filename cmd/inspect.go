package cmd

import (
	"fmt"
	"io"
	"path/filepath"

	"github.com/jsphweid/melodex/bucket"
	"github.com/jsphweid/melodex/chord"
	"github.com/jsphweid/melodex/chunk"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/sample"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var (
	inspectMidi  string
	inspectIndex int
	inspectBase  int
)

func init() {
	addConfigFlags(inspectCmd)
	inspectCmd.Flags().StringVar(&inspectMidi, "midi", "", "also render the instance to this midi file")
	inspectCmd.Flags().IntVar(&inspectIndex, "index", 0, "instance to show when inspecting a split file")
	inspectCmd.Flags().IntVar(&inspectBase, "base-note", sample.ChordOctaveBase, "pitch of melody symbol 0 when rendering")
	rootCmd.AddCommand(inspectCmd)
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <record.gob>",
	Short: "Inspects an instance",
	Long:  `Prints one instance frame by frame. Accepts a record file or a consolidated split file.`,
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		name, rec, err := loadRecord(args[0], inspectIndex)
		if err != nil {
			return err
		}
		printRecord(cmd.OutOrStdout(), name, rec, cfg.PitchRange)

		if inspectMidi == "" {
			return nil
		}
		base := inspectBase
		if cfg.PitchRange == 128 {
			base = 0
		}
		s, err := sample.Create(rec, cfg.PitchRange, base, cfg.UnitTime(), cfg.BPM)
		if err != nil {
			return err
		}
		if err := s.WriteFile(inspectMidi); err != nil {
			return errors.Wrapf(err, "writing %v", inspectMidi)
		}
		log.WithFields(log.Fields{"file": inspectMidi}).Info("rendered instance")
		return nil
	},
}

func loadRecord(path string, index int) (string, model.Record, error) {
	base := filepath.Base(path)
	for _, s := range model.AllSplits {
		if base != chunk.Filename(s) {
			continue
		}
		d, err := chunk.Read(path)
		if err != nil {
			return "", model.Record{}, err
		}
		if index < 0 || index >= d.Len() {
			return "", model.Record{}, errors.Errorf("%v holds %d instances, no index %d", base, d.Len(), index)
		}
		return d.Names[index], d.Record(index), nil
	}
	rec, err := bucket.ReadRecord(path)
	return base, rec, err
}

func symbolLabel(s, pitchRange int) string {
	switch s {
	case pitchRange:
		return "-"
	case pitchRange + 1:
		return "rest"
	}
	return fmt.Sprintf("%d", s)
}

func printRecord(w io.Writer, name string, rec model.Record, pitchRange int) {
	fmt.Fprintf(w, "%v: %d frames\n", name, len(rec.Pitch))
	fmt.Fprintf(w, "%5s %6s %6s %s\n", "frame", "pitch", "rhythm", "chord")
	for t := range rec.Pitch {
		var c string
		if t < len(rec.Chord) {
			c = chord.Key(rec.Chord[t])
		}
		var r int
		if t < len(rec.Rhythm) {
			r = rec.Rhythm[t]
		}
		fmt.Fprintf(w, "%5d %6s %6d %s\n", t, symbolLabel(rec.Pitch[t], pitchRange), r, c)
	}
}
