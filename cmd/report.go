package cmd

import (
	"fmt"
	"io"
	"path/filepath"
	"sort"

	"github.com/jsphweid/melodex/bucket"
	"github.com/jsphweid/melodex/chord"
	"github.com/jsphweid/melodex/chunk"
	"github.com/jsphweid/melodex/config"
	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/dataset"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/util"
	"github.com/spf13/cobra"
	"gonum.org/v1/gonum/stat"
)

func init() {
	addConfigFlags(reportCmd)
	rootCmd.AddCommand(reportCmd)
}

var reportCmd = &cobra.Command{
	Use:   "report [folder]",
	Short: "Creates a report",
	Long:  `Summarizes an output folder: instances per split, symbol diversity, rests and chord vocabulary.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dir := folder(cfg)
		if len(args) == 1 {
			dir = args[0]
		}
		r, err := buildReport(dir)
		if err != nil {
			return err
		}
		printReport(cmd.OutOrStdout(), r)
		return nil
	},
}

type chordCount struct {
	Key   string
	Count int
}

type splitReport struct {
	Split     model.Split
	Songs     int
	Instances int
	// distinct pitch symbols per instance
	MeanDistinct float64
	StdDistinct  float64
	RestShare    float64
	OnsetShare   float64
	ChordFrames  uint64
	Chords       []chordCount
}

type folderReport struct {
	Dir      string
	Manifest dataset.Manifest
	Splits   []splitReport
}

type splitStats struct {
	songs    map[string]bool
	distinct []float64
	frames   int
	rests    int
	onsets   int
	chords   map[string]int
}

func (s *splitStats) add(song string, rec model.Record, pitchRange int) {
	s.songs[song] = true
	s.distinct = append(s.distinct, float64(util.Distinct(rec.Pitch)))
	s.frames += len(rec.Pitch)
	for _, p := range rec.Pitch {
		if p == pitchRange+1 {
			s.rests++
		}
	}
	for _, r := range rec.Rhythm {
		if r == 2 {
			s.onsets++
		}
	}
	for _, m := range rec.Chord {
		if m != 0 {
			s.chords[chord.Key(m)]++
		}
	}
}

func (s *splitStats) report(split model.Split) splitReport {
	res := splitReport{Split: split, Songs: len(s.songs), Instances: len(s.distinct)}
	switch {
	case len(s.distinct) > 1:
		res.MeanDistinct, res.StdDistinct = stat.MeanStdDev(s.distinct, nil)
	case len(s.distinct) == 1:
		res.MeanDistinct = s.distinct[0]
	}
	if s.frames > 0 {
		res.RestShare = float64(s.rests) / float64(s.frames)
		res.OnsetShare = float64(s.onsets) / float64(s.frames)
	}
	counts := make([]int, 0, len(s.chords))
	for _, k := range util.GetKeysSorted(s.chords) {
		res.Chords = append(res.Chords, chordCount{Key: k, Count: s.chords[k]})
		counts = append(counts, s.chords[k])
	}
	res.ChordFrames = util.Sum(counts)
	sort.SliceStable(res.Chords, func(i, j int) bool {
		return res.Chords[i].Count > res.Chords[j].Count
	})
	return res
}

func collectFiles(dir string, split model.Split, pitchRange int, st *splitStats) error {
	songs, err := bucket.ListSongs(dir, split)
	if err != nil {
		return err
	}
	for _, song := range songs {
		names, err := bucket.ListRecords(dir, split, song)
		if err != nil {
			return err
		}
		for _, name := range names {
			rec, err := bucket.ReadRecord(filepath.Join(dir, string(split), song, name))
			if err != nil {
				return err
			}
			st.add(song, rec, pitchRange)
		}
	}
	return nil
}

func collectChunk(dir string, split model.Split, pitchRange int, st *splitStats) error {
	d, err := chunk.Read(filepath.Join(dir, chunk.Filename(split)))
	if err != nil {
		return err
	}
	for i := 0; i < d.Len(); i++ {
		st.add(d.Songs[i], d.Record(i), pitchRange)
	}
	return nil
}

func buildReport(dir string) (folderReport, error) {
	manifest, err := dataset.ReadManifest(filepath.Join(dir, constants.ManifestName))
	if err != nil {
		return folderReport{}, err
	}
	res := folderReport{Dir: dir, Manifest: manifest}
	pitchRange := manifest.Config.PitchRange
	for _, split := range model.AllSplits {
		st := &splitStats{songs: make(map[string]bool), chords: make(map[string]int)}
		collect := collectFiles
		if manifest.Config.OutputMode == config.OutputConsolidated {
			collect = collectChunk
		}
		if err := collect(dir, split, pitchRange, st); err != nil {
			return res, err
		}
		res.Splits = append(res.Splits, st.report(split))
	}
	return res, nil
}

func printReport(w io.Writer, r folderReport) {
	s := r.Manifest.Summary
	fmt.Fprintf(w, "folder: %v (run %v)\n", r.Dir, r.Manifest.RunID)
	fmt.Fprintf(w, "songs: %v, skipped: %v, windows: %v, accepted: %v, anomalies: %v\n",
		s.Songs, s.Skipped, s.Windows, s.Accepted, s.Anomalies)
	for _, reason := range util.GetKeysSorted(s.Rejected) {
		fmt.Fprintf(w, "  rejected %v: %v\n", reason, s.Rejected[reason])
	}
	for _, sr := range r.Splits {
		fmt.Fprintf(w, "%v: %v instances from %v songs\n", sr.Split, sr.Instances, sr.Songs)
		if sr.Instances == 0 {
			continue
		}
		fmt.Fprintf(w, "  distinct symbols: %.2f ± %.2f\n", sr.MeanDistinct, sr.StdDistinct)
		fmt.Fprintf(w, "  rest frames: %.1f%%, onset frames: %.1f%%\n", 100*sr.RestShare, 100*sr.OnsetShare)
		fmt.Fprintf(w, "  chord vocabulary: %v over %v frames\n", len(sr.Chords), sr.ChordFrames)
		for i, c := range sr.Chords {
			if i == 5 {
				break
			}
			fmt.Fprintf(w, "    %v: %v\n", c.Key, c.Count)
		}
	}
}
