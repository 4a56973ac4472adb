package chunk

import (
	"os"
	"path/filepath"

	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/melody"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/util"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

// Dataset is the consolidated form of one split: one-hot pitch matrices
// (frames x PitchRange+2) and dense chord matrices (frames x 12), aligned
// by position.
type Dataset struct {
	Split      model.Split
	PitchRange int
	Songs      []string
	Names      []string
	Pitch      []*mat.Dense
	Rhythm     [][]int
	Chord      []*mat.Dense
}

func (d *Dataset) Len() int {
	return len(d.Pitch)
}

// Record turns instance i back into symbols and chord masks.
func (d *Dataset) Record(i int) model.Record {
	rows, cols := d.Pitch[i].Dims()
	pitch := make([]int, rows)
	for t := range pitch {
		for s := 0; s < cols; s++ {
			if d.Pitch[i].At(t, s) != 0 {
				pitch[t] = s
				break
			}
		}
	}
	rows, _ = d.Chord[i].Dims()
	chords := make(model.ChordMatrix, rows)
	for t := range chords {
		for pc := 0; pc < model.PitchClasses; pc++ {
			if d.Chord[i].At(t, pc) != 0 {
				chords[t] = chords[t].With(pc)
			}
		}
	}
	return model.Record{Pitch: pitch, Rhythm: d.Rhythm[i], Chord: chords}
}

type Overview struct {
	Split     model.Split
	Filename  string
	Instances int
}

// Writer collects instances in memory and writes one file per split on
// Close.
type Writer struct {
	Dir        string
	PitchRange int

	datasets map[model.Split]*Dataset
	written  []Overview
}

func NewWriter(dir string, pitchRange int) (*Writer, error) {
	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, errors.Wrap(err, "creating output dir")
	}
	return &Writer{Dir: dir, PitchRange: pitchRange, datasets: make(map[model.Split]*Dataset)}, nil
}

func (w *Writer) Put(inst model.Instance) error {
	d, ok := w.datasets[inst.Split]
	if !ok {
		d = &Dataset{Split: inst.Split, PitchRange: w.PitchRange}
		w.datasets[inst.Split] = d
	}
	d.Songs = append(d.Songs, inst.Song)
	d.Names = append(d.Names, inst.Filename())
	d.Pitch = append(d.Pitch, melody.OneHot(inst.Pitch, w.PitchRange))
	d.Rhythm = append(d.Rhythm, inst.Rhythm)
	d.Chord = append(d.Chord, inst.Chord.Dense())
	return nil
}

func Filename(split model.Split) string {
	return string(split) + constants.RecordExt
}

func (w *Writer) Close() error {
	w.written = w.written[:0]
	for _, s := range model.AllSplits {
		d, ok := w.datasets[s]
		if !ok {
			d = &Dataset{Split: s, PitchRange: w.PitchRange}
		}
		path := filepath.Join(w.Dir, Filename(s))
		if err := util.CreateBinary(path, d); err != nil {
			return err
		}
		w.written = append(w.written, Overview{Split: s, Filename: Filename(s), Instances: d.Len()})
	}
	return nil
}

func (w *Writer) Overviews() []Overview {
	return w.written
}

func Read(path string) (*Dataset, error) {
	return util.ReadBinary[*Dataset](path)
}
