package dataset

import (
	"context"
	"sort"

	"github.com/jsphweid/melodex/config"
	"github.com/jsphweid/melodex/midi"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/roll"
	"github.com/jsphweid/melodex/transpose"
	"github.com/jsphweid/melodex/window"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

// Sink receives every accepted instance.
type Sink interface {
	Put(inst model.Instance) error
	Close() error
}

type Progress interface {
	Increment()
}

type SongReader func(path string) (model.Song, error)

type Summary struct {
	Songs     int                 `json:"songs"`
	Skipped   int                 `json:"skipped"`
	Windows   int                 `json:"windows"`
	Accepted  int                 `json:"accepted"`
	Rejected  map[string]int      `json:"rejected"`
	Anomalies int                 `json:"anomalies"`
	PerSplit  map[model.Split]int `json:"per_split"`
}

type Assembler struct {
	Config   config.Config
	Splits   Splits
	Sink     Sink
	Read     SongReader
	Progress Progress
	Log      log.FieldLogger

	keyCounts map[string]int
	stats     window.Stats
	summary   Summary
}

func (a *Assembler) logger() log.FieldLogger {
	if a.Log == nil {
		return log.StandardLogger()
	}
	return a.Log
}

// sortPaths orders files by song title, then path.
func sortPaths(paths []string) []string {
	res := append([]string(nil), paths...)
	sort.SliceStable(res, func(i, j int) bool {
		ti, tj := midi.SongTitle(res[i]), midi.SongTitle(res[j])
		if ti != tj {
			return ti < tj
		}
		return res[i] < res[j]
	})
	return res
}

// Run processes every file in song order and hands accepted instances to
// the sink. Bad songs are logged and skipped; a sink failure stops the run.
func (a *Assembler) Run(ctx context.Context, paths []string) (Summary, error) {
	if a.Read == nil {
		a.Read = midi.ReadSong
	}
	a.keyCounts = make(map[string]int)
	a.stats = window.Stats{}
	a.summary = Summary{PerSplit: make(map[model.Split]int)}

	windower := window.Windower{
		Options: window.Options{
			InstanceLen: a.Config.InstanceLen(),
			Stride:      a.Config.Stride(),
			PitchRange:  a.Config.PitchRange,
		},
		Log: a.logger(),
	}

	for i, path := range sortPaths(paths) {
		if err := ctx.Err(); err != nil {
			return a.finish(), err
		}
		a.logger().WithFields(log.Fields{"file": path}).Debugf("Processing %v of %v midi files", i+1, len(paths))
		err := a.processFile(windower, path)
		if a.Progress != nil {
			a.Progress.Increment()
		}
		if err != nil {
			return a.finish(), err
		}
	}
	return a.finish(), nil
}

func (a *Assembler) finish() Summary {
	s := a.summary
	s.Windows = a.stats.Windows
	s.Accepted = a.stats.Accepted
	s.Anomalies = a.stats.Anomalies
	s.Rejected = make(map[string]int, len(a.stats.Rejected))
	for r, n := range a.stats.Rejected {
		s.Rejected[string(r)] = n
	}
	return s
}

func (a *Assembler) skip(path string, err error) {
	a.summary.Skipped++
	a.logger().WithFields(log.Fields{"file": path}).WithError(err).Warn("skipping song")
}

func (a *Assembler) processFile(windower window.Windower, path string) error {
	song, err := a.Read(path)
	if err != nil {
		a.skip(path, err)
		return nil
	}
	melodyTrack, chordTrack, err := roll.SplitTracks(song)
	if err != nil {
		a.skip(path, err)
		return nil
	}

	split := a.Splits.Of(song.Title)
	key := string(split) + "/" + song.Title
	keyCount := a.keyCounts[key]
	a.keyCounts[key]++
	a.summary.Songs++

	rate := a.Config.FrameRate()
	unit := a.Config.UnitTime()
	for _, shift := range transpose.Shifts(a.Config.Shift) {
		fields := log.Fields{"song": song.Title, "split": split, "shift": shift}
		parts, err := transpose.Apply(melodyTrack, chordTrack, shift, unit)
		if err != nil {
			a.logger().WithFields(fields).WithError(err).Warn("skipping shift")
			continue
		}
		set := roll.Build(parts, rate)
		meta := model.InstanceMeta{Song: song.Title, Split: split, Shift: shift, KeyCount: keyCount}
		insts, stats := windower.Extract(set, meta)
		a.stats.Add(stats)
		a.logger().WithFields(fields).Debugf("%v of %v windows accepted", stats.Accepted, stats.Windows)

		for _, inst := range insts {
			if err := a.Sink.Put(inst); err != nil {
				return errors.Wrapf(err, "storing %v", inst.Filename())
			}
			a.summary.PerSplit[split]++
		}
	}
	return nil
}
