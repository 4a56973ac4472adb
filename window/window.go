package window

import (
	"github.com/jsphweid/melodex/chord"
	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/melody"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/roll"
	"github.com/jsphweid/melodex/util"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
)

type Reason string

const (
	Accepted           Reason = "accepted"
	RejectChordSparse  Reason = "chord_sparse"
	RejectSilent       Reason = "silent"
	RejectNoOnset      Reason = "no_onset"
	RejectPitchRange   Reason = "pitch_range"
	RejectRestRun      Reason = "rest_run"
	RejectJump         Reason = "jump"
	RejectLowDiversity Reason = "low_diversity"
	RejectInvalid      Reason = "invalid"
)

type Options struct {
	InstanceLen int
	Stride      int
	PitchRange  int
}

// Stats counts what happened to the windows of one or more songs.
type Stats struct {
	Windows   int
	Accepted  int
	Rejected  map[Reason]int
	Anomalies int
}

func (s *Stats) Add(o Stats) {
	s.Windows += o.Windows
	s.Accepted += o.Accepted
	s.Anomalies += o.Anomalies
	for r, n := range o.Rejected {
		s.reject(r, n)
	}
}

func (s *Stats) reject(r Reason, n int) {
	if s.Rejected == nil {
		s.Rejected = make(map[Reason]int)
	}
	s.Rejected[r] += n
}

type Windower struct {
	Options
	Log log.FieldLogger
}

// Starts lists the first frame of every window that fits in timelen frames.
// Each window spans InstanceLen+1 frames; the extra frame holds the next
// onset.
func (w Windower) Starts(timelen int) []int {
	var res []int
	for i := 0; i < timelen-(w.InstanceLen+1); i += w.Stride {
		res = append(res, i)
	}
	return res
}

// Extract slides over the rolls and returns every accepted instance. meta
// carries the song, split, shift and key count; Index and Start are filled
// per window.
func (w Windower) Extract(set roll.Set, meta model.InstanceMeta) ([]model.Instance, Stats) {
	var res []model.Instance
	var stats Stats
	for _, start := range w.Starts(set.TimeLen) {
		m := meta
		m.Start = start
		m.Index = start / w.Stride

		inst, reason, anomalies := w.Evaluate(set, m)
		stats.Windows++
		stats.Anomalies += anomalies
		if reason != Accepted {
			stats.reject(reason, 1)
			continue
		}
		stats.Accepted++
		res = append(res, inst)
	}
	return res, stats
}

// Evaluate runs the filters and, when they all pass, encodes the window
// starting at meta.Start.
func (w Windower) Evaluate(set roll.Set, meta model.InstanceMeta) (model.Instance, Reason, int) {
	end := meta.Start + w.InstanceLen + 1
	melodyWin := set.Melody.Slice(meta.Start, end)
	onsetWin := set.Onset.Slice(meta.Start, end)
	chordWin := set.Chord.Slice(meta.Start, end)

	if chordWin.NonZero() < constants.MinChordCells {
		return model.Instance{}, RejectChordSparse, 0
	}

	rhythm := roll.Rhythm(melodyWin, onsetWin)
	// more than 75% of the window is silence
	if util.CountNonZero(rhythm) < w.InstanceLen/4 {
		return model.Instance{}, RejectSilent, 0
	}

	base, highest, ok := melody.BaseNote(onsetWin, w.PitchRange)
	if !ok {
		return model.Instance{}, RejectNoOnset, 0
	}
	if w.PitchRange < constants.NumPitches && highest-base >= w.PitchRange {
		return model.Instance{}, RejectPitchRange, 0
	}

	logger := w.logger().WithFields(log.Fields{"song": meta.Song, "shift": meta.Shift, "start": meta.Start})
	enc := melody.Encoder{PitchRange: w.PitchRange, Log: logger}
	encoded, err := enc.Encode(onsetWin, rhythm, base)
	anomalies := len(encoded.Anomalies)
	switch {
	case errors.Is(err, melody.ErrJump):
		return model.Instance{}, RejectJump, anomalies
	case errors.Is(err, melody.ErrRestRun):
		return model.Instance{}, RejectRestRun, anomalies
	}

	if util.Distinct(encoded.Symbols) < constants.MinDistinctSymbols {
		return model.Instance{}, RejectLowDiversity, anomalies
	}

	inst, err := model.NewInstance(meta, encoded.Symbols, rhythm, chord.Align(chordWin), w.PitchRange)
	if err != nil {
		logger.WithError(err).Error("dropping window")
		return model.Instance{}, RejectInvalid, anomalies
	}
	return inst, Accepted, anomalies
}

func (w Windower) logger() log.FieldLogger {
	if w.Log == nil {
		return log.StandardLogger()
	}
	return w.Log
}
