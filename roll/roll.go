package roll

import (
	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/frame"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/transpose"
	"github.com/pkg/errors"
	"gonum.org/v1/gonum/mat"
)

var ErrTooFewTracks = errors.New("song needs a melody and a chord track")

// Roll is a binary pitch x frame activity matrix with NumPitches rows.
// A roll with zero frames has no backing matrix.
type Roll struct {
	m    *mat.Dense
	cols int
}

func newRoll(cols int) Roll {
	if cols <= 0 {
		return Roll{}
	}
	return Roll{m: mat.NewDense(constants.NumPitches, cols, nil), cols: cols}
}

// FromNotes marks [Index(start), Index(end)) of every note's row.
func FromNotes(notes model.Track, rate float64) Roll {
	r := newRoll(frame.Len(model.EndTime(notes), rate))
	for _, n := range notes {
		from := frame.Index(n.Start, rate)
		to := frame.Index(n.End, rate)
		if from < 0 {
			from = 0
		}
		if to > r.cols {
			to = r.cols
		}
		for t := from; t < to; t++ {
			r.m.Set(n.Pitch, t, 1)
		}
	}
	return r
}

func (r Roll) Len() int {
	return r.cols
}

func (r Roll) At(pitch, t int) float64 {
	return r.m.At(pitch, t)
}

// Active returns the active pitches at frame t, lowest first.
func (r Roll) Active(t int) []int {
	var res []int
	for p := 0; p < constants.NumPitches; p++ {
		if r.m.At(p, t) > 0 {
			res = append(res, p)
		}
	}
	return res
}

func (r Roll) Any(t int) bool {
	for p := 0; p < constants.NumPitches; p++ {
		if r.m.At(p, t) > 0 {
			return true
		}
	}
	return false
}

func (r Roll) NonZero() int {
	var n int
	for t := 0; t < r.cols; t++ {
		n += len(r.Active(t))
	}
	return n
}

// Fit zero-pads or truncates r to exactly timelen frames.
func (r Roll) Fit(timelen int) Roll {
	if timelen == r.cols {
		return r
	}
	res := newRoll(timelen)
	if res.m != nil && r.m != nil {
		res.m.Copy(r.m)
	}
	return res
}

// Slice returns a view of frames [start, end).
func (r Roll) Slice(start, end int) Roll {
	if end <= start {
		return Roll{}
	}
	return Roll{m: r.m.Slice(0, constants.NumPitches, start, end).(*mat.Dense), cols: end - start}
}

// Set holds the four rolls of one song/shift pair, all TimeLen frames long.
type Set struct {
	Melody  Roll
	Onset   Roll
	Offset  Roll
	Chord   Roll
	TimeLen int
}

// SplitTracks picks the melody (first) and chord (second) instruments.
func SplitTracks(song model.Song) (melody, chords model.Track, err error) {
	if len(song.Instruments) < 2 {
		return nil, nil, errors.Wrapf(ErrTooFewTracks, "%v has %d instrument tracks", song.Title, len(song.Instruments))
	}
	return song.Instruments[0], song.Instruments[1], nil
}

// Build renders the parts at rate. The common length is the shorter of the
// melody and offset rolls; every roll is fitted to it.
func Build(parts transpose.Parts, rate float64) Set {
	melody := FromNotes(parts.Melody, rate)
	onset := FromNotes(parts.Onset, rate)
	offset := FromNotes(parts.Offset, rate)
	chord := FromNotes(parts.Chord, rate)

	timelen := melody.Len()
	if offset.Len() < timelen {
		timelen = offset.Len()
	}

	return Set{
		Melody:  melody.Fit(timelen),
		Onset:   onset.Fit(timelen),
		Offset:  offset.Fit(timelen),
		Chord:   chord.Fit(timelen),
		TimeLen: timelen,
	}
}

// Rhythm adds up per frame whether the melody and the onset rolls are
// active, so 0 is silence, 1 a held note and 2 a note onset.
func Rhythm(melody, onset Roll) []int {
	res := make([]int, melody.Len())
	for t := range res {
		if melody.Any(t) {
			res[t]++
		}
		if onset.Any(t) {
			res[t]++
		}
	}
	return res
}
