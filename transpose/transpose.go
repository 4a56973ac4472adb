package transpose

import (
	"math"

	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/model"
	"github.com/pkg/errors"
)

var ErrPitchOutOfRange = errors.New("transposed pitch out of midi range")

// Parts holds the note lists one song/shift pair builds its rolls from.
// Melody, Onset and Offset describe the same notes under different
// temporal alignment.
type Parts struct {
	Shift  int
	Melody model.Track
	Onset  model.Track
	Offset model.Track
	Chord  model.Track
}

// Shifts lists the transpositions to generate for every song.
func Shifts(augment bool) []int {
	if !augment {
		return []int{0}
	}
	var res []int
	for k := constants.MinShift; k <= constants.MaxShift; k++ {
		res = append(res, k)
	}
	return res
}

func shiftPitch(p, shift int) (int, error) {
	res := p + shift
	if res < 0 || res >= constants.NumPitches {
		return 0, errors.Wrapf(ErrPitchOutOfRange, "pitch %d shifted by %d", p, shift)
	}
	return res, nil
}

// Apply transposes melody and chords by shift and derives the onset,
// offset and chord-onset marker notes. The inputs are never modified.
func Apply(melody, chords model.Track, shift int, unitTime float64) (Parts, error) {
	parts := Parts{
		Shift:  shift,
		Melody: make(model.Track, 0, len(melody)),
		Onset:  make(model.Track, 0, len(melody)),
		Offset: make(model.Track, 0, len(melody)),
		Chord:  make(model.Track, 0, len(chords)),
	}

	for _, n := range melody {
		pitch, err := shiftPitch(n.Pitch, shift)
		if err != nil {
			return Parts{}, err
		}
		marker := math.Min(n.Duration(), unitTime)
		parts.Melody = append(parts.Melody, model.NoteEvent{Pitch: pitch, Start: n.Start, End: n.End})
		parts.Onset = append(parts.Onset, model.NoteEvent{Pitch: pitch, Start: n.Start, End: n.Start + marker})
		end := n.End + unitTime
		parts.Offset = append(parts.Offset, model.NoteEvent{Pitch: pitch, Start: end - marker, End: end})
	}

	for _, n := range chords {
		pitch, err := shiftPitch(n.Pitch, shift)
		if err != nil {
			return Parts{}, err
		}
		parts.Chord = append(parts.Chord, model.NoteEvent{Pitch: pitch, Start: n.Start, End: n.Start + unitTime})
	}
	return parts, nil
}
