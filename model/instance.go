package model

import (
	"fmt"

	"github.com/jsphweid/melodex/constants"
	"github.com/pkg/errors"
)

var ErrInvalidInstance = errors.New("invalid instance")

// InstanceMeta identifies where an instance came from.
type InstanceMeta struct {
	Song     string
	Split    Split
	Shift    int
	KeyCount int
	Index    int
	Start    int
}

// Instance is one accepted window. Build it with NewInstance.
type Instance struct {
	InstanceMeta
	Pitch  []int
	Rhythm []int
	Chord  ChordMatrix
}

// Record is the persisted form of an instance.
type Record struct {
	Pitch  []int
	Rhythm []int
	Chord  ChordMatrix
}

func NewInstance(meta InstanceMeta, pitch, rhythm []int, chord ChordMatrix, pitchRange int) (Instance, error) {
	n := len(pitch)
	if n == 0 || len(rhythm) != n || len(chord) != n {
		return Instance{}, errors.Wrapf(ErrInvalidInstance,
			"length mismatch: pitch=%d rhythm=%d chord=%d", len(pitch), len(rhythm), len(chord))
	}
	for t, s := range pitch {
		if s < 0 || s > pitchRange+1 {
			return Instance{}, errors.Wrapf(ErrInvalidInstance, "symbol %d at frame %d outside 0..%d", s, t, pitchRange+1)
		}
	}
	for t, r := range rhythm {
		if r < 0 || r > 2 {
			return Instance{}, errors.Wrapf(ErrInvalidInstance, "rhythm %d at frame %d", r, t)
		}
	}
	return Instance{InstanceMeta: meta, Pitch: pitch, Rhythm: rhythm, Chord: chord}, nil
}

func (i Instance) Record() Record {
	return Record{Pitch: i.Pitch, Rhythm: i.Rhythm, Chord: i.Chord}
}

// ShiftLabel renders a transpose amount the way record names carry it: +0, +3, -2.
func ShiftLabel(shift int) string {
	if shift < 0 {
		return fmt.Sprintf("%d", shift)
	}
	return fmt.Sprintf("+%d", shift)
}

// Filename is <song>_<keycount>_<shift>_<index>.gob.
func (m InstanceMeta) Filename() string {
	return fmt.Sprintf("%s_%02d_%s_%02d%s", m.Song, m.KeyCount, ShiftLabel(m.Shift), m.Index, constants.RecordExt)
}
