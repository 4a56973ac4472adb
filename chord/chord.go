package chord

import (
	"fmt"
	"strings"

	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/roll"
)

// Mask builds the pitch class set of the notes sounding at a chord onset.
// The lowest note is the bass and is left out.
func Mask(active []int) model.ChordMask {
	var m model.ChordMask
	if len(active) < 2 {
		return m
	}
	for _, p := range active[1:] {
		m = m.With(p % model.PitchClasses)
	}
	return m
}

// Align returns one pitch class vector per frame of the chord onset roll.
// A frame without an onset repeats the previous frame; frame 0 starts empty.
func Align(onsets roll.Roll) model.ChordMatrix {
	res := make(model.ChordMatrix, onsets.Len())
	var prev model.ChordMask
	for t := range res {
		if active := onsets.Active(t); len(active) > 0 {
			prev = Mask(active)
		}
		res[t] = prev
	}
	return res
}

// Key renders a pitch class set as "0-4-7".
func Key(m model.ChordMask) string {
	classes := m.Classes()
	parts := make([]string, len(classes))
	for i, pc := range classes {
		parts[i] = fmt.Sprintf("%v", pc)
	}
	return strings.Join(parts, "-")
}
