package chord

import (
	"testing"

	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/roll"
	"github.com/stretchr/testify/assert"
)

const rate = 8.0

func onsetRoll(notes model.Track) roll.Roll {
	return roll.FromNotes(notes, rate)
}

func TestMaskDropsBass(t *testing.T) {
	assert := assert.New(t)
	// C2 bass under an E minor triad
	assert.Equal("4-7-11", Key(Mask([]int{36, 52, 55, 59})))
	assert.Equal("", Key(Mask([]int{36})))
	assert.Equal("", Key(Mask(nil)))
	// octave doublings collapse
	assert.Equal("0-7", Key(Mask([]int{36, 48, 55, 60})))
}

func TestAlignCarriesForward(t *testing.T) {
	r := onsetRoll(model.Track{
		{Pitch: 36, Start: 0.25, End: 0.375},
		{Pitch: 52, Start: 0.25, End: 0.375},
		{Pitch: 55, Start: 0.25, End: 0.375},
		{Pitch: 43, Start: 0.625, End: 0.75},
		{Pitch: 50, Start: 0.625, End: 0.75},
		{Pitch: 59, Start: 0.625, End: 0.75},
	}).Fit(8)

	m := Align(r)
	assert := assert.New(t)
	assert.Equal(8, m.Frames())
	assert.Equal(model.ChordMask(0), m[0])
	assert.Equal(model.ChordMask(0), m[1])
	assert.Equal("4-7", Key(m[2]))
	assert.Equal("4-7", Key(m[4]))
	assert.Equal("2-11", Key(m[5]))
	assert.Equal("2-11", Key(m[7]))
}

// Every frame without a chord onset repeats the frame before it.
func TestAlignCarryForwardLaw(t *testing.T) {
	notes := model.Track{
		{Pitch: 48, Start: 0, End: 0.125}, {Pitch: 52, Start: 0, End: 0.125}, {Pitch: 55, Start: 0, End: 0.125},
		{Pitch: 41, Start: 1, End: 1.125}, {Pitch: 57, Start: 1, End: 1.125}, {Pitch: 60, Start: 1, End: 1.125},
		{Pitch: 43, Start: 1.5, End: 1.625}, {Pitch: 59, Start: 1.5, End: 1.625},
	}
	r := onsetRoll(notes).Fit(24)
	m := Align(r)
	for t2 := 1; t2 < m.Frames(); t2++ {
		if !r.Any(t2) {
			assert.Equal(t, m[t2-1], m[t2], "frame %d", t2)
		}
	}
}

func TestKey(t *testing.T) {
	m := model.ChordMask(0).With(7).With(0).With(4)
	assert.Equal(t, "0-4-7", Key(m))
}
