package model

import "gonum.org/v1/gonum/mat"

const PitchClasses = 12

// ChordMask is a set of active pitch classes, bit i for pitch class i.
type ChordMask uint16

func (m ChordMask) Has(pc int) bool {
	return m&(1<<uint(pc)) != 0
}

func (m ChordMask) With(pc int) ChordMask {
	return m | 1<<uint(pc%PitchClasses)
}

func (m ChordMask) Classes() []int {
	var res []int
	for pc := 0; pc < PitchClasses; pc++ {
		if m.Has(pc) {
			res = append(res, pc)
		}
	}
	return res
}

// ChordMatrix is a frames x 12 binary matrix kept as one mask per frame.
type ChordMatrix []ChordMask

func (c ChordMatrix) Frames() int {
	return len(c)
}

func (c ChordMatrix) NonZero() int {
	var n int
	for _, m := range c {
		n += len(m.Classes())
	}
	return n
}

func (c ChordMatrix) Dense() *mat.Dense {
	if len(c) == 0 {
		return &mat.Dense{}
	}
	d := mat.NewDense(len(c), PitchClasses, nil)
	for t, m := range c {
		for _, pc := range m.Classes() {
			d.Set(t, pc, 1)
		}
	}
	return d
}
