package frame

import "math"

// tolerance absorbs float error so that e.g. 0.375*8 lands on frame 3
// instead of 2.9999999999.
const tolerance = 1e-9

// Rate returns the number of frames per second for the given grid.
// With the defaults (16 frames per bar, 4 beats, 120 bpm) this is 8.
func Rate(framePerBar, beatPerBar int, bpm float64) float64 {
	return (float64(framePerBar) / float64(beatPerBar)) * (bpm / 60)
}

// UnitTime is the duration of one frame in seconds.
func UnitTime(rate float64) float64 {
	return 1 / rate
}

// Index maps a time in seconds to the frame that contains it.
func Index(seconds, rate float64) int {
	return int(math.Floor(seconds*rate + tolerance))
}

// Len is the number of frames needed to hold notes ending at endSeconds.
func Len(endSeconds, rate float64) int {
	n := Index(endSeconds, rate)
	if n < 0 {
		return 0
	}
	return n
}
