package melody

import (
	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/roll"
	"github.com/jsphweid/melodex/util"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	"gonum.org/v1/gonum/mat"
)

var (
	ErrRestRun = errors.New("too many consecutive rests")
	ErrJump    = errors.New("onset jump larger than an octave")
)

// Encoder turns one window into pitch symbols. Symbols 0..PitchRange-1 are
// onsets relative to the window's base note, PitchRange is a held note and
// PitchRange+1 a rest.
type Encoder struct {
	PitchRange int
	Log        log.FieldLogger
}

func (e Encoder) Sustain() int {
	return e.PitchRange
}

func (e Encoder) Rest() int {
	return e.PitchRange + 1
}

// Result is an encoded window. Anomalies lists frames whose rhythm value
// disagreed with the onset roll.
type Result struct {
	Symbols   []int
	Anomalies []int
}

// BaseNote is the octave floor of the lowest onset in the window: the C at or
// below it, or 0 for the full 128 pitch range. highest is the top onset.
// ok is false when the window has no onset at all.
func BaseNote(onset roll.Roll, pitchRange int) (base, highest int, ok bool) {
	lowest := constants.NumPitches
	highest = -1
	for t := 0; t < onset.Len(); t++ {
		active := onset.Active(t)
		if len(active) == 0 {
			continue
		}
		if active[0] < lowest {
			lowest = active[0]
		}
		if top := active[len(active)-1]; top > highest {
			highest = top
		}
	}
	if highest < 0 {
		return 0, 0, false
	}
	if pitchRange >= constants.NumPitches {
		return 0, highest, true
	}
	return 12 * (lowest / 12), highest, true
}

// Encode emits one symbol per frame of the window. It stops with ErrJump
// when an onset lands more than an octave from the previous one and with
// ErrRestRun when the rest run reaches MaxContinuousRest.
func (e Encoder) Encode(onset roll.Roll, rhythm []int, base int) (Result, error) {
	var res Result
	res.Symbols = make([]int, 0, onset.Len())

	var prev, rests int
	seenOnset := false
	for t := 0; t < onset.Len(); t++ {
		active := onset.Active(t)
		switch {
		case len(active) > 0:
			// the lowest sounding onset is the melody note
			symbol := active[0] - base
			res.Symbols = append(res.Symbols, symbol)
			if seenOnset && util.Abs(symbol-prev) > constants.MaxOnsetJump {
				return res, errors.Wrapf(ErrJump, "frame %d: %d -> %d", t, prev, symbol)
			}
			seenOnset = true
			prev = symbol
			rests = 0
		case rhythm[t] == 1:
			res.Symbols = append(res.Symbols, e.Sustain())
		case rhythm[t] == 0:
			res.Symbols = append(res.Symbols, e.Rest())
			rests++
			if rests >= constants.MaxContinuousRest {
				return res, errors.Wrapf(ErrRestRun, "frame %d", t)
			}
		default:
			res.Anomalies = append(res.Anomalies, t)
			e.logger().WithFields(log.Fields{"frame": t, "rhythm": rhythm[t]}).Warn("rhythm value without onset")
			res.Symbols = append(res.Symbols, e.Sustain())
		}
	}
	return res, nil
}

func (e Encoder) logger() log.FieldLogger {
	if e.Log == nil {
		return log.StandardLogger()
	}
	return e.Log
}

// OneHot expands symbols into a len(symbols) x pitchRange+2 matrix.
func OneHot(symbols []int, pitchRange int) *mat.Dense {
	if len(symbols) == 0 {
		return &mat.Dense{}
	}
	res := mat.NewDense(len(symbols), pitchRange+2, nil)
	for i, s := range symbols {
		res.Set(i, s, 1)
	}
	return res
}
