package sample

import (
	"math"
	"sort"

	"github.com/jsphweid/melodex/model"
	"github.com/pkg/errors"
	"gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

const ticksPerQuarter = 960

const velocity = 100

// ChordOctaveBase is where rendered chord tones are placed (C3).
const ChordOctaveBase = 48

type tickEvent struct {
	tick uint32
	off  bool
	key  uint8
}

func toTicks(seconds, bpm float64) uint32 {
	return uint32(math.Round(seconds * bpm / 60 * ticksPerQuarter))
}

// FromTracks renders note lists into a type 1 SMF at a constant tempo:
// a conductor track followed by one track per note list.
func FromTracks(tracks []model.Track, bpm float64) (*smf.SMF, error) {
	res := smf.New()
	res.TimeFormat = smf.MetricTicks(ticksPerQuarter)

	var conductor smf.Track
	conductor.Add(0, smf.MetaTempo(bpm))
	conductor.Close(0)
	if err := res.Add(conductor); err != nil {
		return nil, errors.Wrap(err, "adding conductor track")
	}

	for i, notes := range tracks {
		var events []tickEvent
		for _, n := range notes {
			if n.Pitch < 0 || n.Pitch > 127 {
				return nil, errors.Errorf("track %d: pitch %d out of range", i, n.Pitch)
			}
			events = append(events,
				tickEvent{tick: toTicks(n.Start, bpm), key: uint8(n.Pitch)},
				tickEvent{tick: toTicks(n.End, bpm), off: true, key: uint8(n.Pitch)},
			)
		}
		// note offs go first so that repeated notes retrigger
		sort.SliceStable(events, func(a, b int) bool {
			if events[a].tick != events[b].tick {
				return events[a].tick < events[b].tick
			}
			return events[a].off && !events[b].off
		})

		var track smf.Track
		var last uint32
		for _, e := range events {
			delta := e.tick - last
			last = e.tick
			if e.off {
				track.Add(delta, midi.NoteOff(uint8(i%16), e.key))
			} else {
				track.Add(delta, midi.NoteOn(uint8(i%16), e.key, velocity))
			}
		}
		track.Close(0)
		if err := res.Add(track); err != nil {
			return nil, errors.Wrapf(err, "adding track %d", i)
		}
	}
	return res, nil
}

// Decode turns a record back into a melody and a chord note list.
// baseNote is added to every pitch symbol; unitTime is one frame in seconds.
func Decode(rec model.Record, pitchRange, baseNote int, unitTime float64) (melody, chords model.Track) {
	sustain, rest := pitchRange, pitchRange+1

	open := -1
	var openStart float64
	closeNote := func(t int) {
		if open >= 0 {
			melody = append(melody, model.NoteEvent{Pitch: open, Start: openStart, End: float64(t) * unitTime})
			open = -1
		}
	}
	for t, s := range rec.Pitch {
		switch {
		case s == sustain:
		case s == rest:
			closeNote(t)
		default:
			closeNote(t)
			open = s + baseNote
			openStart = float64(t) * unitTime
		}
	}
	closeNote(len(rec.Pitch))

	var prev model.ChordMask
	chordStart := 0
	flush := func(t int) {
		for _, pc := range prev.Classes() {
			chords = append(chords, model.NoteEvent{
				Pitch: ChordOctaveBase + pc,
				Start: float64(chordStart) * unitTime,
				End:   float64(t) * unitTime,
			})
		}
	}
	for t, m := range rec.Chord {
		if t == 0 || m != prev {
			flush(t)
			prev = m
			chordStart = t
		}
	}
	flush(len(rec.Chord))
	return melody, chords
}

// Create renders a record as a two instrument MIDI excerpt.
func Create(rec model.Record, pitchRange, baseNote int, unitTime, bpm float64) (*smf.SMF, error) {
	melody, chords := Decode(rec, pitchRange, baseNote, unitTime)
	return FromTracks([]model.Track{melody, chords}, bpm)
}
