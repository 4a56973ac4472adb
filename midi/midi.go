package midi

import (
	"bytes"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/jsphweid/melodex/model"
	"github.com/pkg/errors"
	log "github.com/sirupsen/logrus"
	gomidi "gitlab.com/gomidi/midi/v2"
	"gitlab.com/gomidi/midi/v2/smf"
)

func ReadMidiFile(filepath string) (s *smf.SMF, e error) {
	// handle panics
	// https://github.com/gomidi/midi/issues/20
	defer func() {
		if r := recover(); r != nil {
			s = nil
			e = fmt.Errorf("panic parsing midi file: %v", r)
		}
	}()

	dat, err := os.ReadFile(filepath)
	if err != nil {
		return nil, errors.Wrap(err, "error reading midi file")
	}
	res, err := smf.ReadFrom(bytes.NewReader(dat))
	if err != nil {
		return nil, errors.Wrap(err, "error parsing midi file")
	}
	return res, nil
}

// SongTitle is the file name without directory or extension.
func SongTitle(path string) string {
	base := filepath.Base(path)
	return strings.TrimSuffix(base, filepath.Ext(base))
}

func ReadSong(path string) (model.Song, error) {
	parsed, err := ReadMidiFile(path)
	if err != nil {
		return model.Song{}, err
	}
	return model.Song{
		Title:       SongTitle(path),
		Path:        path,
		Instruments: Instruments(parsed),
	}, nil
}

// Instruments returns one note list per channel of every track, in track
// order and then in order of each channel's first note. Tracks without notes
// (tempo maps, lyrics) are not instruments.
func Instruments(s *smf.SMF) []model.Track {
	var res []model.Track
	for i, events := range s.Tracks {
		res = append(res, trackNotes(s, i, events)...)
	}
	return res
}

type noteKey struct {
	channel uint8
	key     uint8
}

// channelNotes collects the notes of one channel of a track.
type channelNotes struct {
	channels []uint8
	notes    map[uint8]model.Track
}

func (c *channelNotes) seen(channel uint8) {
	if _, ok := c.notes[channel]; !ok {
		c.channels = append(c.channels, channel)
		c.notes[channel] = nil
	}
}

func (c *channelNotes) add(channel, key uint8, start, end float64) {
	if end <= start {
		return
	}
	c.notes[channel] = append(c.notes[channel], model.NoteEvent{Pitch: int(key), Start: start, End: end})
}

func trackNotes(s *smf.SMF, trackNum int, events smf.Track) []model.Track {
	found := channelNotes{notes: make(map[uint8]model.Track)}
	pressed := make(map[noteKey]float64)

	var absTicks int64
	for _, event := range events {
		absTicks += int64(event.Delta)
		seconds := float64(s.TimeAt(absTicks)) / 1e6
		msg := gomidi.Message(event.Message)
		var channel, key, velocity uint8
		switch {
		case msg.GetNoteStart(&channel, &key, &velocity):
			found.seen(channel)
			k := noteKey{channel, key}
			if start, ok := pressed[k]; ok {
				log.WithFields(log.Fields{"track": trackNum, "channel": channel, "key": key}).Debug("note pressed twice, closing previous")
				found.add(channel, key, start, seconds)
			}
			pressed[k] = seconds
		case msg.GetNoteEnd(&channel, &key):
			k := noteKey{channel, key}
			start, ok := pressed[k]
			if !ok {
				log.WithFields(log.Fields{"track": trackNum, "channel": channel, "key": key}).Debug("note off for unpressed note")
				continue
			}
			delete(pressed, k)
			found.add(channel, key, start, seconds)
		}
	}
	for k := range pressed {
		log.WithFields(log.Fields{"track": trackNum, "channel": k.channel, "key": k.key}).Warn("missing note off")
	}

	res := make([]model.Track, 0, len(found.channels))
	for _, ch := range found.channels {
		notes := found.notes[ch]
		if len(notes) == 0 {
			continue
		}
		sort.SliceStable(notes, func(i, j int) bool {
			if notes[i].Start != notes[j].Start {
				return notes[i].Start < notes[j].Start
			}
			return notes[i].Pitch < notes[j].Pitch
		})
		res = append(res, notes)
	}
	return res
}
