package dataset

import (
	"context"
	"path/filepath"
	"testing"

	"github.com/jsphweid/melodex/config"
	"github.com/jsphweid/melodex/model"
	"github.com/pkg/errors"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unit = 0.125

type memorySink struct {
	insts  []model.Instance
	failAt int
	closed bool
}

func (m *memorySink) Put(inst model.Instance) error {
	if m.failAt > 0 && len(m.insts)+1 == m.failAt {
		return errors.New("disk full")
	}
	m.insts = append(m.insts, inst)
	return nil
}

func (m *memorySink) Close() error {
	m.closed = true
	return nil
}

type counter int

func (c *counter) Increment() {
	*c++
}

func scaleSong(title string, lowest int) model.Song {
	var melody model.Track
	for i := 0; i < 32; i++ {
		start := float64(2*i) * unit
		melody = append(melody, model.NoteEvent{Pitch: lowest + []int{0, 2, 4, 5, 7, 5, 4, 2}[i%8], Start: start, End: start + 2*unit})
	}
	var chords model.Track
	for i := 0; i < 8; i++ {
		start := float64(8*i) * unit
		for _, p := range []int{48, 52, 55} {
			chords = append(chords, model.NoteEvent{Pitch: p, Start: start, End: start + 8*unit})
		}
	}
	return model.Song{Title: title, Instruments: []model.Track{melody, chords}}
}

func reader(songs map[string]model.Song) SongReader {
	return func(path string) (model.Song, error) {
		song, ok := songs[path]
		if !ok {
			return model.Song{}, errors.Errorf("cannot parse %v", path)
		}
		song.Path = path
		return song, nil
	}
}

func TestRunCollectsInstances(t *testing.T) {
	songs := map[string]model.Song{
		"x/b.mid":     scaleSong("b", 60),
		"x/a.mid":     scaleSong("a", 60),
		"y/a.mid":     scaleSong("a", 62),
		"x/solo.mid":  {Title: "solo", Instruments: []model.Track{scaleSong("solo", 60).Instruments[0]}},
		"x/empty.mid": {Title: "empty"},
	}
	sink := &memorySink{}
	var progress counter
	a := Assembler{
		Config:   config.Default(),
		Splits:   Splits{"b": model.Test},
		Sink:     sink,
		Read:     reader(songs),
		Progress: &progress,
	}
	paths := []string{"x/b.mid", "y/a.mid", "x/solo.mid", "x/a.mid", "x/empty.mid", "x/broken.mid"}
	summary, err := a.Run(context.Background(), paths)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(6, int(progress))
	assert.Equal(3, summary.Songs)
	assert.Equal(3, summary.Skipped)
	assert.Equal(6, summary.Windows)
	assert.Equal(6, summary.Accepted)
	assert.Equal(map[model.Split]int{model.Train: 4, model.Test: 2}, summary.PerSplit)

	var names []string
	for _, inst := range sink.insts {
		names = append(names, filepath.Join(string(inst.Split), inst.Filename()))
	}
	assert.Equal([]string{
		"train/a_00_+0_00.gob",
		"train/a_00_+0_01.gob",
		"train/a_01_+0_00.gob",
		"train/a_01_+0_01.gob",
		"test/b_00_+0_00.gob",
		"test/b_00_+0_01.gob",
	}, names)
	// x/a.mid sorts before y/a.mid, which starts a tone higher
	assert.Equal(0, sink.insts[0].Pitch[0])
	assert.Equal(2, sink.insts[2].Pitch[0])
	assert.Equal(4, sink.insts[2].Pitch[2])
	assert.False(sink.closed)
}

func TestRunShiftsSkipOutOfRangePitches(t *testing.T) {
	// top note 124
	song := scaleSong("high", 117)
	a := Assembler{
		Config: config.Config{NumBars: 2, FramePerBar: 16, PitchRange: 128, Shift: true, BeatPerBar: 4, BPM: 120},
		Sink:   &memorySink{},
		Read:   reader(map[string]model.Song{"high.mid": song}),
	}
	summary, err := a.Run(context.Background(), []string{"high.mid"})
	require.NoError(t, err)
	// -5..+3
	assert.Equal(t, 9*2, summary.Accepted)
}

func TestRunStopsOnSinkError(t *testing.T) {
	a := Assembler{
		Config: config.Default(),
		Sink:   &memorySink{failAt: 2},
		Read:   reader(map[string]model.Song{"a.mid": scaleSong("a", 60)}),
	}
	_, err := a.Run(context.Background(), []string{"a.mid"})
	assert.ErrorContains(t, err, "disk full")
	assert.ErrorContains(t, err, "a_00_+0_01.gob")
}

func TestRunHonoursCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	sink := &memorySink{}
	a := Assembler{Config: config.Default(), Sink: sink, Read: reader(nil)}
	summary, err := a.Run(ctx, []string{"a.mid"})
	assert.ErrorIs(t, err, context.Canceled)
	assert.Equal(t, 0, summary.Songs)
	assert.Empty(t, sink.insts)
}
