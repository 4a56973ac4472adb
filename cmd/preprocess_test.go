package cmd

import (
	"context"
	"os"
	"path/filepath"
	"testing"

	"github.com/jsphweid/melodex/bucket"
	"github.com/jsphweid/melodex/chunk"
	"github.com/jsphweid/melodex/config"
	"github.com/jsphweid/melodex/constants"
	"github.com/jsphweid/melodex/dataset"
	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/sample"
	log "github.com/sirupsen/logrus"
	logtest "github.com/sirupsen/logrus/hooks/test"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const unit = 0.125

func scaleSong() []model.Track {
	scale := []int{60, 62, 64, 65, 67, 65, 64, 62}
	var melody model.Track
	for i := 0; i < 32; i++ {
		start := float64(2*i) * unit
		melody = append(melody, model.NoteEvent{Pitch: scale[i%len(scale)], Start: start, End: start + 2*unit})
	}
	var chords model.Track
	voicings := [][]int{{48, 52, 55}, {43, 47, 50}}
	for i := 0; i < 8; i++ {
		start := float64(8*i) * unit
		for _, p := range voicings[i%2] {
			chords = append(chords, model.NoteEvent{Pitch: p, Start: start, End: start + 8*unit})
		}
	}
	return []model.Track{melody, chords}
}

func writeMidi(t *testing.T, path string, tracks []model.Track) {
	t.Helper()
	require.NoError(t, os.MkdirAll(filepath.Dir(path), 0755))
	s, err := sample.FromTracks(tracks, 120)
	require.NoError(t, err)
	require.NoError(t, s.WriteFile(path))
}

// writeFixtures lays out four playable songs, one of them twice, and a song
// with a single instrument.
func writeFixtures(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	for _, name := range []string{"a.mid", "b.mid", "c.mid", "d.MID", "more/a.mid"} {
		writeMidi(t, filepath.Join(dir, name), scaleSong())
	}
	writeMidi(t, filepath.Join(dir, "solo.mid"), scaleSong()[:1])
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("not midi"), 0644))
	return dir
}

func preprocessFixtures(t *testing.T, cfg config.Config) (string, dataset.Manifest) {
	t.Helper()
	out := filepath.Join(t.TempDir(), cfg.FolderName())
	manifest, err := Preprocess(context.Background(), cfg, writeFixtures(t), out, 0, false)
	require.NoError(t, err)
	return out, manifest
}

func TestPreprocessWritesRecordFiles(t *testing.T) {
	out, manifest := preprocessFixtures(t, config.Default())

	assert := assert.New(t)
	s := manifest.Summary
	assert.Equal(5, s.Songs)
	assert.Equal(1, s.Skipped)
	assert.Equal(10, s.Windows)
	assert.Equal(10, s.Accepted)
	assert.Equal(10, s.PerSplit[model.Train])
	assert.NotEmpty(manifest.RunID)
	assert.Equal([]string{"a", "b", "c", "d", "solo"}, manifest.Splits[model.Train])

	songs, err := bucket.ListSongs(out, model.Train)
	require.NoError(t, err)
	assert.Equal([]string{"a", "b", "c", "d"}, songs)

	names, err := bucket.ListRecords(out, model.Train, "a")
	require.NoError(t, err)
	assert.Equal([]string{"a_00_+0_00.gob", "a_00_+0_01.gob", "a_01_+0_00.gob", "a_01_+0_01.gob"}, names)

	rec, err := bucket.ReadRecord(filepath.Join(out, "train", "a", "a_00_+0_00.gob"))
	require.NoError(t, err)
	assert.Len(rec.Pitch, 33)
	assert.Equal([]int{0, 48, 2, 48}, rec.Pitch[:4])

	onDisk, err := dataset.ReadManifest(filepath.Join(out, constants.ManifestName))
	require.NoError(t, err)
	assert.Equal(manifest.RunID, onDisk.RunID)
	assert.Equal(manifest.Summary, onDisk.Summary)
}

func TestPreprocessTransposes(t *testing.T) {
	cfg := config.Default()
	cfg.Shift = true
	out, manifest := preprocessFixtures(t, cfg)

	assert := assert.New(t)
	assert.Equal(120, manifest.Summary.Accepted)
	names, err := bucket.ListRecords(out, model.Train, "b")
	require.NoError(t, err)
	assert.Len(names, 24)
	assert.Contains(names, "b_00_-5_00.gob")
	assert.Contains(names, "b_00_+6_01.gob")
	assert.Equal("instance_2bars_fpb16_48p_12keys", filepath.Base(out))
}

func TestPreprocessConsolidated(t *testing.T) {
	cfg := config.Default()
	cfg.OutputMode = config.OutputConsolidated
	out, manifest := preprocessFixtures(t, cfg)

	d, err := chunk.Read(filepath.Join(out, "train.gob"))
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(manifest.Summary.Accepted, d.Len())
	assert.Equal("a_00_+0_00.gob", d.Names[0])
	r, c := d.Pitch[0].Dims()
	assert.Equal(33, r)
	assert.Equal(50, c)

	for _, s := range []model.Split{model.Eval, model.Test} {
		d, err := chunk.Read(filepath.Join(out, chunk.Filename(s)))
		require.NoError(t, err)
		assert.Equal(0, d.Len())
	}
}

func TestPreprocessSplitsAreDeterministic(t *testing.T) {
	cfg := config.Default()
	cfg.DataRatio = config.Ratio{Train: 0.4, Eval: 0.4, Test: 0.2}
	cfg.Seed = 7
	input := writeFixtures(t)

	first, err := Preprocess(context.Background(), cfg, input, t.TempDir(), 0, false)
	require.NoError(t, err)
	second, err := Preprocess(context.Background(), cfg, input, t.TempDir(), 0, false)
	require.NoError(t, err)

	assert := assert.New(t)
	assert.Equal(first.Splits, second.Splits)
	assert.Len(first.Splits[model.Eval], 2)
	assert.Len(first.Splits[model.Train], 3-len(first.Splits[model.Test]))
}

func TestPreprocessMaxNum(t *testing.T) {
	manifest, err := Preprocess(context.Background(), config.Default(), writeFixtures(t), t.TempDir(), 2, false)
	require.NoError(t, err)
	// a.mid and b.mid
	assert.Equal(t, 2, manifest.Summary.Songs)
}

func TestPreprocessStopsOnCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := Preprocess(ctx, config.Default(), writeFixtures(t), t.TempDir(), 0, false)
	assert.ErrorIs(t, err, context.Canceled)
}

func TestPreprocessLogsWrittenOutput(t *testing.T) {
	hook := logtest.NewGlobal()
	defer log.StandardLogger().ReplaceHooks(make(log.LevelHooks))

	messages := func() map[string][]log.Fields {
		res := make(map[string][]log.Fields)
		for _, e := range hook.AllEntries() {
			res[e.Message] = append(res[e.Message], e.Data)
		}
		return res
	}

	preprocessFixtures(t, config.Default())
	written := messages()["wrote record files"]
	require.Len(t, written, 1)
	assert.Equal(t, 10, written[0]["records"])

	hook.Reset()
	cfg := config.Default()
	cfg.OutputMode = config.OutputConsolidated
	preprocessFixtures(t, cfg)
	splits := messages()["wrote split file"]
	require.Len(t, splits, 3)
	assert.Equal(t, model.Train, splits[0]["split"])
	assert.Equal(t, "train.gob", splits[0]["file"])
	assert.Equal(t, 10, splits[0]["instances"])
	assert.Equal(t, 0, splits[2]["instances"])
}
