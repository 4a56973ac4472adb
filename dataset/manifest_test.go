package dataset

import (
	"path/filepath"
	"testing"

	"github.com/jsphweid/melodex/config"
	"github.com/jsphweid/melodex/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestManifestRoundTrip(t *testing.T) {
	cfg := config.Default()
	cfg.Shift = true
	splits := Splits{"a": model.Train, "b": model.Eval, "c": model.Train}
	sources := model.SourceMap{"a": {"in/a.mid"}, "b": {"in/b.mid"}, "c": {"in/c.mid", "in/x/c.mid"}}
	summary := Summary{
		Songs:     3,
		Windows:   10,
		Accepted:  7,
		Rejected:  map[string]int{"jump": 3},
		PerSplit:  map[model.Split]int{model.Train: 5, model.Eval: 2},
		Anomalies: 1,
	}
	m := NewManifest(cfg, splits, sources, summary)

	assert := assert.New(t)
	assert.Len(m.RunID, 36)
	assert.Equal([]string{"a", "c"}, m.Splits[model.Train])
	assert.Equal([]string{"b"}, m.Splits[model.Eval])
	assert.Empty(m.Splits[model.Test])

	path := filepath.Join(t.TempDir(), "manifest.json")
	require.NoError(t, m.Write(path))
	read, err := ReadManifest(path)
	require.NoError(t, err)

	assert.Equal(m.RunID, read.RunID)
	assert.True(m.CreatedAt.Equal(read.CreatedAt))
	assert.Equal(cfg, read.Config)
	assert.Equal(sources, read.Sources)
	assert.Equal(summary, read.Summary)
}

func TestReadManifestMissing(t *testing.T) {
	_, err := ReadManifest(filepath.Join(t.TempDir(), "nope.json"))
	assert.Error(t, err)
}
