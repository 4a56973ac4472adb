package chunk

import (
	"path/filepath"
	"testing"

	"github.com/jsphweid/melodex/model"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteAndRead(t *testing.T) {
	dir := t.TempDir()
	w, err := NewWriter(dir, 48)
	require.NoError(t, err)

	inst, err := model.NewInstance(
		model.InstanceMeta{Song: "a", Split: model.Train, Index: 1},
		[]int{0, 48, 7, 49},
		[]int{2, 1, 2, 0},
		model.ChordMatrix{0, 0b10010001, 0b10010001, 0b10010001},
		48,
	)
	require.NoError(t, err)
	require.NoError(t, w.Put(inst))
	require.NoError(t, w.Close())

	assert := assert.New(t)
	assert.Equal([]Overview{
		{Split: model.Train, Filename: "train.gob", Instances: 1},
		{Split: model.Eval, Filename: "eval.gob", Instances: 0},
		{Split: model.Test, Filename: "test.gob", Instances: 0},
	}, w.Overviews())

	d, err := Read(filepath.Join(dir, "train.gob"))
	require.NoError(t, err)
	require.Equal(t, 1, d.Len())
	assert.Equal([]string{"a"}, d.Songs)
	assert.Equal([]string{"a_00_+0_01.gob"}, d.Names)

	r, c := d.Pitch[0].Dims()
	assert.Equal(4, r)
	assert.Equal(50, c)
	assert.Equal(1.0, d.Pitch[0].At(2, 7))
	assert.Equal(1.0, d.Pitch[0].At(3, 49))

	r, c = d.Chord[0].Dims()
	assert.Equal(4, r)
	assert.Equal(12, c)
	assert.Equal(0.0, d.Chord[0].At(0, 0))
	assert.Equal(1.0, d.Chord[0].At(1, 0))
	assert.Equal(1.0, d.Chord[0].At(1, 4))
	assert.Equal(1.0, d.Chord[0].At(1, 7))

	assert.Equal(inst.Record(), d.Record(0))

	empty, err := Read(filepath.Join(dir, "eval.gob"))
	require.NoError(t, err)
	assert.Equal(0, empty.Len())
}
