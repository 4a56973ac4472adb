package file

import (
	"testing"

	"github.com/jsphweid/melodex/model"
	"github.com/stretchr/testify/assert"
)

func TestCreateSourceMap(t *testing.T) {
	res := CreateSourceMap([]string{"in/a.mid", "in/b.midi", "in/more/a.mid"})
	assert.Equal(t, model.SourceMap{
		"a": {"in/a.mid", "in/more/a.mid"},
		"b": {"in/b.midi"},
	}, res)
}
