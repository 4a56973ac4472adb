package file

import (
	"github.com/jsphweid/melodex/midi"
	"github.com/jsphweid/melodex/model"
)

// CreateSourceMap groups midi paths by song title, keeping their order.
func CreateSourceMap(paths []string) model.SourceMap {
	res := make(model.SourceMap)
	for _, p := range paths {
		title := midi.SongTitle(p)
		res[title] = append(res[title], p)
	}
	return res
}
