package bucket

import (
	"os"
	"path/filepath"
	"regexp"
	"sort"

	"github.com/jsphweid/melodex/model"
	"github.com/jsphweid/melodex/util"
	"github.com/pkg/errors"
)

var recordPattern = regexp.MustCompile(`^.+_\d\d_[+-]\d+_\d\d+\.gob$`)

// Writer stores each instance as its own record file under
// <dir>/<split>/<song>/.
type Writer struct {
	Dir string

	written int
}

func NewWriter(dir string) (*Writer, error) {
	for _, s := range model.AllSplits {
		if err := os.MkdirAll(filepath.Join(dir, string(s)), 0755); err != nil {
			return nil, errors.Wrap(err, "creating split dirs")
		}
	}
	return &Writer{Dir: dir}, nil
}

func (w *Writer) Put(inst model.Instance) error {
	songDir := filepath.Join(w.Dir, string(inst.Split), inst.Song)
	if err := os.MkdirAll(songDir, 0755); err != nil {
		return errors.Wrapf(err, "creating %v", songDir)
	}
	path := filepath.Join(songDir, inst.Filename())
	if _, err := os.Stat(path); err == nil {
		return errors.Errorf("record %v already exists", path)
	}
	if err := util.CreateBinary(path, inst.Record()); err != nil {
		return err
	}
	w.written++
	return nil
}

func (w *Writer) Close() error {
	return nil
}

func (w *Writer) Written() int {
	return w.written
}

// DeleteAll removes the split folders of a previous run.
func DeleteAll(dir string) error {
	for _, s := range model.AllSplits {
		if err := os.RemoveAll(filepath.Join(dir, string(s))); err != nil {
			return errors.Wrapf(err, "removing %v", s)
		}
	}
	return nil
}

func ReadRecord(path string) (model.Record, error) {
	return util.ReadBinary[model.Record](path)
}

// ListSongs returns the song folders of a split, sorted.
func ListSongs(dir string, split model.Split) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(dir, string(split)))
	if err != nil {
		return nil, errors.Wrapf(err, "reading split %v", split)
	}
	var res []string
	for _, e := range entries {
		if e.IsDir() {
			res = append(res, e.Name())
		}
	}
	sort.Strings(res)
	return res, nil
}

// ListRecords returns the record file names of one song, sorted.
func ListRecords(dir string, split model.Split, song string) ([]string, error) {
	entries, err := os.ReadDir(filepath.Join(dir, string(split), song))
	if err != nil {
		return nil, errors.Wrapf(err, "reading song %v", song)
	}
	var res []string
	for _, e := range entries {
		if !e.IsDir() && recordPattern.MatchString(e.Name()) {
			res = append(res, e.Name())
		}
	}
	sort.Strings(res)
	return res, nil
}
