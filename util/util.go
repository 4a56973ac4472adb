package util

import (
	"bytes"
	"encoding/gob"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pkg/errors"
	"golang.org/x/exp/constraints"
)

func IsMidiPath(s string) bool {
	lower := strings.ToLower(s)
	return strings.HasSuffix(lower, ".mid") || strings.HasSuffix(lower, ".midi")
}

// GatherAllMidiPaths walks path and returns every midi file in lexical
// order, at most maxNum of them when maxNum > 0.
func GatherAllMidiPaths(path string, maxNum int) ([]string, error) {
	var res []string
	walk := func(s string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() && IsMidiPath(s) {
			res = append(res, s)
		}
		return nil
	}
	if err := filepath.WalkDir(path, walk); err != nil {
		return nil, errors.Wrapf(err, "walking %v", path)
	}
	sort.Strings(res)
	if maxNum > 0 && len(res) > maxNum {
		res = res[:maxNum]
	}
	return res, nil
}

func GetKeys[A constraints.Ordered, B any](m map[A]B) []A {
	keys := make([]A, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}
	return keys
}

func GetKeysSorted[A constraints.Ordered, B any](m map[A]B) []A {
	keys := GetKeys(m)
	sort.Slice(keys, func(i, j int) bool {
		return keys[i] < keys[j]
	})
	return keys
}

func CreateBinary(filename string, data any) error {
	buf := new(bytes.Buffer)
	if err := gob.NewEncoder(buf).Encode(data); err != nil {
		return errors.Wrapf(err, "encoding %v", filename)
	}
	if err := os.WriteFile(filename, buf.Bytes(), 0644); err != nil {
		return errors.Wrapf(err, "writing %v", filename)
	}
	return nil
}

func ReadBinary[A any](path string) (A, error) {
	var data A
	f, err := os.Open(path)
	if err != nil {
		return data, errors.Wrap(err, "could not load binary file")
	}
	defer f.Close()

	if err := gob.NewDecoder(f).Decode(&data); err != nil {
		return data, errors.Wrapf(err, "could not decode %v", path)
	}
	return data, nil
}

func Distinct[A comparable](vals []A) int {
	seen := make(map[A]struct{}, len(vals))
	for _, v := range vals {
		seen[v] = struct{}{}
	}
	return len(seen)
}

func CountNonZero[A constraints.Integer | constraints.Float](nums []A) int {
	var n int
	for _, v := range nums {
		if v != 0 {
			n++
		}
	}
	return n
}

func Abs[A constraints.Signed](n A) A {
	if n < 0 {
		return -n
	}
	return n
}

func Sum[A constraints.Integer](nums []A) uint64 {
	var total uint64
	for _, v := range nums {
		total += uint64(v)
	}
	return total
}
