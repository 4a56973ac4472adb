package dataset

import (
	"math/rand/v2"
	"sort"

	"github.com/jsphweid/melodex/config"
	"github.com/jsphweid/melodex/model"
	"gonum.org/v1/gonum/stat/sampleuv"
)

// Splits maps a song title to its split. Titles not present are train.
type Splits map[string]model.Split

func (s Splits) Of(title string) model.Split {
	if split, ok := s[title]; ok {
		return split
	}
	return model.Train
}

func (s Splits) Members(split model.Split) []string {
	var res []string
	for title, sp := range s {
		if sp == split {
			res = append(res, title)
		}
	}
	sort.Strings(res)
	return res
}

// NewSource is the split sampler's generator for a seed.
func NewSource(seed uint64) rand.Source {
	return rand.NewPCG(seed, seed)
}

func sample(cands []string, n int, src rand.Source) (picked, rest []string) {
	if n <= 0 || len(cands) == 0 {
		return nil, cands
	}
	if n > len(cands) {
		n = len(cands)
	}
	idxs := make([]int, n)
	sampleuv.WithoutReplacement(idxs, len(cands), src)
	chosen := make(map[int]bool, n)
	for _, i := range idxs {
		chosen[i] = true
	}
	for i, c := range cands {
		if chosen[i] {
			picked = append(picked, c)
		} else {
			rest = append(rest, c)
		}
	}
	return picked, rest
}

// Partition samples eval songs from all titles, then test songs from what is
// left; every other song is train. The result depends only on the title set,
// the ratio and the state of src.
func Partition(titles []string, ratio config.Ratio, src rand.Source) Splits {
	cands := append([]string(nil), titles...)
	sort.Strings(cands)

	n := len(cands)
	numEval := int(float64(n) * ratio.Eval)
	numTest := int(float64(n) * ratio.Test)

	res := make(Splits, n)
	evalSet, rest := sample(cands, numEval, src)
	testSet, trainSet := sample(rest, numTest, src)
	for _, t := range evalSet {
		res[t] = model.Eval
	}
	for _, t := range testSet {
		res[t] = model.Test
	}
	for _, t := range trainSet {
		res[t] = model.Train
	}
	return res
}
