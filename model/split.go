package model

type Split string

const (
	Train Split = "train"
	Eval  Split = "eval"
	Test  Split = "test"
)

var AllSplits = []Split{Train, Eval, Test}

func (s Split) Valid() bool {
	return s == Train || s == Eval || s == Test
}
