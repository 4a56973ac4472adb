package model

type SplitSummary struct {
	Split Split `json:"split"`
	Songs int   `json:"songs"`
}

type SongSummary struct {
	Song    string   `json:"song"`
	Records []string `json:"records"`
}

type RecordResponse struct {
	Name   string  `json:"name"`
	Pitch  []int   `json:"pitch"`
	Rhythm []int   `json:"rhythm"`
	Chord  [][]int `json:"chord"`
}

type ErrorResponse struct {
	Error string `json:"detail"`
}
