package model

// NoteEvent is a single sounding note with times in seconds.
type NoteEvent struct {
	Pitch int
	Start float64
	End   float64
}

func (n NoteEvent) Duration() float64 {
	return n.End - n.Start
}

type Track = []NoteEvent

// Song is one parsed source file. Instruments holds only the tracks that
// carry notes, in file order: melody first, chords second.
type Song struct {
	Title       string
	Path        string
	Instruments []Track
}

func EndTime(notes Track) float64 {
	var end float64
	for _, n := range notes {
		if n.End > end {
			end = n.End
		}
	}
	return end
}

// SourceMap lists the files each song title was read from.
type SourceMap map[string][]string
