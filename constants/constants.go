package constants

import "os"

func GetIndexDir() string {
	path := os.Getenv("INDEX_PATH")
	if path != "" {
		return path
	}
	return "./out"
}

// GetMediaDir returns MEDIA_PATH, or "" when unset so that the --input flag
// has to supply it.
func GetMediaDir() string {
	return os.Getenv("MEDIA_PATH")
}

const NumPitches = 128

// window filters
const (
	MinChordCells      = 4
	MaxContinuousRest  = 30
	MaxOnsetJump       = 12
	MinDistinctSymbols = 6
)

const (
	MinShift = -5
	MaxShift = 6
)

const ManifestName = "manifest.json"

const RecordExt = ".gob"
