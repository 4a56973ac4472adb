package dataset

import (
	"encoding/json"
	"os"
	"time"

	"github.com/google/uuid"
	"github.com/jsphweid/melodex/config"
	"github.com/jsphweid/melodex/model"
	"github.com/pkg/errors"
)

// Manifest describes one preprocessing run and is stored next to its output.
type Manifest struct {
	RunID     string                   `json:"run_id"`
	CreatedAt time.Time                `json:"created_at"`
	Config    config.Config            `json:"config"`
	Splits    map[model.Split][]string `json:"splits"`
	Sources   model.SourceMap          `json:"sources"`
	Summary   Summary                  `json:"summary"`
}

func NewManifest(cfg config.Config, splits Splits, sources model.SourceMap, summary Summary) Manifest {
	members := make(map[model.Split][]string)
	for _, s := range model.AllSplits {
		members[s] = splits.Members(s)
	}
	return Manifest{
		RunID:     uuid.New().String(),
		CreatedAt: time.Now().UTC(),
		Config:    cfg,
		Splits:    members,
		Sources:   sources,
		Summary:   summary,
	}
}

func (m Manifest) Write(path string) error {
	dat, err := json.MarshalIndent(m, "", "  ")
	if err != nil {
		return errors.Wrap(err, "encoding manifest")
	}
	return errors.Wrap(os.WriteFile(path, dat, 0644), "writing manifest")
}

func ReadManifest(path string) (Manifest, error) {
	var m Manifest
	dat, err := os.ReadFile(path)
	if err != nil {
		return m, errors.Wrap(err, "reading manifest")
	}
	return m, errors.Wrapf(json.Unmarshal(dat, &m), "parsing manifest %v", path)
}
