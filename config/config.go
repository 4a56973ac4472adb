package config

import (
	"encoding/json"
	"fmt"
	"math"
	"os"

	"github.com/jsphweid/melodex/frame"
	"github.com/pkg/errors"
)

type OutputMode string

const (
	// one record file per accepted window
	OutputFiles OutputMode = "files"
	// one dataset file per split
	OutputConsolidated OutputMode = "consolidated"
)

// Ratio is the train/eval/test share of the song set.
type Ratio struct {
	Train float64
	Eval  float64
	Test  float64
}

func (r Ratio) MarshalJSON() ([]byte, error) {
	return json.Marshal([3]float64{r.Train, r.Eval, r.Test})
}

func (r *Ratio) UnmarshalJSON(b []byte) error {
	var v [3]float64
	if err := json.Unmarshal(b, &v); err != nil {
		return errors.Wrap(err, "data_ratio must be [train, eval, test]")
	}
	*r = Ratio{Train: v[0], Eval: v[1], Test: v[2]}
	return nil
}

type Config struct {
	NumBars        int        `json:"num_bars"`
	FramePerBar    int        `json:"frame_per_bar"`
	PitchRange     int        `json:"pitch_range"`
	Shift          bool       `json:"shift"`
	BeatPerBar     int        `json:"beat_per_bar"`
	BPM            float64    `json:"bpm"`
	DataRatio      Ratio      `json:"data_ratio"`
	Seed           uint64     `json:"seed"`
	NonOverlapping bool       `json:"non_overlapping"`
	OutputMode     OutputMode `json:"output_mode"`
}

func Default() Config {
	return Config{
		NumBars:     2,
		FramePerBar: 16,
		PitchRange:  48,
		BeatPerBar:  4,
		BPM:         120,
		DataRatio:   Ratio{Train: 0.8, Eval: 0.1, Test: 0.1},
		OutputMode:  OutputFiles,
	}
}

// Load reads a JSON config on top of the defaults. Keys missing from the
// file keep their default value. An empty path returns the defaults.
func Load(path string) (Config, error) {
	cfg := Default()
	if path == "" {
		return cfg, nil
	}
	dat, err := os.ReadFile(path)
	if err != nil {
		return cfg, errors.Wrap(err, "reading config")
	}
	if err := json.Unmarshal(dat, &cfg); err != nil {
		return cfg, errors.Wrapf(err, "parsing config %v", path)
	}
	return cfg, nil
}

func (c Config) Validate() error {
	switch {
	case c.NumBars <= 0:
		return errors.Errorf("num_bars must be positive, got %d", c.NumBars)
	case c.FramePerBar <= 0:
		return errors.Errorf("frame_per_bar must be positive, got %d", c.FramePerBar)
	case c.BeatPerBar <= 0:
		return errors.Errorf("beat_per_bar must be positive, got %d", c.BeatPerBar)
	case c.BPM <= 0:
		return errors.Errorf("bpm must be positive, got %v", c.BPM)
	case c.PitchRange != 48 && c.PitchRange != 128:
		return errors.Errorf("pitch_range must be 48 or 128, got %d", c.PitchRange)
	case c.InstanceLen() < 2:
		return errors.Errorf("instance length %d is too short", c.InstanceLen())
	case c.OutputMode != OutputFiles && c.OutputMode != OutputConsolidated:
		return errors.Errorf("unknown output_mode %q", c.OutputMode)
	}
	r := c.DataRatio
	if r.Train < 0 || r.Eval < 0 || r.Test < 0 || math.Abs(r.Train+r.Eval+r.Test-1) > 1e-6 {
		return errors.Errorf("data_ratio must be non-negative and sum to 1, got %v", []float64{r.Train, r.Eval, r.Test})
	}
	return nil
}

func (c Config) InstanceLen() int {
	return c.FramePerBar * c.NumBars
}

func (c Config) Stride() int {
	if c.NonOverlapping {
		return c.InstanceLen()
	}
	return c.InstanceLen() / 2
}

func (c Config) FrameRate() float64 {
	return frame.Rate(c.FramePerBar, c.BeatPerBar, c.BPM)
}

func (c Config) UnitTime() float64 {
	return frame.UnitTime(c.FrameRate())
}

// FolderName names the output folder after the settings that shape instances.
func (c Config) FolderName() string {
	keys := "ckey"
	if c.Shift {
		keys = "12keys"
	}
	return fmt.Sprintf("instance_%dbars_fpb%d_%dp_%s", c.NumBars, c.FramePerBar, c.PitchRange, keys)
}
