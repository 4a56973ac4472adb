package cmd

import (
	"encoding/json"
	"net/http"
	"os"
	"path/filepath"

	"github.com/gorilla/mux"
	"github.com/jsphweid/melodex/bucket"
	"github.com/jsphweid/melodex/model"
	"github.com/pkg/errors"
	"github.com/rs/cors"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
)

var serveAddr string

func init() {
	addConfigFlags(serveCmd)
	serveCmd.Flags().StringVar(&serveAddr, "addr", ":8080", "listen address")
	rootCmd.AddCommand(serveCmd)
}

var serveCmd = &cobra.Command{
	Use:   "serve [folder]",
	Short: "serves",
	Long:  `Serves a per-instance output folder read-only over HTTP.`,
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := loadConfig(cmd)
		if err != nil {
			return err
		}
		dir := folder(cfg)
		if len(args) == 1 {
			dir = args[0]
		}
		if _, err := os.Stat(dir); err != nil {
			return errors.Wrap(err, "nothing to serve")
		}
		log.WithFields(log.Fields{"folder": dir, "addr": serveAddr}).Info("serving")
		return http.ListenAndServe(serveAddr, cors.Default().Handler(Router(dir)))
	},
}

type browser struct {
	dir string
}

// Router exposes the splits, songs and records under dir.
func Router(dir string) *mux.Router {
	b := browser{dir: dir}
	router := mux.NewRouter().StrictSlash(true)
	router.HandleFunc("/splits", b.handleSplits).Methods("GET")
	router.HandleFunc("/splits/{split}/songs", b.handleSongs).Methods("GET")
	router.HandleFunc("/splits/{split}/songs/{song}", b.handleSong).Methods("GET")
	router.HandleFunc("/records/{split}/{song}/{name}", b.handleRecord).Methods("GET")
	return router
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		log.WithError(err).Warn("could not write response")
	}
}

func writeError(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, model.ErrorResponse{Error: msg})
}

func splitVar(w http.ResponseWriter, r *http.Request) (model.Split, bool) {
	split := model.Split(mux.Vars(r)["split"])
	if !split.Valid() {
		writeError(w, http.StatusNotFound, "unknown split "+string(split))
		return "", false
	}
	return split, true
}

// plainName rejects names that would leave the split folder.
func plainName(name string) bool {
	return name != "" && name != "." && name != ".." && filepath.Base(name) == name
}

func (b browser) handleSplits(w http.ResponseWriter, r *http.Request) {
	res := make([]model.SplitSummary, 0, len(model.AllSplits))
	for _, s := range model.AllSplits {
		songs, err := bucket.ListSongs(b.dir, s)
		if err != nil && !os.IsNotExist(errors.Cause(err)) {
			writeError(w, http.StatusInternalServerError, err.Error())
			return
		}
		res = append(res, model.SplitSummary{Split: s, Songs: len(songs)})
	}
	writeJSON(w, http.StatusOK, res)
}

func (b browser) handleSongs(w http.ResponseWriter, r *http.Request) {
	split, ok := splitVar(w, r)
	if !ok {
		return
	}
	songs, err := bucket.ListSongs(b.dir, split)
	if err != nil && !os.IsNotExist(errors.Cause(err)) {
		writeError(w, http.StatusInternalServerError, err.Error())
		return
	}
	if songs == nil {
		songs = []string{}
	}
	writeJSON(w, http.StatusOK, songs)
}

func (b browser) handleSong(w http.ResponseWriter, r *http.Request) {
	split, ok := splitVar(w, r)
	if !ok {
		return
	}
	song := mux.Vars(r)["song"]
	if !plainName(song) {
		writeError(w, http.StatusBadRequest, "bad song name")
		return
	}
	names, err := bucket.ListRecords(b.dir, split, song)
	if err != nil {
		writeError(w, http.StatusNotFound, "no song "+song+" in "+string(split))
		return
	}
	if names == nil {
		names = []string{}
	}
	writeJSON(w, http.StatusOK, model.SongSummary{Song: song, Records: names})
}

func (b browser) handleRecord(w http.ResponseWriter, r *http.Request) {
	split, ok := splitVar(w, r)
	if !ok {
		return
	}
	vars := mux.Vars(r)
	song, name := vars["song"], vars["name"]
	if !plainName(song) || !plainName(name) {
		writeError(w, http.StatusBadRequest, "bad record name")
		return
	}
	rec, err := bucket.ReadRecord(filepath.Join(b.dir, string(split), song, name))
	if err != nil {
		writeError(w, http.StatusNotFound, "no record "+name)
		return
	}
	writeJSON(w, http.StatusOK, model.RecordResponse{
		Name:   name,
		Pitch:  rec.Pitch,
		Rhythm: rec.Rhythm,
		Chord:  chordRows(rec.Chord),
	})
}

// chordRows spells each frame out as 12 zeros and ones.
func chordRows(c model.ChordMatrix) [][]int {
	res := make([][]int, len(c))
	for t, m := range c {
		row := make([]int, model.PitchClasses)
		for _, pc := range m.Classes() {
			row[pc] = 1
		}
		res[t] = row
	}
	return res
}
