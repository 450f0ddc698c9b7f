package storage

import (
	"context"
	"encoding/json"
	"io"
	"os"
	"path/filepath"
)

type ExportData struct {
	RunMetadata
	Times  []float64   `json:"times"`
	States [][]float64 `json:"states"`
}

// ExportJSON writes the metadata and full trajectory of a run to w.
func (s *Store) ExportJSON(ctx context.Context, w io.Writer, id string) error {
	tr, meta, err := s.LoadTrajectory(ctx, id)
	if err != nil {
		return err
	}

	data := ExportData{
		RunMetadata: *meta,
		Times:       tr.Times,
		States:      make([][]float64, len(tr.States)),
	}
	for i, x := range tr.States {
		data.States[i] = x
	}

	encoder := json.NewEncoder(w)
	encoder.SetIndent("", "  ")
	return encoder.Encode(data)
}

// ExportCSV copies the stored states table of a run to w.
func (s *Store) ExportCSV(ctx context.Context, w io.Writer, id string) error {
	meta, err := s.Load(ctx, id)
	if err != nil {
		return err
	}

	f, err := os.Open(filepath.Join(s.baseDir, meta.ID, statesFile))
	if err != nil {
		return err
	}
	defer f.Close()

	_, err = io.Copy(w, f)
	return err
}
