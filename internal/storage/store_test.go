package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"math"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/integrators"
	"github.com/san-kum/dpsim/internal/physics"
	"github.com/san-kum/dpsim/internal/sim"
)

func openStore(t *testing.T) *Store {
	t.Helper()
	st := New(t.TempDir())
	if err := st.Init(context.Background()); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	t.Cleanup(func() { st.Close() })
	return st
}

func testTrajectory(t *testing.T) *sim.Trajectory {
	t.Helper()
	params := physics.Params{L1: 1, L2: 0.5, M1: 2, M2: 1, G: 9.8}
	tr, err := sim.Run(context.Background(), dynamo.State{1.2, -0.4, 0.1, 0}, params, integrators.NewRK4(), 0.01, 50)
	if err != nil {
		t.Fatalf("run failed: %v", err)
	}
	return tr
}

func TestStoreSaveLoad(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	tr := testTrajectory(t)

	runID, err := st.Save(ctx, tr, RunMetadata{
		Preset:    "chaos",
		MaxDrift:  1e-6,
		Crossings: 3,
		Metrics:   Measures(map[string]float64{"stability": 1, "first_flip": math.Inf(1), "offset": -1}),
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	if len(runID) != 36 {
		t.Errorf("expected uuid run id, got %q", runID)
	}

	meta, err := st.Load(ctx, runID)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}

	if meta.Integrator != "rk4" || meta.Dt != 0.01 || meta.Steps != 50 {
		t.Errorf("unexpected run fields: %+v", meta)
	}
	if meta.Params != tr.Params {
		t.Errorf("expected params %v, got %v", tr.Params, meta.Params)
	}
	if meta.Preset != "chaos" || meta.Crossings != 3 || meta.MaxDrift != 1e-6 {
		t.Errorf("unexpected diagnostics: %+v", meta)
	}
	if meta.Metrics["stability"] != 1 || meta.Metrics["first_flip"].Valid() || meta.Metrics["offset"] != -1 {
		t.Errorf("unexpected metrics: %v", meta.Metrics)
	}
	if math.Abs(float64(meta.InitialEnergy)-tr.Params.Energy(tr.Initial())) > 1e-12 {
		t.Errorf("unexpected initial energy %v", meta.InitialEnergy)
	}
	if math.Abs(meta.Duration()-0.5) > 1e-12 {
		t.Errorf("expected duration 0.5, got %v", meta.Duration())
	}

	if _, err := os.Stat(filepath.Join(st.Dir(), runID, "metadata.json")); err != nil {
		t.Errorf("metadata.json missing: %v", err)
	}
}

func TestStoreLoadTrajectoryIsLossless(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	tr := testTrajectory(t)

	runID, err := st.Save(ctx, tr, RunMetadata{})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	loaded, _, err := st.LoadTrajectory(ctx, runID)
	if err != nil {
		t.Fatalf("load trajectory failed: %v", err)
	}

	if loaded.Len() != tr.Len() {
		t.Fatalf("expected %d samples, got %d", tr.Len(), loaded.Len())
	}
	for i := range tr.States {
		if loaded.Times[i] != tr.Times[i] {
			t.Fatalf("time %d: %v != %v", i, loaded.Times[i], tr.Times[i])
		}
		for j := range tr.States[i] {
			if loaded.States[i][j] != tr.States[i][j] {
				t.Fatalf("state %d component %d: %v != %v", i, j, loaded.States[i][j], tr.States[i][j])
			}
		}
	}
	if loaded.Params != tr.Params || loaded.Integrator != tr.Integrator {
		t.Errorf("trajectory metadata not restored: %+v", loaded)
	}
}

func TestStoreList(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)

	runs, err := st.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 0 {
		t.Errorf("expected empty catalog, got %d runs", len(runs))
	}

	tr := testTrajectory(t)
	ids := map[string]bool{}
	for i := 0; i < 3; i++ {
		id, err := st.Save(ctx, tr, RunMetadata{Crossings: i})
		if err != nil {
			t.Fatalf("save %d failed: %v", i, err)
		}
		ids[id] = true
	}

	runs, err = st.List(ctx)
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(runs) != 3 {
		t.Fatalf("expected 3 runs, got %d", len(runs))
	}
	for _, r := range runs {
		if !ids[r.ID] {
			t.Errorf("unexpected run %s", r.ID)
		}
	}
	for i := 1; i < len(runs); i++ {
		if runs[i].Created.After(runs[i-1].Created) {
			t.Error("runs not sorted newest first")
		}
	}
}

func TestStoreResolvePrefix(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)

	id, err := st.Save(ctx, testTrajectory(t), RunMetadata{})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	full, err := st.Resolve(ctx, id[:8])
	if err != nil {
		t.Fatalf("resolve failed: %v", err)
	}
	if full != id {
		t.Errorf("expected %s, got %s", id, full)
	}

	if _, err := st.Load(ctx, "zzzz"); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound, got %v", err)
	}
	if _, err := st.Resolve(ctx, ""); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound for empty prefix, got %v", err)
	}
}

func TestStoreDelete(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)

	id, err := st.Save(ctx, testTrajectory(t), RunMetadata{})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	if err := st.Delete(ctx, id); err != nil {
		t.Fatalf("delete failed: %v", err)
	}
	if _, err := st.Load(ctx, id); !errors.Is(err, ErrNotFound) {
		t.Errorf("expected ErrNotFound after delete, got %v", err)
	}
	if _, err := os.Stat(filepath.Join(st.Dir(), id)); !os.IsNotExist(err) {
		t.Errorf("run directory still present: %v", err)
	}
}

func TestStoreUnavailableDiagnostics(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)

	id, err := st.Save(ctx, testTrajectory(t), RunMetadata{
		MaxDrift: Measure(math.NaN()),
		Metrics:  Measures(map[string]float64{"energy_drift": math.Inf(1)}),
	})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var drift any
	if err := st.db.QueryRowContext(ctx, `SELECT max_drift FROM runs WHERE id = ?`, id).Scan(&drift); err != nil {
		t.Fatalf("query failed: %v", err)
	}
	if drift != nil {
		t.Errorf("expected NULL max_drift, got %v", drift)
	}

	meta, err := st.Load(ctx, id)
	if err != nil {
		t.Fatalf("load failed: %v", err)
	}
	if meta.MaxDrift.Valid() || meta.MaxDrift.String() != "n/a" {
		t.Errorf("expected unavailable drift, got %v", meta.MaxDrift)
	}
	if meta.Metrics["energy_drift"].Valid() {
		t.Errorf("expected unavailable metric, got %v", meta.Metrics["energy_drift"])
	}

	raw, err := os.ReadFile(filepath.Join(st.Dir(), id, "metadata.json"))
	if err != nil {
		t.Fatalf("read metadata: %v", err)
	}
	if !strings.Contains(string(raw), `"max_drift": null`) {
		t.Errorf("expected null max_drift in metadata.json:\n%s", raw)
	}
}

func TestStoreReopen(t *testing.T) {
	ctx := context.Background()
	dir := t.TempDir()

	st := New(dir)
	if err := st.Init(ctx); err != nil {
		t.Fatalf("init failed: %v", err)
	}
	id, err := st.Save(ctx, testTrajectory(t), RunMetadata{})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}
	st.Close()

	again := New(dir)
	if err := again.Init(ctx); err != nil {
		t.Fatalf("reopen failed: %v", err)
	}
	defer again.Close()

	if _, err := again.Load(ctx, id); err != nil {
		t.Errorf("run lost across reopen: %v", err)
	}
}

func TestStoreNotOpen(t *testing.T) {
	st := New(t.TempDir())
	if _, err := st.List(context.Background()); !errors.Is(err, ErrNotOpen) {
		t.Errorf("expected ErrNotOpen, got %v", err)
	}
}

func TestExport(t *testing.T) {
	ctx := context.Background()
	st := openStore(t)
	tr := testTrajectory(t)

	id, err := st.Save(ctx, tr, RunMetadata{Crossings: 2})
	if err != nil {
		t.Fatalf("save failed: %v", err)
	}

	var buf bytes.Buffer
	if err := st.ExportJSON(ctx, &buf, id); err != nil {
		t.Fatalf("export json failed: %v", err)
	}

	var data ExportData
	if err := json.Unmarshal(buf.Bytes(), &data); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if data.ID != id || data.Crossings != 2 {
		t.Errorf("unexpected metadata: %+v", data.RunMetadata)
	}
	if len(data.States) != tr.Len() || len(data.Times) != tr.Len() {
		t.Errorf("expected %d samples, got %d/%d", tr.Len(), len(data.States), len(data.Times))
	}

	buf.Reset()
	if err := st.ExportCSV(ctx, &buf, id); err != nil {
		t.Fatalf("export csv failed: %v", err)
	}
	lines := strings.Split(strings.TrimSpace(buf.String()), "\n")
	if lines[0] != "time,theta1,theta2,omega1,omega2" {
		t.Errorf("unexpected header %q", lines[0])
	}
	if len(lines) != tr.Len()+1 {
		t.Errorf("expected %d lines, got %d", tr.Len()+1, len(lines))
	}
}
