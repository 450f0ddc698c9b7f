package storage

import (
	"context"
	"database/sql"
	"encoding/csv"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/google/uuid"
	"github.com/sirupsen/logrus"
	_ "modernc.org/sqlite"

	"github.com/san-kum/dpsim/internal/dynamo"
	"github.com/san-kum/dpsim/internal/physics"
	"github.com/san-kum/dpsim/internal/sim"
)

var (
	ErrNotFound    = errors.New("storage: run not found")
	ErrAmbiguousID = errors.New("storage: run id prefix is ambiguous")
	ErrNotOpen     = errors.New("storage: store not initialised")
)

const (
	catalogFile  = "runs.db"
	metadataFile = "metadata.json"
	statesFile   = "states.csv"
)

// timeLayout is fixed width so catalog rows sort chronologically as text.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

var csvHeader = []string{"time", "theta1", "theta2", "omega1", "omega2"}

// Store keeps one directory per run under baseDir and indexes them in a
// sqlite catalog.
type Store struct {
	baseDir string
	db      *sql.DB
	log     logrus.FieldLogger
}

func New(baseDir string) *Store {
	return &Store{baseDir: baseDir, log: logrus.StandardLogger()}
}

// WithLogger sets the logger used for catalog housekeeping.
func (s *Store) WithLogger(log logrus.FieldLogger) *Store {
	s.log = log
	return s
}

func (s *Store) Dir() string { return s.baseDir }

// Init creates the data directory and opens the catalog.
func (s *Store) Init(ctx context.Context) error {
	if err := os.MkdirAll(s.baseDir, 0755); err != nil {
		return fmt.Errorf("create data directory: %w", err)
	}

	dbPath := filepath.Join(s.baseDir, catalogFile)
	db, err := sql.Open("sqlite", dbPath+"?_pragma=journal_mode(WAL)&_pragma=busy_timeout(5000)")
	if err != nil {
		return fmt.Errorf("open catalog: %w", err)
	}
	db.SetMaxOpenConns(1)

	if err := InitSchema(ctx, db, s.log); err != nil {
		db.Close()
		return fmt.Errorf("initialise catalog: %w", err)
	}

	s.db = db
	return nil
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	err := s.db.Close()
	s.db = nil
	return err
}

type RunMetadata struct {
	ID            string             `json:"id"`
	Created       time.Time          `json:"created"`
	Preset        string             `json:"preset,omitempty"`
	Integrator    string             `json:"integrator"`
	Dt            float64            `json:"dt"`
	Steps         int                `json:"steps"`
	Params        physics.Params     `json:"params"`
	InitState     []float64          `json:"init_state"`
	InitialEnergy Measure            `json:"initial_energy"`
	MaxDrift      Measure            `json:"max_drift"`
	Crossings     int                `json:"crossings"`
	Metrics       map[string]Measure `json:"metrics,omitempty"`
}

// Duration is the simulated time span of the run.
func (m *RunMetadata) Duration() float64 { return float64(m.Steps) * m.Dt }

// ShortID is the first block of the uuid.
func (m *RunMetadata) ShortID() string {
	if len(m.ID) < 8 {
		return m.ID
	}
	return m.ID[:8]
}

// Save writes tr under a fresh uuid and records it in the catalog. Run
// fields of meta (integrator, dt, steps, params, initial state and energy)
// are taken from tr; the caller supplies the diagnostics.
func (s *Store) Save(ctx context.Context, tr *sim.Trajectory, meta RunMetadata) (string, error) {
	if s.db == nil {
		return "", ErrNotOpen
	}
	if tr == nil || tr.Len() == 0 {
		return "", fmt.Errorf("%w: empty trajectory", dynamo.ErrInvalidState)
	}

	meta.ID = uuid.NewString()
	meta.Created = time.Now().UTC()
	meta.Integrator = tr.Integrator
	meta.Dt = tr.Dt
	meta.Steps = tr.Steps
	meta.Params = tr.Params
	meta.InitState = tr.Initial().Clone()
	meta.InitialEnergy = Measure(tr.Params.Energy(tr.Initial()))

	runDir := filepath.Join(s.baseDir, meta.ID)
	if err := os.MkdirAll(runDir, 0755); err != nil {
		return "", err
	}

	if err := writeMetadata(filepath.Join(runDir, metadataFile), &meta); err != nil {
		return "", fmt.Errorf("write metadata: %w", err)
	}
	if err := writeStates(filepath.Join(runDir, statesFile), tr); err != nil {
		return "", fmt.Errorf("write states: %w", err)
	}
	if err := s.insert(ctx, &meta); err != nil {
		os.RemoveAll(runDir)
		return "", fmt.Errorf("catalog insert: %w", err)
	}

	return meta.ID, nil
}

func (s *Store) insert(ctx context.Context, m *RunMetadata) error {
	params, err := json.Marshal(m.Params)
	if err != nil {
		return err
	}
	init, err := json.Marshal(m.InitState)
	if err != nil {
		return err
	}
	metrics, err := json.Marshal(m.Metrics)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO runs (id, created, preset, integrator, dt, steps, params, init_state,
		                  initial_energy, max_drift, crossings, metrics)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		m.ID, m.Created.Format(timeLayout), m.Preset, m.Integrator, m.Dt, m.Steps,
		string(params), string(init), m.InitialEnergy, m.MaxDrift, m.Crossings, string(metrics))
	return err
}

const selectRuns = `
	SELECT id, created, COALESCE(preset, ''), integrator, dt, steps, params, init_state,
	       initial_energy, max_drift, COALESCE(crossings, 0),
	       COALESCE(metrics, 'null')
	FROM runs`

type scanner interface {
	Scan(dest ...any) error
}

func scanRun(row scanner) (*RunMetadata, error) {
	var (
		m                              RunMetadata
		created, params, init, metrics string
	)
	if err := row.Scan(&m.ID, &created, &m.Preset, &m.Integrator, &m.Dt, &m.Steps, &params, &init,
		&m.InitialEnergy, &m.MaxDrift, &m.Crossings, &metrics); err != nil {
		return nil, err
	}

	var err error
	if m.Created, err = time.Parse(timeLayout, created); err != nil {
		return nil, fmt.Errorf("run %s: created: %w", m.ID, err)
	}
	if err := json.Unmarshal([]byte(params), &m.Params); err != nil {
		return nil, fmt.Errorf("run %s: params: %w", m.ID, err)
	}
	if err := json.Unmarshal([]byte(init), &m.InitState); err != nil {
		return nil, fmt.Errorf("run %s: init_state: %w", m.ID, err)
	}
	if err := json.Unmarshal([]byte(metrics), &m.Metrics); err != nil {
		return nil, fmt.Errorf("run %s: metrics: %w", m.ID, err)
	}
	return &m, nil
}

// List returns all catalogued runs, newest first.
func (s *Store) List(ctx context.Context) ([]RunMetadata, error) {
	if s.db == nil {
		return nil, ErrNotOpen
	}

	rows, err := s.db.QueryContext(ctx, selectRuns+` ORDER BY created DESC`)
	if err != nil {
		return nil, fmt.Errorf("query runs: %w", err)
	}
	defer rows.Close()

	runs := make([]RunMetadata, 0)
	for rows.Next() {
		m, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, *m)
	}
	return runs, rows.Err()
}

// Resolve expands a unique id prefix to the full run id.
func (s *Store) Resolve(ctx context.Context, prefix string) (string, error) {
	if s.db == nil {
		return "", ErrNotOpen
	}
	if prefix == "" {
		return "", fmt.Errorf("%w: empty id", ErrNotFound)
	}

	rows, err := s.db.QueryContext(ctx, `SELECT id FROM runs WHERE substr(id, 1, ?) = ? LIMIT 2`, len(prefix), prefix)
	if err != nil {
		return "", fmt.Errorf("resolve %s: %w", prefix, err)
	}
	defer rows.Close()

	var ids []string
	for rows.Next() {
		var id string
		if err := rows.Scan(&id); err != nil {
			return "", err
		}
		ids = append(ids, id)
	}
	if err := rows.Err(); err != nil {
		return "", err
	}

	switch len(ids) {
	case 0:
		return "", fmt.Errorf("%w: %s", ErrNotFound, prefix)
	case 1:
		return ids[0], nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAmbiguousID, prefix)
	}
}

// Load returns the catalog entry for a full id or unique prefix.
func (s *Store) Load(ctx context.Context, id string) (*RunMetadata, error) {
	full, err := s.Resolve(ctx, id)
	if err != nil {
		return nil, err
	}
	m, err := scanRun(s.db.QueryRowContext(ctx, selectRuns+` WHERE id = ?`, full))
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}
	return m, err
}

// LoadTrajectory rebuilds the stored trajectory of a run.
func (s *Store) LoadTrajectory(ctx context.Context, id string) (*sim.Trajectory, *RunMetadata, error) {
	meta, err := s.Load(ctx, id)
	if err != nil {
		return nil, nil, err
	}

	times, states, err := s.LoadStates(meta.ID)
	if err != nil {
		return nil, nil, err
	}

	tr := &sim.Trajectory{
		Times:      times,
		States:     states,
		Params:     meta.Params,
		Integrator: meta.Integrator,
		Dt:         meta.Dt,
		Steps:      meta.Steps,
	}
	return tr, meta, nil
}

// LoadStates reads the states.csv of a run.
func (s *Store) LoadStates(id string) ([]float64, []dynamo.State, error) {
	if _, err := uuid.Parse(id); err != nil {
		return nil, nil, fmt.Errorf("%w: %s", ErrNotFound, id)
	}

	file, err := os.Open(filepath.Join(s.baseDir, id, statesFile))
	if err != nil {
		return nil, nil, err
	}
	defer file.Close()

	r := csv.NewReader(file)
	r.FieldsPerRecord = len(csvHeader)

	if _, err := r.Read(); err != nil {
		if errors.Is(err, io.EOF) {
			return []float64{}, []dynamo.State{}, nil
		}
		return nil, nil, err
	}

	times := make([]float64, 0)
	states := make([]dynamo.State, 0)
	for line := 2; ; line++ {
		record, err := r.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			return nil, nil, err
		}

		vals := make([]float64, len(record))
		for j, field := range record {
			if vals[j], err = strconv.ParseFloat(field, 64); err != nil {
				return nil, nil, fmt.Errorf("%s line %d: %w", statesFile, line, err)
			}
		}
		times = append(times, vals[0])
		states = append(states, dynamo.State(vals[1:]))
	}

	return times, states, nil
}

// Delete removes a run from the catalog and disk.
func (s *Store) Delete(ctx context.Context, id string) error {
	full, err := s.Resolve(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, full); err != nil {
		return fmt.Errorf("delete %s: %w", full, err)
	}
	return os.RemoveAll(filepath.Join(s.baseDir, full))
}

func writeMetadata(path string, meta *RunMetadata) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	enc := json.NewEncoder(f)
	enc.SetIndent("", "  ")
	return enc.Encode(meta)
}

func writeStates(path string, tr *sim.Trajectory) error {
	f, err := os.Create(path)
	if err != nil {
		return err
	}
	defer f.Close()

	if err := WriteCSV(f, tr); err != nil {
		return err
	}
	return f.Close()
}

// WriteCSV writes the time, θ1, θ2, ω1, ω2 table of tr. Values are written
// in shortest round-trip form so a reload is lossless.
func WriteCSV(w io.Writer, tr *sim.Trajectory) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(csvHeader); err != nil {
		return err
	}

	row := make([]string, len(csvHeader))
	for i, x := range tr.States {
		row[0] = strconv.FormatFloat(tr.Times[i], 'g', -1, 64)
		for j := 0; j < dynamo.StateDim; j++ {
			row[j+1] = strconv.FormatFloat(x[j], 'g', -1, 64)
		}
		if err := cw.Write(row); err != nil {
			return err
		}
	}

	cw.Flush()
	return cw.Error()
}
