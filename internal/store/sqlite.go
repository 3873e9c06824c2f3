package store

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"sync"
	"time"

	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/config"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/constants"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/summary"
	"github.com/EngrStudent/Exploring-importance-CART-ensemble-part1/internal/sweep"
	"gopkg.in/yaml.v3"
	_ "modernc.org/sqlite" // SQLite driver
)

var (
	// ErrRunNotFound is returned when no run matches an ID or ID prefix.
	ErrRunNotFound = errors.New("run not found")

	// ErrAmbiguousID is returned when an ID prefix matches more than one run.
	ErrAmbiguousID = errors.New("run id prefix is ambiguous")
)

// Run is the metadata of one persisted sweep.
type Run struct {
	ID          string              `json:"id"`
	CreatedAt   time.Time           `json:"created_at"`
	Label       string              `json:"label,omitempty"`
	Seed        uint64              `json:"seed"`
	Steps       int                 `json:"steps"`
	Repeats     int                 `json:"repeats"`
	Rows        int                 `json:"rows"`
	Trees       int                 `json:"trees"`
	Importance  string              `json:"importance"`
	Features    []string            `json:"features"`
	Percentiles summary.Percentiles `json:"percentiles"`
	ConfigYAML  string              `json:"-"`
	Elapsed     time.Duration       `json:"elapsed"`
}

// NewRun describes a sweep about to be saved. The caller supplies the ID.
func NewRun(id string, cfg *config.ExperimentConfig, result *sweep.Result) (Run, error) {
	data, err := yaml.Marshal(cfg)
	if err != nil {
		return Run{}, fmt.Errorf("marshaling config: %w", err)
	}
	return Run{
		ID:         id,
		CreatedAt:  time.Now().UTC(),
		Seed:       cfg.Sweep.Seed,
		Steps:      len(result.Points),
		Repeats:    cfg.Sweep.Repeats,
		Rows:       cfg.Sweep.Rows,
		Trees:      cfg.Forest.Trees,
		Importance: cfg.Importance.Type.String(),
		Features:   append([]string(nil), result.Features...),
		Percentiles: summary.Percentiles{
			Lower:  cfg.Percentiles.Lower,
			Median: cfg.Percentiles.Median,
			Upper:  cfg.Percentiles.Upper,
		},
		ConfigYAML: string(data),
		Elapsed:    result.Elapsed,
	}, nil
}

// Config decodes the configuration the run was made with.
func (r Run) Config() (*config.ExperimentConfig, error) {
	cfg := config.Default()
	if err := yaml.Unmarshal([]byte(r.ConfigYAML), cfg); err != nil {
		return nil, fmt.Errorf("parsing stored config: %w", err)
	}
	return cfg, nil
}

// timeLayout is fixed width so created_at sorts lexically.
const timeLayout = "2006-01-02T15:04:05.000000000Z07:00"

// SQLiteStore stores runs, samples and percentile bands in SQLite.
type SQLiteStore struct {
	mu     sync.RWMutex
	db     *sql.DB
	dir    string
	dbPath string
}

// Open creates or opens the store rooted at projectRoot.
// The database lives at .importance/importance.db.
func Open(projectRoot string) (*SQLiteStore, error) {
	dir := LocalDataPath(projectRoot)

	if err := os.MkdirAll(dir, 0755); err != nil {
		return nil, fmt.Errorf("failed to create %s directory: %w", constants.DataDirName, err)
	}

	dbPath := filepath.Join(dir, constants.DatabaseFileName)

	db, err := sql.Open("sqlite", dbPath+"?_pragma=foreign_keys(1)&_pragma=journal_mode(WAL)")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	db.SetMaxOpenConns(1) // SQLite works best with single writer

	if err := InitSchema(context.Background(), db); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to initialize schema: %w", err)
	}

	return &SQLiteStore{db: db, dir: dir, dbPath: dbPath}, nil
}

// Dir returns the store's data directory.
func (s *SQLiteStore) Dir() string {
	return s.dir
}

// Close closes the database.
func (s *SQLiteStore) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.db.Close()
}

// SaveRun writes a run with all of its samples and bands in one transaction.
func (s *SQLiteStore) SaveRun(ctx context.Context, run Run, result *sweep.Result, table *summary.Table) error {
	if run.ID == "" {
		return fmt.Errorf("run ID is required")
	}

	s.mu.Lock()
	defer s.mu.Unlock()

	features, err := json.Marshal(run.Features)
	if err != nil {
		return fmt.Errorf("failed to marshal features: %w", err)
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, created_at, label, seed, steps, repeats, row_count, trees,
			importance_type, features, p_lower, p_median, p_upper, config, elapsed_ms)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		run.ID, run.CreatedAt.UTC().Format(timeLayout), nullString(run.Label),
		int64(run.Seed), run.Steps, run.Repeats, run.Rows, run.Trees,
		run.Importance, string(features),
		run.Percentiles.Lower, run.Percentiles.Median, run.Percentiles.Upper,
		run.ConfigYAML, run.Elapsed.Milliseconds())
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	sampleStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO samples (run_id, rate_index, repeat_index, rate, importance, oob_mse, r_squared, switch_rate)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare sample insert: %w", err)
	}
	defer sampleStmt.Close()

	for _, p := range result.Points {
		for _, smp := range p.Samples {
			imp, err := json.Marshal(smp.Importance)
			if err != nil {
				return fmt.Errorf("failed to marshal importance: %w", err)
			}
			if _, err := sampleStmt.ExecContext(ctx, run.ID, p.Index, smp.Repeat, p.Rate,
				string(imp), smp.OOBMSE, smp.RSquared, smp.SwitchRate); err != nil {
				return fmt.Errorf("failed to insert sample (rate %g, repeat %d): %w", p.Rate, smp.Repeat, err)
			}
		}
	}

	bandStmt, err := tx.PrepareContext(ctx, `
		INSERT INTO bands (run_id, rate_index, feature_index, rate, feature, band_lower, band_median, band_upper)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare band insert: %w", err)
	}
	defer bandStmt.Close()

	for ri, row := range table.Rows {
		for fi, b := range row.Bands {
			if _, err := bandStmt.ExecContext(ctx, run.ID, ri, fi, row.Rate, b.Feature,
				b.Lower, b.Median, b.Upper); err != nil {
				return fmt.Errorf("failed to insert band (rate %g, %s): %w", row.Rate, b.Feature, err)
			}
		}
	}

	return tx.Commit()
}

const runColumns = `id, created_at, label, seed, steps, repeats, row_count, trees,
	importance_type, features, p_lower, p_median, p_upper, config, elapsed_ms`

// ListRuns returns all runs, newest first.
func (s *SQLiteStore) ListRuns(ctx context.Context) ([]Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs ORDER BY created_at DESC, id`)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer rows.Close()

	var runs []Run
	for rows.Next() {
		run, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		runs = append(runs, run)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}
	return runs, nil
}

// GetRun returns the run whose ID equals id or, failing that, uniquely starts with id.
func (s *SQLiteStore) GetRun(ctx context.Context, id string) (*Run, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	return s.getRun(ctx, id)
}

func (s *SQLiteStore) getRun(ctx context.Context, id string) (*Run, error) {
	if id == "" {
		return nil, ErrRunNotFound
	}

	row := s.db.QueryRowContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id = ?`, id)
	run, err := scanRun(row)
	if err == nil {
		return &run, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return nil, err
	}

	escaped := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`).Replace(id)
	rows, err := s.db.QueryContext(ctx, `SELECT `+runColumns+` FROM runs WHERE id LIKE ? ESCAPE '\' LIMIT 2`, escaped+"%")
	if err != nil {
		return nil, fmt.Errorf("failed to query runs by prefix: %w", err)
	}
	defer rows.Close()

	var matches []Run
	for rows.Next() {
		r, err := scanRun(rows)
		if err != nil {
			return nil, err
		}
		matches = append(matches, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate runs: %w", err)
	}

	switch len(matches) {
	case 0:
		return nil, fmt.Errorf("%w: %s", ErrRunNotFound, id)
	case 1:
		return &matches[0], nil
	default:
		return nil, fmt.Errorf("%w: %s", ErrAmbiguousID, id)
	}
}

// LoadResult rebuilds the sweep result of a run from its samples.
func (s *SQLiteStore) LoadResult(ctx context.Context, id string) (*sweep.Result, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, err := s.getRun(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rate_index, repeat_index, rate, importance, oob_mse, r_squared, switch_rate
		FROM samples WHERE run_id = ? ORDER BY rate_index, repeat_index`, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query samples: %w", err)
	}
	defer rows.Close()

	result := &sweep.Result{
		Seed:     run.Seed,
		Features: run.Features,
		Elapsed:  run.Elapsed,
	}
	for rows.Next() {
		var smp sweep.Sample
		var imp string
		var oob, rsq, sw sql.NullFloat64
		if err := rows.Scan(&smp.RateIndex, &smp.Repeat, &smp.Rate, &imp, &oob, &rsq, &sw); err != nil {
			return nil, fmt.Errorf("failed to scan sample: %w", err)
		}
		if err := json.Unmarshal([]byte(imp), &smp.Importance); err != nil {
			return nil, fmt.Errorf("failed to parse importance: %w", err)
		}
		smp.OOBMSE, smp.RSquared, smp.SwitchRate = oob.Float64, rsq.Float64, sw.Float64

		for len(result.Points) <= smp.RateIndex {
			result.Points = append(result.Points, sweep.Point{Index: len(result.Points)})
		}
		p := &result.Points[smp.RateIndex]
		p.Rate = smp.Rate
		p.Samples = append(p.Samples, smp)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate samples: %w", err)
	}
	return result, nil
}

// LoadTable returns the stored percentile table of a run.
func (s *SQLiteStore) LoadTable(ctx context.Context, id string) (*summary.Table, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	run, err := s.getRun(ctx, id)
	if err != nil {
		return nil, err
	}

	rows, err := s.db.QueryContext(ctx, `
		SELECT rate_index, rate, feature, band_lower, band_median, band_upper
		FROM bands WHERE run_id = ? ORDER BY rate_index, feature_index`, run.ID)
	if err != nil {
		return nil, fmt.Errorf("failed to query bands: %w", err)
	}
	defer rows.Close()

	table := &summary.Table{
		Percentiles: run.Percentiles,
		Features:    run.Features,
	}
	for rows.Next() {
		var ri int
		var rate float64
		var b summary.Band
		if err := rows.Scan(&ri, &rate, &b.Feature, &b.Lower, &b.Median, &b.Upper); err != nil {
			return nil, fmt.Errorf("failed to scan band: %w", err)
		}
		for len(table.Rows) <= ri {
			table.Rows = append(table.Rows, summary.Row{})
		}
		table.Rows[ri].Rate = rate
		table.Rows[ri].Bands = append(table.Rows[ri].Bands, b)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate bands: %w", err)
	}
	return table, nil
}

// DeleteRun removes a run and, through cascading keys, its samples and bands.
func (s *SQLiteStore) DeleteRun(ctx context.Context, id string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	run, err := s.getRun(ctx, id)
	if err != nil {
		return err
	}
	if _, err := s.db.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, run.ID); err != nil {
		return fmt.Errorf("failed to delete run: %w", err)
	}
	return nil
}

// scanner is satisfied by *sql.Row and *sql.Rows.
type scanner interface {
	Scan(dest ...any) error
}

func scanRun(sc scanner) (Run, error) {
	var run Run
	var created, features string
	var label sql.NullString
	var seed, elapsed int64
	err := sc.Scan(&run.ID, &created, &label, &seed, &run.Steps, &run.Repeats, &run.Rows, &run.Trees,
		&run.Importance, &features, &run.Percentiles.Lower, &run.Percentiles.Median, &run.Percentiles.Upper,
		&run.ConfigYAML, &elapsed)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return run, err
		}
		return run, fmt.Errorf("failed to scan run: %w", err)
	}

	run.Label = label.String
	run.Seed = uint64(seed)
	run.Elapsed = time.Duration(elapsed) * time.Millisecond
	if t, err := time.Parse(time.RFC3339Nano, created); err == nil {
		run.CreatedAt = t
	}
	if err := json.Unmarshal([]byte(features), &run.Features); err != nil {
		return run, fmt.Errorf("failed to parse features: %w", err)
	}
	return run, nil
}

func nullString(s string) sql.NullString {
	return sql.NullString{String: s, Valid: s != ""}
}
