// Package sqlite provides a SQLite-backed ExtractionRepository.
//
// Each run is stored whole as JSON for FindByID, and also normalized into
// sites, subsystems, plans, error_entries and link_edges tables so the
// export stage can query it with plain SQL. The joined_rows view is the
// left join of sites with subsystems of the same run.
package sqlite

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3" // registers the sqlite3 driver

	"github.com/reglet-dev/scatslx/internal/domain/entities"
	"github.com/reglet-dev/scatslx/internal/domain/extraction"
	"github.com/reglet-dev/scatslx/internal/domain/repositories"
	"github.com/reglet-dev/scatslx/internal/domain/values"
)

// Ensure interface compliance
var _ repositories.ExtractionRepository = (*ExtractionRepository)(nil)

// ExtractionRepository persists extraction runs in SQLite.
type ExtractionRepository struct {
	db *sql.DB
	mu sync.RWMutex
}

// New opens (or creates) the database at path and migrates the schema.
// Use ":memory:" for an in-memory database.
func New(path string) (*ExtractionRepository, error) {
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on&_journal_mode=WAL")
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// A second connection to ":memory:" would see an empty database.
	db.SetMaxOpenConns(1)

	repo := &ExtractionRepository{db: db}
	if err := repo.migrate(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}
	return repo, nil
}

// Close closes the database connection.
func (r *ExtractionRepository) Close() error {
	return r.db.Close()
}

func (r *ExtractionRepository) migrate() error {
	_, err := r.db.Exec(schema)
	return err
}

const schema = `
CREATE TABLE IF NOT EXISTS runs (
	id TEXT PRIMARY KEY,
	source_path TEXT NOT NULL,
	start_time INTEGER NOT NULL,
	end_time INTEGER NOT NULL,
	strict BOOLEAN NOT NULL,
	tool_version TEXT,
	filter TEXT,
	version INTEGER NOT NULL,
	result_json TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_runs_source_start
	ON runs(source_path, start_time DESC);

CREATE TABLE IF NOT EXISTS sites (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	site_id INTEGER NOT NULL,
	subsystem_id INTEGER,
	line INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_sites_run ON sites(run_id, site_id);

CREATE TABLE IF NOT EXISTS subsystems (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	subsystem_id INTEGER NOT NULL,
	line INTEGER NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_subsystems_run ON subsystems(run_id, subsystem_id);

-- owner is 'site' or 'subsystem'; slot is PP1..PP4 or LP1..LP4
CREATE TABLE IF NOT EXISTS plans (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	owner TEXT NOT NULL,
	owner_id INTEGER NOT NULL,
	slot TEXT NOT NULL,
	raw TEXT NOT NULL,
	offset1 TEXT NOT NULL,
	offset2 TEXT NOT NULL,
	phase_start TEXT NOT NULL,
	phase TEXT NOT NULL,
	slaved INTEGER NOT NULL,
	fallback TEXT NOT NULL
);

CREATE INDEX IF NOT EXISTS idx_plans_owner ON plans(run_id, owner, owner_id);

CREATE TABLE IF NOT EXISTS error_entries (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	pass TEXT NOT NULL,
	entity_id TEXT NOT NULL,
	kind TEXT NOT NULL,
	message TEXT NOT NULL,
	line INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS link_edges (
	run_id TEXT NOT NULL REFERENCES runs(id) ON DELETE CASCADE,
	layer TEXT NOT NULL,
	from_site INTEGER NOT NULL,
	to_site INTEGER NOT NULL,
	from_x REAL NOT NULL,
	from_y REAL NOT NULL,
	to_x REAL NOT NULL,
	to_y REAL NOT NULL
);

CREATE VIEW IF NOT EXISTS joined_rows AS
	SELECT s.run_id, s.site_id, s.subsystem_id, ss.line AS subsystem_line
	FROM sites s
	LEFT JOIN subsystems ss
		ON ss.run_id = s.run_id AND ss.subsystem_id = s.subsystem_id;
`

type execer interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
}

// Save persists an extraction result, replacing any earlier copy of the
// same run.
func (r *ExtractionRepository) Save(ctx context.Context, result *extraction.Result) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	payload, err := json.Marshal(result)
	if err != nil {
		return fmt.Errorf("failed to encode result: %w", err)
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer func() {
		_ = tx.Rollback() // no-op after Commit
	}()

	id := result.GetID().String()
	if _, err := tx.ExecContext(ctx, `DELETE FROM runs WHERE id = ?`, id); err != nil {
		return fmt.Errorf("failed to replace run: %w", err)
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO runs (id, source_path, start_time, end_time, strict, tool_version, filter, version, result_json)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		id, result.SourcePath,
		result.StartTime.UnixNano(), result.EndTime.UnixNano(),
		result.Strict, result.ToolVersion, result.Filter, result.Version,
		string(payload),
	)
	if err != nil {
		return fmt.Errorf("failed to insert run: %w", err)
	}

	if err := insertRecords(ctx, tx, id, result); err != nil {
		return err
	}
	if err := insertErrors(ctx, tx, id, result); err != nil {
		return err
	}
	if err := insertEdges(ctx, tx, id, result.Edges); err != nil {
		return err
	}

	return tx.Commit()
}

func insertRecords(ctx context.Context, db execer, runID string, result *extraction.Result) error {
	for _, site := range result.Sites {
		var subsystem any
		if site.SubsystemID != nil {
			subsystem = site.SubsystemID.Int()
		}
		if _, err := db.ExecContext(ctx,
			`INSERT INTO sites (run_id, site_id, subsystem_id, line) VALUES (?, ?, ?, ?)`,
			runID, site.SiteID.Int(), subsystem, site.Line,
		); err != nil {
			return fmt.Errorf("failed to insert site %s: %w", site.SiteID, err)
		}
		for _, slot := range site.Plans {
			if err := insertPlan(ctx, db, runID, "site", site.SiteID.Int(), slot); err != nil {
				return err
			}
		}
	}

	for _, sub := range result.Subsystems {
		if _, err := db.ExecContext(ctx,
			`INSERT INTO subsystems (run_id, subsystem_id, line) VALUES (?, ?, ?)`,
			runID, sub.SubsystemID.Int(), sub.Line,
		); err != nil {
			return fmt.Errorf("failed to insert subsystem %s: %w", sub.SubsystemID, err)
		}
		for _, slot := range sub.Links {
			if err := insertPlan(ctx, db, runID, "subsystem", sub.SubsystemID.Int(), slot); err != nil {
				return err
			}
		}
	}
	return nil
}

// insertPlan stores located slots only; a missing slot has no row.
func insertPlan(ctx context.Context, db execer, runID, owner string, ownerID int, slot entities.PlanSlot) error {
	if !slot.Found {
		return nil
	}
	tuple := slot.Offset.Tuple()
	_, err := db.ExecContext(ctx, `
		INSERT INTO plans (run_id, owner, owner_id, slot, raw, offset1, offset2, phase_start, phase, slaved, fallback)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		runID, owner, ownerID, slot.Name, slot.Raw,
		tuple[0], tuple[1], tuple[2], tuple[3], slot.Offset.LegacyLink(),
		slot.Offset.Fallback.String(),
	)
	if err != nil {
		return fmt.Errorf("failed to insert %s %d %s: %w", owner, ownerID, slot.Name, err)
	}
	return nil
}

func insertErrors(ctx context.Context, db execer, runID string, result *extraction.Result) error {
	passes := []struct {
		name    string
		entries []entities.ErrorEntry
	}{
		{"site", result.SiteErrors},
		{"subsystem", result.SubsystemErrors},
		{"location", result.LocationErrors},
	}
	for _, p := range passes {
		for _, e := range p.entries {
			if _, err := db.ExecContext(ctx, `
				INSERT INTO error_entries (run_id, pass, entity_id, kind, message, line)
				VALUES (?, ?, ?, ?, ?, ?)`,
				runID, p.name, e.EntityID, e.Kind.String(), e.Message, e.Line,
			); err != nil {
				return fmt.Errorf("failed to insert error entry: %w", err)
			}
		}
	}
	return nil
}

func insertEdges(ctx context.Context, db execer, runID string, edges []entities.LinkEdge) error {
	for _, e := range edges {
		if _, err := db.ExecContext(ctx, `
			INSERT INTO link_edges (run_id, layer, from_site, to_site, from_x, from_y, to_x, to_y)
			VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
			runID, e.Layer(), e.From.Int(), e.To.Int(),
			e.FromPoint.X, e.FromPoint.Y, e.ToPoint.X, e.ToPoint.Y,
		); err != nil {
			return fmt.Errorf("failed to insert edge %s: %w", e.Layer(), err)
		}
	}
	return nil
}

// FindByID retrieves an extraction result by its unique ID.
func (r *ExtractionRepository) FindByID(ctx context.Context, id values.ExtractionID) (*extraction.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	var payload string
	err := r.db.QueryRowContext(ctx, `SELECT result_json FROM runs WHERE id = ?`, id.String()).Scan(&payload)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, fmt.Errorf("%w: %s", repositories.ErrExtractionNotFound, id)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to query run: %w", err)
	}
	return decodeResult(payload)
}

// FindBySource retrieves recent runs over one LX file, newest first.
// A limit of zero or less returns every run.
func (r *ExtractionRepository) FindBySource(ctx context.Context, sourcePath string, limit int) ([]*extraction.Result, error) {
	if limit <= 0 {
		limit = -1
	}
	return r.queryResults(ctx, `
		SELECT result_json FROM runs
		WHERE source_path = ?
		ORDER BY start_time DESC
		LIMIT ?`, sourcePath, limit)
}

// FindBetween retrieves runs over one LX file started within [start, end].
func (r *ExtractionRepository) FindBetween(ctx context.Context, sourcePath string, start, end time.Time) ([]*extraction.Result, error) {
	return r.queryResults(ctx, `
		SELECT result_json FROM runs
		WHERE source_path = ? AND start_time >= ? AND start_time <= ?
		ORDER BY start_time DESC`, sourcePath, start.UnixNano(), end.UnixNano())
}

func (r *ExtractionRepository) queryResults(ctx context.Context, query string, args ...any) ([]*extraction.Result, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query runs: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var results []*extraction.Result
	for rows.Next() {
		var payload string
		if err := rows.Scan(&payload); err != nil {
			return nil, fmt.Errorf("failed to scan run: %w", err)
		}
		result, err := decodeResult(payload)
		if err != nil {
			return nil, err
		}
		results = append(results, result)
	}
	return results, rows.Err()
}

func decodeResult(payload string) (*extraction.Result, error) {
	var result extraction.Result
	if err := json.Unmarshal([]byte(payload), &result); err != nil {
		return nil, fmt.Errorf("failed to decode stored result: %w", err)
	}
	return &result, nil
}

// JoinedRow is one row of the joined_rows view. SubsystemID is set only
// when a subsystem record of the same run matched.
type JoinedRow struct {
	SubsystemID *int
	SiteID      int
}

// JoinedRows returns the left join of sites with subsystems for one run,
// ordered by site id.
func (r *ExtractionRepository) JoinedRows(ctx context.Context, id values.ExtractionID) ([]JoinedRow, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()

	rows, err := r.db.QueryContext(ctx, `
		SELECT site_id, CASE WHEN subsystem_line IS NULL THEN NULL ELSE subsystem_id END
		FROM joined_rows
		WHERE run_id = ?
		ORDER BY site_id`, id.String())
	if err != nil {
		return nil, fmt.Errorf("failed to query joined rows: %w", err)
	}
	defer func() {
		_ = rows.Close()
	}()

	var out []JoinedRow
	for rows.Next() {
		var (
			row       JoinedRow
			subsystem sql.NullInt64
		)
		if err := rows.Scan(&row.SiteID, &subsystem); err != nil {
			return nil, fmt.Errorf("failed to scan joined row: %w", err)
		}
		if subsystem.Valid {
			v := int(subsystem.Int64)
			row.SubsystemID = &v
		}
		out = append(out, row)
	}
	return out, rows.Err()
}
