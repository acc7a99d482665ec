package export

import (
	"context"
	"fmt"
	"math"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/lib/pq"

	"github.com/okian/touchline/internal/domain/model"
)

const schema = `
CREATE TABLE IF NOT EXISTS touchline_runs (
	match_id    TEXT PRIMARY KEY,
	run_id      TEXT NOT NULL,
	home_team   TEXT NOT NULL,
	away_team   TEXT NOT NULL,
	home_score  INTEGER NOT NULL,
	away_score  INTEGER NOT NULL,
	records     INTEGER NOT NULL,
	parsed_at   TIMESTAMPTZ NOT NULL
);
CREATE TABLE IF NOT EXISTS touchline_events (
	match_id        TEXT NOT NULL REFERENCES touchline_runs(match_id) ON DELETE CASCADE,
	event_id        INTEGER NOT NULL,
	type_id         INTEGER NOT NULL,
	canonical_event TEXT,
	period_id       INTEGER NOT NULL,
	minutes         INTEGER NOT NULL,
	seconds         DOUBLE PRECISION NOT NULL,
	player_id       INTEGER,
	player_name     TEXT NOT NULL,
	team_id         TEXT NOT NULL,
	outcome         INTEGER,
	start_x         DOUBLE PRECISION,
	start_y         DOUBLE PRECISION,
	to_player_id    INTEGER,
	to_player_name  TEXT,
	end_x           DOUBLE PRECISION,
	end_y           DOUBLE PRECISION,
	td_frame        INTEGER NOT NULL,
	vendor_event    TEXT NOT NULL,
	datetime        TIMESTAMPTZ,
	PRIMARY KEY (match_id, event_id)
);`

// Run is the row written to touchline_runs.
type Run struct {
	MatchID   string    `db:"match_id"`
	RunID     string    `db:"run_id"`
	HomeTeam  string    `db:"home_team"`
	AwayTeam  string    `db:"away_team"`
	HomeScore int       `db:"home_score"`
	AwayScore int       `db:"away_score"`
	Records   int       `db:"records"`
	ParsedAt  time.Time `db:"parsed_at"`
}

// PostgresSink persists event tables to PostgreSQL.
type PostgresSink struct {
	db *sqlx.DB
}

// OpenPostgres connects to dsn and returns a sink.
func OpenPostgres(ctx context.Context, dsn string) (*PostgresSink, error) {
	db, err := sqlx.ConnectContext(ctx, "postgres", dsn)
	if err != nil {
		return nil, fmt.Errorf("connect postgres: %w", err)
	}
	return NewPostgresSink(db), nil
}

// NewPostgresSink wraps an existing connection pool.
func NewPostgresSink(db *sqlx.DB) *PostgresSink {
	return &PostgresSink{db: db}
}

// EnsureSchema creates the tables when they do not exist.
func (s *PostgresSink) EnsureSchema(ctx context.Context) error {
	if _, err := s.db.ExecContext(ctx, schema); err != nil {
		return fmt.Errorf("create schema: %w", err)
	}
	return nil
}

// Write replaces the stored rows of run.MatchID with data in one
// transaction. Event rows are loaded with COPY.
func (s *PostgresSink) Write(ctx context.Context, run Run, data *model.EventData) (err error) {
	tx, err := s.db.BeginTxx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin tx: %w", err)
	}
	defer func() {
		if err != nil {
			_ = tx.Rollback()
		}
	}()

	if _, err = tx.NamedExecContext(ctx, `
		INSERT INTO touchline_runs (match_id, run_id, home_team, away_team, home_score, away_score, records, parsed_at)
		VALUES (:match_id, :run_id, :home_team, :away_team, :home_score, :away_score, :records, :parsed_at)
		ON CONFLICT (match_id) DO UPDATE SET
			run_id = EXCLUDED.run_id,
			home_team = EXCLUDED.home_team,
			away_team = EXCLUDED.away_team,
			home_score = EXCLUDED.home_score,
			away_score = EXCLUDED.away_score,
			records = EXCLUDED.records,
			parsed_at = EXCLUDED.parsed_at`, run); err != nil {
		return fmt.Errorf("upsert run %s: %w", run.MatchID, err)
	}
	if _, err = tx.ExecContext(ctx, `DELETE FROM touchline_events WHERE match_id = $1`, run.MatchID); err != nil {
		return fmt.Errorf("clear events %s: %w", run.MatchID, err)
	}

	cols := append([]string{"match_id"}, model.Columns()...)
	stmt, err := tx.PreparexContext(ctx, pq.CopyIn("touchline_events", cols...))
	if err != nil {
		return fmt.Errorf("prepare copy: %w", err)
	}
	defer stmt.Close()

	if data != nil {
		for _, r := range data.Records {
			args := append([]any{run.MatchID}, sqlValues(r)...)
			if _, err = stmt.ExecContext(ctx, args...); err != nil {
				return fmt.Errorf("copy event %d: %w", r.EventID, err)
			}
		}
	}
	if _, err = stmt.ExecContext(ctx); err != nil {
		return fmt.Errorf("flush copy: %w", err)
	}
	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit: %w", err)
	}
	return nil
}

// CountEvents returns the number of stored rows for a match.
func (s *PostgresSink) CountEvents(ctx context.Context, matchID string) (int, error) {
	var n int
	if err := s.db.GetContext(ctx, &n, `SELECT COUNT(*) FROM touchline_events WHERE match_id = $1`, matchID); err != nil {
		return 0, fmt.Errorf("count events %s: %w", matchID, err)
	}
	return n, nil
}

// Close releases the connection pool.
func (s *PostgresSink) Close() error {
	return s.db.Close()
}

// sqlValues maps a row to COPY arguments. NaN floats and MissingInt become NULL.
func sqlValues(r model.EventRecord) []any {
	vals := r.Values()
	for i, v := range vals {
		switch x := v.(type) {
		case float64:
			if math.IsNaN(x) {
				vals[i] = nil
			}
		case int:
			if x == model.MissingInt {
				vals[i] = nil
			}
		case time.Time:
			if x.IsZero() {
				vals[i] = nil
			}
		}
	}
	return vals
}
