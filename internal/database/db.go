package database

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"regexp"
	"strings"

	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
	_ "modernc.org/sqlite"

	"github.com/Alias1177/numbersff/models"
)

// Supported drivers
const (
	DriverPostgres = "postgres"
	DriverSQLite   = "sqlite"
)

// DB represents a database connection
type DB struct {
	*sql.DB
	driver string
}

// ConnectionParams holds connection parameters.
// Path is only used by the sqlite driver.
type ConnectionParams struct {
	Driver   string
	Host     string
	Port     string
	User     string
	Password string
	DBName   string
	SSLMode  string
	Path     string
}

// New creates a new database connection and makes sure the schema exists
func New(params ConnectionParams) (*DB, error) {
	var (
		conn *sql.DB
		err  error
	)

	switch params.Driver {
	case DriverPostgres, "":
		connStr := fmt.Sprintf(
			"host=%s port=%s user=%s password=%s dbname=%s sslmode=%s",
			params.Host, params.Port, params.User, params.Password, params.DBName, params.SSLMode,
		)
		conn, err = sql.Open(DriverPostgres, connStr)
		params.Driver = DriverPostgres
	case DriverSQLite:
		conn, err = sql.Open(DriverSQLite, params.Path+"?_pragma=journal_mode(wal)&_pragma=busy_timeout(5000)")
		if err == nil {
			conn.SetMaxOpenConns(1)
		}
	default:
		return nil, fmt.Errorf("unsupported database driver %q", params.Driver)
	}
	if err != nil {
		return nil, fmt.Errorf("open %s: %w", params.Driver, err)
	}

	// Check connection
	if err := conn.Ping(); err != nil {
		conn.Close()
		return nil, fmt.Errorf("ping %s: %w", params.Driver, err)
	}

	db := &DB{DB: conn, driver: params.Driver}
	if err := db.createTables(); err != nil {
		conn.Close()
		return nil, err
	}

	log.Info().Str("component", "database").Str("driver", params.Driver).Msg("Database ready")
	return db, nil
}

// Driver returns the name of the underlying driver
func (db *DB) Driver() string {
	return db.driver
}

var placeholderPattern = regexp.MustCompile(`\$(\d+)`)

// rebind rewrites $N placeholders into sqlite's ?N form
func (db *DB) rebind(query string) string {
	if db.driver != DriverSQLite {
		return query
	}
	return placeholderPattern.ReplaceAllString(query, "?$1")
}

func (db *DB) exec(ctx context.Context, query string, args ...any) (sql.Result, error) {
	return db.ExecContext(ctx, db.rebind(query), args...)
}

func (db *DB) query(ctx context.Context, query string, args ...any) (*sql.Rows, error) {
	return db.QueryContext(ctx, db.rebind(query), args...)
}

func (db *DB) queryRow(ctx context.Context, query string, args ...any) *sql.Row {
	return db.QueryRowContext(ctx, db.rebind(query), args...)
}

// statColumns renders "<prefix><stat><suffix> DOUBLE PRECISION" column definitions
func statColumns(stats []models.Stat, suffixes ...string) string {
	if len(suffixes) == 0 {
		suffixes = []string{""}
	}
	var defs []string
	for _, stat := range stats {
		for _, suffix := range suffixes {
			defs = append(defs, string(stat)+suffix+" DOUBLE PRECISION")
		}
	}
	return strings.Join(defs, ",\n\t\t\t")
}

// createTables creates the necessary tables if they don't exist
func (db *DB) createTables() error {
	for _, stmt := range []string{
		`CREATE TABLE IF NOT EXISTS weekly_stats (
			season INTEGER NOT NULL,
			week INTEGER NOT NULL,
			player_id TEXT NOT NULL,
			player_name TEXT NOT NULL,
			position TEXT NOT NULL,
			headshot_url TEXT NOT NULL DEFAULT '',
			team TEXT NOT NULL,
			opponent TEXT NOT NULL,
			home_away TEXT NOT NULL,
			age DOUBLE PRECISION,
			depth_ranking INTEGER,
			fantasy_points_ppr DOUBLE PRECISION,
			` + statColumns(models.TrackedStats) + `,
			PRIMARY KEY (season, week, player_id)
		)`,
		`CREATE TABLE IF NOT EXISTS weekly_roster (
			season INTEGER NOT NULL,
			week INTEGER NOT NULL,
			player_id TEXT NOT NULL,
			player_name TEXT NOT NULL,
			position TEXT NOT NULL,
			status TEXT NOT NULL,
			team TEXT NOT NULL,
			opponent TEXT NOT NULL,
			age DOUBLE PRECISION,
			depth_ranking INTEGER,
			PRIMARY KEY (season, week, player_id)
		)`,
		`CREATE TABLE IF NOT EXISTS schedule (
			game_id TEXT PRIMARY KEY,
			season INTEGER NOT NULL,
			week INTEGER NOT NULL,
			gameday TEXT NOT NULL,
			gametime TEXT NOT NULL DEFAULT '',
			weekday TEXT NOT NULL DEFAULT '',
			home_team TEXT NOT NULL,
			away_team TEXT NOT NULL
		)`,
		`CREATE INDEX IF NOT EXISTS idx_schedule_gameday ON schedule(gameday)`,
		`CREATE TABLE IF NOT EXISTS weekly_predictions_base (
			season INTEGER NOT NULL,
			week INTEGER NOT NULL,
			player_id TEXT NOT NULL,
			player_name TEXT NOT NULL,
			team TEXT NOT NULL,
			opponent TEXT NOT NULL,
			position TEXT NOT NULL,
			` + statColumns(models.ScoredStats) + `,
			PRIMARY KEY (season, week, player_id)
		)`,
		`CREATE TABLE IF NOT EXISTS prediction_diffs (
			season INTEGER NOT NULL,
			week INTEGER NOT NULL,
			player_id TEXT NOT NULL,
			player_name TEXT NOT NULL,
			team TEXT NOT NULL,
			opponent TEXT NOT NULL,
			position TEXT NOT NULL,
			` + statColumns(models.TrackedStats, "", "_actual", "_diff") + `,
			PRIMARY KEY (season, week, player_id)
		)`,
		`CREATE TABLE IF NOT EXISTS accuracy_metrics (
			season INTEGER NOT NULL,
			week INTEGER NOT NULL,
			stat TEXT NOT NULL,
			mae DOUBLE PRECISION,
			mse DOUBLE PRECISION,
			rmse DOUBLE PRECISION,
			r_squared DOUBLE PRECISION,
			sample_size INTEGER NOT NULL,
			PRIMARY KEY (season, week)
		)`,
		`CREATE TABLE IF NOT EXISTS job_tracker (
			job_id TEXT PRIMARY KEY,
			job TEXT NOT NULL,
			status TEXT NOT NULL,
			season INTEGER NOT NULL,
			week INTEGER NOT NULL,
			started_at TIMESTAMP NOT NULL,
			completed_at TIMESTAMP,
			error TEXT NOT NULL DEFAULT ''
		)`,
	} {
		if _, err := db.Exec(stmt); err != nil {
			return fmt.Errorf("init schema: %w", err)
		}
	}
	return nil
}

// EnsureRulesetTable creates the fantasy points table for a ruleset.
// table must already be a validated identifier.
func (db *DB) EnsureRulesetTable(ctx context.Context, table string) error {
	_, err := db.ExecContext(ctx, `CREATE TABLE IF NOT EXISTS `+table+` (
			season INTEGER NOT NULL,
			week INTEGER NOT NULL,
			player_id TEXT NOT NULL,
			fantasy_points DOUBLE PRECISION NOT NULL,
			PRIMARY KEY (season, week, player_id)
		)`)
	if err != nil {
		return fmt.Errorf("create %s: %w", table, err)
	}
	return nil
}

// replacement swaps every row of table matching where for rows
type replacement struct {
	table     string
	where     string
	whereArgs []any
	columns   []string
	rows      [][]any
}

// seasonWeekReplacement is a replacement scoped to one season/week
func seasonWeekReplacement(table string, sw models.SeasonWeek, columns []string, rows [][]any) replacement {
	return replacement{
		table:     table,
		where:     `season = $1 AND week = $2`,
		whereArgs: []any{sw.Season, sw.Week},
		columns:   columns,
		rows:      rows,
	}
}

// replace applies every replacement inside one transaction.
// Either the old rows survive untouched or every new set is fully written.
func (db *DB) replace(ctx context.Context, reps ...replacement) (err error) {
	tx, err := db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin replace: %w", err)
	}
	defer func() {
		if err != nil {
			if rbErr := tx.Rollback(); rbErr != nil && !errors.Is(rbErr, sql.ErrTxDone) {
				log.Error().Err(rbErr).Str("component", "database").Msg("Rollback failed")
			}
		}
	}()

	for _, rep := range reps {
		if err = db.replaceInTx(ctx, tx, rep); err != nil {
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		return fmt.Errorf("commit replace: %w", err)
	}
	return nil
}

func (db *DB) replaceInTx(ctx context.Context, tx *sql.Tx, rep replacement) error {
	if _, err := tx.ExecContext(ctx, db.rebind(`DELETE FROM `+rep.table+` WHERE `+rep.where), rep.whereArgs...); err != nil {
		return fmt.Errorf("delete from %s: %w", rep.table, err)
	}
	if len(rep.rows) == 0 {
		return nil
	}

	placeholders := make([]string, len(rep.columns))
	for i := range rep.columns {
		placeholders[i] = fmt.Sprintf("$%d", i+1)
	}
	insert := fmt.Sprintf(`INSERT INTO %s (%s) VALUES (%s)`,
		rep.table, strings.Join(rep.columns, ", "), strings.Join(placeholders, ", "))

	stmt, err := tx.PrepareContext(ctx, db.rebind(insert))
	if err != nil {
		return fmt.Errorf("prepare insert into %s: %w", rep.table, err)
	}
	defer stmt.Close()

	for _, row := range rep.rows {
		if _, err := stmt.ExecContext(ctx, row...); err != nil {
			return fmt.Errorf("insert into %s: %w", rep.table, err)
		}
	}
	return nil
}

// replaceSeasonWeek is replace for a single table scoped to one season/week
func (db *DB) replaceSeasonWeek(ctx context.Context, table string, sw models.SeasonWeek, columns []string, rows [][]any) error {
	return db.replace(ctx, seasonWeekReplacement(table, sw, columns, rows))
}

// checkKey rejects rows outside the season/week being replaced
func checkKey(sw models.SeasonWeek, key models.PlayerWeek) error {
	if key.SeasonWeek() != sw {
		return fmt.Errorf("row %s for player %s does not belong to %s", key.SeasonWeek(), key.PlayerID, sw)
	}
	if key.PlayerID == "" {
		return fmt.Errorf("row in %s has empty player_id", sw)
	}
	return nil
}

// statNames returns the column names for stats, with an optional suffix
func statNames(stats []models.Stat, suffix string) []string {
	names := make([]string, len(stats))
	for i, stat := range stats {
		names[i] = string(stat) + suffix
	}
	return names
}

// statValues returns the column values of line for stats
func statValues(line models.StatLine, stats []models.Stat) []any {
	values := make([]any, len(stats))
	for i, stat := range stats {
		values[i] = nullFloat(line.Get(stat))
	}
	return values
}

// nullFloat turns a missing value into SQL NULL
func nullFloat(v *float64) any {
	if v == nil {
		return nil
	}
	return *v
}

func nullInt(v *int) any {
	if v == nil {
		return nil
	}
	return *v
}

// statDests returns scan destinations into line for stats
func statDests(line *models.StatLine, stats []models.Stat) []any {
	dests := make([]any, len(stats))
	for i, stat := range stats {
		dests[i] = line.Field(stat)
	}
	return dests
}
