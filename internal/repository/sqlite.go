package repository

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/krakosik/demoday/internal/dto"
	"github.com/krakosik/demoday/internal/model"
	msqlite "modernc.org/sqlite"
	sqlite3lib "modernc.org/sqlite/lib"
)

const sqliteSchema = `
CREATE TABLE IF NOT EXISTS startups (
	id TEXT PRIMARY KEY,
	name TEXT NOT NULL,
	website TEXT,
	founder_linkedin TEXT,
	deck_url TEXT,
	created_at INTEGER NOT NULL,
	updated_at INTEGER NOT NULL
);
CREATE INDEX IF NOT EXISTS idx_startups_name ON startups (name);
CREATE TABLE IF NOT EXISTS ballots (
	id TEXT PRIMARY KEY,
	voter_name TEXT NOT NULL,
	voter_name_lower TEXT NOT NULL UNIQUE,
	selections TEXT NOT NULL,
	timestamp INTEGER NOT NULL
);
`

func toMillis(value time.Time) int64 {
	return value.UTC().UnixMilli()
}

func fromMillis(value int64) time.Time {
	return time.UnixMilli(value).UTC()
}

// OpenSQLite opens (creating if needed) a single-file SQLite store.
func OpenSQLite(path string) (Repositories, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("%w: sqlite path is required", dto.ErrConfiguration)
	}
	dsn := filepath.Clean(path) + "?_pragma=busy_timeout(5000)&_pragma=journal_mode(WAL)"
	sqlDB, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, persistenceError("open sqlite", err)
	}
	// A single writer keeps the UNIQUE check and the insert on one connection.
	sqlDB.SetMaxOpenConns(1)
	if err := sqlDB.Ping(); err != nil {
		_ = sqlDB.Close()
		return nil, persistenceError("ping sqlite", err)
	}
	if _, err := sqlDB.Exec(sqliteSchema); err != nil {
		_ = sqlDB.Close()
		return nil, persistenceError("migrate sqlite", err)
	}
	return &repositories{
		startupRepository: &sqliteStartups{db: sqlDB},
		ballotRepository:  &sqliteBallots{db: sqlDB},
		closer:            sqlDB.Close,
	}, nil
}

type sqliteStartups struct {
	db *sql.DB
}

const startupColumns = "id, name, website, founder_linkedin, deck_url, created_at, updated_at"

type rowScanner interface {
	Scan(dest ...any) error
}

func scanStartup(row rowScanner) (model.Startup, error) {
	var (
		s                       model.Startup
		website, linkedin, deck sql.NullString
		createdAt, updatedAt    int64
	)
	if err := row.Scan(&s.ID, &s.Name, &website, &linkedin, &deck, &createdAt, &updatedAt); err != nil {
		return model.Startup{}, err
	}
	s.Website = fromNullString(website)
	s.FounderLinkedIn = fromNullString(linkedin)
	s.DeckURL = fromNullString(deck)
	s.CreatedAt = fromMillis(createdAt)
	s.UpdatedAt = fromMillis(updatedAt)
	return s, nil
}

func (s *sqliteStartups) List(ctx context.Context) ([]model.Startup, error) {
	rows, err := s.db.QueryContext(ctx, "SELECT "+startupColumns+" FROM startups ORDER BY name ASC, id ASC")
	if err != nil {
		return nil, persistenceError("list startups", err)
	}
	defer rows.Close()

	startups := make([]model.Startup, 0)
	for rows.Next() {
		startup, err := scanStartup(rows)
		if err != nil {
			return nil, persistenceError("list startups", err)
		}
		startups = append(startups, startup)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list startups", err)
	}
	return startups, nil
}

func (s *sqliteStartups) GetByID(ctx context.Context, id string) (model.Startup, error) {
	row := s.db.QueryRowContext(ctx, "SELECT "+startupColumns+" FROM startups WHERE id = ?", id)
	startup, err := scanStartup(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return model.Startup{}, notFoundError("startup", id)
		}
		return model.Startup{}, persistenceError("get startup", err)
	}
	return startup, nil
}

func (s *sqliteStartups) Create(ctx context.Context, startup model.Startup) (model.Startup, error) {
	if startup.ID == "" {
		return model.Startup{}, persistenceError("create startup", errEmptyID)
	}
	_, err := s.db.ExecContext(ctx,
		"INSERT INTO startups ("+startupColumns+") VALUES (?, ?, ?, ?, ?, ?, ?)",
		startup.ID, startup.Name,
		toNullString(startup.Website), toNullString(startup.FounderLinkedIn), toNullString(startup.DeckURL),
		toMillis(startup.CreatedAt), toMillis(startup.UpdatedAt),
	)
	if err != nil {
		return model.Startup{}, persistenceError("create startup", err)
	}
	return s.GetByID(ctx, startup.ID)
}

func (s *sqliteStartups) Update(ctx context.Context, startup model.Startup) (model.Startup, error) {
	result, err := s.db.ExecContext(ctx,
		"UPDATE startups SET name = ?, website = ?, founder_linkedin = ?, deck_url = ?, updated_at = ? WHERE id = ?",
		startup.Name,
		toNullString(startup.Website), toNullString(startup.FounderLinkedIn), toNullString(startup.DeckURL),
		toMillis(startup.UpdatedAt), startup.ID,
	)
	if err != nil {
		return model.Startup{}, persistenceError("update startup", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return model.Startup{}, notFoundError("startup", startup.ID)
	}
	return s.GetByID(ctx, startup.ID)
}

func (s *sqliteStartups) Delete(ctx context.Context, id string) error {
	result, err := s.db.ExecContext(ctx, "DELETE FROM startups WHERE id = ?", id)
	if err != nil {
		return persistenceError("delete startup", err)
	}
	if affected, err := result.RowsAffected(); err == nil && affected == 0 {
		return notFoundError("startup", id)
	}
	return nil
}

type sqliteBallots struct {
	db *sql.DB
}

func (b *sqliteBallots) List(ctx context.Context) ([]model.Ballot, error) {
	rows, err := b.db.QueryContext(ctx,
		"SELECT id, voter_name, voter_name_lower, selections, timestamp FROM ballots ORDER BY timestamp ASC, id ASC")
	if err != nil {
		return nil, persistenceError("list ballots", err)
	}
	defer rows.Close()

	ballots := make([]model.Ballot, 0)
	for rows.Next() {
		var (
			ballot     model.Ballot
			selections string
			timestamp  int64
		)
		if err := rows.Scan(&ballot.ID, &ballot.VoterName, &ballot.VoterNameLower, &selections, &timestamp); err != nil {
			return nil, persistenceError("list ballots", err)
		}
		if err := json.Unmarshal([]byte(selections), &ballot.Selections); err != nil {
			return nil, persistenceError("decode ballot selections", err)
		}
		ballot.Timestamp = fromMillis(timestamp)
		ballots = append(ballots, ballot)
	}
	if err := rows.Err(); err != nil {
		return nil, persistenceError("list ballots", err)
	}
	return ballots, nil
}

func (b *sqliteBallots) Append(ctx context.Context, ballot model.Ballot) (model.Ballot, error) {
	if ballot.ID == "" {
		return model.Ballot{}, persistenceError("append ballot", errEmptyID)
	}
	selections, err := json.Marshal(ballot.Selections)
	if err != nil {
		return model.Ballot{}, persistenceError("encode ballot selections", err)
	}
	_, err = b.db.ExecContext(ctx,
		"INSERT INTO ballots (id, voter_name, voter_name_lower, selections, timestamp) VALUES (?, ?, ?, ?, ?)",
		ballot.ID, ballot.VoterName, ballot.VoterNameLower, string(selections), toMillis(ballot.Timestamp),
	)
	if err != nil {
		if isSQLiteVoterConflict(err) {
			return model.Ballot{}, fmt.Errorf("%w: %s", dto.ErrDuplicateVoter, ballot.VoterName)
		}
		return model.Ballot{}, persistenceError("append ballot", err)
	}
	return ballot, nil
}

func isSQLiteVoterConflict(err error) bool {
	var sqliteErr *msqlite.Error
	if errors.As(err, &sqliteErr) && sqliteErr.Code() == sqlite3lib.SQLITE_CONSTRAINT_UNIQUE {
		return true
	}
	message := strings.ToLower(err.Error())
	return strings.Contains(message, "unique constraint failed") &&
		strings.Contains(message, "ballots.voter_name_lower")
}

func toNullString(value *string) sql.NullString {
	if value == nil {
		return sql.NullString{}
	}
	return sql.NullString{String: *value, Valid: true}
}

func fromNullString(value sql.NullString) *string {
	if !value.Valid {
		return nil
	}
	v := value.String
	return &v
}
