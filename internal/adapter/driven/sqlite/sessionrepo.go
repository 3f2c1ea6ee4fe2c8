package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"

	"github.com/ericfisherdev/votebooth/internal/domain/model"
	"github.com/ericfisherdev/votebooth/internal/domain/port/driven"
)

// Compile-time interface satisfaction check.
var _ driven.SessionStore = (*SessionRepo)(nil)

// SessionRepo is the SQLite implementation of the SessionStore port interface.
// All rows live in a single local database file owned by the booth process.
type SessionRepo struct {
	db *DB
}

// NewSessionRepo creates a new SessionRepo backed by the given DB.
func NewSessionRepo(db *DB) *SessionRepo {
	return &SessionRepo{db: db}
}

// DeviceID returns the stable device identity, generating and persisting a
// fresh UUID on first call. The single-row constraint on the device table
// makes the generate-once semantics hold even across racing callers.
func (r *SessionRepo) DeviceID(ctx context.Context) (string, error) {
	const query = `SELECT device_id FROM device WHERE id = 1`

	var id string
	err := r.db.Reader.QueryRowContext(ctx, query).Scan(&id)
	if err == nil {
		return id, nil
	}
	if !errors.Is(err, sql.ErrNoRows) {
		return "", fmt.Errorf("get device id: %w", err)
	}

	const insert = `INSERT OR IGNORE INTO device (id, device_id) VALUES (1, ?)`
	if _, err := r.db.Writer.ExecContext(ctx, insert, uuid.NewString()); err != nil {
		return "", fmt.Errorf("create device id: %w", err)
	}

	// Re-read rather than returning the generated value: a concurrent insert
	// may have won, and the persisted row is the identity of record.
	if err := r.db.Reader.QueryRowContext(ctx, query).Scan(&id); err != nil {
		return "", fmt.Errorf("reread device id: %w", err)
	}
	return id, nil
}

// Credential returns the stored PIN, or "" when no session row exists.
func (r *SessionRepo) Credential(ctx context.Context) (string, error) {
	const query = `SELECT pin FROM session WHERE id = 1`

	var pin string
	err := r.db.Reader.QueryRowContext(ctx, query).Scan(&pin)
	if errors.Is(err, sql.ErrNoRows) {
		return "", nil
	}
	if err != nil {
		return "", fmt.Errorf("get credential: %w", err)
	}
	return pin, nil
}

// SetCredential stores the PIN, replacing any prior one.
func (r *SessionRepo) SetCredential(ctx context.Context, pin string) error {
	const query = `
		INSERT INTO session (id, pin, updated_at) VALUES (1, ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET pin = excluded.pin, updated_at = CURRENT_TIMESTAMP`

	if _, err := r.db.Writer.ExecContext(ctx, query, pin); err != nil {
		return fmt.Errorf("set credential: %w", err)
	}
	return nil
}

// ClearCredential removes the stored PIN, keeping the session row.
func (r *SessionRepo) ClearCredential(ctx context.Context) error {
	const query = `UPDATE session SET pin = '', updated_at = CURRENT_TIMESTAMP WHERE id = 1`

	if _, err := r.db.Writer.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("clear credential: %w", err)
	}
	return nil
}

// Selection returns the stored choice for a category, or nil when absent.
func (r *SessionRepo) Selection(ctx context.Context, c model.Category) (*model.Selection, error) {
	const query = `
		SELECT candidate_number, name, department, image_url, chosen_at
		FROM selections WHERE category = ?`

	var sel model.Selection
	var chosenAt string
	err := r.db.Reader.QueryRowContext(ctx, query, string(c)).Scan(
		&sel.Candidate.Number,
		&sel.Candidate.Name,
		&sel.Candidate.Department,
		&sel.Candidate.ImageURL,
		&chosenAt,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get selection %s: %w", c, err)
	}

	sel.Category = c
	sel.ChosenAt, err = parseTime(chosenAt)
	if err != nil {
		return nil, fmt.Errorf("parse chosen_at for %s: %w", c, err)
	}
	return &sel, nil
}

// SetSelection stores a choice, replacing any prior one for its category.
func (r *SessionRepo) SetSelection(ctx context.Context, sel model.Selection) error {
	const query = `
		INSERT OR REPLACE INTO selections (category, candidate_number, name, department, image_url, chosen_at)
		VALUES (?, ?, ?, ?, ?, ?)`

	chosenAt := sel.ChosenAt
	if chosenAt.IsZero() {
		chosenAt = time.Now().UTC()
	}

	_, err := r.db.Writer.ExecContext(ctx, query,
		string(sel.Category),
		sel.Candidate.Number,
		sel.Candidate.Name,
		sel.Candidate.Department,
		sel.Candidate.ImageURL,
		chosenAt.UTC().Format(time.RFC3339Nano),
	)
	if err != nil {
		return fmt.Errorf("set selection %s: %w", sel.Category, err)
	}
	return nil
}

// ClearSelection removes the choice for one category.
func (r *SessionRepo) ClearSelection(ctx context.Context, c model.Category) error {
	const query = `DELETE FROM selections WHERE category = ?`

	if _, err := r.db.Writer.ExecContext(ctx, query, string(c)); err != nil {
		return fmt.Errorf("clear selection %s: %w", c, err)
	}
	return nil
}

// ClearSelections removes the choices for all categories.
func (r *SessionRepo) ClearSelections(ctx context.Context) error {
	const query = `DELETE FROM selections`

	if _, err := r.db.Writer.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("clear selections: %w", err)
	}
	return nil
}

// Roster returns the most recently recorded candidate list for a category,
// or nil when no fetch has been recorded.
func (r *SessionRepo) Roster(ctx context.Context, c model.Category) ([]model.Candidate, error) {
	const query = `
		SELECT candidate_number, name, department, image_url
		FROM rosters WHERE category = ? ORDER BY position`

	rows, err := r.db.Reader.QueryContext(ctx, query, string(c))
	if err != nil {
		return nil, fmt.Errorf("get roster %s: %w", c, err)
	}
	defer rows.Close()

	var roster []model.Candidate
	for rows.Next() {
		var cand model.Candidate
		if err := rows.Scan(&cand.Number, &cand.Name, &cand.Department, &cand.ImageURL); err != nil {
			return nil, fmt.Errorf("scan roster %s: %w", c, err)
		}
		roster = append(roster, cand)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate roster %s: %w", c, err)
	}

	return roster, nil
}

// SetRoster replaces the recorded candidate list for a category. Delete and
// insert run in one transaction so a reader never observes a partial roster.
func (r *SessionRepo) SetRoster(ctx context.Context, c model.Category, roster []model.Candidate) error {
	tx, err := r.db.Writer.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("set roster %s: begin: %w", c, err)
	}
	defer tx.Rollback()

	if _, err := tx.ExecContext(ctx, `DELETE FROM rosters WHERE category = ?`, string(c)); err != nil {
		return fmt.Errorf("set roster %s: clear: %w", c, err)
	}

	const insert = `
		INSERT INTO rosters (category, position, candidate_number, name, department, image_url)
		VALUES (?, ?, ?, ?, ?, ?)`
	for i, cand := range roster {
		if _, err := tx.ExecContext(ctx, insert, string(c), i, cand.Number, cand.Name, cand.Department, cand.ImageURL); err != nil {
			return fmt.Errorf("set roster %s: insert #%d: %w", c, cand.Number, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("set roster %s: commit: %w", c, err)
	}
	return nil
}

// VotedAt returns when the session voted, or nil when it has not.
func (r *SessionRepo) VotedAt(ctx context.Context) (*time.Time, error) {
	const query = `SELECT voted_at FROM session WHERE id = 1`

	var votedAt sql.NullString
	err := r.db.Reader.QueryRowContext(ctx, query).Scan(&votedAt)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, nil
	}
	if err != nil {
		return nil, fmt.Errorf("get voted_at: %w", err)
	}
	if !votedAt.Valid || votedAt.String == "" {
		return nil, nil
	}

	at, err := parseTime(votedAt.String)
	if err != nil {
		return nil, fmt.Errorf("parse voted_at: %w", err)
	}
	return &at, nil
}

// MarkVoted records the terminal voted marker.
func (r *SessionRepo) MarkVoted(ctx context.Context, at time.Time) error {
	const query = `
		INSERT INTO session (id, pin, voted_at, updated_at) VALUES (1, '', ?, CURRENT_TIMESTAMP)
		ON CONFLICT (id) DO UPDATE SET voted_at = excluded.voted_at, updated_at = CURRENT_TIMESTAMP`

	if _, err := r.db.Writer.ExecContext(ctx, query, at.UTC().Format(time.RFC3339Nano)); err != nil {
		return fmt.Errorf("mark voted: %w", err)
	}
	return nil
}

// ClearVoted removes the voted marker as part of a full reset.
func (r *SessionRepo) ClearVoted(ctx context.Context) error {
	const query = `UPDATE session SET voted_at = NULL, updated_at = CURRENT_TIMESTAMP WHERE id = 1`

	if _, err := r.db.Writer.ExecContext(ctx, query); err != nil {
		return fmt.Errorf("clear voted: %w", err)
	}
	return nil
}

// parseTime parses the RFC3339 timestamps this repo writes, falling back to
// the space-separated form CURRENT_TIMESTAMP produces.
func parseTime(raw string) (time.Time, error) {
	if t, err := time.Parse(time.RFC3339Nano, raw); err == nil {
		return t, nil
	}
	return time.Parse("2006-01-02 15:04:05", raw)
}
