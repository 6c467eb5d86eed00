// Package members: repository.go reads the users table.
package members

import (
	"context"
	"errors"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"bahth.org/engagement/internal/common"
)

// Repository provides read access to platform users.
type Repository struct {
	db *pgxpool.Pool
}

// NewRepository creates the members repository.
func NewRepository(db *pgxpool.Pool) *Repository {
	return &Repository{db: db}
}

const memberColumns = `
	id, COALESCE(username, ''), COALESCE(name, ''), COALESCE(avatar, ''),
	COALESCE(institution, ''), verified, role`

// GetByID returns the user or common.ErrNotFound.
func (r *Repository) GetByID(ctx context.Context, id string) (*Member, error) {
	var m Member
	err := r.db.QueryRow(ctx,
		`SELECT `+memberColumns+` FROM users WHERE id = $1`, id,
	).Scan(&m.ID, &m.Username, &m.Name, &m.Avatar, &m.Institution, &m.Verified, &m.Role)
	if errors.Is(err, pgx.ErrNoRows) {
		return nil, common.ErrNotFound
	}
	if err != nil {
		return nil, common.Storage("get member", err)
	}
	return &m, nil
}

// GetByIDs returns the users among ids that exist, keyed by id.
func (r *Repository) GetByIDs(ctx context.Context, ids []string) (map[string]*Member, error) {
	out := make(map[string]*Member, len(ids))
	if len(ids) == 0 {
		return out, nil
	}

	rows, err := r.db.Query(ctx,
		`SELECT `+memberColumns+` FROM users WHERE id = ANY($1)`, ids)
	if err != nil {
		return nil, common.Storage("get members", err)
	}
	defer rows.Close()

	for rows.Next() {
		var m Member
		if err := rows.Scan(&m.ID, &m.Username, &m.Name, &m.Avatar, &m.Institution, &m.Verified, &m.Role); err != nil {
			return nil, common.Storage("scan member", err)
		}
		out[m.ID] = &m
	}
	if err := rows.Err(); err != nil {
		return nil, common.Storage("get members", err)
	}
	return out, nil
}
