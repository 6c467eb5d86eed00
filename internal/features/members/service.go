// Package members: service.go validates lookups before they reach the database.
package members

import (
	"context"
	"strings"

	"bahth.org/engagement/internal/common"
)

// Store reads users. *Repository implements it.
type Store interface {
	GetByID(ctx context.Context, id string) (*Member, error)
	GetByIDs(ctx context.Context, ids []string) (map[string]*Member, error)
}

// Service looks up platform users.
type Service struct {
	store Store
}

// NewService creates the members service.
func NewService(store Store) *Service {
	return &Service{store: store}
}

// GetByID returns the user or common.ErrNotFound.
func (s *Service) GetByID(ctx context.Context, id string) (*Member, error) {
	id = strings.TrimSpace(id)
	if id == "" {
		return nil, common.ErrInvalidUser
	}
	return s.store.GetByID(ctx, id)
}

// GetByIDs returns the existing users among ids. Blank and repeated ids are skipped.
func (s *Service) GetByIDs(ctx context.Context, ids []string) (map[string]*Member, error) {
	seen := make(map[string]struct{}, len(ids))
	unique := make([]string, 0, len(ids))
	for _, id := range ids {
		id = strings.TrimSpace(id)
		if id == "" {
			continue
		}
		if _, ok := seen[id]; ok {
			continue
		}
		seen[id] = struct{}{}
		unique = append(unique, id)
	}
	return s.store.GetByIDs(ctx, unique)
}
