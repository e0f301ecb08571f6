package postgres

import (
	"context"
	"fmt"

	"github.com/jwalitptl/clinic-directory/internal/model"
	"github.com/jwalitptl/clinic-directory/internal/repository"
)

type searchRepository struct {
	BaseRepository
}

func NewSearchRepository(base BaseRepository) repository.SearchRepository {
	return &searchRepository{base}
}

// Search calls search_clinics_v1 and falls back to search_clinics on backends
// that predate it.
func (r *searchRepository) Search(ctx context.Context, query string, limit int) ([]*model.SearchResult, error) {
	results, err := r.call(ctx, "search_clinics_v1", query, limit)
	if isUndefinedFunction(err) {
		results, err = r.call(ctx, "search_clinics", query, limit)
	}
	if err != nil {
		return nil, err
	}
	return results, nil
}

func (r *searchRepository) call(ctx context.Context, fn, query string, limit int) ([]*model.SearchResult, error) {
	results := []*model.SearchResult{}
	// The procedures' result shape is owned by the backend; columns beyond
	// SearchResult are ignored and a missing rank stays zero.
	sql := fmt.Sprintf(`SELECT * FROM %s($1, $2)`, fn)
	if err := r.db.Unsafe().SelectContext(ctx, &results, sql, query, limit); err != nil {
		return nil, fmt.Errorf("%s: %w", fn, err)
	}
	return results, nil
}
