package postgres

import (
	"database/sql"
	"errors"
	"fmt"
	"testing"

	"github.com/lib/pq"
	"github.com/stretchr/testify/assert"

	apperrors "github.com/jwalitptl/clinic-directory/pkg/errors"
	"github.com/jwalitptl/clinic-directory/pkg/patch"
)

func TestSetClause(t *testing.T) {
	cols := []patch.Column{
		{Name: "address", Kind: patch.Text, Mode: patch.Clear},
		{Name: "basic_info", Kind: patch.JSON, Mode: patch.Merge, Value: `{"city":"Izmir"}`},
		{Name: "name", Kind: patch.Text, Mode: patch.Set, Value: "Bright Smile"},
		{Name: "services", Kind: patch.JSON, Mode: patch.Set, Value: `[]`},
	}

	set, args := setClause(cols, 2)
	assert.Equal(t,
		"address = NULL, basic_info = COALESCE(basic_info, '{}'::jsonb) || $2::jsonb, name = $3, services = $4::jsonb",
		set)
	assert.Equal(t, []interface{}{`{"city":"Izmir"}`, "Bright Smile", `[]`}, args)
}

func TestMapError(t *testing.T) {
	assert.Nil(t, mapError("clinic", "get", nil))

	err := mapError("clinic", "get", fmt.Errorf("wrapped: %w", sql.ErrNoRows))
	assert.True(t, apperrors.Is(err, apperrors.ErrNotFound))

	err = mapError("review", "create", &pq.Error{Code: pqUniqueViolation})
	assert.True(t, apperrors.Is(err, apperrors.ErrConflict))

	err = mapError("clinic", "update", errors.New("conn reset"))
	assert.EqualError(t, err, "failed to update clinic: conn reset")
}

func TestIsUndefinedFunction(t *testing.T) {
	assert.True(t, isUndefinedFunction(fmt.Errorf("rpc: %w", &pq.Error{Code: pqUndefinedFunction})))
	assert.False(t, isUndefinedFunction(errors.New("other")))
}
