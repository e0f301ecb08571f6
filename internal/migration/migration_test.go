package migration

import (
	"io/fs"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestEmbeddedMigrationsArePaired(t *testing.T) {
	src, err := Source()
	require.NoError(t, err)

	entries, err := fs.ReadDir(src, ".")
	require.NoError(t, err)

	ups, downs := map[string]bool{}, map[string]bool{}
	for _, e := range entries {
		name := e.Name()
		switch {
		case strings.HasSuffix(name, ".up.sql"):
			ups[strings.TrimSuffix(name, ".up.sql")] = true
		case strings.HasSuffix(name, ".down.sql"):
			downs[strings.TrimSuffix(name, ".down.sql")] = true
		}
	}
	assert.NotEmpty(t, ups)
	assert.Equal(t, ups, downs)
}

func TestSchemaLeavesProceduresToBackend(t *testing.T) {
	src, err := Source()
	require.NoError(t, err)

	body, err := fs.ReadFile(src, "000001_clinics.up.sql")
	require.NoError(t, err)
	sql := string(body)

	assert.Contains(t, sql, "CREATE OR REPLACE VIEW moderation_queue")
	assert.Contains(t, sql, "clinic_id    UUID NOT NULL UNIQUE")
	assert.NotContains(t, strings.ToLower(sql), "create function")
}

func TestRunMigrationsRequiresDB(t *testing.T) {
	assert.Error(t, RunMigrations(nil))
}
