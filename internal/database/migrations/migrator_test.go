package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultLoadsEmbeddedSQL(t *testing.T) {
	r, err := Default()
	require.NoError(t, err)
	assert.Equal(t, []string{"0001_create_vitals", "0002_create_meals"}, r.IDs())
}

func TestLoadSQLSkipsOtherFiles(t *testing.T) {
	fsys := fstest.MapFS{
		"m/0002_b.sql":   {Data: []byte("SELECT 2;")},
		"m/0001_a.sql":   {Data: []byte("SELECT 1;")},
		"m/README.md":    {Data: []byte("docs")},
		"m/nested/x.sql": {Data: []byte("SELECT 3;")},
	}

	r := NewRegistry()
	require.NoError(t, r.LoadSQL(fsys, "m"))
	assert.Equal(t, []string{"0001_a", "0002_b"}, r.IDs())
}

func TestPending(t *testing.T) {
	r := NewRegistry()
	for _, id := range []string{"0003_c", "0001_a", "0002_b"} {
		r.Register(id, nil, nil)
	}

	assert.Equal(t, []string{"0001_a", "0002_b", "0003_c"}, r.Pending(nil))
	assert.Equal(t, []string{"0003_c"}, r.Pending([]MigrationRecord{{ID: "0001_a"}, {ID: "0002_b"}}))
	assert.Empty(t, r.Pending([]MigrationRecord{{ID: "0001_a"}, {ID: "0002_b"}, {ID: "0003_c"}}))
}

func TestLoadSQLMissingDir(t *testing.T) {
	assert.Error(t, NewRegistry().LoadSQL(fstest.MapFS{}, "missing"))
}
