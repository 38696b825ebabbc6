package migrations

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadMigrations(t *testing.T) {
	migrations, err := LoadMigrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	assert.Equal(t, 1, migrations[0].Version)
	assert.Equal(t, "overlay_settings", migrations[0].Description)
	assert.Len(t, migrations[0].Statements(), 5)
}

func TestLoad(t *testing.T) {
	tests := []struct {
		name    string
		fsys    fstest.MapFS
		want    []int
		wantErr string
	}{
		{
			name: "sorted by version",
			fsys: fstest.MapFS{
				"010_later.sql": {Data: []byte("SELECT 2")},
				"002_first.sql": {Data: []byte("SELECT 1")},
				"README.md":     {Data: []byte("ignored")},
			},
			want: []int{2, 10},
		},
		{
			name:    "missing description",
			fsys:    fstest.MapFS{"003.sql": {Data: []byte("SELECT 1")}},
			wantErr: "not named",
		},
		{
			name:    "bad version",
			fsys:    fstest.MapFS{"abc_init.sql": {Data: []byte("SELECT 1")}},
			wantErr: "invalid version",
		},
		{
			name: "duplicate version",
			fsys: fstest.MapFS{
				"001_a.sql": {Data: []byte("SELECT 1")},
				"1_b.sql":   {Data: []byte("SELECT 1")},
			},
			wantErr: "share version 1",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := load(tt.fsys)
			if tt.wantErr != "" {
				assert.ErrorContains(t, err, tt.wantErr)
				return
			}
			require.NoError(t, err)

			versions := make([]int, len(got))
			for i, m := range got {
				versions[i] = m.Version
			}
			assert.Equal(t, tt.want, versions)
		})
	}
}

func TestSplitStatements(t *testing.T) {
	stmts := SplitStatements(`
		CREATE TABLE a (id INT);

		CREATE INDEX idx_a ON a(id);
		;
	`)
	assert.Equal(t, []string{
		"CREATE TABLE a (id INT)",
		"CREATE INDEX idx_a ON a(id)",
	}, stmts)
}

func TestAppliedQuery(t *testing.T) {
	query, args, err := appliedQuery(4).ToSql()
	require.NoError(t, err)
	assert.Equal(t, "SELECT EXISTS ( SELECT 1 FROM schema_migrations WHERE version = $1 )", query)
	assert.Equal(t, []interface{}{4}, args)
}
