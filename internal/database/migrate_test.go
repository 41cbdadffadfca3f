package database

import (
	"testing"
	"testing/fstest"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMigrations_Embedded(t *testing.T) {
	migrations, err := Migrations()
	require.NoError(t, err)
	require.NotEmpty(t, migrations)

	first := migrations[0]
	assert.Equal(t, 1, first.Version)
	assert.Equal(t, "init", first.Name)
	assert.Contains(t, first.SQL, "CREATE TABLE IF NOT EXISTS transactions")
	assert.Len(t, first.Checksum, 64)
}

func TestReadMigrations(t *testing.T) {
	tests := []struct {
		name     string
		files    fstest.MapFS
		wantVers []int
		wantErr  bool
	}{
		{
			name: "SortedByVersion",
			files: fstest.MapFS{
				"m/0002_items.sql": {Data: []byte("SELECT 2;")},
				"m/0001_init.sql":  {Data: []byte("SELECT 1;")},
				"m/0010_late.sql":  {Data: []byte("SELECT 10;")},
			},
			wantVers: []int{1, 2, 10},
		},
		{
			name: "InvalidName",
			files: fstest.MapFS{
				"m/init.sql": {Data: []byte("SELECT 1;")},
			},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := readMigrations(tt.files, "m")
			if tt.wantErr {
				assert.Error(t, err)
				return
			}

			require.NoError(t, err)

			var versions []int
			for _, m := range got {
				versions = append(versions, m.Version)
			}

			assert.Equal(t, tt.wantVers, versions)
		})
	}
}

func TestReadMigrations_ChecksumTracksContent(t *testing.T) {
	a, err := readMigrations(fstest.MapFS{"m/0001_a.sql": {Data: []byte("SELECT 1;")}}, "m")
	require.NoError(t, err)

	b, err := readMigrations(fstest.MapFS{"m/0001_a.sql": {Data: []byte("SELECT 2;")}}, "m")
	require.NoError(t, err)

	assert.NotEqual(t, a[0].Checksum, b[0].Checksum)
}
