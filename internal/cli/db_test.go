package cli

import (
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/maloquacious/datacycle/internal/store"
	"github.com/sebdah/goldie/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDBCreate_Idempotent(t *testing.T) {
	db := sqliteArgs(t)

	for i := 0; i < 2; i++ {
		out, _, err := execute(t, "", with(db, "db", "create")...)
		require.NoError(t, err, "create #%d", i+1)
		assert.Equal(t, "created\n", out)
	}

	out, _, err := execute(t, "", with(db, "db", "verify")...)
	require.NoError(t, err)
	goldie.New(t).Assert(t, "db_verify_ready", []byte(out))
}

func TestDBVerify_Missing(t *testing.T) {
	out, _, err := execute(t, "", with(sqliteArgs(t), "db", "verify")...)
	require.Error(t, err)

	var report verifyReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "missing", report.State)
	assert.Equal(t, "sqlite", report.Driver)
}

func TestDBVerify_Uninitialized(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.db")
	require.NoError(t, os.WriteFile(path, nil, 0o644))

	out, _, err := execute(t, "", "db", "verify", "--driver=sqlite", "--sqlite-path="+path)
	require.Error(t, err)

	var report verifyReport
	require.NoError(t, json.Unmarshal([]byte(out), &report))
	assert.Equal(t, "uninitialized", report.State)
	assert.Empty(t, report.SchemaVersion)
}

func TestDBSeed_Args(t *testing.T) {
	db := sqliteArgs(t)

	out, _, err := execute(t, "", with(db, "db", "seed", "alpha", "beta")...)
	require.NoError(t, err)
	assert.Equal(t, "seeded 2 records\n", out)

	out, _, err = execute(t, "", with(db, "records", "list", "--format", "json")...)
	require.NoError(t, err)

	var got []store.Record
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	assert.ElementsMatch(t, []store.Record{{ID: 1, Data: "alpha"}, {ID: 2, Data: "beta"}}, got)
}

func TestDBSeed_File(t *testing.T) {
	db := sqliteArgs(t)
	seed := filepath.Join(t.TempDir(), "seed.yaml")
	require.NoError(t, os.WriteFile(seed, []byte(`records:
  - data: first
  - id: 99
    data: second
`), 0o644))

	out, _, err := execute(t, "", with(db, "db", "seed", "--file", seed, "third")...)
	require.NoError(t, err)
	assert.Equal(t, "seeded 3 records\n", out)

	out, _, err = execute(t, "", with(db, "records", "list", "--format", "json")...)
	require.NoError(t, err)

	var got []store.Record
	require.NoError(t, json.Unmarshal([]byte(out), &got))
	// storage assigns ids; the id in the seed file is ignored
	assert.ElementsMatch(t, []store.Record{
		{ID: 1, Data: "third"},
		{ID: 2, Data: "first"},
		{ID: 3, Data: "second"},
	}, got)
}

func TestDBSeed_Errors(t *testing.T) {
	db := sqliteArgs(t)

	_, _, err := execute(t, "", with(db, "db", "seed")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "nothing to seed")

	_, _, err = execute(t, "", with(db, "db", "seed", "ok", strings.Repeat("x", store.MaxDataLength+1))...)
	require.ErrorIs(t, err, store.ErrDataTooLong)

	// nothing was inserted before validation failed
	out, _, err := execute(t, "", with(db, "records", "list", "--format", "json")...)
	require.Error(t, err, "table should not exist yet")
	assert.Empty(t, out)

	_, _, err = execute(t, "", with(db, "db", "seed", "--file", filepath.Join(t.TempDir(), "nope.yaml"))...)
	require.Error(t, err)
}

func TestRecordsList_Golden(t *testing.T) {
	db := sqliteArgs(t)
	_, _, err := execute(t, "", with(db, "db", "seed", "alpha", "beta")...)
	require.NoError(t, err)

	g := goldie.New(t)
	for _, format := range []string{"json", "yaml"} {
		t.Run(format, func(t *testing.T) {
			out, _, err := execute(t, "", with(db, "records", "list", "--format", format)...)
			require.NoError(t, err)
			g.Assert(t, "records_"+format, []byte(out))
		})
	}
}

func TestRecordsList_Table(t *testing.T) {
	db := sqliteArgs(t)
	_, _, err := execute(t, "", with(db, "db", "seed", "alpha", "beta")...)
	require.NoError(t, err)

	out, _, err := execute(t, "", with(db, "records", "list")...)
	require.NoError(t, err)
	// headers are upper-cased, the footer count is not
	assert.Contains(t, out, "| ID | DATA ")
	assert.Contains(t, out, "| 2 records |")
	goldie.New(t).Assert(t, "records_table", []byte(out))
}

func TestRecordsList_Empty(t *testing.T) {
	db := sqliteArgs(t)
	_, _, err := execute(t, "", with(db, "db", "create")...)
	require.NoError(t, err)

	out, _, err := execute(t, "", with(db, "records", "list", "--format", "json")...)
	require.NoError(t, err)
	assert.Equal(t, "[]\n", out)
}
