package cli

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand(t *testing.T) {
	cmd := NewRootCommand()
	require.NotNil(t, cmd)
	assert.Equal(t, "datacycle", cmd.Use)
	assert.Equal(t, version.String(), cmd.Version)
}

func TestCommandPresence(t *testing.T) {
	cmd := NewRootCommand()
	commands := [][]string{
		{"serve"},
		{"db", "create"},
		{"db", "verify"},
		{"db", "seed"},
		{"records", "list"},
		{"client"},
	}

	for _, path := range commands {
		t.Run(path[len(path)-1], func(t *testing.T) {
			subCmd, _, err := cmd.Find(path)
			require.NoError(t, err)
			require.NotNil(t, subCmd)
			assert.Equal(t, path[len(path)-1], subCmd.Name())
		})
	}
}

func TestGlobalFlags(t *testing.T) {
	cmd := NewRootCommand()

	tests := map[string]string{
		"driver":      "mysql",
		"sqlite-path": "datacycle.db",
		"pool-size":   "10",
		"log-level":   "info",
	}
	for name, def := range tests {
		f := cmd.PersistentFlags().Lookup(name)
		require.NotNil(t, f, name)
		assert.Equal(t, def, f.DefValue, name)
	}
}

func TestServeCommandFlags(t *testing.T) {
	cmd := NewRootCommand()
	serveCmd, _, err := cmd.Find([]string{"serve"})
	require.NoError(t, err)

	assert.Equal(t, "5000", serveCmd.Flags().Lookup("port").DefValue)
	assert.Equal(t, "8383", serveCmd.Flags().Lookup("admin-port").DefValue)
	assert.Equal(t, "15s", serveCmd.Flags().Lookup("shutdown-timeout").DefValue)
	assert.NotNil(t, serveCmd.Flags().Lookup("exit-after"))
}

func TestRecordsListInvalidFormat(t *testing.T) {
	_, _, err := execute(t, "", with(sqliteArgs(t), "records", "list", "--format", "xml")...)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "invalid format")
}

func TestInvalidDriver(t *testing.T) {
	_, _, err := execute(t, "", "db", "create", "--driver", "oracle")
	require.Error(t, err)
	assert.Contains(t, err.Error(), "unsupported driver")
}
