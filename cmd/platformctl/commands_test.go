package main

import (
	"bytes"
	"testing"
	"time"

	"unimarket/internal/database/migration"

	"github.com/spf13/cobra"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRootCommand_Tree(t *testing.T) {
	root := newRootCommand()

	for _, path := range [][]string{{"migrate"}, {"seed"}, {"recommend", "refresh"}} {
		cmd, _, err := root.Find(path)
		require.NoError(t, err, path)
		assert.Equal(t, path[len(path)-1], cmd.Name())
	}

	refresh, _, err := root.Find([]string{"recommend", "refresh"})
	require.NoError(t, err)
	assert.NotNil(t, refresh.Flags().Lookup("timeout"))
	assert.NotNil(t, root.PersistentFlags().Lookup("log-level"))

	migrate, _, err := root.Find([]string{"migrate"})
	require.NoError(t, err)
	assert.NotNil(t, migrate.Flags().Lookup("status"))
}

func TestPrintMigrationStatus(t *testing.T) {
	at := time.Date(2026, 4, 2, 8, 0, 0, 0, time.UTC)
	var out bytes.Buffer
	cmd := &cobra.Command{}
	cmd.SetOut(&out)

	printMigrationStatus(cmd, []migration.State{
		{Version: 1, Name: "users_auth", Applied: true, AppliedAt: at},
		{Version: 2, Name: "market", Applied: true, AppliedAt: at, Modified: true},
		{Version: 3, Name: "collab"},
	})

	lines := bytes.Split(bytes.TrimSpace(out.Bytes()), []byte("\n"))
	require.Len(t, lines, 3)
	assert.Contains(t, string(lines[0]), "applied 2026-04-02T08:00:00Z")
	assert.Contains(t, string(lines[1]), "MODIFIED")
	assert.Contains(t, string(lines[2]), "pending")
}
