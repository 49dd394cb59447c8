package main

import (
	"bytes"
	"encoding/json"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/Billy-Davies-2/team-draft/internal/models"
)

const pool = `event: Cricket
teams: [Lions, Tigers]
players:
  - name: Asha
    tier: A
  - name: Ravi
    tier: a
  - name: Meena
    tier: B
  - name: Kiran
    tier: C
  - name: Dev
    tier: c
`

func writePlayers(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "players.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func run(t *testing.T, args ...string) (string, error) {
	t.Helper()
	var out bytes.Buffer
	err := newApp(&out).Run(append([]string{"draftctl", "--log-level", "error"}, args...))
	return out.String(), err
}

func TestLoadPlayersNormalizes(t *testing.T) {
	pf, err := loadPlayers(writePlayers(t, pool))
	require.NoError(t, err)
	require.Equal(t, "Cricket", pf.Event)
	require.Len(t, pf.Players, 5)
	require.Equal(t, models.TierA, pf.Players[1].Tier)
	require.Equal(t, "p1", pf.Players[0].ID)
	require.Equal(t, "p5", pf.Players[4].ID)
}

func TestLoadPlayersRejectsBadTier(t *testing.T) {
	_, err := loadPlayers(writePlayers(t, "players:\n  - name: Asha\n    tier: S\n"))
	require.Error(t, err)
	require.Contains(t, err.Error(), "oneof")

	_, err = loadPlayers(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
}

func TestRunPrintsJSONRoster(t *testing.T) {
	out, err := run(t, "run", "--players", writePlayers(t, pool), "--seed", "5", "--json")
	require.NoError(t, err)

	var roster models.Roster
	require.NoError(t, json.Unmarshal([]byte(out), &roster))
	require.Equal(t, "Cricket", roster.Event)
	require.Equal(t, models.ModeAuto, roster.Mode)
	require.Len(t, roster.History, 5)
	require.Equal(t, "Lions", roster.Teams[0].Name)

	total := 0
	for _, team := range roster.Teams {
		total += team.Score
		require.LessOrEqual(t, team.Stats[models.TierA], 1)
	}
	require.Equal(t, 2*100+50+2*10, total)
}

func TestRunIsReproducibleWithSeed(t *testing.T) {
	path := writePlayers(t, pool)
	first, err := run(t, "run", "--players", path, "--seed", "9", "--names", "North,South")
	require.NoError(t, err)
	second, err := run(t, "run", "--players", path, "--seed", "9", "--names", "North,South")
	require.NoError(t, err)

	require.Equal(t, first, second)
	require.True(t, strings.HasPrefix(first, "Cricket\n"))
	require.Contains(t, first, "North  score=")
	require.Contains(t, first, "South  score=")
}

func TestRunRejectsSmallPool(t *testing.T) {
	_, err := run(t, "run", "--players", writePlayers(t, "players:\n  - name: Asha\n    tier: A\n"), "--teams", "2")
	require.Error(t, err)
}

func TestValidate(t *testing.T) {
	path := writePlayers(t, pool)
	out, err := run(t, "validate", "--players", path, "--teams", "3")
	require.NoError(t, err)
	require.Equal(t, "ok: 5 players (A=2 B=1 C=2) for 3 teams\n", out)

	_, err = run(t, "validate", "--players", path, "--teams", "0")
	require.Error(t, err)
}
