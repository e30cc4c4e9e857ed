package commands

import (
	"bytes"
	"context"
	"database/sql"
	"testing"
	"time"

	"osvillage/internal/config"
	"osvillage/internal/models"
	"osvillage/internal/observability"

	"github.com/DATA-DOG/go-sqlmock"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

var sessionRowColumns = []string{"id", "session_id", "player_id", "game_type", "level", "start_time", "end_time", "score", "stars", "completed"}

func newMockRuntime(t *testing.T) (*Runtime, sqlmock.Sqlmock) {
	t.Helper()
	db, mock, err := sqlmock.New()
	require.NoError(t, err)

	rt := &Runtime{
		Config: &config.Config{Game: config.GameConfig{ExpectedGameTypes: 6, HistoryDefaultLimit: 10}},
		Logger: observability.NewNopLogger(),
	}
	rt.once.Do(func() { rt.db = db })

	t.Cleanup(func() {
		mock.ExpectClose()
		require.NoError(t, rt.Close())
		require.NoError(t, mock.ExpectationsWereMet())
	})
	return rt, mock
}

func TestDBStats(t *testing.T) {
	rt, mock := newMockRuntime(t)

	for i, table := range []string{"players", "game_sessions", "action_logs", "errors", "ai_interactions"} {
		mock.ExpectQuery("SELECT COUNT\\(\\*\\) FROM " + table).
			WillReturnRows(sqlmock.NewRows([]string{"count"}).AddRow(i * 10))
	}
	mock.ExpectQuery("SELECT current_database\\(\\)").
		WillReturnRows(sqlmock.NewRows([]string{"current_database"}).AddRow("village"))
	mock.ExpectQuery("SELECT inet_server_addr\\(\\)").
		WillReturnRows(sqlmock.NewRows([]string{"inet_server_addr"}).AddRow(nil))

	var out bytes.Buffer
	cmd := DatabaseCommands(rt)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"stats"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "Connected to village")
	assert.Regexp(t, `ai_interactions\s+40`, out.String())
	assert.Regexp(t, `players\s+0`, out.String())
}

func TestPlayerProgress(t *testing.T) {
	rt, mock := newMockRuntime(t)
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .* FROM game_sessions WHERE player_id = \\$1 ORDER BY start_time").
		WithArgs("p1").
		WillReturnRows(sqlmock.NewRows(sessionRowColumns).
			AddRow(1, "s1", "p1", "process-scheduling", "beginner", start, start.Add(time.Minute), 90, 3, true).
			AddRow(2, "s2", "p1", "memory-management", "beginner", start, nil, nil, nil, false))

	var out bytes.Buffer
	cmd := PlayerCommands(rt)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"progress", "p1"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), "Player p1: 2 sessions, 1 completed, 16.67% overall")
	assert.Regexp(t, `process-scheduling\s+1\s+90\s+3\s+true`, out.String())
}

func TestPlayerHistory_JSON(t *testing.T) {
	rt, mock := newMockRuntime(t)
	start := time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC)

	mock.ExpectQuery("SELECT .* FROM game_sessions WHERE player_id = \\$1 ORDER BY start_time DESC LIMIT \\$2").
		WithArgs("p1", 3).
		WillReturnRows(sqlmock.NewRows(sessionRowColumns).
			AddRow(1, "s1", "p1", "file-system", "advanced", start, nil, nil, nil, false))

	var out bytes.Buffer
	cmd := PlayerCommands(rt)
	cmd.SetOut(&out)
	cmd.SetArgs([]string{"history", "p1", "--limit", "3", "--json"})
	require.NoError(t, cmd.ExecuteContext(context.Background()))

	assert.Contains(t, out.String(), `"player_id": "p1"`)
	assert.Contains(t, out.String(), `"session_id": "s1"`)
}

func TestPrintHistory(t *testing.T) {
	var out bytes.Buffer
	printHistory(&out, nil)
	assert.Equal(t, "No sessions recorded\n", out.String())

	out.Reset()
	printHistory(&out, []models.GameSession{{
		SessionID: "s1",
		GameType:  "deadlock",
		Level:     "beginner",
		StartTime: time.Date(2025, 3, 1, 9, 0, 0, 0, time.UTC),
		Score:     sql.NullInt32{Int32: 70, Valid: true},
	}})
	assert.Contains(t, out.String(), "2025-03-01 09:00:00")
	assert.Regexp(t, `70\s+-`, out.String())
}

func TestMaskDatabaseURL(t *testing.T) {
	assert.Equal(t, "postgres://village:xxxxx@db:5432/village", maskDatabaseURL("postgres://village:secret@db:5432/village"))
	assert.Equal(t, "host=db dbname=village", maskDatabaseURL("host=db dbname=village"))
}

func TestVersionCommand(t *testing.T) {
	var out bytes.Buffer
	cmd := VersionCommand()
	cmd.SetOut(&out)
	cmd.SetArgs([]string{})
	require.NoError(t, cmd.Execute())
	assert.Contains(t, out.String(), "commit")
}
