package store

import (
	"context"
	"database/sql"
	"os"
	"testing"
	"time"

	_ "github.com/jackc/pgx/v5/stdlib"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	dsn := os.Getenv("TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("TEST_DATABASE_URL not set")
	}
	db, err := sql.Open("pgx", dsn)
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()
	require.NoError(t, db.PingContext(ctx))
	return db
}

func TestHistoryRepo(t *testing.T) {
	db := openTestDB(t)
	repo := NewHistoryRepo(db)
	ctx := context.Background()
	require.NoError(t, repo.EnsureSchema(ctx))
	require.NoError(t, repo.EnsureSchema(ctx))

	chatID := time.Now().UnixNano()
	t.Cleanup(func() { _, _ = db.Exec(`delete from submissions where chat_id=$1`, chatID) })

	conf := 0.9234
	_, err := repo.Insert(ctx, Entry{
		ChatID: chatID, Flow: FlowPredict, Engine: "http",
		Label: "Acute Stress Reaction", Slug: "acute-stress-reaction",
		Confidence: &conf, Extracted: []string{"anxiety", "sweating"},
	})
	require.NoError(t, err)
	_, err = repo.Insert(ctx, Entry{ChatID: chatID, Flow: FlowRecognize, Engine: "http", Error: "Server returned 500: boom"})
	require.NoError(t, err)

	got, err := repo.Recent(ctx, chatID, 5)
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, FlowRecognize, got[0].Flow)
	assert.True(t, got[0].Failed())
	assert.Nil(t, got[0].Confidence)
	assert.Nil(t, got[0].Extracted)

	assert.Equal(t, "acute-stress-reaction", got[1].Slug)
	require.NotNil(t, got[1].Confidence)
	assert.InDelta(t, 0.9234, *got[1].Confidence, 1e-9)
	assert.Equal(t, []string{"anxiety", "sweating"}, got[1].Extracted)
	assert.False(t, got[1].Failed())

	got, err = repo.Recent(ctx, chatID, 1)
	require.NoError(t, err)
	assert.Len(t, got, 1)
}

func TestNullString(t *testing.T) {
	assert.False(t, nullString("").Valid)
	assert.Equal(t, sql.NullString{String: "x", Valid: true}, nullString("x"))
}
