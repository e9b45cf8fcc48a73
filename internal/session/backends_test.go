package session

import (
	"context"
	"io/fs"
	"os"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"xianxia/internal/game"
	"xianxia/internal/play"
)

// The backend tests talk to real servers and only run when pointed at one.

func sampleSave() play.SaveData {
	st := game.Apply(game.NewStatus(), game.Effects{
		{Attr: game.AttrCultivation, Value: game.Number(42)},
		{Attr: game.AttrItem, Value: game.String("spirit stone")},
		{Attr: "met_elder", Value: game.Bool(true)},
	})
	return play.SaveData{CurrentNodeID: "peak", Status: st}
}

func assertSameSave(t *testing.T, want, got play.SaveData) {
	t.Helper()
	assert.Equal(t, want.CurrentNodeID, got.CurrentNodeID)
	assert.True(t, want.Status.Equal(got.Status), "status mismatch: %v vs %v", want.Status.Keys(), got.Status.Keys())
	assert.Equal(t, want.Status.Keys(), got.Status.Keys())
}

func TestRedisStore_RoundTrip(t *testing.T) {
	addr := os.Getenv("XIANXIA_TEST_REDIS_ADDR")
	if addr == "" {
		t.Skip("XIANXIA_TEST_REDIS_ADDR not set")
	}
	ctx := context.Background()
	client, err := OpenRedis(ctx, addr, "", 0)
	require.NoError(t, err)
	defer client.Close()

	store := NewRedisStore[play.SaveData](client, "xianxia-test:", time.Minute, zerolog.Nop())
	id := store.NewID()

	_, ok, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	want := sampleSave()
	require.NoError(t, store.Put(ctx, id, want))
	got, ok, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assertSameSave(t, want, got)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, id)
}

func TestPostgresStore_RoundTrip(t *testing.T) {
	dsn := os.Getenv("XIANXIA_TEST_DATABASE_URL")
	if dsn == "" {
		t.Skip("XIANXIA_TEST_DATABASE_URL not set")
	}
	m, err := NewMigrator(dsn)
	require.NoError(t, err)
	if err := m.Up(); err != nil && err != ErrNoChange {
		t.Fatalf("migrate up: %v", err)
	}

	ctx := context.Background()
	db, err := OpenPostgres(ctx, dsn)
	require.NoError(t, err)
	store := NewPostgresStore[play.SaveData](db, zerolog.Nop())
	id := store.NewID()

	_, ok, err := store.Get(ctx, id)
	require.NoError(t, err)
	assert.False(t, ok)

	want := sampleSave()
	require.NoError(t, store.Put(ctx, id, want))
	want.CurrentNodeID = "valley"
	require.NoError(t, store.Put(ctx, id, want), "second put overwrites")

	got, ok, err := store.Get(ctx, id)
	require.NoError(t, err)
	require.True(t, ok)
	assertSameSave(t, want, got)

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, id)
}

func TestMigrator_RequiresDSN(t *testing.T) {
	_, err := NewMigrator("")
	assert.Error(t, err)
	_, err = OpenPostgres(context.Background(), "")
	assert.Error(t, err)
}

func TestMigrationsEmbedded(t *testing.T) {
	names, err := fs.Glob(migrationFiles, "migrations/*.sql")
	require.NoError(t, err)
	assert.ElementsMatch(t, []string{
		"migrations/0001_saves.up.sql",
		"migrations/0001_saves.down.sql",
	}, names)
}
