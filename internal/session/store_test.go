package session

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/google/uuid"
	goredis "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"social-blog/internal/user"
)

func newRedisStore(t *testing.T) (*RedisStore, *miniredis.Miniredis) {
	t.Helper()

	mr := miniredis.RunT(t)
	client := goredis.NewClient(&goredis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })

	return NewRedisStore(client), mr
}

func testSession(id string) *Session {
	return &Session{
		SessionID: id,
		User: &user.Summary{
			ID:        uuid.New(),
			Username:  "alice",
			AvatarURL: "https://gravatar.com/avatar/abc?s=128",
		},
	}
}

func TestRedisStoreRoundTrip(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	sess := testSession("sid-1")
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "sid-1")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.User.Username)
	assert.Equal(t, sess.User.ID, got.User.ID)
}

func TestRedisStoreMissingSessionIsNilNil(t *testing.T) {
	store, _ := newRedisStore(t)

	got, err := store.Get(context.Background(), "never-seen")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreSaveResetsTTL(t *testing.T) {
	store, mr := newRedisStore(t)
	ctx := context.Background()

	sess := testSession("sid-ttl")
	require.NoError(t, store.Save(ctx, sess))

	assert.InDelta(t, TTL, mr.TTL("session:sid-ttl"), float64(time.Minute))
	assert.WithinDuration(t, time.Now().Add(TTL), sess.ExpiresAt, time.Minute)

	// an expired key resolves as absent
	mr.FastForward(TTL + time.Hour)
	got, err := store.Get(ctx, "sid-ttl")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreDelete(t *testing.T) {
	store, _ := newRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSession("sid-del")))
	require.NoError(t, store.Delete(ctx, "sid-del"))

	got, err := store.Get(ctx, "sid-del")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestRedisStoreRejectsMissingID(t *testing.T) {
	store, _ := newRedisStore(t)

	err := store.Save(context.Background(), &Session{})
	assert.Error(t, err)
}

func TestMemoryStoreRoundTripAndExpiry(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	sess := testSession("sid-mem")
	require.NoError(t, store.Save(ctx, sess))

	got, err := store.Get(ctx, "sid-mem")
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "alice", got.User.Username)

	// force expiry and observe absence
	store.mu.Lock()
	store.sessions["sid-mem"].ExpiresAt = time.Now().Add(-time.Minute)
	store.mu.Unlock()

	got, err = store.Get(ctx, "sid-mem")
	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestMemoryStoreGetReturnsCopy(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.Save(ctx, testSession("sid-copy")))

	first, err := store.Get(ctx, "sid-copy")
	require.NoError(t, err)
	first.User.Username = "mallory"

	second, err := store.Get(ctx, "sid-copy")
	require.NoError(t, err)
	assert.Equal(t, "alice", second.User.Username)
}

// Two concurrent writers to the same session do not merge: the final state
// is whichever write finished last.
func TestConcurrentSavesLastWriterWins(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	base := testSession("sid-race")
	require.NoError(t, store.Save(ctx, base))

	a, err := store.Get(ctx, "sid-race")
	require.NoError(t, err)
	b, err := store.Get(ctx, "sid-race")
	require.NoError(t, err)

	a.AddError("from request A")
	b.AddSuccess("from request B")

	require.NoError(t, store.Save(ctx, a))
	require.NoError(t, store.Save(ctx, b))

	final, err := store.Get(ctx, "sid-race")
	require.NoError(t, err)
	assert.Empty(t, final.Flash.Errors, "request A's write was overwritten, not merged")
	assert.Equal(t, []string{"from request B"}, final.Flash.Success)
}

func TestPopFlashIsReadOnce(t *testing.T) {
	sess := testSession("sid-flash")
	sess.AddError("bad thing")
	sess.AddSuccess("good thing")

	first := sess.PopFlash()
	assert.Equal(t, []string{"bad thing"}, first.Errors)
	assert.Equal(t, []string{"good thing"}, first.Success)

	second := sess.PopFlash()
	assert.True(t, second.Empty())
}

func TestGenerateIDIsOpaqueAndUnique(t *testing.T) {
	a, err := GenerateID()
	require.NoError(t, err)
	b, err := GenerateID()
	require.NoError(t, err)

	assert.NotEqual(t, a, b)
	assert.GreaterOrEqual(t, len(a), 40)
}
