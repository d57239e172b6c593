package cache

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type sample struct {
	Name  string  `json:"name"`
	Value float64 `json:"value"`
}

func setupRedisStore(t *testing.T) (*miniredis.Miniredis, *RedisStore) {
	mr := miniredis.RunT(t)
	client := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	t.Cleanup(func() { _ = client.Close() })
	return mr, NewRedisStore(client)
}

func TestGetValue_Bool_Missing_IsFalse(t *testing.T) {
	_, store := setupRedisStore(t)

	got, err := GetValue[bool](context.Background(), store, "dummy")

	require.NoError(t, err)
	assert.False(t, got)
}

func TestGetValue_Bool_Stored_IsTrue(t *testing.T) {
	_, store := setupRedisStore(t)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "flag", []byte("true"), EntryOptions{}))

	got, err := GetValue[bool](ctx, store, "flag")

	require.NoError(t, err)
	assert.True(t, got)
}

func TestGetValue_Slice_Missing_IsNil(t *testing.T) {
	_, store := setupRedisStore(t)

	got, err := GetValue[[]sample](context.Background(), store, "dummy")

	require.NoError(t, err)
	assert.Nil(t, got)
}

func TestSetValue_RoundTrip(t *testing.T) {
	_, store := setupRedisStore(t)
	ctx := context.Background()
	want := []sample{{Name: "a", Value: 224.93}, {Name: "a", Value: 224.93}, {Name: "b"}}

	require.NoError(t, SetValue(ctx, store, "list", want, EntryOptions{SlidingExpiration: time.Hour}))

	got, err := GetValue[[]sample](ctx, store, "list")

	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestGetValue_CorruptPayload_Errors(t *testing.T) {
	_, store := setupRedisStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "bad", []byte("{not json"), EntryOptions{}))

	_, err := GetValue[[]sample](ctx, store, "bad")

	assert.Error(t, err)
}

func TestRedisStore_SetAppliesExpiration(t *testing.T) {
	mr, store := setupRedisStore(t)

	require.NoError(t, store.Set(context.Background(), "k", []byte("1"), EntryOptions{SlidingExpiration: 24 * time.Hour}))

	assert.Equal(t, 24*time.Hour, mr.TTL("k"))
}

func TestRedisStore_NoExpirationLeavesKeyPersistent(t *testing.T) {
	mr, store := setupRedisStore(t)

	require.NoError(t, store.Set(context.Background(), "k", []byte("1"), EntryOptions{}))

	assert.Equal(t, time.Duration(0), mr.TTL("k"))
}

func TestRedisStore_GetSlidesExpiration(t *testing.T) {
	mr, store := setupRedisStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", []byte("1"), EntryOptions{SlidingExpiration: time.Hour}))

	mr.FastForward(50 * time.Minute)
	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, time.Hour, mr.TTL("k"))

	mr.FastForward(50 * time.Minute)
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.True(t, ok, "entry read within the window must survive")

	mr.FastForward(2 * time.Hour)
	_, ok, err = store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestRedisStore_SetReplacesPreviousEntry(t *testing.T) {
	_, store := setupRedisStore(t)
	ctx := context.Background()
	require.NoError(t, store.Set(ctx, "k", []byte("old"), EntryOptions{SlidingExpiration: time.Hour}))
	require.NoError(t, store.Set(ctx, "k", []byte("new"), EntryOptions{}))

	data, ok, err := store.Get(ctx, "k")

	require.NoError(t, err)
	require.True(t, ok)
	assert.Equal(t, "new", string(data))
}

func TestRedisStore_Ping(t *testing.T) {
	_, store := setupRedisStore(t)
	assert.NoError(t, store.Ping(context.Background()))
}

func TestParseRedisURL(t *testing.T) {
	opt, err := ParseRedisURL("rediss://user:pw@localhost:6380/2", true)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6380", opt.Addr)
	assert.Equal(t, 2, opt.DB)
	require.NotNil(t, opt.TLSConfig)
	assert.True(t, opt.TLSConfig.InsecureSkipVerify)

	_, err = ParseRedisURL("", false)
	assert.Error(t, err)
}

func TestMemoryStore_RoundTripAndMissing(t *testing.T) {
	store := NewMemoryStore()
	t.Cleanup(store.Close)
	ctx := context.Background()

	flag, err := GetValue[bool](ctx, store, "missing")
	require.NoError(t, err)
	assert.False(t, flag)

	want := []sample{{Name: "x", Value: 1.5}}
	require.NoError(t, SetValue(ctx, store, "list", want, EntryOptions{SlidingExpiration: time.Minute}))

	got, err := GetValue[[]sample](ctx, store, "list")
	require.NoError(t, err)
	assert.Equal(t, want, got)
}

func TestMemoryStore_Expires(t *testing.T) {
	store := NewMemoryStore()
	t.Cleanup(store.Close)
	ctx := context.Background()

	require.NoError(t, store.Set(ctx, "k", []byte("v"), EntryOptions{SlidingExpiration: 20 * time.Millisecond}))
	time.Sleep(60 * time.Millisecond)

	_, ok, err := store.Get(ctx, "k")
	require.NoError(t, err)
	assert.False(t, ok)
}
