package sources

import (
	"context"
	"encoding/json"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/jonathan/job-finder/internal/types"
)

// stubAdapter is a test double for the cache decorator.
type stubAdapter struct {
	src   types.Source
	calls int
	recs  []types.RawRecord
}

func (s *stubAdapter) Source() types.Source { return s.src }

func (s *stubAdapter) Fetch(_ context.Context, _ types.SearchCriteria) ([]types.RawRecord, error) {
	s.calls++
	return s.recs, nil
}

// fakeRedis implements the cacheClient subset in memory.
type fakeRedis struct {
	data map[string]string
	sets map[string]string
	dels []string
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{data: map[string]string{}, sets: map[string]string{}}
}

func (f *fakeRedis) Get(_ context.Context, key string) *redis.StringCmd {
	if v, ok := f.data[key]; ok {
		return redis.NewStringResult(v, nil)
	}
	return redis.NewStringResult("", redis.Nil)
}

func (f *fakeRedis) Set(_ context.Context, key string, value interface{}, _ time.Duration) *redis.StatusCmd {
	f.sets[key] = string(value.([]byte))
	return redis.NewStatusResult("OK", nil)
}

func (f *fakeRedis) Del(_ context.Context, keys ...string) *redis.IntCmd {
	f.dels = append(f.dels, keys...)
	for _, k := range keys {
		delete(f.data, k)
	}
	return redis.NewIntResult(int64(len(keys)), nil)
}

func stubWithRecords() *stubAdapter {
	return &stubAdapter{
		src:  types.SourceIndeed,
		recs: []types.RawRecord{{Source: types.SourceIndeed, Fields: map[string]string{"positionName": "x"}}},
	}
}

func TestCached_NilClientDelegates(t *testing.T) {
	stub := stubWithRecords()
	cached := NewCached(stub, nil, 0, zerolog.Nop())

	records, err := cached.Fetch(context.Background(), types.SearchCriteria{Position: "engineer"})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, stub.calls)
	assert.Equal(t, types.SourceIndeed, cached.Source())
}

func TestCached_RedisUnreachableFallsThrough(t *testing.T) {
	stub := stubWithRecords()
	unreachable := redis.NewClient(&redis.Options{
		Addr:        "127.0.0.1:1",
		DialTimeout: 100 * time.Millisecond,
		MaxRetries:  -1,
	})
	cached := NewCached(stub, unreachable, time.Minute, zerolog.Nop())

	records, err := cached.Fetch(context.Background(), types.SearchCriteria{Position: "engineer"})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, stub.calls, "live fetch must run when the cache is down")
}

func TestCached_MissServesLiveAndStores(t *testing.T) {
	stub := stubWithRecords()
	rdb := newFakeRedis()
	cached := NewCached(stub, nil, time.Minute, zerolog.Nop())
	cached.rdb = rdb

	records, err := cached.Fetch(context.Background(), types.SearchCriteria{Position: "engineer"})
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, stub.calls)
	assert.Len(t, rdb.sets, 1, "fetched records should be written to the cache")
}

func TestCached_HitSkipsInnerAdapter(t *testing.T) {
	stub := stubWithRecords()
	rdb := newFakeRedis()
	cached := NewCached(stub, nil, time.Minute, zerolog.Nop())
	cached.rdb = rdb

	criteria := types.SearchCriteria{Position: "engineer"}
	data, err := json.Marshal(stub.recs)
	require.NoError(t, err)
	rdb.data[cached.cacheKey(criteria)] = string(data)

	records, err := cached.Fetch(context.Background(), criteria)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 0, stub.calls, "cache hit must not hit the provider")
}

func TestCached_CorruptEntryDroppedAndRefetched(t *testing.T) {
	stub := stubWithRecords()
	rdb := newFakeRedis()
	cached := NewCached(stub, nil, time.Minute, zerolog.Nop())
	cached.rdb = rdb

	criteria := types.SearchCriteria{Position: "engineer"}
	key := cached.cacheKey(criteria)
	rdb.data[key] = "{not json"

	records, err := cached.Fetch(context.Background(), criteria)
	require.NoError(t, err)
	assert.Len(t, records, 1)
	assert.Equal(t, 1, stub.calls, "corrupt entry must fall through to a live fetch")
	assert.Contains(t, rdb.dels, key, "corrupt entry must be deleted")
	assert.Len(t, rdb.sets, 1, "fresh result should replace the corrupt entry")
}
