package cache

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/require"
)

type fakeRedis struct {
	counts  map[string]int64
	ttls    map[string]time.Duration
	pingErr error
	incrErr error
	expires int
}

func newFakeRedis() *fakeRedis {
	return &fakeRedis{counts: map[string]int64{}, ttls: map[string]time.Duration{}}
}

func (f *fakeRedis) Ping(ctx context.Context) *redis.StatusCmd {
	cmd := redis.NewStatusCmd(ctx)
	if f.pingErr != nil {
		cmd.SetErr(f.pingErr)
	} else {
		cmd.SetVal("PONG")
	}
	return cmd
}

func (f *fakeRedis) Incr(ctx context.Context, key string) *redis.IntCmd {
	cmd := redis.NewIntCmd(ctx)
	if f.incrErr != nil {
		cmd.SetErr(f.incrErr)
		return cmd
	}
	f.counts[key]++
	cmd.SetVal(f.counts[key])
	return cmd
}

func (f *fakeRedis) PExpire(ctx context.Context, key string, ttl time.Duration) *redis.BoolCmd {
	f.expires++
	f.ttls[key] = ttl
	cmd := redis.NewBoolCmd(ctx)
	cmd.SetVal(true)
	return cmd
}

func (f *fakeRedis) PTTL(ctx context.Context, key string) *redis.DurationCmd {
	cmd := redis.NewDurationCmd(ctx, time.Millisecond)
	ttl, ok := f.ttls[key]
	if !ok {
		cmd.SetVal(-1)
		return cmd
	}
	cmd.SetVal(ttl - 10*time.Millisecond)
	return cmd
}

func TestRedisIncrementSetsExpiryOnFirstHitOnly(t *testing.T) {
	fake := newFakeRedis()
	client := newRedisClientWith(fake)
	ctx := context.Background()

	count, ttl, err := client.IncrementWithTTL(ctx, "rl:1.2.3.4", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(1), count)
	require.Equal(t, time.Minute, ttl)

	count, ttl, err = client.IncrementWithTTL(ctx, "rl:1.2.3.4", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(2), count)
	require.Less(t, ttl, time.Minute)

	require.Equal(t, 1, fake.expires)
	require.Contains(t, fake.counts, redisKeyPrefix+"rl:1.2.3.4")
}

func TestRedisIncrementRepairsMissingExpiry(t *testing.T) {
	fake := newFakeRedis()
	fake.counts[redisKeyPrefix+"stuck"] = 4
	client := newRedisClientWith(fake)

	count, ttl, err := client.IncrementWithTTL(context.Background(), "stuck", time.Minute)
	require.NoError(t, err)
	require.Equal(t, int64(5), count)
	require.Equal(t, time.Minute, ttl)
	require.Equal(t, 1, fake.expires)
}

func TestRedisIncrementPropagatesErrors(t *testing.T) {
	fake := newFakeRedis()
	fake.incrErr = errors.New("connection reset")
	client := newRedisClientWith(fake)

	_, _, err := client.IncrementWithTTL(context.Background(), "k", time.Minute)
	require.Error(t, err)
}

func TestRedisPing(t *testing.T) {
	fake := newFakeRedis()
	client := newRedisClientWith(fake)
	require.NoError(t, client.Ping(context.Background()))

	fake.pingErr = errors.New("down")
	require.Error(t, client.Ping(context.Background()))
}

func TestNewRedisClientRequiresAddress(t *testing.T) {
	_, err := NewRedisClient(context.Background(), RedisConfig{Address: "  "})
	require.Error(t, err)
}
