package redis_test

import (
	"context"
	"testing"
	"time"

	"github.com/alicebob/miniredis/v2"
	backend "github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/claritydental/walkout/pkg/adapters/redis"
	"github.com/claritydental/walkout/pkg/domain"
	"github.com/claritydental/walkout/pkg/ports/tests"
)

func newClient(t *testing.T) (*miniredis.Miniredis, *backend.Client) {
	t.Helper()
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(mr.Close)
	return mr, backend.NewClient(&backend.Options{Addr: mr.Addr()})
}

func TestRedisStore_Contract(t *testing.T) {
	_, client := newClient(t)
	tests.RunWalkoutStoreContract(t, redis.NewFromClient(client))
}

func TestRedisStore_TTLExpiration(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithTTL(1*time.Second))
	ctx := context.Background()

	w := &domain.Walkout{
		ID:            "wo-ttl",
		AppointmentID: "appt-ttl",
		Status:        domain.StatusNotStarted,
		Owner:         domain.OwnerLC3,
	}
	require.NoError(t, store.Create(ctx, w))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "wo-ttl")

	// Key expiration happens in miniredis; index pruning keys on real
	// time, so wait past the TTL before listing again.
	mr.FastForward(2 * time.Second)

	_, err = store.Get(ctx, "wo-ttl")
	assert.ErrorIs(t, err, domain.ErrWalkoutNotFound)

	time.Sleep(1200 * time.Millisecond)
	ids, err = store.List(ctx)
	require.NoError(t, err)
	assert.Empty(t, ids)
}

func TestRedisStore_Prefix(t *testing.T) {
	mr, client := newClient(t)
	store := redis.NewFromClient(client, redis.WithPrefix("clinic:walkout:"))
	ctx := context.Background()

	w := &domain.Walkout{
		ID:            "wo-1",
		AppointmentID: "appt-1",
		Status:        domain.StatusNotStarted,
		Owner:         domain.OwnerLC3,
	}
	require.NoError(t, store.Create(ctx, w))

	assert.True(t, mr.Exists("clinic:walkout:record:wo-1"))
	assert.True(t, mr.Exists("clinic:walkout:appointment:appt-1"))
	assert.True(t, mr.Exists("clinic:walkout:index"))

	ids, err := store.List(ctx)
	require.NoError(t, err)
	assert.Contains(t, ids, "wo-1")
}

func TestRedisStore_CreateConflictCarriesWinner(t *testing.T) {
	_, client := newClient(t)
	store := redis.NewFromClient(client)
	ctx := context.Background()

	first := &domain.Walkout{ID: "wo-1", AppointmentID: "appt-1"}
	require.NoError(t, store.Create(ctx, first))

	second := &domain.Walkout{ID: "wo-2", AppointmentID: "appt-1"}
	err := store.Create(ctx, second)

	var conflict *domain.ConflictError
	require.ErrorAs(t, err, &conflict)
	assert.Equal(t, "wo-1", conflict.WalkoutID)
	assert.Equal(t, "appt-1", conflict.AppointmentID)
}
