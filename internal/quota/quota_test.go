package quota

import (
	"context"
	"testing"

	"github.com/alicebob/miniredis/v2"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func setupManager(t *testing.T) (*RedisManager, *miniredis.Miniredis) {
	mr, err := miniredis.Run()
	require.NoError(t, err)
	t.Cleanup(func() { mr.Close() })

	db := redis.NewClient(&redis.Options{Addr: mr.Addr()})
	return NewRedisManager(db, Limits{PreShow: 3, PostShow: 1}), mr
}

func TestCheckAndConsume_PreShowLimit(t *testing.T) {
	m, _ := setupManager(t)
	ctx := context.Background()

	for i, wantRemaining := range []int{2, 1, 0} {
		d, err := m.CheckAndConsume(ctx, "dealer-1", "show-1", PhasePreShow)
		require.NoError(t, err, "attempt %d", i+1)
		assert.True(t, d.Allowed)
		assert.Equal(t, wantRemaining, d.Remaining)
	}

	// Четвёртая попытка — обычный отказ, не ошибка.
	d, err := m.CheckAndConsume(ctx, "dealer-1", "show-1", PhasePreShow)
	require.NoError(t, err)
	assert.False(t, d.Allowed)
	assert.Equal(t, 0, d.Remaining)
}

func TestCheckAndConsume_DenialDoesNotBurnQuota(t *testing.T) {
	m, mr := setupManager(t)
	ctx := context.Background()

	for i := 0; i < 5; i++ {
		_, err := m.CheckAndConsume(ctx, "org-1", "show-2", PhasePostShow)
		require.NoError(t, err)
	}

	// Счётчик не должен уползти выше лимита после отказов.
	got, err := mr.Get("broadcastquota:post_show:show-2:org-1")
	require.NoError(t, err)
	assert.Equal(t, "1", got)
}

func TestCheckAndConsume_SeparateCountersPerShowAndPhase(t *testing.T) {
	m, _ := setupManager(t)
	ctx := context.Background()

	d, err := m.CheckAndConsume(ctx, "org-1", "show-1", PhasePostShow)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	// Другое шоу и другая фаза не затронуты.
	d, err = m.CheckAndConsume(ctx, "org-1", "show-2", PhasePostShow)
	require.NoError(t, err)
	assert.True(t, d.Allowed)

	d, err = m.CheckAndConsume(ctx, "org-1", "show-1", PhasePreShow)
	require.NoError(t, err)
	assert.True(t, d.Allowed)
	assert.Equal(t, 2, d.Remaining)
}

func TestCheckAndConsume_UnknownPhase(t *testing.T) {
	m, _ := setupManager(t)

	_, err := m.CheckAndConsume(context.Background(), "org-1", "show-1", Phase("mid_show"))
	assert.Error(t, err)
}
