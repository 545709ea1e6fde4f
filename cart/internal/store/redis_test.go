package store

import (
	"context"
	"sync"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/redis/go-redis/v9"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	testRedis "github.com/testcontainers/testcontainers-go/modules/redis"

	"github.com/Alturino/storefront/cart/pkg/request"
	commonErrors "github.com/Alturino/storefront/internal/common/errors"
)

func setupRedis(t *testing.T) *redis.Client {
	t.Helper()
	if testing.Short() {
		t.Skip("skipping redis container test in short mode")
	}
	c := context.Background()

	redisContainer, err := testRedis.Run(
		c,
		"redis:7.4.2-alpine3.21",
		testRedis.WithLogLevel(testRedis.LogLevelVerbose),
	)
	if err != nil {
		t.Fatalf("failed running redis container with error: %s", err)
	}
	t.Cleanup(func() {
		if err := redisContainer.Terminate(context.Background()); err != nil {
			t.Fatalf("failed to terminate container: %s", err)
		}
	})

	redisConnStr, err := redisContainer.ConnectionString(c)
	if err != nil {
		t.Fatalf("failed getting redis connection string with error: %s", err)
	}

	redisOpt, err := redis.ParseURL(redisConnStr)
	if err != nil {
		t.Fatalf("failed parsing redis connection string with error: %s", err)
	}

	client := redis.NewClient(redisOpt)
	if err = client.Ping(c).Err(); err != nil {
		t.Fatalf("failed ping redis client with error: %s", err)
	}
	t.Cleanup(func() { client.Close() })
	return client
}

func TestRedisStore(t *testing.T) {
	client := setupRedis(t)
	c := context.Background()
	stores := NewRedisStores(client, time.Minute)
	s := stores.ForSession(uuid.NewString())
	id := uuid.New()

	events, unsubscribe, err := s.Subscribe(c)
	require.NoError(t, err)
	defer unsubscribe()

	items, err := s.Items(c)
	require.NoError(t, err)
	assert.Empty(t, items)

	_, err = s.AccessToken(c)
	require.ErrorIs(t, err, commonErrors.ErrEmptyAccessToken)

	require.NoError(t, s.Dispatch(c, SetAccessToken("token")))
	require.NoError(t, s.Dispatch(c, AddItem(cartItem(id, 2))))
	require.NoError(t, s.Dispatch(c, AddItem(cartItem(id, 1))))

	items, err = s.Items(c)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, id, items[0].ID)
	assert.Equal(t, 3, items[0].Amount)
	assert.True(t, items[0].Price.Equal(cartItem(id, 1).Price))

	token, err := s.AccessToken(c)
	require.NoError(t, err)
	assert.Equal(t, "token", token)

	ttl, err := client.TTL(c, "cart:"+s.(*RedisStore).session+":token").Result()
	require.NoError(t, err)
	assert.Greater(t, ttl, time.Duration(0))

	err = s.Dispatch(c, RemoveItem(uuid.New()))
	assert.ErrorIs(t, err, commonErrors.ErrCartItemNotFound)

	require.NoError(t, s.Dispatch(c, ClearCart()))
	items, err = s.Items(c)
	require.NoError(t, err)
	assert.Equal(t, []request.CartItem{}, items)

	received := []ActionType{}
	timeout := time.After(5 * time.Second)
	for len(received) < 4 {
		select {
		case e := <-events:
			received = append(received, e.Action)
		case <-timeout:
			t.Fatalf("timed out waiting for cart events, got %v", received)
		}
	}
	assert.Equal(t, []ActionType{ActionSetAccessToken, ActionAddItem, ActionAddItem, ActionClearCart}, received)
}

func TestRedisStoreConcurrentAdd(t *testing.T) {
	client := setupRedis(t)
	c := context.Background()
	s := NewRedisStores(client, time.Minute).ForSession(uuid.NewString())
	id := uuid.New()

	workers := 8
	errs := make(chan error, workers)
	for i := 0; i < workers; i++ {
		go func() { errs <- s.Dispatch(c, AddItem(cartItem(id, 1))) }()
	}
	failed := 0
	for i := 0; i < workers; i++ {
		if err := <-errs; err != nil {
			failed++
		}
	}

	items, err := s.Items(c)
	require.NoError(t, err)
	require.Len(t, items, 1)
	assert.Equal(t, workers-failed, items[0].Amount)
}

func TestRedisStoreUnsubscribe(t *testing.T) {
	client := setupRedis(t)
	s := NewRedisStores(client, time.Minute).ForSession(uuid.NewString())

	t.Run("given concurrent unsubscribe calls should close events once", func(t *testing.T) {
		events, unsubscribe, err := s.Subscribe(context.Background())
		require.NoError(t, err)

		var wg sync.WaitGroup
		for i := 0; i < 8; i++ {
			wg.Add(1)
			go func() {
				defer wg.Done()
				unsubscribe()
			}()
		}
		wg.Wait()

		assert.Eventually(t, func() bool {
			select {
			case _, ok := <-events:
				return !ok
			default:
				return false
			}
		}, 5*time.Second, 10*time.Millisecond)
	})

	t.Run("given cancelled context should close events and the subscription", func(t *testing.T) {
		c, cancel := context.WithCancel(context.Background())
		events, unsubscribe, err := s.Subscribe(c)
		require.NoError(t, err)
		defer unsubscribe()

		cancel()

		assert.Eventually(t, func() bool {
			select {
			case _, ok := <-events:
				return !ok
			default:
				return false
			}
		}, 5*time.Second, 10*time.Millisecond)
		channel := s.(*RedisStore).channel()
		assert.Eventually(t, func() bool {
			counts, err := client.PubSubNumSub(context.Background(), channel).Result()
			return err == nil && counts[channel] == 0
		}, 5*time.Second, 10*time.Millisecond)
	})
}
