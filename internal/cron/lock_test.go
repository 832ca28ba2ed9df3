package cron

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRedisStore struct {
	values map[string]string
}

func newFakeRedisStore() *fakeRedisStore {
	return &fakeRedisStore{values: map[string]string{}}
}

func (f *fakeRedisStore) SetNX(_ context.Context, key string, value any, _ time.Duration) (bool, error) {
	if _, ok := f.values[key]; ok {
		return false, nil
	}
	f.values[key] = value.(string)
	return true, nil
}

func (f *fakeRedisStore) DelIfEquals(_ context.Context, key, value string) (bool, error) {
	if f.values[key] != value {
		return false, nil
	}
	delete(f.values, key)
	return true, nil
}

func TestRedisLockIsExclusive(t *testing.T) {
	store := newFakeRedisStore()
	first, err := NewRedisLock(store, "pdv:lock:cron", time.Minute)
	require.NoError(t, err)
	second, err := NewRedisLock(store, "pdv:lock:cron", time.Minute)
	require.NoError(t, err)

	ok, err := first.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)

	ok, err = second.Acquire(context.Background())
	require.NoError(t, err)
	assert.False(t, ok)

	// a lock that never acquired must not drop someone else's key
	require.NoError(t, second.Release(context.Background()))
	assert.Contains(t, store.values, "pdv:lock:cron")

	require.NoError(t, first.Release(context.Background()))
	assert.NotContains(t, store.values, "pdv:lock:cron")

	ok, err = second.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
}

func TestNewRedisLockValidates(t *testing.T) {
	_, err := NewRedisLock(nil, "k", time.Minute)
	require.Error(t, err)
	_, err = NewRedisLock(newFakeRedisStore(), "", time.Minute)
	require.Error(t, err)
}

func TestLocalLock(t *testing.T) {
	var lock LocalLock
	ok, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	assert.True(t, ok)
	ok, _ = lock.Acquire(context.Background())
	assert.False(t, ok)
	require.NoError(t, lock.Release(context.Background()))
	ok, _ = lock.Acquire(context.Background())
	assert.True(t, ok)
}

func TestRedisLockLeavesTakenOverKey(t *testing.T) {
	store := newFakeRedisStore()
	lock, err := NewRedisLock(store, "pdv:cron-worker:lock:test", 0)
	require.NoError(t, err)
	assert.Equal(t, defaultLockTTL, lock.ttl)

	ok, err := lock.Acquire(context.Background())
	require.NoError(t, err)
	require.True(t, ok)

	// the TTL expired and another replica took the lock
	store.values["pdv:cron-worker:lock:test"] = "other-owner"

	require.NoError(t, lock.Release(context.Background()))
	assert.Equal(t, "other-owner", store.values["pdv:cron-worker:lock:test"])
}
