package cron

import (
	"context"
	"testing"
	"time"
)

type fakeLocker struct {
	holder   string
	acquires int
	releases int
}

func (f *fakeLocker) AcquireLock(ctx context.Context, name, owner string, ttl time.Duration) (bool, error) {
	f.acquires++
	if f.holder != "" {
		return false, nil
	}
	f.holder = owner
	return true, nil
}

func (f *fakeLocker) ReleaseLock(ctx context.Context, name, owner string) error {
	f.releases++
	if f.holder == owner {
		f.holder = ""
	}
	return nil
}

func TestRedisLockAcquireRelease(t *testing.T) {
	locker := &fakeLocker{}
	lock, err := NewRedisLock(locker, "cron-worker:test", time.Minute)
	if err != nil {
		t.Fatalf("construct lock: %v", err)
	}

	ok, err := lock.Acquire(context.Background())
	if err != nil {
		t.Fatalf("acquire: %v", err)
	}
	if !ok {
		t.Fatal("expected lock to be acquired")
	}
	if err := lock.Release(context.Background()); err != nil {
		t.Fatalf("release: %v", err)
	}
	if locker.holder != "" {
		t.Fatal("expected lock to be free after release")
	}
}

func TestRedisLockContention(t *testing.T) {
	locker := &fakeLocker{}
	first, err := NewRedisLock(locker, "cron-worker:test", time.Minute)
	if err != nil {
		t.Fatalf("construct first lock: %v", err)
	}
	second, err := NewRedisLock(locker, "cron-worker:test", time.Minute)
	if err != nil {
		t.Fatalf("construct second lock: %v", err)
	}

	if ok, _ := first.Acquire(context.Background()); !ok {
		t.Fatal("expected first acquire to win")
	}
	if ok, _ := second.Acquire(context.Background()); ok {
		t.Fatal("expected second acquire to lose")
	}

	// The loser never owned the lock, so its release must not free it.
	if err := second.Release(context.Background()); err != nil {
		t.Fatalf("release loser: %v", err)
	}
	if locker.holder == "" {
		t.Fatal("loser release must not free the winner's lock")
	}
	if locker.releases != 0 {
		t.Fatalf("loser should skip the network call, got %d releases", locker.releases)
	}
}

func TestNewRedisLockValidation(t *testing.T) {
	if _, err := NewRedisLock(nil, "name", time.Minute); err == nil {
		t.Fatal("expected error for nil locker")
	}
	if _, err := NewRedisLock(&fakeLocker{}, "", time.Minute); err == nil {
		t.Fatal("expected error for empty name")
	}
}
