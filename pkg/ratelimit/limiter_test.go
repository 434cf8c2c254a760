package ratelimit

import (
	"context"
	"sync"
	"testing"
	"time"
)

// fakeClock はテスト用の手動で進める時計。
type fakeClock struct {
	mu  sync.Mutex
	now time.Time
}

func (c *fakeClock) Now() time.Time {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.now
}

func (c *fakeClock) Advance(d time.Duration) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.now = c.now.Add(d)
}

func newTestMemory(t *testing.T) (*Memory, *fakeClock) {
	t.Helper()

	clock := &fakeClock{now: time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)}
	m := NewMemory()
	m.now = clock.Now
	t.Cleanup(func() { m.Close() })
	return m, clock
}

// TestMemoryAllow はメモリLimiterの判定を検証する。
func TestMemoryAllow(t *testing.T) {
	t.Parallel()

	t.Run("上限まで許可され超過すると拒否されること", func(t *testing.T) {
		t.Parallel()
		m, _ := newTestMemory(t)

		for i := 1; i <= 3; i++ {
			d := m.Allow(context.Background(), "ip:1.2.3.4", 3, time.Minute)
			if !d.Allowed {
				t.Fatalf("%d回目が拒否された", i)
			}
			if d.Count != i {
				t.Errorf("Count = %d, want %d", d.Count, i)
			}
		}
		if d := m.Allow(context.Background(), "ip:1.2.3.4", 3, time.Minute); d.Allowed {
			t.Error("上限超過のリクエストが許可された")
		}
	})

	t.Run("ウィンドウが終わるとカウントがリセットされること", func(t *testing.T) {
		t.Parallel()
		m, clock := newTestMemory(t)

		m.Allow(context.Background(), "k", 1, time.Minute)
		if d := m.Allow(context.Background(), "k", 1, time.Minute); d.Allowed {
			t.Fatal("上限超過のリクエストが許可された")
		}
		clock.Advance(time.Minute)
		if d := m.Allow(context.Background(), "k", 1, time.Minute); !d.Allowed {
			t.Error("新しいウィンドウのリクエストが拒否された")
		}
	})

	t.Run("キーごとに独立してカウントされること", func(t *testing.T) {
		t.Parallel()
		m, _ := newTestMemory(t)

		m.Allow(context.Background(), "a", 1, time.Minute)
		if d := m.Allow(context.Background(), "b", 1, time.Minute); !d.Allowed {
			t.Error("別キーのリクエストが拒否された")
		}
	})

	t.Run("上限が0以下なら常に許可されること", func(t *testing.T) {
		t.Parallel()
		m, _ := newTestMemory(t)

		for range 10 {
			if d := m.Allow(context.Background(), "k", 0, time.Minute); !d.Allowed {
				t.Fatal("上限0でリクエストが拒否された")
			}
		}
	})

	t.Run("掃除で期限切れのエントリが削除されること", func(t *testing.T) {
		t.Parallel()
		m, clock := newTestMemory(t)

		m.Allow(context.Background(), "old", 5, time.Second)
		clock.Advance(2 * time.Second)
		m.sweep()

		m.mu.Lock()
		_, exists := m.entries["old"]
		m.mu.Unlock()
		if exists {
			t.Error("期限切れエントリが残っている")
		}
	})
}

// TestMemoryClose はCloseの多重呼び出しを検証する。
func TestMemoryClose(t *testing.T) {
	t.Parallel()

	m := NewMemory()
	if err := m.Close(); err != nil {
		t.Fatalf("Close()でエラーが発生: %v", err)
	}
	if err := m.Close(); err != nil {
		t.Fatalf("2回目のClose()でエラーが発生: %v", err)
	}
}

// TestNewRedis はRedisに接続できない場合の挙動を検証する。
func TestNewRedis(t *testing.T) {
	t.Parallel()

	if _, err := NewRedis(context.Background(), "127.0.0.1:1", "", 0); err == nil {
		t.Fatal("接続できないアドレスでエラーが返るべき")
	}
}
