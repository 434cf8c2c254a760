// Package ratelimit は固定ウィンドウ方式のレート制限を提供する。
//
// 単一プロセスではメモリ上のカウンタを、複数インスタンスで制限を共有する場合は
// Redisのカウンタを使用する。
package ratelimit

import (
	"context"
	"sync"
	"time"
)

// sweepInterval は期限切れエントリを掃除する間隔。
const sweepInterval = 5 * time.Minute

// Decision はレート制限の判定結果。
type Decision struct {
	// Allowed はリクエストを許可するかどうか。
	Allowed bool
	// Count は現在のウィンドウでのリクエスト数。
	Count int
	// ResetAt は現在のウィンドウが終了する時刻。
	ResetAt time.Time
}

// Limiter はキーごとのリクエスト数を制限する。
type Limiter interface {
	// Allow はkeyのリクエストをlimit回/windowの範囲で許可するか判定する。
	Allow(ctx context.Context, key string, limit int, window time.Duration) Decision
	// Close はバックグラウンド処理や接続を解放する。
	Close() error
}

// Memory はプロセス内のメモリでカウントするLimiter。
type Memory struct {
	mu      sync.Mutex
	entries map[string]window
	now     func() time.Time
	stopCh  chan struct{}
	once    sync.Once
}

type window struct {
	count int
	end   time.Time
}

// NewMemory はメモリ上のLimiterを生成し、期限切れエントリの掃除を開始する。
func NewMemory() *Memory {
	m := &Memory{
		entries: make(map[string]window),
		now:     time.Now,
		stopCh:  make(chan struct{}),
	}
	go m.sweepLoop()
	return m
}

// Allow はkeyのリクエストを許可するか判定する。
// limitが0以下の場合は常に許可する。
func (m *Memory) Allow(_ context.Context, key string, limit int, d time.Duration) Decision {
	if limit <= 0 {
		return Decision{Allowed: true}
	}
	if d <= 0 {
		d = time.Minute
	}
	now := m.now()

	m.mu.Lock()
	defer m.mu.Unlock()

	w, ok := m.entries[key]
	if !ok || !now.Before(w.end) {
		w = window{count: 1, end: now.Add(d)}
		m.entries[key] = w
		return Decision{Allowed: true, Count: w.count, ResetAt: w.end}
	}
	if w.count >= limit {
		return Decision{Allowed: false, Count: w.count, ResetAt: w.end}
	}
	w.count++
	m.entries[key] = w
	return Decision{Allowed: true, Count: w.count, ResetAt: w.end}
}

func (m *Memory) sweepLoop() {
	ticker := time.NewTicker(sweepInterval)
	defer ticker.Stop()
	for {
		select {
		case <-ticker.C:
			m.sweep()
		case <-m.stopCh:
			return
		}
	}
}

func (m *Memory) sweep() {
	now := m.now()
	m.mu.Lock()
	defer m.mu.Unlock()
	for key, w := range m.entries {
		if !now.Before(w.end) {
			delete(m.entries, key)
		}
	}
}

// Close は掃除ループを停止する。複数回呼び出しても安全。
func (m *Memory) Close() error {
	m.once.Do(func() {
		close(m.stopCh)
	})
	return nil
}
