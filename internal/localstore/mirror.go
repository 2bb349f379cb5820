package localstore

import (
	"context"
	"fmt"
	"sync"
	"time"

	"github.com/truckledger/service-logistics/internal/domain/kv"
	"go.uber.org/zap"
)

// DefaultSyncTimeout bounds one background remote call.
const DefaultSyncTimeout = 15 * time.Second

// Mirror is the local-first view of mirrored state. Reads and writes hit the local
// store synchronously. Keys on the sync allow-list are also pushed to the remote in
// the background, and remote failures there are logged and dropped.
type Mirror struct {
	local       Store
	remote      Remote
	logger      *zap.Logger
	syncTimeout time.Duration
	now         func() time.Time

	mu     sync.Mutex
	stamps map[string]int64
	wg     sync.WaitGroup
}

// NewMirror creates a Mirror. A nil remote gives a local-only mirror.
func NewMirror(local Store, remote Remote, logger *zap.Logger) *Mirror {
	return &Mirror{
		local:       local,
		remote:      remote,
		logger:      logger,
		syncTimeout: DefaultSyncTimeout,
		now:         time.Now,
		stamps:      make(map[string]int64),
	}
}

// Get reads the local copy of key.
func (m *Mirror) Get(ctx context.Context, key string) ([]byte, bool, error) {
	return m.local.Get(ctx, key)
}

// Write stores raw under key. raw is kept as-is when it is JSON, otherwise it is
// stored as a JSON string. The local write is done when Write returns.
func (m *Mirror) Write(ctx context.Context, key, raw string) error {
	value := kv.EncodeValue(raw)
	if err := m.local.Set(ctx, key, value); err != nil {
		return err
	}
	m.pushPut(key, value)
	return nil
}

// Remove deletes key locally and, for synced keys, remotely in the background.
func (m *Mirror) Remove(ctx context.Context, key string) error {
	if err := m.local.Delete(ctx, key); err != nil {
		return err
	}
	if m.remote == nil || !kv.ShouldSync(key) {
		return nil
	}
	m.background(key, "delete", func(ctx context.Context) error {
		return m.remote.Delete(ctx, key)
	})
	return nil
}

// Preload copies every remote synced key over the local copy and returns how many
// were copied. On a remote failure local state is left untouched.
func (m *Mirror) Preload(ctx context.Context) (int, error) {
	if m.remote == nil {
		return 0, nil
	}
	entries, err := m.remote.List(ctx)
	if err != nil {
		return 0, fmt.Errorf("preload: %w", err)
	}

	n := 0
	for _, e := range entries {
		if !kv.ShouldSync(e.Key) {
			continue
		}
		if err := m.local.Set(ctx, e.Key, e.Value); err != nil {
			return n, err
		}
		m.observeStamp(e.Key, e.Stamp)
		n++
	}
	return n, nil
}

// Commit applies value locally, runs remoteCall and restores the previous local value
// when the call fails. On success the value is mirrored like Write.
func (m *Mirror) Commit(ctx context.Context, key string, value []byte, remoteCall func(ctx context.Context) error) error {
	prev, had, err := m.local.Get(ctx, key)
	if err != nil {
		return err
	}
	if err := m.local.Set(ctx, key, value); err != nil {
		return err
	}

	if err := remoteCall(ctx); err != nil {
		var rollbackErr error
		if had {
			rollbackErr = m.local.Set(ctx, key, prev)
		} else {
			rollbackErr = m.local.Delete(ctx, key)
		}
		if rollbackErr != nil {
			m.logger.Error("rollback failed", zap.String("key", key), zap.Error(rollbackErr))
		}
		return err
	}

	m.pushPut(key, value)
	return nil
}

// Flush waits for in-flight remote calls or for ctx to end.
func (m *Mirror) Flush(ctx context.Context) error {
	done := make(chan struct{})
	go func() {
		m.wg.Wait()
		close(done)
	}()
	select {
	case <-done:
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (m *Mirror) pushPut(key string, value []byte) {
	if m.remote == nil || !kv.ShouldSync(key) {
		return
	}
	stamp := m.nextStamp(key)
	m.background(key, "put", func(ctx context.Context) error {
		return m.remote.Put(ctx, key, value, stamp)
	})
}

func (m *Mirror) background(key, op string, call func(ctx context.Context) error) {
	m.wg.Add(1)
	go func() {
		defer m.wg.Done()
		ctx, cancel := context.WithTimeout(context.Background(), m.syncTimeout)
		defer cancel()
		if err := call(ctx); err != nil {
			m.logger.Debug("remote mirror failed",
				zap.String("key", key),
				zap.String("op", op),
				zap.Error(err),
			)
		}
	}()
}

// nextStamp returns a stamp above every stamp issued or seen for key.
func (m *Mirror) nextStamp(key string) int64 {
	m.mu.Lock()
	defer m.mu.Unlock()
	stamp := m.now().UnixNano()
	if last := m.stamps[key]; stamp <= last {
		stamp = last + 1
	}
	m.stamps[key] = stamp
	return stamp
}

func (m *Mirror) observeStamp(key string, stamp int64) {
	m.mu.Lock()
	defer m.mu.Unlock()
	if stamp > m.stamps[key] {
		m.stamps[key] = stamp
	}
}
