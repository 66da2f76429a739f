package stepform

import (
	"context"
	"errors"
	"sync"
	"time"

	"github.com/mark3labs/stepform/internal/logger"
	"github.com/mark3labs/stepform/internal/storage"
)

// persister writes snapshots to a storage.Store after a quiet period.
//
// Writes and removes are serialized on ioMu. Every schedule, cancel and clear
// bumps gen, and a timer only writes if gen is unchanged once it holds ioMu,
// so a pending debounce can never resurrect a snapshot that was just cleared.
type persister struct {
	store storage.Store
	codec Codec
	key   string
	delay time.Duration
	ctx   context.Context

	// snapshot returns the latest state, or false when nothing should be written.
	snapshot func() (Snapshot, bool)

	ioMu sync.Mutex

	mu       sync.Mutex
	timer    *time.Timer
	gen      uint64
	ready    bool // set once the initial restore has finished
	degraded bool // a write failed; persistence is off for this session
}

// load reads and decodes the snapshot for the key. A missing key is (zero, false, nil).
func (p *persister) load(ctx context.Context) (Snapshot, bool, error) {
	b, err := p.store.Get(ctx, p.key)
	if err != nil {
		if errors.Is(err, storage.ErrNotFound) {
			return Snapshot{}, false, nil
		}
		return Snapshot{}, false, err
	}
	s, err := p.codec.Decode(b)
	if err != nil {
		return Snapshot{}, false, err
	}
	return s, true, nil
}

func (p *persister) markReady() {
	p.mu.Lock()
	p.ready = true
	p.mu.Unlock()
}

// schedule (re)starts the debounce timer.
func (p *persister) schedule() {
	p.mu.Lock()
	if !p.ready || p.degraded {
		p.mu.Unlock()
		return
	}
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.gen++
	gen := p.gen
	if p.delay <= 0 {
		p.mu.Unlock()
		p.fire(gen)
		return
	}
	p.timer = time.AfterFunc(p.delay, func() { p.fire(gen) })
	p.mu.Unlock()
}

func (p *persister) fire(gen uint64) {
	p.ioMu.Lock()
	defer p.ioMu.Unlock()

	p.mu.Lock()
	stale := gen != p.gen
	if !stale {
		p.timer = nil
	}
	p.mu.Unlock()
	if stale {
		return
	}

	// a cancelled host context must not cost the teardown flush its write
	_ = p.writeLocked(context.WithoutCancel(p.ctx))
}

// cancel stops any pending write and invalidates timers already firing.
func (p *persister) cancel() {
	p.mu.Lock()
	if p.timer != nil {
		p.timer.Stop()
		p.timer = nil
	}
	p.gen++
	p.mu.Unlock()
}

// flush writes the latest snapshot now, regardless of the debounce timer.
func (p *persister) flush(ctx context.Context) error {
	p.cancel()

	p.ioMu.Lock()
	defer p.ioMu.Unlock()
	return p.writeLocked(ctx)
}

// clear cancels pending writes and removes the stored snapshot.
func (p *persister) clear(ctx context.Context) error {
	p.cancel()

	p.ioMu.Lock()
	defer p.ioMu.Unlock()

	if err := p.store.Remove(ctx, p.key); err != nil {
		logger.Warn("Failed to clear snapshot %s: %v", p.key, err)
		return err
	}
	logger.Debug("Snapshot %s cleared", p.key)
	return nil
}

// writeLocked encodes and stores the snapshot. Caller holds ioMu.
func (p *persister) writeLocked(ctx context.Context) error {
	p.mu.Lock()
	skip := !p.ready || p.degraded
	p.mu.Unlock()
	if skip {
		return nil
	}

	snap, ok := p.snapshot()
	if !ok {
		return nil
	}

	b, err := p.codec.Encode(snap)
	if err == nil {
		err = p.store.Set(ctx, p.key, b)
	}
	if errors.Is(err, context.Canceled) || errors.Is(err, context.DeadlineExceeded) {
		logger.Debug("Snapshot %s write interrupted: %v", p.key, err)
		return err
	}
	if err != nil {
		p.mu.Lock()
		p.degraded = true
		p.mu.Unlock()
		logger.Warn("Persisting snapshot %s failed, disabling persistence for this session: %v", p.key, err)
		return err
	}
	return nil
}
