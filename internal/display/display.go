package display

import (
	"context"
	"sync"

	"github.com/maloquacious/datacycle/internal/logger"
)

// Display owns a State and the single fetch issued per mount.
type Display struct {
	fetcher Fetcher
	log     logger.Logger

	mu        sync.Mutex
	state     State
	phase     Phase
	unmounted bool
	cancel    context.CancelFunc

	mountOnce sync.Once
	done      chan FetchResult
}

// New returns an unmounted Display showing the fallback records.
func New(f Fetcher, log logger.Logger) *Display {
	if log == nil {
		log = logger.Default
	}
	return &Display{
		fetcher: f,
		log:     log,
		state:   NewState(),
		done:    make(chan FetchResult, 1),
	}
}

// Mount starts the fetch without blocking and returns a channel that
// receives its result once. Later calls return the same channel and do not
// fetch again.
func (d *Display) Mount(ctx context.Context) <-chan FetchResult {
	d.mountOnce.Do(func() {
		ctx, cancel := context.WithCancel(ctx)

		d.mu.Lock()
		d.cancel = cancel
		d.phase = PhasePending
		d.mu.Unlock()

		go d.fetch(ctx)
	})
	return d.done
}

func (d *Display) fetch(ctx context.Context) {
	records, err := d.fetcher.Fetch(ctx)
	result := FetchResult{Records: records, Err: err}

	d.mu.Lock()
	if !d.unmounted {
		d.state.Apply(result)
		if result.OK() {
			d.phase = PhaseResolved
		} else {
			d.phase = PhaseFailed
		}
	}
	d.mu.Unlock()

	if err != nil {
		d.log.Error("error fetching data: %v", err)
	}
	d.done <- result
	close(d.done)
}

// Click advances the cursor and returns the newly displayed text.
func (d *Display) Click() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.state.Advance()
	return d.state.Text()
}

// Text returns the currently displayed text.
func (d *Display) Text() string {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.state.Text()
}

// Snapshot returns a copy of the current state.
func (d *Display) Snapshot() State {
	d.mu.Lock()
	defer d.mu.Unlock()
	s := d.state
	s.Records = append(s.Records[:0:0], d.state.Records...)
	return s
}

// Phase reports where the mount fetch stands.
func (d *Display) Phase() Phase {
	d.mu.Lock()
	defer d.mu.Unlock()
	return d.phase
}

// Unmount cancels an in-flight fetch. Its result, if it still arrives, is
// not applied.
func (d *Display) Unmount() {
	d.mu.Lock()
	defer d.mu.Unlock()
	d.unmounted = true
	if d.cancel != nil {
		d.cancel()
	}
}
