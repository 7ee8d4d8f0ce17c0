package sequencer

import (
	"container/heap"
	"context"
	"sync"
	"time"
)

// DefaultTickLength is 20 ticks per second
const DefaultTickLength = 50 * time.Millisecond

// Clock drives playback with one-shot delayed callbacks
type Clock interface {
	// ScheduleTick runs fn once, afterTicks ticks from now (0 means next tick)
	ScheduleTick(afterTicks uint32, fn func())
	// Now returns time elapsed since the clock started
	Now() time.Duration
	// TickLength returns the duration of one tick
	TickLength() time.Duration
}

type pending struct {
	due uint64
	seq uint64
	fn  func()
}

type pendingQueue []pending

func (q pendingQueue) Len() int { return len(q) }
func (q pendingQueue) Less(i, j int) bool {
	if q[i].due != q[j].due {
		return q[i].due < q[j].due
	}
	return q[i].seq < q[j].seq
}
func (q pendingQueue) Swap(i, j int) { q[i], q[j] = q[j], q[i] }
func (q *pendingQueue) Push(x any)   { *q = append(*q, x.(pending)) }
func (q *pendingQueue) Pop() any {
	old := *q
	n := len(old)
	p := old[n-1]
	*q = old[:n-1]
	return p
}

// TickClock is a real-time Clock. Callbacks run on the goroutine calling Run.
type TickClock struct {
	tick  time.Duration
	start time.Time

	mu    sync.Mutex
	ticks uint64
	seq   uint64
	queue pendingQueue
}

// NewTickClock creates a clock with the given tick length
func NewTickClock(tick time.Duration) *TickClock {
	if tick <= 0 {
		tick = DefaultTickLength
	}
	return &TickClock{tick: tick, start: time.Now()}
}

func (c *TickClock) TickLength() time.Duration { return c.tick }

func (c *TickClock) Now() time.Duration { return time.Since(c.start) }

func (c *TickClock) ScheduleTick(afterTicks uint32, fn func()) {
	if afterTicks == 0 {
		afterTicks = 1
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	c.seq++
	heap.Push(&c.queue, pending{due: c.ticks + uint64(afterTicks), seq: c.seq, fn: fn})
}

// Pending returns the number of scheduled callbacks
func (c *TickClock) Pending() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.queue)
}

// Run ticks until ctx is cancelled
func (c *TickClock) Run(ctx context.Context) error {
	ticker := time.NewTicker(c.tick)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return ctx.Err()
		case <-ticker.C:
			c.advance()
		}
	}
}

// advance moves one tick forward and runs everything due
func (c *TickClock) advance() {
	c.mu.Lock()
	c.ticks++
	var due []func()
	for len(c.queue) > 0 && c.queue[0].due <= c.ticks {
		p := heap.Pop(&c.queue).(pending)
		due = append(due, p.fn)
	}
	c.mu.Unlock()

	for _, fn := range due {
		fn()
	}
}
