package animcatalog

import "sync"

// ClipIDAllocator hands out synthetic clip ids for newly-added catalog
// blocks from a fixed 15-bit pool, counting down from the top so that
// manually-authored low ids (the common case in hand-edited catalogs)
// are least likely to collide with an allocated one.
//
// pkg/pipeline's emit stage shares one allocator across every catalog
// template's goroutine (so that animationdatasinglefile and
// animationsetdatasinglefile never hand out the same id), so every method
// here is safe for concurrent use.
type ClipIDAllocator struct {
	mu      sync.Mutex
	used    []bool
	current int
}

// MaxClipID is the largest representable clip id (15-bit, i.e. int16 max).
const MaxClipID = 32767

// NewClipIDAllocator returns an allocator with every id unused.
func NewClipIDAllocator() *ClipIDAllocator {
	return &ClipIDAllocator{
		used:    make([]bool, MaxClipID+1),
		current: MaxClipID,
	}
}

// Register marks id as already in use, so Next will never return it. Ids
// outside [0, MaxClipID] are ignored.
func (a *ClipIDAllocator) Register(id int) {
	if id < 0 || id > MaxClipID {
		return
	}
	a.mu.Lock()
	defer a.mu.Unlock()
	a.used[id] = true
}

// Next returns the next unused id, counting down from MaxClipID, or false
// once the pool is exhausted.
func (a *ClipIDAllocator) Next() (int, bool) {
	a.mu.Lock()
	defer a.mu.Unlock()
	for a.current > 0 {
		if !a.used[a.current] {
			a.used[a.current] = true
			return a.current, true
		}
		a.current--
	}
	if !a.used[0] {
		a.used[0] = true
		return 0, true
	}
	return 0, false
}

// Reset clears every registered/allocated id, restarting the countdown.
func (a *ClipIDAllocator) Reset() {
	a.mu.Lock()
	defer a.mu.Unlock()
	for i := range a.used {
		a.used[i] = false
	}
	a.current = MaxClipID
}
