package field

import "sync"

// Viewport publishes the size of the area a field is drawn into. Hosts call
// Resize when their window changes; sessions listen for it.
type Viewport struct {
	mu   sync.Mutex
	w, h int
	next int
	subs map[int]func(w, h int)
}

func NewViewport(w, h int) *Viewport {
	return &Viewport{w: w, h: h, subs: make(map[int]func(w, h int))}
}

func (v *Viewport) Size() (int, int) {
	v.mu.Lock()
	defer v.mu.Unlock()
	return v.w, v.h
}

// Resize records the new size and notifies every listener. Listeners run on
// the caller's goroutine, outside the viewport lock.
func (v *Viewport) Resize(w, h int) {
	v.mu.Lock()
	v.w, v.h = w, h
	fns := make([]func(w, h int), 0, len(v.subs))
	for _, fn := range v.subs {
		fns = append(fns, fn)
	}
	v.mu.Unlock()

	for _, fn := range fns {
		fn(w, h)
	}
}

// Subscribe registers fn for resize notifications and returns the function
// that removes it.
func (v *Viewport) Subscribe(fn func(w, h int)) (unsubscribe func()) {
	v.mu.Lock()
	id := v.next
	v.next++
	v.subs[id] = fn
	v.mu.Unlock()

	var once sync.Once
	return func() {
		once.Do(func() {
			v.mu.Lock()
			delete(v.subs, id)
			v.mu.Unlock()
		})
	}
}

// Listeners returns the number of registered listeners.
func (v *Viewport) Listeners() int {
	v.mu.Lock()
	defer v.mu.Unlock()
	return len(v.subs)
}
