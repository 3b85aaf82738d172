// Package window holds the kinematic window store: a fixed-capacity
// sliding window of recent distance values per subject. The detector keeps
// one store for the field (capacity 10) and one for the race leader
// (capacity 2); a stalled window is what turns an authoritative "this
// driver retires/finishes" into a frame-accurate tick.
package window

// Window is a ring buffer of the most recent distance samples for one
// subject. Oldest value is evicted first; length never exceeds capacity.
type Window struct {
	buf   []float64
	start int
	count int
}

func newWindow(capacity int) *Window {
	return &Window{buf: make([]float64, capacity)}
}

func (w *Window) push(v float64) {
	if w.count < len(w.buf) {
		w.buf[(w.start+w.count)%len(w.buf)] = v
		w.count++
		return
	}
	w.buf[w.start] = v
	w.start = (w.start + 1) % len(w.buf)
}

// Len returns the number of samples currently held.
func (w *Window) Len() int {
	return w.count
}

// Full reports whether the window has reached capacity.
func (w *Window) Full() bool {
	return w.count == len(w.buf)
}

// Values returns the samples in insertion order, oldest first.
func (w *Window) Values() []float64 {
	out := make([]float64, w.count)
	for i := 0; i < w.count; i++ {
		out[i] = w.buf[(w.start+i)%len(w.buf)]
	}
	return out
}

// Stationary reports whether every sample lies within tol of the first
// one. Only meaningful once the window is full; a short window says
// nothing about a stopped car yet.
func (w *Window) Stationary(tol float64) bool {
	if w.count == 0 {
		return false
	}
	first := w.buf[w.start]
	for i := 1; i < w.count; i++ {
		v := w.buf[(w.start+i)%len(w.buf)]
		if diff := v - first; diff > tol || diff < -tol {
			return false
		}
	}
	return true
}

// Stalled reports whether the two most recent samples differ by less than
// tol, i.e. distance has stopped advancing. False until two samples exist.
func (w *Window) Stalled(tol float64) bool {
	if w.count < 2 {
		return false
	}
	last := w.buf[(w.start+w.count-1)%len(w.buf)]
	prev := w.buf[(w.start+w.count-2)%len(w.buf)]
	diff := last - prev
	if diff < 0 {
		diff = -diff
	}
	return diff < tol
}

// Store owns one window per subject, all with the same capacity. Pushing
// for an unseen subject creates its window.
type Store struct {
	capacity int
	windows  map[string]*Window
}

func NewStore(capacity int) *Store {
	return &Store{
		capacity: capacity,
		windows:  make(map[string]*Window),
	}
}

func (s *Store) Push(subject string, dist float64) {
	w, ok := s.windows[subject]
	if !ok {
		w = newWindow(s.capacity)
		s.windows[subject] = w
	}
	w.push(dist)
}

// Get returns the subject's window, or nil when no sample was ever pushed.
func (s *Store) Get(subject string) *Window {
	return s.windows[subject]
}

func (s *Store) IsFull(subject string) bool {
	w := s.windows[subject]
	return w != nil && w.Full()
}

// Values returns the subject's window contents in insertion order, or nil
// for an unseen subject.
func (s *Store) Values(subject string) []float64 {
	w := s.windows[subject]
	if w == nil {
		return nil
	}
	return w.Values()
}
