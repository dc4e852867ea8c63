package window

// Rolling is a fixed-capacity circular buffer. Push overwrites the oldest
// value once the buffer has completed one full lap; Full latches true at
// that point and stays true. No reallocation ever happens after New.
type Rolling struct {
	buf    []float64
	pos    int
	filled bool
}

// NewRolling creates a rolling buffer of the given capacity.
func NewRolling(capacity int) *Rolling {
	return &Rolling{buf: make([]float64, capacity)}
}

// Push appends a value at the write cursor, advancing it modulo capacity.
func (w *Rolling) Push(v float64) {
	w.buf[w.pos] = v
	w.pos = (w.pos + 1) % len(w.buf)
	if !w.filled && w.pos == 0 {
		w.filled = true
	}
}

// Full reports whether the buffer has completed at least one full lap.
func (w *Rolling) Full() bool {
	return w.filled
}

// Cap returns the fixed capacity.
func (w *Rolling) Cap() int {
	return len(w.buf)
}

// Snapshot copies the buffer oldest-to-newest so index 0 is the oldest
// sample. Destination-based: reuses dst when it has sufficient capacity,
// otherwise allocates. Only meaningful once Full.
func (w *Rolling) Snapshot(dst []float64) []float64 {
	n := len(w.buf)
	if cap(dst) >= n {
		dst = dst[:n]
	} else {
		dst = make([]float64, n)
	}
	for i := 0; i < n; i++ {
		dst[i] = w.buf[(w.pos+i)%n]
	}
	return dst
}

// SingleShot is a fixed-capacity buffer filled from index 0 exactly once
// per cycle, then reset after consumption.
type SingleShot struct {
	buf []float64
	n   int
}

// NewSingleShot creates a single-shot buffer of the given capacity.
func NewSingleShot(capacity int) *SingleShot {
	return &SingleShot{buf: make([]float64, capacity)}
}

// Push appends a value. Pushes beyond capacity are ignored; callers reset
// the window when a cycle completes.
func (w *SingleShot) Push(v float64) {
	if w.n < len(w.buf) {
		w.buf[w.n] = v
		w.n++
	}
}

// Full reports whether the window holds exactly its capacity.
func (w *SingleShot) Full() bool {
	return w.n == len(w.buf)
}

// Len returns the current fill count.
func (w *SingleShot) Len() int {
	return w.n
}

// Cap returns the fixed capacity.
func (w *SingleShot) Cap() int {
	return len(w.buf)
}

// Values returns the filled portion of the window in push order. The slice
// aliases internal storage and is only valid until the next Push or Reset.
func (w *SingleShot) Values() []float64 {
	return w.buf[:w.n]
}

// Reset logically empties the window for the next cycle.
func (w *SingleShot) Reset() {
	w.n = 0
}
