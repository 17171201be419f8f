package linkstate

// ring is a fixed-capacity FIFO of float64 samples. Pushing into a full ring
// evicts the oldest sample.
type ring struct {
	buf   []float64
	head  int // index of the oldest sample
	count int
}

func newRing(capacity int) *ring {
	if capacity < 1 {
		capacity = 1
	}
	return &ring{buf: make([]float64, capacity)}
}

func (r *ring) push(v float64) {
	if r.count < len(r.buf) {
		r.buf[(r.head+r.count)%len(r.buf)] = v
		r.count++
		return
	}
	r.buf[r.head] = v
	r.head = (r.head + 1) % len(r.buf)
}

func (r *ring) len() int { return r.count }

func (r *ring) mean() float64 {
	if r.count == 0 {
		return 0
	}
	var s float64
	for i := 0; i < r.count; i++ {
		s += r.buf[(r.head+i)%len(r.buf)]
	}
	return s / float64(r.count)
}

// values returns samples oldest first.
func (r *ring) values() []float64 {
	out := make([]float64, r.count)
	for i := range out {
		out[i] = r.buf[(r.head+i)%len(r.buf)]
	}
	return out
}
