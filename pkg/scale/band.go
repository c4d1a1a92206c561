package scale

// Band partitions a continuous range into equal, contiguous bands, one per
// distinct domain value. There is no inner or outer padding.
type Band[T comparable] struct {
	domain  []T
	index   map[T]int
	start   float64
	step    float64
	reverse bool
}

// NewBand builds a band scale over domain (duplicates dropped, first
// occurrence wins) covering [r0, r1]. A descending range assigns the first
// domain value to the highest band.
func NewBand[T comparable](domain []T, r0, r1 float64) Band[T] {
	b := Band[T]{index: make(map[T]int, len(domain))}
	for _, v := range domain {
		if _, ok := b.index[v]; ok {
			continue
		}
		b.index[v] = len(b.domain)
		b.domain = append(b.domain, v)
	}

	start, stop := r0, r1
	if stop < start {
		start, stop = stop, start
		b.reverse = true
	}
	b.start = start
	b.step = (stop - start) / float64(max(1, len(b.domain)))
	return b
}

// Map returns the start coordinate of v's band. ok is false when v is not
// part of the domain.
func (b Band[T]) Map(v T) (pos float64, ok bool) {
	i, ok := b.index[v]
	if !ok {
		return 0, false
	}
	if b.reverse {
		i = len(b.domain) - 1 - i
	}
	return b.start + b.step*float64(i), true
}

// Bandwidth returns the width of every band.
func (b Band[T]) Bandwidth() float64 {
	return b.step
}

// Domain returns the distinct domain values in order.
func (b Band[T]) Domain() []T {
	out := make([]T, len(b.domain))
	copy(out, b.domain)
	return out
}

// Len returns the number of bands.
func (b Band[T]) Len() int {
	return len(b.domain)
}
