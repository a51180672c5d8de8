package progress

import "iter"

// Iter yields 0..total-1, advancing the bar once per element. The bar closes when the
// sequence is exhausted.
func (b *Bar) Iter() iter.Seq[int] {
	return func(yield func(int) bool) {
		total := b.Total()
		for i := range total {
			if b.advance() {
				b.Draw()
			}
			if !yield(i) {
				return
			}
		}
		_ = b.Close()
	}
}

// Over yields the elements of items, advancing b once per element. A bar with an
// undefined total takes the length of items. The bar closes when items are exhausted.
func Over[T any](b *Bar, items []T) iter.Seq2[int, T] {
	return func(yield func(int, T) bool) {
		b.mu.Lock()
		if b.total <= 0 {
			b.total = len(items)
		}
		b.mu.Unlock()

		for i, item := range items {
			if b.advance() {
				b.Draw()
			}
			if !yield(i, item) {
				return
			}
		}
		_ = b.Close()
	}
}
