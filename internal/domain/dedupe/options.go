// Package dedupe tracks which keys have been seen and in what order.
package dedupe

// Option applies a configuration option to the Ordered deduper.
type Option func(*Ordered)

// WithCapacity presizes the deduper for n distinct keys.
func WithCapacity(n int) Option {
	return func(d *Ordered) {
		if n > 0 {
			d.capacity = n
		}
	}
}
