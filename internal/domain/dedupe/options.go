package dedupe

// Option configures the in-memory deduper.
type Option func(*memoryDeduper)

// WithCapacity bounds the number of IDs kept in memory. Once full the oldest
// recorded ID is evicted. A value <= 0 disables eviction entirely.
func WithCapacity(capacity int) Option {
	return func(d *memoryDeduper) {
		d.capacity = capacity
	}
}
