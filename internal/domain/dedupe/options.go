package dedupe

// Option configures an in-memory Deduper.
type Option func(*inMemoryDeduper)

// WithMaxSize caps the number of remembered keys. Zero or negative means
// unbounded.
func WithMaxSize(maxSize int) Option {
	return func(d *inMemoryDeduper) {
		d.maxSize = maxSize
	}
}
