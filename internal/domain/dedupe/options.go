package dedupe

type config struct {
	maxSize int
}

// Option configures a Deduper.
type Option func(*config)

// WithMaxSize bounds the number of remembered keys.
// If maxSize > 0 the oldest key is evicted once the bound is reached.
// If maxSize <= 0 the deduper is unbounded.
func WithMaxSize(maxSize int) Option {
	return func(c *config) {
		c.maxSize = maxSize
	}
}
