package repository

import "time"

type options struct {
	maxEntries int
	ttl        time.Duration
	keyPrefix  string
}

func defaultOptions() options {
	return options{keyPrefix: "touchline:"}
}

// Option configures a store. Options a store does not use are ignored.
type Option func(*options)

// WithMaxEntries bounds the memory store; the oldest match is evicted once
// the bound is reached. Zero or less means unbounded.
func WithMaxEntries(n int) Option {
	return func(o *options) {
		o.maxEntries = n
	}
}

// WithTTL sets how long Redis keeps a match. Zero keeps it forever.
func WithTTL(ttl time.Duration) Option {
	return func(o *options) {
		if ttl >= 0 {
			o.ttl = ttl
		}
	}
}

// WithKeyPrefix namespaces Redis keys.
func WithKeyPrefix(prefix string) Option {
	return func(o *options) {
		o.keyPrefix = prefix
	}
}
