package arena

import "github.com/go-kit/log"

// Option configures an Arena.
type Option func(*Arena)

// WithLogger sets the logger used for chunk lifecycle events. The default
// discards everything.
func WithLogger(logger log.Logger) Option {
	return func(a *Arena) {
		a.logger = logger
	}
}

// WithMinChunkSize sets the smallest data region a newly created chunk may
// have. Zero, the default, sizes chunks purely from the request and the
// previous chunk.
func WithMinChunkSize(n int) Option {
	return func(a *Arena) {
		if n > 0 {
			a.minChunkSize = n
		}
	}
}
