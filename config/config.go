package config

import (
	"time"
)

type (
	HeadersSpace struct {
		Default, Maximal int
	}

	ResponseLineSize struct {
		Default, Maximal int
	}

	PoolBackoff struct {
		// Min is the delay after the first failure of a connection.
		Min time.Duration
		// Max caps the delay, no matter how many failures in a row there were.
		Max time.Duration
		// Factor multiplies the delay on every consecutive failure.
		Factor float64
		// Jitter randomizes the delay, so connections to the same peer don't reconnect in
		// lockstep.
		Jitter bool `test:"nullable"`
	}
)

type (
	NET struct {
		// ChunkSize is the most bytes a single tick sends or receives.
		ChunkSize int
		// ActivityTimeout limits the time without I/O progress in any state except idling.
		// Connections exceeding it are closed.
		ActivityTimeout time.Duration
		// IdleTimeout limits the lifetime of an idle keep-alive connection.
		IdleTimeout time.Duration
		// TimerResolution is the frequency the coarse clock is updated at. Timeouts are
		// detected with at most this error.
		TimerResolution time.Duration
	}

	Headers struct {
		// ResponseLineSize limits the status line, e.g. HTTP/1.1 200 OK.
		ResponseLineSize ResponseLineSize
		// Space limits the amount of memory occupied by response header keys and values.
		Space HeadersSpace
		// MaxNumber is the most header fields a response may carry.
		MaxNumber int
		// Default headers are added to every request, unless explicitly set.
		Default map[string]string `test:"nullable"`
	}

	Body struct {
		// MaxSize is the biggest response body that is accepted, after decoding.
		MaxSize uint64
		// Decode makes responses with gzip, deflate or zstd content coding be decoded
		// transparently. Requests then advertise the codings via Accept-Encoding.
		Decode bool `test:"nullable"`
	}

	Pool struct {
		// Size is the number of connections held by a pool.
		Size int
		// QueueSize limits how many requests may wait for a free connection.
		QueueSize int
		// TickInterval is how often Run ticks the pool.
		TickInterval time.Duration
		// Backoff controls how soon a failed connection may reconnect.
		Backoff PoolBackoff
	}
)

// Config holds limits, timeouts and pre-allocations used by connections, requests,
// responses and pools.
//
// Always modify the defaults returned by Default() instead of initializing the config
// manually, as zero values are mostly not meaningful.
type Config struct {
	NET     NET
	Headers Headers
	Body    Body
	Pool    Pool
}

// Default returns the default config.
func Default() *Config {
	return &Config{
		NET: NET{
			ChunkSize:       1024,
			ActivityTimeout: 5 * time.Second,
			IdleTimeout:     90 * time.Second,
			TimerResolution: 100 * time.Millisecond,
		},
		Headers: Headers{
			ResponseLineSize: ResponseLineSize{
				Default: 64,
				// reason phrases are free-form, but nobody sane sends a kilobyte of them
				Maximal: 1024,
			},
			Space: HeadersSpace{
				Default: 1 * 1024,
				Maximal: 16 * 1024,
			},
			MaxNumber: 50,
			Default: map[string]string{
				"User-Agent": "nbclient",
				"Accept":     "*/*",
			},
		},
		Body: Body{
			MaxSize: 64 * 1024 * 1024, // 64 megabytes
			Decode:  true,
		},
		Pool: Pool{
			Size:         4,
			QueueSize:    64,
			TickInterval: 10 * time.Millisecond,
			Backoff: PoolBackoff{
				Min:    500 * time.Millisecond,
				Max:    30 * time.Second,
				Factor: 2,
				Jitter: true,
			},
		},
	}
}
