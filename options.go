// ©Hayabusa Cloud Co., Ltd. 2025. All rights reserved.
// Use of this source code is governed by a MIT-style
// license that can be found in the LICENSE file.

package bottle

import "time"

// Options configures the io.Reader/io.Writer-facing adapters (ChunkSource/
// ChunkSink built from a transport) and the drain policy for abandoned
// inner streams. Construct via functional Option values, the same pattern
// code.hybscloud.com/framer uses for its own Options.
type Options struct {
	// BufferSize is the chunk size requested from an underlying io.Reader.
	// Zero means DefaultBufferSize.
	BufferSize int

	// RetryDelay controls how a transport adapter handles
	// code.hybscloud.com/iox's ErrWouldBlock/ErrMore:
	//   - negative: nonblock, return the error immediately
	//   - zero: yield (runtime.Gosched) and retry
	//   - positive: sleep for the duration and retry
	RetryDelay time.Duration

	// MaxAutoDrainBytes bounds how much of an abandoned inner stream
	// Close will discard before giving up with an error. Zero means
	// DefaultMaxAutoDrainBytes.
	MaxAutoDrainBytes int64
}

// DefaultBufferSize is the chunk size used when Options.BufferSize is
// zero.
const DefaultBufferSize = 32 * 1024

// DefaultMaxAutoDrainBytes is the auto-drain budget used when
// Options.MaxAutoDrainBytes is zero.
const DefaultMaxAutoDrainBytes = 16 * 1024 * 1024

var defaultOptions = Options{
	BufferSize:        DefaultBufferSize,
	RetryDelay:        -1, // nonblock by default, like framer
	MaxAutoDrainBytes: DefaultMaxAutoDrainBytes,
}

// Option mutates an Options value.
type Option func(*Options)

func resolveOptions(opts []Option) Options {
	o := defaultOptions
	for _, fn := range opts {
		fn(&o)
	}
	return o
}

// WithBufferSize sets the chunk size requested from an underlying
// io.Reader.
func WithBufferSize(n int) Option {
	return func(o *Options) { o.BufferSize = n }
}

// WithRetryDelay sets the retry/wait policy used when the underlying
// transport returns iox.ErrWouldBlock or iox.ErrMore.
func WithRetryDelay(d time.Duration) Option {
	return func(o *Options) { o.RetryDelay = d }
}

// WithBlock enables cooperative blocking (yield-and-retry) on
// iox.ErrWouldBlock/iox.ErrMore.
func WithBlock() Option {
	return func(o *Options) { o.RetryDelay = 0 }
}

// WithNonblock forces non-blocking behavior (return the iox error
// immediately). This is the default.
func WithNonblock() Option {
	return func(o *Options) { o.RetryDelay = -1 }
}

// WithMaxAutoDrainBytes bounds how much of an abandoned inner stream
// (io.ReadCloser).Close will discard before failing instead of draining
// forever.
func WithMaxAutoDrainBytes(n int64) Option {
	return func(o *Options) { o.MaxAutoDrainBytes = n }
}
