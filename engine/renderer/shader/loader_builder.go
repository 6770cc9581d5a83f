package shader

import (
	"time"

	"github.com/Carmen-Shannon/oxy-shadows/common"
)

// LoaderBuilderOption is a functional option for configuring a Loader.
type LoaderBuilderOption func(*loaderImpl)

// WithWorkers sets the size of the read worker pool.
//
// Parameters:
//   - n: number of workers (ignored if below 1)
//
// Returns:
//   - LoaderBuilderOption: option function to apply
func WithWorkers(n int) LoaderBuilderOption {
	return func(l *loaderImpl) {
		if n > 0 {
			l.workers = n
		}
	}
}

// WithRetries sets how many times an empty or unreadable file is read again.
//
// Parameters:
//   - retries: the retry count (0 reads once)
//
// Returns:
//   - LoaderBuilderOption: option function to apply
func WithRetries(retries uint64) LoaderBuilderOption {
	return func(l *loaderImpl) {
		l.retries = retries
	}
}

// WithInitialBackoff sets the wait before the first retry.
//
// Parameters:
//   - d: the initial backoff interval
//
// Returns:
//   - LoaderBuilderOption: option function to apply
func WithInitialBackoff(d time.Duration) LoaderBuilderOption {
	return func(l *loaderImpl) {
		if d > 0 {
			l.initialBackoff = d
		}
	}
}

// WithReadFile replaces os.ReadFile.
//
// Parameters:
//   - read: the file reader
//
// Returns:
//   - LoaderBuilderOption: option function to apply
func WithReadFile(read func(string) ([]byte, error)) LoaderBuilderOption {
	return func(l *loaderImpl) {
		if read != nil {
			l.readFile = read
		}
	}
}

// WithLogger sets the logger used for retry diagnostics.
//
// Parameters:
//   - logger: the logger
//
// Returns:
//   - LoaderBuilderOption: option function to apply
func WithLogger(logger common.Logger) LoaderBuilderOption {
	return func(l *loaderImpl) {
		if logger != nil {
			l.logger = logger
		}
	}
}
