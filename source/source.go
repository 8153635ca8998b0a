// Package source provides remote-fetch implementations for fallcache.
// A source makes a single attempt per call; retries, backoff, and
// timeouts are the caller's business (hang them on the context or the
// HTTP client).
package source

import "context"

// Func adapts a plain function to the fallcache Source interface.
type Func[R any] func(ctx context.Context) ([]R, error)

func (f Func[R]) FetchAll(ctx context.Context) ([]R, error) { return f(ctx) }
