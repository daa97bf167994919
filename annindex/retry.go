package annindex

import (
	"context"
	"time"

	"golang.org/x/time/rate"

	"github.com/viant/coderag/errs"
)

// retryBackoff is the fixed 1s/2s/4s ladder used for retrying
// IndexUnavailable.
var retryBackoff = []time.Duration{time.Second, 2 * time.Second, 4 * time.Second}

// retryLimiter paces outbound requests so a retry storm against a struggling
// Qdrant instance doesn't make things worse; x/time/rate is already used
// elsewhere in this module for outbound API pacing, reused here rather than
// hand-rolling a token bucket.
type retryLimiter struct {
	limiter *rate.Limiter
}

func newRetryLimiter() *retryLimiter {
	return &retryLimiter{limiter: rate.NewLimiter(rate.Limit(20), 20)}
}

// retry runs fn, retrying on IndexUnavailable per the backoff ladder above.
// IndexNotReady is not retried here: it is treated as the indexer's
// success signal and the query engine's fallback trigger, not a transient
// failure to wait out.
func (c *Client) retry(ctx context.Context, fn func() error) error {
	var lastErr error
	for attempt := 0; attempt <= len(retryBackoff); attempt++ {
		if err := c.limiter.limiter.Wait(ctx); err != nil {
			return errs.Wrap(errs.Internal, err)
		}

		err := fn()
		if err == nil {
			return nil
		}
		lastErr = err
		if errs.KindOf(err) != errs.IndexUnavailable {
			return err
		}
		if attempt == len(retryBackoff) {
			break
		}

		select {
		case <-time.After(retryBackoff[attempt]):
		case <-ctx.Done():
			return errs.Wrap(errs.Timeout, ctx.Err())
		}
	}
	return lastErr
}
