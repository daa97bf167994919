package job

import (
	"context"
	"errors"
	"time"

	"github.com/viant/coderag/errs"
)

// Per-phase timeouts. Parse is CPU-bound and unbounded; it has
// no entry here and runs under whatever deadline the caller's ctx carries.
const (
	TimeoutFetch  = 120 * time.Second
	TimeoutEmbed  = 600 * time.Second
	TimeoutUpsert = 300 * time.Second
	TimeoutQuery  = 30 * time.Second
)

// RunPhase runs fn under a deadline of timeout, translating a deadline
// overrun into errs.Timeout: exceeding a timeout transitions the job to
// failed with error.kind = Timeout.
func RunPhase(ctx context.Context, timeout time.Duration, fn func(ctx context.Context) error) error {
	phaseCtx, cancel := context.WithTimeout(ctx, timeout)
	defer cancel()

	err := fn(phaseCtx)
	if err != nil && errors.Is(phaseCtx.Err(), context.DeadlineExceeded) {
		return errs.Wrap(errs.Timeout, phaseCtx.Err())
	}
	return err
}
