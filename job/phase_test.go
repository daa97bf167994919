package job

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/viant/coderag/errs"
)

func TestRunPhase_DeadlineExceededBecomesTimeout(t *testing.T) {
	err := RunPhase(context.Background(), 10*time.Millisecond, func(ctx context.Context) error {
		<-ctx.Done()
		return ctx.Err()
	})
	require.Error(t, err)
	assert.Equal(t, errs.Timeout, errs.KindOf(err))
}

func TestRunPhase_SuccessWithinDeadline(t *testing.T) {
	err := RunPhase(context.Background(), time.Second, func(ctx context.Context) error {
		return nil
	})
	assert.NoError(t, err)
}
