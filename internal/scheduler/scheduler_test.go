package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"unimarket/internal/usecase/recommendation"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type countingRefresher struct {
	calls atomic.Int32
	err   error
}

func (r *countingRefresher) Refresh(context.Context, string) (recommendation.RefreshResult, error) {
	r.calls.Add(1)
	return recommendation.RefreshResult{Users: 1, Jobs: 1}, r.err
}

func TestStart_EmptySpecIsDisabled(t *testing.T) {
	s := New("", &countingRefresher{}, nil)
	require.NoError(t, s.Start(context.Background()))
	s.Stop()
}

func TestStart_InvalidSpec(t *testing.T) {
	s := New("not a cron spec", &countingRefresher{}, nil)
	assert.Error(t, s.Start(context.Background()))
}

func TestStart_RunsRefresh(t *testing.T) {
	r := &countingRefresher{}
	s := New("@every 1s", r, nil)
	require.NoError(t, s.Start(context.Background()))
	defer s.Stop()

	assert.Eventually(t, func() bool { return r.calls.Load() >= 1 }, 3*time.Second, 50*time.Millisecond)
}

func TestRunRefresh_InProgressIsNotAnError(t *testing.T) {
	r := &countingRefresher{err: recommendation.ErrRefreshInProgress}
	s := New("@every 1h", r, nil)
	s.runRefresh(context.Background())
	assert.Equal(t, int32(1), r.calls.Load())
}

func TestFields(t *testing.T) {
	got := fields([]interface{}{"entry", 1, "odd"})
	require.Len(t, got, 1)
	assert.Equal(t, "entry", got[0].Key)
}
