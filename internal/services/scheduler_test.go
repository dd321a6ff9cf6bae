package services

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	notifyUC "github.com/fastygo/sijagad/usecase/notify"
	sweepUC "github.com/fastygo/sijagad/usecase/sweep"
)

type sweepStub struct {
	runs int
	err  error
}

func (s *sweepStub) Run(ctx context.Context, now time.Time) (sweepUC.Result, error) {
	s.runs++
	return sweepUC.Result{Updated: 2}, s.err
}

type broadcasterStub struct {
	broadcasts int
	digests    int
}

func (b *broadcasterStub) BroadcastReport(ctx context.Context, now time.Time) (string, bool, error) {
	b.broadcasts++
	return "report", true, nil
}

func (b *broadcasterStub) Digest(ctx context.Context, now time.Time) (notifyUC.DigestResult, error) {
	b.digests++
	return notifyUC.DigestResult{Count: 1, Sent: true}, nil
}

func TestScheduler_RejectsInvalidSpec(t *testing.T) {
	_, err := NewScheduler(&sweepStub{}, &broadcasterStub{}, nil, SchedulerConfig{DigestSchedule: "every day"}, nil)
	assert.Error(t, err)
}

func TestScheduler_RunSweepBroadcastsAfterSweep(t *testing.T) {
	sweep := &sweepStub{}
	notify := &broadcasterStub{}
	s, err := NewScheduler(sweep, notify, nil, SchedulerConfig{SweepSchedule: "0 7 * * *", DigestSchedule: "0 8 * * *"}, nil)
	require.NoError(t, err)

	require.NoError(t, s.RunSweep(context.Background()))
	assert.Equal(t, 1, sweep.runs)
	assert.Equal(t, 1, notify.broadcasts)

	require.NoError(t, s.RunDigest(context.Background()))
	assert.Equal(t, 1, notify.digests)
}

func TestScheduler_SweepFailureSkipsBroadcast(t *testing.T) {
	sweep := &sweepStub{err: errors.New("offline")}
	notify := &broadcasterStub{}
	s, err := NewScheduler(sweep, notify, nil, SchedulerConfig{}, nil)
	require.NoError(t, err)

	assert.Error(t, s.RunSweep(context.Background()))
	assert.Zero(t, notify.broadcasts)
}

func TestScheduler_StartStop(t *testing.T) {
	s, err := NewScheduler(&sweepStub{}, &broadcasterStub{}, openStore(t), SchedulerConfig{DigestSchedule: "0 8 * * *"}, nil)
	require.NoError(t, err)
	s.Start()
	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	s.Stop(ctx)
}
