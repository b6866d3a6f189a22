package service

import (
	"context"
	"errors"
	"sync"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/timmy/tubevault/internal/domain"
)

func recordStep(name string, log *[]string, fail error, compensate bool, compFail error) Step {
	s := Step{
		Name: name,
		Action: func(ctx context.Context) error {
			*log = append(*log, "do "+name)
			return fail
		},
	}
	if compensate {
		s.Compensate = func(ctx context.Context) error {
			*log = append(*log, "undo "+name)
			return compFail
		}
	}
	return s
}

func TestSaga_AllStepsSucceed(t *testing.T) {
	var log []string
	s := &Saga{Operation: "add", VideoID: "v1", Steps: []Step{
		recordStep("a", &log, nil, true, nil),
		recordStep("b", &log, nil, true, nil),
	}}

	require.NoError(t, s.Run(context.Background()))
	assert.Equal(t, []string{"do a", "do b"}, log)
}

func TestSaga_CompensatesInReverse(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	s := &Saga{Operation: "add", VideoID: "v1", Steps: []Step{
		recordStep("a", &log, nil, true, nil),
		recordStep("b", &log, nil, true, nil),
		recordStep("c", &log, boom, true, nil),
	}}

	err := s.Run(context.Background())
	assert.ErrorIs(t, err, boom)
	assert.NotErrorIs(t, err, domain.ErrConsistency)
	assert.Equal(t, []string{"do a", "do b", "do c", "undo b", "undo a"}, log)
}

func TestSaga_FailedCompensationIsConsistencyError(t *testing.T) {
	var log []string
	boom := errors.New("boom")
	s := &Saga{Operation: "add", VideoID: "v1", Steps: []Step{
		recordStep("documents", &log, nil, true, errors.New("db gone")),
		recordStep("vectors", &log, boom, true, nil),
	}}

	err := s.Run(context.Background())
	require.ErrorIs(t, err, domain.ErrConsistency)
	assert.ErrorIs(t, err, boom)

	var ce *domain.ConsistencyError
	require.True(t, errors.As(err, &ce))
	assert.Equal(t, []string{"documents"}, ce.Unresolved)
	assert.Equal(t, "v1", ce.VideoID)
}

func TestSaga_IrreversibleStep(t *testing.T) {
	var log []string
	s := &Saga{Operation: "delete", VideoID: "v1", Steps: []Step{
		recordStep("documents", &log, nil, false, nil),
		recordStep("vectors", &log, errors.New("qdrant down"), false, nil),
	}}

	err := s.Run(context.Background())
	assert.ErrorIs(t, err, domain.ErrConsistency)
}

func TestSaga_FirstStepFailureNeedsNoUnwind(t *testing.T) {
	var log []string
	s := &Saga{Steps: []Step{
		recordStep("a", &log, errors.New("nope"), false, nil),
		recordStep("b", &log, nil, true, nil),
	}}

	err := s.Run(context.Background())
	assert.Error(t, err)
	assert.NotErrorIs(t, err, domain.ErrConsistency)
	assert.Equal(t, []string{"do a"}, log)
}

func TestSaga_CompensationIgnoresCancel(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	var compErr error
	s := &Saga{Steps: []Step{
		{
			Name:   "a",
			Action: func(context.Context) error { return nil },
			Compensate: func(ctx context.Context) error {
				compErr = ctx.Err()
				return nil
			},
		},
		{
			Name: "b",
			Action: func(context.Context) error {
				cancel()
				return context.Canceled
			},
		},
	}}

	assert.ErrorIs(t, s.Run(ctx), context.Canceled)
	assert.NoError(t, compErr)
}

func TestKeyedMutex_SerializesSameKey(t *testing.T) {
	k := newKeyedMutex()
	var inside, maxInside atomic.Int32
	var wg sync.WaitGroup

	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			unlock := k.Lock("same")
			defer unlock()
			n := inside.Add(1)
			if n > maxInside.Load() {
				maxInside.Store(n)
			}
			time.Sleep(time.Millisecond)
			inside.Add(-1)
		}()
	}
	wg.Wait()

	assert.Equal(t, int32(1), maxInside.Load())
	assert.Equal(t, 0, k.size())
}

func TestKeyedMutex_IndependentKeys(t *testing.T) {
	k := newKeyedMutex()
	unlockA := k.Lock("a")
	defer unlockA()

	done := make(chan struct{})
	go func() {
		unlock := k.Lock("b")
		unlock()
		close(done)
	}()

	select {
	case <-done:
	case <-time.After(time.Second):
		t.Fatal("lock on b blocked behind a")
	}
}
