package connectivity

import (
	"context"
	"errors"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dep2p/go-netstatus/pkg/types"
)

// TestCollect_DeliveryFailureIsolated 消费者失败只解除自己的订阅
func TestCollect_DeliveryFailureIsolated(t *testing.T) {
	rec := &countingRecorder{}
	b, sim := newTestBridge(t, 8)
	b.rec = rec

	failing := subscribe(t, b)
	healthy := subscribe(t, b)

	sinkErr := errors.New("display detached")
	result := make(chan error, 1)
	go func() {
		result <- Collect(context.Background(), failing, func(types.Status) error {
			return sinkErr
		})
	}()

	sim.Available()

	err := <-result
	var derr *DeliveryError
	require.ErrorAs(t, err, &derr)
	assert.Equal(t, failing.ID(), derr.SubscriptionID)
	assert.ErrorIs(t, err, sinkErr)
	assert.ErrorIs(t, failing.Err(), sinkErr)

	assert.Equal(t, 0, sim.Unregistrations())
	assert.Equal(t, 1, b.Subscribers())
	assert.Equal(t, 1, rec.snapshot().delivery)

	sim.Lost()
	assert.Equal(t, []types.Status{available, lost}, recvN(t, healthy, 2))
}

func TestCollect_ContextCancel(t *testing.T) {
	b, sim := newTestBridge(t, 8)
	sub := subscribe(t, b)

	ctx, cancel := context.WithCancel(context.Background())
	got := make(chan types.Status, 4)
	result := make(chan error, 1)
	go func() {
		result <- Collect(ctx, sub, func(s types.Status) error {
			got <- s
			return nil
		})
	}()

	sim.Available()
	assert.Equal(t, available, <-got)

	cancel()
	assert.ErrorIs(t, <-result, context.Canceled)
	assert.Equal(t, 1, sim.Unregistrations())
}

// TestCollect_StreamClosed 流正常结束返回 nil
func TestCollect_StreamClosed(t *testing.T) {
	b, _ := newTestBridge(t, 8)
	sub := subscribe(t, b)

	result := make(chan error, 1)
	go func() {
		result <- Collect(context.Background(), sub, func(types.Status) error { return nil })
	}()

	require.NoError(t, sub.Close())
	assert.NoError(t, <-result)
}

// TestCollect_Fatal 通知源致命错误作为结果返回
func TestCollect_Fatal(t *testing.T) {
	b, sim := newTestBridge(t, 8)
	sub := subscribe(t, b)

	result := make(chan error, 1)
	go func() {
		result <- Collect(context.Background(), sub, func(types.Status) error { return nil })
	}()

	boom := errors.New("gone")
	sim.Fatal(boom)

	err := <-result
	var fatal *FatalNotifierError
	assert.ErrorAs(t, err, &fatal)
	require.Eventually(t, func() bool { return sim.Unregistrations() == 1 }, recvTimeout, time.Millisecond)
}

func TestLatest(t *testing.T) {
	b, sim := newTestBridge(t, 8)
	sub := subscribe(t, b)

	latest := NewLatest()
	assert.Equal(t, types.DefaultStatus, latest.Get())

	ctx, cancel := context.WithCancel(context.Background())
	result := make(chan error, 1)
	go func() {
		result <- latest.Run(ctx, sub)
	}()

	changed := latest.Changed()
	sim.Available()
	select {
	case <-changed:
	case <-time.After(recvTimeout):
		t.Fatal("latest not updated")
	}
	assert.Equal(t, types.StatusAvailable, latest.Get())

	changed = latest.Changed()
	sim.Lost()
	<-changed
	assert.Equal(t, types.StatusLost, latest.Get())
	assert.Equal(t, uint64(2), latest.Updates())

	cancel()
	assert.ErrorIs(t, <-result, context.Canceled)
}
