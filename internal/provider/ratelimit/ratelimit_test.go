package ratelimit_test

import (
	"context"
	"testing"
	"time"

	"btcquotes/internal/provider"
	"btcquotes/internal/provider/providertest"
	"btcquotes/internal/provider/ratelimit"
	"github.com/stretchr/testify/require"
	"go.uber.org/mock/gomock"
)

func TestTokenBucket_BurstThenCancel(t *testing.T) {
	t.Parallel()

	// Arrange: one token per minute, burst of two
	ctrl := gomock.NewController(t)
	inner := providertest.NewMockFetcher(ctrl)
	inner.EXPECT().Fetch(gomock.Any(), 100, "BTC").Return("0.002", nil).Times(2)
	inner.EXPECT().ID().Return(provider.Banxa).AnyTimes()

	f := &ratelimit.TokenBucketFetcher{F: inner, Limiter: ratelimit.PerMinute(1, 2)}

	// Act: the burst passes straight through
	for range 2 {
		got, err := f.Fetch(t.Context(), 100, "BTC")
		require.NoError(t, err)
		require.Equal(t, "0.002", got)
	}

	// Act: the third call waits and is cancelled before a token arrives
	ctx, cancel := context.WithTimeout(t.Context(), 20*time.Millisecond)
	defer cancel()
	_, err := f.Fetch(ctx, 100, "BTC")

	// Assert
	require.ErrorIs(t, err, context.DeadlineExceeded)
	require.Equal(t, provider.Banxa, f.ID())
}

func TestTokenBucket_CancelIsCancellation(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	inner := providertest.NewMockFetcher(ctrl)
	inner.EXPECT().Fetch(gomock.Any(), gomock.Any(), gomock.Any()).Return("1", nil).Times(1)
	inner.EXPECT().ID().Return(provider.Moonpay).AnyTimes()

	f := &ratelimit.TokenBucketFetcher{F: inner, Limiter: ratelimit.PerMinute(1, 1)}
	_, err := f.Fetch(t.Context(), 100, "BTC")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	go func() {
		time.Sleep(10 * time.Millisecond)
		cancel()
	}()
	_, err = f.Fetch(ctx, 100, "BTC")
	require.True(t, provider.IsCanceled(err))
}

func TestMinInterval_SpacesCalls(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	inner := providertest.NewMockFetcher(ctrl)
	inner.EXPECT().Fetch(gomock.Any(), 100, "BTC").Return("1", nil).Times(2)

	f := &ratelimit.MinInterval{F: inner, Interval: 50 * time.Millisecond}

	start := time.Now()
	for range 2 {
		_, err := f.Fetch(t.Context(), 100, "BTC")
		require.NoError(t, err)
	}
	require.GreaterOrEqual(t, time.Since(start), 40*time.Millisecond)
}

func TestMinInterval_CanceledWhileWaiting(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	inner := providertest.NewMockFetcher(ctrl)
	inner.EXPECT().Fetch(gomock.Any(), 100, "BTC").Return("1", nil).Times(1)
	inner.EXPECT().ID().Return(provider.Sardine).AnyTimes()

	f := &ratelimit.MinInterval{F: inner, Interval: time.Minute}
	_, err := f.Fetch(t.Context(), 100, "BTC")
	require.NoError(t, err)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()
	_, err = f.Fetch(ctx, 100, "BTC")
	require.True(t, provider.IsCanceled(err))
}

func TestTokenBucket_Refills(t *testing.T) {
	t.Parallel()

	// Arrange: 6000 rpm is one token every 10ms
	ctrl := gomock.NewController(t)
	inner := providertest.NewMockFetcher(ctrl)
	inner.EXPECT().Fetch(gomock.Any(), 100, "BTC").Return("1", nil).Times(3)

	f := &ratelimit.TokenBucketFetcher{F: inner, Limiter: ratelimit.PerMinute(6000, 1)}

	// Act
	start := time.Now()
	for range 3 {
		_, err := f.Fetch(t.Context(), 100, "BTC")
		require.NoError(t, err)
	}

	// Assert: the second and third calls waited for a token each
	require.GreaterOrEqual(t, time.Since(start), 15*time.Millisecond)
	require.Less(t, time.Since(start), time.Second)
}

func TestMinInterval_ZeroIsUnlimited(t *testing.T) {
	t.Parallel()

	ctrl := gomock.NewController(t)
	inner := providertest.NewMockFetcher(ctrl)
	inner.EXPECT().Fetch(gomock.Any(), 100, "BTC").Return("1", nil).Times(5)

	f := &ratelimit.MinInterval{F: inner}
	for range 5 {
		_, err := f.Fetch(t.Context(), 100, "BTC")
		require.NoError(t, err)
	}
}

func TestPerMinute_BurstFloor(t *testing.T) {
	t.Parallel()

	require.Equal(t, 1, ratelimit.PerMinute(60, 0).Burst())
	require.Equal(t, 4, ratelimit.PerMinute(60, 4).Burst())
}
