package debounce_test

import (
	"testing"
	"time"

	"btcquotes/internal/debounce"
	"github.com/stretchr/testify/require"
)

// drain collects emissions until nothing arrives for idle.
func drain(d *debounce.Debouncer[string], idle time.Duration) []string {
	var got []string
	for {
		select {
		case v, ok := <-d.C():
			if !ok {
				return got
			}
			got = append(got, v)
		case <-time.After(idle):
			return got
		}
	}
}

func TestDebouncer_RapidInputEmitsOnce(t *testing.T) {
	t.Parallel()

	// Arrange
	d := debounce.New[string](200 * time.Millisecond)
	defer d.Stop()

	// Act: three keystrokes well inside the quiet period
	start := time.Now()
	for _, v := range []string{"1", "10", "100"} {
		d.Push(v)
		time.Sleep(20 * time.Millisecond)
	}

	// Assert: only the last value, and not before the quiet period elapsed
	v := <-d.C()
	require.Equal(t, "100", v)
	require.GreaterOrEqual(t, time.Since(start), 200*time.Millisecond)
	require.Empty(t, drain(d, 300*time.Millisecond))
}

func TestDebouncer_SeparatedInputsEmitEach(t *testing.T) {
	t.Parallel()

	d := debounce.New[string](30 * time.Millisecond)
	defer d.Stop()

	d.Push("100")
	require.Equal(t, "100", <-d.C())
	d.Push("200")
	require.Equal(t, "200", <-d.C())
}

func TestDebouncer_StopCancelsPending(t *testing.T) {
	t.Parallel()

	d := debounce.New[string](30 * time.Millisecond)
	d.Push("100")
	d.Stop()
	d.Stop()

	// Closed without emitting; pushes after Stop are ignored.
	d.Push("200")
	_, ok := <-d.C()
	require.False(t, ok)
}

func TestDebouncer_LaggingConsumerSeesLatest(t *testing.T) {
	t.Parallel()

	d := debounce.New[string](10 * time.Millisecond)
	defer d.Stop()

	d.Push("100")
	time.Sleep(50 * time.Millisecond)
	d.Push("200")
	time.Sleep(50 * time.Millisecond)

	require.Equal(t, "200", <-d.C())
}

func TestDebouncer_DefaultDelay(t *testing.T) {
	t.Parallel()

	d := debounce.New[int](0)
	defer d.Stop()
	require.Equal(t, debounce.DefaultDelay, d.Delay())
}
