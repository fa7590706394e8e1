package automation

import (
	"context"
	"time"
)

// Probe samples one integer property of the page.
type Probe func(ctx context.Context) (int, error)

// WaitStable samples probe every interval until two consecutive samples are
// equal or timeout elapses, and returns the last sample. It fails only when
// probe fails or ctx is done.
func WaitStable(ctx context.Context, interval, timeout time.Duration, probe Probe) (int, error) {
	prev, err := probe(ctx)
	if err != nil {
		return 0, err
	}
	if interval <= 0 {
		return prev, nil
	}

	deadline := time.Now().Add(timeout)
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return prev, ctx.Err()
		case <-ticker.C:
		}

		cur, err := probe(ctx)
		if err != nil {
			return prev, err
		}
		if cur == prev || !time.Now().Before(deadline) {
			return cur, nil
		}
		prev = cur
	}
}
