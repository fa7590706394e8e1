package engine

import (
	"context"
	"errors"
	"log/slog"
	"time"

	"github.com/IshaanNene/ShopScope/internal/automation"
	"github.com/IshaanNene/ShopScope/internal/config"
	"github.com/IshaanNene/ShopScope/internal/types"
)

// LoadMoreLoop scrapes reviews from a page with a "load more" button.
type LoadMoreLoop struct {
	deps   *Deps
	url    string
	cfg    config.LoadMoreConfig
	logger *slog.Logger
}

// NewLoadMoreLoop creates the reviews loop.
func NewLoadMoreLoop(deps *Deps, url string, cfg config.LoadMoreConfig) *LoadMoreLoop {
	return &LoadMoreLoop{
		deps:   deps,
		url:    url,
		cfg:    cfg,
		logger: deps.Logger.With("component", "load_more_loop", "entity", types.KindReviews),
	}
}

func (l *LoadMoreLoop) Kind() types.Kind { return types.KindReviews }

// Run clicks the button until max_clicks is reached, the review count stops
// growing, or max_rounds is hit, then extracts once. A missing button only
// skips the click for that round.
func (l *LoadMoreLoop) Run(ctx context.Context) *LoopResult {
	res := &LoopResult{Kind: types.KindReviews}

	if err := l.deps.navigate(ctx, l.url); err != nil {
		l.logger.Error("navigation failed", "url", l.url, "error", err)
		res.Stop, res.Err = StopFailed, err
		return res
	}

	prev, clicks, failures := -1, 0, 0
	for round := 1; ; round++ {
		if clicks >= l.cfg.MaxClicks {
			l.logger.Info("click cap reached", "clicks", clicks)
			res.Stop = StopClickCap
			break
		}
		if l.cfg.MaxRounds > 0 && round > l.cfg.MaxRounds {
			l.logger.Warn("load-more round cap reached", "max_rounds", l.cfg.MaxRounds)
			res.Stop = StopRoundCap
			break
		}
		if err := ctx.Err(); err != nil {
			res.Stop, res.Err = StopCanceled, err
			return res
		}

		start := time.Now()
		out := l.round(ctx)
		roundErr := errors.Join(out.err, out.countErr)
		l.deps.observe(types.KindReviews, res, RoundResult{
			Round:    round,
			Outcome:  out.outcome,
			Err:      roundErr,
			Measure:  out.count,
			Duration: time.Since(start),
		})

		switch out.outcome {
		case Found:
			clicks++
			failures = 0
		case NotFound:
			l.logger.Debug("load-more button absent", "round", round)
			failures = 0
		case Failed:
			l.logger.Warn("load-more round failed", "round", round, "error", roundErr)
			if ctx.Err() != nil {
				res.Stop, res.Err = StopCanceled, ctx.Err()
				return res
			}
			failures++
		}
		if out.countErr != nil && out.outcome != Failed {
			l.logger.Warn("review count unavailable", "round", round, "error", out.countErr)
		}
		if failures >= maxConsecutiveFailures {
			res.Stop, res.Err = StopFailed, roundErr
			break
		}

		if out.counted {
			if out.count == prev {
				l.logger.Info("review count stable", "round", round, "count", out.count, "clicks", clicks)
				res.Stop = StopStableCount
				break
			}
			prev = out.count
		}
	}

	if err := l.deps.collect(ctx, types.KindReviews, res); err != nil {
		res.Stop, res.Err = StopFailed, err
	}
	return res
}

type loadMoreRound struct {
	outcome  Outcome
	count    int
	counted  bool
	err      error
	countErr error
}

// round performs one scroll, click and re-count. The outcome reflects the
// click. A failed re-count never undoes a click; it only fails a round in
// which nothing was clicked.
func (l *LoadMoreLoop) round(ctx context.Context) loadMoreRound {
	if err := l.deps.Auto.ScrollToBottom(ctx); err != nil {
		return loadMoreRound{outcome: Failed, err: err}
	}

	click, err := l.deps.Auto.ClickIfVisible(ctx, l.cfg.ButtonSelector, l.cfg.FindTimeout)
	l.deps.Metrics.IncLookup(click.String())

	out := loadMoreRound{outcome: NotFound, err: err}
	switch click {
	case automation.Clicked:
		out.outcome = Found
	case automation.ClickFailed:
		out.outcome = Failed
	}

	count, cerr := l.deps.Auto.StableCount(ctx, l.cfg.CountSelector)
	if cerr != nil {
		out.countErr = cerr
		if out.outcome == NotFound {
			out.outcome = Failed
		}
		return out
	}
	out.count, out.counted = count, true
	return out
}
