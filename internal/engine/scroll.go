package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/IshaanNene/ShopScope/internal/config"
	"github.com/IshaanNene/ShopScope/internal/types"
)

// ScrollLoop scrapes testimonials from an infinite-scroll page.
type ScrollLoop struct {
	deps   *Deps
	url    string
	cfg    config.ScrollConfig
	logger *slog.Logger
}

// NewScrollLoop creates the testimonials loop.
func NewScrollLoop(deps *Deps, url string, cfg config.ScrollConfig) *ScrollLoop {
	return &ScrollLoop{
		deps:   deps,
		url:    url,
		cfg:    cfg,
		logger: deps.Logger.With("component", "scroll_loop", "entity", types.KindTestimonials),
	}
}

func (l *ScrollLoop) Kind() types.Kind { return types.KindTestimonials }

// Run scrolls until the page height stops growing or max_rounds is hit,
// then extracts once.
func (l *ScrollLoop) Run(ctx context.Context) *LoopResult {
	res := &LoopResult{Kind: types.KindTestimonials}

	if err := l.deps.navigate(ctx, l.url); err != nil {
		l.logger.Error("navigation failed", "url", l.url, "error", err)
		res.Stop, res.Err = StopFailed, err
		return res
	}

	prev, failures := -1, 0
	for round := 1; ; round++ {
		if l.cfg.MaxRounds > 0 && round > l.cfg.MaxRounds {
			l.logger.Warn("scroll round cap reached", "max_rounds", l.cfg.MaxRounds)
			res.Stop = StopRoundCap
			break
		}
		if err := ctx.Err(); err != nil {
			res.Stop, res.Err = StopCanceled, err
			return res
		}

		start := time.Now()
		height, err := l.round(ctx)
		r := RoundResult{Round: round, Measure: height, Duration: time.Since(start)}
		if err != nil {
			r.Outcome, r.Err = Failed, err
			l.deps.observe(types.KindTestimonials, res, r)
			l.logger.Warn("scroll round failed", "round", round, "error", err)
			if ctx.Err() != nil {
				res.Stop, res.Err = StopCanceled, ctx.Err()
				return res
			}
			if failures++; failures >= maxConsecutiveFailures {
				res.Stop, res.Err = StopFailed, err
				break
			}
			continue
		}
		failures = 0
		r.Outcome = Found
		l.deps.observe(types.KindTestimonials, res, r)

		if height == prev {
			l.logger.Info("height stable", "round", round, "height", height)
			res.Stop = StopStableHeight
			break
		}
		prev = height
	}

	if err := l.deps.collect(ctx, types.KindTestimonials, res); err != nil {
		res.Stop, res.Err = StopFailed, err
	}
	return res
}

func (l *ScrollLoop) round(ctx context.Context) (int, error) {
	if err := l.deps.Auto.ScrollBy(ctx, l.cfg.ScrollStep); err != nil {
		return 0, err
	}
	return l.deps.Auto.StableHeight(ctx)
}
