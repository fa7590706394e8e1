package engine

import (
	"context"
	"log/slog"
	"time"

	"golang.org/x/time/rate"

	"github.com/IshaanNene/ShopScope/internal/config"
	"github.com/IshaanNene/ShopScope/internal/types"
)

// PaginatedLoop scrapes products one page per round.
type PaginatedLoop struct {
	deps      *Deps
	site      config.SiteConfig
	cfg       config.ProductsConfig
	container string
	limiter   *rate.Limiter
	logger    *slog.Logger
}

// NewPaginatedLoop creates the products loop. Navigations are paced by
// cfg.Delay.
func NewPaginatedLoop(deps *Deps, site config.SiteConfig, cfg config.ProductsConfig, container string) *PaginatedLoop {
	limit := rate.Inf
	if cfg.Delay > 0 {
		limit = rate.Every(cfg.Delay)
	}
	return &PaginatedLoop{
		deps:      deps,
		site:      site,
		cfg:       cfg,
		container: container,
		limiter:   rate.NewLimiter(limit, 1),
		logger:    deps.Logger.With("component", "paginated_loop", "entity", types.KindProducts),
	}
}

func (l *PaginatedLoop) Kind() types.Kind { return types.KindProducts }

// Run visits pages 1..max_pages and stops at the first page that yields no
// records. A failed navigation or read ends the loop.
func (l *PaginatedLoop) Run(ctx context.Context) *LoopResult {
	res := &LoopResult{Kind: types.KindProducts, Stop: StopPageCap}

	for page := 1; page <= l.cfg.MaxPages; page++ {
		if err := l.limiter.Wait(ctx); err != nil {
			res.Stop, res.Err = StopCanceled, err
			return res
		}

		start := time.Now()
		before := len(res.Records)
		err := l.round(ctx, page, res)
		got := len(res.Records) - before
		r := RoundResult{Round: page, Measure: got, Duration: time.Since(start)}

		switch {
		case err != nil:
			r.Outcome, r.Err = Failed, err
			l.deps.observe(types.KindProducts, res, r)
			l.logger.Error("page failed, stopping", "page", page, "error", err)
			res.Stop, res.Err = StopFailed, err
			if ctx.Err() != nil {
				res.Stop = StopCanceled
			}
			return res
		case got == 0:
			r.Outcome = NotFound
			l.deps.observe(types.KindProducts, res, r)
			l.logger.Info("empty page, stopping", "page", page)
			res.Stop = StopEmptyPage
			return res
		default:
			r.Outcome = Found
			l.deps.observe(types.KindProducts, res, r)
		}

		if l.cfg.ExpectedPerPage > 0 && got < l.cfg.ExpectedPerPage {
			l.logger.Warn("short page", "page", page, "records", got, "expected", l.cfg.ExpectedPerPage)
		}
		l.logger.Debug("page scraped", "page", page, "records", got, "total", len(res.Records))
	}

	l.logger.Warn("page cap reached", "max_pages", l.cfg.MaxPages)
	return res
}

func (l *PaginatedLoop) round(ctx context.Context, page int, res *LoopResult) error {
	if err := l.deps.navigate(ctx, l.site.PageURL(page)); err != nil {
		return err
	}
	if _, err := l.deps.Auto.StableCount(ctx, l.container); err != nil {
		return err
	}
	return l.deps.collect(ctx, types.KindProducts, res)
}
