package engine

import (
	"context"
	"log/slog"
	"time"

	"github.com/IshaanNene/ShopScope/internal/automation"
	"github.com/IshaanNene/ShopScope/internal/observability"
	"github.com/IshaanNene/ShopScope/internal/parser"
	"github.com/IshaanNene/ShopScope/internal/pipeline"
	"github.com/IshaanNene/ShopScope/internal/types"
)

// Outcome classifies a single loop round.
type Outcome int

const (
	// Found means the round performed its action.
	Found Outcome = iota
	// NotFound means there was nothing to act on this round.
	NotFound
	// Failed means the round's action raised an error.
	Failed
)

func (o Outcome) String() string {
	switch o {
	case Found:
		return "found"
	case NotFound:
		return "not_found"
	default:
		return "failed"
	}
}

// RoundResult describes one round of a scrape loop.
type RoundResult struct {
	Round    int
	Outcome  Outcome
	Err      error
	Measure  int // height, element count or records, depending on the loop
	Duration time.Duration
}

// maxConsecutiveFailures ends a loop whose session keeps failing.
const maxConsecutiveFailures = 3

// StopReason records why a loop terminated.
type StopReason string

const (
	StopEmptyPage    StopReason = "empty_page"
	StopPageCap      StopReason = "page_cap"
	StopStableHeight StopReason = "stable_height"
	StopStableCount  StopReason = "stable_count"
	StopClickCap     StopReason = "click_cap"
	StopRoundCap     StopReason = "round_cap"
	StopFailed       StopReason = "failed"
	StopCanceled     StopReason = "canceled"
)

// LoopResult is everything one loop produced.
type LoopResult struct {
	Kind    types.Kind
	Records []types.Record
	Rounds  []RoundResult
	Dropped int
	Stop    StopReason
	Err     error // terminal failure, if any
}

// Loop is one scrape loop controller.
type Loop interface {
	Kind() types.Kind
	Run(ctx context.Context) *LoopResult
}

// Deps are the collaborators every loop shares. The automation wraps the
// one browser session of the run.
type Deps struct {
	Auto      *automation.BrowserAutomation
	Extractor *parser.Extractor
	Pipeline  *pipeline.Pipeline
	Metrics   *observability.Metrics
	Logger    *slog.Logger
}

// collect extracts kind from the current page and runs the pipeline.
func (d *Deps) collect(ctx context.Context, kind types.Kind, res *LoopResult) error {
	markup, err := d.Auto.Session().Markup(ctx)
	if err != nil {
		return err
	}
	recs, err := d.Extractor.Extract(markup, kind)
	if err != nil {
		return err
	}
	kept, dropped, err := d.Pipeline.ProcessAll(recs)
	if err != nil {
		return err
	}
	res.Records = append(res.Records, kept...)
	res.Dropped += dropped
	d.Metrics.AddRecords(string(kind), len(kept))
	d.Metrics.AddDropped(string(kind), dropped)
	return nil
}

func (d *Deps) navigate(ctx context.Context, url string) error {
	if err := d.Auto.Session().Navigate(ctx, url); err != nil {
		d.Metrics.IncNavigation("error")
		return err
	}
	d.Metrics.IncNavigation("ok")
	return nil
}

func (d *Deps) observe(kind types.Kind, res *LoopResult, r RoundResult) {
	res.Rounds = append(res.Rounds, r)
	d.Metrics.ObserveRound(string(kind), r.Outcome.String(), r.Duration)
}
