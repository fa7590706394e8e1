package dashboard

import (
	"context"
	"math/rand"
	"sort"
	"strconv"
	"time"

	"github.com/IshaanNene/ShopScope/internal/parser"
	"github.com/IshaanNene/ShopScope/internal/sentiment"
	"github.com/IshaanNene/ShopScope/internal/storage"
	"github.com/IshaanNene/ShopScope/internal/types"
)

const (
	colDate   = "date"
	colReview = "review"
	colMonth  = "month"
)

// PrepareReviews fills in a synthesized date when the table has no date
// column and derives the month column from it. Unparseable dates get
// month 0, which no filter matches.
func PrepareReviews(t *storage.Table, year int, rng *rand.Rand) {
	if !t.Has(colDate) {
		t.Header = append([]string{colDate}, t.Header...)
		for i, row := range t.Rows {
			row[colDate] = types.SynthesizeDate(year, i, rng)
		}
	}
	if !t.Has(colMonth) {
		t.Header = append(t.Header, colMonth)
	}
	for _, row := range t.Rows {
		row[colMonth] = strconv.Itoa(monthOf(row[colDate]))
	}
}

func monthOf(date string) int {
	norm, ok := parser.NormalizeDate(date)
	if !ok {
		return 0
	}
	t, err := time.Parse(parser.DateLayout, norm)
	if err != nil {
		return 0
	}
	return int(t.Month())
}

// FilterByMonth returns the rows whose month column equals month, in order.
func FilterByMonth(rows []map[string]string, month int) []map[string]string {
	want := strconv.Itoa(month)
	out := make([]map[string]string, 0)
	for _, row := range rows {
		if row[colMonth] == want {
			out = append(out, row)
		}
	}
	return out
}

// ReviewRow is one filtered review with its classification.
type ReviewRow struct {
	Date       string          `json:"date"`
	Review     string          `json:"review"`
	Label      sentiment.Label `json:"label,omitempty"`
	Confidence float64         `json:"confidence,omitempty"`
}

// LabelSummary aggregates the classifications of one label.
type LabelSummary struct {
	Label         sentiment.Label `json:"label"`
	Count         int             `json:"count"`
	AvgConfidence float64         `json:"avg_confidence"`
}

// WordCount is one entry of the word-frequency table.
type WordCount struct {
	Word  string `json:"word"`
	Count int    `json:"count"`
}

// ReviewsView is everything the reviews section renders for one month.
type ReviewsView struct {
	Month        int            `json:"month"`
	MonthName    string         `json:"month_name"`
	Year         int            `json:"year"`
	Total        int            `json:"total"`
	Rows         []ReviewRow    `json:"rows"`
	Summary      []LabelSummary `json:"summary,omitempty"`
	Words        []WordCount    `json:"words,omitempty"`
	Model        string         `json:"model,omitempty"`
	SentimentErr string         `json:"sentiment_error,omitempty"`
}

// BuildReviewsView filters rows to month and classifies the result. A
// classifier failure is reported in SentimentErr and leaves the table intact.
func BuildReviewsView(ctx context.Context, rows []map[string]string, month, year, topWords int, c sentiment.Classifier) *ReviewsView {
	filtered := FilterByMonth(rows, month)
	view := &ReviewsView{
		Month:     month,
		MonthName: time.Month(month).String()[:3],
		Year:      year,
		Total:     len(filtered),
		Rows:      make([]ReviewRow, len(filtered)),
	}
	texts := make([]string, len(filtered))
	for i, row := range filtered {
		view.Rows[i] = ReviewRow{Date: row[colDate], Review: row[colReview]}
		texts[i] = row[colReview]
	}
	view.Words = WordFrequencies(texts, topWords)

	if c == nil || len(texts) == 0 {
		return view
	}
	view.Model = c.Model()
	results, err := c.Classify(ctx, texts)
	if err != nil {
		view.SentimentErr = err.Error()
		return view
	}
	for i, r := range results {
		view.Rows[i].Label = r.Label
		view.Rows[i].Confidence = r.Confidence
	}
	view.Summary = Summarize(results)
	return view
}

// Summarize counts results per label and averages their confidence.
// Labels with no results are omitted.
func Summarize(results []sentiment.Result) []LabelSummary {
	counts := make(map[sentiment.Label]int)
	sums := make(map[sentiment.Label]float64)
	for _, r := range results {
		counts[r.Label]++
		sums[r.Label] += r.Confidence
	}
	out := make([]LabelSummary, 0, len(counts))
	for _, l := range sentiment.Labels {
		if n := counts[l]; n > 0 {
			out = append(out, LabelSummary{Label: l, Count: n, AvgConfidence: sums[l] / float64(n)})
		}
	}
	return out
}

var stopwords = map[string]bool{
	"a": true, "about": true, "after": true, "all": true, "also": true, "am": true, "an": true,
	"and": true, "any": true, "are": true, "as": true, "at": true, "be": true, "been": true,
	"but": true, "by": true, "can": true, "could": true, "did": true, "do": true, "does": true,
	"for": true, "from": true, "had": true, "has": true, "have": true, "he": true, "her": true,
	"his": true, "how": true, "i": true, "i'm": true, "if": true, "in": true, "into": true,
	"is": true, "it": true, "it's": true, "its": true, "just": true, "me": true, "more": true,
	"my": true, "no": true, "not": true, "of": true, "on": true, "one": true, "or": true,
	"our": true, "out": true, "really": true, "she": true, "so": true, "some": true,
	"than": true, "that": true, "the": true, "their": true, "them": true, "then": true,
	"there": true, "these": true, "they": true, "this": true, "to": true, "too": true,
	"up": true, "very": true, "was": true, "we": true, "were": true, "what": true,
	"when": true, "which": true, "who": true, "will": true, "with": true, "would": true,
	"you": true, "your": true,
}

// WordFrequencies counts lowercased words across texts, ignoring stopwords
// and single letters, and returns the top n by count then alphabetically.
func WordFrequencies(texts []string, n int) []WordCount {
	counts := make(map[string]int)
	for _, t := range texts {
		for _, w := range sentiment.Tokenize(t) {
			if len(w) < 2 || stopwords[w] {
				continue
			}
			counts[w]++
		}
	}
	out := make([]WordCount, 0, len(counts))
	for w, c := range counts {
		out = append(out, WordCount{Word: w, Count: c})
	}
	sort.Slice(out, func(i, j int) bool {
		if out[i].Count != out[j].Count {
			return out[i].Count > out[j].Count
		}
		return out[i].Word < out[j].Word
	})
	if n > 0 && len(out) > n {
		out = out[:n]
	}
	return out
}
