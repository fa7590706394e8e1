package sentiment

import (
	"context"
	"math"
	"strings"
	"unicode"
)

var positiveWords = toSet(
	"amazing", "awesome", "best", "brilliant", "delicious", "easy", "enjoy",
	"enjoyed", "excellent", "fantastic", "fast", "favorite", "fresh", "fun",
	"good", "great", "happy", "helpful", "impressed", "incredible", "love",
	"loved", "lovely", "nice", "perfect", "pleasant", "quality", "recommend",
	"refreshing", "reliable", "satisfied", "smooth", "solid", "superb", "tasty",
	"unique", "useful", "wonderful", "worth", "boost", "stylish", "comfortable",
)

var negativeWords = toSet(
	"awful", "bad", "bitter", "boring", "broke", "broken", "cheap", "complaint",
	"defective", "disappointed", "disappointing", "disgusting", "expensive",
	"fail", "failed", "hate", "hated", "horrible", "issue", "meh", "mediocre",
	"poor", "problem", "refund", "return", "returned", "slow", "terrible",
	"unpleasant", "useless", "waste", "weak", "worse", "worst", "wrong", "overpriced",
)

var negators = toSet("not", "no", "never", "isn't", "wasn't", "don't", "didn't", "doesn't", "can't", "won't", "hardly")

// Lexicon is a word-list classifier. It needs no network and is the
// default model.
type Lexicon struct {
	model string
}

// NewLexicon creates a lexicon classifier reporting model as its name.
func NewLexicon(model string) *Lexicon {
	if model == "" {
		model = "lexicon-v1"
	}
	return &Lexicon{model: model}
}

func (l *Lexicon) Model() string { return l.model }

// Classify implements Classifier.
func (l *Lexicon) Classify(ctx context.Context, texts []string) ([]Result, error) {
	out := make([]Result, len(texts))
	for i, t := range texts {
		if err := ctx.Err(); err != nil {
			return nil, err
		}
		out[i] = l.score(t)
	}
	return out, nil
}

// score counts polar words, flipping a word preceded by a negator. A tie
// is POSITIVE with confidence 0.5.
func (l *Lexicon) score(text string) Result {
	tokens := Tokenize(text)
	pos, neg := 0, 0
	for i, tok := range tokens {
		polarity := 0
		switch {
		case positiveWords[tok]:
			polarity = 1
		case negativeWords[tok]:
			polarity = -1
		default:
			continue
		}
		if i > 0 && negators[tokens[i-1]] {
			polarity = -polarity
		}
		if polarity > 0 {
			pos++
		} else {
			neg++
		}
	}

	if pos == neg {
		return Result{Label: Positive, Confidence: 0.5}
	}
	polarity := float64(pos - neg)
	conf := 1 / (1 + math.Exp(-math.Abs(polarity)))
	if polarity > 0 {
		return Result{Label: Positive, Confidence: clamp01(conf)}
	}
	return Result{Label: Negative, Confidence: clamp01(conf)}
}

// Tokenize lowercases text and splits it into words, keeping apostrophes.
func Tokenize(text string) []string {
	return strings.FieldsFunc(strings.ToLower(text), func(r rune) bool {
		return !unicode.IsLetter(r) && !unicode.IsDigit(r) && r != '\''
	})
}

func toSet(words ...string) map[string]bool {
	m := make(map[string]bool, len(words))
	for _, w := range words {
		m[w] = true
	}
	return m
}
