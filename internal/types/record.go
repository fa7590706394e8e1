package types

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Kind identifies one of the scraped entity types.
type Kind string

const (
	KindProducts     Kind = "products"
	KindTestimonials Kind = "testimonials"
	KindReviews      Kind = "reviews"
)

// Kinds lists every entity in scrape order.
var Kinds = []Kind{KindProducts, KindTestimonials, KindReviews}

var headers = map[Kind][]string{
	KindProducts:     {"name", "price", "description"},
	KindTestimonials: {"review", "date"},
	KindReviews:      {"date", "review"},
}

// ParseKind maps a name like "reviews" to its Kind.
func ParseKind(s string) (Kind, error) {
	k := Kind(strings.ToLower(strings.TrimSpace(s)))
	if _, ok := headers[k]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownKind, s)
	}
	return k, nil
}

// Header returns the column names written for this kind.
func (k Kind) Header() []string {
	h := headers[k]
	out := make([]string, len(h))
	copy(out, h)
	return out
}

// FileName returns the default dataset file name for this kind.
func (k Kind) FileName() string {
	return string(k) + ".csv"
}

// Record is one extracted unit of data prior to serialization.
type Record interface {
	Kind() Kind

	// Row returns the column values in Header order.
	Row() []string

	// PrimaryText is the field that must be non-empty for the record to be kept.
	PrimaryText() string

	// Texts exposes the mutable text fields for normalization.
	Texts() []*string
}

// ProductRecord is a single product listing.
type ProductRecord struct {
	Name        string `json:"name"`
	Price       string `json:"price"`
	Description string `json:"description,omitempty"`
}

func (r *ProductRecord) Kind() Kind          { return KindProducts }
func (r *ProductRecord) Row() []string       { return []string{r.Name, r.Price, r.Description} }
func (r *ProductRecord) PrimaryText() string { return r.Name }
func (r *ProductRecord) Texts() []*string    { return []*string{&r.Name, &r.Price, &r.Description} }

// TestimonialRecord is one customer testimonial.
type TestimonialRecord struct {
	Review string `json:"review"`
	Date   string `json:"date"`
}

func (r *TestimonialRecord) Kind() Kind          { return KindTestimonials }
func (r *TestimonialRecord) Row() []string       { return []string{r.Review, r.Date} }
func (r *TestimonialRecord) PrimaryText() string { return r.Review }
func (r *TestimonialRecord) Texts() []*string    { return []*string{&r.Review, &r.Date} }

// ReviewRecord is one product review.
type ReviewRecord struct {
	Date   string `json:"date"`
	Review string `json:"review"`
}

func (r *ReviewRecord) Kind() Kind          { return KindReviews }
func (r *ReviewRecord) Row() []string       { return []string{r.Date, r.Review} }
func (r *ReviewRecord) PrimaryText() string { return r.Review }
func (r *ReviewRecord) Texts() []*string    { return []*string{&r.Date, &r.Review} }

// RecordFromRow decodes a row keyed by column name. Missing columns decode
// as empty strings.
func RecordFromRow(kind Kind, row map[string]string) (Record, error) {
	switch kind {
	case KindProducts:
		return &ProductRecord{Name: row["name"], Price: row["price"], Description: row["description"]}, nil
	case KindTestimonials:
		return &TestimonialRecord{Review: row["review"], Date: row["date"]}, nil
	case KindReviews:
		return &ReviewRecord{Date: row["date"], Review: row["review"]}, nil
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownKind, kind)
	}
}

// ToMap returns the record keyed by column name, suitable for JSON export.
func ToMap(r Record) map[string]string {
	h := r.Kind().Header()
	row := r.Row()
	m := make(map[string]string, len(h))
	for i, col := range h {
		m[col] = row[i]
	}
	return m
}

// MarshalRecord serializes a record as a JSON object keyed by column.
func MarshalRecord(r Record) ([]byte, error) {
	return json.Marshal(ToMap(r))
}
