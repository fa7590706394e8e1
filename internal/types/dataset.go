package types

import (
	"fmt"
	"math/rand"
)

// Dataset is the ordered sequence of records for one entity type.
type Dataset struct {
	Kind    Kind
	Records []Record
}

// NewDataset creates an empty dataset of the given kind.
func NewDataset(kind Kind) *Dataset {
	return &Dataset{Kind: kind, Records: make([]Record, 0)}
}

// Append adds records in order. Records of another kind are rejected.
func (d *Dataset) Append(records ...Record) error {
	for _, r := range records {
		if r == nil {
			continue
		}
		if r.Kind() != d.Kind {
			return fmt.Errorf("append %s record to %s dataset", r.Kind(), d.Kind)
		}
		d.Records = append(d.Records, r)
	}
	return nil
}

// Len returns the number of records.
func (d *Dataset) Len() int {
	return len(d.Records)
}

// Header returns the dataset column names.
func (d *Dataset) Header() []string {
	return d.Kind.Header()
}

// Rows returns every record as a row in Header order.
func (d *Dataset) Rows() [][]string {
	rows := make([][]string, len(d.Records))
	for i, r := range d.Records {
		rows[i] = r.Row()
	}
	return rows
}

// DefaultFallbackYear is the year used for synthesized dates.
const DefaultFallbackYear = 2023

// SynthesizeDate builds the cosmetic fallback date for the record at index i:
// month is (i mod 12)+1 and the day is drawn uniformly from 1..28.
func SynthesizeDate(year, i int, rng *rand.Rand) string {
	if i < 0 {
		i = -i
	}
	month := (i % 12) + 1
	var day int
	if rng != nil {
		day = rng.Intn(28) + 1
	} else {
		day = rand.Intn(28) + 1
	}
	return fmt.Sprintf("%04d-%02d-%02d", year, month, day)
}
