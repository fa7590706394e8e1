package pipeline

import (
	"errors"
	"log/slog"
	"os"
	"testing"

	"github.com/IshaanNene/ShopScope/internal/types"
)

var testLogger = slog.New(slog.NewTextHandler(os.Stderr, &slog.HandlerOptions{Level: slog.LevelError}))

func TestPipelineDefault(t *testing.T) {
	p := Default(testLogger)

	rec := &types.ProductRecord{Name: "  Box   of\n Chocolate ", Price: " $24.99 ", Description: " Tasty &\n sweet "}
	result, err := p.Process(rec)
	if err != nil {
		t.Fatalf("pipeline error: %v", err)
	}
	got := result.(*types.ProductRecord)
	if got.Name != "Box of Chocolate" {
		t.Errorf("name = %q", got.Name)
	}
	if got.Price != "$24.99" {
		t.Errorf("price = %q", got.Price)
	}
	if got.Description != "Tasty & sweet" {
		t.Errorf("description = %q", got.Description)
	}
}

func TestWhitespaceKeepsLiteralMarkupCharacters(t *testing.T) {
	m := NewWhitespaceMiddleware()
	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "angle brackets", in: "a <b> c", want: "a <b> c"},
		{name: "entity text", in: "Fish &amp; Chips", want: "Fish &amp; Chips"},
		{name: "comparison", in: "  size  < 5cm\n and > 2cm ", want: "size < 5cm and > 2cm"},
		{name: "blank", in: "", want: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			result, err := m.Process(&types.ReviewRecord{Review: tt.in, Date: "2023-01-01"})
			if err != nil {
				t.Fatal(err)
			}
			if got := result.PrimaryText(); got != tt.want {
				t.Errorf("text = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestRequiredTextMiddleware(t *testing.T) {
	m := &RequiredTextMiddleware{}

	result, err := m.Process(&types.ReviewRecord{Review: "great", Date: "2023-01-01"})
	if err != nil || result == nil {
		t.Error("record with text should pass")
	}

	result, _ = m.Process(&types.ReviewRecord{Review: "   ", Date: "2023-01-01"})
	if result != nil {
		t.Error("record with blank text should be dropped (nil)")
	}
}

func TestProcessAllKeepsOrderAndCountsDrops(t *testing.T) {
	p := Default(testLogger)
	in := []types.Record{
		&types.TestimonialRecord{Review: "first", Date: "2023-01-02"},
		&types.TestimonialRecord{Review: "", Date: "2023-02-02"},
		&types.TestimonialRecord{Review: " third\t", Date: "2023-03-02"},
	}
	out, dropped, err := p.ProcessAll(in)
	if err != nil {
		t.Fatal(err)
	}
	if dropped != 1 {
		t.Errorf("dropped = %d, want 1", dropped)
	}
	if len(out) != 2 {
		t.Fatalf("len = %d, want 2", len(out))
	}
	if out[0].PrimaryText() != "first" || out[1].PrimaryText() != "third" {
		t.Errorf("unexpected order/texts: %q, %q", out[0].PrimaryText(), out[1].PrimaryText())
	}
}

type failing struct{}

func (failing) Name() string { return "failing" }
func (failing) Process(types.Record) (types.Record, error) {
	return nil, errors.New("nope")
}

func TestPipelineErrorNamesStage(t *testing.T) {
	p := New(testLogger)
	p.Use(failing{})
	_, err := p.Process(&types.ReviewRecord{Review: "x"})
	var pe *types.PipelineError
	if !errors.As(err, &pe) || pe.Stage != "failing" {
		t.Fatalf("expected PipelineError from stage failing, got %v", err)
	}
}
