package pipeline

import (
	"strings"

	"github.com/IshaanNene/ShopScope/internal/types"
)

// WhitespaceMiddleware trims and collapses runs of whitespace in every text
// field. Field text is already decoded by the parser, so angle brackets and
// ampersands are kept as written.
type WhitespaceMiddleware struct{}

func NewWhitespaceMiddleware() *WhitespaceMiddleware {
	return &WhitespaceMiddleware{}
}

func (m *WhitespaceMiddleware) Name() string { return "whitespace" }

func (m *WhitespaceMiddleware) Process(rec types.Record) (types.Record, error) {
	for _, field := range rec.Texts() {
		if *field == "" {
			continue
		}
		*field = strings.Join(strings.Fields(*field), " ")
	}
	return rec, nil
}

// RequiredTextMiddleware drops records whose primary text is empty.
type RequiredTextMiddleware struct{}

func (m *RequiredTextMiddleware) Name() string { return "required_text" }

func (m *RequiredTextMiddleware) Process(rec types.Record) (types.Record, error) {
	if strings.TrimSpace(rec.PrimaryText()) == "" {
		return nil, nil
	}
	return rec, nil
}
