package parser

import (
	"strings"

	"github.com/PuerkitoBio/goquery"
	"golang.org/x/net/html"
	"golang.org/x/net/html/atom"

	"github.com/IshaanNene/ShopScope/internal/types"
)

func (e *Extractor) extractProducts(root *html.Node) []types.Record {
	sel := e.selectors.Product
	doc := goquery.NewDocumentFromNode(root)

	var records []types.Record
	doc.Find(sel.Container).Each(func(i int, s *goquery.Selection) {
		name := firstText(s, sel.Title)
		price := firstText(s, sel.Price)
		if name == "" || price == "" {
			e.logger.Debug("product container skipped", "index", i, "reason", types.ErrExtractionGap, "has_name", name != "", "has_price", price != "")
			return
		}
		records = append(records, &types.ProductRecord{
			Name:        name,
			Price:       price,
			Description: describe(textLines(s), name, price),
		})
	})
	return records
}

func (e *Extractor) extractTestimonials(root *html.Node) []types.Record {
	sel := e.selectors.Testimonial
	doc := goquery.NewDocumentFromNode(root)

	var records []types.Record
	doc.Find(sel.Container).Each(func(i int, s *goquery.Selection) {
		text := firstText(s, sel.Text)
		if text == "" {
			e.logger.Debug("testimonial container skipped", "index", i, "reason", types.ErrExtractionGap)
			return
		}
		records = append(records, &types.TestimonialRecord{
			Review: text,
			Date:   e.resolveDate("", i),
		})
	})
	return records
}

// describe returns the first non-empty line of the container text that is
// neither the name nor the price.
func describe(text, name, price string) string {
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == name || line == price {
			continue
		}
		return line
	}
	return ""
}

// phrasing elements continue the current line instead of starting one.
var phrasing = map[atom.Atom]bool{
	atom.B: true, atom.Strong: true, atom.I: true, atom.Em: true, atom.U: true,
	atom.Mark: true, atom.Small: true, atom.Sub: true, atom.Sup: true, atom.Code: true,
}

// textLines renders the container as one line per element, so adjacent
// elements never run together even without whitespace between them.
func textLines(s *goquery.Selection) string {
	var (
		lines []string
		cur   strings.Builder
	)
	flush := func() {
		if t := strings.TrimSpace(cur.String()); t != "" {
			lines = append(lines, t)
		}
		cur.Reset()
	}
	var walk func(n *html.Node)
	walk = func(n *html.Node) {
		switch {
		case n.Type == html.TextNode:
			cur.WriteString(n.Data)
			return
		case n.Type == html.ElementNode && !phrasing[n.DataAtom]:
			flush()
			defer flush()
		}
		for c := n.FirstChild; c != nil; c = c.NextSibling {
			walk(c)
		}
	}
	for _, n := range s.Nodes {
		walk(n)
	}
	flush()
	return strings.Join(lines, "\n")
}

func firstText(s *goquery.Selection, selector string) string {
	if selector == "" {
		return strings.TrimSpace(s.Text())
	}
	return strings.TrimSpace(s.Find(selector).First().Text())
}

// cssStrategy locates reviews with a CSS selector.
type cssStrategy struct {
	name     string
	selector string
	text     string
	date     string
}

func (c *cssStrategy) Name() string { return c.name }

func (c *cssStrategy) Match(root *html.Node) ([]ReviewMatch, error) {
	doc := goquery.NewDocumentFromNode(root)

	var out []ReviewMatch
	doc.Find(c.selector).Each(func(i int, s *goquery.Selection) {
		text := firstText(s, c.text)
		if text == "" {
			return
		}
		out = append(out, ReviewMatch{Index: i, Text: text, Date: dateWithin(s, c.date)})
	})
	return out, nil
}

func dateWithin(s *goquery.Selection, selector string) string {
	if selector == "" {
		return ""
	}
	return strings.TrimSpace(s.Find(selector).First().Text())
}
