package parser

import (
	"fmt"
	"strings"

	"github.com/PuerkitoBio/goquery"
	"github.com/antchfx/htmlquery"
	"github.com/antchfx/xpath"
	"golang.org/x/net/html"
)

// xpathStrategy locates reviews with an XPath expression. The optional
// text expression is evaluated relative to each match.
type xpathStrategy struct {
	name string
	expr *xpath.Expr
	text *xpath.Expr
	date string
}

func newXPathStrategy(name, selector, text, date string) (*xpathStrategy, error) {
	expr, err := xpath.Compile(selector)
	if err != nil {
		return nil, fmt.Errorf("invalid xpath %q: %w", selector, err)
	}
	s := &xpathStrategy{name: name, expr: expr, date: date}
	if text != "" {
		s.text, err = xpath.Compile(text)
		if err != nil {
			return nil, fmt.Errorf("invalid xpath %q: %w", text, err)
		}
	}
	return s, nil
}

func (x *xpathStrategy) Name() string { return x.name }

func (x *xpathStrategy) Match(root *html.Node) ([]ReviewMatch, error) {
	var out []ReviewMatch
	for i, node := range htmlquery.QuerySelectorAll(root, x.expr) {
		textNode := node
		if x.text != nil {
			textNode = htmlquery.QuerySelector(node, x.text)
			if textNode == nil {
				continue
			}
		}
		text := strings.TrimSpace(htmlquery.InnerText(textNode))
		if text == "" {
			continue
		}
		out = append(out, ReviewMatch{
			Index: i,
			Text:  text,
			Date:  dateWithin(goquery.NewDocumentFromNode(node).Selection, x.date),
		})
	}
	return out, nil
}
