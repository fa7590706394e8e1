package shopscope

import (
	"context"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/IshaanNene/ShopScope/internal/fetcher/fetchertest"
	"github.com/IshaanNene/ShopScope/internal/storage"
)

func productsPage(n int) string {
	var b strings.Builder
	b.WriteString("<html><body>")
	for i := 0; i < n; i++ {
		fmt.Fprintf(&b, `<div class="product"><h3>Item %d</h3><div class="price">%d.00</div></div>`, i, i+1)
	}
	b.WriteString("</body></html>")
	return b.String()
}

func TestRunWithInjectedSession(t *testing.T) {
	dir := t.TempDir()
	s := NewScraper(
		WithBaseURL("http://shop.test"),
		WithEntities("products"),
		WithOutput(dir, "csv", "json"),
		WithPoll(time.Millisecond, 10*time.Millisecond),
	)
	s.cfg.Scrape.Products.Delay = 0

	session := &fetchertest.Session{Pages: map[string]string{
		"http://shop.test/products?page=1": productsPage(3),
		"http://shop.test/products?page=2": productsPage(0),
	}}
	s.session = session

	res, err := s.Run(context.Background())
	if err != nil {
		t.Fatal(err)
	}
	if len(res.Entities) != 1 || res.Entities[0].Records != 3 || res.Entities[0].Stop != "empty_page" {
		t.Fatalf("result = %+v", res.Entities)
	}
	if session.Closed() {
		t.Error("an injected session belongs to the caller")
	}

	tbl, err := storage.ReadTable(filepath.Join(dir, "products.csv"))
	if err != nil {
		t.Fatal(err)
	}
	if len(tbl.Rows) != 3 || tbl.Rows[2]["name"] != "Item 2" {
		t.Errorf("products.csv rows = %v", tbl.Rows)
	}
	if _, err := os.Stat(filepath.Join(dir, "products.json")); err != nil {
		t.Errorf("json export missing: %v", err)
	}
}

func TestRunRejectsInvalidConfig(t *testing.T) {
	if _, err := NewScraper(WithMaxPages(0)).Run(context.Background()); err == nil {
		t.Fatal("expected config error")
	}
}

func TestClassifyReviews(t *testing.T) {
	got, err := ClassifyReviews(context.Background(), []string{"excellent, would recommend", "awful and broken"})
	if err != nil {
		t.Fatal(err)
	}
	if got[0].Label != "POSITIVE" || got[1].Label != "NEGATIVE" {
		t.Errorf("labels = %+v", got)
	}
}
