package dashboard

import (
	"html/template"
	"strconv"
	"strings"
	"time"

	"github.com/IshaanNene/ShopScope/internal/storage"
	"github.com/IshaanNene/ShopScope/internal/types"
)

type monthOption struct {
	Num  int
	Name string
}

func monthOptions() []monthOption {
	out := make([]monthOption, 12)
	for i := range out {
		out[i] = monthOption{Num: i + 1, Name: time.Month(i + 1).String()}
	}
	return out
}

type pageData struct {
	Sections []types.Kind
	Active   types.Kind
	Month    int
	Months   []monthOption
	Error    string
	Table    *storage.Table
	Reviews  *ReviewsView
}

var funcs = template.FuncMap{
	"pct":      percent,
	"conf":     func(f float64) string { return strconv.FormatFloat(f, 'f', 3, 64) },
	"barWidth": barWidth,
	"fontSize": fontSize,
	"title":    sectionTitle,
}

func percent(f float64) string {
	return strconv.FormatFloat(f*100, 'f', 1, 64) + "%"
}

func barWidth(count, total int) int {
	if total == 0 {
		return 0
	}
	return count * 100 / total
}

// fontSize scales a word between 12px and 48px by its share of the top count.
func fontSize(count int, words []WordCount) int {
	if len(words) == 0 || words[0].Count == 0 {
		return 12
	}
	return 12 + 36*count/words[0].Count
}

func sectionTitle(k types.Kind) string {
	s := string(k)
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

var pageTemplate = template.Must(template.New("page").Funcs(funcs).Parse(pageHTML))

const pageHTML = `<!DOCTYPE html>
<html lang="en">
<head>
    <meta charset="UTF-8">
    <meta name="viewport" content="width=device-width, initial-scale=1.0">
    <title>ShopScope Dashboard</title>
    <style>
        * { margin: 0; padding: 0; box-sizing: border-box; }
        body { font-family: 'Inter', -apple-system, system-ui, sans-serif; background: #0f172a; color: #e2e8f0; min-height: 100vh; display: flex; }
        .sidebar { width: 240px; background: #1e293b; border-right: 1px solid #475569; padding: 1.5rem; }
        .sidebar h1 { font-size: 1.25rem; margin-bottom: 1.5rem; background: linear-gradient(135deg, #38bdf8, #818cf8); background-clip: text; -webkit-background-clip: text; -webkit-text-fill-color: transparent; }
        .sidebar a { display: block; padding: 0.5rem 0.75rem; border-radius: 8px; color: #94a3b8; text-decoration: none; margin-bottom: 0.25rem; }
        .sidebar a.active { background: #334155; color: #f1f5f9; }
        .main { flex: 1; padding: 2rem; overflow-x: auto; }
        .main h2 { margin-bottom: 1rem; }
        .card { background: #1e293b; border: 1px solid #334155; border-radius: 12px; padding: 1.5rem; margin-bottom: 1.5rem; }
        .card .label { font-size: 0.75rem; text-transform: uppercase; letter-spacing: 0.05em; color: #94a3b8; margin-bottom: 0.5rem; }
        .error { border-color: #f87171; color: #fca5a5; }
        table { width: 100%; border-collapse: collapse; font-size: 0.875rem; }
        th, td { text-align: left; padding: 0.5rem; border-bottom: 1px solid #334155; vertical-align: top; }
        th { color: #94a3b8; text-transform: uppercase; font-size: 0.75rem; }
        .POSITIVE { color: #4ade80; }
        .NEGATIVE { color: #f87171; }
        .bar { height: 1.25rem; border-radius: 4px; margin: 0.25rem 0 0.75rem; }
        .bar.POSITIVE { background: #4ade80; }
        .bar.NEGATIVE { background: #f87171; }
        .cloud span { display: inline-block; margin: 0.25rem 0.5rem; color: #38bdf8; }
        select, button { background: #0f172a; color: #e2e8f0; border: 1px solid #475569; border-radius: 6px; padding: 0.375rem 0.75rem; }
    </style>
</head>
<body>
    <nav class="sidebar">
        <h1>ShopScope</h1>
        {{range .Sections}}<a href="/?section={{.}}" class="{{if eq . $.Active}}active{{end}}">{{title .}}</a>{{end}}
    </nav>
    <main class="main">
        <h2>{{title .Active}}</h2>
        {{if .Error}}
        <div class="card error">{{.Error}}</div>
        {{else if .Reviews}}
        {{with .Reviews}}
        <form class="card" method="get" action="/">
            <input type="hidden" name="section" value="reviews">
            <div class="label">Month</div>
            <select name="month" onchange="this.form.submit()">
                {{range $.Months}}<option value="{{.Num}}"{{if eq .Num $.Month}} selected{{end}}>{{.Name}}</option>{{end}}
            </select>
        </form>
        <div class="card"><div class="label">Total Reviews in {{.MonthName}} {{.Year}}</div><h2>{{.Total}}</h2></div>
        {{if .SentimentErr}}
        <div class="card error">Sentiment analysis failed: {{.SentimentErr}}</div>
        {{else if .Summary}}
        <div class="card">
            <div class="label">Sentiment{{if .Model}} ({{.Model}}){{end}}</div>
            {{$total := .Total}}
            {{range .Summary}}
            <div>{{.Label}}: {{.Count}} reviews, average confidence {{pct .AvgConfidence}}</div>
            <div class="bar {{.Label}}" style="width: {{barWidth .Count $total}}%"></div>
            {{end}}
        </div>
        {{end}}
        {{if .Words}}
        <div class="card cloud">
            <div class="label">Word Cloud</div>
            {{$words := .Words}}
            {{range .Words}}<span style="font-size: {{fontSize .Count $words}}px" title="{{.Count}}">{{.Word}}</span>{{end}}
        </div>
        {{end}}
        <div class="card">
            <table>
                <thead><tr><th>Date</th><th>Review</th><th>Sentiment</th><th>Confidence</th></tr></thead>
                <tbody>
                {{range .Rows}}<tr><td>{{.Date}}</td><td>{{.Review}}</td><td class="{{.Label}}">{{.Label}}</td><td>{{if .Label}}{{conf .Confidence}}{{end}}</td></tr>{{end}}
                </tbody>
            </table>
        </div>
        {{end}}
        {{else if .Table}}
        <div class="card">
            <div class="label">{{len .Table.Rows}} rows</div>
            <table>
                <thead><tr>{{range .Table.Header}}<th>{{.}}</th>{{end}}</tr></thead>
                <tbody>
                {{range $row := .Table.Rows}}<tr>{{range $.Table.Header}}<td>{{index $row .}}</td>{{end}}</tr>{{end}}
                </tbody>
            </table>
        </div>
        {{end}}
    </main>
</body>
</html>`
