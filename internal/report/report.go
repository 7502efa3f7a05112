package report

import (
	"encoding/json"
	"fmt"
	"io"
	"text/template"
	"time"

	"github.com/FranksOps/scout/internal/discover"
	"github.com/FranksOps/scout/internal/lead"
)

// Summary contains aggregated metrics about a discovery run.
type Summary struct {
	RunID            string
	StartTime        time.Time
	EndTime          time.Time
	Duration         time.Duration
	QueriesRun       int
	SearchesAttempt  int
	SearchesFailed   int
	UniqueLeads      int
	RelevantLeads    int
	EarlyTerminated  bool
	LeadsByTag       map[string]int
	LeadsBySubreddit map[string]int
	TopLeads         []LeadLine
}

// LeadLine is one ranked lead row in the report output.
type LeadLine struct {
	Title       string
	Subreddit   string
	URL         string
	Opportunity int
	Relevance   int
}

const topLeadCount = 10

// GenerateSummary aggregates run diagnostics and the ranked leads into a
// report summary. Leads are expected in descending opportunity order.
func GenerateSummary(diag discover.Diagnostics, leads []lead.EnrichedLead, start, end time.Time) Summary {
	s := Summary{
		RunID:            diag.RunID,
		StartTime:        start,
		EndTime:          end,
		Duration:         end.Sub(start),
		QueriesRun:       diag.QueriesRun,
		SearchesAttempt:  diag.Attempted,
		SearchesFailed:   diag.Failed,
		UniqueLeads:      diag.UniqueLeads,
		RelevantLeads:    len(leads),
		EarlyTerminated:  diag.EarlyTerminated,
		LeadsByTag:       make(map[string]int),
		LeadsBySubreddit: make(map[string]int),
	}

	for _, l := range leads {
		s.LeadsByTag[string(l.Tag)]++
		s.LeadsBySubreddit[l.Subreddit]++

		if len(s.TopLeads) < topLeadCount {
			s.TopLeads = append(s.TopLeads, LeadLine{
				Title:       l.Title,
				Subreddit:   l.Subreddit,
				URL:         l.URL,
				Opportunity: l.OpportunityScore,
				Relevance:   l.RelevanceScore,
			})
		}
	}

	return s
}

// WriteJSON writes the summary to the provided writer in JSON format.
func WriteJSON(w io.Writer, summary Summary) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(summary); err != nil {
		return fmt.Errorf("encoding summary: %w", err)
	}
	return nil
}

// WriteText writes a human-readable text summary to the provided writer.
func WriteText(w io.Writer, summary Summary) error {
	const textTmpl = `Scout Discovery Summary
-----------------------
Run:           {{.RunID}}
Time:          {{.StartTime.Format "2006-01-02 15:04:05"}} - {{.EndTime.Format "2006-01-02 15:04:05"}}
Duration:      {{.Duration}}
Queries Run:   {{.QueriesRun}}
Searches:      {{.SearchesAttempt}} attempted, {{.SearchesFailed}} failed
Unique Leads:  {{.UniqueLeads}}
Relevant:      {{.RelevantLeads}}
{{- if .EarlyTerminated}}
Terminated early after reaching the lead target.
{{- end}}

Leads By Tag:
{{- range $tag, $count := .LeadsByTag}}
  {{$tag}}: {{$count}}
{{- else}}
  None
{{- end}}

Top Leads:
{{- range .TopLeads}}
  [{{.Opportunity}}] r/{{.Subreddit}} {{.Title}}
      {{.URL}}
{{- else}}
  None
{{- end}}
`

	t, err := template.New("textReport").Parse(textTmpl)
	if err != nil {
		return fmt.Errorf("parsing text template: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("rendering text report: %w", err)
	}

	return nil
}

// WriteHTML writes a basic HTML report to the provided writer.
func WriteHTML(w io.Writer, summary Summary) error {
	const htmlTmpl = `<!DOCTYPE html>
<html>
<head>
<title>Scout Discovery Report</title>
<style>
  body { font-family: sans-serif; margin: 40px; color: #333; }
  h1 { border-bottom: 2px solid #ccc; padding-bottom: 10px; }
  .stat-card { display: inline-block; padding: 20px; margin: 10px 10px 10px 0; background: #f4f4f4; border-radius: 5px; min-width: 150px; }
  .stat-val { font-size: 24px; font-weight: bold; }
  table { border-collapse: collapse; margin-top: 10px; }
  th, td { padding: 8px 12px; border: 1px solid #ccc; text-align: left; }
  th { background: #eaeaea; }
</style>
</head>
<body>
  <h1>Scout Discovery Report</h1>
  <p><strong>Run:</strong> {{.RunID}}</p>
  <p><strong>Time:</strong> {{.StartTime.Format "2006-01-02 15:04:05"}} to {{.EndTime.Format "2006-01-02 15:04:05"}} ({{.Duration}})</p>

  <div class="stat-card">
    <div>Queries Run</div>
    <div class="stat-val">{{.QueriesRun}}</div>
  </div>
  <div class="stat-card">
    <div>Unique Leads</div>
    <div class="stat-val">{{.UniqueLeads}}</div>
  </div>
  <div class="stat-card">
    <div>Relevant Leads</div>
    <div class="stat-val">{{.RelevantLeads}}</div>
  </div>
  <div class="stat-card">
    <div>Failed Searches</div>
    <div class="stat-val" style="color: {{if gt .SearchesFailed 0}}red{{else}}green{{end}};">{{.SearchesFailed}}</div>
  </div>

  <h3>Leads By Subreddit</h3>
  <table>
    <tr><th>Subreddit</th><th>Count</th></tr>
    {{- range $sub, $count := .LeadsBySubreddit}}
    <tr><td>r/{{$sub}}</td><td>{{$count}}</td></tr>
    {{- else}}
    <tr><td colspan="2">None</td></tr>
    {{- end}}
  </table>

  <h3>Top Leads</h3>
  <table>
    <tr><th>Score</th><th>Subreddit</th><th>Title</th></tr>
    {{- range .TopLeads}}
    <tr><td>{{.Opportunity}}</td><td>r/{{.Subreddit}}</td><td><a href="{{.URL}}">{{.Title}}</a></td></tr>
    {{- else}}
    <tr><td colspan="3">None</td></tr>
    {{- end}}
  </table>
</body>
</html>
`
	t, err := template.New("htmlReport").Parse(htmlTmpl)
	if err != nil {
		return fmt.Errorf("parsing html template: %w", err)
	}

	if err := t.Execute(w, summary); err != nil {
		return fmt.Errorf("rendering html report: %w", err)
	}

	return nil
}
