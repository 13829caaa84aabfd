// Package export renders stored jobs and run statistics for the terminal.
package export

import (
	"encoding/csv"
	"fmt"
	"io"
	"sort"
	"strconv"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/jedib0t/go-pretty/v6/text"

	"go-jobradar/internal/models"
	"go-jobradar/internal/store"
)

const maxTitleWidth = 45

// status derives the operator-facing pipeline state from the applied flag.
func status(job models.Job) string {
	if job.Applied {
		return "seen"
	}
	return "new"
}

// RenderTable writes a formatted table of jobs to w.
func RenderTable(w io.Writer, jobs []models.Job) {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)

	t.AppendHeader(table.Row{"ID", "Status", "Applied", "Title", "Company", "Category", "Location", "Source", "Published", "Keywords"})
	t.SetColumnConfigs([]table.ColumnConfig{
		{Name: "Title", WidthMax: maxTitleWidth},
		{Name: "Keywords", WidthMax: 30},
		{Name: "Applied", Align: text.AlignCenter},
	})

	for _, job := range jobs {
		applied := ""
		if job.Applied {
			applied = "✅"
		}
		t.AppendRow(table.Row{
			job.ID,
			status(job),
			applied,
			job.Title,
			job.Company,
			job.RoleCategory,
			job.Location,
			job.Source,
			formatDate(job),
			job.DetectedKeywords,
		})
	}

	t.Render()
}

// RenderCSV writes the same columns as RenderTable plus the URL, suitable
// for spreadsheets.
func RenderCSV(w io.Writer, jobs []models.Job) error {
	cw := csv.NewWriter(w)
	if err := cw.Write([]string{"id", "status", "applied", "title", "company", "category", "location", "source", "published", "keywords", "url"}); err != nil {
		return err
	}
	for _, job := range jobs {
		record := []string{
			strconv.FormatInt(job.ID, 10),
			status(job),
			strconv.FormatBool(job.Applied),
			job.Title,
			job.Company,
			job.RoleCategory,
			job.Location,
			job.Source,
			formatDate(job),
			job.DetectedKeywords,
			job.URL,
		}
		if err := cw.Write(record); err != nil {
			return err
		}
	}
	cw.Flush()
	return cw.Error()
}

// RenderStats writes the aggregate counters as a set of small tables.
func RenderStats(w io.Writer, stats store.Stats) {
	fmt.Fprintf(w, "Total jobs: %d\n\n", stats.Total)

	renderMap(w, "Category", stats.ByCategory)
	renderMap(w, "Source", stats.BySource)

	if len(stats.ByDay) > 0 {
		t := newCountTable(w, "Day")
		for _, d := range stats.ByDay {
			t.AppendRow(table.Row{d.Day, d.Count})
		}
		t.Render()
		fmt.Fprintln(w)
	}

	if len(stats.TopLocations) > 0 {
		t := newCountTable(w, "Location (top 10)")
		for _, l := range stats.TopLocations {
			t.AppendRow(table.Row{l.Location, l.Count})
		}
		t.Render()
		fmt.Fprintln(w)
	}
}

// renderMap prints a count map ordered by count descending, label ascending
// for ties, so output is stable.
func renderMap(w io.Writer, label string, counts map[string]int) {
	if len(counts) == 0 {
		return
	}
	keys := make([]string, 0, len(counts))
	for k := range counts {
		keys = append(keys, k)
	}
	sort.Slice(keys, func(i, j int) bool {
		if counts[keys[i]] != counts[keys[j]] {
			return counts[keys[i]] > counts[keys[j]]
		}
		return keys[i] < keys[j]
	})

	t := newCountTable(w, label)
	for _, k := range keys {
		t.AppendRow(table.Row{k, counts[k]})
	}
	t.Render()
	fmt.Fprintln(w)
}

func newCountTable(w io.Writer, label string) table.Writer {
	t := table.NewWriter()
	t.SetOutputMirror(w)
	t.SetStyle(table.StyleLight)
	t.AppendHeader(table.Row{label, "Count"})
	return t
}

func formatDate(job models.Job) string {
	if !job.PublishedDate.Valid {
		return ""
	}
	return job.PublishedDate.Time.Format("2006-01-02")
}
