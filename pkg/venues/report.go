package venues

import (
	"bytes"
	"context"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	"github.com/yuin/goldmark"
	"github.com/yuin/goldmark/extension"

	"github.com/michaelcolletti/venue-research-agent/pkg/fileutil"
)

var priorityMarkers = []string{"🔴", "🟠", "🟡", "🟢", "⚪"}

// Report is a rendered weekly report.
type Report struct {
	Date              string
	WeekStart         string
	WeekEnd           string
	NewVenues         int
	TotalVenues       int
	NewOpportunities  int
	OpenOpportunities int
	Markdown          string
}

// FileName returns the markdown file name for the report.
func (r *Report) FileName() string {
	return "weekly_report_" + r.Date + ".md"
}

// ReportWeek returns the previous Monday..Sunday relative to now.
func ReportWeek(now time.Time) (start, end time.Time) {
	y, m, d := now.Date()
	today := time.Date(y, m, d, 0, 0, 0, 0, now.Location())
	sinceMonday := (int(today.Weekday()) + 6) % 7
	start = today.AddDate(0, 0, -(sinceMonday + 7))
	return start, start.AddDate(0, 0, 6)
}

// WeeklyReport builds the report for the week before now.
func WeeklyReport(ctx context.Context, s *Store, acts []Act, now time.Time) (*Report, error) {
	start, end := ReportWeek(now)
	r := &Report{
		Date:      now.Format(DateLayout),
		WeekStart: start.Format(DateLayout),
		WeekEnd:   end.Format(DateLayout),
	}

	newVenues, err := s.ListVenues(ctx, ListFilter{
		AnyStatus:     true,
		FirstSeenFrom: r.WeekStart,
		FirstSeenTo:   r.WeekEnd,
		NewestFirst:   true,
	})
	if err != nil {
		return nil, err
	}
	opps, err := s.OpportunitiesBetween(ctx, r.WeekStart, r.WeekEnd)
	if err != nil {
		return nil, err
	}
	stats, err := s.Stats(ctx)
	if err != nil {
		return nil, err
	}
	coverage, err := s.CountByRegion(ctx)
	if err != nil {
		return nil, err
	}

	r.NewVenues = len(newVenues)
	r.NewOpportunities = len(opps)
	r.TotalVenues = stats.ActiveVenues
	r.OpenOpportunities = stats.OpenOpportunities

	var b strings.Builder
	line := func(format string, args ...interface{}) {
		fmt.Fprintf(&b, format+"\n", args...)
	}

	line("# Venue Scout Weekly Report")
	line("")
	line("**Report Date:** %s", r.Date)
	line("**Week Covered:** %s to %s", r.WeekStart, r.WeekEnd)
	line("")
	line("---")
	line("")
	line("## Summary")
	line("")
	line("| Metric | This Week | Total |")
	line("|--------|-----------|-------|")
	line("| New Venues Discovered | %d | %d |", r.NewVenues, r.TotalVenues)
	line("| New Opportunities | %d | %d open |", r.NewOpportunities, r.OpenOpportunities)
	line("")

	if len(newVenues) > 0 {
		line("## New Venues Discovered")
		line("")
		for _, v := range newVenues {
			line("### %s", v.Name)
			line("- **Location:** %s, %s", v.City, v.Region)
			line("- **Type:** %s", orDefault(v.VenueType, "Unknown"))
			if v.Website != "" {
				line("- **Website:** %s", v.Website)
			}
			line("- **Discovered:** %s", v.FirstSeen)
			line("")
		}
	}

	if len(opps) > 0 {
		line("## Booking Opportunities")
		line("")
		for _, o := range opps {
			line("### %s %s", priorityMarker(o.Priority), titleCase(o.Type))
			if o.VenueName != "" {
				line("**Venue:** %s", o.VenueName)
			}
			line("**Details:** %s", o.Description)
			if len(o.SuitableActs) > 0 {
				line("**Suitable Acts:** %s", strings.Join(o.SuitableActs, ", "))
			}
			if o.SourceURL != "" {
				line("**Source:** %s", o.SourceURL)
			}
			line("")
		}
	}

	line("## Database Coverage by Region")
	line("")
	line("| Region | Active Venues |")
	line("|--------|---------------|")
	for _, rc := range coverage {
		line("| %s | %d |", orDefault(rc.Region, "Unknown"), rc.Count)
	}

	line("")
	line("## Configured Acts")
	line("")
	for _, a := range acts {
		line("- **%s**: %s", a.DisplayName(), strings.Join(a.Genres, ", "))
	}

	r.Markdown = strings.TrimRight(b.String(), "\n")
	return r, nil
}

// WriteReport writes the markdown (and, with html set, an HTML rendering
// next to it) into dir and records the report. It returns the paths
// written.
func WriteReport(ctx context.Context, s *Store, r *Report, dir string, html bool) ([]string, error) {
	mdPath := filepath.Join(dir, r.FileName())
	if err := fileutil.WriteFileAtomic(mdPath, []byte(r.Markdown), 0o644); err != nil {
		return nil, fmt.Errorf("writing report: %w", err)
	}
	paths := []string{mdPath}

	if html {
		rendered, err := RenderHTML(r.Markdown)
		if err != nil {
			return paths, err
		}
		htmlPath := strings.TrimSuffix(mdPath, ".md") + ".html"
		if err := fileutil.WriteFileAtomic(htmlPath, rendered, 0o644); err != nil {
			return paths, fmt.Errorf("writing html report: %w", err)
		}
		paths = append(paths, htmlPath)
	}

	err := s.RecordReport(ctx, ReportRecord{
		ReportDate:         r.Date,
		WeekStart:          r.WeekStart,
		WeekEnd:            r.WeekEnd,
		Path:               mdPath,
		Summary:            fmt.Sprintf("%d new venues, %d new opportunities", r.NewVenues, r.NewOpportunities),
		NewVenuesCount:     r.NewVenues,
		OpportunitiesCount: r.NewOpportunities,
	})
	return paths, err
}

// RenderHTML converts report markdown to a standalone HTML page.
func RenderHTML(markdown string) ([]byte, error) {
	md := goldmark.New(goldmark.WithExtensions(extension.Table))

	var body bytes.Buffer
	if err := md.Convert([]byte(markdown), &body); err != nil {
		return nil, fmt.Errorf("rendering report: %w", err)
	}

	var page bytes.Buffer
	page.WriteString("<!DOCTYPE html>\n<html>\n<head>\n<meta charset=\"utf-8\">\n<title>Venue Scout Weekly Report</title>\n</head>\n<body>\n")
	page.Write(body.Bytes())
	page.WriteString("</body>\n</html>\n")
	return page.Bytes(), nil
}

func priorityMarker(priority int) string {
	i := priority - 1
	if i < 0 {
		i = 0
	}
	if i >= len(priorityMarkers) {
		i = len(priorityMarkers) - 1
	}
	return priorityMarkers[i]
}

func titleCase(s string) string {
	words := strings.Fields(strings.ReplaceAll(s, "_", " "))
	for i, w := range words {
		words[i] = strings.ToUpper(w[:1]) + strings.ToLower(w[1:])
	}
	return strings.Join(words, " ")
}

func orDefault(v, def string) string {
	if v == "" {
		return def
	}
	return v
}
