package venues

import (
	"context"
	"encoding/csv"
	"encoding/json"
	"os"
	"path/filepath"
	"reflect"
	"strings"
	"testing"
	"time"

	"github.com/xuri/excelize/v2"
	"gopkg.in/yaml.v3"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
)

func day(s string) time.Time {
	t, err := time.ParseInLocation(DateLayout, s, time.Local)
	if err != nil {
		panic(err)
	}
	return t.Add(9 * time.Hour)
}

func newTestStore(t *testing.T) *Store {
	t.Helper()
	s, err := Open(filepath.Join(t.TempDir(), "data", "venues.db"), nil)
	if err != nil {
		t.Fatalf("Open: %v", err)
	}
	t.Cleanup(func() { _ = s.Close() })
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("Migrate: %v", err)
	}
	return s
}

func TestVenueID(t *testing.T) {
	id := VenueID("The Anchor", "Kingston")
	if id != "27f25d1d251d" {
		t.Fatalf("VenueID = %s", id)
	}
	if VenueID("  the anchor ", "KINGSTON ") != id {
		t.Fatal("id should ignore case and surrounding whitespace")
	}
	if VenueID("The Anchor", "Beacon") == id {
		t.Fatal("different cities must not collide")
	}
}

func TestMigrateIsIdempotent(t *testing.T) {
	s := newTestStore(t)
	if err := s.Migrate(context.Background()); err != nil {
		t.Fatalf("second Migrate: %v", err)
	}
}

func TestSaveVenueInsertsThenBumps(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Now = func() time.Time { return day("2026-10-01") }
	id, created, err := s.SaveVenue(ctx, Venue{
		Name:   "The Anchor",
		City:   "Kingston",
		Region: "Hudson Valley",
		Genres: []string{"folk", "americana"},
		Source: SourceManual,
	})
	if err != nil || !created {
		t.Fatalf("SaveVenue = %s, %v, %v", id, created, err)
	}

	s.Now = func() time.Time { return day("2026-10-08") }
	again, created, err := s.SaveVenue(ctx, Venue{Name: "the anchor", City: "kingston"})
	if err != nil || created || again != id {
		t.Fatalf("second SaveVenue = %s, %v, %v", again, created, err)
	}

	v, err := s.GetVenue(ctx, id)
	if err != nil {
		t.Fatal(err)
	}
	if v.FirstSeen != "2026-10-01" || v.LastSeen != "2026-10-08" {
		t.Errorf("seen = %s..%s", v.FirstSeen, v.LastSeen)
	}
	if v.Name != "The Anchor" || v.State != "NY" || v.Status != StatusActive {
		t.Errorf("venue = %+v", v)
	}
	if !reflect.DeepEqual(v.Genres, []string{"folk", "americana"}) {
		t.Errorf("genres = %v", v.Genres)
	}

	if _, err := s.GetVenue(ctx, "missing"); err != ErrVenueNotFound {
		t.Errorf("expected ErrVenueNotFound, got %v", err)
	}
	if _, _, err := s.SaveVenue(ctx, Venue{Name: "  "}); err == nil {
		t.Error("empty name should be rejected")
	}
}

func TestListVenuesOrderAndFilter(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	for _, v := range []Venue{
		{Name: "Colony", City: "Woodstock", Region: "Hudson Valley"},
		{Name: "Bearsville Theater", City: "Woodstock", Region: "Hudson Valley"},
		{Name: "The Linda", City: "Albany", Region: "Capital Region"},
		{Name: "Closed Bar", City: "Albany", Region: "Capital Region", Status: StatusClosed},
	} {
		if _, _, err := s.SaveVenue(ctx, v); err != nil {
			t.Fatal(err)
		}
	}

	all, err := s.ListVenues(ctx, ListFilter{})
	if err != nil {
		t.Fatal(err)
	}
	var names []string
	for _, v := range all {
		names = append(names, v.Name)
	}
	want := []string{"The Linda", "Bearsville Theater", "Colony"}
	if !reflect.DeepEqual(names, want) {
		t.Fatalf("names = %v, want %v", names, want)
	}

	hv, err := s.ListVenues(ctx, ListFilter{Region: "hudson valley"})
	if err != nil || len(hv) != 2 {
		t.Fatalf("region filter = %d, %v", len(hv), err)
	}
	everything, _ := s.ListVenues(ctx, ListFilter{AnyStatus: true})
	if len(everything) != 4 {
		t.Fatalf("AnyStatus = %d venues", len(everything))
	}

	coverage, err := s.CountByRegion(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if len(coverage) != 2 || coverage[0] != (RegionCount{Region: "Hudson Valley", Count: 2}) {
		t.Fatalf("coverage = %+v", coverage)
	}
}

func TestExcludeAndUnexclude(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, _, err := s.SaveVenue(ctx, Venue{Name: "Rude Tavern", City: "Beacon"})
	if err != nil {
		t.Fatal(err)
	}

	added, err := s.Exclude(ctx, "Rude Tavern", "Beacon", ReasonBadExperience, "never paid")
	if err != nil || !added {
		t.Fatalf("Exclude = %v, %v", added, err)
	}
	added, err = s.Exclude(ctx, "Rude Tavern", "Beacon", ReasonBadExperience, "")
	if err != nil || added {
		t.Fatalf("duplicate Exclude = %v, %v", added, err)
	}
	if _, err := s.Exclude(ctx, "X", "Y", "bored", ""); err == nil {
		t.Fatal("invalid reason should be rejected")
	}

	v, _ := s.GetVenue(ctx, id)
	if v.Status != StatusExcluded {
		t.Fatalf("status = %s", v.Status)
	}
	if ok, _ := s.IsExcluded(ctx, "rude tavern", "BEACON"); !ok {
		t.Fatal("IsExcluded should ignore case")
	}

	list, err := s.ListExcluded(ctx)
	if err != nil || len(list) != 1 || list[0].Reason != ReasonBadExperience || list[0].Notes != "never paid" {
		t.Fatalf("ListExcluded = %+v, %v", list, err)
	}

	found, err := s.Unexclude(ctx, "Rude Tavern", "Beacon")
	if err != nil || !found {
		t.Fatalf("Unexclude = %v, %v", found, err)
	}
	v, _ = s.GetVenue(ctx, id)
	if v.Status != StatusActive {
		t.Fatalf("status after unexclude = %s", v.Status)
	}
	if found, _ := s.Unexclude(ctx, "Rude Tavern", "Beacon"); found {
		t.Fatal("second Unexclude should report not found")
	}
}

func TestUnexcludeIgnoresCase(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	id, _, err := s.SaveVenue(ctx, Venue{Name: "The Anchor", City: "Kingston"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.Exclude(ctx, "The Anchor", "Kingston", ReasonClosed, ""); err != nil {
		t.Fatal(err)
	}

	found, err := s.Unexclude(ctx, "the anchor", "KINGSTON")
	if err != nil || !found {
		t.Fatalf("Unexclude = %v, %v", found, err)
	}
	if ok, _ := s.IsExcluded(ctx, "The Anchor", "Kingston"); ok {
		t.Fatal("venue still excluded after Unexclude")
	}
	v, _ := s.GetVenue(ctx, id)
	if v.Status != StatusActive {
		t.Fatalf("status after unexclude = %s", v.Status)
	}
}

func TestSeedExclusions(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()
	entries := []config.ExcludedVenueConfig{
		{Name: ExamplePlaceholder, City: "Anywhere", Reason: ReasonWrongFit},
		{Name: "Loud Club", City: "Troy", Reason: ReasonWrongFit, DateExcluded: "2026-01-02"},
		{Name: "", City: "Nowhere"},
	}

	n, err := s.SeedExclusions(ctx, entries)
	if err != nil || n != 1 {
		t.Fatalf("SeedExclusions = %d, %v", n, err)
	}
	n, err = s.SeedExclusions(ctx, entries)
	if err != nil || n != 0 {
		t.Fatalf("reseed = %d, %v", n, err)
	}
	if ok, _ := s.IsExcluded(ctx, ExamplePlaceholder, "Anywhere"); ok {
		t.Fatal("placeholder must not be seeded")
	}
}

func TestMatchActs(t *testing.T) {
	acts := []Act{
		{Key: "duo", ActConfig: config.ActConfig{Name: "Acoustic Duo", Genres: []string{"Folk"}, VenueTypes: []string{"wine bar", "brewery"}}},
		{Key: "band", ActConfig: config.ActConfig{Genres: []string{"rock"}, VenueTypes: []string{"club"}}},
	}

	if got := MatchActs(acts, "Craft Brewery & Taproom", nil); !reflect.DeepEqual(got, []string{"Acoustic Duo"}) {
		t.Errorf("venue type match = %v", got)
	}
	if got := MatchActs(acts, "", []string{"ROCK"}); !reflect.DeepEqual(got, []string{"band"}) {
		t.Errorf("genre match = %v", got)
	}
	if got := MatchActs(acts, "concert hall", []string{"jazz"}); len(got) != 0 {
		t.Errorf("expected no match, got %v", got)
	}
}

func TestActsFromConfigOrder(t *testing.T) {
	cfg := config.DefaultConfig()
	cfg.Acts = map[string]config.ActConfig{"b": {Name: "B"}, "a": {Name: "A"}, "c": {}}
	cfg.ActOrder = []string{"c", "a", "b"}

	var got []string
	for _, a := range ActsFromConfig(cfg) {
		got = append(got, a.DisplayName())
	}
	if !reflect.DeepEqual(got, []string{"c", "A", "B"}) {
		t.Fatalf("acts = %v", got)
	}
}

func TestReportWeek(t *testing.T) {
	for _, now := range []string{"2026-10-12", "2026-10-14", "2026-10-18"} {
		start, end := ReportWeek(day(now))
		if start.Format(DateLayout) != "2026-10-05" || end.Format(DateLayout) != "2026-10-11" {
			t.Errorf("%s: week = %s..%s", now, start.Format(DateLayout), end.Format(DateLayout))
		}
	}
}

func TestWeeklyReport(t *testing.T) {
	s := newTestStore(t)
	ctx := context.Background()

	s.Now = func() time.Time { return day("2026-10-07") }
	id, _, err := s.SaveVenue(ctx, Venue{Name: "Colony", City: "Woodstock", Region: "Hudson Valley", Website: "https://colonywoodstock.com"})
	if err != nil {
		t.Fatal(err)
	}
	if _, err := s.AddOpportunity(ctx, Opportunity{
		VenueID:      id,
		Type:         OpportunitySeekingArtists,
		Description:  "Colony is seeking artists for Sunday sessions",
		Priority:     2,
		SuitableActs: []string{"Acoustic Duo"},
	}); err != nil {
		t.Fatal(err)
	}

	s.Now = func() time.Time { return day("2026-09-01") }
	if _, _, err := s.SaveVenue(ctx, Venue{Name: "Old Haunt", City: "Kingston", Region: "Hudson Valley"}); err != nil {
		t.Fatal(err)
	}

	acts := []Act{{Key: "duo", ActConfig: config.ActConfig{Name: "Acoustic Duo", Genres: []string{"folk", "americana"}}}}
	r, err := WeeklyReport(ctx, s, acts, day("2026-10-14"))
	if err != nil {
		t.Fatalf("WeeklyReport: %v", err)
	}
	if r.NewVenues != 1 || r.TotalVenues != 2 || r.NewOpportunities != 1 || r.OpenOpportunities != 1 {
		t.Fatalf("report counts = %+v", r)
	}
	for _, want := range []string{
		"**Week Covered:** 2026-10-05 to 2026-10-11",
		"| New Venues Discovered | 1 | 2 |",
		"### Colony",
		"- **Website:** https://colonywoodstock.com",
		"### 🟠 Seeking Artists",
		"**Venue:** Colony",
		"**Suitable Acts:** Acoustic Duo",
		"| Hudson Valley | 2 |",
		"- **Acoustic Duo**: folk, americana",
	} {
		if !strings.Contains(r.Markdown, want) {
			t.Errorf("report missing %q", want)
		}
	}
	if strings.Contains(r.Markdown, "### Old Haunt") {
		t.Error("venues outside the week must not be listed")
	}

	dir := t.TempDir()
	paths, err := WriteReport(ctx, s, r, dir, true)
	if err != nil {
		t.Fatalf("WriteReport: %v", err)
	}
	if len(paths) != 2 || filepath.Base(paths[0]) != "weekly_report_2026-10-14.md" {
		t.Fatalf("paths = %v", paths)
	}
	html, err := os.ReadFile(paths[1])
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(html), "<table>") || !strings.Contains(string(html), "<h1>Venue Scout Weekly Report</h1>") {
		t.Errorf("html = %s", html)
	}

	st, err := s.Stats(ctx)
	if err != nil {
		t.Fatal(err)
	}
	if st.Reports != 1 || st.Venues != 2 || st.Opportunities != 1 {
		t.Errorf("stats = %+v", st)
	}
}

func seedExport(t *testing.T) *Store {
	t.Helper()
	s := newTestStore(t)
	ctx := context.Background()
	for _, v := range []Venue{
		{Name: "Colony", City: "Woodstock", Region: "Hudson Valley", Capacity: 200, Genres: []string{"rock"}},
		{Name: "The Linda", City: "Albany", Region: "Capital Region"},
		{Name: "Gone", City: "Albany", Region: "Capital Region", Status: StatusClosed},
	} {
		if _, _, err := s.SaveVenue(ctx, v); err != nil {
			t.Fatal(err)
		}
	}
	return s
}

func TestExportJSONAndYAML(t *testing.T) {
	s := seedExport(t)
	ctx := context.Background()
	now := day("2026-10-18")
	dir := t.TempDir()

	path, n, err := Export(ctx, s, "JSON", dir, now)
	if err != nil || n != 2 {
		t.Fatalf("Export json = %d, %v", n, err)
	}
	if filepath.Base(path) != "venues_export_20261018.json" {
		t.Fatalf("path = %s", path)
	}
	raw, _ := os.ReadFile(path)
	var records []ExportRecord
	if err := json.Unmarshal(raw, &records); err != nil {
		t.Fatal(err)
	}
	if records[0].Name != "The Linda" || records[1].Capacity != 200 {
		t.Fatalf("records = %+v", records)
	}
	if records[0].Genres == nil {
		t.Error("genres should export as an empty list")
	}

	path, _, err = Export(ctx, s, FormatYAML, dir, now)
	if err != nil {
		t.Fatal(err)
	}
	raw, _ = os.ReadFile(path)
	var fromYAML []ExportRecord
	if err := yaml.Unmarshal(raw, &fromYAML); err != nil {
		t.Fatal(err)
	}
	if len(fromYAML) != 2 || fromYAML[1].Name != "Colony" {
		t.Fatalf("yaml records = %+v", fromYAML)
	}

	if _, _, err := Export(ctx, s, "pdf", dir, now); err == nil {
		t.Fatal("unsupported format should fail")
	}
}

func TestExportCSV(t *testing.T) {
	s := seedExport(t)
	path, _, err := Export(context.Background(), s, FormatCSV, t.TempDir(), day("2026-10-18"))
	if err != nil {
		t.Fatal(err)
	}
	f, err := os.Open(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := csv.NewReader(f).ReadAll()
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || !reflect.DeepEqual(rows[0], exportHeader) {
		t.Fatalf("rows = %v", rows)
	}
	if rows[2][1] != "Colony" || rows[2][12] != "rock" {
		t.Fatalf("row = %v", rows[2])
	}
}

func TestExportXLSX(t *testing.T) {
	s := seedExport(t)
	path, _, err := Export(context.Background(), s, FormatXLSX, t.TempDir(), day("2026-10-18"))
	if err != nil {
		t.Fatal(err)
	}

	f, err := excelize.OpenFile(path)
	if err != nil {
		t.Fatal(err)
	}
	defer f.Close()

	rows, err := f.GetRows(xlsxSheet)
	if err != nil {
		t.Fatal(err)
	}
	if len(rows) != 3 || rows[0][0] != "id" || rows[1][1] != "The Linda" {
		t.Fatalf("rows = %v", rows)
	}
}
