package venues

import (
	"context"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// RecordSearch adds a search history row. Date defaults to today.
func (s *Store) RecordSearch(ctx context.Context, r SearchRecord) error {
	if r.Date == "" {
		r.Date = s.today()
	}
	query, args := builder().Insert("search_history").
		Columns("search_date", "query", "results_count", "new_venues_found", "opportunities_found").
		Values(r.Date, r.Query, r.ResultsCount, r.NewVenuesFound, r.OpportunitiesFound).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("recording search: %w", err)
	}
	return nil
}

// RecordReport stores report metadata.
func (s *Store) RecordReport(ctx context.Context, r ReportRecord) error {
	query, args := builder().Insert("reports").
		Columns("report_date", "week_start", "week_end", "report_path", "summary",
			"new_venues_count", "opportunities_count").
		Values(r.ReportDate, r.WeekStart, r.WeekEnd, r.Path, r.Summary,
			r.NewVenuesCount, r.OpportunitiesCount).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return fmt.Errorf("recording report: %w", err)
	}
	return nil
}

// Stats summarizes the database.
type Stats struct {
	Venues            int
	ActiveVenues      int
	ExcludedVenues    int
	Opportunities     int
	OpenOpportunities int
	Searches          int
	Reports           int
	LastSearch        string
}

// Stats counts rows across the database.
func (s *Store) Stats(ctx context.Context) (Stats, error) {
	var st Stats
	counts := []struct {
		dst   *int
		table string
		where *entsql.Predicate
	}{
		{&st.Venues, "venues", nil},
		{&st.ActiveVenues, "venues", entsql.EQ("status", StatusActive)},
		{&st.ExcludedVenues, "excluded_venues", nil},
		{&st.Opportunities, "opportunities", nil},
		{&st.OpenOpportunities, "opportunities", entsql.EQ("status", OpportunityNew)},
		{&st.Searches, "search_history", nil},
		{&st.Reports, "reports", nil},
	}
	for _, c := range counts {
		sel := builder().Select(entsql.Count("*")).From(entsql.Table(c.table))
		if c.where != nil {
			sel.Where(c.where)
		}
		n, err := s.count(ctx, sel)
		if err != nil {
			return Stats{}, fmt.Errorf("counting %s: %w", c.table, err)
		}
		*c.dst = n
	}

	query, args := builder().Select("search_date").
		From(entsql.Table("search_history")).
		OrderBy(entsql.Desc("id")).
		Limit(1).
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return Stats{}, fmt.Errorf("reading last search: %w", err)
	}
	defer rows.Close()
	if rows.Next() {
		if err := rows.Scan(&st.LastSearch); err != nil {
			return Stats{}, err
		}
	}
	return st, rows.Err()
}

// CountVenuesFirstSeen counts venues first seen in [from, to].
func (s *Store) CountVenuesFirstSeen(ctx context.Context, from, to string) (int, error) {
	return s.count(ctx, builder().Select(entsql.Count("*")).
		From(entsql.Table("venues")).
		Where(entsql.And(entsql.GTE("first_seen", from), entsql.LTE("first_seen", to))))
}
