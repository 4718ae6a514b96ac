package venues

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
)

// AddOpportunity stores o and returns its id. Discovered date defaults to
// today, status to new and priority to DefaultOpportunityPriority.
func (s *Store) AddOpportunity(ctx context.Context, o Opportunity) (int64, error) {
	if o.DiscoveredDate == "" {
		o.DiscoveredDate = s.today()
	}
	if o.Status == "" {
		o.Status = OpportunityNew
	}
	if o.Priority <= 0 {
		o.Priority = DefaultOpportunityPriority
	}

	query, args := builder().Insert("opportunities").
		Columns("venue_id", "opportunity_type", "description", "source_url",
			"discovered_date", "expiry_date", "status", "priority", "notes", "suitable_acts").
		Values(nullString(o.VenueID), o.Type, o.Description, o.SourceURL,
			o.DiscoveredDate, nullString(o.ExpiryDate), o.Status, o.Priority, o.Notes, encodeList(o.SuitableActs)).
		Query()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return 0, fmt.Errorf("inserting opportunity: %w", err)
	}
	return res.LastInsertId()
}

// OpportunitiesBetween returns opportunities discovered in [from, to],
// highest priority first, with the venue name joined in.
func (s *Store) OpportunitiesBetween(ctx context.Context, from, to string) ([]Opportunity, error) {
	o := entsql.Table("opportunities").As("o")
	v := entsql.Table("venues").As("v")
	sel := builder().Select(
		o.C("id"), o.C("venue_id"), v.C("name"), o.C("opportunity_type"), o.C("description"),
		o.C("source_url"), o.C("discovered_date"), o.C("expiry_date"), o.C("status"),
		o.C("priority"), o.C("notes"), o.C("suitable_acts"),
	).From(o)
	sel.LeftJoin(v).On(o.C("venue_id"), v.C("id"))
	sel.Where(entsql.And(
		entsql.GTE(o.C("discovered_date"), from),
		entsql.LTE(o.C("discovered_date"), to),
	)).OrderBy(o.C("priority"), o.C("id"))

	query, args := sel.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing opportunities: %w", err)
	}
	defer rows.Close()

	var out []Opportunity
	for rows.Next() {
		var (
			op                         Opportunity
			venueID, venueName, expiry sql.NullString
			discovered                 sql.NullString
			acts                       string
		)
		if err := rows.Scan(&op.ID, &venueID, &venueName, &op.Type, &op.Description,
			&op.SourceURL, &discovered, &expiry, &op.Status, &op.Priority, &op.Notes, &acts); err != nil {
			return nil, fmt.Errorf("scanning opportunity: %w", err)
		}
		op.VenueID = venueID.String
		op.VenueName = venueName.String
		op.DiscoveredDate = discovered.String
		op.ExpiryDate = expiry.String
		op.SuitableActs = decodeList(acts)
		out = append(out, op)
	}
	return out, rows.Err()
}
