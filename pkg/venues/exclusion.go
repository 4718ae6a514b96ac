package venues

import (
	"context"
	"database/sql"
	"fmt"

	entsql "entgo.io/ent/dialect/sql"
	"go.uber.org/zap"
)

// Exclude adds name/city to the exclusion list and marks a matching venue
// excluded. added is false when the entry already existed; the venue is
// marked either way.
func (s *Store) Exclude(ctx context.Context, name, city, reason, notes string) (added bool, err error) {
	if reason == "" {
		reason = ReasonNoResponse
	}
	if !ValidReason(reason) {
		return false, fmt.Errorf("invalid exclusion reason %q", reason)
	}

	id := VenueID(name, city)
	query, args := builder().Insert("excluded_venues").
		Columns("venue_id", "name", "city", "reason", "date_excluded", "notes").
		Values(id, name, city, reason, s.today(), notes).
		OnConflict(entsql.DoNothing()).
		Query()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("excluding %s: %w", name, err)
	}
	n, _ := res.RowsAffected()

	if _, err := s.SetVenueStatus(ctx, id, StatusExcluded); err != nil {
		return n > 0, err
	}
	s.log.Info("Venue excluded", zap.String("name", name), zap.String("city", city),
		zap.String("reason", reason), zap.Bool("new", n > 0))
	return n > 0, nil
}

// Unexclude removes name/city from the exclusion list and restores the
// venue to active. Matching ignores case, as in IsExcluded. found is false
// when no entry existed.
func (s *Store) Unexclude(ctx context.Context, name, city string) (found bool, err error) {
	query, args := builder().Delete("excluded_venues").
		Where(entsql.And(entsql.EqualFold("name", name), entsql.EqualFold("city", city))).
		Query()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("removing exclusion: %w", err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return false, nil
	}

	if _, err := s.SetVenueStatus(ctx, VenueID(name, city), StatusActive); err != nil {
		return true, err
	}
	return true, nil
}

// IsExcluded reports whether name/city is on the exclusion list. Matching
// ignores case.
func (s *Store) IsExcluded(ctx context.Context, name, city string) (bool, error) {
	n, err := s.count(ctx, builder().Select(entsql.Count("*")).
		From(entsql.Table("excluded_venues")).
		Where(entsql.And(entsql.EqualFold("name", name), entsql.EqualFold("city", city))))
	if err != nil {
		return false, fmt.Errorf("checking exclusion: %w", err)
	}
	return n > 0, nil
}

// ListExcluded returns the exclusion list, newest first.
func (s *Store) ListExcluded(ctx context.Context) ([]ExcludedVenue, error) {
	query, args := builder().Select("venue_id", "name", "city", "reason", "date_excluded", "notes").
		From(entsql.Table("excluded_venues")).
		OrderBy(entsql.Desc("date_excluded"), entsql.Desc("id")).
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing exclusions: %w", err)
	}
	defer rows.Close()

	var out []ExcludedVenue
	for rows.Next() {
		var (
			e             ExcludedVenue
			venueID, date sql.NullString
		)
		if err := rows.Scan(&venueID, &e.Name, &e.City, &e.Reason, &date, &e.Notes); err != nil {
			return nil, fmt.Errorf("scanning exclusion: %w", err)
		}
		e.VenueID = venueID.String
		e.DateExcluded = date.String
		out = append(out, e)
	}
	return out, rows.Err()
}
