package venues

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"strings"

	entsql "entgo.io/ent/dialect/sql"
)

// ErrVenueNotFound is returned by GetVenue.
var ErrVenueNotFound = errors.New("venue not found")

var venueColumns = []string{
	"id", "name", "city", "region", "state", "venue_type", "capacity_estimate",
	"website", "phone", "email", "address", "booking_contact", "genres", "notes",
	"source", "source_url", "first_seen", "last_seen", "last_updated", "status", "rating",
}

// SaveVenue inserts v, or bumps last_seen when a venue with the same id
// already exists. It returns the id and whether a row was inserted.
func (s *Store) SaveVenue(ctx context.Context, v Venue) (string, bool, error) {
	if strings.TrimSpace(v.Name) == "" {
		return "", false, errors.New("venue name is required")
	}
	city := v.City
	if strings.TrimSpace(city) == "" {
		city = "Unknown"
	}
	id := VenueID(v.Name, city)
	today := s.today()

	exists, err := s.venueExists(ctx, id)
	if err != nil {
		return "", false, err
	}
	if exists {
		query, args := builder().Update("venues").
			Set("last_seen", today).
			Set("last_updated", s.Now().UTC().Format("2006-01-02 15:04:05")).
			Where(entsql.EQ("id", id)).
			Query()
		if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
			return "", false, fmt.Errorf("updating venue %s: %w", id, err)
		}
		return id, false, nil
	}

	status := v.Status
	if status == "" {
		status = StatusActive
	}
	state := v.State
	if state == "" {
		state = "NY"
	}

	var capacity sql.NullInt64
	if v.Capacity > 0 {
		capacity = sql.NullInt64{Int64: int64(v.Capacity), Valid: true}
	}
	var rating sql.NullFloat64
	if v.Rating > 0 {
		rating = sql.NullFloat64{Float64: v.Rating, Valid: true}
	}

	query, args := builder().Insert("venues").
		Columns("id", "name", "city", "region", "state", "venue_type", "capacity_estimate",
			"website", "phone", "email", "address", "booking_contact", "genres", "notes",
			"source", "source_url", "first_seen", "last_seen", "status", "rating").
		Values(id, v.Name, city, v.Region, state, v.VenueType, capacity,
			v.Website, v.Phone, v.Email, v.Address, v.BookingContact, encodeList(v.Genres), v.Notes,
			v.Source, v.SourceURL, today, today, status, rating).
		Query()
	if _, err := s.db.ExecContext(ctx, query, args...); err != nil {
		return "", false, fmt.Errorf("inserting venue %s: %w", v.Name, err)
	}
	return id, true, nil
}

func (s *Store) venueExists(ctx context.Context, id string) (bool, error) {
	n, err := s.count(ctx, builder().Select(entsql.Count("*")).
		From(entsql.Table("venues")).
		Where(entsql.EQ("id", id)))
	if err != nil {
		return false, fmt.Errorf("looking up venue %s: %w", id, err)
	}
	return n > 0, nil
}

// GetVenue returns the venue with id.
func (s *Store) GetVenue(ctx context.Context, id string) (*Venue, error) {
	list, err := s.ListVenues(ctx, ListFilter{ID: id, AnyStatus: true})
	if err != nil {
		return nil, err
	}
	if len(list) == 0 {
		return nil, ErrVenueNotFound
	}
	return &list[0], nil
}

// ListFilter narrows ListVenues. Zero fields do not filter.
type ListFilter struct {
	ID     string
	Region string
	City   string

	// Status defaults to active unless AnyStatus is set.
	Status    string
	AnyStatus bool

	// FirstSeenFrom and FirstSeenTo bound first_seen, inclusive.
	FirstSeenFrom string
	FirstSeenTo   string

	// NewestFirst orders by first_seen descending instead of
	// region, city, name.
	NewestFirst bool

	Limit int
}

// ListVenues returns venues matching f.
func (s *Store) ListVenues(ctx context.Context, f ListFilter) ([]Venue, error) {
	t := entsql.Table("venues")
	sel := builder().Select(venueColumns...).From(t)

	if f.ID != "" {
		sel.Where(entsql.EQ("id", f.ID))
	}
	if f.Region != "" {
		sel.Where(entsql.EqualFold("region", f.Region))
	}
	if f.City != "" {
		sel.Where(entsql.EqualFold("city", f.City))
	}
	if !f.AnyStatus {
		status := f.Status
		if status == "" {
			status = StatusActive
		}
		sel.Where(entsql.EQ("status", status))
	}
	if f.FirstSeenFrom != "" {
		sel.Where(entsql.GTE("first_seen", f.FirstSeenFrom))
	}
	if f.FirstSeenTo != "" {
		sel.Where(entsql.LTE("first_seen", f.FirstSeenTo))
	}
	if f.NewestFirst {
		sel.OrderBy(entsql.Desc("first_seen"), "name")
	} else {
		sel.OrderBy("region", "city", "name")
	}
	if f.Limit > 0 {
		sel.Limit(f.Limit)
	}

	query, args := sel.Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("listing venues: %w", err)
	}
	defer rows.Close()

	var out []Venue
	for rows.Next() {
		v, err := scanVenue(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, rows.Err()
}

func scanVenue(rows *sql.Rows) (Venue, error) {
	var (
		v                                Venue
		capacity                         sql.NullInt64
		rating                           sql.NullFloat64
		genres                           string
		firstSeen, lastSeen, lastUpdated sql.NullString
	)
	err := rows.Scan(&v.ID, &v.Name, &v.City, &v.Region, &v.State, &v.VenueType, &capacity,
		&v.Website, &v.Phone, &v.Email, &v.Address, &v.BookingContact, &genres, &v.Notes,
		&v.Source, &v.SourceURL, &firstSeen, &lastSeen, &lastUpdated, &v.Status, &rating)
	if err != nil {
		return Venue{}, fmt.Errorf("scanning venue: %w", err)
	}
	v.Capacity = int(capacity.Int64)
	v.Rating = rating.Float64
	v.Genres = decodeList(genres)
	v.FirstSeen = firstSeen.String
	v.LastSeen = lastSeen.String
	v.LastUpdated = lastUpdated.String
	return v, nil
}

// SetVenueStatus changes the status of the venue with id. It reports
// whether a row was updated.
func (s *Store) SetVenueStatus(ctx context.Context, id, status string) (bool, error) {
	query, args := builder().Update("venues").
		Set("status", status).
		Where(entsql.EQ("id", id)).
		Query()
	res, err := s.db.ExecContext(ctx, query, args...)
	if err != nil {
		return false, fmt.Errorf("updating venue status: %w", err)
	}
	n, _ := res.RowsAffected()
	return n > 0, nil
}

// RegionCount is one row of the coverage table.
type RegionCount struct {
	Region string
	Count  int
}

// CountByRegion returns active venue counts per region, largest first.
func (s *Store) CountByRegion(ctx context.Context) ([]RegionCount, error) {
	query, args := builder().Select("region", entsql.As(entsql.Count("*"), "n")).
		From(entsql.Table("venues")).
		Where(entsql.EQ("status", StatusActive)).
		GroupBy("region").
		OrderBy(entsql.Desc("n"), "region").
		Query()
	rows, err := s.db.QueryContext(ctx, query, args...)
	if err != nil {
		return nil, fmt.Errorf("counting venues by region: %w", err)
	}
	defer rows.Close()

	var out []RegionCount
	for rows.Next() {
		var rc RegionCount
		if err := rows.Scan(&rc.Region, &rc.Count); err != nil {
			return nil, err
		}
		out = append(out, rc)
	}
	return out, rows.Err()
}
