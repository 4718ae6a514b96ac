// Package venues is the local SQLite database of venues, booking
// opportunities, exclusions and run history, plus the reports and exports
// built from it.
package venues

import (
	"crypto/md5"
	"encoding/hex"
	"strings"
)

// Venue statuses.
const (
	StatusActive     = "active"
	StatusClosed     = "closed"
	StatusUnverified = "unverified"
	StatusExcluded   = "excluded"
)

// Opportunity types and statuses.
const (
	OpportunitySeekingArtists = "seeking_artists"
	OpportunityGoodPay        = "good_pay"

	OpportunityNew       = "new"
	OpportunityContacted = "contacted"
	OpportunityBooked    = "booked"
	OpportunityPassed    = "passed"

	DefaultOpportunityPriority = 5
)

// Sources recorded on venues.
const (
	SourceWebSearch = "web_search"
	SourceManual    = "manual"
)

// DateLayout is how calendar dates are stored.
const DateLayout = "2006-01-02"

// Venue is one row of the venues table.
type Venue struct {
	ID             string
	Name           string
	City           string
	Region         string
	State          string
	VenueType      string
	Capacity       int
	Website        string
	Phone          string
	Email          string
	Address        string
	BookingContact string
	Genres         []string
	Notes          string
	Source         string
	SourceURL      string
	FirstSeen      string
	LastSeen       string
	LastUpdated    string
	Status         string
	Rating         float64
}

// Opportunity is a booking lead.
type Opportunity struct {
	ID             int64
	VenueID        string
	VenueName      string // filled by queries that join venues
	Type           string
	Description    string
	SourceURL      string
	DiscoveredDate string
	ExpiryDate     string
	Status         string
	Priority       int
	Notes          string
	SuitableActs   []string
}

// SearchRecord is one row of search history.
type SearchRecord struct {
	Date               string
	Query              string
	ResultsCount       int
	NewVenuesFound     int
	OpportunitiesFound int
}

// ReportRecord describes a generated weekly report.
type ReportRecord struct {
	ReportDate         string
	WeekStart          string
	WeekEnd            string
	Path               string
	Summary            string
	NewVenuesCount     int
	OpportunitiesCount int
}

// ExcludedVenue is an entry on the exclusion list.
type ExcludedVenue struct {
	VenueID      string
	Name         string
	City         string
	Reason       string
	DateExcluded string
	Notes        string
}

// Exclusion reasons.
const (
	ReasonNoResponse    = "no_response"
	ReasonBadExperience = "bad_experience"
	ReasonClosed        = "closed"
	ReasonNotBooking    = "not_booking"
	ReasonWrongFit      = "wrong_fit"
)

// ExclusionReasons lists the accepted reasons.
var ExclusionReasons = []string{
	ReasonNoResponse,
	ReasonBadExperience,
	ReasonClosed,
	ReasonNotBooking,
	ReasonWrongFit,
}

// ValidReason reports whether reason is one of ExclusionReasons.
func ValidReason(reason string) bool {
	for _, r := range ExclusionReasons {
		if r == reason {
			return true
		}
	}
	return false
}

// VenueID derives the stable 12-character id for a venue from its name
// and city, ignoring case and surrounding whitespace.
func VenueID(name, city string) string {
	key := strings.ToLower(strings.TrimSpace(name)) + ":" + strings.ToLower(strings.TrimSpace(city))
	sum := md5.Sum([]byte(key))
	return hex.EncodeToString(sum[:])[:12]
}
