package venues

import (
	"fmt"
	"io"
	"strings"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
)

// Act is a configured act with its config key.
type Act struct {
	Key string
	config.ActConfig
}

// DisplayName returns the act name, falling back to its key.
func (a Act) DisplayName() string {
	if strings.TrimSpace(a.Name) != "" {
		return a.Name
	}
	return a.Key
}

// ActsFromConfig returns the configured acts in document order.
func ActsFromConfig(cfg *config.Config) []Act {
	if cfg == nil {
		return nil
	}
	keys := cfg.OrderedActKeys()
	out := make([]Act, 0, len(keys))
	for _, key := range keys {
		out = append(out, Act{Key: key, ActConfig: cfg.Acts[key]})
	}
	return out
}

// MatchActs returns the names of acts suited to a venue: any act venue
// type contained in venueType, or any act genre among genres. Comparison
// ignores case.
func MatchActs(acts []Act, venueType string, genres []string) []string {
	vt := strings.ToLower(venueType)
	lowered := make(map[string]bool, len(genres))
	for _, g := range genres {
		lowered[strings.ToLower(strings.TrimSpace(g))] = true
	}

	var out []string
	for _, act := range acts {
		if actMatches(act, vt, lowered) {
			out = append(out, act.DisplayName())
		}
	}
	return out
}

func actMatches(act Act, venueType string, genres map[string]bool) bool {
	if venueType != "" {
		for _, t := range act.VenueTypes {
			if t = strings.ToLower(strings.TrimSpace(t)); t != "" && strings.Contains(venueType, t) {
				return true
			}
		}
	}
	for _, g := range act.Genres {
		if genres[strings.ToLower(strings.TrimSpace(g))] {
			return true
		}
	}
	return false
}

// WriteActs prints a summary of each act.
func WriteActs(w io.Writer, acts []Act) {
	rule := strings.Repeat("=", 60)
	fmt.Fprintf(w, "\n%s\nCONFIGURED ACTS\n%s\n\n", rule, rule)
	if len(acts) == 0 {
		fmt.Fprintln(w, "No acts configured.")
		return
	}

	for _, a := range acts {
		fmt.Fprintf(w, "## %s\n", a.DisplayName())
		fmt.Fprintf(w, "   Genres: %s\n", strings.Join(a.Genres, ", "))
		fmt.Fprintf(w, "   Capacity: %d-%d (ideal: %d)\n", a.MinCapacity, a.MaxCapacity, a.IdealCapacity)
		fmt.Fprintf(w, "   Members: %d\n", a.Members)
		fmt.Fprintf(w, "   Fee Range: $%d-$%d\n", a.MinFee, a.MaxFee)
		fmt.Fprintf(w, "   Available: %s\n", strings.Join(a.AvailableDays, ", "))
		fmt.Fprintln(w, "   Venue Types:")
		types := a.VenueTypes
		if len(types) > 5 {
			types = types[:5]
		}
		for _, t := range types {
			fmt.Fprintf(w, "      - %s\n", t)
		}
		if a.Notes != "" {
			fmt.Fprintf(w, "   Notes: %s\n", a.Notes)
		}
		fmt.Fprintln(w)
	}
}
