package ingest

import (
	"regexp"
	"strings"

	"github.com/michaelcolletti/venue-research-agent/pkg/providers"
	"github.com/michaelcolletti/venue-research-agent/pkg/venues"
)

// Venue name length bounds, exclusive.
const (
	minNameLen = 5
	maxNameLen = 100
	maxRawLen  = 200
	maxOppLen  = 500
)

var (
	// "Name - City, NY" or "Name – City New York".
	dashPattern = regexp.MustCompile(`(?i)([a-z][^-–\n]+?)\s*[-–]\s*([a-z][a-z\s]*?)(?:,\s*|\s+)(?:NY|New York)\b`)
	// "Name in City", with the city as up to three capitalized words.
	inPattern = regexp.MustCompile(`(?i:([a-z][^\n]*?))\s+(?i:in)\s+([A-Z][a-z]+(?: [A-Z][a-z]+){0,2})`)

	noise = []string{"http", "www.", "click here", "read more", "advertisement"}

	sentenceSplit = regexp.MustCompile(`[.!?]`)
)

// ParsedVenue is a venue mention found in result text.
type ParsedVenue struct {
	Name        string
	City        string
	Region      string
	SourceQuery string
	RawText     string
}

// ParseVenues extracts venue mentions from search result text, one per
// line at most.
func ParseVenues(text string, info providers.Query) []ParsedVenue {
	var out []ParsedVenue
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if len(line) < 10 || isNoise(line) {
			continue
		}

		for _, pattern := range []*regexp.Regexp{dashPattern, inPattern} {
			m := pattern.FindStringSubmatch(line)
			if m == nil {
				continue
			}
			name := strings.TrimSpace(m[1])
			city := strings.TrimSpace(m[2])
			if len(name) > minNameLen && len(name) < maxNameLen {
				out = append(out, ParsedVenue{
					Name:        name,
					City:        city,
					Region:      info.Region,
					SourceQuery: info.Text,
					RawText:     clip(line, maxRawLen),
				})
			}
			break
		}
	}
	return out
}

func isNoise(line string) bool {
	lower := strings.ToLower(line)
	for _, n := range noise {
		if strings.Contains(lower, n) {
			return true
		}
	}
	return false
}

// Alert pairs an opportunity type with its trigger keywords.
type Alert struct {
	Type     string
	Keywords []string
}

// ExtractOpportunities returns one opportunity per keyword found in text:
// the first sentence mentioning it. Repeated sentences are reported once
// per alert type.
func ExtractOpportunities(text string, alerts []Alert) []venues.Opportunity {
	lower := strings.ToLower(text)
	sentences := sentenceSplit.Split(text, -1)

	var out []venues.Opportunity
	for _, alert := range alerts {
		seen := map[string]bool{}
		for _, kw := range alert.Keywords {
			kw = strings.ToLower(strings.TrimSpace(kw))
			if kw == "" || !strings.Contains(lower, kw) {
				continue
			}
			for _, sent := range sentences {
				if !strings.Contains(strings.ToLower(sent), kw) {
					continue
				}
				desc := clip(strings.TrimSpace(sent), maxOppLen)
				if !seen[desc] {
					seen[desc] = true
					out = append(out, venues.Opportunity{
						Type:        alert.Type,
						Description: desc,
						Priority:    priorityFor(alert.Type),
						Notes:       "keyword: " + kw,
					})
				}
				break
			}
		}
	}
	return out
}

func priorityFor(kind string) int {
	switch kind {
	case venues.OpportunitySeekingArtists:
		return 2
	case venues.OpportunityGoodPay:
		return 3
	}
	return venues.DefaultOpportunityPriority
}

func clip(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}
