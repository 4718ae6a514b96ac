// Package query turns the region and template configuration into the
// prioritized list of searches for one run.
package query

import (
	"sort"
	"strings"

	"github.com/michaelcolletti/venue-research-agent/pkg/config"
	"github.com/michaelcolletti/venue-research-agent/pkg/providers"
)

// CitiesPerRegion caps how many cities of each region are searched.
const CitiesPerRegion = 3

// Categories are searched in this order for every city.
var Categories = []string{
	providers.CategoryNewVenues,
	providers.CategoryBookingOpportunities,
}

// Build returns one query per (region, city, category), stable-sorted by
// region priority and truncated to max. max <= 0 disables truncation.
func Build(cfg *config.Config, max int) []providers.Query {
	if cfg == nil {
		return nil
	}

	var out []providers.Query
	for _, key := range cfg.OrderedRegionKeys() {
		region := cfg.Regions[key]
		name := region.DisplayName(key)
		priority := region.PriorityOrDefault()

		cities := region.Cities
		if len(cities) > CitiesPerRegion {
			cities = cities[:CitiesPerRegion]
		}
		for _, city := range cities {
			for _, category := range Categories {
				templates := cfg.SearchTemplates[category]
				if len(templates) == 0 {
					continue
				}
				out = append(out, providers.Query{
					Text:     Expand(templates[0], city, name),
					Category: category,
					Region:   name,
					City:     city,
					Priority: priority,
				})
			}
		}
	}

	sort.SliceStable(out, func(i, j int) bool {
		return out[i].Priority < out[j].Priority
	})
	if max > 0 && len(out) > max {
		out = out[:max]
	}
	return out
}

// Expand substitutes {city} and {region} in a template.
func Expand(template, city, region string) string {
	return strings.NewReplacer("{city}", city, "{region}", region).Replace(template)
}

// Adhoc wraps free text as a single unprioritized query.
func Adhoc(text string) providers.Query {
	return providers.Query{Text: text, Category: providers.CategoryAdhoc}
}
