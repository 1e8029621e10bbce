package catalog

import (
	"fmt"
	"strings"

	fuzzy "github.com/paul-mannino/go-fuzzywuzzy"
)

// acceptanceThreshold is the minimum similarity score (0-100) for a fuzzy
// match to be accepted.
const acceptanceThreshold = 70

// Resolution is the outcome of resolving an utterance against the catalog:
// either a canonical service name, or a rejection message for the user.
// Never both.
type Resolution struct {
	Service   string
	Rejection string
}

// Resolved reports whether the utterance matched a catalog entry.
func (r Resolution) Resolved() bool {
	return r.Service != ""
}

// Resolve maps a free-text service mention to a canonical catalog entry.
// Matching tiers, first hit wins: case-insensitive exact match, substring
// containment in either direction, then fuzzy similarity accepted at or
// above the threshold. Pure function of utterance and catalog.
func (c *Catalog) Resolve(utterance string) Resolution {
	input := strings.ToLower(strings.TrimSpace(utterance))
	if input == "" {
		return c.reject(utterance)
	}

	for _, service := range c.services {
		if input == strings.ToLower(service) {
			return Resolution{Service: service}
		}
	}

	for _, service := range c.services {
		lower := strings.ToLower(service)
		if strings.Contains(lower, input) || strings.Contains(input, lower) {
			return Resolution{Service: service}
		}
	}

	best, bestScore := "", 0
	for _, service := range c.services {
		score := fuzzy.TokenSetRatio(input, strings.ToLower(service))
		if score > bestScore {
			best, bestScore = service, score
		}
	}
	if bestScore >= acceptanceThreshold {
		return Resolution{Service: best}
	}

	return c.reject(utterance)
}

func (c *Catalog) reject(utterance string) Resolution {
	return Resolution{
		Rejection: fmt.Sprintf(
			"I couldn't find an exact match for '%s'. Here are our available services:\n\n%s\n\nWhich service would you like to book?",
			strings.TrimSpace(utterance), c.BulletList(),
		),
	}
}
