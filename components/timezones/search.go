package timezones

import (
	"sort"
	"strings"

	"github.com/lithammer/fuzzysearch/fuzzy"
)

// Search returns every zone matching query: prefix matches first, then
// substring matches, each group sorted by name. With fuzzy enabled and no
// substring match, zones containing the query as a subsequence are ranked by
// edit distance instead. An empty query honours the empty search mode.
func Search(zones []string, query string, opts Options) []string {
	query = strings.TrimSpace(query)
	if query == "" {
		if opts.EmptySearchMode == EmptySearchTop {
			return append([]string{}, zones...)
		}
		return nil
	}

	q := strings.ToLower(query)
	matches := make([]matchedZone, 0, 32)
	for _, zone := range zones {
		lowerZone := strings.ToLower(zone)
		if !strings.Contains(lowerZone, q) {
			continue
		}
		matches = append(matches, matchedZone{
			name:     zone,
			isPrefix: strings.HasPrefix(lowerZone, q),
		})
	}
	if len(matches) == 0 && opts.Fuzzy {
		return fuzzyRank(zones, query)
	}

	sort.SliceStable(matches, func(i, j int) bool {
		if matches[i].isPrefix != matches[j].isPrefix {
			return matches[i].isPrefix
		}
		return matches[i].name < matches[j].name
	})

	out := make([]string, 0, len(matches))
	for _, match := range matches {
		out = append(out, match.name)
	}
	return out
}

func fuzzyRank(zones []string, query string) []string {
	ranks := fuzzy.RankFindNormalizedFold(query, zones)
	sort.SliceStable(ranks, func(i, j int) bool {
		if ranks[i].Distance != ranks[j].Distance {
			return ranks[i].Distance < ranks[j].Distance
		}
		return ranks[i].Target < ranks[j].Target
	})
	out := make([]string, 0, len(ranks))
	for _, rank := range ranks {
		out = append(out, rank.Target)
	}
	return out
}

// Label is the display text for zone: path separators spaced out and
// underscores shown as spaces.
func Label(zone string) string {
	return strings.ReplaceAll(strings.ReplaceAll(zone, "_", " "), "/", " / ")
}

type matchedZone struct {
	name     string
	isPrefix bool
}
