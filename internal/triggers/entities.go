package triggers

import (
	"sort"
	"strings"

	domain "github.com/collectwise/advisor/pkg/types"
)

// characterSeries maps character names (lowercase) to the series they
// anchor. A title match contributes both the character and its series
// to the extraction.
var characterSeries = map[string][]string{
	"spider-man":      {"Amazing Spider-Man", "Ultimate Spider-Man"},
	"spiderman":       {"Amazing Spider-Man"},
	"batman":          {"Batman", "Detective Comics"},
	"superman":        {"Superman", "Action Comics"},
	"wolverine":       {"Wolverine", "X-Men"},
	"x-men":           {"X-Men", "Uncanny X-Men"},
	"hulk":            {"Incredible Hulk"},
	"iron man":        {"Iron Man", "Tales of Suspense"},
	"thor":            {"Thor", "Journey into Mystery"},
	"captain america": {"Captain America"},
	"wonder woman":    {"Wonder Woman"},
	"flash":           {"The Flash"},
	"green lantern":   {"Green Lantern"},
	"venom":           {"Venom", "Amazing Spider-Man"},
	"deadpool":        {"Deadpool", "New Mutants"},
	"daredevil":       {"Daredevil"},
	"punisher":        {"The Punisher"},
	"joker":           {"Batman", "The Joker"},
	"harley quinn":    {"Harley Quinn"},
	"spawn":           {"Spawn"},
}

// marvelTokens and dcTokens infer the publisher from title substrings.
var (
	marvelTokens = []string{
		"marvel", "spider-man", "spiderman", "x-men", "avengers", "wolverine",
		"hulk", "iron man", "thor", "captain america", "venom", "deadpool",
		"daredevil", "punisher",
	}
	dcTokens = []string{
		"dc comics", " dc ", "batman", "superman", "wonder woman", "flash",
		"green lantern", "aquaman", "joker", "harley quinn", "detective comics",
	}
)

var keywordStopwords = map[string]struct{}{
	"the": {}, "and": {}, "for": {}, "with": {}, "issue": {}, "vol": {},
	"comic": {}, "comics": {}, "edition": {}, "first": {}, "key": {},
}

// ExtractEntities derives deduplicated character, publisher, series,
// creator and keyword sets from item metadata. The title scan is
// case-insensitive.
func ExtractEntities(item domain.ItemMetadata) domain.EntityExtraction {
	title := strings.ToLower(item.Title)

	var (
		characters = map[string]struct{}{}
		publishers = map[string]struct{}{}
		series     = map[string]struct{}{}
		creators   = map[string]struct{}{}
		keywords   = map[string]struct{}{}
	)

	for character, seriesNames := range characterSeries {
		if strings.Contains(title, character) {
			characters[character] = struct{}{}
			for _, s := range seriesNames {
				series[s] = struct{}{}
			}
		}
	}

	if item.Publisher != "" {
		publishers[strings.ToLower(item.Publisher)] = struct{}{}
	}
	padded := " " + title + " "
	for _, tok := range marvelTokens {
		if strings.Contains(padded, tok) {
			publishers["marvel"] = struct{}{}
			break
		}
	}
	for _, tok := range dcTokens {
		if strings.Contains(padded, tok) {
			publishers["dc"] = struct{}{}
			break
		}
	}

	for _, c := range item.Creators {
		c = strings.TrimSpace(strings.ToLower(c))
		if c != "" {
			creators[c] = struct{}{}
		}
	}

	for _, tok := range strings.Fields(title) {
		tok = strings.Trim(tok, "#.,:;!?()[]")
		if len(tok) <= 2 {
			continue
		}
		if _, stop := keywordStopwords[tok]; stop {
			continue
		}
		keywords[tok] = struct{}{}
	}

	return domain.EntityExtraction{
		Characters: setToSorted(characters),
		Publishers: setToSorted(publishers),
		Series:     setToSorted(series),
		Creators:   setToSorted(creators),
		Keywords:   setToSorted(keywords),
	}
}

// mentionsEntity reports whether text contains at least one extracted
// character, series, or creator name, case-insensitively.
func mentionsEntity(text string, entities domain.EntityExtraction) bool {
	lower := strings.ToLower(text)
	for _, c := range entities.Characters {
		if strings.Contains(lower, c) {
			return true
		}
	}
	for _, s := range entities.Series {
		if strings.Contains(lower, strings.ToLower(s)) {
			return true
		}
	}
	for _, c := range entities.Creators {
		if strings.Contains(lower, c) {
			return true
		}
	}
	return false
}

func setToSorted(set map[string]struct{}) []string {
	if len(set) == 0 {
		return nil
	}
	out := make([]string, 0, len(set))
	for k := range set {
		out = append(out, k)
	}
	sort.Strings(out)
	return out
}
