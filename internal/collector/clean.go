package collector

import (
	"fmt"
	"math"
	"net/url"
	"regexp"
	"strings"

	domain "github.com/collectwise/advisor/pkg/types"
)

const maxListingPrice = 100000

var whitespaceRE = regexp.MustCompile(`\s+`)

// conditionVocabulary maps free-text condition strings to the canonical
// grading vocabulary. Keys are lowercase; unrecognized values map to
// Unknown.
var conditionVocabulary = map[string]domain.Condition{
	"m":         domain.ConditionMint,
	"mint":      domain.ConditionMint,
	"nm":        domain.ConditionNearMint,
	"nm/m":      domain.ConditionNearMint,
	"near mint": domain.ConditionNearMint,
	"vf":        domain.ConditionVeryFine,
	"vf/nm":     domain.ConditionVeryFine,
	"very fine": domain.ConditionVeryFine,
	"f":         domain.ConditionFine,
	"fn":        domain.ConditionFine,
	"fine":      domain.ConditionFine,
	"vg":        domain.ConditionVeryGood,
	"very good": domain.ConditionVeryGood,
	"g":         domain.ConditionGood,
	"gd":        domain.ConditionGood,
	"good":      domain.ConditionGood,
	"fr":        domain.ConditionFair,
	"fair":      domain.ConditionFair,
	"p":         domain.ConditionPoor,
	"pr":        domain.ConditionPoor,
	"poor":      domain.ConditionPoor,
}

// CanonicalCondition maps a raw condition string to the canonical
// vocabulary, defaulting to Unknown.
func CanonicalCondition(raw string) domain.Condition {
	key := strings.ToLower(strings.TrimSpace(raw))
	if c, ok := conditionVocabulary[key]; ok {
		return c
	}
	return domain.ConditionUnknown
}

// CleanListing validates one raw listing and returns its cleaned form.
// The error describes why the record was dropped; dropped records become
// warnings, never collection failures.
func CleanListing(raw domain.RawListing) (domain.CleanedListing, error) {
	var zero domain.CleanedListing

	if strings.TrimSpace(raw.ID) == "" {
		return zero, fmt.Errorf("missing id")
	}
	if strings.TrimSpace(raw.Title) == "" {
		return zero, fmt.Errorf("missing title")
	}
	if raw.Price <= 0 || raw.Price > maxListingPrice {
		return zero, fmt.Errorf("price %.2f outside (0, %d]", raw.Price, maxListingPrice)
	}

	u, err := url.Parse(raw.URL)
	if err != nil || (u.Scheme != "http" && u.Scheme != "https") || u.Host == "" {
		return zero, fmt.Errorf("malformed url %q", raw.URL)
	}

	return domain.CleanedListing{
		ID:        strings.TrimSpace(raw.ID),
		Title:     collapseText(raw.Title),
		Price:     roundPrice(raw.Price),
		Currency:  strings.ToUpper(strings.TrimSpace(raw.Currency)),
		Condition: CanonicalCondition(raw.Condition),
		URL:       raw.URL,
		Seller:    collapseText(raw.Seller),
		Source:    raw.Source,
		FetchedAt: raw.FetchedAt,
	}, nil
}

func collapseText(s string) string {
	return whitespaceRE.ReplaceAllString(strings.TrimSpace(s), " ")
}

func roundPrice(p float64) float64 {
	return math.Round(p*100) / 100
}
