package collector

import (
	"errors"
	"fmt"
	"regexp"
	"strings"
	"unicode/utf8"

	domain "github.com/collectwise/advisor/pkg/types"
)

const maxQueryLength = 200

// ErrInvalidQuery is wrapped by every query/options validation failure.
var ErrInvalidQuery = errors.New("invalid collection query")

// denylist catches script/injection payloads in queries. Matches fail
// validation before any network call.
var denylist = []*regexp.Regexp{
	regexp.MustCompile(`(?i)<\s*script`),
	regexp.MustCompile(`(?i)javascript\s*:`),
	regexp.MustCompile(`(?i)\bon(error|load|click)\s*=`),
	regexp.MustCompile(`(?i)\b(drop|delete|insert|update)\s+(table|from|into)\b`),
	regexp.MustCompile("[<>`]"),
}

// ValidateQuery checks the query text and filter options before any
// network activity. All violations are reported together.
func ValidateQuery(query string, opts domain.SearchOptions) error {
	var errs []error

	trimmed := strings.TrimSpace(query)
	if trimmed == "" {
		errs = append(errs, fmt.Errorf("query must not be empty"))
	}
	if utf8.RuneCountInString(query) > maxQueryLength {
		errs = append(errs, fmt.Errorf("query exceeds %d characters", maxQueryLength))
	}
	for _, re := range denylist {
		if re.MatchString(query) {
			errs = append(errs, fmt.Errorf("query contains disallowed pattern"))
			break
		}
	}

	if opts.MinPrice != nil && *opts.MinPrice < 0 {
		errs = append(errs, fmt.Errorf("min_price must not be negative"))
	}
	if opts.MaxPrice != nil && *opts.MaxPrice < 0 {
		errs = append(errs, fmt.Errorf("max_price must not be negative"))
	}
	if opts.MinPrice != nil && opts.MaxPrice != nil && *opts.MinPrice > *opts.MaxPrice {
		errs = append(errs, fmt.Errorf("min_price %.2f exceeds max_price %.2f",
			*opts.MinPrice, *opts.MaxPrice))
	}
	if opts.MaxResults < 0 {
		errs = append(errs, fmt.Errorf("max_results must not be negative"))
	}

	if len(errs) > 0 {
		return fmt.Errorf("%w: %w", ErrInvalidQuery, errors.Join(errs...))
	}
	return nil
}

// NormalizeQuery lowercases and collapses whitespace so equivalent
// queries share one cache key.
func NormalizeQuery(query string) string {
	return strings.ToLower(strings.Join(strings.Fields(query), " "))
}
