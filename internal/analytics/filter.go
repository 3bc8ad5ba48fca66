package analytics

import (
	"fmt"
	"sort"
	"strings"
	"time"
)

// FilterSpec narrows a bet set before summarization. Empty fields place no
// constraint on their dimension.
type FilterSpec struct {
	StartDate *time.Time `json:"startDate,omitempty"`
	EndDate   *time.Time `json:"endDate,omitempty"`
	Sports    []string   `json:"sports,omitempty"`
	BetTypes  []string   `json:"betTypes,omitempty"`
	Outcomes  []string   `json:"outcomes,omitempty"`
}

// IsEmpty reports whether the filter constrains nothing.
func (f FilterSpec) IsEmpty() bool {
	return f.StartDate == nil && f.EndDate == nil &&
		len(f.Sports) == 0 && len(f.BetTypes) == 0 && len(f.Outcomes) == 0
}

// FilterParams is the untyped form of a FilterSpec, as received from query
// strings, request bodies or CLI flags.
type FilterParams struct {
	StartDate string   `json:"startDate"`
	EndDate   string   `json:"endDate"`
	Sports    []string `json:"sports"`
	BetTypes  []string `json:"betTypes"`
	Outcomes  []string `json:"outcomes"`
}

// ParseFilterSpec validates raw filter parameters. A date bound that cannot be
// parsed is a caller error and wraps ErrInvalidInput.
func ParseFilterSpec(p FilterParams) (FilterSpec, error) {
	var spec FilterSpec
	if strings.TrimSpace(p.StartDate) != "" {
		t, ok := ParseDate(p.StartDate)
		if !ok {
			return FilterSpec{}, fmt.Errorf("%w: unparseable startDate %q", ErrInvalidInput, p.StartDate)
		}
		spec.StartDate = &t
	}
	if strings.TrimSpace(p.EndDate) != "" {
		t, ok := ParseDate(p.EndDate)
		if !ok {
			return FilterSpec{}, fmt.Errorf("%w: unparseable endDate %q", ErrInvalidInput, p.EndDate)
		}
		spec.EndDate = &t
	}
	spec.Sports = SplitList(p.Sports...)
	spec.BetTypes = SplitList(p.BetTypes...)
	spec.Outcomes = SplitList(p.Outcomes...)
	return spec, nil
}

// SplitList splits comma-separated values, trimming blanks.
func SplitList(values ...string) []string {
	var out []string
	for _, v := range values {
		for _, part := range strings.Split(v, ",") {
			if part = strings.TrimSpace(part); part != "" {
				out = append(out, part)
			}
		}
	}
	return out
}

func toSet(values []string) map[string]bool {
	if len(values) == 0 {
		return nil
	}
	set := make(map[string]bool, len(values))
	for _, v := range values {
		set[v] = true
	}
	return set
}

// allowed passes values absent on the record, or present in the set.
func allowed(set map[string]bool, value string) bool {
	return set == nil || value == "" || set[value]
}

// ApplyFilters keeps the bets that satisfy every constraint of f.
// Undated bets pass the date bounds. Applying the same filter twice yields the
// same result as applying it once.
func ApplyFilters(bets []NormalizedBet, f FilterSpec) []NormalizedBet {
	sports := toSet(f.Sports)
	betTypes := toSet(f.BetTypes)
	outcomes := toSet(f.Outcomes)

	out := make([]NormalizedBet, 0, len(bets))
	for _, bet := range bets {
		if bet.ParsedDate != nil {
			if f.StartDate != nil && bet.ParsedDate.Before(*f.StartDate) {
				continue
			}
			if f.EndDate != nil && bet.ParsedDate.After(*f.EndDate) {
				continue
			}
		}
		if !allowed(sports, bet.Sport) || !allowed(betTypes, bet.BetType) || !allowed(outcomes, string(bet.Outcome)) {
			continue
		}
		out = append(out, bet)
	}
	return out
}

// FilterFacets lists the distinct values available for each filter dimension.
type FilterFacets struct {
	Sports   []string `json:"sports"`
	BetTypes []string `json:"betTypes"`
	Outcomes []string `json:"outcomes"`
}

// BuildFilterFacets collects sorted distinct sports, bet types and outcomes.
func BuildFilterFacets(bets []NormalizedBet) FilterFacets {
	sports, betTypes, outcomes := map[string]bool{}, map[string]bool{}, map[string]bool{}
	for _, bet := range bets {
		if bet.Sport != "" {
			sports[bet.Sport] = true
		}
		if bet.BetType != "" {
			betTypes[bet.BetType] = true
		}
		if bet.Outcome != "" {
			outcomes[string(bet.Outcome)] = true
		}
	}
	return FilterFacets{
		Sports:   sortedKeys(sports),
		BetTypes: sortedKeys(betTypes),
		Outcomes: sortedKeys(outcomes),
	}
}

func sortedKeys(set map[string]bool) []string {
	keys := make([]string, 0, len(set))
	for k := range set {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	return keys
}
