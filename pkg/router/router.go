// Package router decides the PrestaShop destination for each WordPress
// content item: a CMS page, a product description update, or skip.
// Rules are evaluated in declaration order and the first match wins.
package router

import (
	"fmt"
	"path"

	"wp2presta/models"
)

// Target is a routing destination.
type Target string

const (
	TargetCMS     Target = "cms"
	TargetProduct Target = "product"
	TargetSkip    Target = "skip"
)

// MatchBy selects how a destination product is resolved.
type MatchBy string

const (
	MatchByName      MatchBy = "name"
	MatchByReference MatchBy = "reference"
	MatchByID        MatchBy = "id"
)

// DefaultRuleName is the sentinel rule name reported when no rule matched.
const DefaultRuleName = "(default)"

// productRef is a normalized product_map entry: either a direct product
// ID or a product reference, never both.
type productRef struct {
	ID        int
	Reference string
}

// Rule is one validated routing rule.
type Rule struct {
	Name          string
	Target        Target
	Slugs         map[string]struct{}
	Patterns      []string
	CMSCategoryID int
	MatchBy       MatchBy
	ProductMap    map[string]productRef
}

// RouteResult is the routing outcome for one content item.
type RouteResult struct {
	Target Target
	Slug   string
	Title  string

	// CMS target: 0 means "use the global default category".
	CMSCategoryID int

	// Product target.
	MatchBy          MatchBy
	ProductID        int
	ProductReference string

	// Name of the matching rule, or DefaultRuleName.
	RuleName string
}

// Router routes content items by slug against an ordered rule list.
// Routing is pure: the same rule set and slug always produce the same
// result, regardless of call order.
type Router struct {
	rules       []Rule
	defaultDest Target
}

// Summary reports rule counts partitioned by target, for startup logging.
type Summary struct {
	TotalRules   int
	CMSRules     int
	ProductRules int
	SkipRules    int
	Default      Target
}

// New builds a Router from the raw mapping config. Unknown targets or
// match_by values, bad glob patterns, and malformed product_map entries
// are construction errors, not per-item errors.
func New(mapping models.MappingConfig) (*Router, error) {
	defaultDest, err := parseTarget(mapping.Default)
	if err != nil {
		return nil, fmt.Errorf("mapping.default: %w", err)
	}

	rules := make([]Rule, 0, len(mapping.Rules))
	for i, raw := range mapping.Rules {
		name := raw.Name
		if name == "" {
			name = fmt.Sprintf("rule_%d", i)
		}

		target, err := parseTarget(raw.Target)
		if err != nil {
			return nil, fmt.Errorf("rule %q: %w", name, err)
		}

		matchBy := MatchByName
		if raw.MatchBy != "" {
			matchBy, err = parseMatchBy(raw.MatchBy)
			if err != nil {
				return nil, fmt.Errorf("rule %q: %w", name, err)
			}
		}

		for _, pattern := range raw.Patterns {
			if _, err := path.Match(pattern, "x"); err != nil {
				return nil, fmt.Errorf("rule %q: invalid pattern %q: %w", name, pattern, err)
			}
		}

		slugs := make(map[string]struct{}, len(raw.Slugs))
		for _, s := range raw.Slugs {
			slugs[s] = struct{}{}
		}

		productMap := make(map[string]productRef, len(raw.ProductMap))
		for slug, v := range raw.ProductMap {
			switch m := v.(type) {
			case int:
				if m <= 0 {
					return nil, fmt.Errorf("rule %q: product_map[%q]: product ID must be positive, got %d", name, slug, m)
				}
				productMap[slug] = productRef{ID: m}
			case string:
				if m == "" {
					return nil, fmt.Errorf("rule %q: product_map[%q]: reference must not be empty", name, slug)
				}
				productMap[slug] = productRef{Reference: m}
			default:
				return nil, fmt.Errorf("rule %q: product_map[%q] must be a product ID or reference, got %T", name, slug, v)
			}
		}

		rules = append(rules, Rule{
			Name:          name,
			Target:        target,
			Slugs:         slugs,
			Patterns:      raw.Patterns,
			CMSCategoryID: raw.CMSCategoryID,
			MatchBy:       matchBy,
			ProductMap:    productMap,
		})
	}

	return &Router{rules: rules, defaultDest: defaultDest}, nil
}

// Route determines the destination for a content item. Only the slug is
// used for matching; the title is carried through for bookkeeping.
func (r *Router) Route(slug, title string) RouteResult {
	for _, rule := range r.rules {
		if !rule.matches(slug) {
			continue
		}

		result := RouteResult{
			Target:   rule.Target,
			Slug:     slug,
			Title:    title,
			RuleName: rule.Name,
		}

		switch rule.Target {
		case TargetCMS:
			result.CMSCategoryID = rule.CMSCategoryID
		case TargetProduct:
			result.MatchBy = rule.MatchBy
			// An explicit per-slug mapping always overrides the
			// rule's general match_by.
			if ref, ok := rule.ProductMap[slug]; ok {
				if ref.ID != 0 {
					result.ProductID = ref.ID
					result.MatchBy = MatchByID
				} else {
					result.ProductReference = ref.Reference
					result.MatchBy = MatchByReference
				}
			}
		}
		return result
	}

	return RouteResult{
		Target:   r.defaultDest,
		Slug:     slug,
		Title:    title,
		RuleName: DefaultRuleName,
	}
}

func (rule Rule) matches(slug string) bool {
	if _, ok := rule.Slugs[slug]; ok {
		return true
	}
	for _, pattern := range rule.Patterns {
		if ok, _ := path.Match(pattern, slug); ok {
			return true
		}
	}
	if rule.Target == TargetProduct {
		if _, ok := rule.ProductMap[slug]; ok {
			return true
		}
	}
	return false
}

// Rules returns the validated rules in evaluation order.
func (r *Router) Rules() []Rule {
	return r.rules
}

// Summary returns rule counts by target plus the configured default.
func (r *Router) Summary() Summary {
	s := Summary{TotalRules: len(r.rules), Default: r.defaultDest}
	for _, rule := range r.rules {
		switch rule.Target {
		case TargetCMS:
			s.CMSRules++
		case TargetProduct:
			s.ProductRules++
		case TargetSkip:
			s.SkipRules++
		}
	}
	return s
}

func parseTarget(s string) (Target, error) {
	switch Target(s) {
	case TargetCMS, TargetProduct, TargetSkip:
		return Target(s), nil
	}
	return "", fmt.Errorf("unknown target %q (want cms, product, or skip)", s)
}

func parseMatchBy(s string) (MatchBy, error) {
	switch MatchBy(s) {
	case MatchByName, MatchByReference, MatchByID:
		return MatchBy(s), nil
	}
	return "", fmt.Errorf("unknown match_by %q (want name, reference, or id)", s)
}
