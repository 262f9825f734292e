package filter

import (
	"strings"

	"github.com/kailas-cloud/marketsearch/internal/domain/catalog"
)

// Predicate is the composite catalog filter. All set clauses are AND-combined;
// only the free-text term ORs across name, description and tags.
// Inactive products never match.
type Predicate struct {
	// Term is matched case-insensitively as a substring.
	Term        string
	OpenNow     bool
	Categories  []string
	PriceMin    *float64
	PriceMax    *float64
	Tags        []string // lower-cased; any overlap matches
	Fulfillment []catalog.Fulfillment
	// VendorIDs restricts vendors when non-nil. An empty non-nil slice matches nothing.
	VendorIDs []string
	// ProductIDs restricts products when non-nil. An empty non-nil slice matches nothing.
	ProductIDs []string
}

// Matches evaluates the predicate against a joined candidate.
func (p *Predicate) Matches(c *catalog.Candidate) bool {
	prod := &c.Product
	if !prod.Active {
		return false
	}
	if p.OpenNow && !prod.AvailableNow {
		return false
	}
	if p.Term != "" && !MatchesTerm(prod, p.Term) {
		return false
	}
	if len(p.Categories) > 0 && !containsString(p.Categories, prod.Type) {
		return false
	}
	if p.PriceMin != nil && prod.Price < *p.PriceMin {
		return false
	}
	if p.PriceMax != nil && prod.Price > *p.PriceMax {
		return false
	}
	if len(p.Tags) > 0 && !overlapsFold(prod.Tags, p.Tags) {
		return false
	}
	if len(p.Fulfillment) > 0 && !offersAny(prod, p.Fulfillment) {
		return false
	}
	if p.VendorIDs != nil && !containsString(p.VendorIDs, prod.VendorID) {
		return false
	}
	if p.ProductIDs != nil && !containsString(p.ProductIDs, prod.ID) {
		return false
	}
	return true
}

// MatchesTerm reports whether term occurs in the name, description or any tag.
func MatchesTerm(prod *catalog.Product, term string) bool {
	t := strings.ToLower(term)
	if strings.Contains(strings.ToLower(prod.Name), t) ||
		strings.Contains(strings.ToLower(prod.Description), t) {
		return true
	}
	for _, tag := range prod.Tags {
		if strings.Contains(strings.ToLower(tag), t) {
			return true
		}
	}
	return false
}

func offersAny(prod *catalog.Product, methods []catalog.Fulfillment) bool {
	for _, m := range methods {
		if prod.Offers(m) {
			return true
		}
	}
	return false
}

func overlapsFold(have, want []string) bool {
	for _, h := range have {
		if containsString(want, strings.ToLower(h)) {
			return true
		}
	}
	return false
}

func containsString(set []string, v string) bool {
	for _, s := range set {
		if s == v {
			return true
		}
	}
	return false
}
