package catalog

import (
	"strconv"
	"strings"

	domcat "github.com/kailas-cloud/marketsearch/internal/domain/catalog"
	"github.com/kailas-cloud/marketsearch/internal/domain/search/filter"
)

const selectCandidates = `SELECT p.id, p.name, p.description, p.tags, p.type, p.price,
       p.pickup, p.delivery, p.ship, p.active, p.available_now,
       p.rating_avg, p.rating_count, p.created_at, p.vendor_id,
       v.store_name, v.city, v.state,
       ST_Y(v.geo_point::geometry), ST_X(v.geo_point::geometry),
       v.rating_avg, v.rating_count
FROM products p
JOIN vendor_profiles v ON v.id = p.vendor_id`

// fulfillmentColumns maps methods to boolean product columns.
var fulfillmentColumns = map[domcat.Fulfillment]string{
	domcat.Pickup:   "p.pickup",
	domcat.Delivery: "p.delivery",
	domcat.Ship:     "p.ship",
}

// queryBuilder accumulates positional arguments and WHERE clauses.
type queryBuilder struct {
	args    []any
	clauses []string
}

func (b *queryBuilder) arg(v any) string {
	b.args = append(b.args, v)
	return "$" + strconv.Itoa(len(b.args))
}

func (b *queryBuilder) where(clause string) {
	b.clauses = append(b.clauses, clause)
}

// buildQuery translates a predicate into SQL. Fulfillment is its own
// AND-ed group and never joins the text OR.
func buildQuery(p filter.Predicate) (string, []any) {
	b := &queryBuilder{}
	b.where("p.active = TRUE")
	if p.OpenNow {
		b.where("p.available_now = TRUE")
	}
	if p.Term != "" {
		pattern := b.arg("%" + escapeLike(p.Term) + "%")
		b.where("(p.name ILIKE " + pattern +
			" OR p.description ILIKE " + pattern +
			" OR EXISTS (SELECT 1 FROM unnest(p.tags) t WHERE t ILIKE " + pattern + "))")
	}
	if len(p.Categories) > 0 {
		b.where("p.type = ANY(" + b.arg(p.Categories) + ")")
	}
	if p.PriceMin != nil {
		b.where("p.price >= " + b.arg(*p.PriceMin))
	}
	if p.PriceMax != nil {
		b.where("p.price <= " + b.arg(*p.PriceMax))
	}
	if len(p.Tags) > 0 {
		b.where("EXISTS (SELECT 1 FROM unnest(p.tags) t WHERE lower(t) = ANY(" + b.arg(p.Tags) + "))")
	}
	if len(p.Fulfillment) > 0 {
		var cols []string
		for _, f := range domcat.Fulfillments {
			for _, want := range p.Fulfillment {
				if want == f {
					cols = append(cols, fulfillmentColumns[f])
					break
				}
			}
		}
		if len(cols) > 0 {
			b.where("(" + strings.Join(cols, " OR ") + ")")
		}
	}
	if p.VendorIDs != nil {
		b.where("p.vendor_id = ANY(" + b.arg(p.VendorIDs) + ")")
	}
	if p.ProductIDs != nil {
		b.where("p.id = ANY(" + b.arg(p.ProductIDs) + ")")
	}

	sql := selectCandidates + "\nWHERE " + strings.Join(b.clauses, "\n  AND ") + "\nORDER BY p.id"
	return sql, b.args
}

var likeEscaper = strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)

// escapeLike neutralizes LIKE wildcards in user input.
func escapeLike(s string) string {
	return likeEscaper.Replace(s)
}
